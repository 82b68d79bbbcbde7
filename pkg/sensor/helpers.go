package sensor

import "github.com/ericogr/tmp36-logger/pkg/config"

// calibrate applies the configured scale and offset to a voltage.
func calibrate(cfg config.Config, volts float64) float64 {
	scale := cfg.CalibrationScale
	if scale == 0 {
		scale = 1
	}
	return volts*scale + cfg.CalibrationOffset
}

// tmp36Volts is the voltage a TMP36 would output at celsius degrees.
func tmp36Volts(celsius float64) float64 {
	return celsius/100.0 + 0.5
}
