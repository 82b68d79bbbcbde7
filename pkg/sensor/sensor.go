// Package sensor reads the analog temperature sensor's output voltage.
package sensor

import (
	"fmt"
	"time"

	"github.com/ericogr/tmp36-logger/pkg/config"
)

// Reading is one conversion. Value is the calibrated voltage in volts.
type Reading struct {
	Channel   int       `json:"channel"`
	Raw       int16     `json:"raw"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

type Sensor interface {
	Read() ([]Reading, error)
	Close() error
}

// New builds the sensor selected by cfg.SensorType.
func New(cfg config.Config) (Sensor, error) {
	switch cfg.SensorType {
	case config.SensorReal:
		return NewADS1115Sensor(cfg)
	case config.SensorHost:
		return NewHostSensor(cfg)
	case config.SensorSimulation:
		return NewFakeSensor(cfg)
	}
	return nil, fmt.Errorf("unknown sensor type %q", cfg.SensorType)
}

// Pick returns the reading taken on channel.
func Pick(readings []Reading, channel int) (Reading, error) {
	for _, r := range readings {
		if r.Channel == channel {
			return r, nil
		}
	}
	return Reading{}, fmt.Errorf("no reading for channel %d", channel)
}
