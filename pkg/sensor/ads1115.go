package sensor

import (
	"fmt"
	"time"

	"github.com/ericogr/tmp36-logger/pkg/config"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	pointerConv   = 0x00
	pointerConfig = 0x01

	// ±4.096V programmable gain
	fullScale = 4096 * physic.MilliVolt
)

type ADS1115Sensor struct {
	dev        *i2c.Dev
	bus        i2c.BusCloser
	channel    int
	sampleRate int
	cfg        config.Config
}

func NewADS1115Sensor(cfg config.Config) (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2C.Bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	dev := &i2c.Dev{Addr: uint16(cfg.I2C.Address), Bus: bus}
	return &ADS1115Sensor{dev: dev, bus: bus, channel: cfg.Channel, sampleRate: cfg.SampleRate, cfg: cfg}, nil
}

func (s *ADS1115Sensor) Close() error {
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

func (s *ADS1115Sensor) Read() ([]Reading, error) {
	msb, lsb, err := s.configForChannel(s.channel, s.sampleRate)
	if err != nil {
		return nil, err
	}
	// write config, starts a single-shot conversion
	if err := s.dev.Tx([]byte{pointerConfig, msb, lsb}, nil); err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}
	time.Sleep(conversionDelay(s.sampleRate))
	readBuf := make([]byte, 2)
	if err := s.dev.Tx([]byte{pointerConv}, readBuf); err != nil {
		return nil, fmt.Errorf("read conv: %w", err)
	}
	raw := int16(readBuf[0])<<8 | int16(readBuf[1])
	value := calibrate(s.cfg, rawToVolts(raw))
	return []Reading{{Channel: s.channel, Raw: raw, Value: value, Timestamp: time.Now()}}, nil
}

// rawToVolts scales a signed conversion result by the full-scale range.
func rawToVolts(raw int16) float64 {
	return float64(raw) * (float64(fullScale) / float64(physic.Volt)) / 32768.0
}

func conversionDelay(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		sampleRate = 128
	}
	return time.Duration(int(1000.0/float64(sampleRate))+2) * time.Millisecond
}

func (s *ADS1115Sensor) configForChannel(channel, sampleRate int) (byte, byte, error) {
	var mux byte
	switch channel {
	case 0:
		mux = 0x4
	case 1:
		mux = 0x5
	case 2:
		mux = 0x6
	case 3:
		mux = 0x7
	default:
		return 0, 0, fmt.Errorf("invalid channel %d", channel)
	}
	// PGA: use ±4.096V -> bits 001
	pga := byte(0x1)
	var dr byte
	switch sampleRate {
	case 8:
		dr = 0x0
	case 16:
		dr = 0x1
	case 32:
		dr = 0x2
	case 64:
		dr = 0x3
	case 128:
		dr = 0x4
	case 250:
		dr = 0x5
	case 475:
		dr = 0x6
	case 860:
		dr = 0x7
	default:
		dr = 0x4
	}
	var reg uint16 = 0x8000 // OS = 1 (start single conversion)
	reg |= uint16(mux) << 12
	reg |= uint16(pga) << 9
	reg |= 1 << 8 // single-shot mode
	reg |= uint16(dr) << 5
	// comparator disabled (bits 1:0 = 11)
	reg |= 0x3
	return byte(reg >> 8), byte(reg & 0xFF), nil
}
