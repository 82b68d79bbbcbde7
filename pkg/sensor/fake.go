package sensor

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ericogr/tmp36-logger/pkg/config"
)

const (
	// ~22°C
	fakeBaseVolts = 0.72
	// ±0.5°C per step, clamped to ±5°C around the base
	fakeStep   = 0.005
	fakeSpread = 0.05
)

// FakeSensor random-walks a TMP36 voltage around room temperature.
type FakeSensor struct {
	channel int
	cfg     config.Config
	rnd     *rand.Rand
	volts   float64
	mu      sync.Mutex
}

func NewFakeSensor(cfg config.Config) (Sensor, error) {
	return newSeededFakeSensor(cfg, time.Now().UnixNano()), nil
}

func newSeededFakeSensor(cfg config.Config, seed int64) *FakeSensor {
	return &FakeSensor{
		channel: cfg.Channel,
		cfg:     cfg,
		rnd:     rand.New(rand.NewSource(seed)),
		volts:   fakeBaseVolts,
	}
}

func (f *FakeSensor) Read() ([]Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volts += (f.rnd.Float64()*2 - 1) * fakeStep
	if f.volts > fakeBaseVolts+fakeSpread {
		f.volts = fakeBaseVolts + fakeSpread
	}
	if f.volts < fakeBaseVolts-fakeSpread {
		f.volts = fakeBaseVolts - fakeSpread
	}
	raw := int16(f.volts / 4.096 * 32768)
	return []Reading{{Channel: f.channel, Raw: raw, Value: calibrate(f.cfg, f.volts), Timestamp: time.Now()}}, nil
}

func (f *FakeSensor) Close() error { return nil }
