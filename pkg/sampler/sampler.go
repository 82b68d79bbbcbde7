// Package sampler runs the polling loop: it reads the sensor on a fixed
// cadence, converts the voltage, forwards the sample to the outputs and
// appends it to the daily log when a log window opens.
package sampler

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ericogr/tmp36-logger/pkg/csvlog"
	"github.com/ericogr/tmp36-logger/pkg/output"
	"github.com/ericogr/tmp36-logger/pkg/sensor"
	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

const LoggingStarted = "Logging Started"

type Options struct {
	Channel        int
	SampleInterval time.Duration
	LogInterval    time.Duration
}

type Sampler struct {
	sensor    sensor.Sensor
	state     *State
	logger    *csvlog.Logger
	gate      *csvlog.Gate
	outputs   []*output.Entry
	notifiers []output.Notifier
	channel   int
	interval  time.Duration
	now       func() time.Time
}

func New(s sensor.Sensor, state *State, logger *csvlog.Logger, opts Options) *Sampler {
	return &Sampler{
		sensor:   s,
		state:    state,
		logger:   logger,
		gate:     csvlog.NewGate(opts.LogInterval),
		channel:  opts.Channel,
		interval: opts.SampleInterval,
		now:      time.Now,
	}
}

// AddOutput registers a sink; if it also implements output.Notifier it
// receives log lines and notices.
func (s *Sampler) AddOutput(e *output.Entry) {
	s.outputs = append(s.outputs, e)
	if n, ok := e.Output.(output.Notifier); ok {
		s.notifiers = append(s.notifiers, n)
	}
}

func (s *Sampler) State() *State { return s.state }

// SetLogging enables or disables appending to the daily log. Enabling it
// sends a "Logging Started" notice.
func (s *Sampler) SetLogging(on bool) {
	was := s.state.SetLogging(on)
	if on && !was {
		log.WithField("dir", s.logger.Dir()).Info("logging started")
		s.notify(LoggingStarted)
	}
	if !on && was {
		log.Info("logging stopped")
	}
}

func (s *Sampler) SetUnit(u temperature.Unit) { s.state.SetUnit(u) }

func (s *Sampler) ToggleUnit() temperature.Unit { return s.state.ToggleUnit() }

// Run polls until ctx is cancelled. Errors from a single poll are reported to
// the notifiers and do not stop the loop.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := safeRun(s.tick); err != nil {
			log.WithError(err).Warn("sample failed")
			s.notify(err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sampler) tick() error {
	readings, err := s.sensor.Read()
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	r, err := sensor.Pick(readings, s.channel)
	if err != nil {
		return err
	}
	now := s.now()
	sample := temperature.Convert(r.Value, s.state.Unit(), now)

	for _, e := range s.outputs {
		if _, err := e.Publish(sample); err != nil {
			log.WithError(err).WithField("output", e.Name).Warn("publish failed")
			s.notify(fmt.Sprintf("%s: %v", e.Name, err))
		}
	}

	if s.gate.Due(now) && s.state.Logging() {
		line, err := s.logger.Append(sample)
		if err != nil {
			return err
		}
		log.WithField("line", line).Debug("sample logged")
		for _, n := range s.notifiers {
			n.Logged(line)
		}
	}
	return nil
}

func (s *Sampler) notify(msg string) {
	for _, n := range s.notifiers {
		n.Notify(msg)
	}
}

// safeRun converts a panic in fn into an error.
func safeRun(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}
