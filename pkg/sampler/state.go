package sampler

import (
	"sync/atomic"

	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

// State holds the flags shared between the display and the polling loop.
type State struct {
	unit    atomic.Uint32
	logging atomic.Bool
}

func NewState(unit temperature.Unit, logging bool) *State {
	s := &State{}
	s.SetUnit(unit)
	s.logging.Store(logging)
	return s
}

func (s *State) Unit() temperature.Unit {
	return temperature.Unit(s.unit.Load())
}

func (s *State) SetUnit(u temperature.Unit) {
	if u != temperature.Fahrenheit {
		u = temperature.Celsius
	}
	s.unit.Store(uint32(u))
}

// ToggleUnit flips between Celsius and Fahrenheit and returns the new unit.
func (s *State) ToggleUnit() temperature.Unit {
	for {
		old := s.unit.Load()
		next := temperature.Fahrenheit
		if temperature.Unit(old) == temperature.Fahrenheit {
			next = temperature.Celsius
		}
		if s.unit.CompareAndSwap(old, uint32(next)) {
			return next
		}
	}
}

func (s *State) Logging() bool {
	return s.logging.Load()
}

// SetLogging stores on and returns the previous value.
func (s *State) SetLogging(on bool) bool {
	return s.logging.Swap(on)
}
