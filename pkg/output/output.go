package output

import (
	"sync"
	"time"

	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

type Output interface {
	Publish(temperature.Sample) error
	Close() error
}

// Notifier is implemented by outputs that also show the last logged line and
// transient messages.
type Notifier interface {
	Logged(line string)
	Notify(msg string)
}

// Entry rate-limits an Output to one publish per interval.
type Entry struct {
	Name       string
	Output     Output
	IntervalMs int

	mu   sync.Mutex
	last time.Time
}

func NewEntry(name string, out Output, intervalMs int) *Entry {
	return &Entry{Name: name, Output: out, IntervalMs: intervalMs}
}

// Publish forwards s when the interval has elapsed since the previous
// forwarded sample. It reports whether s was forwarded.
func (e *Entry) Publish(s temperature.Sample) (bool, error) {
	e.mu.Lock()
	interval := time.Duration(e.IntervalMs) * time.Millisecond
	if !e.last.IsZero() && s.Time.Sub(e.last) < interval {
		e.mu.Unlock()
		return false, nil
	}
	e.last = s.Time
	e.mu.Unlock()
	return true, e.Output.Publish(s)
}
