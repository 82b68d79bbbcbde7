package csvlog

import (
	"sync"
	"time"
)

// Gate limits log lines to one per period. A tick is due when strictly more
// than period has passed since the last due tick; the first tick is always
// due.
type Gate struct {
	period time.Duration
	mu     sync.Mutex
	last   time.Time
}

func NewGate(period time.Duration) *Gate {
	return &Gate{period: period}
}

// Due reports whether now opens a new window, and if so starts it.
func (g *Gate) Due(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.last.IsZero() && !now.After(g.last.Add(g.period)) {
		return false
	}
	g.last = now
	return true
}
