package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

// Display forwards sampler results into the running program. It satisfies
// output.Output and output.Notifier.
type Display struct {
	send func(tea.Msg)
}

func NewDisplay(p *tea.Program) *Display {
	return &Display{send: p.Send}
}

func (d *Display) Publish(s temperature.Sample) error {
	d.send(sampleMsg(s))
	return nil
}

func (d *Display) Logged(line string) {
	d.send(loggedMsg(line))
}

// Notify may be called from inside Update (toggling logging), where a
// blocking Send would deadlock the event loop.
func (d *Display) Notify(msg string) {
	go d.send(noticeMsg(msg))
}

func (d *Display) Close() error { return nil }

// NewProgram wraps the model in a full-screen program.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}
