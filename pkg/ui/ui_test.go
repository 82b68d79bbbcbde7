package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

type fakeController struct {
	unit    temperature.Unit
	logging []bool
}

func (f *fakeController) SetLogging(on bool) { f.logging = append(f.logging, on) }

func (f *fakeController) SetUnit(u temperature.Unit) { f.unit = u }

func (f *fakeController) ToggleUnit() temperature.Unit {
	if f.unit == temperature.Fahrenheit {
		f.unit = temperature.Celsius
	} else {
		f.unit = temperature.Fahrenheit
	}
	return f.unit
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestKeysDriveController(t *testing.T) {
	ctrl := &fakeController{unit: temperature.Celsius}
	m := New(ctrl, temperature.Celsius, false, "/data")

	m, _ = update(t, m, key("f"))
	assert.Equal(t, temperature.Fahrenheit, ctrl.unit)
	assert.Equal(t, temperature.Fahrenheit, m.unit)

	m, _ = update(t, m, key("u"))
	assert.Equal(t, temperature.Celsius, m.unit)

	m, _ = update(t, m, key("l"))
	m, _ = update(t, m, key("l"))
	assert.Equal(t, []bool{true, false}, ctrl.logging)
	assert.False(t, m.logging)

	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestSampleAndLoggedLineRendered(t *testing.T) {
	m := New(&fakeController{}, temperature.Celsius, true, "/data")
	assert.Contains(t, m.View(), "--.-")
	assert.Contains(t, m.View(), "nothing logged yet")

	m, _ = update(t, m, sampleMsg(temperature.Sample{Temp: 21.5, Unit: temperature.Celsius}))
	m, _ = update(t, m, loggedMsg("10:00:00, 21.5, C\n"))
	view := m.View()
	assert.Contains(t, view, "21.5 C")
	assert.Contains(t, view, "10:00:00, 21.5, C")
	assert.Contains(t, view, "[ON ]")
}

func TestNoticeExpires(t *testing.T) {
	m := New(&fakeController{}, temperature.Celsius, false, "/data")

	m, cmd := update(t, m, noticeMsg("Logging Started"))
	require.NotNil(t, cmd)
	assert.True(t, strings.Contains(m.View(), "Logging Started"))

	// a newer notice is not cleared by the older timer
	m, _ = update(t, m, noticeMsg("connection lost"))
	m, _ = update(t, m, clearNoticeMsg(1))
	assert.Equal(t, "connection lost", m.notice)

	m, _ = update(t, m, clearNoticeMsg(2))
	assert.Empty(t, m.notice)
}

func TestDisplayForwardsMessages(t *testing.T) {
	got := make(chan tea.Msg, 4)
	d := &Display{send: func(msg tea.Msg) { got <- msg }}

	require.NoError(t, d.Publish(temperature.Sample{Temp: 1}))
	d.Logged("line\n")
	d.Notify("hi")

	assert.Equal(t, sampleMsg(temperature.Sample{Temp: 1}), <-got)
	assert.Equal(t, loggedMsg("line\n"), <-got)
	select {
	case msg := <-got:
		assert.Equal(t, noticeMsg("hi"), msg)
	case <-time.After(time.Second):
		t.Fatal("notice not forwarded")
	}
}
