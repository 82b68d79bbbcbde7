// Package ui implements the single-screen terminal display: the current
// temperature, the unit selector, the logging toggle, the last logged line
// and short-lived notices.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

const noticeTTL = 2 * time.Second

// Controller changes the sampler's shared state.
type Controller interface {
	SetLogging(on bool)
	SetUnit(u temperature.Unit)
	ToggleUnit() temperature.Unit
}

// ── Messages ─────────────────────────────────────────────────────────

type sampleMsg temperature.Sample

type loggedMsg string

type noticeMsg string

type clearNoticeMsg int

// ── Model ────────────────────────────────────────────────────────────

type Model struct {
	ctrl      Controller
	sample    temperature.Sample
	hasSample bool
	unit      temperature.Unit
	logging   bool
	lastLine  string
	logDir    string
	notice    string
	noticeSeq int
	width     int
}

func New(ctrl Controller, unit temperature.Unit, logging bool, logDir string) Model {
	return Model{ctrl: ctrl, unit: unit, logging: logging, logDir: logDir}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "c":
			m.unit = temperature.Celsius
			m.ctrl.SetUnit(m.unit)
		case "f":
			m.unit = temperature.Fahrenheit
			m.ctrl.SetUnit(m.unit)
		case "u", "tab":
			m.unit = m.ctrl.ToggleUnit()
		case "l", " ":
			m.logging = !m.logging
			m.ctrl.SetLogging(m.logging)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case sampleMsg:
		m.sample = temperature.Sample(msg)
		m.hasSample = true

	case loggedMsg:
		m.lastLine = strings.TrimRight(string(msg), "\n")

	case noticeMsg:
		m.noticeSeq++
		m.notice = string(msg)
		seq := m.noticeSeq
		return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
			return clearNoticeMsg(seq)
		})

	case clearNoticeMsg:
		if int(msg) == m.noticeSeq {
			m.notice = ""
		}
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorTemp     = lipgloss.Color("214")
	colorDim      = lipgloss.Color("240")
	colorLabel    = lipgloss.Color("252")
	colorOn       = lipgloss.Color("78")
	colorOff      = lipgloss.Color("196")
	colorNoticeBg = lipgloss.Color("235")
	colorNoticeFg = lipgloss.Color("220")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	width := m.width - 2
	if width < 40 {
		width = 40
	}

	sections := []string{
		m.renderTitle(width),
		m.renderTemperature(width),
		m.renderControls(),
		m.renderLastLine(),
	}
	if m.notice != "" {
		sections = append(sections, lipgloss.NewStyle().
			Background(colorNoticeBg).
			Foreground(colorNoticeFg).
			Bold(true).
			Padding(0, 1).
			Render(m.notice))
	}
	sections = append(sections, lipgloss.NewStyle().
		Foreground(colorDim).
		Render("c/f unit  u toggle unit  l logging  q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderTitle(width int) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render("TMP36 TEMPERATURE LOGGER")
}

func (m Model) renderTemperature(width int) string {
	text := "--.-"
	if m.hasSample {
		text = m.sample.String()
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Foreground(colorTemp).
		Bold(true).
		Align(lipgloss.Center).
		Width(width - 2).
		Padding(1, 0)
	return box.Render(text)
}

func (m Model) renderControls() string {
	radio := func(u temperature.Unit) string {
		mark := "( )"
		if m.unit == u {
			mark = "(•)"
		}
		return fmt.Sprintf("%s °%s", mark, u)
	}
	toggle := lipgloss.NewStyle().Foreground(colorOff).Bold(true).Render("[OFF]")
	if m.logging {
		toggle = lipgloss.NewStyle().Foreground(colorOn).Bold(true).Render("[ON ]")
	}
	label := lipgloss.NewStyle().Foreground(colorLabel)
	return lipgloss.NewStyle().Padding(0, 1).Render(
		label.Render(radio(temperature.Celsius)+"  "+radio(temperature.Fahrenheit)) +
			"    " + label.Render("Log ") + toggle)
}

func (m Model) renderLastLine() string {
	line := m.lastLine
	if line == "" {
		line = "nothing logged yet"
	}
	dim := lipgloss.NewStyle().Foreground(colorDim)
	return lipgloss.NewStyle().Padding(0, 1).Render(
		dim.Render("last: ") + line + dim.Render("  ("+m.logDir+")"))
}
