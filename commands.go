package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ericogr/tmp36-logger/pkg/config"
	"github.com/ericogr/tmp36-logger/pkg/csvlog"
	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func runCommand(cfg config.Config, args []string, w io.Writer) error {
	switch args[0] {
	case "days":
		return listDays(cfg.LogDir, w)
	case "show":
		day := time.Now().Format("2006_01_02")
		if len(args) > 1 {
			day = args[1]
		}
		return showDay(cfg.LogDir, day, w)
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func listDays(dir string, w io.Writer) error {
	days, err := csvlog.ListDays(dir)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Fprintf(w, "no logs in %s\n", dir)
		return nil
	}
	for _, d := range days {
		fmt.Fprintln(w, d)
	}
	return nil
}

type summary struct {
	count         int
	min, max, avg float64
}

// summarize aggregates entries of one unit; lines logged in the other unit
// are converted first.
func summarize(entries []csvlog.Entry, unit temperature.Unit) summary {
	s := summary{min: math.MaxFloat64, max: -math.MaxFloat64}
	sum := 0.0
	for _, e := range entries {
		t := e.Temp
		switch {
		case e.Unit == unit:
		case unit == temperature.Fahrenheit:
			t = temperature.CelsiusToFahrenheit(t)
		default:
			t = (t - 32) * 5 / 9
		}
		s.count++
		sum += t
		s.min = math.Min(s.min, t)
		s.max = math.Max(s.max, t)
	}
	if s.count > 0 {
		s.avg = temperature.Round1(sum / float64(s.count))
		s.min = temperature.Round1(s.min)
		s.max = temperature.Round1(s.max)
	}
	return s
}

func showDay(dir, day string, w io.Writer) error {
	entries, err := csvlog.ReadFile(csvlog.DayPath(dir, day))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, headerStyle.Render(day))
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s %s\n", e.Time.Format("15:04:05"), temperature.FormatTemp(e.Temp), e.Unit)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no samples"))
		return nil
	}
	unit := entries[len(entries)-1].Unit
	s := summarize(entries, unit)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d samples  min %s  max %s  avg %s %s",
		s.count, temperature.FormatTemp(s.min), temperature.FormatTemp(s.max), temperature.FormatTemp(s.avg), unit)))
	return nil
}
