package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ericogr/tmp36-logger/pkg/output"
	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

type ConsoleOutput struct {
	w io.Writer
}

func NewConsole() output.Output { return &ConsoleOutput{w: os.Stdout} }

func NewConsoleWriter(w io.Writer) *ConsoleOutput { return &ConsoleOutput{w: w} }

func (c *ConsoleOutput) Publish(s temperature.Sample) error {
	_, err := fmt.Fprintf(c.w, "%s temp=%s unit=%s voltage=%.4f\n", s.Time.Format(time.RFC3339), temperature.FormatTemp(s.Temp), s.Unit, s.Voltage)
	return err
}

func (c *ConsoleOutput) Logged(line string) {
	fmt.Fprintf(c.w, "logged: %s", line)
}

func (c *ConsoleOutput) Notify(msg string) {
	fmt.Fprintf(c.w, "! %s\n", msg)
}

func (c *ConsoleOutput) Close() error { return nil }
