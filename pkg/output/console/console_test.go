package console

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

func captureStdout(f func()) string {
	r, w, _ := os.Pipe()
	stdout := os.Stdout
	os.Stdout = w
	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()
	f()
	_ = w.Close()
	os.Stdout = stdout
	return <-outC
}

func TestConsolePublish(t *testing.T) {
	ts := time.Date(2025, 9, 19, 14, 41, 54, 0, time.UTC)
	s := temperature.Sample{Temp: 23.4, Unit: temperature.Celsius, Voltage: 0.734, Time: ts}
	out := captureStdout(func() {
		c := NewConsole()
		_ = c.Publish(s)
	})
	want := "2025-09-19T14:41:54Z temp=23.4 unit=C voltage=0.7340\n"
	if out != want {
		t.Fatalf("console output mismatch:\n got: %q\nwant: %q", out, want)
	}
}

func TestConsoleNotifications(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf)
	c.Logged("10:00:00, 21.0, C\n")
	c.Notify("Logging Started")
	want := "logged: 10:00:00, 21.0, C\n! Logging Started\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}
