// Command tmp36-logger polls a TMP36 temperature sensor through an ADS1115
// ADC, shows the reading on a terminal screen and appends a sample to
// temp_YYYY_MM_DD.csv at most once every log interval while logging is on.
//
// Usage:
//
//	tmp36-logger [flags]              run the logger
//	tmp36-logger [flags] days         list logged days
//	tmp36-logger [flags] show [DAY]   print a day's samples (default: today)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ericogr/tmp36-logger/pkg/config"
	"github.com/ericogr/tmp36-logger/pkg/csvlog"
	"github.com/ericogr/tmp36-logger/pkg/output"
	"github.com/ericogr/tmp36-logger/pkg/output/console"
	"github.com/ericogr/tmp36-logger/pkg/output/mqtt"
	"github.com/ericogr/tmp36-logger/pkg/sampler"
	"github.com/ericogr/tmp36-logger/pkg/sensor"
	"github.com/ericogr/tmp36-logger/pkg/temperature"
	"github.com/ericogr/tmp36-logger/pkg/ui"
)

const appLogFile = "tmp36-logger.log"

func main() {
	os.Exit(runMain(os.Args, os.Stdout, os.Stderr))
}

// runMain parses args and runs the logger or a subcommand, returning the
// process exit code. Failures are always reported on stderr, even when
// logrus has been redirected to the app log file.
func runMain(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(filepath.Base(argv[0]), flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, args, err := config.LoadFromFlags(fs, argv[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fs.Usage()
		return 2
	}

	if len(args) > 0 {
		if err := runCommand(cfg, args, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Error("exiting")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.Config) error {
	sens, err := sensor.New(cfg)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sens.Close()

	entries, err := initOutputs(&cfg, cfg.TemperatureUnit())
	if err != nil {
		return err
	}
	defer func() {
		for _, e := range entries {
			if err := e.Output.Close(); err != nil {
				log.WithError(err).WithField("output", e.Name).Warn("close output")
			}
		}
	}()

	state := sampler.NewState(cfg.TemperatureUnit(), false)
	s := sampler.New(sens, state, csvlog.New(cfg.LogDir), sampler.Options{
		Channel:        cfg.Channel,
		SampleInterval: sampleInterval(cfg),
		LogInterval:    time.Duration(cfg.LogIntervalMs) * time.Millisecond,
	})
	for _, e := range entries {
		s.AddOutput(e)
	}

	log.WithFields(log.Fields{
		"sensor":   cfg.SensorType,
		"channel":  cfg.Channel,
		"unit":     cfg.TemperatureUnit().String(),
		"interval": sampleInterval(cfg),
		"log_dir":  cfg.LogDir,
	}).Info("starting")

	if cfg.UI == config.UIConsole {
		s.AddOutput(output.NewEntry(config.UIConsole, console.NewConsole(), consoleInterval(cfg)))
		s.SetLogging(cfg.LogEnabled)
		s.Run(ctx)
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := ui.NewProgram(ui.New(s, cfg.TemperatureUnit(), cfg.LogEnabled, cfg.LogDir))
	s.AddOutput(output.NewEntry(config.UITerminal, ui.NewDisplay(p), 0))
	s.SetLogging(cfg.LogEnabled)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err = p.Run()
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// initOutputs creates the configured extra outputs. Console outputs are
// always skipped: with the console display it already prints every sample,
// and under the TUI stdout belongs to the screen.
func initOutputs(cfg *config.Config, unit temperature.Unit) ([]*output.Entry, error) {
	cfg.ApplyOutputDefaults()
	var entries []*output.Entry
	for i := range cfg.Outputs {
		oc := &cfg.Outputs[i]
		var out output.Output
		switch strings.ToLower(oc.Type) {
		case "console":
			if cfg.UI != config.UIConsole {
				log.Warn("console output ignored while the terminal UI is active, use -ui console")
			}
			continue
		case "mqtt":
			mc := config.MQTTConfig{}
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			o, err := mqtt.NewMQTT(mc, unit)
			if err != nil {
				for _, e := range entries {
					_ = e.Output.Close()
				}
				return nil, fmt.Errorf("init mqtt output: %w", err)
			}
			out = o
		default:
			for _, e := range entries {
				_ = e.Output.Close()
			}
			return nil, fmt.Errorf("unknown output type %q", oc.Type)
		}
		entries = append(entries, output.NewEntry(strings.ToLower(oc.Type), out, oc.IntervalMs))
	}
	return entries, nil
}

// sampleInterval keeps the polling interval at or above the ADC conversion
// time for real hardware.
func sampleInterval(cfg config.Config) time.Duration {
	d := time.Duration(cfg.SampleIntervalMs) * time.Millisecond
	if cfg.SensorType != config.SensorReal || cfg.SampleRate <= 0 {
		return d
	}
	conv := time.Duration(int(1000.0/float64(cfg.SampleRate))+2) * time.Millisecond
	if d < conv {
		return conv
	}
	return d
}

// consoleInterval throttles the console display; an explicit console output
// entry sets the rate, otherwise one line per second.
func consoleInterval(cfg config.Config) int {
	for _, oc := range cfg.Outputs {
		if strings.ToLower(oc.Type) == "console" && oc.IntervalMs > 0 {
			return oc.IntervalMs
		}
	}
	return 1000
}

// setupLogging configures logrus. In TUI mode logs go to a file next to the
// CSV logs so they do not draw over the screen.
func setupLogging(cfg config.Config) (func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log-level: %w", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if cfg.UI != config.UITerminal {
		log.SetOutput(os.Stderr)
		return func() {}, nil
	}
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.LogDir, appLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open app log: %w", err)
	}
	log.SetOutput(f)
	return func() { _ = f.Close() }, nil
}
