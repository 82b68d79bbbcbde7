package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseKeyIntMap(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]int
		ok   bool
	}{
		{"", map[string]int{}, true},
		{"console=1000,mqtt=5000", map[string]int{"console": 1000, "mqtt": 5000}, true},
		{" console = 250 ", map[string]int{"console": 250}, true},
		{"bad", nil, false},
		{"console=x", nil, false},
	}
	for _, tt := range tests {
		got, err := parseKeyIntMap(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("parseKeyIntMap(%q) ok=%v err=%v", tt.in, tt.ok, err)
		}
		if tt.ok && !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("parseKeyIntMap(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseIntOrHex(t *testing.T) {
	if v, err := parseIntOrHex("0x48"); err != nil || v != 72 {
		t.Fatalf("hex: got %d err=%v", v, err)
	}
	if v, err := parseIntOrHex("73"); err != nil || v != 73 {
		t.Fatalf("decimal: got %d err=%v", v, err)
	}
	if _, err := parseIntOrHex("zz"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadFromFlagsDefaults(t *testing.T) {
	cfg, rest, err := LoadFromFlags(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadFromFlags: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("rest: %v", rest)
	}
	if cfg.SampleIntervalMs != 100 || cfg.LogIntervalMs != 10000 {
		t.Fatalf("intervals: %d %d", cfg.SampleIntervalMs, cfg.LogIntervalMs)
	}
	if cfg.TemperatureUnit() != temperature.Celsius {
		t.Fatalf("unit: %v", cfg.TemperatureUnit())
	}
	if cfg.LogEnabled {
		t.Fatalf("logging should start disabled")
	}
}

func TestLoadFromFlagsOverrides(t *testing.T) {
	args := []string{
		"-unit", "F", "-log", "true", "-log-dir", "/tmp/x", "-i2c-address", "0x49",
		"-sensor-type", "simulation", "-mqtt-server", "tcp://broker:1883",
		"-mqtt-topic", "home/temp", "-output-intervals", "mqtt=5000",
		"show", "2026_10_17",
	}
	cfg, rest, err := LoadFromFlags(newFlagSet(), args)
	if err != nil {
		t.Fatalf("LoadFromFlags: %v", err)
	}
	if cfg.TemperatureUnit() != temperature.Fahrenheit || !cfg.LogEnabled || cfg.LogDir != "/tmp/x" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.I2C.Address != 0x49 || cfg.SensorType != SensorSimulation {
		t.Fatalf("sensor overrides not applied: %+v", cfg)
	}
	if len(cfg.Outputs) != 1 || cfg.Outputs[0].Type != "mqtt" || cfg.Outputs[0].MQTT == nil {
		t.Fatalf("mqtt output not created: %+v", cfg.Outputs)
	}
	if cfg.Outputs[0].MQTT.Server != "tcp://broker:1883" || cfg.Outputs[0].MQTT.StateTopic != "home/temp" {
		t.Fatalf("mqtt flags not applied: %+v", cfg.Outputs[0].MQTT)
	}
	// intervals are applied before the mqtt output is synthesised
	if cfg.Outputs[0].IntervalMs != 1000 {
		t.Fatalf("mqtt interval: %d", cfg.Outputs[0].IntervalMs)
	}
	if !reflect.DeepEqual(rest, []string{"show", "2026_10_17"}) {
		t.Fatalf("rest: %v", rest)
	}
}

func TestLoadFromFlagsRejectsInvalid(t *testing.T) {
	for _, args := range [][]string{
		{"-unit", "K"},
		{"-channel", "7"},
		{"-sensor-type", "nope"},
		{"-sample-interval-ms", "0"},
		{"-log", "maybe"},
		{"-ui", "gtk"},
	} {
		if _, _, err := LoadFromFlags(newFlagSet(), args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestLoadYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yml := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(yml, []byte("unit: F\nlog_enabled: true\nchannel: 2\ni2c:\n  bus: \"2\"\n  address: 73\noutputs:\n  - type: console\n    interval_ms: 500\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(yml)
	if err != nil {
		t.Fatalf("Load yaml: %v", err)
	}
	if cfg.Unit != "F" || !cfg.LogEnabled || cfg.Channel != 2 || cfg.I2C.Bus != "2" || cfg.I2C.Address != 73 {
		t.Fatalf("yaml: %+v", cfg)
	}
	if len(cfg.Outputs) != 1 || cfg.Outputs[0].IntervalMs != 500 {
		t.Fatalf("yaml outputs: %+v", cfg.Outputs)
	}
	if cfg.SampleIntervalMs != 100 {
		t.Fatalf("defaults lost: %+v", cfg)
	}

	js := filepath.Join(dir, "cfg.json")
	if err := os.WriteFile(js, []byte(`{"sensor_type":"host","host_sensor_key":"cpu_thermal","log_interval_ms":5000}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(js)
	if err != nil {
		t.Fatalf("Load json: %v", err)
	}
	if cfg.SensorType != SensorHost || cfg.HostSensorKey != "cpu_thermal" || cfg.LogIntervalMs != 5000 {
		t.Fatalf("json: %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}
