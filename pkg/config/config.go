package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

const (
	SensorReal       = "real"
	SensorSimulation = "simulation"
	SensorHost       = "host"

	UITerminal = "tui"
	UIConsole  = "console"
)

type MQTTConfig struct {
	Server            string `json:"server" yaml:"server"`
	Username          string `json:"username" yaml:"username"`
	Password          string `json:"password" yaml:"password"`
	ClientID          string `json:"client_id" yaml:"client_id"`
	StateTopic        string `json:"state_topic" yaml:"state_topic"`
	DiscoveryTopic    string `json:"discovery_topic,omitempty" yaml:"discovery_topic,omitempty"`
	DiscoveryName     string `json:"discovery_name,omitempty" yaml:"discovery_name,omitempty"`
	DiscoveryUniqueID string `json:"discovery_unique_id,omitempty" yaml:"discovery_unique_id,omitempty"`
}

type OutputConfig struct {
	Type       string      `json:"type" yaml:"type"`
	IntervalMs int         `json:"interval_ms,omitempty" yaml:"interval_ms,omitempty"`
	MQTT       *MQTTConfig `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
}

type I2CConfig struct {
	Bus     string `json:"bus" yaml:"bus"`
	Address int    `json:"address" yaml:"address"`
}

type Config struct {
	I2C               I2CConfig      `json:"i2c" yaml:"i2c"`
	SampleRate        int            `json:"sample_rate" yaml:"sample_rate"`
	Channel           int            `json:"channel" yaml:"channel"`
	CalibrationScale  float64        `json:"calibration_scale" yaml:"calibration_scale"`
	CalibrationOffset float64        `json:"calibration_offset" yaml:"calibration_offset"`
	SensorType        string         `json:"sensor_type" yaml:"sensor_type"`
	HostSensorKey     string         `json:"host_sensor_key,omitempty" yaml:"host_sensor_key,omitempty"`
	Unit              string         `json:"unit" yaml:"unit"`
	SampleIntervalMs  int            `json:"sample_interval_ms" yaml:"sample_interval_ms"`
	LogIntervalMs     int            `json:"log_interval_ms" yaml:"log_interval_ms"`
	LogEnabled        bool           `json:"log_enabled" yaml:"log_enabled"`
	LogDir            string         `json:"log_dir" yaml:"log_dir"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
	UI                string         `json:"ui" yaml:"ui"`
	Outputs           []OutputConfig `json:"outputs" yaml:"outputs"`
}

func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		I2C:               I2CConfig{Bus: "1", Address: 0x48},
		SampleRate:        128,
		Channel:           0,
		CalibrationScale:  1.0,
		CalibrationOffset: 0.0,
		SensorType:        SensorReal,
		Unit:              "C",
		SampleIntervalMs:  100,
		LogIntervalMs:     10000,
		LogEnabled:        false,
		LogDir:            home,
		LogLevel:          "info",
		UI:                UITerminal,
	}
}

// Load reads a JSON or YAML config file on top of the defaults. The format is
// picked from the file extension; anything other than .yaml/.yml is JSON.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := loadFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	default:
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadFromFlags loads configuration from a config file (optional) and flags.
// Flags override values present in the file. The remaining positional
// arguments are returned for subcommand dispatch.
func LoadFromFlags(fs *flag.FlagSet, args []string) (Config, []string, error) {
	cfgPath := fs.String("config", "", "Path to JSON or YAML config file")
	flagI2CBus := fs.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagI2CAddStr := fs.String("i2c-address", "", "I2C address (decimal or 0x hex)")
	flagSampleRate := fs.Int("sample-rate", -1, "ADS1115 sample rate (SPS)")
	flagChannel := fs.Int("channel", -1, "ADS1115 input the sensor is wired to (0-3)")
	flagCalibration := fs.Float64("calibration", math.NaN(), "Calibration scale factor (multiplier)")
	flagCalOffset := fs.Float64("calibration-offset", math.NaN(), "Calibration offset in volts")
	flagSensorType := fs.String("sensor-type", "", "sensor type: real|host|simulation")
	flagHostKey := fs.String("host-sensor", "", "host thermal sensor key (sensor-type=host)")
	flagUnit := fs.String("unit", "", "temperature unit: C|F")
	flagSampleInterval := fs.Int("sample-interval-ms", -1, "Sensor polling interval in ms")
	flagLogInterval := fs.Int("log-interval-ms", -1, "Minimum interval between CSV lines in ms")
	flagLog := fs.String("log", "", "Append samples to the daily CSV file: true|false")
	flagLogDir := fs.String("log-dir", "", "Directory holding temp_YYYY_MM_DD.csv files")
	flagLogLevel := fs.String("log-level", "", "Log level: debug|info|warn|error")
	flagUI := fs.String("ui", "", "Display: tui|console")
	flagOutputs := fs.String("outputs", "", "Comma-separated extra outputs (mqtt; console sets the -ui console rate)")
	flagOutputIntervals := fs.String("output-intervals", "", "Comma-separated output intervals e.g. console=1000,mqtt=5000")
	flagMQTTServer := fs.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := fs.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := fs.String("mqtt-pass", "", "MQTT password")
	flagClientID := fs.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := fs.String("mqtt-topic", "", "MQTT state topic")
	flagDiscovery := fs.String("mqtt-discovery-topic", "", "Home Assistant discovery topic")

	cfg := DefaultConfig()
	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}

	if *cfgPath != "" {
		if err := loadFile(*cfgPath, &cfg); err != nil {
			return cfg, nil, err
		}
	}

	if *flagI2CBus != "" {
		cfg.I2C.Bus = *flagI2CBus
	}
	if *flagI2CAddStr != "" {
		v, err := parseIntOrHex(*flagI2CAddStr)
		if err != nil {
			return cfg, nil, fmt.Errorf("i2c-address: %w", err)
		}
		cfg.I2C.Address = v
	}
	if *flagSampleRate != -1 {
		cfg.SampleRate = *flagSampleRate
	}
	if *flagChannel != -1 {
		cfg.Channel = *flagChannel
	}
	if !math.IsNaN(*flagCalibration) {
		cfg.CalibrationScale = *flagCalibration
	}
	if !math.IsNaN(*flagCalOffset) {
		cfg.CalibrationOffset = *flagCalOffset
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagHostKey != "" {
		cfg.HostSensorKey = *flagHostKey
	}
	if *flagUnit != "" {
		cfg.Unit = *flagUnit
	}
	if *flagSampleInterval != -1 {
		cfg.SampleIntervalMs = *flagSampleInterval
	}
	if *flagLogInterval != -1 {
		cfg.LogIntervalMs = *flagLogInterval
	}
	if *flagLog != "" {
		v, err := strconv.ParseBool(*flagLog)
		if err != nil {
			return cfg, nil, fmt.Errorf("log: %w", err)
		}
		cfg.LogEnabled = v
	}
	if *flagLogDir != "" {
		cfg.LogDir = *flagLogDir
	}
	if *flagLogLevel != "" {
		cfg.LogLevel = *flagLogLevel
	}
	if *flagUI != "" {
		cfg.UI = *flagUI
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p})
		}
		cfg.Outputs = outs
	}
	if *flagOutputIntervals != "" {
		intervals, err := parseKeyIntMap(*flagOutputIntervals)
		if err != nil {
			return cfg, nil, fmt.Errorf("output-intervals: %w", err)
		}
		for i := range cfg.Outputs {
			if v, ok := intervals[cfg.Outputs[i].Type]; ok {
				cfg.Outputs[i].IntervalMs = v
			}
		}
	}
	// mqtt flags apply to every mqtt output; one is created if none exist
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" || *flagDiscovery != "" {
		apply := func(m *MQTTConfig) {
			if *flagMQTTServer != "" {
				m.Server = *flagMQTTServer
			}
			if *flagMQTTUser != "" {
				m.Username = *flagMQTTUser
			}
			if *flagMQTTPass != "" {
				m.Password = *flagMQTTPass
			}
			if *flagClientID != "" {
				m.ClientID = *flagClientID
			}
			if *flagTopic != "" {
				m.StateTopic = *flagTopic
			}
			if *flagDiscovery != "" {
				m.DiscoveryTopic = *flagDiscovery
			}
		}
		applied := false
		for i := range cfg.Outputs {
			if strings.ToLower(cfg.Outputs[i].Type) == "mqtt" {
				if cfg.Outputs[i].MQTT == nil {
					cfg.Outputs[i].MQTT = &MQTTConfig{}
				}
				apply(cfg.Outputs[i].MQTT)
				applied = true
			}
		}
		if !applied {
			out := OutputConfig{Type: "mqtt", MQTT: &MQTTConfig{}}
			apply(out.MQTT)
			cfg.Outputs = append(cfg.Outputs, out)
		}
	}

	cfg.ApplyOutputDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	return cfg, fs.Args(), nil
}

// ApplyOutputDefaults fills output intervals left at zero with one second.
func (c *Config) ApplyOutputDefaults() {
	for i := range c.Outputs {
		if c.Outputs[i].IntervalMs == 0 {
			c.Outputs[i].IntervalMs = 1000
		}
	}
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample-rate must be > 0")
	}
	if c.Channel < 0 || c.Channel > 3 {
		return fmt.Errorf("channel must be between 0 and 3, got %d", c.Channel)
	}
	if c.SampleIntervalMs <= 0 {
		return errors.New("sample-interval-ms must be > 0")
	}
	if c.LogIntervalMs <= 0 {
		return errors.New("log-interval-ms must be > 0")
	}
	if _, err := temperature.ParseUnit(c.Unit); err != nil {
		return err
	}
	switch c.SensorType {
	case SensorReal, SensorSimulation, SensorHost:
	default:
		return fmt.Errorf("unknown sensor type %q", c.SensorType)
	}
	switch c.UI {
	case UITerminal, UIConsole:
	default:
		return fmt.Errorf("unknown ui %q", c.UI)
	}
	if c.LogDir == "" {
		return errors.New("log-dir must not be empty")
	}
	return nil
}

// TemperatureUnit returns the parsed display unit.
func (c Config) TemperatureUnit() temperature.Unit {
	u, _ := temperature.ParseUnit(c.Unit)
	return u
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseKeyIntMap(s string) (map[string]int, error) {
	out := map[string]int{}
	for _, p := range parseCSV(s) {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid entry '%s'", p)
		}
		v, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid value in '%s': %w", p, err)
		}
		out[strings.TrimSpace(kv[0])] = v
	}
	return out, nil
}
