package sensor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/host"
	log "github.com/sirupsen/logrus"

	"github.com/ericogr/tmp36-logger/pkg/config"
)

const hostReadTimeout = 2 * time.Second

type temperatureSource func(ctx context.Context) ([]host.TemperatureStat, error)

// HostSensor reads one of the machine's thermal sensors and reports it as the
// voltage a TMP36 would output at that temperature.
type HostSensor struct {
	channel int
	key     string
	cfg     config.Config
	source  temperatureSource
}

func NewHostSensor(cfg config.Config) (Sensor, error) {
	return &HostSensor{
		channel: cfg.Channel,
		key:     cfg.HostSensorKey,
		cfg:     cfg,
		source:  host.SensorsTemperaturesWithContext,
	}, nil
}

func (h *HostSensor) Read() ([]Reading, error) {
	ctx, cancel := context.WithTimeout(context.Background(), hostReadTimeout)
	defer cancel()

	stats, err := h.source(ctx)
	if err != nil && len(stats) == 0 {
		return nil, fmt.Errorf("read host sensors: %w", err)
	}
	stat, ok := h.pick(stats)
	if !ok {
		if h.key != "" {
			return nil, fmt.Errorf("host sensor %q not found", h.key)
		}
		return nil, fmt.Errorf("no host temperature sensors")
	}
	log.WithField("sensor", stat.SensorKey).Debugf("host temperature %.1f", stat.Temperature)

	volts := tmp36Volts(stat.Temperature)
	raw := int16(volts / 4.096 * 32768)
	return []Reading{{Channel: h.channel, Raw: raw, Value: calibrate(h.cfg, volts), Timestamp: time.Now()}}, nil
}

// pick returns the sensor matching the configured key, or the first sensor
// with a non-zero temperature when no key is set.
func (h *HostSensor) pick(stats []host.TemperatureStat) (host.TemperatureStat, bool) {
	for _, s := range stats {
		if h.key != "" {
			if strings.EqualFold(s.SensorKey, h.key) {
				return s, true
			}
			continue
		}
		if s.Temperature != 0 {
			return s, true
		}
	}
	return host.TemperatureStat{}, false
}

func (h *HostSensor) Close() error { return nil }
