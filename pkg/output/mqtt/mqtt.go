package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ericogr/tmp36-logger/pkg/config"
	"github.com/ericogr/tmp36-logger/pkg/output"
	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

const (
	DefaultServer     = "tcp://localhost:1883"
	DefaultClientID   = "tmp36-logger"
	DefaultStateTopic = "tmp36/temperature"
	// discovery payload keys/values
	keyName                = "name"
	keyStateTopic          = "state_topic"
	keyUnitOfMeasurement   = "unit_of_measurement"
	keyDeviceClass         = "device_class"
	keyStateClass          = "state_class"
	keyValueTemplate       = "value_template"
	keyJSONAttributesTopic = "json_attributes_topic"
	keyUniqueID            = "unique_id"
	deviceClassTemperature = "temperature"
	stateClassMeasurement  = "measurement"
	valueTemplateTemp      = "{{ value_json.temperature }}"
)

// publisher is the subset of the paho client used here.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTOutput publishes every sample in the unit announced in discovery,
// whatever unit the display is currently using.
type MQTTOutput struct {
	client     publisher
	stateTopic string
	unit       temperature.Unit
}

func NewMQTT(cfg config.MQTTConfig, unit temperature.Unit) (output.Output, error) {
	cfg = withDefaults(cfg)
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID).SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	m := &MQTTOutput{client: client, stateTopic: cfg.StateTopic, unit: unit}

	// Home Assistant discovery, retained so it survives broker restarts
	if cfg.DiscoveryTopic != "" {
		payload := discoveryPayload(cfg, unit)
		if err := m.publishJSON(cfg.DiscoveryTopic, true, payload); err != nil {
			log.WithError(err).WithField("topic", cfg.DiscoveryTopic).Warn("mqtt discovery publish failed")
		}
	}
	return m, nil
}

func withDefaults(cfg config.MQTTConfig) config.MQTTConfig {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.StateTopic == "" {
		cfg.StateTopic = DefaultStateTopic
	}
	return cfg
}

func (m *MQTTOutput) Publish(s temperature.Sample) error {
	if s.Unit != m.unit {
		s = temperature.Convert(s.Voltage, m.unit, s.Time)
	}
	return m.publishJSON(m.stateTopic, false, statePayload(s))
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

func statePayload(s temperature.Sample) map[string]interface{} {
	return map[string]interface{}{
		"temperature": s.Temp,
		"unit":        s.Unit.String(),
		"voltage":     s.Voltage,
		"timestamp":   s.Time.Unix(),
	}
}

func unitOfMeasurement(u temperature.Unit) string {
	if u == temperature.Fahrenheit {
		return "°F"
	}
	return "°C"
}

func discoveryPayload(cfg config.MQTTConfig, unit temperature.Unit) map[string]interface{} {
	name := cfg.DiscoveryName
	if name == "" {
		name = fmt.Sprintf("TMP36 %s", cfg.ClientID)
	}
	uid := cfg.DiscoveryUniqueID
	if uid == "" {
		uid = cfg.ClientID
	}
	payload := map[string]interface{}{
		keyName:                name,
		keyStateTopic:          cfg.StateTopic,
		keyUnitOfMeasurement:   unitOfMeasurement(unit),
		keyDeviceClass:         deviceClassTemperature,
		keyStateClass:          stateClassMeasurement,
		keyValueTemplate:       valueTemplateTemp,
		keyJSONAttributesTopic: cfg.StateTopic,
	}
	if uid != "" {
		payload[keyUniqueID] = uid
	}
	return payload
}

func (m *MQTTOutput) publishJSON(topic string, retained bool, payload map[string]interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := m.client.Publish(topic, 0, retained, b)
	token.Wait()
	return token.Error()
}
