package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/tmp36-logger/pkg/config"
	"github.com/ericogr/tmp36-logger/pkg/temperature"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	msgs         []published
	err          error
	disconnected bool
}

func (f *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) paho.Token {
	f.msgs = append(f.msgs, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return doneToken{err: f.err}
}

func (f *fakeClient) Disconnect(uint) { f.disconnected = true }

func TestPublishState(t *testing.T) {
	fc := &fakeClient{}
	m := &MQTTOutput{client: fc, stateTopic: "home/tmp36", unit: temperature.Fahrenheit}
	s := temperature.Sample{Temp: 71.6, Unit: temperature.Fahrenheit, Voltage: 0.72, Time: time.Unix(1700000000, 0)}
	require.NoError(t, m.Publish(s))
	require.Len(t, fc.msgs, 1)
	assert.Equal(t, "home/tmp36", fc.msgs[0].topic)
	assert.False(t, fc.msgs[0].retained)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(fc.msgs[0].payload, &got))
	assert.Equal(t, 71.6, got["temperature"])
	assert.Equal(t, "F", got["unit"])
	assert.Equal(t, float64(1700000000), got["timestamp"])

	require.NoError(t, m.Close())
	assert.True(t, fc.disconnected)
}

func TestPublishError(t *testing.T) {
	fc := &fakeClient{err: errors.New("not connected")}
	m := &MQTTOutput{client: fc, stateTopic: "t"}
	assert.Error(t, m.Publish(temperature.Sample{}))
}

func TestDiscoveryPayload(t *testing.T) {
	cfg := withDefaults(config.MQTTConfig{ClientID: "porch"})
	p := discoveryPayload(cfg, temperature.Celsius)
	assert.Equal(t, "TMP36 porch", p[keyName])
	assert.Equal(t, DefaultStateTopic, p[keyStateTopic])
	assert.Equal(t, "°C", p[keyUnitOfMeasurement])
	assert.Equal(t, "temperature", p[keyDeviceClass])
	assert.Equal(t, "porch", p[keyUniqueID])

	p = discoveryPayload(config.MQTTConfig{DiscoveryName: "Porch", DiscoveryUniqueID: "porch_1"}, temperature.Fahrenheit)
	assert.Equal(t, "Porch", p[keyName])
	assert.Equal(t, "°F", p[keyUnitOfMeasurement])
	assert.Equal(t, "porch_1", p[keyUniqueID])
}

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(config.MQTTConfig{})
	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Equal(t, DefaultClientID, cfg.ClientID)
	assert.Equal(t, DefaultStateTopic, cfg.StateTopic)
}

func TestPublishKeepsDiscoveryUnitAfterDisplaySwitch(t *testing.T) {
	fc := &fakeClient{}
	m := &MQTTOutput{client: fc, stateTopic: "home/tmp36", unit: temperature.Celsius}
	disc := discoveryPayload(withDefaults(config.MQTTConfig{}), m.unit)
	require.Equal(t, "°C", disc[keyUnitOfMeasurement])

	// the display was switched to Fahrenheit after startup
	s := temperature.Convert(0.75, temperature.Fahrenheit, time.Unix(1700000000, 0))
	require.Equal(t, 77.0, s.Temp)
	require.NoError(t, m.Publish(s))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(fc.msgs[0].payload, &got))
	assert.Equal(t, 25.0, got["temperature"])
	assert.Equal(t, "C", got["unit"])
	assert.Equal(t, 0.75, got["voltage"])
}
