package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ericogr/pico-loops/pkg/config"
	"github.com/ericogr/pico-loops/pkg/output"
	"github.com/ericogr/pico-loops/pkg/sensor"
	"github.com/google/uuid"
)

const (
	// defaults
	DefaultServer     = "tcp://localhost:1883"
	DefaultStateTopic = "pico/%s"
	// discovery payload keys/values
	keyName                = "name"
	keyStateTopic          = "state_topic"
	keyUnitOfMeasurement   = "unit_of_measurement"
	keyDeviceClass         = "device_class"
	keyStateClass          = "state_class"
	keyValueTemplate       = "value_template"
	keyJSONAttributesTopic = "json_attributes_topic"
	keyUniqueID            = "unique_id"
	stateClassMeasurement  = "measurement"
	valueTemplateValue     = "{{ value_json.value }}"
)

// Quantity describes what the published value measures, for Home Assistant
// discovery.
type Quantity struct {
	Unit        string
	DeviceClass string
}

var (
	Voltage     = Quantity{Unit: "V", DeviceClass: "voltage"}
	Temperature = Quantity{Unit: "°C", DeviceClass: "temperature"}
)

type MQTTOutput struct {
	client     mqtt.Client
	stateTopic string
}

func NewMQTT(cfg config.MQTTConfig, sources []string, q Quantity) (output.Output, error) {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "pico-loops-" + uuid.NewString()[:8]
	}
	if cfg.StateTopic == "" {
		cfg.StateTopic = DefaultStateTopic
	}
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

	m := &MQTTOutput{client: client, stateTopic: cfg.StateTopic}

	// Publish Home Assistant discovery payload(s) if requested
	if cfg.DiscoveryTopic != "" {
		if strings.Contains(cfg.DiscoveryTopic, "%s") {
			for _, src := range sources {
				dTopic := fmt.Sprintf(cfg.DiscoveryTopic, src)
				payload := baseDiscoveryPayload(discoveryName(cfg, src), formatStateTopic(cfg.StateTopic, src), discoveryUniqueID(cfg, src), q)
				if err := publishJSON(client, dTopic, true, payload); err != nil {
					log.Printf("mqtt discovery publish error: %v", err)
				}
			}
		} else {
			src := ""
			if len(sources) > 0 {
				src = sources[0]
			}
			payload := baseDiscoveryPayload(discoveryName(cfg, ""), formatStateTopic(cfg.StateTopic, src), discoveryUniqueID(cfg, ""), q)
			if err := publishJSON(client, cfg.DiscoveryTopic, true, payload); err != nil {
				log.Printf("mqtt discovery publish error: %v", err)
			}
		}
	}

	return m, nil
}

func (m *MQTTOutput) Publish(readings []sensor.Reading) error {
	for _, r := range readings {
		if err := publishJSON(m.client, formatStateTopic(m.stateTopic, r.Source), false, readingPayload(r)); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", r.Source, err)
		}
	}
	return nil
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

func readingPayload(r sensor.Reading) map[string]interface{} {
	return map[string]interface{}{
		"source":    r.Source,
		"value":     r.Value,
		"raw":       r.Raw,
		"timestamp": r.Timestamp.Format(time.RFC3339Nano),
	}
}

// helper: format a state topic for a source using an optional formatter
func formatStateTopic(base, source string) string {
	if base == "" {
		base = DefaultStateTopic
	}
	if strings.Contains(base, "%s") {
		return fmt.Sprintf(base, source)
	}
	return base
}

// helper: build a human-friendly discovery name; a non-empty source is appended
func discoveryName(cfg config.MQTTConfig, source string) string {
	name := cfg.DiscoveryName
	if name == "" {
		name = fmt.Sprintf("Pico %s", cfg.ClientID)
	}
	if source != "" {
		name = fmt.Sprintf("%s %s", name, source)
	}
	return name
}

// helper: build a unique id for discovery; a non-empty source is appended
func discoveryUniqueID(cfg config.MQTTConfig, source string) string {
	uid := cfg.DiscoveryUniqueID
	if uid == "" {
		uid = cfg.ClientID
	}
	if uid != "" && source != "" {
		uid = fmt.Sprintf("%s_%s", uid, source)
	}
	return uid
}

// helper: base discovery payload map common to all entries
func baseDiscoveryPayload(name, stateTopic, uniqueID string, q Quantity) map[string]interface{} {
	payload := map[string]interface{}{
		keyName:                name,
		keyStateTopic:          stateTopic,
		keyUnitOfMeasurement:   q.Unit,
		keyDeviceClass:         q.DeviceClass,
		keyStateClass:          stateClassMeasurement,
		keyValueTemplate:       valueTemplateValue,
		keyJSONAttributesTopic: stateTopic,
	}
	if uniqueID != "" {
		payload[keyUniqueID] = uniqueID
	}
	return payload
}

// helper: marshal and publish JSON payload
func publishJSON(client mqtt.Client, topic string, retained bool, payload map[string]interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := client.Publish(topic, 0, retained, b)
	token.Wait()
	return token.Error()
}
