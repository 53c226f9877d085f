package transmission

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/jkaberg/skoda-hass/internal/mqtt"
	"github.com/jkaberg/skoda-hass/internal/sensors"
	"github.com/jkaberg/skoda-hass/internal/vehicle"
)

// MQTTTransmitter exposes one vehicle's sensors to Home Assistant over MQTT
// discovery. Only sensors whose required capabilities are present in the
// vehicle's capability set are ever registered; the rest do not exist as far
// as the host is concerned.
type MQTTTransmitter struct {
	client          *mqtt.Client
	vin             string
	discoveryPrefix string
	logger          *logrus.Logger

	descriptors []sensors.Descriptor

	// entity unique ID → last published icon; discovery is re-published
	// whenever a dynamic icon changes so the UI follows the vehicle state.
	publishedIcons map[string]string
}

// HADiscoveryConfig represents Home Assistant MQTT discovery configuration.
type HADiscoveryConfig struct {
	Name              string   `json:"name"`
	UniqueID          string   `json:"unique_id"`
	StateTopic        string   `json:"state_topic"`
	ValueTemplate     string   `json:"value_template,omitempty"`
	DeviceClass       string   `json:"device_class,omitempty"`
	StateClass        string   `json:"state_class,omitempty"`
	UnitOfMeasurement string   `json:"unit_of_measurement,omitempty"`
	Options           []string `json:"options,omitempty"`
	Icon              string   `json:"icon,omitempty"`
	Device            HADevice `json:"device"`
	AvailabilityTopic string   `json:"availability_topic"`
}

// HADevice represents the device information for Home Assistant.
type HADevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	SWVersion    string   `json:"sw_version,omitempty"`
}

// NewMQTTTransmitter creates a transmitter for one vehicle. The capability
// set decides once, up front, which sensors exist.
func NewMQTTTransmitter(client *mqtt.Client, vin string, caps vehicle.Capabilities, discoveryPrefix string, logger *logrus.Logger) *MQTTTransmitter {
	var available []sensors.Descriptor
	for _, desc := range sensors.All() {
		if desc.Available(caps) {
			available = append(available, desc)
		}
	}

	return &MQTTTransmitter{
		client:          client,
		vin:             vin,
		discoveryPrefix: discoveryPrefix,
		logger:          logger,
		descriptors:     available,
		publishedIcons:  make(map[string]string),
	}
}

// Transmit publishes discovery configs, the state payload and availability
// for the given snapshot.
func (t *MQTTTransmitter) Transmit(snap *vehicle.Snapshot) error {
	if !t.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	if err := t.publishDiscoveryConfigs(snap); err != nil {
		// Log but don't block the state update.
		t.logger.WithError(err).Error("Failed to publish Home Assistant discovery configs")
	}

	if err := t.publishState(snap); err != nil {
		return fmt.Errorf("failed to publish sensor state: %w", err)
	}

	if err := t.publishAvailability(true); err != nil {
		return fmt.Errorf("failed to publish availability: %w", err)
	}

	t.logger.WithField("vin", t.vin).Debug("Snapshot transmitted")
	return nil
}

// publishDiscoveryConfigs makes sure every available sensor has an
// up-to-date discovery config. Configs are retained and only re-published
// when the resolved icon changed.
func (t *MQTTTransmitter) publishDiscoveryConfigs(snap *vehicle.Snapshot) error {
	device := t.deviceInfo(snap)

	for _, desc := range t.descriptors {
		cfg := t.discoveryConfig(desc, snap, device)

		if t.publishedIcons[cfg.UniqueID] == cfg.Icon {
			continue
		}

		payload, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal discovery config for %s: %w", desc.Key, err)
		}

		topic := mqtt.DiscoveryTopic(t.discoveryPrefix, t.vin, desc.Key)
		if err := t.client.Publish(topic, payload, true); err != nil {
			t.logger.WithError(err).WithField("sensor", desc.Name).Error("Failed to publish discovery config")
			continue
		}

		t.logger.WithFields(logrus.Fields{
			"sensor": desc.Name,
			"topic":  topic,
			"icon":   cfg.Icon,
		}).Info("Published sensor discovery config")

		t.publishedIcons[cfg.UniqueID] = cfg.Icon
	}

	return nil
}

// discoveryConfig builds the discovery payload for one sensor.
func (t *MQTTTransmitter) discoveryConfig(desc sensors.Descriptor, snap *vehicle.Snapshot, device HADevice) HADiscoveryConfig {
	uniqueID := fmt.Sprintf("skoda_%s_%s", strings.ToLower(t.vin), desc.Key)

	return HADiscoveryConfig{
		Name:              desc.Name,
		UniqueID:          uniqueID,
		StateTopic:        mqtt.StateTopic(t.vin),
		ValueTemplate:     fmt.Sprintf("{{ value_json.%s }}", desc.Key),
		DeviceClass:       desc.DeviceClass,
		StateClass:        desc.StateClass,
		UnitOfMeasurement: desc.Unit,
		Options:           desc.Options,
		Icon:              desc.IconFor(snap),
		Device:            device,
		AvailabilityTopic: mqtt.AvailabilityTopic(t.vin),
	}
}

// deviceInfo builds the Home Assistant device block from the snapshot,
// degrading to VIN-only identification before the first full refresh.
func (t *MQTTTransmitter) deviceInfo(snap *vehicle.Snapshot) HADevice {
	device := HADevice{
		Identifiers:  []string{fmt.Sprintf("skoda_car_%s", strings.ToLower(t.vin))},
		Name:         fmt.Sprintf("Skoda %s", t.vin),
		Model:        "Skoda",
		Manufacturer: "Skoda",
	}
	if snap != nil && snap.Info != nil {
		if snap.Info.Model != "" {
			device.Model = snap.Info.Model
			device.Name = fmt.Sprintf("Skoda %s", snap.Info.Model)
		}
		device.SWVersion = snap.Info.SoftwareVersion
	}
	return device
}

// publishState publishes the rendered values of all available sensors.
func (t *MQTTTransmitter) publishState(snap *vehicle.Snapshot) error {
	payload, err := buildStatePayload(t.descriptors, snap)
	if err != nil {
		return err
	}

	topic := mqtt.StateTopic(t.vin)
	if err := t.client.Publish(topic, payload, true); err != nil {
		return fmt.Errorf("failed to publish state to %s: %w", topic, err)
	}

	t.logger.WithFields(logrus.Fields{
		"topic":   topic,
		"payload": string(payload),
	}).Debug("Published sensor state")

	return nil
}

// buildStatePayload renders the state JSON for the given descriptors.
// Sensors without a value are omitted entirely so Home Assistant shows them
// as unknown instead of a substituted default.
func buildStatePayload(descriptors []sensors.Descriptor, snap *vehicle.Snapshot) ([]byte, error) {
	state := make(map[string]any, len(descriptors))
	for _, desc := range descriptors {
		value := desc.Value(snap)
		if value == nil {
			continue
		}
		state[desc.Key] = renderValue(value)
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state payload: %w", err)
	}
	return payload, nil
}

// renderValue converts native values to their wire form. Timestamps go out
// as RFC 3339 strings, everything else as-is.
func renderValue(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.Format(time.RFC3339)
	}
	return v
}

// publishAvailability publishes the availability status.
func (t *MQTTTransmitter) publishAvailability(online bool) error {
	payload := "online"
	if !online {
		payload = "offline"
	}
	return t.client.Publish(mqtt.AvailabilityTopic(t.vin), []byte(payload), true)
}

// IsConnected checks if the underlying MQTT client is connected.
func (t *MQTTTransmitter) IsConnected() bool {
	return t.client.IsConnected()
}
