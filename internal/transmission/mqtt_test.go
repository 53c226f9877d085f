package transmission

import (
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkaberg/skoda-hass/internal/vehicle"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func fullSnapshot() *vehicle.Snapshot {
	captured := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	return &vehicle.Snapshot{
		VIN:       "TMB123",
		FetchedAt: time.Now(),
		Charging: &vehicle.Charging{
			Status: &vehicle.ChargingStatus{
				Battery: vehicle.Battery{
					StateOfChargeInPercent:         intp(67),
					RemainingCruisingRangeInMeters: floatp(123000),
				},
				ChargePowerInKW:                      floatp(11),
				ChargeType:                           vehicle.ChargeTypeAC,
				State:                                vehicle.ChargingStateCharging,
				RemainingTimeToFullyChargedInMinutes: intp(120),
			},
			Settings: &vehicle.ChargingSettings{TargetStateOfChargeInPercent: intp(80)},
		},
		Health: &vehicle.Health{MileageInKM: intp(42000)},
		Maintenance: &vehicle.Maintenance{
			MaintenanceReport: &vehicle.MaintenanceReport{InspectionDueInDays: intp(213)},
		},
		Status: &vehicle.Status{CarCapturedTimestamp: &captured},
		Info:   &vehicle.Info{Model: "Enyaq", SoftwareVersion: "3.2.1"},
		Renders: map[string]string{
			vehicle.RenderMain: "https://img.example/main.png",
		},
	}
}

func fullCaps() vehicle.Capabilities {
	return vehicle.NewCapabilities(
		vehicle.CapabilityCharging,
		vehicle.CapabilityVehicleHealthInspection,
		vehicle.CapabilityState,
	)
}

func decodeState(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var state map[string]any
	require.NoError(t, json.Unmarshal(payload, &state))
	return state
}

func TestBuildStatePayloadFullSnapshot(t *testing.T) {
	tx := NewMQTTTransmitter(nil, "TMB123", fullCaps(), "homeassistant", testLogger())

	payload, err := buildStatePayload(tx.descriptors, fullSnapshot())
	require.NoError(t, err)
	state := decodeState(t, payload)

	assert.Equal(t, float64(67), state["battery_percentage"])
	assert.Equal(t, float64(11), state["charging_power"])
	assert.Equal(t, float64(123), state["range"])
	assert.Equal(t, float64(80), state["target_battery_percentage"])
	assert.Equal(t, float64(42000), state["milage"])
	assert.Equal(t, float64(213), state["inspection"])
	assert.Equal(t, "ac", state["charge_type"])
	assert.Equal(t, "charging", state["charging_state"])
	assert.Equal(t, float64(120), state["remaining_charging_time"])
	assert.Equal(t, "2024-06-01T12:30:00Z", state["car_captured"])
	assert.Equal(t, "3.2.1", state["software_version"])
	assert.Equal(t, "https://img.example/main.png", state["render_url_main"])
}

func TestBuildStatePayloadOmitsMissingValues(t *testing.T) {
	tx := NewMQTTTransmitter(nil, "TMB123", fullCaps(), "homeassistant", testLogger())

	snap := &vehicle.Snapshot{
		VIN: "TMB123",
		Charging: &vehicle.Charging{
			Status: &vehicle.ChargingStatus{
				Battery: vehicle.Battery{StateOfChargeInPercent: intp(40)},
				State:   vehicle.ChargingStateConnectCable,
			},
		},
	}

	payload, err := buildStatePayload(tx.descriptors, snap)
	require.NoError(t, err)
	state := decodeState(t, payload)

	assert.Equal(t, float64(40), state["battery_percentage"])
	assert.Equal(t, "connect_cable", state["charging_state"])
	assert.NotContains(t, state, "range", "sensors without data stay out of the payload")
	assert.NotContains(t, state, "milage")
	assert.NotContains(t, state, "car_captured")
	assert.NotContains(t, state, "software_version")
}

func TestBuildStatePayloadEmptySnapshot(t *testing.T) {
	tx := NewMQTTTransmitter(nil, "TMB123", fullCaps(), "homeassistant", testLogger())

	payload, err := buildStatePayload(tx.descriptors, &vehicle.Snapshot{VIN: "TMB123"})
	require.NoError(t, err)
	assert.Empty(t, decodeState(t, payload))
}

func TestCapabilityFilteringAtConstruction(t *testing.T) {
	full := NewMQTTTransmitter(nil, "TMB123", fullCaps(), "homeassistant", testLogger())
	stateOnly := NewMQTTTransmitter(nil, "TMB123", vehicle.NewCapabilities(vehicle.CapabilityState), "homeassistant", testLogger())

	keys := func(tx *MQTTTransmitter) []string {
		var out []string
		for _, d := range tx.descriptors {
			out = append(out, d.Key)
		}
		return out
	}

	assert.Contains(t, keys(full), "battery_percentage")
	assert.Contains(t, keys(full), "milage")

	// Without CHARGING the battery sensors never exist, even if the cloud
	// later returns charging data.
	assert.NotContains(t, keys(stateOnly), "battery_percentage")
	assert.NotContains(t, keys(stateOnly), "milage")
	assert.Contains(t, keys(stateOnly), "car_captured")
	assert.Contains(t, keys(stateOnly), "software_version")

	payload, err := buildStatePayload(stateOnly.descriptors, fullSnapshot())
	require.NoError(t, err)
	state := decodeState(t, payload)
	assert.NotContains(t, state, "battery_percentage")
	assert.Contains(t, state, "car_captured")
}

func TestDiscoveryConfigFields(t *testing.T) {
	tx := NewMQTTTransmitter(nil, "TMB123", fullCaps(), "homeassistant", testLogger())
	snap := fullSnapshot()
	device := tx.deviceInfo(snap)

	var battery *HADiscoveryConfig
	for _, desc := range tx.descriptors {
		if desc.Key == "battery_percentage" {
			cfg := tx.discoveryConfig(desc, snap, device)
			battery = &cfg
			break
		}
	}
	require.NotNil(t, battery)

	assert.Equal(t, "skoda_tmb123_battery_percentage", battery.UniqueID)
	assert.Equal(t, "skoda_car/tmb123/state", battery.StateTopic)
	assert.Equal(t, "skoda_car/tmb123/availability", battery.AvailabilityTopic)
	assert.Equal(t, "{{ value_json.battery_percentage }}", battery.ValueTemplate)
	assert.Equal(t, "battery", battery.DeviceClass)
	assert.Equal(t, "%", battery.UnitOfMeasurement)
	assert.Equal(t, "mdi:battery-charging-70", battery.Icon, "icon follows the snapshot")
	assert.Equal(t, []string{"skoda_car_tmb123"}, battery.Device.Identifiers)
}

func TestDeviceInfoFallsBackBeforeFirstRefresh(t *testing.T) {
	tx := NewMQTTTransmitter(nil, "TMB123", fullCaps(), "homeassistant", testLogger())

	bare := tx.deviceInfo(nil)
	assert.Equal(t, "Skoda TMB123", bare.Name)
	assert.Equal(t, "Skoda", bare.Model)
	assert.Empty(t, bare.SWVersion)

	full := tx.deviceInfo(fullSnapshot())
	assert.Equal(t, "Skoda Enyaq", full.Name)
	assert.Equal(t, "Enyaq", full.Model)
	assert.Equal(t, "3.2.1", full.SWVersion)
}

func TestRenderValueFormatsTimestamps(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-01T12:30:00Z", renderValue(ts))
	assert.Equal(t, 42, renderValue(42))
	assert.Equal(t, "ac", renderValue("ac"))
}
