package sensors

import "github.com/jkaberg/skoda-hass/internal/vehicle"

// Descriptor is the static metadata for one sensor kind plus its pure
// derivation functions. Descriptors are fixed at definition time and never
// mutated; evaluation is a read of the current snapshot with no side effects.
//
// Value returns the native value for the snapshot, or nil when any link of
// the optional-field chain is absent. Missing data is a legitimate steady
// state, not an error, so Value must never panic on a nil sub-record.
//
// DynamicIcon, when set, picks an icon from the snapshot and must return a
// syntactically valid mdi: reference even with no data.
type Descriptor struct {
	Key          string
	Name         string
	Unit         string
	DeviceClass  string
	StateClass   string
	Icon         string
	Options      []string
	RequiredCaps []vehicle.CapabilityID

	Value       func(s *vehicle.Snapshot) any
	DynamicIcon func(s *vehicle.Snapshot) string
}

// IconFor resolves the icon for the given snapshot, falling back to the
// static icon for sensors without dynamic icon logic.
func (d Descriptor) IconFor(s *vehicle.Snapshot) string {
	if d.DynamicIcon != nil {
		return d.DynamicIcon(s)
	}
	return d.Icon
}

// Available reports whether the sensor applies to a vehicle with the given
// capability set. A sensor lacking any required capability is not registered
// at all, regardless of snapshot content.
func (d Descriptor) Available(caps vehicle.Capabilities) bool {
	return caps.HasAll(d.RequiredCaps...)
}

// Device/state class names as Home Assistant expects them on the wire.
const (
	DeviceClassBattery   = "battery"
	DeviceClassPower     = "power"
	DeviceClassDistance  = "distance"
	DeviceClassDuration  = "duration"
	DeviceClassTimestamp = "timestamp"
	DeviceClassEnum      = "enum"

	StateClassMeasurement     = "measurement"
	StateClassTotalIncreasing = "total_increasing"
)
