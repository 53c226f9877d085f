package vehicle

// CapabilityID tags a feature the vehicle backend supports. The backend
// reports the set per VIN; sensors declare which tags they need and are
// skipped entirely when one is missing.
type CapabilityID string

const (
	CapabilityCharging                CapabilityID = "CHARGING"
	CapabilityVehicleHealthInspection CapabilityID = "VEHICLE_HEALTH_INSPECTION"
	CapabilityState                   CapabilityID = "STATE"
	CapabilityParkingPosition         CapabilityID = "PARKING_POSITION"
)

// Capabilities is the set of features a single vehicle supports.
type Capabilities map[CapabilityID]struct{}

// NewCapabilities builds a set from the given IDs.
func NewCapabilities(ids ...CapabilityID) Capabilities {
	caps := make(Capabilities, len(ids))
	for _, id := range ids {
		caps[id] = struct{}{}
	}
	return caps
}

// Has reports whether the capability is present.
func (c Capabilities) Has(id CapabilityID) bool {
	_, ok := c[id]
	return ok
}

// HasAll reports whether every given capability is present.
func (c Capabilities) HasAll(ids ...CapabilityID) bool {
	for _, id := range ids {
		if !c.Has(id) {
			return false
		}
	}
	return true
}
