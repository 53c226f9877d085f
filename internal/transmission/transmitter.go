package transmission

import "github.com/jkaberg/skoda-hass/internal/vehicle"

// Transmitter defines the interface for publishing vehicle snapshots.
type Transmitter interface {
	Transmit(snap *vehicle.Snapshot) error
	IsConnected() bool
}
