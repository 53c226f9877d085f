package config

import "time"

// Central place for all application-wide timing constants. Changing a value
// here immediately affects all components that import
// github.com/jkaberg/skoda-hass/internal/config.

const (
	// Polling / transmission intervals
	CloudPollInterval    = 5 * time.Minute  // Refresh snapshots from the vehicle cloud
	MQTTTransmitInterval = 60 * time.Second // Publish data to MQTT

	// Operation time-outs (to avoid blocking goroutines)
	CloudTimeout = 30 * time.Second // Vehicle cloud API call
	MQTTTimeout  = 5 * time.Second  // MQTT publish
)
