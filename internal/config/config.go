package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all configuration options for the skoda-hass daemon.
type Config struct {
	// Account credentials for the vehicle cloud
	Email    string `json:"email"`
	Password string `json:"password"`

	// Vehicle selection; empty means every vehicle in the garage
	VIN string `json:"vin"`

	// Cloud API
	BaseURL string `json:"base_url"` // override for testing against a mock backend

	// MQTT / Home Assistant
	MQTTUrl         string `json:"mqtt_url"`         // supports ws://, wss://, mqtt://, mqtts://
	DiscoveryPrefix string `json:"discovery_prefix"` // Home Assistant discovery prefix

	// Application
	Verbose bool `json:"verbose"`

	// Intervals; zero values fall back to the defaults below
	PollInterval time.Duration `json:"poll_interval"`
	MQTTInterval time.Duration `json:"mqtt_interval"`
}

// GetDefaultConfig returns a configuration with sensible defaults.
func GetDefaultConfig() *Config {
	return &Config{
		BaseURL:         "",
		DiscoveryPrefix: "homeassistant",
		PollInterval:    CloudPollInterval,
		MQTTInterval:    MQTTTransmitInterval,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Email == "" || c.Password == "" {
		return fmt.Errorf("email and password are required")
	}

	if c.MQTTUrl != "" {
		if !strings.HasPrefix(c.MQTTUrl, "ws://") &&
			!strings.HasPrefix(c.MQTTUrl, "wss://") &&
			!strings.HasPrefix(c.MQTTUrl, "mqtt://") &&
			!strings.HasPrefix(c.MQTTUrl, "mqtts://") {
			return fmt.Errorf("MQTT URL must use supported protocol (ws://, wss://, mqtt://, or mqtts://)")
		}
	}

	if c.PollInterval <= 0 {
		c.PollInterval = CloudPollInterval
	}
	if c.MQTTInterval <= 0 {
		c.MQTTInterval = MQTTTransmitInterval
	}

	return nil
}

// HasMQTT returns true if MQTT is configured.
func (c *Config) HasMQTT() bool {
	return c.MQTTUrl != ""
}
