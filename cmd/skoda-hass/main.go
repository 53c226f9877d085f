package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jkaberg/skoda-hass/internal/config"
	"github.com/jkaberg/skoda-hass/internal/coordinator"
	"github.com/jkaberg/skoda-hass/internal/flow"
	"github.com/jkaberg/skoda-hass/internal/mqtt"
	"github.com/jkaberg/skoda-hass/internal/skoda"
	"github.com/jkaberg/skoda-hass/internal/transmission"
)

// version is injected at build time via ldflags
var version = "dev"

func main() {
	cfg := parseFlags()

	logger := setupLogger(cfg.Verbose)

	logger.WithFields(logrus.Fields{
		"version":  version,
		"poll":     cfg.PollInterval,
		"mqtt_int": cfg.MQTTInterval,
	}).Info("Starting skoda-hass")

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("Shutdown signal received")
		cancel()
	}()

	// Cloud session ---------------------------------------------------------
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = skoda.DefaultBaseURL
	}
	client := skoda.NewClient(baseURL, config.CloudTimeout, logger)

	entries := flow.NewRegistry()
	setupFlow := flow.New(client, entries, logger)
	if result := setupFlow.StepUser(ctx, cfg.Email, cfg.Password); result.ErrorCode != "" {
		logger.WithField("error", result.ErrorCode).Fatal("Credential validation failed")
	}

	vins, err := client.ListVehicles(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Failed to list vehicles")
	}
	if cfg.VIN != "" {
		vins = filterVIN(vins, cfg.VIN)
		if len(vins) == 0 {
			logger.WithField("vin", cfg.VIN).Fatal("Configured VIN not found in garage")
		}
	}
	if len(vins) == 0 {
		logger.Fatal("No vehicles in garage")
	}

	// MQTT ------------------------------------------------------------------
	var mqttClient *mqtt.Client
	if cfg.HasMQTT() {
		mqttClient, err = mqtt.NewClient(cfg.MQTTUrl, strings.ToLower(vins[0]), logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create MQTT client")
		}
		defer mqttClient.Disconnect(250)
	} else {
		logger.Warn("No MQTT URL configured; data will only be logged")
	}

	// Coordinators, one per vehicle ----------------------------------------
	grp, ctx := errgroup.WithContext(ctx)
	for _, vin := range vins {
		_, caps, _, err := client.Vehicle(ctx, vin)
		if err != nil {
			logger.WithError(err).WithField("vin", vin).Fatal("Failed to fetch vehicle capabilities")
		}

		var txs []transmission.Transmitter
		if mqttClient != nil {
			txs = append(txs, transmission.NewMQTTTransmitter(mqttClient, vin, caps, cfg.DiscoveryPrefix, logger))
		}

		coord := coordinator.New(client, vin, caps, cfg.PollInterval, cfg.MQTTInterval, txs, logger)
		logger.WithFields(logrus.Fields{
			"vin":          vin,
			"capabilities": len(caps),
		}).Info("Vehicle coordinator ready")

		grp.Go(func() error { return coord.Run(ctx) })
	}

	if err := grp.Wait(); err != nil {
		logger.WithError(err).Warn("Coordinator group exited")
	}
	logger.Info("skoda-hass stopped")
}

// -----------------------------------------------------------------------------
// Helpers & Flags
// -----------------------------------------------------------------------------

func parseFlags() *config.Config {
	cfg := config.GetDefaultConfig()

	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.StringVar(&cfg.Email, "email", getEnv("SKODA_HASS_EMAIL", cfg.Email), "Account email")
	flag.StringVar(&cfg.Password, "password", getEnv("SKODA_HASS_PASSWORD", cfg.Password), "Account password")
	flag.StringVar(&cfg.VIN, "vin", getEnv("SKODA_HASS_VIN", cfg.VIN), "Only bridge this VIN (default: all)")
	flag.StringVar(&cfg.BaseURL, "base-url", getEnv("SKODA_HASS_BASE_URL", cfg.BaseURL), "Cloud API base URL override")
	flag.StringVar(&cfg.MQTTUrl, "mqtt-url", getEnv("SKODA_HASS_MQTT_URL", cfg.MQTTUrl), "MQTT URL")
	flag.StringVar(&cfg.DiscoveryPrefix, "discovery-prefix", getEnv("SKODA_HASS_DISCOVERY_PREFIX", cfg.DiscoveryPrefix), "HA discovery prefix")
	flag.BoolVar(&cfg.Verbose, "verbose", getEnv("SKODA_HASS_VERBOSE", "false") == "true", "Verbose logging")

	pollIntervalStr := flag.String("poll-interval", getEnv("SKODA_HASS_POLL_INTERVAL", ""), "Cloud poll interval (e.g. 5m)")
	mqttIntervalStr := flag.String("mqtt-interval", getEnv("SKODA_HASS_MQTT_INTERVAL", ""), "MQTT interval (e.g. 60s)")

	flag.Parse()

	if *showVersion {
		fmt.Printf("skoda-hass %s\n", version)
		os.Exit(0)
	}

	if *pollIntervalStr != "" {
		if d, err := time.ParseDuration(*pollIntervalStr); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}
	if *mqttIntervalStr != "" {
		if d, err := time.ParseDuration(*mqttIntervalStr); err == nil && d > 0 {
			cfg.MQTTInterval = d
		}
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func setupLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

func filterVIN(vins []string, want string) []string {
	want = strings.ToUpper(strings.TrimSpace(want))
	for _, vin := range vins {
		if strings.ToUpper(vin) == want {
			return []string{vin}
		}
	}
	return nil
}
