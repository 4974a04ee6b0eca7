// tasgoctl - Tasmota device monitor and control daemon
//
// tasgoctl connects to the configured MQTT broker, attaches every device
// named in the configuration and logs their state changes as structured
// events. Devices reachable only over HTTP get their state polled once
// at startup. With no devices configured it runs a discovery pass and
// reports the device topics it heard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tasgo-io/tasgo/broker"
	"github.com/tasgo-io/tasgo/command"
	"github.com/tasgo-io/tasgo/config"
	"github.com/tasgo-io/tasgo/device"
	"github.com/tasgo-io/tasgo/logging"
	"github.com/tasgo-io/tasgo/protocol"
	"github.com/tasgo-io/tasgo/state"
	"github.com/tasgo-io/tasgo/types"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting tasgoctl",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging).With("version", version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker
	b, err := broker.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := b.Shutdown(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	b.SetLogger(log.Component("broker"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
	)

	// No devices configured: discover, attach whatever answers and
	// watch them like configured devices.
	if len(cfg.Devices) == 0 && len(cfg.HTTP) == 0 {
		log.Info("no devices configured, discovering", "window", cfg.GetDiscoveryTimeout())
		sessions, err := b.DiscoverAndAttach(ctx, cfg.GetDiscoveryTimeout())
		if err != nil {
			return fmt.Errorf("discovery: %w", err)
		}
		for _, session := range sessions {
			dev := device.New(session, device.BasicRelay())
			watchDevice(dev, session, session.Topic(), log)
			log.Info("discovered device", "topic", session.Topic())
		}
		log.Info("discovery complete", "devices", len(sessions))
	}

	// Attach configured MQTT devices
	for _, devCfg := range cfg.Devices {
		session, err := b.Attach(devCfg.Topic)
		if err != nil {
			return fmt.Errorf("attaching %q: %w", devCfg.Topic, err)
		}
		caps := device.FromPresetName(devCfg.Capabilities, devCfg.Relays)
		dev := device.New(session, caps)
		watchDevice(dev, session, devCfg.Topic, log)
		log.Info("device attached",
			"topic", devCfg.Topic,
			"relays", caps.Relays,
			"dimming", caps.Dimming,
			"energy", caps.Energy,
		)
	}

	// Poll HTTP-only devices once at startup
	for _, devCfg := range cfg.HTTP {
		if pollErr := pollHTTPDevice(ctx, devCfg, log); pollErr != nil {
			log.Warn("HTTP device unreachable", "name", devCfg.Name, "error", pollErr)
		}
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("tasgoctl stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses TASGO_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TASGO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// watchDevice registers logging callbacks for everything the device
// reports.
func watchDevice(dev *device.Device, session *broker.Session, topic string, log *logging.Logger) {
	devLog := log.With("topic", topic)

	dev.OnPowerChanged(func(idx types.PowerIndex, power types.PowerState) {
		devLog.Info("power changed", "relay", int(idx), "state", power.String())
	})
	dev.OnDimmerChanged(func(level types.Dimmer) {
		devLog.Info("dimmer changed", "level", int(level))
	})
	dev.OnColorChanged(func(color types.HsbColor) {
		devLog.Info("color changed", "hsb", color.String())
	})
	dev.OnColorTempChanged(func(ct types.ColorTemp) {
		devLog.Info("color temperature changed", "mireds", int(ct), "kelvin", ct.Kelvin())
	})
	dev.OnEnergyUpdated(func(reading state.EnergyReading) {
		devLog.Info("energy reading",
			"power_w", reading.Power,
			"voltage_v", reading.Voltage,
			"today_kwh", reading.Today,
		)
	})

	registry := dev.Registry()
	registry.OnConnected(func() {
		devLog.Info("device online")
	})
	registry.OnDisconnected(func() {
		devLog.Warn("device offline")
	})
	registry.OnReconnected(func() {
		devLog.Info("broker connection restored, refreshing state")
		refreshState(session, devLog)
	})
}

// refreshState queries the device after a reconnect to close the gap
// left by telemetry missed while offline.
func refreshState(session *broker.Session, log *logging.Logger) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := session.SendCommand(ctx, command.QueryState()); err != nil {
			log.Warn("state refresh failed", "error", err)
		}
	}()
}

// pollHTTPDevice queries one web-only device's state and logs it.
func pollHTTPDevice(ctx context.Context, devCfg config.HTTPDeviceConfig, log *logging.Logger) error {
	client, err := protocol.NewHTTPClient(protocol.HTTPOptions{
		Address:  devCfg.Address,
		Username: devCfg.Username,
		Password: devCfg.Password,
		Timeout:  time.Duration(devCfg.Timeout) * time.Second,
	})
	if err != nil {
		return err
	}
	dev := device.New(client, device.BasicRelay())
	defer dev.Close()

	st, err := dev.QueryState(ctx)
	if err != nil {
		return err
	}
	log.Info("HTTP device polled",
		"name", devCfg.Name,
		"address", devCfg.Address,
		"on", st.IsOn(),
	)
	return nil
}
