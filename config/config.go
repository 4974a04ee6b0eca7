package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for a tasgo deployment.
// Configuration is loaded from YAML with environment variable overrides
// for the values that usually come from secrets.
type Config struct {
	MQTT      MQTTConfig         `yaml:"mqtt"`
	HTTP      []HTTPDeviceConfig `yaml:"http_devices"`
	Devices   []DeviceConfig     `yaml:"devices"`
	Discovery DiscoveryConfig    `yaml:"discovery"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// CommandTimeout bounds the wait for a single-message command
	// reply, in seconds.
	CommandTimeout int `yaml:"command_timeout"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`

	// ClientID identifies this client to the broker. Leave empty to
	// get a generated "tasgo-<uuid>" ID, which avoids two processes
	// evicting each other's session.
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// HTTPDeviceConfig describes one device reached over its web interface.
type HTTPDeviceConfig struct {
	// Name is a caller-chosen identifier for the device.
	Name string `yaml:"name"`

	// Address is the device's host, host:port or http(s):// URL.
	Address string `yaml:"address"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Timeout bounds each request, in seconds. Zero uses the transport
	// default.
	Timeout int `yaml:"timeout"`
}

// DeviceConfig describes one MQTT device.
type DeviceConfig struct {
	// Topic is the device's configured MQTT topic (the <topic> part of
	// cmnd/<topic>/...).
	Topic string `yaml:"topic"`

	// Capabilities optionally names a capability preset ("relay",
	// "dimmer", "cct", "rgbcct", "energy"). Empty means relay.
	Capabilities string `yaml:"capabilities"`

	// Relays is the number of relay outputs, for multi-channel devices.
	Relays int `yaml:"relays"`
}

// DiscoveryConfig contains device discovery settings.
type DiscoveryConfig struct {
	// Timeout is the collection window in seconds. Discovery always
	// terminates when it elapses.
	Timeout int `yaml:"timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern TASGO_SECTION_KEY, e.g.
// TASGO_MQTT_HOST, TASGO_MQTT_PASSWORD.
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config with sensible defaults: a plaintext local
// broker, QoS 1, 5 second command timeout, 10 second discovery window.
func Default() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			CommandTimeout: 5,
		},
		Discovery: DiscoveryConfig{
			Timeout: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASGO_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("TASGO_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("TASGO_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.CommandTimeout < 1 {
		errs = append(errs, "mqtt.command_timeout must be at least 1 second")
	}
	if c.Discovery.Timeout < 1 {
		errs = append(errs, "discovery.timeout must be at least 1 second")
	}

	for i, dev := range c.Devices {
		if dev.Topic == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].topic is required", i))
		}
		if strings.ContainsAny(dev.Topic, "+#/") {
			errs = append(errs, fmt.Sprintf("devices[%d].topic must be a single literal level", i))
		}
	}
	for i, dev := range c.HTTP {
		if dev.Address == "" {
			errs = append(errs, fmt.Sprintf("http_devices[%d].address is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GetCommandTimeout returns the single-reply wait as a Duration.
func (c *MQTTConfig) GetCommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeout) * time.Second
}

// GetDiscoveryTimeout returns the discovery window as a Duration.
func (c *Config) GetDiscoveryTimeout() time.Duration {
	return time.Duration(c.Discovery.Timeout) * time.Second
}
