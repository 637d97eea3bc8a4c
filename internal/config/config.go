// Package config provides configuration loading and validation for the radio simulator.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to settings left empty in the configuration file.
const (
	DefaultBaud            = 115200
	DefaultMaxFailures     = 3
	DefaultLockoutDuration = "60s"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
)

// Config represents the radio simulator configuration.
type Config struct {
	Device    DeviceSettings    `yaml:"device"`
	Transport TransportSettings `yaml:"transport"`
	Lockout   LockoutSettings   `yaml:"lockout"`
	Logging   LoggingSettings   `yaml:"logging"`
}

// DeviceSettings describes the simulated radio.
type DeviceSettings struct {
	Name        string `yaml:"name"`
	Credentials string `yaml:"credentials"`
}

// TransportSettings selects where the simulator listens. Exactly one of
// Listen and SerialPort must be set.
type TransportSettings struct {
	Listen     string `yaml:"listen"`
	SerialPort string `yaml:"serial_port"`
	Baud       int    `yaml:"baud"`
}

// LockoutSettings configures brute force protection.
type LockoutSettings struct {
	MaxFailures int    `yaml:"max_failures"`
	Duration    string `yaml:"duration"`
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads, defaults and validates the configuration file.
//
//nolint:gosec // G304: Config path is from command-line argument
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Allow environment variable override for the listen address (useful for tests)
	if listen := os.Getenv("RADIOSIM_LISTEN"); listen != "" {
		cfg.Transport.Listen = listen
		cfg.Transport.SerialPort = ""
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Device.Name == "" {
		c.Device.Name = "radio"
	}
	if c.Transport.Baud == 0 {
		c.Transport.Baud = DefaultBaud
	}
	if c.Lockout.MaxFailures == 0 {
		c.Lockout.MaxFailures = DefaultMaxFailures
	}
	if c.Lockout.Duration == "" {
		c.Lockout.Duration = DefaultLockoutDuration
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// GetLockoutDuration parses and returns the lockout duration.
func (c *Config) GetLockoutDuration() (time.Duration, error) {
	duration, err := time.ParseDuration(c.Lockout.Duration)
	if err != nil {
		return 0, fmt.Errorf("invalid lockout duration: %w", err)
	}

	if duration < time.Second {
		return 0, fmt.Errorf("lockout duration must be at least 1 second")
	}

	return duration, nil
}
