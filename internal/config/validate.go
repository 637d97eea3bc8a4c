package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strings"
)

// Validate performs comprehensive validation on the configuration.
func Validate(cfg *Config) error {
	if err := validateDevice(cfg); err != nil {
		return fmt.Errorf("device validation failed: %w", err)
	}

	if err := validateTransport(cfg); err != nil {
		return fmt.Errorf("transport validation failed: %w", err)
	}

	if err := validateLockout(cfg); err != nil {
		return fmt.Errorf("lockout validation failed: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	return nil
}

func validateDevice(cfg *Config) error {
	if cfg.Device.Credentials == "" {
		return fmt.Errorf("device.credentials is required")
	}

	if _, err := os.Stat(cfg.Device.Credentials); os.IsNotExist(err) {
		return fmt.Errorf("device.credentials does not exist: %s", cfg.Device.Credentials)
	}

	return nil
}

func validateTransport(cfg *Config) error {
	t := cfg.Transport

	if t.Listen == "" && t.SerialPort == "" {
		return fmt.Errorf("one of transport.listen or transport.serial_port is required")
	}

	if t.Listen != "" && t.SerialPort != "" {
		return fmt.Errorf("transport.listen and transport.serial_port are mutually exclusive")
	}

	if t.Listen != "" {
		if _, _, err := net.SplitHostPort(t.Listen); err != nil {
			return fmt.Errorf("transport.listen must be host:port: %w", err)
		}
	}

	if t.Baud <= 0 {
		return fmt.Errorf("transport.baud must be positive")
	}

	return nil
}

func validateLockout(cfg *Config) error {
	if cfg.Lockout.MaxFailures < 1 || cfg.Lockout.MaxFailures > 100 {
		return fmt.Errorf("lockout.max_failures must be between 1 and 100")
	}

	if _, err := cfg.GetLockoutDuration(); err != nil {
		return err
	}

	return nil
}

func validateLogging(cfg *Config) error {
	// Validate log level
	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %s", strings.Join(validLevels, ", "))
	}

	// Validate log format
	validFormats := []string{"json", "human"}
	if !slices.Contains(validFormats, cfg.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: %s", strings.Join(validFormats, ", "))
	}

	return nil
}
