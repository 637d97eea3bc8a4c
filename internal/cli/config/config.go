package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	defaultBaud    = 115200
	configFileName = "config.yaml"
	envPort        = "RADIOUNLOCK_PORT"
	envBaud        = "RADIOUNLOCK_BAUD"
	envAddress     = "RADIOUNLOCK_ADDRESS"
	maxBaud        = 4000000
)

// Config holds the configuration for the radiounlock CLI tool.
// A radio is reached either over a serial port or over a TCP address.
type Config struct {
	Port    string `yaml:"port,omitempty"`
	Baud    int    `yaml:"baud,omitempty"`
	Address string `yaml:"address,omitempty"`
}

// Load loads configuration from file, environment variables, and applies defaults.
// Precedence order (highest to lowest):
// 1. Environment variables
// 2. Config file
// 3. Defaults
//
// Note: Command-line flags are applied by individual commands after calling Load().
func Load() (*Config, error) {
	cfg := &Config{
		Baud: defaultBaud,
	}

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromFile() error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(configPath) // #nosec G304 - configPath is user config directory
	if err != nil {
		return err
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	// Merge file config (only non-zero values)
	if fileConfig.Port != "" {
		c.Port = fileConfig.Port
	}
	if fileConfig.Baud != 0 {
		c.Baud = fileConfig.Baud
	}
	if fileConfig.Address != "" {
		c.Address = fileConfig.Address
	}

	return nil
}

func (c *Config) loadFromEnv() {
	if port := os.Getenv(envPort); port != "" {
		c.Port = port
	}

	if baudStr := os.Getenv(envBaud); baudStr != "" {
		if baud, err := strconv.Atoi(baudStr); err == nil {
			c.Baud = baud
		}
	}

	if address := os.Getenv(envAddress); address != "" {
		c.Address = address
	}
}

// ApplyFlags applies command-line flag values to the configuration.
// This should be called after Load() to apply the highest priority values.
// A port flag takes the radio off any configured address and vice versa.
func (c *Config) ApplyFlags(port string, baud int, address string) {
	if port != "" {
		c.Port = port
		c.Address = ""
	}
	if baud != 0 {
		c.Baud = baud
	}
	if address != "" {
		c.Address = address
		c.Port = ""
	}
}

// Validate validates the configuration values.
// An empty target is allowed here; commands that talk to a radio call RequireTarget.
func (c *Config) Validate() error {
	if c.Baud < 1 || c.Baud > maxBaud {
		return fmt.Errorf("invalid baud rate %d: must be between 1 and %d", c.Baud, maxBaud)
	}

	if c.Port != "" && c.Address != "" {
		return errors.New("port and address are mutually exclusive")
	}

	if c.Address != "" {
		if _, _, err := net.SplitHostPort(c.Address); err != nil {
			return fmt.Errorf("invalid address %q: %w", c.Address, err)
		}
	}

	return nil
}

// RequireTarget checks that a serial port or TCP address is set and returns an error
// with a helpful message if not.
func (c *Config) RequireTarget() error {
	if c.Port == "" && c.Address == "" {
		return fmt.Errorf("radio not specified\n"+
			"Use --port or --address flags, %s or %s environment variables, or add 'port:' to config file:\n"+
			"  Config file location: <UserConfigDir>/radiounlock/config.yaml\n"+
			"  Example: port: /dev/ttyUSB0", envPort, envAddress)
	}
	return nil
}

// Target returns the identifier of the configured radio: the serial port name or the
// TCP address.
func (c *Config) Target() string {
	if c.Address != "" {
		return "tcp://" + c.Address
	}
	return "serial://" + c.Port
}

// Save writes the connection settings to the user config file so later commands
// can omit them.
func (c *Config) Save() error {
	configDir, err := UserConfigDir()
	if err != nil {
		return err
	}
	if err := EnsureDir(configDir); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(configDir, configFileName)
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func configFilePath() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}
