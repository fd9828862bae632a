package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
	// SessionMaxAge is how long an idle session survives before cleanup
	SessionMaxAge time.Duration
	// SerialPort optionally attaches a local modem at startup
	// (e.g. "/dev/ttyUSB2"); empty disables the local session
	SerialPort string
	// BaudRate is the baud rate for the local serial modem
	BaudRate int
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.LogLevel = "info"
		c.SessionMaxAge = 30 * time.Minute
		c.BaudRate = 115200
		return nil
	}
}

// fileConfig is the YAML shape of the optional config file. Pointer
// fields distinguish "absent" from zero values.
type fileConfig struct {
	BindAddress   *string `yaml:"bind_address"`
	LogLevel      *string `yaml:"log_level"`
	SessionMaxAge *string `yaml:"session_max_age"`
	SerialPort    *string `yaml:"serial_port"`
	BaudRate      *int    `yaml:"baud_rate"`
}

// WithFile loads configuration from a YAML file. An empty path is a
// no-op so the option can always sit in the chain.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}

		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}

		if fc.BindAddress != nil {
			c.BindAddress = *fc.BindAddress
		}
		if fc.LogLevel != nil {
			c.LogLevel = *fc.LogLevel
		}
		if fc.SessionMaxAge != nil {
			d, err := time.ParseDuration(*fc.SessionMaxAge)
			if err != nil {
				return fmt.Errorf("parse session_max_age: %w", err)
			}
			c.SessionMaxAge = d
		}
		if fc.SerialPort != nil {
			c.SerialPort = *fc.SerialPort
		}
		if fc.BaudRate != nil {
			c.BaudRate = *fc.BaudRate
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if maxAge := os.Getenv("SESSION_MAX_AGE"); maxAge != "" {
			if d, err := time.ParseDuration(maxAge); err == nil {
				c.SessionMaxAge = d
			}
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "log-level":
				c.LogLevel = f.Value.String()
			case "session-max-age":
				if d, err := time.ParseDuration(f.Value.String()); err == nil {
					c.SessionMaxAge = d
				}
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			}

		})
		return nil
	}

}
