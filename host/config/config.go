// Package config loads the motorctl host configuration from a YAML file with
// environment variable overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid motorctl configuration")

// Config is the host side configuration of the motor link
type Config struct {
	Device        string `yaml:"device" env:"HBRIDGE_DEVICE"`
	Baud          int    `yaml:"baud" env:"HBRIDGE_BAUD"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`

	// MaxDurationMs is sent to the firmware as the command watchdog period,
	// 0 leaves the watchdog off
	MaxDurationMs int `yaml:"max_duration_ms" env:"HBRIDGE_MAX_DURATION_MS"`

	// KeepaliveMs is how often the last drive command is repeated,
	// 0 disables repeating
	KeepaliveMs int `yaml:"keepalive_ms" env:"HBRIDGE_KEEPALIVE_MS"`
}

// Location of the config file, read before the file itself
type Location struct {
	Path string `env:"HBRIDGE_CONFIG" envDefault:"motorctl.yaml"`
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Device:        "/dev/ttyACM0",
		Baud:          115200,
		ReadTimeoutMs: 100,
		MaxDurationMs: 500,
		KeepaliveMs:   200,
	}
}

// Path returns flagPath if set, otherwise HBRIDGE_CONFIG or the default name
func Path(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	var loc Location
	if err := env.Parse(&loc); err != nil {
		return "", fmt.Errorf("failed to parse environment: %w", err)
	}
	return loc.Path, nil
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error when optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return cfg, fmt.Errorf("unable to unmarshal %s: %w", path, err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("unable to read %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate rejects values the link cannot use
func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("%w: device is empty", ErrInvalidConfig)
	}
	if c.Baud <= 0 {
		return fmt.Errorf("%w: baud must be positive, got %d", ErrInvalidConfig, c.Baud)
	}
	if c.ReadTimeoutMs < 0 || c.MaxDurationMs < 0 || c.KeepaliveMs < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	if c.MaxDurationMs > 0 && c.KeepaliveMs >= c.MaxDurationMs {
		return fmt.Errorf("%w: keepalive_ms (%d) must be shorter than max_duration_ms (%d)",
			ErrInvalidConfig, c.KeepaliveMs, c.MaxDurationMs)
	}
	return nil
}

// MaxDuration returns the watchdog period
func (c Config) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationMs) * time.Millisecond
}

// Keepalive returns the repeat interval for drive commands
func (c Config) Keepalive() time.Duration {
	return time.Duration(c.KeepaliveMs) * time.Millisecond
}
