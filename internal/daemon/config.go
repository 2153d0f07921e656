// Package daemon manages the reviewforge daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// TelemetryConfig controls observability.
type TelemetryConfig struct {
	Prometheus     bool `toml:"prometheus"`
	PrometheusPort int  `toml:"prometheus_port"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	home := reviewforgeHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(home, "reviewforge.log"),
		},
		Telemetry: TelemetryConfig{
			Prometheus:     false,
			PrometheusPort: 9090,
		},
	}
}

// LoadConfig reads config from ~/.reviewforge/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(reviewforgeHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.reviewforge/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(reviewforgeHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// reviewforgeHome returns the reviewforge data directory.
func reviewforgeHome() string {
	if env := os.Getenv("REVIEWFORGE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".reviewforge")
}

// ReviewforgeHome is exported for use by other packages.
func ReviewforgeHome() string {
	return reviewforgeHome()
}
