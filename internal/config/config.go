// Package config loads the server's YAML configuration file, applying
// defaults for every field the file omits.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultAddr and DefaultPort are used when the config file omits addr/port.
const (
	DefaultAddr = "127.0.0.1"
	DefaultPort = uint16(7777)
)

// Config is the recognized set of YAML options, per the configuration
// file's documented surface.
type Config struct {
	Addr  string `yaml:"addr"`
	Port  uint16 `yaml:"port"`
	World string `yaml:"world"`
}

// Load reads a config file at path and fills in defaults for omitted
// addr/port; it does not validate (see Validate). A missing file is not an
// error: Load returns defaults with World left empty, since the world path
// may instead arrive via the --world CLI override.
func Load(path string) (*Config, error) {
	cfg := &Config{Addr: DefaultAddr, Port: DefaultPort}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	return cfg, nil
}

// Validate checks that required fields are present, independent of any
// CLI-flag overrides that may fill them in afterward.
func (c *Config) Validate() error {
	if c.World == "" {
		return fmt.Errorf("config: world path is required")
	}
	return nil
}
