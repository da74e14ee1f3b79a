package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the engine defaults and the edges' wiring. The engine itself
// never reads it; the server and CLI translate it into explicit call inputs.
type Config struct {
	TimeZone string        `yaml:"time_zone" json:"time_zone"`
	Glance   GlanceConfig  `yaml:"glance" json:"glance"`
	Server   ServerConfig  `yaml:"server" json:"server"`
	Storage  StorageConfig `yaml:"storage" json:"storage"`
}

type GlanceConfig struct {
	// TopN is the display cap for the glance surface.
	TopN int `yaml:"top_n" json:"top_n"`
	// Privacy is one of visible, masked, hidden.
	Privacy string `yaml:"privacy" json:"privacy"`
	// PinnedProject scopes the glance to one project when set.
	PinnedProject string `yaml:"pinned_project" json:"pinned_project"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `yaml:"driver" json:"driver"`
	Path   string `yaml:"path" json:"path"`
}

func Default() Config {
	return Config{
		TimeZone: "UTC",
		Glance: GlanceConfig{
			TopN:    3,
			Privacy: "visible",
		},
		Server: ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "data/taskglance.db",
		},
	}
}

// Load reads a YAML config file on top of the defaults. A missing file is
// not an error; you just get the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("time_zone: %w", err)
	}
	switch c.Glance.Privacy {
	case "visible", "masked", "hidden":
	default:
		return fmt.Errorf("glance.privacy: unknown mode %q", c.Glance.Privacy)
	}
	if c.Glance.TopN < 1 {
		return fmt.Errorf("glance.top_n must be at least 1, got %d", c.Glance.TopN)
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	return nil
}

// Location resolves the configured time zone. Call Validate first; this
// falls back to UTC rather than guessing on a bad name.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
