package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/slotbot/core/config"
	coredatabase "github.com/m3rciful/slotbot/core/database"
	"github.com/m3rciful/slotbot/internal/booking"
	"github.com/m3rciful/slotbot/internal/storage"
)

// AutosaveConfig controls the periodic snapshot job.
type AutosaveConfig struct {
	// Spec is a cron schedule. Empty disables autosave.
	Spec string `yaml:"spec" envconfig:"AUTOSAVE_SPEC"`
}

// Config aggregates core settings with the booking bot's own sections.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Storage  storage.Config      `yaml:"storage"`
	Booking  booking.Config      `yaml:"booking"`
	Autosave AutosaveConfig      `yaml:"autosave"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Core
}

// LoadConfig reads the YAML file, applies environment overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if cfg.Booking.OwnerID == 0 {
		cfg.Booking.OwnerID = cfg.Core.Telegram.AdminID
	}
	if cfg.Booking.OwnerID == 0 {
		return nil, fmt.Errorf("config: booking.owner_id (or telegram.admin_id) is required")
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.Driver == "file" && cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "data"
	}
	if cfg.Autosave.Spec == "" {
		cfg.Autosave.Spec = "@every 5m"
	}
	return &cfg, nil
}
