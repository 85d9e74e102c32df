// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	JWTSecret string `envconfig:"JWT_SECRET" default:"supersecretmvp"`

	// Comma-separated list of allowed CORS origins.
	AllowedOriginsRaw string   `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	AllowedOrigins    []string `envconfig:"-"`

	// SeedDemo loads the demo accounts and sample tasks at startup.
	SeedDemo bool `envconfig:"SEED_DEMO" default:"true"`

	// UploaderStartingBalance is deposited into new uploader wallets so
	// they can fund their first tasks.
	UploaderStartingBalance int64 `envconfig:"UPLOADER_STARTING_BALANCE" default:"100"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, o := range strings.Split(cfg.AllowedOriginsRaw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if cfg.UploaderStartingBalance < 0 {
		return nil, fmt.Errorf("UPLOADER_STARTING_BALANCE must be >= 0")
	}
	return &cfg, nil
}
