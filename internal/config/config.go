package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"strings"
	"time"
)

// Config represents the application configuration structure
type Config struct {
	Environment string `split_words:"true" default:"dev"`

	PortalAPIListenAddress string `split_words:"true" default:"localhost:8080"`
	PortalAPIAllowedOrigin string `split_words:"true" default:"http://localhost:5173"`

	BackendBaseURL string        `split_words:"true" default:"http://127.0.0.1:8001"`
	BackendTimeout time.Duration `split_words:"true" default:"30s"`

	SessionStorageDriver string `split_words:"true" default:"badger"`
	SessionStoragePath   string `split_words:"true" default:"./data/session"`
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("chp", config); err != nil {
		return nil, err
	}
	return config, nil
}

// IsEnvProduction returns whether the application runs in a production environment
func (config *Config) IsEnvProduction() bool {
	return strings.EqualFold(config.Environment, "prod") || strings.EqualFold(config.Environment, "production")
}
