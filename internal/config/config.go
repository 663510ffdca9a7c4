// Package config loads server configuration from environment variables,
// with .env file support for local development.
package config

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup. The values are read
// once here and passed down explicitly — nothing else in the codebase
// touches the environment.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first if present; real environment
// variables win over it. JWT_SECRET has no default on purpose.
func Load() (*Config, error) {
	// Missing .env is fine — production sets real env vars.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("port", 8080)
	viper.SetDefault("db_path", "data/cases.db")

	cfg := &Config{
		Port:      viper.GetInt("port"),
		DBPath:    viper.GetString("db_path"),
		JWTSecret: viper.GetString("jwt_secret"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}

	return cfg, nil
}
