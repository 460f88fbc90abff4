package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix = "ITEMS_"
	EnvConfig = "ITEMS_CONFIG"
	EnvDotEnv = "ITEMS_DOTENV"

	defaultDotEnv = ".env"
)

// Load builds a Config by layering sources.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. .env file (ITEMS_DOTENV, default ".env"), merged into the process env
//  3. YAML file if ITEMS_CONFIG is set
//  4. PORT and MONGODB_URI
//  5. ITEMS_* env vars
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// PORT=5000 -> addr=":5000", MONGODB_URI -> mongo_uri.
	legacy := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		switch key {
		case "PORT":
			if value == "" {
				return "", nil
			}
			return "addr", ":" + value
		case "MONGODB_URI":
			if value == "" {
				return "", nil
			}
			return "mongo_uri", value
		default:
			return "", nil
		}
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// ITEMS_MONGO_URI -> mongo_uri. Underscores are kept to match koanf tags.
	prefixed := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Store != StoreMongo && c.Store != StoreMemory:
		return fmt.Errorf("%w: store must be %q or %q, got %q", ErrInvalidConfig, StoreMongo, StoreMemory, c.Store)
	case c.Store == StoreMongo && strings.TrimSpace(c.MongoURI) == "":
		return fmt.Errorf("%w: mongo_uri must not be empty", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.ConnectTimeoutMS < 0 || c.OperationTimeoutMS < 0:
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	return nil
}

// loadDotEnv merges a .env file into the process environment without
// overriding variables that are already set. A missing file is ignored.
func loadDotEnv() error {
	path := os.Getenv(EnvDotEnv)
	if path == "" {
		path = defaultDotEnv
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
