// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New initializer to build a Config with defaults.
// - All loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import "time"

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// Store selects the backend: mongo or memory.
	Store string `koanf:"store"`

	// MongoURI is the MongoDB connection string.
	MongoURI string `koanf:"mongo_uri"`

	// MongoDatabase overrides the database named in MongoURI.
	MongoDatabase string `koanf:"mongo_database"`

	// MongoCollection holds the item documents.
	MongoCollection string `koanf:"mongo_collection"`

	// ConnectTimeoutMS bounds the startup ping.
	ConnectTimeoutMS int `koanf:"connect_timeout_ms"`

	// OperationTimeoutMS bounds each store operation. The server caps it below
	// its write timeout so a failing store still gets an error response out.
	OperationTimeoutMS int `koanf:"operation_timeout_ms"`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// CORSOrigin is sent as Access-Control-Allow-Origin.
	CORSOrigin string `koanf:"cors_origin"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":5000",
		Store:              StoreMongo,
		MongoURI:           "mongodb://mongo:27017/merndb",
		MongoCollection:    "items",
		ConnectTimeoutMS:   10_000,
		OperationTimeoutMS: 8_000,
		MaxBodyBytes:       100 << 10,
		CORSOrigin:         "*",
	}
}

// ConnectTimeout returns ConnectTimeoutMS as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

// OperationTimeout returns OperationTimeoutMS as a duration.
func (c *Config) OperationTimeout() time.Duration {
	return time.Duration(c.OperationTimeoutMS) * time.Millisecond
}
