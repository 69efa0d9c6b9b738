package config

import "time"

// HealthConfig holds the daemon's gRPC health endpoint configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// gRPC listen address (host:port)
	Address string `mapstructure:"address" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
