package config

import "time"

// StreamConfig holds the websocket tick stream configuration.
// The stream is served from the metrics HTTP server.
type StreamConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Path of the websocket endpoint
	Path string `mapstructure:"path" validate:"required,startswith=/"`

	// Reports buffered per observer before it is dropped
	BufferSize int `mapstructure:"buffer_size" validate:"min=1"`

	// Deadline for writing one message to an observer
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required"`
}
