package config

// DaemonConfig holds settings for the long-running simulation daemon
type DaemonConfig struct {
	// PID file enforcing a single daemon per host
	PIDFile string `mapstructure:"pid_file" validate:"required"`
	// Scenario the daemon plays; empty starts from an empty city
	Scenario string `mapstructure:"scenario"`
	// Stop after this many ticks; 0 runs until signalled
	MaxTicks uint64 `mapstructure:"max_ticks"`
}
