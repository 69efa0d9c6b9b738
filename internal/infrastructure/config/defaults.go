package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Simulation defaults
	if cfg.Simulation.Entry == "" {
		cfg.Simulation.Entry = "0,0"
	}
	if cfg.Simulation.TicksPerSecond == 0 {
		cfg.Simulation.TicksPerSecond = 2
	}
	if cfg.Simulation.MaxInhabitantsPerTick == 0 {
		cfg.Simulation.MaxInhabitantsPerTick = 6
	}
	if cfg.Simulation.MaxMatchesPerTick == 0 {
		cfg.Simulation.MaxMatchesPerTick = 16
	}
	if cfg.Simulation.DefaultEducation == "" {
		cfg.Simulation.DefaultEducation = "none"
	}

	// Building catalog defaults; kinds missing from the file keep their stock constants
	if cfg.Buildings.Version == "" {
		cfg.Buildings.Version = "v1"
	}
	if cfg.Buildings.Kinds == nil {
		cfg.Buildings.Kinds = make(map[string]BuildingSpecConfig)
	}
	for key, spec := range defaultBuildingSpecs() {
		if _, ok := cfg.Buildings.Kinds[key]; !ok {
			cfg.Buildings.Kinds[key] = spec
		}
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "citysim.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "citysim"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "citysim"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "citysim"
	}

	// Stream defaults
	if cfg.Stream.Path == "" {
		cfg.Stream.Path = "/ws"
	}
	if cfg.Stream.BufferSize == 0 {
		cfg.Stream.BufferSize = 32
	}
	if cfg.Stream.WriteTimeout == 0 {
		cfg.Stream.WriteTimeout = 5 * time.Second
	}

	// Health defaults
	if cfg.Health.Address == "" {
		cfg.Health.Address = "localhost:50061"
	}
	if cfg.Health.ShutdownTimeout == 0 {
		cfg.Health.ShutdownTimeout = 10 * time.Second
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/citysim-daemon.pid"
	}

	// Journal defaults
	if cfg.Journal.Compression == "" {
		cfg.Journal.Compression = "default"
	}
	if cfg.Journal.DedupWindow == 0 {
		cfg.Journal.DedupWindow = 60 * time.Second
	}
	if cfg.Journal.DedupMaxEntries == 0 {
		cfg.Journal.DedupMaxEntries = 10000
	}
}
