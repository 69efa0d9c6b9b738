package config

import "time"

// JournalConfig controls where tick reports and log lines are kept
type JournalConfig struct {
	// Persist reports and log lines to the database
	Enabled bool `mapstructure:"enabled"`

	// Default zstd JSONL export file; empty disables the export
	ExportPath string `mapstructure:"export_path"`

	// Compression level: fastest, default, better, best
	Compression string `mapstructure:"compression" validate:"required,oneof=fastest default better best"`

	// Identical log lines within this window are stored once
	DedupWindow time.Duration `mapstructure:"dedup_window" validate:"required"`

	// Entries kept in the deduplication cache before it is pruned
	DedupMaxEntries int `mapstructure:"dedup_max_entries" validate:"min=1"`
}
