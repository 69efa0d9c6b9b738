package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/citysim-go/internal/adapters/journal"
	"github.com/andrescamacho/citysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/citysim-go/internal/application/logging"
	"github.com/andrescamacho/citysim-go/internal/application/simulation"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
	"github.com/andrescamacho/citysim-go/internal/infrastructure/config"
	"github.com/andrescamacho/citysim-go/internal/infrastructure/database"
)

// JournalOptions selects where a run's reports are kept
type JournalOptions struct {
	// Persist reports and log lines to the configured database
	Database bool
	// zstd JSONL export path; empty disables the export
	ExportPath string
}

// JournalSession owns the persistence sinks of one run
type JournalSession struct {
	runID string
	clock shared.Clock

	db       *gorm.DB
	runs     *persistence.GormRunRepository
	exporter *journal.ZstdExporter

	Sinks  []simulation.ReportSink
	Logger logging.TickLogger
}

// OpenJournal opens the database and export file requested by opts and
// records the run as started
func OpenJournal(ctx context.Context, cfg *config.Config, opts JournalOptions, runID, scenarioName, catalogVersion string, clock shared.Clock) (*JournalSession, error) {
	s := &JournalSession{runID: runID, clock: clock}

	if opts.Database {
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal database: %w", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			database.Close(db)
			return nil, err
		}
		s.db = db
		s.runs = persistence.NewGormRunRepository(db)
		if err := s.runs.Start(ctx, runID, scenarioName, catalogVersion, clock.Now()); err != nil {
			database.Close(db)
			return nil, err
		}

		logs := persistence.NewGormTickLogRepository(db, clock, cfg.Journal.DedupWindow, cfg.Journal.DedupMaxEntries)
		s.Logger = persistence.NewJournalLogger(logs, runID, func(err error) {
			fmt.Fprintf(os.Stderr, "journal log write failed: %v\n", err)
		})
		s.Sinks = append(s.Sinks, persistence.NewGormTickJournal(db))
	}

	if opts.ExportPath != "" {
		level, err := journal.ParseLevel(cfg.Journal.Compression)
		if err != nil {
			s.Close(ctx, 0, err)
			return nil, err
		}
		exporter, err := journal.NewZstdExporter(opts.ExportPath, level)
		if err != nil {
			s.Close(ctx, 0, err)
			return nil, err
		}
		s.exporter = exporter
		s.Sinks = append(s.Sinks, exporter)
	}

	return s, nil
}

// Close flushes the export and marks the run finished. runErr decides
// whether the run is recorded as completed or failed.
func (s *JournalSession) Close(ctx context.Context, ticks uint64, runErr error) error {
	var firstErr error

	if s.exporter != nil {
		if err := s.exporter.Close(); err != nil {
			firstErr = err
		}
	}

	if s.db != nil {
		status := persistence.RunStatusCompleted
		if runErr != nil {
			status = persistence.RunStatusFailed
		}
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.runs.Finish(finishCtx, s.runID, status, ticks, s.clock.Now()); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := database.Close(s.db); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// ExportedLines returns how many reports went to the export file
func (s *JournalSession) ExportedLines() int {
	if s.exporter == nil {
		return 0
	}
	return s.exporter.Lines()
}
