package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/andrescamacho/citysim-go/internal/adapters/journal"
	"github.com/andrescamacho/citysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/citysim-go/internal/application/simulation"
	"github.com/andrescamacho/citysim-go/internal/infrastructure/database"
)

// NewJournalCommand creates the journal command with subcommands
func NewJournalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded runs",
		Long: `Inspect runs recorded in the journal database or in export files.

Examples:
  citysim journal runs
  citysim journal ticks --run small-town-a3f8e2b1
  citysim journal show --run small-town-a3f8e2b1 --tick 12
  citysim journal logs --run small-town-a3f8e2b1 --level WARN
  citysim journal read --file town.jsonl.zst`,
	}

	cmd.AddCommand(newJournalRunsCommand())
	cmd.AddCommand(newJournalTicksCommand())
	cmd.AddCommand(newJournalShowCommand())
	cmd.AddCommand(newJournalLogsCommand())
	cmd.AddCommand(newJournalReadCommand())

	return cmd
}

// withJournalDB opens the configured database for the duration of fn
func withJournalDB(fn func(db *gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	return fn(db)
}

func newJournalRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournalDB(func(db *gorm.DB) error {
				runs, err := persistence.NewGormRunRepository(db).List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				PrintRuns(cmd.OutOrStdout(), runs, time.Now())
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")

	return cmd
}

func newJournalTicksCommand() *cobra.Command {
	var (
		runID  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "ticks",
		Short: "List the tick summaries of a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournalDB(func(db *gorm.DB) error {
				ctx := cmd.Context()
				run, err := persistence.NewGormRunRepository(db).FindByID(ctx, runID)
				if err != nil {
					return err
				}
				rows, err := persistence.NewGormTickJournal(db).ListSummaries(ctx, runID, limit, offset)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s (%s, %s ticks, scenario %s)\n\n",
					run.ID, run.Status, formatCount(run.Ticks), run.Scenario)
				PrintTickSummaries(out, rows)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID (required)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of ticks")
	cmd.Flags().IntVar(&offset, "offset", 0, "Ticks to skip")
	cmd.MarkFlagRequired("run")

	return cmd
}

func newJournalShowCommand() *cobra.Command {
	var (
		runID string
		tick  uint64
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the full report of one tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournalDB(func(db *gorm.DB) error {
				report, err := persistence.NewGormTickJournal(db).FindReport(cmd.Context(), runID, tick)
				if err != nil {
					return err
				}
				PrintReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID (required)")
	cmd.Flags().Uint64Var(&tick, "tick", 1, "Tick number")
	cmd.MarkFlagRequired("run")

	return cmd
}

func newJournalLogsCommand() *cobra.Command {
	var (
		runID string
		limit int
		level string
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the log lines of a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournalDB(func(db *gorm.DB) error {
				var levelFilter *string
				if level != "" {
					upper := strings.ToUpper(level)
					levelFilter = &upper
				}
				var sinceFilter *time.Time
				if since > 0 {
					t := time.Now().Add(-since)
					sinceFilter = &t
				}

				repo := persistence.NewGormTickLogRepository(db, nil, 0, 0)
				entries, err := repo.GetLogs(cmd.Context(), runID, limit, levelFilter, sinceFilter)
				if err != nil {
					return err
				}
				PrintLogs(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID (required)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of lines")
	cmd.Flags().StringVar(&level, "level", "", "Only lines of this level (DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only lines newer than this, e.g. 10m")
	cmd.MarkFlagRequired("run")

	return cmd
}

func newJournalReadCommand() *cobra.Command {
	var (
		file string
		tick uint64
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read a zstd JSONL export",
		Long: `Read the reports of an export file written by "citysim run --export".

Prints one summary line per tick, or the full report of --tick.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			found := false
			err := journal.ReadFile(file, func(report *simulation.TickReport) error {
				if tick == 0 {
					fmt.Fprintln(out, FormatTickLine(report))
					return nil
				}
				if report.Tick == tick {
					PrintReport(out, report)
					found = true
					return errStopReading
				}
				return nil
			})
			if err != nil && !errors.Is(err, errStopReading) {
				return err
			}
			if tick > 0 && !found {
				return fmt.Errorf("tick %d not found in %s", tick, file)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Export file (required)")
	cmd.Flags().Uint64Var(&tick, "tick", 0, "Show the full report of this tick")
	cmd.MarkFlagRequired("file")

	return cmd
}

var errStopReading = errors.New("stop reading")
