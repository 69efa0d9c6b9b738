package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/citysim-go/internal/adapters/scenario"
	"github.com/andrescamacho/citysim-go/internal/application/logging"
	"github.com/andrescamacho/citysim-go/internal/application/simulation"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
	"github.com/andrescamacho/citysim-go/pkg/utils"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		scenarioPath string
		ticks        uint64
		tps          float64
		exportPath   string
		useJournal   bool
		quiet        bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario tick by tick",
		Long: `Run a scenario through the simulation engine.

Scenario buildings complete at their scheduled ticks. After each tick a
one-line summary is printed. Reports can be kept in the journal database
(--journal) and exported as zstd-compressed JSON lines (--export).

Ticks run back to back unless --tps sets a pace. Ctrl-C stops the run
after the current tick.

Examples:
  citysim run --scenario scenarios/small-town.yaml
  citysim run --scenario town.yaml --ticks 200 --journal
  citysim run --scenario town.yaml --export town.jsonl.zst --quiet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sc, err := scenario.Load(scenarioPath)
			if err != nil {
				return err
			}

			runID := utils.GenerateRunID(sc.Name)
			sim, err := BuildSimulation(cfg, sc, runID)
			if err != nil {
				return err
			}

			clock := shared.NewRealClock()
			logger, logCloser, err := NewLogger(cfg.Logging, runID, clock)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			if !cmd.Flags().Changed("journal") {
				useJournal = cfg.Journal.Enabled
			}
			if !cmd.Flags().Changed("export") {
				exportPath = cfg.Journal.ExportPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := OpenJournal(ctx, cfg, JournalOptions{
				Database:   useJournal,
				ExportPath: exportPath,
			}, runID, sc.Name, sim.Engine.Catalog().Version(), clock)
			if err != nil {
				return err
			}
			if session.Logger != nil {
				logger = logging.FanOut(logger, session.Logger)
			}
			ctx = logging.WithLogger(ctx, logger)

			runner := simulation.NewRunner(sim.Engine, tps, session.Sinks...)
			runner.SetSource(sim.Schedule)
			out := cmd.OutOrStdout()
			if !quiet {
				runner.AddSink(simulation.ReportSinkFunc(func(_ context.Context, report *simulation.TickReport) error {
					_, err := fmt.Fprintln(out, FormatTickLine(report))
					return err
				}))
			}

			fmt.Fprintf(out, "Run %s: %s (%d scheduled events, catalog %s)\n",
				runID, sc.Name, sim.Schedule.Len(), sim.Engine.Catalog().Version())

			started := time.Now()
			last, runErr := runner.Run(ctx, ticks)

			var ran uint64
			if last != nil {
				ran = last.Tick
			}
			if err := session.Close(ctx, ran, runErr); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close journal: %v\n", err)
			}
			if runErr != nil {
				return runErr
			}

			PrintRunSummary(out, runID, last, time.Since(started))
			if exportPath != "" {
				fmt.Fprintf(out, "  exported:   %d reports to %s\n", session.ExportedLines(), exportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario file (required)")
	cmd.Flags().Uint64Var(&ticks, "ticks", 50, "Number of ticks to run (0 runs until interrupted)")
	cmd.Flags().Float64Var(&tps, "tps", 0, "Ticks per second (0 runs back to back)")
	cmd.Flags().StringVar(&exportPath, "export", "", "Export reports to a zstd JSONL file")
	cmd.Flags().BoolVar(&useJournal, "journal", false, "Persist reports and logs to the journal database")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the run summary")
	cmd.MarkFlagRequired("scenario")

	return cmd
}
