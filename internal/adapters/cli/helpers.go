package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/andrescamacho/citysim-go/internal/adapters/scenario"
	"github.com/andrescamacho/citysim-go/internal/application/logging"
	"github.com/andrescamacho/citysim-go/internal/application/simulation"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
	"github.com/andrescamacho/citysim-go/internal/infrastructure/config"
)

// loadConfig loads the configuration named by --config
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// Simulation bundles an engine with the scenario driving it
type Simulation struct {
	RunID    string
	Scenario *scenario.Scenario
	Schedule *scenario.Schedule
	Engine   *simulation.Engine
}

// BuildSimulation creates an engine configured by cfg for sc
func BuildSimulation(cfg *config.Config, sc *scenario.Scenario, runID string) (*Simulation, error) {
	catalog, err := cfg.Buildings.Catalog()
	if err != nil {
		return nil, err
	}
	entry, err := cfg.Simulation.EntryPosition()
	if err != nil {
		return nil, err
	}
	education, err := cfg.Simulation.Education()
	if err != nil {
		return nil, err
	}

	ids := shared.NewIDAllocator()
	schedule, err := sc.Schedule(ids)
	if err != nil {
		return nil, err
	}

	opts := simulation.DefaultOptions()
	opts.RunID = runID
	opts.Entry = sc.EntryOr(entry)
	opts.Catalog = catalog
	opts.MaxInhabitantsPerTick = cfg.Simulation.MaxInhabitantsPerTick
	opts.MaxMatchesPerTick = cfg.Simulation.MaxMatchesPerTick
	opts.NewcomerEducation = education
	opts.RequirePositiveDesirability = !cfg.Simulation.AllowNegativeDesirability
	opts.IDs = ids

	return &Simulation{
		RunID:    runID,
		Scenario: sc,
		Schedule: schedule,
		Engine:   simulation.NewEngine(opts),
	}, nil
}

// Settle applies every scheduled event at once and links the streets,
// giving the final layout without running ticks. Rejected events are returned.
func (s *Simulation) Settle() []error {
	var rejected []error
	for tick := uint64(1); tick <= s.Schedule.LastTick(); tick++ {
		for _, event := range s.Schedule.EventsFor(tick) {
			if err := s.Engine.Apply(event); err != nil {
				rejected = append(rejected, err)
			}
		}
	}
	s.Engine.Streets().Rebuild()
	return rejected
}

// NewLogger builds the configured logger. The returned closer releases the
// log file when output is "file".
func NewLogger(cfg config.LoggingConfig, tag string, clock shared.Clock) (logging.TickLogger, io.Closer, error) {
	var out io.Writer
	var closer io.Closer = io.NopCloser(nil)

	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = f
	default:
		out = os.Stdout
	}

	logger := logging.NewStdLogger(logging.StdLoggerOptions{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: out,
		Tag:    tag,
		Clock:  clock,
	})
	return logger, closer, nil
}

// parsePositionFlag parses an "x,y" flag value
func parsePositionFlag(name, value string) (shared.Position, error) {
	p, err := shared.ParsePosition(value)
	if err != nil {
		return shared.Position{}, fmt.Errorf("--%s: %w", name, err)
	}
	return p, nil
}
