package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/citysim-go/internal/application/simulation"
)

// GormTickJournal stores every tick report of a run.
// It is a simulation.ReportSink.
type GormTickJournal struct {
	db *gorm.DB
}

// NewGormTickJournal creates a new tick journal
func NewGormTickJournal(db *gorm.DB) *GormTickJournal {
	return &GormTickJournal{db: db}
}

// Publish persists one report
func (j *GormTickJournal) Publish(ctx context.Context, report *simulation.TickReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal tick %d: %w", report.Tick, err)
	}

	model := &TickReportModel{
		RunID:      report.RunID,
		Tick:       report.Tick,
		StartedAt:  report.StartedAt,
		DurationNs: int64(report.Duration),
		Population: report.Population,
		Employed:   report.Employed,
		Spawned:    report.Spawned,
		Housed:     len(report.Housing.Confirmed),
		Hired:      len(report.Employment.Confirmed),
		Resigned:   len(report.Housing.Resigned) + len(report.Employment.Resigned),
		MissingWh:  report.Power.MissingWh,
		CapacityWh: report.Power.CapacityWh,
		DrawnWh:    report.Power.DrawnWh,
		Report:     string(payload),
	}
	if err := j.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to persist tick %d: %w", report.Tick, err)
	}
	return nil
}

// ListSummaries returns report rows of a run in tick order, without decoding them
func (j *GormTickJournal) ListSummaries(ctx context.Context, runID string, limit, offset int) ([]TickReportModel, error) {
	var models []TickReportModel
	query := j.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("tick ASC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticks of run %s: %w", runID, err)
	}
	return models, nil
}

// FindReport loads and decodes the report of one tick
func (j *GormTickJournal) FindReport(ctx context.Context, runID string, tick uint64) (*simulation.TickReport, error) {
	var model TickReportModel
	err := j.db.WithContext(ctx).
		Where("run_id = ? AND tick = ?", runID, tick).
		First(&model).Error
	if err != nil {
		return nil, fmt.Errorf("tick %d of run %s: %w", tick, runID, err)
	}

	var report simulation.TickReport
	if err := json.Unmarshal([]byte(model.Report), &report); err != nil {
		return nil, fmt.Errorf("failed to decode tick %d of run %s: %w", tick, runID, err)
	}
	return &report, nil
}
