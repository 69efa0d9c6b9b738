package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Run statuses
const (
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

// GormRunRepository records simulation runs
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new run repository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Start inserts a running run
func (r *GormRunRepository) Start(ctx context.Context, id, scenario, catalogVersion string, startedAt time.Time) error {
	model := &RunModel{
		ID:             id,
		Scenario:       scenario,
		CatalogVersion: catalogVersion,
		Status:         RunStatusRunning,
		StartedAt:      startedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to start run %s: %w", id, err)
	}
	return nil
}

// Finish marks a run as done with its final tick count
func (r *GormRunRepository) Finish(ctx context.Context, id, status string, ticks uint64, finishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&RunModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"ticks":       ticks,
			"finished_at": finishedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// FindByID loads one run
func (r *GormRunRepository) FindByID(ctx context.Context, id string) (*RunModel, error) {
	var model RunModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return &model, nil
}

// List returns the most recent runs first
func (r *GormRunRepository) List(ctx context.Context, limit int) ([]RunModel, error) {
	var models []RunModel
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return models, nil
}
