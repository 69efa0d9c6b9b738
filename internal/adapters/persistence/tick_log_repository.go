package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// TickLogEntry is one persisted log line
type TickLogEntry struct {
	ID        int
	RunID     string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormTickLogRepository persists log lines of simulation runs.
//
// Identical messages of the same run are stored once per deduplication
// window, so a warning repeated every tick does not flood the table.
type GormTickLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // key: runID|message, value: last logged time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormTickLogRepository creates a new log repository.
// If clock is nil, uses RealClock. Non-positive window or size fall back to
// 60 seconds and 10000 entries.
func NewGormTickLogRepository(db *gorm.DB, clock shared.Clock, window time.Duration, maxEntries int) *GormTickLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if window <= 0 {
		window = 60 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &GormTickLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  window,
		dedupMaxSize: maxEntries,
	}
}

// Log writes a log line with time-windowed deduplication
func (r *GormTickLogRepository) Log(ctx context.Context, runID, message, level string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := runID + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	// Metadata is optional; an unencodable map is dropped
	var metadataJSON string
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(raw)
		}
	}

	entry := &TickLogModel{
		RunID:     runID,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to persist log line: %w", err)
	}
	return nil
}

// cleanupDedupCache removes entries older than the window.
// Must be called while holding dedupMu.
func (r *GormTickLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs retrieves log lines of a run, newest first, with optional filtering
func (r *GormTickLogRepository) GetLogs(ctx context.Context, runID string, limit int, level *string, since *time.Time) ([]TickLogEntry, error) {
	var models []TickLogModel

	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if since != nil {
		query = query.Where("timestamp > ?", *since)
	}
	query = query.Order("timestamp DESC").Order("id DESC").Limit(limit)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]TickLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = TickLogEntry{
			ID:        model.ID,
			RunID:     model.RunID,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}
	return entries, nil
}

// JournalLogger binds the repository to one run so it can serve as a
// logging.TickLogger. Writes are synchronous with a short timeout; failures
// are reported through onError when set.
type JournalLogger struct {
	repo    *GormTickLogRepository
	runID   string
	onError func(error)
}

// NewJournalLogger creates a logger persisting lines for runID
func NewJournalLogger(repo *GormTickLogRepository, runID string, onError func(error)) *JournalLogger {
	return &JournalLogger{repo: repo, runID: runID, onError: onError}
}

// Log persists one line
func (l *JournalLogger) Log(level, message string, metadata map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.repo.Log(ctx, l.runID, message, level, metadata); err != nil && l.onError != nil {
		l.onError(err)
	}
}
