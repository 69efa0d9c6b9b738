package persistence

import (
	"time"
)

// RunModel represents the runs table: one row per simulation run
type RunModel struct {
	ID             string     `gorm:"column:id;primaryKey;not null"`
	Scenario       string     `gorm:"column:scenario"`
	CatalogVersion string     `gorm:"column:catalog_version;not null"`
	Status         string     `gorm:"column:status;not null;default:'RUNNING'"`
	Ticks          uint64     `gorm:"column:ticks;not null;default:0"`
	StartedAt      time.Time  `gorm:"column:started_at;not null"`
	FinishedAt     *time.Time `gorm:"column:finished_at"`
}

func (RunModel) TableName() string {
	return "runs"
}

// TickReportModel represents the tick_reports table.
// Summary columns are queryable; the full report is kept as JSON.
type TickReportModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID      string    `gorm:"column:run_id;not null;uniqueIndex:idx_run_tick"`
	Run        *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Tick       uint64    `gorm:"column:tick;not null;uniqueIndex:idx_run_tick"`
	StartedAt  time.Time `gorm:"column:started_at;not null"`
	DurationNs int64     `gorm:"column:duration_ns"`
	Population uint64    `gorm:"column:population"`
	Employed   uint64    `gorm:"column:employed"`
	Spawned    int       `gorm:"column:spawned"`
	Housed     int       `gorm:"column:housed"`
	Hired      int       `gorm:"column:hired"`
	Resigned   int       `gorm:"column:resigned"`
	MissingWh  uint32    `gorm:"column:missing_wh"`
	CapacityWh uint64    `gorm:"column:capacity_wh"`
	DrawnWh    uint64    `gorm:"column:drawn_wh"`
	Report     string    `gorm:"column:report;type:text"` // JSON as text
}

func (TickReportModel) TableName() string {
	return "tick_reports"
}

// TickLogModel represents the tick_logs table
type TickLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (TickLogModel) TableName() string {
	return "tick_logs"
}
