package simulation

import (
	"time"

	"github.com/andrescamacho/citysim-go/internal/domain/assignment"
	"github.com/andrescamacho/citysim-go/internal/domain/building"
	"github.com/andrescamacho/citysim-go/internal/domain/power"
)

// PipelineReport is what one matching pipeline did during a tick
type PipelineReport struct {
	Confirmed []assignment.Result `json:"confirmed"`
	Resigned  []assignment.Result `json:"resigned"`
	Stats     assignment.Stats    `json:"stats"`
}

// PowerReport is the outcome of the tick's allocation pass
type PowerReport struct {
	Changes    power.ChangeSet `json:"changes"`
	MissingWh  uint32          `json:"missing_wh"`
	CapacityWh uint64          `json:"capacity_wh"`
	DrawnWh    uint64          `json:"drawn_wh"`
	Uncovered  int             `json:"uncovered"`
}

// TickReport is the immutable outcome of one tick.
// Adapters receive it after the tick completes and never see engine state.
type TickReport struct {
	RunID     string        `json:"run_id"`
	Tick      uint64        `json:"tick"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	EventsApplied  int      `json:"events_applied"`
	EventsRejected int      `json:"events_rejected"`
	Rejections     []string `json:"rejections,omitempty"`

	LinksAdded     int `json:"links_added"`
	StreetNodes    int `json:"street_nodes"`
	PendingStreets int `json:"pending_streets"`

	Spawned    int            `json:"spawned"`
	Housing    PipelineReport `json:"housing"`
	Employment PipelineReport `json:"employment"`

	OccupancyEvents []building.OccupancyChanged `json:"occupancy_events"`

	Power PowerReport `json:"power"`

	Buildings  int    `json:"buildings"`
	Population uint64 `json:"population"`
	Employed   uint64 `json:"employed"`
}
