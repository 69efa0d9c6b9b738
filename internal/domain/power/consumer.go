package power

import (
	"math"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Consumer is a building drawing power proportional to its occupancy
//
// Invariants:
// - CoveredWh <= RequestedWh()
type Consumer struct {
	ID        shared.EntityID
	Position  shared.Position
	BaseWh    uint32
	PerUnitWh uint32
	Occupancy uint32
	CoveredWh uint32
}

// RequestedWh is the power the consumer needs at its current occupancy,
// saturating at the uint32 range
func (c *Consumer) RequestedWh() uint32 {
	return saturate(uint64(c.BaseWh) + uint64(c.PerUnitWh)*uint64(c.Occupancy))
}

func saturate(wh uint64) uint32 {
	if wh > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(wh)
}

// ShortfallWh is the part of the request not covered yet
func (c *Consumer) ShortfallWh() uint32 {
	requested := c.RequestedWh()
	if c.CoveredWh >= requested {
		return 0
	}
	return requested - c.CoveredWh
}

// IsCovered reports whether the whole request is covered
func (c *Consumer) IsCovered() bool {
	return c.CoveredWh >= c.RequestedWh()
}

// Producer is a power plant with a fixed capacity
//
// Invariants:
// - RemainingWh <= TotalCapacityWh
type Producer struct {
	ID              shared.EntityID
	Position        shared.Position
	TotalCapacityWh uint32
	RemainingWh     uint32
}

// DrawnWh is the capacity already dedicated to consumers
func (p *Producer) DrawnWh() uint32 {
	return p.TotalCapacityWh - p.RemainingWh
}

// link records how much one consumer draws from one producer
type link struct {
	producer shared.EntityID
	drawnWh  uint32
}
