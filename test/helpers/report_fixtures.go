package helpers

import (
	"time"

	"github.com/andrescamacho/citysim-go/internal/application/simulation"
	"github.com/andrescamacho/citysim-go/internal/domain/assignment"
	"github.com/andrescamacho/citysim-go/internal/domain/building"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// FixtureTime is the start time used by report fixtures
var FixtureTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// SampleReport builds a tick report with one housing match and one
// employment match, so adapters have something to render
func SampleReport(runID string, tick uint64) *simulation.TickReport {
	ids := shared.NewIDAllocator()
	inhabitant := ids.ForKey("inhabitant")
	house := ids.ForKey("house")
	office := ids.ForKey("office")

	housing := assignment.Result{
		Kind:         assignment.KindHousing,
		From:         inhabitant,
		FromPosition: shared.NewPosition(0, 0),
		To:           house,
		ToPosition:   shared.NewPosition(1, 1),
		Count:        1,
	}
	employment := assignment.Result{
		Kind:         assignment.KindEmployment,
		From:         inhabitant,
		FromPosition: shared.NewPosition(1, 1),
		To:           office,
		ToPosition:   shared.NewPosition(3, 1),
		Count:        1,
	}

	return &simulation.TickReport{
		RunID:         runID,
		Tick:          tick,
		StartedAt:     FixtureTime.Add(time.Duration(tick) * time.Second),
		Duration:      3 * time.Millisecond,
		EventsApplied: 2,
		LinksAdded:    1,
		StreetNodes:   4,
		Spawned:       1,
		Housing: simulation.PipelineReport{
			Confirmed: []assignment.Result{housing},
			Stats:     assignment.Stats{Kind: assignment.KindHousing, Introduced: 1, Matched: 1, Confirmed: 1, FreeCapacity: 7},
		},
		Employment: simulation.PipelineReport{
			Confirmed: []assignment.Result{employment},
			Stats:     assignment.Stats{Kind: assignment.KindEmployment, Introduced: 1, Matched: 1, Confirmed: 1, FreeCapacity: 5},
		},
		OccupancyEvents: []building.OccupancyChanged{
			{BuildingID: house, Delta: 1},
			{BuildingID: office, Delta: 1},
		},
		Power: simulation.PowerReport{
			MissingWh:  300,
			CapacityWh: 7_000_000,
			DrawnWh:    2000,
			Uncovered:  1,
		},
		Buildings:  5,
		Population: 1,
		Employed:   1,
	}
}
