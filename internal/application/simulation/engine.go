package simulation

import (
	"context"
	"fmt"

	"github.com/andrescamacho/citysim-go/internal/application/logging"
	"github.com/andrescamacho/citysim-go/internal/domain/assignment"
	"github.com/andrescamacho/citysim-go/internal/domain/building"
	"github.com/andrescamacho/citysim-go/internal/domain/desirability"
	"github.com/andrescamacho/citysim-go/internal/domain/navigation"
	"github.com/andrescamacho/citysim-go/internal/domain/power"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Engine owns the four simulation services and drives them one tick at a time.
//
// The engine is not safe for concurrent use: one goroutine submits events
// and calls Tick. Reports it returns are self-contained values.
type Engine struct {
	opts    Options
	catalog *building.Catalog
	ids     *shared.IDAllocator
	clock   shared.Clock

	streets     *navigation.StreetGraph
	layers      *desirability.Layers
	assignments *assignment.Queue
	power       *power.Allocator
	buildings   *building.Registry

	inbox []building.Event
	tick  uint64
}

// NewEngine builds an engine and its services from options
func NewEngine(opts Options) *Engine {
	if opts.Catalog == nil {
		opts.Catalog = building.DefaultCatalog()
	}
	if opts.IDs == nil {
		opts.IDs = shared.NewIDAllocator()
	}
	if opts.Clock == nil {
		opts.Clock = shared.NewRealClock()
	}
	if opts.MaxMatchesPerTick <= 0 {
		opts.MaxMatchesPerTick = DefaultOptions().MaxMatchesPerTick
	}

	return &Engine{
		opts:        opts,
		catalog:     opts.Catalog,
		ids:         opts.IDs,
		clock:       opts.Clock,
		streets:     navigation.NewStreetGraph(opts.Entry),
		layers:      desirability.NewLayers(),
		assignments: assignment.NewQueue(opts.Entry),
		power:       power.NewAllocator(),
		buildings:   building.NewRegistry(),
	}
}

// Submit queues events for the next tick
func (e *Engine) Submit(events ...building.Event) {
	e.inbox = append(e.inbox, events...)
}

// Apply ingests one event immediately.
// Unknown kinds, duplicate buildings and bad occupancy deltas are rejected
// with a typed error and leave the engine unchanged.
func (e *Engine) Apply(event building.Event) error {
	switch ev := event.(type) {
	case building.BuildingCompleted:
		return e.completeBuilding(ev)
	case building.OccupancyChanged:
		return e.changeOccupancy(ev)
	default:
		return fmt.Errorf("unsupported event %T", event)
	}
}

func (e *Engine) completeBuilding(ev building.BuildingCompleted) error {
	spec, err := e.catalog.MustSpec(ev.Kind)
	if err != nil {
		return fmt.Errorf("building %s: %w", ev.ID, err)
	}
	capacity := ev.Capacity
	if capacity == 0 {
		capacity = spec.Capacity
	}

	if err := e.buildings.Add(building.Snapshot{
		ID:       ev.ID,
		Kind:     ev.Kind,
		Position: ev.Position,
		Capacity: capacity,
	}); err != nil {
		return err
	}

	switch ev.Kind {
	case building.KindStreet:
		e.streets.AddNode(ev.Position)
	case building.KindHouse:
		e.assignments.RegisterSupply(assignment.KindHousing, ev.ID, ev.Position, capacity)
	case building.KindOffice:
		e.assignments.RegisterSupply(assignment.KindEmployment, ev.ID, ev.Position, capacity,
			assignment.RequireEducation(spec.RequiredEducation))
	case building.KindGarden, building.KindBiomassPowerPlant:
	default:
		return shared.NewUnknownBuildingKindError(string(ev.Kind))
	}

	if src := spec.HousingSource; src != nil {
		e.layers.Housing().AddSource(desirability.NewSource(ev.Position, src.Value, src.InnerRadius, src.OuterRadius, src.Decay))
	}
	if src := spec.EmploymentSource; src != nil {
		e.layers.Employment().AddSource(desirability.NewSource(ev.Position, src.Value, src.InnerRadius, src.OuterRadius, src.Decay))
	}
	if spec.ConsumesPower() {
		e.power.RegisterConsumer(ev.ID, ev.Position, spec.PowerBaseWh, spec.PowerPerOccupantWh, 0)
	}
	if spec.ProducesPower() {
		e.power.RegisterProducer(ev.ID, ev.Position, spec.PowerCapacityWh)
	}
	return nil
}

// changeOccupancy applies an occupancy change reported by the host.
// Houses and offices hand matching capacity over to the change: arrivals
// consume free queue units and departures offer them again.
func (e *Engine) changeOccupancy(ev building.OccupancyChanged) error {
	snapshot, ok := e.buildings.Get(ev.BuildingID)
	if !ok {
		return shared.NewUnknownBuildingError(ev.BuildingID)
	}

	kind, matched := pipelineFor(snapshot.Kind)
	if matched && ev.Delta > 0 {
		supply, _ := e.assignments.Supply(kind, ev.BuildingID)
		if supply.Remaining < uint32(ev.Delta) {
			return shared.NewValidationError("delta",
				fmt.Sprintf("building %s has %d free places, %d arrived", ev.BuildingID, supply.Remaining, ev.Delta))
		}
	}

	if err := e.occupy(snapshot, ev.Delta); err != nil {
		return err
	}

	switch {
	case matched && ev.Delta > 0:
		e.assignments.WithdrawSupply(kind, ev.BuildingID, uint32(ev.Delta))
	case matched && ev.Delta < 0:
		e.assignments.RegisterSupply(kind, ev.BuildingID, snapshot.Position, uint32(-ev.Delta))
	}
	return nil
}

// occupy updates the registry and the power request of a building
func (e *Engine) occupy(snapshot building.Snapshot, delta int32) error {
	if int64(snapshot.Occupancy)+int64(delta) > int64(snapshot.Capacity) {
		return shared.NewValidationError("delta",
			fmt.Sprintf("building %s would exceed capacity %d", snapshot.ID, snapshot.Capacity))
	}
	if _, err := e.buildings.ApplyOccupancy(snapshot.ID, delta); err != nil {
		return err
	}

	spec, _ := e.catalog.Spec(snapshot.Kind)
	if spec.ConsumesPower() {
		return e.power.UpdateOccupancy(snapshot.ID, delta)
	}
	return nil
}

func pipelineFor(kind building.Kind) (assignment.Kind, bool) {
	switch kind {
	case building.KindHouse:
		return assignment.KindHousing, true
	case building.KindOffice:
		return assignment.KindEmployment, true
	}
	return "", false
}

// Tick runs one full cycle: ingest events, link streets, grow population,
// match housing and jobs, validate each match with a path, then allocate power.
func (e *Engine) Tick(ctx context.Context) (*TickReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logging.LoggerFromContext(ctx)
	started := e.clock.Now()

	e.tick++
	report := &TickReport{
		RunID:     e.opts.RunID,
		Tick:      e.tick,
		StartedAt: started,
	}

	inbox := e.inbox
	e.inbox = nil
	for _, event := range inbox {
		if err := e.Apply(event); err != nil {
			report.EventsRejected++
			report.Rejections = append(report.Rejections, err.Error())
			logger.Log(logging.LevelWarn, "event rejected", map[string]interface{}{
				"tick":  e.tick,
				"error": err.Error(),
			})
			continue
		}
		report.EventsApplied++
	}

	report.LinksAdded = e.streets.Rebuild()
	report.StreetNodes = e.streets.NodeCount()
	report.PendingStreets = e.streets.PendingCount()

	report.Spawned = e.growPopulation()

	report.Housing = e.runPipeline(report, assignment.KindHousing)
	report.Employment = e.runPipeline(report, assignment.KindEmployment)

	changes := e.power.DedicatePower()
	capacity, drawn := e.power.Totals()
	report.Power = PowerReport{
		Changes:    changes,
		MissingWh:  e.power.MissingPower(),
		CapacityWh: capacity,
		DrawnWh:    drawn,
		Uncovered:  e.power.UncoveredCount(),
	}

	report.Buildings = e.buildings.Len()
	report.Population = e.buildings.Population()
	report.Employed = e.assignments.Stats(assignment.KindEmployment).Confirmed
	report.Duration = e.clock.Now().Sub(started)

	logger.Log(logging.LevelDebug, "tick completed", map[string]interface{}{
		"tick":        report.Tick,
		"links_added": report.LinksAdded,
		"spawned":     report.Spawned,
		"housed":      len(report.Housing.Confirmed),
		"hired":       len(report.Employment.Confirmed),
		"missing_wh":  report.Power.MissingWh,
		"population":  report.Population,
	})

	return report, nil
}

// growPopulation introduces newcomers for attractive housing nobody is
// waiting for yet, capped per tick
func (e *Engine) growPopulation() int {
	var vacancy uint64
	for _, entry := range e.assignments.SupplyEntries(assignment.KindHousing) {
		if e.opts.RequirePositiveDesirability &&
			!desirability.IsPositive(e.layers.Housing().Query(entry.Position)) {
			continue
		}
		vacancy += uint64(entry.Remaining)
	}

	waiting := e.assignments.Stats(assignment.KindHousing).Pending
	if vacancy <= waiting {
		return 0
	}
	spawn := vacancy - waiting
	if limit := uint64(e.opts.MaxInhabitantsPerTick); spawn > limit {
		spawn = limit
	}

	for i := uint64(0); i < spawn; i++ {
		e.assignments.IntroduceDemand(e.ids.Next(), e.opts.NewcomerEducation)
	}
	return int(spawn)
}

// runPipeline proposes matches until the pipeline runs dry or the per-tick
// cap is hit. Every proposal is confirmed when a street path reaches the
// building and resigned otherwise.
//
// A resigned inhabitant is proposed again first, and the resigned building
// rotates behind the others, so an inhabitant offered a building they
// already tried this tick has been offered every candidate. They are
// postponed to the next tick and the inhabitants behind them get their turn.
func (e *Engine) runPipeline(report *TickReport, kind assignment.Kind) PipelineReport {
	var out PipelineReport
	match := e.assignments.MatchHousing
	if kind == assignment.KindEmployment {
		match = e.assignments.MatchEmployment
	}
	defer e.assignments.ResumePostponed(kind)

	type offer struct{ from, to shared.EntityID }
	tried := make(map[offer]struct{})
	routes := make(map[routeKey]bool)

	for settled := 0; settled < e.opts.MaxMatchesPerTick; {
		results := match()
		if len(results) == 0 {
			break
		}
		for _, result := range results {
			key := offer{from: result.From, to: result.To}
			if _, seen := tried[key]; seen {
				e.assignments.Postpone(result)
				continue
			}
			tried[key] = struct{}{}
			settled++

			if !e.reachable(routes, result.FromPosition, result.ToPosition) {
				e.assignments.Resign(result)
				out.Resigned = append(out.Resigned, result)
				continue
			}
			e.assignments.Confirm(result)
			out.Confirmed = append(out.Confirmed, result)

			occupancy := building.OccupancyChanged{BuildingID: result.To, Delta: int32(result.Count)}
			report.OccupancyEvents = append(report.OccupancyEvents, occupancy)
			snapshot, _ := e.buildings.Get(result.To)
			err := e.occupy(snapshot, occupancy.Delta)
			shared.Invariant(err == nil, "confirmed %s but occupancy update failed: %v", result, err)
		}
	}

	out.Stats = e.assignments.Stats(kind)
	return out
}

type routeKey struct{ from, to shared.Position }

// reachable reports whether a street path leads from one building or
// street to another. Answers are memoised in routes, which is only valid
// until the next Rebuild.
func (e *Engine) reachable(routes map[routeKey]bool, from, to shared.Position) bool {
	key := routeKey{from: from, to: to}
	if found, known := routes[key]; known {
		return found
	}
	_, _, found := e.streets.Route(from, to)
	routes[key] = found
	return found
}

// Getters

func (e *Engine) CurrentTick() uint64 { return e.tick }
func (e *Engine) Options() Options { return e.opts }
func (e *Engine) Catalog() *building.Catalog { return e.catalog }
func (e *Engine) Streets() *navigation.StreetGraph { return e.streets }
func (e *Engine) Desirability() *desirability.Layers { return e.layers }
func (e *Engine) Assignments() *assignment.Queue { return e.assignments }
func (e *Engine) Power() *power.Allocator { return e.power }
func (e *Engine) Buildings() *building.Registry { return e.buildings }
func (e *Engine) PendingEvents() int { return len(e.inbox) }
