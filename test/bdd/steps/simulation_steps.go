package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/citysim-go/internal/adapters/scenario"
	"github.com/andrescamacho/citysim-go/internal/application/simulation"
	"github.com/andrescamacho/citysim-go/internal/domain/building"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// simulationContext holds state for end-to-end engine scenarios
type simulationContext struct {
	scenario *scenario.Scenario
	ids      *shared.IDAllocator
	extra    map[uint64][]building.Event
	last     *simulation.TickReport
}

func (sc *simulationContext) reset() {
	sc.scenario = nil
	sc.ids = shared.NewIDAllocator()
	sc.extra = make(map[uint64][]building.Event)
	sc.last = nil
}

// mergedSource adds events from steps to the scenario schedule
type mergedSource struct {
	schedule *scenario.Schedule
	extra    map[uint64][]building.Event
}

func (m mergedSource) EventsFor(tick uint64) []building.Event {
	events := append([]building.Event(nil), m.schedule.EventsFor(tick)...)
	return append(events, m.extra[tick]...)
}

func (sc *simulationContext) theScenario(doc *godog.DocString) error {
	parsed, err := scenario.Parse([]byte(doc.Content))
	if err != nil {
		return err
	}
	sc.scenario = parsed
	return nil
}

func (sc *simulationContext) theHostRemovesResidentsFromBeforeTick(count int, key string, tick int) error {
	sc.extra[uint64(tick)] = append(sc.extra[uint64(tick)], building.OccupancyChanged{
		BuildingID: sc.ids.ForKey(key),
		Delta:      -int32(count),
	})
	return nil
}

func (sc *simulationContext) theCityRunsForTicks(ticks int) error {
	schedule, err := sc.scenario.Schedule(sc.ids)
	if err != nil {
		return err
	}

	opts := simulation.DefaultOptions()
	opts.RunID = "bdd"
	opts.Entry = sc.scenario.EntryOr(opts.Entry)
	opts.IDs = sc.ids
	opts.Clock = shared.NewMockClock(shared.NewRealClock().Now())
	engine := simulation.NewEngine(opts)

	runner := simulation.NewRunner(engine, 0)
	runner.SetSource(mergedSource{schedule: schedule, extra: sc.extra})
	last, err := runner.Run(context.Background(), uint64(ticks))
	if err != nil {
		return err
	}
	if last == nil || last.Tick != uint64(ticks) {
		return fmt.Errorf("expected %d ticks to run", ticks)
	}
	sc.last = last
	return nil
}

func (sc *simulationContext) thePopulationShouldBe(population int) error {
	return expectEqual("population", uint64(population), sc.last.Population)
}

func (sc *simulationContext) inhabitantsShouldBeEmployed(employed int) error {
	return expectEqual("employed inhabitants", uint64(employed), sc.last.Employed)
}

func (sc *simulationContext) thePowerShortfallShouldBe(missingWh int) error {
	return expectEqual("missing power", uint32(missingWh), sc.last.Power.MissingWh)
}

// InitializeSimulationScenario registers engine steps
func InitializeSimulationScenario(ctx *godog.ScenarioContext) {
	sc := &simulationContext{}

	ctx.Before(func(c context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return c, nil
	})

	ctx.Step(`^the scenario:$`, sc.theScenario)
	ctx.Step(`^the host removes (\d+) residents from "([^"]*)" before tick (\d+)$`, sc.theHostRemovesResidentsFromBeforeTick)
	ctx.Step(`^the city runs for (\d+) ticks?$`, sc.theCityRunsForTicks)
	ctx.Step(`^the population should be (\d+)$`, sc.thePopulationShouldBe)
	ctx.Step(`^(\d+) inhabitants should be employed$`, sc.inhabitantsShouldBeEmployed)
	ctx.Step(`^the power shortfall should be (\d+) Wh$`, sc.thePowerShortfallShouldBe)
}
