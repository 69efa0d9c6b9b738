package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/citysim-go/internal/domain/power"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// powerContext holds state for power allocation scenarios
type powerContext struct {
	ids       *shared.IDAllocator
	allocator *power.Allocator
	consumers []shared.EntityID
	named     map[string]shared.EntityID
	changes   power.ChangeSet
}

func (pc *powerContext) reset() {
	pc.ids = shared.NewIDAllocator()
	pc.allocator = power.NewAllocator()
	pc.consumers = nil
	pc.named = make(map[string]shared.EntityID)
	pc.changes = power.ChangeSet{}
}

func (pc *powerContext) aPowerProducerWithCapacity(capacityWh int) error {
	pc.allocator.RegisterProducer(pc.ids.Next(), shared.NewPosition(-5, -5), uint32(capacityWh))
	return nil
}

func (pc *powerContext) aPowerConsumerRequesting(requestedWh int) error {
	id := pc.ids.Next()
	pc.allocator.RegisterConsumer(id, shared.NewPosition(int64(len(pc.consumers)), 1), uint32(requestedWh), 0, 0)
	pc.consumers = append(pc.consumers, id)
	return nil
}

func (pc *powerContext) powerConsumers(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		name, err := cellValue(table, row, "name")
		if err != nil {
			return err
		}
		base, err := cellUint32(table, row, "base")
		if err != nil {
			return err
		}
		perOccupant, err := cellUint32(table, row, "per_occupant")
		if err != nil {
			return err
		}
		occupants, err := cellUint32(table, row, "occupants")
		if err != nil {
			return err
		}

		id := pc.ids.Next()
		pc.allocator.RegisterConsumer(id, shared.NewPosition(int64(len(pc.consumers)), 1), base, perOccupant, occupants)
		pc.consumers = append(pc.consumers, id)
		pc.named[name] = id
	}
	return nil
}

func (pc *powerContext) consumerShouldBeCovered(name string) error {
	id, ok := pc.named[name]
	if !ok {
		return fmt.Errorf("no consumer named %q", name)
	}
	consumer, ok := pc.allocator.Consumer(id)
	if !ok {
		return fmt.Errorf("consumer %q is not registered", name)
	}
	if !consumer.IsCovered() {
		return fmt.Errorf("consumer %q is short by %d Wh", name, consumer.ShortfallWh())
	}
	return nil
}

func (pc *powerContext) powerIsDedicated() error {
	pc.changes = pc.allocator.DedicatePower()
	return nil
}

func (pc *powerContext) theMissingPowerShouldBe(missingWh int) error {
	return expectEqual("missing power", uint32(missingWh), pc.allocator.MissingPower())
}

func (pc *powerContext) everyConsumerShouldBeCovered() error {
	for _, id := range pc.consumers {
		consumer, ok := pc.allocator.Consumer(id)
		if !ok {
			return fmt.Errorf("consumer %s is not registered", id.Short())
		}
		if !consumer.IsCovered() {
			return fmt.Errorf("consumer %s is short by %d Wh", id.Short(), consumer.ShortfallWh())
		}
	}
	if pc.changes.IsEmpty() {
		return fmt.Errorf("expected the allocation to report changes")
	}
	return nil
}

// InitializePowerAllocationScenario registers power allocation steps
func InitializePowerAllocationScenario(sc *godog.ScenarioContext) {
	pc := &powerContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	sc.Step(`^a power producer with capacity (\d+) Wh$`, pc.aPowerProducerWithCapacity)
	sc.Step(`^a power consumer requesting (\d+) Wh$`, pc.aPowerConsumerRequesting)
	sc.Step(`^power consumers:$`, pc.powerConsumers)
	sc.Step(`^power is dedicated$`, pc.powerIsDedicated)
	sc.Step(`^the missing power should be (\d+) Wh$`, pc.theMissingPowerShouldBe)
	sc.Step(`^every consumer should be covered$`, pc.everyConsumerShouldBeCovered)
	sc.Step(`^consumer "([^"]*)" should be covered$`, pc.consumerShouldBeCovered)
}
