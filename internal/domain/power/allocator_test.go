package power_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/citysim-go/internal/domain/power"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

const (
	houseResidentWh = 300
	officeWorkerWh  = 2000
	biomassPlantWh  = 7_000_000
)

var origin = shared.NewPosition(0, 0)

func assertBalanced(t *testing.T, a *power.Allocator, producers ...shared.EntityID) {
	t.Helper()
	for _, c := range a.Consumers() {
		assert.LessOrEqual(t, c.CoveredWh, c.RequestedWh(), "consumer %s over-covered", c.ID)
		assert.Equal(t, c.RequestedWh(), c.CoveredWh+c.ShortfallWh())
	}
	for _, id := range producers {
		p, ok := a.Producer(id)
		require.True(t, ok)
		assert.LessOrEqual(t, p.DrawnWh(), p.TotalCapacityWh, "producer %s over-drawn", id)
	}
}

func TestDedicatePower_SingleConsumerFullyCovered(t *testing.T) {
	// Arrange
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	plant, house := alloc.Next(), alloc.Next()
	a.RegisterProducer(plant, shared.NewPosition(3, 0), biomassPlantWh)
	a.RegisterConsumer(house, origin, 0, houseResidentWh, 8)

	// Act
	changes := a.DedicatePower()

	// Assert
	assert.Equal(t, uint32(0), a.MissingPower())
	require.Len(t, changes.Consumers, 1)
	assert.Equal(t, power.ConsumerChange{ID: house, DrawnWh: 2400, ShortfallWh: 0}, changes.Consumers[0])
	assert.Equal(t, []power.ProducerChange{{ID: plant, DrawnWh: 2400}}, changes.Producers)
	assert.Equal(t, []shared.EntityID{plant}, a.LinkedProducers(house))

	shortfall, covered := a.Coverage(house)
	assert.Equal(t, uint32(0), shortfall)
	assert.True(t, covered)
	assertBalanced(t, a, plant)
}

func TestDedicatePower_NoProducersChangesNothing(t *testing.T) {
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	house, office := alloc.Next(), alloc.Next()
	a.RegisterConsumer(house, origin, 0, houseResidentWh, 16)
	a.RegisterConsumer(office, origin, 0, officeWorkerWh, 10)

	changes := a.DedicatePower()

	assert.True(t, changes.IsEmpty())
	assert.Equal(t, uint32(16*houseResidentWh+10*officeWorkerWh), a.MissingPower())
	assert.Equal(t, 2, a.UncoveredCount())
}

func TestDedicatePower_LatePlantCoversEveryone(t *testing.T) {
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	house1, house2, office := alloc.Next(), alloc.Next(), alloc.Next()
	a.RegisterConsumer(house1, origin, 0, houseResidentWh, 16)
	a.RegisterConsumer(house2, origin, 0, houseResidentWh, 8)
	a.RegisterConsumer(office, origin, 0, officeWorkerWh, 10)
	require.True(t, a.DedicatePower().IsEmpty())

	plant := alloc.Next()
	a.RegisterProducer(plant, shared.NewPosition(3, 0), biomassPlantWh)
	changes := a.DedicatePower()

	require.Len(t, changes.Consumers, 3)
	assert.Equal(t, house1, changes.Consumers[0].ID)
	assert.Equal(t, house2, changes.Consumers[1].ID)
	assert.Equal(t, office, changes.Consumers[2].ID)
	assert.Equal(t, uint64(4800+2400+20000), changes.TotalDrawnWh())

	assert.True(t, a.DedicatePower().IsEmpty(), "second pass has nothing to do")
	for _, id := range []shared.EntityID{house1, house2, office, plant} {
		shortfall, covered := a.Coverage(id)
		assert.Equal(t, uint32(0), shortfall)
		assert.True(t, covered)
	}
}

func TestDedicatePower_InsufficientPower(t *testing.T) {
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	plant := alloc.Next()
	a.RegisterProducer(plant, shared.NewPosition(3, 0), biomassPlantWh)

	// keep adding full houses until one can no longer be served
	var houses int
	for {
		houses++
		a.RegisterConsumer(alloc.Next(), origin, 0, houseResidentWh, 8)
		if a.DedicatePower().IsEmpty() {
			break
		}
	}

	assert.Equal(t, biomassPlantWh/2400+1, houses)
	assert.Equal(t, uint32(2400), a.MissingPower())

	late := alloc.Next()
	a.RegisterConsumer(late, origin, 0, houseResidentWh, 8)
	assert.True(t, a.DedicatePower().IsEmpty())
	assert.Equal(t, uint32(4800), a.MissingPower())

	shortfall, covered := a.Coverage(late)
	assert.Equal(t, uint32(2400), shortfall)
	assert.False(t, covered)
	assertBalanced(t, a, plant)
}

func TestDedicatePower_PartialCoverageIsRetried(t *testing.T) {
	// Arrange
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	small, house := alloc.Next(), alloc.Next()
	a.RegisterProducer(small, origin, 3000)
	a.RegisterConsumer(house, origin, 0, houseResidentWh, 8)
	a.DedicatePower()

	// Act: the house grows beyond what its producer has left
	require.NoError(t, a.UpdateOccupancy(house, 4))
	changes := a.DedicatePower()

	// Assert: the linked producer gives what it has, the rest stays missing
	assert.Equal(t, []power.ConsumerChange{{ID: house, DrawnWh: 600, ShortfallWh: 600}}, changes.Consumers)
	assert.Equal(t, uint32(600), a.MissingPower())
	assert.Equal(t, 1, a.UncoveredCount())

	// a new producer shows up and covers the remainder on the next pass
	extra := alloc.Next()
	a.RegisterProducer(extra, origin, 1000)
	changes = a.DedicatePower()

	assert.Equal(t, []power.ProducerChange{{ID: extra, DrawnWh: 600}}, changes.Producers)
	assert.Equal(t, uint32(0), a.MissingPower())
	assert.Equal(t, []shared.EntityID{small, extra}, a.LinkedProducers(house))
	assertBalanced(t, a, small, extra)
}

func TestDedicatePower_NewProducerMustCoverWholeRemainder(t *testing.T) {
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	tiny, house := alloc.Next(), alloc.Next()
	a.RegisterProducer(tiny, origin, 1000)
	a.RegisterConsumer(house, origin, 0, houseResidentWh, 8)

	changes := a.DedicatePower()

	assert.True(t, changes.IsEmpty())
	assert.Empty(t, a.LinkedProducers(house))
	p, _ := a.Producer(tiny)
	assert.Equal(t, uint32(1000), p.RemainingWh)
}

func TestUpdateOccupancy_ReleasesSurplusNewestLinkFirst(t *testing.T) {
	// Arrange
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	first, second, house := alloc.Next(), alloc.Next(), alloc.Next()
	a.RegisterProducer(first, origin, 2400)
	a.RegisterProducer(second, origin, 5000)
	a.RegisterConsumer(house, origin, 0, houseResidentWh, 8)
	a.DedicatePower()
	require.NoError(t, a.UpdateOccupancy(house, 10))
	a.DedicatePower()
	require.Equal(t, []shared.EntityID{first, second}, a.LinkedProducers(house))

	// Act
	require.NoError(t, a.UpdateOccupancy(house, -10))

	// Assert
	c, _ := a.Consumer(house)
	assert.Equal(t, uint32(2400), c.CoveredWh)
	p1, _ := a.Producer(first)
	p2, _ := a.Producer(second)
	assert.Equal(t, uint32(0), p1.RemainingWh)
	assert.Equal(t, uint32(5000), p2.RemainingWh)
	assert.Equal(t, uint32(0), a.MissingPower())
	assertBalanced(t, a, first, second)
}

func TestUpdateOccupancy_Errors(t *testing.T) {
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	house := alloc.Next()
	a.RegisterConsumer(house, origin, 0, houseResidentWh, 1)

	var unknown *shared.UnknownBuildingError
	require.ErrorAs(t, a.UpdateOccupancy(alloc.Next(), 1), &unknown)

	var underflow *shared.OccupancyUnderflowError
	require.ErrorAs(t, a.UpdateOccupancy(house, -2), &underflow)
}

func TestUpdateOccupancy_EmptyHouseIsCovered(t *testing.T) {
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	house := alloc.Next()
	a.RegisterConsumer(house, origin, 0, houseResidentWh, 0)

	a.DedicatePower()
	assert.Equal(t, 0, a.UncoveredCount())

	require.NoError(t, a.UpdateOccupancy(house, 1))
	assert.Equal(t, uint32(300), a.MissingPower())
}

func TestCoverage_UnknownBuilding(t *testing.T) {
	a := power.NewAllocator()

	shortfall, covered := a.Coverage(shared.NewIDAllocator().Next())

	assert.Equal(t, uint32(0), shortfall)
	assert.False(t, covered)
}

func TestRegister_DuplicatesViolateInvariant(t *testing.T) {
	if !shared.InvariantsEnabled {
		t.Skip("invariants compiled out")
	}
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	id := alloc.Next()
	a.RegisterConsumer(id, origin, 0, 1, 1)

	assert.Panics(t, func() { a.RegisterConsumer(id, origin, 0, 1, 1) })
}

func TestTotals(t *testing.T) {
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	a.RegisterProducer(alloc.Next(), origin, 5000)
	a.RegisterProducer(alloc.Next(), origin, 7000)
	a.RegisterConsumer(alloc.Next(), origin, 100, 300, 2)
	a.DedicatePower()

	capacity, drawn := a.Totals()

	assert.Equal(t, uint64(12000), capacity)
	assert.Equal(t, uint64(700), drawn)
}

func TestRequestsSaturateInsteadOfWrapping(t *testing.T) {
	// Arrange
	alloc := shared.NewIDAllocator()
	a := power.NewAllocator()
	huge, big := alloc.Next(), alloc.Next()
	a.RegisterConsumer(huge, origin, 0, 2_000_000, 4_000)
	a.RegisterConsumer(big, shared.NewPosition(1, 0), math.MaxUint32-10, 0, 0)

	// Act
	a.DedicatePower()

	// Assert
	consumer, ok := a.Consumer(huge)
	require.True(t, ok)
	assert.Equal(t, uint32(math.MaxUint32), consumer.RequestedWh())
	assert.Equal(t, uint32(math.MaxUint32), a.MissingPower())
}
