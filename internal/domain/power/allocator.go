package power

import (
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Allocator dedicates producer capacity to consumers.
//
// Consumers keep the producers they were linked to: an uncovered consumer
// first draws from its own producers in link order and only then links a new
// producer, and only one able to cover the whole remainder. A consumer that
// cannot be fully covered stays flagged and is retried on the next pass.
//
// Invariants:
// - A consumer's CoveredWh never exceeds its RequestedWh
// - A producer's total draw never exceeds its TotalCapacityWh
// - CoveredWh equals the sum of the consumer's link draws
type Allocator struct {
	consumers     map[shared.EntityID]*Consumer
	consumerOrder []shared.EntityID
	producers     map[shared.EntityID]*Producer
	producerOrder []shared.EntityID

	uncovered   []shared.EntityID
	isUncovered map[shared.EntityID]struct{}
	links       map[shared.EntityID][]link
}

// NewAllocator creates an allocator with no consumers or producers
func NewAllocator() *Allocator {
	return &Allocator{
		consumers:   make(map[shared.EntityID]*Consumer),
		producers:   make(map[shared.EntityID]*Producer),
		isUncovered: make(map[shared.EntityID]struct{}),
		links:       make(map[shared.EntityID][]link),
	}
}

// RegisterConsumer adds a consumer requesting baseWh + perUnitWh*occupancy
func (a *Allocator) RegisterConsumer(id shared.EntityID, position shared.Position, baseWh, perUnitWh, occupancy uint32) {
	_, exists := a.consumers[id]
	shared.Invariant(!exists, "consumer %s already registered", id)

	a.consumers[id] = &Consumer{
		ID:        id,
		Position:  position,
		BaseWh:    baseWh,
		PerUnitWh: perUnitWh,
		Occupancy: occupancy,
	}
	a.consumerOrder = append(a.consumerOrder, id)
	a.flag(id)
}

// RegisterProducer adds a producer with capacityWh available
func (a *Allocator) RegisterProducer(id shared.EntityID, position shared.Position, capacityWh uint32) {
	_, exists := a.producers[id]
	shared.Invariant(!exists, "producer %s already registered", id)

	a.producers[id] = &Producer{
		ID:              id,
		Position:        position,
		TotalCapacityWh: capacityWh,
		RemainingWh:     capacityWh,
	}
	a.producerOrder = append(a.producerOrder, id)
}

func (a *Allocator) flag(id shared.EntityID) {
	if _, ok := a.isUncovered[id]; ok {
		return
	}
	a.isUncovered[id] = struct{}{}
	a.uncovered = append(a.uncovered, id)
}

// DedicatePower runs one allocation pass over the uncovered consumers in
// registration order and reports what changed
func (a *Allocator) DedicatePower() ChangeSet {
	changes := newChangeSetBuilder()

	for _, id := range a.uncovered {
		consumer := a.consumers[id]
		remaining := consumer.ShortfallWh()
		if remaining == 0 {
			continue
		}

		links := a.links[id]
		for i := range links {
			producer := a.producers[links[i].producer]
			drawn := min(producer.RemainingWh, remaining)
			if drawn == 0 {
				continue
			}
			a.draw(consumer, producer, &links[i], drawn)
			changes.draw(id, producer.ID, drawn)
			remaining -= drawn
			if remaining == 0 {
				break
			}
		}
		if remaining == 0 {
			continue
		}

		producer, ok := a.firstUnlinkedCovering(id, remaining)
		if !ok {
			continue
		}
		a.links[id] = append(a.links[id], link{producer: producer.ID})
		newLinks := a.links[id]
		a.draw(consumer, producer, &newLinks[len(newLinks)-1], remaining)
		changes.draw(id, producer.ID, remaining)
	}

	a.dropCovered()

	return changes.build(func(id shared.EntityID) uint32 {
		return a.consumers[id].ShortfallWh()
	})
}

func (a *Allocator) draw(c *Consumer, p *Producer, l *link, wh uint32) {
	shared.Invariant(wh <= p.RemainingWh, "producer %s over-drawn: %d > %d", p.ID, wh, p.RemainingWh)
	shared.Invariant(c.CoveredWh+wh <= c.RequestedWh(), "consumer %s over-covered", c.ID)
	p.RemainingWh -= wh
	c.CoveredWh += wh
	l.drawnWh += wh
}

func (a *Allocator) firstUnlinkedCovering(consumer shared.EntityID, need uint32) (*Producer, bool) {
	linked := make(map[shared.EntityID]struct{}, len(a.links[consumer]))
	for _, l := range a.links[consumer] {
		linked[l.producer] = struct{}{}
	}
	for _, id := range a.producerOrder {
		if _, ok := linked[id]; ok {
			continue
		}
		if p := a.producers[id]; p.RemainingWh >= need {
			return p, true
		}
	}
	return nil, false
}

func (a *Allocator) dropCovered() {
	kept := a.uncovered[:0]
	for _, id := range a.uncovered {
		if a.consumers[id].IsCovered() {
			delete(a.isUncovered, id)
			continue
		}
		kept = append(kept, id)
	}
	a.uncovered = kept
}

// UpdateOccupancy applies an occupancy change to a consumer.
//
// A growing request flags the consumer for the next pass. A shrinking
// request below the covered amount gives the surplus back to the linked
// producers, most recently linked first.
func (a *Allocator) UpdateOccupancy(id shared.EntityID, delta int32) error {
	consumer, ok := a.consumers[id]
	if !ok {
		return shared.NewUnknownBuildingError(id)
	}
	next := int64(consumer.Occupancy) + int64(delta)
	if next < 0 {
		return shared.NewOccupancyUnderflowError(id, consumer.Occupancy, delta)
	}
	consumer.Occupancy = uint32(next)

	requested := consumer.RequestedWh()
	if consumer.CoveredWh > requested {
		a.release(consumer, consumer.CoveredWh-requested)
	}
	if !consumer.IsCovered() {
		a.flag(id)
	}
	return nil
}

func (a *Allocator) release(c *Consumer, surplus uint32) {
	links := a.links[c.ID]
	for i := len(links) - 1; i >= 0 && surplus > 0; i-- {
		back := min(links[i].drawnWh, surplus)
		producer := a.producers[links[i].producer]
		links[i].drawnWh -= back
		producer.RemainingWh += back
		c.CoveredWh -= back
		surplus -= back
		shared.Invariant(producer.RemainingWh <= producer.TotalCapacityWh, "producer %s released beyond capacity", producer.ID)
	}
	shared.Invariant(surplus == 0, "consumer %s covered more than its links supply", c.ID)
}

// MissingPower sums the shortfall of every consumer not fully covered,
// saturating at the uint32 range
func (a *Allocator) MissingPower() uint32 {
	var total uint64
	for _, id := range a.uncovered {
		total += uint64(a.consumers[id].ShortfallWh())
	}
	return saturate(total)
}

// Coverage returns the shortfall of a building and whether it is fully
// covered. Producers are always covered; unknown ids report (0, false).
func (a *Allocator) Coverage(id shared.EntityID) (uint32, bool) {
	if _, ok := a.producers[id]; ok {
		return 0, true
	}
	c, ok := a.consumers[id]
	if !ok {
		return 0, false
	}
	return c.ShortfallWh(), c.IsCovered()
}

// Consumer returns a copy of a registered consumer
func (a *Allocator) Consumer(id shared.EntityID) (Consumer, bool) {
	c, ok := a.consumers[id]
	if !ok {
		return Consumer{}, false
	}
	return *c, true
}

// Producer returns a copy of a registered producer
func (a *Allocator) Producer(id shared.EntityID) (Producer, bool) {
	p, ok := a.producers[id]
	if !ok {
		return Producer{}, false
	}
	return *p, true
}

// LinkedProducers returns the producers a consumer is linked to, in link order
func (a *Allocator) LinkedProducers(consumer shared.EntityID) []shared.EntityID {
	out := make([]shared.EntityID, 0, len(a.links[consumer]))
	for _, l := range a.links[consumer] {
		out = append(out, l.producer)
	}
	return out
}

// UncoveredCount returns how many consumers are flagged for retry
func (a *Allocator) UncoveredCount() int {
	return len(a.uncovered)
}

// Totals sums capacity and draw across every producer
func (a *Allocator) Totals() (capacityWh, drawnWh uint64) {
	for _, id := range a.producerOrder {
		p := a.producers[id]
		capacityWh += uint64(p.TotalCapacityWh)
		drawnWh += uint64(p.DrawnWh())
	}
	return capacityWh, drawnWh
}

// Consumers returns copies of every consumer in registration order
func (a *Allocator) Consumers() []Consumer {
	out := make([]Consumer, 0, len(a.consumerOrder))
	for _, id := range a.consumerOrder {
		out = append(out, *a.consumers[id])
	}
	return out
}
