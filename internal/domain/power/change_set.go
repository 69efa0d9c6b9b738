package power

import (
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// ConsumerChange is the power newly dedicated to one consumer in a pass
type ConsumerChange struct {
	ID          shared.EntityID
	DrawnWh     uint32
	ShortfallWh uint32
}

// ProducerChange is the power one producer dedicated in a pass
type ProducerChange struct {
	ID      shared.EntityID
	DrawnWh uint32
}

// ChangeSet lists what changed during one DedicatePower pass, in the order
// consumers were served and producers were first drawn from
type ChangeSet struct {
	Consumers []ConsumerChange
	Producers []ProducerChange
}

// IsEmpty reports whether the pass changed nothing
func (c ChangeSet) IsEmpty() bool {
	return len(c.Consumers) == 0 && len(c.Producers) == 0
}

// TotalDrawnWh sums the power dedicated during the pass
func (c ChangeSet) TotalDrawnWh() uint64 {
	var total uint64
	for _, p := range c.Producers {
		total += uint64(p.DrawnWh)
	}
	return total
}

// changeSetBuilder accumulates draws keyed by id while keeping first-seen order
type changeSetBuilder struct {
	consumerIndex map[shared.EntityID]int
	producerIndex map[shared.EntityID]int
	set           ChangeSet
}

func newChangeSetBuilder() *changeSetBuilder {
	return &changeSetBuilder{
		consumerIndex: make(map[shared.EntityID]int),
		producerIndex: make(map[shared.EntityID]int),
	}
}

func (b *changeSetBuilder) draw(consumer, producer shared.EntityID, wh uint32) {
	if wh == 0 {
		return
	}
	i, ok := b.consumerIndex[consumer]
	if !ok {
		i = len(b.set.Consumers)
		b.consumerIndex[consumer] = i
		b.set.Consumers = append(b.set.Consumers, ConsumerChange{ID: consumer})
	}
	b.set.Consumers[i].DrawnWh += wh

	j, ok := b.producerIndex[producer]
	if !ok {
		j = len(b.set.Producers)
		b.producerIndex[producer] = j
		b.set.Producers = append(b.set.Producers, ProducerChange{ID: producer})
	}
	b.set.Producers[j].DrawnWh += wh
}

func (b *changeSetBuilder) build(shortfall func(shared.EntityID) uint32) ChangeSet {
	for i := range b.set.Consumers {
		b.set.Consumers[i].ShortfallWh = shortfall(b.set.Consumers[i].ID)
	}
	return b.set
}
