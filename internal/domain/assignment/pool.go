package assignment

import (
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// demandPool is an insertion-ordered set of waiting inhabitant ids
type demandPool struct {
	ids     []shared.EntityID
	members map[shared.EntityID]struct{}
}

func newDemandPool() *demandPool {
	return &demandPool{members: make(map[shared.EntityID]struct{})}
}

func (p *demandPool) Len() int { return len(p.ids) }

func (p *demandPool) Contains(id shared.EntityID) bool {
	_, ok := p.members[id]
	return ok
}

func (p *demandPool) PushBack(id shared.EntityID) {
	if p.Contains(id) {
		return
	}
	p.members[id] = struct{}{}
	p.ids = append(p.ids, id)
}

// PushFront puts a returning id ahead of everyone so it keeps its seniority
func (p *demandPool) PushFront(id shared.EntityID) {
	if p.Contains(id) {
		return
	}
	p.members[id] = struct{}{}
	p.ids = append([]shared.EntityID{id}, p.ids...)
}

// TakeFirst removes and returns the oldest id accepted by eligible
func (p *demandPool) TakeFirst(eligible func(shared.EntityID) bool) (shared.EntityID, bool) {
	for i, id := range p.ids {
		if eligible != nil && !eligible(id) {
			continue
		}
		p.ids = append(p.ids[:i], p.ids[i+1:]...)
		delete(p.members, id)
		return id, true
	}
	return shared.NilEntityID, false
}

func (p *demandPool) Snapshot() []shared.EntityID {
	out := make([]shared.EntityID, len(p.ids))
	copy(out, p.ids)
	return out
}

// SupplyEntry is a building with room left for occupants
type SupplyEntry struct {
	BuildingID        shared.EntityID
	Position          shared.Position
	Remaining         uint32
	RequiredEducation shared.EducationLevel
}

// supplyPool is an insertion-ordered collection of supply entries
type supplyPool struct {
	entries []*SupplyEntry
	byID    map[shared.EntityID]*SupplyEntry
}

func newSupplyPool() *supplyPool {
	return &supplyPool{byID: make(map[shared.EntityID]*SupplyEntry)}
}

func (p *supplyPool) Len() int { return len(p.entries) }

// Add registers capacity for a building, accumulating when the entry exists
func (p *supplyPool) Add(entry SupplyEntry) {
	if existing, ok := p.byID[entry.BuildingID]; ok {
		existing.Remaining += entry.Remaining
		existing.RequiredEducation = entry.RequiredEducation
		return
	}
	e := entry
	p.entries = append(p.entries, &e)
	p.byID[e.BuildingID] = &e
}

// Available returns the entries with room in selection order, dropping the
// exhausted entries at the head of the pool
func (p *supplyPool) Available() []*SupplyEntry {
	for len(p.entries) > 0 && p.entries[0].Remaining == 0 {
		delete(p.byID, p.entries[0].BuildingID)
		p.entries = p.entries[1:]
	}
	out := make([]*SupplyEntry, 0, len(p.entries))
	for _, e := range p.entries {
		if e.Remaining > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Restore gives count units back to a building and moves it to the back of
// the pool so an unreachable building does not shadow the others. The entry
// is recreated when it was already dropped.
func (p *supplyPool) Restore(buildingID shared.EntityID, position shared.Position, count uint32, required shared.EducationLevel) {
	entry, ok := p.byID[buildingID]
	if !ok {
		entry = &SupplyEntry{
			BuildingID:        buildingID,
			Position:          position,
			RequiredEducation: required,
		}
		p.byID[buildingID] = entry
	} else {
		p.remove(buildingID)
	}
	entry.Remaining += count
	p.entries = append(p.entries, entry)
}

// Withdraw takes up to count units away from a building and returns how
// many were taken
func (p *supplyPool) Withdraw(buildingID shared.EntityID, count uint32) uint32 {
	entry, ok := p.byID[buildingID]
	if !ok {
		return 0
	}
	taken := min(entry.Remaining, count)
	entry.Remaining -= taken
	return taken
}

func (p *supplyPool) remove(buildingID shared.EntityID) {
	for i, e := range p.entries {
		if e.BuildingID == buildingID {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return
		}
	}
}

func (p *supplyPool) Get(buildingID shared.EntityID) (SupplyEntry, bool) {
	e, ok := p.byID[buildingID]
	if !ok {
		return SupplyEntry{}, false
	}
	return *e, true
}

func (p *supplyPool) FreeCapacity() uint64 {
	var total uint64
	for _, e := range p.entries {
		total += uint64(e.Remaining)
	}
	return total
}

func (p *supplyPool) Snapshot() []SupplyEntry {
	out := make([]SupplyEntry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, *e)
	}
	return out
}
