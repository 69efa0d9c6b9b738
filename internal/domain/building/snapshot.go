package building

import (
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Snapshot is the core's view of one completed building.
//
// Kind-specific data is reached through AsHouse / AsOffice, which report
// false for any other kind instead of panicking.
type Snapshot struct {
	ID        shared.EntityID
	Kind      Kind
	Position  shared.Position
	Capacity  uint32
	Occupancy uint32
}

// House is the housing view of a snapshot
type House struct {
	ID               shared.EntityID
	Position         shared.Position
	MaxResidents     uint32
	CurrentResidents uint32
}

// Office is the employment view of a snapshot
type Office struct {
	ID             shared.EntityID
	Position       shared.Position
	MaxWorkers     uint32
	CurrentWorkers uint32
}

// AsHouse returns the housing view when the snapshot is a house
func (s Snapshot) AsHouse() (House, bool) {
	if s.Kind != KindHouse {
		return House{}, false
	}
	return House{
		ID:               s.ID,
		Position:         s.Position,
		MaxResidents:     s.Capacity,
		CurrentResidents: s.Occupancy,
	}, true
}

// AsOffice returns the employment view when the snapshot is an office
func (s Snapshot) AsOffice() (Office, bool) {
	if s.Kind != KindOffice {
		return Office{}, false
	}
	return Office{
		ID:             s.ID,
		Position:       s.Position,
		MaxWorkers:     s.Capacity,
		CurrentWorkers: s.Occupancy,
	}, true
}

// Vacancies returns how many more occupants fit
func (s Snapshot) Vacancies() uint32 {
	if s.Occupancy >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Occupancy
}

// Registry tracks completed buildings by id, in completion order
type Registry struct {
	byID  map[shared.EntityID]*Snapshot
	order []shared.EntityID
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[shared.EntityID]*Snapshot),
	}
}

// Add records a completed building
func (r *Registry) Add(s Snapshot) error {
	if _, exists := r.byID[s.ID]; exists {
		return shared.NewDuplicateBuildingError(s.ID)
	}
	snapshot := s
	r.byID[s.ID] = &snapshot
	r.order = append(r.order, s.ID)
	return nil
}

// Get returns a copy of the snapshot for id
func (r *Registry) Get(id shared.EntityID) (Snapshot, bool) {
	s, ok := r.byID[id]
	if !ok {
		return Snapshot{}, false
	}
	return *s, true
}

// ApplyOccupancy adds delta occupants to a building and returns the updated snapshot.
// Going below zero is a boundary error; exceeding capacity is an invariant violation.
func (r *Registry) ApplyOccupancy(id shared.EntityID, delta int32) (Snapshot, error) {
	s, ok := r.byID[id]
	if !ok {
		return Snapshot{}, shared.NewUnknownBuildingError(id)
	}

	next := int64(s.Occupancy) + int64(delta)
	if next < 0 {
		return Snapshot{}, shared.NewOccupancyUnderflowError(id, s.Occupancy, delta)
	}
	shared.Invariant(next <= int64(s.Capacity), "building %s occupancy %d exceeds capacity %d", id, next, s.Capacity)

	s.Occupancy = uint32(next)
	return *s, nil
}

// All returns every snapshot in completion order
func (r *Registry) All() []Snapshot {
	out := make([]Snapshot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// Len returns the number of registered buildings
func (r *Registry) Len() int {
	return len(r.order)
}

// Population returns the total number of residents across all houses
func (r *Registry) Population() uint64 {
	var total uint64
	for _, id := range r.order {
		if h, ok := r.byID[id].AsHouse(); ok {
			total += uint64(h.CurrentResidents)
		}
	}
	return total
}
