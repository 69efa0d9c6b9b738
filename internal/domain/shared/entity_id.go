package shared

import (
	"github.com/google/uuid"
)

// EntityID identifies a building or an inhabitant inside the simulation.
//
// Ids are issued by IDAllocator and never derived from identifiers of the
// host runtime.
type EntityID struct {
	uuid.UUID
}

// NilEntityID is the zero id; it is never issued by an allocator
var NilEntityID = EntityID{}

// ParseEntityID parses the canonical UUID text form
func ParseEntityID(s string) (EntityID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilEntityID, NewValidationError("entity_id", err.Error())
	}
	return EntityID{UUID: id}, nil
}

// IsNil reports whether the id is the zero id
func (id EntityID) IsNil() bool {
	return id.UUID == uuid.Nil
}

// Short returns the first 8 hex characters, enough to tell ids apart in logs
func (id EntityID) Short() string {
	return id.String()[:8]
}

// IDAllocator issues entity ids.
//
// Scenario files name buildings with stable keys; ForKey maps each key to a
// single id for the lifetime of the allocator.
type IDAllocator struct {
	byKey  map[string]EntityID
	issued int
}

// NewIDAllocator creates an empty allocator
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{
		byKey: make(map[string]EntityID),
	}
}

// Next issues a fresh id
func (a *IDAllocator) Next() EntityID {
	a.issued++
	return EntityID{UUID: uuid.New()}
}

// ForKey returns the id bound to key, issuing one on first use
func (a *IDAllocator) ForKey(key string) EntityID {
	if id, ok := a.byKey[key]; ok {
		return id
	}
	id := a.Next()
	a.byKey[key] = id
	return id
}

// Lookup returns the id bound to key without issuing one
func (a *IDAllocator) Lookup(key string) (EntityID, bool) {
	id, ok := a.byKey[key]
	return id, ok
}

// Issued returns how many ids the allocator has handed out
func (a *IDAllocator) Issued() int {
	return a.issued
}
