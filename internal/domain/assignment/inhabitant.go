package assignment

import (
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Residence is a building an inhabitant is bound to
type Residence struct {
	BuildingID shared.EntityID
	Position   shared.Position
}

// Inhabitant is a person known to the queue.
//
// Invariants:
// - Home is set at most once
// - Workplace is set at most once
type Inhabitant struct {
	id        shared.EntityID
	education shared.EducationLevel
	home      *Residence
	workplace *Residence
}

func newInhabitant(id shared.EntityID, education shared.EducationLevel) *Inhabitant {
	return &Inhabitant{id: id, education: education}
}

// Getters

func (i *Inhabitant) ID() shared.EntityID              { return i.id }
func (i *Inhabitant) Education() shared.EducationLevel { return i.education }

// Home returns the house the inhabitant lives in, if any
func (i *Inhabitant) Home() (Residence, bool) {
	if i.home == nil {
		return Residence{}, false
	}
	return *i.home, true
}

// Workplace returns the office the inhabitant works at, if any
func (i *Inhabitant) Workplace() (Residence, bool) {
	if i.workplace == nil {
		return Residence{}, false
	}
	return *i.workplace, true
}

func (i *Inhabitant) homeFound(r Residence) {
	shared.Invariant(i.home == nil, "inhabitant %s already has a home", i.id)
	i.home = &r
}

func (i *Inhabitant) workplaceFound(r Residence) {
	shared.Invariant(i.workplace == nil, "inhabitant %s already has a workplace", i.id)
	i.workplace = &r
}
