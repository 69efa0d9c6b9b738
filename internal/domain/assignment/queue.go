package assignment

import (
	"fmt"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Result is a proposed pairing of an inhabitant with a building.
// Every result handed out by a match is settled exactly once, by Confirm or
// by Resign.
type Result struct {
	Kind         Kind
	From         shared.EntityID
	FromPosition shared.Position
	To           shared.EntityID
	ToPosition   shared.Position
	Count        uint32
}

func (r Result) String() string {
	return fmt.Sprintf("%s %s@%s → %s@%s x%d", r.Kind, r.From.Short(), r.FromPosition, r.To.Short(), r.ToPosition, r.Count)
}

// Stats summarises one pipeline.
//
// Introduced == Matched + Pending holds at every point in time; Matched
// counts both confirmed and in-flight results.
type Stats struct {
	Kind         Kind
	Introduced   uint64
	Matched      uint64
	Confirmed    uint64
	InFlight     uint64
	Pending      uint64
	FreeCapacity uint64
}

type pipeline struct {
	kind       Kind
	demand     *demandPool
	supply     *supplyPool
	inFlight   map[shared.EntityID]Result
	postponed  map[shared.EntityID]struct{}
	introduced uint64
	confirmed  uint64
}

func newPipeline(kind Kind) *pipeline {
	return &pipeline{
		kind:     kind,
		demand:   newDemandPool(),
		supply:   newSupplyPool(),
		inFlight:  make(map[shared.EntityID]Result),
		postponed: make(map[shared.EntityID]struct{}),
	}
}

func (p *pipeline) stats() Stats {
	inFlight := uint64(len(p.inFlight))
	return Stats{
		Kind:         p.kind,
		Introduced:   p.introduced,
		Matched:      p.confirmed + inFlight,
		Confirmed:    p.confirmed,
		InFlight:     inFlight,
		Pending:      uint64(p.demand.Len()),
		FreeCapacity: p.supply.FreeCapacity(),
	}
}

// Queue matches waiting inhabitants against buildings with room.
//
// Two pipelines share the same shape: newcomers are matched with houses,
// and housed inhabitants are matched with offices whose required education
// they satisfy. Both sides are insertion-ordered so that a replay makes the
// same decisions; "first available" means the oldest registered entry.
type Queue struct {
	entry       shared.Position
	inhabitants map[shared.EntityID]*Inhabitant
	housing     *pipeline
	employment  *pipeline
	required    map[shared.EntityID]shared.EducationLevel
}

// NewQueue creates an empty queue. Newcomers travel from entry.
func NewQueue(entry shared.Position) *Queue {
	return &Queue{
		entry:       entry,
		inhabitants: make(map[shared.EntityID]*Inhabitant),
		housing:     newPipeline(KindHousing),
		employment:  newPipeline(KindEmployment),
		required:    make(map[shared.EntityID]shared.EducationLevel),
	}
}

func (q *Queue) pipeline(kind Kind) *pipeline {
	switch kind {
	case KindHousing:
		return q.housing
	case KindEmployment:
		return q.employment
	}
	panic(fmt.Sprintf("unknown assignment kind %q", kind))
}

// SupplyOption customises a supply registration
type SupplyOption func(*SupplyEntry)

// RequireEducation restricts an office to workers at or above level
func RequireEducation(level shared.EducationLevel) SupplyOption {
	return func(e *SupplyEntry) {
		e.RequiredEducation = level
	}
}

// RegisterSupply offers capacity units of a building to a pipeline.
// Registering the same building again accumulates its capacity and keeps
// its required education unless an option overrides it.
func (q *Queue) RegisterSupply(kind Kind, buildingID shared.EntityID, position shared.Position, capacity uint32, opts ...SupplyOption) {
	entry := SupplyEntry{
		BuildingID:        buildingID,
		Position:          position,
		Remaining:         capacity,
		RequiredEducation: q.required[buildingID],
	}
	for _, opt := range opts {
		opt(&entry)
	}
	if kind == KindEmployment {
		q.required[buildingID] = entry.RequiredEducation
	}
	q.pipeline(kind).supply.Add(entry)
}

// WithdrawSupply removes up to count free units of a building from matching,
// for occupants placed outside the queue. It returns how many were removed.
func (q *Queue) WithdrawSupply(kind Kind, buildingID shared.EntityID, count uint32) uint32 {
	return q.pipeline(kind).supply.Withdraw(buildingID, count)
}

// IntroduceDemand adds a newcomer looking for a home
func (q *Queue) IntroduceDemand(id shared.EntityID, education shared.EducationLevel) {
	if _, known := q.inhabitants[id]; known {
		return
	}
	q.inhabitants[id] = newInhabitant(id, education)
	q.housing.demand.PushBack(id)
	q.housing.introduced++
}

// RegisterWorker adds an inhabitant to the job seekers.
// Unknown ids are recorded as inhabitants without a home.
func (q *Queue) RegisterWorker(id shared.EntityID, education shared.EducationLevel) {
	inhabitant, known := q.inhabitants[id]
	if !known {
		inhabitant = newInhabitant(id, education)
		q.inhabitants[id] = inhabitant
	}
	if q.employment.demand.Contains(id) {
		return
	}
	_, inFlight := q.employment.inFlight[id]
	shared.Invariant(!inFlight && inhabitant.workplace == nil, "inhabitant %s is already employed", id)

	q.employment.demand.PushBack(id)
	q.employment.introduced++
}

// MatchHousing proposes at most one newcomer for the oldest house with room.
// An empty slice means nothing can be matched yet.
// Postponed inhabitants are never proposed.
func (q *Queue) MatchHousing() []Result {
	return q.match(q.housing, nil)
}

// MatchEmployment proposes at most one job seeker for the oldest office with
// room that some waiting inhabitant is educated enough for. Offices nobody
// qualifies for are passed over, not waited on.
func (q *Queue) MatchEmployment() []Result {
	return q.match(q.employment, func(office *SupplyEntry, id shared.EntityID) bool {
		return q.inhabitants[id].education.Satisfies(office.RequiredEducation)
	})
}

func (q *Queue) match(p *pipeline, eligible func(*SupplyEntry, shared.EntityID) bool) []Result {
	if p.demand.Len() == 0 {
		return nil
	}

	for _, supply := range p.supply.Available() {
		accept := func(id shared.EntityID) bool {
			if _, held := p.postponed[id]; held {
				return false
			}
			return eligible == nil || eligible(supply, id)
		}
		from, ok := p.demand.TakeFirst(accept)
		if !ok {
			continue
		}

		shared.Invariant(supply.Remaining > 0, "supply %s has no room left", supply.BuildingID)
		supply.Remaining--

		result := Result{
			Kind:         p.kind,
			From:         from,
			FromPosition: q.originOf(p.kind, from),
			To:           supply.BuildingID,
			ToPosition:   supply.Position,
			Count:        1,
		}
		p.inFlight[from] = result
		return []Result{result}
	}
	return nil
}

// originOf is where the inhabitant travels from: the city entry for
// newcomers, home for job seekers
func (q *Queue) originOf(kind Kind, id shared.EntityID) shared.Position {
	if kind == KindEmployment {
		if home, ok := q.inhabitants[id].Home(); ok {
			return home.Position
		}
	}
	return q.entry
}

// Confirm settles a proposed result: the inhabitant moves in or starts work.
// A newly housed inhabitant becomes a job seeker.
func (q *Queue) Confirm(result Result) {
	p := q.pipeline(result.Kind)
	inFlight, ok := p.inFlight[result.From]
	shared.Invariant(ok && inFlight.To == result.To, "confirming %s which is not in flight", result)
	delete(p.inFlight, result.From)
	p.confirmed++

	inhabitant := q.inhabitants[result.From]
	residence := Residence{BuildingID: result.To, Position: result.ToPosition}
	switch result.Kind {
	case KindHousing:
		inhabitant.homeFound(residence)
		q.RegisterWorker(inhabitant.id, inhabitant.education)
	case KindEmployment:
		inhabitant.workplaceFound(residence)
	}
}

// Resign cancels a proposed result: the inhabitant waits again, ahead of
// newer arrivals, and the building gets its units back.
func (q *Queue) Resign(result Result) {
	p := q.pipeline(result.Kind)
	inFlight, ok := p.inFlight[result.From]
	shared.Invariant(ok && inFlight.To == result.To, "resigning %s which is not in flight", result)
	delete(p.inFlight, result.From)

	p.demand.PushFront(result.From)
	p.supply.Restore(result.To, result.ToPosition, result.Count, q.required[result.To])
}

// Postpone resigns a result and holds the inhabitant out of matching until
// ResumePostponed, so that an inhabitant who has been offered every
// building does not shadow the others waiting behind.
func (q *Queue) Postpone(result Result) {
	q.Resign(result)
	q.pipeline(result.Kind).postponed[result.From] = struct{}{}
}

// ResumePostponed makes every postponed inhabitant of a pipeline eligible
// again, keeping their place in the queue
func (q *Queue) ResumePostponed(kind Kind) {
	clear(q.pipeline(kind).postponed)
}

// Stats reports the counters of one pipeline
func (q *Queue) Stats(kind Kind) Stats {
	return q.pipeline(kind).stats()
}

// Inhabitant returns a known inhabitant
func (q *Queue) Inhabitant(id shared.EntityID) (*Inhabitant, bool) {
	i, ok := q.inhabitants[id]
	return i, ok
}

// Supply returns the current entry for a building, if it still has one
func (q *Queue) Supply(kind Kind, buildingID shared.EntityID) (SupplyEntry, bool) {
	return q.pipeline(kind).supply.Get(buildingID)
}

// SupplyEntries returns every supply entry of a pipeline in selection order
func (q *Queue) SupplyEntries(kind Kind) []SupplyEntry {
	return q.pipeline(kind).supply.Snapshot()
}

// Waiting returns the waiting ids of a pipeline in selection order
func (q *Queue) Waiting(kind Kind) []shared.EntityID {
	return q.pipeline(kind).demand.Snapshot()
}
