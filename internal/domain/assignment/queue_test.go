package assignment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/citysim-go/internal/domain/assignment"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

var entry = shared.NewPosition(0, 0)

func assertConserved(t *testing.T, q *assignment.Queue) {
	t.Helper()
	for _, kind := range assignment.AllKinds {
		stats := q.Stats(kind)
		assert.Equal(t, stats.Introduced, stats.Matched+stats.Pending, "conservation broken for %s", kind)
	}
}

func TestMatchHousing_FillsCapacityThenStops(t *testing.T) {
	// Arrange
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	house := alloc.Next()
	q.RegisterSupply(assignment.KindHousing, house, shared.NewPosition(3, 1), 8)

	// Act & Assert
	for i := 0; i < 8; i++ {
		q.IntroduceDemand(alloc.Next(), shared.EducationNone)
		results := q.MatchHousing()
		require.Len(t, results, 1, "match %d", i+1)
		assert.Equal(t, uint32(1), results[0].Count)
		assert.Equal(t, house, results[0].To)
		assert.Equal(t, entry, results[0].FromPosition)
		assertConserved(t, q)
	}

	q.IntroduceDemand(alloc.Next(), shared.EducationNone)
	assert.Empty(t, q.MatchHousing())

	stats := q.Stats(assignment.KindHousing)
	assert.Equal(t, uint64(9), stats.Introduced)
	assert.Equal(t, uint64(8), stats.Matched)
	assert.Equal(t, uint64(1), stats.Pending)
	assert.Equal(t, uint64(0), stats.FreeCapacity)
}

func TestMatchHousing_EmptyPools(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)

	assert.Empty(t, q.MatchHousing())

	q.IntroduceDemand(alloc.Next(), shared.EducationNone)
	assert.Empty(t, q.MatchHousing(), "no house registered")

	q.RegisterSupply(assignment.KindHousing, alloc.Next(), shared.NewPosition(1, 1), 0)
	assert.Empty(t, q.MatchHousing(), "house without capacity")
	assert.Empty(t, q.SupplyEntries(assignment.KindHousing), "exhausted entry is dropped")
}

func TestMatchHousing_OldestFirstOnBothSides(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	first, second := alloc.Next(), alloc.Next()
	q.RegisterSupply(assignment.KindHousing, first, shared.NewPosition(1, 0), 1)
	q.RegisterSupply(assignment.KindHousing, second, shared.NewPosition(2, 0), 1)
	alice, bob := alloc.Next(), alloc.Next()
	q.IntroduceDemand(alice, shared.EducationNone)
	q.IntroduceDemand(bob, shared.EducationNone)

	r1 := q.MatchHousing()
	r2 := q.MatchHousing()

	require.Len(t, r1, 1)
	require.Len(t, r2, 1)
	assert.Equal(t, alice, r1[0].From)
	assert.Equal(t, first, r1[0].To)
	assert.Equal(t, bob, r2[0].From)
	assert.Equal(t, second, r2[0].To)
}

func TestRegisterSupply_Accumulates(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	house := alloc.Next()

	q.RegisterSupply(assignment.KindHousing, house, shared.NewPosition(1, 0), 2)
	q.RegisterSupply(assignment.KindHousing, house, shared.NewPosition(1, 0), 3)

	supply, ok := q.Supply(assignment.KindHousing, house)
	require.True(t, ok)
	assert.Equal(t, uint32(5), supply.Remaining)
	assert.Len(t, q.SupplyEntries(assignment.KindHousing), 1)
}

func TestResign_RestoresDemandAndSupply(t *testing.T) {
	// Arrange
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	house := alloc.Next()
	housePos := shared.NewPosition(4, 2)
	q.RegisterSupply(assignment.KindHousing, house, housePos, 1)
	newcomer := alloc.Next()
	q.IntroduceDemand(newcomer, shared.EducationNone)

	results := q.MatchHousing()
	require.Len(t, results, 1)
	assert.Empty(t, q.MatchHousing())

	// Act
	q.Resign(results[0])

	// Assert
	assertConserved(t, q)
	supply, ok := q.Supply(assignment.KindHousing, house)
	require.True(t, ok)
	assert.Equal(t, uint32(1), supply.Remaining)
	assert.Equal(t, housePos, supply.Position)

	retry := q.MatchHousing()
	require.Len(t, retry, 1)
	assert.Equal(t, newcomer, retry[0].From)
	assert.Equal(t, house, retry[0].To)
}

func TestResign_RecreatesDroppedSupply(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	house := alloc.Next()
	q.RegisterSupply(assignment.KindHousing, house, shared.NewPosition(4, 2), 1)
	q.IntroduceDemand(alloc.Next(), shared.EducationNone)
	results := q.MatchHousing()
	require.Len(t, results, 1)

	// drop the exhausted entry
	q.IntroduceDemand(alloc.Next(), shared.EducationNone)
	assert.Empty(t, q.MatchHousing())
	_, ok := q.Supply(assignment.KindHousing, house)
	require.False(t, ok)

	q.Resign(results[0])

	supply, ok := q.Supply(assignment.KindHousing, house)
	require.True(t, ok)
	assert.Equal(t, uint32(1), supply.Remaining)
	assert.Equal(t, shared.NewPosition(4, 2), supply.Position)
}

func TestResign_MovesUnreachableBuildingBehindOthers(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	unreachable, reachable := alloc.Next(), alloc.Next()
	q.RegisterSupply(assignment.KindHousing, unreachable, shared.NewPosition(50, 50), 1)
	q.RegisterSupply(assignment.KindHousing, reachable, shared.NewPosition(1, 0), 1)
	q.IntroduceDemand(alloc.Next(), shared.EducationNone)

	first := q.MatchHousing()
	require.Len(t, first, 1)
	require.Equal(t, unreachable, first[0].To)
	q.Resign(first[0])

	second := q.MatchHousing()
	require.Len(t, second, 1)
	assert.Equal(t, reachable, second[0].To)
}

func TestConfirm_HousedInhabitantSeeksWork(t *testing.T) {
	// Arrange
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	house, office := alloc.Next(), alloc.Next()
	housePos, officePos := shared.NewPosition(2, 1), shared.NewPosition(5, 1)
	q.RegisterSupply(assignment.KindHousing, house, housePos, 1)
	q.RegisterSupply(assignment.KindEmployment, office, officePos, 1)
	id := alloc.Next()
	q.IntroduceDemand(id, shared.EducationNone)

	// Act
	housing := q.MatchHousing()
	require.Len(t, housing, 1)
	assert.Empty(t, q.MatchEmployment(), "not housed yet")
	q.Confirm(housing[0])
	employment := q.MatchEmployment()

	// Assert
	require.Len(t, employment, 1)
	assert.Equal(t, housePos, employment[0].FromPosition)
	assert.Equal(t, officePos, employment[0].ToPosition)
	q.Confirm(employment[0])

	inhabitant, ok := q.Inhabitant(id)
	require.True(t, ok)
	home, ok := inhabitant.Home()
	require.True(t, ok)
	assert.Equal(t, house, home.BuildingID)
	work, ok := inhabitant.Workplace()
	require.True(t, ok)
	assert.Equal(t, office, work.BuildingID)

	stats := q.Stats(assignment.KindEmployment)
	assert.Equal(t, uint64(1), stats.Confirmed)
	assert.Equal(t, uint64(0), stats.InFlight)
	assertConserved(t, q)
}

func TestConfirm_TwiceViolatesInvariant(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	q.RegisterSupply(assignment.KindHousing, alloc.Next(), shared.NewPosition(1, 0), 1)
	q.IntroduceDemand(alloc.Next(), shared.EducationNone)
	results := q.MatchHousing()
	require.Len(t, results, 1)

	q.Confirm(results[0])

	if shared.InvariantsEnabled {
		assert.Panics(t, func() { q.Confirm(results[0]) })
		assert.Panics(t, func() { q.Resign(results[0]) })
	}
}

func TestMatchEmployment_FiltersByEducation(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	office := alloc.Next()
	q.RegisterSupply(assignment.KindEmployment, office, shared.NewPosition(5, 5), 2,
		assignment.RequireEducation(shared.EducationLow))

	untrained, trained := alloc.Next(), alloc.Next()
	q.RegisterWorker(untrained, shared.EducationNone)
	assert.Empty(t, q.MatchEmployment(), "nobody qualifies")

	q.RegisterWorker(trained, shared.EducationLow)
	results := q.MatchEmployment()
	require.Len(t, results, 1)
	assert.Equal(t, trained, results[0].From)
	assert.Equal(t, entry, results[0].FromPosition, "homeless workers start at the entry")

	assert.Equal(t, []shared.EntityID{untrained}, q.Waiting(assignment.KindEmployment))
	assertConserved(t, q)
}

func TestResign_EmploymentKeepsRequiredEducation(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	office := alloc.Next()
	q.RegisterSupply(assignment.KindEmployment, office, shared.NewPosition(5, 5), 1,
		assignment.RequireEducation(shared.EducationLow))
	q.RegisterWorker(alloc.Next(), shared.EducationLow)
	results := q.MatchEmployment()
	require.Len(t, results, 1)

	// exhaust and drop the entry before resigning
	q.RegisterWorker(alloc.Next(), shared.EducationLow)
	assert.Empty(t, q.MatchEmployment())
	q.Resign(results[0])

	supply, ok := q.Supply(assignment.KindEmployment, office)
	require.True(t, ok)
	assert.Equal(t, shared.EducationLow, supply.RequiredEducation)
}

func TestConservation_RandomisedSequence(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	for i := 0; i < 3; i++ {
		q.RegisterSupply(assignment.KindHousing, alloc.Next(), shared.NewPosition(int64(i), 1), 2)
	}

	var inFlight []assignment.Result
	for step := 0; step < 40; step++ {
		switch step % 4 {
		case 0:
			q.IntroduceDemand(alloc.Next(), shared.EducationNone)
		case 1, 2:
			inFlight = append(inFlight, q.MatchHousing()...)
		case 3:
			if len(inFlight) > 0 {
				r := inFlight[0]
				inFlight = inFlight[1:]
				if step%8 == 3 {
					q.Resign(r)
				} else {
					q.Confirm(r)
				}
			}
		}
		assertConserved(t, q)
	}
}

func TestWithdrawSupply(t *testing.T) {
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	house := alloc.Next()
	q.RegisterSupply(assignment.KindHousing, house, shared.NewPosition(1, 0), 3)

	assert.Equal(t, uint32(2), q.WithdrawSupply(assignment.KindHousing, house, 2))
	assert.Equal(t, uint32(1), q.WithdrawSupply(assignment.KindHousing, house, 5))
	assert.Equal(t, uint32(0), q.WithdrawSupply(assignment.KindHousing, alloc.Next(), 1))
	assert.Equal(t, uint64(0), q.Stats(assignment.KindHousing).FreeCapacity)
}

func TestMatchEmployment_PassesOverOfficesNobodyQualifiesFor(t *testing.T) {
	// Arrange
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	demanding, open := alloc.Next(), alloc.Next()
	q.RegisterSupply(assignment.KindEmployment, demanding, shared.NewPosition(1, 1), 2,
		assignment.RequireEducation(shared.EducationLow))
	q.RegisterSupply(assignment.KindEmployment, open, shared.NewPosition(2, 1), 2)
	worker := alloc.Next()
	q.RegisterWorker(worker, shared.EducationNone)

	// Act
	results := q.MatchEmployment()

	// Assert
	require.Len(t, results, 1)
	assert.Equal(t, worker, results[0].From)
	assert.Equal(t, open, results[0].To)

	first, ok := q.Supply(assignment.KindEmployment, demanding)
	require.True(t, ok)
	assert.Equal(t, uint32(2), first.Remaining, "the office nobody qualifies for keeps its places")
	assertConserved(t, q)

	trained := alloc.Next()
	q.RegisterWorker(trained, shared.EducationLow)
	results = q.MatchEmployment()
	require.Len(t, results, 1)
	assert.Equal(t, demanding, results[0].To, "the oldest office is still preferred when someone qualifies")
}

func TestPostpone_LetsOthersThroughUntilResumed(t *testing.T) {
	// Arrange
	alloc := shared.NewIDAllocator()
	q := assignment.NewQueue(entry)
	office := alloc.Next()
	q.RegisterSupply(assignment.KindEmployment, office, shared.NewPosition(3, 1), 1)
	stuck, next := alloc.Next(), alloc.Next()
	q.RegisterWorker(stuck, shared.EducationNone)
	q.RegisterWorker(next, shared.EducationNone)

	first := q.MatchEmployment()
	require.Len(t, first, 1)
	require.Equal(t, stuck, first[0].From)

	// Act
	q.Postpone(first[0])
	second := q.MatchEmployment()

	// Assert
	require.Len(t, second, 1)
	assert.Equal(t, next, second[0].From, "a postponed inhabitant does not shadow the rest")
	q.Resign(second[0])
	q.Postpone(q.MatchEmployment()[0])
	assert.Empty(t, q.MatchEmployment(), "everyone is postponed")
	assertConserved(t, q)

	q.ResumePostponed(assignment.KindEmployment)
	resumed := q.MatchEmployment()
	require.Len(t, resumed, 1)
	assert.Equal(t, next, resumed[0].From, "the last one resigned waits at the front")
	assert.Equal(t, uint32(1), resumed[0].Count)
}
