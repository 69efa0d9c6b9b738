package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/citysim-go/internal/domain/assignment"
	"github.com/andrescamacho/citysim-go/internal/domain/navigation"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// assignmentContext holds state for assignment queue scenarios
type assignmentContext struct {
	ids        *shared.IDAllocator
	entry      shared.Position
	queue      *assignment.Queue
	newcomers  []shared.EntityID
	results    []assignment.Result
	lastResult []assignment.Result
}

func (ac *assignmentContext) reset() {
	ac.ids = shared.NewIDAllocator()
	ac.entry = shared.Position{}
	ac.queue = nil
	ac.newcomers = nil
	ac.results = nil
	ac.lastResult = nil
}

func (ac *assignmentContext) anAssignmentQueueWithEntry(entry string) error {
	p, err := shared.ParsePosition(entry)
	if err != nil {
		return err
	}
	ac.entry = p
	ac.queue = assignment.NewQueue(p)
	return nil
}

func (ac *assignmentContext) aHouseAtOfferingHomes(key, at string, homes int) error {
	p, err := shared.ParsePosition(at)
	if err != nil {
		return err
	}
	ac.queue.RegisterSupply(assignment.KindHousing, ac.ids.ForKey(key), p, uint32(homes))
	return nil
}

func (ac *assignmentContext) newcomersArriveOneAtATime(count int) error {
	for i := 0; i < count; i++ {
		id := ac.ids.Next()
		ac.newcomers = append(ac.newcomers, id)
		ac.queue.IntroduceDemand(id, shared.EducationNone)
	}
	return nil
}

func (ac *assignmentContext) iMatchHousingTimes(times int) error {
	for i := 0; i < times; i++ {
		matched := ac.queue.MatchHousing()
		if len(matched) != 1 {
			return fmt.Errorf("match %d returned %d results, expected 1", i+1, len(matched))
		}
		ac.results = append(ac.results, matched...)
	}
	return nil
}

func (ac *assignmentContext) everyMatchShouldPairOneNewcomerWith(key string) error {
	house := ac.ids.ForKey(key)
	seen := make(map[shared.EntityID]bool)
	for _, r := range ac.results {
		if r.Count != 1 {
			return fmt.Errorf("match %s has count %d", r, r.Count)
		}
		if r.To != house {
			return fmt.Errorf("match %s does not target %s", r, key)
		}
		if seen[r.From] {
			return fmt.Errorf("newcomer %s matched twice", r.From.Short())
		}
		seen[r.From] = true
	}
	return nil
}

func (ac *assignmentContext) aFurtherHousingMatchShouldReturnNothing() error {
	if extra := ac.queue.MatchHousing(); len(extra) != 0 {
		return fmt.Errorf("expected no match, got %v", extra)
	}
	return nil
}

func (ac *assignmentContext) theMatchIsResignedBecauseNoPathExists() error {
	// only the entry is a street, so nothing is reachable
	streets := navigation.NewStreetGraph(ac.entry)
	for _, r := range ac.results {
		if _, found := streets.GetPath(r.FromPosition, r.ToPosition); found {
			return fmt.Errorf("unexpected path for %s", r)
		}
		ac.queue.Resign(r)
	}
	ac.results = nil
	return nil
}

func (ac *assignmentContext) theFirstNewcomerShouldBeWaitingAgain() error {
	waiting := ac.queue.Waiting(assignment.KindHousing)
	if len(waiting) == 0 {
		return fmt.Errorf("nobody is waiting")
	}
	return expectEqual("first waiting newcomer", ac.newcomers[0], waiting[0])
}

func (ac *assignmentContext) shouldHaveHomesRemaining(key string, homes int) error {
	entry, ok := ac.queue.Supply(assignment.KindHousing, ac.ids.ForKey(key))
	if !ok {
		return fmt.Errorf("%s has no supply entry", key)
	}
	return expectEqual("remaining homes", uint32(homes), entry.Remaining)
}

func (ac *assignmentContext) theNextHousingMatchShouldProposeTheFirstNewcomer() error {
	matched := ac.queue.MatchHousing()
	if len(matched) != 1 {
		return fmt.Errorf("expected one match, got %d", len(matched))
	}
	return expectEqual("matched newcomer", ac.newcomers[0], matched[0].From)
}

func (ac *assignmentContext) everyMatchIsConfirmed() error {
	for _, r := range ac.results {
		ac.queue.Confirm(r)
	}
	ac.results = nil
	return nil
}

func (ac *assignmentContext) inhabitantsShouldBeWaitingForWork(count int) error {
	return expectEqual("job seekers", count, len(ac.queue.Waiting(assignment.KindEmployment)))
}

// InitializeAssignmentQueueScenario registers assignment queue steps
func InitializeAssignmentQueueScenario(sc *godog.ScenarioContext) {
	ac := &assignmentContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		ac.reset()
		return ctx, nil
	})

	sc.Step(`^an assignment queue with entry "([^"]*)"$`, ac.anAssignmentQueueWithEntry)
	sc.Step(`^a house "([^"]*)" at "([^"]*)" offering (\d+) homes$`, ac.aHouseAtOfferingHomes)
	sc.Step(`^(\d+) newcomers arrive one at a time$`, ac.newcomersArriveOneAtATime)
	sc.Step(`^I match housing (\d+) times$`, ac.iMatchHousingTimes)
	sc.Step(`^every match should pair one newcomer with "([^"]*)"$`, ac.everyMatchShouldPairOneNewcomerWith)
	sc.Step(`^a further housing match should return nothing$`, ac.aFurtherHousingMatchShouldReturnNothing)
	sc.Step(`^the match is resigned because no path to the house exists$`, ac.theMatchIsResignedBecauseNoPathExists)
	sc.Step(`^the first newcomer should be waiting again$`, ac.theFirstNewcomerShouldBeWaitingAgain)
	sc.Step(`^"([^"]*)" should have (\d+) homes remaining$`, ac.shouldHaveHomesRemaining)
	sc.Step(`^the next housing match should propose the first newcomer$`, ac.theNextHousingMatchShouldProposeTheFirstNewcomer)
	sc.Step(`^every match is confirmed$`, ac.everyMatchIsConfirmed)
	sc.Step(`^(\d+) inhabitants should be waiting for work$`, ac.inhabitantsShouldBeWaitingForWork)
}
