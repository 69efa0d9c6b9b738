package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/citysim-go/internal/domain/navigation"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// streetGraphContext holds state for street graph scenarios
type streetGraphContext struct {
	graph *navigation.StreetGraph
	path  *navigation.Path
	found bool
}

func (sgc *streetGraphContext) reset() {
	sgc.graph = nil
	sgc.path = nil
	sgc.found = false
}

func (sgc *streetGraphContext) aStreetGraphWithEntryAt(entry string) error {
	p, err := shared.ParsePosition(entry)
	if err != nil {
		return err
	}
	sgc.graph = navigation.NewStreetGraph(p)
	return nil
}

func (sgc *streetGraphContext) streetNodesAt(list string) error {
	positions, err := parsePositions(list)
	if err != nil {
		return err
	}
	for _, p := range positions {
		sgc.graph.AddNode(p)
	}
	return nil
}

func (sgc *streetGraphContext) theGraphIsRebuilt() error {
	sgc.graph.Rebuild()
	return nil
}

func (sgc *streetGraphContext) iRequestAPathFromTo(from, to string) error {
	start, err := shared.ParsePosition(from)
	if err != nil {
		return err
	}
	target, err := shared.ParsePosition(to)
	if err != nil {
		return err
	}
	sgc.path, sgc.found = sgc.graph.GetPath(start, target)
	return nil
}

func (sgc *streetGraphContext) thePathShouldHaveSteps(steps int) error {
	if !sgc.found {
		return fmt.Errorf("expected a path, none was found")
	}
	return expectEqual("path length", steps, sgc.path.Len())
}

func (sgc *streetGraphContext) thePathShouldEndAt(cell string) error {
	expected, err := shared.ParsePosition(cell)
	if err != nil {
		return err
	}
	dest, ok := sgc.path.Destination()
	if !ok {
		return fmt.Errorf("path has no destination")
	}
	return expectEqual("destination", expected, dest)
}

func (sgc *streetGraphContext) noPathShouldBeFound() error {
	if sgc.found {
		return fmt.Errorf("expected no path, got %v", sgc.path.Steps())
	}
	return nil
}

// InitializeStreetGraphScenario registers street graph steps
func InitializeStreetGraphScenario(sc *godog.ScenarioContext) {
	sgc := &streetGraphContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sgc.reset()
		return ctx, nil
	})

	sc.Step(`^a street graph with entry at "([^"]*)"$`, sgc.aStreetGraphWithEntryAt)
	sc.Step(`^street nodes at "([^"]*)"$`, sgc.streetNodesAt)
	sc.Step(`^the graph is rebuilt$`, sgc.theGraphIsRebuilt)
	sc.Step(`^I request a path from "([^"]*)" to "([^"]*)"$`, sgc.iRequestAPathFromTo)
	sc.Step(`^the path should have (\d+) steps$`, sgc.thePathShouldHaveSteps)
	sc.Step(`^the path should end at "([^"]*)"$`, sgc.thePathShouldEndAt)
	sc.Step(`^no path should be found$`, sgc.noPathShouldBeFound)
}
