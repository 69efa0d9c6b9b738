package steps

import (
	"context"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/citysim-go/internal/domain/desirability"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// desirabilityContext holds state for desirability scenarios
type desirabilityContext struct {
	field *desirability.Field
	score int32
}

func (dc *desirabilityContext) reset() {
	dc.field = desirability.NewField()
	dc.score = 0
}

func (dc *desirabilityContext) aDesirabilitySourceAt(at string, value, inner, outer, decay int) error {
	origin, err := shared.ParsePosition(at)
	if err != nil {
		return err
	}
	dc.field.AddSource(desirability.NewSource(origin, int32(value), uint32(inner), uint32(outer), int32(decay)))
	return nil
}

func (dc *desirabilityContext) iQueryTheDesirabilityAt(at string) error {
	p, err := shared.ParsePosition(at)
	if err != nil {
		return err
	}
	dc.score = dc.field.Query(p)
	return nil
}

func (dc *desirabilityContext) theDesirabilityShouldBe(expected int) error {
	return expectEqual("desirability", int32(expected), dc.score)
}

// InitializeDesirabilityScenario registers desirability steps
func InitializeDesirabilityScenario(sc *godog.ScenarioContext) {
	dc := &desirabilityContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		dc.reset()
		return ctx, nil
	})

	sc.Step(`^a desirability source at "([^"]*)" with value (-?\d+), inner radius (\d+), outer radius (\d+) and decay (\d+)$`, dc.aDesirabilitySourceAt)
	sc.Step(`^I query the desirability at "([^"]*)"$`, dc.iQueryTheDesirabilityAt)
	sc.Step(`^the desirability should be (-?\d+)$`, dc.theDesirabilityShouldBe)
}
