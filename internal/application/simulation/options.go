package simulation

import (
	"github.com/andrescamacho/citysim-go/internal/domain/building"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Options are the tunables an Engine is built with
type Options struct {
	// RunID tags every report produced by the engine
	RunID string
	// Entry is the street node newcomers arrive from
	Entry shared.Position
	// Catalog holds per-kind constants; DefaultCatalog when nil
	Catalog *building.Catalog
	// MaxInhabitantsPerTick caps population growth per tick
	MaxInhabitantsPerTick uint32
	// MaxMatchesPerTick caps proposals per pipeline per tick
	MaxMatchesPerTick int
	// NewcomerEducation is the level spawned inhabitants start with
	NewcomerEducation shared.EducationLevel
	// RequirePositiveDesirability restricts growth to houses on
	// non-negative housing desirability
	RequirePositiveDesirability bool
	// IDs issues inhabitant ids; a fresh allocator when nil
	IDs *shared.IDAllocator
	// Clock stamps reports; the real clock when nil
	Clock shared.Clock
}

// DefaultOptions mirrors the stock configuration
func DefaultOptions() Options {
	return Options{
		Entry:                       shared.NewPosition(0, 0),
		MaxInhabitantsPerTick:       6,
		MaxMatchesPerTick:           16,
		NewcomerEducation:           shared.EducationNone,
		RequirePositiveDesirability: true,
	}
}
