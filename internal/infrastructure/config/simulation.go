package config

import (
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// SimulationConfig holds the tunables of the tick loop
type SimulationConfig struct {
	// Entry street node as "x,y"; newcomers arrive here
	Entry string `mapstructure:"entry" validate:"required,position"`

	// Ticks per second for the daemon; 0 runs ticks back to back
	TicksPerSecond float64 `mapstructure:"ticks_per_second" validate:"min=0"`

	// Upper bound on inhabitants introduced per tick
	MaxInhabitantsPerTick uint32 `mapstructure:"max_inhabitants_per_tick" validate:"min=1"`

	// Upper bound on proposals per pipeline per tick
	MaxMatchesPerTick int `mapstructure:"max_matches_per_tick" validate:"min=1"`

	// Education level of newcomers: none, low
	DefaultEducation string `mapstructure:"default_education" validate:"required,oneof=none low"`

	// Let houses on negative desirability attract newcomers
	AllowNegativeDesirability bool `mapstructure:"allow_negative_desirability"`
}

// EntryPosition parses Entry
func (c SimulationConfig) EntryPosition() (shared.Position, error) {
	return shared.ParsePosition(c.Entry)
}

// Education parses DefaultEducation
func (c SimulationConfig) Education() (shared.EducationLevel, error) {
	return shared.ParseEducationLevel(c.DefaultEducation)
}
