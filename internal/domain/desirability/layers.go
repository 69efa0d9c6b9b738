package desirability

import (
	"fmt"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Channel selects which kind of placement a field scores
type Channel string

const (
	ChannelHousing    Channel = "HOUSING"
	ChannelEmployment Channel = "EMPLOYMENT"
)

// AllChannels lists the channels in a fixed order
var AllChannels = []Channel{ChannelHousing, ChannelEmployment}

func (c Channel) String() string {
	return string(c)
}

// Layers holds one Field per channel
type Layers struct {
	housing    *Field
	employment *Field
}

// NewLayers creates empty housing and employment fields
func NewLayers() *Layers {
	return &Layers{
		housing:    NewField(),
		employment: NewField(),
	}
}

// Field returns the field backing a channel
func (l *Layers) Field(c Channel) (*Field, error) {
	switch c {
	case ChannelHousing:
		return l.housing, nil
	case ChannelEmployment:
		return l.employment, nil
	}
	return nil, shared.NewValidationError("channel", fmt.Sprintf("unknown desirability channel %q", c))
}

// Housing returns the housing field
func (l *Layers) Housing() *Field {
	return l.housing
}

// Employment returns the employment field
func (l *Layers) Employment() *Field {
	return l.employment
}

// Reading is the value of every channel at one position
type Reading struct {
	Position   shared.Position
	Housing    int32
	Employment int32
}

// Read queries both channels at p
func (l *Layers) Read(p shared.Position) Reading {
	return Reading{
		Position:   p,
		Housing:    l.housing.Query(p),
		Employment: l.employment.Query(p),
	}
}
