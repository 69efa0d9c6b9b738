package desirability

import (
	"fmt"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Source is a point of influence radiating a distance-decayed score.
//
// Within InnerRadius the full Value applies. Between InnerRadius and
// OuterRadius the value decays linearly by Decay per cell and never crosses
// zero. At OuterRadius and beyond the source contributes nothing.
//
// Sources are immutable once added to a Field.
type Source struct {
	Origin      shared.Position
	Value       int32
	InnerRadius uint32
	OuterRadius uint32
	Decay       int32
}

// NewSource creates a source
func NewSource(origin shared.Position, value int32, innerRadius, outerRadius uint32, decay int32) Source {
	return Source{
		Origin:      origin,
		Value:       value,
		InnerRadius: innerRadius,
		OuterRadius: outerRadius,
		Decay:       decay,
	}
}

// ContributionAt returns the score this source adds at p
func (s Source) ContributionAt(p shared.Position) int32 {
	return s.contributionAtDistance(shared.Distance(s.Origin, p))
}

func (s Source) contributionAtDistance(d uint32) int32 {
	if d < s.InnerRadius {
		return s.Value
	}
	if d >= s.OuterRadius {
		return 0
	}

	decayed := int64(s.Value) - int64(s.Decay)*int64(d-s.InnerRadius)
	switch {
	case s.Value > 0 && decayed < 0:
		return 0
	case s.Value < 0 && decayed > 0:
		return 0
	}
	return int32(decayed)
}

func (s Source) String() string {
	return fmt.Sprintf("source@%s(value=%d, inner=%d, outer=%d, decay=%d)",
		s.Origin, s.Value, s.InnerRadius, s.OuterRadius, s.Decay)
}
