package desirability

import (
	"math"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Field sums the contributions of every source added to it.
// Queries are linear in the number of sources.
type Field struct {
	sources []Source
}

// NewField creates an empty field
func NewField() *Field {
	return &Field{}
}

// AddSource appends a source; sources are never removed
func (f *Field) AddSource(s Source) {
	f.sources = append(f.sources, s)
}

// Query returns the summed desirability at p, saturating at the int32 range
func (f *Field) Query(p shared.Position) int32 {
	var total int64
	for _, s := range f.sources {
		total += int64(s.ContributionAt(p))
	}
	switch {
	case total > math.MaxInt32:
		return math.MaxInt32
	case total < math.MinInt32:
		return math.MinInt32
	}
	return int32(total)
}

// Sources returns a copy of the sources in insertion order
func (f *Field) Sources() []Source {
	out := make([]Source, len(f.sources))
	copy(out, f.sources)
	return out
}

// Len returns the number of sources
func (f *Field) Len() int {
	return len(f.sources)
}

// IsPositive reports whether a queried total is acceptable.
// Zero counts as acceptable.
func IsPositive(total int32) bool {
	return total >= 0
}
