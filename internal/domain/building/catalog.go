package building

import (
	"fmt"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// SourceSpec describes the desirability a building radiates once completed
type SourceSpec struct {
	Value       int32
	InnerRadius uint32
	OuterRadius uint32
	Decay       int32
}

// Spec holds the tunable constants of one building kind.
//
// A kind offers housing when it is a house with a positive Capacity and
// employment when it is an office with a positive Capacity. It consumes power
// when PowerPerOccupantWh or PowerBaseWh is positive and produces power when
// PowerCapacityWh is positive.
type Spec struct {
	Kind     Kind
	Name     string
	Capacity uint32

	HousingSource    *SourceSpec
	EmploymentSource *SourceSpec

	PowerBaseWh        uint32
	PowerPerOccupantWh uint32
	PowerCapacityWh    uint32

	RequiredEducation shared.EducationLevel
}

// ConsumesPower reports whether completed buildings of this kind draw power
func (s Spec) ConsumesPower() bool {
	return s.PowerBaseWh > 0 || s.PowerPerOccupantWh > 0
}

// ProducesPower reports whether completed buildings of this kind supply power
func (s Spec) ProducesPower() bool {
	return s.PowerCapacityWh > 0
}

// Catalog is the versioned set of building specs injected into the engine
type Catalog struct {
	version string
	specs   map[Kind]Spec
}

// NewCatalog builds a catalog, rejecting invalid kinds and duplicates
func NewCatalog(version string, specs ...Spec) (*Catalog, error) {
	c := &Catalog{
		version: version,
		specs:   make(map[Kind]Spec, len(specs)),
	}
	for _, s := range specs {
		if !s.Kind.IsValid() {
			return nil, shared.NewUnknownBuildingKindError(string(s.Kind))
		}
		if _, exists := c.specs[s.Kind]; exists {
			return nil, fmt.Errorf("catalog %s: duplicate spec for %s", version, s.Kind)
		}
		if s.Kind != KindHouse && s.Kind != KindOffice && s.Capacity > 0 {
			return nil, fmt.Errorf("catalog %s: %s cannot declare an occupant capacity", version, s.Kind)
		}
		c.specs[s.Kind] = s
	}
	return c, nil
}

// Version returns the catalog version string
func (c *Catalog) Version() string {
	return c.version
}

// Spec returns the spec for kind
func (c *Catalog) Spec(kind Kind) (Spec, bool) {
	s, ok := c.specs[kind]
	return s, ok
}

// MustSpec returns the spec for kind or an UnknownBuildingKindError
func (c *Catalog) MustSpec(kind Kind) (Spec, error) {
	s, ok := c.specs[kind]
	if !ok {
		return Spec{}, shared.NewUnknownBuildingKindError(string(kind))
	}
	return s, nil
}

// Kinds returns the kinds present in the catalog, in AllKinds order
func (c *Catalog) Kinds() []Kind {
	kinds := make([]Kind, 0, len(c.specs))
	for _, k := range AllKinds {
		if _, ok := c.specs[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
