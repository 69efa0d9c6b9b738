package building

import (
	"strings"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Kind is the type of a building placed on the grid
type Kind string

const (
	KindHouse             Kind = "HOUSE"
	KindOffice            Kind = "OFFICE"
	KindGarden            Kind = "GARDEN"
	KindStreet            Kind = "STREET"
	KindBiomassPowerPlant Kind = "BIOMASS_POWER_PLANT"
)

// AllKinds lists every building kind in a fixed order
var AllKinds = []Kind{
	KindHouse,
	KindOffice,
	KindGarden,
	KindStreet,
	KindBiomassPowerPlant,
}

// ParseKind converts a scenario or event string to a Kind.
// Matching ignores case and accepts '-' in place of '_'.
func ParseKind(s string) (Kind, error) {
	normalized := Kind(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	for _, k := range AllKinds {
		if k == normalized {
			return k, nil
		}
	}
	return "", shared.NewUnknownBuildingKindError(s)
}

// IsValid reports whether k is one of AllKinds
func (k Kind) IsValid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

func (k Kind) String() string {
	return string(k)
}
