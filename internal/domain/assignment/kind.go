package assignment

// Kind tells which pipeline an assignment belongs to
type Kind string

const (
	// KindHousing pairs a newcomer with a house
	KindHousing Kind = "INHABITANT_HOUSE"
	// KindEmployment pairs a housed inhabitant with an office
	KindEmployment Kind = "INHABITANT_OFFICE"
)

// AllKinds lists both pipelines in a fixed order
var AllKinds = []Kind{KindHousing, KindEmployment}

func (k Kind) String() string {
	return string(k)
}
