package building

import (
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Event is an inbound notification from the surrounding game layer.
// The concrete types are BuildingCompleted and OccupancyChanged.
type Event interface {
	isBuildingEvent()
}

// BuildingCompleted reports that construction of a building finished.
// A zero Capacity means "use the catalog capacity for Kind".
type BuildingCompleted struct {
	ID       shared.EntityID
	Kind     Kind
	Position shared.Position
	Capacity uint32
}

// OccupancyChanged reports residents or workers arriving (positive Delta)
// or leaving (negative Delta) a building.
type OccupancyChanged struct {
	BuildingID shared.EntityID
	Delta      int32
}

func (BuildingCompleted) isBuildingEvent() {}
func (OccupancyChanged) isBuildingEvent()  {}
