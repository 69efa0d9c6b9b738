package building_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/citysim-go/internal/domain/building"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

func TestParseKind(t *testing.T) {
	kind, err := building.ParseKind("biomass-power-plant")
	require.NoError(t, err)
	assert.Equal(t, building.KindBiomassPowerPlant, kind)

	kind, err = building.ParseKind(" house ")
	require.NoError(t, err)
	assert.Equal(t, building.KindHouse, kind)

	_, err = building.ParseKind("castle")
	var unknown *shared.UnknownBuildingKindError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "castle", unknown.Kind)
}

func TestDefaultCatalog(t *testing.T) {
	catalog := building.DefaultCatalog()

	assert.Equal(t, building.DefaultCatalogVersion, catalog.Version())
	assert.Equal(t, building.AllKinds, catalog.Kinds())

	house, ok := catalog.Spec(building.KindHouse)
	require.True(t, ok)
	assert.Equal(t, uint32(8), house.Capacity)
	assert.True(t, house.ConsumesPower())
	assert.False(t, house.ProducesPower())

	plant, err := catalog.MustSpec(building.KindBiomassPowerPlant)
	require.NoError(t, err)
	assert.Equal(t, uint32(7_000_000), plant.PowerCapacityWh)

	garden, _ := catalog.Spec(building.KindGarden)
	require.NotNil(t, garden.HousingSource)
	assert.Equal(t, building.SourceSpec{Value: 10, InnerRadius: 3, OuterRadius: 10, Decay: 2}, *garden.HousingSource)
}

func TestNewCatalog_RejectsInvalidSpecs(t *testing.T) {
	_, err := building.NewCatalog("v0", building.Spec{Kind: "CASTLE"})
	assert.Error(t, err)

	_, err = building.NewCatalog("v0",
		building.Spec{Kind: building.KindStreet},
		building.Spec{Kind: building.KindStreet},
	)
	assert.ErrorContains(t, err, "duplicate spec")

	_, err = building.NewCatalog("v0", building.Spec{Kind: building.KindGarden, Capacity: 3})
	assert.ErrorContains(t, err, "cannot declare an occupant capacity")
}

func TestSnapshot_VariantAccessors(t *testing.T) {
	id := shared.NewIDAllocator().Next()
	house := building.Snapshot{ID: id, Kind: building.KindHouse, Capacity: 8, Occupancy: 3}

	h, ok := house.AsHouse()
	require.True(t, ok)
	assert.Equal(t, uint32(8), h.MaxResidents)
	assert.Equal(t, uint32(3), h.CurrentResidents)
	assert.Equal(t, uint32(5), house.Vacancies())

	_, ok = house.AsOffice()
	assert.False(t, ok)

	street := building.Snapshot{ID: id, Kind: building.KindStreet}
	_, ok = street.AsHouse()
	assert.False(t, ok)
	assert.Equal(t, uint32(0), street.Vacancies())
}

func TestRegistry_ApplyOccupancy(t *testing.T) {
	alloc := shared.NewIDAllocator()
	registry := building.NewRegistry()
	houseID := alloc.Next()

	require.NoError(t, registry.Add(building.Snapshot{ID: houseID, Kind: building.KindHouse, Capacity: 2}))

	var duplicate *shared.DuplicateBuildingError
	require.ErrorAs(t, registry.Add(building.Snapshot{ID: houseID, Kind: building.KindHouse}), &duplicate)

	updated, err := registry.ApplyOccupancy(houseID, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), updated.Occupancy)
	assert.Equal(t, uint64(2), registry.Population())

	_, err = registry.ApplyOccupancy(houseID, -3)
	var underflow *shared.OccupancyUnderflowError
	require.ErrorAs(t, err, &underflow)
	assert.Equal(t, uint32(2), underflow.Current)

	_, err = registry.ApplyOccupancy(alloc.Next(), 1)
	var unknown *shared.UnknownBuildingError
	require.ErrorAs(t, err, &unknown)

	assert.Panics(t, func() { _, _ = registry.ApplyOccupancy(houseID, 1) })
}

func TestRegistry_AllKeepsCompletionOrder(t *testing.T) {
	alloc := shared.NewIDAllocator()
	registry := building.NewRegistry()

	ids := []shared.EntityID{alloc.Next(), alloc.Next(), alloc.Next()}
	for _, id := range ids {
		require.NoError(t, registry.Add(building.Snapshot{ID: id, Kind: building.KindStreet}))
	}

	all := registry.All()
	require.Len(t, all, 3)
	for i, s := range all {
		assert.Equal(t, ids[i], s.ID)
	}
	assert.Equal(t, 3, registry.Len())
}
