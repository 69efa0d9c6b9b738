package building

// DefaultCatalogVersion tags the built-in catalog
const DefaultCatalogVersion = "v1"

// DefaultCatalog returns the built-in building constants
func DefaultCatalog() *Catalog {
	gardenSource := SourceSpec{Value: 10, InnerRadius: 3, OuterRadius: 10, Decay: 2}

	c, err := NewCatalog(DefaultCatalogVersion,
		Spec{
			Kind:               KindHouse,
			Name:               "house",
			Capacity:           8,
			HousingSource:      &SourceSpec{Value: -1, InnerRadius: 2, OuterRadius: 1, Decay: 0},
			PowerPerOccupantWh: 300,
		},
		Spec{
			Kind:               KindOffice,
			Name:               "office",
			Capacity:           6,
			EmploymentSource:   &SourceSpec{Value: 1, InnerRadius: 3, OuterRadius: 0, Decay: 0},
			PowerPerOccupantWh: 2000,
		},
		Spec{
			Kind:             KindGarden,
			Name:             "garden",
			HousingSource:    &gardenSource,
			EmploymentSource: &gardenSource,
		},
		Spec{
			Kind: KindStreet,
			Name: "street",
		},
		Spec{
			Kind:            KindBiomassPowerPlant,
			Name:            "biomassPowerPlant",
			PowerCapacityWh: 7_000_000,
		},
	)
	if err != nil {
		panic("default building catalog is invalid: " + err.Error())
	}
	return c
}
