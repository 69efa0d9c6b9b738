package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/citysim-go/internal/domain/building"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// BuildingsConfig is the versioned building catalog.
// Kinds are keyed by lower-case kind name, e.g. "house" or "biomass_power_plant".
type BuildingsConfig struct {
	Version string                        `mapstructure:"version" validate:"required"`
	Kinds   map[string]BuildingSpecConfig `mapstructure:"kinds" validate:"dive"`
}

// BuildingSpecConfig holds the constants of one building kind
type BuildingSpecConfig struct {
	Name     string `mapstructure:"name"`
	Capacity uint32 `mapstructure:"capacity"`

	HousingSource    *SourceConfig `mapstructure:"housing_source"`
	EmploymentSource *SourceConfig `mapstructure:"employment_source"`

	PowerBaseWh        uint32 `mapstructure:"power_base_wh"`
	PowerPerOccupantWh uint32 `mapstructure:"power_per_occupant_wh"`
	PowerCapacityWh    uint32 `mapstructure:"power_capacity_wh"`

	RequiredEducation string `mapstructure:"required_education" validate:"omitempty,oneof=none low"`
}

// SourceConfig describes a desirability source
type SourceConfig struct {
	Value       int32  `mapstructure:"value"`
	InnerRadius uint32 `mapstructure:"inner_radius"`
	OuterRadius uint32 `mapstructure:"outer_radius"`
	Decay       int32  `mapstructure:"decay" validate:"min=0"`
}

// Catalog converts the configuration into a building catalog
func (c BuildingsConfig) Catalog() (*building.Catalog, error) {
	keys := make([]string, 0, len(c.Kinds))
	for key := range c.Kinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	specs := make([]building.Spec, 0, len(keys))
	for _, key := range keys {
		kind, err := building.ParseKind(key)
		if err != nil {
			return nil, fmt.Errorf("buildings.kinds.%s: %w", key, err)
		}
		raw := c.Kinds[key]
		education, err := shared.ParseEducationLevel(raw.RequiredEducation)
		if err != nil {
			return nil, fmt.Errorf("buildings.kinds.%s: %w", key, err)
		}
		specs = append(specs, building.Spec{
			Kind:               kind,
			Name:               raw.Name,
			Capacity:           raw.Capacity,
			HousingSource:      raw.HousingSource.toSpec(),
			EmploymentSource:   raw.EmploymentSource.toSpec(),
			PowerBaseWh:        raw.PowerBaseWh,
			PowerPerOccupantWh: raw.PowerPerOccupantWh,
			PowerCapacityWh:    raw.PowerCapacityWh,
			RequiredEducation:  education,
		})
	}
	return building.NewCatalog(c.Version, specs...)
}

func (s *SourceConfig) toSpec() *building.SourceSpec {
	if s == nil {
		return nil
	}
	return &building.SourceSpec{
		Value:       s.Value,
		InnerRadius: s.InnerRadius,
		OuterRadius: s.OuterRadius,
		Decay:       s.Decay,
	}
}

func sourceConfigFrom(s *building.SourceSpec) *SourceConfig {
	if s == nil {
		return nil
	}
	return &SourceConfig{
		Value:       s.Value,
		InnerRadius: s.InnerRadius,
		OuterRadius: s.OuterRadius,
		Decay:       s.Decay,
	}
}

// kindKey is the configuration key of a kind: "BIOMASS_POWER_PLANT" becomes "biomass_power_plant"
func kindKey(kind building.Kind) string {
	return strings.ToLower(string(kind))
}

// defaultBuildingSpecs renders the built-in catalog as configuration
func defaultBuildingSpecs() map[string]BuildingSpecConfig {
	catalog := building.DefaultCatalog()
	out := make(map[string]BuildingSpecConfig, len(catalog.Kinds()))
	for _, kind := range catalog.Kinds() {
		spec, _ := catalog.Spec(kind)
		out[kindKey(kind)] = BuildingSpecConfig{
			Name:               spec.Name,
			Capacity:           spec.Capacity,
			HousingSource:      sourceConfigFrom(spec.HousingSource),
			EmploymentSource:   sourceConfigFrom(spec.EmploymentSource),
			PowerBaseWh:        spec.PowerBaseWh,
			PowerPerOccupantWh: spec.PowerPerOccupantWh,
			PowerCapacityWh:    spec.PowerCapacityWh,
			RequiredEducation:  spec.RequiredEducation.String(),
		}
	}
	return out
}
