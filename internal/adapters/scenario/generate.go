package scenario

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"

	"github.com/andrescamacho/citysim-go/internal/domain/building"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// GenerateOptions controls procedural scenario generation
type GenerateOptions struct {
	Seed int64
	// Size is the length of the main street east of the entry
	Size int
	// BlockSpacing is the distance between side streets
	BlockSpacing int
	// TicksPerRing delays buildings by one tick per this many cells from the entry
	TicksPerRing int
}

// DefaultGenerateOptions returns a small town
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Seed:         1,
		Size:         24,
		BlockSpacing: 4,
		TicksPerRing: 6,
	}
}

// Generate lays out a town: a main street running east from (0,0), side
// streets every BlockSpacing cells, and houses, offices and gardens picked
// by noise along them. A biomass plant closes the main street.
// The same options always produce the same scenario.
func Generate(opts GenerateOptions) (*Scenario, error) {
	if opts.Size < 2 {
		return nil, fmt.Errorf("size must be at least 2, got %d", opts.Size)
	}
	if opts.BlockSpacing < 2 {
		opts.BlockSpacing = 2
	}
	if opts.TicksPerRing < 1 {
		opts.TicksPerRing = 1
	}

	zoning := opensimplex.NewNormalized(opts.Seed)
	density := opensimplex.NewNormalized(opts.Seed + 1)

	s := &Scenario{
		Version: FormatVersion,
		Name:    fmt.Sprintf("generated-%d-%d", opts.Seed, opts.Size),
		Entry:   "0,0",
	}
	occupied := make(map[shared.Position]struct{})
	tickAt := func(p shared.Position) uint64 {
		return 1 + uint64(shared.Distance(shared.NewPosition(0, 0), p))/uint64(opts.TicksPerRing)
	}
	place := func(key string, kind building.Kind, p shared.Position) {
		occupied[p] = struct{}{}
		s.Buildings = append(s.Buildings, Building{
			Key:  key,
			Kind: string(kind),
			At:   p.String(),
			Tick: tickAt(p),
		})
	}

	// streets: main road plus side streets reaching half a block each way
	reach := opts.BlockSpacing / 2
	var streets []shared.Position
	occupied[shared.NewPosition(0, 0)] = struct{}{}
	for x := 1; x <= opts.Size; x++ {
		p := shared.NewPosition(int64(x), 0)
		place(fmt.Sprintf("street-%d-0", x), building.KindStreet, p)
		streets = append(streets, p)
	}
	for x := opts.BlockSpacing; x <= opts.Size; x += opts.BlockSpacing {
		for dy := 1; dy <= reach; dy++ {
			for _, y := range []int{dy, -dy} {
				p := shared.NewPosition(int64(x), int64(y))
				place(fmt.Sprintf("street-%d-%d", x, y), building.KindStreet, p)
				streets = append(streets, p)
			}
		}
	}

	plant := shared.NewPosition(int64(opts.Size+1), 0)
	occupied[plant] = struct{}{}

	// lots: every free cell next to a street
	for _, street := range streets {
		for _, lot := range street.Neighbors() {
			if _, taken := occupied[lot]; taken {
				continue
			}
			x, y := float64(lot.X)/6, float64(lot.Y)/6
			if density.Eval2(x*2, y*2) < 0.3 {
				occupied[lot] = struct{}{}
				continue
			}
			key := fmt.Sprintf("lot-%d-%d", lot.X, lot.Y)
			switch z := zoning.Eval2(x, y); {
			case z < 0.2:
				place(key, building.KindGarden, lot)
			case z < 0.65:
				place(key, building.KindHouse, lot)
			default:
				place(key, building.KindOffice, lot)
			}
		}
	}

	place("plant", building.KindBiomassPowerPlant, plant)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("generated scenario is invalid: %w", err)
	}
	return s, nil
}
