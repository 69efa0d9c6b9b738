package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/citysim-go/internal/domain/building"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

//go:embed scenario.schema.json
var schemaSource string

const schemaURL = "https://citysim.local/schemas/scenario.schema.json"

// FormatVersion is the scenario file version this package reads and writes
const FormatVersion = 1

// Scenario is a scripted city: buildings completing at given ticks and
// occupancy changes reported by the host
type Scenario struct {
	Version     int              `yaml:"version" validate:"eq=1"`
	Name        string           `yaml:"name" validate:"required"`
	Description string           `yaml:"description,omitempty"`
	Entry       string           `yaml:"entry,omitempty"`
	Buildings   []Building       `yaml:"buildings" validate:"dive"`
	Occupancy   []OccupancyEntry `yaml:"occupancy,omitempty" validate:"dive"`
}

// Building is one building of a scenario. Tick 0 means the first tick.
type Building struct {
	Key      string `yaml:"key" validate:"required"`
	Kind     string `yaml:"kind" validate:"required"`
	At       string `yaml:"at" validate:"required"`
	Tick     uint64 `yaml:"tick,omitempty"`
	Capacity uint32 `yaml:"capacity,omitempty"`
}

// OccupancyEntry is an occupancy change the host reports before a tick
type OccupancyEntry struct {
	Key   string `yaml:"key" validate:"required"`
	Tick  uint64 `yaml:"tick" validate:"min=1"`
	Delta int32  `yaml:"delta" validate:"ne=0"`
}

var compiledSchema = jsonschema.MustCompileString(schemaURL, schemaSource)

// Parse decodes and validates a scenario document
func Parse(data []byte) (*Scenario, error) {
	// Validate the document shape first; yaml is converted to plain JSON
	// values so the schema sees the same types it would for a JSON file
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scenario is not valid yaml: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("scenario cannot be represented as json: %w", err)
	}
	var plain interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}
	if err := compiledSchema.Validate(plain); err != nil {
		return nil, fmt.Errorf("scenario does not match schema: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the parts of a scenario the schema cannot express:
// kinds, positions and key references
func (s *Scenario) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	if s.Entry != "" {
		if _, err := shared.ParsePosition(s.Entry); err != nil {
			return fmt.Errorf("entry: %w", err)
		}
	}

	keys := make(map[string]struct{}, len(s.Buildings))
	for i, b := range s.Buildings {
		if _, dup := keys[b.Key]; dup {
			return fmt.Errorf("buildings[%d]: duplicate key %q", i, b.Key)
		}
		keys[b.Key] = struct{}{}
		if _, err := building.ParseKind(b.Kind); err != nil {
			return fmt.Errorf("buildings[%d] %s: %w", i, b.Key, err)
		}
		if _, err := shared.ParsePosition(b.At); err != nil {
			return fmt.Errorf("buildings[%d] %s: %w", i, b.Key, err)
		}
	}
	for i, o := range s.Occupancy {
		if _, ok := keys[o.Key]; !ok {
			return fmt.Errorf("occupancy[%d]: unknown building key %q", i, o.Key)
		}
	}
	return nil
}

// EntryOr returns the scenario's entry, or fallback when it has none
func (s *Scenario) EntryOr(fallback shared.Position) shared.Position {
	if s.Entry == "" {
		return fallback
	}
	p, err := shared.ParsePosition(s.Entry)
	if err != nil {
		return fallback
	}
	return p
}

// Encode writes the scenario as YAML
func (s *Scenario) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// Schedule is a scenario resolved into events per tick.
// It is a simulation.EventSource.
type Schedule struct {
	byTick map[uint64][]building.Event
	last   uint64
}

// Schedule resolves building keys to ids through ids.
// The scenario must have passed Validate.
func (s *Scenario) Schedule(ids *shared.IDAllocator) (*Schedule, error) {
	sched := &Schedule{byTick: make(map[uint64][]building.Event)}

	for _, b := range s.Buildings {
		kind, err := building.ParseKind(b.Kind)
		if err != nil {
			return nil, err
		}
		at, err := shared.ParsePosition(b.At)
		if err != nil {
			return nil, err
		}
		sched.add(b.Tick, building.BuildingCompleted{
			ID:       ids.ForKey(b.Key),
			Kind:     kind,
			Position: at,
			Capacity: b.Capacity,
		})
	}

	// occupancy changes run after completions of the same tick
	occupancy := append([]OccupancyEntry(nil), s.Occupancy...)
	sort.SliceStable(occupancy, func(i, j int) bool { return occupancy[i].Tick < occupancy[j].Tick })
	for _, o := range occupancy {
		id, ok := ids.Lookup(o.Key)
		if !ok {
			return nil, fmt.Errorf("occupancy: unknown building key %q", o.Key)
		}
		sched.add(o.Tick, building.OccupancyChanged{BuildingID: id, Delta: o.Delta})
	}
	return sched, nil
}

func (s *Schedule) add(tick uint64, event building.Event) {
	if tick == 0 {
		tick = 1
	}
	s.byTick[tick] = append(s.byTick[tick], event)
	if tick > s.last {
		s.last = tick
	}
}

// EventsFor returns the events due before tick
func (s *Schedule) EventsFor(tick uint64) []building.Event {
	return s.byTick[tick]
}

// LastTick returns the last tick with scheduled events
func (s *Schedule) LastTick() uint64 {
	return s.last
}

// Len returns the total number of scheduled events
func (s *Schedule) Len() int {
	n := 0
	for _, events := range s.byTick {
		n += len(events)
	}
	return n
}
