// Package tuning loads the simulation's YAML tuning file.
package tuning

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/engine"
	"github.com/talgya/evacsim/internal/hazard"
	"github.com/talgya/evacsim/internal/render"
	"github.com/talgya/evacsim/internal/steering"
	"github.com/talgya/evacsim/internal/world"
)

//go:embed schema.json
var schemaJSON string

// Tuning is the full simulation configuration.
type Tuning struct {
	FrameRateHz float64 `yaml:"frame_rate_hz"`
	UpdateEvery int     `yaml:"update_every"`
	Seed        int64   `yaml:"seed"`   // 0 = draw one from the OS
	Agents      int     `yaml:"agents"` // 0 = one per profile

	ExitOffset      float64 `yaml:"exit_offset"`
	NearHazardPanic float64 `yaml:"near_hazard_panic"`
	SpatialGrid     bool    `yaml:"spatial_grid"`
	NavCell         float64 `yaml:"nav_cell"` // Grid pathfinder cell size; 0 walks straight lines
	FireRadius      float64 `yaml:"fire_radius"`

	Steering   steering.Params                  `yaml:"steering"`
	Dance      agents.DanceConfig               `yaml:"dance"`
	Tremor     world.TremorConfig               `yaml:"tremor"`
	Scenarios  map[string]engine.ScenarioConfig `yaml:"scenarios"`
	Earthquake engine.EarthquakeConfig          `yaml:"earthquake"`
	Palette    render.Palette                   `yaml:"palette"`

	Building *world.Building  `yaml:"building"`
	Profiles []agents.Profile `yaml:"profiles"`
}

// Default returns the built-in tuning; configs/evacsim.yaml mirrors it.
func Default() Tuning {
	scenarios := make(map[string]engine.ScenarioConfig)
	for k, v := range engine.DefaultScenarios() {
		scenarios[k.String()] = v
	}
	return Tuning{
		FrameRateHz:     60,
		UpdateEvery:     2,
		ExitOffset:      2,
		NearHazardPanic: 0.5,
		SpatialGrid:     true,
		NavCell:         0.5,
		FireRadius:      hazard.DefaultFireRadius,
		Steering:        steering.DefaultParams(),
		Dance:           agents.DefaultDanceConfig(),
		Tremor:          world.DefaultTremorConfig(),
		Scenarios:       scenarios,
		Earthquake:      engine.DefaultEarthquake(),
		Palette:         render.DefaultPalette(),
		Building:        world.DefaultBuilding(),
		Profiles:        agents.DefaultProfiles(),
	}
}

// Load reads a tuning file. Keys missing from the file keep their defaults.
func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	return Parse(raw)
}

// Parse decodes and validates tuning YAML.
func Parse(raw []byte) (Tuning, error) {
	t := Default()
	if err := validateSchema(raw); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	// A building in the file replaces the default one whole.
	t.Building = nil
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.Building == nil {
		t.Building = world.DefaultBuilding()
	}
	t.Building.MarkInitial()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func validateSchema(raw []byte) error {
	schema, err := jsonschema.CompileString("tuning.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	// Round-trip through JSON so the validator sees JSON types.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return schema.Validate(v)
}

// Validate checks cross-field constraints the schema cannot express.
func (t Tuning) Validate() error {
	if t.Building == nil {
		return fmt.Errorf("no building")
	}
	if err := t.Building.Validate(); err != nil {
		return err
	}
	if len(t.Profiles) == 0 {
		return fmt.Errorf("no profiles")
	}
	for i, p := range t.Profiles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
	}
	for name := range t.Scenarios {
		if _, err := engine.ParseScenario(name); err != nil {
			return err
		}
	}
	return nil
}

// Population returns how many agents to spawn.
func (t Tuning) Population() int {
	if t.Agents > 0 {
		return t.Agents
	}
	return len(t.Profiles)
}

// DirectorConfig converts the tuning into the director's configuration.
func (t Tuning) DirectorConfig() (engine.Config, error) {
	cfg := engine.Config{
		Steering:        t.Steering,
		Dance:           t.Dance,
		Tremor:          t.Tremor,
		Scenarios:       make(map[engine.ScenarioKind]engine.ScenarioConfig, len(t.Scenarios)),
		Earthquake:      t.Earthquake,
		ExitOffset:      t.ExitOffset,
		NearHazardPanic: t.NearHazardPanic,
		SpatialGrid:     t.SpatialGrid,
	}
	for name, sc := range t.Scenarios {
		k, err := engine.ParseScenario(name)
		if err != nil {
			return cfg, err
		}
		cfg.Scenarios[k] = sc
	}
	return cfg, nil
}
