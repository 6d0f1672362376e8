package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnknownScenario is returned for a scenario name with no definition.
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrScenarioActive is returned when a scenario is started while one runs.
	ErrScenarioActive = errors.New("scenario already active")
	// ErrNoExits is returned when a scenario is started in a building
	// nobody can leave.
	ErrNoExits = errors.New("building has no exits")
)

// ScenarioKind is the type of emergency.
type ScenarioKind uint8

const (
	ScenarioFire ScenarioKind = iota
	ScenarioEarthquake
	ScenarioActiveShooter
)

var scenarioNames = [...]string{"fire", "earthquake", "active_shooter"}

func (k ScenarioKind) String() string {
	if int(k) < len(scenarioNames) {
		return scenarioNames[k]
	}
	return fmt.Sprintf("scenario(%d)", k)
}

// MarshalText encodes the kind by name.
func (k ScenarioKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseScenario returns the kind with the given name.
func ParseScenario(name string) (ScenarioKind, error) {
	for i, n := range scenarioNames {
		if n == name {
			return ScenarioKind(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownScenario)
}

// ScenarioKinds lists every kind in order.
func ScenarioKinds() []ScenarioKind {
	return []ScenarioKind{ScenarioFire, ScenarioEarthquake, ScenarioActiveShooter}
}

// HazardRing places hazards evenly on a circle around the building center
// when a scenario starts.
type HazardRing struct {
	Count  int     `yaml:"count"`
	Radius float64 `yaml:"radius"`
}

// ScenarioConfig is the per-kind scenario definition.
type ScenarioConfig struct {
	PanicBias float64    `yaml:"panic_bias"`
	Hazards   HazardRing `yaml:"hazards"`
}

// EarthquakeConfig holds the take-cover timings.
type EarthquakeConfig struct {
	CoverSpeed   float64 `yaml:"cover_speed"`
	FleeSpeed    float64 `yaml:"flee_speed"`
	CoverSeconds float64 `yaml:"cover_seconds"` // Minimum time under cover before fleeing
	ShakeSeconds float64 `yaml:"shake_seconds"`
}

// DefaultScenarios returns the standard scenario table.
func DefaultScenarios() map[ScenarioKind]ScenarioConfig {
	return map[ScenarioKind]ScenarioConfig{
		ScenarioFire:          {PanicBias: 0.7, Hazards: HazardRing{Count: 5, Radius: 8}},
		ScenarioEarthquake:    {PanicBias: 0.5},
		ScenarioActiveShooter: {PanicBias: 0.8},
	}
}

// DefaultEarthquake returns the standard earthquake timings.
func DefaultEarthquake() EarthquakeConfig {
	return EarthquakeConfig{CoverSpeed: 2, FleeSpeed: 4, CoverSeconds: 5, ShakeSeconds: 15}
}

// Phase is the stage of a running scenario.
type Phase uint8

const (
	PhaseCover Phase = iota // Earthquake: heading to or holding cover
	PhaseFlee               // Heading for the exits
)

func (p Phase) String() string {
	if p == PhaseCover {
		return "cover"
	}
	return "flee"
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Scenario is the emergency currently being simulated.
type Scenario struct {
	Kind      ScenarioKind `json:"kind"`
	RunID     uuid.UUID    `json:"run_id"`
	StartedAt time.Time    `json:"started_at"` // Wall clock, informational
	Elapsed   float64      `json:"elapsed"`    // Simulation seconds since start
	Phase     Phase        `json:"phase"`
	Shaking   bool         `json:"shaking"`
	Evacuated int          `json:"evacuated"`
	Total     int          `json:"total"`
}

func phaseAt(kind ScenarioKind, elapsed float64, eq EarthquakeConfig) Phase {
	if kind == ScenarioEarthquake && elapsed < eq.CoverSeconds {
		return PhaseCover
	}
	return PhaseFlee
}
