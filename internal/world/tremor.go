package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Prop is an entity that can be perturbed by a tremor and restored
// afterwards. Only registered props are ever displaced.
type Prop struct {
	ID       string `json:"id"`
	Baseline Vec3   `json:"baseline"`
}

// PropState is a prop's current, possibly displaced, position.
type PropState struct {
	ID       string `json:"id"`
	Position Vec3   `json:"position"`
}

// TremorConfig holds earthquake shake parameters.
type TremorConfig struct {
	Amplitude      float64 `json:"amplitude" yaml:"amplitude"`               // Max displacement at intensity 1
	DecayPerSecond float64 `json:"decay_per_second" yaml:"decay_per_second"` // Intensity multiplier per second of shaking
	Frequency      float64 `json:"frequency" yaml:"frequency"`               // Noise samples per second
}

// DefaultTremorConfig returns the standard shake.
func DefaultTremorConfig() TremorConfig {
	return TremorConfig{
		Amplitude:      0.1,
		DecayPerSecond: 0.74, // ≈ 0.995 per frame at 60 fps
		Frequency:      12,
	}
}

// Tremor is the displaceable-object registry for earthquake shaking.
// Props register a baseline once; Start/Update perturb them with coherent
// noise and Stop restores every baseline.
type Tremor struct {
	cfg       TremorConfig
	noise     opensimplex.Noise
	props     []Prop
	current   []Vec3
	intensity float64
	elapsed   float64
}

// NewTremor creates an empty registry with a deterministic noise source.
func NewTremor(seed int64, cfg TremorConfig) *Tremor {
	return &Tremor{
		cfg:   cfg,
		noise: opensimplex.New(seed + 500),
	}
}

// Register adds a prop. Registering an existing id replaces its baseline.
func (t *Tremor) Register(p Prop) {
	for i := range t.props {
		if t.props[i].ID == p.ID {
			t.props[i] = p
			t.current[i] = p.Baseline
			return
		}
	}
	t.props = append(t.props, p)
	t.current = append(t.current, p.Baseline)
}

// Start begins shaking at full intensity.
func (t *Tremor) Start() {
	t.intensity = 1
	t.elapsed = 0
}

// Stop ends shaking and restores every prop to its baseline.
func (t *Tremor) Stop() {
	t.intensity = 0
	t.elapsed = 0
	for i, p := range t.props {
		t.current[i] = p.Baseline
	}
}

// Active returns true while the tremor is shaking.
func (t *Tremor) Active() bool {
	return t.intensity > 0
}

// Intensity returns the current shake intensity in [0, 1].
func (t *Tremor) Intensity() float64 {
	return t.intensity
}

// Update advances the shake by dt seconds.
func (t *Tremor) Update(dt float64) {
	if !t.Active() {
		return
	}
	t.elapsed += dt
	s := t.elapsed * t.cfg.Frequency
	scale := t.intensity * t.cfg.Amplitude
	for i, p := range t.props {
		row := float64(i) * 7.31
		off := Vec3{
			X: octaveNoise(t.noise, s, row, 2, 1, 0.5),
			Y: octaveNoise(t.noise, s, row+101.7, 2, 1, 0.5),
			Z: octaveNoise(t.noise, s, row+203.3, 2, 1, 0.5),
		}
		t.current[i] = p.Baseline.Add(off.Scale(scale))
	}
	t.intensity *= math.Pow(t.cfg.DecayPerSecond, dt)
}

// Props returns the current state of every registered prop.
func (t *Tremor) Props() []PropState {
	out := make([]PropState, len(t.props))
	for i, p := range t.props {
		out[i] = PropState{ID: p.ID, Position: t.current[i]}
	}
	return out
}

// octaveNoise sums octaves of 2D noise, normalized to the noise range.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
