// Package engine runs the evacuation: the director state machine that owns
// agents, hazards and the scenario, and the frame loop that drives it.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/crowd"
	"github.com/talgya/evacsim/internal/hazard"
	"github.com/talgya/evacsim/internal/nav"
	"github.com/talgya/evacsim/internal/render"
	"github.com/talgya/evacsim/internal/steering"
	"github.com/talgya/evacsim/internal/world"
)

// State is the director's lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateActive
	StateComplete
)

var stateNames = [...]string{"idle", "active", "complete"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", s)
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config is everything the director needs beyond the building and people.
type Config struct {
	Steering   steering.Params
	Dance      agents.DanceConfig
	Tremor     world.TremorConfig
	Scenarios  map[ScenarioKind]ScenarioConfig
	Earthquake EarthquakeConfig

	ExitOffset      float64 // How far past an exit counts as outside
	NearHazardPanic float64 // Extra panic for agents inside a hazard at start
	SpatialGrid     bool    // Use the grid crowd index instead of brute force
}

// DefaultConfig returns the standard director configuration.
func DefaultConfig() Config {
	return Config{
		Steering:        steering.DefaultParams(),
		Dance:           agents.DefaultDanceConfig(),
		Tremor:          world.DefaultTremorConfig(),
		Scenarios:       DefaultScenarios(),
		Earthquake:      DefaultEarthquake(),
		ExitOffset:      2,
		NearHazardPanic: 0.5,
		SpatialGrid:     true,
	}
}

// Deps are the director's ports. Nil fields get headless defaults.
type Deps struct {
	Pathfinder nav.Pathfinder
	Effects    hazard.EffectPort
	Sink       render.Sink
	Seed       int64
}

// Director owns the evacuation state and advances it one tick at a time.
// It is not safe for concurrent use; Engine serializes access.
type Director struct {
	cfg      Config
	building *world.Building
	agents   []*agents.Agent
	byID     map[agents.AgentID]*agents.Agent
	pairs    *agents.Pairs

	index  crowd.Index
	steer  *steering.Engine
	field  *hazard.Field
	nav    nav.Pathfinder
	tremor *world.Tremor
	sink   render.Sink

	state     State
	scenario  *Scenario
	tick      uint64  // Monotonic, never resets
	clock     float64 // Ambient clock, restarts on reset
	elapsed   float64 // Scenario time
	evacuated int
	events    []Event
}

// NewDirector sets up the simulation over building b with the given
// population, in creation order. Agents are put in their ambient mode and
// dance pairs are formed.
func NewDirector(cfg Config, b *world.Building, population []*agents.Agent, deps Deps) *Director {
	if deps.Pathfinder == nil {
		deps.Pathfinder = nav.Direct{}
	}
	if deps.Effects == nil {
		deps.Effects = hazard.NewFire(deps.Seed, hazard.DefaultFireRadius)
	}
	if deps.Sink == nil {
		deps.Sink = render.Discard{}
	}

	var idx crowd.Index = crowd.NewBruteForce()
	if cfg.SpatialGrid {
		idx = crowd.NewGrid(cfg.Steering.CrowdRadius)
	}

	d := &Director{
		cfg:      cfg,
		building: b,
		agents:   population,
		byID:     make(map[agents.AgentID]*agents.Agent, len(population)),
		index:    idx,
		steer:    steering.New(cfg.Steering, idx, b.Floor),
		field:    hazard.NewField(deps.Effects),
		nav:      deps.Pathfinder,
		tremor:   world.NewTremor(deps.Seed, cfg.Tremor),
		sink:     deps.Sink,
	}
	ambient := cfg.Dance.AmbientMode()
	for _, a := range population {
		d.byID[a.ID] = a
		a.SetAmbient(ambient)
		a.Mode = ambient
	}
	d.pairs = agents.BuildPairs(population)
	for _, p := range b.Props() {
		d.tremor.Register(p)
	}
	slog.Info("director ready",
		"building", b.Name,
		"agents", len(population),
		"pairs", d.pairs.Len(),
		"exits", len(b.Exits()),
		"safe_spots", len(b.SafeSpots()),
	)
	return d
}

// StartEvacuation begins a scenario. Only allowed from Idle.
func (d *Director) StartEvacuation(kind ScenarioKind) error {
	if d.state != StateIdle {
		return fmt.Errorf("start %s in state %s: %w", kind, d.state, ErrScenarioActive)
	}
	sc, ok := d.cfg.Scenarios[kind]
	if !ok {
		return fmt.Errorf("%s: %w", kind, ErrUnknownScenario)
	}
	if len(d.building.Exits()) == 0 {
		return fmt.Errorf("start %s in %q: %w", kind, d.building.Name, ErrNoExits)
	}

	d.state = StateActive
	d.elapsed = 0
	d.evacuated = 0
	d.scenario = &Scenario{
		Kind:      kind,
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Phase:     phaseAt(kind, 0, d.cfg.Earthquake),
		Total:     len(d.agents),
	}

	if sc.Hazards.Count > 0 {
		for _, p := range hazard.Ring(d.building.Origin, sc.Hazards.Count, sc.Hazards.Radius) {
			d.field.Add(hazard.KindFire, d.building.Floor.Clamp(p))
		}
	}
	if kind == ScenarioEarthquake {
		d.tremor.Start()
		d.scenario.Shaking = true
	}

	hazards := d.field.List()
	for _, a := range d.agents {
		inside := false
		for _, h := range hazards {
			if h.Contains(a.Position) {
				inside = true
				break
			}
		}
		level := agents.ClampPanic(sc.PanicBias * a.Profile.PanicFactor())
		if inside {
			level += d.cfg.NearHazardPanic
		}
		a.SetPanic(level)
		a.NearHazard = inside

		if kind == ScenarioEarthquake && len(d.building.SafeSpots()) > 0 {
			d.takeCover(a)
		} else {
			d.flee(a)
		}
	}

	d.emit(CategoryScenario, fmt.Sprintf("%s evacuation started", kind), map[string]any{
		"run_id":  d.scenario.RunID.String(),
		"hazards": len(hazards),
		"agents":  len(d.agents),
	})
	slog.Info("scenario started", "scenario", kind, "run_id", d.scenario.RunID, "hazards", len(hazards))
	return nil
}

// takeCover sends a to the nearest safe spot.
func (d *Director) takeCover(a *agents.Agent) {
	i := NearestSafeSpot(d.building, a.Position)
	spot := d.building.SafeSpots()[i]
	a.Speed = d.cfg.Earthquake.CoverSpeed
	_ = a.SetMode(agents.ModeTakingCover, d.elapsed)
	a.SetGoal(spot.Position, agents.GoalSafeSpot, i)
	d.plan(a)
}

// flee sends a to just outside the nearest exit.
func (d *Director) flee(a *agents.Agent) {
	i := NearestExit(d.building, a.Position)
	if i < 0 {
		slog.Warn("no exit to flee to", "agent", a.ID)
		return
	}
	if d.scenario != nil && d.scenario.Kind == ScenarioEarthquake {
		a.Speed = d.cfg.Earthquake.FleeSpeed
	} else {
		a.Speed = a.Profile.Speed
	}
	_ = a.SetMode(agents.ModeFleeing, d.elapsed)
	a.SetGoal(d.building.ExitApproach(d.building.Exits()[i], d.cfg.ExitOffset), agents.GoalExit, i)
	d.plan(a)
}

// plan asks the pathfinder for a route to the agent's goal. On failure or a
// pathfinder fault the agent walks straight at it.
func (d *Director) plan(a *agents.Agent) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pathfinder failed", "agent", a.ID, "panic", r)
			d.emit(CategoryFault, fmt.Sprintf("%s path fault: %v", a.Name, r), map[string]any{"agent": a.ID})
			a.SetPath(nil)
		}
	}()
	path, err := d.nav.FindPath(d.building.Name, a.Position, *a.Goal)
	if err != nil {
		slog.Debug("path fallback to direct line", "agent", a.ID, "error", err)
		a.SetPath(nil)
		return
	}
	a.SetPath(path)
}

// Tick advances the simulation by dt seconds.
func (d *Director) Tick(dt float64) {
	d.tick++
	switch d.state {
	case StateIdle:
		d.clock += dt
		agents.Dance(d.agents, d.pairs, d.cfg.Dance, d.building.Floor, d.clock, dt)
	case StateActive:
		d.tickScenario(dt)
	}
	if d.tremor.Active() {
		d.tremor.Update(dt)
	}
	d.sync()
}

func (d *Director) tickScenario(dt float64) {
	d.elapsed += dt
	sc := d.scenario
	sc.Elapsed = d.elapsed
	prev := sc.Phase
	sc.Phase = phaseAt(sc.Kind, d.elapsed, d.cfg.Earthquake)
	if prev != sc.Phase {
		d.emit(CategoryScenario, fmt.Sprintf("phase %s", sc.Phase), nil)
	}
	if sc.Shaking && d.elapsed >= d.cfg.Earthquake.ShakeSeconds {
		d.tremor.Stop()
		sc.Shaking = false
		d.emit(CategoryScenario, "shaking stopped", nil)
	}
	d.field.Update(dt)
	hazards := d.field.List()
	d.index.Rebuild(d.agents)
	for _, a := range d.agents {
		if a.Evacuated() {
			continue
		}
		d.stepAgent(a, sc.Phase, hazards, dt)
	}

	d.evacuated = 0
	for _, a := range d.agents {
		if a.Evacuated() {
			d.evacuated++
		}
	}
	sc.Evacuated = d.evacuated
	if d.evacuated == len(d.agents) {
		d.complete()
	}
}

// leavingCover reports whether a has reached its safe spot and should now
// head for the exits.
func (d *Director) leavingCover(a *agents.Agent, phase Phase) bool {
	if phase != PhaseFlee || a.Mode != agents.ModeTakingCover || a.Goal == nil {
		return false
	}
	return a.AtGoal || world.Distance(a.Position, *a.Goal) <= d.cfg.Steering.ArrivalTolerance
}

// stepAgent re-goals and steers one agent. A fault is logged and the agent
// skipped for this tick.
func (d *Director) stepAgent(a *agents.Agent, phase Phase, hazards []hazard.Hazard, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent step failed", "agent", a.ID, "panic", r)
			d.emit(CategoryFault, fmt.Sprintf("%s skipped: %v", a.Name, r), map[string]any{"agent": a.ID})
		}
	}()
	if d.leavingCover(a, phase) {
		d.flee(a)
	}
	res := d.steer.Step(a, hazards, dt, d.elapsed)
	d.index.Moved(a)
	if res.Evacuated {
		d.emit(CategoryAgent, fmt.Sprintf("%s evacuated", a.Name), map[string]any{"agent": a.ID, "exit": a.GoalRef})
	}
	if res.Froze {
		d.emit(CategoryAgent, fmt.Sprintf("%s froze in panic", a.Name), map[string]any{"agent": a.ID})
	}
}

func (d *Director) complete() {
	d.state = StateComplete
	d.field.SetAnimating(false)
	if d.tremor.Active() {
		d.tremor.Stop()
	}
	d.scenario.Shaking = false
	d.emit(CategoryScenario, fmt.Sprintf("all %d evacuated in %.1fs", d.evacuated, d.elapsed), map[string]any{
		"run_id":  d.scenario.RunID.String(),
		"elapsed": d.elapsed,
	})
	slog.Info("evacuation complete", "scenario", d.scenario.Kind, "run_id", d.scenario.RunID, "elapsed", fmt.Sprintf("%.2f", d.elapsed), "ticks", d.tick)
}

// Reset returns everything to the setup state from any state.
func (d *Director) Reset() {
	d.field.Clear()
	d.tremor.Stop()
	d.building.Reset()
	for _, a := range d.agents {
		a.Reset()
	}
	d.state = StateIdle
	d.scenario = nil
	d.clock = 0
	d.elapsed = 0
	d.evacuated = 0
	d.emit(CategoryScenario, "reset", nil)
	slog.Info("simulation reset", "tick", d.tick)
}

// AddHazard spawns a fire at pos. Allowed in any state; agents react to it
// once a scenario runs.
func (d *Director) AddHazard(pos world.Vec3) hazard.Hazard {
	h := d.field.Add(hazard.KindFire, d.building.Floor.Clamp(pos))
	d.emit(CategoryHazard, fmt.Sprintf("fire at (%.1f, %.1f)", h.Position.X, h.Position.Z), map[string]any{"hazard": h.ID})
	return h
}

// ToggleDoor flips door i open or closed.
func (d *Director) ToggleDoor(i int) (bool, error) {
	open, err := d.building.ToggleDoor(i)
	if err != nil {
		return false, err
	}
	state := "closed"
	if open {
		state = "opened"
	}
	d.emit(CategoryBuilding, fmt.Sprintf("door %d %s", i, state), map[string]any{"door": i, "open": open})
	return open, nil
}

// sync pushes the frame to the render port. Headless agents are skipped.
func (d *Director) sync() {
	for _, a := range d.agents {
		if a.Headless {
			continue
		}
		d.sink.SyncAgent(a.ID, a.Position, a.Yaw, render.VisualState{
			Mode:      a.Mode,
			Panic:     a.Panic,
			BaseColor: a.Profile.Color,
		})
	}
	for _, h := range d.field.List() {
		d.sink.SyncHazard(h)
	}
	for _, p := range d.tremor.Props() {
		d.sink.SyncProp(p)
	}
	d.sink.Flush(d.tick, d.elapsed)
}
