// Package steering moves one agent one tick: path following blended with
// crowd avoidance and hazard avoidance, panic-scaled speed, smoothed turning
// and waypoint arrival.
package steering

import (
	"math"

	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/crowd"
	"github.com/talgya/evacsim/internal/hazard"
	"github.com/talgya/evacsim/internal/world"
)

// Params are the steering weights and constants.
type Params struct {
	CrowdRadius         float64 `yaml:"crowd_radius"`
	CrowdWeight         float64 `yaml:"crowd_weight"`
	HazardWeight        float64 `yaml:"hazard_weight"`
	PanicGain           float64 `yaml:"panic_gain"`
	CrowdSlowdown       float64 `yaml:"crowd_slowdown"`   // Speed lost per neighbor
	MinCrowdFactor      float64 `yaml:"min_crowd_factor"` // Floor of the crowd slowdown
	HazardBoost         float64 `yaml:"hazard_boost"`
	TurnGain            float64 `yaml:"turn_gain"`
	TurnGainPerNeighbor float64 `yaml:"turn_gain_per_neighbor"`
	ArrivalTolerance    float64 `yaml:"arrival_tolerance"`

	HazardPanicRate float64 `yaml:"hazard_panic_rate"` // Panic gained per second inside a hazard
	FreezePanic     float64 `yaml:"freeze_panic"`
	FreezeSeconds   float64 `yaml:"freeze_seconds"`
	FreezeCooldown  float64 `yaml:"freeze_cooldown_seconds"`
}

// DefaultParams returns the standard steering constants.
func DefaultParams() Params {
	return Params{
		CrowdRadius:         3,
		CrowdWeight:         0.7,
		HazardWeight:        0.8,
		PanicGain:           1,
		CrowdSlowdown:       0.1,
		MinCrowdFactor:      0.5,
		HazardBoost:         2,
		TurnGain:            10,
		TurnGainPerNeighbor: 2,
		ArrivalTolerance:    1,
		HazardPanicRate:     0.2,
		FreezePanic:         0.95,
		FreezeSeconds:       0.5,
		FreezeCooldown:      3,
	}
}

// Engine steers agents across a floor.
type Engine struct {
	Params Params
	Crowd  crowd.Index
	Floor  world.Bounds
}

// New creates a steering engine.
func New(p Params, idx crowd.Index, floor world.Bounds) *Engine {
	return &Engine{Params: p, Crowd: idx, Floor: floor}
}

// Result describes what one step did.
type Result struct {
	Moved      bool
	Distance   float64 // Distance travelled
	Speed      float64 // Effective speed after panic, crowd and hazard factors
	Neighbors  int
	NearHazard bool
	Advanced   bool // A waypoint was reached
	Evacuated  bool
	Froze      bool
}

// Step advances a by dt seconds at simulation time now. Evacuated agents
// and agents holding at their goal are not moved.
func (e *Engine) Step(a *agents.Agent, hazards []hazard.Hazard, dt, now float64) Result {
	var res Result
	p := e.Params
	if a.Evacuated() || dt <= 0 {
		return res
	}
	if a.FreezeCooldown > 0 {
		a.FreezeCooldown = math.Max(0, a.FreezeCooldown-dt)
	}
	if a.Mode == agents.ModeFrozen {
		a.FrozenFor -= dt
		if a.FrozenFor <= world.Epsilon {
			a.FrozenFor = 0
			_ = a.SetMode(a.ResumeMode, now)
		}
		return res
	}
	target, ok := a.CurrentTarget()
	if !ok || a.AtGoal {
		return res
	}
	pos := a.Position
	before := world.Distance(pos, target)

	// 1. Toward the current waypoint. On the target there is no heading to
	// steer by, so only arrival runs.
	dir, ok := target.Sub(pos).Flat().Normalize()
	if ok && e.steer(a, dir, before, hazards, dt, now, &res) {
		return res
	}

	// 7. Arrival.
	after := world.Distance(a.Position, target)
	if before <= p.ArrivalTolerance || after <= p.ArrivalTolerance {
		res.Advanced = true
		if a.AdvanceWaypoint() && a.GoalKind == agents.GoalExit {
			_ = a.SetMode(agents.ModeEvacuated, now)
			res.Evacuated = true
		}
	}
	return res
}

// steer runs the avoidance, speed, move and turn steps. It reports true when
// the agent froze and the tick ends early.
func (e *Engine) steer(a *agents.Agent, dir world.Vec3, before float64, hazards []hazard.Hazard, dt, now float64, res *Result) bool {
	p := e.Params
	pos := a.Position

	// 2. Away from the crowd.
	neighbors := e.Crowd.Neighbors(a, p.CrowdRadius)
	res.Neighbors = len(neighbors)
	if len(neighbors) > 0 {
		var avoid world.Vec3
		for _, n := range neighbors {
			away, ok := n.Away.Normalize()
			if !ok {
				continue
			}
			avoid = avoid.Add(away.Scale((p.CrowdRadius - n.Distance) / p.CrowdRadius))
		}
		if avoid, ok := avoid.Normalize(); ok {
			dir, _ = dir.Add(avoid.Scale(p.CrowdWeight)).Normalize()
		}
	}

	// 3. Away from hazards.
	for _, h := range hazards {
		if !h.Contains(pos) {
			continue
		}
		res.NearHazard = true
		if toward, ok := h.Position.Sub(pos).Normalize(); ok {
			dir, _ = dir.Sub(toward.Scale(p.HazardWeight)).Normalize()
		}
	}
	if res.NearHazard {
		a.AddPanic(p.HazardPanicRate * dt)
		if !a.NearHazard && a.Panic >= p.FreezePanic && a.FreezeCooldown <= 0 {
			a.NearHazard = true
			e.freeze(a, now)
			res.Froze = true
			return true
		}
	}
	a.NearHazard = res.NearHazard

	// 4. Speed.
	speed := a.Speed * (1 + p.PanicGain*a.Panic)
	speed *= math.Max(p.MinCrowdFactor, 1-p.CrowdSlowdown*float64(len(neighbors)))
	if res.NearHazard {
		speed *= p.HazardBoost
	}
	res.Speed = speed

	if dir.Len() > world.Epsilon {
		// 5. Move, never past the current waypoint.
		step := math.Min(speed*dt, before)
		next := e.Floor.Clamp(pos.Add(dir.Scale(step)))
		res.Distance = world.Distance(pos, next)
		res.Moved = res.Distance > 0
		a.Position = next

		// 6. Turn toward the travel direction.
		rate := math.Min(1, (p.TurnGain+p.TurnGainPerNeighbor*float64(len(neighbors)))*dt)
		a.Yaw = world.WrapAngle(a.Yaw + world.AngleDiff(a.Yaw, dir.Yaw())*rate)
	}
	return false
}

func (e *Engine) freeze(a *agents.Agent, now float64) {
	a.ResumeMode = a.Mode
	if err := a.SetMode(agents.ModeFrozen, now); err != nil {
		return
	}
	a.FrozenFor = e.Params.FreezeSeconds
	a.FreezeCooldown = e.Params.FreezeCooldown
}
