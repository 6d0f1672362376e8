package agents

import (
	"errors"
	"log/slog"

	"github.com/talgya/evacsim/internal/world"
)

// ErrInvalidTransition is returned when an evacuated agent is asked to
// change mode. Only Reset brings an agent back.
var ErrInvalidTransition = errors.New("invalid mode transition")

// SetMode switches the agent to next and records the change at time at.
// Any transition is allowed except out of Evacuated, which is a logged no-op.
func (a *Agent) SetMode(next Mode, at float64) error {
	if a.Mode == next {
		return nil
	}
	if a.Mode == ModeEvacuated {
		slog.Warn("invalid mode transition", "agent", a.ID, "from", a.Mode, "to", next)
		return ErrInvalidTransition
	}
	a.record(at, a.Mode, next)
	a.Mode = next
	return nil
}

// SetGoal replaces the goal and clears any stale path.
func (a *Agent) SetGoal(p world.Vec3, kind GoalKind, ref int) {
	g := p
	a.Goal = &g
	a.GoalKind = kind
	a.GoalRef = ref
	a.Path = nil
	a.WaypointIndex = 0
	a.AtGoal = false
}

// ClearGoal drops goal and path.
func (a *Agent) ClearGoal() {
	a.Goal = nil
	a.GoalKind = GoalNone
	a.GoalRef = -1
	a.Path = nil
	a.WaypointIndex = 0
	a.AtGoal = false
}

// SetPath installs waypoints toward the current goal. The goal is appended
// when the path does not already end on it.
func (a *Agent) SetPath(path []world.Vec3) {
	a.WaypointIndex = 0
	if len(path) == 0 || a.Goal == nil {
		a.Path = nil
		return
	}
	p := make([]world.Vec3, len(path), len(path)+1)
	copy(p, path)
	if world.Distance(p[len(p)-1], *a.Goal) > world.Epsilon {
		p = append(p, *a.Goal)
	}
	a.Path = p
}

// CurrentTarget returns the waypoint being steered toward, or the goal once
// the path is exhausted.
func (a *Agent) CurrentTarget() (world.Vec3, bool) {
	if a.Goal == nil {
		return world.Vec3{}, false
	}
	if a.WaypointIndex < len(a.Path) {
		return a.Path[a.WaypointIndex], true
	}
	return *a.Goal, true
}

// AdvanceWaypoint moves to the next waypoint and reports whether the goal
// has been reached. The index never exceeds len(Path).
func (a *Agent) AdvanceWaypoint() bool {
	if a.WaypointIndex < len(a.Path) {
		a.WaypointIndex++
	}
	if a.WaypointIndex >= len(a.Path) {
		a.AtGoal = true
	}
	return a.AtGoal
}

// Reset restores the agent to its setup state.
func (a *Agent) Reset() {
	a.Position = a.Original
	a.Yaw = a.OriginalYaw
	a.Speed = a.Profile.Speed
	a.Panic = 0
	a.Mode = a.ambient
	a.ClearGoal()
	a.NearHazard = false
	a.FrozenFor = 0
	a.FreezeCooldown = 0
	a.ResumeMode = a.ambient
	a.Dance.Angle = a.Dance.StartAngle
	a.History = nil
}

// SetAmbient sets the mode the agent returns to on reset.
func (a *Agent) SetAmbient(m Mode) {
	a.ambient = m
}

// Ambient returns the mode the agent returns to on reset.
func (a *Agent) Ambient() Mode {
	return a.ambient
}
