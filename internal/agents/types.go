// Package agents provides the evacuee data model, its lifecycle mutators,
// data-driven role profiles, the dance-pair registry and ambient behavior.
package agents

import (
	"fmt"

	"github.com/talgya/evacsim/internal/world"
)

// AgentID is a unique identifier for an agent.
type AgentID uint64

// Mode is an agent's lifecycle state.
type Mode uint8

const (
	ModeIdle        Mode = iota // Standing, no scenario
	ModeDancing                 // Ambient behavior before a scenario
	ModeTakingCover             // Earthquake: heading to or holding a safe spot
	ModeFleeing                 // Heading to an exit
	ModeEvacuated               // Terminal: out of the building
	ModeFrozen                  // Panic substate: briefly unable to move
)

var modeNames = [...]string{"idle", "dancing", "taking_cover", "fleeing", "evacuated", "frozen"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// GoalKind says what an agent's goal point belongs to.
type GoalKind uint8

const (
	GoalNone GoalKind = iota
	GoalSafeSpot
	GoalExit // Goal is the point just outside an exit; reaching it evacuates
)

// Agent is a simulated evacuee.
type Agent struct {
	ID      AgentID `json:"id"`
	Name    string  `json:"name"`
	Profile Profile `json:"profile"`

	// Kinematics
	Position world.Vec3 `json:"position"`
	Yaw      float64    `json:"yaw"`   // Radians in (-π, π], 0 faces +Z
	Speed    float64    `json:"speed"` // Base speed, units/sec
	Panic    float64    `json:"panic"` // 0.0–1.0

	Mode Mode `json:"mode"`

	// Navigation
	Goal          *world.Vec3  `json:"goal,omitempty"`
	GoalKind      GoalKind     `json:"goal_kind"`
	GoalRef       int          `json:"goal_ref"` // Exit or safe spot index
	Path          []world.Vec3 `json:"path,omitempty"`
	WaypointIndex int          `json:"waypoint_index"`
	AtGoal        bool         `json:"at_goal"`

	// Panic substates
	NearHazard     bool    `json:"near_hazard"`
	FrozenFor      float64 `json:"frozen_for,omitempty"`
	FreezeCooldown float64 `json:"-"`
	ResumeMode     Mode    `json:"-"`

	Dance    DanceState `json:"-"`
	Headless bool       `json:"headless,omitempty"` // No visual asset; render sync is skipped

	// Reset snapshot
	Original    world.Vec3 `json:"original_position"`
	OriginalYaw float64    `json:"-"`
	ambient     Mode

	History []ModeChange `json:"history,omitempty"`
}

// Evacuated returns true once the agent has left the building.
func (a *Agent) Evacuated() bool {
	return a.Mode == ModeEvacuated
}

// Moving returns true if the agent takes part in steering this tick.
func (a *Agent) Moving() bool {
	return a.Mode == ModeFleeing || a.Mode == ModeTakingCover || a.Mode == ModeFrozen
}

func (a *Agent) String() string {
	return fmt.Sprintf("Agent(%d %s %s at %v)", a.ID, a.Name, a.Mode, a.Position)
}
