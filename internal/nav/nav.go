// Package nav plans walkable paths across the building floor.
package nav

import (
	"errors"

	"github.com/talgya/evacsim/internal/world"
)

var (
	// ErrPathNotFound is returned when no walkable route joins start and goal.
	ErrPathNotFound = errors.New("path not found")
	// ErrUnknownZone is returned for a zone the pathfinder has no map of.
	ErrUnknownZone = errors.New("unknown zone")
)

// Pathfinder returns waypoints from start to goal within a named zone. The
// last waypoint is the goal. Callers fall back to a straight line on error.
type Pathfinder interface {
	FindPath(zone string, start, goal world.Vec3) ([]world.Vec3, error)
}

// Direct is the pathfinder used when no nav data is available: a straight
// line to the goal.
type Direct struct{}

func (Direct) FindPath(_ string, _, goal world.Vec3) ([]world.Vec3, error) {
	return []world.Vec3{goal}, nil
}
