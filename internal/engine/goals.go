package engine

import (
	"math"

	"github.com/talgya/evacsim/internal/world"
)

// BuildingPort is the layout data goal selection reads.
type BuildingPort interface {
	Exits() []world.Exit
	SafeSpots() []world.SafeSpot
}

// NearestExit returns the index of the exit closest to p by straight-line
// distance, or -1 when there are none. Ties go to the first exit.
func NearestExit(b BuildingPort, p world.Vec3) int {
	best, bestDist := -1, math.Inf(1)
	for i, e := range b.Exits() {
		if d := world.Distance(p, e.Position); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// NearestSafeSpot is NearestExit for safe spots.
func NearestSafeSpot(b BuildingPort, p world.Vec3) int {
	best, bestDist := -1, math.Inf(1)
	for i, s := range b.SafeSpots() {
		if d := world.Distance(p, s.Position); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
