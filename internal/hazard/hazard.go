// Package hazard models danger zones agents steer away from and the effect
// port that renders and animates them.
package hazard

import (
	"fmt"
	"math"

	"github.com/talgya/evacsim/internal/world"
)

// Kind is the type of hazard.
type Kind uint8

const (
	KindFire Kind = iota
	KindEarthquake
	KindShooter
)

var kindNames = [...]string{"fire", "earthquake", "shooter"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Handle identifies a hazard instance owned by an effect port.
type Handle uint64

// Hazard is a circular danger zone on the floor plane. Position and radius
// are fixed for its lifetime; only the intensity changes.
type Hazard struct {
	ID        Handle     `json:"id"`
	Kind      Kind       `json:"kind"`
	Position  world.Vec3 `json:"position"`
	Radius    float64    `json:"radius"`
	Intensity float64    `json:"intensity"` // Visual flicker, 0.0–1.0
}

// Contains returns true if p is strictly inside the danger radius.
func (h Hazard) Contains(p world.Vec3) bool {
	return world.Distance(h.Position, p) < h.Radius
}

// Ring returns n points evenly spaced on a circle of radius r around center,
// the first on the +X axis.
func Ring(center world.Vec3, n int, r float64) []world.Vec3 {
	out := make([]world.Vec3, 0, n)
	for i := 0; i < n; i++ {
		a := float64(i) * 2 * math.Pi / float64(n)
		out = append(out, world.Vec3{X: center.X + math.Cos(a)*r, Y: center.Y, Z: center.Z + math.Sin(a)*r})
	}
	return out
}
