// Package world provides the floor-plane geometry, building layout and
// displaceable prop registry the evacuation simulation runs on.
// Agents move on the XZ plane; Y is carried but never steered.
package world

import (
	"fmt"
	"math"
)

// Vec3 is a point or displacement in world units.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// V returns a point on the floor plane.
func V(x, z float64) Vec3 {
	return Vec3{X: x, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Flat drops the vertical component.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// Len returns the planar length of v.
func (v Vec3) Len() float64 {
	return math.Hypot(v.X, v.Z)
}

// Normalize returns the planar unit vector of v and false when v has no
// planar length.
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}, false
	}
	return Vec3{X: v.X / l, Z: v.Z / l}, true
}

// Dot returns the planar dot product.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Z*o.Z
}

// Yaw returns the heading of v, measured from +Z toward +X.
func (v Vec3) Yaw() float64 {
	return math.Atan2(v.X, v.Z)
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// Distance returns the planar distance between two points.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Len()
}

// WrapAngle wraps a to (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// AngleDiff returns the signed shortest rotation from `from` to `to`,
// wrapped to (-π, π].
func AngleDiff(from, to float64) float64 {
	return WrapAngle(to - from)
}
