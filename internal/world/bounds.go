package world

import "fmt"

// Bounds is the axis-aligned floor rectangle agents are confined to.
type Bounds struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MinZ float64 `json:"min_z" yaml:"min_z"`
	MaxZ float64 `json:"max_z" yaml:"max_z"`
}

// Square returns bounds of the given half-extent centered on the origin.
func Square(half float64) Bounds {
	return Bounds{MinX: -half, MaxX: half, MinZ: -half, MaxZ: half}
}

// Contains returns true if p lies on or inside the rectangle.
func (b Bounds) Contains(p Vec3) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Z >= b.MinZ && p.Z <= b.MaxZ
}

// Clamp projects p onto the rectangle. Y is left untouched.
func (b Bounds) Clamp(p Vec3) Vec3 {
	p.X = clamp(p.X, b.MinX, b.MaxX)
	p.Z = clamp(p.Z, b.MinZ, b.MaxZ)
	return p
}

// Center returns the middle of the rectangle.
func (b Bounds) Center() Vec3 {
	return V((b.MinX+b.MaxX)/2, (b.MinZ+b.MaxZ)/2)
}

// Validate rejects empty or inverted rectangles.
func (b Bounds) Validate() error {
	if b.MaxX <= b.MinX || b.MaxZ <= b.MinZ {
		return fmt.Errorf("invalid floor bounds %+v", b)
	}
	return nil
}

func (b Bounds) String() string {
	return fmt.Sprintf("Bounds(x=[%.1f,%.1f], z=[%.1f,%.1f])", b.MinX, b.MaxX, b.MinZ, b.MaxZ)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
