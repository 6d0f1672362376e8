package world

import (
	"errors"
	"fmt"
)

// ErrNoDoor is returned when a door index is out of range.
var ErrNoDoor = errors.New("no such door")

// Exit is a way out of the building.
type Exit struct {
	Name     string `json:"name" yaml:"name"`
	Position Vec3   `json:"position" yaml:"position"`
	Room     string `json:"room,omitempty" yaml:"room,omitempty"`
}

// SafeSpot is a take-cover location, usually under a desk or table.
type SafeSpot struct {
	Kind     string `json:"kind" yaml:"kind"` // "desk", "table"
	Position Vec3   `json:"position" yaml:"position"`
	Size     Vec3   `json:"size" yaml:"size"`
	Room     string `json:"room,omitempty" yaml:"room,omitempty"`
}

// Door is an interactive door. Doors are informational for steering and
// only restored on reset.
type Door struct {
	Position Vec3 `json:"position" yaml:"position"`
	Open     bool `json:"open" yaml:"open"`

	initial bool
}

// Wall is an axis-aligned obstacle rectangle on the floor plane. Walls are
// consulted by the grid pathfinder only.
type Wall struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MinZ float64 `json:"min_z" yaml:"min_z"`
	MaxZ float64 `json:"max_z" yaml:"max_z"`
}

// Contains returns true if p is inside the wall footprint.
func (w Wall) Contains(p Vec3) bool {
	return p.X >= w.MinX && p.X <= w.MaxX && p.Z >= w.MinZ && p.Z <= w.MaxZ
}

// Building is the static layout the simulation consumes: floor bounds,
// exits, safe spots, doors and walls.
type Building struct {
	Name   string `json:"name" yaml:"name"`
	Floor  Bounds `json:"floor" yaml:"floor"`
	Origin Vec3   `json:"origin" yaml:"origin"` // Building center, used to find "outside" of an exit

	ExitList     []Exit     `json:"exits" yaml:"exits"`
	SafeSpotList []SafeSpot `json:"safe_spots" yaml:"safe_spots"`
	Doors        []Door     `json:"doors" yaml:"doors"`
	Walls        []Wall     `json:"walls" yaml:"walls"`
}

// Exits returns the building's exits in declaration order.
func (b *Building) Exits() []Exit {
	return b.ExitList
}

// SafeSpots returns the building's safe spots in declaration order.
func (b *Building) SafeSpots() []SafeSpot {
	return b.SafeSpotList
}

// Validate checks that the layout can host an evacuation.
func (b *Building) Validate() error {
	if err := b.Floor.Validate(); err != nil {
		return err
	}
	if len(b.ExitList) == 0 {
		return fmt.Errorf("building %q has no exits", b.Name)
	}
	for i, e := range b.ExitList {
		if !b.Floor.Contains(e.Position) {
			return fmt.Errorf("exit %d (%s) at %v is outside %v", i, e.Name, e.Position, b.Floor)
		}
	}
	return nil
}

// ExitApproach returns the point just outside the exit: offset units further
// along the direction from the building origin through the exit, clamped to
// the floor so it is always reachable.
func (b *Building) ExitApproach(e Exit, offset float64) Vec3 {
	out, ok := e.Position.Sub(b.Origin).Normalize()
	if !ok {
		return b.Floor.Clamp(e.Position)
	}
	p := e.Position.Add(out.Scale(offset))
	p.Y = e.Position.Y
	return b.Floor.Clamp(p)
}

// Blocked returns true if p is inside any wall.
func (b *Building) Blocked(p Vec3) bool {
	for _, w := range b.Walls {
		if w.Contains(p) {
			return true
		}
	}
	return false
}

// ToggleDoor flips a door and returns its new state.
func (b *Building) ToggleDoor(i int) (bool, error) {
	if i < 0 || i >= len(b.Doors) {
		return false, fmt.Errorf("door %d: %w", i, ErrNoDoor)
	}
	b.Doors[i].Open = !b.Doors[i].Open
	return b.Doors[i].Open, nil
}

// MarkInitial records the current door states as the reset baseline.
func (b *Building) MarkInitial() {
	for i := range b.Doors {
		b.Doors[i].initial = b.Doors[i].Open
	}
}

// Reset restores doors to their baseline state.
func (b *Building) Reset() {
	for i := range b.Doors {
		b.Doors[i].Open = b.Doors[i].initial
	}
}

// Props returns the displaceable props of the layout keyed by a stable id:
// doors and safe-spot furniture.
func (b *Building) Props() []Prop {
	props := make([]Prop, 0, len(b.Doors)+len(b.SafeSpotList))
	for i, d := range b.Doors {
		props = append(props, Prop{ID: fmt.Sprintf("door-%d", i), Baseline: d.Position})
	}
	for i, s := range b.SafeSpotList {
		props = append(props, Prop{ID: fmt.Sprintf("%s-%d", s.Kind, i), Baseline: s.Position})
	}
	return props
}

// Clone returns a deep copy so callers can mutate doors independently.
func (b *Building) Clone() *Building {
	c := *b
	c.ExitList = append([]Exit(nil), b.ExitList...)
	c.SafeSpotList = append([]SafeSpot(nil), b.SafeSpotList...)
	c.Doors = append([]Door(nil), b.Doors...)
	c.Walls = append([]Wall(nil), b.Walls...)
	return &c
}

// DefaultBuilding returns the hall used when no layout is configured:
// a 40×40 floor with a door on each side and furniture around the center.
func DefaultBuilding() *Building {
	desk := V(1.8, 0.8)
	desk.Y = 0.75
	table := V(2.8, 1.8)
	table.Y = 0.75

	b := &Building{
		Name:   "hall",
		Floor:  Square(20),
		Origin: V(0, 0),
		ExitList: []Exit{
			{Name: "North Exit", Position: V(0, -18), Room: "Central Space"},
			{Name: "South Exit", Position: V(0, 18), Room: "Central Space"},
			{Name: "West Exit", Position: V(-18, 0), Room: "Central Space"},
			{Name: "East Exit", Position: V(18, 0), Room: "Central Space"},
		},
		SafeSpotList: []SafeSpot{
			{Kind: "desk", Position: V(-6, -6), Size: desk, Room: "Central Space"},
			{Kind: "desk", Position: V(6, -6), Size: desk, Room: "Central Space"},
			{Kind: "desk", Position: V(-6, 6), Size: desk, Room: "Central Space"},
			{Kind: "desk", Position: V(6, 6), Size: desk, Room: "Central Space"},
			{Kind: "table", Position: V(0, -11), Size: table, Room: "Central Space"},
			{Kind: "table", Position: V(0, 11), Size: table, Room: "Central Space"},
		},
		Doors: []Door{
			{Position: V(0, -18)},
			{Position: V(0, 18)},
			{Position: V(-18, 0)},
			{Position: V(18, 0)},
		},
		Walls: []Wall{
			{MinX: -15, MaxX: -9, MinZ: -14.25, MaxZ: -13.75},
			{MinX: 9, MaxX: 15, MinZ: 13.75, MaxZ: 14.25},
		},
	}
	b.MarkInitial()
	return b
}
