package hazard

import (
	"log/slog"

	"github.com/talgya/evacsim/internal/world"
)

// Field is the set of live hazards for the current scenario.
type Field struct {
	port      EffectPort
	hazards   []Hazard
	animating bool
}

// NewField creates an empty field backed by port.
func NewField(port EffectPort) *Field {
	return &Field{port: port, animating: true}
}

// Add spawns a hazard of the given kind through the effect port.
func (f *Field) Add(kind Kind, pos world.Vec3) Hazard {
	h := f.port.Spawn(pos)
	hz := Hazard{
		ID:        h,
		Kind:      kind,
		Position:  f.port.Position(h),
		Radius:    f.port.DangerRadius(h),
		Intensity: f.port.Intensity(h),
	}
	f.hazards = append(f.hazards, hz)
	slog.Debug("hazard spawned", "hazard", h, "kind", kind, "x", pos.X, "z", pos.Z, "radius", hz.Radius)
	return hz
}

// Clear removes every hazard from the port and the field.
func (f *Field) Clear() {
	for _, h := range f.hazards {
		f.port.Remove(h.ID)
	}
	f.hazards = nil
	f.animating = true
}

// SetAnimating starts or stops the flicker animation.
func (f *Field) SetAnimating(on bool) {
	f.animating = on
}

// Animating returns true if Update advances the effects.
func (f *Field) Animating() bool {
	return f.animating
}

// Update advances every effect by dt. Position and radius never change.
func (f *Field) Update(dt float64) {
	if !f.animating {
		return
	}
	for i := range f.hazards {
		f.port.Update(f.hazards[i].ID, dt)
		f.hazards[i].Intensity = f.port.Intensity(f.hazards[i].ID)
	}
}

// List returns a copy of the live hazards in spawn order.
func (f *Field) List() []Hazard {
	out := make([]Hazard, len(f.hazards))
	copy(out, f.hazards)
	return out
}

// Len returns the number of live hazards.
func (f *Field) Len() int {
	return len(f.hazards)
}

// Inside returns true if p lies within any hazard's danger radius.
func (f *Field) Inside(p world.Vec3) bool {
	for _, h := range f.hazards {
		if h.Contains(p) {
			return true
		}
	}
	return false
}
