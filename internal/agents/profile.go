package agents

import (
	"fmt"

	"github.com/talgya/evacsim/internal/world"
)

// Profile is the read-only role template an agent is created from.
// Profiles are data: they come from the tuning file or the catalog.
type Profile struct {
	Role             string     `json:"role" yaml:"role"`
	Name             string     `json:"name,omitempty" yaml:"name,omitempty"`
	Speed            float64    `json:"speed" yaml:"speed"`
	PanicSensitivity float64    `json:"panic_sensitivity" yaml:"panic_sensitivity"`
	Position         world.Vec3 `json:"position" yaml:"position"`
	Yaw              float64    `json:"yaw,omitempty" yaml:"yaw,omitempty"`
	Color            string     `json:"color,omitempty" yaml:"color,omitempty"` // Hex "#RRGGBB"
	Model            string     `json:"model,omitempty" yaml:"model,omitempty"` // Visual asset name
	LeadsDance       bool       `json:"leads_dance,omitempty" yaml:"leads_dance,omitempty"`
}

// PanicFactor scales the scenario panic bias for this role.
func (p Profile) PanicFactor() float64 {
	return 0.5 + p.PanicSensitivity
}

// Validate rejects profiles that cannot move or panic sensibly.
func (p Profile) Validate() error {
	if p.Role == "" {
		return fmt.Errorf("profile has no role")
	}
	if p.Speed <= 0 {
		return fmt.Errorf("profile %s: speed must be positive, got %v", p.Role, p.Speed)
	}
	if p.PanicSensitivity < 0 || p.PanicSensitivity > 1 {
		return fmt.Errorf("profile %s: panic sensitivity %v out of range", p.Role, p.PanicSensitivity)
	}
	return nil
}

// DefaultProfiles returns the classroom roster: three teachers who lead a
// dance and nine students.
func DefaultProfiles() []Profile {
	teacher := func(name string, x, z float64) Profile {
		return Profile{
			Role: "Teacher", Name: name, Speed: 8.0, PanicSensitivity: 0.4,
			Position: world.V(x, z), Color: "#00BFFF", Model: "teacher", LeadsDance: true,
		}
	}
	student := func(n int, x, z float64) Profile {
		return Profile{
			Role: "Student", Name: fmt.Sprintf("Student %d", n), Speed: 7.5, PanicSensitivity: 0.7,
			Position: world.V(x, z), Color: "#32CD32", Model: "student",
		}
	}
	return []Profile{
		teacher("Teacher A", 0, -10),
		teacher("Teacher B", -10, 4),
		teacher("Teacher C", 10, 4),
		student(1, 2, -7),
		student(2, -7, 6),
		student(3, 7, 6),
		student(4, -3, 0),
		student(5, 3, 0),
		student(6, -12, -8),
		student(7, 12, -8),
		student(8, -4, 12),
		student(9, 4, 12),
	}
}
