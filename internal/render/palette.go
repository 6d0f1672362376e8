package render

import (
	"fmt"

	"github.com/talgya/evacsim/internal/agents"
)

// Palette maps agent state to display colors. Panic is data; how it looks
// is decided only here.
type Palette struct {
	Calm      string `yaml:"calm"`
	Panic     string `yaml:"panic"`
	Frozen    string `yaml:"frozen"`
	Evacuated string `yaml:"evacuated"`
}

// DefaultPalette returns the standard colors.
func DefaultPalette() Palette {
	return Palette{
		Calm:      "#32CD32",
		Panic:     "#FF2400",
		Frozen:    "#8A2BE2",
		Evacuated: "#808080",
	}
}

// Color returns the hex color for an agent: its base color blended toward
// the panic color by panic level.
func (p Palette) Color(vs VisualState) string {
	switch vs.Mode {
	case agents.ModeEvacuated:
		return p.Evacuated
	case agents.ModeFrozen:
		return p.Frozen
	}
	base := vs.BaseColor
	if base == "" {
		base = p.Calm
	}
	from, ok1 := parseHex(base)
	to, ok2 := parseHex(p.Panic)
	if !ok1 || !ok2 {
		return base
	}
	t := agents.ClampPanic(vs.Panic)
	var out [3]uint8
	for i := range out {
		out[i] = uint8(float64(from[i]) + (float64(to[i])-float64(from[i]))*t + 0.5)
	}
	return fmt.Sprintf("#%02X%02X%02X", out[0], out[1], out[2])
}

func parseHex(s string) ([3]uint8, bool) {
	var c [3]uint8
	if len(s) != 7 || s[0] != '#' {
		return c, false
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c[0], &c[1], &c[2]); err != nil {
		return c, false
	}
	return c, true
}
