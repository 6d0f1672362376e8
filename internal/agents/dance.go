// Ambient behavior: what agents do before a scenario starts.
package agents

import (
	"math"

	"github.com/talgya/evacsim/internal/world"
)

// DanceConfig tunes the ambient dance.
type DanceConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Speed    float64 `yaml:"speed"`     // Orbit rate, rad/sec
	Radius   float64 `yaml:"radius"`    // Orbit radius around the pair center
	Sway     float64 `yaml:"sway"`      // Radius wobble amplitude
	SwayRate float64 `yaml:"sway_rate"` // Radius wobble rate, rad/sec
	SoloSpin float64 `yaml:"solo_spin"` // Unpaired spin rate, rad/sec
}

// DefaultDanceConfig returns the standard ambient dance.
func DefaultDanceConfig() DanceConfig {
	return DanceConfig{
		Enabled:  true,
		Speed:    1.5,
		Radius:   3,
		Sway:     0.5,
		SwayRate: 2,
		SoloSpin: 0.5,
	}
}

// AmbientMode is the mode agents rest in when no scenario is running.
func (c DanceConfig) AmbientMode() Mode {
	if c.Enabled {
		return ModeDancing
	}
	return ModeIdle
}

// DanceState is an agent's place in its pair's orbit.
type DanceState struct {
	Paired     bool
	Leader     bool
	Center     world.Vec3
	Angle      float64
	StartAngle float64
}

// Dance advances the ambient behavior by dt at ambient clock t. Pairs orbit
// their center facing each other; unpaired dancers turn in place.
// Agents not in Dancing mode are left alone.
func Dance(all []*Agent, pairs *Pairs, cfg DanceConfig, floor world.Bounds, t, dt float64) {
	if !cfg.Enabled {
		return
	}
	for _, p := range pairs.List() {
		if p.Leader.Mode != ModeDancing || p.Partner.Mode != ModeDancing {
			continue
		}
		p.Leader.Dance.Angle += cfg.Speed * dt
		p.Partner.Dance.Angle = p.Leader.Dance.Angle + math.Pi

		sway := math.Sin(t*cfg.SwayRate) * cfg.Sway
		orbit(p.Leader, cfg.Radius+sway, floor)
		orbit(p.Partner, cfg.Radius-sway, floor)

		p.Leader.Yaw = p.Partner.Position.Sub(p.Leader.Position).Yaw()
		p.Partner.Yaw = p.Leader.Position.Sub(p.Partner.Position).Yaw()
	}
	for _, a := range all {
		if a.Mode != ModeDancing {
			continue
		}
		if partner, ok := pairs.Partner(a.ID); ok && partner.Mode == ModeDancing {
			continue
		}
		a.Yaw = world.WrapAngle(a.Yaw + cfg.SoloSpin*dt)
	}
}

func orbit(a *Agent, r float64, floor world.Bounds) {
	c := a.Dance.Center
	a.Position = floor.Clamp(world.Vec3{
		X: c.X + math.Cos(a.Dance.Angle)*r,
		Y: a.Position.Y,
		Z: c.Z + math.Sin(a.Dance.Angle)*r,
	})
}
