// Agent spawning: creates the population from role profiles.
package agents

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/talgya/evacsim/internal/world"
)

// AssetCheck reports whether a visual asset can be loaded.
type AssetCheck func(model string) bool

// Spawner creates agents for the simulation.
type Spawner struct {
	rng    *rand.Rand
	nextID AgentID

	// Assets, when set, marks agents whose model is unavailable as headless.
	Assets AssetCheck
	// Spread is the half-extent of the square extra agents are scattered in.
	Spread float64
}

// NewSpawner creates an agent spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
		Spread: 10,
	}
}

// Spawn creates count agents, cycling through profiles. The first pass uses
// each profile's own position; later passes scatter agents at random inside
// the spread square, clamped to floor.
func (s *Spawner) Spawn(profiles []Profile, count int, floor world.Bounds) []*Agent {
	if len(profiles) == 0 || count <= 0 {
		return nil
	}
	out := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		p := profiles[i%len(profiles)]
		pos := p.Position
		yaw := p.Yaw
		name := p.Name
		if i >= len(profiles) {
			pos = world.Vec3{
				X: (s.rng.Float64()*2 - 1) * s.Spread,
				Y: p.Position.Y,
				Z: (s.rng.Float64()*2 - 1) * s.Spread,
			}
			yaw = world.WrapAngle(s.rng.Float64() * 2 * math.Pi)
			name = ""
		}
		if name == "" {
			name = fmt.Sprintf("%s %d", p.Role, i+1)
		}
		out = append(out, s.spawnOne(p, name, floor.Clamp(pos), yaw))
	}
	return out
}

func (s *Spawner) spawnOne(p Profile, name string, pos world.Vec3, yaw float64) *Agent {
	id := s.nextID
	s.nextID++

	a := &Agent{
		ID:          id,
		Name:        name,
		Profile:     p,
		Position:    pos,
		Yaw:         yaw,
		Speed:       p.Speed,
		Original:    pos,
		OriginalYaw: yaw,
		GoalRef:     -1,
	}
	if s.Assets != nil && p.Model != "" && !s.Assets(p.Model) {
		a.Headless = true
		slog.Warn("agent asset unavailable, running headless", "agent", id, "model", p.Model)
	}
	return a
}
