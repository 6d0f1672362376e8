package crowd

import (
	"math"
	"slices"

	"github.com/talgya/evacsim/internal/agents"
)

type cell struct{ x, z int }

// Grid is a uniform spatial hash over the floor plane.
type Grid struct {
	size    float64
	all     []*agents.Agent
	order   map[agents.AgentID]int
	at      map[agents.AgentID]cell
	buckets map[cell][]int
}

// NewGrid creates a spatial hash with the given cell size, normally the
// crowd radius.
func NewGrid(size float64) *Grid {
	if size <= 0 {
		size = 1
	}
	return &Grid{size: size}
}

func (g *Grid) key(x, z float64) cell {
	return cell{int(math.Floor(x / g.size)), int(math.Floor(z / g.size))}
}

func (g *Grid) Rebuild(all []*agents.Agent) {
	g.all = all
	g.order = make(map[agents.AgentID]int, len(all))
	g.at = make(map[agents.AgentID]cell, len(all))
	g.buckets = make(map[cell][]int)
	for i, a := range all {
		c := g.key(a.Position.X, a.Position.Z)
		g.order[a.ID] = i
		g.at[a.ID] = c
		g.buckets[c] = append(g.buckets[c], i)
	}
}

func (g *Grid) Moved(a *agents.Agent) {
	i, ok := g.order[a.ID]
	if !ok {
		return
	}
	old := g.at[a.ID]
	c := g.key(a.Position.X, a.Position.Z)
	if c == old {
		return
	}
	b := g.buckets[old]
	if j := slices.Index(b, i); j >= 0 {
		b = slices.Delete(b, j, j+1)
	}
	if len(b) == 0 {
		delete(g.buckets, old)
	} else {
		g.buckets[old] = b
	}
	g.buckets[c] = append(g.buckets[c], i)
	g.at[a.ID] = c
}

func (g *Grid) Neighbors(self *agents.Agent, radius float64) []Neighbor {
	span := int(math.Ceil(radius / g.size))
	center := g.key(self.Position.X, self.Position.Z)

	var candidates []int
	for dx := -span; dx <= span; dx++ {
		for dz := -span; dz <= span; dz++ {
			candidates = append(candidates, g.buckets[cell{center.x + dx, center.z + dz}]...)
		}
	}
	slices.Sort(candidates)

	var out []Neighbor
	for _, i := range candidates {
		if n, ok := neighbor(self, g.all[i], radius); ok {
			out = append(out, n)
		}
	}
	return out
}
