// Package crowd answers "who is near me" for crowd avoidance.
package crowd

import (
	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/world"
)

// Neighbor is another live agent within the query radius.
type Neighbor struct {
	Agent    *agents.Agent
	Away     world.Vec3 // Displacement from the neighbor to the querying agent
	Distance float64    // Planar distance
}

// Index finds neighbors among the simulated agents. Implementations must
// return the same neighbors in creation order.
type Index interface {
	// Rebuild indexes the population. The slice order is creation order.
	Rebuild(all []*agents.Agent)
	// Moved tells the index that a's position changed.
	Moved(a *agents.Agent)
	// Neighbors returns the non-evacuated agents other than self strictly
	// within radius of self.
	Neighbors(self *agents.Agent, radius float64) []Neighbor
}

func neighbor(self, other *agents.Agent, radius float64) (Neighbor, bool) {
	if other == self || other.Evacuated() {
		return Neighbor{}, false
	}
	away := self.Position.Sub(other.Position).Flat()
	d := away.Len()
	if d >= radius {
		return Neighbor{}, false
	}
	return Neighbor{Agent: other, Away: away, Distance: d}, true
}

// BruteForce checks every agent on every query.
type BruteForce struct {
	all []*agents.Agent
}

// NewBruteForce creates an empty brute-force index.
func NewBruteForce() *BruteForce {
	return &BruteForce{}
}

func (b *BruteForce) Rebuild(all []*agents.Agent) {
	b.all = all
}

func (b *BruteForce) Moved(*agents.Agent) {}

func (b *BruteForce) Neighbors(self *agents.Agent, radius float64) []Neighbor {
	var out []Neighbor
	for _, other := range b.all {
		if n, ok := neighbor(self, other, radius); ok {
			out = append(out, n)
		}
	}
	return out
}
