package agents

import (
	"math"

	"github.com/talgya/evacsim/internal/world"
)

// Pair is two agents dancing around a shared center.
type Pair struct {
	Leader  *Agent
	Partner *Agent
	Center  world.Vec3
}

// Pairs is the symmetric dance-partner relation, built once at setup.
type Pairs struct {
	list    []Pair
	partner map[AgentID]*Agent
}

// BuildPairs matches every dance leader, in order, with the nearest unpaired
// non-leader. Ties go to the earlier agent. Each agent's dance state is set
// so that the pair orbits its midpoint starting from where they stand.
func BuildPairs(all []*Agent) *Pairs {
	ps := &Pairs{partner: make(map[AgentID]*Agent)}
	for _, leader := range all {
		if !leader.Profile.LeadsDance {
			continue
		}
		var best *Agent
		bestDist := math.Inf(1)
		for _, cand := range all {
			if cand.Profile.LeadsDance {
				continue
			}
			if _, taken := ps.partner[cand.ID]; taken {
				continue
			}
			if d := world.Distance(leader.Position, cand.Position); d < bestDist {
				best, bestDist = cand, d
			}
		}
		if best == nil {
			continue
		}
		ps.add(leader, best)
	}
	return ps
}

func (ps *Pairs) add(leader, partner *Agent) {
	center := leader.Position.Add(partner.Position).Scale(0.5)
	angle := math.Atan2(leader.Position.Z-center.Z, leader.Position.X-center.X)
	ps.partner[leader.ID] = partner
	ps.partner[partner.ID] = leader
	ps.list = append(ps.list, Pair{Leader: leader, Partner: partner, Center: center})

	leader.Dance = DanceState{Paired: true, Leader: true, Center: center, Angle: angle, StartAngle: angle}
	partner.Dance = DanceState{Paired: true, Center: center, Angle: angle + math.Pi, StartAngle: angle + math.Pi}
}

// Partner returns the agent paired with id.
func (ps *Pairs) Partner(id AgentID) (*Agent, bool) {
	a, ok := ps.partner[id]
	return a, ok
}

// List returns the pairs in leader order.
func (ps *Pairs) List() []Pair {
	return ps.list
}

// Len returns the number of pairs.
func (ps *Pairs) Len() int {
	return len(ps.list)
}
