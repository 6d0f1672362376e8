package engine

import (
	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/hazard"
	"github.com/talgya/evacsim/internal/world"
)

// Agents returns the population in creation order. Callers must not
// mutate the agents.
func (d *Director) Agents() []*agents.Agent {
	out := make([]*agents.Agent, len(d.agents))
	copy(out, d.agents)
	return out
}

// Agent looks up one agent by ID.
func (d *Director) Agent(id agents.AgentID) (*agents.Agent, bool) {
	a, ok := d.byID[id]
	return a, ok
}

// IsComplete returns true once every agent has evacuated.
func (d *Director) IsComplete() bool {
	return d.state == StateComplete
}

// EvacuatedCount returns how many agents are out as of the last tick.
func (d *Director) EvacuatedCount() int {
	return d.evacuated
}

// TotalCount returns the population size.
func (d *Director) TotalCount() int {
	return len(d.agents)
}

// Hazards returns the live hazards.
func (d *Director) Hazards() []hazard.Hazard {
	return d.field.List()
}

// State returns the lifecycle state.
func (d *Director) State() State {
	return d.state
}

// Scenario returns the running or finished scenario, if any.
func (d *Director) Scenario() (Scenario, bool) {
	if d.scenario == nil {
		return Scenario{}, false
	}
	return *d.scenario, true
}

// Building returns the layout. Callers must not mutate it.
func (d *Director) Building() *world.Building {
	return d.building
}

// Props returns the current prop transforms.
func (d *Director) Props() []world.PropState {
	return d.tremor.Props()
}

// Pairs returns the dance-pair registry.
func (d *Director) Pairs() *agents.Pairs {
	return d.pairs
}

// TickCount returns the number of ticks processed.
func (d *Director) TickCount() uint64 {
	return d.tick
}

// Elapsed returns the scenario time in seconds.
func (d *Director) Elapsed() float64 {
	return d.elapsed
}
