// Package render is the boundary between the simulation and whatever draws
// it. The simulation pushes plain state through a Sink; colors and frame
// encoding are decided here.
package render

import (
	"github.com/talgya/evacsim/internal/agents"
	"github.com/talgya/evacsim/internal/hazard"
	"github.com/talgya/evacsim/internal/world"
)

// VisualState is the per-agent data a renderer needs beyond the transform.
type VisualState struct {
	Mode      agents.Mode `json:"mode"`
	Panic     float64     `json:"panic"`
	BaseColor string      `json:"-"`
}

// Sink receives one frame of state at a time. Flush ends the frame.
type Sink interface {
	SyncAgent(id agents.AgentID, pos world.Vec3, yaw float64, vs VisualState)
	SyncHazard(h hazard.Hazard)
	SyncProp(p world.PropState)
	Flush(tick uint64, t float64)
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) SyncAgent(agents.AgentID, world.Vec3, float64, VisualState) {}
func (Discard) SyncHazard(hazard.Hazard)                                 {}
func (Discard) SyncProp(world.PropState)                                 {}
func (Discard) Flush(uint64, float64)                                    {}

// AgentFrame is one agent's entry in a frame.
type AgentFrame struct {
	ID       agents.AgentID `json:"id"`
	Position world.Vec3     `json:"position"`
	Yaw      float64        `json:"yaw"`
	Mode     agents.Mode    `json:"mode"`
	Color    string         `json:"color"`
}

// Frame is everything a renderer draws for one tick.
type Frame struct {
	Tick    uint64            `json:"tick"`
	Time    float64           `json:"time"`
	Agents  []AgentFrame      `json:"agents"`
	Hazards []hazard.Hazard   `json:"hazards"`
	Props   []world.PropState `json:"props,omitempty"`
}

// Builder is a Sink that assembles frames and hands each finished one to
// Publish.
type Builder struct {
	Palette Palette
	Publish func(Frame)

	cur Frame
}

// NewBuilder creates a frame builder with the default palette.
func NewBuilder(publish func(Frame)) *Builder {
	return &Builder{Palette: DefaultPalette(), Publish: publish}
}

func (b *Builder) SyncAgent(id agents.AgentID, pos world.Vec3, yaw float64, vs VisualState) {
	b.cur.Agents = append(b.cur.Agents, AgentFrame{
		ID:       id,
		Position: pos,
		Yaw:      yaw,
		Mode:     vs.Mode,
		Color:    b.Palette.Color(vs),
	})
}

func (b *Builder) SyncHazard(h hazard.Hazard) {
	b.cur.Hazards = append(b.cur.Hazards, h)
}

func (b *Builder) SyncProp(p world.PropState) {
	b.cur.Props = append(b.cur.Props, p)
}

func (b *Builder) Flush(tick uint64, t float64) {
	f := b.cur
	f.Tick, f.Time = tick, t
	b.cur = Frame{}
	if b.Publish != nil {
		b.Publish(f)
	}
}
