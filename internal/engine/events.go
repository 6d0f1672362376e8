package engine

import "log/slog"

// Event categories.
const (
	CategoryScenario = "scenario"
	CategoryAgent    = "agent"
	CategoryHazard   = "hazard"
	CategoryFault    = "fault"
	CategoryBuilding = "building"
)

// maxEvents bounds the event log.
const maxEvents = 1000

// Event is a notable occurrence in the simulation.
type Event struct {
	Tick        uint64         `json:"tick"`
	Time        float64        `json:"time"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// emit appends an event, keeping the last maxEvents.
func (d *Director) emit(category, desc string, meta map[string]any) {
	d.events = append(d.events, Event{
		Tick:        d.tick,
		Time:        d.elapsed,
		Description: desc,
		Category:    category,
		Meta:        meta,
	})
	if len(d.events) > maxEvents {
		d.events = d.events[len(d.events)-maxEvents:]
	}
	if category == CategoryScenario {
		slog.Info("event", "category", category, "description", desc)
	}
}

// Events returns a copy of the event log, oldest first.
func (d *Director) Events() []Event {
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}
