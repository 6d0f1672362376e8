package agents

// MaxHistory bounds the per-agent mode-change log.
const MaxHistory = 64

// ModeChange records one lifecycle transition.
type ModeChange struct {
	At   float64 `json:"at"` // Seconds of simulation time
	From Mode    `json:"from"`
	To   Mode    `json:"to"`
}

func (a *Agent) record(at float64, from, to Mode) {
	if len(a.History) >= MaxHistory {
		a.History = append(a.History[:0], a.History[1:]...)
	}
	a.History = append(a.History, ModeChange{At: at, From: from, To: to})
}

// Modes returns the sequence of modes the agent passed through since the
// last reset, starting with the mode it was in before the first change.
func (a *Agent) Modes() []Mode {
	if len(a.History) == 0 {
		return []Mode{a.Mode}
	}
	out := make([]Mode, 0, len(a.History)+1)
	out = append(out, a.History[0].From)
	for _, c := range a.History {
		out = append(out, c.To)
	}
	return out
}
