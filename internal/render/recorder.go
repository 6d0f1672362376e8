package render

import "sync"

// Recorder keeps the most recent frames in memory.
type Recorder struct {
	mu     sync.Mutex
	limit  int
	frames []Frame
}

// NewRecorder creates a recorder that keeps at most limit frames.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 1
	}
	return &Recorder{limit: limit}
}

// Record stores f, dropping the oldest frame when full.
func (r *Recorder) Record(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) >= r.limit {
		r.frames = append(r.frames[:0], r.frames[1:]...)
	}
	r.frames = append(r.frames, f)
}

// Last returns the newest frame.
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Frames returns a copy of the kept frames, oldest first.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}
