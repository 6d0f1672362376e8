package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Engine drives the director from a fixed frame clock. The director steps
// every UpdateEvery frames with delta UpdateEvery/FrameRate seconds.
type Engine struct {
	FrameRate   float64 // Frames per second
	UpdateEvery int     // Frames per simulation tick

	// OnTick runs under the engine lock for every simulation tick.
	OnTick func(tick uint64, dt float64)

	mu    sync.Mutex
	frame uint64 // Monotonic, never resets
	ticks uint64
	speed float64 // 1.0 = real time, 0 = paused
}

// NewEngine creates a frame engine. Non-positive values fall back to 60 Hz
// and a tick every frame.
func NewEngine(frameRate float64, updateEvery int) *Engine {
	if frameRate <= 0 {
		frameRate = 60
	}
	if updateEvery <= 0 {
		updateEvery = 1
	}
	return &Engine{FrameRate: frameRate, UpdateEvery: updateEvery, speed: 1}
}

// Delta returns the simulated seconds per tick.
func (e *Engine) Delta() float64 {
	return float64(e.UpdateEvery) / e.FrameRate
}

// Run advances frames in real time until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	interval := time.Duration(float64(time.Second) / e.FrameRate)
	slog.Info("frame engine started", "frame_rate_hz", e.FrameRate, "update_every", e.UpdateEvery, "delta", e.Delta())

	for {
		speed := e.Speed()
		wait := 100 * time.Millisecond
		if speed > 0 {
			start := time.Now()
			e.Step()
			wait = time.Duration(float64(interval)/speed) - time.Since(start)
		}
		select {
		case <-ctx.Done():
			slog.Info("frame engine stopped", "frame", e.Frame(), "ticks", e.Ticks())
			return
		case <-time.After(max(wait, 0)):
		}
	}
}

// Step advances one frame, running a tick when one is due.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frame++
	if e.frame%uint64(e.UpdateEvery) != 0 {
		return
	}
	e.ticks++
	if e.OnTick != nil {
		e.OnTick(e.ticks, e.Delta())
	}
}

// Do runs fn under the engine lock so it never overlaps a tick.
func (e *Engine) Do(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// SetSpeed sets the real-time multiplier. Zero pauses.
func (e *Engine) SetSpeed(s float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = max(s, 0)
}

// Speed returns the real-time multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Frame returns the number of frames run.
func (e *Engine) Frame() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// Ticks returns the number of simulation ticks run.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}
