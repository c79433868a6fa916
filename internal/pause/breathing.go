package pause

import (
	"sync"
	"time"
)

// Phase is one step of the breathing cycle.
type Phase string

const (
	PhaseInhale Phase = "inhale"
	PhaseHold   Phase = "hold"
	PhaseExhale Phase = "exhale"
)

// Guide runs a timed breathing exercise with a fixed total duration and a
// fixed phase cycle. Completion fires exactly once, either when the duration
// elapses or when the user skips.
type Guide struct {
	total     time.Duration
	phaseStep time.Duration
	cycle     []Phase

	mu        sync.Mutex
	timer     *time.Timer
	startedAt time.Time
	done      bool
	onDone    func()
}

// NewShortGuide is the 10-second inhale/exhale pause used inside the flow.
func NewShortGuide() *Guide {
	return &Guide{
		total:     10 * time.Second,
		phaseStep: 3 * time.Second,
		cycle:     []Phase{PhaseInhale, PhaseExhale},
	}
}

// NewFullGuide is the standalone 45-second inhale/hold/exhale exercise.
func NewFullGuide() *Guide {
	return &Guide{
		total:     45 * time.Second,
		phaseStep: 4 * time.Second,
		cycle:     []Phase{PhaseInhale, PhaseHold, PhaseExhale},
	}
}

// Duration returns the guide's fixed total duration.
func (g *Guide) Duration() time.Duration {
	return g.total
}

// Start schedules completion after the full duration.
func (g *Guide) Start(onComplete func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil || g.done {
		return
	}
	g.startedAt = time.Now()
	g.onDone = onComplete
	g.timer = time.AfterFunc(g.total, g.complete)
}

// Skip ends the exercise early, firing the completion callback.
func (g *Guide) Skip() {
	g.complete()
}

// Stop cancels the exercise without firing completion.
func (g *Guide) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.done = true
	if g.timer != nil {
		g.timer.Stop()
	}
}

// Remaining reports how much of the exercise is left.
func (g *Guide) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done || g.startedAt.IsZero() {
		return 0
	}
	left := g.total - time.Since(g.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// PhaseAt returns the cycle phase at the given elapsed time.
func (g *Guide) PhaseAt(elapsed time.Duration) Phase {
	if elapsed < 0 {
		elapsed = 0
	}
	step := int(elapsed / g.phaseStep)
	return g.cycle[step%len(g.cycle)]
}

func (g *Guide) complete() {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return
	}
	g.done = true
	if g.timer != nil {
		g.timer.Stop()
	}
	onDone := g.onDone
	g.mu.Unlock()
	if onDone != nil {
		onDone()
	}
}
