package game

import (
	"fmt"
	"sync"
)

const (
	// MaxElapsedSeconds is where the timer saturates ("99:99").
	MaxElapsedSeconds = 99*60 + 99
	MaxTimeDisplay    = "99:99"
)

// Timer counts whole seconds while running. It stops by itself at MaxElapsedSeconds.
type Timer struct {
	mu      sync.Mutex
	sched   Scheduler
	elapsed int
	running bool
	gen     uint64
	task    Task
	onTick  func(elapsed int)
}

// NewTimer returns a stopped timer. onTick, if set, runs after every counted second
// without the timer lock held.
func NewTimer(sched Scheduler, onTick func(elapsed int)) *Timer {
	if sched == nil {
		sched = WallClock{}
	}
	return &Timer{sched: sched, onTick: onTick}
}

// Start is a no-op on a running or saturated timer.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running || t.elapsed >= MaxElapsedSeconds {
		return
	}
	t.running = true
	t.gen++
	gen := t.gen
	t.task = t.sched.Every(TickInterval, func() { t.tick(gen) })
}

// Stop cancels the tick task. It never waits for an in-flight tick.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if !t.running {
		return
	}
	t.running = false
	t.gen++
	if t.task != nil {
		t.task.Stop()
		t.task = nil
	}
}

func (t *Timer) tick(gen uint64) {
	t.mu.Lock()
	if !t.running || gen != t.gen {
		t.mu.Unlock()
		return
	}
	if t.elapsed < MaxElapsedSeconds {
		t.elapsed++
	}
	if t.elapsed >= MaxElapsedSeconds {
		t.stopLocked()
	}
	elapsed := t.elapsed
	cb := t.onTick
	t.mu.Unlock()

	if cb != nil {
		cb(elapsed)
	}
}

func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) Format() string {
	return FormatElapsed(t.Elapsed())
}

// FormatElapsed renders seconds as "MM:SS". Anything that does not fit two minute
// digits is shown as MaxTimeDisplay.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	if seconds >= MaxElapsedSeconds || minutes > 99 {
		return MaxTimeDisplay
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds%60)
}
