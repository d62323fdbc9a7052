// Package gametest provides a virtual-time scheduler for driving sessions in tests.
package gametest

import (
	"sort"
	"sync"
	"time"

	"memory_game/internal/game"
)

// Scheduler implements game.Scheduler on a virtual clock that only moves on Advance.
type Scheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*task
}

type task struct {
	s       *Scheduler
	seq     int
	due     time.Duration
	every   time.Duration
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *task) Stop() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.stopped = true
}

func New() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) AfterFunc(d time.Duration, f func()) game.Task {
	return s.add(d, 0, f)
}

func (s *Scheduler) Every(d time.Duration, f func()) game.Task {
	return s.add(d, d, f)
}

func (s *Scheduler) add(d, every time.Duration, f func()) *task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &task{s: s, seq: s.seq, due: s.now + d, every: every, delay: d, fn: f}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d, running due callbacks in order. Callbacks run
// without the scheduler lock, so they may schedule or stop tasks.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		t := s.nextDueLocked(target)
		if t == nil {
			break
		}
		s.now = t.due
		if t.every > 0 {
			t.due += t.every
		} else {
			t.stopped = true
		}
		s.mu.Unlock()
		t.fn()
		s.mu.Lock()
	}
	s.now = target
	s.pruneLocked()
	s.mu.Unlock()
}

func (s *Scheduler) nextDueLocked(target time.Duration) *task {
	var next *task
	for _, t := range s.tasks {
		if t.stopped || t.due > target {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (s *Scheduler) pruneLocked() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.tasks = live
}

// Pending returns the delays of live one-shot tasks, shortest first.
func (s *Scheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []time.Duration
	for _, t := range s.tasks {
		if !t.stopped && t.every == 0 {
			out = append(out, t.delay)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Periodic returns how many periodic tasks are still running.
func (s *Scheduler) Periodic() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tasks {
		if !t.stopped && t.every > 0 {
			n++
		}
	}
	return n
}

func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
