package game

import (
	"sync"
	"time"
)

// Task is a pending delayed or periodic callback.
type Task interface {
	Stop()
}

// Scheduler runs the session's timed suspensions. Callbacks run on a goroutine owned
// by the scheduler, never on the caller's.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
	Every(d time.Duration, f func()) Task
}

// WallClock schedules on real time.
type WallClock struct{}

func (WallClock) AfterFunc(d time.Duration, f func()) Task {
	return timerTask{time.AfterFunc(d, f)}
}

func (WallClock) Every(d time.Duration, f func()) Task {
	t := &tickerTask{ticker: time.NewTicker(d), done: make(chan struct{})}
	go t.run(f)
	return t
}

type timerTask struct{ t *time.Timer }

func (t timerTask) Stop() { t.t.Stop() }

type tickerTask struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTask) run(f func()) {
	defer t.ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			// Stop may race with a tick that is already due.
			select {
			case <-t.done:
				return
			default:
			}
			f()
		}
	}
}

func (t *tickerTask) Stop() {
	t.once.Do(func() { close(t.done) })
}
