package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"memory_game/internal/domain"
	"memory_game/internal/game"
	"memory_game/internal/game/gametest"
	"memory_game/internal/symbols"
)

func staticSource(letters ...string) symbols.Source {
	return symbols.SourceFunc(func(context.Context) ([]string, error) {
		return letters, nil
	})
}

func newTestService(t *testing.T, src symbols.Source) (*SessionService, *gametest.Scheduler) {
	t.Helper()
	sched := gametest.New()
	svc := NewSessionService(src, SessionConfig{
		Scheduler: sched,
		NewRand:   func() *rand.Rand { return rand.New(rand.NewSource(7)) },
	})
	t.Cleanup(svc.Shutdown)
	return svc, sched
}

func TestSessionService_StartRunsIntro(t *testing.T) {
	svc, sched := newTestService(t, staticSource("a", "b", "c"))

	sess, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.ID() == "" {
		t.Fatalf("session id is empty")
	}
	snap := sess.Snapshot()
	if snap.Phase != game.PhaseIntro || !snap.ShowStart() {
		t.Fatalf("phase = %s; want intro", snap.Phase)
	}
	if len(snap.Cards) != 6 {
		t.Fatalf("cards = %d; want 6", len(snap.Cards))
	}

	sched.Advance(game.IntroDelay - time.Millisecond)
	if sess.Snapshot().Phase != game.PhaseIntro {
		t.Fatalf("play began before the intro elapsed")
	}
	sched.Advance(time.Millisecond)
	if got := sess.Snapshot(); got.Phase != game.PhasePlaying || !got.TimerRunning {
		t.Fatalf("phase = %s running = %v; want playing with timer", got.Phase, got.TimerRunning)
	}

	got, err := svc.Get(sess.ID())
	if err != nil || got != sess {
		t.Fatalf("get = %v, %v", got, err)
	}
	if svc.ActiveCount() != 1 {
		t.Fatalf("active = %d; want 1", svc.ActiveCount())
	}
}

func TestSessionService_SetupFailures(t *testing.T) {
	cases := []struct {
		name string
		src  symbols.Source
		want error
	}{
		{"unavailable", symbols.SourceFunc(func(context.Context) ([]string, error) {
			return nil, domain.ErrMalformedLetters
		}), domain.ErrSourceUnavailable},
		{"empty", staticSource(), domain.ErrDegenerateDeck},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t, tc.src)
			sess, err := svc.Start(context.Background())
			if !errors.Is(err, tc.want) || !domain.IsSetupFailure(err) {
				t.Fatalf("err = %v; want %v", err, tc.want)
			}
			if sess != nil {
				t.Fatalf("session returned on failure")
			}
			if svc.ActiveCount() != 0 {
				t.Fatalf("failed session was registered")
			}
		})
	}
}

func TestSessionService_SelectAndWin(t *testing.T) {
	svc, sched := newTestService(t, staticSource("a"))
	sess, err := svc.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	sched.Advance(game.IntroDelay)

	if _, ok, err := svc.Select(sess.ID(), 0); err != nil || !ok {
		t.Fatalf("select 0: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := svc.Select(sess.ID(), 0); ok {
		t.Fatalf("reselecting a turn card was accepted")
	}
	if _, ok, _ := svc.Select(sess.ID(), 1); !ok {
		t.Fatalf("select 1 rejected")
	}
	sched.Advance(game.EvaluateDelay)

	snap := sess.Snapshot()
	if snap.Phase != game.PhaseWon || snap.TimerRunning {
		t.Fatalf("phase = %s running = %v; want won and stopped", snap.Phase, snap.TimerRunning)
	}

	if _, _, err := svc.Select("missing", 0); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("err = %v; want not found", err)
	}
}

func TestSessionService_ResetRunsHooksAndCancels(t *testing.T) {
	svc, sched := newTestService(t, staticSource("a", "b"))
	sess, err := svc.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var discarded []string
	svc.OnDiscard(func(id string) { discarded = append(discarded, id) })

	if err := svc.Reset(sess.ID()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(discarded) != 1 || discarded[0] != sess.ID() {
		t.Fatalf("hooks saw %v", discarded)
	}
	if !sess.Disposed() {
		t.Fatalf("session not disposed")
	}

	sched.Advance(game.IntroDelay)
	if sess.Snapshot().Phase != game.PhaseIntro {
		t.Fatalf("intro callback ran after reset")
	}
	if err := svc.Reset(sess.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("second reset err = %v", err)
	}
}

func TestSessionService_Restart(t *testing.T) {
	svc, _ := newTestService(t, staticSource("a", "b"))
	first, err := svc.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Restart(context.Background(), first.ID())
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if second.ID() == first.ID() {
		t.Fatalf("restart reused the session id")
	}
	if !first.Disposed() {
		t.Fatalf("old session still live")
	}
	if _, err := svc.Get(first.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("old session still registered")
	}
	if svc.ActiveCount() != 1 {
		t.Fatalf("active = %d; want 1", svc.ActiveCount())
	}
}

func TestSessionService_ExpireBefore(t *testing.T) {
	svc, _ := newTestService(t, staticSource("a"))
	sess, err := svc.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if n := svc.ExpireBefore(sess.CreatedAt()); n != 0 {
		t.Fatalf("expired %d fresh sessions", n)
	}
	if n := svc.ExpireBefore(time.Now().Add(time.Second)); n != 1 {
		t.Fatalf("expired %d; want 1", n)
	}
	if svc.ActiveCount() != 0 {
		t.Fatalf("expired session still registered")
	}
}

func TestSessionService_ExpireBeforeKeepsRunningGame(t *testing.T) {
	svc, sched := newTestService(t, staticSource("a", "b"))
	sess, err := svc.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	sched.Advance(game.IntroDelay + time.Hour)
	snap := sess.Snapshot()
	if snap.Phase != game.PhasePlaying || !snap.TimerRunning || snap.ElapsedSeconds != 3600 {
		t.Fatalf("phase = %s running = %v elapsed = %d; want playing at 3600s", snap.Phase, snap.TimerRunning, snap.ElapsedSeconds)
	}
	if n := svc.ExpireBefore(time.Now().Add(time.Second)); n != 0 {
		t.Fatalf("expired %d running games", n)
	}
	if sess.Disposed() {
		t.Fatalf("running game was disposed")
	}

	sched.Advance(time.Duration(game.MaxElapsedSeconds-3600) * time.Second)
	snap = sess.Snapshot()
	if snap.TimerRunning || snap.Time != "99:99" {
		t.Fatalf("running = %v time = %s; want stopped at 99:99", snap.TimerRunning, snap.Time)
	}
	if n := svc.ExpireBefore(time.Now().Add(time.Second)); n != 1 {
		t.Fatalf("expired %d; want 1 once the timer saturated", n)
	}
}

func TestSessionService_RunCleanupStopsOnCancel(t *testing.T) {
	svc, _ := newTestService(t, staticSource("a"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("RunCleanup did not return after cancel")
	}
}
