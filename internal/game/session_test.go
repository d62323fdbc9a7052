package game_test

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"memory_game/internal/domain"
	"memory_game/internal/game"
	"memory_game/internal/game/gametest"
)

// newPlayingSession deals symbols and advances through the intro.
func newPlayingSession(t *testing.T, symbols []string, pairs int) (*game.Session, *gametest.Scheduler) {
	t.Helper()
	sched := gametest.New()
	s, err := game.StartSetup(symbols, pairs, rand.New(rand.NewSource(1)), game.WithID("t"), game.WithScheduler(sched))
	if err != nil {
		t.Fatalf("start setup: %v", err)
	}
	s.CompleteSetup()
	s.BeginPlayAfter(game.IntroDelay)
	sched.Advance(game.IntroDelay)
	if p := s.Snapshot().Phase; p != game.PhasePlaying {
		t.Fatalf("phase after intro = %s; want playing", p)
	}
	return s, sched
}

// pairOf returns the ids of two cards with the given symbol.
func pairOf(t *testing.T, snap game.Snapshot, symbol string) (int, int) {
	t.Helper()
	var ids []int
	for _, c := range snap.Cards {
		if c.Symbol == symbol {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) != 2 {
		t.Fatalf("symbol %q has %d cards", symbol, len(ids))
	}
	return ids[0], ids[1]
}

func TestStartSetup_Initial(t *testing.T) {
	sched := gametest.New()
	s, err := game.StartSetup([]string{"A", "B", "C"}, 2, rand.New(rand.NewSource(5)), game.WithScheduler(sched))
	if err != nil {
		t.Fatalf("start setup: %v", err)
	}
	snap := s.Snapshot()
	if snap.Phase != game.PhaseSetup {
		t.Fatalf("phase = %s", snap.Phase)
	}
	if len(snap.Cards) != 4 || snap.TotalPairs != 2 {
		t.Fatalf("cards = %d pairs = %d", len(snap.Cards), snap.TotalPairs)
	}
	if snap.ElapsedSeconds != 0 || snap.TimerRunning || len(snap.Turn) != 0 {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}
	if !snap.ShowStart() || snap.ShowResult() {
		t.Fatalf("overlays wrong in setup")
	}
}

func TestStartSetup_DegenerateDeck(t *testing.T) {
	_, err := game.StartSetup(nil, game.PairCount, rand.New(rand.NewSource(1)))
	if !errors.Is(err, domain.ErrDegenerateDeck) {
		t.Fatalf("err = %v; want ErrDegenerateDeck", err)
	}
	_, err = game.StartSetup([]string{"A"}, 0, rand.New(rand.NewSource(1)))
	if !errors.Is(err, domain.ErrDegenerateDeck) {
		t.Fatalf("zero pairs: err = %v; want ErrDegenerateDeck", err)
	}
}

func TestSession_IntroIsNotInteractive(t *testing.T) {
	sched := gametest.New()
	s, err := game.StartSetup([]string{"A", "B"}, 2, rand.New(rand.NewSource(1)), game.WithScheduler(sched))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Select(0); ok {
		t.Fatalf("select accepted during setup")
	}
	s.CompleteSetup()
	s.BeginPlayAfter(game.IntroDelay)

	sched.Advance(game.IntroDelay - time.Millisecond)
	snap, ok := s.Select(0)
	if ok || snap.Phase != game.PhaseIntro {
		t.Fatalf("select accepted during intro (phase %s)", snap.Phase)
	}
	if snap.TimerRunning {
		t.Fatalf("timer running during intro")
	}

	sched.Advance(time.Millisecond)
	snap = s.Snapshot()
	if snap.Phase != game.PhasePlaying || !snap.TimerRunning {
		t.Fatalf("after intro phase=%s running=%v", snap.Phase, snap.TimerRunning)
	}
	if snap.ShowStart() {
		t.Fatalf("start overlay visible while playing")
	}
}

func TestSession_MatchWins(t *testing.T) {
	s, sched := newPlayingSession(t, []string{"A"}, 1)

	if _, ok := s.Select(0); !ok {
		t.Fatalf("first select rejected")
	}
	snap, ok := s.Select(1)
	if !ok {
		t.Fatalf("second select rejected")
	}
	if snap.Phase != game.PhaseResolving || len(snap.Turn) != 2 {
		t.Fatalf("after two selections phase=%s turn=%v", snap.Phase, snap.Turn)
	}
	if got := sched.Pending(); !reflect.DeepEqual(got, []time.Duration{game.EvaluateDelay}) {
		t.Fatalf("pending = %v; want [%v]", got, game.EvaluateDelay)
	}

	sched.Advance(game.EvaluateDelay)
	snap = s.Snapshot()
	for _, c := range snap.Cards {
		if c.State != game.Matched {
			t.Fatalf("card %d state = %s; want matched", c.ID, c.State)
		}
	}
	if snap.Phase != game.PhaseWon {
		t.Fatalf("phase = %s; want won", snap.Phase)
	}
	if snap.TimerRunning {
		t.Fatalf("timer still running after win")
	}
	if !snap.ShowResult() || snap.Outcome != game.OutcomeMatch {
		t.Fatalf("result overlay=%v outcome=%s", snap.ShowResult(), snap.Outcome)
	}

	frozen := snap.ElapsedSeconds
	sched.Advance(10 * time.Second)
	if got := s.Snapshot().ElapsedSeconds; got != frozen {
		t.Fatalf("elapsed moved after win: %d -> %d", frozen, got)
	}
	if _, ok := s.Select(0); ok {
		t.Fatalf("select accepted after win")
	}
}

func TestSession_MismatchReverts(t *testing.T) {
	s, sched := newPlayingSession(t, []string{"A", "B"}, 2)
	snap := s.Snapshot()
	a, other := pairOf(t, snap, "A")
	b, _ := pairOf(t, snap, "B")

	s.Select(a)
	s.Select(b)

	sched.Advance(game.EvaluateDelay)
	snap = s.Snapshot()
	if snap.Phase != game.PhaseResolving || snap.Outcome != game.OutcomeMismatch {
		t.Fatalf("after evaluate phase=%s outcome=%s", snap.Phase, snap.Outcome)
	}
	if snap.Cards[a].State != game.Revealed || snap.Cards[b].State != game.Revealed {
		t.Fatalf("mismatched cards must stay revealed during the hold")
	}
	if _, ok := s.Select(other); ok {
		t.Fatalf("select accepted while resolving")
	}

	sched.Advance(game.MismatchDelay - game.EvaluateDelay - time.Millisecond)
	if s.Snapshot().Phase != game.PhaseResolving {
		t.Fatalf("reverted before %v", game.MismatchDelay)
	}
	sched.Advance(time.Millisecond)

	snap = s.Snapshot()
	if snap.Phase != game.PhasePlaying || len(snap.Turn) != 0 {
		t.Fatalf("phase=%s turn=%v; want playing with empty turn", snap.Phase, snap.Turn)
	}
	if snap.Cards[a].State != game.Hidden || snap.Cards[b].State != game.Hidden {
		t.Fatalf("cards not hidden: %v %v", snap.Cards[a].State, snap.Cards[b].State)
	}
}

func TestSession_TimerRunsThroughResolving(t *testing.T) {
	s, sched := newPlayingSession(t, []string{"A", "B"}, 2)
	snap := s.Snapshot()
	a, _ := pairOf(t, snap, "A")
	b, _ := pairOf(t, snap, "B")

	s.Select(a)
	s.Select(b)
	sched.Advance(game.MismatchDelay)

	snap = s.Snapshot()
	if snap.ElapsedSeconds != 2 || !snap.TimerRunning {
		t.Fatalf("elapsed=%d running=%v; want 2 running", snap.ElapsedSeconds, snap.TimerRunning)
	}
}

func TestSession_InvalidSelectionsAreNoOps(t *testing.T) {
	s, sched := newPlayingSession(t, []string{"A", "B"}, 2)
	snap := s.Snapshot()
	a1, a2 := pairOf(t, snap, "A")
	s.Select(a1)
	s.Select(a2)
	sched.Advance(game.EvaluateDelay)

	b1, _ := pairOf(t, s.Snapshot(), "B")
	s.Select(b1)

	before := s.Snapshot()
	for _, id := range []int{a1, a2, b1, -1, 4, 1000} {
		after, ok := s.Select(id)
		if ok {
			t.Fatalf("select(%d) accepted", id)
		}
		if !reflect.DeepEqual(before, after) {
			t.Fatalf("select(%d) changed session:\n%+v\n%+v", id, before, after)
		}
	}
}

func TestSession_TurnNeverExceedsTwo(t *testing.T) {
	symbols := []string{"a", "b", "c", "d", "e", "f"}
	for seed := int64(0); seed < 10; seed++ {
		sched := gametest.New()
		s, err := game.StartSetup(symbols, 6, rand.New(rand.NewSource(seed)), game.WithScheduler(sched))
		if err != nil {
			t.Fatal(err)
		}
		s.CompleteSetup()
		s.BeginPlay()

		var versions []uint64
		cancel := s.Subscribe(func(snap game.Snapshot) {
			versions = append(versions, snap.Version)
			if len(snap.Turn) > 2 {
				t.Errorf("turn size %d", len(snap.Turn))
			}
			if len(snap.Turn) == 2 && snap.Phase == game.PhasePlaying {
				t.Errorf("turn of two while playing")
			}
			seen := map[int]bool{}
			for _, id := range snap.Turn {
				if seen[id] {
					t.Errorf("turn contains %d twice", id)
				}
				seen[id] = true
			}
		})

		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < 400 && s.Snapshot().Phase != game.PhaseWon; i++ {
			s.Select(rng.Intn(14) - 1)
			if rng.Intn(3) == 0 {
				sched.Advance(time.Duration(rng.Intn(2500)) * time.Millisecond)
			}
		}
		cancel()

		for i := 1; i < len(versions); i++ {
			if versions[i] <= versions[i-1] {
				t.Fatalf("versions not increasing: %v", versions)
			}
		}
	}
}

func TestSession_WinExactness(t *testing.T) {
	symbols := []string{"a", "b", "c"}
	s, sched := newPlayingSession(t, symbols, 3)
	snap := s.Snapshot()

	for i, sym := range symbols {
		x, y := pairOf(t, snap, sym)
		s.Select(x)
		s.Select(y)
		sched.Advance(game.EvaluateDelay)

		got := s.Snapshot()
		last := i == len(symbols)-1
		if (got.Phase == game.PhaseWon) != last {
			t.Fatalf("after pair %d phase = %s", i, got.Phase)
		}
		if got.MatchedPairs != i+1 {
			t.Fatalf("matched pairs = %d; want %d", got.MatchedPairs, i+1)
		}
	}
}

func TestSession_ResetCancelsPending(t *testing.T) {
	s, sched := newPlayingSession(t, []string{"A", "B"}, 2)
	snap := s.Snapshot()
	a, _ := pairOf(t, snap, "A")
	b, _ := pairOf(t, snap, "B")

	notified := 0
	s.Subscribe(func(game.Snapshot) { notified++ })

	s.Select(a)
	s.Select(b)
	before := notified
	s.Reset()

	if got := sched.Pending(); len(got) != 0 {
		t.Fatalf("pending tasks after reset: %v", got)
	}
	if sched.Periodic() != 0 {
		t.Fatalf("timer tick still scheduled after reset")
	}

	frozen := s.Snapshot()
	sched.Advance(time.Minute)
	if after := s.Snapshot(); !reflect.DeepEqual(frozen, after) {
		t.Fatalf("disposed session changed:\n%+v\n%+v", frozen, after)
	}
	if notified != before {
		t.Fatalf("listener notified after reset")
	}
	if _, ok := s.Select(0); ok {
		t.Fatalf("select accepted on disposed session")
	}
	if !s.Disposed() {
		t.Fatalf("Disposed() = false")
	}
}

func TestSession_ResetDuringIntro(t *testing.T) {
	sched := gametest.New()
	s, err := game.StartSetup([]string{"A"}, 1, nil, game.WithScheduler(sched))
	if err != nil {
		t.Fatal(err)
	}
	s.CompleteSetup()
	s.BeginPlayAfter(game.IntroDelay)
	s.Reset()

	sched.Advance(game.IntroDelay)
	if p := s.Snapshot().Phase; p != game.PhaseIntro {
		t.Fatalf("phase = %s; stale intro callback ran", p)
	}
}

func TestSession_TickNotifies(t *testing.T) {
	s, sched := newPlayingSession(t, []string{"A"}, 1)

	var times []string
	s.Subscribe(func(snap game.Snapshot) { times = append(times, snap.Time) })
	sched.Advance(2 * time.Second)

	if !reflect.DeepEqual(times, []string{"00:01", "00:02"}) {
		t.Fatalf("times = %v", times)
	}
}

func TestNewView_HidesHiddenSymbols(t *testing.T) {
	s, _ := newPlayingSession(t, []string{"A", "B"}, 2)
	snap, _ := s.Select(0)

	v := game.NewView(snap)
	for _, c := range v.Cards {
		switch {
		case c.ID == 0 && c.Symbol == "":
			t.Fatalf("revealed card has no symbol")
		case c.ID != 0 && c.Symbol != "":
			t.Fatalf("hidden card %d leaks symbol %q", c.ID, c.Symbol)
		}
	}
	if v.ShowStart || v.ShowResult || v.FinalTime != "" {
		t.Fatalf("overlay flags wrong: %+v", v)
	}
}
