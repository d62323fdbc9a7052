package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"memory_game/internal/domain"
)

// Session is one game attempt. All mutation goes through its methods, which hold a
// single lock, so observers never see a half-applied transition.
type Session struct {
	mu sync.Mutex

	id        string
	cards     []Card
	turn      []int
	phase     Phase
	outcome   Outcome
	version   uint64
	createdAt time.Time

	timer *Timer
	sched Scheduler
	log   *slog.Logger

	// gen invalidates callbacks scheduled before Reset.
	gen      uint64
	taskSeq  uint64
	pending  map[uint64]Task
	disposed bool

	listenerSeq int
	listeners   map[int]func(Snapshot)
}

// Option configures a session at StartSetup.
type Option func(*Session)

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func WithScheduler(sched Scheduler) Option {
	return func(s *Session) { s.sched = sched }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// StartSetup deals a deck and returns a session in PhaseSetup with the timer stopped.
// An empty symbol list is rejected with domain.ErrDegenerateDeck.
func StartSetup(symbols []string, pairCount int, rng *rand.Rand, opts ...Option) (*Session, error) {
	if len(symbols) == 0 {
		return nil, domain.ErrDegenerateDeck
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Session{
		cards:     BuildDeck(symbols, pairCount, rng),
		turn:      make([]int, 0, 2),
		phase:     PhaseSetup,
		createdAt: time.Now(),
		sched:     WallClock{},
		pending:   make(map[uint64]Task),
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.cards) == 0 {
		return nil, fmt.Errorf("%w: pair count %d", domain.ErrDegenerateDeck, pairCount)
	}
	if s.log == nil {
		s.log = slog.Default().With("session_id", s.id)
	}
	s.timer = NewTimer(s.sched, s.onTick)

	s.log.Debug("session setup", "cards", len(s.cards))
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// CompleteSetup moves Setup to Intro. The caller holds Intro for IntroDelay, see BeginPlayAfter.
func (s *Session) CompleteSetup() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || s.phase != PhaseSetup {
		return s.snapshotLocked()
	}
	s.phase = PhaseIntro
	s.changed()
	return s.snapshotLocked()
}

// BeginPlay moves Intro to Playing and starts the timer.
func (s *Session) BeginPlay() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.beginPlayLocked()
	return s.snapshotLocked()
}

// BeginPlayAfter schedules BeginPlay once the intro pause has elapsed.
func (s *Session) BeginPlayAfter(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || s.phase != PhaseIntro {
		return
	}
	s.schedule(d, s.beginPlayLocked)
}

func (s *Session) beginPlayLocked() {
	if s.disposed || s.phase != PhaseIntro {
		return
	}
	s.phase = PhasePlaying
	s.timer.Start()
	s.changed()
}

// Select reveals card id. It reports false, leaving the session untouched, when the
// session is not Playing, id is out of range, already Matched or already in the turn.
func (s *Session) Select(id int) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || s.phase != PhasePlaying {
		return s.snapshotLocked(), false
	}
	if id < 0 || id >= len(s.cards) || s.cards[id].State == Matched || s.inTurn(id) {
		return s.snapshotLocked(), false
	}

	s.cards[id].State = Revealed
	s.turn = append(s.turn, id)
	switch len(s.turn) {
	case 1:
		s.outcome = OutcomeNone
	case 2:
		s.phase = PhaseResolving
		s.schedule(EvaluateDelay, s.evaluate)
	}
	s.changed()
	return s.snapshotLocked(), true
}

func (s *Session) inTurn(id int) bool {
	for _, t := range s.turn {
		if t == id {
			return true
		}
	}
	return false
}

// evaluate runs EvaluateDelay after the second selection.
func (s *Session) evaluate() {
	if s.phase != PhaseResolving || len(s.turn) != 2 {
		return
	}
	a, b := s.turn[0], s.turn[1]

	if s.cards[a].Symbol == s.cards[b].Symbol {
		s.cards[a].State = Matched
		s.cards[b].State = Matched
		s.outcome = OutcomeMatch
		s.turn = s.turn[:0]
		s.phase = PhasePlaying
		s.log.Debug("pair matched", "first", a, "second", b)
		s.afterMatch()
		s.changed()
		return
	}

	s.outcome = OutcomeMismatch
	s.log.Debug("pair mismatched", "first", a, "second", b)
	s.changed()
	s.schedule(MismatchDelay-EvaluateDelay, s.revert)
}

func (s *Session) revert() {
	if s.phase != PhaseResolving {
		return
	}
	for _, id := range s.turn {
		s.cards[id].State = Hidden
	}
	s.turn = s.turn[:0]
	s.outcome = OutcomeNone
	s.phase = PhasePlaying
	s.changed()
}

// afterMatch is the win check; it runs after every transition to Matched.
func (s *Session) afterMatch() {
	if len(s.cards) == 0 || s.phase == PhaseWon {
		return
	}
	for _, c := range s.cards {
		if c.State != Matched {
			return
		}
	}
	s.phase = PhaseWon
	s.timer.Stop()
	s.log.Info("session won", "elapsed", s.timer.Elapsed(), "time", s.timer.Format())
}

// Reset discards the session: pending suspensions and the timer are cancelled and every
// later call is a no-op. A new attempt needs a new StartSetup.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true
	s.gen++
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
	s.timer.Stop()
	s.listeners = nil
}

func (s *Session) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// schedule runs fn under the session lock after d unless the session was reset meanwhile.
// Caller must hold s.mu.
func (s *Session) schedule(d time.Duration, fn func()) {
	gen := s.gen
	s.taskSeq++
	id := s.taskSeq
	s.pending[id] = s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.pending, id)
		if s.disposed || gen != s.gen {
			return
		}
		fn()
	})
}

func (s *Session) onTick(int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.changed()
}

// Subscribe registers fn to receive a snapshot after every mutation, including timer
// ticks. fn runs with the session locked: it must not block or call back into the session.
func (s *Session) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return func() {}
	}
	s.listenerSeq++
	id := s.listenerSeq
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) changed() {
	s.version++
	if len(s.listeners) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, fn := range s.listeners {
		fn(snap)
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	cards := make([]Card, len(s.cards))
	copy(cards, s.cards)
	matched := 0
	for _, c := range cards {
		if c.State == Matched {
			matched++
		}
	}
	elapsed := s.timer.Elapsed()
	return Snapshot{
		ID:             s.id,
		Phase:          s.phase,
		Cards:          cards,
		Turn:           append([]int{}, s.turn...),
		Outcome:        s.outcome,
		ElapsedSeconds: elapsed,
		Time:           FormatElapsed(elapsed),
		TimerRunning:   s.timer.Running(),
		MatchedPairs:   matched / 2,
		TotalPairs:     len(cards) / 2,
		Version:        s.version,
	}
}

// Snapshot is the read-only projection handed to the presentation layer.
type Snapshot struct {
	ID             string  `json:"id"`
	Phase          Phase   `json:"phase"`
	Cards          []Card  `json:"cards"`
	Turn           []int   `json:"turn"`
	Outcome        Outcome `json:"outcome,omitempty"`
	ElapsedSeconds int     `json:"elapsed_seconds"`
	Time           string  `json:"time"`
	TimerRunning   bool    `json:"timer_running"`
	MatchedPairs   int     `json:"matched_pairs"`
	TotalPairs     int     `json:"total_pairs"`
	Version        uint64  `json:"version"`
}

// ShowStart reports whether the start overlay is visible.
func (s Snapshot) ShowStart() bool {
	return s.Phase == PhaseSetup || s.Phase == PhaseIntro
}

// ShowResult reports whether the result overlay is visible.
func (s Snapshot) ShowResult() bool {
	return s.Phase == PhaseWon
}
