package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"memory_game/internal/domain"
	"memory_game/internal/game"
	"memory_game/internal/logger"
	"memory_game/internal/symbols"

	"github.com/google/uuid"
)

// SessionConfig tunes a SessionService. Zero values fall back to the game defaults.
type SessionConfig struct {
	PairCount  int
	IntroDelay time.Duration
	SessionTTL time.Duration
	Scheduler  game.Scheduler
	NewRand    func() *rand.Rand
}

// SessionService owns the live sessions, keyed by session id.
type SessionService struct {
	source symbols.Source
	cfg    SessionConfig

	mu       sync.RWMutex
	sessions map[string]*game.Session
	hooks    []func(id string)
}

func NewSessionService(source symbols.Source, cfg SessionConfig) *SessionService {
	if cfg.PairCount <= 0 {
		cfg.PairCount = game.PairCount
	}
	if cfg.IntroDelay <= 0 {
		cfg.IntroDelay = game.IntroDelay
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = game.WallClock{}
	}
	if cfg.NewRand == nil {
		cfg.NewRand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	return &SessionService{
		source:   source,
		cfg:      cfg,
		sessions: make(map[string]*game.Session),
	}
}

// Start fetches the vocabulary, deals a deck and schedules the end of the intro.
// On a setup failure nothing is registered and the error satisfies domain.IsSetupFailure.
func (s *SessionService) Start(ctx context.Context) (*game.Session, error) {
	id := uuid.New().String()
	log := logger.Session(id)

	letters, err := s.source.Letters(ctx)
	if err != nil {
		return nil, s.setupFailed(id, err)
	}

	sess, err := game.StartSetup(letters, s.cfg.PairCount, s.cfg.NewRand(),
		game.WithID(id),
		game.WithScheduler(s.cfg.Scheduler),
		game.WithLogger(log),
	)
	if err != nil {
		return nil, s.setupFailed(id, err)
	}

	won := false
	sess.Subscribe(func(snap game.Snapshot) {
		if won || snap.Phase != game.PhaseWon {
			return
		}
		won = true
		SessionsWon.Inc()
		ClearSeconds.Observe(float64(snap.ElapsedSeconds))
	})

	s.mu.Lock()
	s.sessions[id] = sess
	SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	sess.CompleteSetup()
	sess.BeginPlayAfter(s.cfg.IntroDelay)

	SessionsStarted.Inc()
	log.Info("session started", "letters", len(letters))
	return sess, nil
}

func (s *SessionService) setupFailed(id string, err error) error {
	reason := domain.SetupFailureReason(err)
	SetupFailures.WithLabelValues(reason).Inc()
	logger.Warn("session setup failed", "session_id", id, "reason", reason, "error", err)
	return err
}

// Get returns a registered session.
func (s *SessionService) Get(id string) (*game.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Select forwards a card selection. accepted is false when the session ignored it.
func (s *SessionService) Select(id string, card int) (snap game.Snapshot, accepted bool, err error) {
	sess, err := s.Get(id)
	if err != nil {
		return game.Snapshot{}, false, err
	}
	snap, accepted = sess.Select(card)
	return snap, accepted, nil
}

// Reset discards a session and runs the discard hooks.
func (s *SessionService) Reset(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		SessionsActive.Set(float64(len(s.sessions)))
	}
	hooks := append([]func(string){}, s.hooks...)
	s.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.Reset()
	for _, h := range hooks {
		h(id)
	}
	logger.Session(id).Debug("session discarded")
	return nil
}

// Restart discards id and starts a fresh attempt. The old session is gone even
// when the new setup fails.
func (s *SessionService) Restart(ctx context.Context, id string) (*game.Session, error) {
	if err := s.Reset(id); err != nil {
		return nil, err
	}
	return s.Start(ctx)
}

// OnDiscard registers fn to run after a session is reset or expired.
func (s *SessionService) OnDiscard(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// ActiveCount returns the number of registered sessions.
func (s *SessionService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunCleanup expires idle sessions older than SessionTTL every interval until ctx is done.
func (s *SessionService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.ExpireBefore(now.Add(-s.cfg.SessionTTL)); n > 0 {
				logger.Info("expired sessions", "count", n)
			}
		}
	}
}

// ExpireBefore discards every session created before cutoff and returns how many.
// A session whose timer is still running is kept; it becomes eligible once the
// game is won or the timer saturates at MaxElapsedSeconds.
func (s *SessionService) ExpireBefore(cutoff time.Time) int {
	s.mu.RLock()
	var old []*game.Session
	for _, sess := range s.sessions {
		if sess.CreatedAt().Before(cutoff) {
			old = append(old, sess)
		}
	}
	s.mu.RUnlock()

	n := 0
	for _, sess := range old {
		if sess.Snapshot().TimerRunning {
			continue
		}
		if s.Reset(sess.ID()) == nil {
			n++
		}
	}
	return n
}

// Shutdown discards every session.
func (s *SessionService) Shutdown() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		_ = s.Reset(id)
	}
}
