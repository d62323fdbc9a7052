package ws

import (
	"sync"

	"memory_game/internal/logger"
	"memory_game/internal/service"

	"golang.org/x/time/rate"
)

// Hub tracks the sockets attached to each session and closes them when the
// session is discarded.
type Hub struct {
	Sessions *service.SessionService

	selectLimit rate.Limit
	selectBurst int

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// NewHub wires the hub to the session service. selectPerMinute bounds card selections
// per socket; zero disables the limit.
func NewHub(sessions *service.SessionService, selectPerMinute int) *Hub {
	h := &Hub{
		Sessions:    sessions,
		selectLimit: rate.Inf,
		clients:     make(map[string]map[*Client]struct{}),
	}
	if selectPerMinute > 0 {
		h.selectLimit = rate.Limit(float64(selectPerMinute) / 60)
		h.selectBurst = max(selectPerMinute/30, 4)
	}
	sessions.OnDiscard(h.CloseSession)
	return h
}

func (h *Hub) newLimiter() *rate.Limiter {
	return rate.NewLimiter(h.selectLimit, h.selectBurst)
}

func (h *Hub) Register(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[sessionID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[sessionID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[sessionID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, sessionID)
	}
}

// CloseSession tells every socket on sessionID that the session is gone and closes it.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	set := h.clients[sessionID]
	delete(h.clients, sessionID)
	h.mu.Unlock()

	for c := range set {
		c.enqueue(encode(MsgClosed, ErrorPayload{Message: "session closed", Redirect: "/"}))
		c.closeSend()
	}
	if len(set) > 0 {
		logger.Debug("closed session sockets", "session_id", sessionID, "count", len(set))
	}
}

// ClientCount returns the number of attached sockets.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
