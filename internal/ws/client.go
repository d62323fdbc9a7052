package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"memory_game/internal/domain"
	"memory_game/internal/game"
	"memory_game/internal/logger"
	"memory_game/internal/service"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer     = 256
	restartTimeout = 5 * time.Second
)

// Client is one WebSocket attached to a session. The session id changes on restart.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
	Done chan struct{}

	limiter *rate.Limiter

	mu          sync.Mutex
	sessionID   string
	unsubscribe func()
	closed      bool
	sent        bool
	lastVersion uint64
	resultSent  bool
}

func NewClient(sessionID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		Hub:       hub,
		Done:      make(chan struct{}),
		limiter:   hub.newLimiter(),
		sessionID: sessionID,
	}
}

func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) log() *slog.Logger {
	return logger.Session(c.SessionID())
}

// Run starts the pumps, attaches to the session and blocks until the socket closes.
func (c *Client) Run() {
	go c.writePump()
	c.enqueue(encode(MsgReady, nil))

	if err := c.attach(); err != nil {
		c.enqueue(encode(MsgClosed, ErrorPayload{Message: "session not found", Redirect: "/"}))
		c.closeSend()
		close(c.Done)
		return
	}

	c.readPump()
}

// attach subscribes to the current session and pushes its state.
func (c *Client) attach() error {
	id := c.SessionID()
	sess, err := c.Hub.Sessions.Get(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.sent = false
	c.lastVersion = 0
	c.resultSent = false
	c.mu.Unlock()

	c.Hub.Register(id, c)
	cancel := sess.Subscribe(c.push)

	c.mu.Lock()
	c.unsubscribe = cancel
	c.mu.Unlock()

	c.push(sess.Snapshot())
	return nil
}

// detach stops session pushes and removes the client from the hub.
func (c *Client) detach() {
	c.mu.Lock()
	id := c.sessionID
	cancel := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.Hub.Unregister(id, c)
}

// push is the session listener. It runs with the session locked, so it only queues.
func (c *Client) push(snap game.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sent && snap.Version <= c.lastVersion {
		return
	}
	c.sent = true
	c.lastVersion = snap.Version
	c.enqueueLocked(stateMessage(snap))

	if snap.ShowResult() && !c.resultSent {
		c.resultSent = true
		c.enqueueLocked(resultMessage(snap))
	}
}

func (c *Client) enqueue(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueueLocked(msg)
}

func (c *Client) enqueueLocked(msg []byte) {
	if c.closed {
		return
	}
	select {
	case c.Send <- msg:
	default:
		logger.Warn("ws send buffer full, dropping message", "session_id", c.sessionID)
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

//read
func (c *Client) readPump() {
	defer func() {
		c.detach()
		c.closeSend()
		_ = c.Conn.Close()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log().Debug("ws read error", "error", err)
			}
			return
		}
		if !c.handle(msg) {
			return
		}
	}
}

// handle processes one inbound frame and reports whether the connection stays open.
func (c *Client) handle(raw []byte) bool {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		c.enqueue(encode(MsgError, ErrorPayload{Message: "invalid message"}))
		return true
	}

	switch in.Type {
	case MsgPing:
		c.enqueue(encode(MsgPong, nil))
	case MsgSelect:
		if in.Value == nil {
			c.enqueue(encode(MsgError, ErrorPayload{Message: "value required"}))
			return true
		}
		if !c.limiter.Allow() {
			c.enqueue(encode(MsgError, ErrorPayload{Message: "too many requests"}))
			return true
		}
		// rejected selections are silent no-ops; accepted ones arrive as state pushes
		if _, _, err := c.Hub.Sessions.Select(c.SessionID(), *in.Value); err != nil {
			c.enqueue(encode(MsgClosed, ErrorPayload{Message: "session not found", Redirect: "/"}))
			return false
		}
	case MsgRestart:
		return c.restart()
	default:
		c.enqueue(encode(MsgError, ErrorPayload{Message: "unknown message type"}))
	}
	return true
}

// restart discards the current session and attaches to a fresh one. A setup failure
// ends the connection: the old session is already gone.
func (c *Client) restart() bool {
	old := c.SessionID()
	c.detach()

	ctx, cancel := context.WithTimeout(context.Background(), restartTimeout)
	defer cancel()

	sess, err := c.Hub.Sessions.Restart(ctx, old)
	if err != nil {
		if domain.IsSetupFailure(err) {
			c.enqueue(encode(MsgSetupFailed, ErrorPayload{
				Message:  "could not prepare a new game",
				Reason:   domain.SetupFailureReason(err),
				Redirect: "/",
			}))
		} else if errors.Is(err, domain.ErrSessionNotFound) {
			c.enqueue(encode(MsgClosed, ErrorPayload{Message: "session not found", Redirect: "/"}))
		} else {
			c.enqueue(encode(MsgError, ErrorPayload{Message: "restart failed"}))
		}
		return false
	}

	token, err := service.GenerateJWT(sess.ID())
	if err != nil {
		c.log().Error("sign session token", "error", err)
		c.enqueue(encode(MsgError, ErrorPayload{Message: "restart failed"}))
		return false
	}

	c.mu.Lock()
	c.sessionID = sess.ID()
	c.mu.Unlock()

	c.enqueue(encode(MsgRestarted, RestartedPayload{Token: token, State: game.NewView(sess.Snapshot())}))
	if err := c.attach(); err != nil {
		return false
	}
	c.log().Info("session restarted over ws", "previous", old)
	return true
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log().Debug("ws write error", "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
