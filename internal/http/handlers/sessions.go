package handlers

import (
	"errors"
	"net/http"

	"memory_game/internal/domain"
	"memory_game/internal/game"
	"memory_game/internal/http/middleware"
	"memory_game/internal/logger"
	"memory_game/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionResponse is returned when a session is created or restarted.
type SessionResponse struct {
	Token string    `json:"token"`
	State game.View `json:"state"`
}

// SelectRequest represents a card selection
type SelectRequest struct {
	Card *int `json:"card" binding:"required"`
}

// SelectResponse reports whether the selection changed the session
type SelectResponse struct {
	Accepted bool      `json:"accepted"`
	State    game.View `json:"state"`
}

// StartSession starts a new attempt and returns its bearer token
func (h *Handler) StartSession(c *gin.Context) {
	sess, err := h.Sessions.Start(c.Request.Context())
	if err != nil {
		h.setupFailed(c, err)
		return
	}
	h.respondSession(c, sess)
}

// CurrentSession returns the state of the caller's session
func (h *Handler) CurrentSession(c *gin.Context) {
	sessionID, ok := middleware.SessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
		return
	}

	sess, err := h.Sessions.Get(sessionID)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, game.NewView(sess.Snapshot()))
}

// SelectCard reveals a card in the caller's session
func (h *Handler) SelectCard(c *gin.Context) {
	sessionID, ok := middleware.SessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
		return
	}

	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	snap, accepted, err := h.Sessions.Select(sessionID, *req.Card)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, SelectResponse{Accepted: accepted, State: game.NewView(snap)})
}

// RestartSession discards the caller's session and starts a new one
func (h *Handler) RestartSession(c *gin.Context) {
	sessionID, ok := middleware.SessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
		return
	}

	sess, err := h.Sessions.Restart(c.Request.Context(), sessionID)
	if err != nil {
		if domain.IsSetupFailure(err) {
			h.setupFailed(c, err)
			return
		}
		h.sessionError(c, err)
		return
	}
	h.respondSession(c, sess)
}

// EndSession discards the caller's session
func (h *Handler) EndSession(c *gin.Context) {
	sessionID, ok := middleware.SessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
		return
	}

	if err := h.Sessions.Reset(sessionID); err != nil {
		h.sessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondSession(c *gin.Context, sess *game.Session) {
	token, err := service.GenerateJWT(sess.ID())
	if err != nil {
		logger.Error("sign session token", "session_id", sess.ID(), "error", err)
		_ = h.Sessions.Reset(sess.ID())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{Token: token, State: game.NewView(sess.Snapshot())})
}

// setupFailed sends the player back to the start screen.
func (h *Handler) setupFailed(c *gin.Context, err error) {
	if !domain.IsSetupFailure(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":    "could not prepare a new game",
		"reason":   domain.SetupFailureReason(err),
		"redirect": "/",
	})
}

func (h *Handler) sessionError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found", "redirect": "/"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
