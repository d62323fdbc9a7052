package handlers

import (
	"net/http"

	"memory_game/internal/game"

	"github.com/gin-gonic/gin"
)

// GameInfo returns game configuration
func (h *Handler) GameInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pair_count":        h.PairCount,
		"card_count":        h.PairCount * 2,
		"intro_delay_ms":    game.IntroDelay.Milliseconds(),
		"evaluate_delay_ms": game.EvaluateDelay.Milliseconds(),
		"mismatch_delay_ms": game.MismatchDelay.Milliseconds(),
		"max_time":          game.MaxTimeDisplay,
	})
}
