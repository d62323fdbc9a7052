package handlers

import (
	"memory_game/internal/game"
	"memory_game/internal/service"
)

type Handler struct {
	Sessions  *service.SessionService
	PairCount int
}

func NewHandler(sessions *service.SessionService) *Handler {
	return &Handler{
		Sessions:  sessions,
		PairCount: game.PairCount,
	}
}
