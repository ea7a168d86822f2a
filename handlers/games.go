package handlers

import (
	"net/http"

	"trivia-api/monitoring"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListGames(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := h.games.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err, "Game not found")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetGame(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	game, err := h.games.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Game not found")
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *Handler) CreateCustomGame(c *gin.Context) {
	game, err := h.games.CreateCustomGame(c.Request.Context())
	if err != nil {
		respondError(c, err, "Custom game not found")
		return
	}
	monitoring.CustomGamesCreated.Inc()
	c.JSON(http.StatusOK, game)
}

func (h *Handler) GetCustomGame(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	game, err := h.games.GetCustomGame(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Custom game not found")
		return
	}
	c.JSON(http.StatusOK, game)
}
