package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"trivia-api/models"
	"trivia-api/monitoring"
	"trivia-api/repository"

	"github.com/gin-gonic/gin"
)

const clueNotFound = "Clue not found"

func (h *Handler) ListClues(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := h.clues.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err, clueNotFound)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetClue(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	clue, err := h.clues.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, clueNotFound)
		return
	}
	c.JSON(http.StatusOK, clue)
}

// RandomClue picks one clue at random. Invalidated clues are skipped unless valid=false is passed.
func (h *Handler) RandomClue(c *gin.Context) {
	validOnly := true
	if raw := c.Query("valid"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid valid flag"})
			return
		}
		validOnly = v
	}

	clue, err := h.clues.Random(c.Request.Context(), validOnly)
	if err != nil {
		respondError(c, err, clueNotFound)
		return
	}
	monitoring.RandomCluesServed.WithLabelValues(strconv.FormatBool(validOnly)).Inc()
	c.JSON(http.StatusOK, clue)
}

func (h *Handler) CreateClue(c *gin.Context) {
	var input models.ClueInput
	if !bindInput(c, &input) {
		return
	}
	clue, err := h.clues.Create(c.Request.Context(), input)
	if errors.Is(err, repository.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Game not found"})
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": categoryNotFound})
		return
	}
	if err != nil {
		respondError(c, err, clueNotFound)
		return
	}
	c.JSON(http.StatusOK, clue)
}

// InvalidateClue flags a clue as wrong; the clue itself is kept.
func (h *Handler) InvalidateClue(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	clue, err := h.clues.Invalidate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, clueNotFound)
		return
	}
	monitoring.CluesInvalidated.Inc()
	c.JSON(http.StatusOK, clue)
}
