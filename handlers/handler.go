package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"trivia-api/models"
	"trivia-api/repository"
	"trivia-api/utils"

	"github.com/gin-gonic/gin"
)

// CategoryStore is served by both the Postgres and the Redis category repositories.
type CategoryStore interface {
	List(ctx context.Context, page int) (*models.CategoryPage, error)
	Get(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, title string) (*models.Category, error)
	Update(ctx context.Context, id uint, title string) (*models.Category, error)
	Delete(ctx context.Context, id uint) error
}

type ClueStore interface {
	List(ctx context.Context, page int) (*models.CluePage, error)
	Get(ctx context.Context, id uint) (*models.ClueOut, error)
	Random(ctx context.Context, validOnly bool) (*models.ClueOut, error)
	Invalidate(ctx context.Context, id uint) (*models.ClueOut, error)
	Create(ctx context.Context, input models.ClueInput) (*models.ClueOut, error)
}

type GameStore interface {
	List(ctx context.Context, page int) (*models.GamePage, error)
	Get(ctx context.Context, id uint) (*models.GameWithTotal, error)
	CreateCustomGame(ctx context.Context) (*models.CustomGame, error)
	GetCustomGame(ctx context.Context, id uint) (*models.CustomGame, error)
}

var (
	_ CategoryStore = (*repository.CategoryRepository)(nil)
	_ CategoryStore = (*repository.RedisCategoryRepository)(nil)
	_ ClueStore     = (*repository.ClueRepository)(nil)
	_ GameStore     = (*repository.GameRepository)(nil)
)

// PingFunc reports whether the database is reachable.
type PingFunc func(ctx context.Context) error

type Handler struct {
	categories CategoryStore
	clues      ClueStore
	games      GameStore
	ping       PingFunc
}

func NewHandler(categories CategoryStore, clues ClueStore, games GameStore, ping PingFunc) *Handler {
	return &Handler{
		categories: categories,
		clues:      clues,
		games:      games,
		ping:       ping,
	}
}

// Register mounts the API routes and the health check.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/categories", h.ListCategories)
		api.GET("/categories/:id", h.GetCategory)
		api.POST("/categories", h.CreateCategory)
		api.PUT("/categories/:id", h.UpdateCategory)
		api.DELETE("/categories/:id", h.DeleteCategory)

		api.GET("/clues", h.ListClues)
		api.GET("/clues/:id", h.GetClue)
		api.POST("/clues", h.CreateClue)
		api.DELETE("/clues/:id", h.InvalidateClue)
		api.GET("/random-clue", h.RandomClue)

		api.GET("/games", h.ListGames)
		api.GET("/games/:id", h.GetGame)
		api.POST("/custom-games", h.CreateCustomGame)
		api.GET("/custom-games/:id", h.GetCustomGame)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// parsePage reads the zero based page query parameter; it defaults to 0.
func parsePage(c *gin.Context) (int, bool) {
	raw, ok := c.GetQuery("page")
	if !ok || raw == "" {
		return 0, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid page"})
		return 0, false
	}
	return page, true
}

// bindInput decodes and validates a JSON body, writing the 400 itself on failure.
func bindInput(c *gin.Context, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		utils.ValidationErrorResponse(c, err)
		return false
	}
	if err := utils.ValidateStruct(input); err != nil {
		utils.ValidationErrorResponse(c, err)
		return false
	}
	return true
}

// respondError maps repository errors onto HTTP statuses. Unknown errors are logged and become 500s.
func respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound})
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Conflict"})
	case errors.Is(err, repository.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Not enough canonical clues to build a game"})
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads this response
		c.Status(499)
	default:
		_ = c.Error(err)
		utils.LogError("Store operation failed", map[string]interface{}{
			"error": err.Error(),
			"path":  c.FullPath(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
