package handlers

import (
	"errors"
	"net/http"

	"trivia-api/models"
	"trivia-api/monitoring"
	"trivia-api/repository"

	"github.com/gin-gonic/gin"
)

const categoryNotFound = "Category not found"

func (h *Handler) ListCategories(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := h.categories.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err, categoryNotFound)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, categoryNotFound)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var input models.CategoryInput
	if !bindInput(c, &input) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), input.Title)
	if errors.Is(err, repository.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"message": "Could not create duplicate category"})
		return
	}
	if err != nil {
		respondError(c, err, categoryNotFound)
		return
	}
	monitoring.CategoriesCreated.Inc()
	c.JSON(http.StatusOK, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input models.CategoryInput
	if !bindInput(c, &input) {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), id, input.Title)
	if errors.Is(err, repository.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"message": "Could not rename to a duplicate category"})
		return
	}
	if err != nil {
		respondError(c, err, categoryNotFound)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := h.categories.Delete(c.Request.Context(), id)
	if errors.Is(err, repository.ErrConflict) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot delete category because it has clues"})
		return
	}
	if err != nil {
		respondError(c, err, categoryNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success"})
}
