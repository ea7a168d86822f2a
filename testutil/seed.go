//go:build integration

package testutil

import (
	"context"
	"fmt"
	"testing"

	"trivia-api/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ResetDatabase empties every trivia table and restarts id sequences.
func ResetDatabase(t testing.TB, conn *gorm.DB) {
	t.Helper()

	err := conn.Exec(`TRUNCATE game_definition_clues, game_definitions, clues, games, categories RESTART IDENTITY CASCADE`).Error
	if err != nil {
		t.Fatalf("Failed to reset database: %v", err)
	}
}

// ResetRedis drops every key in the current Redis database.
func ResetRedis(t testing.TB, client *redis.Client) {
	t.Helper()

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to flush redis: %v", err)
	}
}

func CreateTestCategory(t testing.TB, conn *gorm.DB, title string, canon bool) models.Category {
	t.Helper()

	category := models.Category{Title: title, Canon: canon}
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return category
}

// CreateTestCategories inserts n categories titled "CATEGORY 0001" and up.
func CreateTestCategories(t testing.TB, conn *gorm.DB, n int) []models.Category {
	t.Helper()

	categories := make([]models.Category, n)
	for i := range categories {
		categories[i] = models.Category{Title: fmt.Sprintf("CATEGORY %04d", i+1)}
	}
	if err := conn.CreateInBatches(&categories, 100).Error; err != nil {
		t.Fatalf("Failed to create test categories: %v", err)
	}
	return categories
}

func CreateTestGame(t testing.TB, conn *gorm.DB, episodeID int, aired string) models.Game {
	t.Helper()

	game := models.Game{EpisodeID: episodeID, Aired: aired, Canon: true}
	if err := conn.Create(&game).Error; err != nil {
		t.Fatalf("Failed to create test game: %v", err)
	}
	return game
}

// ClueOption customizes a seeded clue.
type ClueOption func(*models.Clue)

func WithCanon(canon bool) ClueOption {
	return func(c *models.Clue) { c.Canon = canon }
}

func WithValue(value int) ClueOption {
	return func(c *models.Clue) { c.Value = value }
}

func WithInvalidCount(n int) ClueOption {
	return func(c *models.Clue) { c.InvalidCount = n }
}

func WithGame(gameID uint) ClueOption {
	return func(c *models.Clue) { c.GameID = &gameID }
}

func CreateTestClue(t testing.TB, conn *gorm.DB, categoryID uint, opts ...ClueOption) models.Clue {
	t.Helper()

	clue := models.Clue{
		Question:   "This is the question",
		Answer:     "What is the answer?",
		Value:      200,
		CategoryID: categoryID,
	}
	for _, opt := range opts {
		opt(&clue)
	}

	if err := conn.Omit("Category", "Game").Create(&clue).Error; err != nil {
		t.Fatalf("Failed to create test clue: %v", err)
	}
	return clue
}

// CreateTestClues files n clues under categoryID.
func CreateTestClues(t testing.TB, conn *gorm.DB, categoryID uint, n int, opts ...ClueOption) []models.Clue {
	t.Helper()

	clues := make([]models.Clue, n)
	for i := range clues {
		clues[i] = CreateTestClue(t, conn, categoryID, opts...)
	}
	return clues
}

// CountRows counts the rows of a table, optionally filtered.
func CountRows(t testing.TB, conn *gorm.DB, table string, where ...interface{}) int64 {
	t.Helper()

	var n int64
	query := conn.Table(table)
	if len(where) > 0 {
		query = query.Where(where[0], where[1:]...)
	}
	if err := query.Count(&n).Error; err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}
