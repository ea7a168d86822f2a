package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trivia-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomGameSize is the number of clues snapshotted into a custom game.
const CustomGameSize = 30

// GameRepository reads games and generates custom games.
type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

// selectGames aggregates the value of every clue played in a game. The sum
// is NULL for games without clues.
func selectGames(db *gorm.DB) *gorm.DB {
	return db.Table("games").
		Select("games.id, games.episode_id, games.aired, games.canon, SUM(clues.value) AS total_amount_won").
		Joins("LEFT OUTER JOIN clues ON clues.game_id = games.id").
		Group("games.id, games.episode_id, games.aired, games.canon")
}

func (r *GameRepository) Get(ctx context.Context, id uint) (*models.GameWithTotal, error) {
	var games []models.GameWithTotal
	err := selectGames(r.db.WithContext(ctx)).
		Where("games.id = ?", id).
		Scan(&games).Error
	if err != nil {
		return nil, fmt.Errorf("get game %d: %w", id, err)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("game %d: %w", id, ErrNotFound)
	}
	return &games[0], nil
}

// List returns one page of games ordered by id.
func (r *GameRepository) List(ctx context.Context, page int) (*models.GamePage, error) {
	games := []models.GameWithTotal{}

	pages, err := loadPage(ctx, page,
		func(ctx context.Context) (int64, error) {
			var total int64
			err := r.db.WithContext(ctx).Model(&models.Game{}).Count(&total).Error
			return total, err
		},
		func(ctx context.Context, offset int) error {
			return selectGames(r.db.WithContext(ctx)).
				Order("games.id").
				Limit(PageSize).
				Offset(offset).
				Scan(&games).Error
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list games page %d: %w", page, err)
	}

	return &models.GamePage{PageCount: pages, Games: games}, nil
}

// clueSampler draws up to n clues inside the custom game transaction.
type clueSampler func(tx *gorm.DB, n int) ([]clueRow, error)

func sampleCanonicalClues(tx *gorm.DB, n int) ([]clueRow, error) {
	var rows []clueRow
	err := selectClues(tx).
		Where("clues.canon = ?", true).
		Order("RANDOM()").
		Limit(n).
		Scan(&rows).Error
	return rows, err
}

// CreateCustomGame snapshots CustomGameSize random canonical clues into a new
// game definition. The definition and its clue links are written in one
// transaction; nothing is kept if any step fails.
func (r *GameRepository) CreateCustomGame(ctx context.Context) (*models.CustomGame, error) {
	return r.createCustomGame(ctx, sampleCanonicalClues)
}

func (r *GameRepository) createCustomGame(ctx context.Context, sample clueSampler) (*models.CustomGame, error) {
	var game *models.CustomGame

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := sample(tx, CustomGameSize)
		if err != nil {
			return fmt.Errorf("sample canonical clues: %w", err)
		}
		if len(rows) < CustomGameSize {
			return fmt.Errorf("custom game needs %d canonical clues, found %d: %w",
				CustomGameSize, len(rows), ErrInsufficientData)
		}

		definition := models.GameDefinition{CreatedOn: time.Now().UTC().Truncate(time.Microsecond)}
		if err := tx.Create(&definition).Error; err != nil {
			return fmt.Errorf("insert game definition: %w", err)
		}

		links := make([]models.GameDefinitionClue, len(rows))
		for i, row := range rows {
			links[i] = models.GameDefinitionClue{GameDefinitionID: definition.ID, ClueID: row.ID}
		}
		if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
			return fmt.Errorf("link clues to game definition %d: %w", definition.ID, err)
		}

		game = &models.CustomGame{
			ID:        definition.ID,
			CreatedOn: definition.CreatedOn,
			Clues:     toClues(rows),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create custom game: %w", err)
	}
	return game, nil
}

// GetCustomGame loads a custom game definition with its clues ordered by id.
func (r *GameRepository) GetCustomGame(ctx context.Context, id uint) (*models.CustomGame, error) {
	var definition models.GameDefinition
	err := r.db.WithContext(ctx).First(&definition, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("custom game %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get custom game %d: %w", id, err)
	}

	var rows []clueRow
	err = selectClues(r.db.WithContext(ctx)).
		Joins("INNER JOIN game_definition_clues ON game_definition_clues.clue_id = clues.id").
		Where("game_definition_clues.game_definition_id = ?", id).
		Order("clues.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get custom game %d clues: %w", id, err)
	}

	return &models.CustomGame{
		ID:        definition.ID,
		CreatedOn: definition.CreatedOn,
		Clues:     toClues(rows),
	}, nil
}
