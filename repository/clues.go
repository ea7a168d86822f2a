package repository

import (
	"context"
	"fmt"

	"trivia-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClueRepository reads and flags clues. Clues are never deleted; removal
// bumps invalid_count instead.
type ClueRepository struct {
	db *gorm.DB
}

func NewClueRepository(db *gorm.DB) *ClueRepository {
	return &ClueRepository{db: db}
}

// clueRow is one clue joined with its category.
type clueRow struct {
	ID            uint
	Question      string
	Answer        string
	Value         int
	InvalidCount  int
	Canon         bool
	CategoryID    uint
	CategoryTitle string
	CategoryCanon bool
}

func (row clueRow) toClue() models.ClueOut {
	return models.ClueOut{
		ID:           row.ID,
		Question:     row.Question,
		Answer:       row.Answer,
		Value:        row.Value,
		InvalidCount: row.InvalidCount,
		Canon:        row.Canon,
		Category: models.Category{
			ID:    row.CategoryID,
			Title: row.CategoryTitle,
			Canon: row.CategoryCanon,
		},
	}
}

func toClues(rows []clueRow) []models.ClueOut {
	clues := make([]models.ClueOut, len(rows))
	for i, row := range rows {
		clues[i] = row.toClue()
	}
	return clues
}

// selectClues starts a query over clues inner joined to categories, so a
// clue without a category never shows up.
func selectClues(db *gorm.DB) *gorm.DB {
	return db.Table("clues").
		Select(`clues.id, clues.question, clues.answer, clues.value, clues.invalid_count, clues.canon,
			categories.id AS category_id, categories.title AS category_title, categories.canon AS category_canon`).
		Joins("INNER JOIN categories ON categories.id = clues.category_id")
}

// List returns one page of clues ordered by id.
func (r *ClueRepository) List(ctx context.Context, page int) (*models.CluePage, error) {
	var rows []clueRow

	pages, err := loadPage(ctx, page,
		func(ctx context.Context) (int64, error) {
			var total int64
			err := r.db.WithContext(ctx).Model(&models.Clue{}).Count(&total).Error
			return total, err
		},
		func(ctx context.Context, offset int) error {
			return selectClues(r.db.WithContext(ctx)).
				Order("clues.id").
				Limit(PageSize).
				Offset(offset).
				Scan(&rows).Error
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list clues page %d: %w", page, err)
	}

	return &models.CluePage{PageCount: pages, Clues: toClues(rows)}, nil
}

func (r *ClueRepository) Get(ctx context.Context, id uint) (*models.ClueOut, error) {
	var rows []clueRow
	err := selectClues(r.db.WithContext(ctx)).
		Where("clues.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get clue %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("clue %d: %w", id, ErrNotFound)
	}
	clue := rows[0].toClue()
	return &clue, nil
}

// Random picks one clue uniformly at query time. With validOnly set, clues
// that were ever flagged invalid are not candidates.
func (r *ClueRepository) Random(ctx context.Context, validOnly bool) (*models.ClueOut, error) {
	query := selectClues(r.db.WithContext(ctx))
	if validOnly {
		query = query.Where("clues.invalid_count = ?", 0)
	}

	var rows []clueRow
	if err := query.Order("RANDOM()").Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("random clue: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("random clue (valid only: %t): %w", validOnly, ErrNotFound)
	}
	clue := rows[0].toClue()
	return &clue, nil
}

// Invalidate flags a clue once more and returns its new state.
func (r *ClueRepository) Invalidate(ctx context.Context, id uint) (*models.ClueOut, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Clue{}).
		Where("id = ?", id).
		UpdateColumn("invalid_count", gorm.Expr("invalid_count + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("invalidate clue %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("clue %d: %w", id, ErrNotFound)
	}
	return r.Get(ctx, id)
}

// Create files a new, non canonical clue under an existing category.
func (r *ClueRepository) Create(ctx context.Context, input models.ClueInput) (*models.ClueOut, error) {
	clue := models.Clue{
		Question:   input.Question,
		Answer:     input.Answer,
		Value:      input.Value,
		CategoryID: input.CategoryID,
		GameID:     input.GameID,
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&clue).Error
	if isForeignKeyViolation(err) {
		if pgConstraintName(err) == fkCluesGame && input.GameID != nil {
			return nil, fmt.Errorf("clue game %d: %w", *input.GameID, ErrGameNotFound)
		}
		return nil, fmt.Errorf("clue category %d: %w", input.CategoryID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create clue: %w", err)
	}
	return r.Get(ctx, clue.ID)
}

// CountByCategory returns the number of clues per category id. Categories
// without clues are absent from the result.
func (r *ClueRepository) CountByCategory(ctx context.Context, ids ...uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		CategoryID uint
		NumClues   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Clue{}).
		Select("category_id, COUNT(*) AS num_clues").
		Where("category_id IN ?", ids).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count clues by category: %w", err)
	}
	for _, row := range rows {
		counts[row.CategoryID] = row.NumClues
	}
	return counts, nil
}
