package repository

import (
	"context"
	"errors"
	"fmt"

	"trivia-api/models"

	"gorm.io/gorm"
)

// CategoryRepository stores categories in Postgres.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns one page of categories ordered by title, each with its clue count.
func (r *CategoryRepository) List(ctx context.Context, page int) (*models.CategoryPage, error) {
	categories := []models.CategoryWithCount{}

	pages, err := loadPage(ctx, page,
		func(ctx context.Context) (int64, error) {
			var total int64
			err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&total).Error
			return total, err
		},
		func(ctx context.Context, offset int) error {
			return r.db.WithContext(ctx).
				Table("categories").
				Select("categories.id, categories.title, categories.canon, COUNT(clues.id) AS num_clues").
				Joins("LEFT OUTER JOIN clues ON clues.category_id = categories.id").
				Group("categories.id, categories.title, categories.canon").
				Order("categories.title").
				Limit(PageSize).
				Offset(offset).
				Scan(&categories).Error
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list categories page %d: %w", page, err)
	}

	return &models.CategoryPage{PageCount: pages, Categories: categories}, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &category, nil
}

// Create inserts a user made (non canonical) category.
func (r *CategoryRepository) Create(ctx context.Context, title string) (*models.Category, error) {
	category := models.Category{Title: title, Canon: false}
	err := r.db.WithContext(ctx).Create(&category).Error
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("category %q already exists: %w", title, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create category %q: %w", title, err)
	}
	return &category, nil
}

// Update renames a category and reads it back.
func (r *CategoryRepository) Update(ctx context.Context, id uint, title string) (*models.Category, error) {
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Update("title", title).Error
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("category %q already exists: %w", title, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	return r.Get(ctx, id)
}

// Delete removes a category. Categories that still have clues are refused
// by the foreign key and reported as ErrConflict.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if isForeignKeyViolation(res.Error) {
		return fmt.Errorf("category %d still has clues: %w", id, ErrConflict)
	}
	if res.Error != nil {
		return fmt.Errorf("delete category %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}
