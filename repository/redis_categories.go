package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"trivia-api/models"

	"github.com/redis/go-redis/v9"
)

// Redis keys used by the document-backed category store.
const (
	categoryKeyPrefix      = "category:"           // category:12 -> hash {id, title, canon}
	categoryTitleKeyPrefix = "categories:title:"   // categories:title:<title> -> id
	categoryOrderKey       = "categories:by_title" // sorted set, members "<title>\x00<id>"
	categorySeqKey         = "categories:seq"
)

// ClueCounter reports how many clues each category holds.
type ClueCounter interface {
	CountByCategory(ctx context.Context, ids ...uint) (map[uint]int64, error)
}

// RedisCategoryRepository keeps categories as Redis hash documents. It is an
// alternative to CategoryRepository selected by configuration; clue counts
// and delete protection still come from the relational clue store.
//
// Titles are ordered by byte value, not by the database collation.
type RedisCategoryRepository struct {
	client *redis.Client
	clues  ClueCounter
}

func NewRedisCategoryRepository(client *redis.Client, clues ClueCounter) *RedisCategoryRepository {
	return &RedisCategoryRepository{client: client, clues: clues}
}

func categoryKey(id uint) string {
	return fmt.Sprintf("%s%d", categoryKeyPrefix, id)
}

func categoryTitleKey(title string) string {
	return categoryTitleKeyPrefix + title
}

func categoryOrderMember(title string, id uint) string {
	return title + "\x00" + strconv.FormatUint(uint64(id), 10)
}

func parseCategoryOrderMember(member string) (uint, error) {
	i := strings.LastIndexByte(member, 0)
	if i < 0 {
		return 0, fmt.Errorf("malformed category index entry %q", member)
	}
	id, err := strconv.ParseUint(member[i+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed category index entry %q: %w", member, err)
	}
	return uint(id), nil
}

// List returns one page of categories in title order with their clue counts.
func (r *RedisCategoryRepository) List(ctx context.Context, page int) (*models.CategoryPage, error) {
	categories := []models.CategoryWithCount{}

	offset, ok := pageOffset(page)
	var total *redis.IntCmd
	var members *redis.StringSliceCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		total = pipe.ZCard(ctx, categoryOrderKey)
		if ok {
			members = pipe.ZRange(ctx, categoryOrderKey, int64(offset), int64(offset+PageSize-1))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list categories page %d: %w", page, err)
	}
	pages := pageCount(total.Val())

	if members == nil || len(members.Val()) == 0 {
		return &models.CategoryPage{PageCount: pages, Categories: categories}, nil
	}

	ids := make([]uint, 0, len(members.Val()))
	for _, m := range members.Val() {
		id, err := parseCategoryOrderMember(m)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	docs := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			docs[i] = pipe.HGetAll(ctx, categoryKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load categories page %d: %w", page, err)
	}

	counts, err := r.clues.CountByCategory(ctx, ids...)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		var category models.Category
		if len(doc.Val()) == 0 {
			// removed between the index read and the document read
			continue
		}
		if err := doc.Scan(&category); err != nil {
			return nil, fmt.Errorf("decode category: %w", err)
		}
		categories = append(categories, models.CategoryWithCount{
			ID:       category.ID,
			Title:    category.Title,
			Canon:    category.Canon,
			NumClues: counts[category.ID],
		})
	}

	return &models.CategoryPage{PageCount: pages, Categories: categories}, nil
}

func (r *RedisCategoryRepository) Get(ctx context.Context, id uint) (*models.Category, error) {
	cmd := r.client.HGetAll(ctx, categoryKey(id))
	fields, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}

	var category models.Category
	if err := cmd.Scan(&category); err != nil {
		return nil, fmt.Errorf("decode category %d: %w", id, err)
	}
	return &category, nil
}

// Create claims the title, allocates an id and writes the document.
func (r *RedisCategoryRepository) Create(ctx context.Context, title string) (*models.Category, error) {
	claimed, err := r.client.SetNX(ctx, categoryTitleKey(title), "", 0).Result()
	if err != nil {
		return nil, fmt.Errorf("create category %q: %w", title, err)
	}
	if !claimed {
		return nil, fmt.Errorf("category %q already exists: %w", title, ErrConflict)
	}

	seq, err := r.client.Incr(ctx, categorySeqKey).Result()
	if err != nil {
		r.client.Del(ctx, categoryTitleKey(title))
		return nil, fmt.Errorf("allocate category id: %w", err)
	}
	category := models.Category{ID: uint(seq), Title: title, Canon: false}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, categoryKey(category.ID), "id", category.ID, "title", category.Title, "canon", category.Canon)
		pipe.Set(ctx, categoryTitleKey(title), category.ID, 0)
		pipe.ZAdd(ctx, categoryOrderKey, redis.Z{Member: categoryOrderMember(title, category.ID)})
		return nil
	})
	if err != nil {
		r.client.Del(ctx, categoryTitleKey(title))
		return nil, fmt.Errorf("create category %q: %w", title, err)
	}
	return &category, nil
}

// Update renames a category, moving its title claim and index entry.
func (r *RedisCategoryRepository) Update(ctx context.Context, id uint, title string) (*models.Category, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Title == title {
		return current, nil
	}

	claimed, err := r.client.SetNX(ctx, categoryTitleKey(title), id, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	if !claimed {
		return nil, fmt.Errorf("category %q already exists: %w", title, ErrConflict)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, categoryKey(id), "title", title)
		pipe.ZRem(ctx, categoryOrderKey, categoryOrderMember(current.Title, id))
		pipe.ZAdd(ctx, categoryOrderKey, redis.Z{Member: categoryOrderMember(title, id)})
		pipe.Del(ctx, categoryTitleKey(current.Title))
		return nil
	})
	if err != nil {
		r.client.Del(ctx, categoryTitleKey(title))
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	return r.Get(ctx, id)
}

// Delete removes a category unless clues still reference it.
func (r *RedisCategoryRepository) Delete(ctx context.Context, id uint) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	counts, err := r.clues.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if counts[id] > 0 {
		return fmt.Errorf("category %d still has clues: %w", id, ErrConflict)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, categoryKey(id), categoryTitleKey(current.Title))
		pipe.ZRem(ctx, categoryOrderKey, categoryOrderMember(current.Title, id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}
