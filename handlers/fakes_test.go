package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"trivia-api/models"
	"trivia-api/repository"
)

type fakeCategories struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]models.Category
	clues  map[uint]int64
	err    error
}

func newFakeCategories(titles ...string) *fakeCategories {
	f := &fakeCategories{items: map[uint]models.Category{}, clues: map[uint]int64{}}
	for _, title := range titles {
		_, _ = f.Create(context.Background(), title)
	}
	return f
}

func (f *fakeCategories) List(ctx context.Context, page int) (*models.CategoryPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.CategoryWithCount, 0, len(f.items))
	if page < 0 {
		return &models.CategoryPage{PageCount: len(f.items)/repository.PageSize + 1, Categories: out}, nil
	}
	for _, cat := range f.items {
		out = append(out, models.CategoryWithCount{ID: cat.ID, Title: cat.Title, Canon: cat.Canon, NumClues: f.clues[cat.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return &models.CategoryPage{PageCount: len(f.items)/repository.PageSize + 1, Categories: out}, nil
}

func (f *fakeCategories) Get(ctx context.Context, id uint) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cat, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, repository.ErrNotFound)
	}
	return &cat, nil
}

func (f *fakeCategories) titleTaken(title string) bool {
	for _, cat := range f.items {
		if cat.Title == title {
			return true
		}
	}
	return false
}

func (f *fakeCategories) Create(ctx context.Context, title string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.titleTaken(title) {
		return nil, fmt.Errorf("category %q: %w", title, repository.ErrConflict)
	}
	f.nextID++
	cat := models.Category{ID: f.nextID, Title: title}
	f.items[cat.ID] = cat
	return &cat, nil
}

func (f *fakeCategories) Update(ctx context.Context, id uint, title string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cat, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, repository.ErrNotFound)
	}
	if cat.Title != title && f.titleTaken(title) {
		return nil, fmt.Errorf("category %q: %w", title, repository.ErrConflict)
	}
	cat.Title = title
	f.items[id] = cat
	return &cat, nil
}

func (f *fakeCategories) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return fmt.Errorf("category %d: %w", id, repository.ErrNotFound)
	}
	if f.clues[id] > 0 {
		return fmt.Errorf("category %d has clues: %w", id, repository.ErrConflict)
	}
	delete(f.items, id)
	return nil
}

type fakeClues struct {
	clues       map[uint]models.ClueOut
	categories  *fakeCategories
	lastValidOp *bool
}

func newFakeClues(categories *fakeCategories, clues ...models.ClueOut) *fakeClues {
	f := &fakeClues{clues: map[uint]models.ClueOut{}, categories: categories}
	for _, clue := range clues {
		f.clues[clue.ID] = clue
	}
	return f
}

func (f *fakeClues) List(ctx context.Context, page int) (*models.CluePage, error) {
	out := make([]models.ClueOut, 0, len(f.clues))
	for _, clue := range f.clues {
		out = append(out, clue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &models.CluePage{PageCount: 1, Clues: out}, nil
}

func (f *fakeClues) Get(ctx context.Context, id uint) (*models.ClueOut, error) {
	clue, ok := f.clues[id]
	if !ok {
		return nil, fmt.Errorf("clue %d: %w", id, repository.ErrNotFound)
	}
	return &clue, nil
}

func (f *fakeClues) Random(ctx context.Context, validOnly bool) (*models.ClueOut, error) {
	f.lastValidOp = &validOnly
	ids := make([]uint, 0, len(f.clues))
	for id, clue := range f.clues {
		if validOnly && clue.InvalidCount > 0 {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("random clue: %w", repository.ErrNotFound)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	clue := f.clues[ids[0]]
	return &clue, nil
}

func (f *fakeClues) Invalidate(ctx context.Context, id uint) (*models.ClueOut, error) {
	clue, ok := f.clues[id]
	if !ok {
		return nil, fmt.Errorf("clue %d: %w", id, repository.ErrNotFound)
	}
	clue.InvalidCount++
	f.clues[id] = clue
	return &clue, nil
}

func (f *fakeClues) Create(ctx context.Context, input models.ClueInput) (*models.ClueOut, error) {
	cat, err := f.categories.Get(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if input.GameID != nil && *input.GameID != 1 && *input.GameID != 2 {
		return nil, fmt.Errorf("clue game %d: %w", *input.GameID, repository.ErrGameNotFound)
	}
	clue := models.ClueOut{
		ID:       uint(len(f.clues) + 1),
		Question: input.Question,
		Answer:   input.Answer,
		Value:    input.Value,
		Category: *cat,
	}
	f.clues[clue.ID] = clue
	return &clue, nil
}

type fakeGames struct {
	games     map[uint]models.GameWithTotal
	custom    map[uint]models.CustomGame
	canonical []models.ClueOut
	createErr error
}

func (f *fakeGames) List(ctx context.Context, page int) (*models.GamePage, error) {
	out := make([]models.GameWithTotal, 0, len(f.games))
	for _, g := range f.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &models.GamePage{PageCount: 1, Games: out}, nil
}

func (f *fakeGames) Get(ctx context.Context, id uint) (*models.GameWithTotal, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, fmt.Errorf("game %d: %w", id, repository.ErrNotFound)
	}
	return &g, nil
}

func (f *fakeGames) CreateCustomGame(ctx context.Context) (*models.CustomGame, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if len(f.canonical) < repository.CustomGameSize {
		return nil, fmt.Errorf("custom game: %w", repository.ErrInsufficientData)
	}
	if f.custom == nil {
		f.custom = map[uint]models.CustomGame{}
	}
	game := models.CustomGame{
		ID:        uint(len(f.custom) + 1),
		CreatedOn: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Clues:     f.canonical[:repository.CustomGameSize],
	}
	f.custom[game.ID] = game
	return &game, nil
}

func (f *fakeGames) GetCustomGame(ctx context.Context, id uint) (*models.CustomGame, error) {
	g, ok := f.custom[id]
	if !ok {
		return nil, fmt.Errorf("custom game %d: %w", id, repository.ErrNotFound)
	}
	return &g, nil
}

var errStoreDown = errors.New("connection refused")
