//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"trivia-api/testutil"

	"gorm.io/gorm"
)

func TestGameGet(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewGameRepository(conn)
	ctx := context.Background()
	category := testutil.CreateTestCategory(t, conn, "WORLD CAPITALS", true)
	played := testutil.CreateTestGame(t, conn, 4680, "2004-12-31")
	unplayed := testutil.CreateTestGame(t, conn, 4681, "2005-01-03")
	testutil.CreateTestClue(t, conn, category.ID, testutil.WithGame(played.ID), testutil.WithValue(200))
	testutil.CreateTestClue(t, conn, category.ID, testutil.WithGame(played.ID), testutil.WithValue(1000))
	testutil.CreateTestClue(t, conn, category.ID, testutil.WithValue(600))

	got, err := repo.Get(ctx, played.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.EpisodeID != 4680 || got.Aired != "2004-12-31" || !got.Canon {
		t.Errorf("Get() = %+v", got)
	}
	if got.TotalAmountWon == nil || *got.TotalAmountWon != 1200 {
		t.Errorf("TotalAmountWon = %v, want 1200", got.TotalAmountWon)
	}

	none, err := repo.Get(ctx, unplayed.ID)
	if err != nil {
		t.Fatalf("Get(no clues) error = %v", err)
	}
	if none.TotalAmountWon != nil {
		t.Errorf("TotalAmountWon = %d, want nil for a game without clues", *none.TotalAmountWon)
	}

	if _, err := repo.Get(ctx, unplayed.ID+10); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGameList(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewGameRepository(conn)
	for i := 0; i < 3; i++ {
		testutil.CreateTestGame(t, conn, 100+i, fmt.Sprintf("1999-09-%02d", i+1))
	}

	page, err := repo.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.PageCount != 1 || len(page.Games) != 3 {
		t.Fatalf("List() = %d games, page_count %d; want 3, 1", len(page.Games), page.PageCount)
	}
	for i, g := range page.Games {
		if g.EpisodeID != 100+i {
			t.Errorf("games[%d].EpisodeID = %d, want %d", i, g.EpisodeID, 100+i)
		}
	}
}

func TestCreateCustomGame(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewGameRepository(conn)
	ctx := context.Background()
	canonical := testutil.CreateTestCategory(t, conn, "CANON", true)
	custom := testutil.CreateTestCategory(t, conn, "CUSTOM", false)
	testutil.CreateTestClues(t, conn, canonical.ID, 40, testutil.WithCanon(true))
	testutil.CreateTestClues(t, conn, custom.ID, 10, testutil.WithCanon(false))

	before := time.Now().Add(-time.Minute)
	game, err := repo.CreateCustomGame(ctx)
	if err != nil {
		t.Fatalf("CreateCustomGame() error = %v", err)
	}
	if game.CreatedOn.Before(before) {
		t.Errorf("CreatedOn = %v, want a current timestamp", game.CreatedOn)
	}
	if len(game.Clues) != CustomGameSize {
		t.Fatalf("len(Clues) = %d, want %d", len(game.Clues), CustomGameSize)
	}

	ids := make(map[uint]bool)
	for _, clue := range game.Clues {
		if !clue.Canon {
			t.Errorf("clue %d is not canonical", clue.ID)
		}
		if clue.Category.ID != canonical.ID {
			t.Errorf("clue %d category = %d, want %d", clue.ID, clue.Category.ID, canonical.ID)
		}
		if ids[clue.ID] {
			t.Errorf("clue %d sampled twice", clue.ID)
		}
		ids[clue.ID] = true
	}

	if n := testutil.CountRows(t, conn, "game_definition_clues", "game_definition_id = ?", game.ID); n != CustomGameSize {
		t.Errorf("join rows for definition %d = %d, want %d", game.ID, n, CustomGameSize)
	}
	if n := testutil.CountRows(t, conn, "game_definition_clues"); n != CustomGameSize {
		t.Errorf("total join rows = %d, want %d", n, CustomGameSize)
	}

	stored, err := repo.GetCustomGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("GetCustomGame() error = %v", err)
	}
	if !stored.CreatedOn.Equal(game.CreatedOn) {
		t.Errorf("stored CreatedOn = %v, want %v", stored.CreatedOn, game.CreatedOn)
	}
	if len(stored.Clues) != CustomGameSize {
		t.Fatalf("stored clues = %d, want %d", len(stored.Clues), CustomGameSize)
	}
	for _, clue := range stored.Clues {
		if !ids[clue.ID] {
			t.Errorf("stored clue %d was not in the generated game", clue.ID)
		}
	}

	if _, err := repo.GetCustomGame(ctx, game.ID+1); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCustomGame(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCreateCustomGameInsufficientClues(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewGameRepository(conn)
	category := testutil.CreateTestCategory(t, conn, "SPARSE", true)
	testutil.CreateTestClues(t, conn, category.ID, CustomGameSize-1, testutil.WithCanon(true))
	testutil.CreateTestClues(t, conn, category.ID, 5, testutil.WithCanon(false))

	_, err := repo.CreateCustomGame(context.Background())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("CreateCustomGame() error = %v, want ErrInsufficientData", err)
	}
	if n := testutil.CountRows(t, conn, "game_definitions"); n != 0 {
		t.Errorf("game_definitions = %d, want 0", n)
	}
	if n := testutil.CountRows(t, conn, "game_definition_clues"); n != 0 {
		t.Errorf("game_definition_clues = %d, want 0", n)
	}
}

func TestCreateCustomGameRollsBack(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewGameRepository(conn)
	category := testutil.CreateTestCategory(t, conn, "ROLLBACK", true)
	testutil.CreateTestClues(t, conn, category.ID, CustomGameSize, testutil.WithCanon(true))

	// Sample real clues, then swap the last one for an id that does not
	// exist so the link insert fails after the definition row was written.
	var attempted []clueRow
	broken := func(tx *gorm.DB, n int) ([]clueRow, error) {
		rows, err := sampleCanonicalClues(tx, n)
		if err != nil {
			return nil, err
		}
		rows[len(rows)-1].ID = 1_000_000
		attempted = rows
		return rows, nil
	}

	_, err := repo.createCustomGame(context.Background(), broken)
	if err == nil {
		t.Fatal("createCustomGame() error = nil, want foreign key failure")
	}
	if len(attempted) != CustomGameSize {
		t.Fatalf("sampler saw %d clues, want %d", len(attempted), CustomGameSize)
	}
	if n := testutil.CountRows(t, conn, "game_definitions"); n != 0 {
		t.Errorf("game_definitions after failure = %d, want 0", n)
	}
	if n := testutil.CountRows(t, conn, "game_definition_clues"); n != 0 {
		t.Errorf("game_definition_clues after failure = %d, want 0", n)
	}

	// The sequence moved on, but a fresh attempt still produces a complete game.
	game, err := repo.CreateCustomGame(context.Background())
	if err != nil {
		t.Fatalf("CreateCustomGame() after rollback error = %v", err)
	}
	if n := testutil.CountRows(t, conn, "game_definition_clues", "game_definition_id = ?", game.ID); n != CustomGameSize {
		t.Errorf("join rows = %d, want %d", n, CustomGameSize)
	}
}

func TestCreateCustomGameConcurrent(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewGameRepository(conn)
	category := testutil.CreateTestCategory(t, conn, "PARALLEL", true)
	testutil.CreateTestClues(t, conn, category.ID, 45, testutil.WithCanon(true))

	const workers = 5
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := repo.CreateCustomGame(context.Background())
			errs <- err
		}()
	}
	for i := 0; i < workers; i++ {
		if err := <-errs; err != nil {
			t.Errorf("CreateCustomGame() error = %v", err)
		}
	}

	if n := testutil.CountRows(t, conn, "game_definitions"); n != workers {
		t.Errorf("game_definitions = %d, want %d", n, workers)
	}
	if n := testutil.CountRows(t, conn, "game_definition_clues"); n != workers*CustomGameSize {
		t.Errorf("game_definition_clues = %d, want %d", n, workers*CustomGameSize)
	}
}
