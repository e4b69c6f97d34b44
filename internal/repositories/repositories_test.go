package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/waves/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Get Missing", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))

		_, err := repo.Get(ctx, "spotify_access_token")
		if !errors.Is(err, ErrCredentialNotFound) {
			t.Errorf("expected ErrCredentialNotFound, got %v", err)
		}
	})

	t.Run("Put And Get", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))

		if err := repo.Put(ctx, "spotify_access_token", "abc"); err != nil {
			t.Fatalf("failed to put credential: %v", err)
		}

		value, err := repo.Get(ctx, "spotify_access_token")
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if value != "abc" {
			t.Errorf("expected abc, got %s", value)
		}

		if _, err := repo.UpdatedAt(ctx, "spotify_access_token"); err != nil {
			t.Errorf("expected updated_at to be readable, got %v", err)
		}
	})

	t.Run("Put Overwrites", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))

		repo.Put(ctx, "spotify_access_token", "first")
		if err := repo.Put(ctx, "spotify_access_token", "second"); err != nil {
			t.Fatalf("failed to overwrite credential: %v", err)
		}

		value, _ := repo.Get(ctx, "spotify_access_token")
		if value != "second" {
			t.Errorf("expected second, got %s", value)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))

		repo.Put(ctx, "spotify_access_token", "abc")
		if err := repo.Delete(ctx, "spotify_access_token"); err != nil {
			t.Fatalf("failed to delete credential: %v", err)
		}

		if _, err := repo.Get(ctx, "spotify_access_token"); !errors.Is(err, ErrCredentialNotFound) {
			t.Errorf("expected credential to be gone, got %v", err)
		}

		if err := repo.Delete(ctx, "spotify_access_token"); err != nil {
			t.Errorf("deleting a missing key should succeed, got %v", err)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCredentialRepository(db)
		db.Close()

		if _, err := repo.Get(ctx, "k"); err == nil || errors.Is(err, ErrCredentialNotFound) {
			t.Errorf("expected query error, got %v", err)
		}
		if err := repo.Put(ctx, "k", "v"); err == nil {
			t.Error("expected put error on closed database")
		}
	})
}

func TestSearchHistoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Record And List", func(t *testing.T) {
		repo := NewSearchHistoryRepository(setupTestDB(t), 5)

		for _, q := range []string{"queen", "abba", "queen"} {
			if err := repo.Record(ctx, q, 3); err != nil {
				t.Fatalf("failed to record %s: %v", q, err)
			}
		}

		searches, err := repo.List(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list searches: %v", err)
		}

		if len(searches) != 2 {
			t.Fatalf("expected 2 distinct searches, got %d", len(searches))
		}
		if searches[0].Query != "queen" {
			t.Errorf("expected most recent query queen, got %s", searches[0].Query)
		}
	})

	t.Run("Blank Query Ignored", func(t *testing.T) {
		repo := NewSearchHistoryRepository(setupTestDB(t), 5)
		if err := repo.Record(ctx, "   ", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		searches, _ := repo.List(ctx, 0)
		if len(searches) != 0 {
			t.Errorf("expected no searches, got %d", len(searches))
		}
	})

	t.Run("Trims To Max", func(t *testing.T) {
		repo := NewSearchHistoryRepository(setupTestDB(t), 3)
		for i := range 6 {
			if err := repo.Record(ctx, fmt.Sprintf("q%d", i), i); err != nil {
				t.Fatalf("failed to record: %v", err)
			}
		}

		searches, _ := repo.List(ctx, 10)
		if len(searches) != 3 {
			t.Errorf("expected 3 searches after trim, got %d", len(searches))
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewSearchHistoryRepository(setupTestDB(t), 3)
		repo.Record(ctx, "x", 1)
		if err := repo.Clear(ctx); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		searches, _ := repo.List(ctx, 0)
		if len(searches) != 0 {
			t.Errorf("expected empty history, got %d", len(searches))
		}
	})
}

func TestNewStore(t *testing.T) {
	store := NewStore(setupTestDB(t))
	if store.Credentials == nil || store.Searches == nil {
		t.Error("expected all repositories to be created")
	}
}
