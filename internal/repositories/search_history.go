package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// RecentSearch is one remembered search query.
type RecentSearch struct {
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	SearchedAt  time.Time `json:"searched_at"`
}

// SearchHistoryRepository remembers the most recent distinct search queries.
type SearchHistoryRepository struct {
	db  *sql.DB
	max int
}

// NewSearchHistoryRepository creates a repository that keeps at most max entries.
func NewSearchHistoryRepository(db *sql.DB, max int) *SearchHistoryRepository {
	if max <= 0 {
		max = 20
	}
	return &SearchHistoryRepository{db: db, max: max}
}

// Record upserts query and trims the table to the newest entries.
func (r *SearchHistoryRepository) Record(ctx context.Context, query string, resultCount int) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO recent_searches (query, result_count, searched_at) VALUES (?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET result_count = excluded.result_count, searched_at = excluded.searched_at
	`
	if _, err := tx.ExecContext(ctx, upsert, query, resultCount, time.Now()); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}

	trim := `
		DELETE FROM recent_searches WHERE query NOT IN (
			SELECT query FROM recent_searches ORDER BY searched_at DESC LIMIT ?
		)
	`
	if _, err := tx.ExecContext(ctx, trim, r.max); err != nil {
		return fmt.Errorf("failed to trim search history: %w", err)
	}

	return tx.Commit()
}

// List returns up to limit entries, newest first.
func (r *SearchHistoryRepository) List(ctx context.Context, limit int) ([]RecentSearch, error) {
	if limit <= 0 || limit > r.max {
		limit = r.max
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT query, result_count, searched_at FROM recent_searches ORDER BY searched_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var searches []RecentSearch
	for rows.Next() {
		var s RecentSearch
		if err := rows.Scan(&s.Query, &s.ResultCount, &s.SearchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		searches = append(searches, s)
	}
	return searches, rows.Err()
}

// Clear removes all remembered searches.
func (r *SearchHistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM recent_searches"); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}
