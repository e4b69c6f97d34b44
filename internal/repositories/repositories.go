// package repositories provides persistence layer implementations for the player
package repositories

import (
	"database/sql"
)

// Store bundles every repository over a single database handle.
type Store struct {
	Credentials *CredentialRepository
	Searches    *SearchHistoryRepository
}

// NewStore creates all repositories for db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		Credentials: NewCredentialRepository(db),
		Searches:    NewSearchHistoryRepository(db, 20),
	}
}
