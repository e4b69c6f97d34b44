// Package repositories implements SQLite persistence for the player's small amount of durable state.
//
// Key Implementations:
//   - [CredentialRepository] : the stored bearer token, keyed like a browser storage slot
//   - [SearchHistoryRepository] : recently submitted search queries
//
// Schemas live in shared/sql and are applied by [shared.RunMigrations].
package repositories
