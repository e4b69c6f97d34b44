package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/repositories"
	"github.com/desertthunder/waves/internal/shared"
	"golang.org/x/oauth2"
)

// TokenKey is the storage slot holding the bearer token.
const TokenKey = "spotify_access_token"

// Credential is an opaque bearer token. The zero value means "no credential".
type Credential struct {
	AccessToken string
}

// Present reports whether the credential carries a token.
func (c Credential) Present() bool {
	return c.AccessToken != ""
}

// Persister is durable key/value storage for the credential.
type Persister interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var (
	_ Persister          = (*repositories.CredentialRepository)(nil)
	_ oauth2.TokenSource = (*Store)(nil)
)

// Store holds the process-wide credential and authenticated flag.
type Store struct {
	mu        sync.RWMutex
	cred      Credential
	persist   Persister
	handoff   *Handoff
	listeners []func(Credential)
	logger    *log.Logger
}

// NewStore creates a [Store] over persist. handoff may be nil when no login flow can deliver tokens.
func NewStore(persist Persister, handoff *Handoff, logger *log.Logger) *Store {
	if handoff == nil {
		handoff = NewHandoff()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{persist: persist, handoff: handoff, logger: logger}
}

// Restore loads the credential, preferring a freshly handed-off token over the persisted one.
//
// A handed-off token is persisted and removed from the handoff. Storage failures are logged and
// treated as "no credential".
func (s *Store) Restore(ctx context.Context) (Credential, bool) {
	if token, ok := s.handoff.Take(); ok {
		cred := Credential{AccessToken: token}
		if err := s.Save(ctx, cred); err != nil {
			s.logger.Warn("failed to persist handed-off token", "error", err)
		}
		s.logger.Info("restored credential from login handoff")
		return cred, true
	}

	token, err := s.persist.Get(ctx, TokenKey)
	switch {
	case errors.Is(err, repositories.ErrCredentialNotFound):
		s.set(Credential{})
		return Credential{}, false
	case err != nil:
		s.logger.Warn("failed to read stored credential", "error", err)
		s.set(Credential{})
		return Credential{}, false
	}

	cred := Credential{AccessToken: token}
	s.set(cred)
	s.logger.Debug("restored credential from storage")
	return cred, cred.Present()
}

// Save persists cred and marks the process authenticated.
//
// The in-memory credential is updated even when persisting fails.
func (s *Store) Save(ctx context.Context, cred Credential) error {
	if !cred.Present() {
		return fmt.Errorf("%w: empty credential", shared.ErrInvalidArgument)
	}

	s.set(cred)

	if err := s.persist.Put(ctx, TokenKey, cred.AccessToken); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	return nil
}

// Clear drops the credential from memory and storage.
func (s *Store) Clear(ctx context.Context) error {
	s.set(Credential{})

	if err := s.persist.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}

// Authenticated reports whether a credential is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Present()
}

// Snapshot returns a copy of the current credential.
func (s *Store) Snapshot() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// Token implements [oauth2.TokenSource] for HTTP clients that act on the user's behalf.
func (s *Store) Token() (*oauth2.Token, error) {
	cred := s.Snapshot()
	if !cred.Present() {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: cred.AccessToken, TokenType: "Bearer"}, nil
}

// OnChange registers fn to be called with the new credential whenever presence flips.
func (s *Store) OnChange(fn func(Credential)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) set(cred Credential) {
	s.mu.Lock()
	changed := s.cred.Present() != cred.Present()
	s.cred = cred
	listeners := append([]func(Credential){}, s.listeners...)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(cred)
	}
}
