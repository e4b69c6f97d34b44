package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/shared"
)

// DefaultSearchLimit caps search results when the caller passes a non-positive limit.
const DefaultSearchLimit = 20

// Credentials is the part of the token store the catalog needs.
type Credentials interface {
	Authenticated() bool
	Clear(ctx context.Context) error
}

// Catalog is the hybrid catalog: Spotify when a credential exists, local samples otherwise.
type Catalog struct {
	api    API
	creds  Credentials
	logger *log.Logger
}

// NewCatalog creates a [Catalog].
func NewCatalog(api API, creds Credentials, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Catalog{api: api, creds: creds, logger: logger}
}

// Samples returns the featured tracks.
func (c *Catalog) Samples() []models.Track {
	return DemoTracks()
}

// Search finds tracks matching query.
//
// Without a credential the answer comes from the samples and never fails.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if !c.creds.Authenticated() {
		c.logger.Debug("offline search", "query", query)
		return OfflineSearch(query, limit), nil
	}

	tracks, err := c.api.SearchTracks(ctx, query, limit)
	if err != nil {
		return nil, c.guard(ctx, "search", err)
	}
	return tracks, nil
}

// UserPlaylists lists the current user's playlists.
func (c *Catalog) UserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := c.requireCredential(); err != nil {
		return nil, err
	}

	playlists, err := c.api.UserPlaylists(ctx)
	if err != nil {
		return nil, c.guard(ctx, "list playlists", err)
	}
	return playlists, nil
}

// PlaylistTracks lists the tracks of playlist id.
func (c *Catalog) PlaylistTracks(ctx context.Context, id string) ([]models.Track, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if err := c.requireCredential(); err != nil {
		return nil, err
	}

	tracks, err := c.api.PlaylistTracks(ctx, id)
	if err != nil {
		return nil, c.guard(ctx, "playlist tracks", err)
	}
	return tracks, nil
}

// CreatePlaylist creates a private playlist for the current user.
func (c *Catalog) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}
	if err := c.requireCredential(); err != nil {
		return nil, err
	}

	playlist, err := c.api.CreatePlaylist(ctx, name, description)
	if err != nil {
		return nil, c.guard(ctx, "create playlist", err)
	}
	return playlist, nil
}

// AddTrack adds trackURI to playlist playlistID.
func (c *Catalog) AddTrack(ctx context.Context, playlistID, trackURI string) error {
	if playlistID == "" || trackURI == "" {
		return fmt.Errorf("%w: playlist id and track uri", shared.ErrMissingArgument)
	}
	if err := c.requireCredential(); err != nil {
		return err
	}

	if err := c.api.AddTrack(ctx, playlistID, trackURI); err != nil {
		return c.guard(ctx, "add track", err)
	}
	return nil
}

func (c *Catalog) requireCredential() error {
	if !c.creds.Authenticated() {
		return shared.ErrNotAuthenticated
	}
	return nil
}

// guard purges the credential when err is a 401 so the next gated call prompts again.
func (c *Catalog) guard(ctx context.Context, op string, err error) error {
	if IsUnauthorized(err) {
		c.logger.Warn("credential rejected, clearing", "op", op)
		if clearErr := c.creds.Clear(ctx); clearErr != nil {
			c.logger.Error("failed to clear credential", "error", clearErr)
		}
		return fmt.Errorf("%s: %w", op, shared.ErrLoginRequired)
	}

	if errors.Is(err, shared.ErrInvalidArgument) || errors.Is(err, context.Canceled) {
		return err
	}

	c.logger.Error("catalog request failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
}
