package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/auth"
	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/player"
	"github.com/desertthunder/waves/internal/shared"
)

// Notices shown for controller outcomes.
const (
	NoticeSearchFailed     = "Search failed. Please try again."
	NoticePlaylistsFailed  = "Failed to load playlists."
	NoticePlaylistFailed   = "Failed to load playlist tracks."
	NoticeCreated          = "Playlist created successfully!"
	NoticeCreateFailed     = "Failed to create playlist."
	NoticeAdded            = "Track added to playlist!"
	NoticeAddFailed        = "Failed to add track to playlist."
	NoticeLoginRequired    = "Your session expired. Please login again."
	NoticeLoginStarted     = "Complete the login in your browser."
	NoticeLoginFailed      = "Could not start login."
	NoticeLoggedOut        = "Logged out."
	StatusFree             = "Browse & Listen Free"
	StatusFull             = "Logged In - Full Access"
	PlaylistDescription    = "Created with waves"
	featuredTitle          = "Featured Tracks"
	playlistsTitle         = "Your Playlists"
	searchResultsTitleForm = "Search Results for \"%s\""
)

// View is the content currently projected by the renderer.
type View int

const (
	ViewFeatured View = iota
	ViewSearch
	ViewPlaylists
	ViewPlaylist
)

// Catalog is the hybrid catalog used by the controller.
type Catalog interface {
	Samples() []models.Track
	Search(ctx context.Context, query string, limit int) ([]models.Track, error)
	UserPlaylists(ctx context.Context) ([]models.Playlist, error)
	PlaylistTracks(ctx context.Context, id string) ([]models.Track, error)
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)
	AddTrack(ctx context.Context, playlistID, trackURI string) error
}

// Gate guards credential-only capabilities.
type Gate interface {
	Ensure(ctx context.Context, capability auth.Capability) bool
}

// Credentials is the part of the token store the controller reads and clears.
type Credentials interface {
	Authenticated() bool
	Clear(ctx context.Context) error
}

// History remembers searches.
type History interface {
	Record(ctx context.Context, query string, resultCount int) error
}

// Screen is a snapshot of the controller's view state.
type Screen struct {
	View      View
	Title     string
	Playlists []models.Playlist
}

// Controller handles user intents.
type Controller struct {
	catalog Catalog
	engine  *player.Engine
	gate    Gate
	creds   Credentials
	login   auth.Authorizer
	history History
	limit   int
	logger  *log.Logger

	mu        sync.Mutex
	searchGen uint64
	screen    Screen
	notices   chan string
}

// ControllerConfig holds the controller's collaborators. Login and History may be nil.
type ControllerConfig struct {
	Catalog     Catalog
	Engine      *player.Engine
	Gate        Gate
	Credentials Credentials
	Login       auth.Authorizer
	History     History
	SearchLimit int
	Logger      *log.Logger
}

// NewController creates a controller showing the featured tracks.
func NewController(conf ControllerConfig) *Controller {
	logger := conf.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	c := &Controller{
		catalog: conf.Catalog,
		engine:  conf.Engine,
		gate:    conf.Gate,
		creds:   conf.Credentials,
		login:   conf.Login,
		history: conf.History,
		limit:   conf.SearchLimit,
		logger:  logger,
		notices: make(chan string, 16),
	}
	c.Browse()
	return c
}

// Notices delivers user-facing messages. Sends never block.
func (c *Controller) Notices() <-chan string {
	return c.notices
}

// Screen returns the current view state.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.screen
	s.Playlists = append([]models.Playlist(nil), c.screen.Playlists...)
	return s
}

// Status is the auth status line.
func (c *Controller) Status() string {
	if c.creds.Authenticated() {
		return StatusFull
	}
	return StatusFree
}

// Authenticated reports whether a credential is present.
func (c *Controller) Authenticated() bool {
	return c.creds.Authenticated()
}

// Browse restores the featured tracks.
func (c *Controller) Browse() {
	c.engine.SetQueue(c.catalog.Samples())
	c.setScreen(Screen{View: ViewFeatured, Title: featuredTitle})
}

// Search replaces the queue with the results for query.
//
// Failures leave the queue untouched. A response that arrives after a newer search is dropped.
func (c *Controller) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	c.mu.Lock()
	c.searchGen++
	gen := c.searchGen
	c.mu.Unlock()

	tracks, err := c.catalog.Search(ctx, query, c.limit)

	c.mu.Lock()
	stale := gen != c.searchGen
	c.mu.Unlock()
	if stale {
		c.logger.Debug("dropping superseded search", "query", query)
		return nil
	}

	if err != nil {
		c.fail(err, NoticeSearchFailed)
		return err
	}

	c.engine.SetQueue(tracks)
	c.setScreen(Screen{View: ViewSearch, Title: fmt.Sprintf(searchResultsTitleForm, query)})

	if c.history != nil {
		if err := c.history.Record(ctx, query, len(tracks)); err != nil {
			c.logger.Warn("failed to record search", "error", err)
		}
	}
	return nil
}

// Playlists shows the user's playlists.
func (c *Controller) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if !c.gate.Ensure(ctx, auth.CapabilityPlaylists) {
		return nil, shared.ErrNotAuthenticated
	}

	playlists, err := c.catalog.UserPlaylists(ctx)
	if err != nil {
		c.fail(err, NoticePlaylistsFailed)
		return nil, err
	}

	c.setScreen(Screen{View: ViewPlaylists, Title: playlistsTitle, Playlists: playlists})
	return playlists, nil
}

// Ensure runs the gate for capability without performing any action.
func (c *Controller) Ensure(ctx context.Context, capability auth.Capability) bool {
	return c.gate.Ensure(ctx, capability)
}

// PlaylistChoices lists the user's playlists for a picker without changing the view.
func (c *Controller) PlaylistChoices(ctx context.Context) ([]models.Playlist, error) {
	if !c.gate.Ensure(ctx, auth.CapabilityAddToPlaylist) {
		return nil, shared.ErrNotAuthenticated
	}

	playlists, err := c.catalog.UserPlaylists(ctx)
	if err != nil {
		c.fail(err, NoticePlaylistsFailed)
		return nil, err
	}
	return playlists, nil
}

// OpenPlaylist replaces the queue with a playlist's tracks.
func (c *Controller) OpenPlaylist(ctx context.Context, playlist models.Playlist) error {
	if !c.gate.Ensure(ctx, auth.CapabilityPlaylists) {
		return shared.ErrNotAuthenticated
	}

	tracks, err := c.catalog.PlaylistTracks(ctx, playlist.ID)
	if err != nil {
		c.fail(err, NoticePlaylistFailed)
		return err
	}

	c.engine.SetQueue(tracks)
	c.setScreen(Screen{View: ViewPlaylist, Title: playlist.Name})
	return nil
}

// CreatePlaylist creates a playlist. An empty name means the user cancelled.
func (c *Controller) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	if !c.gate.Ensure(ctx, auth.CapabilityCreatePlaylist) {
		return nil, shared.ErrNotAuthenticated
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	playlist, err := c.catalog.CreatePlaylist(ctx, name, PlaylistDescription)
	if err != nil {
		c.fail(err, NoticeCreateFailed)
		return nil, err
	}

	c.notify(NoticeCreated)
	if c.Screen().View == ViewPlaylists {
		if _, err := c.Playlists(ctx); err != nil {
			c.logger.Warn("failed to refresh playlists", "error", err)
		}
	}
	return playlist, nil
}

// AddToPlaylist appends track to playlist playlistID.
func (c *Controller) AddToPlaylist(ctx context.Context, playlistID string, track models.Track) error {
	if !c.gate.Ensure(ctx, auth.CapabilityAddToPlaylist) {
		return shared.ErrNotAuthenticated
	}

	if err := c.catalog.AddTrack(ctx, playlistID, track.URI); err != nil {
		c.fail(err, NoticeAddFailed)
		return err
	}

	c.notify(NoticeAdded)
	return nil
}

// Play plays queue entry index. Playback notices come from the engine.
func (c *Controller) Play(ctx context.Context, index int) error {
	return c.engine.PlayTrack(ctx, index)
}

func (c *Controller) Toggle(ctx context.Context) error   { return c.engine.TogglePlayback(ctx) }
func (c *Controller) Next(ctx context.Context) error     { return c.engine.Next(ctx) }
func (c *Controller) Previous(ctx context.Context) error { return c.engine.Previous(ctx) }
func (c *Controller) Stop(ctx context.Context)           { c.engine.Stop(ctx) }

// AdjustVolume changes the preview volume by delta percent.
func (c *Controller) AdjustVolume(delta int) int {
	c.engine.SetVolume(c.engine.Volume() + delta)
	return c.engine.Volume()
}

// Seek jumps the preview to a click on the progress bar.
func (c *Controller) Seek(offsetX, barWidth float64) error {
	return c.engine.Seek(offsetX, barWidth)
}

// Login starts the authorization flow without going through the gate.
func (c *Controller) Login(ctx context.Context) error {
	if c.login == nil {
		return fmt.Errorf("%w: no login flow configured", shared.ErrMissingConfig)
	}
	if err := c.login.BeginLogin(ctx); err != nil {
		c.logger.Error("failed to start login", "error", err)
		c.notify(NoticeLoginFailed)
		return err
	}
	c.notify(NoticeLoginStarted)
	return nil
}

// Logout stops playback and drops the credential.
func (c *Controller) Logout(ctx context.Context) error {
	c.engine.Stop(ctx)
	if err := c.creds.Clear(ctx); err != nil {
		return err
	}
	if c.Screen().View == ViewPlaylists || c.Screen().View == ViewPlaylist {
		c.Browse()
	}
	c.notify(NoticeLoggedOut)
	return nil
}

func (c *Controller) fail(err error, notice string) {
	if errors.Is(err, shared.ErrLoginRequired) {
		notice = NoticeLoginRequired
	}
	c.logger.Error(notice, "error", err)
	c.notify(notice)
}

func (c *Controller) notify(notice string) {
	select {
	case c.notices <- notice:
	default:
		c.logger.Debug("notice dropped", "notice", notice)
	}
}

func (c *Controller) setScreen(s Screen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = s
}
