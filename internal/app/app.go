package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/auth"
	"github.com/desertthunder/waves/internal/player"
	"github.com/desertthunder/waves/internal/repositories"
	"github.com/desertthunder/waves/internal/services"
	"github.com/desertthunder/waves/internal/shared"
)

// App is the wired player.
type App struct {
	Config     *shared.Config
	Repos      *repositories.Store
	Handoff    *auth.Handoff
	Store      *auth.Store
	Login      *auth.LoginFlow
	Gate       *auth.Gate
	Spotify    *services.SpotifyService
	Catalog    *services.Catalog
	Connect    *player.Connect
	Engine     *player.Engine
	Controller *Controller

	logger *log.Logger
}

// Options overrides collaborators that differ between the TUI, the CLI and tests.
type Options struct {
	Prompter auth.Prompter
	Sources  player.SourceFactory
	Browser  shared.BrowserOpener
	BaseURL  string
	Logger   *log.Logger
}

// New wires every component over db and restores any stored credential.
//
// The login flow is only available when the Spotify credentials in conf are valid.
func New(ctx context.Context, conf *shared.Config, db *sql.DB, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	a := &App{Config: conf, logger: logger}
	a.Repos = repositories.NewStore(db)
	a.Handoff = auth.NewHandoff()
	a.Store = auth.NewStore(a.Repos.Credentials, a.Handoff, logger.WithPrefix("auth"))

	var authorizer auth.Authorizer
	if err := conf.Validate(); err != nil {
		logger.Warn("login disabled", "error", err)
	} else {
		loginOpts := []auth.LoginOption{}
		if opts.Browser != nil {
			loginOpts = append(loginOpts, auth.WithBrowser(opts.Browser))
		}
		a.Login = auth.NewLoginFlow(
			auth.NewSpotifyAuthenticator(conf.Credentials.Spotify),
			conf.Server.Addr(),
			a.Store,
			a.Handoff,
			logger.WithPrefix("login"),
			loginOpts...,
		)
		authorizer = a.Login
	}

	prompter := opts.Prompter
	if prompter == nil {
		prompter = auth.PrompterFunc(func(context.Context, string) (auth.Decision, error) {
			return auth.DecisionCancel, nil
		})
	}
	a.Gate = auth.NewGate(a.Store, prompter, authorizer, logger.WithPrefix("gate"))

	httpClient := services.NewHTTPClient(a.Store, services.NewLimiter(conf.Player.RequestsPerSec), nil)
	a.Spotify = services.NewSpotifyService(services.NewSpotifyClient(httpClient, opts.BaseURL), logger.WithPrefix("spotify"))
	a.Catalog = services.NewCatalog(a.Spotify, a.Store, logger.WithPrefix("catalog"))

	sources := opts.Sources
	if sources == nil {
		sources = player.NewBeepFactory(nil, logger.WithPrefix("preview"))
	}

	interval := time.Duration(conf.Player.PollIntervalMS) * time.Millisecond
	a.Connect = player.NewConnect(a.Spotify, a.Store, conf.Player.DeviceName, interval, logger.WithPrefix("connect"))
	a.Engine = player.NewEngine(sources, a.Spotify, a.Connect, a.Store, logger.WithPrefix("engine"),
		player.WithVolume(conf.Player.Volume))
	a.Connect.OnState(a.Engine.HandleRemoteState)

	a.Controller = NewController(ControllerConfig{
		Catalog:     a.Catalog,
		Engine:      a.Engine,
		Gate:        a.Gate,
		Credentials: a.Store,
		Login:       authorizer,
		History:     a.Repos.Searches,
		SearchLimit: conf.Player.SearchLimit,
		Logger:      logger.WithPrefix("controller"),
	})

	BindConnect(ctx, a.Store, a.Connect)
	a.Store.Restore(ctx)
	return a
}

// Close stops playback and the Connect poller.
func (a *App) Close(ctx context.Context) {
	a.Engine.Stop(ctx)
	a.Connect.Stop()
}

// BindConnect starts the Connect poller when a credential appears and stops it when the credential goes away.
func BindConnect(ctx context.Context, store *auth.Store, connect *player.Connect) {
	store.OnChange(func(cred auth.Credential) {
		if cred.Present() {
			connect.Start(ctx)
			return
		}
		connect.Stop()
	})
	if store.Authenticated() {
		connect.Start(ctx)
	}
}
