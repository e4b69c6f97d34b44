package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/server"
	"github.com/desertthunder/waves/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Scopes requested at login.
var Scopes = []string{
	spotifyauth.ScopeStreaming,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Authenticator builds authorize URLs and exchanges codes.
//
// Satisfied by *spotifyauth.Authenticator.
type Authenticator interface {
	server.Exchanger
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
}

// NewSpotifyAuthenticator creates the Spotify authenticator for conf.
func NewSpotifyAuthenticator(conf shared.SpotifyConfig) *spotifyauth.Authenticator {
	opts := []spotifyauth.AuthenticatorOption{
		spotifyauth.WithClientID(conf.ClientID),
		spotifyauth.WithRedirectURL(conf.RedirectURI),
		spotifyauth.WithScopes(Scopes...),
	}
	if conf.ClientSecret != "" {
		opts = append(opts, spotifyauth.WithClientSecret(conf.ClientSecret))
	}
	return spotifyauth.New(opts...)
}

// LoginFlow runs the authorization code + PKCE flow against a temporary local callback server.
//
// Completed logins deliver the token to the [Handoff] and then [Store.Restore] picks it up.
type LoginFlow struct {
	auth    Authenticator
	store   *Store
	handoff *Handoff
	open    shared.BrowserOpener
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	addr    string
	current *loginRun
}

// loginRun is one in-flight login; err is set before done is closed.
type loginRun struct {
	done chan struct{}
	err  error
}

// LoginOption customizes a [LoginFlow].
type LoginOption func(*LoginFlow)

// WithBrowser replaces the browser launcher.
func WithBrowser(open shared.BrowserOpener) LoginOption {
	return func(f *LoginFlow) { f.open = open }
}

// WithTimeout bounds how long the callback server waits.
func WithTimeout(d time.Duration) LoginOption {
	return func(f *LoginFlow) { f.timeout = d }
}

// NewLoginFlow creates a flow that listens on addr.
func NewLoginFlow(auth Authenticator, addr string, store *Store, handoff *Handoff, logger *log.Logger, opts ...LoginOption) *LoginFlow {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	f := &LoginFlow{
		auth:    auth,
		store:   store,
		handoff: handoff,
		addr:    addr,
		open:    shared.OpenBrowser,
		logger:  logger,
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Addr returns the callback server address; after a flow starts it is the bound address.
func (f *LoginFlow) Addr() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addr
}

// BeginLogin starts the callback server and opens the authorize URL, then returns.
//
// The flow completes in the background. Calling it while a flow is running is a no-op.
func (f *LoginFlow) BeginLogin(ctx context.Context) error {
	_, err := f.begin(ctx)
	return err
}

// Login runs a full login and waits for it to finish.
func (f *LoginFlow) Login(ctx context.Context) error {
	run, err := f.begin(ctx)
	if err != nil {
		return err
	}

	select {
	case <-run.done:
		return run.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *LoginFlow) begin(ctx context.Context) (*loginRun, error) {
	f.mu.Lock()
	if f.current != nil {
		run := f.current
		f.mu.Unlock()
		f.logger.Debug("login already in progress")
		return run, nil
	}
	run := &loginRun{done: make(chan struct{})}
	f.current = run
	f.mu.Unlock()

	if err := f.start(ctx); err != nil {
		f.finish(err)
		return nil, err
	}
	return run, nil
}

func (f *LoginFlow) start(ctx context.Context) error {
	state := shared.GenerateID()
	verifier := oauth2.GenerateVerifier()

	authURL := f.auth.AuthURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("show_dialog", "true"),
	)

	handler := server.NewOAuthHandler(f.auth, state, oauth2.VerifierOption(verifier))
	router := server.NewBasicRouter(server.RequestLogger(f.logger), server.NoStore)
	router.Handler(handler)

	ln, err := net.Listen("tcp", f.Addr())
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}

	f.mu.Lock()
	f.addr = ln.Addr().String()
	f.mu.Unlock()

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	f.logger.Info("waiting for authorization", "addr", ln.Addr().String())
	if err := f.open(authURL); err != nil {
		f.logger.Warn("failed to open browser automatically", "error", err, "url", authURL)
	}

	go f.wait(ctx, httpServer, handler, serverErrors)
	return nil
}

func (f *LoginFlow) wait(ctx context.Context, httpServer *http.Server, handler *server.OAuthHandler, serverErrors <-chan error) {
	timeout := time.NewTimer(f.timeout)
	defer timeout.Stop()

	var err error
	var result server.OAuthResult
	select {
	case result = <-handler.Result():
		err = result.Error()
		if err == nil && (result.Token == nil || result.Token.AccessToken == "") {
			err = fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
		}
	case err = <-serverErrors:
		err = fmt.Errorf("callback server error: %w", err)
	case <-timeout.C:
		err = fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, f.timeout)
	case <-ctx.Done():
		err = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		f.logger.Warn("error shutting down callback server", "error", shutdownErr)
	}

	if err == nil {
		f.handoff.Deliver(result.Token.AccessToken)
		f.store.Restore(context.WithoutCancel(ctx))
		f.logger.Info("login complete")
	} else {
		f.logger.Error("login failed", "error", err)
	}

	f.finish(err)
}

func (f *LoginFlow) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return
	}
	f.current.err = err
	close(f.current.done)
	f.current = nil
}
