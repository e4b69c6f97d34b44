// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/shared"
)

// MockAPI is a test double for services.API that records calls.
type MockAPI struct {
	mu sync.Mutex

	Tracks         []models.Track
	Playlists      []models.Playlist
	PlaylistItems  map[string][]models.Track
	Err            error
	Calls          []string
	Added          map[string][]string
	CreatedName    string
	CreatedDetails string
}

func (m *MockAPI) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
	return m.Err
}

// CallCount returns how many API calls were made.
func (m *MockAPI) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockAPI) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if err := m.record("search:" + query); err != nil {
		return nil, err
	}
	if limit > 0 && len(m.Tracks) > limit {
		return m.Tracks[:limit], nil
	}
	return m.Tracks, nil
}

func (m *MockAPI) UserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := m.record("playlists"); err != nil {
		return nil, err
	}
	return m.Playlists, nil
}

func (m *MockAPI) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if err := m.record("playlist:" + playlistID); err != nil {
		return nil, err
	}
	return m.PlaylistItems[playlistID], nil
}

func (m *MockAPI) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if err := m.record("create:" + name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatedName = name
	m.CreatedDetails = description
	return &models.Playlist{ID: "new-playlist", Name: name}, nil
}

func (m *MockAPI) AddTrack(ctx context.Context, playlistID, trackURI string) error {
	if err := m.record("add:" + playlistID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Added == nil {
		m.Added = make(map[string][]string)
	}
	m.Added[playlistID] = append(m.Added[playlistID], trackURI)
	return nil
}

// MockCredentials is an in-memory stand-in for the token store.
type MockCredentials struct {
	mu       sync.Mutex
	authed   bool
	cleared  int
	ClearErr error
}

// NewMockCredentials creates a store that starts with or without a credential.
func NewMockCredentials(authenticated bool) *MockCredentials {
	return &MockCredentials{authed: authenticated}
}

func (m *MockCredentials) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authed
}

func (m *MockCredentials) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authed = false
	m.cleared++
	return m.ClearErr
}

// SetAuthenticated flips the flag.
func (m *MockCredentials) SetAuthenticated(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authed = v
}

// Cleared returns how many times Clear was called.
func (m *MockCredentials) Cleared() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

// UnauthorizedError mimics the error the API transport returns on a 401.
func UnauthorizedError() error {
	return shared.ErrTokenExpired
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	mu       sync.Mutex
	response *http.Response
	err      error
	requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.response, m.err
}

// Requests returns the requests seen so far.
func (m *MockRoundTripper) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request{}, m.requests...)
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
