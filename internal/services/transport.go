package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/waves/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// apiTransport paces requests and reports rejected credentials as [shared.ErrTokenExpired].
type apiTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

// NewHTTPClient returns a client that sends the bearer token from source on every request.
//
// limiter may be nil. base defaults to [http.DefaultTransport].
func NewHTTPClient(source oauth2.TokenSource, limiter *rate.Limiter, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: &apiTransport{
			next:    &oauth2.Transport{Source: source, Base: base},
			limiter: limiter,
		},
		Timeout: 15 * time.Second,
	}
}

// NewLimiter allows perSecond requests with a burst of the same size. Non-positive means unlimited.
func NewLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

func (t *apiTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s %s", shared.ErrTokenExpired, req.Method, req.URL.Path)
	}

	return resp, nil
}

// IsUnauthorized reports whether err means the credential was rejected.
func IsUnauthorized(err error) bool {
	if errors.Is(err, shared.ErrTokenExpired) {
		return true
	}

	var apiErr spotify.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// NewSpotifyClient builds a zmb3 client over httpClient. baseURL overrides the API root when set.
func NewSpotifyClient(httpClient *http.Client, baseURL string) *spotify.Client {
	if baseURL == "" {
		return spotify.New(httpClient)
	}
	return spotify.New(httpClient, spotify.WithBaseURL(baseURL))
}
