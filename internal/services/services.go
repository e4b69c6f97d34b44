package services

import (
	"context"

	"github.com/desertthunder/waves/internal/models"
)

// API is the catalog and playlist subset of the Spotify Web API.
type API interface {
	// SearchTracks runs a track search, returning at most limit results.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)

	// UserPlaylists lists every playlist of the current user.
	UserPlaylists(ctx context.Context) ([]models.Playlist, error)

	// PlaylistTracks lists the tracks of a playlist, skipping episodes and removed items.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// CreatePlaylist creates a private playlist owned by the current user.
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)

	// AddTrack appends a track URI to a playlist.
	AddTrack(ctx context.Context, playlistID, trackURI string) error
}

// Remote is the Spotify Connect transport for full-track playback.
type Remote interface {
	Play(ctx context.Context, deviceID, trackURI string) error
	Pause(ctx context.Context, deviceID string) error
	Resume(ctx context.Context, deviceID string) error
	SetVolume(ctx context.Context, deviceID string, percent int) error
	Devices(ctx context.Context) ([]Device, error)
	State(ctx context.Context) (*PlaybackState, error)
}

// Device is a Spotify Connect playback target.
type Device struct {
	ID     string
	Name   string
	Type   string
	Active bool
	Volume int
}

// PlaybackState is a snapshot of the remote player.
type PlaybackState struct {
	DeviceID   string
	TrackURI   string
	Playing    bool
	ProgressMS int
	DurationMS int
}
