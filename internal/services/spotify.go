// Spotify Web API implementation of [API] and [Remote]
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/shared"
	"github.com/zmb3/spotify/v2"
)

// PlaceholderArt is shown for tracks whose album has no images.
const PlaceholderArt = "https://via.placeholder.com/300x300?text=No+Image"

const trackURIPrefix = "spotify:track:"

var (
	_ API    = (*SpotifyService)(nil)
	_ Remote = (*SpotifyService)(nil)
)

// SpotifyService implements [API] and [Remote] over the zmb3 Spotify client.
type SpotifyService struct {
	client *spotify.Client
	logger *log.Logger
}

// NewSpotifyService wraps client.
func NewSpotifyService(client *spotify.Client, logger *log.Logger) *SpotifyService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SpotifyService{client: client, logger: logger}
}

// SearchTracks runs a track search.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	result, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if result.Tracks == nil {
		return []models.Track{}, nil
	}

	tracks := make([]models.Track, 0, len(result.Tracks.Tracks))
	for i := range result.Tracks.Tracks {
		tracks = append(tracks, trackFromSpotify(&result.Tracks.Tracks[i]))
	}

	s.logger.Debug("search complete", "query", query, "results", len(tracks))
	return tracks, nil
}

// UserPlaylists lists all of the current user's playlists, following pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	var playlists []models.Playlist
	for {
		for _, p := range page.Playlists {
			playlists = append(playlists, playlistFromSpotify(p))
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list playlists: %w", err)
		}
	}

	return playlists, nil
}

// PlaylistTracks lists a playlist's tracks page by page.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	const limit = 100

	var tracks []models.Track
	offset := 0
	for {
		page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(limit), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist tracks at offset %d: %w", offset, err)
		}

		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, trackFromSpotify(item.Track.Track))
		}

		if len(page.Items) == 0 || offset+len(page.Items) >= int(page.Total) {
			break
		}
		offset += len(page.Items)
	}

	return tracks, nil
}

// CreatePlaylist resolves the current user and creates a private, non-collaborative playlist.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	created, err := s.client.CreatePlaylistForUser(ctx, user.ID, name, description, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	playlist := playlistFromSpotify(created.SimplePlaylist)
	s.logger.Info("playlist created", "id", playlist.ID, "name", playlist.Name)
	return &playlist, nil
}

// AddTrack appends trackURI ("spotify:track:<id>") to a playlist.
func (s *SpotifyService) AddTrack(ctx context.Context, playlistID, trackURI string) error {
	id, err := TrackIDFromURI(trackURI)
	if err != nil {
		return err
	}

	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), id); err != nil {
		return fmt.Errorf("failed to add track to playlist: %w", err)
	}
	return nil
}

// Play starts trackURI on deviceID.
func (s *SpotifyService) Play(ctx context.Context, deviceID, trackURI string) error {
	opts := &spotify.PlayOptions{URIs: []spotify.URI{spotify.URI(trackURI)}}
	if deviceID != "" {
		id := spotify.ID(deviceID)
		opts.DeviceID = &id
	}

	if err := s.client.PlayOpt(ctx, opts); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	return nil
}

// Pause pauses playback on deviceID.
func (s *SpotifyService) Pause(ctx context.Context, deviceID string) error {
	if err := s.client.PauseOpt(ctx, deviceOpts(deviceID)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

// Resume resumes playback on deviceID.
func (s *SpotifyService) Resume(ctx context.Context, deviceID string) error {
	if err := s.client.PlayOpt(ctx, deviceOpts(deviceID)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	return nil
}

// SetVolume sets the device volume in percent.
func (s *SpotifyService) SetVolume(ctx context.Context, deviceID string, percent int) error {
	if err := s.client.VolumeOpt(ctx, percent, deviceOpts(deviceID)); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

// Devices lists the user's Connect devices.
func (s *SpotifyService) Devices(ctx context.Context) ([]Device, error) {
	devices, err := s.client.PlayerDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, Device{
			ID:     d.ID.String(),
			Name:   d.Name,
			Type:   d.Type,
			Active: d.Active,
			Volume: int(d.Volume),
		})
	}
	return out, nil
}

// State returns the current remote playback state. An idle player yields a zero state.
func (s *SpotifyService) State(ctx context.Context) (*PlaybackState, error) {
	ps, err := s.client.PlayerState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get player state: %w", err)
	}

	state := &PlaybackState{
		DeviceID:   ps.Device.ID.String(),
		Playing:    ps.Playing,
		ProgressMS: int(ps.Progress),
	}
	if ps.Item != nil {
		state.TrackURI = string(ps.Item.URI)
		state.DurationMS = int(ps.Item.Duration)
	}
	return state, nil
}

// TrackIDFromURI extracts the id from "spotify:track:<id>".
func TrackIDFromURI(uri string) (spotify.ID, error) {
	id, ok := strings.CutPrefix(uri, trackURIPrefix)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: not a track uri: %q", shared.ErrInvalidArgument, uri)
	}
	return spotify.ID(id), nil
}

func deviceOpts(deviceID string) *spotify.PlayOptions {
	opts := &spotify.PlayOptions{}
	if deviceID != "" {
		id := spotify.ID(deviceID)
		opts.DeviceID = &id
	}
	return opts
}

func trackFromSpotify(t *spotify.FullTrack) models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	art := PlaceholderArt
	if len(t.Album.Images) > 0 {
		art = t.Album.Images[0].URL
	}

	return models.Track{
		ID:         t.ID.String(),
		URI:        string(t.URI),
		Title:      t.Name,
		Artist:     strings.Join(artists, ", "),
		Album:      t.Album.Name,
		Duration:   int(t.Duration) / 1000,
		ArtURL:     art,
		PreviewURL: models.StringPtr(t.PreviewURL),
	}
}

func playlistFromSpotify(p spotify.SimplePlaylist) models.Playlist {
	playlist := models.Playlist{
		ID:         p.ID.String(),
		Name:       p.Name,
		TrackCount: int(p.Tracks.Total),
		Owner:      p.Owner.DisplayName,
	}
	if len(p.Images) > 0 {
		playlist.ArtURL = p.Images[0].URL
	}
	return playlist
}
