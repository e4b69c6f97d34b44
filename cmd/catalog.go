package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/waves/internal/app"
	"github.com/desertthunder/waves/internal/auth"
	"github.com/desertthunder/waves/internal/formatter"
	"github.com/desertthunder/waves/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search prints catalog results, or the sample tracks plus placeholders when logged out.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx, cmd, r.prompter)
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	if limit <= 0 {
		limit = a.Config.Player.SearchLimit
	}

	if cmd.Bool("recent") {
		recent, err := a.Repos.Searches.List(ctx, limit)
		if err != nil {
			return err
		}
		if format == formatter.FormatJSON {
			return r.writeJSON(recent, true)
		}
		for _, s := range recent {
			r.writePlain("%s  %s (%d results)\n", s.SearchedAt.Local().Format("2006-01-02 15:04"), s.Query, s.ResultCount)
		}
		return nil
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	r.logger.Debug("searching", "query", query, "limit", limit, "authenticated", a.Store.Authenticated())

	tracks, err := a.Catalog.Search(ctx, query, limit)
	if err != nil {
		return err
	}

	if err := a.Repos.Searches.Record(ctx, query, len(tracks)); err != nil {
		r.logger.Warn("failed to record search", "error", err)
	}

	title := fmt.Sprintf("Search Results for %q", query)
	return formatter.WriteTracks(r.output, format, title, tracks)
}

// PlaylistsList prints the user's playlists.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.gated(ctx, cmd, auth.CapabilityPlaylists)
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	playlists, err := a.Catalog.UserPlaylists(ctx)
	if err != nil {
		return err
	}
	return formatter.WritePlaylists(r.output, format, playlists)
}

// PlaylistsTracks prints a playlist's tracks.
func (r *Runner) PlaylistsTracks(ctx context.Context, cmd *cli.Command) error {
	a, err := r.gated(ctx, cmd, auth.CapabilityPlaylists)
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	tracks, err := a.Catalog.PlaylistTracks(ctx, id)
	if err != nil {
		return err
	}
	return formatter.WriteTracks(r.output, format, fmt.Sprintf("Playlist %s", id), tracks)
}

// PlaylistsCreate creates a private playlist.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	a, err := r.gated(ctx, cmd, auth.CapabilityCreatePlaylist)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(cmd.StringArg("name"))
	playlist, err := a.Catalog.CreatePlaylist(ctx, name, app.PlaylistDescription)
	if err != nil {
		return err
	}

	r.logger.Info("created playlist", "id", playlist.ID, "name", playlist.Name)
	return r.writePlain("✓ Created playlist %s (%s)\n", playlist.Name, playlist.ID)
}

// PlaylistsAdd appends a track URI to a playlist.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	a, err := r.gated(ctx, cmd, auth.CapabilityAddToPlaylist)
	if err != nil {
		return err
	}

	playlistID := cmd.String("playlist-id")
	trackURI := cmd.String("track")
	if err := a.Catalog.AddTrack(ctx, playlistID, trackURI); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s to playlist %s\n", trackURI, playlistID)
}

func (r *Runner) gated(ctx context.Context, cmd *cli.Command, capability auth.Capability) (*app.App, error) {
	a, err := r.open(ctx, cmd, r.prompter)
	if err != nil {
		return nil, err
	}
	if err := r.authorize(ctx, a, capability); err != nil {
		return nil, err
	}
	return a, nil
}

// outputFormat resolves --format, with --json taking precedence.
func outputFormat(cmd *cli.Command) (formatter.Format, error) {
	if cmd.Bool("json") {
		return formatter.FormatJSON, nil
	}
	return formatter.ParseFormat(cmd.String("format"))
}
