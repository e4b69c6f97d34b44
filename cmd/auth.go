package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/waves/internal/auth"
	"github.com/desertthunder/waves/internal/services"
	"github.com/desertthunder/waves/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the browser login and waits until the token is stored.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx, cmd, r.prompter)
	if err != nil {
		return err
	}

	if a.Login == nil {
		return fmt.Errorf("%w: set credentials.spotify.client_id in config.toml or %s", shared.ErrMissingConfig, shared.EnvClientID)
	}

	r.logger.Info("starting login", "callback", a.Login.Addr())
	if err := a.Login.Login(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Logged in to Spotify\n")
}

// AuthLogout deletes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx, cmd, r.prompter)
	if err != nil {
		return err
	}

	if !a.Store.Authenticated() {
		return r.writePlain("Not logged in\n")
	}

	if err := a.Controller.Logout(ctx); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus prints the access tier and, when logged in, the Connect devices visible to the account.
//
// A rejected token is purged, which moves the account back to the free tier.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx, cmd, r.prompter)
	if err != nil {
		return err
	}

	r.writePlainHeader(a.Controller.Status())

	if a.Login == nil {
		r.writePlain("Login: ✗ not configured\n")
	} else {
		r.writePlain("Login: ✓ configured (callback %s)\n", a.Config.Credentials.Spotify.RedirectURI)
	}

	if !a.Store.Authenticated() {
		return r.writePlain("Authentication: ✗ Not authenticated\n")
	}

	if updated, err := a.Repos.Credentials.UpdatedAt(ctx, auth.TokenKey); err == nil {
		r.writePlain("Authentication: ✓ Token stored %s\n", updated.Local().Format("2006-01-02 15:04"))
	}

	devices, err := a.Spotify.Devices(ctx)
	if err != nil {
		if services.IsUnauthorized(err) {
			if clearErr := a.Store.Clear(ctx); clearErr != nil {
				r.logger.Warn("failed to clear rejected token", "error", clearErr)
			}
			return fmt.Errorf("%w: stored token was rejected", shared.ErrLoginRequired)
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if len(devices) == 0 {
		return r.writePlain("Devices: none (open Spotify on any device to enable full playback)\n")
	}

	r.writePlain("Devices:\n")
	for _, d := range devices {
		marker := " "
		if d.Active {
			marker = "*"
		}
		r.writePlain("  %s %s (%s, volume %d%%)\n", marker, d.Name, d.Type, d.Volume)
	}
	return nil
}
