package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override config.toml values.
const (
	EnvClientID     = "WAVES_SPOTIFY_CLIENT_ID"
	EnvClientSecret = "WAVES_SPOTIFY_CLIENT_SECRET"
	EnvRedirectURI  = "WAVES_SPOTIFY_REDIRECT_URI"
	EnvDatabasePath = "WAVES_DATABASE_PATH"
	EnvLogLevel     = "WAVES_LOG_LEVEL"
)

// LoadEnv loads variables from the given .env files into the process environment.
//
// Missing files are ignored; variables already set in the environment win.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment overrides onto the config.
func (c *Config) ApplyEnv() *Config {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.Credentials.Spotify.ClientID, EnvClientID)
	set(&c.Credentials.Spotify.ClientSecret, EnvClientSecret)
	set(&c.Credentials.Spotify.RedirectURI, EnvRedirectURI)
	set(&c.Database.Path, EnvDatabasePath)
	set(&c.Log.Level, EnvLogLevel)
	return c
}
