package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/app"
	"github.com/desertthunder/waves/internal/auth"
	"github.com/desertthunder/waves/internal/player"
	"github.com/desertthunder/waves/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Config, database and the wired [app.App] are created lazily by the first command that needs them.
type Runner struct {
	config   *shared.Config
	db       *sql.DB
	ownsDB   bool
	app      *app.App
	logger   *log.Logger
	output   io.Writer
	prompter *linePrompter
	baseURL  string
	sources  player.SourceFactory
	browser  shared.BrowserOpener
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	DB      *sql.DB
	Logger  *log.Logger
	Output  io.Writer
	Input   io.Reader
	BaseURL string
	Sources player.SourceFactory
	Browser shared.BrowserOpener
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:   opts.Config,
		db:       opts.DB,
		logger:   opts.Logger,
		output:   opts.Output,
		prompter: &linePrompter{in: bufio.NewReader(opts.Input), out: opts.Output},
		baseURL:  opts.BaseURL,
		sources:  opts.Sources,
		browser:  opts.Browser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, playlistsCommand, playCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and the components it wires afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// load reads the config file named by --config, falling back to the defaults, and applies env overrides.
func (r *Runner) load(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	config := shared.DefaultConfig()
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	config.ApplyEnv()
	shared.SetLogLevel(r.logger, shared.ParseLevel(config.Log.Level))
	r.config = config
	return config, nil
}

// open wires the application once. prompter answers the login gate for this process.
func (r *Runner) open(ctx context.Context, cmd *cli.Command, prompter auth.Prompter) (*app.App, error) {
	if r.app != nil {
		return r.app, nil
	}

	config, err := r.load(cmd)
	if err != nil {
		return nil, err
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(config.Database)
		if err != nil {
			return nil, err
		}
		r.db = db
		r.ownsDB = true
	}

	r.app = app.New(ctx, config, r.db, app.Options{
		Prompter: prompter,
		Sources:  r.sources,
		Browser:  r.browser,
		BaseURL:  r.baseURL,
		Logger:   r.logger,
	})
	return r.app, nil
}

// Close stops playback and closes the database if the runner opened it.
func (r *Runner) Close(ctx context.Context) {
	if r.app != nil {
		r.app.Close(ctx)
	}
	if r.ownsDB && r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
	}
}

// authorize runs the login gate for capability. When the user chooses to log in, the command waits for
// the browser flow to finish and then continues.
func (r *Runner) authorize(ctx context.Context, a *app.App, capability auth.Capability) error {
	if a.Gate.Ensure(ctx, capability) {
		return nil
	}

	if r.prompter.last != auth.DecisionLogin || a.Login == nil {
		return fmt.Errorf("%w: run `waves auth login` first", shared.ErrNotAuthenticated)
	}

	r.writePlain("Waiting for authorization in your browser...\n")
	if err := a.Login.Login(ctx); err != nil {
		return err
	}
	if !a.Store.Authenticated() {
		return fmt.Errorf("%w: login did not store a token", shared.ErrAuthFailed)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
