package auth

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/shared"
)

// Capability names a feature that needs an account, phrased to complete "To ..., please login".
type Capability string

const (
	CapabilityPlaylists      Capability = "access your playlists"
	CapabilityCreatePlaylist Capability = "create playlists"
	CapabilityAddToPlaylist  Capability = "add songs to playlists"
	CapabilityFullPlayback   Capability = "play full tracks"
)

// Message is the dialog text shown for c.
func (c Capability) Message() string {
	return fmt.Sprintf("To %s, please login with your Spotify account.", string(c))
}

// Decision is the user's answer to a login prompt.
type Decision int

const (
	DecisionCancel Decision = iota
	DecisionLogin
)

func (d Decision) String() string {
	if d == DecisionLogin {
		return "login"
	}
	return "cancel"
}

// Prompter asks the user whether to log in. Implementations must not block the UI loop;
// Prompt itself may block the calling goroutine until the user answers.
type Prompter interface {
	Prompt(ctx context.Context, message string) (Decision, error)
}

// Authorizer starts the vendor authorization redirect.
type Authorizer interface {
	BeginLogin(ctx context.Context) error
}

// AuthChecker reports the current authenticated flag.
type AuthChecker interface {
	Authenticated() bool
}

// Gate decides whether a gated feature may proceed.
type Gate struct {
	auth       AuthChecker
	prompter   Prompter
	authorizer Authorizer
	logger     *log.Logger
}

// NewGate creates a [Gate].
func NewGate(auth AuthChecker, prompter Prompter, authorizer Authorizer, logger *log.Logger) *Gate {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Gate{auth: auth, prompter: prompter, authorizer: authorizer, logger: logger}
}

// Ensure returns true when the caller may use capability now.
//
// Without a credential the user is prompted. Choosing login starts authorization and still
// returns false: the triggering action is not resumed. Errors are logged, never returned.
func (g *Gate) Ensure(ctx context.Context, capability Capability) bool {
	if g.auth.Authenticated() {
		return true
	}

	decision, err := g.prompter.Prompt(ctx, capability.Message())
	if err != nil {
		g.logger.Warn("login prompt failed", "capability", capability, "error", err)
		return false
	}

	g.logger.Debug("login prompt answered", "capability", capability, "decision", decision)
	if decision != DecisionLogin {
		return false
	}

	if g.authorizer == nil {
		g.logger.Warn("login requested but no authorizer configured")
		return false
	}

	if err := g.authorizer.BeginLogin(ctx); err != nil {
		g.logger.Error("failed to start authorization", "error", err)
	}
	return false
}

// PrompterFunc adapts a function to [Prompter].
type PrompterFunc func(ctx context.Context, message string) (Decision, error)

// Prompt implements [Prompter].
func (f PrompterFunc) Prompt(ctx context.Context, message string) (Decision, error) {
	return f(ctx, message)
}
