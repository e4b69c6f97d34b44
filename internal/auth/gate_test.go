package auth

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/waves/internal/shared"
)

type staticAuth bool

func (s staticAuth) Authenticated() bool { return bool(s) }

type recordingPrompter struct {
	decision Decision
	err      error
	messages []string
}

func (p *recordingPrompter) Prompt(ctx context.Context, message string) (Decision, error) {
	p.messages = append(p.messages, message)
	return p.decision, p.err
}

type recordingAuthorizer struct {
	calls int
	err   error
}

func (a *recordingAuthorizer) BeginLogin(ctx context.Context) error {
	a.calls++
	return a.err
}

func TestGate(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	t.Run("authenticated passes without prompting", func(t *testing.T) {
		prompter := &recordingPrompter{}
		authorizer := &recordingAuthorizer{}
		gate := NewGate(staticAuth(true), prompter, authorizer, logger)

		if !gate.Ensure(ctx, CapabilityPlaylists) {
			t.Error("expected gate to pass")
		}
		if len(prompter.messages) != 0 || authorizer.calls != 0 {
			t.Error("expected no prompt and no authorization")
		}
	})

	t.Run("cancel returns false without side effects", func(t *testing.T) {
		prompter := &recordingPrompter{decision: DecisionCancel}
		authorizer := &recordingAuthorizer{}
		gate := NewGate(staticAuth(false), prompter, authorizer, logger)

		if gate.Ensure(ctx, CapabilityCreatePlaylist) {
			t.Error("expected gate to refuse")
		}
		if authorizer.calls != 0 {
			t.Errorf("expected no authorization, got %d", authorizer.calls)
		}
		if prompter.messages[0] != "To create playlists, please login with your Spotify account." {
			t.Errorf("unexpected prompt %q", prompter.messages[0])
		}
	})

	t.Run("login starts authorization and still returns false", func(t *testing.T) {
		prompter := &recordingPrompter{decision: DecisionLogin}
		authorizer := &recordingAuthorizer{}
		gate := NewGate(staticAuth(false), prompter, authorizer, logger)

		if gate.Ensure(ctx, CapabilityAddToPlaylist) {
			t.Error("expected gate to refuse while login is pending")
		}
		if authorizer.calls != 1 {
			t.Errorf("expected exactly one authorization, got %d", authorizer.calls)
		}
	})

	t.Run("authorization errors are swallowed", func(t *testing.T) {
		authorizer := &recordingAuthorizer{err: errors.New("port in use")}
		gate := NewGate(staticAuth(false), &recordingPrompter{decision: DecisionLogin}, authorizer, logger)

		if gate.Ensure(ctx, CapabilityPlaylists) {
			t.Error("expected gate to refuse")
		}
	})

	t.Run("prompt errors refuse", func(t *testing.T) {
		authorizer := &recordingAuthorizer{}
		gate := NewGate(staticAuth(false), &recordingPrompter{err: context.Canceled}, authorizer, logger)

		if gate.Ensure(ctx, CapabilityPlaylists) {
			t.Error("expected gate to refuse")
		}
		if authorizer.calls != 0 {
			t.Error("expected no authorization after prompt error")
		}
	})

	t.Run("prompter func adapter", func(t *testing.T) {
		var got string
		p := PrompterFunc(func(ctx context.Context, message string) (Decision, error) {
			got = message
			return DecisionCancel, nil
		})
		NewGate(staticAuth(false), p, nil, logger).Ensure(ctx, CapabilityFullPlayback)
		if got != CapabilityFullPlayback.Message() {
			t.Errorf("unexpected message %q", got)
		}
	})
}
