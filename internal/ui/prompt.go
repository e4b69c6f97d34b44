package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/waves/internal/auth"
)

var _ auth.Prompter = (*Prompter)(nil)

type promptRequest struct {
	message string
	reply   chan auth.Decision
}

// Prompter shows the login dialog inside the running TUI.
//
// Prompt is called from command goroutines; the [Model] receives the request as a message and answers it
// from its update loop, so the dialog never blocks rendering.
type Prompter struct {
	requests chan promptRequest
}

// NewPrompter creates a [Prompter] to share between the gate and the [Model].
func NewPrompter() *Prompter {
	return &Prompter{requests: make(chan promptRequest)}
}

// Prompt asks the user to log in and waits for the answer.
func (p *Prompter) Prompt(ctx context.Context, message string) (auth.Decision, error) {
	req := promptRequest{message: message, reply: make(chan auth.Decision, 1)}

	select {
	case p.requests <- req:
	case <-ctx.Done():
		return auth.DecisionCancel, ctx.Err()
	}

	select {
	case d := <-req.reply:
		return d, nil
	case <-ctx.Done():
		return auth.DecisionCancel, ctx.Err()
	}
}

func (p *Prompter) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-p.requests:
			return promptRequestMsg(req)
		case <-ctx.Done():
			return nil
		}
	}
}
