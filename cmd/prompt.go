package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/waves/internal/auth"
)

var _ auth.Prompter = (*linePrompter)(nil)

// linePrompter asks the login question on the terminal and remembers the last answer.
type linePrompter struct {
	in   *bufio.Reader
	out  io.Writer
	last auth.Decision
}

func (p *linePrompter) Prompt(ctx context.Context, message string) (auth.Decision, error) {
	if err := ctx.Err(); err != nil {
		return auth.DecisionCancel, err
	}

	fmt.Fprintf(p.out, "%s Login now? [y/N] ", message)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		p.last = auth.DecisionCancel
		return auth.DecisionCancel, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		p.last = auth.DecisionLogin
	default:
		p.last = auth.DecisionCancel
	}
	return p.last, nil
}
