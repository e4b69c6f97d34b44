package auth

import "sync"

// Handoff carries a token from the login callback to the next [Store.Restore].
//
// It holds at most one token; [Handoff.Take] scrubs it.
type Handoff struct {
	mu    sync.Mutex
	token string
}

// NewHandoff creates an empty [Handoff].
func NewHandoff() *Handoff {
	return &Handoff{}
}

// Deliver places token in the handoff, replacing any token not yet taken.
func (h *Handoff) Deliver(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// Take returns the pending token and clears it.
func (h *Handoff) Take() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	token := h.token
	h.token = ""
	return token, token != ""
}

// Pending reports whether a token is waiting.
func (h *Handoff) Pending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token != ""
}
