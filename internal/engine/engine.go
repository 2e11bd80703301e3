// Package engine defines the reasoning-engine capability the responders and
// router depend on, and an HTTP client for OpenAI-compatible chat endpoints.
package engine

import "context"

// Message is one turn of conversation context sent to the engine.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Request carries everything one completion needs.
type Request struct {
	System      string
	History     []Message
	User        string
	MaxTokens   int
	Temperature float64
}

// Completion is the engine's answer.
type Completion struct {
	Text   string
	Tokens int
}

// Engine is the external reasoning capability, treated as opaque. Tests
// substitute a mock.
type Engine interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}
