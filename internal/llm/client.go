// Package llm provides the gateway to the chat-completion provider and
// helpers for pulling structured JSON out of free-form model output.
package llm

import "context"

// Message is one role-tagged turn sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends an ordered conversation plus an optional system instruction to
// the provider and returns the raw completion text. Implementations do not
// retry; retry policy belongs to callers.
type Client interface {
	Complete(ctx context.Context, messages []Message, systemPrompt string) (string, error)
}
