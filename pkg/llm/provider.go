package llm

import "context"

// Message is one role/content pair of conversation context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates a completion from a system prompt and conversation
// history. Implementations fail closed: on any error they return a canned
// fallback string instead of propagating, so the discussion flow never sees
// a provider outage as an error.
type Provider interface {
	Complete(ctx context.Context, systemPrompt string, history []Message) string
}
