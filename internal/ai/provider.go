package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a synchronous chat-completion backend. Implementations must
// honor ctx cancellation and carry their own request timeout.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// JSONChatter is an optional interface. Providers that support structured
// output implement it; callers that need machine-parseable replies (the
// moderation arbiter) prefer it over plain Chat when available.
type JSONChatter interface {
	ChatJSON(ctx context.Context, messages []Message) (string, error)
}
