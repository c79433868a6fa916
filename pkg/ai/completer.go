package ai

import "context"

// Message is one turn of a chat-completions conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer generates a reply from a system prompt and prior conversation turns.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, turns []Message) (string, error)
}
