package llm

import "context"

type Message struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

// Client is a single-capability text generator. Implementations send
// the system prompt, prior exchanges, and the new user message, and
// return the model's reply.
type Client interface {
	Generate(ctx context.Context, systemPrompt string, history []Message, userMessage string) (string, error)
}
