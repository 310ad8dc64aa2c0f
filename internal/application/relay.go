package application

import "context"

// Relay forwards a prompt to a language model and returns the generated text.
// Failures are *domain.RelayError values.
type Relay interface {
	SendPrompt(ctx context.Context, prompt string) (string, error)
	Name() string
}
