package driven

import "context"

// TextModel defines the driven port for single-turn prompt completion
// against a generative text API. Implementations return the raw completion
// text; no structured-output guarantee is assumed, so callers must tolerate
// free text wrapping any expected JSON.
type TextModel interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
