package llm

import "context"

type Refiner interface {
	// Refine rewrites a raw transcription into clear step instructions.
	Refine(ctx context.Context, text string) (string, error)
	Close() error
}
