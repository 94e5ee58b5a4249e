package embedding

import "context"

// Provider turns text into a unit-length embedding vector.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
