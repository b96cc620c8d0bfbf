package embedding

import "context"

// Provider converts text into a fixed-length numeric vector.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
