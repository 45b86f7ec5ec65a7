package llm

import (
	"context"
)

type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Closer is implemented by embedders holding resources that must be released.
type Closer interface {
	Close() error
}
