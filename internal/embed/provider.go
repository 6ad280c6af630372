package embed

import (
	"context"
	"errors"
)

var (
	ErrProviderTimeout     = errors.New("embedding provider exceeded its time budget")
	ErrProviderUnavailable = errors.New("embedding provider unreachable or unconfigured")
)

// Result reports the outcome of an embedding refresh run.
type Result struct {
	Success      bool   `json:"success"`
	RowsModified int    `json:"rows_modified"`
	Message      string `json:"message"`
}

// Provider is the external embedding capability the matching core depends
// on. Implementations may be remote services or the local fallback embedder.
type Provider interface {
	// Embed returns a fixed-size vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// Distance returns the provider-defined distance between two vectors,
	// lower meaning more similar, bounded in [0, 2].
	Distance(a, b []float64) (float64, error)
	// Summary returns a short human-readable match summary for display.
	Summary(candidateID string, similarity float64) string
}
