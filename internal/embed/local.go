package embed

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"math"
	"strings"
)

// LocalEmbedder produces deterministic hash-based embeddings without calling
// an external service. It backs the in-memory store and keeps matching
// usable when no provider is configured; real deployments point the store at
// a remote provider instead.
type LocalEmbedder struct {
	dimensions int
}

func NewLocalEmbedder(dimensions int) *LocalEmbedder {
	if dimensions < 16 {
		dimensions = 16
	}
	return &LocalEmbedder{dimensions: dimensions}
}

// Embed creates a unit-length vector from the text. Token-level hashing
// means texts sharing words land near each other, which is enough signal
// for ranking tests and degraded-mode operation.
func (le *LocalEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vector := make([]float64, le.dimensions)
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return vector, nil
	}

	for _, token := range strings.Fields(text) {
		hash := md5.Sum([]byte(token))
		for i := 0; i < le.dimensions; i++ {
			b := hash[i%len(hash)]
			vector[i] += (float64(b)/255.0)*2.0 - 1.0
		}
	}

	// Normalize to unit length.
	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector, nil
}

// Distance is cosine distance: 0 for identical direction, up to 2 for
// opposite vectors.
func (le *LocalEmbedder) Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.New("embedding dimension mismatch")
	}
	if len(a) == 0 {
		return 0, errors.New("empty embedding")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 2, nil
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}

func (le *LocalEmbedder) Summary(candidateID string, similarity float64) string {
	switch {
	case similarity >= 0.8:
		return fmt.Sprintf("strong descriptor overlap (%.0f%%)", similarity*100)
	case similarity >= 0.5:
		return fmt.Sprintf("partial descriptor overlap (%.0f%%)", similarity*100)
	default:
		return fmt.Sprintf("weak descriptor overlap (%.0f%%)", similarity*100)
	}
}
