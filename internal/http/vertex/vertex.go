package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bwise1/findlink/internal/embed"
)

// VertexClient handles communication with the remote embedding service.
// It implements embed.Provider; the matching core only sees the interface.
type VertexClient struct {
	BaseURL string
	APIKey  string // IMPORTANT: Handle your API Key securely! Load from environment variable.
	Client  *http.Client
}

// NewVertexClient creates a new embedding service client instance
func NewVertexClient(baseURL, apiKey string) *VertexClient {
	if apiKey == "" {
		log.Println("Warning: embedding service API Key is empty.")
	}
	return &VertexClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// EmbedRequest is the request body for the embedding endpoint
type EmbedRequest struct {
	Text string `json:"text"`
}

// EmbedResponse represents the embedding endpoint response
type EmbedResponse struct {
	Embedding []float64 `json:"embedding"`
	Status    string    `json:"status"` // "OK", "OVER_QUERY_LIMIT", "ERROR"
	Message   string    `json:"message,omitempty"`
}

// Embed returns the service's vector for the given text.
func (vc *VertexClient) Embed(ctx context.Context, text string) ([]float64, error) {
	if vc.APIKey == "" || vc.BaseURL == "" {
		return nil, embed.ErrProviderUnavailable
	}

	body, err := json.Marshal(EmbedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, vc.BaseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+vc.APIKey)

	resp, err := vc.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, embed.ErrProviderTimeout
		}
		return nil, embed.ErrProviderUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("embedding service error: status %d", resp.StatusCode)
		return nil, embed.ErrProviderUnavailable
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var embedResp EmbedResponse
	if err := json.Unmarshal(bodyBytes, &embedResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if embedResp.Status != "OK" || len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service rejected request: %s", embedResp.Message)
	}
	return embedResp.Embedding, nil
}

// Distance is cosine distance over the service's vectors. The service
// returns unit-length vectors, so the dot product is enough.
func (vc *VertexClient) Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty embedding")
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	return 1 - dot, nil
}

func (vc *VertexClient) Summary(candidateID string, similarity float64) string {
	return fmt.Sprintf("semantic similarity %.0f%%", similarity*100)
}
