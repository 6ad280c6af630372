package videoai

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

	"github.com/bwise1/findlink/internal/model"
)

// The video-analysis backend scans camera footage in a geographic and
// temporal window; a full run can take minutes. Callers get a distinct
// timeout error at the 300s budget so the UI can suggest narrowing the
// search window instead of retrying blindly.
const analysisBudget = 300 * time.Second

var (
	ErrAnalysisTimeout = errors.New("video analysis exceeded its 300s budget")
	ErrUnavailable     = errors.New("video analysis service unreachable or unconfigured")
)

// VideoAIClient handles communication with the video-analysis service
type VideoAIClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVideoAIClient creates a new video-analysis client instance
func NewVideoAIClient(baseURL, apiKey string) *VideoAIClient {
	if apiKey == "" {
		log.Println("Warning: video analysis API Key is empty.")
	}
	return &VideoAIClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: analysisBudget},
	}
}

// AnalysisRequest describes the search window for a case
type AnalysisRequest struct {
	CaseID           string    `json:"case_id"`
	PersonDescriptor string    `json:"person_descriptor"`
	FromTime         time.Time `json:"from_time"`
	ToTime           time.Time `json:"to_time"`
	CenterLatitude   float64   `json:"center_latitude"`
	CenterLongitude  float64   `json:"center_longitude"`
	RadiusKM         float64   `json:"radius_km"`
}

// AnalysisResponse is the provider's full answer
type AnalysisResponse struct {
	Results []model.VideoAnalysisResult `json:"results"`
	Stats   model.VideoAnalysisStats    `json:"stats"`
	Status  string                      `json:"status"` // "OK", "ERROR"
	Message string                      `json:"message,omitempty"`
}

// AnalyzeVideos runs a footage scan for the given window. Results are
// read-only provider output; the caller persists them as evidence.
func (vc *VideoAIClient) AnalyzeVideos(ctx context.Context, request AnalysisRequest) (*AnalysisResponse, error) {
	if vc.APIKey == "" || vc.BaseURL == "" {
		return nil, ErrUnavailable
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, analysisBudget)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, vc.BaseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+vc.APIKey)

	resp, err := vc.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrAnalysisTimeout
		}
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("video analysis error: status %d", resp.StatusCode)
		return nil, fmt.Errorf("video analysis API error: status %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var analysisResp AnalysisResponse
	if err := json.Unmarshal(bodyBytes, &analysisResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if analysisResp.Status != "OK" {
		return nil, fmt.Errorf("video analysis rejected request: %s", analysisResp.Message)
	}
	return &analysisResp, nil
}
