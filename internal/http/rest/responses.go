package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/bwise1/findlink/internal/embed"
	"github.com/bwise1/findlink/internal/http/videoai"
	"github.com/bwise1/findlink/internal/store"
	"github.com/bwise1/findlink/util"
	"github.com/bwise1/findlink/util/tracing"
	"github.com/bwise1/findlink/util/values"
)

type ServerResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	StatusCode int         `json:"-"`
}

// Paged wraps a listing with its pagination envelope.
type Paged struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func writeJSONResponse(w http.ResponseWriter, body []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Println("error writing response", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, err error, status, message string) {
	log.Println("request failed:", message, "error:", err)

	resp := ServerResponse{
		Status:  status,
		Message: message,
	}
	body, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		http.Error(w, message, http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, body, util.StatusCode(status))
}

func respondWithError(err error, message, status string, tc *tracing.Context) *ServerResponse {
	if tc != nil {
		log.Printf("[%s] %s: %v", tc.RequestID, message, err)
	} else {
		log.Printf("%s: %v", message, err)
	}
	return &ServerResponse{
		Status:     status,
		Message:    message,
		StatusCode: util.StatusCode(status),
	}
}

// statusFromErr maps service errors onto response statuses. Unrecognized
// errors stay internal.
func statusFromErr(err error) string {
	switch {
	case errors.Is(err, store.ErrCaseNotFound),
		errors.Is(err, store.ErrSightingNotFound),
		errors.Is(err, store.ErrLinkNotFound):
		return values.NotFound
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, store.ErrInvalidConfidence):
		return values.BadRequest
	case errors.Is(err, store.ErrLinkTerminal),
		errors.Is(err, store.ErrSightingFinal):
		return values.Conflict
	case errors.Is(err, store.ErrEmbeddingsUnavailable):
		return values.Unprocessable
	case errors.Is(err, embed.ErrProviderTimeout),
		errors.Is(err, videoai.ErrAnalysisTimeout):
		return values.Timeout
	case errors.Is(err, embed.ErrProviderUnavailable),
		errors.Is(err, videoai.ErrUnavailable):
		return values.Unavailable
	default:
		return values.Error
	}
}
