package store

import (
	"context"
	"errors"

	"github.com/bwise1/findlink/internal/embed"
	"github.com/bwise1/findlink/internal/match"
	"github.com/bwise1/findlink/internal/model"
)

var (
	ErrCaseNotFound     = errors.New("case not found")
	ErrSightingNotFound = errors.New("sighting not found")
	ErrLinkNotFound     = errors.New("match link not found")

	ErrValidation        = errors.New("invalid input")
	ErrInvalidConfidence = errors.New("confidence must be within [0, 1]")
	ErrLinkTerminal      = errors.New("match link is already confirmed or rejected")
	ErrSightingFinal     = errors.New("sighting is already verified or rejected")

	// ErrEmbeddingsUnavailable means ranking was requested before an
	// embedding refresh. The caller runs the refresh and retries; the
	// store never triggers it on its own.
	ErrEmbeddingsUnavailable = match.ErrEmbeddingsMissing
)

// DataService is the contract the REST layer consumes. Backends are chosen
// by configuration at startup: an in-memory store for standalone and test
// deployments, and a Postgres store for production.
//
// Concurrent updates to the same record are last-writer-wins; there is no
// optimistic locking.
type DataService interface {
	GetCases(ctx context.Context, filter model.CaseFilter, page, pageSize int) ([]model.Case, int, error)
	GetCaseByID(ctx context.Context, id string) (model.Case, error)
	CreateCase(ctx context.Context, c model.Case) (string, error)
	// UpdateCase returns false (not an error) when the id does not exist.
	UpdateCase(ctx context.Context, c model.Case) (bool, error)
	SearchCases(ctx context.Context, query, field string, page, pageSize int) ([]model.Case, int, error)
	SearchCasesByLocation(ctx context.Context, lat, lon, radiusKM float64, page, pageSize int) ([]model.CaseDistance, int, error)
	SearchCasesAlongRoute(ctx context.Context, route []match.Coordinate, radiusKM float64, page, pageSize int) ([]model.CaseDistance, int, error)

	GetSightings(ctx context.Context, filter model.SightingFilter, page, pageSize int) ([]model.Sighting, int, error)
	GetSightingByID(ctx context.Context, id string) (model.Sighting, error)
	CreateSighting(ctx context.Context, s model.Sighting) (string, error)
	UpdateSighting(ctx context.Context, s model.Sighting) (bool, error)
	SearchSightings(ctx context.Context, query, field string, page, pageSize int) ([]model.Sighting, int, error)
	SearchSightingsByLocation(ctx context.Context, lat, lon, radiusKM float64, page, pageSize int) ([]model.SightingDistance, int, error)
	SearchSightingsAlongRoute(ctx context.Context, route []match.Coordinate, radiusKM float64, page, pageSize int) ([]model.SightingDistance, int, error)
	VerifySighting(ctx context.Context, id, verifiedBy string) (model.Sighting, error)
	RejectSighting(ctx context.Context, id string) (model.Sighting, error)

	// Embedding refresh is an explicit step: ranking fails with
	// ErrEmbeddingsUnavailable until it has run for the source entity.
	UpdateCaseEmbeddings(ctx context.Context) (embed.Result, error)
	UpdateSightingEmbeddings(ctx context.Context) (embed.Result, error)
	FindSimilarSightings(ctx context.Context, caseID string, radiusKM, deltaDays float64, topK int) ([]match.RankedMatch, error)
	FindSimilarCases(ctx context.Context, sightingID string, radiusKM, deltaDays float64, topK int) ([]match.RankedMatch, error)

	GetCaseSightings(ctx context.Context, caseID string) ([]model.CaseSighting, error)
	// LinkSightingToCase upserts: a non-rejected link already present for
	// the pair is updated in place rather than duplicated.
	LinkSightingToCase(ctx context.Context, req model.LinkRequest) (model.MatchLink, error)
	ConfirmMatch(ctx context.Context, linkID, confirmedBy string) (model.MatchLink, error)
	RejectMatch(ctx context.Context, linkID string) (model.MatchLink, error)
	GetLinkedCaseForSighting(ctx context.Context, sightingID string) (*model.MatchLink, error)

	GetVideoEvidenceForCase(ctx context.Context, caseID string) ([]model.VideoAnalysisResult, error)
	// AddVideoEvidence is idempotent per (camera_id, timestamp) entry so a
	// cancelled analysis racing its own completion cannot write twice.
	AddVideoEvidence(ctx context.Context, caseID string, results []model.VideoAnalysisResult) (int, error)
}

func validPage(page, pageSize int) error {
	if page < 1 || pageSize <= 0 {
		return ErrValidation
	}
	return nil
}
