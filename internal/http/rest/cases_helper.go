package rest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwise1/findlink/internal/http/videoai"
	"github.com/bwise1/findlink/internal/match"
	"github.com/bwise1/findlink/internal/model"
	"github.com/bwise1/findlink/util"
	"github.com/bwise1/findlink/util/values"
)

var (
	ErrNoSuchCase     = errors.New("case not found")
	ErrNoSuchSighting = errors.New("sighting not found")
	ErrNoCaseLocation = errors.New("case has no last-seen coordinates")
)

type CreateCaseResponse struct {
	ID string `json:"id"`
}

// VideoAnalysisSummary reports what a footage scan found and stored.
type VideoAnalysisSummary struct {
	EvidenceAdded int                      `json:"evidence_added"`
	Stats         model.VideoAnalysisStats `json:"stats"`
}

func (api *API) CreateCaseHelper(ctx context.Context, req model.CreateCaseRequest, userID string) (CreateCaseResponse, string, string, error) {
	c, err := api.buildCase(ctx, req)
	if err != nil {
		return CreateCaseResponse{}, values.BadRequest, err.Error(), err
	}
	c.CreatedBy = userID

	id, err := api.Data.CreateCase(ctx, c)
	if err != nil {
		return CreateCaseResponse{}, statusFromErr(err), "Failed to create case", err
	}
	return CreateCaseResponse{ID: id}, values.Created, "Case created successfully", nil
}

func (api *API) GetCaseByIDHelper(ctx context.Context, caseID string) (model.Case, string, string, error) {
	c, err := api.Data.GetCaseByID(ctx, caseID)
	if err != nil {
		return model.Case{}, statusFromErr(err), "Case not found", err
	}
	return c, values.Success, "Case fetched successfully", nil
}

func (api *API) ListCasesHelper(ctx context.Context, filter model.CaseFilter, page, pageSize int) (Paged, string, string, error) {
	cases, total, err := api.Data.GetCases(ctx, filter, page, pageSize)
	if err != nil {
		return Paged{}, statusFromErr(err), "Failed to fetch cases", err
	}
	if cases == nil {
		cases = []model.Case{}
	}
	return Paged{Items: cases, Total: total, Page: page, PageSize: pageSize},
		values.Success, "Cases fetched successfully", nil
}

func (api *API) UpdateCaseHelper(ctx context.Context, caseID string, req model.UpdateCaseRequest) (model.Case, string, string, error) {
	id, err := util.StringToUUID(caseID)
	if err != nil {
		return model.Case{}, values.NotFound, "Case not found", err
	}

	c, err := api.buildCase(ctx, model.CreateCaseRequest{
		Name:          req.Name,
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		LastSeenDate:  req.LastSeenDate,
		LastSeen:      req.LastSeen,
		Priority:      req.Priority,
		Circumstances: req.Circumstances,
		Description:   req.Description,
		Height:        req.Height,
		Weight:        req.Weight,
	})
	if err != nil {
		return model.Case{}, values.BadRequest, err.Error(), err
	}
	c.ID = id
	c.Status = req.Status

	ok, err := api.Data.UpdateCase(ctx, c)
	if err != nil {
		return model.Case{}, statusFromErr(err), "Failed to update case", err
	}
	if !ok {
		return model.Case{}, values.NotFound, "Case not found", ErrNoSuchCase
	}

	updated, err := api.Data.GetCaseByID(ctx, caseID)
	if err != nil {
		return model.Case{}, statusFromErr(err), "Failed to fetch updated case", err
	}
	return updated, values.Success, "Case updated successfully", nil
}

func (api *API) SearchCasesHelper(ctx context.Context, query, field string, page, pageSize int) (Paged, string, string, error) {
	cases, total, err := api.Data.SearchCases(ctx, query, field, page, pageSize)
	if err != nil {
		return Paged{}, statusFromErr(err), "Failed to search cases", err
	}
	if cases == nil {
		cases = []model.Case{}
	}
	return Paged{Items: cases, Total: total, Page: page, PageSize: pageSize},
		values.Success, "Cases searched successfully", nil
}

func (api *API) NearbyCasesHelper(ctx context.Context, lat, lon, radiusKM float64, page, pageSize int) (Paged, string, string, error) {
	cases, total, err := api.Data.SearchCasesByLocation(ctx, lat, lon, radiusKM, page, pageSize)
	if err != nil {
		return Paged{}, statusFromErr(err), "Failed to fetch nearby cases", err
	}
	if cases == nil {
		cases = []model.CaseDistance{}
	}
	return Paged{Items: cases, Total: total, Page: page, PageSize: pageSize},
		values.Success, "Nearby cases fetched successfully", nil
}

func (api *API) CasesAlongRouteHelper(ctx context.Context, shape string, radiusKM float64, page, pageSize int) (Paged, string, string, error) {
	route, err := decodeRouteShape(shape)
	if err != nil {
		return Paged{}, values.BadRequest, "invalid route shape", err
	}

	cases, total, err := api.Data.SearchCasesAlongRoute(ctx, route, radiusKM, page, pageSize)
	if err != nil {
		return Paged{}, statusFromErr(err), "Failed to fetch cases along route", err
	}
	if cases == nil {
		cases = []model.CaseDistance{}
	}
	return Paged{Items: cases, Total: total, Page: page, PageSize: pageSize},
		values.Success, "Cases along route fetched successfully", nil
}

func (api *API) RefreshCaseEmbeddingsHelper(ctx context.Context) (interface{}, string, string, error) {
	result, err := api.Data.UpdateCaseEmbeddings(ctx)
	if err != nil {
		return nil, statusFromErr(err), "Failed to refresh case embeddings", err
	}
	return result, values.Success, "Case embeddings refreshed", nil
}

func (api *API) SimilarSightingsHelper(ctx context.Context, caseID string, radiusKM, deltaDays float64, topK int) ([]match.RankedMatch, string, string, error) {
	matches, err := api.Data.FindSimilarSightings(ctx, caseID, radiusKM, deltaDays, topK)
	if err != nil {
		return nil, statusFromErr(err), "Failed to rank similar sightings", err
	}
	if matches == nil {
		matches = []match.RankedMatch{}
	}
	return matches, values.Success, "Similar sightings ranked successfully", nil
}

func (api *API) CaseSightingsHelper(ctx context.Context, caseID string) ([]model.CaseSighting, string, string, error) {
	sightings, err := api.Data.GetCaseSightings(ctx, caseID)
	if err != nil {
		return nil, statusFromErr(err), "Failed to fetch case sightings", err
	}
	if sightings == nil {
		sightings = []model.CaseSighting{}
	}
	return sightings, values.Success, "Case sightings fetched successfully", nil
}

func (api *API) VideoEvidenceHelper(ctx context.Context, caseID string) ([]model.VideoAnalysisResult, string, string, error) {
	evidence, err := api.Data.GetVideoEvidenceForCase(ctx, caseID)
	if err != nil {
		return nil, statusFromErr(err), "Failed to fetch video evidence", err
	}
	if evidence == nil {
		evidence = []model.VideoAnalysisResult{}
	}
	return evidence, values.Success, "Video evidence fetched successfully", nil
}

func (api *API) AnalyzeCaseVideoHelper(ctx context.Context, caseID string, radiusKM float64) (VideoAnalysisSummary, string, string, error) {
	c, err := api.Data.GetCaseByID(ctx, caseID)
	if err != nil {
		return VideoAnalysisSummary{}, statusFromErr(err), "Case not found", err
	}
	if !c.LastSeen.HasCoordinates() {
		return VideoAnalysisSummary{}, values.BadRequest, "case has no last-seen coordinates", ErrNoCaseLocation
	}

	resp, err := api.Deps.VideoAI.AnalyzeVideos(ctx, videoai.AnalysisRequest{
		CaseID:           caseID,
		PersonDescriptor: c.EmbeddingText(),
		FromTime:         c.LastSeenDate,
		ToTime:           time.Now(),
		CenterLatitude:   *c.LastSeen.Latitude,
		CenterLongitude:  *c.LastSeen.Longitude,
		RadiusKM:         radiusKM,
	})
	if err != nil {
		return VideoAnalysisSummary{}, statusFromErr(err), "Video analysis failed", err
	}

	added, err := api.Data.AddVideoEvidence(ctx, caseID, resp.Results)
	if err != nil {
		return VideoAnalysisSummary{}, statusFromErr(err), "Failed to store video evidence", err
	}
	return VideoAnalysisSummary{EvidenceAdded: added, Stats: resp.Stats},
		values.Success, "Video analysis completed", nil
}

// buildCase converts an API request into a case record. Geocoding is best
// effort: a failure leaves the location coordinates empty.
func (api *API) buildCase(ctx context.Context, req model.CreateCaseRequest) (model.Case, error) {
	lastSeen, err := parseDate(req.LastSeenDate)
	if err != nil {
		return model.Case{}, err
	}

	c := model.Case{
		Name:          req.Name,
		Gender:        req.Gender,
		LastSeenDate:  lastSeen,
		LastSeen:      req.LastSeen,
		Priority:      req.Priority,
		Circumstances: req.Circumstances,
		Description:   req.Description,
	}

	if req.DateOfBirth != "" {
		dob, err := parseDate(req.DateOfBirth)
		if err != nil {
			return model.Case{}, err
		}
		c.DateOfBirth = &dob
	}
	if height, ok := util.ParseHeightCM(req.Height); ok {
		c.HeightCM = &height
	}
	if weight, ok := util.ParseWeightKG(req.Weight); ok {
		c.WeightKG = &weight
	}

	api.geocodeLocation(ctx, &c.LastSeen)
	return c, nil
}

// geocodeLocation fills coordinates from the address text when none were
// supplied. A geocoder failure never blocks the save.
func (api *API) geocodeLocation(ctx context.Context, loc *model.Location) {
	if loc.HasCoordinates() || api.Deps == nil || api.Deps.Geocoder == nil {
		return
	}

	parts := []string{}
	for _, p := range []string{loc.Address, loc.City, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return
	}

	coords, err := api.Deps.Geocoder.Geocode(ctx, strings.Join(parts, ", "))
	if err != nil || coords == nil {
		return
	}
	loc.SetCoordinates(coords.Latitude, coords.Longitude)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func decodeRouteShape(shape string) ([]match.Coordinate, error) {
	coords, err := util.DecodeRoute(shape)
	if err != nil {
		return nil, err
	}

	route := make([]match.Coordinate, 0, len(coords))
	for _, c := range coords {
		route = append(route, match.Coordinate{Lat: c[0], Lon: c[1]})
	}
	return route, nil
}
