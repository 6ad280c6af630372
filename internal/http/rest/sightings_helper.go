package rest

import (
	"context"
	"encoding/json"
	"log"

	"github.com/bwise1/findlink/internal/match"
	"github.com/bwise1/findlink/internal/model"
	"github.com/bwise1/findlink/util"
	"github.com/bwise1/findlink/util/values"
	"github.com/bwise1/findlink/util/websockets"
)

type CreateSightingResponse struct {
	ID string `json:"id"`
}

func (api *API) CreateSightingHelper(ctx context.Context, req model.CreateSightingRequest, reportedBy string) (CreateSightingResponse, string, string, error) {
	s, err := api.buildSighting(ctx, req)
	if err != nil {
		return CreateSightingResponse{}, values.BadRequest, err.Error(), err
	}
	s.ReportedBy = reportedBy

	id, err := api.Data.CreateSighting(ctx, s)
	if err != nil {
		return CreateSightingResponse{}, statusFromErr(err), "Failed to create sighting", err
	}

	api.notifySighting(ctx, id)
	return CreateSightingResponse{ID: id}, values.Created, "Sighting created successfully", nil
}

// notifySighting pushes the new sighting to subscribers watching its area.
func (api *API) notifySighting(ctx context.Context, id string) {
	if api.Deps == nil || api.Deps.WebSocket == nil {
		return
	}

	s, err := api.Data.GetSightingByID(ctx, id)
	if err != nil || !s.Sighted.HasCoordinates() {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":     websockets.MsgTypeSightingUpdate,
		"sighting": s,
	})
	if err != nil {
		log.Println("error marshalling sighting update", err)
		return
	}
	api.Deps.WebSocket.BroadcastNearby(payload, *s.Sighted.Latitude, *s.Sighted.Longitude)
}

func (api *API) GetSightingByIDHelper(ctx context.Context, sightingID string) (model.Sighting, string, string, error) {
	s, err := api.Data.GetSightingByID(ctx, sightingID)
	if err != nil {
		return model.Sighting{}, statusFromErr(err), "Sighting not found", err
	}
	return s, values.Success, "Sighting fetched successfully", nil
}

func (api *API) ListSightingsHelper(ctx context.Context, filter model.SightingFilter, page, pageSize int) (Paged, string, string, error) {
	sightings, total, err := api.Data.GetSightings(ctx, filter, page, pageSize)
	if err != nil {
		return Paged{}, statusFromErr(err), "Failed to fetch sightings", err
	}
	if sightings == nil {
		sightings = []model.Sighting{}
	}
	return Paged{Items: sightings, Total: total, Page: page, PageSize: pageSize},
		values.Success, "Sightings fetched successfully", nil
}

func (api *API) UpdateSightingHelper(ctx context.Context, sightingID string, req model.UpdateSightingRequest) (model.Sighting, string, string, error) {
	id, err := util.StringToUUID(sightingID)
	if err != nil {
		return model.Sighting{}, values.NotFound, "Sighting not found", err
	}

	s, err := api.buildSighting(ctx, model.CreateSightingRequest{
		SightedDate:     req.SightedDate,
		Sighted:         req.Sighted,
		ApparentGender:  req.ApparentGender,
		ApparentAge:     req.ApparentAge,
		Height:          req.Height,
		Weight:          req.Weight,
		Description:     req.Description,
		ConfidenceLevel: req.ConfidenceLevel,
		SourceType:      req.SourceType,
		Priority:        req.Priority,
	})
	if err != nil {
		return model.Sighting{}, values.BadRequest, err.Error(), err
	}
	s.ID = id

	ok, err := api.Data.UpdateSighting(ctx, s)
	if err != nil {
		return model.Sighting{}, statusFromErr(err), "Failed to update sighting", err
	}
	if !ok {
		return model.Sighting{}, values.NotFound, "Sighting not found", ErrNoSuchSighting
	}

	updated, err := api.Data.GetSightingByID(ctx, sightingID)
	if err != nil {
		return model.Sighting{}, statusFromErr(err), "Failed to fetch updated sighting", err
	}
	return updated, values.Success, "Sighting updated successfully", nil
}

func (api *API) SearchSightingsHelper(ctx context.Context, query, field string, page, pageSize int) (Paged, string, string, error) {
	sightings, total, err := api.Data.SearchSightings(ctx, query, field, page, pageSize)
	if err != nil {
		return Paged{}, statusFromErr(err), "Failed to search sightings", err
	}
	if sightings == nil {
		sightings = []model.Sighting{}
	}
	return Paged{Items: sightings, Total: total, Page: page, PageSize: pageSize},
		values.Success, "Sightings searched successfully", nil
}

func (api *API) NearbySightingsHelper(ctx context.Context, lat, lon, radiusKM float64, page, pageSize int) (Paged, string, string, error) {
	sightings, total, err := api.Data.SearchSightingsByLocation(ctx, lat, lon, radiusKM, page, pageSize)
	if err != nil {
		return Paged{}, statusFromErr(err), "Failed to fetch nearby sightings", err
	}
	if sightings == nil {
		sightings = []model.SightingDistance{}
	}
	return Paged{Items: sightings, Total: total, Page: page, PageSize: pageSize},
		values.Success, "Nearby sightings fetched successfully", nil
}

func (api *API) SightingsAlongRouteHelper(ctx context.Context, shape string, radiusKM float64, page, pageSize int) (Paged, string, string, error) {
	route, err := decodeRouteShape(shape)
	if err != nil {
		return Paged{}, values.BadRequest, "invalid route shape", err
	}

	sightings, total, err := api.Data.SearchSightingsAlongRoute(ctx, route, radiusKM, page, pageSize)
	if err != nil {
		return Paged{}, statusFromErr(err), "Failed to fetch sightings along route", err
	}
	if sightings == nil {
		sightings = []model.SightingDistance{}
	}
	return Paged{Items: sightings, Total: total, Page: page, PageSize: pageSize},
		values.Success, "Sightings along route fetched successfully", nil
}

func (api *API) RefreshSightingEmbeddingsHelper(ctx context.Context) (interface{}, string, string, error) {
	result, err := api.Data.UpdateSightingEmbeddings(ctx)
	if err != nil {
		return nil, statusFromErr(err), "Failed to refresh sighting embeddings", err
	}
	return result, values.Success, "Sighting embeddings refreshed", nil
}

func (api *API) SimilarCasesHelper(ctx context.Context, sightingID string, radiusKM, deltaDays float64, topK int) ([]match.RankedMatch, string, string, error) {
	matches, err := api.Data.FindSimilarCases(ctx, sightingID, radiusKM, deltaDays, topK)
	if err != nil {
		return nil, statusFromErr(err), "Failed to rank similar cases", err
	}
	if matches == nil {
		matches = []match.RankedMatch{}
	}
	return matches, values.Success, "Similar cases ranked successfully", nil
}

func (api *API) LinkedCaseHelper(ctx context.Context, sightingID string) (*model.MatchLink, string, string, error) {
	link, err := api.Data.GetLinkedCaseForSighting(ctx, sightingID)
	if err != nil {
		return nil, statusFromErr(err), "Failed to fetch linked case", err
	}
	return link, values.Success, "Linked case fetched successfully", nil
}

func (api *API) VerifySightingHelper(ctx context.Context, sightingID, userID string) (model.Sighting, string, string, error) {
	s, err := api.Data.VerifySighting(ctx, sightingID, userID)
	if err != nil {
		return model.Sighting{}, statusFromErr(err), "Failed to verify sighting", err
	}
	return s, values.Success, "Sighting verified successfully", nil
}

func (api *API) RejectSightingHelper(ctx context.Context, sightingID string) (model.Sighting, string, string, error) {
	s, err := api.Data.RejectSighting(ctx, sightingID)
	if err != nil {
		return model.Sighting{}, statusFromErr(err), "Failed to reject sighting", err
	}
	return s, values.Success, "Sighting rejected successfully", nil
}

// buildSighting converts an API request into a sighting record. The age
// range is derived from the apparent age when not supplied.
func (api *API) buildSighting(ctx context.Context, req model.CreateSightingRequest) (model.Sighting, error) {
	sighted, err := parseDate(req.SightedDate)
	if err != nil {
		return model.Sighting{}, err
	}

	s := model.Sighting{
		SightedDate:     sighted,
		Sighted:         req.Sighted,
		ApparentGender:  req.ApparentGender,
		ApparentAge:     req.ApparentAge,
		Description:     req.Description,
		ConfidenceLevel: req.ConfidenceLevel,
		SourceType:      req.SourceType,
		Priority:        req.Priority,
	}

	if req.ApparentAge != nil {
		s.AgeRange = util.AgeBucket(*req.ApparentAge)
	}
	if height, ok := util.ParseHeightCM(req.Height); ok {
		s.HeightCM = &height
	}
	if weight, ok := util.ParseWeightKG(req.Weight); ok {
		s.WeightKG = &weight
	}

	api.geocodeLocation(ctx, &s.Sighted)
	return s, nil
}
