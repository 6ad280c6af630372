package rest

import (
	"net/http"
	"strconv"

	"github.com/bwise1/findlink/internal/model"
	"github.com/bwise1/findlink/util"
	"github.com/bwise1/findlink/util/tracing"
	"github.com/bwise1/findlink/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) SightingRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", Handler(api.ListSightings))
	mux.Method(http.MethodGet, "/search", Handler(api.SearchSightings))
	mux.Method(http.MethodGet, "/nearby", Handler(api.GetNearbySightings))
	mux.Method(http.MethodGet, "/along-route", Handler(api.GetSightingsAlongRoute))
	mux.Method(http.MethodGet, "/{sightingID}", Handler(api.GetSightingByID))
	mux.Method(http.MethodGet, "/{sightingID}/similar-cases", Handler(api.GetSimilarCases))
	mux.Method(http.MethodGet, "/{sightingID}/linked-case", Handler(api.GetLinkedCase))

	// Sighting intake stays open: witnesses report without an account.
	mux.Method(http.MethodPost, "/", Handler(api.CreateSighting))

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPut, "/{sightingID}", Handler(api.UpdateSighting))
		r.Method(http.MethodPost, "/refresh-embeddings", Handler(api.RefreshSightingEmbeddings))
		r.Method(http.MethodPost, "/{sightingID}/verify", Handler(api.VerifySighting))
		r.Method(http.MethodPost, "/{sightingID}/reject", Handler(api.RejectSighting))
	})

	return mux
}

func (api *API) CreateSighting(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.CreateSightingRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(&req); err != nil {
		return respondWithError(err, err.Error(), values.BadRequest, &tc)
	}

	// Optional: authenticated reporters get attributed.
	reportedBy, _ := util.GetUserIDFromContext(r.Context())

	created, status, message, err := api.CreateSightingHelper(r.Context(), req, reportedBy)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       created,
	}
}

func (api *API) GetSightingByID(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	sightingID := chi.URLParam(r, "sightingID")

	s, status, message, err := api.GetSightingByIDHelper(r.Context(), sightingID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       s,
	}
}

func (api *API) ListSightings(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	filter := model.SightingFilter{
		Status:          r.URL.Query().Get("status"),
		ConfidenceLevel: r.URL.Query().Get("confidence"),
		SourceType:      r.URL.Query().Get("source"),
	}
	page, pageSize := pageParams(r)

	paged, status, message, err := api.ListSightingsHelper(r.Context(), filter, page, pageSize)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       paged,
	}
}

func (api *API) UpdateSighting(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	sightingID := chi.URLParam(r, "sightingID")

	var req model.UpdateSightingRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(&req); err != nil {
		return respondWithError(err, err.Error(), values.BadRequest, &tc)
	}

	s, status, message, err := api.UpdateSightingHelper(r.Context(), sightingID, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       s,
	}
}

func (api *API) SearchSightings(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	query := r.URL.Query().Get("query")
	if query == "" {
		return respondWithError(nil, "query is required", values.BadRequest, &tc)
	}
	field := r.URL.Query().Get("field")
	page, pageSize := pageParams(r)

	paged, status, message, err := api.SearchSightingsHelper(r.Context(), query, field, page, pageSize)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       paged,
	}
}

func (api *API) GetNearbySightings(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	latitude, err := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	if err != nil {
		return respondWithError(err, "invalid latitude", values.BadRequest, &tc)
	}
	longitude, err := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if err != nil {
		return respondWithError(err, "invalid longitude", values.BadRequest, &tc)
	}
	radius, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if err != nil || radius <= 0 {
		radius = 10 // km
	}
	page, pageSize := pageParams(r)

	paged, status, message, err := api.NearbySightingsHelper(r.Context(), latitude, longitude, radius, page, pageSize)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       paged,
	}
}

func (api *API) GetSightingsAlongRoute(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	shape := r.URL.Query().Get("route")
	if shape == "" {
		return respondWithError(nil, "route is required", values.BadRequest, &tc)
	}
	radius, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if err != nil || radius <= 0 {
		radius = 5 // km
	}
	page, pageSize := pageParams(r)

	paged, status, message, err := api.SightingsAlongRouteHelper(r.Context(), shape, radius, page, pageSize)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       paged,
	}
}

func (api *API) RefreshSightingEmbeddings(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	result, status, message, err := api.RefreshSightingEmbeddingsHelper(r.Context())
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       result,
	}
}

func (api *API) GetSimilarCases(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	sightingID := chi.URLParam(r, "sightingID")
	radius, deltaDays, topK := rankParams(r)

	matches, status, message, err := api.SimilarCasesHelper(r.Context(), sightingID, radius, deltaDays, topK)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       matches,
	}
}

func (api *API) GetLinkedCase(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	sightingID := chi.URLParam(r, "sightingID")

	link, status, message, err := api.LinkedCaseHelper(r.Context(), sightingID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       link,
	}
}

func (api *API) VerifySighting(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	sightingID := chi.URLParam(r, "sightingID")

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	s, status, message, err := api.VerifySightingHelper(r.Context(), sightingID, userID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       s,
	}
}

func (api *API) RejectSighting(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	sightingID := chi.URLParam(r, "sightingID")

	s, status, message, err := api.RejectSightingHelper(r.Context(), sightingID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       s,
	}
}
