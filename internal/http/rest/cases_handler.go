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

func (api *API) CaseRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", Handler(api.ListCases))
	mux.Method(http.MethodGet, "/search", Handler(api.SearchCases))
	mux.Method(http.MethodGet, "/nearby", Handler(api.GetNearbyCases))
	mux.Method(http.MethodGet, "/along-route", Handler(api.GetCasesAlongRoute))
	mux.Method(http.MethodGet, "/{caseID}", Handler(api.GetCaseByID))
	mux.Method(http.MethodGet, "/{caseID}/sightings", Handler(api.GetCaseSightings))
	mux.Method(http.MethodGet, "/{caseID}/similar-sightings", Handler(api.GetSimilarSightings))
	mux.Method(http.MethodGet, "/{caseID}/video-evidence", Handler(api.GetVideoEvidence))

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/", Handler(api.CreateCase))
		r.Method(http.MethodPut, "/{caseID}", Handler(api.UpdateCase))
		r.Method(http.MethodPost, "/refresh-embeddings", Handler(api.RefreshCaseEmbeddings))
		r.Method(http.MethodPost, "/{caseID}/video-analysis", Handler(api.AnalyzeCaseVideo))
	})

	return mux
}

func (api *API) CreateCase(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.CreateCaseRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(&req); err != nil {
		return respondWithError(err, err.Error(), values.BadRequest, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	created, status, message, err := api.CreateCaseHelper(r.Context(), req, userID)
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

func (api *API) GetCaseByID(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	caseID := chi.URLParam(r, "caseID")

	c, status, message, err := api.GetCaseByIDHelper(r.Context(), caseID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       c,
	}
}

func (api *API) ListCases(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	filter := model.CaseFilter{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
	}
	page, pageSize := pageParams(r)

	paged, status, message, err := api.ListCasesHelper(r.Context(), filter, page, pageSize)
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

func (api *API) UpdateCase(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	caseID := chi.URLParam(r, "caseID")

	var req model.UpdateCaseRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(&req); err != nil {
		return respondWithError(err, err.Error(), values.BadRequest, &tc)
	}

	c, status, message, err := api.UpdateCaseHelper(r.Context(), caseID, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       c,
	}
}

func (api *API) SearchCases(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	query := r.URL.Query().Get("query")
	if query == "" {
		return respondWithError(nil, "query is required", values.BadRequest, &tc)
	}
	field := r.URL.Query().Get("field")
	page, pageSize := pageParams(r)

	paged, status, message, err := api.SearchCasesHelper(r.Context(), query, field, page, pageSize)
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

func (api *API) GetNearbyCases(_ http.ResponseWriter, r *http.Request) *ServerResponse {
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

	paged, status, message, err := api.NearbyCasesHelper(r.Context(), latitude, longitude, radius, page, pageSize)
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

func (api *API) GetCasesAlongRoute(_ http.ResponseWriter, r *http.Request) *ServerResponse {
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

	paged, status, message, err := api.CasesAlongRouteHelper(r.Context(), shape, radius, page, pageSize)
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

func (api *API) RefreshCaseEmbeddings(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	result, status, message, err := api.RefreshCaseEmbeddingsHelper(r.Context())
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

func (api *API) GetSimilarSightings(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	caseID := chi.URLParam(r, "caseID")
	radius, deltaDays, topK := rankParams(r)

	matches, status, message, err := api.SimilarSightingsHelper(r.Context(), caseID, radius, deltaDays, topK)
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

func (api *API) GetCaseSightings(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	caseID := chi.URLParam(r, "caseID")

	sightings, status, message, err := api.CaseSightingsHelper(r.Context(), caseID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       sightings,
	}
}

func (api *API) GetVideoEvidence(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	caseID := chi.URLParam(r, "caseID")

	evidence, status, message, err := api.VideoEvidenceHelper(r.Context(), caseID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       evidence,
	}
}

func (api *API) AnalyzeCaseVideo(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	caseID := chi.URLParam(r, "caseID")

	radius, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if err != nil || radius <= 0 {
		radius = 10 // km
	}

	summary, status, message, err := api.AnalyzeCaseVideoHelper(r.Context(), caseID, radius)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       summary,
	}
}

func pageParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil {
		pageSize = 20
	}
	return page, pageSize
}

func rankParams(r *http.Request) (float64, float64, int) {
	radius, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if err != nil {
		radius = 0 // no geographic narrowing
	}
	deltaDays, err := strconv.ParseFloat(r.URL.Query().Get("days"), 64)
	if err != nil {
		deltaDays = 0 // no temporal narrowing
	}
	topK, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || topK <= 0 {
		topK = 10
	}
	return radius, deltaDays, topK
}
