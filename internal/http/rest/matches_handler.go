package rest

import (
	"net/http"

	"github.com/bwise1/findlink/internal/model"
	"github.com/bwise1/findlink/util"
	"github.com/bwise1/findlink/util/tracing"
	"github.com/bwise1/findlink/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) MatchRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/", Handler(api.LinkSightingToCase))
		r.Method(http.MethodPost, "/{linkID}/confirm", Handler(api.ConfirmMatch))
		r.Method(http.MethodPost, "/{linkID}/reject", Handler(api.RejectMatch))
	})

	return mux
}

func (api *API) LinkSightingToCase(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.LinkRequest
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
	req.CreatedBy = userID

	link, status, message, err := api.LinkSightingHelper(r.Context(), req)
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

func (api *API) ConfirmMatch(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	linkID := chi.URLParam(r, "linkID")

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	link, status, message, err := api.ConfirmMatchHelper(r.Context(), linkID, userID)
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

func (api *API) RejectMatch(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	linkID := chi.URLParam(r, "linkID")

	link, status, message, err := api.RejectMatchHelper(r.Context(), linkID)
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
