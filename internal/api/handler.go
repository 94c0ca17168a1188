package api

import (
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/text2sql-agent/internal/guardrails"
	"github.com/povarna/text2sql-agent/internal/middleware"
	"github.com/povarna/text2sql-agent/internal/session"
	"github.com/povarna/text2sql-agent/internal/text2sql"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service *text2sql.Service
	engine  *guardrails.Engine
	store   session.Store
}

func NewHandler(service *text2sql.Service, engine *guardrails.Engine, store session.Store) *Handler {
	return &Handler{
		service: service,
		engine:  engine,
		store:   store,
	}
}

// Query handles POST /api/v1/text2sql/query
func (h *Handler) Query(req *restful.Request, resp *restful.Response) {
	var queryRequest QueryRequest

	if err := req.ReadEntity(&queryRequest); err != nil {
		log.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := queryRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	log.Info().
		Str("query", queryRequest.Query).
		Str("session_id", queryRequest.SessionID).
		Msg("Process Query")

	ctx := req.Request.Context()

	response, err := h.service.ProcessQuery(ctx, text2sql.Request{
		Query:     queryRequest.Query,
		SessionID: queryRequest.SessionID,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to process query")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, toQueryResponse(response))
}

// Validate handles POST /api/v1/guardrails/validate. The report is an
// audit document: unsafe SQL is a 200 with is_safe=false, not a 4xx.
func (h *Handler) Validate(req *restful.Request, resp *restful.Response) {
	var validateRequest ValidateRequest

	if err := req.ReadEntity(&validateRequest); err != nil {
		log.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := validateRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	report := h.engine.Validate(validateRequest.SQL).Report()

	log.Info().
		Bool("is_safe", report.IsSafe).
		Int("violations", len(report.Violations)).
		Int("warnings", len(report.Warnings)).
		Msg("Validated SQL")

	resp.WriteHeaderAndEntity(http.StatusOK, report)
}

// GetSession handles GET /api/v1/sessions/{id}
func (h *Handler) GetSession(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("id")

	stored, err := h.store.Get(req.Request.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			middleware.HandleError(resp, middleware.ErrSessionNotFound, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("session_id", id).Msg("Failed to load session")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, SessionResponse{
		ID:       stored.ID,
		Messages: stored.Messages,
	})
}

// DeleteSession handles DELETE /api/v1/sessions/{id}
func (h *Handler) DeleteSession(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("id")

	if err := h.store.Delete(req.Request.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			middleware.HandleError(resp, middleware.ErrSessionNotFound, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("session_id", id).Msg("Failed to delete session")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeader(http.StatusNoContent)
}

// ListSessions handles GET /api/v1/sessions
func (h *Handler) ListSessions(req *restful.Request, resp *restful.Response) {
	ids, err := h.store.List(req.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sessions")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, SessionListResponse{Sessions: ids})
}

// Health handles GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}
