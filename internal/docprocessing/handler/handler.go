package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medflow/mrz-scanner/internal/docprocessing/service"
	"github.com/medflow/mrz-scanner/pkg/httputil"
	"github.com/medflow/mrz-scanner/pkg/logger"
	"github.com/medflow/mrz-scanner/pkg/permissions"
)

// Handler handles HTTP requests for MRZ scanning
type Handler struct {
	service *service.Service
	log     *logger.Logger
}

// NewHandler creates a new scan handler
func NewHandler(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{
		service: svc,
		log:     log,
	}
}

// RegisterRoutes mounts the scanner endpoints on r. Requests must already
// carry the caller's permissions, see httputil.Auth.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequirePermission(permissions.DocumentsScan))
		r.Route("/scans", func(r chi.Router) {
			r.Post("/", h.StartSession)
			r.Get("/{id}", h.GetSession)
			r.Post("/{id}/frames", h.SubmitFrame)
		})
		r.Route("/mrz", func(r chi.Router) {
			r.Post("/parse", h.Parse)
			r.Post("/serialize", h.Serialize)
			r.Post("/check-digit", h.CheckDigit)
		})
	})
	r.With(httputil.RequirePermission(permissions.DocumentsAuditRead)).Get("/audit", h.ListAudit)
}

// StartSession handles POST /scans
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req service.StartSessionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	session, err := h.service.StartSession(r.Context(), httputil.GetUserID(r.Context()), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, session)
}

// GetSession handles GET /scans/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, session)
}

// SubmitFrame handles POST /scans/{id}/frames. A frame that is not good
// enough yet is still a 200 with retry set.
func (h *Handler) SubmitFrame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.SubmitFrameRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	outcome, err := h.service.SubmitFrame(r.Context(), id, req.Frame())
	if err != nil {
		h.log.Debug().Err(err).Str("session_id", id).Msg("frame not processed")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, outcome)
}

// ListAudit handles GET /audit
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	entries, total, err := h.service.ListAudit(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, entries, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}
