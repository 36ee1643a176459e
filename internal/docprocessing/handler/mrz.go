package handler

import (
	"net/http"

	"github.com/medflow/mrz-scanner/internal/docprocessing/service"
	"github.com/medflow/mrz-scanner/pkg/httputil"
)

// Parse handles POST /mrz/parse
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req service.ParseRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	outcome, err := h.service.ParseMRZ(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, outcome)
}

// Serialize handles POST /mrz/serialize
func (h *Handler) Serialize(w http.ResponseWriter, r *http.Request) {
	var req service.SerializeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	res, err := h.service.SerializeMRZ(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, res)
}

// CheckDigit handles POST /mrz/check-digit
func (h *Handler) CheckDigit(w http.ResponseWriter, r *http.Request) {
	var req service.CheckDigitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	res, err := h.service.CheckDigit(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, res)
}
