package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/devsec-labs/cloudsentry/internal/engine"
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/storage"
)

// Analyzer is the orchestrator surface the API depends on.
type Analyzer interface {
	Analyze(ctx context.Context, req engine.AnalyzeRequest) ([]models.Alert, error)
}

// Handler serves the analyze RPC and the alert CRUD surface.
type Handler struct {
	Engine Analyzer
	Alerts storage.AlertStore
	Log    zerolog.Logger
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type statusRequest struct {
	Status models.AlertStatus `json:"status"`
}

// alertPatchRequest carries the mutable alert fields for PUT /alerts/{id}.
// Absent fields leave the stored value untouched.
type alertPatchRequest struct {
	Severity       *models.Severity `json:"severity,omitempty"`
	Title          *string          `json:"title,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Details        map[string]any   `json:"details,omitempty"`
	Recommendation *string          `json:"recommendation,omitempty"`
}

// RegisterRoutes mounts all engine routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
	r.Route("/alerts", func(r chi.Router) {
		r.Post("/", h.handleAlertCreate)
		r.Get("/", h.handleAlertList)
		r.Get("/{id}", h.handleAlertGet)
		r.Put("/{id}", h.handleAlertUpdate)
		r.Patch("/{id}/status", h.handleAlertStatus)
		r.Delete("/{id}", h.handleAlertDelete)
	})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req engine.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON: "+err.Error())
		return
	}

	alerts, err := h.Engine.Analyze(r.Context(), req)
	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, "validation_error", verr.Error())
			return
		}
		h.Log.Error().Err(err).Msg("analyze failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handler) handleAlertCreate(w http.ResponseWriter, r *http.Request) {
	var draft models.AlertDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON: "+err.Error())
		return
	}
	if draft.Provider == "" || draft.ResourceID == "" || draft.PolicyID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "provider, resource_id and policy_id are required")
		return
	}
	if !draft.Severity.Valid() {
		writeError(w, http.StatusBadRequest, "validation_error", "unknown severity "+string(draft.Severity))
		return
	}

	alert, err := h.Alerts.UpsertAlert(r.Context(), draft)
	if err != nil {
		h.Log.Error().Err(err).Msg("alert upsert failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to persist alert")
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

func (h *Handler) handleAlertList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	alerts, err := h.Alerts.ListAlerts(r.Context(), filter)
	if err != nil {
		h.Log.Error().Err(err).Msg("alert listing failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handler) handleAlertGet(w http.ResponseWriter, r *http.Request) {
	id, ok := alertID(w, r)
	if !ok {
		return
	}
	alert, err := h.Alerts.GetAlert(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "failed to load alert")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) handleAlertUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := alertID(w, r)
	if !ok {
		return
	}
	var req alertPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON: "+err.Error())
		return
	}
	if req.Severity != nil && !req.Severity.Valid() {
		writeError(w, http.StatusBadRequest, "validation_error", "unknown severity "+string(*req.Severity))
		return
	}

	alert, err := h.Alerts.UpdateAlertDetails(r.Context(), id, storage.AlertPatch{
		Severity:       req.Severity,
		Title:          req.Title,
		Description:    req.Description,
		Details:        req.Details,
		Recommendation: req.Recommendation,
	})
	if err != nil {
		h.writeStoreError(w, err, "failed to update alert")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) handleAlertStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := alertID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON: "+err.Error())
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "validation_error", "unknown status "+string(req.Status))
		return
	}

	alert, err := h.Alerts.UpdateAlertStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeStoreError(w, err, "failed to update alert status")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) handleAlertDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := alertID(w, r)
	if !ok {
		return
	}
	alert, err := h.Alerts.DeleteAlert(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "failed to delete alert")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no alert with that id")
		return
	}
	h.Log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal_error", msg)
}

// parseFilter builds an AlertFilter from list query parameters. Unknown
// severity/status values and unparsable numbers or timestamps are rejected;
// limits beyond the cap are clamped by the store.
func parseFilter(r *http.Request) (storage.AlertFilter, error) {
	q := r.URL.Query()
	f := storage.AlertFilter{
		Provider:   q.Get("provider"),
		ResourceID: q.Get("resource_id"),
		PolicyID:   q.Get("policy_id"),
		AccountID:  q.Get("account_id"),
		Region:     q.Get("region"),
		SortBy:     q.Get("sort_by"),
		SortDesc:   q.Get("order") != "asc",
	}
	if v := q.Get("severity"); v != "" {
		s := models.Severity(v)
		if !s.Valid() {
			return f, errors.New("unknown severity " + v)
		}
		f.Severity = s
	}
	if v := q.Get("status"); v != "" {
		s := models.AlertStatus(v)
		if !s.Valid() {
			return f, errors.New("unknown status " + v)
		}
		f.Status = s
	}
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("skip must be a non-negative integer")
		}
		f.Skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("limit must be a non-negative integer")
		}
		f.Limit = n
	}
	if v := q.Get("created_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("created_from must be RFC3339")
		}
		f.CreatedFrom = &t
	}
	if v := q.Get("created_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("created_to must be RFC3339")
		}
		f.CreatedTo = &t
	}
	return f, nil
}

func alertID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "alert id must be an integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
