package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsec-labs/cloudsentry/internal/engine"
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/storage"
)

// fakeAnalyzer returns canned results; err takes precedence.
type fakeAnalyzer struct {
	alerts []models.Alert
	err    error
	got    *engine.AnalyzeRequest
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req engine.AnalyzeRequest) ([]models.Alert, error) {
	f.got = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.alerts, nil
}

func newTestRouter(analyzer Analyzer, alerts storage.AlertStore) http.Handler {
	h := &Handler{Engine: analyzer, Alerts: alerts, Log: zerolog.Nop()}
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeAlert(t *testing.T, rec *httptest.ResponseRecorder) models.Alert {
	t.Helper()
	var a models.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	return a
}

func seedAlert(t *testing.T, store storage.AlertStore, provider, resourceID, policyID string, sev models.Severity) models.Alert {
	t.Helper()
	a, err := store.UpsertAlert(context.Background(), models.AlertDraft{
		ResourceID:   resourceID,
		ResourceType: "S3_BUCKET",
		Provider:     provider,
		Severity:     sev,
		Title:        "t",
		Description:  "d",
		PolicyID:     policyID,
	})
	require.NoError(t, err)
	return a
}

func TestHandleAnalyze(t *testing.T) {
	t.Run("passes the request through and returns alerts", func(t *testing.T) {
		fa := &fakeAnalyzer{alerts: []models.Alert{{ID: 1, Status: models.AlertStatusOpen}}}
		router := newTestRouter(fa, storage.NewMemoryStore())

		rec := doJSON(t, router, http.MethodPost, "/api/v1/analyze", engine.AnalyzeRequest{
			Provider: "aws", Service: "s3", Data: json.RawMessage(`[]`),
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, fa.got)
		assert.Equal(t, "aws", fa.got.Provider)
		assert.Equal(t, "s3", fa.got.Service)

		var alerts []models.Alert
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
		assert.Len(t, alerts, 1)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		router := newTestRouter(&fakeAnalyzer{err: engine.ValidationErrorf("bad pair")}, storage.NewMemoryStore())
		rec := doJSON(t, router, http.MethodPost, "/api/v1/analyze", engine.AnalyzeRequest{Provider: "aws"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "validation_error")
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		router := newTestRouter(&fakeAnalyzer{}, storage.NewMemoryStore())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleAlertCreate(t *testing.T) {
	store := storage.NewMemoryStore()
	router := newTestRouter(&fakeAnalyzer{}, store)

	t.Run("creates an OPEN alert", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/alerts/", models.AlertDraft{
			ResourceID: "b1", ResourceType: "S3_BUCKET", Provider: "aws",
			Severity: models.SeverityHigh, Title: "t", PolicyID: "P1",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		a := decodeAlert(t, rec)
		assert.Equal(t, models.AlertStatusOpen, a.Status)
		assert.NotZero(t, a.ID)
	})

	t.Run("missing identity fields rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/alerts/", models.AlertDraft{
			Provider: "aws", Severity: models.SeverityHigh,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown severity rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/alerts/", models.AlertDraft{
			ResourceID: "b1", Provider: "aws", PolicyID: "P1", Severity: "BANANAS",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleAlertGet(t *testing.T) {
	store := storage.NewMemoryStore()
	router := newTestRouter(&fakeAnalyzer{}, store)
	seeded := seedAlert(t, store, "aws", "b1", "P1", models.SeverityHigh)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/alerts/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, seeded.ID, decodeAlert(t, rec).ID)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/alerts/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")

	rec = doJSON(t, router, http.MethodGet, "/api/v1/alerts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAlertList(t *testing.T) {
	store := storage.NewMemoryStore()
	router := newTestRouter(&fakeAnalyzer{}, store)
	seedAlert(t, store, "aws", "prod-logs", "P1", models.SeverityHigh)
	seedAlert(t, store, "aws", "prod-data", "P2", models.SeverityCritical)
	seedAlert(t, store, "gcp", "staging", "P1", models.SeverityLow)

	list := func(t *testing.T, query string) []models.Alert {
		t.Helper()
		rec := doJSON(t, router, http.MethodGet, "/api/v1/alerts/"+query, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var alerts []models.Alert
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
		return alerts
	}

	t.Run("unfiltered", func(t *testing.T) {
		assert.Len(t, list(t, ""), 3)
	})

	t.Run("provider filter", func(t *testing.T) {
		assert.Len(t, list(t, "?provider=aws"), 2)
	})

	t.Run("severity filter", func(t *testing.T) {
		got := list(t, "?severity=CRITICAL")
		require.Len(t, got, 1)
		assert.Equal(t, "prod-data", got[0].ResourceID)
	})

	t.Run("resource substring filter", func(t *testing.T) {
		assert.Len(t, list(t, "?resource_id=prod"), 2)
	})

	t.Run("sort by severity ascending", func(t *testing.T) {
		got := list(t, "?sort_by=severity&order=asc")
		require.Len(t, got, 3)
		assert.Equal(t, models.SeverityLow, got[0].Severity)
		assert.Equal(t, models.SeverityCritical, got[2].Severity)
	})

	t.Run("pagination", func(t *testing.T) {
		got := list(t, "?sort_by=id&order=asc&skip=1&limit=1")
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("invalid severity rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/alerts/?severity=WAT", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid limit rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/alerts/?limit=-3", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid timestamp rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/alerts/?created_from=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleAlertUpdate(t *testing.T) {
	store := storage.NewMemoryStore()
	router := newTestRouter(&fakeAnalyzer{}, store)
	seedAlert(t, store, "aws", "b1", "P1", models.SeverityHigh)

	t.Run("patches only supplied fields", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/v1/alerts/1", map[string]any{
			"title": "triaged title",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		a := decodeAlert(t, rec)
		assert.Equal(t, "triaged title", a.Title)
		assert.Equal(t, models.SeverityHigh, a.Severity)
	})

	t.Run("invalid severity rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/v1/alerts/1", map[string]any{
			"severity": "WAT",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/v1/alerts/999", map[string]any{
			"title": "x",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleAlertStatus(t *testing.T) {
	store := storage.NewMemoryStore()
	router := newTestRouter(&fakeAnalyzer{}, store)
	seedAlert(t, store, "aws", "b1", "P1", models.SeverityHigh)

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/alerts/1/status", map[string]string{
		"status": "ACKNOWLEDGED",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.AlertStatusAcknowledged, decodeAlert(t, rec).Status)

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/alerts/1/status", map[string]string{
		"status": "SNOOZED",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/alerts/999/status", map[string]string{
		"status": "RESOLVED",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAlertDelete(t *testing.T) {
	store := storage.NewMemoryStore()
	router := newTestRouter(&fakeAnalyzer{}, store)
	seedAlert(t, store, "aws", "b1", "P1", models.SeverityHigh)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/alerts/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/alerts/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
