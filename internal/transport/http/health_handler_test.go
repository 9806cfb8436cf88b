package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envchart/internal/dataset"
	"envchart/internal/services"
	"envchart/internal/websocket"
	"envchart/pkg/contracts/domain"
)

func newHealthRouter(t *testing.T) (*dataset.Store, http.Handler) {
	t.Helper()

	logger := testLogger()
	store := dataset.NewStore()
	hub := websocket.NewHub(logger)
	hub.Start()
	t.Cleanup(hub.Stop)

	handler := NewHealthHandler(services.NewHealthService("1.0.0-test", store, hub, logger), logger)
	return store, handler.Routes()
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	_, router := newHealthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.0.0-test", body["version"])
}

func TestHealthHandler_Readiness(t *testing.T) {
	_, router := newHealthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_Liveness(t *testing.T) {
	_, router := newHealthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_SystemStats(t *testing.T) {
	store, router := newHealthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["dataset_loaded"])
	assert.EqualValues(t, 0, body["sample_count"])

	token := store.BeginLoad()
	store.Install(token, []domain.Sample{{Category: "Sala A", Timestamp: time.Now()}}, "samples.xlsx")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["dataset_loaded"])
	assert.EqualValues(t, 1, body["sample_count"])
}
