package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envchart/internal/dataset"
	ws "envchart/internal/websocket"
	"envchart/pkg/contracts/domain"
)

func newTestHealthService() (*HealthService, *dataset.Store) {
	store := dataset.NewStore()
	hub := ws.NewHub(testLogger())
	return NewHealthService("1.0.0-test", store, hub, testLogger()), store
}

func TestHealthCheck(t *testing.T) {
	hs, _ := newTestHealthService()

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0-test", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestLivenessCheck(t *testing.T) {
	hs, _ := newTestHealthService()

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.NotEmpty(t, status.Runtime["go_version"])
}

func TestReadinessCheckWithoutDataset(t *testing.T) {
	hs, _ := newTestHealthService()

	status := hs.ReadinessCheck(context.Background())
	// No dataset is still ready: the API serves uploads and palettes.
	assert.Equal(t, "ready", status.Status)

	dsHealth, ok := status.Services["dataset"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "ready", dsHealth.Status)
	assert.Equal(t, "No dataset loaded yet", dsHealth.Message)
}

func TestReadinessCheckMissingHub(t *testing.T) {
	hs := NewHealthService("1.0.0-test", dataset.NewStore(), nil, testLogger())

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
}

func TestSystemStatsReflectDataset(t *testing.T) {
	hs, store := newTestHealthService()

	stats, err := hs.SystemStats(context.Background())
	require.NoError(t, err)
	assert.False(t, stats.DatasetLoaded)
	assert.Zero(t, stats.SampleCount)

	token := store.BeginLoad()
	require.True(t, store.Install(token, []domain.Sample{{Category: "Sala A"}}, "medicoes.xlsx"))

	stats, err = hs.SystemStats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.DatasetLoaded)
	assert.Equal(t, 1, stats.SampleCount)
}

func TestVersionIncludesBuildInfo(t *testing.T) {
	hs := NewHealthServiceWithBuildInfo("1.0.0-test", "2026-01-15T10:00:00Z", "abc123", dataset.NewStore(), nil, testLogger())

	info := hs.Version()
	assert.Equal(t, "1.0.0-test", info["version"])
	assert.Equal(t, "2026-01-15T10:00:00Z", info["build_time"])
	assert.Equal(t, "abc123", info["build_id"])
}
