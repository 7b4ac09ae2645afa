package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoringConfigSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"version":"2026-03-01","auto_approve_threshold":7,"total_cap":10}`))
	}))
	defer server.Close()

	source := NewScoringConfigSource(server.URL, time.Second)
	cfg, err := source.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", cfg.Version)
	assert.Equal(t, 7, cfg.AutoApproveThreshold)
}

func TestScoringConfigSourceRejectsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewScoringConfigSource(server.URL, time.Second)
	_, err := source.Fetch(context.Background())
	require.Error(t, err)
}

func TestScoringConfigSourceRejectsMissingVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"auto_approve_threshold":7}`))
	}))
	defer server.Close()

	source := NewScoringConfigSource(server.URL, time.Second)
	_, err := source.Fetch(context.Background())
	require.Error(t, err)
}
