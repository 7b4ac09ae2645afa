package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/teebox-golf/teebox-api/internal/models"
)

// ErrNoRemoteSource signals that no remote configuration URL is configured.
var ErrNoRemoteSource = errors.New("no remote scoring config source configured")

// ScoringConfigSource fetches the versioned scoring configuration document
// over HTTP. Callers fall back to the bundled default when a fetch fails.
type ScoringConfigSource struct {
	url    string
	client *http.Client
}

// NewScoringConfigSource constructs the source.
func NewScoringConfigSource(url string, timeout time.Duration) *ScoringConfigSource {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &ScoringConfigSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves and decodes the remote configuration document.
func (s *ScoringConfigSource) Fetch(ctx context.Context) (*models.ScoringConfig, error) {
	if s.url == "" {
		return nil, ErrNoRemoteSource
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build scoring config request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scoring config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch scoring config: unexpected status %d", resp.StatusCode)
	}

	var cfg models.ScoringConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode scoring config: %w", err)
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("scoring config document missing version")
	}
	return &cfg, nil
}
