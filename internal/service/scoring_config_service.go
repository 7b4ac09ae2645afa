package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teebox-golf/teebox-api/internal/models"
)

type scoringConfigFetcher interface {
	Fetch(ctx context.Context) (*models.ScoringConfig, error)
}

// ScoringConfigService serves the active scoring configuration. Remote
// fetches are cached for a bounded window; when the remote source fails the
// service degrades to the last-known-good copy, then the bundled default, so
// scoring always has a configuration to work with.
//
// The cache is best-effort: concurrent callers racing a just-expired entry
// may each trigger a fetch, which is harmless since the document is
// idempotent.
type ScoringConfigService struct {
	source scoringConfigFetcher
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu         sync.RWMutex
	cached     models.ScoringConfig
	cachedFrom models.ConfigSource
	fetchedAt  time.Time
	populated  bool
}

// NewScoringConfigService constructs the service.
func NewScoringConfigService(source scoringConfigFetcher, ttl time.Duration, logger *zap.Logger) *ScoringConfigService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringConfigService{
		source: source,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Current returns the active configuration and where it came from. It never
// fails; configuration-fetch errors are absorbed here.
func (s *ScoringConfigService) Current(ctx context.Context) (models.ScoringConfig, models.ConfigSource) {
	s.mu.RLock()
	if s.populated && s.now().Sub(s.fetchedAt) < s.ttl {
		cfg, from := s.cached, s.cachedFrom
		s.mu.RUnlock()
		return cfg, from
	}
	s.mu.RUnlock()

	return s.refresh(ctx)
}

// FetchedAt reports when the cached configuration was last stored.
func (s *ScoringConfigService) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// Source reports the provenance of the cached configuration for audit
// metadata on score breakdowns.
func (s *ScoringConfigService) Source() models.ConfigSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.populated {
		return models.ConfigSourceDefault
	}
	return s.cachedFrom
}

// Invalidate clears the cache so the next evaluation refetches, used by the
// admin refresh endpoint and tests.
func (s *ScoringConfigService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.populated = false
	s.fetchedAt = time.Time{}
}

func (s *ScoringConfigService) refresh(ctx context.Context) (models.ScoringConfig, models.ConfigSource) {
	var fetched *models.ScoringConfig
	var err error
	if s.source != nil {
		fetched, err = s.source.Fetch(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case fetched != nil:
		s.cached = *fetched
		s.cachedFrom = models.ConfigSourceRemote
	case s.populated:
		// Serve the last-known-good copy and retry after another TTL window.
		s.logger.Warn("scoring config fetch failed, serving last known good",
			zap.String("version", s.cached.Version), zap.Error(err))
	default:
		s.cached = models.DefaultScoringConfig()
		s.cachedFrom = models.ConfigSourceDefault
		if err != nil {
			s.logger.Warn("scoring config fetch failed, using bundled default", zap.Error(err))
		}
	}

	s.populated = true
	s.fetchedAt = s.now()
	return s.cached, s.cachedFrom
}
