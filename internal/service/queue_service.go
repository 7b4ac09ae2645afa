package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teebox-golf/teebox-api/internal/models"
	appErrors "github.com/teebox-golf/teebox-api/pkg/errors"
)

const queueSnapshotCacheKey = "waitlist:queue:snapshot"

type queueApplicationReader interface {
	FindByEmail(ctx context.Context, email string) (*models.Application, error)
	PendingCount(ctx context.Context) (int, error)
	PendingRank(ctx context.Context, email string) (int, error)
	ApprovedSince(ctx context.Context, since time.Time) (int, error)
}

type referralCounter interface {
	CountByReferrer(ctx context.Context, email string) (int, error)
}

// QueueService projects an applicant's standing in the waitlist into the
// human-facing queue metrics. Everything here is display arithmetic over the
// latest rank/capacity snapshot; nothing is persisted.
type QueueService struct {
	apps         queueApplicationReader
	referrals    referralCounter
	configs      scoringConfigProvider
	cache        *CacheService
	waveCapacity int
	logger       *zap.Logger
	now          func() time.Time
}

// NewQueueService constructs a QueueService.
func NewQueueService(apps queueApplicationReader, referrals referralCounter, configs scoringConfigProvider, cache *CacheService, waveCapacity int, logger *zap.Logger) *QueueService {
	if waveCapacity <= 0 {
		waveCapacity = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueService{
		apps:         apps,
		referrals:    referrals,
		configs:      configs,
		cache:        cache,
		waveCapacity: waveCapacity,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Position computes the queue position for a pending applicant. The returned
// flag reports whether the capacity snapshot was served from cache.
func (s *QueueService) Position(ctx context.Context, email string) (*models.QueuePosition, bool, error) {
	app, err := s.apps.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotWaitlisted, "")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.Status != models.ApplicationPending {
		return nil, false, appErrors.Clone(appErrors.ErrPreconditionFailed, "application is no longer in the queue")
	}

	snapshot, cacheHit, err := s.snapshot(ctx)
	if err != nil {
		return nil, false, err
	}

	rank, err := s.apps.PendingRank(ctx, email)
	if err != nil {
		return nil, cacheHit, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank application")
	}

	referralCount := 0
	if s.referrals != nil {
		referralCount, err = s.referrals.CountByReferrer(ctx, email)
		if err != nil {
			// A missing referral count degrades the boost, never the lookup.
			s.logger.Warn("failed to count referrals", zap.String("email", email), zap.Error(err))
			referralCount = 0
		}
	}

	cfg, _ := s.configs.Current(ctx)
	boosted := boostRank(rank, referralCount, cfg.ReferralBoost)

	position := ProjectPosition(boosted, snapshot.TotalPending, s.waveCapacity, snapshot.WaveFilledToday, referralCount, cfg.ReferralBoost)
	return &position, cacheHit, nil
}

// ProjectPosition translates an already-boosted rank and the latest capacity
// snapshot into display metrics. For all valid inputs
// ahead_of_you + behind_you + 1 == total_waiting.
func ProjectPosition(rank, total, waveCapacity, waveFilledToday, referralCount, boostPerReferral int) models.QueuePosition {
	if total < 1 {
		total = 1
	}
	if rank < 1 {
		rank = 1
	}
	if rank > total {
		rank = total
	}
	if waveCapacity < 1 {
		waveCapacity = 1
	}
	if waveFilledToday < 0 {
		waveFilledToday = 0
	}

	ahead := rank - 1
	behind := total - rank

	remainingToday := waveCapacity - waveFilledToday
	if remainingToday < 0 {
		remainingToday = 0
	}

	days := 0
	if ahead >= remainingToday {
		days = 1 + (ahead-remainingToday)/waveCapacity
	}

	return models.QueuePosition{
		Position:         rank,
		TotalWaiting:     total,
		AheadOfYou:       ahead,
		BehindYou:        behind,
		ReferralCount:    referralCount,
		ReferralBoost:    referralCount * boostPerReferral,
		WaveCapacity:     waveCapacity,
		WaveFilledToday:  waveFilledToday,
		EstimatedDays:    days,
		EstimatedWaitFor: waitLabel(days),
	}
}

// boostRank improves (never worsens) a raw rank by the per-referral boost.
func boostRank(rank, referralCount, boostPerReferral int) int {
	if referralCount <= 0 || boostPerReferral <= 0 {
		return rank
	}
	boosted := rank - referralCount*boostPerReferral
	if boosted < 1 {
		return 1
	}
	return boosted
}

func waitLabel(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// snapshot returns the cached pending-pool view, recomputing it from the
// store when the cache misses or is disabled.
func (s *QueueService) snapshot(ctx context.Context) (*models.QueueSnapshot, bool, error) {
	var snapshot models.QueueSnapshot
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, queueSnapshotCacheKey, &snapshot); err == nil && hit {
			return &snapshot, true, nil
		}
	}

	total, err := s.apps.PendingCount(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending applications")
	}

	startOfDay := s.now().Truncate(24 * time.Hour)
	filled, err := s.apps.ApprovedSince(ctx, startOfDay)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count today's approvals")
	}

	snapshot = models.QueueSnapshot{TotalPending: total, WaveFilledToday: filled, TakenAt: s.now()}
	if s.cache != nil {
		if err := s.cache.Set(ctx, queueSnapshotCacheKey, snapshot, 0); err != nil {
			s.logger.Warn("failed to cache queue snapshot", zap.Error(err))
		}
	}
	return &snapshot, false, nil
}
