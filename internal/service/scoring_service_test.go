package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teebox-golf/teebox-api/internal/models"
)

type configProviderStub struct {
	cfg    models.ScoringConfig
	source models.ConfigSource
}

func (s *configProviderStub) Current(ctx context.Context) (models.ScoringConfig, models.ConfigSource) {
	return s.cfg, s.source
}

func newTestScorer() (*ScoringService, *configProviderStub) {
	provider := &configProviderStub{cfg: models.DefaultScoringConfig(), source: models.ConfigSourceDefault}
	return NewScoringService(provider, nil), provider
}

func TestScoreHighEngagementFitter(t *testing.T) {
	scorer, _ := newTestScorer()

	answers := models.WaitlistAnswers{
		Role:           models.RoleFitterBuilder,
		ShareChannels:  []string{"reddit", "golfwrx", "instagram"},
		BuyFrequency:   models.FrequencyMonthly,
		ShareFrequency: models.FrequencyNever,
		CityRegion:     "Scottsdale, AZ",
		InviteCode:     "ABC123",
	}

	breakdown := scorer.Score(context.Background(), answers, nil, nil)

	assert.Equal(t, 3, breakdown.Role)
	assert.Equal(t, 2, breakdown.ShareChannels, "three matching channels clamp to the category cap")
	assert.Equal(t, 0, breakdown.LearnChannels)
	assert.Equal(t, 0, breakdown.Uses)
	assert.Equal(t, 2, breakdown.BuyFrequency)
	assert.Equal(t, 0, breakdown.ShareFrequency)
	assert.Equal(t, 1, breakdown.Location)
	assert.Equal(t, 2, breakdown.InviteCode)
	assert.Equal(t, 10, breakdown.Total)
	assert.Equal(t, 10, breakdown.CappedTotal)
	assert.True(t, breakdown.AutoApproveEligible)
}

func TestScoreMinimalGolfer(t *testing.T) {
	scorer, _ := newTestScorer()

	answers := models.WaitlistAnswers{
		Role:           models.RoleGolfer,
		BuyFrequency:   models.FrequencyNever,
		ShareFrequency: models.FrequencyNever,
		CityRegion:     "Boston, MA",
	}

	breakdown := scorer.Score(context.Background(), answers, nil, nil)

	assert.Equal(t, 0, breakdown.Total)
	assert.Equal(t, 0, breakdown.CappedTotal)
	assert.False(t, breakdown.AutoApproveEligible)
}

func TestScoreUnknownEnumsContributeZero(t *testing.T) {
	scorer, _ := newTestScorer()

	answers := models.WaitlistAnswers{
		Role:           models.ApplicantRole("caddie"),
		BuyFrequency:   models.Frequency("hourly"),
		ShareFrequency: models.Frequency("daily"),
	}

	breakdown := scorer.Score(context.Background(), answers, nil, nil)

	assert.Equal(t, 0, breakdown.Role)
	assert.Equal(t, 0, breakdown.BuyFrequency)
	assert.Equal(t, 0, breakdown.ShareFrequency)
	assert.Equal(t, 0, breakdown.Total)
}

func TestScoreIsDeterministic(t *testing.T) {
	scorer, _ := newTestScorer()

	answers := models.WaitlistAnswers{
		Role:          models.RoleContentCreator,
		ShareChannels: []string{"Reddit"},
		LearnChannels: []string{"YouTube", "manufacturer sites"},
		Uses:          []string{"research gear before buying", "track my bag"},
		BuyFrequency:  models.FrequencyWeekly,
		CityRegion:    "Tempe",
	}
	profile := &models.ProfileSignal{Completion: 0.9}
	equipment := &models.EquipmentSignal{ItemCount: 4, HasPhoto: true}

	first := scorer.Score(context.Background(), answers, profile, equipment)
	second := scorer.Score(context.Background(), answers, profile, equipment)

	first.ScoredAt = second.ScoredAt
	assert.Equal(t, first, second)
}

func TestScoreCategoryCapsApplyBeforeSummation(t *testing.T) {
	scorer, _ := newTestScorer()
	cfg := models.DefaultScoringConfig()
	cfg.TotalCap = 0 // disable the total cap to observe per-category clamps

	answers := models.WaitlistAnswers{
		Role:          models.RoleGolfer,
		ShareChannels: []string{"reddit", "golfwrx", "instagram", "tiktok", "youtube"},
		LearnChannels: []string{"youtube", "reddit", "my fitter", "manufacturer sites"},
		Uses:          []string{"research new clubs", "follow friends", "track my builds"},
	}

	breakdown := scorer.ScoreWith(cfg, models.ConfigSourceDefault, answers, nil, nil)

	assert.Equal(t, cfg.ShareChannels.Cap, breakdown.ShareChannels)
	assert.Equal(t, cfg.LearnChannels.Cap, breakdown.LearnChannels)
	assert.Equal(t, cfg.Uses.Cap, breakdown.Uses)
	assert.Equal(t, breakdown.ShareChannels+breakdown.LearnChannels+breakdown.Uses, breakdown.Total)
}

func TestScoreTotalCapClampsSum(t *testing.T) {
	scorer, _ := newTestScorer()

	answers := models.WaitlistAnswers{
		Role:           models.RoleFitterBuilder,
		ShareChannels:  []string{"reddit", "golfwrx"},
		LearnChannels:  []string{"youtube", "reddit"},
		Uses:           []string{"research", "follow friends"},
		BuyFrequency:   models.FrequencyWeekly,
		ShareFrequency: models.FrequencyWeekly,
		CityRegion:     "Phoenix",
		InviteCode:     "XYZ",
	}
	profile := &models.ProfileSignal{Completion: 1}
	equipment := &models.EquipmentSignal{ItemCount: 5, HasPhoto: true}

	breakdown := scorer.Score(context.Background(), answers, profile, equipment)

	assert.Greater(t, breakdown.Total, 10)
	assert.Equal(t, 10, breakdown.CappedTotal)
}

func TestScoreNilSignalsContributeZero(t *testing.T) {
	scorer, _ := newTestScorer()

	breakdown := scorer.Score(context.Background(), models.WaitlistAnswers{Role: models.RoleGolfer}, nil, nil)

	assert.Equal(t, 0, breakdown.ProfileCompletion)
	assert.Equal(t, 0, breakdown.EquipmentEngagement)
}

func TestScoreProfileCompletionThreshold(t *testing.T) {
	scorer, _ := newTestScorer()
	answers := models.WaitlistAnswers{Role: models.RoleGolfer}

	below := scorer.Score(context.Background(), answers, &models.ProfileSignal{Completion: 0.5}, nil)
	at := scorer.Score(context.Background(), answers, &models.ProfileSignal{Completion: 0.8}, nil)

	assert.Equal(t, 0, below.ProfileCompletion)
	assert.Equal(t, 1, at.ProfileCompletion)
}

func TestScoreEquipmentBonuses(t *testing.T) {
	scorer, _ := newTestScorer()
	answers := models.WaitlistAnswers{Role: models.RoleGolfer}

	single := scorer.Score(context.Background(), answers, nil, &models.EquipmentSignal{ItemCount: 1})
	full := scorer.Score(context.Background(), answers, nil, &models.EquipmentSignal{ItemCount: 3, HasPhoto: true})

	assert.Equal(t, 1, single.EquipmentEngagement)
	assert.Equal(t, 3, full.EquipmentEngagement)
}

func TestScoreLocationMatchesWholeWords(t *testing.T) {
	scorer, _ := newTestScorer()
	cfg := models.DefaultScoringConfig()

	cases := map[string]int{
		"Scottsdale, AZ":    cfg.LocationBonus,
		"phoenix":           cfg.LocationBonus,
		"Greater Mesa Area": cfg.LocationBonus,
		"Phoenixville, PA":  0,
		"Boston, MA":        0,
		"":                  0,
	}
	for city, expected := range cases {
		breakdown := scorer.Score(context.Background(), models.WaitlistAnswers{CityRegion: city}, nil, nil)
		assert.Equal(t, expected, breakdown.Location, "city %q", city)
	}
}

func TestAutoApproveRequiresThresholdAndCapacity(t *testing.T) {
	cfg := models.DefaultScoringConfig()
	require.Equal(t, 7, cfg.AutoApproveThreshold)
	require.Equal(t, 25, cfg.CapacityBuffer)

	betaCap := 500

	assert.False(t, AutoApprove(cfg, 6, 0, betaCap), "below threshold never approves")
	assert.True(t, AutoApprove(cfg, 7, 0, betaCap))
	assert.True(t, AutoApprove(cfg, 10, betaCap-cfg.CapacityBuffer-1, betaCap), "last unreserved seat")
	assert.False(t, AutoApprove(cfg, 10, betaCap-cfg.CapacityBuffer, betaCap), "buffer seats stay reserved")
	assert.False(t, AutoApprove(cfg, 10, betaCap, betaCap))
}

func TestShouldAutoApproveUsesCurrentConfig(t *testing.T) {
	scorer, provider := newTestScorer()

	assert.True(t, scorer.ShouldAutoApprove(context.Background(), 8, 0, 100))

	provider.cfg.AutoApproveThreshold = 9
	assert.False(t, scorer.ShouldAutoApprove(context.Background(), 8, 0, 100))
}
