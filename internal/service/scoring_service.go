package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teebox-golf/teebox-api/internal/models"
)

type scoringConfigProvider interface {
	Current(ctx context.Context) (models.ScoringConfig, models.ConfigSource)
}

// socialAliases is the alias set scored once, flat, for the share-channel
// social weight regardless of how many of the platforms are listed.
var socialAliases = []string{"instagram", "tiktok", "youtube"}

// ScoringService converts validated waitlist answers into a score breakdown
// using the currently cached scoring configuration. Scoring is deterministic
// for a given configuration; every dimension degrades to zero on unknown
// values or absent signals rather than failing.
type ScoringService struct {
	configs scoringConfigProvider
	logger  *zap.Logger
	now     func() time.Time
}

// NewScoringService constructs a ScoringService.
func NewScoringService(configs scoringConfigProvider, logger *zap.Logger) *ScoringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{
		configs: configs,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Score evaluates answers plus optional signals against the current config.
func (s *ScoringService) Score(ctx context.Context, answers models.WaitlistAnswers, profile *models.ProfileSignal, equipment *models.EquipmentSignal) models.ScoreBreakdown {
	cfg, source := s.configs.Current(ctx)
	return s.ScoreWith(cfg, source, answers, profile, equipment)
}

// ScoreWith evaluates answers against an explicit configuration. Capped
// categories are clamped individually before entering the total.
func (s *ScoringService) ScoreWith(cfg models.ScoringConfig, source models.ConfigSource, answers models.WaitlistAnswers, profile *models.ProfileSignal, equipment *models.EquipmentSignal) models.ScoreBreakdown {
	breakdown := models.ScoreBreakdown{
		Role:                cfg.Roles.Points(answers.Role),
		ShareChannels:       scoreShareChannels(cfg.ShareChannels, answers.ShareChannels),
		LearnChannels:       scoreLearnChannels(cfg.LearnChannels, answers.LearnChannels),
		Uses:                scoreUses(cfg.Uses, answers.Uses),
		BuyFrequency:        cfg.BuyFrequency.Points(answers.BuyFrequency),
		ShareFrequency:      cfg.ShareFrequency.Points(answers.ShareFrequency),
		Location:            scoreLocation(cfg.MetroAreas, cfg.LocationBonus, answers.CityRegion),
		InviteCode:          scoreInvite(cfg.InviteBonus, answers.InviteCode),
		ProfileCompletion:   scoreProfileCompletion(cfg.Profile, profile),
		EquipmentEngagement: scoreEquipment(cfg.Equipment, equipment),
	}

	breakdown.Total = breakdown.Role + breakdown.ShareChannels + breakdown.LearnChannels +
		breakdown.Uses + breakdown.BuyFrequency + breakdown.ShareFrequency +
		breakdown.Location + breakdown.InviteCode + breakdown.ProfileCompletion +
		breakdown.EquipmentEngagement

	breakdown.CappedTotal = breakdown.Total
	if cfg.TotalCap > 0 && breakdown.CappedTotal > cfg.TotalCap {
		breakdown.CappedTotal = cfg.TotalCap
	}

	breakdown.AutoApproveEligible = breakdown.CappedTotal >= cfg.AutoApproveThreshold
	breakdown.ConfigVersion = cfg.Version
	breakdown.ConfigSource = string(source)
	breakdown.ScoredAt = s.now()

	return breakdown
}

// ShouldAutoApprove applies the capacity-aware admission rule with the
// current configuration's threshold and buffer.
func (s *ScoringService) ShouldAutoApprove(ctx context.Context, cappedScore, currentApproved, betaCap int) bool {
	cfg, _ := s.configs.Current(ctx)
	return AutoApprove(cfg, cappedScore, currentApproved, betaCap)
}

// AutoApprove decides admit-now versus queue. Unlike the breakdown's
// eligibility flag, which is threshold-only, this also requires free seats
// beyond the capacity buffer reserved for manual and referral admission.
func AutoApprove(cfg models.ScoringConfig, cappedScore, currentApproved, betaCap int) bool {
	if cappedScore < cfg.AutoApproveThreshold {
		return false
	}
	return currentApproved < betaCap-cfg.CapacityBuffer
}

// scoreShareChannels rewards sharing on reddit, golfwrx and the social alias
// set, then clamps. The cap applies before summation into the total, so
// listing every matching channel cannot exceed the category ceiling.
func scoreShareChannels(w models.ShareChannelWeights, channels []string) int {
	score := 0
	if hasChannel(channels, "reddit") {
		score += w.Reddit
	}
	if hasChannel(channels, "golfwrx") {
		score += w.Golfwrx
	}
	if hasChannel(channels, socialAliases...) {
		score += w.Social
	}
	return clamp(score, w.Cap)
}

func scoreLearnChannels(w models.LearnChannelWeights, channels []string) int {
	score := 0
	if hasChannel(channels, "youtube") {
		score += w.YouTube
	}
	if hasChannel(channels, "reddit") {
		score += w.Reddit
	}
	if hasKeyword(channels, "fitter", "builder") {
		score += w.FitterBuilder
	}
	if hasKeyword(channels, "manufacturer", "brand") {
		score += w.Manufacturer
	}
	return clamp(score, w.Cap)
}

func scoreUses(w models.UseWeights, uses []string) int {
	score := 0
	if hasKeyword(uses, "discover", "deep-dive", "research") {
		score += w.Research
	}
	if hasKeyword(uses, "follow", "friend") {
		score += w.Social
	}
	if hasKeyword(uses, "track", "build") {
		score += w.Tracking
	}
	return clamp(score, w.Cap)
}

// scoreLocation runs a word-boundary regex built from the configured metro
// list against the free-text city answer.
func scoreLocation(metros []string, bonus int, cityRegion string) int {
	if len(metros) == 0 || cityRegion == "" {
		return 0
	}
	quoted := make([]string, 0, len(metros))
	for _, metro := range metros {
		metro = strings.TrimSpace(metro)
		if metro == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(metro))
	}
	if len(quoted) == 0 {
		return 0
	}
	pattern, err := regexp.Compile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return 0
	}
	if pattern.MatchString(cityRegion) {
		return bonus
	}
	return 0
}

func scoreInvite(bonus int, code string) int {
	if strings.TrimSpace(code) == "" {
		return 0
	}
	return bonus
}

// scoreProfileCompletion is an all-or-nothing bonus, not a sliding scale.
func scoreProfileCompletion(w models.ProfileCompletionWeights, signal *models.ProfileSignal) int {
	if signal == nil {
		return 0
	}
	if signal.Completion >= w.Threshold {
		return w.Bonus
	}
	return 0
}

// scoreEquipment awards three additive, independent bonuses.
func scoreEquipment(w models.EquipmentWeights, signal *models.EquipmentSignal) int {
	if signal == nil {
		return 0
	}
	score := 0
	if signal.ItemCount > 0 {
		score += w.FirstItemBonus
	}
	if w.MultiItemThreshold > 0 && signal.ItemCount >= w.MultiItemThreshold {
		score += w.MultiItemBonus
	}
	if signal.HasPhoto {
		score += w.PhotoBonus
	}
	return score
}

// hasChannel reports whether any entry equals one of the names after
// trimming, ignoring case.
func hasChannel(entries []string, names ...string) bool {
	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		for _, name := range names {
			if entry == name {
				return true
			}
		}
	}
	return false
}

// hasKeyword reports whether any entry contains one of the keywords,
// ignoring case.
func hasKeyword(entries []string, keywords ...string) bool {
	for _, entry := range entries {
		entry = strings.ToLower(entry)
		for _, keyword := range keywords {
			if strings.Contains(entry, keyword) {
				return true
			}
		}
	}
	return false
}

func clamp(score, ceiling int) int {
	if ceiling > 0 && score > ceiling {
		return ceiling
	}
	return score
}
