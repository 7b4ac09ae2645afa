package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/teebox-golf/teebox-api/internal/dto"
	"github.com/teebox-golf/teebox-api/internal/models"
	appErrors "github.com/teebox-golf/teebox-api/pkg/errors"
)

type applicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByEmail(ctx context.Context, email string) (*models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	UpdateScore(ctx context.Context, id string, score int, breakdown models.ScoreBreakdown) error
	CountByStatus(ctx context.Context, status models.ApplicationStatus) (int, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.Application, error)
	PendingScores(ctx context.Context) ([]int, error)
}

type profileReader interface {
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
}

type equipmentReader interface {
	EngagementByUserID(ctx context.Context, userID string) (*models.EquipmentSignal, error)
}

type referralStore interface {
	Record(ctx context.Context, referrerEmail, referredEmail string) error
	ResolveInviteCode(ctx context.Context, code string) (string, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// WaitlistService owns the submission pipeline: validation, signal lookup,
// scoring, the admission decision and the resulting persistence and audit
// side effects.
type WaitlistService struct {
	apps          applicationStore
	profiles      profileReader
	equipment     equipmentReader
	referrals     referralStore
	audits        auditLogger
	scorer        *ScoringService
	configs       scoringConfigProvider
	metrics       *MetricsService
	validate      *validator.Validate
	betaCap       int
	signalTimeout time.Duration
	batchSize     int
	logger        *zap.Logger
}

// NewWaitlistService constructs a WaitlistService.
func NewWaitlistService(
	apps applicationStore,
	profiles profileReader,
	equipment equipmentReader,
	referrals referralStore,
	audits auditLogger,
	scorer *ScoringService,
	configs scoringConfigProvider,
	metrics *MetricsService,
	betaCap int,
	signalTimeout time.Duration,
	batchSize int,
	logger *zap.Logger,
) *WaitlistService {
	if betaCap <= 0 {
		betaCap = 500
	}
	if signalTimeout <= 0 {
		signalTimeout = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &WaitlistService{
		apps:          apps,
		profiles:      profiles,
		equipment:     equipment,
		referrals:     referrals,
		audits:        audits,
		scorer:        scorer,
		configs:       configs,
		metrics:       metrics,
		validate:      v,
		betaCap:       betaCap,
		signalTimeout: signalTimeout,
		batchSize:     batchSize,
		logger:        logger,
	}
}

// Validate checks the raw form payload and, when clean, converts it into the
// typed answers the scoring engine consumes. Every failing field is reported;
// validation never stops at the first error.
func (s *WaitlistService) Validate(req dto.SubmitWaitlistRequest) (*models.WaitlistAnswers, []dto.ValidationError) {
	if err := s.validate.Struct(req); err != nil {
		var invalid validator.ValidationErrors
		if !errors.As(err, &invalid) {
			return nil, []dto.ValidationError{{Path: "", Message: "invalid payload"}}
		}
		out := make([]dto.ValidationError, 0, len(invalid))
		for _, fe := range invalid {
			out = append(out, dto.ValidationError{Path: fe.Field(), Message: validationMessage(fe)})
		}
		return nil, out
	}
	answers := &models.WaitlistAnswers{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName:    strings.TrimSpace(req.DisplayName),
		Role:           models.ApplicantRole(req.Role),
		ShareChannels:  req.ShareChannels,
		LearnChannels:  req.LearnChannels,
		Uses:           req.Uses,
		SpendBracket:   models.SpendBracket(req.SpendBracket),
		BuyFrequency:   models.Frequency(req.BuyFrequency),
		ShareFrequency: models.Frequency(req.ShareFrequency),
		CityRegion:     strings.TrimSpace(req.CityRegion),
		InviteCode:     strings.TrimSpace(req.InviteCode),
		TermsAccepted:  req.TermsAccepted,
	}
	return answers, nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// Submit scores the answers, decides admission against remaining capacity and
// persists the application. One application per email.
func (s *WaitlistService) Submit(ctx context.Context, answers models.WaitlistAnswers) (*dto.SubmitWaitlistResponse, error) {
	existing, err := s.apps.FindByEmail(ctx, answers.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing application")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadyApplied, "")
	}

	profileSignal, equipmentSignal := s.lookupSignals(ctx, answers.Email)
	breakdown := s.scorer.Score(ctx, answers, profileSignal, equipmentSignal)

	approved, err := s.apps.CountByStatus(ctx, models.ApplicationApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count approvals")
	}

	status := models.ApplicationPending
	if s.scorer.ShouldAutoApprove(ctx, breakdown.CappedTotal, approved, s.betaCap) {
		status = models.ApplicationApproved
	}

	app := &models.Application{
		Email:          answers.Email,
		DisplayName:    answers.DisplayName,
		Role:           answers.Role,
		ShareChannels:  answers.ShareChannels,
		LearnChannels:  answers.LearnChannels,
		Uses:           answers.Uses,
		SpendBracket:   answers.SpendBracket,
		BuyFrequency:   answers.BuyFrequency,
		ShareFrequency: answers.ShareFrequency,
		CityRegion:     answers.CityRegion,
		TermsAccepted:  answers.TermsAccepted,
		Status:         status,
		Score:          breakdown.CappedTotal,
		Breakdown:      breakdown,
	}
	if answers.InviteCode != "" {
		code := answers.InviteCode
		app.InviteCode = &code
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store application")
	}

	s.recordReferral(ctx, answers)
	if status == models.ApplicationApproved {
		s.auditAutoApproval(ctx, app)
	}
	if s.metrics != nil {
		s.metrics.RecordWaitlistSubmission(string(status))
		s.metrics.ObserveWaitlistScore(breakdown.CappedTotal)
	}

	s.logger.Info("waitlist application submitted",
		zap.String("application_id", app.ID),
		zap.String("status", string(status)),
		zap.Int("score", breakdown.CappedTotal),
		zap.String("config_version", breakdown.ConfigVersion))

	return &dto.SubmitWaitlistResponse{
		ApplicationID: app.ID,
		Status:        status,
		Score:         breakdown.CappedTotal,
		Breakdown:     breakdown,
	}, nil
}

// lookupSignals fetches the optional scoring signals under a short deadline.
// Any failure degrades the corresponding signal to absent.
func (s *WaitlistService) lookupSignals(ctx context.Context, email string) (*models.ProfileSignal, *models.EquipmentSignal) {
	ctx, cancel := context.WithTimeout(ctx, s.signalTimeout)
	defer cancel()

	if s.profiles == nil {
		return nil, nil
	}
	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("profile signal lookup failed", zap.String("email", email), zap.Error(err))
		}
		return nil, nil
	}

	signal := profile.Signal()

	var equipmentSignal *models.EquipmentSignal
	if s.equipment != nil {
		equipmentSignal, err = s.equipment.EngagementByUserID(ctx, profile.UserID)
		if err != nil {
			s.logger.Warn("equipment signal lookup failed", zap.String("user_id", profile.UserID), zap.Error(err))
			equipmentSignal = nil
		}
	}
	return &signal, equipmentSignal
}

// recordReferral resolves the invite code to its owner and stores the edge.
// Unresolvable codes are ignored; the submission already got its invite bonus.
func (s *WaitlistService) recordReferral(ctx context.Context, answers models.WaitlistAnswers) {
	if s.referrals == nil || answers.InviteCode == "" {
		return
	}
	referrer, err := s.referrals.ResolveInviteCode(ctx, answers.InviteCode)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("invite code resolution failed", zap.Error(err))
		}
		return
	}
	if referrer == answers.Email {
		return
	}
	if err := s.referrals.Record(ctx, referrer, answers.Email); err != nil {
		s.logger.Warn("failed to record referral", zap.Error(err))
	}
}

func (s *WaitlistService) auditAutoApproval(ctx context.Context, app *models.Application) {
	if s.audits == nil {
		return
	}
	newValues, _ := json.Marshal(map[string]interface{}{
		"status": app.Status,
		"score":  app.Score,
	})
	entry := &models.AuditLog{
		Action:     models.AuditActionAutoApprove,
		Resource:   "waitlist_application",
		ResourceID: &app.ID,
		NewValues:  newValues,
	}
	if err := s.audits.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to audit auto approval", zap.String("application_id", app.ID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordAutoApproval()
	}
}

// Status returns the applicant-facing view of an application.
func (s *WaitlistService) Status(ctx context.Context, email string) (*dto.ApplicationStatusResponse, error) {
	app, err := s.apps.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotWaitlisted, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return &dto.ApplicationStatusResponse{
		Email:     app.Email,
		Status:    app.Status,
		Score:     app.Score,
		AppliedAt: app.CreatedAt.Format(time.RFC3339),
	}, nil
}

// UpdateStatus transitions an application on behalf of an admin and audits
// the change.
func (s *WaitlistService) UpdateStatus(ctx context.Context, email string, status models.ApplicationStatus, actorID string) error {
	app, err := s.apps.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotWaitlisted, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.Status == status {
		return nil
	}
	if err := s.apps.UpdateStatus(ctx, app.ID, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	if s.audits != nil {
		oldValues, _ := json.Marshal(map[string]interface{}{"status": app.Status})
		newValues, _ := json.Marshal(map[string]interface{}{"status": status})
		entry := &models.AuditLog{
			Action:     models.AuditActionStatusChange,
			Resource:   "waitlist_application",
			ResourceID: &app.ID,
			OldValues:  oldValues,
			NewValues:  newValues,
		}
		if actorID != "" {
			entry.UserID = &actorID
		}
		if err := s.audits.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to audit status change", zap.String("application_id", app.ID), zap.Error(err))
		}
	}
	return nil
}

// Distribution summarises pending scores into fixed buckets for the admin
// panel, including how many already clear the current threshold.
func (s *WaitlistService) Distribution(ctx context.Context) (*models.ScoreDistribution, error) {
	start := time.Now()
	scores, err := s.apps.PendingScores(ctx)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("waitlist_pending_scores", time.Since(start))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending scores")
	}
	cfg, _ := s.configs.Current(ctx)

	dist := &models.ScoreDistribution{
		TotalPending: len(scores),
		Buckets:      map[string]int{"0-2": 0, "3-4": 0, "5-6": 0, "7-8": 0, "9+": 0},
		GeneratedAt:  time.Now().UTC(),
	}
	if len(scores) == 0 {
		return dist, nil
	}

	sum := 0
	dist.Min = scores[0]
	dist.Max = scores[0]
	for _, score := range scores {
		sum += score
		if score < dist.Min {
			dist.Min = score
		}
		if score > dist.Max {
			dist.Max = score
		}
		dist.Buckets[scoreBucket(score)]++
		if score >= cfg.AutoApproveThreshold {
			dist.EligibleNow++
		}
	}
	dist.Average = float64(sum) / float64(len(scores))
	return dist, nil
}

func scoreBucket(score int) string {
	switch {
	case score <= 2:
		return "0-2"
	case score <= 4:
		return "3-4"
	case score <= 6:
		return "5-6"
	case score <= 8:
		return "7-8"
	default:
		return "9+"
	}
}

// RescoreAll re-evaluates every pending application against the current
// configuration. All applications in one run are scored against the same
// configuration snapshot. The pending set is collected up front because
// rewriting scores would shift the score-ordered pages underneath the
// pagination. Returns the number of rescored applications.
func (s *WaitlistService) RescoreAll(ctx context.Context) (int, error) {
	cfg, source := s.configs.Current(ctx)

	var pending []models.Application
	for offset := 0; ; offset += s.batchSize {
		batch, err := s.apps.ListPending(ctx, s.batchSize, offset)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending applications")
		}
		pending = append(pending, batch...)
		if len(batch) < s.batchSize {
			break
		}
	}

	rescored := 0
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return rescored, err
		}
		app := &pending[i]
		profileSignal, equipmentSignal := s.lookupSignals(ctx, app.Email)
		breakdown := s.scorer.ScoreWith(cfg, source, app.Answers(), profileSignal, equipmentSignal)
		if err := s.apps.UpdateScore(ctx, app.ID, breakdown.CappedTotal, breakdown); err != nil {
			s.logger.Warn("failed to rescore application", zap.String("application_id", app.ID), zap.Error(err))
			continue
		}
		rescored++
	}
	return rescored, nil
}
