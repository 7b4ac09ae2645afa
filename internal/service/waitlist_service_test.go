package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teebox-golf/teebox-api/internal/dto"
	"github.com/teebox-golf/teebox-api/internal/models"
	appErrors "github.com/teebox-golf/teebox-api/pkg/errors"
)

type applicationStoreStub struct {
	byEmail  map[string]*models.Application
	created  []*models.Application
	approved int
	pending  []models.Application
	scores   []int
	updates  map[string]models.ApplicationStatus
	rescored map[string]int
	findErr  error
}

func newApplicationStoreStub() *applicationStoreStub {
	return &applicationStoreStub{
		byEmail:  map[string]*models.Application{},
		updates:  map[string]models.ApplicationStatus{},
		rescored: map[string]int{},
	}
}

func (s *applicationStoreStub) Create(ctx context.Context, app *models.Application) error {
	app.ID = "app-" + app.Email
	s.created = append(s.created, app)
	s.byEmail[app.Email] = app
	return nil
}

func (s *applicationStoreStub) FindByEmail(ctx context.Context, email string) (*models.Application, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if app, ok := s.byEmail[email]; ok {
		return app, nil
	}
	return nil, sql.ErrNoRows
}

func (s *applicationStoreStub) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	s.updates[id] = status
	return nil
}

func (s *applicationStoreStub) UpdateScore(ctx context.Context, id string, score int, breakdown models.ScoreBreakdown) error {
	s.rescored[id] = score
	return nil
}

func (s *applicationStoreStub) CountByStatus(ctx context.Context, status models.ApplicationStatus) (int, error) {
	return s.approved, nil
}

func (s *applicationStoreStub) ListPending(ctx context.Context, limit, offset int) ([]models.Application, error) {
	if offset >= len(s.pending) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.pending) {
		end = len(s.pending)
	}
	return s.pending[offset:end], nil
}

func (s *applicationStoreStub) PendingScores(ctx context.Context) ([]int, error) {
	return s.scores, nil
}

type profileReaderStub struct {
	profile *models.Profile
	err     error
}

func (s *profileReaderStub) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.profile == nil {
		return nil, sql.ErrNoRows
	}
	return s.profile, nil
}

type equipmentReaderStub struct {
	signal *models.EquipmentSignal
	err    error
}

func (s *equipmentReaderStub) EngagementByUserID(ctx context.Context, userID string) (*models.EquipmentSignal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.signal, nil
}

type referralStoreStub struct {
	codes    map[string]string
	recorded [][2]string
}

func (s *referralStoreStub) Record(ctx context.Context, referrerEmail, referredEmail string) error {
	s.recorded = append(s.recorded, [2]string{referrerEmail, referredEmail})
	return nil
}

func (s *referralStoreStub) ResolveInviteCode(ctx context.Context, code string) (string, error) {
	if email, ok := s.codes[code]; ok {
		return email, nil
	}
	return "", sql.ErrNoRows
}

type auditStoreStub struct {
	logs []*models.AuditLog
}

func (s *auditStoreStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

type waitlistFixture struct {
	svc       *WaitlistService
	apps      *applicationStoreStub
	profiles  *profileReaderStub
	equipment *equipmentReaderStub
	referrals *referralStoreStub
	audits    *auditStoreStub
	provider  *configProviderStub
}

func newWaitlistFixture(betaCap int) *waitlistFixture {
	apps := newApplicationStoreStub()
	profiles := &profileReaderStub{}
	equipment := &equipmentReaderStub{}
	referrals := &referralStoreStub{codes: map[string]string{}}
	audits := &auditStoreStub{}
	provider := &configProviderStub{cfg: models.DefaultScoringConfig(), source: models.ConfigSourceDefault}
	scorer := NewScoringService(provider, nil)
	svc := NewWaitlistService(apps, profiles, equipment, referrals, audits,
		scorer, provider, nil, betaCap, time.Second, 2, nil)
	return &waitlistFixture{
		svc: svc, apps: apps, profiles: profiles, equipment: equipment,
		referrals: referrals, audits: audits, provider: provider,
	}
}

func strongAnswers(email string) models.WaitlistAnswers {
	return models.WaitlistAnswers{
		Email:          email,
		DisplayName:    "Jordan Fitter",
		Role:           models.RoleFitterBuilder,
		ShareChannels:  []string{"reddit", "golfwrx"},
		BuyFrequency:   models.FrequencyWeekly,
		ShareFrequency: models.FrequencyWeekly,
		CityRegion:     "Scottsdale, AZ",
		TermsAccepted:  true,
	}
}

func TestWaitlistValidateAcceptsCleanPayload(t *testing.T) {
	f := newWaitlistFixture(500)

	answers, fieldErrs := f.svc.Validate(dto.SubmitWaitlistRequest{
		Email:          "Jordan@Example.com ",
		DisplayName:    "Jordan",
		Role:           "fitter_builder",
		SpendBracket:   "2500_5000",
		BuyFrequency:   "monthly",
		ShareFrequency: "rarely",
		CityRegion:     "Tempe, AZ",
		TermsAccepted:  true,
	})

	require.Empty(t, fieldErrs)
	assert.Equal(t, "jordan@example.com", answers.Email)
	assert.Equal(t, models.RoleFitterBuilder, answers.Role)
}

func TestWaitlistValidateReportsEveryFailure(t *testing.T) {
	f := newWaitlistFixture(500)

	answers, fieldErrs := f.svc.Validate(dto.SubmitWaitlistRequest{
		Email:          "not-an-email",
		DisplayName:    "J",
		Role:           "caddie",
		SpendBracket:   "2500_5000",
		BuyFrequency:   "monthly",
		ShareFrequency: "rarely",
		CityRegion:     "Tempe",
		TermsAccepted:  true,
	})

	require.Nil(t, answers)
	paths := map[string]bool{}
	for _, fe := range fieldErrs {
		paths[fe.Path] = true
	}
	assert.True(t, paths["email"])
	assert.True(t, paths["display_name"])
	assert.True(t, paths["role"])
	assert.Len(t, fieldErrs, 3)
}

func TestWaitlistSubmitAutoApprovesHighScore(t *testing.T) {
	f := newWaitlistFixture(500)

	result, err := f.svc.Submit(context.Background(), strongAnswers("jordan@example.com"))
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationApproved, result.Status)
	assert.GreaterOrEqual(t, result.Score, 7)
	require.Len(t, f.apps.created, 1)
	assert.Equal(t, models.ApplicationApproved, f.apps.created[0].Status)
	require.Len(t, f.audits.logs, 1)
	assert.Equal(t, models.AuditActionAutoApprove, f.audits.logs[0].Action)
}

func TestWaitlistSubmitQueuesWhenBufferReached(t *testing.T) {
	f := newWaitlistFixture(500)
	f.apps.approved = 475 // only the reserved buffer remains

	result, err := f.svc.Submit(context.Background(), strongAnswers("jordan@example.com"))
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationPending, result.Status)
	assert.True(t, result.Breakdown.AutoApproveEligible,
		"eligibility is threshold-only even when capacity blocks admission")
	assert.Empty(t, f.audits.logs)
}

func TestWaitlistSubmitQueuesLowScore(t *testing.T) {
	f := newWaitlistFixture(500)

	result, err := f.svc.Submit(context.Background(), models.WaitlistAnswers{
		Email:          "casual@example.com",
		DisplayName:    "Casual",
		Role:           models.RoleGolfer,
		BuyFrequency:   models.FrequencyNever,
		ShareFrequency: models.FrequencyNever,
		CityRegion:     "Boston, MA",
		TermsAccepted:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationPending, result.Status)
	assert.Equal(t, 0, result.Score)
}

func TestWaitlistSubmitRejectsDuplicateEmail(t *testing.T) {
	f := newWaitlistFixture(500)

	_, err := f.svc.Submit(context.Background(), strongAnswers("jordan@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), strongAnswers("jordan@example.com"))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAlreadyApplied.Code, appErr.Code)
	assert.Len(t, f.apps.created, 1)
}

func TestWaitlistSubmitSignalFailureDegradesToZero(t *testing.T) {
	f := newWaitlistFixture(500)
	f.profiles.err = errors.New("profile store timeout")

	result, err := f.svc.Submit(context.Background(), strongAnswers("jordan@example.com"))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Breakdown.ProfileCompletion)
	assert.Equal(t, 0, result.Breakdown.EquipmentEngagement)
}

func TestWaitlistSubmitUsesSignalsWhenPresent(t *testing.T) {
	f := newWaitlistFixture(500)
	name, bio, location, handicap, club, avatar := "J", "bio", "AZ", 12.5, "7i", "a.png"
	f.profiles.profile = &models.Profile{
		UserID: "user-1", Email: "jordan@example.com",
		DisplayName: &name, Bio: &bio, Location: &location,
		Handicap: &handicap, FavoriteClub: &club, AvatarURL: &avatar,
	}
	f.equipment.signal = &models.EquipmentSignal{ItemCount: 4, HasPhoto: true}

	result, err := f.svc.Submit(context.Background(), strongAnswers("jordan@example.com"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Breakdown.ProfileCompletion)
	assert.Equal(t, 3, result.Breakdown.EquipmentEngagement)
}

func TestWaitlistSubmitRecordsResolvableReferral(t *testing.T) {
	f := newWaitlistFixture(500)
	f.referrals.codes["GOLF42"] = "referrer@example.com"

	answers := strongAnswers("jordan@example.com")
	answers.InviteCode = "GOLF42"

	result, err := f.svc.Submit(context.Background(), answers)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Breakdown.InviteCode)
	require.Len(t, f.referrals.recorded, 1)
	assert.Equal(t, [2]string{"referrer@example.com", "jordan@example.com"}, f.referrals.recorded[0])
}

func TestWaitlistSubmitUnresolvableCodeStillScores(t *testing.T) {
	f := newWaitlistFixture(500)

	answers := strongAnswers("jordan@example.com")
	answers.InviteCode = "UNKNOWN"

	result, err := f.svc.Submit(context.Background(), answers)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Breakdown.InviteCode)
	assert.Empty(t, f.referrals.recorded)
}

func TestWaitlistStatusNotFound(t *testing.T) {
	f := newWaitlistFixture(500)

	_, err := f.svc.Status(context.Background(), "missing@example.com")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotWaitlisted.Code, appErr.Code)
}

func TestWaitlistUpdateStatusAudits(t *testing.T) {
	f := newWaitlistFixture(500)
	_, err := f.svc.Submit(context.Background(), strongAnswers("jordan@example.com"))
	require.NoError(t, err)
	f.audits.logs = nil

	err = f.svc.UpdateStatus(context.Background(), "jordan@example.com", models.ApplicationRejected, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationRejected, f.apps.updates["app-jordan@example.com"])
	require.Len(t, f.audits.logs, 1)
	assert.Equal(t, models.AuditActionStatusChange, f.audits.logs[0].Action)
	require.NotNil(t, f.audits.logs[0].UserID)
	assert.Equal(t, "admin-1", *f.audits.logs[0].UserID)
}

func TestWaitlistUpdateStatusNoopWhenUnchanged(t *testing.T) {
	f := newWaitlistFixture(500)
	_, err := f.svc.Submit(context.Background(), strongAnswers("jordan@example.com"))
	require.NoError(t, err)
	f.audits.logs = nil

	err = f.svc.UpdateStatus(context.Background(), "jordan@example.com", models.ApplicationApproved, "admin-1")
	require.NoError(t, err)

	assert.Empty(t, f.apps.updates)
	assert.Empty(t, f.audits.logs)
}

func TestWaitlistDistribution(t *testing.T) {
	f := newWaitlistFixture(500)
	f.apps.scores = []int{0, 2, 3, 5, 7, 8, 9, 10}

	dist, err := f.svc.Distribution(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, dist.TotalPending)
	assert.Equal(t, 0, dist.Min)
	assert.Equal(t, 10, dist.Max)
	assert.InDelta(t, 5.5, dist.Average, 0.001)
	assert.Equal(t, 2, dist.Buckets["0-2"])
	assert.Equal(t, 1, dist.Buckets["3-4"])
	assert.Equal(t, 1, dist.Buckets["5-6"])
	assert.Equal(t, 2, dist.Buckets["7-8"])
	assert.Equal(t, 2, dist.Buckets["9+"])
	assert.Equal(t, 4, dist.EligibleNow)
}

func TestWaitlistDistributionEmpty(t *testing.T) {
	f := newWaitlistFixture(500)

	dist, err := f.svc.Distribution(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, dist.TotalPending)
	assert.Zero(t, dist.Average)
}

func TestWaitlistRescoreAllPagesThroughPending(t *testing.T) {
	f := newWaitlistFixture(500)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		app := models.Application{ID: "app-" + email, Email: email,
			Role: models.RoleContentCreator, Status: models.ApplicationPending}
		f.apps.pending = append(f.apps.pending, app)
	}

	count, err := f.svc.RescoreAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, count)
	assert.Len(t, f.apps.rescored, 3)
	assert.Equal(t, 2, f.apps.rescored["app-a@x.com"], "content creator role weight")
}
