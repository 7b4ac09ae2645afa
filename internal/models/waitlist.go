package models

import (
	"time"

	"github.com/lib/pq"
)

// ApplicantRole enumerates the self-declared roles on the waitlist form.
type ApplicantRole string

const (
	RoleGolfer               ApplicantRole = "golfer"
	RoleFitterBuilder        ApplicantRole = "fitter_builder"
	RoleContentCreator       ApplicantRole = "content_creator"
	RoleCoachInstructor      ApplicantRole = "coach_instructor"
	RoleIndustryProfessional ApplicantRole = "industry_professional"
)

// ApplicantRoles lists every accepted role value.
var ApplicantRoles = []ApplicantRole{
	RoleGolfer,
	RoleFitterBuilder,
	RoleContentCreator,
	RoleCoachInstructor,
	RoleIndustryProfessional,
}

// SpendBracket enumerates annual equipment spend buckets, lowest to highest.
type SpendBracket string

const (
	SpendUnder500    SpendBracket = "under_500"
	Spend500To1000   SpendBracket = "500_1000"
	Spend1000To2500  SpendBracket = "1000_2500"
	Spend2500To5000  SpendBracket = "2500_5000"
	Spend5000Plus    SpendBracket = "5000_plus"
	SpendPreferNotTo SpendBracket = "prefer_not_say"
)

// SpendBrackets lists every accepted spend bucket.
var SpendBrackets = []SpendBracket{
	SpendUnder500,
	Spend500To1000,
	Spend1000To2500,
	Spend2500To5000,
	Spend5000Plus,
	SpendPreferNotTo,
}

// Frequency is the shared ordering for buy and share frequency answers.
type Frequency string

const (
	FrequencyNever        Frequency = "never"
	FrequencyRarely       Frequency = "rarely"
	FrequencyFewTimesYear Frequency = "few_times_year"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyWeekly       Frequency = "weekly"
)

// Frequencies lists every accepted frequency value.
var Frequencies = []Frequency{
	FrequencyNever,
	FrequencyRarely,
	FrequencyFewTimesYear,
	FrequencyMonthly,
	FrequencyWeekly,
}

// ApplicationStatus tracks the admission lifecycle of an application.
type ApplicationStatus string

const (
	ApplicationPending    ApplicationStatus = "pending"
	ApplicationApproved   ApplicationStatus = "approved"
	ApplicationAtCapacity ApplicationStatus = "at_capacity"
	ApplicationRejected   ApplicationStatus = "rejected"
)

// WaitlistAnswers is the validated, strongly-typed waitlist submission.
// Channel and use lists carry free-form strings; keyword matching happens
// case-insensitively in the scoring engine.
type WaitlistAnswers struct {
	Email          string
	DisplayName    string
	Role           ApplicantRole
	ShareChannels  []string
	LearnChannels  []string
	Uses           []string
	SpendBracket   SpendBracket
	BuyFrequency   Frequency
	ShareFrequency Frequency
	CityRegion     string
	InviteCode     string
	TermsAccepted  bool
}

// Application is a persisted waitlist application. Email is the natural key;
// answers are immutable once scored, only status transitions afterwards.
type Application struct {
	ID             string            `db:"id" json:"id"`
	Email          string            `db:"email" json:"email"`
	DisplayName    string            `db:"display_name" json:"display_name"`
	Role           ApplicantRole     `db:"role" json:"role"`
	ShareChannels  pq.StringArray    `db:"share_channels" json:"share_channels"`
	LearnChannels  pq.StringArray    `db:"learn_channels" json:"learn_channels"`
	Uses           pq.StringArray    `db:"uses" json:"uses"`
	SpendBracket   SpendBracket      `db:"spend_bracket" json:"spend_bracket"`
	BuyFrequency   Frequency         `db:"buy_frequency" json:"buy_frequency"`
	ShareFrequency Frequency         `db:"share_frequency" json:"share_frequency"`
	CityRegion     string            `db:"city_region" json:"city_region"`
	InviteCode     *string           `db:"invite_code" json:"invite_code,omitempty"`
	TermsAccepted  bool              `db:"terms_accepted" json:"terms_accepted"`
	Status         ApplicationStatus `db:"status" json:"status"`
	Score          int               `db:"score" json:"score"`
	Breakdown      ScoreBreakdown    `db:"score_breakdown" json:"score_breakdown"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// Answers reconstructs the typed answers from a stored application, used when
// rescoring against a refreshed configuration.
func (a *Application) Answers() WaitlistAnswers {
	invite := ""
	if a.InviteCode != nil {
		invite = *a.InviteCode
	}
	return WaitlistAnswers{
		Email:          a.Email,
		DisplayName:    a.DisplayName,
		Role:           a.Role,
		ShareChannels:  a.ShareChannels,
		LearnChannels:  a.LearnChannels,
		Uses:           a.Uses,
		SpendBracket:   a.SpendBracket,
		BuyFrequency:   a.BuyFrequency,
		ShareFrequency: a.ShareFrequency,
		CityRegion:     a.CityRegion,
		InviteCode:     invite,
		TermsAccepted:  a.TermsAccepted,
	}
}

// ApplicationFilter captures listing criteria for admin views.
type ApplicationFilter struct {
	Status   *ApplicationStatus
	MinScore *int
	Page     int
	PageSize int
}
