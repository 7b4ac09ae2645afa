package dto

import "github.com/teebox-golf/teebox-api/internal/models"

// SubmitWaitlistRequest is the raw waitlist form payload. The contact_phone
// field is a honeypot: accepted here, inspected only by the anti-bot layer.
type SubmitWaitlistRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	DisplayName    string   `json:"display_name" validate:"required,min=2"`
	Role           string   `json:"role" validate:"required,oneof=golfer fitter_builder content_creator coach_instructor industry_professional"`
	ShareChannels  []string `json:"share_channels" validate:"omitempty,dive,max=120"`
	LearnChannels  []string `json:"learn_channels" validate:"omitempty,dive,max=120"`
	Uses           []string `json:"uses" validate:"omitempty,dive,max=120"`
	SpendBracket   string   `json:"spend_bracket" validate:"required,oneof=under_500 500_1000 1000_2500 2500_5000 5000_plus prefer_not_say"`
	BuyFrequency   string   `json:"buy_frequency" validate:"required,oneof=never rarely few_times_year monthly weekly"`
	ShareFrequency string   `json:"share_frequency" validate:"required,oneof=never rarely few_times_year monthly weekly"`
	CityRegion     string   `json:"city_region" validate:"required,min=2"`
	InviteCode     string   `json:"invite_code" validate:"omitempty,max=32"`
	TermsAccepted  bool     `json:"terms_accepted" validate:"required"`
	ContactPhone   string   `json:"contact_phone" validate:"omitempty"`
}

// ValidationError is one field-level failure, addressable by JSON path.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// SubmitWaitlistResponse reports the outcome of a submission.
type SubmitWaitlistResponse struct {
	ApplicationID string                   `json:"application_id"`
	Status        models.ApplicationStatus `json:"status"`
	Score         int                      `json:"score"`
	Breakdown     models.ScoreBreakdown    `json:"breakdown"`
	Position      *models.QueuePosition    `json:"position,omitempty"`
}

// ApplicationStatusResponse is the applicant-facing status view.
type ApplicationStatusResponse struct {
	Email     string                   `json:"email"`
	Status    models.ApplicationStatus `json:"status"`
	Score     int                      `json:"score"`
	AppliedAt string                   `json:"applied_at"`
}

// UpdateStatusRequest transitions an application, admin only.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved at_capacity rejected"`
}
