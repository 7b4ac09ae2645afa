package models

import "time"

// ConfigSource identifies where the active scoring configuration came from.
type ConfigSource string

const (
	ConfigSourceRemote  ConfigSource = "remote"
	ConfigSourceDefault ConfigSource = "default"
)

// RoleWeights maps applicant roles to points. Unknown roles score zero.
type RoleWeights map[ApplicantRole]int

// Points returns the weight for a role, zero when unmapped.
func (w RoleWeights) Points(role ApplicantRole) int {
	return w[role]
}

// FrequencyWeights maps frequency answers to points. Unknown values score zero.
type FrequencyWeights map[Frequency]int

// Points returns the weight for a frequency, zero when unmapped.
func (w FrequencyWeights) Points(f Frequency) int {
	return w[f]
}

// ShareChannelWeights scores where applicants already share equipment content.
// The social weight is flat across the whole instagram/tiktok/youtube alias
// set, not per platform. Cap bounds the dimension before summation.
type ShareChannelWeights struct {
	Reddit  int `json:"reddit"`
	Golfwrx int `json:"golfwrx"`
	Social  int `json:"social"`
	Cap     int `json:"cap"`
}

// LearnChannelWeights scores where applicants learn about equipment.
type LearnChannelWeights struct {
	YouTube       int `json:"youtube"`
	Reddit        int `json:"reddit"`
	FitterBuilder int `json:"fitter_builder"`
	Manufacturer  int `json:"manufacturer"`
	Cap           int `json:"cap"`
}

// UseWeights scores intended platform usage.
type UseWeights struct {
	Research int `json:"research"`
	Social   int `json:"social"`
	Tracking int `json:"tracking"`
	Cap      int `json:"cap"`
}

// ProfileCompletionWeights awards an all-or-nothing bonus once the profile
// completion ratio reaches the threshold.
type ProfileCompletionWeights struct {
	Threshold float64 `json:"threshold"`
	Bonus     int     `json:"bonus"`
}

// EquipmentWeights awards additive, independent equipment-engagement bonuses.
type EquipmentWeights struct {
	FirstItemBonus     int `json:"first_item_bonus"`
	MultiItemBonus     int `json:"multi_item_bonus"`
	MultiItemThreshold int `json:"multi_item_threshold"`
	PhotoBonus         int `json:"photo_bonus"`
}

// ScoringConfig is the versioned weight/threshold document driving the
// scoring engine. Fetched remotely, cached, and replaceable by the bundled
// default when the remote source is unreachable.
type ScoringConfig struct {
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`

	Roles          RoleWeights              `json:"roles"`
	ShareChannels  ShareChannelWeights      `json:"share_channels"`
	LearnChannels  LearnChannelWeights      `json:"learn_channels"`
	Uses           UseWeights               `json:"uses"`
	BuyFrequency   FrequencyWeights         `json:"buy_frequency"`
	ShareFrequency FrequencyWeights         `json:"share_frequency"`
	MetroAreas     []string                 `json:"metro_areas"`
	LocationBonus  int                      `json:"location_bonus"`
	InviteBonus    int                      `json:"invite_bonus"`
	Profile        ProfileCompletionWeights `json:"profile"`
	Equipment      EquipmentWeights         `json:"equipment"`

	TotalCap             int `json:"total_cap"`
	AutoApproveThreshold int `json:"auto_approve_threshold"`
	CapacityBuffer       int `json:"capacity_buffer"`
	ReferralBoost        int `json:"referral_boost"`
}

// DefaultScoringConfig returns the bundled fallback configuration. Scoring
// must always produce a result, so this document has to stand alone.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Version:   "default-1",
		UpdatedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Roles: RoleWeights{
			RoleGolfer:               0,
			RoleFitterBuilder:        3,
			RoleContentCreator:       2,
			RoleCoachInstructor:      2,
			RoleIndustryProfessional: 1,
		},
		ShareChannels: ShareChannelWeights{Reddit: 1, Golfwrx: 1, Social: 1, Cap: 2},
		LearnChannels: LearnChannelWeights{YouTube: 1, Reddit: 1, FitterBuilder: 1, Manufacturer: 1, Cap: 2},
		Uses:          UseWeights{Research: 1, Social: 1, Tracking: 1, Cap: 2},
		BuyFrequency: FrequencyWeights{
			FrequencyNever:        0,
			FrequencyRarely:       0,
			FrequencyFewTimesYear: 1,
			FrequencyMonthly:      2,
			FrequencyWeekly:       3,
		},
		ShareFrequency: FrequencyWeights{
			FrequencyNever:        0,
			FrequencyRarely:       0,
			FrequencyFewTimesYear: 1,
			FrequencyMonthly:      1,
			FrequencyWeekly:       2,
		},
		MetroAreas: []string{
			"phoenix", "scottsdale", "tempe", "mesa",
			"chandler", "gilbert", "glendale", "peoria",
		},
		LocationBonus:        1,
		InviteBonus:          2,
		Profile:              ProfileCompletionWeights{Threshold: 0.8, Bonus: 1},
		Equipment:            EquipmentWeights{FirstItemBonus: 1, MultiItemBonus: 1, MultiItemThreshold: 3, PhotoBonus: 1},
		TotalCap:             10,
		AutoApproveThreshold: 7,
		CapacityBuffer:       25,
		ReferralBoost:        5,
	}
}
