package models

import "time"

// QueuePosition is the ephemeral, display-facing projection of an applicant's
// standing among pending applications. Recomputed on every view from the
// latest rank/capacity snapshot, never persisted.
type QueuePosition struct {
	Position         int    `json:"position"`
	TotalWaiting     int    `json:"total_waiting"`
	AheadOfYou       int    `json:"ahead_of_you"`
	BehindYou        int    `json:"behind_you"`
	ReferralCount    int    `json:"referral_count"`
	ReferralBoost    int    `json:"referral_boost"`
	WaveCapacity     int    `json:"wave_capacity"`
	WaveFilledToday  int    `json:"wave_filled_today"`
	EstimatedDays    int    `json:"estimated_days"`
	EstimatedWaitFor string `json:"estimated_wait_for"`
}

// QueueSnapshot is the cached pending-pool view shared across position
// lookups within a short window.
type QueueSnapshot struct {
	TotalPending    int       `json:"total_pending"`
	WaveFilledToday int       `json:"wave_filled_today"`
	TakenAt         time.Time `json:"taken_at"`
}
