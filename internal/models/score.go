package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ScoreBreakdown records every sub-score that contributed to an application's
// total, plus the configuration provenance. Persisted as JSONB beside the
// application row for auditability.
type ScoreBreakdown struct {
	Role                int `json:"role"`
	ShareChannels       int `json:"share_channels"`
	LearnChannels       int `json:"learn_channels"`
	Uses                int `json:"uses"`
	BuyFrequency        int `json:"buy_frequency"`
	ShareFrequency      int `json:"share_frequency"`
	Location            int `json:"location"`
	InviteCode          int `json:"invite_code"`
	ProfileCompletion   int `json:"profile_completion"`
	EquipmentEngagement int `json:"equipment_engagement"`

	Total       int `json:"total"`
	CappedTotal int `json:"capped_total"`

	AutoApproveEligible bool      `json:"auto_approve_eligible"`
	ConfigVersion       string    `json:"config_version"`
	ConfigSource        string    `json:"config_source"`
	ScoredAt            time.Time `json:"scored_at"`
}

// Value implements driver.Valuer so breakdowns round-trip through JSONB.
func (b ScoreBreakdown) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner.
func (b *ScoreBreakdown) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*b = ScoreBreakdown{}
		return nil
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return fmt.Errorf("unsupported score breakdown source type %T", src)
	}
}

// ScoreDistribution summarises scores across pending applications for the
// admin panel.
type ScoreDistribution struct {
	TotalPending int            `json:"total_pending"`
	Average      float64        `json:"average"`
	Min          int            `json:"min"`
	Max          int            `json:"max"`
	Buckets      map[string]int `json:"buckets"`
	EligibleNow  int            `json:"eligible_now"`
	GeneratedAt  time.Time      `json:"generated_at"`
}
