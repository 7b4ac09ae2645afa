package dto

import "github.com/teebox-golf/teebox-api/internal/models"

// ScoringConfigResponse is the read-only configuration introspection payload
// served to the admin panel.
type ScoringConfigResponse struct {
	Config    models.ScoringConfig `json:"config"`
	Source    models.ConfigSource  `json:"source"`
	Version   string               `json:"version"`
	Threshold int                  `json:"threshold"`
	FetchedAt string               `json:"fetched_at"`
}
