package model

import (
	"time"

	"github.com/google/uuid"
)

// MatchLink states. Potential and Under_Review are working states;
// Confirmed and Rejected are terminal for the link.
const (
	MatchStatusPotential   = "Potential"
	MatchStatusUnderReview = "Under_Review"
	MatchStatusConfirmed   = "Confirmed"
	MatchStatusRejected    = "Rejected"
)

const (
	MatchTypeManual = "Manual"
	MatchTypeAI     = "AI_Analysis"
)

// MatchLink relates one sighting to one case with a confidence score and a
// review state. At most one non-rejected link exists per (sighting, case)
// pair; re-linking updates the existing link in place.
type MatchLink struct {
	ID              uuid.UUID  `json:"id"`
	SightingID      uuid.UUID  `json:"sighting_id"`
	CaseID          uuid.UUID  `json:"case_id"`
	MatchConfidence float64    `json:"match_confidence"`
	MatchType       string     `json:"match_type"` // Manual, AI_Analysis
	MatchReason     string     `json:"match_reason,omitempty"`
	Status          string     `json:"status"` // Potential, Under_Review, Confirmed, Rejected
	Confirmed       bool       `json:"confirmed"`
	ConfirmedBy     string     `json:"confirmed_by,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	DistanceKM      *float64   `json:"distance_km,omitempty"`
	TimeDeltaHours  *float64   `json:"time_difference_hours,omitempty"`
	CreatedBy       string     `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Terminal reports whether the link can no longer transition.
func (m MatchLink) Terminal() bool {
	return m.Status == MatchStatusConfirmed || m.Status == MatchStatusRejected
}

type LinkRequest struct {
	SightingID string  `json:"sighting_id" validate:"required"`
	CaseID     string  `json:"case_id" validate:"required"`
	Confidence float64 `json:"confidence" validate:"confidence"`
	MatchType  string  `json:"match_type" validate:"required,oneof=Manual AI_Analysis"`
	Reason     string  `json:"reason,omitempty"`
	CreatedBy  string  `json:"created_by,omitempty"`
}

// CaseSighting pairs a link with the sighting it points at, for the case
// detail view.
type CaseSighting struct {
	Link     MatchLink `json:"link"`
	Sighting Sighting  `json:"sighting"`
}
