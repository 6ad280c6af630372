package model

import (
	"time"

	"github.com/google/uuid"
)

// Sighting statuses. New and UnderReview are working states; Verified and
// FalsePositive are set by the explicit verify/reject actions.
const (
	SightingStatusNew           = "New"
	SightingStatusUnderReview   = "UnderReview"
	SightingStatusVerified      = "Verified"
	SightingStatusFalsePositive = "FalsePositive"
)

const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

const (
	SourceWitness     = "Witness"
	SourceManualEntry = "ManualEntry"
	SourceOther       = "Other"
)

// Sighting is a reported observation of a possibly-matching individual.
type Sighting struct {
	ID              uuid.UUID `json:"id"`
	SightedDate     time.Time `json:"sighted_date"`
	Sighted         Location  `json:"sighted_location"`
	ApparentGender  string    `json:"apparent_gender,omitempty"`
	ApparentAge     *int      `json:"apparent_age,omitempty"`
	AgeRange        string    `json:"age_range,omitempty"`
	HeightCM        *float64  `json:"height_cm,omitempty"`
	WeightKG        *float64  `json:"weight_kg,omitempty"`
	Description     string    `json:"description,omitempty"`
	ConfidenceLevel string    `json:"confidence_level"` // High, Medium, Low
	SourceType      string    `json:"source_type"`      // Witness, ManualEntry, Other
	Status          string    `json:"status"`           // New, UnderReview, Verified, FalsePositive
	Priority        string    `json:"priority,omitempty"`
	Verified        bool      `json:"verified"`
	VerifiedBy      string    `json:"verified_by,omitempty"`
	Embedding       []float64 `json:"embedding,omitempty"`
	ReportedBy      string    `json:"reported_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasEmbedding reports whether an embedding vector is attached.
func (s Sighting) HasEmbedding() bool {
	return len(s.Embedding) > 0
}

// EmbeddingText is the text sent to the embedding provider for this sighting.
func (s Sighting) EmbeddingText() string {
	text := s.Description
	if s.ApparentGender != "" {
		text += " " + s.ApparentGender
	}
	if s.AgeRange != "" {
		text += " " + s.AgeRange
	}
	if s.Sighted.City != "" {
		text += " " + s.Sighted.City
	}
	return text
}

type CreateSightingRequest struct {
	SightedDate     string   `json:"sighted_date" validate:"required"`
	Sighted         Location `json:"sighted_location"`
	ApparentGender  string   `json:"apparent_gender,omitempty"`
	ApparentAge     *int     `json:"apparent_age,omitempty"`
	Height          string   `json:"height,omitempty"`
	Weight          string   `json:"weight,omitempty"`
	Description     string   `json:"description,omitempty"`
	ConfidenceLevel string   `json:"confidence_level" validate:"required,oneof=High Medium Low"`
	SourceType      string   `json:"source_type" validate:"required,oneof=Witness ManualEntry Other"`
	Priority        string   `json:"priority,omitempty" validate:"omitempty,oneof=High Medium Low"`
}

type UpdateSightingRequest struct {
	SightedDate     string   `json:"sighted_date" validate:"required"`
	Sighted         Location `json:"sighted_location"`
	ApparentGender  string   `json:"apparent_gender,omitempty"`
	ApparentAge     *int     `json:"apparent_age,omitempty"`
	Height          string   `json:"height,omitempty"`
	Weight          string   `json:"weight,omitempty"`
	Description     string   `json:"description,omitempty"`
	ConfidenceLevel string   `json:"confidence_level" validate:"required,oneof=High Medium Low"`
	SourceType      string   `json:"source_type" validate:"required,oneof=Witness ManualEntry Other"`
	Priority        string   `json:"priority,omitempty" validate:"omitempty,oneof=High Medium Low"`
}

// SightingFilter narrows sighting listings. Zero values mean "no filter".
type SightingFilter struct {
	Status          string
	ConfidenceLevel string
	SourceType      string
}

// SightingDistance is a sighting annotated with its distance from a search
// center.
type SightingDistance struct {
	Sighting
	DistanceKM float64 `json:"distance_km"`
}
