package model

import (
	"time"

	"github.com/google/uuid"
)

// Case statuses. Resolved and Suspended are reachable only through an
// explicit edit; an edit can also reactivate a case.
const (
	CaseStatusActive    = "Active"
	CaseStatusResolved  = "Resolved"
	CaseStatusSuspended = "Suspended"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Case is a missing-person report record.
type Case struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	LastSeenDate  time.Time  `json:"last_seen_date"`
	LastSeen      Location   `json:"last_seen_location"`
	Status        string     `json:"status"`   // Active, Resolved, Suspended
	Priority      string     `json:"priority"` // High, Medium, Low
	Circumstances string     `json:"circumstances,omitempty"`
	Description   string     `json:"description,omitempty"`
	HeightCM      *float64   `json:"height_cm,omitempty"`
	WeightKG      *float64   `json:"weight_kg,omitempty"`
	Embedding     []float64  `json:"embedding,omitempty"`
	CreatedBy     string     `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasEmbedding reports whether an embedding vector is attached.
func (c Case) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// EmbeddingText is the text sent to the embedding provider for this case.
func (c Case) EmbeddingText() string {
	text := c.Name
	if c.Description != "" {
		text += " " + c.Description
	}
	if c.Circumstances != "" {
		text += " " + c.Circumstances
	}
	if c.LastSeen.City != "" {
		text += " " + c.LastSeen.City
	}
	return text
}

type CreateCaseRequest struct {
	Name          string   `json:"name" validate:"required"`
	DateOfBirth   string   `json:"date_of_birth,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	LastSeenDate  string   `json:"last_seen_date" validate:"required"`
	LastSeen      Location `json:"last_seen_location"`
	Priority      string   `json:"priority,omitempty" validate:"omitempty,oneof=High Medium Low"`
	Circumstances string   `json:"circumstances,omitempty"`
	Description   string   `json:"description,omitempty"`
	Height        string   `json:"height,omitempty"`
	Weight        string   `json:"weight,omitempty"`
}

type UpdateCaseRequest struct {
	Name          string   `json:"name" validate:"required"`
	DateOfBirth   string   `json:"date_of_birth,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	LastSeenDate  string   `json:"last_seen_date" validate:"required"`
	LastSeen      Location `json:"last_seen_location"`
	Status        string   `json:"status" validate:"required,oneof=Active Resolved Suspended"`
	Priority      string   `json:"priority,omitempty" validate:"omitempty,oneof=High Medium Low"`
	Circumstances string   `json:"circumstances,omitempty"`
	Description   string   `json:"description,omitempty"`
	Height        string   `json:"height,omitempty"`
	Weight        string   `json:"weight,omitempty"`
}

// CaseFilter narrows case listings. Zero values mean "no filter".
type CaseFilter struct {
	Status   string
	Priority string
}

// CaseDistance is a case annotated with its distance from a search center.
type CaseDistance struct {
	Case
	DistanceKM float64 `json:"distance_km"`
}
