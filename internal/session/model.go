package session

import (
	"time"

	"github.com/google/uuid"
)

// ProductUsed is one product applied during a session.
type ProductUsed struct {
	Name     string  `json:"name"`
	Brand    *string `json:"brand,omitempty"`
	Quantity *string `json:"quantity,omitempty"`
}

// Record is the immutable audit of one completed treatment visit. It is
// written exactly once and never updated or deleted.
type Record struct {
	ID              uuid.UUID
	TreatmentPlanID uuid.UUID
	AppointmentID   uuid.UUID
	PatientID       uuid.UUID
	ProfessionalID  uuid.UUID

	SessionNumber int // 1-based ordinal within the plan
	Date          time.Time

	Procedure    string
	ProductsUsed []ProductUsed

	ProfNotes       string
	PatientReaction *string
	SideEffects     []string

	// Opaque references into the photo-storage collaborator.
	PhotoIDs []string

	PostInstructions []string
	NextSessionDate  *time.Time

	DurationMinutes *int
	Completed       bool

	CreatedAt time.Time
}
