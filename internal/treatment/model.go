package treatment

import (
	"time"

	"github.com/google/uuid"
)

type PlanStatus string

const (
	PlanScheduled  PlanStatus = "scheduled"
	PlanInProgress PlanStatus = "in_progress"
	PlanPaused     PlanStatus = "paused"
	PlanFinished   PlanStatus = "finished"
	PlanCancelled  PlanStatus = "cancelled"
)

// Plan is a patient's enrollment in a multi-session treatment.
// SessionsTotal is fixed at enrollment; SessionsCompleted only ever
// grows, through RecordSessionCompletion.
type Plan struct {
	ID             uuid.UUID
	PatientID      uuid.UUID
	TreatmentID    uuid.UUID
	ProfessionalID uuid.UUID
	TreatmentName  string

	SessionsTotal     int
	SessionsCompleted int
	Progress          int // 0-100

	Status           PlanStatus
	StartDate        time.Time
	EstimatedEndDate *time.Time
	NextSessionDate  *time.Time

	Notes        *string
	Outcome      *string
	Satisfaction *int // 1-5

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// IsActive reports whether the plan still accepts sessions.
func (s PlanStatus) IsActive() bool {
	return s == PlanScheduled || s == PlanInProgress
}
