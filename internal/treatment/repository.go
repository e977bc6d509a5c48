package treatment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrPlanNotFound = errors.New("treatment plan not found")

// Patch carries the optional field updates UpdatePlan accepts. Nil
// fields are left untouched.
type Patch struct {
	Status          *PlanStatus
	NextSessionDate *time.Time
	Notes           *string
	Outcome         *string
	Satisfaction    *int
}

// Repository contains all treatment-plan store interactions.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	Insert(ctx context.Context, p *Plan) error

	// UpdateProgress writes the recomputed counters and status in one
	// statement. It is the only write path for SessionsCompleted.
	UpdateProgress(ctx context.Context, id uuid.UUID, completed, progress int, status PlanStatus) (*Plan, error)

	Patch(ctx context.Context, id uuid.UUID, patch Patch) (*Plan, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Plan, error)
}
