// Package directory is the boundary to the clinic's patient and
// professional records. The engine only reads here: visit durations,
// availability templates and contact details.
package directory

import (
	"time"

	"github.com/google/uuid"

	"github.com/dermaluz/clinic-scheduling/internal/schedule"
)

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Professional struct {
	ID           uuid.UUID
	Name         string
	Title        *string // e.g. "Clinical Dermatologist"
	VisitMinutes int     // per-visit duration, 0 means use the configured default
	Availability schedule.WeeklyAvailability
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
