package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Repository contains all appointment store interactions needed by the
// lifecycle manager. All writes stamp updated_at; none of them retries.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Insert(ctx context.Context, a *Appointment) error

	SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error)
	MarkRescheduled(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error)

	// UpdateSchedule rewrites the temporal fields in place; only the
	// mutate reschedule policy uses it.
	UpdateSchedule(ctx context.Context, id uuid.UUID, date time.Time, startTime, endTime, reason string) (*Appointment, error)

	SetNotifyPrefs(ctx context.Context, id uuid.UUID, enabled bool, phone *string) (*Appointment, error)

	// Queries. Patient listings come back most recent day first; the
	// professional's day agenda comes back in start-time order.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
	ListByProfessionalDay(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]Appointment, error)
	ListAll(ctx context.Context) ([]Appointment, error)

	// ListActiveByProfessionalDay returns only pending and confirmed
	// bookings, the set that blocks slots.
	ListActiveByProfessionalDay(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]Appointment, error)
}
