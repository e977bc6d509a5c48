package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending     Status = "pending"     // created, awaiting reception approval
	StatusConfirmed   Status = "confirmed"   // approved by reception
	StatusRescheduled Status = "rescheduled" // moved to a new date/time
	StatusCancelled   Status = "cancelled"
	StatusCompleted   Status = "completed"
	StatusNoShow      Status = "no_show"
)

type Kind string

const (
	KindConsultation     Kind = "consultation"
	KindTreatmentSession Kind = "treatment_session"
)

// Appointment is one scheduled patient/professional encounter. The
// calendar day and the HH:mm bounds are stored separately; EndTime is
// always StartTime plus the professional's visit duration.
type Appointment struct {
	ID              uuid.UUID
	PatientID       uuid.UUID
	ProfessionalID  uuid.UUID
	TreatmentPlanID *uuid.UUID
	Kind            Kind
	Date            time.Time // calendar day only
	StartTime       string    // "09:00"
	EndTime         string    // "09:30"
	Status          Status
	Reason          *string // why the patient booked
	PatientNotes    *string
	ProfNotes       *string

	// WhatsApp notification preference. The phone may differ from the
	// patient's primary contact number.
	NotifyWhatsApp bool
	NotifyPhone    *string

	// Reschedule lineage: set on the replacement record when the
	// lineage policy is active, or on the record itself under mutate.
	RescheduledFrom  *uuid.UUID
	RescheduleReason *string

	// Opaque payment fields, recorded but never interpreted here.
	PaymentStatus string
	PaymentAmount int64

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// DateString renders the calendar day in the wire format.
func (a *Appointment) DateString() string {
	return a.Date.Format("2006-01-02")
}

// IsActive reports whether the appointment still occupies its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transition leaves this record.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRescheduled, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// CanTransition reports whether from→to is a legal state-machine move.
// The service itself does not enforce this; the HTTP layer uses it to
// reject obviously broken requests.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() || from == to {
		return false
	}
	switch to {
	case StatusConfirmed:
		return from == StatusPending
	case StatusRescheduled, StatusCancelled, StatusCompleted, StatusNoShow:
		return from.IsActive()
	}
	return false
}
