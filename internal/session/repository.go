package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrRecordNotFound = errors.New("session record not found")

// Journal steps for one completion sequence. The session_recorded entry
// is the intent written up front; the later entries are markers written
// as each step lands, so a crash mid-sequence leaves a readable trail.
const (
	StepSessionRecorded        = "session_recorded"
	StepPlanProgressed         = "plan_progressed"
	StepAppointmentCompleted   = "appointment_completed"
	StepNextAppointmentCreated = "next_appointment_created"
)

// JournalEntry is one durable intent record in a completion sequence.
type JournalEntry struct {
	ID            int64
	SequenceID    uuid.UUID
	Step          string
	PlanID        uuid.UUID
	AppointmentID uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// IncompleteSequence is a completion sequence whose session was recorded
// but whose appointment was never marked completed.
type IncompleteSequence struct {
	SequenceID    uuid.UUID
	PlanID        uuid.UUID
	AppointmentID uuid.UUID
	Payload       []byte
	HasNext       bool // a next_appointment_created entry already exists
}

// Repository persists session records and the completion journal.
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]Record, error)

	InsertJournal(ctx context.Context, e JournalEntry) error
	FindIncomplete(ctx context.Context, olderThan time.Time) ([]IncompleteSequence, error)
}
