// Package session writes the immutable record of each completed
// treatment visit and drives the follow-on bookkeeping: plan progress,
// appointment completion and scheduling of the next session.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dermaluz/clinic-scheduling/internal/appointment"
	"github.com/dermaluz/clinic-scheduling/internal/treatment"
)

// PlanTracker is the slice of the treatment service the recorder needs.
type PlanTracker interface {
	Get(ctx context.Context, id uuid.UUID) (*treatment.Plan, error)
	RecordSessionCompletion(ctx context.Context, planID uuid.UUID) (*treatment.Plan, error)
	UpdatePlan(ctx context.Context, planID uuid.UUID, patch treatment.Patch) (*treatment.Plan, error)
}

// Booker is the slice of the appointment service the recorder needs.
type Booker interface {
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to appointment.Status) (*appointment.Appointment, error)
	Create(ctx context.Context, p appointment.CreateParams) (*appointment.Appointment, error)
}

type Recorder struct {
	repo         Repository
	plans        PlanTracker
	appointments Booker
}

func NewRecorder(repo Repository, plans PlanTracker, appointments Booker) *Recorder {
	return &Recorder{
		repo:         repo,
		plans:        plans,
		appointments: appointments,
	}
}

// Content is the clinical content of one completed visit.
type Content struct {
	Procedure        string
	ProductsUsed     []ProductUsed
	ProfNotes        string
	PatientReaction  *string
	SideEffects      []string
	PhotoIDs         []string
	PostInstructions []string
	DurationMinutes  *int

	// When both are set and the plan is still unfinished, the next
	// treatment-session appointment is booked as part of completion.
	NextSessionDate *time.Time
	NextSessionTime *string // "HH:mm"
}

type CompletionResult struct {
	Record          *Record
	Plan            *treatment.Plan
	NextAppointment *appointment.Appointment
}

type journalPayload struct {
	RecordID      uuid.UUID `json:"record_id"`
	SessionNumber int       `json:"session_number"`
	NextDate      *string   `json:"next_date,omitempty"`
	NextTime      *string   `json:"next_time,omitempty"`
}

// CompleteSession runs the four-write completion sequence: persist the
// immutable session record, count it against the plan, mark the
// appointment completed, and book the next session when one is due.
//
// The writes span three entities with no shared transaction; a failure
// mid-sequence leaves the earlier writes committed. The journal intent
// written before the first store write lets the recovery worker find and
// finish interrupted sequences.
func (r *Recorder) CompleteSession(ctx context.Context, planID, appointmentID uuid.UUID, c Content) (*CompletionResult, error) {
	plan, err := r.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &Record{
		ID:               uuid.New(),
		TreatmentPlanID:  planID,
		AppointmentID:    appointmentID,
		PatientID:        plan.PatientID,
		ProfessionalID:   plan.ProfessionalID,
		SessionNumber:    plan.SessionsCompleted + 1,
		Date:             now,
		Procedure:        c.Procedure,
		ProductsUsed:     c.ProductsUsed,
		ProfNotes:        c.ProfNotes,
		PatientReaction:  c.PatientReaction,
		SideEffects:      c.SideEffects,
		PhotoIDs:         c.PhotoIDs,
		PostInstructions: c.PostInstructions,
		NextSessionDate:  c.NextSessionDate,
		DurationMinutes:  c.DurationMinutes,
		Completed:        true,
		CreatedAt:        now,
	}

	payload := journalPayload{
		RecordID:      rec.ID,
		SessionNumber: rec.SessionNumber,
	}
	if c.NextSessionDate != nil {
		d := c.NextSessionDate.Format("2006-01-02")
		payload.NextDate = &d
	}
	payload.NextTime = c.NextSessionTime

	seq := uuid.New()

	// Intent first. Nothing is committed yet, so failing here is safe.
	if err := r.journal(ctx, seq, StepSessionRecorded, planID, appointmentID, payload); err != nil {
		return nil, err
	}

	if err := r.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert session record: %w", err)
	}

	updatedPlan, err := r.plans.RecordSessionCompletion(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("record session completion: %w", err)
	}
	r.journalBestEffort(ctx, seq, StepPlanProgressed, planID, appointmentID, payload)

	if _, err := r.appointments.UpdateStatus(ctx, appointmentID, appointment.StatusCompleted); err != nil {
		return nil, fmt.Errorf("complete appointment: %w", err)
	}
	r.journalBestEffort(ctx, seq, StepAppointmentCompleted, planID, appointmentID, payload)

	result := &CompletionResult{Record: rec, Plan: updatedPlan}

	if updatedPlan.Status != treatment.PlanFinished && c.NextSessionDate != nil && c.NextSessionTime != nil {
		next, err := r.bookNextSession(ctx, updatedPlan, *c.NextSessionDate, *c.NextSessionTime)
		if err != nil {
			return nil, err
		}
		r.journalBestEffort(ctx, seq, StepNextAppointmentCreated, planID, appointmentID, payload)
		result.NextAppointment = next
	}

	return result, nil
}

func (r *Recorder) bookNextSession(ctx context.Context, plan *treatment.Plan, date time.Time, startTime string) (*appointment.Appointment, error) {
	planID := plan.ID
	next, err := r.appointments.Create(ctx, appointment.CreateParams{
		PatientID:       plan.PatientID,
		ProfessionalID:  plan.ProfessionalID,
		TreatmentPlanID: &planID,
		Kind:            appointment.KindTreatmentSession,
		Date:            date,
		StartTime:       startTime,
	})
	if err != nil {
		return nil, fmt.Errorf("book next session: %w", err)
	}

	nextDate := date
	if _, err := r.plans.UpdatePlan(ctx, plan.ID, treatment.Patch{NextSessionDate: &nextDate}); err != nil {
		log.Printf("failed to store next session date on plan %s: %v", plan.ID, err)
	}

	return next, nil
}

func (r *Recorder) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.repo.GetByID(ctx, id)
}

func (r *Recorder) ListByPlan(ctx context.Context, planID uuid.UUID) ([]Record, error) {
	return r.repo.ListByPlan(ctx, planID)
}

func (r *Recorder) journal(ctx context.Context, seq uuid.UUID, step string, planID, appointmentID uuid.UUID, payload journalPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode journal payload: %w", err)
	}
	return r.repo.InsertJournal(ctx, JournalEntry{
		SequenceID:    seq,
		Step:          step,
		PlanID:        planID,
		AppointmentID: appointmentID,
		Payload:       data,
		CreatedAt:     time.Now(),
	})
}

func (r *Recorder) journalBestEffort(ctx context.Context, seq uuid.UUID, step string, planID, appointmentID uuid.UUID, payload journalPayload) {
	if err := r.journal(ctx, seq, step, planID, appointmentID, payload); err != nil {
		log.Printf("failed to journal %s for sequence %s: %v", step, seq, err)
	}
}
