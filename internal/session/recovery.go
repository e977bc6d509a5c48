package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dermaluz/clinic-scheduling/internal/appointment"
)

// RecoverIncomplete finds completion sequences that recorded a session
// but never marked the appointment completed, and finishes them: step 4
// always, step 5 when the journal carries a planned next session that
// was never booked. Only sequences older than minAge are touched, to
// stay off in-flight requests. Returns the number of sequences repaired.
func (r *Recorder) RecoverIncomplete(ctx context.Context, minAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-minAge)

	stuck, err := r.repo.FindIncomplete(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find incomplete sequences: %w", err)
	}

	repaired := 0
	for _, seq := range stuck {
		if err := r.recoverSequence(ctx, seq); err != nil {
			log.Printf("recovery of sequence %s failed: %v", seq.SequenceID, err)
			continue
		}
		repaired++
	}

	return repaired, nil
}

func (r *Recorder) recoverSequence(ctx context.Context, seq IncompleteSequence) error {
	var payload journalPayload
	if len(seq.Payload) > 0 {
		if err := json.Unmarshal(seq.Payload, &payload); err != nil {
			return fmt.Errorf("decode journal payload: %w", err)
		}
	}

	appt, err := r.appointments.Get(ctx, seq.AppointmentID)
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			// Nothing left to repair; mark the sequence closed so it
			// stops reappearing.
			r.journalBestEffort(ctx, seq.SequenceID, StepAppointmentCompleted, seq.PlanID, seq.AppointmentID, payload)
			return nil
		}
		return fmt.Errorf("load appointment: %w", err)
	}

	if appt.Status != appointment.StatusCompleted {
		if _, err := r.appointments.UpdateStatus(ctx, seq.AppointmentID, appointment.StatusCompleted); err != nil {
			return fmt.Errorf("complete appointment: %w", err)
		}
	}
	r.journalBestEffort(ctx, seq.SequenceID, StepAppointmentCompleted, seq.PlanID, seq.AppointmentID, payload)

	if seq.HasNext || payload.NextDate == nil || payload.NextTime == nil {
		return nil
	}

	plan, err := r.plans.Get(ctx, seq.PlanID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if !plan.Status.IsActive() {
		return nil
	}

	date, err := time.Parse("2006-01-02", *payload.NextDate)
	if err != nil {
		return fmt.Errorf("parse journaled next date: %w", err)
	}

	if _, err := r.bookNextSession(ctx, plan, date, *payload.NextTime); err != nil {
		return err
	}
	r.journalBestEffort(ctx, seq.SequenceID, StepNextAppointmentCreated, seq.PlanID, seq.AppointmentID, payload)

	return nil
}
