// Package treatment tracks a patient's progression through a
// multi-session treatment plan.
package treatment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidSessionCount = errors.New("sessions total must be positive")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type EnrollParams struct {
	PatientID        uuid.UUID
	TreatmentID      uuid.UUID
	ProfessionalID   uuid.UUID
	TreatmentName    string
	SessionsTotal    int
	StartDate        *time.Time // nil means now
	EstimatedEndDate *time.Time
	Notes            *string
}

// Enroll creates a plan with zero completed sessions. A start date today
// or in the past puts the plan straight into in_progress.
func (s *Service) Enroll(ctx context.Context, p EnrollParams) (*Plan, error) {
	if p.SessionsTotal <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSessionCount, p.SessionsTotal)
	}

	now := time.Now()
	start := now
	if p.StartDate != nil {
		start = *p.StartDate
	}

	status := PlanScheduled
	if !start.After(endOfToday(now)) {
		status = PlanInProgress
	}

	plan := &Plan{
		ID:                uuid.New(),
		PatientID:         p.PatientID,
		TreatmentID:       p.TreatmentID,
		ProfessionalID:    p.ProfessionalID,
		TreatmentName:     p.TreatmentName,
		SessionsTotal:     p.SessionsTotal,
		SessionsCompleted: 0,
		Progress:          0,
		Status:            status,
		StartDate:         start,
		EstimatedEndDate:  p.EstimatedEndDate,
		Notes:             p.Notes,
		CreatedAt:         now,
	}

	if err := s.repo.Insert(ctx, plan); err != nil {
		return nil, fmt.Errorf("insert treatment plan: %w", err)
	}

	return plan, nil
}

// RecordSessionCompletion counts one finished visit against the plan.
// This is the only mutation path for progress. It is not idempotent:
// calling it twice for the same visit double-counts, which is why the
// session recorder journals the appointment it completed for.
func (s *Service) RecordSessionCompletion(ctx context.Context, planID uuid.UUID) (*Plan, error) {
	plan, err := s.repo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	completed := plan.SessionsCompleted + 1
	progress := ProgressPercent(completed, plan.SessionsTotal)

	status := PlanInProgress
	if completed >= plan.SessionsTotal {
		status = PlanFinished
	}

	return s.repo.UpdateProgress(ctx, planID, completed, progress, status)
}

// UpdatePlan applies a partial field patch with no business-rule
// validation, mirroring the generic update the clinic staff screens use.
func (s *Service) UpdatePlan(ctx context.Context, planID uuid.UUID, patch Patch) (*Plan, error) {
	return s.repo.Patch(ctx, planID, patch)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Plan, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListActiveByPatient filters to plans still accepting sessions.
func (s *Service) ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]Plan, error) {
	plans, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	active := plans[:0:0]
	for _, p := range plans {
		if p.Status.IsActive() {
			active = append(active, p)
		}
	}
	return active, nil
}

// ProgressPercent is round(100 * completed / total).
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

func endOfToday(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, now.Location())
}
