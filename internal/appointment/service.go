package appointment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dermaluz/clinic-scheduling/internal/config"
	"github.com/dermaluz/clinic-scheduling/internal/directory"
	"github.com/dermaluz/clinic-scheduling/internal/notify"
	redisclient "github.com/dermaluz/clinic-scheduling/internal/redis"
	"github.com/dermaluz/clinic-scheduling/internal/schedule"
)

var (
	ErrSlotTaken        = errors.New("slot conflicts with an existing booking")
	ErrBookingContended = errors.New("slot is currently being booked, please retry")
)

// Notifier delivers booking messages. Implementations must not block.
type Notifier interface {
	VisitBooked(v notify.VisitDetails)
	VisitRescheduled(v notify.VisitDetails)
	VisitCancelled(v notify.VisitDetails, reason string)
}

// Service is the appointment lifecycle manager. It composes the slot
// calculator with the appointment store and the directory; it never
// caches store state across calls.
type Service struct {
	repo      Repository
	directory directory.Repository
	locker    redisclient.Locker
	notifier  Notifier
	cfg       config.Config
}

func NewService(repo Repository, dir directory.Repository, locker redisclient.Locker, notifier Notifier, cfg config.Config) *Service {
	return &Service{
		repo:      repo,
		directory: dir,
		locker:    locker,
		notifier:  notifier,
		cfg:       cfg,
	}
}

type CreateParams struct {
	PatientID       uuid.UUID
	ProfessionalID  uuid.UUID
	TreatmentPlanID *uuid.UUID
	Kind            Kind
	Date            time.Time
	StartTime       string
	Reason          *string
	NotifyWhatsApp  bool
	NotifyPhone     *string
	PaymentStatus   string
	PaymentAmount   int64
}

// Create books a new pending appointment. Slot availability is the
// caller's concern (check via Availability first); the optional booking
// guard adds an overlap check under a redis lock for deployments that
// want the race closed.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Appointment, error) {
	lookups := directory.NewCache(s.directory)

	prof, err := lookups.Professional(ctx, p.ProfessionalID)
	if err != nil {
		if errors.Is(err, directory.ErrProfessionalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load professional: %w", err)
	}

	endTime, err := schedule.AddMinutes(p.StartTime, s.visitMinutes(prof))
	if err != nil {
		return nil, err
	}

	kind := p.Kind
	if kind == "" {
		kind = KindConsultation
	}

	appt := &Appointment{
		ID:              uuid.New(),
		PatientID:       p.PatientID,
		ProfessionalID:  p.ProfessionalID,
		TreatmentPlanID: p.TreatmentPlanID,
		Kind:            kind,
		Date:            p.Date,
		StartTime:       p.StartTime,
		EndTime:         endTime,
		Status:          StatusPending,
		Reason:          p.Reason,
		NotifyWhatsApp:  p.NotifyWhatsApp,
		NotifyPhone:     p.NotifyPhone,
		PaymentStatus:   p.PaymentStatus,
		PaymentAmount:   p.PaymentAmount,
		CreatedAt:       time.Now(),
	}

	if err := s.insertGuarded(ctx, appt); err != nil {
		return nil, err
	}

	s.sendVisitMessage(ctx, lookups, appt, func(v notify.VisitDetails) {
		s.notifier.VisitBooked(v)
	})

	return appt, nil
}

// insertGuarded persists the appointment, optionally inside the booking
// lock with an interval-overlap conflict check. Without the guard two
// concurrent bookers can both land on the same slot; that is the
// documented store-level race.
func (s *Service) insertGuarded(ctx context.Context, appt *Appointment) error {
	if !s.cfg.BookingGuard || s.locker == nil {
		return s.repo.Insert(ctx, appt)
	}

	err := s.locker.WithBookingLock(ctx, appt.ProfessionalID, appt.DateString(), appt.StartTime, func(lockCtx context.Context) error {
		active, err := s.repo.ListActiveByProfessionalDay(lockCtx, appt.ProfessionalID, appt.Date)
		if err != nil {
			return fmt.Errorf("list active bookings: %w", err)
		}

		intervals := make([]schedule.Interval, 0, len(active))
		for _, a := range active {
			intervals = append(intervals, schedule.Interval{Start: a.StartTime, End: a.EndTime})
		}
		hit, err := schedule.FindConflict(schedule.Interval{Start: appt.StartTime, End: appt.EndTime}, intervals)
		if err != nil {
			return err
		}
		if hit >= 0 {
			return ErrSlotTaken
		}

		return s.repo.Insert(lockCtx, appt)
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrBookingContended
	}
	return err
}

// Cancel marks the appointment cancelled and records the reason.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	appt, err := s.repo.Cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	s.sendVisitMessage(ctx, directory.NewCache(s.directory), appt, func(v notify.VisitDetails) {
		s.notifier.VisitCancelled(v, reason)
	})

	return appt, nil
}

// UpdateStatus applies a direct status transition. Legality of the
// transition is not checked here; callers that care use CanTransition.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	return s.repo.SetStatus(ctx, id, to)
}

// Reschedule moves an appointment to a new date/time. Under the lineage
// policy the original is marked rescheduled and a new pending record is
// created pointing back at it; under the mutate policy the record is
// rewritten in place. The returned appointment is the live one.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time, newTime, reason string) (*Appointment, error) {
	original, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lookups := directory.NewCache(s.directory)
	prof, err := lookups.Professional(ctx, original.ProfessionalID)
	if err != nil {
		if errors.Is(err, directory.ErrProfessionalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load professional: %w", err)
	}

	endTime, err := schedule.AddMinutes(newTime, s.visitMinutes(prof))
	if err != nil {
		return nil, err
	}

	var live *Appointment

	switch s.cfg.ReschedulePolicy {
	case config.RescheduleMutate:
		live, err = s.repo.UpdateSchedule(ctx, id, newDate, newTime, endTime, reason)
		if err != nil {
			return nil, err
		}
	default: // lineage
		if _, err := s.repo.MarkRescheduled(ctx, id, reason); err != nil {
			return nil, err
		}

		originalID := id
		rescheduleReason := reason
		replacement := &Appointment{
			ID:               uuid.New(),
			PatientID:        original.PatientID,
			ProfessionalID:   original.ProfessionalID,
			TreatmentPlanID:  original.TreatmentPlanID,
			Kind:             original.Kind,
			Date:             newDate,
			StartTime:        newTime,
			EndTime:          endTime,
			Status:           StatusPending,
			Reason:           original.Reason,
			NotifyWhatsApp:   original.NotifyWhatsApp,
			NotifyPhone:      original.NotifyPhone,
			RescheduledFrom:  &originalID,
			RescheduleReason: &rescheduleReason,
			PaymentStatus:    original.PaymentStatus,
			PaymentAmount:    original.PaymentAmount,
			CreatedAt:        time.Now(),
		}

		if err := s.insertGuarded(ctx, replacement); err != nil {
			return nil, err
		}
		live = replacement
	}

	s.sendVisitMessage(ctx, lookups, live, func(v notify.VisitDetails) {
		s.notifier.VisitRescheduled(v)
	})

	return live, nil
}

// SetNotifyPrefs updates the WhatsApp opt-in and contact number.
func (s *Service) SetNotifyPrefs(ctx context.Context, id uuid.UUID, enabled bool, phone *string) (*Appointment, error) {
	return s.repo.SetNotifyPrefs(ctx, id, enabled, phone)
}

// Availability expands the professional's template for one day and marks
// slots held by pending or confirmed bookings. A missing professional or
// an empty template yields an empty slice, not an error.
func (s *Service) Availability(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]schedule.Slot, error) {
	prof, err := s.directory.GetProfessionalByID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, directory.ErrProfessionalNotFound) {
			return []schedule.Slot{}, nil
		}
		return nil, fmt.Errorf("load professional: %w", err)
	}
	if len(prof.Availability) == 0 {
		return []schedule.Slot{}, nil
	}

	active, err := s.repo.ListActiveByProfessionalDay(ctx, professionalID, date)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}

	booked := make([]schedule.Booking, 0, len(active))
	for _, a := range active {
		booked = append(booked, schedule.Booking{ID: a.ID, StartTime: a.StartTime})
	}

	return schedule.DaySlots(prof.Availability, date, s.visitMinutes(prof), booked)
}

// CheckSlotFree reports whether one specific slot is bookable. The check
// and any subsequent Create are separate round trips; nothing stops a
// concurrent booker in between.
func (s *Service) CheckSlotFree(ctx context.Context, professionalID uuid.UUID, date time.Time, startTime string) (bool, error) {
	slots, err := s.Availability(ctx, professionalID, date)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if slot.Time == startTime {
			return slot.Available, nil
		}
	}
	return false, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListByProfessionalDay(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]Appointment, error) {
	return s.repo.ListByProfessionalDay(ctx, professionalID, date)
}

func (s *Service) ListAll(ctx context.Context) ([]Appointment, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) visitMinutes(prof *directory.Professional) int {
	if prof.VisitMinutes > 0 {
		return prof.VisitMinutes
	}
	return s.cfg.DefaultVisitMinutes
}

// sendVisitMessage resolves names for the message and hands it to the
// notifier. Failures only log; booking never depends on delivery.
func (s *Service) sendVisitMessage(ctx context.Context, lookups *directory.Cache, appt *Appointment, send func(notify.VisitDetails)) {
	if s.notifier == nil || !appt.NotifyWhatsApp || appt.NotifyPhone == nil || *appt.NotifyPhone == "" {
		return
	}

	patient, err := s.directory.GetPatientByID(ctx, appt.PatientID)
	if err != nil {
		log.Printf("skipping notification for appointment %s: load patient: %v", appt.ID, err)
		return
	}
	prof, err := lookups.Professional(ctx, appt.ProfessionalID)
	if err != nil {
		log.Printf("skipping notification for appointment %s: load professional: %v", appt.ID, err)
		return
	}

	send(notify.VisitDetails{
		PatientName:  patient.Name,
		Phone:        *appt.NotifyPhone,
		Date:         appt.DateString(),
		Time:         appt.StartTime,
		Professional: prof.Name,
	})
}
