package appointment

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaluz/clinic-scheduling/internal/config"
	"github.com/dermaluz/clinic-scheduling/internal/directory"
	"github.com/dermaluz/clinic-scheduling/internal/schedule"
)

// fakeRepo is an in-memory Repository.
type fakeRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*Appointment
	order []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uuid.UUID]*Appointment)}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) Insert(_ context.Context, a *Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.byID[a.ID] = &cp
	f.order = append(f.order, a.ID)
	return nil
}

func (f *fakeRepo) mutate(id uuid.UUID, fn func(a *Appointment)) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	fn(a)
	now := time.Now()
	a.UpdatedAt = &now
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	return f.mutate(id, func(a *Appointment) { a.Status = to })
}

func (f *fakeRepo) Cancel(_ context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	return f.mutate(id, func(a *Appointment) {
		a.Status = StatusCancelled
		a.PatientNotes = &reason
	})
}

func (f *fakeRepo) MarkRescheduled(_ context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	return f.mutate(id, func(a *Appointment) {
		a.Status = StatusRescheduled
		a.RescheduleReason = &reason
	})
}

func (f *fakeRepo) UpdateSchedule(_ context.Context, id uuid.UUID, date time.Time, startTime, endTime, reason string) (*Appointment, error) {
	return f.mutate(id, func(a *Appointment) {
		a.Date = date
		a.StartTime = startTime
		a.EndTime = endTime
		a.Status = StatusRescheduled
		a.RescheduleReason = &reason
	})
}

func (f *fakeRepo) SetNotifyPrefs(_ context.Context, id uuid.UUID, enabled bool, phone *string) (*Appointment, error) {
	return f.mutate(id, func(a *Appointment) {
		a.NotifyWhatsApp = enabled
		a.NotifyPhone = phone
	})
}

func (f *fakeRepo) snapshot() []Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Appointment, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.byID[id])
	}
	return out
}

func (f *fakeRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]Appointment, error) {
	var out []Appointment
	for _, a := range f.snapshot() {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out, nil
}

func (f *fakeRepo) ListByProfessionalDay(_ context.Context, professionalID uuid.UUID, date time.Time) ([]Appointment, error) {
	var out []Appointment
	for _, a := range f.snapshot() {
		if a.ProfessionalID == professionalID && a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]Appointment, error) {
	out := f.snapshot()
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeRepo) ListActiveByProfessionalDay(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]Appointment, error) {
	all, _ := f.ListByProfessionalDay(ctx, professionalID, date)
	var out []Appointment
	for _, a := range all {
		if a.Status.IsActive() {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeDirectory is an in-memory directory.Repository.
type fakeDirectory struct {
	patients      map[uuid.UUID]*directory.Patient
	professionals map[uuid.UUID]*directory.Professional
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		patients:      make(map[uuid.UUID]*directory.Patient),
		professionals: make(map[uuid.UUID]*directory.Professional),
	}
}

func (f *fakeDirectory) GetPatientByID(_ context.Context, id uuid.UUID) (*directory.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, directory.ErrPatientNotFound
	}
	return p, nil
}

func (f *fakeDirectory) GetProfessionalByID(_ context.Context, id uuid.UUID) (*directory.Professional, error) {
	p, ok := f.professionals[id]
	if !ok {
		return nil, directory.ErrProfessionalNotFound
	}
	return p, nil
}

// fakeLocker serializes critical sections with a plain mutex.
type fakeLocker struct {
	mu sync.Mutex
}

func (f *fakeLocker) WithBookingLock(ctx context.Context, _ uuid.UUID, _, _ string, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx)
}

type fixture struct {
	svc            *Service
	repo           *fakeRepo
	dir            *fakeDirectory
	patientID      uuid.UUID
	professionalID uuid.UUID
}

func newFixture(t *testing.T, cfg config.Config) *fixture {
	t.Helper()

	repo := newFakeRepo()
	dir := newFakeDirectory()

	patientID := uuid.New()
	dir.patients[patientID] = &directory.Patient{ID: patientID, Name: "Ana Torres"}

	professionalID := uuid.New()
	dir.professionals[professionalID] = &directory.Professional{
		ID:           professionalID,
		Name:         "Dr. Ruiz",
		VisitMinutes: 45,
		Availability: schedule.WeeklyAvailability{
			time.Monday:    {{Start: "09:00", End: "12:00"}},
			time.Wednesday: {{Start: "09:00", End: "12:00"}},
			time.Friday:    {{Start: "14:00", End: "18:00"}},
		},
	}

	return &fixture{
		svc:            NewService(repo, dir, &fakeLocker{}, nil, cfg),
		repo:           repo,
		dir:            dir,
		patientID:      patientID,
		professionalID: professionalID,
	}
}

func defaultConfig() config.Config {
	return config.Config{
		DefaultVisitMinutes: 30,
		ReschedulePolicy:    config.RescheduleLineage,
	}
}

var (
	// 2024-01-08 is a Monday, 2024-01-10 a Wednesday, 2024-01-12 a Friday.
	jan8  = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	jan10 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan12 = time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
)

func TestCreateComputesEndTimeFromVisitDuration(t *testing.T) {
	f := newFixture(t, defaultConfig())

	appt, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "09:45", appt.EndTime)
	assert.Equal(t, StatusPending, appt.Status)
	assert.Equal(t, KindConsultation, appt.Kind)
	assert.Equal(t, "2024-01-10", appt.DateString())

	stored, err := f.svc.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, stored.ID)
}

func TestCreateFallsBackToDefaultDuration(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.dir.professionals[f.professionalID].VisitMinutes = 0

	appt, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:30", appt.EndTime)
}

func TestCreateUnknownProfessional(t *testing.T) {
	f := newFixture(t, defaultConfig())

	_, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: uuid.New(),
		Date:           jan10,
		StartTime:      "09:00",
	})
	assert.ErrorIs(t, err, directory.ErrProfessionalNotFound)
}

func TestCreateInvalidStartTime(t *testing.T) {
	f := newFixture(t, defaultConfig())

	_, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "quarter past nine",
	})
	assert.ErrorIs(t, err, schedule.ErrInvalidClock)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, defaultConfig())

	appt, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), appt.ID, "patient is travelling")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.PatientNotes)
	assert.Equal(t, "patient is travelling", *cancelled.PatientNotes)
	assert.NotNil(t, cancelled.UpdatedAt)
}

func TestCancelNotFound(t *testing.T) {
	f := newFixture(t, defaultConfig())

	_, err := f.svc.Cancel(context.Background(), uuid.New(), "whatever")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdateStatusAppliesAnyTransition(t *testing.T) {
	f := newFixture(t, defaultConfig())

	appt, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	// The service does not police the state machine; that lives at the
	// HTTP layer via CanTransition.
	updated, err := f.svc.UpdateStatus(context.Background(), appt.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)

	updated, err = f.svc.UpdateStatus(context.Background(), appt.ID, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
}

func TestRescheduleLineagePolicy(t *testing.T) {
	f := newFixture(t, defaultConfig())

	original, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	replacement, err := f.svc.Reschedule(context.Background(), original.ID, jan12, "14:00", "professional unavailable")
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, replacement.ID)
	assert.Equal(t, StatusPending, replacement.Status)
	assert.Equal(t, "2024-01-12", replacement.DateString())
	assert.Equal(t, "14:00", replacement.StartTime)
	// End time comes from the original professional's 45-minute visits.
	assert.Equal(t, "14:45", replacement.EndTime)
	require.NotNil(t, replacement.RescheduledFrom)
	assert.Equal(t, original.ID, *replacement.RescheduledFrom)
	require.NotNil(t, replacement.RescheduleReason)
	assert.Equal(t, "professional unavailable", *replacement.RescheduleReason)

	stale, err := f.svc.Get(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRescheduled, stale.Status)
}

func TestRescheduleMutatePolicy(t *testing.T) {
	cfg := defaultConfig()
	cfg.ReschedulePolicy = config.RescheduleMutate
	f := newFixture(t, cfg)

	original, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	updated, err := f.svc.Reschedule(context.Background(), original.ID, jan12, "14:00", "clinic closed")
	require.NoError(t, err)

	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, StatusRescheduled, updated.Status)
	assert.Equal(t, "2024-01-12", updated.DateString())
	assert.Equal(t, "14:00", updated.StartTime)
	assert.Equal(t, "14:45", updated.EndTime)
}

func TestRescheduleThenCancelKeepsLineage(t *testing.T) {
	f := newFixture(t, defaultConfig())

	original, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	replacement, err := f.svc.Reschedule(context.Background(), original.ID, jan12, "14:00", "moved")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), replacement.ID, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.RescheduledFrom)
	assert.Equal(t, original.ID, *cancelled.RescheduledFrom)
}

func TestRescheduleNotFound(t *testing.T) {
	f := newFixture(t, defaultConfig())

	_, err := f.svc.Reschedule(context.Background(), uuid.New(), jan12, "14:00", "x")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRescheduleMissingProfessionalIsHardFailure(t *testing.T) {
	f := newFixture(t, defaultConfig())

	original, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	delete(f.dir.professionals, f.professionalID)

	_, err = f.svc.Reschedule(context.Background(), original.ID, jan12, "14:00", "x")
	assert.ErrorIs(t, err, directory.ErrProfessionalNotFound)
}

func TestAvailabilityMarksBookedSlots(t *testing.T) {
	f := newFixture(t, defaultConfig())

	appt, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan8,
		StartTime:      "09:45",
	})
	require.NoError(t, err)

	slots, err := f.svc.Availability(context.Background(), f.professionalID, jan8)
	require.NoError(t, err)
	// 09:00-12:00 at 45 minutes: 09:00, 09:45, 10:30, 11:15.
	require.Len(t, slots, 4)

	for _, s := range slots {
		if s.Time == "09:45" {
			assert.False(t, s.Available)
			require.NotNil(t, s.AppointmentID)
			assert.Equal(t, appt.ID, *s.AppointmentID)
		} else {
			assert.True(t, s.Available)
		}
	}
}

func TestAvailabilityIgnoresInactiveBookings(t *testing.T) {
	f := newFixture(t, defaultConfig())

	appt, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan8,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), appt.ID, "freed up")
	require.NoError(t, err)

	free, err := f.svc.CheckSlotFree(context.Background(), f.professionalID, jan8, "09:00")
	require.NoError(t, err)
	assert.True(t, free)
}

func TestAvailabilityUnknownProfessionalIsEmpty(t *testing.T) {
	f := newFixture(t, defaultConfig())

	slots, err := f.svc.Availability(context.Background(), uuid.New(), jan8)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailabilityNonWorkingDayIsEmpty(t *testing.T) {
	f := newFixture(t, defaultConfig())

	saturday := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	slots, err := f.svc.Availability(context.Background(), f.professionalID, saturday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestCheckSlotFree(t *testing.T) {
	f := newFixture(t, defaultConfig())

	free, err := f.svc.CheckSlotFree(context.Background(), f.professionalID, jan8, "09:00")
	require.NoError(t, err)
	assert.True(t, free)

	_, err = f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan8,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	free, err = f.svc.CheckSlotFree(context.Background(), f.professionalID, jan8, "09:00")
	require.NoError(t, err)
	assert.False(t, free)

	// A time that is not a slot boundary is never bookable.
	free, err = f.svc.CheckSlotFree(context.Background(), f.professionalID, jan8, "09:10")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestListByPatientOrdering(t *testing.T) {
	f := newFixture(t, defaultConfig())

	for _, day := range []time.Time{jan8, jan12, jan10} {
		_, err := f.svc.Create(context.Background(), CreateParams{
			PatientID:      f.patientID,
			ProfessionalID: f.professionalID,
			Date:           day,
			StartTime:      "09:00",
		})
		require.NoError(t, err)
	}

	appts, err := f.svc.ListByPatient(context.Background(), f.patientID)
	require.NoError(t, err)
	require.Len(t, appts, 3)
	assert.Equal(t, "2024-01-12", appts[0].DateString())
	assert.Equal(t, "2024-01-10", appts[1].DateString())
	assert.Equal(t, "2024-01-08", appts[2].DateString())
}

// Without the booking guard the availability check and the insert are
// separate round trips, so two concurrent bookers can both land on the
// same slot. This test pins down that known gap rather than pretending
// the second create is rejected.
func TestConcurrentCreatesBothSucceedWithoutGuard(t *testing.T) {
	f := newFixture(t, defaultConfig())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			free, err := f.svc.CheckSlotFree(context.Background(), f.professionalID, jan8, "09:00")
			if err != nil {
				errs[i] = err
				return
			}
			if !free {
				return
			}
			_, errs[i] = f.svc.Create(context.Background(), CreateParams{
				PatientID:      f.patientID,
				ProfessionalID: f.professionalID,
				Date:           jan8,
				StartTime:      "09:00",
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	active, err := f.repo.ListActiveByProfessionalDay(context.Background(), f.professionalID, jan8)
	require.NoError(t, err)
	assert.Len(t, active, 2, "both bookings land on the same slot")
}

func TestBookingGuardRejectsOverlap(t *testing.T) {
	cfg := defaultConfig()
	cfg.BookingGuard = true
	f := newFixture(t, cfg)

	_, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan8,
		StartTime:      "09:00",
	})
	require.NoError(t, err)

	// Same slot.
	_, err = f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan8,
		StartTime:      "09:00",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Overlapping but not identical start: 09:30 falls inside 09:00-09:45.
	_, err = f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan8,
		StartTime:      "09:30",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// A disjoint slot goes through.
	_, err = f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan8,
		StartTime:      "10:30",
	})
	assert.NoError(t, err)
}

func TestSetNotifyPrefs(t *testing.T) {
	f := newFixture(t, defaultConfig())

	appt, err := f.svc.Create(context.Background(), CreateParams{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		Date:           jan10,
		StartTime:      "09:00",
	})
	require.NoError(t, err)
	assert.False(t, appt.NotifyWhatsApp)

	phone := "+5491122334455"
	updated, err := f.svc.SetNotifyPrefs(context.Background(), appt.ID, true, &phone)
	require.NoError(t, err)
	assert.True(t, updated.NotifyWhatsApp)
	require.NotNil(t, updated.NotifyPhone)
	assert.Equal(t, phone, *updated.NotifyPhone)
}
