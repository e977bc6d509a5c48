package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `
	id, patient_id, professional_id, treatment_plan_id, kind,
	date, start_time, end_time, status,
	reason, patient_notes, professional_notes,
	notify_whatsapp, notify_phone,
	rescheduled_from, reschedule_reason,
	payment_status, payment_amount,
	created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ProfessionalID,
		&a.TreatmentPlanID,
		&a.Kind,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Reason,
		&a.PatientNotes,
		&a.ProfNotes,
		&a.NotifyWhatsApp,
		&a.NotifyPhone,
		&a.RescheduledFrom,
		&a.RescheduleReason,
		&a.PaymentStatus,
		&a.PaymentAmount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) Insert(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (
			id, patient_id, professional_id, treatment_plan_id, kind,
			date, start_time, end_time, status,
			reason, patient_notes, professional_notes,
			notify_whatsapp, notify_phone,
			rescheduled_from, reschedule_reason,
			payment_status, payment_amount,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`,
		a.ID, a.PatientID, a.ProfessionalID, a.TreatmentPlanID, a.Kind,
		a.Date, a.StartTime, a.EndTime, a.Status,
		a.Reason, a.PatientNotes, a.ProfNotes,
		a.NotifyWhatsApp, a.NotifyPhone,
		a.RescheduledFrom, a.RescheduleReason,
		a.PaymentStatus, a.PaymentAmount,
		a.CreatedAt,
	)
	return err
}

func (r *PgRepository) SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, to)
	return scanAppointment(row)
}

func (r *PgRepository) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    patient_notes = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, StatusCancelled, reason)
	return scanAppointment(row)
}

func (r *PgRepository) MarkRescheduled(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    reschedule_reason = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, StatusRescheduled, reason)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateSchedule(ctx context.Context, id uuid.UUID, date time.Time, startTime, endTime, reason string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET date = $2,
		    start_time = $3,
		    end_time = $4,
		    status = $5,
		    reschedule_reason = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, date, startTime, endTime, StatusRescheduled, reason)
	return scanAppointment(row)
}

func (r *PgRepository) SetNotifyPrefs(ctx context.Context, id uuid.UUID, enabled bool, phone *string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET notify_whatsapp = $2,
		    notify_phone = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, enabled, phone)
	return scanAppointment(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date DESC, start_time DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListByProfessionalDay(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE professional_id = $1
		  AND date = $2
		ORDER BY start_time ASC
	`, professionalID, date)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListAll(ctx context.Context) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY date DESC, start_time DESC
	`)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListActiveByProfessionalDay(ctx context.Context, professionalID uuid.UUID, date time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE professional_id = $1
		  AND date = $2
		  AND status IN ($3, $4)
		ORDER BY start_time ASC
	`, professionalID, date, StatusPending, StatusConfirmed)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}
