package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = `
	id, treatment_plan_id, appointment_id, patient_id, professional_id,
	session_number, date,
	procedure, products_used,
	professional_notes, patient_reaction, side_effects,
	photo_ids, post_instructions, next_session_date,
	duration_minutes, completed, created_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	var products []byte

	err := row.Scan(
		&r.ID,
		&r.TreatmentPlanID,
		&r.AppointmentID,
		&r.PatientID,
		&r.ProfessionalID,
		&r.SessionNumber,
		&r.Date,
		&r.Procedure,
		&products,
		&r.ProfNotes,
		&r.PatientReaction,
		&r.SideEffects,
		&r.PhotoIDs,
		&r.PostInstructions,
		&r.NextSessionDate,
		&r.DurationMinutes,
		&r.Completed,
		&r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if len(products) > 0 {
		if err := json.Unmarshal(products, &r.ProductsUsed); err != nil {
			return nil, fmt.Errorf("decode products used: %w", err)
		}
	}

	return &r, nil
}

func (r *PgRepository) Insert(ctx context.Context, rec *Record) error {
	products, err := json.Marshal(rec.ProductsUsed)
	if err != nil {
		return fmt.Errorf("encode products used: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO session_records (
			id, treatment_plan_id, appointment_id, patient_id, professional_id,
			session_number, date,
			procedure, products_used,
			professional_notes, patient_reaction, side_effects,
			photo_ids, post_instructions, next_session_date,
			duration_minutes, completed, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		rec.ID, rec.TreatmentPlanID, rec.AppointmentID, rec.PatientID, rec.ProfessionalID,
		rec.SessionNumber, rec.Date,
		rec.Procedure, products,
		rec.ProfNotes, rec.PatientReaction, rec.SideEffects,
		rec.PhotoIDs, rec.PostInstructions, rec.NextSessionDate,
		rec.DurationMinutes, rec.Completed, rec.CreatedAt,
	)
	return err
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM session_records
		WHERE id = $1
	`, id)
	return scanRecord(row)
}

func (r *PgRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM session_records
		WHERE treatment_plan_id = $1
		ORDER BY session_number ASC
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) InsertJournal(ctx context.Context, e JournalEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO completion_journal (sequence_id, step, plan_id, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`, e.SequenceID, e.Step, e.PlanID, e.AppointmentID, e.Payload, nullableTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (r *PgRepository) FindIncomplete(ctx context.Context, olderThan time.Time) ([]IncompleteSequence, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT j.sequence_id, j.plan_id, j.appointment_id, j.payload,
		       EXISTS (
		           SELECT 1 FROM completion_journal n
		           WHERE n.sequence_id = j.sequence_id
		             AND n.step = $1
		       ) AS has_next
		FROM completion_journal j
		WHERE j.step = $2
		  AND j.created_at < $3
		  AND NOT EXISTS (
		      SELECT 1 FROM completion_journal d
		      WHERE d.sequence_id = j.sequence_id
		        AND d.step = $4
		  )
	`, StepNextAppointmentCreated, StepSessionRecorded, olderThan, StepAppointmentCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []IncompleteSequence
	for rows.Next() {
		var s IncompleteSequence
		if err := rows.Scan(&s.SequenceID, &s.PlanID, &s.AppointmentID, &s.Payload, &s.HasNext); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
