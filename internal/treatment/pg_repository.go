package treatment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const planColumns = `
	id, patient_id, treatment_id, professional_id, treatment_name,
	sessions_total, sessions_completed, progress,
	status, start_date, estimated_end_date, next_session_date,
	notes, outcome, satisfaction,
	created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan

	err := row.Scan(
		&p.ID,
		&p.PatientID,
		&p.TreatmentID,
		&p.ProfessionalID,
		&p.TreatmentName,
		&p.SessionsTotal,
		&p.SessionsCompleted,
		&p.Progress,
		&p.Status,
		&p.StartDate,
		&p.EstimatedEndDate,
		&p.NextSessionDate,
		&p.Notes,
		&p.Outcome,
		&p.Satisfaction,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+planColumns+`
		FROM treatment_plans
		WHERE id = $1
	`, id)
	return scanPlan(row)
}

func (r *PgRepository) Insert(ctx context.Context, p *Plan) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO treatment_plans (
			id, patient_id, treatment_id, professional_id, treatment_name,
			sessions_total, sessions_completed, progress,
			status, start_date, estimated_end_date, next_session_date,
			notes, outcome, satisfaction,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		p.ID, p.PatientID, p.TreatmentID, p.ProfessionalID, p.TreatmentName,
		p.SessionsTotal, p.SessionsCompleted, p.Progress,
		p.Status, p.StartDate, p.EstimatedEndDate, p.NextSessionDate,
		p.Notes, p.Outcome, p.Satisfaction,
		p.CreatedAt,
	)
	return err
}

func (r *PgRepository) UpdateProgress(ctx context.Context, id uuid.UUID, completed, progress int, status PlanStatus) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE treatment_plans
		SET sessions_completed = $2,
		    progress = $3,
		    status = $4,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+planColumns, id, completed, progress, status)
	return scanPlan(row)
}

func (r *PgRepository) Patch(ctx context.Context, id uuid.UUID, patch Patch) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE treatment_plans
		SET status            = COALESCE($2, status),
		    next_session_date = COALESCE($3, next_session_date),
		    notes             = COALESCE($4, notes),
		    outcome           = COALESCE($5, outcome),
		    satisfaction      = COALESCE($6, satisfaction),
		    updated_at        = now()
		WHERE id = $1
		RETURNING `+planColumns,
		id, patch.Status, patch.NextSessionDate, patch.Notes, patch.Outcome, patch.Satisfaction)
	return scanPlan(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+planColumns+`
		FROM treatment_plans
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
