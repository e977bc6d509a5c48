package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/dermaluz/clinic-scheduling/internal/appointment"
	"github.com/dermaluz/clinic-scheduling/internal/session"
	"github.com/dermaluz/clinic-scheduling/internal/treatment"
)

type CreateAppointmentRequest struct {
	PatientID       string  `json:"patient_id"`
	ProfessionalID  string  `json:"professional_id"`
	TreatmentPlanID *string `json:"treatment_plan_id,omitempty"`
	Kind            string  `json:"kind,omitempty"`
	Date            string  `json:"date"`       // "2024-01-10"
	StartTime       string  `json:"start_time"` // "09:00"
	Reason          *string `json:"reason,omitempty"`
	NotifyWhatsApp  bool    `json:"notify_whatsapp,omitempty"`
	NotifyPhone     *string `json:"notify_phone,omitempty"`
	PaymentStatus   string  `json:"payment_status,omitempty"`
	PaymentAmount   int64   `json:"payment_amount,omitempty"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type RescheduleRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Reason    string `json:"reason"`
}

type NotifyPrefsRequest struct {
	Enabled bool    `json:"enabled"`
	Phone   *string `json:"phone,omitempty"`
}

type AppointmentResponse struct {
	ID               uuid.UUID  `json:"id"`
	PatientID        uuid.UUID  `json:"patient_id"`
	ProfessionalID   uuid.UUID  `json:"professional_id"`
	TreatmentPlanID  *uuid.UUID `json:"treatment_plan_id,omitempty"`
	Kind             string     `json:"kind"`
	Date             string     `json:"date"`
	StartTime        string     `json:"start_time"`
	EndTime          string     `json:"end_time"`
	Status           string     `json:"status"`
	Reason           *string    `json:"reason,omitempty"`
	NotifyWhatsApp   bool       `json:"notify_whatsapp"`
	NotifyPhone      *string    `json:"notify_phone,omitempty"`
	RescheduledFrom  *uuid.UUID `json:"rescheduled_from,omitempty"`
	RescheduleReason *string    `json:"reschedule_reason,omitempty"`
	PaymentStatus    string     `json:"payment_status,omitempty"`
	PaymentAmount    int64      `json:"payment_amount,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:               a.ID,
		PatientID:        a.PatientID,
		ProfessionalID:   a.ProfessionalID,
		TreatmentPlanID:  a.TreatmentPlanID,
		Kind:             string(a.Kind),
		Date:             a.DateString(),
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		Status:           string(a.Status),
		Reason:           a.Reason,
		NotifyWhatsApp:   a.NotifyWhatsApp,
		NotifyPhone:      a.NotifyPhone,
		RescheduledFrom:  a.RescheduledFrom,
		RescheduleReason: a.RescheduleReason,
		PaymentStatus:    a.PaymentStatus,
		PaymentAmount:    a.PaymentAmount,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func toAppointmentResponses(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, len(appts))
	for i := range appts {
		out[i] = toAppointmentResponse(&appts[i])
	}
	return out
}

type SlotCheckResponse struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type EnrollPlanRequest struct {
	PatientID        string  `json:"patient_id"`
	TreatmentID      string  `json:"treatment_id"`
	ProfessionalID   string  `json:"professional_id"`
	TreatmentName    string  `json:"treatment_name"`
	SessionsTotal    int     `json:"sessions_total"`
	StartDate        *string `json:"start_date,omitempty"`
	EstimatedEndDate *string `json:"estimated_end_date,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

type PatchPlanRequest struct {
	Status          *string `json:"status,omitempty"`
	NextSessionDate *string `json:"next_session_date,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	Outcome         *string `json:"outcome,omitempty"`
	Satisfaction    *int    `json:"satisfaction,omitempty"`
}

type PlanResponse struct {
	ID                uuid.UUID  `json:"id"`
	PatientID         uuid.UUID  `json:"patient_id"`
	TreatmentID       uuid.UUID  `json:"treatment_id"`
	ProfessionalID    uuid.UUID  `json:"professional_id"`
	TreatmentName     string     `json:"treatment_name"`
	SessionsTotal     int        `json:"sessions_total"`
	SessionsCompleted int        `json:"sessions_completed"`
	Progress          int        `json:"progress"`
	Status            string     `json:"status"`
	StartDate         time.Time  `json:"start_date"`
	EstimatedEndDate  *time.Time `json:"estimated_end_date,omitempty"`
	NextSessionDate   *time.Time `json:"next_session_date,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	Outcome           *string    `json:"outcome,omitempty"`
	Satisfaction      *int       `json:"satisfaction,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

func toPlanResponse(p *treatment.Plan) PlanResponse {
	return PlanResponse{
		ID:                p.ID,
		PatientID:         p.PatientID,
		TreatmentID:       p.TreatmentID,
		ProfessionalID:    p.ProfessionalID,
		TreatmentName:     p.TreatmentName,
		SessionsTotal:     p.SessionsTotal,
		SessionsCompleted: p.SessionsCompleted,
		Progress:          p.Progress,
		Status:            string(p.Status),
		StartDate:         p.StartDate,
		EstimatedEndDate:  p.EstimatedEndDate,
		NextSessionDate:   p.NextSessionDate,
		Notes:             p.Notes,
		Outcome:           p.Outcome,
		Satisfaction:      p.Satisfaction,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

type CompleteSessionRequest struct {
	AppointmentID    string                `json:"appointment_id"`
	Procedure        string                `json:"procedure"`
	ProductsUsed     []session.ProductUsed `json:"products_used,omitempty"`
	ProfNotes        string                `json:"professional_notes,omitempty"`
	PatientReaction  *string               `json:"patient_reaction,omitempty"`
	SideEffects      []string              `json:"side_effects,omitempty"`
	PhotoIDs         []string              `json:"photo_ids,omitempty"`
	PostInstructions []string              `json:"post_instructions,omitempty"`
	DurationMinutes  *int                  `json:"duration_minutes,omitempty"`
	NextSessionDate  *string               `json:"next_session_date,omitempty"`
	NextSessionTime  *string               `json:"next_session_time,omitempty"`
}

type SessionRecordResponse struct {
	ID              uuid.UUID             `json:"id"`
	TreatmentPlanID uuid.UUID             `json:"treatment_plan_id"`
	AppointmentID   uuid.UUID             `json:"appointment_id"`
	SessionNumber   int                   `json:"session_number"`
	Date            time.Time             `json:"date"`
	Procedure       string                `json:"procedure"`
	ProductsUsed    []session.ProductUsed `json:"products_used,omitempty"`
	Completed       bool                  `json:"completed"`
}

type CompleteSessionResponse struct {
	Record          SessionRecordResponse `json:"record"`
	Plan            PlanResponse          `json:"plan"`
	NextAppointment *AppointmentResponse  `json:"next_appointment,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
