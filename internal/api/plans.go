package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dermaluz/clinic-scheduling/internal/session"
	"github.com/dermaluz/clinic-scheduling/internal/treatment"
)

func enrollPlanHandler(svc *treatment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EnrollPlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}
		treatmentID, err := uuid.Parse(req.TreatmentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_treatment_id", "treatment_id must be a valid UUID")
			return
		}
		professionalID, err := uuid.Parse(req.ProfessionalID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
			return
		}

		params := treatment.EnrollParams{
			PatientID:      patientID,
			TreatmentID:    treatmentID,
			ProfessionalID: professionalID,
			TreatmentName:  req.TreatmentName,
			SessionsTotal:  req.SessionsTotal,
			Notes:          req.Notes,
		}
		if req.StartDate != nil {
			d, err := time.Parse(dateLayout, *req.StartDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_start_date", "start_date must be YYYY-MM-DD")
				return
			}
			params.StartDate = &d
		}
		if req.EstimatedEndDate != nil {
			d, err := time.Parse(dateLayout, *req.EstimatedEndDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_estimated_end_date", "estimated_end_date must be YYYY-MM-DD")
				return
			}
			params.EstimatedEndDate = &d
		}

		plan, err := svc.Enroll(r.Context(), params)
		if err != nil {
			if errors.Is(err, treatment.ErrInvalidSessionCount) {
				writeError(w, http.StatusBadRequest, "invalid_sessions_total", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, toPlanResponse(plan))
	}
}

func listPatientPlansHandler(svc *treatment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		var plans []treatment.Plan
		if r.URL.Query().Get("active") == "1" {
			plans, err = svc.ListActiveByPatient(r.Context(), patientID)
		} else {
			plans, err = svc.ListByPatient(r.Context(), patientID)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]PlanResponse, len(plans))
		for i := range plans {
			out[i] = toPlanResponse(&plans[i])
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func patchPlanHandler(svc *treatment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_plan_id", "id must be a valid UUID")
			return
		}

		var req PatchPlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patch := treatment.Patch{
			Notes:        req.Notes,
			Outcome:      req.Outcome,
			Satisfaction: req.Satisfaction,
		}
		if req.Status != nil {
			s := treatment.PlanStatus(*req.Status)
			switch s {
			case treatment.PlanScheduled, treatment.PlanInProgress, treatment.PlanPaused,
				treatment.PlanFinished, treatment.PlanCancelled:
				patch.Status = &s
			default:
				writeError(w, http.StatusBadRequest, "invalid_status", "unknown plan status")
				return
			}
		}
		if req.NextSessionDate != nil {
			d, err := time.Parse(dateLayout, *req.NextSessionDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_next_session_date", "next_session_date must be YYYY-MM-DD")
				return
			}
			patch.NextSessionDate = &d
		}

		plan, err := svc.UpdatePlan(r.Context(), id, patch)
		if err != nil {
			handlePlanError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPlanResponse(plan))
	}
}

func completeSessionHandler(recorder *session.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		planID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_plan_id", "id must be a valid UUID")
			return
		}

		var req CompleteSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appointmentID, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointment_id must be a valid UUID")
			return
		}

		content := session.Content{
			Procedure:        req.Procedure,
			ProductsUsed:     req.ProductsUsed,
			ProfNotes:        req.ProfNotes,
			PatientReaction:  req.PatientReaction,
			SideEffects:      req.SideEffects,
			PhotoIDs:         req.PhotoIDs,
			PostInstructions: req.PostInstructions,
			DurationMinutes:  req.DurationMinutes,
			NextSessionTime:  req.NextSessionTime,
		}
		if req.NextSessionDate != nil {
			d, err := time.Parse(dateLayout, *req.NextSessionDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_next_session_date", "next_session_date must be YYYY-MM-DD")
				return
			}
			content.NextSessionDate = &d
		}

		result, err := recorder.CompleteSession(r.Context(), planID, appointmentID, content)
		if err != nil {
			handleCompletionError(w, err)
			return
		}

		resp := CompleteSessionResponse{
			Record: SessionRecordResponse{
				ID:              result.Record.ID,
				TreatmentPlanID: result.Record.TreatmentPlanID,
				AppointmentID:   result.Record.AppointmentID,
				SessionNumber:   result.Record.SessionNumber,
				Date:            result.Record.Date,
				Procedure:       result.Record.Procedure,
				ProductsUsed:    result.Record.ProductsUsed,
				Completed:       result.Record.Completed,
			},
			Plan: toPlanResponse(result.Plan),
		}
		if result.NextAppointment != nil {
			next := toAppointmentResponse(result.NextAppointment)
			resp.NextAppointment = &next
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

func listPlanSessionsHandler(recorder *session.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		planID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_plan_id", "id must be a valid UUID")
			return
		}

		records, err := recorder.ListByPlan(r.Context(), planID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]SessionRecordResponse, len(records))
		for i, rec := range records {
			out[i] = SessionRecordResponse{
				ID:              rec.ID,
				TreatmentPlanID: rec.TreatmentPlanID,
				AppointmentID:   rec.AppointmentID,
				SessionNumber:   rec.SessionNumber,
				Date:            rec.Date,
				Procedure:       rec.Procedure,
				ProductsUsed:    rec.ProductsUsed,
				Completed:       rec.Completed,
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handlePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, treatment.ErrPlanNotFound):
		writeError(w, http.StatusNotFound, "treatment_plan_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleCompletionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, treatment.ErrPlanNotFound):
		writeError(w, http.StatusNotFound, "treatment_plan_not_found", err.Error())
	default:
		handleBookingError(w, err)
	}
}
