package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dermaluz/clinic-scheduling/internal/appointment"
	"github.com/dermaluz/clinic-scheduling/internal/session"
	"github.com/dermaluz/clinic-scheduling/internal/treatment"
)

type RouterConfig struct {
	Appointments *appointment.Service
	Plans        *treatment.Service
	Sessions     *session.Recorder
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Get("/professionals/{id}/availability", availabilityHandler(cfg.Appointments))
	r.Get("/professionals/{id}/appointments", listProfessionalDayHandler(cfg.Appointments))

	r.Post("/appointments", createAppointmentHandler(cfg.Appointments))
	r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/status", updateStatusHandler(cfg.Appointments))
	r.Post("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Appointments))
	r.Put("/appointments/{id}/notifications", notifyPrefsHandler(cfg.Appointments))

	r.Get("/patients/{id}/appointments", listPatientAppointmentsHandler(cfg.Appointments))
	r.Get("/patients/{id}/treatment-plans", listPatientPlansHandler(cfg.Plans))

	r.Post("/treatment-plans", enrollPlanHandler(cfg.Plans))
	r.Patch("/treatment-plans/{id}", patchPlanHandler(cfg.Plans))
	r.Post("/treatment-plans/{id}/sessions", completeSessionHandler(cfg.Sessions))
	r.Get("/treatment-plans/{id}/sessions", listPlanSessionsHandler(cfg.Sessions))

	return r
}
