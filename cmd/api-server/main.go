package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dermaluz/clinic-scheduling/internal/api"
	"github.com/dermaluz/clinic-scheduling/internal/appointment"
	"github.com/dermaluz/clinic-scheduling/internal/config"
	"github.com/dermaluz/clinic-scheduling/internal/db"
	"github.com/dermaluz/clinic-scheduling/internal/directory"
	"github.com/dermaluz/clinic-scheduling/internal/notify"
	redisclient "github.com/dermaluz/clinic-scheduling/internal/redis"
	"github.com/dermaluz/clinic-scheduling/internal/session"
	"github.com/dermaluz/clinic-scheduling/internal/treatment"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s reschedule_policy=%s booking_guard=%t",
		cfg.Env, cfg.HTTPPort, cfg.ReschedulePolicy, cfg.BookingGuard)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	dirRepo := directory.NewPgRepository(pgPool)
	locker := redisclient.NewRedisBookingLocker(rdb, cfg.LockTTL)
	dispatcher := notify.NewDispatcher(cfg.WhatsAppAPIURL)

	appointments := appointment.NewService(appointment.NewPgRepository(pgPool), dirRepo, locker, dispatcher, cfg)
	plans := treatment.NewService(treatment.NewPgRepository(pgPool))
	sessions := session.NewRecorder(session.NewPgRepository(pgPool), plans, appointments)

	handler := api.NewRouter(api.RouterConfig{
		Appointments: appointments,
		Plans:        plans,
		Sessions:     sessions,
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
