package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/dermaluz/clinic-scheduling/internal/appointment"
	"github.com/dermaluz/clinic-scheduling/internal/config"
	"github.com/dermaluz/clinic-scheduling/internal/db"
	"github.com/dermaluz/clinic-scheduling/internal/directory"
	redisclient "github.com/dermaluz/clinic-scheduling/internal/redis"
	"github.com/dermaluz/clinic-scheduling/internal/session"
	"github.com/dermaluz/clinic-scheduling/internal/treatment"
)

// Sequences younger than this are likely still in flight and are left
// alone.
const minSequenceAge = 5 * time.Minute

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("recovery-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running recovery worker in env=%s interval=%s", cfg.Env, cfg.WorkerInterval)

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

	appointments := appointment.NewService(appointment.NewPgRepository(pgPool), dirRepo, locker, nil, cfg)
	plans := treatment.NewService(treatment.NewPgRepository(pgPool))
	recorder := session.NewRecorder(session.NewPgRepository(pgPool), plans, appointments)

	// Run once at startup
	runOnce(rootCtx, recorder)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping recovery worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, recorder)
		}
	}
}

func runOnce(ctx context.Context, recorder *session.Recorder) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	repaired, err := recorder.RecoverIncomplete(runCtx, minSequenceAge)
	if err != nil {
		log.Printf("recovery run error: %v", err)
		return
	}
	log.Printf("recovery run complete in %s, repaired=%d", time.Since(start), repaired)
}
