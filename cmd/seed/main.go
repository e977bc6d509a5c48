package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dermaluz/clinic-scheduling/internal/db"
	"github.com/dermaluz/clinic-scheduling/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	schemaPath := flag.String("schema", "", "apply this schema file before seeding")
	professionals := flag.Int("professionals", 10, "number of professionals to seed")
	patients := flag.Int("patients", 200, "number of patients to seed")
	flag.Parse()

	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if *schemaPath != "" {
		ddl, err := os.ReadFile(*schemaPath)
		if err != nil {
			log.Fatalf("read schema: %v", err)
		}
		if _, err := pool.Exec(context.Background(), string(ddl)); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
		log.Printf("applied schema from %s", *schemaPath)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedProfessionals(context.Background(), pool, *professionals); err != nil {
		log.Fatalf("seed professionals: %v", err)
	}
	if err := seedPatients(context.Background(), pool, *patients); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedTreatments(context.Background(), pool); err != nil {
		log.Fatalf("seed treatments: %v", err)
	}

	log.Println("seed complete")
}

func seedProfessionals(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d professionals", count)

	titles := []string{
		"Clinical Dermatologist",
		"Plastic Surgeon",
		"Aesthetic Physician",
		"Cosmetologist",
		"Trichologist",
	}
	durations := []int{20, 30, 45, 60}

	for i := 0; i < count; i++ {
		avail := randomAvailability()
		availJSON, err := json.Marshal(avail)
		if err != nil {
			return err
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO professionals (id, name, title, visit_minutes, availability, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`,
			uuid.New(),
			"Dr. "+gofakeit.Name(),
			titles[i%len(titles)],
			durations[gofakeit.Number(0, len(durations)-1)],
			availJSON,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	for i := 0; i < count; i++ {
		email := gofakeit.Email()
		phone := gofakeit.Phone()

		_, err := pool.Exec(ctx, `
			INSERT INTO patients (id, name, email, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, uuid.New(), gofakeit.Name(), email, phone)
		if err != nil {
			return err
		}
	}

	return nil
}

func seedTreatments(ctx context.Context, pool *pgxpool.Pool) error {
	treatments := []struct {
		name     string
		category string
		minutes  int
		sessions int
		price    int64
	}{
		{"Deep Cleansing Facial", "facial", 45, 4, 65000},
		{"Chemical Peel", "skin", 30, 6, 80000},
		{"Microneedling", "skin", 45, 4, 120000},
		{"Laser Hair Removal", "body", 30, 8, 90000},
		{"PRP Hair Therapy", "hair", 60, 6, 150000},
		{"Lymphatic Drainage", "wellness", 60, 10, 70000},
	}

	log.Printf("seeding %d treatments", len(treatments))

	for _, t := range treatments {
		_, err := pool.Exec(ctx, `
			INSERT INTO treatments (id, name, category, session_minutes, recommended_sessions, price_cents, active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, now())
		`, uuid.New(), t.name, t.category, t.minutes, t.sessions, t.price)
		if err != nil {
			return err
		}
	}

	return nil
}

// randomAvailability builds a plausible clinic week: most weekdays have
// a morning window, some an afternoon one, weekends are off.
func randomAvailability() schedule.WeeklyAvailability {
	avail := schedule.WeeklyAvailability{}
	for day := time.Monday; day <= time.Friday; day++ {
		if gofakeit.Number(0, 9) == 0 {
			continue // day off
		}
		windows := []schedule.TimeRange{{Start: "09:00", End: "13:00"}}
		if gofakeit.Bool() {
			windows = append(windows, schedule.TimeRange{Start: "15:00", End: "19:00"})
		}
		avail[day] = windows
	}
	return avail
}
