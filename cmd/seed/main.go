package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/adapters/artifacts"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/adapters/database"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/adapters/search"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/postgres"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/typesense"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS labs (
	id           TEXT PRIMARY KEY,
	lab_type     INTEGER NOT NULL,
	capacity     INTEGER NOT NULL DEFAULT 1,
	availability NUMERIC NOT NULL DEFAULT 100,
	case_queue   JSONB NOT NULL DEFAULT '{}'::jsonb,
	services     JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_labs_lab_type ON labs (lab_type);

CREATE TABLE IF NOT EXISTS model_artifacts (
	name       TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Println("Schema ready")

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE labs, model_artifacts`); err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	var searchRepo *search.TypesenseAdapter
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Printf("Typesense unavailable, skipping index: %v", err)
		} else {
			searchRepo = search.NewTypesenseAdapter(tsClient)
			if err := searchRepo.InitSchema(ctx); err != nil {
				log.Printf("Failed to init Typesense schema: %v", err)
				searchRepo = nil
			}
		}
	}

	labRepo := database.NewLabAdapter(pgClient)

	// 1. Seed labs
	price := func(v float64) *float64 { return &v }
	now := time.Now()

	labs := []*entities.Lab{
		{
			ID:           uuid.New().String(),
			LabType:      1,
			Capacity:     10,
			Availability: 100,
			ServicesAvailable: map[string]entities.ServiceOffering{
				"5": {Price: price(120), ProcedureType: price(1), AvgTATDays: price(1.5)},
				"6": {Price: price(80), ProcedureType: price(2), AvgTATDays: price(0.75)},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:           uuid.New().String(),
			LabType:      1,
			Capacity:     4,
			Availability: 100,
			ServicesAvailable: map[string]entities.ServiceOffering{
				"5": {Price: price(95), ProcedureType: price(1), AvgTATDays: price(2)},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:           uuid.New().String(),
			LabType:      2,
			Capacity:     6,
			Availability: 100,
			ServicesAvailable: map[string]entities.ServiceOffering{
				"7": {Price: price(240), ProcedureType: price(3), AvgTATDays: price(3.25)},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, lab := range labs {
		if err := labRepo.Create(ctx, lab); err != nil {
			log.Printf("Failed to create lab %s: %v", lab.ID, err)
			continue
		}
		if searchRepo != nil {
			if err := searchRepo.Index(ctx, lab); err != nil {
				log.Printf("Failed to index lab %s: %v", lab.ID, err)
			}
		}
	}
	log.Printf("Seeded %d labs", len(labs))

	// 2. Seed regression artifacts
	artifactStore := artifacts.NewDatabaseAdapter(pgClient)

	pricingModel := map[string]interface{}{
		"model_type": "linear",
		"intercept":  1.0,
		// lab_type, service_id, base_price, hour, day_of_week,
		// hour_sin, hour_cos, dow_sin, dow_cos
		"coefficients": []float64{0.01, 0, 0.0005, 0.002, 0.005, 0.03, -0.02, 0.01, -0.01},
	}
	timelineModel := map[string]interface{}{
		"model_type": "linear",
		"intercept":  0.5,
		// lab_type, procedure_type, base_price, dynamic_price,
		// hour_sin, hour_cos, dow_sin, dow_cos
		"coefficients": []float64{0.05, 0.1, 0.001, 0.002, 0.05, -0.05, 0.02, -0.02},
	}

	for name, model := range map[string]map[string]interface{}{
		"pricing_model":  pricingModel,
		"timeline_model": timelineModel,
	} {
		data, err := json.Marshal(model)
		if err != nil {
			log.Fatalf("Failed to encode %s: %v", name, err)
		}
		if err := artifactStore.StoreArtifact(ctx, name, data); err != nil {
			log.Fatalf("Failed to store %s: %v", name, err)
		}
		log.Printf("Stored artifact %s", name)
	}

	log.Println("Seeding complete")
}
