package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/noah-isme/course-reg-api/internal/repository"
	"github.com/noah-isme/course-reg-api/internal/service"
	"github.com/noah-isme/course-reg-api/pkg/config"
	"github.com/noah-isme/course-reg-api/pkg/database"
	"github.com/noah-isme/course-reg-api/pkg/logger"
)

// The seeder is the trusted bulk-load path: it writes historical data
// straight through the repositories and deliberately skips the eligibility
// engine.
func main() {
	dataFile := flag.String("data", "", "path to the seed dataset (overrides SEED_DATA_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	path := cfg.Seed.DataFile
	if *dataFile != "" {
		path = *dataFile
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logr.Sugar().Fatalw("failed to read seed file", "path", path, "error", err)
	}

	var dataset service.SeedDataset
	if err := json.Unmarshal(raw, &dataset); err != nil {
		logr.Sugar().Fatalw("failed to parse seed file", "path", path, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	seeder := service.NewSeedService(
		repository.NewStudentRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewCurriculumRepository(db),
		repository.NewRegistrationRepository(db),
		logr,
	)

	if err := seeder.Load(context.Background(), dataset); err != nil {
		logr.Sugar().Fatalw("seed failed", "error", err)
	}
	logr.Sugar().Infow("seed completed", "path", path)
}
