package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"toeic-web/internal/database"
	"toeic-web/internal/importer"
	"toeic-web/internal/logger"
	"toeic-web/internal/service"
	"toeic-web/internal/store"
)

func main() {
	file := flag.String("file", "data/questions.xlsx", "workbook with one sheet per skill")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	appLog, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer appLog.Sync()

	ctx := context.Background()
	sqlDB, err := database.Connect(ctx, dbURL, database.Options{Retries: 3, RetryInterval: 2 * time.Second}, appLog)
	if err != nil {
		log.Fatalf("Database unavailable: %v", err)
	}
	defer sqlDB.Close()
	db, err := database.Open(sqlDB)
	if err != nil {
		log.Fatalf("GORM init failed: %v", err)
	}

	st := store.New(db, appLog)
	im := importer.New(appLog, service.NewReadingService(st, appLog), service.NewListeningService(st, appLog))

	res, err := im.ImportFile(ctx, *file)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	for _, e := range res.Errors {
		log.Printf("  ! %s", e)
	}
	log.Printf("Processed %d rows: %d created, %d skipped, %d errors.", res.TotalProcessed, res.Created, res.Skipped, len(res.Errors))
}
