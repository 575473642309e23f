package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"

	"toeic-web/internal/database"
	"toeic-web/internal/logger"
	"toeic-web/internal/models"
	"toeic-web/internal/store"
)

const (
	outputDir  = "media/listening"
	maxWorkers = 10
	// Google's default quota is 1000 requests a minute.
	requestsPerSecond = 14
)

func main() {
	log.Println("Starting audio generator...")

	// Expected to run from the repository root: go run ./scripts/audio_generator
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
	log.Println("Connected to the database.")
	st := store.New(db, appLog)

	// Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		log.Fatalf("Could not create TTS client: %v", err)
	}
	defer client.Close()
	log.Println("Connected to Google TTS API.")

	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		log.Fatalf("Could not create %s: %v", outputDir, err)
	}

	passages, err := st.Content.ListeningWithoutAudio(ctx, nil)
	if err != nil {
		log.Fatalf("Could not load listening passages: %v", err)
	}
	if len(passages) == 0 {
		log.Println("Every listening passage already has audio. Done.")
		return
	}
	log.Printf("Found %d listening passages without audio.", len(passages))

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	var processed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for _, p := range passages {
		p := p
		g.Go(func() error {
			if err := generate(gctx, client, limiter, st, p); err != nil {
				// One bad transcript should not stop the batch.
				log.Printf("Error (%s): %v", p.ID, err)
				failed.Add(1)
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Generation aborted: %v", err)
	}

	log.Println("--- Generation finished ---")
	log.Printf("Succeeded: %d, failed: %d", processed.Load(), failed.Load())
}

func generate(ctx context.Context, client *texttospeech.Client, limiter *rate.Limiter, st *store.Store, p *models.ListeningPassage) error {
	if p.Transcript == nil {
		return fmt.Errorf("no transcript")
	}
	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	filePath := filepath.Join(outputDir, p.ID+".mp3")
	if err := synthesizeAndSave(ctx, client, *p.Transcript, filePath); err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	dbPath := filepath.ToSlash(filePath)
	if err := st.Content.SetListeningAudio(ctx, nil, p.ID, dbPath); err != nil {
		return fmt.Errorf("update audio path: %w", err)
	}
	log.Printf("OK: %s -> %s", p.ID, dbPath)
	return nil
}

func synthesizeAndSave(ctx context.Context, client *texttospeech.Client, text, outputPath string) error {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		// Standard voices stay inside the free tier.
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
			Name:         "en-US-Standard-F",
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return fmt.Errorf("SynthesizeSpeech: %w", err)
	}
	if err := os.WriteFile(outputPath, resp.AudioContent, 0o644); err != nil {
		return fmt.Errorf("WriteFile: %w", err)
	}
	return nil
}
