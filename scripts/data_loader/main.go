package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"toeic-web/internal/database"
	"toeic-web/internal/logger"
	"toeic-web/internal/models"
	"toeic-web/internal/service"
	"toeic-web/internal/store"
)

// Seed files live in dataDir:
//
//	paths.csv              id,name,track,level,skill_focus,topics
//	<PATH>_lessons.csv     name,description,duration_minutes,content_type,content_title,content_text
//
// Lessons are matched to existing rows by display order inside their path,
// so re-running the loader updates instead of duplicating.
const dataDir = "data"

var lessonFileRegex = regexp.MustCompile(`^([A-Za-z0-9]+)_lessons\.csv$`)

type lessonFile struct {
	Path   string
	PathID string
}

type lessonRow struct {
	Name        string
	Description string
	Duration    int
	ContentType string
	Title       string
	Text        string
}

func main() {
	log.Println("Starting data loader...")
	startTime := time.Now()

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
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Connected to the database.")

	st := store.New(db, appLog)
	// Lessons go through the service so ids and content upserts follow the API rules.
	lessons := service.NewLessonService(st, appLog)

	if err := st.Tx(ctx, func(tx *gorm.DB) error {
		return loadPaths(ctx, st, tx, filepath.Join(dataDir, "paths.csv"))
	}); err != nil {
		log.Fatalf("Loading paths failed: %v\n--- CHANGES ROLLED BACK ---", err)
	}

	files, err := findLessonFiles(dataDir)
	if err != nil {
		log.Fatalf("Listing lesson files failed: %v", err)
	}
	log.Printf("Found %d lesson files.", len(files))

	total := 0
	for _, lf := range files {
		log.Printf("Processing %s (path %s)", filepath.Base(lf.Path), lf.PathID)
		n, err := loadLessons(ctx, st, lessons, lf)
		if err != nil {
			log.Fatalf("Loading %s failed: %v", lf.Path, err)
		}
		total += n
	}

	log.Printf("--- DONE --- %d lessons loaded in %v.", total, time.Since(startTime))
}

func loadPaths(ctx context.Context, st *store.Store, tx *gorm.DB, csvPath string) error {
	records, err := readCSV(csvPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("No %s, skipping paths.", csvPath)
			return nil
		}
		return err
	}
	for _, record := range records {
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			log.Printf("  ! Skipping path row (too few columns): %v", record)
			continue
		}
		path := &models.LearningPath{
			ID:         strings.TrimSpace(record[0]),
			Name:       strings.TrimSpace(record[1]),
			Track:      column(record, 2),
			Level:      column(record, 3),
			SkillFocus: optionalColumn(record, 4),
			Topics:     optionalColumn(record, 5),
		}
		if err := st.Paths.Upsert(ctx, tx, path); err != nil {
			return fmt.Errorf("path %s: %w", path.ID, err)
		}
		log.Printf(" -> Path %s '%s'", path.ID, path.Name)
	}
	return nil
}

func findLessonFiles(dir string) ([]lessonFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []lessonFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := lessonFileRegex.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}
		files = append(files, lessonFile{Path: filepath.Join(dir, entry.Name()), PathID: matches[1]})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].PathID < files[j].PathID })
	return files, nil
}

// loadLessons creates or updates one lesson per row. Row n is display order n.
func loadLessons(ctx context.Context, st *store.Store, lessons service.LessonService, lf lessonFile) (int, error) {
	records, err := readCSV(lf.Path)
	if err != nil {
		return 0, err
	}
	existing, err := st.Lessons.ListByPath(ctx, nil, lf.PathID)
	if err != nil {
		return 0, err
	}
	byOrder := make(map[int]*models.Lesson, len(existing))
	for _, l := range existing {
		byOrder[l.DisplayOrder] = l
	}

	count := 0
	for i, record := range records {
		row, ok := parseLessonRow(record)
		if !ok {
			log.Printf("  ! Skipping lesson row (too few columns): %v", record)
			continue
		}
		order := i + 1
		content := row.content()

		if current, found := byOrder[order]; found {
			if _, err := lessons.Update(ctx, current.ID, service.UpdateLessonInput{
				Name:            &row.Name,
				Description:     nonEmpty(row.Description),
				DurationMinutes: positive(row.Duration),
				Content:         content,
			}); err != nil {
				return count, fmt.Errorf("update %s: %w", current.ID, err)
			}
			log.Printf("   -> Updated lesson %s '%s'", current.ID, row.Name)
		} else {
			view, err := lessons.Create(ctx, service.CreateLessonInput{
				PathID:          lf.PathID,
				Name:            row.Name,
				Description:     nonEmpty(row.Description),
				DurationMinutes: positive(row.Duration),
				DisplayOrder:    &order,
				Content:         content,
			})
			if err != nil {
				return count, fmt.Errorf("create row %d: %w", order, err)
			}
			log.Printf("   -> Created lesson %s '%s'", view.ID, row.Name)
		}
		count++
	}
	return count, nil
}

func parseLessonRow(record []string) (lessonRow, bool) {
	if len(record) < 1 || strings.TrimSpace(record[0]) == "" {
		return lessonRow{}, false
	}
	duration, _ := strconv.Atoi(column(record, 2))
	return lessonRow{
		Name:        strings.TrimSpace(record[0]),
		Description: column(record, 1),
		Duration:    duration,
		ContentType: strings.ToLower(column(record, 3)),
		Title:       column(record, 4),
		Text:        column(record, 5),
	}, true
}

// content maps the row's text column onto the field each content type keeps it in.
// Listening rows only carry a transcript; the audio generator fills in the file later.
func (r lessonRow) content() *service.ContentInput {
	text := nonEmpty(r.Text)
	switch r.ContentType {
	case service.ContentReading:
		return &service.ContentInput{Type: r.ContentType, Reading: &service.ReadingInput{Title: r.Title, Body: text}}
	case service.ContentListening:
		return &service.ContentInput{Type: r.ContentType, Listening: &service.ListeningInput{Title: r.Title, Transcript: text}}
	case service.ContentWriting:
		return &service.ContentInput{Type: r.ContentType, Writing: &service.WritingInput{Title: r.Title, Prompt: r.Text}}
	default:
		return nil
	}
}

// readCSV returns all rows after the header.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return reader.ReadAll()
}

func column(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func optionalColumn(record []string, i int) *string {
	return nonEmpty(column(record, i))
}

func nonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
