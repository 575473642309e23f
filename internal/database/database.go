package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

// Options controls how Connect waits for the database.
type Options struct {
	Retries       int
	RetryInterval time.Duration
}

// Connect opens a pgx-backed pool for dbURL and pings it until it answers or retries run out.
func Connect(ctx context.Context, dbURL string, opts Options, logg *logger.Logger) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}

	// sql.Open only prepares the pool; the first ping dials.
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection (driver error): %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	var pingErr error
	for i := 1; i <= opts.Retries; i++ {
		pingErr = db.PingContext(ctx)
		if pingErr == nil {
			return db, nil
		}
		logg.Warn("database not ready", "attempt", i, "max_attempts", opts.Retries, "error", pingErr)
		if i == opts.Retries {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryInterval):
		}
	}

	db.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", opts.Retries, pingErr)
}

// Open wraps an existing pool with GORM.
func Open(sqlDB *sql.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), Config())
	if err != nil {
		return nil, fmt.Errorf("failed to initialise gorm: %w", err)
	}
	return gdb, nil
}

// Config is the GORM configuration shared by the server and tests.
// TranslateError makes unique violations surface as gorm.ErrDuplicatedKey on every dialect.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
