// Package service implements the application operations on top of the store.
// Every error a service returns is an *apierr.Error.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"toeic-web/internal/apierr"
	"toeic-web/internal/auth"
	"toeic-web/internal/database"
	"toeic-web/internal/logger"
	"toeic-web/internal/store"
)

// maxWriteAttempts bounds how often a write is replayed after losing a
// duplicate-key race on a generated id or an attempt number.
const maxWriteAttempts = 3

// Services is the set of services the HTTP layer talks to.
type Services struct {
	Lessons   LessonService
	Reading   ExerciseService
	Listening ExerciseService
	Writing   WritingService
	Accounts  AccountService
	Stats     StatsService
}

func New(st *store.Store, tokens *auth.Tokens, log *logger.Logger) *Services {
	return &Services{
		Lessons:   NewLessonService(st, log),
		Reading:   NewReadingService(st, log),
		Listening: NewListeningService(st, log),
		Writing:   NewWritingService(st, log),
		Accounts:  NewAccountService(st, tokens, log),
		Stats:     NewStatsService(st, log),
	}
}

// retryOnDuplicate reruns fn while it fails with a unique-key violation.
// fn must open its own transaction so each run starts clean.
func retryOnDuplicate(ctx context.Context, log *logger.Logger, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		err = fn()
		if err == nil || !database.IsDuplicate(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn("duplicate key, retrying", "op", op, "attempt", attempt)
	}
	return apierr.New(apierr.KindConflict, op+": concurrent write conflict", err)
}

// outcome passes typed errors through and marks everything else internal.
func outcome(message string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apierr.Internal(message, err)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func utcNow() time.Time { return time.Now().UTC() }
