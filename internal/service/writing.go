package service

import (
	"context"
	"strings"
	"time"

	"toeic-web/internal/apierr"
	"toeic-web/internal/logger"
	"toeic-web/internal/models"
	"toeic-web/internal/store"
)

type WritingSubmitInput struct {
	Body string `json:"body"`
}

type WritingService interface {
	Prompt(ctx context.Context, promptID string) (*models.WritingPrompt, error)
	Submit(ctx context.Context, userID, promptID string, in WritingSubmitInput) (*models.WritingSubmission, error)
	History(ctx context.Context, userID string) ([]*models.WritingSubmission, error)
}

type writingService struct {
	store *store.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewWritingService(st *store.Store, log *logger.Logger) WritingService {
	return &writingService{store: st, log: log.With("service", "WritingService"), now: utcNow}
}

func (s *writingService) Prompt(ctx context.Context, promptID string) (*models.WritingPrompt, error) {
	p, err := s.store.Content.WritingByID(ctx, nil, promptID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apierr.NotFound("writing prompt %s not found", promptID)
		}
		return nil, apierr.Internal("failed to load writing prompt", err)
	}
	return p, nil
}

// Submit stores the essay as written. Word limits on the prompt are guidance only.
func (s *writingService) Submit(ctx context.Context, userID, promptID string, in WritingSubmitInput) (*models.WritingSubmission, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, apierr.Validation("body is required")
	}
	if _, err := s.Prompt(ctx, promptID); err != nil {
		return nil, err
	}
	sub := &models.WritingSubmission{
		PromptID:    promptID,
		UserID:      userID,
		Body:        body,
		WordCount:   len(strings.Fields(body)),
		SubmittedAt: s.now(),
	}
	if err := s.store.Writing.Create(ctx, nil, sub); err != nil {
		return nil, apierr.Internal("failed to save writing submission", err)
	}
	s.log.Info("writing submitted", "user_id", userID, "prompt_id", promptID, "words", sub.WordCount)
	return sub, nil
}

func (s *writingService) History(ctx context.Context, userID string) ([]*models.WritingSubmission, error) {
	subs, err := s.store.Writing.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Internal("failed to load writing history", err)
	}
	return subs, nil
}
