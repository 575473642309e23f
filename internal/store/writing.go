package store

import (
	"context"

	"gorm.io/gorm"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

type WritingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sub *models.WritingSubmission) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.WritingSubmission, error)
	SubmittedPromptIDs(ctx context.Context, tx *gorm.DB, userID string, promptIDs []string) (map[string]bool, error)
	DeleteByPrompts(ctx context.Context, tx *gorm.DB, promptIDs []string) error
}

type writingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWritingRepo(db *gorm.DB, baseLog *logger.Logger) WritingRepo {
	return &writingRepo{db: db, log: baseLog.With("repo", "WritingRepo")}
}

func (r *writingRepo) Create(ctx context.Context, tx *gorm.DB, sub *models.WritingSubmission) error {
	return use(ctx, r.db, tx, r.log).Create(sub).Error
}

func (r *writingRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.WritingSubmission, error) {
	var out []*models.WritingSubmission
	if err := use(ctx, r.db, tx, r.log).
		Where("user_id = ?", userID).
		Order("submitted_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *writingRepo) SubmittedPromptIDs(ctx context.Context, tx *gorm.DB, userID string, promptIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if userID == "" || len(promptIDs) == 0 {
		return out, nil
	}
	var ids []string
	if err := use(ctx, r.db, tx, r.log).Model(&models.WritingSubmission{}).
		Distinct("prompt_id").
		Where("user_id = ? AND prompt_id IN ?", userID, promptIDs).
		Pluck("prompt_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *writingRepo) DeleteByPrompts(ctx context.Context, tx *gorm.DB, promptIDs []string) error {
	if len(promptIDs) == 0 {
		return nil
	}
	return use(ctx, r.db, tx, r.log).Where("prompt_id IN ?", promptIDs).Delete(&models.WritingSubmission{}).Error
}
