package store

import (
	"context"

	"gorm.io/gorm"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

// ResultRepo stores scored attempts and the per-question responses behind them.
type ResultRepo interface {
	CountAttempts(ctx context.Context, tx *gorm.DB, skill models.Skill, userID, passageID string) (int64, error)
	CreateResponses(ctx context.Context, tx *gorm.DB, responses []*models.Response) error
	CreateResult(ctx context.Context, tx *gorm.DB, result *models.Result) error
	ListByUser(ctx context.Context, tx *gorm.DB, skill models.Skill, userID, passageID string) ([]*models.Result, error)
	AttemptedPassageIDs(ctx context.Context, tx *gorm.DB, skill models.Skill, userID string, passageIDs []string) (map[string]bool, error)
	DeleteByPassages(ctx context.Context, tx *gorm.DB, skill models.Skill, passageIDs []string) error
	DeleteResponsesByQuestions(ctx context.Context, tx *gorm.DB, questionIDs []string) error
}

type resultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResultRepo(db *gorm.DB, baseLog *logger.Logger) ResultRepo {
	return &resultRepo{db: db, log: baseLog.With("repo", "ResultRepo")}
}

func (r *resultRepo) CountAttempts(ctx context.Context, tx *gorm.DB, skill models.Skill, userID, passageID string) (int64, error) {
	var n int64
	err := use(ctx, r.db, tx, r.log).Model(&models.Result{}).
		Where("skill = ? AND user_id = ? AND passage_id = ?", skill, userID, passageID).
		Count(&n).Error
	return n, err
}

func (r *resultRepo) CreateResponses(ctx context.Context, tx *gorm.DB, responses []*models.Response) error {
	if len(responses) == 0 {
		return nil
	}
	return use(ctx, r.db, tx, r.log).Create(&responses).Error
}

func (r *resultRepo) CreateResult(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	return use(ctx, r.db, tx, r.log).Create(result).Error
}

// ListByUser returns the user's attempts newest first. An empty passageID means all passages.
func (r *resultRepo) ListByUser(ctx context.Context, tx *gorm.DB, skill models.Skill, userID, passageID string) ([]*models.Result, error) {
	q := use(ctx, r.db, tx, r.log).Where("skill = ? AND user_id = ?", skill, userID)
	if passageID != "" {
		q = q.Where("passage_id = ?", passageID)
	}
	var out []*models.Result
	if err := q.Order("submitted_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resultRepo) AttemptedPassageIDs(ctx context.Context, tx *gorm.DB, skill models.Skill, userID string, passageIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if userID == "" || len(passageIDs) == 0 {
		return out, nil
	}
	var ids []string
	if err := use(ctx, r.db, tx, r.log).Model(&models.Result{}).
		Distinct("passage_id").
		Where("skill = ? AND user_id = ? AND passage_id IN ?", skill, userID, passageIDs).
		Pluck("passage_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *resultRepo) DeleteByPassages(ctx context.Context, tx *gorm.DB, skill models.Skill, passageIDs []string) error {
	if len(passageIDs) == 0 {
		return nil
	}
	return use(ctx, r.db, tx, r.log).
		Where("skill = ? AND passage_id IN ?", skill, passageIDs).
		Delete(&models.Result{}).Error
}

func (r *resultRepo) DeleteResponsesByQuestions(ctx context.Context, tx *gorm.DB, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return use(ctx, r.db, tx, r.log).Where("question_id IN ?", questionIDs).Delete(&models.Response{}).Error
}
