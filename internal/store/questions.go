package store

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, q *models.Question, answers []*models.Answer) error
	Get(ctx context.Context, tx *gorm.DB, skill models.Skill, passageID, id string) (*models.Question, error)
	ListByPassage(ctx context.Context, tx *gorm.DB, skill models.Skill, passageID string) ([]*models.Question, error)
	AnswersByQuestions(ctx context.Context, tx *gorm.DB, questionIDs []string) ([]*models.Answer, error)
	MaxOrder(ctx context.Context, tx *gorm.DB, skill models.Skill, passageID string) (int, error)
	CountByPassages(ctx context.Context, tx *gorm.DB, skill models.Skill, passageIDs []string) (map[string]int, error)
	IDsByPassages(ctx context.Context, tx *gorm.DB, skill models.Skill, passageIDs []string) ([]string, error)
	DeleteAnswersByQuestions(ctx context.Context, tx *gorm.DB, questionIDs []string) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []string) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

// Create inserts the question and its answers. Callers wanting atomicity pass a tx.
func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, q *models.Question, answers []*models.Answer) error {
	db := use(ctx, r.db, tx, r.log)
	if err := db.Create(q).Error; err != nil {
		return err
	}
	if len(answers) == 0 {
		return nil
	}
	return db.Create(&answers).Error
}

func (r *questionRepo) Get(ctx context.Context, tx *gorm.DB, skill models.Skill, passageID, id string) (*models.Question, error) {
	var q models.Question
	if err := use(ctx, r.db, tx, r.log).
		Where("id = ? AND skill = ? AND passage_id = ?", id, skill, passageID).
		First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) ListByPassage(ctx context.Context, tx *gorm.DB, skill models.Skill, passageID string) ([]*models.Question, error) {
	var out []*models.Question
	if err := use(ctx, r.db, tx, r.log).
		Where("skill = ? AND passage_id = ?", skill, passageID).
		Order("display_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AnswersByQuestions returns answers grouped by question, each group in display order.
func (r *questionRepo) AnswersByQuestions(ctx context.Context, tx *gorm.DB, questionIDs []string) ([]*models.Answer, error) {
	var out []*models.Answer
	if len(questionIDs) == 0 {
		return out, nil
	}
	if err := use(ctx, r.db, tx, r.log).
		Where("question_id IN ?", questionIDs).
		Order("question_id ASC, display_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) MaxOrder(ctx context.Context, tx *gorm.DB, skill models.Skill, passageID string) (int, error) {
	var maxOrder sql.NullInt64
	if err := use(ctx, r.db, tx, r.log).Model(&models.Question{}).
		Where("skill = ? AND passage_id = ?", skill, passageID).
		Select("MAX(display_order)").
		Row().Scan(&maxOrder); err != nil {
		return 0, err
	}
	return int(maxOrder.Int64), nil
}

func (r *questionRepo) CountByPassages(ctx context.Context, tx *gorm.DB, skill models.Skill, passageIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(passageIDs))
	if len(passageIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		PassageID string
		N         int
	}
	if err := use(ctx, r.db, tx, r.log).Model(&models.Question{}).
		Select("passage_id, COUNT(*) AS n").
		Where("skill = ? AND passage_id IN ?", skill, passageIDs).
		Group("passage_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PassageID] = row.N
	}
	return out, nil
}

func (r *questionRepo) IDsByPassages(ctx context.Context, tx *gorm.DB, skill models.Skill, passageIDs []string) ([]string, error) {
	var ids []string
	if len(passageIDs) == 0 {
		return ids, nil
	}
	if err := use(ctx, r.db, tx, r.log).Model(&models.Question{}).
		Where("skill = ? AND passage_id IN ?", skill, passageIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *questionRepo) DeleteAnswersByQuestions(ctx context.Context, tx *gorm.DB, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return use(ctx, r.db, tx, r.log).Where("question_id IN ?", questionIDs).Delete(&models.Answer{}).Error
}

func (r *questionRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return use(ctx, r.db, tx, r.log).Where("id IN ?", ids).Delete(&models.Question{}).Error
}
