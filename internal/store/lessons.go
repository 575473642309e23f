package store

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	Save(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Lesson, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Lesson, error)
	ListByPath(ctx context.Context, tx *gorm.DB, pathID string) ([]*models.Lesson, error)
	MaxOrder(ctx context.Context, tx *gorm.DB, pathID string) (int, error)
	LastID(ctx context.Context, tx *gorm.DB, prefix string) (string, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	return use(ctx, r.db, tx, r.log).Create(lesson).Error
}

func (r *lessonRepo) Save(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	return use(ctx, r.db, tx, r.log).Save(lesson).Error
}

func (r *lessonRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Lesson, error) {
	var l models.Lesson
	if err := use(ctx, r.db, tx, r.log).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// List orders by path, then display order.
func (r *lessonRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Lesson, error) {
	var out []*models.Lesson
	if err := use(ctx, r.db, tx, r.log).
		Order("path_id ASC, display_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) ListByPath(ctx context.Context, tx *gorm.DB, pathID string) ([]*models.Lesson, error) {
	var out []*models.Lesson
	if err := use(ctx, r.db, tx, r.log).
		Where("path_id = ?", pathID).
		Order("display_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) MaxOrder(ctx context.Context, tx *gorm.DB, pathID string) (int, error) {
	var maxOrder sql.NullInt64
	if err := use(ctx, r.db, tx, r.log).Model(&models.Lesson{}).
		Where("path_id = ?", pathID).
		Select("MAX(display_order)").
		Row().Scan(&maxOrder); err != nil {
		return 0, err
	}
	return int(maxOrder.Int64), nil
}

func (r *lessonRepo) LastID(ctx context.Context, tx *gorm.DB, prefix string) (string, error) {
	return lastID(ctx, use(ctx, r.db, tx, r.log), "lessons", prefix)
}

func (r *lessonRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return use(ctx, r.db, tx, r.log).Where("id = ?", id).Delete(&models.Lesson{}).Error
}
