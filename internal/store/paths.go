package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

type PathRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*models.LearningPath, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.LearningPath, error)
	Upsert(ctx context.Context, tx *gorm.DB, path *models.LearningPath) error
}

type pathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPathRepo(db *gorm.DB, baseLog *logger.Logger) PathRepo {
	return &pathRepo{db: db, log: baseLog.With("repo", "PathRepo")}
}

func (r *pathRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.LearningPath, error) {
	var out []*models.LearningPath
	if err := use(ctx, r.db, tx, r.log).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pathRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.LearningPath, error) {
	var p models.LearningPath
	if err := use(ctx, r.db, tx, r.log).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pathRepo) Upsert(ctx context.Context, tx *gorm.DB, path *models.LearningPath) error {
	return use(ctx, r.db, tx, r.log).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "track", "level", "skill_focus", "topics"}),
	}).Create(path).Error
}
