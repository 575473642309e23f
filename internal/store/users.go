package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	LastID(ctx context.Context, tx *gorm.DB, prefix string) (string, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountRegisteredBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) (int64, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return use(ctx, r.db, tx, r.log).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var u models.User
	if err := use(ctx, r.db, tx, r.log).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var u models.User
	if err := use(ctx, r.db, tx, r.log).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) LastID(ctx context.Context, tx *gorm.DB, prefix string) (string, error) {
	return lastID(ctx, use(ctx, r.db, tx, r.log), "users", prefix)
}

func (r *userRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := use(ctx, r.db, tx, r.log).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (r *userRepo) CountRegisteredBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) (int64, error) {
	var n int64
	err := use(ctx, r.db, tx, r.log).Model(&models.User{}).
		Where("registered_at >= ? AND registered_at < ?", from, to).
		Count(&n).Error
	return n, err
}
