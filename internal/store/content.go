package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

// Table names used for id allocation.
const (
	TableReading   = "reading_passages"
	TableListening = "listening_passages"
	TableWriting   = "writing_prompts"
	TableVideos    = "videos"
)

// ContentRepo owns the per-lesson children: passages, prompts, videos and progress.
// Lookups by lesson return nil without error when the child does not exist.
type ContentRepo interface {
	LastID(ctx context.Context, tx *gorm.DB, table, prefix string) (string, error)

	ReadingByLesson(ctx context.Context, tx *gorm.DB, lessonID string) (*models.ReadingPassage, error)
	ReadingByLessons(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*models.ReadingPassage, error)
	CreateReading(ctx context.Context, tx *gorm.DB, p *models.ReadingPassage) error
	SaveReading(ctx context.Context, tx *gorm.DB, p *models.ReadingPassage) error
	DeleteReadingByIDs(ctx context.Context, tx *gorm.DB, ids []string) error
	CountReading(ctx context.Context, tx *gorm.DB) (int64, error)

	ListeningByLesson(ctx context.Context, tx *gorm.DB, lessonID string) (*models.ListeningPassage, error)
	ListeningByLessons(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*models.ListeningPassage, error)
	ListeningWithoutAudio(ctx context.Context, tx *gorm.DB) ([]*models.ListeningPassage, error)
	CreateListening(ctx context.Context, tx *gorm.DB, p *models.ListeningPassage) error
	SaveListening(ctx context.Context, tx *gorm.DB, p *models.ListeningPassage) error
	SetListeningAudio(ctx context.Context, tx *gorm.DB, id, audioPath string) error
	DeleteListeningByIDs(ctx context.Context, tx *gorm.DB, ids []string) error
	CountListening(ctx context.Context, tx *gorm.DB) (int64, error)

	WritingByID(ctx context.Context, tx *gorm.DB, id string) (*models.WritingPrompt, error)
	WritingByLesson(ctx context.Context, tx *gorm.DB, lessonID string) (*models.WritingPrompt, error)
	WritingByLessons(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*models.WritingPrompt, error)
	CreateWriting(ctx context.Context, tx *gorm.DB, p *models.WritingPrompt) error
	SaveWriting(ctx context.Context, tx *gorm.DB, p *models.WritingPrompt) error
	DeleteWritingByIDs(ctx context.Context, tx *gorm.DB, ids []string) error
	CountWriting(ctx context.Context, tx *gorm.DB) (int64, error)

	VideosByLessons(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*models.Video, error)
	CreateVideo(ctx context.Context, tx *gorm.DB, v *models.Video) error
	DeleteVideosByLesson(ctx context.Context, tx *gorm.DB, lessonID string) error

	UpsertProgress(ctx context.Context, tx *gorm.DB, p *models.LessonProgress) error
	DeleteProgressByLesson(ctx context.Context, tx *gorm.DB, lessonID string) error
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) LastID(ctx context.Context, tx *gorm.DB, table, prefix string) (string, error) {
	return lastID(ctx, use(ctx, r.db, tx, r.log), table, prefix)
}

func (r *contentRepo) ReadingByLesson(ctx context.Context, tx *gorm.DB, lessonID string) (*models.ReadingPassage, error) {
	var out []*models.ReadingPassage
	if err := use(ctx, r.db, tx, r.log).Where("lesson_id = ?", lessonID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *contentRepo) ReadingByLessons(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*models.ReadingPassage, error) {
	var out []*models.ReadingPassage
	if len(lessonIDs) == 0 {
		return out, nil
	}
	if err := use(ctx, r.db, tx, r.log).
		Where("lesson_id IN ?", lessonIDs).
		Order("title ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) CreateReading(ctx context.Context, tx *gorm.DB, p *models.ReadingPassage) error {
	return use(ctx, r.db, tx, r.log).Create(p).Error
}

func (r *contentRepo) SaveReading(ctx context.Context, tx *gorm.DB, p *models.ReadingPassage) error {
	return use(ctx, r.db, tx, r.log).Save(p).Error
}

func (r *contentRepo) DeleteReadingByIDs(ctx context.Context, tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return use(ctx, r.db, tx, r.log).Where("id IN ?", ids).Delete(&models.ReadingPassage{}).Error
}

func (r *contentRepo) CountReading(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := use(ctx, r.db, tx, r.log).Model(&models.ReadingPassage{}).Count(&n).Error
	return n, err
}

func (r *contentRepo) ListeningByLesson(ctx context.Context, tx *gorm.DB, lessonID string) (*models.ListeningPassage, error) {
	var out []*models.ListeningPassage
	if err := use(ctx, r.db, tx, r.log).Where("lesson_id = ?", lessonID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *contentRepo) ListeningByLessons(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*models.ListeningPassage, error) {
	var out []*models.ListeningPassage
	if len(lessonIDs) == 0 {
		return out, nil
	}
	if err := use(ctx, r.db, tx, r.log).
		Where("lesson_id IN ?", lessonIDs).
		Order("title ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListeningWithoutAudio returns passages that have a transcript but no audio yet.
func (r *contentRepo) ListeningWithoutAudio(ctx context.Context, tx *gorm.DB) ([]*models.ListeningPassage, error) {
	var out []*models.ListeningPassage
	if err := use(ctx, r.db, tx, r.log).
		Where("(audio_path IS NULL OR audio_path = '') AND transcript IS NOT NULL AND transcript <> ''").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) CreateListening(ctx context.Context, tx *gorm.DB, p *models.ListeningPassage) error {
	return use(ctx, r.db, tx, r.log).Create(p).Error
}

func (r *contentRepo) SaveListening(ctx context.Context, tx *gorm.DB, p *models.ListeningPassage) error {
	return use(ctx, r.db, tx, r.log).Save(p).Error
}

func (r *contentRepo) SetListeningAudio(ctx context.Context, tx *gorm.DB, id, audioPath string) error {
	return use(ctx, r.db, tx, r.log).Model(&models.ListeningPassage{}).
		Where("id = ?", id).
		Update("audio_path", audioPath).Error
}

func (r *contentRepo) DeleteListeningByIDs(ctx context.Context, tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return use(ctx, r.db, tx, r.log).Where("id IN ?", ids).Delete(&models.ListeningPassage{}).Error
}

func (r *contentRepo) CountListening(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := use(ctx, r.db, tx, r.log).Model(&models.ListeningPassage{}).Count(&n).Error
	return n, err
}

func (r *contentRepo) WritingByID(ctx context.Context, tx *gorm.DB, id string) (*models.WritingPrompt, error) {
	var p models.WritingPrompt
	if err := use(ctx, r.db, tx, r.log).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *contentRepo) WritingByLesson(ctx context.Context, tx *gorm.DB, lessonID string) (*models.WritingPrompt, error) {
	var out []*models.WritingPrompt
	if err := use(ctx, r.db, tx, r.log).Where("lesson_id = ?", lessonID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *contentRepo) WritingByLessons(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*models.WritingPrompt, error) {
	var out []*models.WritingPrompt
	if len(lessonIDs) == 0 {
		return out, nil
	}
	if err := use(ctx, r.db, tx, r.log).
		Where("lesson_id IN ?", lessonIDs).
		Order("title ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) CreateWriting(ctx context.Context, tx *gorm.DB, p *models.WritingPrompt) error {
	return use(ctx, r.db, tx, r.log).Create(p).Error
}

func (r *contentRepo) SaveWriting(ctx context.Context, tx *gorm.DB, p *models.WritingPrompt) error {
	return use(ctx, r.db, tx, r.log).Save(p).Error
}

func (r *contentRepo) DeleteWritingByIDs(ctx context.Context, tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return use(ctx, r.db, tx, r.log).Where("id IN ?", ids).Delete(&models.WritingPrompt{}).Error
}

func (r *contentRepo) CountWriting(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := use(ctx, r.db, tx, r.log).Model(&models.WritingPrompt{}).Count(&n).Error
	return n, err
}

func (r *contentRepo) VideosByLessons(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*models.Video, error) {
	var out []*models.Video
	if len(lessonIDs) == 0 {
		return out, nil
	}
	if err := use(ctx, r.db, tx, r.log).
		Where("lesson_id IN ?", lessonIDs).
		Order("title ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) CreateVideo(ctx context.Context, tx *gorm.DB, v *models.Video) error {
	return use(ctx, r.db, tx, r.log).Create(v).Error
}

func (r *contentRepo) DeleteVideosByLesson(ctx context.Context, tx *gorm.DB, lessonID string) error {
	return use(ctx, r.db, tx, r.log).Where("lesson_id = ?", lessonID).Delete(&models.Video{}).Error
}

func (r *contentRepo) UpsertProgress(ctx context.Context, tx *gorm.DB, p *models.LessonProgress) error {
	return use(ctx, r.db, tx, r.log).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(p).Error
}

func (r *contentRepo) DeleteProgressByLesson(ctx context.Context, tx *gorm.DB, lessonID string) error {
	return use(ctx, r.db, tx, r.log).Where("lesson_id = ?", lessonID).Delete(&models.LessonProgress{}).Error
}
