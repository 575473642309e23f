package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

// PassageRecord is the column set shared by reading and listening passages.
// Skill-specific columns stay nil for the other kind.
type PassageRecord struct {
	ID          string    `json:"id"`
	LessonID    string    `json:"lessonId"`
	Title       string    `json:"title"`
	Difficulty  *string   `json:"difficulty"`
	Body        *string   `json:"body,omitempty"`
	FilePath    *string   `json:"filePath,omitempty"`
	AudioPath   *string   `json:"audioPath,omitempty"`
	Transcript  *string   `json:"transcript,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LessonName  string    `gorm:"column:lesson_name" json:"lessonName,omitempty"`
	LessonOrder int       `gorm:"column:lesson_order" json:"lessonOrder,omitempty"`
}

// PassageRepo reads reading and listening passages through one skill-keyed API.
type PassageRepo interface {
	Get(ctx context.Context, tx *gorm.DB, skill models.Skill, id string) (*PassageRecord, error)
	List(ctx context.Context, tx *gorm.DB, skill models.Skill) ([]*PassageRecord, error)
	ListByPath(ctx context.Context, tx *gorm.DB, skill models.Skill, pathID string) ([]*PassageRecord, error)
	IDsByLesson(ctx context.Context, tx *gorm.DB, skill models.Skill, lessonID string) ([]string, error)
	ByIDs(ctx context.Context, tx *gorm.DB, skill models.Skill, ids []string) (map[string]*PassageRecord, error)
}

type passageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPassageRepo(db *gorm.DB, baseLog *logger.Logger) PassageRepo {
	return &passageRepo{db: db, log: baseLog.With("repo", "PassageRepo")}
}

// PassageTable maps a skill to its passage table.
func PassageTable(skill models.Skill) (string, error) {
	switch skill {
	case models.SkillReading:
		return TableReading, nil
	case models.SkillListening:
		return TableListening, nil
	default:
		return "", fmt.Errorf("unknown skill %q", skill)
	}
}

func (r *passageRepo) Get(ctx context.Context, tx *gorm.DB, skill models.Skill, id string) (*PassageRecord, error) {
	table, err := PassageTable(skill)
	if err != nil {
		return nil, err
	}
	var p PassageRecord
	if err := use(ctx, r.db, tx, r.log).Table(table).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *passageRepo) List(ctx context.Context, tx *gorm.DB, skill models.Skill) ([]*PassageRecord, error) {
	table, err := PassageTable(skill)
	if err != nil {
		return nil, err
	}
	var out []*PassageRecord
	if err := use(ctx, r.db, tx, r.log).
		Table(table + " AS p").
		Select("p.*, l.name AS lesson_name, l.display_order AS lesson_order").
		Joins("JOIN lessons l ON l.id = p.lesson_id").
		Order("p.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByPath orders by the owning lesson's position in the path, then title.
func (r *passageRepo) ListByPath(ctx context.Context, tx *gorm.DB, skill models.Skill, pathID string) ([]*PassageRecord, error) {
	table, err := PassageTable(skill)
	if err != nil {
		return nil, err
	}
	var out []*PassageRecord
	if err := use(ctx, r.db, tx, r.log).
		Table(table+" AS p").
		Select("p.*, l.name AS lesson_name, l.display_order AS lesson_order").
		Joins("JOIN lessons l ON l.id = p.lesson_id").
		Where("l.path_id = ?", pathID).
		Order("l.display_order ASC, p.title ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *passageRepo) IDsByLesson(ctx context.Context, tx *gorm.DB, skill models.Skill, lessonID string) ([]string, error) {
	table, err := PassageTable(skill)
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := use(ctx, r.db, tx, r.log).Table(table).Where("lesson_id = ?", lessonID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *passageRepo) ByIDs(ctx context.Context, tx *gorm.DB, skill models.Skill, ids []string) (map[string]*PassageRecord, error) {
	out := make(map[string]*PassageRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	table, err := PassageTable(skill)
	if err != nil {
		return nil, err
	}
	var rows []*PassageRecord
	if err := use(ctx, r.db, tx, r.log).Table(table).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}
