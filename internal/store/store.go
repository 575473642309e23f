// Package store holds the GORM repositories. Every method takes an optional
// transaction; a nil tx runs against the repository's own handle.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"toeic-web/internal/logger"
)

// Store bundles the repositories the services need.
type Store struct {
	DB        *gorm.DB
	Users     UserRepo
	Paths     PathRepo
	Lessons   LessonRepo
	Content   ContentRepo
	Passages  PassageRepo
	Questions QuestionRepo
	Results   ResultRepo
	Writing   WritingRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{
		DB:        db,
		Users:     NewUserRepo(db, baseLog),
		Paths:     NewPathRepo(db, baseLog),
		Lessons:   NewLessonRepo(db, baseLog),
		Content:   NewContentRepo(db, baseLog),
		Passages:  NewPassageRepo(db, baseLog),
		Questions: NewQuestionRepo(db, baseLog),
		Results:   NewResultRepo(db, baseLog),
		Writing:   NewWritingRepo(db, baseLog),
	}
}

// Tx runs fn inside one database transaction.
func (s *Store) Tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.DB.WithContext(ctx).Transaction(fn)
}

// use picks the transaction when there is one and tags failed statements with the repo's logger.
func use(ctx context.Context, db, tx *gorm.DB, log *logger.Logger) *gorm.DB {
	if tx != nil {
		db = tx
	}
	return db.Session(&gorm.Session{Context: ctx, Logger: queryLogger{log: log}})
}

// IsNotFound reports whether err is GORM's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// lastID returns the greatest sequential id in table starting with prefix, or "".
// Ids whose suffix is not all digits are hand-seeded codes outside the sequence and are skipped.
func lastID(ctx context.Context, db *gorm.DB, table, prefix string) (string, error) {
	rows, err := db.WithContext(ctx).
		Table(table).
		Select("id").
		Where("id LIKE ?", prefix+"%").
		Order("LENGTH(id) DESC, id DESC").
		Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		if sequential(id, prefix) {
			return id, nil
		}
	}
	return "", rows.Err()
}

func sequential(id, prefix string) bool {
	suffix := id[len(prefix):]
	if suffix == "" {
		return false
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
