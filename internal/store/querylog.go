package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"toeic-web/internal/database"
	"toeic-web/internal/logger"
)

// queryLogger reports failed statements through a repository's logger.
// Missing rows are not failures; duplicate keys are expected under retry and log at warn.
type queryLogger struct {
	log *logger.Logger
}

func (q queryLogger) LogMode(gormLogger.LogLevel) gormLogger.Interface { return q }

func (q queryLogger) Info(context.Context, string, ...interface{}) {}

func (q queryLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	q.log.Warn(fmt.Sprintf(msg, data...))
}

func (q queryLogger) Error(_ context.Context, msg string, data ...interface{}) {
	q.log.Error(fmt.Sprintf(msg, data...))
}

func (q queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	sql, rows := fc()
	kv := []interface{}{"sql", sql, "rows", rows, "elapsed", time.Since(begin).String(), "error", err}
	if database.IsDuplicate(err) {
		q.log.Warn("duplicate key", kv...)
		return
	}
	q.log.Error("query failed", kv...)
}

// ParamsFilter keeps bound values (password hashes, essays) out of the logged SQL.
func (q queryLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}
