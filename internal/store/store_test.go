package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"toeic-web/internal/database"
	"toeic-web/internal/database/dbtest"
	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

func strPtr(s string) *string { return &s }

func seedLesson(t *testing.T, s *Store, pathID, lessonID string, order int) {
	t.Helper()
	ctx := context.Background()
	if err := s.Paths.Upsert(ctx, nil, &models.LearningPath{ID: pathID, Name: "Path " + pathID, Track: "TOEIC", Level: "450"}); err != nil {
		t.Fatalf("Upsert path: %v", err)
	}
	if err := s.Lessons.Create(ctx, nil, &models.Lesson{ID: lessonID, PathID: pathID, Name: "Lesson " + lessonID, DisplayOrder: order, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Create lesson: %v", err)
	}
}

func TestLastIDPrefersLongerIDs(t *testing.T) {
	s := New(dbtest.DB(t), dbtest.Logger(t))
	ctx := context.Background()

	seedLesson(t, s, "LT001", "BH999", 1)
	seedLesson(t, s, "LT001", "BH1000", 2)

	last, err := s.Lessons.LastID(ctx, nil, "BH")
	if err != nil {
		t.Fatalf("LastID: %v", err)
	}
	if last != "BH1000" {
		t.Fatalf("LastID: expected BH1000, got %q", last)
	}

	last, err = s.Content.LastID(ctx, nil, TableReading, "BD")
	if err != nil || last != "" {
		t.Fatalf("LastID on empty table: last=%q err=%v", last, err)
	}
}

func TestLastIDSkipsNonNumericCodes(t *testing.T) {
	s := New(dbtest.DB(t), dbtest.Logger(t))
	ctx := context.Background()

	seedLesson(t, s, "LT001", "BHX1", 1)
	last, err := s.Lessons.LastID(ctx, nil, "BH")
	if err != nil || last != "" {
		t.Fatalf("LastID with only a hand-seeded code: last=%q err=%v", last, err)
	}

	seedLesson(t, s, "LT001", "BH002", 2)
	seedLesson(t, s, "LT001", "BH00A", 3)
	seedLesson(t, s, "LT001", "BH9ZZZ", 4)
	last, err = s.Lessons.LastID(ctx, nil, "BH")
	if err != nil {
		t.Fatalf("LastID: %v", err)
	}
	if last != "BH002" {
		t.Fatalf("LastID: expected BH002, got %q", last)
	}
}

func TestLessonMaxOrder(t *testing.T) {
	s := New(dbtest.DB(t), dbtest.Logger(t))
	ctx := context.Background()

	if n, err := s.Lessons.MaxOrder(ctx, nil, "LT404"); err != nil || n != 0 {
		t.Fatalf("MaxOrder empty: n=%d err=%v", n, err)
	}
	seedLesson(t, s, "LT001", "BH001", 4)
	seedLesson(t, s, "LT001", "BH002", 9)
	if n, err := s.Lessons.MaxOrder(ctx, nil, "LT001"); err != nil || n != 9 {
		t.Fatalf("MaxOrder: n=%d err=%v", n, err)
	}
}

func TestPassagesAndQuestions(t *testing.T) {
	s := New(dbtest.DB(t), dbtest.Logger(t))
	ctx := context.Background()

	seedLesson(t, s, "LT001", "BH001", 2)
	seedLesson(t, s, "LT001", "BH002", 1)
	seedLesson(t, s, "LT002", "BH003", 1)

	for _, p := range []*models.ReadingPassage{
		{ID: "BD001", LessonID: "BH001", Title: "Office memo", Body: strPtr("text")},
		{ID: "BD002", LessonID: "BH002", Title: "Invoice"},
		{ID: "BD003", LessonID: "BH003", Title: "Other path"},
	} {
		if err := s.Content.CreateReading(ctx, nil, p); err != nil {
			t.Fatalf("CreateReading %s: %v", p.ID, err)
		}
	}
	if err := s.Content.CreateListening(ctx, nil, &models.ListeningPassage{ID: "BN001", LessonID: "BH001", Title: "Call", Transcript: strPtr("hello")}); err != nil {
		t.Fatalf("CreateListening: %v", err)
	}

	dup := &models.ReadingPassage{ID: "BD009", LessonID: "BH001", Title: "Second"}
	if err := s.Content.CreateReading(ctx, nil, dup); !database.IsDuplicate(err) {
		t.Fatalf("CreateReading second passage for lesson: expected duplicate, got %v", err)
	}

	got, err := s.Passages.Get(ctx, nil, models.SkillReading, "BD001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Office memo" || got.Body == nil || *got.Body != "text" {
		t.Fatalf("Get: unexpected record %+v", got)
	}
	if _, err := s.Passages.Get(ctx, nil, models.SkillListening, "BD001"); !IsNotFound(err) {
		t.Fatalf("Get reading id as listening: expected not found, got %v", err)
	}

	byPath, err := s.Passages.ListByPath(ctx, nil, models.SkillReading, "LT001")
	if err != nil {
		t.Fatalf("ListByPath: %v", err)
	}
	if len(byPath) != 2 || byPath[0].ID != "BD002" || byPath[1].ID != "BD001" {
		t.Fatalf("ListByPath: expected [BD002 BD001], got %d rows", len(byPath))
	}
	if byPath[0].LessonName != "Lesson BH002" || byPath[0].LessonOrder != 1 {
		t.Fatalf("ListByPath: lesson columns not joined: %+v", byPath[0])
	}

	q := &models.Question{ID: "CHD01", Skill: models.SkillReading, PassageID: "BD001", Text: "Q1", Points: 2, DisplayOrder: 1}
	answers := []*models.Answer{
		{ID: "DA01", QuestionID: "CHD01", Label: "A", Text: "yes", DisplayOrder: 1, IsCorrect: true},
		{ID: "DA02", QuestionID: "CHD01", Label: "B", Text: "no", DisplayOrder: 2},
	}
	if err := s.Questions.Create(ctx, nil, q, answers); err != nil {
		t.Fatalf("Create question: %v", err)
	}
	if err := s.Questions.Create(ctx, nil, &models.Question{ID: "CHD02", Skill: models.SkillReading, PassageID: "BD001", Text: "Q2", Points: 1, DisplayOrder: 5}, nil); err != nil {
		t.Fatalf("Create question: %v", err)
	}

	if n, err := s.Questions.MaxOrder(ctx, nil, models.SkillReading, "BD001"); err != nil || n != 5 {
		t.Fatalf("MaxOrder: n=%d err=%v", n, err)
	}
	counts, err := s.Questions.CountByPassages(ctx, nil, models.SkillReading, []string{"BD001", "BD002"})
	if err != nil {
		t.Fatalf("CountByPassages: %v", err)
	}
	if counts["BD001"] != 2 || counts["BD002"] != 0 {
		t.Fatalf("CountByPassages: got %v", counts)
	}
	if _, err := s.Questions.Get(ctx, nil, models.SkillListening, "BD001", "CHD01"); !IsNotFound(err) {
		t.Fatalf("Get with wrong skill: expected not found, got %v", err)
	}

	ans, err := s.Questions.AnswersByQuestions(ctx, nil, []string{"CHD01"})
	if err != nil || len(ans) != 2 || ans[0].Label != "A" {
		t.Fatalf("AnswersByQuestions: len=%d err=%v", len(ans), err)
	}
}

func TestResultsAttemptIndex(t *testing.T) {
	s := New(dbtest.DB(t), dbtest.Logger(t))
	ctx := context.Background()

	if err := s.Users.Create(ctx, nil, &models.User{ID: "ND001", Email: "a@example.com", PasswordHash: "x", Role: models.RoleLearner, RegisteredAt: time.Now()}); err != nil {
		t.Fatalf("Create user: %v", err)
	}

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= 2; i++ {
		r := &models.Result{Skill: models.SkillReading, UserID: "ND001", PassageID: "BD001", Attempt: i, Score: i, MaxScore: 3, SubmittedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := s.Results.CreateResult(ctx, nil, r); err != nil {
			t.Fatalf("CreateResult %d: %v", i, err)
		}
	}
	again := &models.Result{Skill: models.SkillReading, UserID: "ND001", PassageID: "BD001", Attempt: 2, SubmittedAt: base}
	if err := s.Results.CreateResult(ctx, nil, again); !database.IsDuplicate(err) {
		t.Fatalf("CreateResult duplicate attempt: expected duplicate, got %v", err)
	}
	// Same attempt number for the other skill is a different series.
	other := &models.Result{Skill: models.SkillListening, UserID: "ND001", PassageID: "BD001", Attempt: 2, SubmittedAt: base}
	if err := s.Results.CreateResult(ctx, nil, other); err != nil {
		t.Fatalf("CreateResult listening: %v", err)
	}

	if n, err := s.Results.CountAttempts(ctx, nil, models.SkillReading, "ND001", "BD001"); err != nil || n != 2 {
		t.Fatalf("CountAttempts: n=%d err=%v", n, err)
	}

	rows, err := s.Results.ListByUser(ctx, nil, models.SkillReading, "ND001", "")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 2 || rows[0].Attempt != 2 {
		t.Fatalf("ListByUser: expected newest first, got %d rows", len(rows))
	}

	done, err := s.Results.AttemptedPassageIDs(ctx, nil, models.SkillReading, "ND001", []string{"BD001", "BD002"})
	if err != nil {
		t.Fatalf("AttemptedPassageIDs: %v", err)
	}
	if !done["BD001"] || done["BD002"] {
		t.Fatalf("AttemptedPassageIDs: got %v", done)
	}

	if err := s.Results.DeleteByPassages(ctx, nil, models.SkillReading, []string{"BD001"}); err != nil {
		t.Fatalf("DeleteByPassages: %v", err)
	}
	if n, _ := s.Results.CountAttempts(ctx, nil, models.SkillListening, "ND001", "BD001"); n != 1 {
		t.Fatalf("DeleteByPassages removed the other skill's rows")
	}
}

func TestProgressUpsert(t *testing.T) {
	s := New(dbtest.DB(t), dbtest.Logger(t))
	ctx := context.Background()

	seedLesson(t, s, "LT001", "BH001", 1)
	if err := s.Users.Create(ctx, nil, &models.User{ID: "ND001", Email: "a@example.com", PasswordHash: "x", Role: models.RoleLearner, RegisteredAt: time.Now()}); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	for _, status := range []string{models.ProgressLearning, models.ProgressCompleted} {
		p := &models.LessonProgress{UserID: "ND001", LessonID: "BH001", Status: status, UpdatedAt: time.Now()}
		if err := s.Content.UpsertProgress(ctx, nil, p); err != nil {
			t.Fatalf("UpsertProgress %s: %v", status, err)
		}
	}
	var rows []models.LessonProgress
	if err := s.DB.Find(&rows).Error; err != nil {
		t.Fatalf("find progress: %v", err)
	}
	if len(rows) != 1 || rows[0].Status != models.ProgressCompleted {
		t.Fatalf("UpsertProgress: expected one completed row, got %+v", rows)
	}
}

func TestFailedQueriesAreLoggedPerRepo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(dbtest.DB(t), &logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	ctx := context.Background()

	u := &models.User{ID: "ND001", Email: "a@example.com", PasswordHash: "secret-hash", Role: models.RoleLearner, RegisteredAt: time.Now()}
	if err := s.Users.Create(ctx, nil, u); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	if _, err := s.Users.GetByID(ctx, nil, "ND404"); !IsNotFound(err) {
		t.Fatalf("GetByID missing: expected not found, got %v", err)
	}
	if logs.Len() != 0 {
		t.Fatalf("successful and not-found queries should not log, got %d entries", logs.Len())
	}

	dup := *u
	if err := s.Users.Create(ctx, nil, &dup); !database.IsDuplicate(err) {
		t.Fatalf("Create duplicate: expected duplicate, got %v", err)
	}
	orphan := &models.Lesson{ID: "BH001", PathID: "LT404", Name: "Orphan", DisplayOrder: 1, CreatedAt: time.Now()}
	if err := s.Lessons.Create(ctx, nil, orphan); err == nil {
		t.Fatalf("Create lesson for missing path: expected error")
	}

	entries := logs.TakeAll()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	dupEntry, fkEntry := entries[0], entries[1]
	if dupEntry.Level != zapcore.WarnLevel || dupEntry.ContextMap()["repo"] != "UserRepo" {
		t.Fatalf("duplicate key entry: level=%s fields=%v", dupEntry.Level, dupEntry.ContextMap())
	}
	if fkEntry.Level != zapcore.ErrorLevel || fkEntry.ContextMap()["repo"] != "LessonRepo" {
		t.Fatalf("failed query entry: level=%s fields=%v", fkEntry.Level, fkEntry.ContextMap())
	}
	sql, _ := dupEntry.ContextMap()["sql"].(string)
	if !strings.Contains(sql, "users") || strings.Contains(sql, "secret-hash") {
		t.Fatalf("duplicate key entry: unexpected sql %q", sql)
	}
}
