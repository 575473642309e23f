package service

import (
	"context"
	"testing"
	"time"

	"toeic-web/internal/apierr"
	"toeic-web/internal/auth"
	"toeic-web/internal/database/dbtest"
	"toeic-web/internal/models"
	"toeic-web/internal/store"
)

type fixture struct {
	st  *store.Store
	svc *Services
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(dbtest.DB(t), dbtest.Logger(t))
	f := &fixture{
		st:  st,
		svc: New(st, auth.NewTokens("test-secret", time.Hour), dbtest.Logger(t)),
		now: time.Date(2025, 5, 10, 8, 30, 0, 0, time.UTC),
	}
	clock := func() time.Time {
		f.now = f.now.Add(time.Minute)
		return f.now
	}
	f.svc.Lessons.(*lessonService).now = clock
	f.svc.Reading.(*exerciseService).now = clock
	f.svc.Listening.(*exerciseService).now = clock
	f.svc.Writing.(*writingService).now = clock
	f.svc.Accounts.(*accountService).now = clock
	f.svc.Stats.(*statsService).now = clock
	return f
}

func (f *fixture) path(t *testing.T, id string) {
	t.Helper()
	topics := "email, memo"
	if err := f.st.Paths.Upsert(context.Background(), nil, &models.LearningPath{ID: id, Name: "Path " + id, Track: "TOEIC", Level: "550", Topics: &topics}); err != nil {
		t.Fatalf("seed path: %v", err)
	}
}

func (f *fixture) user(t *testing.T, id string) {
	t.Helper()
	u := &models.User{ID: id, Email: id + "@example.com", PasswordHash: "x", Role: models.RoleLearner, RegisteredAt: f.now}
	if err := f.st.Users.Create(context.Background(), nil, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

// question inserts a question with one answer per label; answer ids are "<question id>-<label>".
func (f *fixture) question(t *testing.T, skill models.Skill, passageID, id string, points, order int, correct string, labels ...string) {
	t.Helper()
	q := &models.Question{ID: id, Skill: skill, PassageID: passageID, Text: "Question " + id, Points: points, DisplayOrder: order}
	answers := make([]*models.Answer, 0, len(labels))
	for i, l := range labels {
		answers = append(answers, &models.Answer{
			ID:           id + "-" + l,
			QuestionID:   id,
			Label:        l,
			Text:         "option " + l,
			DisplayOrder: i + 1,
			IsCorrect:    l == correct,
		})
	}
	if err := f.st.Questions.Create(context.Background(), nil, q, answers); err != nil {
		t.Fatalf("seed question: %v", err)
	}
}

func wantKind(t *testing.T, op string, err error, kind apierr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected %s error, got nil", op, kind)
	}
	if got := apierr.KindOf(err); got != kind {
		t.Fatalf("%s: expected %s error, got %s (%v)", op, kind, got, err)
	}
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
