package service

import (
	"context"
	"testing"

	"toeic-web/internal/apierr"
	"toeic-web/internal/models"
	"toeic-web/internal/store"
)

func TestCreateLessonDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.path(t, "LT001")

	_, err := f.svc.Lessons.Create(ctx, CreateLessonInput{PathID: "LT404", Name: "x"})
	wantKind(t, "Create unknown path", err, apierr.KindNotFound)
	_, err = f.svc.Lessons.Create(ctx, CreateLessonInput{PathID: "LT001", Name: "  "})
	wantKind(t, "Create blank name", err, apierr.KindValidation)
	_, err = f.svc.Lessons.Create(ctx, CreateLessonInput{PathID: "LT001", Name: "x", DurationMinutes: intPtr(601)})
	wantKind(t, "Create long duration", err, apierr.KindValidation)
	_, err = f.svc.Lessons.Create(ctx, CreateLessonInput{PathID: "LT001", Name: "x", Content: &ContentInput{Type: "video"}})
	wantKind(t, "Create unknown content type", err, apierr.KindValidation)

	first, err := f.svc.Lessons.Create(ctx, CreateLessonInput{PathID: "LT001", Name: " Greetings ", DisplayOrder: intPtr(5)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID != "BH001" || first.Name != "Greetings" || first.DisplayOrder != 5 {
		t.Fatalf("Create: unexpected lesson %+v", first.Lesson)
	}
	if first.TotalContent != 0 || first.Completed {
		t.Fatalf("Create without content: total=%d completed=%v", first.TotalContent, first.Completed)
	}

	second, err := f.svc.Lessons.Create(ctx, CreateLessonInput{
		PathID:  "LT001",
		Name:    "Phone calls",
		Content: &ContentInput{Type: " Listening "},
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.ID != "BH002" || second.DisplayOrder != 6 {
		t.Fatalf("Create second: id=%s order=%d", second.ID, second.DisplayOrder)
	}
	if len(second.Listening) != 1 || second.Listening[0].ID != "BN001" || second.Listening[0].Title != "Phone calls" {
		t.Fatalf("Create second: listening child not defaulted from lesson: %+v", second.Listening)
	}
	if second.PathName != "Path LT001" {
		t.Fatalf("Create second: path name %q", second.PathName)
	}
}

func TestUpdateLessonUpsertsContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.path(t, "LT001")
	f.path(t, "LT002")

	created, err := f.svc.Lessons.Create(ctx, CreateLessonInput{
		PathID:      "LT001",
		Name:        "Emails",
		Description: strPtr("Write a short reply"),
		Content:     &ContentInput{Type: "writing"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created.Writing) != 1 || created.Writing[0].Prompt != "Write a short reply" || created.Writing[0].Title != "Emails" {
		t.Fatalf("Create: writing prompt not defaulted: %+v", created.Writing)
	}
	promptID := created.Writing[0].ID

	updated, err := f.svc.Lessons.Update(ctx, created.ID, UpdateLessonInput{
		Name:    strPtr("Business emails"),
		PathID:  strPtr("LT002"),
		Content: &ContentInput{Type: "WRITING", Writing: &WritingInput{Title: "Reply", Prompt: "Answer the customer", MinWords: intPtr(50)}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Business emails" || updated.PathID != "LT002" {
		t.Fatalf("Update: fields not applied: %+v", updated.Lesson)
	}
	if len(updated.Writing) != 1 || updated.Writing[0].ID != promptID {
		t.Fatalf("Update: expected the existing prompt to be updated in place")
	}
	w := updated.Writing[0]
	if w.Title != "Reply" || w.Prompt != "Answer the customer" || w.MinWords == nil || *w.MinWords != 50 {
		t.Fatalf("Update: prompt not updated: %+v", w)
	}

	// nil content leaves children alone
	if _, err := f.svc.Lessons.Update(ctx, created.ID, UpdateLessonInput{DisplayOrder: intPtr(3)}); err != nil {
		t.Fatalf("Update without content: %v", err)
	}
	after, err := f.svc.Lessons.Detail(ctx, created.ID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if after.DisplayOrder != 3 || len(after.Writing) != 1 || after.Writing[0].Title != "Reply" {
		t.Fatalf("Update without content changed children: %+v", after.Writing)
	}

	_, err = f.svc.Lessons.Update(ctx, "BH404", UpdateLessonInput{})
	wantKind(t, "Update missing lesson", err, apierr.KindNotFound)
	_, err = f.svc.Lessons.Update(ctx, created.ID, UpdateLessonInput{PathID: strPtr("LT404")})
	wantKind(t, "Update to missing path", err, apierr.KindNotFound)
}

func TestDeleteLessonCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	passageID := readingLesson(t, f)
	lessonID := "BH001"
	f.user(t, "ND001")
	f.question(t, models.SkillReading, passageID, "CHD01", 1, 1, "A", "A", "B")

	for _, c := range []*ContentInput{
		{Type: "listening", Listening: &ListeningInput{Title: "Call"}},
		{Type: "writing", Writing: &WritingInput{Title: "Reply", Prompt: "Write"}},
	} {
		if _, err := f.svc.Lessons.Update(ctx, lessonID, UpdateLessonInput{Content: c}); err != nil {
			t.Fatalf("Update %s: %v", c.Type, err)
		}
	}
	view, err := f.svc.Lessons.Detail(ctx, lessonID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	listeningID, promptID := view.Listening[0].ID, view.Writing[0].ID
	f.question(t, models.SkillListening, listeningID, "CHN01", 1, 1, "B", "A", "B")

	if _, err := f.svc.Reading.Submit(ctx, "ND001", passageID, SubmitInput{Answers: []AnswerChoice{{QuestionID: "CHD01", AnswerID: "CHD01-A"}}}); err != nil {
		t.Fatalf("Submit reading: %v", err)
	}
	if _, err := f.svc.Listening.Submit(ctx, "ND001", listeningID, SubmitInput{Answers: []AnswerChoice{{QuestionID: "CHN01", AnswerID: "CHN01-B"}}}); err != nil {
		t.Fatalf("Submit listening: %v", err)
	}
	if _, err := f.svc.Writing.Submit(ctx, "ND001", promptID, WritingSubmitInput{Body: "Dear customer"}); err != nil {
		t.Fatalf("Submit writing: %v", err)
	}
	if _, err := f.svc.Lessons.AddVideo(ctx, lessonID, VideoInput{Title: "Intro", URL: "https://example.com/v.mp4"}); err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	if _, err := f.svc.Lessons.SaveProgress(ctx, "ND001", lessonID, true); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	// Children still reference the lesson, so a bare delete must be refused.
	if err := f.st.DB.Delete(&models.Lesson{}, "id = ?", lessonID).Error; err == nil {
		t.Fatalf("bare lesson delete with children: expected foreign key error")
	}
	if err := f.st.DB.Delete(&models.Question{}, "id = ?", "CHD01").Error; err == nil {
		t.Fatalf("bare question delete with answers: expected foreign key error")
	}

	if err := f.svc.Lessons.Delete(ctx, lessonID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err = f.svc.Lessons.Detail(ctx, lessonID)
	wantKind(t, "Detail after delete", err, apierr.KindNotFound)
	_, err = f.svc.Reading.Detail(ctx, passageID)
	wantKind(t, "Reading detail after delete", err, apierr.KindNotFound)
	_, err = f.svc.Listening.Detail(ctx, listeningID)
	wantKind(t, "Listening detail after delete", err, apierr.KindNotFound)
	_, err = f.svc.Writing.Prompt(ctx, promptID)
	wantKind(t, "Writing prompt after delete", err, apierr.KindNotFound)
	if _, err := f.st.Questions.Get(ctx, nil, models.SkillReading, passageID, "CHD01"); !store.IsNotFound(err) {
		t.Fatalf("question survived delete: %v", err)
	}

	for _, m := range []interface{}{
		&models.Answer{}, &models.Response{}, &models.Result{}, &models.Question{},
		&models.WritingSubmission{}, &models.Video{}, &models.LessonProgress{},
	} {
		var n int64
		if err := f.st.DB.Model(m).Count(&n).Error; err != nil {
			t.Fatalf("count %T: %v", m, err)
		}
		if n != 0 {
			t.Fatalf("Delete left %d rows of %T", n, m)
		}
	}

	wantKind(t, "Delete twice", f.svc.Lessons.Delete(ctx, lessonID), apierr.KindNotFound)
}

func TestByPathCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	passageID := readingLesson(t, f)
	f.user(t, "ND001")
	f.question(t, models.SkillReading, passageID, "CHD01", 1, 1, "A", "A", "B")

	_, err := f.svc.Lessons.ByPath(ctx, "LT404", "ND001")
	wantKind(t, "ByPath missing", err, apierr.KindNotFound)

	before, err := f.svc.Lessons.ByPath(ctx, "LT001", "ND001")
	if err != nil {
		t.Fatalf("ByPath: %v", err)
	}
	if len(before.Lessons) != 1 || before.Lessons[0].Completed || before.Lessons[0].Reading[0].QuestionCount != 1 {
		t.Fatalf("ByPath before: unexpected %+v", before.Lessons[0])
	}

	if _, err := f.svc.Reading.Submit(ctx, "ND001", passageID, SubmitInput{Answers: []AnswerChoice{{QuestionID: "CHD01", AnswerID: "CHD01-B"}}}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	after, err := f.svc.Lessons.ByPath(ctx, "LT001", "ND001")
	if err != nil {
		t.Fatalf("ByPath: %v", err)
	}
	l := after.Lessons[0]
	if !l.Completed || l.CompletedContent != 1 || !l.Reading[0].Completed {
		t.Fatalf("ByPath after: expected completed lesson, got %+v", l)
	}

	anon, err := f.svc.Lessons.ByPath(ctx, "LT001", "")
	if err != nil || anon.Lessons[0].Completed {
		t.Fatalf("ByPath anonymous: completed=%v err=%v", anon.Lessons[0].Completed, err)
	}

	all, err := f.svc.Lessons.AllStatus(ctx, "ND001")
	if err != nil || len(all) != 1 || !all[0].Completed {
		t.Fatalf("AllStatus: len=%d err=%v", len(all), err)
	}
}

func TestProgressAndVideos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	readingLesson(t, f)
	f.user(t, "ND001")

	_, err := f.svc.Lessons.SaveProgress(ctx, "ND001", "BH404", true)
	wantKind(t, "SaveProgress missing lesson", err, apierr.KindNotFound)

	p, err := f.svc.Lessons.SaveProgress(ctx, "ND001", "BH001", false)
	if err != nil || p.Status != models.ProgressLearning {
		t.Fatalf("SaveProgress: %+v err=%v", p, err)
	}

	_, err = f.svc.Lessons.AddVideo(ctx, "BH001", VideoInput{Title: "Intro"})
	wantKind(t, "AddVideo without url", err, apierr.KindValidation)
	v, err := f.svc.Lessons.AddVideo(ctx, "BH001", VideoInput{Title: "Intro", URL: "https://example.com/a.mp4", DurationSeconds: intPtr(120)})
	if err != nil || v.ID != "VD001" {
		t.Fatalf("AddVideo: %+v err=%v", v, err)
	}
	detail, err := f.svc.Lessons.Detail(ctx, "BH001")
	if err != nil || len(detail.Videos) != 1 {
		t.Fatalf("Detail videos: err=%v", err)
	}
}
