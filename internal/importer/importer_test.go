package importer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"toeic-web/internal/database/dbtest"
	"toeic-web/internal/models"
	"toeic-web/internal/service"
	"toeic-web/internal/store"
)

func seedReading(t *testing.T) (*store.Store, service.LessonService, string) {
	t.Helper()
	log := dbtest.Logger(t)
	st := store.New(dbtest.DB(t), log)
	ctx := context.Background()
	if err := st.Paths.Upsert(ctx, nil, &models.LearningPath{ID: "LT001", Name: "Path", Track: "TOEIC", Level: "550"}); err != nil {
		t.Fatalf("seed path: %v", err)
	}
	lessons := service.NewLessonService(st, log)
	body := "Please note..."
	view, err := lessons.Create(ctx, service.CreateLessonInput{
		PathID:  "LT001",
		Name:    "Memos",
		Content: &service.ContentInput{Type: "reading", Reading: &service.ReadingInput{Title: "Memo", Body: &body}},
	})
	if err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return st, lessons, view.Reading[0].ID
}

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range rows {
			cellName, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(name, cellName, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "questions.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

var header = []any{"passage", "question", "explanation", "points", "correct", "A", "B", "C", "D"}

func TestImportFileCreatesQuestions(t *testing.T) {
	st, _, passageID := seedReading(t)
	log := dbtest.Logger(t)
	reading := service.NewReadingService(st, log)
	im := New(log, reading, service.NewListeningService(st, log))

	path := writeWorkbook(t, map[string][][]any{
		"Reading": {
			header,
			{passageID, "Who wrote the memo?", "See the signature.", 2, "c", "Sales", "HR", "The manager"},
			{},
			{passageID, "Only one option", "", "", "A", "Yes"},
			{"BD404", "Missing passage", "", "", "A", "Yes", "No"},
			{passageID, "Bad points", "", "many", "A", "Yes", "No"},
		},
		"Notes": {{"ignored"}},
	})

	res, err := im.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if res.Created != 1 || res.TotalProcessed != 4 || len(res.Errors) != 3 {
		t.Fatalf("ImportFile: unexpected result %+v", res)
	}
	if !strings.Contains(res.Errors[1], "BD404") {
		t.Fatalf("ImportFile: expected missing passage error, got %q", res.Errors[1])
	}

	detail, err := reading.Detail(context.Background(), passageID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.TotalQuestions != 1 {
		t.Fatalf("Detail: expected 1 question, got %d", detail.TotalQuestions)
	}
	q := detail.Questions[0]
	if q.Points != 2 || len(q.Answers) != 3 || !q.Answers[2].IsCorrect || q.Answers[2].Label != "C" {
		t.Fatalf("imported question: unexpected %+v answers %+v", q.Question, q.Answers)
	}
}

func TestParseRowMultipleCorrect(t *testing.T) {
	id, in, err := parseRow([]string{" BD001 ", "Pick two", "", "", "A, c", "one", "", "three"})
	if err != nil {
		t.Fatalf("parseRow: %v", err)
	}
	if id != "BD001" || len(in.Answers) != 2 {
		t.Fatalf("parseRow: unexpected %q %+v", id, in.Answers)
	}
	if !in.Answers[0].IsCorrect || in.Answers[1].Label != "C" || !in.Answers[1].IsCorrect {
		t.Fatalf("parseRow: expected A and C correct, got %+v", in.Answers)
	}
	if in.Points != nil {
		t.Fatalf("parseRow: expected default points")
	}
}
