// Package importer loads passage questions from an Excel workbook.
//
// Each sheet is named after the skill it feeds ("reading" or "listening").
// Rows after the header use these columns:
//
//	A passage id   B question   C explanation   D points   E correct labels
//	F..K answer options A..F
//
// Correct labels may list several letters ("B" or "A,C").
package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"toeic-web/internal/logger"
	"toeic-web/internal/models"
	"toeic-web/internal/service"
)

const (
	colPassage     = 0
	colText        = 1
	colExplanation = 2
	colPoints      = 3
	colCorrect     = 4
	colFirstAnswer = 5
	maxAnswerCols  = 6
)

// Result counts what an import did. Row errors do not stop the import.
type Result struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

type Importer struct {
	exercises map[models.Skill]service.ExerciseService
	log       *logger.Logger
}

func New(log *logger.Logger, exercises ...service.ExerciseService) *Importer {
	m := make(map[models.Skill]service.ExerciseService, len(exercises))
	for _, ex := range exercises {
		m[ex.Skill()] = ex
	}
	return &Importer{exercises: m, log: log.With("component", "QuestionImporter")}
}

// ImportFile opens an .xlsx workbook and imports every sheet that names a known skill.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}

func (im *Importer) Import(ctx context.Context, f *excelize.File) (*Result, error) {
	result := &Result{Errors: make([]string, 0)}
	for _, sheet := range f.GetSheetList() {
		ex, ok := im.exercises[models.Skill(strings.ToLower(strings.TrimSpace(sheet)))]
		if !ok {
			im.log.Warn("skipping sheet", "sheet", sheet)
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return result, fmt.Errorf("failed to get rows of %s: %w", sheet, err)
		}
		for i, row := range rows {
			if i == 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if blank(row) {
				result.Skipped++
				continue
			}
			result.TotalProcessed++
			passageID, in, err := parseRow(row)
			if err == nil {
				_, err = ex.CreateQuestion(ctx, passageID, in)
			}
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: %v", sheet, i+1, err))
				continue
			}
			result.Created++
		}
	}
	im.log.Info("import finished", "processed", result.TotalProcessed, "created", result.Created, "errors", len(result.Errors))
	return result, nil
}

func parseRow(row []string) (string, service.QuestionInput, error) {
	passageID := cell(row, colPassage)
	if passageID == "" {
		return "", service.QuestionInput{}, fmt.Errorf("passage id is required")
	}
	in := service.QuestionInput{Text: cell(row, colText)}
	if exp := cell(row, colExplanation); exp != "" {
		in.Explanation = &exp
	}
	if raw := cell(row, colPoints); raw != "" {
		points, err := strconv.Atoi(raw)
		if err != nil {
			return "", in, fmt.Errorf("points %q is not a number", raw)
		}
		in.Points = &points
	}

	correct := make(map[string]bool)
	for _, l := range strings.FieldsFunc(strings.ToUpper(cell(row, colCorrect)), func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	}) {
		correct[l] = true
	}

	for i := 0; i < maxAnswerCols; i++ {
		text := cell(row, colFirstAnswer+i)
		if text == "" {
			continue
		}
		label := string(rune('A' + i))
		in.Answers = append(in.Answers, service.AnswerInput{Label: label, Text: text, IsCorrect: correct[label]})
	}
	return passageID, in, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
