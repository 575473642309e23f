package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"toeic-web/internal/apierr"
	"toeic-web/internal/ids"
	"toeic-web/internal/logger"
	"toeic-web/internal/models"
	"toeic-web/internal/store"
)

const (
	minAnswers = 2
	maxAnswers = 6
	minPoints  = 1
	maxPoints  = 100

	// HistoryTimeLayout renders submission times as dd/MM/yyyy HH:mm.
	HistoryTimeLayout = "02/01/2006 15:04"
)

type exerciseKind struct {
	skill          models.Skill
	questionPrefix string
	noun           string
}

var (
	readingKind   = exerciseKind{skill: models.SkillReading, questionPrefix: ids.PrefixReadingQuestion, noun: "reading passage"}
	listeningKind = exerciseKind{skill: models.SkillListening, questionPrefix: ids.PrefixListeningQuestion, noun: "listening passage"}
)

type AnswerInput struct {
	Label        string `json:"label"`
	Text         string `json:"text"`
	DisplayOrder *int   `json:"displayOrder"`
	IsCorrect    bool   `json:"isCorrect"`
}

type QuestionInput struct {
	Text         string        `json:"text"`
	Explanation  *string       `json:"explanation"`
	Points       *int          `json:"points"`
	DisplayOrder *int          `json:"displayOrder"`
	Answers      []AnswerInput `json:"answers"`
}

type QuestionView struct {
	models.Question
	Answers []*models.Answer `json:"answers"`
}

type PassageSummary struct {
	*store.PassageRecord
	QuestionCount int `json:"questionCount"`
}

type PassageDetail struct {
	*store.PassageRecord
	TotalQuestions int             `json:"totalQuestions"`
	Questions      []*QuestionView `json:"questions"`
}

type PathPassages struct {
	Path     *models.LearningPath
	Passages []*PassageSummary
}

type AnswerChoice struct {
	QuestionID string `json:"questionId"`
	AnswerID   string `json:"answerId"`
}

type SubmitInput struct {
	Answers          []AnswerChoice `json:"answers"`
	TimeSpentSeconds int            `json:"timeSpentSeconds"`
}

type SubmitResult struct {
	PassageID        string            `json:"passageId"`
	Score            int               `json:"score"`
	MaxScore         int               `json:"maxScore"`
	Percentage       float64           `json:"percentage"`
	TimeSpentSeconds int               `json:"timeSpentSeconds"`
	Attempt          int               `json:"attempt"`
	TotalQuestions   int               `json:"totalQuestions"`
	CorrectCount     int               `json:"correctCount"`
	Details          []QuestionOutcome `json:"details"`
}

type HistoryEntry struct {
	PassageID            string    `json:"passageId"`
	Title                string    `json:"title"`
	Difficulty           *string   `json:"difficulty"`
	Score                int       `json:"score"`
	MaxScore             int       `json:"maxScore"`
	Percentage           float64   `json:"percentage"`
	TimeSpentSeconds     int       `json:"timeSpentSeconds"`
	TimeSpentMinutes     int       `json:"timeSpentMinutes"`
	Attempt              int       `json:"attempt"`
	SubmittedAt          time.Time `json:"submittedAt"`
	SubmittedAtFormatted string    `json:"submittedAtFormatted"`
}

type History struct {
	// Passage is set when the history is scoped to one passage.
	Passage *store.PassageRecord
	Entries []*HistoryEntry
}

type Summary struct {
	Attempts          int             `json:"attempts"`
	AveragePercentage float64         `json:"averagePercentage"`
	TotalSeconds      int             `json:"totalSeconds"`
	TotalMinutes      int             `json:"totalMinutes"`
	Entries           []*HistoryEntry `json:"data"`
}

// ExerciseService serves one scored skill: reading or listening.
type ExerciseService interface {
	Skill() models.Skill
	List(ctx context.Context) ([]*PassageSummary, error)
	Detail(ctx context.Context, passageID string) (*PassageDetail, error)
	ByPath(ctx context.Context, pathID string) (*PathPassages, error)
	CreateQuestion(ctx context.Context, passageID string, in QuestionInput) (*QuestionView, error)
	DeleteQuestion(ctx context.Context, passageID, questionID string) error
	Submit(ctx context.Context, userID, passageID string, in SubmitInput) (*SubmitResult, error)
	History(ctx context.Context, userID string) (*History, error)
	PassageHistory(ctx context.Context, userID, passageID string) (*History, error)
	Summary(ctx context.Context, userID string) (*Summary, error)
}

type exerciseService struct {
	store *store.Store
	kind  exerciseKind
	log   *logger.Logger
	now   func() time.Time
}

func newExerciseService(st *store.Store, kind exerciseKind, log *logger.Logger) ExerciseService {
	return &exerciseService{
		store: st,
		kind:  kind,
		log:   log.With("service", "ExerciseService", "skill", string(kind.skill)),
		now:   utcNow,
	}
}

// NewReadingService and NewListeningService bind an exercise service to a skill.
func NewReadingService(st *store.Store, log *logger.Logger) ExerciseService {
	return newExerciseService(st, readingKind, log)
}

func NewListeningService(st *store.Store, log *logger.Logger) ExerciseService {
	return newExerciseService(st, listeningKind, log)
}

func (s *exerciseService) Skill() models.Skill { return s.kind.skill }

func (s *exerciseService) passage(ctx context.Context, tx *gorm.DB, passageID string) (*store.PassageRecord, error) {
	p, err := s.store.Passages.Get(ctx, tx, s.kind.skill, passageID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apierr.NotFound("%s %s not found", s.kind.noun, passageID)
		}
		return nil, apierr.Internal("failed to load "+s.kind.noun, err)
	}
	return p, nil
}

func (s *exerciseService) summarize(ctx context.Context, passages []*store.PassageRecord) ([]*PassageSummary, error) {
	passageIDs := make([]string, 0, len(passages))
	for _, p := range passages {
		passageIDs = append(passageIDs, p.ID)
	}
	counts, err := s.store.Questions.CountByPassages(ctx, nil, s.kind.skill, passageIDs)
	if err != nil {
		return nil, err
	}
	out := make([]*PassageSummary, 0, len(passages))
	for _, p := range passages {
		out = append(out, &PassageSummary{PassageRecord: p, QuestionCount: counts[p.ID]})
	}
	return out, nil
}

func (s *exerciseService) List(ctx context.Context) ([]*PassageSummary, error) {
	passages, err := s.store.Passages.List(ctx, nil, s.kind.skill)
	if err != nil {
		return nil, apierr.Internal("failed to list passages", err)
	}
	out, err := s.summarize(ctx, passages)
	if err != nil {
		return nil, apierr.Internal("failed to count questions", err)
	}
	return out, nil
}

func (s *exerciseService) ByPath(ctx context.Context, pathID string) (*PathPassages, error) {
	path, err := s.store.Paths.GetByID(ctx, nil, pathID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apierr.NotFound("learning path %s not found", pathID)
		}
		return nil, apierr.Internal("failed to load learning path", err)
	}
	passages, err := s.store.Passages.ListByPath(ctx, nil, s.kind.skill, pathID)
	if err != nil {
		return nil, apierr.Internal("failed to list passages", err)
	}
	out, err := s.summarize(ctx, passages)
	if err != nil {
		return nil, apierr.Internal("failed to count questions", err)
	}
	return &PathPassages{Path: path, Passages: out}, nil
}

// questionsWithAnswers loads a passage's questions in display order, answers attached.
func (s *exerciseService) questionsWithAnswers(ctx context.Context, tx *gorm.DB, passageID string) ([]*QuestionView, error) {
	questions, err := s.store.Questions.ListByPassage(ctx, tx, s.kind.skill, passageID)
	if err != nil {
		return nil, err
	}
	questionIDs := make([]string, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}
	answers, err := s.store.Questions.AnswersByQuestions(ctx, tx, questionIDs)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string][]*models.Answer, len(questions))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}
	out := make([]*QuestionView, 0, len(questions))
	for _, q := range questions {
		as := byQuestion[q.ID]
		if as == nil {
			as = []*models.Answer{}
		}
		out = append(out, &QuestionView{Question: *q, Answers: as})
	}
	return out, nil
}

func (s *exerciseService) Detail(ctx context.Context, passageID string) (*PassageDetail, error) {
	p, err := s.passage(ctx, nil, passageID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionsWithAnswers(ctx, nil, passageID)
	if err != nil {
		return nil, apierr.Internal("failed to load questions", err)
	}
	return &PassageDetail{PassageRecord: p, TotalQuestions: len(questions), Questions: questions}, nil
}

func normalizeLabel(raw string, index int) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return string(rune('A' + index)), nil
	}
	r := unicode.ToUpper([]rune(raw)[0])
	if r < 'A' || r > 'Z' {
		return "", apierr.Validation("answer label %q must be a letter", raw)
	}
	return string(r), nil
}

func (s *exerciseService) CreateQuestion(ctx context.Context, passageID string, in QuestionInput) (*QuestionView, error) {
	if _, err := s.passage(ctx, nil, passageID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apierr.Validation("question text is required")
	}
	points := 1
	if in.Points != nil {
		points = *in.Points
	}
	if points < minPoints || points > maxPoints {
		return nil, apierr.Validation("points must be between %d and %d", minPoints, maxPoints)
	}

	kept := make([]AnswerInput, 0, len(in.Answers))
	for _, a := range in.Answers {
		if strings.TrimSpace(a.Text) != "" {
			kept = append(kept, a)
		}
	}
	if len(kept) < minAnswers {
		return nil, apierr.Validation("at least %d non-blank answers are required", minAnswers)
	}
	if len(kept) > maxAnswers {
		return nil, apierr.Validation("at most %d answers are allowed", maxAnswers)
	}
	hasCorrect := false
	for _, a := range kept {
		hasCorrect = hasCorrect || a.IsCorrect
	}
	if !hasCorrect {
		return nil, apierr.Validation("at least one answer must be marked correct")
	}
	labels := make([]string, len(kept))
	for i, a := range kept {
		label, err := normalizeLabel(a.Label, i)
		if err != nil {
			return nil, err
		}
		labels[i] = label
	}

	var questionID string
	err := retryOnDuplicate(ctx, s.log, "create question", func() error {
		return s.store.Tx(ctx, func(tx *gorm.DB) error {
			order := 0
			if in.DisplayOrder != nil {
				order = *in.DisplayOrder
			} else {
				maxOrder, err := s.store.Questions.MaxOrder(ctx, tx, s.kind.skill, passageID)
				if err != nil {
					return err
				}
				order = maxOrder + 1
			}
			q := &models.Question{
				ID:           ids.Random(s.kind.questionPrefix),
				Skill:        s.kind.skill,
				PassageID:    passageID,
				Text:         text,
				Explanation:  optional(in.Explanation),
				Points:       points,
				DisplayOrder: order,
			}
			answers := make([]*models.Answer, 0, len(kept))
			for i, a := range kept {
				answerOrder := i + 1
				if a.DisplayOrder != nil {
					answerOrder = *a.DisplayOrder
				}
				answers = append(answers, &models.Answer{
					ID:           ids.Random(ids.PrefixAnswer),
					QuestionID:   q.ID,
					Label:        labels[i],
					Text:         strings.TrimSpace(a.Text),
					DisplayOrder: answerOrder,
					IsCorrect:    a.IsCorrect,
				})
			}
			if err := s.store.Questions.Create(ctx, tx, q, answers); err != nil {
				return err
			}
			questionID = q.ID
			return nil
		})
	})
	if err != nil {
		return nil, outcome("failed to create question", err)
	}

	q, err := s.store.Questions.Get(ctx, nil, s.kind.skill, passageID, questionID)
	if err != nil {
		return nil, apierr.Internal("failed to reload question", err)
	}
	answers, err := s.store.Questions.AnswersByQuestions(ctx, nil, []string{questionID})
	if err != nil {
		return nil, apierr.Internal("failed to reload answers", err)
	}
	s.log.Info("question created", "passage_id", passageID, "question_id", questionID)
	return &QuestionView{Question: *q, Answers: answers}, nil
}

func (s *exerciseService) DeleteQuestion(ctx context.Context, passageID, questionID string) error {
	err := s.store.Tx(ctx, func(tx *gorm.DB) error {
		if _, err := s.store.Questions.Get(ctx, tx, s.kind.skill, passageID, questionID); err != nil {
			if store.IsNotFound(err) {
				return apierr.NotFound("question %s not found in %s %s", questionID, s.kind.noun, passageID)
			}
			return err
		}
		qids := []string{questionID}
		if err := s.store.Results.DeleteResponsesByQuestions(ctx, tx, qids); err != nil {
			return err
		}
		if err := s.store.Questions.DeleteAnswersByQuestions(ctx, tx, qids); err != nil {
			return err
		}
		return s.store.Questions.DeleteByIDs(ctx, tx, qids)
	})
	return outcome("failed to delete question", err)
}

func (s *exerciseService) Submit(ctx context.Context, userID, passageID string, in SubmitInput) (*SubmitResult, error) {
	if len(in.Answers) == 0 {
		return nil, apierr.Validation("answers are required")
	}
	if in.TimeSpentSeconds < 0 {
		return nil, apierr.Validation("timeSpentSeconds must not be negative")
	}
	if _, err := s.passage(ctx, nil, passageID); err != nil {
		return nil, err
	}
	questions, err := s.questionsWithAnswers(ctx, nil, passageID)
	if err != nil {
		return nil, apierr.Internal("failed to load questions", err)
	}
	if len(questions) == 0 {
		return nil, apierr.Validation("%s %s has no questions", s.kind.noun, passageID)
	}

	chosen := make(map[string]string, len(in.Answers))
	for _, a := range in.Answers {
		qid := strings.TrimSpace(a.QuestionID)
		if _, seen := chosen[qid]; !seen {
			chosen[qid] = strings.TrimSpace(a.AnswerID)
		}
	}

	scored := make([]ScoredQuestion, 0, len(questions))
	known := make(map[string]map[string]bool, len(questions))
	for _, q := range questions {
		sq := ScoredQuestion{ID: q.ID, Points: q.Points}
		known[q.ID] = make(map[string]bool, len(q.Answers))
		for _, a := range q.Answers {
			known[q.ID][a.ID] = true
			if a.IsCorrect && sq.CorrectAnswerID == "" {
				sq.CorrectAnswerID = a.ID
			}
		}
		scored = append(scored, sq)
	}
	result := Score(scored, chosen)

	var attempt int
	err = retryOnDuplicate(ctx, s.log, "submit answers", func() error {
		return s.store.Tx(ctx, func(tx *gorm.DB) error {
			submittedAt := s.now()
			prior, err := s.store.Results.CountAttempts(ctx, tx, s.kind.skill, userID, passageID)
			if err != nil {
				return err
			}
			attempt = int(prior) + 1

			responses := make([]*models.Response, 0, len(result.Details))
			for _, d := range result.Details {
				r := &models.Response{
					Skill:      s.kind.skill,
					UserID:     userID,
					QuestionID: d.QuestionID,
					IsCorrect:  d.Correct,
					CreatedAt:  submittedAt,
				}
				// Only answers that belong to the question are recorded as chosen.
				if d.ChosenAnswerID != nil && known[d.QuestionID][*d.ChosenAnswerID] {
					r.ChosenAnswerID = d.ChosenAnswerID
				}
				responses = append(responses, r)
			}
			if err := s.store.Results.CreateResponses(ctx, tx, responses); err != nil {
				return err
			}
			return s.store.Results.CreateResult(ctx, tx, &models.Result{
				Skill:            s.kind.skill,
				UserID:           userID,
				PassageID:        passageID,
				Attempt:          attempt,
				Score:            result.Score,
				MaxScore:         result.MaxScore,
				Percentage:       result.Percentage,
				TimeSpentSeconds: in.TimeSpentSeconds,
				SubmittedAt:      submittedAt,
			})
		})
	})
	if err != nil {
		return nil, outcome("failed to save submission", err)
	}

	s.log.Info("submission scored",
		"user_id", userID, "passage_id", passageID, "attempt", attempt,
		"score", result.Score, "max_score", result.MaxScore)

	return &SubmitResult{
		PassageID:        passageID,
		Score:            result.Score,
		MaxScore:         result.MaxScore,
		Percentage:       result.Percentage,
		TimeSpentSeconds: in.TimeSpentSeconds,
		Attempt:          attempt,
		TotalQuestions:   len(questions),
		CorrectCount:     result.CorrectCount,
		Details:          result.Details,
	}, nil
}

func (s *exerciseService) entries(ctx context.Context, results []*models.Result) ([]*HistoryEntry, error) {
	passageIDs := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if !seen[r.PassageID] {
			seen[r.PassageID] = true
			passageIDs = append(passageIDs, r.PassageID)
		}
	}
	passages, err := s.store.Passages.ByIDs(ctx, nil, s.kind.skill, passageIDs)
	if err != nil {
		return nil, err
	}
	out := make([]*HistoryEntry, 0, len(results))
	for _, r := range results {
		e := &HistoryEntry{
			PassageID:            r.PassageID,
			Score:                r.Score,
			MaxScore:             r.MaxScore,
			Percentage:           r.Percentage,
			TimeSpentSeconds:     r.TimeSpentSeconds,
			TimeSpentMinutes:     r.TimeSpentSeconds / 60,
			Attempt:              r.Attempt,
			SubmittedAt:          r.SubmittedAt,
			SubmittedAtFormatted: r.SubmittedAt.Format(HistoryTimeLayout),
		}
		if p := passages[r.PassageID]; p != nil {
			e.Title, e.Difficulty = p.Title, p.Difficulty
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *exerciseService) History(ctx context.Context, userID string) (*History, error) {
	results, err := s.store.Results.ListByUser(ctx, nil, s.kind.skill, userID, "")
	if err != nil {
		return nil, apierr.Internal("failed to load history", err)
	}
	entries, err := s.entries(ctx, results)
	if err != nil {
		return nil, apierr.Internal("failed to load history", err)
	}
	return &History{Entries: entries}, nil
}

func (s *exerciseService) PassageHistory(ctx context.Context, userID, passageID string) (*History, error) {
	p, err := s.passage(ctx, nil, passageID)
	if err != nil {
		return nil, err
	}
	results, err := s.store.Results.ListByUser(ctx, nil, s.kind.skill, userID, passageID)
	if err != nil {
		return nil, apierr.Internal("failed to load history", err)
	}
	entries, err := s.entries(ctx, results)
	if err != nil {
		return nil, apierr.Internal("failed to load history", err)
	}
	return &History{Passage: p, Entries: entries}, nil
}

// Summary averages the per-attempt percentages, not the pooled score ratio.
func (s *exerciseService) Summary(ctx context.Context, userID string) (*Summary, error) {
	results, err := s.store.Results.ListByUser(ctx, nil, s.kind.skill, userID, "")
	if err != nil {
		return nil, apierr.Internal("failed to load history", err)
	}
	entries, err := s.entries(ctx, results)
	if err != nil {
		return nil, apierr.Internal("failed to load history", err)
	}
	out := &Summary{Attempts: len(results), Entries: entries}
	if len(results) == 0 {
		return out, nil
	}
	var sum float64
	for _, r := range results {
		if r.MaxScore > 0 {
			sum += float64(r.Score) / float64(r.MaxScore) * 100
		}
		out.TotalSeconds += r.TimeSpentSeconds
	}
	out.AveragePercentage = round2(sum / float64(len(results)))
	out.TotalMinutes = out.TotalSeconds / 60
	return out, nil
}
