package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"toeic-web/internal/apierr"
	"toeic-web/internal/ids"
	"toeic-web/internal/logger"
	"toeic-web/internal/models"
	"toeic-web/internal/store"
)

const (
	ContentReading   = "reading"
	ContentListening = "listening"
	ContentWriting   = "writing"
)

type ReadingInput struct {
	Title      string  `json:"title"`
	Difficulty *string `json:"difficulty"`
	FilePath   *string `json:"filePath"`
	Body       *string `json:"body"`
}

type ListeningInput struct {
	Title      string  `json:"title"`
	Difficulty *string `json:"difficulty"`
	AudioPath  *string `json:"audioPath"`
	Transcript *string `json:"transcript"`
}

type WritingInput struct {
	Title    string  `json:"title"`
	Prompt   string  `json:"prompt"`
	Sample   *string `json:"sample"`
	MinWords *int    `json:"minWords"`
	MaxWords *int    `json:"maxWords"`
}

// ContentInput carries at most one child for a lesson, selected by Type.
type ContentInput struct {
	Type      string          `json:"type"`
	Reading   *ReadingInput   `json:"reading"`
	Listening *ListeningInput `json:"listening"`
	Writing   *WritingInput   `json:"writing"`
}

type CreateLessonInput struct {
	PathID          string        `json:"pathId"`
	Name            string        `json:"name"`
	Description     *string       `json:"description"`
	DurationMinutes *int          `json:"durationMinutes"`
	DisplayOrder    *int          `json:"displayOrder"`
	Content         *ContentInput `json:"content"`
}

// UpdateLessonInput is a partial update; nil fields are left alone.
type UpdateLessonInput struct {
	PathID          *string       `json:"pathId"`
	Name            *string       `json:"name"`
	Description     *string       `json:"description"`
	DurationMinutes *int          `json:"durationMinutes"`
	DisplayOrder    *int          `json:"displayOrder"`
	Content         *ContentInput `json:"content"`
}

type VideoInput struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	DurationSeconds *int   `json:"durationSeconds"`
}

type ReadingView struct {
	ID            string    `json:"id"`
	LessonID      string    `json:"lessonId"`
	Title         string    `json:"title"`
	Difficulty    *string   `json:"difficulty"`
	FilePath      *string   `json:"filePath"`
	CreatedAt     time.Time `json:"createdAt"`
	QuestionCount int       `json:"questionCount"`
	Completed     bool      `json:"completed"`
}

type ListeningView struct {
	ID            string    `json:"id"`
	LessonID      string    `json:"lessonId"`
	Title         string    `json:"title"`
	Difficulty    *string   `json:"difficulty"`
	AudioPath     *string   `json:"audioPath"`
	Transcript    *string   `json:"transcript"`
	CreatedAt     time.Time `json:"createdAt"`
	QuestionCount int       `json:"questionCount"`
	Completed     bool      `json:"completed"`
}

type WritingView struct {
	ID        string    `json:"id"`
	LessonID  string    `json:"lessonId"`
	Title     string    `json:"title"`
	Prompt    string    `json:"prompt"`
	Sample    *string   `json:"sample"`
	MinWords  *int      `json:"minWords"`
	MaxWords  *int      `json:"maxWords"`
	CreatedAt time.Time `json:"createdAt"`
	Completed bool      `json:"completed"`
}

// LessonView is a lesson with its children and the caller's completion state.
type LessonView struct {
	models.Lesson
	PathName         string           `json:"pathName,omitempty"`
	Level            string           `json:"level,omitempty"`
	Videos           []*models.Video  `json:"videos"`
	Reading          []*ReadingView   `json:"reading"`
	Listening        []*ListeningView `json:"listening"`
	Writing          []*WritingView   `json:"writing"`
	TotalContent     int              `json:"totalContent"`
	CompletedContent int              `json:"completedContent"`
	Completed        bool             `json:"completed"`
}

type PathLessons struct {
	Path    *models.LearningPath
	Lessons []*LessonView
}

type LessonService interface {
	List(ctx context.Context) ([]*models.Lesson, error)
	Detail(ctx context.Context, lessonID string) (*LessonView, error)
	ByPath(ctx context.Context, pathID, userID string) (*PathLessons, error)
	Status(ctx context.Context, lessonID, userID string) (*LessonView, error)
	AllStatus(ctx context.Context, userID string) ([]*LessonView, error)
	Create(ctx context.Context, in CreateLessonInput) (*LessonView, error)
	Update(ctx context.Context, lessonID string, in UpdateLessonInput) (*LessonView, error)
	Delete(ctx context.Context, lessonID string) error
	AddVideo(ctx context.Context, lessonID string, in VideoInput) (*models.Video, error)
	SaveProgress(ctx context.Context, userID, lessonID string, completed bool) (*models.LessonProgress, error)
	Paths(ctx context.Context) ([]*models.LearningPath, error)
}

type lessonService struct {
	store *store.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewLessonService(st *store.Store, log *logger.Logger) LessonService {
	return &lessonService{store: st, log: log.With("service", "LessonService"), now: utcNow}
}

func (s *lessonService) List(ctx context.Context) ([]*models.Lesson, error) {
	lessons, err := s.store.Lessons.List(ctx, nil)
	if err != nil {
		return nil, apierr.Internal("failed to list lessons", err)
	}
	return lessons, nil
}

func (s *lessonService) Paths(ctx context.Context) ([]*models.LearningPath, error) {
	paths, err := s.store.Paths.List(ctx, nil)
	if err != nil {
		return nil, apierr.Internal("failed to list learning paths", err)
	}
	return paths, nil
}

func (s *lessonService) Detail(ctx context.Context, lessonID string) (*LessonView, error) {
	return s.Status(ctx, lessonID, "")
}

func (s *lessonService) Status(ctx context.Context, lessonID, userID string) (*LessonView, error) {
	lesson, err := s.store.Lessons.GetByID(ctx, nil, lessonID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apierr.NotFound("lesson %s not found", lessonID)
		}
		return nil, apierr.Internal("failed to load lesson", err)
	}
	views, err := s.buildViews(ctx, nil, []*models.Lesson{lesson}, userID)
	if err != nil {
		return nil, apierr.Internal("failed to load lesson content", err)
	}
	v := views[0]
	if path, err := s.store.Paths.GetByID(ctx, nil, lesson.PathID); err == nil {
		v.PathName, v.Level = path.Name, path.Level
	}
	return v, nil
}

func (s *lessonService) AllStatus(ctx context.Context, userID string) ([]*LessonView, error) {
	lessons, err := s.store.Lessons.List(ctx, nil)
	if err != nil {
		return nil, apierr.Internal("failed to list lessons", err)
	}
	views, err := s.buildViews(ctx, nil, lessons, userID)
	if err != nil {
		return nil, apierr.Internal("failed to load lesson content", err)
	}
	return views, nil
}

func (s *lessonService) ByPath(ctx context.Context, pathID, userID string) (*PathLessons, error) {
	path, err := s.store.Paths.GetByID(ctx, nil, pathID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apierr.NotFound("learning path %s not found", pathID)
		}
		return nil, apierr.Internal("failed to load learning path", err)
	}
	lessons, err := s.store.Lessons.ListByPath(ctx, nil, pathID)
	if err != nil {
		return nil, apierr.Internal("failed to list lessons", err)
	}
	views, err := s.buildViews(ctx, nil, lessons, userID)
	if err != nil {
		return nil, apierr.Internal("failed to load lesson content", err)
	}
	return &PathLessons{Path: path, Lessons: views}, nil
}

// buildViews loads the children of all lessons in a fixed number of queries.
// An empty userID leaves every completion flag false.
func (s *lessonService) buildViews(ctx context.Context, tx *gorm.DB, lessons []*models.Lesson, userID string) ([]*LessonView, error) {
	lessonIDs := make([]string, 0, len(lessons))
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}

	readings, err := s.store.Content.ReadingByLessons(ctx, tx, lessonIDs)
	if err != nil {
		return nil, err
	}
	listenings, err := s.store.Content.ListeningByLessons(ctx, tx, lessonIDs)
	if err != nil {
		return nil, err
	}
	writings, err := s.store.Content.WritingByLessons(ctx, tx, lessonIDs)
	if err != nil {
		return nil, err
	}
	videos, err := s.store.Content.VideosByLessons(ctx, tx, lessonIDs)
	if err != nil {
		return nil, err
	}

	readingIDs := make([]string, 0, len(readings))
	for _, p := range readings {
		readingIDs = append(readingIDs, p.ID)
	}
	listeningIDs := make([]string, 0, len(listenings))
	for _, p := range listenings {
		listeningIDs = append(listeningIDs, p.ID)
	}
	promptIDs := make([]string, 0, len(writings))
	for _, p := range writings {
		promptIDs = append(promptIDs, p.ID)
	}

	readingCounts, err := s.store.Questions.CountByPassages(ctx, tx, models.SkillReading, readingIDs)
	if err != nil {
		return nil, err
	}
	listeningCounts, err := s.store.Questions.CountByPassages(ctx, tx, models.SkillListening, listeningIDs)
	if err != nil {
		return nil, err
	}
	readingDone, err := s.store.Results.AttemptedPassageIDs(ctx, tx, models.SkillReading, userID, readingIDs)
	if err != nil {
		return nil, err
	}
	listeningDone, err := s.store.Results.AttemptedPassageIDs(ctx, tx, models.SkillListening, userID, listeningIDs)
	if err != nil {
		return nil, err
	}
	writingDone, err := s.store.Writing.SubmittedPromptIDs(ctx, tx, userID, promptIDs)
	if err != nil {
		return nil, err
	}

	byLesson := make(map[string]*LessonView, len(lessons))
	out := make([]*LessonView, 0, len(lessons))
	for _, l := range lessons {
		v := &LessonView{
			Lesson:    *l,
			Videos:    []*models.Video{},
			Reading:   []*ReadingView{},
			Listening: []*ListeningView{},
			Writing:   []*WritingView{},
		}
		byLesson[l.ID] = v
		out = append(out, v)
	}
	for _, vid := range videos {
		if v := byLesson[vid.LessonID]; v != nil {
			v.Videos = append(v.Videos, vid)
		}
	}
	for _, p := range readings {
		if v := byLesson[p.LessonID]; v != nil {
			v.Reading = append(v.Reading, &ReadingView{
				ID: p.ID, LessonID: p.LessonID, Title: p.Title, Difficulty: p.Difficulty,
				FilePath: p.FilePath, CreatedAt: p.CreatedAt,
				QuestionCount: readingCounts[p.ID], Completed: readingDone[p.ID],
			})
		}
	}
	for _, p := range listenings {
		if v := byLesson[p.LessonID]; v != nil {
			v.Listening = append(v.Listening, &ListeningView{
				ID: p.ID, LessonID: p.LessonID, Title: p.Title, Difficulty: p.Difficulty,
				AudioPath: p.AudioPath, Transcript: p.Transcript, CreatedAt: p.CreatedAt,
				QuestionCount: listeningCounts[p.ID], Completed: listeningDone[p.ID],
			})
		}
	}
	for _, p := range writings {
		if v := byLesson[p.LessonID]; v != nil {
			v.Writing = append(v.Writing, &WritingView{
				ID: p.ID, LessonID: p.LessonID, Title: p.Title, Prompt: p.Prompt, Sample: p.Sample,
				MinWords: p.MinWords, MaxWords: p.MaxWords, CreatedAt: p.CreatedAt,
				Completed: writingDone[p.ID],
			})
		}
	}

	for _, v := range out {
		v.TotalContent = len(v.Reading) + len(v.Listening) + len(v.Writing)
		for _, r := range v.Reading {
			if r.Completed {
				v.CompletedContent++
			}
		}
		for _, l := range v.Listening {
			if l.Completed {
				v.CompletedContent++
			}
		}
		for _, w := range v.Writing {
			if w.Completed {
				v.CompletedContent++
			}
		}
		v.Completed = v.TotalContent > 0 && v.CompletedContent == v.TotalContent
	}
	return out, nil
}

func validateLessonFields(duration, order *int) error {
	if duration != nil && (*duration < 1 || *duration > 600) {
		return apierr.Validation("durationMinutes must be between 1 and 600")
	}
	if order != nil && (*order < 1 || *order > 1000) {
		return apierr.Validation("displayOrder must be between 1 and 1000")
	}
	return nil
}

// normalizeContent rejects content types other than reading, listening and writing.
func normalizeContent(in *ContentInput) (*ContentInput, error) {
	if in == nil {
		return nil, nil
	}
	c := *in
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	switch c.Type {
	case ContentReading, ContentListening, ContentWriting:
		return &c, nil
	default:
		return nil, apierr.Validation("content type must be one of reading, listening, writing")
	}
}

func (s *lessonService) Create(ctx context.Context, in CreateLessonInput) (*LessonView, error) {
	in.PathID = strings.TrimSpace(in.PathID)
	in.Name = strings.TrimSpace(in.Name)
	if in.PathID == "" {
		return nil, apierr.Validation("pathId is required")
	}
	if in.Name == "" {
		return nil, apierr.Validation("name is required")
	}
	if err := validateLessonFields(in.DurationMinutes, in.DisplayOrder); err != nil {
		return nil, err
	}
	content, err := normalizeContent(in.Content)
	if err != nil {
		return nil, err
	}

	var lessonID string
	err = retryOnDuplicate(ctx, s.log, "create lesson", func() error {
		return s.store.Tx(ctx, func(tx *gorm.DB) error {
			if _, err := s.store.Paths.GetByID(ctx, tx, in.PathID); err != nil {
				if store.IsNotFound(err) {
					return apierr.NotFound("learning path %s not found", in.PathID)
				}
				return err
			}
			last, err := s.store.Lessons.LastID(ctx, tx, ids.PrefixLesson)
			if err != nil {
				return err
			}
			order := 0
			if in.DisplayOrder != nil {
				order = *in.DisplayOrder
			} else {
				maxOrder, err := s.store.Lessons.MaxOrder(ctx, tx, in.PathID)
				if err != nil {
					return err
				}
				order = maxOrder + 1
			}
			lesson := &models.Lesson{
				ID:              ids.Next(last, ids.PrefixLesson),
				PathID:          in.PathID,
				Name:            in.Name,
				Description:     in.Description,
				DurationMinutes: in.DurationMinutes,
				DisplayOrder:    order,
				CreatedAt:       s.now(),
			}
			if err := s.store.Lessons.Create(ctx, tx, lesson); err != nil {
				return err
			}
			if err := s.upsertContent(ctx, tx, lesson, content); err != nil {
				return err
			}
			lessonID = lesson.ID
			return nil
		})
	})
	if err != nil {
		return nil, outcome("failed to create lesson", err)
	}
	s.log.Info("lesson created", "lesson_id", lessonID, "path_id", in.PathID)
	return s.Detail(ctx, lessonID)
}

func (s *lessonService) Update(ctx context.Context, lessonID string, in UpdateLessonInput) (*LessonView, error) {
	if err := validateLessonFields(in.DurationMinutes, in.DisplayOrder); err != nil {
		return nil, err
	}
	content, err := normalizeContent(in.Content)
	if err != nil {
		return nil, err
	}

	err = retryOnDuplicate(ctx, s.log, "update lesson", func() error {
		return s.store.Tx(ctx, func(tx *gorm.DB) error {
			lesson, err := s.store.Lessons.GetByID(ctx, tx, lessonID)
			if err != nil {
				if store.IsNotFound(err) {
					return apierr.NotFound("lesson %s not found", lessonID)
				}
				return err
			}
			if name := trimmed(in.Name); name != "" {
				lesson.Name = name
			}
			if in.Description != nil {
				lesson.Description = in.Description
			}
			if in.DurationMinutes != nil {
				lesson.DurationMinutes = in.DurationMinutes
			}
			if in.DisplayOrder != nil {
				lesson.DisplayOrder = *in.DisplayOrder
			}
			if pathID := trimmed(in.PathID); pathID != "" {
				if _, err := s.store.Paths.GetByID(ctx, tx, pathID); err != nil {
					if store.IsNotFound(err) {
						return apierr.NotFound("learning path %s not found", pathID)
					}
					return err
				}
				lesson.PathID = pathID
			}
			if err := s.store.Lessons.Save(ctx, tx, lesson); err != nil {
				return err
			}
			return s.upsertContent(ctx, tx, lesson, content)
		})
	})
	if err != nil {
		return nil, outcome("failed to update lesson", err)
	}
	return s.Detail(ctx, lessonID)
}

// upsertContent creates or updates the lesson's single child of the given type,
// looked up by lesson id.
func (s *lessonService) upsertContent(ctx context.Context, tx *gorm.DB, lesson *models.Lesson, content *ContentInput) error {
	if content == nil {
		return nil
	}
	switch content.Type {
	case ContentReading:
		payload := content.Reading
		if payload == nil {
			payload = &ReadingInput{Title: lesson.Name}
		}
		existing, err := s.store.Content.ReadingByLesson(ctx, tx, lesson.ID)
		if err != nil {
			return err
		}
		create := existing == nil
		if create {
			last, err := s.store.Content.LastID(ctx, tx, store.TableReading, ids.PrefixReading)
			if err != nil {
				return err
			}
			existing = &models.ReadingPassage{ID: ids.Next(last, ids.PrefixReading), LessonID: lesson.ID, CreatedAt: s.now()}
		}
		existing.Title = fallback(payload.Title, lesson.Name)
		existing.Difficulty = optional(payload.Difficulty)
		existing.FilePath = optional(payload.FilePath)
		existing.Body = payload.Body
		if create {
			return s.store.Content.CreateReading(ctx, tx, existing)
		}
		return s.store.Content.SaveReading(ctx, tx, existing)

	case ContentListening:
		payload := content.Listening
		if payload == nil {
			payload = &ListeningInput{Title: lesson.Name}
		}
		existing, err := s.store.Content.ListeningByLesson(ctx, tx, lesson.ID)
		if err != nil {
			return err
		}
		create := existing == nil
		if create {
			last, err := s.store.Content.LastID(ctx, tx, store.TableListening, ids.PrefixListening)
			if err != nil {
				return err
			}
			existing = &models.ListeningPassage{ID: ids.Next(last, ids.PrefixListening), LessonID: lesson.ID, CreatedAt: s.now()}
		}
		existing.Title = fallback(payload.Title, lesson.Name)
		existing.Difficulty = optional(payload.Difficulty)
		existing.AudioPath = optional(payload.AudioPath)
		existing.Transcript = payload.Transcript
		if create {
			return s.store.Content.CreateListening(ctx, tx, existing)
		}
		return s.store.Content.SaveListening(ctx, tx, existing)

	case ContentWriting:
		payload := content.Writing
		if payload == nil {
			payload = &WritingInput{Title: lesson.Name}
		}
		existing, err := s.store.Content.WritingByLesson(ctx, tx, lesson.ID)
		if err != nil {
			return err
		}
		create := existing == nil
		if create {
			last, err := s.store.Content.LastID(ctx, tx, store.TableWriting, ids.PrefixWriting)
			if err != nil {
				return err
			}
			existing = &models.WritingPrompt{ID: ids.Next(last, ids.PrefixWriting), LessonID: lesson.ID, CreatedAt: s.now()}
		}
		if payload.MinWords != nil && payload.MaxWords != nil && *payload.MinWords > *payload.MaxWords {
			return apierr.Validation("minWords must not exceed maxWords")
		}
		existing.Title = fallback(payload.Title, lesson.Name)
		existing.Prompt = fallback(payload.Prompt, trimmed(lesson.Description), existing.Prompt, lesson.Name)
		existing.Sample = payload.Sample
		existing.MinWords = payload.MinWords
		existing.MaxWords = payload.MaxWords
		if create {
			return s.store.Content.CreateWriting(ctx, tx, existing)
		}
		return s.store.Content.SaveWriting(ctx, tx, existing)
	}
	return nil
}

// fallback returns the first non-blank value.
func fallback(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Delete removes the lesson and everything under it in one transaction,
// children before parents.
func (s *lessonService) Delete(ctx context.Context, lessonID string) error {
	err := s.store.Tx(ctx, func(tx *gorm.DB) error {
		if _, err := s.store.Lessons.GetByID(ctx, tx, lessonID); err != nil {
			if store.IsNotFound(err) {
				return apierr.NotFound("lesson %s not found", lessonID)
			}
			return err
		}

		for _, skill := range []models.Skill{models.SkillReading, models.SkillListening} {
			passageIDs, err := s.store.Passages.IDsByLesson(ctx, tx, skill, lessonID)
			if err != nil {
				return err
			}
			questionIDs, err := s.store.Questions.IDsByPassages(ctx, tx, skill, passageIDs)
			if err != nil {
				return err
			}
			if err := s.store.Results.DeleteResponsesByQuestions(ctx, tx, questionIDs); err != nil {
				return err
			}
			if err := s.store.Questions.DeleteAnswersByQuestions(ctx, tx, questionIDs); err != nil {
				return err
			}
			if err := s.store.Questions.DeleteByIDs(ctx, tx, questionIDs); err != nil {
				return err
			}
			if err := s.store.Results.DeleteByPassages(ctx, tx, skill, passageIDs); err != nil {
				return err
			}
			if skill == models.SkillReading {
				err = s.store.Content.DeleteReadingByIDs(ctx, tx, passageIDs)
			} else {
				err = s.store.Content.DeleteListeningByIDs(ctx, tx, passageIDs)
			}
			if err != nil {
				return err
			}
		}

		prompts, err := s.store.Content.WritingByLessons(ctx, tx, []string{lessonID})
		if err != nil {
			return err
		}
		promptIDs := make([]string, 0, len(prompts))
		for _, p := range prompts {
			promptIDs = append(promptIDs, p.ID)
		}
		if err := s.store.Writing.DeleteByPrompts(ctx, tx, promptIDs); err != nil {
			return err
		}
		if err := s.store.Content.DeleteWritingByIDs(ctx, tx, promptIDs); err != nil {
			return err
		}

		if err := s.store.Content.DeleteVideosByLesson(ctx, tx, lessonID); err != nil {
			return err
		}
		if err := s.store.Content.DeleteProgressByLesson(ctx, tx, lessonID); err != nil {
			return err
		}
		return s.store.Lessons.Delete(ctx, tx, lessonID)
	})
	if err != nil {
		return outcome("failed to delete lesson", err)
	}
	s.log.Info("lesson deleted", "lesson_id", lessonID)
	return nil
}

func (s *lessonService) AddVideo(ctx context.Context, lessonID string, in VideoInput) (*models.Video, error) {
	title := strings.TrimSpace(in.Title)
	url := strings.TrimSpace(in.URL)
	if title == "" || url == "" {
		return nil, apierr.Validation("title and url are required")
	}
	if in.DurationSeconds != nil && *in.DurationSeconds < 0 {
		return nil, apierr.Validation("durationSeconds must not be negative")
	}

	var video *models.Video
	err := retryOnDuplicate(ctx, s.log, "add video", func() error {
		return s.store.Tx(ctx, func(tx *gorm.DB) error {
			if _, err := s.store.Lessons.GetByID(ctx, tx, lessonID); err != nil {
				if store.IsNotFound(err) {
					return apierr.NotFound("lesson %s not found", lessonID)
				}
				return err
			}
			last, err := s.store.Content.LastID(ctx, tx, store.TableVideos, ids.PrefixVideo)
			if err != nil {
				return err
			}
			video = &models.Video{
				ID:              ids.Next(last, ids.PrefixVideo),
				LessonID:        lessonID,
				Title:           title,
				URL:             url,
				DurationSeconds: in.DurationSeconds,
				CreatedAt:       s.now(),
			}
			return s.store.Content.CreateVideo(ctx, tx, video)
		})
	})
	if err != nil {
		return nil, outcome("failed to add video", err)
	}
	return video, nil
}

func (s *lessonService) SaveProgress(ctx context.Context, userID, lessonID string, completed bool) (*models.LessonProgress, error) {
	if _, err := s.store.Lessons.GetByID(ctx, nil, lessonID); err != nil {
		if store.IsNotFound(err) {
			return nil, apierr.NotFound("lesson %s not found", lessonID)
		}
		return nil, apierr.Internal("failed to load lesson", err)
	}
	status := models.ProgressLearning
	if completed {
		status = models.ProgressCompleted
	}
	p := &models.LessonProgress{UserID: userID, LessonID: lessonID, Status: status, UpdatedAt: s.now()}
	if err := s.store.Content.UpsertProgress(ctx, nil, p); err != nil {
		return nil, apierr.Internal("failed to save progress", err)
	}
	return p, nil
}
