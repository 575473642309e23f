package models

import "time"

// Skill distinguishes the two scored passage kinds. Questions, answers, responses
// and results of both kinds share tables and carry the skill as a column.
type Skill string

const (
	SkillReading   Skill = "reading"
	SkillListening Skill = "listening"
)

func (s Skill) Valid() bool {
	return s == SkillReading || s == SkillListening
}

const (
	RoleAdmin   = "Admin"
	RoleLearner = "Learner"
)

// User is a learner or an administrator.
type User struct {
	ID           string    `gorm:"primaryKey;size:20" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Name         string    `gorm:"size:255" json:"name"`
	Role         string    `gorm:"size:20;not null" json:"role"`
	RegisteredAt time.Time `gorm:"not null;index" json:"registeredAt"`
}

// LearningPath (lộ trình) groups lessons into a curriculum.
type LearningPath struct {
	ID         string  `gorm:"primaryKey;size:20" json:"id"`
	Name       string  `gorm:"size:255;not null" json:"name"`
	Track      string  `gorm:"size:50" json:"track"`
	Level      string  `gorm:"size:50" json:"level"`
	SkillFocus *string `gorm:"size:255" json:"skillFocus"`
	Topics     *string `gorm:"type:text" json:"topics"`
}

type Lesson struct {
	ID              string    `gorm:"primaryKey;size:20" json:"id"`
	PathID          string    `gorm:"size:20;not null;index" json:"pathId"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Description     *string   `gorm:"type:text" json:"description"`
	DurationMinutes *int      `json:"durationMinutes"`
	DisplayOrder    int       `gorm:"not null;default:1" json:"displayOrder"`
	CreatedAt       time.Time `json:"createdAt"`

	Path *LearningPath `gorm:"foreignKey:PathID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

type ReadingPassage struct {
	ID         string    `gorm:"primaryKey;size:20" json:"id"`
	LessonID   string    `gorm:"size:20;not null;uniqueIndex" json:"lessonId"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Difficulty *string   `gorm:"size:50" json:"difficulty"`
	Body       *string   `gorm:"type:text" json:"body"`
	FilePath   *string   `gorm:"size:500" json:"filePath"`
	CreatedAt  time.Time `json:"createdAt"`

	Lesson *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:RESTRICT" json:"-"`
}

type ListeningPassage struct {
	ID         string    `gorm:"primaryKey;size:20" json:"id"`
	LessonID   string    `gorm:"size:20;not null;uniqueIndex" json:"lessonId"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Difficulty *string   `gorm:"size:50" json:"difficulty"`
	AudioPath  *string   `gorm:"size:500" json:"audioPath"`
	Transcript *string   `gorm:"type:text" json:"transcript"`
	CreatedAt  time.Time `json:"createdAt"`

	Lesson *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:RESTRICT" json:"-"`
}

type WritingPrompt struct {
	ID        string    `gorm:"primaryKey;size:20" json:"id"`
	LessonID  string    `gorm:"size:20;not null;uniqueIndex" json:"lessonId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	Sample    *string   `gorm:"type:text" json:"sample"`
	MinWords  *int      `json:"minWords"`
	MaxWords  *int      `json:"maxWords"`
	CreatedAt time.Time `json:"createdAt"`

	Lesson *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:RESTRICT" json:"-"`
}

type Video struct {
	ID              string    `gorm:"primaryKey;size:20" json:"id"`
	LessonID        string    `gorm:"size:20;not null;index" json:"lessonId"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	URL             string    `gorm:"size:500;not null" json:"url"`
	DurationSeconds *int      `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`

	Lesson *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:RESTRICT" json:"-"`
}

const (
	ProgressLearning  = "learning"
	ProgressCompleted = "completed"
)

// LessonProgress tracks where a learner is in a lesson.
type LessonProgress struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"size:20;not null;uniqueIndex:ux_progress_user_lesson" json:"userId"`
	LessonID  string    `gorm:"size:20;not null;uniqueIndex:ux_progress_user_lesson;index" json:"lessonId"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Lesson *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:RESTRICT" json:"-"`
}

// Question belongs to a reading or listening passage depending on Skill.
type Question struct {
	ID           string  `gorm:"primaryKey;size:10" json:"id"`
	Skill        Skill   `gorm:"size:20;not null;index:idx_question_passage,priority:1" json:"-"`
	PassageID    string  `gorm:"size:20;not null;index:idx_question_passage,priority:2" json:"passageId"`
	Text         string  `gorm:"type:text;not null" json:"text"`
	Explanation  *string `gorm:"type:text" json:"explanation"`
	Points       int     `gorm:"not null;default:1" json:"points"`
	DisplayOrder int     `gorm:"not null" json:"displayOrder"`
}

type Answer struct {
	ID           string `gorm:"primaryKey;size:10" json:"id"`
	QuestionID   string `gorm:"size:10;not null;index" json:"questionId"`
	Label        string `gorm:"size:1;not null" json:"label"`
	Text         string `gorm:"type:text;not null" json:"text"`
	DisplayOrder int    `gorm:"not null" json:"displayOrder"`
	IsCorrect    bool   `gorm:"not null;default:false" json:"isCorrect"`

	Question *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:RESTRICT" json:"-"`
}

// Response records one learner's choice for one question in one attempt.
type Response struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Skill          Skill     `gorm:"size:20;not null" json:"-"`
	UserID         string    `gorm:"size:20;not null;index" json:"userId"`
	QuestionID     string    `gorm:"size:10;not null;index" json:"questionId"`
	ChosenAnswerID *string   `gorm:"size:10" json:"chosenAnswerId"`
	IsCorrect      bool      `gorm:"not null" json:"isCorrect"`
	CreatedAt      time.Time `json:"createdAt"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Question *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:RESTRICT" json:"-"`
}

// Result is the score summary of one attempt (kết quả).
type Result struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	Skill            Skill     `gorm:"size:20;not null;uniqueIndex:ux_result_attempt,priority:1" json:"-"`
	UserID           string    `gorm:"size:20;not null;uniqueIndex:ux_result_attempt,priority:2;index" json:"userId"`
	PassageID        string    `gorm:"size:20;not null;uniqueIndex:ux_result_attempt,priority:3;index" json:"passageId"`
	Attempt          int       `gorm:"not null;uniqueIndex:ux_result_attempt,priority:4" json:"attempt"`
	Score            int       `gorm:"not null" json:"score"`
	MaxScore         int       `gorm:"not null" json:"maxScore"`
	Percentage       float64   `gorm:"type:numeric(5,2);not null" json:"percentage"`
	TimeSpentSeconds int       `gorm:"not null;default:0" json:"timeSpentSeconds"`
	SubmittedAt      time.Time `gorm:"not null;index" json:"submittedAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

type WritingSubmission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PromptID    string    `gorm:"size:20;not null;index" json:"promptId"`
	UserID      string    `gorm:"size:20;not null;index" json:"userId"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	WordCount   int       `gorm:"not null" json:"wordCount"`
	SubmittedAt time.Time `gorm:"not null" json:"submittedAt"`

	Prompt *WritingPrompt `gorm:"foreignKey:PromptID;constraint:OnDelete:RESTRICT" json:"-"`
	User   *User          `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&LearningPath{},
		&Lesson{},
		&ReadingPassage{},
		&ListeningPassage{},
		&WritingPrompt{},
		&Video{},
		&LessonProgress{},
		&Question{},
		&Answer{},
		&Response{},
		&Result{},
		&WritingSubmission{},
	}
}
