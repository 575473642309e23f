package service

import "math"

// ScoredQuestion is what scoring needs to know about one question.
// CorrectAnswerID is empty when no answer is flagged correct.
type ScoredQuestion struct {
	ID              string
	Points          int
	CorrectAnswerID string
}

type QuestionOutcome struct {
	QuestionID      string  `json:"questionId"`
	ChosenAnswerID  *string `json:"chosenAnswerId"`
	CorrectAnswerID *string `json:"correctAnswerId"`
	Correct         bool    `json:"correct"`
	Points          int     `json:"points"`
}

type Outcome struct {
	Score        int
	MaxScore     int
	Percentage   float64
	CorrectCount int
	Details      []QuestionOutcome
}

// Score grades chosen (question id to answer id) against questions, in question order.
// An unanswered question is never correct; every question counts toward MaxScore.
func Score(questions []ScoredQuestion, chosen map[string]string) Outcome {
	out := Outcome{Details: make([]QuestionOutcome, 0, len(questions))}
	for _, q := range questions {
		out.MaxScore += q.Points

		d := QuestionOutcome{QuestionID: q.ID, Points: q.Points}
		if q.CorrectAnswerID != "" {
			correct := q.CorrectAnswerID
			d.CorrectAnswerID = &correct
		}
		if answerID, ok := chosen[q.ID]; ok && answerID != "" {
			a := answerID
			d.ChosenAnswerID = &a
			d.Correct = q.CorrectAnswerID != "" && answerID == q.CorrectAnswerID
		}
		if d.Correct {
			out.Score += q.Points
			out.CorrectCount++
		}
		out.Details = append(out.Details, d)
	}
	out.Percentage = Percentage(out.Score, out.MaxScore)
	return out
}

// Percentage is score/max*100 rounded to two decimals, or 0 when max is not positive.
func Percentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return round2(float64(score) / float64(maxScore) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
