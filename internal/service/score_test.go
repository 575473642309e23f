package service

import "testing"

func TestScoreMixedSubmission(t *testing.T) {
	questions := []ScoredQuestion{
		{ID: "CHD01", Points: 2, CorrectAnswerID: "answer-A"},
		{ID: "CHD02", Points: 1, CorrectAnswerID: "answer-B"},
	}
	got := Score(questions, map[string]string{"CHD01": "answer-A", "CHD02": "answer-C"})

	if got.Score != 2 || got.MaxScore != 3 {
		t.Fatalf("Score: expected 2/3, got %d/%d", got.Score, got.MaxScore)
	}
	if got.Percentage != 66.67 {
		t.Fatalf("Score: expected 66.67%%, got %v", got.Percentage)
	}
	if got.CorrectCount != 1 || len(got.Details) != 2 {
		t.Fatalf("Score: correct=%d details=%d", got.CorrectCount, len(got.Details))
	}
	if !got.Details[0].Correct || got.Details[1].Correct {
		t.Fatalf("Score: expected CHD01 correct and CHD02 wrong, got %+v", got.Details)
	}
	if *got.Details[1].ChosenAnswerID != "answer-C" || *got.Details[1].CorrectAnswerID != "answer-B" {
		t.Fatalf("Score: detail ids not echoed: %+v", got.Details[1])
	}
}

func TestScoreEdges(t *testing.T) {
	questions := []ScoredQuestion{
		{ID: "Q1", Points: 3, CorrectAnswerID: "A1"},
		{ID: "Q2", Points: 4, CorrectAnswerID: "A2"},
		{ID: "Q3", Points: 5, CorrectAnswerID: "A3"},
	}

	tests := []struct {
		name       string
		questions  []ScoredQuestion
		chosen     map[string]string
		score      int
		maxScore   int
		percentage float64
	}{
		{"all correct", questions, map[string]string{"Q1": "A1", "Q2": "A2", "Q3": "A3"}, 12, 12, 100},
		{"all wrong", questions, map[string]string{"Q1": "A2", "Q2": "A3", "Q3": "A1"}, 0, 12, 0},
		{"unanswered never correct", questions, map[string]string{}, 0, 12, 0},
		{"unknown question ignored", questions, map[string]string{"Q9": "A1", "Q1": "A1"}, 3, 12, 25},
		{"zero points", []ScoredQuestion{{ID: "Q1", Points: 0, CorrectAnswerID: "A1"}}, map[string]string{"Q1": "A1"}, 0, 0, 0},
		{"no correct key", []ScoredQuestion{{ID: "Q1", Points: 1}}, map[string]string{"Q1": ""}, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.questions, tt.chosen)
			if got.Score != tt.score || got.MaxScore != tt.maxScore || got.Percentage != tt.percentage {
				t.Fatalf("Score: expected %d/%d %.2f, got %d/%d %.2f",
					tt.score, tt.maxScore, tt.percentage, got.Score, got.MaxScore, got.Percentage)
			}
		})
	}
}

func TestPercentageRounding(t *testing.T) {
	cases := map[[2]int]float64{
		{1, 3}:  33.33,
		{2, 3}:  66.67,
		{1, 8}:  12.5,
		{5, 0}:  0,
		{7, 7}:  100,
		{0, 10}: 0,
	}
	for in, want := range cases {
		if got := Percentage(in[0], in[1]); got != want {
			t.Fatalf("Percentage(%d, %d): expected %v, got %v", in[0], in[1], want, got)
		}
	}
}
