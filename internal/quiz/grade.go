// Package quiz grades lesson quizzes, drives the adaptive difficulty and
// Bloom rules from the result, and generates adapted quizzes.
package quiz

import (
	"math"

	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/mastery"
)

const defaultExplanation = "Review the lesson content for more details."

// QuestionFeedback reports how one question was answered.
type QuestionFeedback struct {
	QuestionID    string             `json:"question_id"`
	Question      string             `json:"question"`
	Options       []string           `json:"options"`
	UserAnswer    string             `json:"user_answer"`
	CorrectAnswer string             `json:"correct_answer"`
	IsCorrect     bool               `json:"is_correct"`
	Explanation   string             `json:"explanation"`
	Difficulty    mastery.Difficulty `json:"difficulty"`
	BloomLevel    mastery.BloomLevel `json:"bloom_level"`
}

// Report is the outcome of grading one submission.
type Report struct {
	// Score is a percentage rounded to two decimals.
	Score        float64
	CorrectCount int
	Total        int
	Feedback     []QuestionFeedback
}

// Grade scores answers (question ID to chosen option) against questions.
// Matching is exact; unanswered questions count as wrong. Every question
// gets a feedback entry.
func Grade(questions []course.QuizQuestion, answers map[string]string) Report {
	r := Report{Total: len(questions), Feedback: make([]QuestionFeedback, 0, len(questions))}
	for _, q := range questions {
		answer := answers[q.QuestionID]
		ok := answer == q.CorrectAnswer
		if ok {
			r.CorrectCount++
		}
		explanation := q.Explanation
		if explanation == "" {
			explanation = defaultExplanation
		}
		r.Feedback = append(r.Feedback, QuestionFeedback{
			QuestionID:    q.QuestionID,
			Question:      q.Question,
			Options:       q.Options,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     ok,
			Explanation:   explanation,
			Difficulty:    q.Difficulty,
			BloomLevel:    q.BloomLevel,
		})
	}
	if r.Total > 0 {
		r.Score = round2(float64(r.CorrectCount) / float64(r.Total) * 100)
	}
	return r
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

// Wrong lists the feedback entries that were answered incorrectly.
func (r Report) Wrong() []QuestionFeedback {
	var out []QuestionFeedback
	for _, f := range r.Feedback {
		if !f.IsCorrect {
			out = append(out, f)
		}
	}
	return out
}
