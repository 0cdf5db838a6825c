package artifacts

import (
	"errors"
	"fmt"

	"cognote/internal/sanitize"
)

// rawQuestion is the tolerant wire shape for model-produced questions.
// Providers are inconsistent about the answer-index field name, so both
// spellings are accepted here and normalized to CorrectAnswer in one place.
type rawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Correct       *int     `json:"correct"`
	Explanation   string   `json:"explanation"`
}

type rawQuiz struct {
	Title     string        `json:"title"`
	Questions []rawQuestion `json:"questions"`
}

// ErrNoValidQuestions means the response parsed but no question survived
// validation.
var ErrNoValidQuestions = errors.New("no valid questions in response")

// ParseQuiz sanitizes and validates a model response into a Quiz.
// Questions with fewer than 2 options or an out-of-range answer index are
// dropped; survivors are capped at maxQuestions. An error is returned when
// the response has no JSON, does not parse, or yields zero valid questions;
// the caller substitutes the fallback quiz in all three cases.
func ParseQuiz(response string, maxQuestions int) (Quiz, error) {
	var raw rawQuiz
	if err := sanitize.DecodeObject(response, &raw); err != nil {
		return Quiz{}, err
	}
	if len(raw.Questions) == 0 {
		return Quiz{}, fmt.Errorf("quiz response has no questions field")
	}

	quiz := Quiz{Title: raw.Title}
	for _, q := range raw.Questions {
		normalized, ok := normalizeQuestion(q)
		if !ok {
			continue
		}
		quiz.Questions = append(quiz.Questions, normalized)
		if len(quiz.Questions) == maxQuestions {
			break
		}
	}

	if len(quiz.Questions) == 0 {
		return Quiz{}, ErrNoValidQuestions
	}
	return quiz, nil
}

// normalizeQuestion maps a tolerant wire question onto the canonical shape.
// The canonical answer field is CorrectAnswer; a bare "correct" field is
// accepted as an alias. Returns false for questions that fail validation.
func normalizeQuestion(q rawQuestion) (QuizQuestion, bool) {
	idx := -1
	switch {
	case q.CorrectAnswer != nil:
		idx = *q.CorrectAnswer
	case q.Correct != nil:
		idx = *q.Correct
	}

	if q.Question == "" || len(q.Options) < 2 || idx < 0 || idx >= len(q.Options) {
		return QuizQuestion{}, false
	}

	return QuizQuestion{
		Question:      q.Question,
		Options:       q.Options,
		CorrectAnswer: idx,
		Explanation:   q.Explanation,
	}, true
}
