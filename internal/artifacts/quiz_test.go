package artifacts

import (
	"errors"
	"testing"
)

// ========== ParseQuiz ==========

func TestParseQuiz_Valid(t *testing.T) {
	raw := `{
		"title": "Cell Biology",
		"questions": [
			{"question": "What produces ATP?", "options": ["Nucleus", "Mitochondria", "Ribosome"], "correctAnswer": 1, "explanation": "Mitochondria are the site of respiration."}
		]
	}`
	quiz, err := ParseQuiz(raw, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quiz.Title != "Cell Biology" {
		t.Errorf("title = %q", quiz.Title)
	}
	if len(quiz.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(quiz.Questions))
	}
	if quiz.Questions[0].CorrectAnswer != 1 {
		t.Errorf("correctAnswer = %d, want 1", quiz.Questions[0].CorrectAnswer)
	}
}

func TestParseQuiz_CorrectFieldAlias(t *testing.T) {
	// Some providers return "correct" instead of "correctAnswer".
	raw := `{"questions": [
		{"question": "Q?", "options": ["a", "b"], "correct": 0, "explanation": "e"}
	]}`
	quiz, err := ParseQuiz(raw, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quiz.Questions[0].CorrectAnswer != 0 {
		t.Errorf("correctAnswer = %d, want normalized 0", quiz.Questions[0].CorrectAnswer)
	}
}

func TestParseQuiz_OutOfRangeDropped(t *testing.T) {
	raw := `{"questions": [
		{"question": "Bad", "options": ["a", "b"], "correctAnswer": 5},
		{"question": "Good", "options": ["a", "b"], "correctAnswer": 1}
	]}`
	quiz, err := ParseQuiz(raw, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Question != "Good" {
		t.Errorf("questions = %+v, want only the valid one", quiz.Questions)
	}
}

func TestParseQuiz_TooFewOptionsDropped(t *testing.T) {
	raw := `{"questions": [
		{"question": "Bad", "options": ["only one"], "correctAnswer": 0},
		{"question": "Good", "options": ["a", "b", "c"], "correctAnswer": 2}
	]}`
	quiz, err := ParseQuiz(raw, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Question != "Good" {
		t.Errorf("questions = %+v, want only the valid one", quiz.Questions)
	}
}

func TestParseQuiz_AllInvalid(t *testing.T) {
	raw := `{"questions": [
		{"question": "Bad", "options": ["a", "b"], "correctAnswer": -1},
		{"question": "Worse", "options": [], "correctAnswer": 0}
	]}`
	_, err := ParseQuiz(raw, 5)
	if !errors.Is(err, ErrNoValidQuestions) {
		t.Errorf("err = %v, want ErrNoValidQuestions", err)
	}
}

func TestParseQuiz_CappedAtMax(t *testing.T) {
	raw := `{"questions": [
		{"question": "1", "options": ["a", "b"], "correctAnswer": 0},
		{"question": "2", "options": ["a", "b"], "correctAnswer": 0},
		{"question": "3", "options": ["a", "b"], "correctAnswer": 0}
	]}`
	quiz, err := ParseQuiz(raw, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 2 {
		t.Errorf("got %d questions, want cap of 2", len(quiz.Questions))
	}
}

func TestParseQuiz_FencedResponse(t *testing.T) {
	raw := "```json\n{\"questions\": [{\"question\": \"Q\", \"options\": [\"a\", \"b\"], \"correctAnswer\": 0}]}\n```"
	quiz, err := ParseQuiz(raw, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 1 {
		t.Errorf("got %d questions, want 1", len(quiz.Questions))
	}
}

func TestParseQuiz_ProseResponse(t *testing.T) {
	_, err := ParseQuiz("I couldn't generate a quiz for this material.", 5)
	if err == nil {
		t.Error("expected error for prose response")
	}
}

// ========== ParseFlashcards ==========

func TestParseFlashcards_DefaultsMissingFields(t *testing.T) {
	raw := `{"cards": [
		{"question": "", "answer": "", "source": ""},
		{"question": "Q2", "answer": "A2", "source": "Section 1"}
	]}`
	set, err := ParseFlashcards(raw, "notes.txt", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Cards) != 2 {
		t.Fatalf("got %d cards, want 2 (malformed cards kept, not dropped)", len(set.Cards))
	}
	if set.Cards[0].Question != "Question not available" {
		t.Errorf("question = %q, want default", set.Cards[0].Question)
	}
	if set.Cards[0].Answer != "Answer not available" {
		t.Errorf("answer = %q, want default", set.Cards[0].Answer)
	}
	if set.Cards[0].Source != "notes.txt" {
		t.Errorf("source = %q, want identifier default", set.Cards[0].Source)
	}
}

func TestParseFlashcards_CappedAtMax(t *testing.T) {
	raw := `{"cards": [
		{"question": "1", "answer": "a"},
		{"question": "2", "answer": "b"},
		{"question": "3", "answer": "c"}
	]}`
	set, err := ParseFlashcards(raw, "x", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Cards) != 2 {
		t.Errorf("got %d cards, want cap of 2", len(set.Cards))
	}
}

func TestParseFlashcards_EmptyCards(t *testing.T) {
	_, err := ParseFlashcards(`{"title": "x", "cards": []}`, "x", 10)
	if err == nil {
		t.Error("expected error for empty cards array")
	}
}
