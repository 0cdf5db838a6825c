package workflow

import (
	"context"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"cognote/internal/ai"
	"cognote/internal/artifacts"
)

// fakeProvider answers by matching a substring of the prompt, so each of the
// four concurrent branches can get its own scripted response.
type fakeProvider struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     int
}

func (f *fakeProvider) Available() bool { return true }

func (f *fakeProvider) Generate(_ context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	for key, resp := range f.responses {
		if strings.Contains(req.Prompt, key) {
			return resp, nil
		}
	}
	return "", nil
}

type countingDisabled struct {
	calls int
}

func (c *countingDisabled) Available() bool { return false }

func (c *countingDisabled) Generate(context.Context, ai.Request) (string, error) {
	c.calls++
	return "", ai.ErrUnavailable
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func threeMaterials() []MaterialInput {
	return []MaterialInput{
		{Title: "Cell Biology Lecture", Tags: []string{"biology", "cells"}, Summary: "Structure of the cell."},
		{Title: "Photosynthesis Notes", Tags: []string{"biology"}, Content: "Light reactions and the Calvin cycle."},
		{Title: "Lab Safety Handout"},
	}
}

// ========== fallback synthesis ==========

func TestGenerateUnavailableProvider(t *testing.T) {
	provider := &countingDisabled{}
	s := New(provider, quietLogger())

	bundle := s.Generate(context.Background(), "Biology Unit 1", threeMaterials())

	if provider.calls != 0 {
		t.Fatalf("expected no provider calls when unavailable, got %d", provider.calls)
	}
	if bundle.Quiz.TotalMaterials != 3 || bundle.Flashcards.TotalMaterials != 3 {
		t.Errorf("expected totalMaterials 3, got quiz=%d flashcards=%d",
			bundle.Quiz.TotalMaterials, bundle.Flashcards.TotalMaterials)
	}
	want := []string{"Cell Biology Lecture", "Photosynthesis Notes", "Lab Safety Handout"}
	if !reflect.DeepEqual(bundle.Quiz.Coverage, want) {
		t.Errorf("quiz coverage = %v, want titles in input order %v", bundle.Quiz.Coverage, want)
	}
	if !reflect.DeepEqual(bundle.Flashcards.Coverage, want) {
		t.Errorf("flashcard coverage = %v, want %v", bundle.Flashcards.Coverage, want)
	}
	if len(bundle.Flashcards.Cards) < 3 {
		t.Errorf("expected at least one flashcard per material, got %d cards", len(bundle.Flashcards.Cards))
	}
	if len(bundle.Degraded) != 4 {
		t.Errorf("expected all four artifacts marked degraded, got %v", bundle.Degraded)
	}
}

func TestFallbacksAreDeterministic(t *testing.T) {
	s := New(&countingDisabled{}, quietLogger())

	first := s.Generate(context.Background(), "Biology Unit 1", threeMaterials())
	second := s.Generate(context.Background(), "Biology Unit 1", threeMaterials())

	if !reflect.DeepEqual(first, second) {
		t.Error("fallback bundles differ between identical calls")
	}
	if first.Quiz.Questions[0].Question != artifacts.FallbackQuizQuestion {
		t.Errorf("unexpected first fallback question: %q", first.Quiz.Questions[0].Question)
	}
}

func TestFallbackMindMapShape(t *testing.T) {
	mm := fallbackMindMap("Biology Unit 1", threeMaterials())

	if !strings.HasPrefix(mm, "# Biology Unit 1") {
		t.Errorf("mind map should start with workflow heading, got %q", mm)
	}
	var lines int
	for _, l := range strings.Split(mm, "\n") {
		if strings.TrimSpace(l) != "" {
			lines++
		}
	}
	if lines < 3 {
		t.Errorf("expected at least 3 non-empty lines, got %d", lines)
	}
	for _, m := range threeMaterials() {
		if !strings.Contains(mm, m.Title) {
			t.Errorf("mind map missing material %q", m.Title)
		}
	}
}

func TestGenerateEmptyWorkflow(t *testing.T) {
	s := New(&fakeProvider{}, quietLogger())

	bundle := s.Generate(context.Background(), "Empty", nil)

	if bundle.Summary == "" || bundle.MindMap == "" {
		t.Error("empty workflow should still get fallback summary and mind map")
	}
	if len(bundle.Flashcards.Cards) == 0 {
		t.Error("empty workflow should still get a placeholder flashcard")
	}
}

// ========== generated synthesis ==========

func TestGenerateAllBranches(t *testing.T) {
	provider := &fakeProvider{responses: map[string]string{
		"cross-material summary": "The collection covers cell biology end to end.",
		"multiple-choice questions": `{"title": "Bio Quiz", "questions": [
			{"question": "Where do light reactions occur?", "options": ["Thylakoid", "Stroma"], "correctAnswer": 0, "explanation": "From: Photosynthesis Notes"}]}`,
		"mind map": "# Cell Biology\n\n- Cells\n- Photosynthesis\n- Safety",
		"flashcards covering": `{"title": "Bio Cards", "cards": [
			{"question": "What is a thylakoid?", "answer": "A membrane compartment", "source": "Photosynthesis Notes"}]}`,
	}}
	s := New(provider, quietLogger())

	bundle := s.Generate(context.Background(), "Biology Unit 1", threeMaterials())

	if provider.calls != 4 {
		t.Fatalf("expected 4 provider calls, got %d", provider.calls)
	}
	if bundle.Summary != "The collection covers cell biology end to end." {
		t.Errorf("unexpected summary: %q", bundle.Summary)
	}
	if bundle.Quiz.Title != "Bio Quiz" || len(bundle.Quiz.Questions) != 1 {
		t.Errorf("unexpected quiz: %+v", bundle.Quiz.Quiz)
	}
	if !strings.HasPrefix(bundle.MindMap, "# Cell Biology") {
		t.Errorf("unexpected mind map: %q", bundle.MindMap)
	}
	if bundle.Flashcards.Cards[0].Source != "Photosynthesis Notes" {
		t.Errorf("expected card attribution to survive, got %+v", bundle.Flashcards.Cards[0])
	}
	if len(bundle.Degraded) != 0 {
		t.Errorf("expected no degradation, got %v", bundle.Degraded)
	}
	if !reflect.DeepEqual(bundle.Quiz.Coverage, []string{"Cell Biology Lecture", "Photosynthesis Notes", "Lab Safety Handout"}) {
		t.Errorf("coverage lost on generated path: %v", bundle.Quiz.Coverage)
	}
}

func TestGenerateProviderFailureDegradesAll(t *testing.T) {
	provider := &fakeProvider{err: context.DeadlineExceeded}
	s := New(provider, quietLogger())

	bundle := s.Generate(context.Background(), "Biology Unit 1", threeMaterials())

	if bundle.Summary == "" || bundle.MindMap == "" {
		t.Error("degraded bundle must still be complete")
	}
	if len(bundle.Quiz.Questions) == 0 || len(bundle.Flashcards.Cards) == 0 {
		t.Error("degraded bundle must still carry quiz and flashcards")
	}
	if len(bundle.Degraded) != 4 {
		t.Errorf("expected 4 degradation records, got %v", bundle.Degraded)
	}
}

func TestGenerateMalformedQuizDegradesOnlyQuiz(t *testing.T) {
	provider := &fakeProvider{responses: map[string]string{
		"cross-material summary":    "Summary text.",
		"multiple-choice questions": "I could not produce JSON, sorry.",
		"mind map":                  "# Theme\n\n- A\n- B",
		"flashcards covering":       `{"cards": [{"question": "Q", "answer": "A"}]}`,
	}}
	s := New(provider, quietLogger())

	bundle := s.Generate(context.Background(), "Biology Unit 1", threeMaterials())

	if len(bundle.Degraded) != 1 || !strings.HasPrefix(bundle.Degraded[0], "quiz:") {
		t.Errorf("expected only the quiz to degrade, got %v", bundle.Degraded)
	}
	if bundle.Quiz.Questions[0].Question != artifacts.FallbackQuizQuestion {
		t.Errorf("expected fallback quiz, got %+v", bundle.Quiz.Questions[0])
	}
}

func TestPromptsEnumerateMaterials(t *testing.T) {
	corpus := describeMaterials(threeMaterials())

	for _, want := range []string{"[Material 1] Cell Biology Lecture", "Tags: biology, cells",
		"[Material 2] Photosynthesis Notes", "Light reactions", "[Material 3] Lab Safety Handout"} {
		if !strings.Contains(corpus, want) {
			t.Errorf("corpus missing %q", want)
		}
	}
	if !strings.Contains(quizPrompt("W", corpus), "connects two or more materials") {
		t.Error("quiz prompt should ask for cross-material questions")
	}
}
