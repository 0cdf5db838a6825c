package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cognote/internal/ai"
	"cognote/internal/artifacts"
	"cognote/internal/sanitize"
)

// Workflow-level target counts: larger than the per-material ones because
// output spans several source materials.
const (
	QuizQuestionCount = 8
	FlashcardCount    = 15
)

// Per-material text budget inside the composite prompt; keeps the combined
// prompt bounded for large workflows.
const maxWordsPerMaterial = 1200

// MaterialInput is one already-processed material, as stored: no raw
// binary, only the text derived when it was first processed.
type MaterialInput struct {
	Title   string
	Tags    []string
	Summary string
	Content string
}

// QuizArtifact is a workflow quiz plus the attribution metadata downstream
// UI uses to show which materials informed it.
type QuizArtifact struct {
	artifacts.Quiz
	TotalMaterials int      `json:"totalMaterials"`
	Coverage       []string `json:"coverage"`
}

type FlashcardArtifact struct {
	artifacts.FlashcardSet
	TotalMaterials int      `json:"totalMaterials"`
	Coverage       []string `json:"coverage"`
}

// Bundle is the synthesized cross-material artifact set for one workflow.
type Bundle struct {
	Summary    string            `json:"summary"`
	Quiz       QuizArtifact      `json:"quiz"`
	MindMap    string            `json:"mindMap"`
	Flashcards FlashcardArtifact `json:"flashcards"`
	Degraded   []string          `json:"degraded,omitempty"`
}

// Synthesizer builds cross-material study aids for a workflow. Unlike the
// per-upload pipeline, the four artifact requests run concurrently with no
// inter-call delay: workflow synthesis happens on workflow creation/update,
// which is rare enough that rate limits are not a concern and latency is.
type Synthesizer struct {
	provider ai.Provider
	log      *logrus.Logger
}

func New(provider ai.Provider, log *logrus.Logger) *Synthesizer {
	if log == nil {
		log = logrus.New()
	}
	return &Synthesizer{provider: provider, log: log}
}

// Generate synthesizes all four artifacts for the named workflow. It never
// fails: any branch that cannot generate degrades to the enumerating
// fallback for its artifact. Callers must not assume any completion order
// between the four branches, only that all have resolved on return.
func (s *Synthesizer) Generate(ctx context.Context, name string, materials []MaterialInput) *Bundle {
	coverage := make([]string, len(materials))
	for i, m := range materials {
		coverage[i] = m.Title
	}

	bundle := &Bundle{
		Quiz:       QuizArtifact{TotalMaterials: len(materials), Coverage: coverage},
		Flashcards: FlashcardArtifact{TotalMaterials: len(materials), Coverage: coverage},
	}

	if !s.provider.Available() || len(materials) == 0 {
		bundle.Summary = fallbackSummary(name, materials)
		bundle.Quiz.Quiz = fallbackQuiz(name, materials)
		bundle.MindMap = fallbackMindMap(name, materials)
		bundle.Flashcards.FlashcardSet = fallbackFlashcards(name, materials)
		bundle.Degraded = []string{"summary: ai provider unavailable", "quiz: ai provider unavailable",
			"mind map: ai provider unavailable", "flashcards: ai provider unavailable"}
		return bundle
	}

	corpus := describeMaterials(materials)

	var mu sync.Mutex
	var degraded []struct {
		name   string
		reason string
	}
	note := func(artifact, reason string) {
		mu.Lock()
		degraded = append(degraded, struct {
			name   string
			reason string
		}{artifact, reason})
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := s.generate(gctx, summaryPrompt(name, corpus))
		if err != nil || strings.TrimSpace(text) == "" {
			bundle.Summary = fallbackSummary(name, materials)
			note("summary", reasonOf(err))
			return nil
		}
		bundle.Summary = text
		return nil
	})

	g.Go(func() error {
		text, err := s.generate(gctx, quizPrompt(name, corpus))
		if err == nil {
			if quiz, perr := artifacts.ParseQuiz(text, QuizQuestionCount); perr == nil {
				if quiz.Title == "" {
					quiz.Title = fmt.Sprintf("Workflow Quiz: %s", name)
				}
				bundle.Quiz.Quiz = quiz
				return nil
			} else {
				err = perr
			}
		}
		bundle.Quiz.Quiz = fallbackQuiz(name, materials)
		note("quiz", reasonOf(err))
		return nil
	})

	g.Go(func() error {
		text, err := s.generate(gctx, mindMapPrompt(name, corpus))
		if err == nil {
			cleaned := sanitize.StripFences(text)
			if strings.HasPrefix(cleaned, "# ") && len(strings.Split(cleaned, "\n")) >= 3 {
				bundle.MindMap = cleaned
				return nil
			}
			err = fmt.Errorf("malformed mind map output")
		}
		bundle.MindMap = fallbackMindMap(name, materials)
		note("mind map", reasonOf(err))
		return nil
	})

	g.Go(func() error {
		text, err := s.generate(gctx, flashcardPrompt(name, corpus))
		if err == nil {
			if set, perr := artifacts.ParseFlashcards(text, name, FlashcardCount); perr == nil {
				if set.Title == "" {
					set.Title = fmt.Sprintf("Workflow Flashcards: %s", name)
				}
				bundle.Flashcards.FlashcardSet = set
				return nil
			} else {
				err = perr
			}
		}
		bundle.Flashcards.FlashcardSet = fallbackFlashcards(name, materials)
		note("flashcards", reasonOf(err))
		return nil
	})

	_ = g.Wait()

	for _, d := range degraded {
		s.log.Warnf("workflow %s: %s degraded to fallback: %s", name, d.name, d.reason)
		bundle.Degraded = append(bundle.Degraded, fmt.Sprintf("%s: %s", d.name, d.reason))
	}
	return bundle
}

func (s *Synthesizer) generate(ctx context.Context, prompt string) (string, error) {
	return s.provider.Generate(ctx, ai.Request{Prompt: prompt, Temperature: 0.5})
}

func reasonOf(err error) string {
	if err == nil {
		return "empty response"
	}
	return err.Error()
}

// describeMaterials builds the corpus section of every composite prompt:
// each material's title, tags, and available summary/content text.
func describeMaterials(materials []MaterialInput) string {
	var parts []string
	for i, m := range materials {
		var sb strings.Builder
		fmt.Fprintf(&sb, "[Material %d] %s\n", i+1, m.Title)
		if len(m.Tags) > 0 {
			fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(m.Tags, ", "))
		}
		if m.Summary != "" {
			fmt.Fprintf(&sb, "Summary: %s\n", m.Summary)
		}
		if m.Content != "" {
			fmt.Fprintf(&sb, "Content:\n%s\n", truncateWords(m.Content, maxWordsPerMaterial))
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n---\n\n")
}

func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ")
}

const synthesisInstructions = `Work across ALL of the materials above: identify the unifying theme,
draw connections between materials, and make sure every material contributes.`

func summaryPrompt(name, corpus string) string {
	return fmt.Sprintf(`These are the materials in the study collection %q:

%s

%s

Write a cohesive cross-material summary (2-4 paragraphs) of the collection as
a whole: the unifying theme, how the materials relate, and what each one adds.
Return only the summary text.`, name, corpus, synthesisInstructions)
}

func quizPrompt(name, corpus string) string {
	return fmt.Sprintf(`These are the materials in the study collection %q:

%s

%s

Create %d multiple-choice questions spanning the collection. Include at least
one question that connects two or more materials. In each explanation, name
the material(s) the question draws on.

Return ONLY valid JSON in this exact format:
{
  "title": "Quiz title",
  "questions": [
    {"question": "...", "options": ["...", "..."], "correctAnswer": 0, "explanation": "... (from: Material Title)"}
  ]
}`, name, corpus, synthesisInstructions, QuizQuestionCount)
}

func mindMapPrompt(name, corpus string) string {
	return fmt.Sprintf(`These are the materials in the study collection %q:

%s

%s

Create a markdown mind map of the collection. Start with a single top-level
heading (#) naming the unifying theme, one main branch per material, and a
final branch for cross-material connections. Return only the markdown.`, name, corpus, synthesisInstructions)
}

func flashcardPrompt(name, corpus string) string {
	return fmt.Sprintf(`These are the materials in the study collection %q:

%s

%s

Create %d flashcards covering the collection. Spread the cards across all
materials and set each card's "source" to the title of the material it comes
from.

Return ONLY valid JSON in this exact format:
{
  "title": "Flashcard set title",
  "cards": [
    {"question": "...", "answer": "...", "source": "Material Title"}
  ]
}`, name, corpus, synthesisInstructions, FlashcardCount)
}
