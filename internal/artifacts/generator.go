package artifacts

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"cognote/internal/ai"
	"cognote/internal/asset"
)

// Per-artifact sampling temperatures. Fact-fidelity-sensitive artifacts run
// cooler; flashcards run warm for phrasing variety.
const (
	summaryTemperature    = 0.3
	quizTemperature       = 0.5
	mindMapTemperature    = 0.4
	flashcardsTemperature = 0.7
)

// Single-material target counts.
const (
	QuizQuestionCount = 5
	FlashcardCount    = 10
)

// Generator produces the four study artifacts. Every entry point resolves
// in three tiers: unconfigured provider → static fallback with no network
// call; otherwise generate; on provider/parse/validation failure → static
// fallback. It never returns an error.
type Generator struct {
	provider ai.Provider
	log      *logrus.Logger
}

func NewGenerator(provider ai.Provider, log *logrus.Logger) *Generator {
	if log == nil {
		log = logrus.New()
	}
	return &Generator{provider: provider, log: log}
}

// inlineFrom converts an encoded payload into the provider's inline form,
// stripping the data-URI prefix.
func inlineFrom(p asset.Payload) *ai.Inline {
	return &ai.Inline{Data: p.RawBase64(), MIMEType: p.MIMEType}
}

func (g *Generator) generate(ctx context.Context, prompt string, inline *ai.Inline, temp float32) (string, error) {
	return g.provider.Generate(ctx, ai.Request{Prompt: prompt, Inline: inline, Temperature: temp})
}

// ==========================================
// Summary
// ==========================================

// Summary generates a concise summary from extracted text.
func (g *Generator) Summary(ctx context.Context, identifier, content string) Outcome[string] {
	if !g.provider.Available() {
		return Degraded(FallbackSummary(identifier), "ai provider unavailable")
	}
	prompt := fmt.Sprintf(`Summarize the following study material in 3-5 sentences.
Focus on the main ideas and why they matter. Write plain prose, no headings or lists.

Material: %s

%s`, identifier, content)

	text, err := g.generate(ctx, prompt, nil, summaryTemperature)
	return g.finishSummary(identifier, text, err)
}

// SummaryFromFile generates a summary directly from the original binary.
func (g *Generator) SummaryFromFile(ctx context.Context, payload asset.Payload) Outcome[string] {
	if !g.provider.Available() {
		return Degraded(FallbackSummary(payload.FileName), "ai provider unavailable")
	}
	prompt := fmt.Sprintf(`Summarize the attached file (%s) in 3-5 sentences.
Focus on the main ideas and why they matter. Write plain prose, no headings or lists.`, payload.FileName)

	text, err := g.generate(ctx, prompt, inlineFrom(payload), summaryTemperature)
	return g.finishSummary(payload.FileName, text, err)
}

func (g *Generator) finishSummary(identifier, text string, err error) Outcome[string] {
	if err != nil {
		g.log.Warnf("summary generation failed for %s: %v", identifier, err)
		return Degraded(FallbackSummary(identifier), err.Error())
	}
	if text == "" {
		return Degraded(FallbackSummary(identifier), "empty response")
	}
	return Generated(text)
}

// ==========================================
// MindMap
// ==========================================

// MindMap generates a markdown mind map from extracted text. The result
// always begins with a top-level heading and has at least 3 lines.
func (g *Generator) MindMap(ctx context.Context, identifier, content string) Outcome[string] {
	if !g.provider.Available() {
		return Degraded(FallbackMindMap(identifier), "ai provider unavailable")
	}
	prompt := fmt.Sprintf(`Create a mind map of the following study material as markdown.
Start with a single top-level heading (#) naming the topic, then nested bullet
lists for the main branches and sub-concepts. Return only the markdown.

Material: %s

%s`, identifier, content)

	text, err := g.generate(ctx, prompt, nil, mindMapTemperature)
	return g.finishMindMap(identifier, text, err)
}

// MindMapFromFile generates a mind map directly from the original binary.
func (g *Generator) MindMapFromFile(ctx context.Context, payload asset.Payload) Outcome[string] {
	if !g.provider.Available() {
		return Degraded(FallbackMindMap(payload.FileName), "ai provider unavailable")
	}
	prompt := fmt.Sprintf(`Create a mind map of the attached file (%s) as markdown.
Start with a single top-level heading (#) naming the topic, then nested bullet
lists for the main branches and sub-concepts. Return only the markdown.`, payload.FileName)

	text, err := g.generate(ctx, prompt, inlineFrom(payload), mindMapTemperature)
	return g.finishMindMap(payload.FileName, text, err)
}

func (g *Generator) finishMindMap(identifier, text string, err error) Outcome[string] {
	if err != nil {
		g.log.Warnf("mind map generation failed for %s: %v", identifier, err)
		return Degraded(FallbackMindMap(identifier), err.Error())
	}
	repaired, ok := repairMindMap(identifier, text)
	if !ok {
		return Degraded(FallbackMindMap(identifier), "malformed mind map output")
	}
	return Generated(repaired)
}

// ==========================================
// Quiz
// ==========================================

// Quiz generates a multiple-choice quiz from extracted text.
func (g *Generator) Quiz(ctx context.Context, identifier, content string) Outcome[Quiz] {
	if !g.provider.Available() {
		return Degraded(FallbackQuiz(identifier), "ai provider unavailable")
	}
	text, err := g.generate(ctx, quizPrompt(identifier, content, QuizQuestionCount), nil, quizTemperature)
	return g.finishQuiz(identifier, text, err, QuizQuestionCount)
}

// QuizFromFile generates a quiz directly from the original binary.
func (g *Generator) QuizFromFile(ctx context.Context, payload asset.Payload) Outcome[Quiz] {
	if !g.provider.Available() {
		return Degraded(FallbackQuiz(payload.FileName), "ai provider unavailable")
	}
	prompt := fmt.Sprintf("Read the attached file (%s).\n\n%s",
		payload.FileName, quizPromptBody(QuizQuestionCount))
	text, err := g.generate(ctx, prompt, inlineFrom(payload), quizTemperature)
	return g.finishQuiz(payload.FileName, text, err, QuizQuestionCount)
}

func (g *Generator) finishQuiz(identifier, text string, err error, maxQuestions int) Outcome[Quiz] {
	if err != nil {
		g.log.Warnf("quiz generation failed for %s: %v", identifier, err)
		return Degraded(FallbackQuiz(identifier), err.Error())
	}
	quiz, err := ParseQuiz(text, maxQuestions)
	if err != nil {
		g.log.Warnf("quiz response rejected for %s: %v", identifier, err)
		return Degraded(FallbackQuiz(identifier), err.Error())
	}
	if quiz.Title == "" {
		quiz.Title = fmt.Sprintf("Quiz: %s", identifier)
	}
	return Generated(quiz)
}

func quizPrompt(identifier, content string, n int) string {
	return fmt.Sprintf("Study material (%s):\n\n%s\n\n%s", identifier, content, quizPromptBody(n))
}

func quizPromptBody(n int) string {
	return fmt.Sprintf(`Create %d multiple-choice questions testing understanding of this material.

Return ONLY valid JSON in this exact format:
{
  "title": "Quiz title",
  "questions": [
    {
      "question": "The question text",
      "options": ["option A", "option B", "option C", "option D"],
      "correctAnswer": 0,
      "explanation": "Why this answer is correct"
    }
  ]
}

correctAnswer is the zero-based index of the correct option. Every question
must have at least 2 options and exactly one correct answer.`, n)
}

// ==========================================
// Flashcards
// ==========================================

// Flashcards generates a flashcard set from extracted text.
func (g *Generator) Flashcards(ctx context.Context, identifier, content string) Outcome[FlashcardSet] {
	if !g.provider.Available() {
		return Degraded(FallbackFlashcards(identifier), "ai provider unavailable")
	}
	text, err := g.generate(ctx, flashcardPrompt(identifier, content, FlashcardCount), nil, flashcardsTemperature)
	return g.finishFlashcards(identifier, text, err, FlashcardCount)
}

// FlashcardsFromFile generates flashcards directly from the original binary.
func (g *Generator) FlashcardsFromFile(ctx context.Context, payload asset.Payload) Outcome[FlashcardSet] {
	if !g.provider.Available() {
		return Degraded(FallbackFlashcards(payload.FileName), "ai provider unavailable")
	}
	prompt := fmt.Sprintf("Read the attached file (%s).\n\n%s",
		payload.FileName, flashcardPromptBody(FlashcardCount))
	text, err := g.generate(ctx, prompt, inlineFrom(payload), flashcardsTemperature)
	return g.finishFlashcards(payload.FileName, text, err, FlashcardCount)
}

func (g *Generator) finishFlashcards(identifier, text string, err error, maxCards int) Outcome[FlashcardSet] {
	if err != nil {
		g.log.Warnf("flashcard generation failed for %s: %v", identifier, err)
		return Degraded(FallbackFlashcards(identifier), err.Error())
	}
	set, err := ParseFlashcards(text, identifier, maxCards)
	if err != nil {
		g.log.Warnf("flashcard response rejected for %s: %v", identifier, err)
		return Degraded(FallbackFlashcards(identifier), err.Error())
	}
	if set.Title == "" {
		set.Title = fmt.Sprintf("Flashcards: %s", identifier)
	}
	return Generated(set)
}

func flashcardPrompt(identifier, content string, n int) string {
	return fmt.Sprintf("Study material (%s):\n\n%s\n\n%s", identifier, content, flashcardPromptBody(n))
}

func flashcardPromptBody(n int) string {
	return fmt.Sprintf(`Create %d flashcards covering the key facts and concepts in this material.
Vary the phrasing; mix definition, application, and why/how questions.

Return ONLY valid JSON in this exact format:
{
  "title": "Flashcard set title",
  "cards": [
    {"question": "Front of card", "answer": "Back of card", "source": "What part of the material this comes from"}
  ]
}`, n)
}
