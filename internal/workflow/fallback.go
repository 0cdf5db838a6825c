package workflow

import (
	"fmt"
	"strings"

	"cognote/internal/artifacts"
)

// The workflow fallbacks are pure functions of the material titles/tags, so
// a workflow created while the AI provider is down still gets a usable
// artifact set that enumerates what it contains.

func fallbackSummary(name string, materials []MaterialInput) string {
	if len(materials) == 0 {
		return fmt.Sprintf("The workflow %q has no materials yet. Add materials to generate a combined summary.", name)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "The workflow %q combines %d study material(s):\n\n", name, len(materials))
	for i, m := range materials {
		fmt.Fprintf(&sb, "%d. %s", i+1, m.Title)
		if len(m.Tags) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(m.Tags, ", "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nReview each material individually for details, then use the combined quiz and flashcards to test yourself across all of them.")
	return sb.String()
}

func fallbackQuiz(name string, materials []MaterialInput) artifacts.Quiz {
	countOptions := []string{
		fmt.Sprintf("%d", len(materials)+1),
		fmt.Sprintf("%d", len(materials)),
		fmt.Sprintf("%d", len(materials)+2),
		fmt.Sprintf("%d", max(len(materials)-1, 0)),
	}
	questions := []artifacts.QuizQuestion{
		{
			Question:      artifacts.FallbackQuizQuestion,
			Options:       []string{"Passive re-reading", "Active recall", "Highlighting", "Skimming"},
			CorrectAnswer: 1,
			Explanation:   "Active recall strengthens memory far more than passively reviewing material.",
		},
		{
			Question:      fmt.Sprintf("How many materials does the workflow %q combine?", name),
			Options:       countOptions,
			CorrectAnswer: 1,
			Explanation:   fmt.Sprintf("The workflow contains %d material(s).", len(materials)),
		},
	}
	for i, m := range materials {
		questions = append(questions, artifacts.QuizQuestion{
			Question:      fmt.Sprintf("Which of these is material %d in the workflow %q?", i+1, name),
			Options:       []string{"A material not in this workflow", m.Title},
			CorrectAnswer: 1,
			Explanation:   fmt.Sprintf("%q is part of this workflow.", m.Title),
		})
	}
	if len(questions) > QuizQuestionCount {
		questions = questions[:QuizQuestionCount]
	}
	return artifacts.Quiz{
		Title:     fmt.Sprintf("Workflow Quiz: %s", name),
		Questions: questions,
	}
}

func fallbackMindMap(name string, materials []MaterialInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)
	for _, m := range materials {
		fmt.Fprintf(&sb, "- %s\n", m.Title)
		for _, tag := range m.Tags {
			fmt.Fprintf(&sb, "  - %s\n", tag)
		}
	}
	sb.WriteString("- Review\n")
	sb.WriteString("  - Revisit each material\n")
	sb.WriteString("  - Test yourself with the combined quiz\n")
	return sb.String()
}

func fallbackFlashcards(name string, materials []MaterialInput) artifacts.FlashcardSet {
	var cards []artifacts.Flashcard
	for i, m := range materials {
		answer := fmt.Sprintf("See the material %q", m.Title)
		if len(m.Tags) > 0 {
			answer = fmt.Sprintf("Topics: %s. See the material %q.", strings.Join(m.Tags, ", "), m.Title)
		}
		cards = append(cards, artifacts.Flashcard{
			Question: fmt.Sprintf("What does material %d of the workflow %q cover?", i+1, name),
			Answer:   answer,
			Source:   m.Title,
		})
	}
	if len(cards) == 0 {
		cards = append(cards, artifacts.Flashcard{
			Question: fmt.Sprintf("What materials does the workflow %q contain?", name),
			Answer:   "None yet. Add materials to this workflow to study them together.",
			Source:   name,
		})
	}
	if len(cards) > FlashcardCount {
		cards = cards[:FlashcardCount]
	}
	return artifacts.FlashcardSet{
		Title: fmt.Sprintf("Workflow Flashcards: %s", name),
		Cards: cards,
	}
}
