package artifacts

import "fmt"

// Static fallbacks are deterministic and derived only from the identifier
// string (file name or material title), never from content or the network.
// They guarantee the pipeline always returns a complete bundle.

// FallbackQuizQuestion is the fixed first question of every fallback quiz.
const FallbackQuizQuestion = "Which study technique involves actively recalling information from memory rather than re-reading it?"

func FallbackSummary(identifier string) string {
	return fmt.Sprintf(
		"This is a summary of %s. The material has been saved and is ready for review. "+
			"AI-generated insights were not available for this item; open the note to review the extracted content directly.",
		identifier)
}

func FallbackQuiz(identifier string) Quiz {
	return Quiz{
		Title: fmt.Sprintf("Quiz: %s", identifier),
		Questions: []QuizQuestion{
			{
				Question:      FallbackQuizQuestion,
				Options:       []string{"Passive re-reading", "Active recall", "Highlighting", "Skimming"},
				CorrectAnswer: 1,
				Explanation:   "Active recall strengthens memory by forcing retrieval instead of recognition.",
			},
			{
				Question:      "What is the recommended first step when reviewing new study material?",
				Options:       []string{"Memorize every detail", "Skim for structure and key ideas", "Copy the text verbatim"},
				CorrectAnswer: 1,
				Explanation:   "Skimming for structure builds a framework that later details attach to.",
			},
			{
				Question:      fmt.Sprintf("Where can you review the full content of %s?", identifier),
				Options:       []string{"In the polished note for this material", "Nowhere, it was discarded"},
				CorrectAnswer: 0,
				Explanation:   "The extracted note always remains available even when quiz generation is unavailable.",
			},
		},
	}
}

func FallbackMindMap(identifier string) string {
	return fmt.Sprintf(`# Study Material - %s

- Content
  - Review the polished note for this material
- Key Ideas
  - Identify the main concepts while reading
  - Note terms that need definitions
- Review
  - Test yourself with the quiz and flashcards`, identifier)
}

func FallbackFlashcards(identifier string) FlashcardSet {
	return FlashcardSet{
		Title: fmt.Sprintf("Flashcards: %s", identifier),
		Cards: []Flashcard{
			{
				Question: "What material is this flashcard set based on?",
				Answer:   identifier,
				Source:   identifier,
			},
			{
				Question: "What is an effective way to use flashcards?",
				Answer:   "Answer from memory before flipping the card, then sort by confidence.",
				Source:   identifier,
			},
		},
	}
}
