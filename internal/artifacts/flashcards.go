package artifacts

import (
	"fmt"

	"cognote/internal/sanitize"
)

type rawFlashcardSet struct {
	Title string `json:"title"`
	Cards []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Source   string `json:"source"`
	} `json:"cards"`
}

// ParseFlashcards sanitizes a model response into a FlashcardSet. Unlike
// quiz questions, partially malformed cards are kept with defaulted fields
// so the requested count is preserved; only a fully unparseable or empty
// response is an error.
func ParseFlashcards(response, identifier string, maxCards int) (FlashcardSet, error) {
	var raw rawFlashcardSet
	if err := sanitize.DecodeObject(response, &raw); err != nil {
		return FlashcardSet{}, err
	}
	if len(raw.Cards) == 0 {
		return FlashcardSet{}, fmt.Errorf("flashcard response has no cards field")
	}

	set := FlashcardSet{Title: raw.Title}
	for _, c := range raw.Cards {
		card := Flashcard{Question: c.Question, Answer: c.Answer, Source: c.Source}
		if card.Question == "" {
			card.Question = "Question not available"
		}
		if card.Answer == "" {
			card.Answer = "Answer not available"
		}
		if card.Source == "" {
			card.Source = identifier
		}
		set.Cards = append(set.Cards, card)
		if len(set.Cards) == maxCards {
			break
		}
	}
	return set, nil
}
