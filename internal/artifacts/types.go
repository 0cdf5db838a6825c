package artifacts

import "time"

// QuizQuestion is one multiple-choice question. CorrectAnswer indexes into
// Options; every retained question satisfies 0 <= CorrectAnswer < len(Options).
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type Quiz struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// Flashcard is one question/answer pair. Source names the material the card
// was derived from, so workflow-level cards can attribute themselves.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source"`
}

type FlashcardSet struct {
	Title string      `json:"title"`
	Cards []Flashcard `json:"cards"`
}

// FileMetadata describes the asset a ProcessedContent came from.
type FileMetadata struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Size        int64     `json:"size"`
	ProcessedAt time.Time `json:"processedAt"`
}

// ProcessedContent is the full per-material bundle the pipeline produces.
// On success PolishedNote is never empty, and each of Summary/Quiz/MindMap/
// Flashcards is either AI-generated or that artifact's deterministic
// fallback. Degraded lists the artifacts that fell back, with reasons.
type ProcessedContent struct {
	Transcription string       `json:"transcription,omitempty"`
	PolishedNote  string       `json:"polishedNote"`
	Summary       string       `json:"summary"`
	Quiz          Quiz         `json:"quiz"`
	MindMap       string       `json:"mindMap"`
	Flashcards    FlashcardSet `json:"flashcards"`
	FileMetadata  FileMetadata `json:"fileMetadata"`
	Degraded      []string     `json:"degraded,omitempty"`
}
