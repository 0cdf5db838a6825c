package material

import "strings"

// Reading speed used for the study-time estimate, in words per minute.
const readingWPM = 180

// NoteHeadings extracts the markdown headings of a polished note, in
// document order, with the leading hashes stripped.
func NoteHeadings(note string) []string {
	var headings []string
	for _, line := range strings.Split(note, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		text := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if text != "" {
			headings = append(headings, text)
		}
	}
	return headings
}

// EstimateStudyTime estimates how many minutes the note takes to review,
// rounded up and always at least 1 for non-empty text.
func EstimateStudyTime(note string) int {
	words := len(strings.Fields(note))
	if words == 0 {
		return 0
	}
	minutes := (words + readingWPM - 1) / readingWPM
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
