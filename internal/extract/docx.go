package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// ErrNoText is returned when a document yields no extractable text.
var ErrNoText = errors.New("no text extracted")

// DocxText extracts the paragraphs of an in-memory DOCX file.
// DOCX stores content as XML; paragraphs are split on <w:p> tags and the
// remaining markup is stripped.
func DocxText(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read docx: %w", err)
	}
	defer r.Close()

	xmlContent := r.Editable().GetContent()
	paragraphs := splitParagraphs(xmlContent)
	if len(paragraphs) == 0 {
		return "", ErrNoText
	}
	return strings.Join(paragraphs, "\n"), nil
}

// splitParagraphs splits DOCX XML on <w:p> paragraph tags and strips all
// remaining tags from each paragraph, returning clean text lines.
func splitParagraphs(xmlStr string) []string {
	parts := strings.Split(xmlStr, "<w:p")
	var paragraphs []string
	for _, part := range parts {
		cleaned := strings.TrimSpace(stripTags(part))
		if cleaned != "" {
			paragraphs = append(paragraphs, cleaned)
		}
	}
	return paragraphs
}

func stripTags(xmlStr string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range xmlStr {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
