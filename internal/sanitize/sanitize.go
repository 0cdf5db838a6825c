package sanitize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a response contains no JSON object at all.
// Callers treat this differently from a malformed object: "no JSON" usually
// means the model answered in prose, while a parse failure means it tried
// and produced broken output.
var ErrNoJSON = errors.New("no JSON object found in response")

// ParseError wraps a JSON decode failure on an extracted object span.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON in response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StripFences removes markdown code fences from a raw model response.
// Handles ```json, bare ``` and trailing fences, as well as leading prose
// before the fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)

	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		// Drop an optional language tag on the fence line
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			tag := strings.TrimSpace(s[:nl])
			if tag == "json" || tag == "JSON" || tag == "" {
				s = s[nl+1:]
			}
		}
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}

	return strings.TrimSpace(s)
}

// ExtractObject returns the first balanced {...} span in s.
// String literals are respected so braces inside quoted values don't
// unbalance the scan. Returns ErrNoJSON when no opening brace exists or
// no balanced object can be found.
func ExtractObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSON
}

// DecodeObject strips fences, extracts the first balanced JSON object and
// unmarshals it into v. Returns ErrNoJSON when the response carries no
// object, or a *ParseError when the object exists but does not parse.
func DecodeObject(raw string, v interface{}) error {
	cleaned := StripFences(raw)
	obj, err := ExtractObject(cleaned)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return &ParseError{Raw: obj, Err: err}
	}
	return nil
}
