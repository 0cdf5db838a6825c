package artifacts

import (
	"fmt"
	"strings"

	"cognote/internal/sanitize"
)

// repairMindMap validates model-produced mind map markdown. A valid map has
// at least 3 non-empty lines and begins with a top-level heading. When only
// the heading is missing but the body is otherwise acceptable, a synthesized
// heading is prepended instead of rejecting the output.
func repairMindMap(identifier, text string) (string, bool) {
	text = sanitize.StripFences(text)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	lines := nonEmptyLines(text)
	if strings.HasPrefix(text, "# ") {
		if len(lines) < 3 {
			return "", false
		}
		return text, true
	}

	// Heading missing: acceptable body still needs enough substance that
	// adding a heading yields a 3-line map.
	if len(lines) < 2 {
		return "", false
	}
	return fmt.Sprintf("# %s\n\n%s", identifier, text), true
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
