package sourcebook

import (
	"fmt"
	"strings"
)

// FormatSources formats sources into the numbered context block used in
// prompts. Numbering is 1-based and matches the bracketed citation markers
// models are asked to emit. Sources are separated by blank lines.
func FormatSources(sources []*Source) string {
	if len(sources) == 0 {
		return ""
	}

	parts := make([]string, 0, len(sources))
	for i, src := range sources {
		header := src.Name
		if header == "" {
			header = src.ID
		}
		parts = append(parts, fmt.Sprintf("## Source [%d]: %s\n%s", i+1, header, src.Content))
	}

	return strings.Join(parts, "\n\n")
}
