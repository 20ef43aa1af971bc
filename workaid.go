package sourcebook

import "strings"

// Work aid section headers. The work aid prompt instructs the model to
// structure its response under these lowercase headers.
const (
	WorkAidSummaryHeader    = "document summary:"
	WorkAidHighlightsHeader = "key highlights:"
	WorkAidChecklistHeader  = "work aid/checklist:"
)

// WorkAid is the parsed form of a work aid generation.
type WorkAid struct {
	Summary    string `json:"summary"`
	Highlights string `json:"highlights"`
	Checklist  string `json:"checklist"`
}

// ParseWorkAid splits a model response into work aid sections. Headers are
// matched case-insensitively at line starts and may appear in any order.
// Text before the first header is ignored; everything after a header,
// including the remainder of the header line, belongs to that section until
// the next header. A response without headers yields empty sections.
func ParseWorkAid(raw string) *WorkAid {
	aid := &WorkAid{}

	var section *string
	var buf []string
	flush := func() {
		if section != nil {
			*section = strings.TrimSpace(strings.Join(buf, "\n"))
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		var next *string
		var header string
		switch {
		case strings.HasPrefix(lower, WorkAidSummaryHeader):
			next, header = &aid.Summary, WorkAidSummaryHeader
		case strings.HasPrefix(lower, WorkAidHighlightsHeader):
			next, header = &aid.Highlights, WorkAidHighlightsHeader
		case strings.HasPrefix(lower, WorkAidChecklistHeader):
			next, header = &aid.Checklist, WorkAidChecklistHeader
		}

		if next != nil {
			flush()
			section = next
			if rest := strings.TrimSpace(trimmed[len(header):]); rest != "" {
				buf = append(buf, rest)
			}
			continue
		}
		if section != nil {
			buf = append(buf, line)
		}
	}
	flush()

	return aid
}
