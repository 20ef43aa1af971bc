package sourcebook

import (
	"encoding/json"
	"strings"
	"time"
)

// RequiredSummarySections lists the sections a valid document summary must
// contain, in the order they are reported when missing.
var RequiredSummarySections = []string{"summary", "outline", "keyPoints", "qa"}

// DocumentSummary is the structured overview generated for a source.
type DocumentSummary struct {
	Summary   string   `json:"summary"`
	Outline   string   `json:"outline"`
	KeyPoints []string `json:"keyPoints"`
	QA        []QAPair `json:"qa"`
	Todo      string   `json:"todo,omitempty"`

	// IsValid is false when generation failed or required sections are
	// missing. Error holds the failure description; MissingSections names
	// the absent parts.
	IsValid         bool     `json:"isValid"`
	Error           string   `json:"error,omitempty"`
	MissingSections []string `json:"missingSections,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// QAPair is a question with its answer in a document summary.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FailedSummary returns an invalid summary recording a generation failure.
func FailedSummary(err error) *DocumentSummary {
	return &DocumentSummary{
		QA:      []QAPair{},
		IsValid: false,
		Error:   ErrorMessage(err),
	}
}

// ParseDocumentSummary decodes a model response into a DocumentSummary.
// Markdown code fences around the JSON are tolerated. Parse failures and
// missing sections are recorded on the summary instead of returned as
// errors: the result is always non-nil and QA is never nil.
func ParseDocumentSummary(raw string) *DocumentSummary {
	s := &DocumentSummary{QA: []QAPair{}}

	payload := strings.TrimSpace(stripCodeFence(raw))
	if payload == "" {
		s.Error = "empty model response"
		s.MissingSections = append([]string(nil), RequiredSummarySections...)
		return s
	}

	var decoded struct {
		Summary   string   `json:"summary"`
		Outline   string   `json:"outline"`
		KeyPoints []string `json:"keyPoints"`
		QA        []QAPair `json:"qa"`
		Todo      string   `json:"todo"`
	}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		s.Error = "model response is not valid JSON: " + err.Error()
		s.MissingSections = append([]string(nil), RequiredSummarySections...)
		return s
	}

	s.Summary = decoded.Summary
	s.Outline = decoded.Outline
	if decoded.KeyPoints != nil {
		s.KeyPoints = decoded.KeyPoints
	}
	if decoded.QA != nil {
		s.QA = decoded.QA
	}
	s.Todo = decoded.Todo

	if s.Summary == "" {
		s.MissingSections = append(s.MissingSections, "summary")
	}
	if s.Outline == "" {
		s.MissingSections = append(s.MissingSections, "outline")
	}
	if len(s.KeyPoints) == 0 {
		s.MissingSections = append(s.MissingSections, "keyPoints")
	}
	if len(s.QA) == 0 {
		s.MissingSections = append(s.MissingSections, "qa")
	}

	s.IsValid = len(s.MissingSections) == 0
	return s
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return raw
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
}
