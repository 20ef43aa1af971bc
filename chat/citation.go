package chat

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/sourcebook"
)

var (
	markerPattern = regexp.MustCompile(`\[(\d+)\]`)

	// Straight or curly double quotes around a span long enough to be a
	// deliberate quotation rather than an emphasized word.
	quotePattern = regexp.MustCompile(`["\x{201c}]([^"\x{201c}\x{201d}]{12,400})["\x{201d}]`)
)

// ExtractCitations derives citations from an answer over its numbered
// context sources. Bracketed [n] markers map to the source at position n;
// quoted spans are located by substring search in the candidate sources'
// content and stored verbatim as SearchText so a viewer can find the span
// again. Markers out of range and quotes that match no source are ignored.
func ExtractCitations(answer string, sources []*sourcebook.Source) []sourcebook.Citation {
	if len(sources) == 0 {
		return nil
	}

	var citations []sourcebook.Citation
	cited := make(map[int]int)

	for _, m := range markerPattern.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(sources) {
			continue
		}
		idx := n - 1
		if _, ok := cited[idx]; ok {
			continue
		}
		cited[idx] = len(citations)
		citations = append(citations, sourcebook.Citation{
			SourceID: sources[idx].ID,
			Title:    sources[idx].Name,
		})
	}

	seen := make(map[string]bool)
	for _, m := range quotePattern.FindAllStringSubmatch(answer, -1) {
		quote := strings.TrimSpace(m[1])
		if quote == "" || seen[quote] {
			continue
		}
		seen[quote] = true

		idx := locateQuote(quote, sources, cited)
		if idx < 0 {
			continue
		}
		if ci, ok := cited[idx]; ok && citations[ci].Quote == "" {
			citations[ci].Quote = quote
			citations[ci].SearchText = quote
			continue
		}
		citations = append(citations, sourcebook.Citation{
			SourceID:   sources[idx].ID,
			Title:      sources[idx].Name,
			Quote:      quote,
			SearchText: quote,
		})
	}

	return citations
}

// locateQuote finds the source containing the quote, preferring sources the
// answer already cites by number. Returns -1 when no source contains it.
func locateQuote(quote string, sources []*sourcebook.Source, cited map[int]int) int {
	found := -1
	for i, src := range sources {
		if !strings.Contains(src.Content, quote) {
			continue
		}
		if _, ok := cited[i]; ok {
			return i
		}
		if found < 0 {
			found = i
		}
	}
	return found
}
