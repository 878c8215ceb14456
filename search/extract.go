package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Candidate is one discussion link pulled out of scraped page text.
type Candidate struct {
	ID      int
	Title   string
	URL     string
	Snippet string
}

// IDExtractor pulls candidate discussion ids out of unstructured scrape
// output. The matching strategy is best-effort; malformed matches are
// omitted, never errors.
type IDExtractor interface {
	Extract(text string) []Candidate
}

// itemLinkRe matches news.ycombinator.com item links, optionally wrapped in
// a markdown [title](url) link.
var itemLinkRe = regexp.MustCompile(`(?:\[([^\]\n]*)\]\(\s*)?https?://(?:www\.)?news\.ycombinator\.com/item\?id=(\d+)`)

// LinkExtractor is the default IDExtractor: a single regex pass over the
// page text, in document order.
type LinkExtractor struct{}

func (LinkExtractor) Extract(text string) []Candidate {
	matches := itemLinkRe.FindAllStringSubmatchIndex(text, -1)
	cands := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(text[m[4]:m[5]])
		if err != nil || id <= 0 {
			continue
		}
		var title string
		if m[2] >= 0 {
			title = strings.TrimSpace(text[m[2]:m[3]])
		}
		cands = append(cands, Candidate{
			ID:      id,
			Title:   title,
			URL:     fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id),
			Snippet: snippetAfter(text, m[1]),
		})
	}
	return cands
}

// snippetAfter returns the first non-empty, non-link line following the
// match, as a rough description of the result.
func snippetAfter(text string, pos int) string {
	rest := text[pos:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[i+1:]
	} else {
		return ""
	}
	for _, line := range strings.SplitN(rest, "\n", 6) {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "http") || strings.HasPrefix(line, "...") {
			continue
		}
		if len(line) > 200 {
			line = line[:197] + "..."
		}
		return line
	}
	return ""
}
