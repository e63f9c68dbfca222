package sparql

import (
	"regexp"
	"strings"
)

// Pre-compiled regex patterns for query extraction from markdown.
var (
	// fencedQueryPattern matches fenced code blocks tagged as sparql.
	fencedQueryPattern = regexp.MustCompile("(?si)```sparql[ \t]*\r?\n(.*?)```")
	// endpointCommentPattern matches the endpoint annotation comment
	// `#+ endpoint: <URL>` at the start of a line.
	endpointCommentPattern = regexp.MustCompile(`^#\+\s*endpoint:[ \t]*(\S+)`)
)

// ExtractedQuery is one SPARQL query pulled out of free-form text, together
// with the endpoint its fenced block declares. Endpoint is empty when the
// block carries no annotation.
type ExtractedQuery struct {
	Query    string `json:"query"`
	Endpoint string `json:"endpoint_url,omitempty"`
}

// ExtractQueries returns every fenced ```sparql block found in text.
// The endpoint is read from a single leading-line comment of the exact form
// `#+ endpoint: <URL>` inside the block; the annotation stays part of the
// query text so downstream consumers can re-render the block unchanged.
func ExtractQueries(text string) []ExtractedQuery {
	matches := fencedQueryPattern.FindAllStringSubmatch(text, -1)
	out := make([]ExtractedQuery, 0, len(matches))
	for _, m := range matches {
		body := strings.TrimSpace(m[1])
		q := ExtractedQuery{Query: body}
		firstLine, _, _ := strings.Cut(body, "\n")
		if em := endpointCommentPattern.FindStringSubmatch(strings.TrimSpace(firstLine)); em != nil {
			q.Endpoint = em[1]
		}
		out = append(out, q)
	}
	return out
}
