package sparql

import (
	"regexp"
	"sort"
	"strings"
)

// AddMissingPrefixes inserts a PREFIX declaration for every (prefix,
// namespace) pair in prefixes that the query references as a `prefix:` token
// but never declares. Declarations are inserted right after any leading
// single-line #-comments, so an endpoint annotation stays the first line.
//
// The repair is textual and idempotent: repairing an already repaired query
// is a no-op. It can only supply a missing prefix, never correct a wrong one.
func AddMissingPrefixes(query string, prefixes map[string]string) string {
	if len(prefixes) == 0 {
		return query
	}
	labels := make([]string, 0, len(prefixes))
	for label := range prefixes {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var missing []string
	for _, label := range labels {
		quoted := regexp.QuoteMeta(label)
		declared := regexp.MustCompile(`(?i)\bPREFIX\s+` + quoted + `:`)
		if declared.MatchString(query) {
			continue
		}
		// a use site is pfx: preceded by start of text or a non-name
		// character other than < (which would put it inside an IRI)
		used := regexp.MustCompile(`(?m)(^|[^<\w.:-])` + quoted + `:`)
		if !used.MatchString(query) {
			continue
		}
		missing = append(missing, "PREFIX "+label+": <"+prefixes[label]+">")
	}
	if len(missing) == 0 {
		return query
	}

	lines := strings.Split(query, "\n")
	insert := 0
	for insert < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[insert]), "#") {
		insert++
	}
	out := make([]string, 0, len(lines)+len(missing))
	out = append(out, lines[:insert]...)
	out = append(out, missing...)
	out = append(out, lines[insert:]...)
	return strings.Join(out, "\n")
}
