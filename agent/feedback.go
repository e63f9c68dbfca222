package agent

import (
	"fmt"
	"strings"

	"github.com/c360studio/sparqlassist/validation"
)

// FormatFeedback renders validation failures as a correction instruction
// for the next model attempt. Returns "" when every query validated.
func FormatFeedback(results []validation.QueryValidationOutput) string {
	var failed []validation.QueryValidationOutput
	for _, r := range results {
		if !r.Valid() {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Validation Failed\n\n")
	sb.WriteString("The generated SPARQL did not validate against the endpoint schemas.\n\n")

	for _, r := range failed {
		fmt.Fprintf(&sb, "### Query for %s\n\n", r.EndpointURL)
		for _, issue := range r.Errors {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Please regenerate the queries addressing these issues. ")
	sb.WriteString("Keep the same fenced block format and endpoint annotations.\n")

	return sb.String()
}
