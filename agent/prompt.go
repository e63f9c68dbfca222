package agent

import (
	"fmt"
	"strings"

	"github.com/c360studio/sparqlassist/corpus"
	"github.com/c360studio/sparqlassist/endpoints"
)

// systemPrompt instructs the model on the answer protocol. The fenced block
// tag and the endpoint annotation are load-bearing: extraction, validation
// and downstream execution all key off them.
const systemPrompt = `You are an expert in bioinformatics SPARQL endpoints.
Answer the user's question by writing one or more SPARQL queries.

Rules:
- Put every query in a fenced code block tagged sparql.
- The first line inside each block must be a comment of the exact form:
  #+ endpoint: <URL>
  naming the endpoint the query runs against, chosen from the list below.
- Declare every prefix the query uses.
- Prefer a single federated query with SERVICE clauses when the question
  spans endpoints.
- Briefly explain what each query does.`

// buildMessages assembles the prompt for one question from the endpoint
// catalog and the retrieved documentation.
func buildMessages(question string, eps []endpoints.Endpoint, hits []corpus.Hit) (system, user string) {
	var sb strings.Builder

	sb.WriteString("Available endpoints:\n\n")
	for _, ep := range eps {
		fmt.Fprintf(&sb, "- %s: %s", ep.Name, ep.URL)
		if ep.Description != "" {
			fmt.Fprintf(&sb, " — %s", ep.Description)
		}
		sb.WriteString("\n")
	}

	if len(hits) > 0 {
		sb.WriteString("\nRelevant documentation and examples:\n\n")
		for _, hit := range hits {
			fmt.Fprintf(&sb, "## %s\n", hit.Document.Title)
			if hit.Document.Endpoint != "" {
				fmt.Fprintf(&sb, "(endpoint: %s)\n", hit.Document.Endpoint)
			}
			sb.WriteString(truncate(hit.Document.Body, maxDocumentChars))
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)

	return systemPrompt, sb.String()
}

// maxDocumentChars caps how much of one retrieved document enters the
// prompt.
const maxDocumentChars = 4000

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n[truncated]"
}
