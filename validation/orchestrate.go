package validation

import (
	"sort"

	"github.com/c360studio/sparqlassist/schema"
	"github.com/c360studio/sparqlassist/sparql"
)

// QueryValidationOutput is the result of validating one query. Errors is an
// ordered list: parse errors first, then schema issues sorted per endpoint
// partition. FixedQuery is set when prefix repair changed the query text.
type QueryValidationOutput struct {
	OriginalQuery string   `json:"original_query"`
	EndpointURL   string   `json:"endpoint_url,omitempty"`
	FixedQuery    string   `json:"fixed_query,omitempty"`
	Errors        []string `json:"errors"`
}

// Valid reports whether the query passed with no issues.
func (o QueryValidationOutput) Valid() bool {
	return len(o.Errors) == 0
}

// ValidateQuery parses query, auto-repairs unknown-prefix failures from
// prefixes, and when the parse succeeds and an endpoint is known, runs the
// decomposer and schema validator over every endpoint partition for which
// schemas carries a dictionary. Partitions without a schema are skipped,
// not flagged: missing metadata must not read as a broken query.
//
// Any parse failure other than unknown prefixes short-circuits schema
// checking, because the algebra tree cannot be trusted.
func ValidateQuery(query, endpointURL string, prefixes schema.PrefixMap, schemas schema.EndpointsDict) QueryValidationOutput {
	out := QueryValidationOutput{OriginalQuery: query, EndpointURL: endpointURL}

	parsed, err := sparql.Parse(query)
	if err != nil {
		if sparql.IsUnknownPrefix(err) && len(prefixes) > 0 {
			if fixed := sparql.AddMissingPrefixes(query, prefixes); fixed != query {
				out.FixedQuery = fixed
				parsed, err = sparql.Parse(fixed)
			}
		}
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			return out
		}
	}

	if endpointURL == "" {
		return out
	}

	index := Decompose(parsed, endpointURL)
	endpoints := make([]string, 0, len(index))
	for ep := range index {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	v := &SchemaValidator{}
	for _, ep := range endpoints {
		dict, known := schemas[ep]
		if !known {
			continue
		}
		out.Errors = append(out.Errors, v.Validate(index[ep], dict)...)
	}
	return out
}

// ValidateMessage extracts every fenced SPARQL block from markdown text and
// validates each one that has both a non-empty body and an endpoint
// annotation. Blocks without an endpoint are silently skipped: there is
// nothing to validate them against.
func ValidateMessage(text string, prefixes schema.PrefixMap, schemas schema.EndpointsDict) []QueryValidationOutput {
	var results []QueryValidationOutput
	for _, q := range sparql.ExtractQueries(text) {
		if q.Query == "" || q.Endpoint == "" {
			continue
		}
		results = append(results, ValidateQuery(q.Query, q.Endpoint, prefixes, schemas))
	}
	return results
}
