package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/sparqlassist/schema"
)

func testPrefixes() schema.PrefixMap {
	return schema.PrefixMap{
		"up":  "http://purl.uniprot.org/core/",
		"ex":  "http://example.org/",
		"xsd": "http://www.w3.org/2001/XMLSchema#",
	}
}

func testSchemas() schema.EndpointsDict {
	return schema.EndpointsDict{testEndpoint: chainSchema()}
}

func TestValidateQueryPrefixRepair(t *testing.T) {
	query := "#+ endpoint: " + testEndpoint + "\nSELECT ?y WHERE { ?x a ex:A ; ex:p ?y . }"

	out := ValidateQuery(query, testEndpoint, testPrefixes(), testSchemas())
	require.Empty(t, out.Errors)
	require.NotEmpty(t, out.FixedQuery, "repaired query should be reported")
	assert.Contains(t, out.FixedQuery, "PREFIX ex: <http://example.org/>")
	// the endpoint annotation stays the first line
	assert.True(t, strings.HasPrefix(out.FixedQuery, "#+ endpoint:"))
}

func TestValidateQueryRepairFixedPoint(t *testing.T) {
	query := "SELECT ?y WHERE { ?x a ex:A ; ex:p ?y . }"
	out := ValidateQuery(query, testEndpoint, testPrefixes(), testSchemas())
	require.Empty(t, out.Errors)

	again := ValidateQuery(out.FixedQuery, testEndpoint, testPrefixes(), testSchemas())
	assert.Empty(t, again.Errors)
	assert.Empty(t, again.FixedQuery, "repairing a repaired query must be a no-op")
}

func TestValidateQuerySyntaxErrorShortCircuits(t *testing.T) {
	out := ValidateQuery("SELECT ?s WHERE { ?s ?p", testEndpoint, testPrefixes(), testSchemas())
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "parse error")
	assert.Empty(t, out.FixedQuery)
}

func TestValidateQueryUnrepairablePrefix(t *testing.T) {
	// prefix not present in the map: the unknown-prefix error surfaces
	out := ValidateQuery("SELECT ?s WHERE { ?s a nope:Thing . }", testEndpoint, testPrefixes(), testSchemas())
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "unknown prefix")
	assert.Contains(t, out.Errors[0], "nope")
}

func TestValidateQueryNoSchemaSkipsValidation(t *testing.T) {
	query := `PREFIX ex: <http://example.org/>
		SELECT ?x WHERE { ?x a ex:Unknown ; ex:whatever ?y . }`
	out := ValidateQuery(query, "https://sparql.other.org/sparql", testPrefixes(), testSchemas())
	assert.Empty(t, out.Errors, "no schema for the endpoint: validation is skipped, not flagged")
}

func TestValidateQueryNoEndpoint(t *testing.T) {
	out := ValidateQuery("SELECT ?s WHERE { ?s ?p ?o }", "", testPrefixes(), testSchemas())
	assert.Empty(t, out.Errors)
}

func TestValidateQueryFederatedPartitions(t *testing.T) {
	rhea := "https://sparql.rhea-db.org/sparql"
	schemas := testSchemas()
	rheaDict := make(schema.Dict)
	rheaDict.Add(exA, exQ, xsdString)
	schemas[rhea] = rheaDict

	query := `PREFIX ex: <http://example.org/>
		SELECT ?x WHERE {
			?x a ex:A ; ex:p ?y .
			SERVICE <` + rhea + `> { ?r a ex:A ; ex:p ?z . }
		}`

	out := ValidateQuery(query, testEndpoint, testPrefixes(), schemas)
	// ambient partition is valid; the rhea partition rejects ex:p
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "?r")
}

func TestValidateMessageEndToEnd(t *testing.T) {
	msg := "Here are two candidate queries.\n\n" +
		"```sparql\n#+ endpoint: " + testEndpoint + "\n" +
		"PREFIX ex: <http://example.org/>\nSELECT ?y WHERE { ?x a ex:A ; ex:p ?y . }\n```\n\n" +
		"And one without an endpoint annotation:\n\n" +
		"```sparql\nSELECT ?s WHERE { ?s ?p ?o . }\n```\n"

	results := ValidateMessage(msg, testPrefixes(), testSchemas())
	require.Len(t, results, 1, "block without endpoint is silently skipped")
	assert.Equal(t, testEndpoint, results[0].EndpointURL)
	assert.Empty(t, results[0].Errors)
}

func TestValidateMessageCollectsIssues(t *testing.T) {
	msg := "```sparql\n#+ endpoint: " + testEndpoint + "\n" +
		"PREFIX ex: <http://example.org/>\nSELECT ?x WHERE { ?x a ex:A ; ex:r ?y . }\n```\n"

	results := ValidateMessage(msg, testPrefixes(), testSchemas())
	require.Len(t, results, 1)
	require.Len(t, results[0].Errors, 1)
	assert.Contains(t, results[0].Errors[0], "allowed predicates")
	assert.False(t, results[0].Valid())
}
