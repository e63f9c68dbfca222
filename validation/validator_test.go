package validation

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/c360studio/sparqlassist/schema"
	"github.com/c360studio/sparqlassist/sparql"
)

const (
	exA = "http://example.org/A"
	exB = "http://example.org/B"
	exP = "http://example.org/p"
	exQ = "http://example.org/q"
	exR = "http://example.org/r"

	xsdString = "http://www.w3.org/2001/XMLSchema#string"
)

// chainSchema is {A: {p: [B]}, B: {q: [xsd:string]}}.
func chainSchema() schema.Dict {
	d := make(schema.Dict)
	d.Add(exA, exP, exB)
	d.Add(exB, exQ, xsdString)
	return d
}

func validate(t *testing.T, query string, dict schema.Dict) []string {
	t.Helper()
	index := decompose(t, query)
	v := &SchemaValidator{}
	return v.Validate(index[testEndpoint], dict)
}

func TestValidateTypeInferencePropagation(t *testing.T) {
	query := `
		PREFIX ex: <http://example.org/>
		SELECT ?y WHERE { ?x a ex:A ; ex:p ?y . ?y ex:q "v" . }`

	issues := validate(t, query, chainSchema())
	if len(issues) != 0 {
		t.Errorf("valid query produced issues: %v", issues)
	}
}

func TestValidateInferredTypeViolation(t *testing.T) {
	query := `
		PREFIX ex: <http://example.org/>
		SELECT ?y WHERE { ?x a ex:A ; ex:p ?y . ?y ex:r "v" . }`

	issues := validate(t, query, chainSchema())
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want exactly 1: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "<"+exB+">") {
		t.Errorf("issue does not name inferred class B: %s", issues[0])
	}
	if !strings.Contains(issues[0], "<"+exR+">") {
		t.Errorf("issue does not name offending predicate: %s", issues[0])
	}
}

func TestValidateUnknownClass(t *testing.T) {
	query := `
		PREFIX ex: <http://example.org/>
		SELECT ?x WHERE { ?x a ex:Nope ; ex:p ?y . }`

	issues := validate(t, query, chainSchema())
	if len(issues) == 0 {
		t.Fatal("expected an unknown-class issue")
	}
	found := false
	for _, issue := range issues {
		if strings.Contains(issue, "not in the endpoint schema") &&
			strings.Contains(issue, "<"+exA+">") && strings.Contains(issue, "<"+exB+">") {
			found = true
		}
	}
	if !found {
		t.Errorf("no issue enumerating known classes: %v", issues)
	}
}

func TestValidateUnsupportedPredicateOnTypedSubject(t *testing.T) {
	query := `
		PREFIX ex: <http://example.org/>
		SELECT ?x WHERE { ?x a ex:A ; ex:r ?y . }`

	issues := validate(t, query, chainSchema())
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "<"+exR+">") || !strings.Contains(issues[0], "<"+exP+">") {
		t.Errorf("issue should name used and allowed predicates: %s", issues[0])
	}
}

func TestValidateEmptySchemaYieldsNoIssues(t *testing.T) {
	queries := []string{
		`PREFIX ex: <http://example.org/> SELECT ?x WHERE { ?x a ex:Whatever ; ex:anything ?y . }`,
		`SELECT ?s WHERE { ?s ?p ?o . }`,
	}
	for _, q := range queries {
		if issues := validate(t, q, make(schema.Dict)); len(issues) != 0 {
			t.Errorf("empty schema produced issues for %q: %v", q, issues)
		}
	}
}

func TestValidateUntypedRootLeftUnvalidated(t *testing.T) {
	// no rdf:type and no parent context: deliberately unchecked
	query := `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE { ?s ex:bogus ?o . }`
	if issues := validate(t, query, chainSchema()); len(issues) != 0 {
		t.Errorf("untyped root subject was validated: %v", issues)
	}
}

func TestValidateIdempotentAndOrderIndependent(t *testing.T) {
	query := `
		PREFIX ex: <http://example.org/>
		SELECT ?y WHERE {
			?x a ex:A ; ex:r ?y ; ex:bad2 ?z .
			?w a ex:Nope .
		}`

	first := validate(t, query, chainSchema())
	second := validate(t, query, chainSchema())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("issue sets differ across runs:\n%v\n%v", first, second)
	}
	if len(first) == 0 {
		t.Fatal("expected issues")
	}
	// repeated violations of the same kind dedupe to one issue each
	seen := make(map[string]int)
	for _, issue := range first {
		seen[issue]++
	}
	for issue, n := range seen {
		if n > 1 {
			t.Errorf("issue emitted %d times: %s", n, issue)
		}
	}
}

func TestValidateCyclicReferences(t *testing.T) {
	// A.p reaches B, B.q reaches A: the untyped chain ?y -> ?z -> ?y
	// cycles forever without visited-pair tracking.
	d := make(schema.Dict)
	d.Add(exA, exP, exB)
	d.Add(exB, exQ, exA)

	query := `
		PREFIX ex: <http://example.org/>
		SELECT ?y WHERE { ?x a ex:A ; ex:p ?y . ?y ex:q ?z . ?z ex:p ?y . }`

	issues := validate(t, query, d)
	if len(issues) != 0 {
		t.Errorf("cyclic but schema-valid query produced issues: %v", issues)
	}
}

func TestValidateRecursionCeiling(t *testing.T) {
	d := make(schema.Dict)
	d.Add(exA, exP, exB)
	d.Add(exB, exP, exB)

	var sb strings.Builder
	sb.WriteString("PREFIX ex: <http://example.org/>\nSELECT ?v0 WHERE { ?v0 a ex:A ")
	const n = 12
	for i := 0; i < n; i++ {
		sb.WriteString(". ?v")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(" ex:p ?v")
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(" ")
	}
	sb.WriteString("}")

	index := decompose(t, sb.String())
	v := &SchemaValidator{MaxDepth: 5}
	issues := v.Validate(index[testEndpoint], d)
	found := false
	for _, issue := range issues {
		if strings.Contains(issue, "recursion limit exceeded") {
			found = true
		}
	}
	if !found {
		t.Errorf("depth ceiling not surfaced as an issue: %v", issues)
	}
}

func TestValidateVariableTypeSkipped(t *testing.T) {
	// rdf:type with a variable object says nothing checkable
	query := `SELECT ?x WHERE { ?x a ?cls . }`
	if issues := validate(t, query, chainSchema()); len(issues) != 0 {
		t.Errorf("variable class produced issues: %v", issues)
	}
}

func TestValidateAlternativePathAnyBranchSuffices(t *testing.T) {
	// p|r expands to independent candidate edges; the branch the schema
	// cannot support is flagged on a typed subject.
	query := `
		PREFIX ex: <http://example.org/>
		SELECT ?y WHERE { ?x a ex:A ; ex:p|ex:r ?y . }`
	issues := validate(t, query, chainSchema())
	if len(issues) != 1 {
		t.Errorf("got %d issues, want 1 for the unsupported branch: %v", len(issues), issues)
	}
}

// direct SubjectPatterns construction keeps validator tests independent of
// the parser
func TestValidateHandcraftedPatterns(t *testing.T) {
	patterns := SubjectPatterns{
		"?x": {
			sparql.RDFType: {exA},
			exP:            {"?y"},
		},
		"?y": {
			exQ: {"value"},
		},
	}
	v := &SchemaValidator{}
	if issues := v.Validate(patterns, chainSchema()); len(issues) != 0 {
		t.Errorf("handcrafted valid patterns produced issues: %v", issues)
	}
}
