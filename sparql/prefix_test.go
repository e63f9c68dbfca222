package sparql

import (
	"strings"
	"testing"
)

var repairPrefixes = map[string]string{
	"up":   "http://purl.uniprot.org/core/",
	"rh":   "http://rdf.rhea-db.org/",
	"xsd":  "http://www.w3.org/2001/XMLSchema#",
	"http": "http://should-never-match.example/",
}

func TestAddMissingPrefixes(t *testing.T) {
	query := "SELECT ?p WHERE { ?p a up:Protein ; up:reviewed true . }"
	fixed := AddMissingPrefixes(query, repairPrefixes)

	if !strings.Contains(fixed, "PREFIX up: <http://purl.uniprot.org/core/>") {
		t.Errorf("missing up declaration:\n%s", fixed)
	}
	if strings.Contains(fixed, "PREFIX rh:") {
		t.Error("rh is not referenced and must not be declared")
	}
	if strings.Count(fixed, "PREFIX up:") != 1 {
		t.Error("up declared more than once")
	}
}

func TestAddMissingPrefixesFixedPoint(t *testing.T) {
	queries := []string{
		"SELECT ?p WHERE { ?p a up:Protein . }",
		"PREFIX up: <http://purl.uniprot.org/core/>\nSELECT ?p WHERE { ?p a up:Protein . }",
		"SELECT ?s WHERE { ?s ?p ?o }",
	}
	for _, q := range queries {
		once := AddMissingPrefixes(q, repairPrefixes)
		twice := AddMissingPrefixes(once, repairPrefixes)
		if once != twice {
			t.Errorf("repair is not idempotent for %q:\nonce:  %s\ntwice: %s", q, once, twice)
		}
	}
}

func TestAddMissingPrefixesPreservesLeadingComment(t *testing.T) {
	query := "#+ endpoint: https://sparql.uniprot.org/sparql\nSELECT ?p WHERE { ?p a up:Protein . }"
	fixed := AddMissingPrefixes(query, repairPrefixes)

	lines := strings.Split(fixed, "\n")
	if !strings.HasPrefix(lines[0], "#+ endpoint:") {
		t.Errorf("endpoint annotation no longer first line:\n%s", fixed)
	}
	if !strings.HasPrefix(lines[1], "PREFIX up:") {
		t.Errorf("declaration not inserted after the comment:\n%s", fixed)
	}
}

func TestAddMissingPrefixesDoesNotMatchInsideIRIs(t *testing.T) {
	// http: occurs inside every absolute IRI; a prefix named http must
	// not be dragged in by those
	query := "SELECT ?s WHERE { ?s <http://example.org/p> ?o }"
	fixed := AddMissingPrefixes(query, repairPrefixes)
	if strings.Contains(fixed, "PREFIX http:") {
		t.Errorf("matched prefix token inside an IRI:\n%s", fixed)
	}
}

func TestAddMissingPrefixesCannotFixWrongPrefix(t *testing.T) {
	// a declared-but-wrong namespace is out of scope for a textual repair
	query := "PREFIX up: <http://wrong.example/>\nSELECT ?p WHERE { ?p a up:Protein . }"
	if fixed := AddMissingPrefixes(query, repairPrefixes); fixed != query {
		t.Errorf("textual repair must not touch declared prefixes:\n%s", fixed)
	}
}

func TestAddMissingPrefixesEmptyMap(t *testing.T) {
	query := "SELECT ?p WHERE { ?p a up:Protein . }"
	if fixed := AddMissingPrefixes(query, nil); fixed != query {
		t.Error("nil prefix map changed the query")
	}
}
