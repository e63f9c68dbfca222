package validation

import (
	"testing"

	"github.com/c360studio/sparqlassist/sparql"
)

const testEndpoint = "https://sparql.uniprot.org/sparql"

func decompose(t *testing.T, query string) TriplePatternIndex {
	t.Helper()
	q, err := sparql.Parse(query)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return Decompose(q, testEndpoint)
}

func TestDecomposeSequencePath(t *testing.T) {
	index := decompose(t, `
		PREFIX ex: <http://example.org/>
		SELECT ?o WHERE { ?s ex:a/ex:b/ex:c ?o . }`)

	patterns := index[testEndpoint]
	if len(patterns) != 3 {
		t.Fatalf("got %d subjects, want 3 (?s plus 2 synthetic)", len(patterns))
	}
	total := 0
	for _, preds := range patterns {
		for _, objs := range preds {
			total += len(objs)
		}
	}
	if total != 3 {
		t.Errorf("got %d triples, want 3", total)
	}
	if _, ok := patterns["?pathVar1"]; !ok {
		t.Error("missing synthetic subject ?pathVar1")
	}
	if _, ok := patterns["?pathVar2"]; !ok {
		t.Error("missing synthetic subject ?pathVar2")
	}
	if objs := patterns["?s"]["http://example.org/a"]; len(objs) != 1 || objs[0] != "?pathVar1" {
		t.Errorf("chain start = %v, want [?pathVar1]", objs)
	}
	if objs := patterns["?pathVar2"]["http://example.org/c"]; len(objs) != 1 || objs[0] != "?o" {
		t.Errorf("chain end = %v, want [?o]", objs)
	}
}

func TestDecomposeAlternativePath(t *testing.T) {
	index := decompose(t, `
		PREFIX ex: <http://example.org/>
		SELECT ?o WHERE { ?s ex:p|ex:q ?o . }`)

	preds := index[testEndpoint]["?s"]
	if len(preds) != 2 {
		t.Fatalf("got %d candidate edges, want 2", len(preds))
	}
	for _, p := range []string{"http://example.org/p", "http://example.org/q"} {
		if objs := preds[p]; len(objs) != 1 || objs[0] != "?o" {
			t.Errorf("edge %s = %v, want [?o]", p, objs)
		}
	}
}

func TestDecomposeQuantifiedAndInversePaths(t *testing.T) {
	index := decompose(t, `
		PREFIX ex: <http://example.org/>
		SELECT ?o WHERE { ?s ex:broader* ?o . ?s ^ex:child ?parent . }`)

	patterns := index[testEndpoint]
	// the quantifier constrains reachability, not the schema edge
	if objs := patterns["?s"]["http://example.org/broader"]; len(objs) != 1 || objs[0] != "?o" {
		t.Errorf("quantified path = %v, want base predicate edge", objs)
	}
	// inverse swaps subject and object
	if objs := patterns["?parent"]["http://example.org/child"]; len(objs) != 1 || objs[0] != "?s" {
		t.Errorf("inverse path = %v, want [?s] under ?parent", objs)
	}
}

func TestDecomposeFederationPartitioning(t *testing.T) {
	index := decompose(t, `
		PREFIX up: <http://purl.uniprot.org/core/>
		SELECT ?p WHERE {
			?p a up:Protein .
			SERVICE <https://sparql.rhea-db.org/sparql> { ?r ?rp ?ro . }
			SERVICE <https://sparql.omabrowser.org/sparql> { ?g ?gp ?go . }
		}`)

	if len(index) != 3 {
		t.Fatalf("got %d endpoint partitions, want 3", len(index))
	}
	for _, ep := range []string{
		testEndpoint,
		"https://sparql.rhea-db.org/sparql",
		"https://sparql.omabrowser.org/sparql",
	} {
		if _, ok := index[ep]; !ok {
			t.Errorf("missing partition for %s", ep)
		}
	}
	if len(index["https://sparql.rhea-db.org/sparql"]) != 1 {
		t.Error("rhea partition holds foreign triples")
	}
	if _, ok := index[testEndpoint]["?r"]; ok {
		t.Error("ambient partition holds SERVICE triples")
	}
}

func TestDecomposeWalksAllOperators(t *testing.T) {
	index := decompose(t, `
		PREFIX ex: <http://example.org/>
		SELECT ?s WHERE {
			{ ?s ex:p ?a } UNION { ?s ex:q ?b }
			OPTIONAL { ?s ex:opt ?c }
			MINUS { ?s ex:neg ?d }
			GRAPH ?g { ?s ex:in ?e }
			FILTER (bound(?a))
			{ SELECT ?s WHERE { ?s ex:sub ?f } LIMIT 5 }
		}`)

	preds := index[testEndpoint]["?s"]
	for _, p := range []string{"p", "q", "opt", "neg", "in", "sub"} {
		if _, ok := preds["http://example.org/"+p]; !ok {
			t.Errorf("predicate ex:%s not indexed", p)
		}
	}
}

func TestDecomposeVariablePredicate(t *testing.T) {
	index := decompose(t, `SELECT ?s WHERE { ?s ?p ?o . }`)
	if objs := index[testEndpoint]["?s"]["?p"]; len(objs) != 1 || objs[0] != "?o" {
		t.Errorf("variable predicate = %v, want [?o] under ?p", objs)
	}
}

func TestDecomposeNoCrossQueryState(t *testing.T) {
	query := `PREFIX ex: <http://example.org/>
		SELECT ?o WHERE { ?s ex:a/ex:b ?o . }`
	first := decompose(t, query)
	second := decompose(t, query)
	// synthetic variable numbering restarts per decomposition
	for _, index := range []TriplePatternIndex{first, second} {
		if _, ok := index[testEndpoint]["?pathVar1"]; !ok {
			t.Error("synthetic numbering did not restart at 1")
		}
	}
}
