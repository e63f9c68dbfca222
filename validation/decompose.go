// Package validation checks generated SPARQL queries against per-endpoint
// VoID-derived schemas. It decomposes a parsed query into its triple
// patterns (expanding property paths and re-rooting federated SERVICE
// blocks), then walks the patterns against the schema, inferring the type
// of untyped variables along schema-confirmed edges and reporting every
// violation as a correction the agent can feed back to the model.
package validation

import (
	"fmt"

	"github.com/c360studio/sparqlassist/sparql"
)

// SubjectPatterns indexes the triple patterns of one endpoint partition:
// subject token → predicate token → object tokens. Tokens are "?name" for
// variables and the plain IRI or lexical form otherwise.
type SubjectPatterns map[string]map[string][]string

// TriplePatternIndex partitions a query's triple patterns by target
// endpoint. The ambient endpoint holds everything outside SERVICE blocks;
// each SERVICE endpoint holds the triples delegated to it. The index is
// built fresh per query and discarded after validation.
type TriplePatternIndex map[string]SubjectPatterns

// Decompose flattens a parsed query into a TriplePatternIndex rooted at
// defaultEndpoint. Property paths are approximated as schema edges:
// quantified paths collapse to their base path, sequence paths chain fresh
// ?pathVar<k> variables, alternative paths emit one candidate triple per
// branch, and inverse paths swap subject and object. Negated property sets
// constrain absent edges and contribute nothing.
func Decompose(q *sparql.Query, defaultEndpoint string) TriplePatternIndex {
	d := &decomposer{index: make(TriplePatternIndex)}
	d.walk(q.Pattern, defaultEndpoint)
	return d.index
}

type decomposer struct {
	index TriplePatternIndex
	pathN int
}

func (d *decomposer) walk(node sparql.Node, endpoint string) {
	switch n := node.(type) {
	case nil:
	case *sparql.BGP:
		for _, t := range n.Triples {
			d.expand(endpoint, t.Subject, t.Predicate, t.Object)
		}
	case *sparql.Join:
		d.walk(n.Left, endpoint)
		d.walk(n.Right, endpoint)
	case *sparql.LeftJoin:
		d.walk(n.Left, endpoint)
		d.walk(n.Right, endpoint)
	case *sparql.Union:
		d.walk(n.Left, endpoint)
		d.walk(n.Right, endpoint)
	case *sparql.Minus:
		d.walk(n.Left, endpoint)
		d.walk(n.Right, endpoint)
	case *sparql.Filter:
		// FILTER [NOT] EXISTS patterns are quantified, not asserted;
		// only the filtered input is indexed.
		d.walk(n.Input, endpoint)
	case *sparql.Graph:
		d.walk(n.Input, endpoint)
	case *sparql.Service:
		d.walk(n.Input, n.Endpoint.Token())
	case *sparql.SubSelect:
		d.walk(n.Input, endpoint)
	}
}

func (d *decomposer) expand(endpoint string, s sparql.Term, p sparql.Path, o sparql.Term) {
	switch pp := p.(type) {
	case *sparql.Link:
		d.add(endpoint, s.Token(), pp.IRI, o.Token())
	case *sparql.VarPred:
		d.add(endpoint, s.Token(), "?"+pp.Name, o.Token())
	case *sparql.Seq:
		cur := s
		for i, part := range pp.Parts {
			next := o
			if i < len(pp.Parts)-1 {
				d.pathN++
				next = sparql.Var(fmt.Sprintf("pathVar%d", d.pathN))
			}
			d.expand(endpoint, cur, part, next)
			cur = next
		}
	case *sparql.Alt:
		for _, part := range pp.Parts {
			d.expand(endpoint, s, part, o)
		}
	case *sparql.Inverse:
		d.expand(endpoint, o, pp.Path, s)
	case *sparql.ZeroOrMore:
		// the quantifier bounds reachability depth, not the schema edge
		d.expand(endpoint, s, pp.Path, o)
	case *sparql.OneOrMore:
		d.expand(endpoint, s, pp.Path, o)
	case *sparql.ZeroOrOne:
		d.expand(endpoint, s, pp.Path, o)
	case *sparql.Negated:
	}
}

func (d *decomposer) add(endpoint, subject, predicate, object string) {
	subjects, ok := d.index[endpoint]
	if !ok {
		subjects = make(SubjectPatterns)
		d.index[endpoint] = subjects
	}
	preds, ok := subjects[subject]
	if !ok {
		preds = make(map[string][]string)
		subjects[subject] = preds
	}
	preds[predicate] = append(preds[predicate], object)
}
