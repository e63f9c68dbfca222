package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/sparqlassist/schema"
	"github.com/c360studio/sparqlassist/sparql"
)

// DefaultMaxDepth bounds the type-inference recursion. Visited-pair
// tracking terminates reference cycles precisely; the depth ceiling is a
// backstop against pathological inputs and degrades to an issue string
// rather than an error.
const DefaultMaxDepth = 500

// SchemaValidator checks one endpoint partition of a TriplePatternIndex
// against that endpoint's schema dictionary. The zero value is ready to use.
type SchemaValidator struct {
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

// Validate walks the subject patterns against dict and returns the
// deduplicated issue set in sorted order. An empty dict yields no issues:
// absent schema metadata must not produce false positives.
func (v *SchemaValidator) Validate(patterns SubjectPatterns, dict schema.Dict) []string {
	if len(dict) == 0 || len(patterns) == 0 {
		return nil
	}
	maxDepth := v.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	c := &checker{
		patterns: patterns,
		dict:     dict,
		maxDepth: maxDepth,
		issues:   make(map[string]struct{}),
		visited:  make(map[string]struct{}),
	}

	subjects := make([]string, 0, len(patterns))
	for s := range patterns {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	for _, subject := range subjects {
		if types := c.declaredTypes(subject); len(types) > 0 {
			c.checkTyped(subject, types)
		}
		// untyped subjects with no parent context are left unvalidated:
		// a spot-check against an incomplete schema would be noise
	}

	out := make([]string, 0, len(c.issues))
	for issue := range c.issues {
		out = append(out, issue)
	}
	sort.Strings(out)
	return out
}

type checker struct {
	patterns SubjectPatterns
	dict     schema.Dict
	maxDepth int
	issues   map[string]struct{}
	visited  map[string]struct{}
}

func (c *checker) addIssue(format string, args ...any) {
	c.issues[fmt.Sprintf(format, args...)] = struct{}{}
}

// declaredTypes returns the non-variable rdf:type objects of subject.
func (c *checker) declaredTypes(subject string) []string {
	var types []string
	for _, obj := range c.patterns[subject][sparql.RDFType] {
		if !isVarToken(obj) {
			types = append(types, obj)
		}
	}
	return types
}

func (c *checker) hasDeclaredType(subject string) bool {
	_, ok := c.patterns[subject][sparql.RDFType]
	return ok
}

// checkTyped validates a subject whose rdf:type is stated in the query.
// Every schema-confirmed edge propagates type knowledge into variable
// objects, which are checked recursively as untyped subjects.
func (c *checker) checkTyped(subject string, types []string) {
	for _, class := range types {
		classPreds, known := c.dict[class]
		if !known {
			c.addIssue("subject %s uses class <%s> which is not in the endpoint schema; known classes: %s",
				subject, class, formatIRIList(c.dict.Classes()))
			continue
		}
		for _, pred := range sortedPredicates(c.patterns[subject]) {
			if pred == sparql.RDFType || isVarToken(pred) {
				continue
			}
			if _, allowed := classPreds[pred]; !allowed {
				c.addIssue("subject %s with class <%s> uses predicate <%s> which the schema does not allow; allowed predicates: %s",
					subject, class, pred, formatIRIKeys(classPreds))
				continue
			}
			for _, obj := range c.patterns[subject][pred] {
				c.recurseObject(obj, class, pred, 1)
			}
		}
	}
}

// recurseObject follows a schema-confirmed edge into a variable object.
// Explicitly typed objects are validated by the top-level pass instead.
func (c *checker) recurseObject(obj, parentClass, parentPred string, depth int) {
	if !isVarToken(obj) {
		return
	}
	if _, present := c.patterns[obj]; !present {
		return
	}
	if c.hasDeclaredType(obj) {
		return
	}
	c.inferUntyped(obj, parentClass, parentPred, depth)
}

// inferUntyped type-checks a subject with no declared rdf:type using the
// candidate object classes the schema declares for the edge that reached
// it. The first candidate class whose allowed-predicate set covers every
// predicate the subject uses is accepted; candidate order follows the
// schema, with no tie-break priority.
func (c *checker) inferUntyped(subject, parentClass, parentPred string, depth int) {
	if depth > c.maxDepth {
		c.addIssue("recursion limit exceeded while inferring the type of %s", subject)
		return
	}
	visitKey := subject + "\x00" + parentClass
	if _, seen := c.visited[visitKey]; seen {
		return
	}
	c.visited[visitKey] = struct{}{}

	used := usedPredicates(c.patterns[subject])
	if len(used) == 0 {
		return
	}
	candidates := c.dict[parentClass][parentPred]

	var firstClass string
	for _, candidate := range candidates {
		candPreds, isClass := c.dict[candidate]
		if !isClass {
			// datatype range, nothing to infer from
			continue
		}
		if firstClass == "" {
			firstClass = candidate
		}
		if !coversAll(candPreds, used) {
			continue
		}
		for _, pred := range used {
			for _, obj := range c.patterns[subject][pred] {
				c.recurseObject(obj, candidate, pred, depth+1)
			}
		}
		return
	}
	if firstClass == "" {
		// no class candidates at all: nothing the schema can say
		return
	}

	var offending []string
	for _, pred := range used {
		if _, ok := c.dict[firstClass][pred]; !ok {
			offending = append(offending, "<"+pred+">")
		}
	}
	c.addIssue("subject %s uses predicate(s) %s not allowed for its inferred class <%s> (reached via <%s> -> <%s>); did you mean one of: %s?",
		subject, strings.Join(offending, ", "), firstClass, parentClass, parentPred,
		formatIRIKeys(c.dict[firstClass]))
}

func isVarToken(tok string) bool {
	return strings.HasPrefix(tok, "?")
}

// usedPredicates returns the sorted non-variable predicates of one subject.
func usedPredicates(preds map[string][]string) []string {
	out := make([]string, 0, len(preds))
	for p := range preds {
		if p == sparql.RDFType || isVarToken(p) {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func sortedPredicates(preds map[string][]string) []string {
	out := make([]string, 0, len(preds))
	for p := range preds {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func coversAll(allowed map[string][]string, used []string) bool {
	for _, p := range used {
		if _, ok := allowed[p]; !ok {
			return false
		}
	}
	return true
}

func formatIRIList(iris []string) string {
	sorted := make([]string, len(iris))
	copy(sorted, iris)
	sort.Strings(sorted)
	for i, iri := range sorted {
		sorted[i] = "<" + iri + ">"
	}
	return strings.Join(sorted, ", ")
}

func formatIRIKeys(m map[string][]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return formatIRIList(keys)
}
