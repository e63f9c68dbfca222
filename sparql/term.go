package sparql

// Well-known IRIs used during parsing and validation.
const (
	RDFType  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFFirst = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	RDFRest  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	RDFNil   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
)

// TermKind distinguishes the kinds of RDF terms a triple position can hold.
type TermKind int

const (
	// TermVar is a query variable (?name or $name).
	TermVar TermKind = iota
	// TermIRI is an absolute IRI (prefixed names are resolved at parse time).
	TermIRI
	// TermLiteral is an RDF literal; Value holds the lexical form.
	TermLiteral
	// TermBlank is a blank node (labelled or synthesized for [] and collections).
	TermBlank
)

// Term is one position of a triple pattern.
type Term struct {
	Kind TermKind
	// Value is the variable name (without the leading ?), the absolute IRI,
	// the literal lexical form, or the blank node label.
	Value string
	// Datatype is the resolved datatype IRI for typed literals.
	Datatype string
	// Lang is the language tag for language-tagged literals.
	Lang string
}

// Var constructs a variable term.
func Var(name string) Term { return Term{Kind: TermVar, Value: name} }

// IRI constructs an IRI term.
func IRI(iri string) Term { return Term{Kind: TermIRI, Value: iri} }

// Literal constructs a plain literal term.
func Literal(value string) Term { return Term{Kind: TermLiteral, Value: value} }

// IsVar reports whether the term is a variable.
func (t Term) IsVar() bool { return t.Kind == TermVar }

// Token returns the canonical string token for this term: "?name" for
// variables, the absolute IRI for IRIs, the lexical form for literals and
// "_:label" for blank nodes.
func (t Term) Token() string {
	switch t.Kind {
	case TermVar:
		return "?" + t.Value
	case TermBlank:
		return "_:" + t.Value
	default:
		return t.Value
	}
}
