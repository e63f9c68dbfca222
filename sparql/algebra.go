// Package sparql parses SPARQL queries into a small algebra suitable for
// triple-pattern extraction, and provides the textual helpers (query
// extraction from markdown, prefix repair) the validation pipeline builds on.
//
// The parser covers the read-only query forms (SELECT, ASK, CONSTRUCT,
// DESCRIBE) with group graph patterns, OPTIONAL, UNION, MINUS, FILTER,
// GRAPH, SERVICE, subqueries and property paths. Expression contents are
// carried as raw text: the downstream schema validator only needs the graph
// pattern structure, not expression semantics.
package sparql

// Node is one operator of the query algebra. The set of implementations is
// closed: BGP, Join, LeftJoin, Union, Minus, Filter, Graph, Service and
// SubSelect. Consumers switch exhaustively over these types.
type Node interface {
	node()
}

// BGP is a basic graph pattern: a block of triple patterns.
type BGP struct {
	Triples []Triple
}

// Join combines two patterns that must both match.
type Join struct {
	Left, Right Node
}

// LeftJoin is an OPTIONAL pattern: Right may fail without discarding Left.
type LeftJoin struct {
	Left, Right Node
}

// Union matches either branch.
type Union struct {
	Left, Right Node
}

// Minus removes Left solutions compatible with Right.
type Minus struct {
	Left, Right Node
}

// Filter constrains Input by an expression. For FILTER [NOT] EXISTS the
// quantified pattern is carried in Exists; plain expressions keep their raw
// text in Expr.
type Filter struct {
	Expr    string
	Exists  Node
	Negated bool
	Input   Node
}

// Graph scopes Input to a named graph.
type Graph struct {
	Name  Term
	Input Node
}

// Service delegates Input to a remote endpoint.
type Service struct {
	Endpoint Term
	Silent   bool
	Input    Node
}

// SubSelect is a nested SELECT query inside a group graph pattern.
type SubSelect struct {
	Vars  []string
	Input Node
}

func (*BGP) node()       {}
func (*Join) node()      {}
func (*LeftJoin) node()  {}
func (*Union) node()     {}
func (*Minus) node()     {}
func (*Filter) node()    {}
func (*Graph) node()     {}
func (*Service) node()   {}
func (*SubSelect) node() {}

// Triple is a single triple pattern. The predicate position is always a
// Path; a plain predicate IRI is a Link and a variable predicate is a
// VarPred.
type Triple struct {
	Subject   Term
	Predicate Path
	Object    Term
}

// Path is a property-path expression in predicate position. The set of
// implementations is closed: Link, VarPred, Seq, Alt, Inverse, ZeroOrMore,
// OneOrMore, ZeroOrOne and Negated.
type Path interface {
	path()
}

// Link is a single predicate IRI.
type Link struct {
	IRI string
}

// VarPred is a variable in predicate position.
type VarPred struct {
	Name string
}

// Seq is a sequence path p1/p2/.../pn.
type Seq struct {
	Parts []Path
}

// Alt is an alternative path p1|p2|...|pn.
type Alt struct {
	Parts []Path
}

// Inverse is an inverse path ^p.
type Inverse struct {
	Path Path
}

// ZeroOrMore is p*.
type ZeroOrMore struct {
	Path Path
}

// OneOrMore is p+.
type OneOrMore struct {
	Path Path
}

// ZeroOrOne is p?.
type ZeroOrOne struct {
	Path Path
}

// Negated is a negated property set !p or !(p1|...|pn).
type Negated struct {
	Path Path
}

func (*Link) path()       {}
func (*VarPred) path()    {}
func (*Seq) path()        {}
func (*Alt) path()        {}
func (*Inverse) path()    {}
func (*ZeroOrMore) path() {}
func (*OneOrMore) path()  {}
func (*ZeroOrOne) path()  {}
func (*Negated) path()    {}

// QueryType identifies the query form.
type QueryType int

const (
	// QuerySelect is a SELECT query.
	QuerySelect QueryType = iota
	// QueryAsk is an ASK query.
	QueryAsk
	// QueryConstruct is a CONSTRUCT query.
	QueryConstruct
	// QueryDescribe is a DESCRIBE query.
	QueryDescribe
)

func (t QueryType) String() string {
	switch t {
	case QuerySelect:
		return "SELECT"
	case QueryAsk:
		return "ASK"
	case QueryConstruct:
		return "CONSTRUCT"
	case QueryDescribe:
		return "DESCRIBE"
	default:
		return "UNKNOWN"
	}
}

// Query is a parsed SPARQL query.
type Query struct {
	Type     QueryType
	Base     string
	Prefixes map[string]string
	// Pattern is the WHERE pattern; nil for DESCRIBE queries without a
	// WHERE clause.
	Pattern Node
	// Template holds the CONSTRUCT template triples. Template triples are
	// produced, not matched, so they are kept out of Pattern.
	Template []Triple
}
