package sparql

import (
	"fmt"
	"sort"
	"strings"
)

// Parse parses a SPARQL query string into a Query. It returns a *ParseError
// on failure. Prefixed names are resolved against the query's PREFIX
// declarations; references to undeclared prefixes are collected and reported
// together as a single unknown-prefix error so callers can repair them in
// one pass.
func Parse(query string) (*Query, error) {
	toks, lerr := newLexer(query).tokenize()
	if lerr != nil {
		return nil, lerr
	}
	p := &parser{
		toks:     toks,
		prefixes: make(map[string]string),
		unknown:  make(map[string]struct{}),
	}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if len(p.unknown) > 0 {
		labels := make([]string, 0, len(p.unknown))
		for label := range p.unknown {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		return nil, &ParseError{Kind: ErrUnknownPrefix, Prefixes: labels}
	}
	return q, nil
}

type parser struct {
	toks     []token
	pos      int
	base     string
	prefixes map[string]string
	unknown  map[string]struct{}
	blankN   int
}

func (p *parser) cur() token {
	if p.pos >= len(p.toks) {
		return token{typ: tokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) errf(format string, args ...any) *ParseError {
	return &ParseError{Kind: ErrSyntax, Line: p.cur().line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) isPunct(s string) bool {
	t := p.cur()
	return t.typ == tokPunct && t.val == s
}

func (p *parser) acceptPunct(s string) bool {
	if p.isPunct(s) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectPunct(s string) *ParseError {
	if !p.acceptPunct(s) {
		return p.errf("expected %q, got %q", s, p.cur().text)
	}
	return nil
}

func (p *parser) isKeyword(kw string) bool {
	t := p.cur()
	return t.typ == tokName && strings.EqualFold(t.val, kw)
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.isKeyword(kw) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) resolveIRI(iri string) string {
	if p.base != "" && !strings.Contains(iri, ":") {
		return p.base + iri
	}
	return iri
}

func (p *parser) resolvePName(val string) string {
	idx := strings.Index(val, ":")
	prefix, local := val[:idx], val[idx+1:]
	ns, ok := p.prefixes[prefix]
	if !ok {
		p.unknown[prefix] = struct{}{}
		return "urn:x-unknown-prefix:" + val
	}
	return ns + local
}

func (p *parser) freshBlank() Term {
	p.blankN++
	return Term{Kind: TermBlank, Value: fmt.Sprintf("b%d", p.blankN)}
}

// parseQuery parses prologue plus one query form.
func (p *parser) parseQuery() (*Query, *ParseError) {
	if err := p.parsePrologue(); err != nil {
		return nil, err
	}
	q := &Query{Base: p.base, Prefixes: p.prefixes}
	var err *ParseError
	switch {
	case p.acceptKeyword("SELECT"):
		q.Type = QuerySelect
		err = p.parseSelectRest(q)
	case p.acceptKeyword("ASK"):
		q.Type = QueryAsk
		err = p.parseAskRest(q)
	case p.acceptKeyword("CONSTRUCT"):
		q.Type = QueryConstruct
		err = p.parseConstructRest(q)
	case p.acceptKeyword("DESCRIBE"):
		q.Type = QueryDescribe
		err = p.parseDescribeRest(q)
	default:
		return nil, p.errf("expected SELECT, ASK, CONSTRUCT or DESCRIBE, got %q", p.cur().text)
	}
	if err != nil {
		return nil, err
	}
	if p.cur().typ != tokEOF {
		return nil, p.errf("unexpected trailing token %q", p.cur().text)
	}
	return q, nil
}

func (p *parser) parsePrologue() *ParseError {
	for {
		switch {
		case p.acceptKeyword("PREFIX"):
			t := p.advance()
			if t.typ != tokPName || !strings.HasSuffix(t.val, ":") {
				return p.errf("expected prefix label in PREFIX declaration, got %q", t.text)
			}
			label := strings.TrimSuffix(t.val, ":")
			iri := p.advance()
			if iri.typ != tokIRIRef {
				return p.errf("expected namespace IRI in PREFIX declaration, got %q", iri.text)
			}
			p.prefixes[label] = iri.val
		case p.acceptKeyword("BASE"):
			iri := p.advance()
			if iri.typ != tokIRIRef {
				return p.errf("expected IRI in BASE declaration, got %q", iri.text)
			}
			p.base = iri.val
		default:
			return nil
		}
	}
}

func (p *parser) parseSelectRest(q *Query) *ParseError {
	if _, err := p.parseSelectClause(); err != nil {
		return err
	}
	if err := p.parseDatasetClauses(); err != nil {
		return err
	}
	p.acceptKeyword("WHERE")
	pattern, err := p.parseGroupGraphPattern()
	if err != nil {
		return err
	}
	q.Pattern = pattern
	return p.parseSolutionModifiers()
}

func (p *parser) parseAskRest(q *Query) *ParseError {
	if err := p.parseDatasetClauses(); err != nil {
		return err
	}
	p.acceptKeyword("WHERE")
	pattern, err := p.parseGroupGraphPattern()
	if err != nil {
		return err
	}
	q.Pattern = pattern
	return p.parseSolutionModifiers()
}

func (p *parser) parseConstructRest(q *Query) *ParseError {
	if p.isPunct("{") {
		p.pos++
		if !p.isPunct("}") {
			triples, err := p.parseTriplesBlock()
			if err != nil {
				return err
			}
			q.Template = triples
		}
		if err := p.expectPunct("}"); err != nil {
			return err
		}
		if err := p.parseDatasetClauses(); err != nil {
			return err
		}
		if !p.acceptKeyword("WHERE") {
			return p.errf("expected WHERE after CONSTRUCT template")
		}
		pattern, err := p.parseGroupGraphPattern()
		if err != nil {
			return err
		}
		q.Pattern = pattern
		return p.parseSolutionModifiers()
	}
	// CONSTRUCT WHERE { triples } shorthand: the template is the pattern.
	if err := p.parseDatasetClauses(); err != nil {
		return err
	}
	if !p.acceptKeyword("WHERE") {
		return p.errf("expected template or WHERE after CONSTRUCT")
	}
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	var triples []Triple
	if !p.isPunct("}") {
		var err *ParseError
		triples, err = p.parseTriplesBlock()
		if err != nil {
			return err
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return err
	}
	q.Template = triples
	q.Pattern = &BGP{Triples: triples}
	return p.parseSolutionModifiers()
}

func (p *parser) parseDescribeRest(q *Query) *ParseError {
	if !p.acceptPunct("*") {
		n := 0
		for {
			t := p.cur()
			if t.typ == tokVar {
				p.pos++
				n++
				continue
			}
			if t.typ == tokIRIRef || t.typ == tokPName {
				if t.typ == tokPName {
					p.resolvePName(t.val)
				}
				p.pos++
				n++
				continue
			}
			break
		}
		if n == 0 {
			return p.errf("expected variable, IRI or * after DESCRIBE")
		}
	}
	if err := p.parseDatasetClauses(); err != nil {
		return err
	}
	if p.acceptKeyword("WHERE") || p.isPunct("{") {
		pattern, err := p.parseGroupGraphPattern()
		if err != nil {
			return err
		}
		q.Pattern = pattern
	}
	return p.parseSolutionModifiers()
}

// parseSelectClause handles [DISTINCT|REDUCED] (* | (var | (expr AS ?v))+)
// and returns the projected variable names (("*") for a wildcard).
func (p *parser) parseSelectClause() ([]string, *ParseError) {
	if !p.acceptKeyword("DISTINCT") {
		p.acceptKeyword("REDUCED")
	}
	if p.acceptPunct("*") {
		return []string{"*"}, nil
	}
	var vars []string
	for {
		t := p.cur()
		if t.typ == tokVar {
			vars = append(vars, t.val)
			p.pos++
			continue
		}
		if p.isPunct("(") {
			expr, err := p.consumeBalancedParens()
			if err != nil {
				return nil, err
			}
			_ = expr
			continue
		}
		break
	}
	if len(vars) == 0 && !p.isPunct("(") {
		// projection may have been expression-only; require at least
		// something before WHERE
		if !p.isKeyword("WHERE") && !p.isPunct("{") && !p.isKeyword("FROM") {
			return nil, p.errf("expected projection after SELECT, got %q", p.cur().text)
		}
	}
	return vars, nil
}

func (p *parser) parseDatasetClauses() *ParseError {
	for p.acceptKeyword("FROM") {
		p.acceptKeyword("NAMED")
		t := p.advance()
		switch t.typ {
		case tokIRIRef:
		case tokPName:
			p.resolvePName(t.val)
		default:
			return p.errf("expected IRI in FROM clause, got %q", t.text)
		}
	}
	return nil
}

// parseGroupGraphPattern parses { ... } including subqueries.
func (p *parser) parseGroupGraphPattern() (Node, *ParseError) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	if p.isKeyword("SELECT") {
		return p.parseSubSelect()
	}
	return p.parseGroupBody()
}

// parseSubSelect parses a nested SELECT up to and including its closing }.
func (p *parser) parseSubSelect() (Node, *ParseError) {
	p.pos++ // SELECT
	vars, err := p.parseSelectClause()
	if err != nil {
		return nil, err
	}
	p.acceptKeyword("WHERE")
	inner, err := p.parseGroupGraphPattern()
	if err != nil {
		return nil, err
	}
	if err := p.parseSolutionModifiers(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &SubSelect{Vars: vars, Input: inner}, nil
}

// parseGroupBody parses group graph pattern elements up to and including
// the closing brace, folding sequential elements into Joins and wrapping
// the group in its Filters.
func (p *parser) parseGroupBody() (Node, *ParseError) {
	var group Node
	var filters []*Filter

	join := func(n Node) {
		if group == nil {
			group = n
		} else {
			group = &Join{Left: group, Right: n}
		}
	}

	for {
		switch {
		case p.isPunct("}"):
			p.pos++
			if group == nil {
				group = &BGP{}
			}
			for _, f := range filters {
				f.Input = group
				group = f
			}
			return group, nil

		case p.acceptPunct("."):
			// stray separator between elements

		case p.isKeyword("OPTIONAL"):
			p.pos++
			right, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			left := group
			if left == nil {
				left = &BGP{}
			}
			group = &LeftJoin{Left: left, Right: right}

		case p.isKeyword("MINUS"):
			p.pos++
			right, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			left := group
			if left == nil {
				left = &BGP{}
			}
			group = &Minus{Left: left, Right: right}

		case p.isKeyword("FILTER"):
			f, err := p.parseFilter()
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)

		case p.isKeyword("BIND"):
			p.pos++
			if _, err := p.consumeBalancedParens(); err != nil {
				return nil, err
			}

		case p.isKeyword("VALUES"):
			if err := p.parseValues(); err != nil {
				return nil, err
			}

		case p.isKeyword("GRAPH"):
			p.pos++
			name, err := p.parseVarOrIRI("GRAPH")
			if err != nil {
				return nil, err
			}
			inner, err2 := p.parseGroupGraphPattern()
			if err2 != nil {
				return nil, err2
			}
			join(&Graph{Name: name, Input: inner})

		case p.isKeyword("SERVICE"):
			p.pos++
			silent := p.acceptKeyword("SILENT")
			endpoint, err := p.parseVarOrIRI("SERVICE")
			if err != nil {
				return nil, err
			}
			inner, err2 := p.parseGroupGraphPattern()
			if err2 != nil {
				return nil, err2
			}
			join(&Service{Endpoint: endpoint, Silent: silent, Input: inner})

		case p.isPunct("{"):
			node, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			for p.acceptKeyword("UNION") {
				right, err := p.parseGroupGraphPattern()
				if err != nil {
					return nil, err
				}
				node = &Union{Left: node, Right: right}
			}
			join(node)

		case p.cur().typ == tokEOF:
			return nil, p.errf("unexpected end of query inside group pattern")

		default:
			triples, err := p.parseTriplesBlock()
			if err != nil {
				return nil, err
			}
			join(&BGP{Triples: triples})
		}
	}
}

func (p *parser) parseVarOrIRI(clause string) (Term, *ParseError) {
	t := p.advance()
	switch t.typ {
	case tokVar:
		return Var(t.val), nil
	case tokIRIRef:
		return IRI(p.resolveIRI(t.val)), nil
	case tokPName:
		return IRI(p.resolvePName(t.val)), nil
	default:
		return Term{}, p.errf("expected variable or IRI after %s, got %q", clause, t.text)
	}
}

func (p *parser) parseFilter() (*Filter, *ParseError) {
	p.pos++ // FILTER
	if p.acceptKeyword("NOT") {
		if !p.acceptKeyword("EXISTS") {
			return nil, p.errf("expected EXISTS after FILTER NOT")
		}
		inner, err := p.parseGroupGraphPattern()
		if err != nil {
			return nil, err
		}
		return &Filter{Exists: inner, Negated: true}, nil
	}
	if p.acceptKeyword("EXISTS") {
		inner, err := p.parseGroupGraphPattern()
		if err != nil {
			return nil, err
		}
		return &Filter{Exists: inner}, nil
	}
	if p.isPunct("(") {
		expr, err := p.consumeBalancedParens()
		if err != nil {
			return nil, err
		}
		return &Filter{Expr: expr}, nil
	}
	t := p.cur()
	if t.typ == tokName || t.typ == tokIRIRef || t.typ == tokPName {
		fname := t.text
		p.pos++
		if !p.isPunct("(") {
			return nil, p.errf("expected ( after %q in FILTER", fname)
		}
		expr, err := p.consumeBalancedParens()
		if err != nil {
			return nil, err
		}
		return &Filter{Expr: fname + expr}, nil
	}
	return nil, p.errf("expected constraint after FILTER, got %q", t.text)
}

func (p *parser) parseValues() *ParseError {
	p.pos++ // VALUES
	switch {
	case p.cur().typ == tokVar:
		p.pos++
	case p.isPunct("("):
		if _, err := p.consumeBalancedParens(); err != nil {
			return err
		}
	default:
		return p.errf("expected variable list after VALUES, got %q", p.cur().text)
	}
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		t := p.advance()
		switch {
		case t.typ == tokEOF:
			return p.errf("unterminated VALUES block")
		case t.typ == tokPunct && t.val == "{":
			depth++
		case t.typ == tokPunct && t.val == "}":
			depth--
		}
	}
	return nil
}

// consumeBalancedParens consumes a parenthesized token run and returns its
// raw text. The cursor must be on the opening parenthesis.
func (p *parser) consumeBalancedParens() (string, *ParseError) {
	if !p.isPunct("(") {
		return "", p.errf("expected (, got %q", p.cur().text)
	}
	var parts []string
	depth := 0
	for {
		t := p.advance()
		if t.typ == tokEOF {
			return "", p.errf("unterminated parenthesized expression")
		}
		parts = append(parts, t.text)
		if t.typ == tokPunct {
			switch t.val {
			case "(":
				depth++
			case ")":
				depth--
				if depth == 0 {
					return strings.Join(parts, " "), nil
				}
			}
		}
	}
}

// parseSolutionModifiers consumes GROUP BY, HAVING, ORDER BY, LIMIT, OFFSET
// and a trailing VALUES block. Expression contents are skipped; the algebra
// consumers only care about graph patterns.
func (p *parser) parseSolutionModifiers() *ParseError {
	for {
		switch {
		case p.acceptKeyword("GROUP"):
			if !p.acceptKeyword("BY") {
				return p.errf("expected BY after GROUP")
			}
			if err := p.consumeExprList(); err != nil {
				return err
			}
		case p.acceptKeyword("HAVING"):
			if err := p.consumeExprList(); err != nil {
				return err
			}
		case p.acceptKeyword("ORDER"):
			if !p.acceptKeyword("BY") {
				return p.errf("expected BY after ORDER")
			}
			if err := p.consumeExprList(); err != nil {
				return err
			}
		case p.acceptKeyword("LIMIT"), p.acceptKeyword("OFFSET"):
			t := p.advance()
			if t.typ != tokNumber {
				return p.errf("expected integer in LIMIT/OFFSET, got %q", t.text)
			}
		case p.isKeyword("VALUES"):
			if err := p.parseValues(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// consumeExprList consumes one or more expression units: variables,
// parenthesized expressions, ASC(...)/DESC(...) and function calls.
func (p *parser) consumeExprList() *ParseError {
	consumed := 0
	for {
		t := p.cur()
		switch {
		case t.typ == tokVar:
			p.pos++
		case t.typ == tokPunct && t.val == "(":
			if _, err := p.consumeBalancedParens(); err != nil {
				return err
			}
		case t.typ == tokName && (strings.EqualFold(t.val, "ASC") || strings.EqualFold(t.val, "DESC")):
			p.pos++
			if _, err := p.consumeBalancedParens(); err != nil {
				return err
			}
		case (t.typ == tokName || t.typ == tokIRIRef || t.typ == tokPName) && p.peekIsCall():
			p.pos++
			if _, err := p.consumeBalancedParens(); err != nil {
				return err
			}
		default:
			if consumed == 0 {
				return p.errf("expected expression, got %q", t.text)
			}
			return nil
		}
		consumed++
	}
}

// peekIsCall reports whether the token after the current one opens a call.
func (p *parser) peekIsCall() bool {
	if p.isKeyword("LIMIT") || p.isKeyword("OFFSET") || p.isKeyword("GROUP") ||
		p.isKeyword("HAVING") || p.isKeyword("ORDER") || p.isKeyword("VALUES") {
		return false
	}
	if p.pos+1 >= len(p.toks) {
		return false
	}
	n := p.toks[p.pos+1]
	return n.typ == tokPunct && n.val == "("
}

// parseTriplesBlock parses consecutive triples-same-subject groups
// separated by dots.
func (p *parser) parseTriplesBlock() ([]Triple, *ParseError) {
	var triples []Triple
	for {
		if err := p.parseTriplesSameSubject(&triples); err != nil {
			return nil, err
		}
		if p.acceptPunct(".") {
			if p.startsTerm() {
				continue
			}
		}
		return triples, nil
	}
}

func (p *parser) startsTerm() bool {
	t := p.cur()
	switch t.typ {
	case tokVar, tokIRIRef, tokPName, tokBlank, tokString, tokNumber:
		return true
	case tokPunct:
		return t.val == "[" || t.val == "("
	case tokName:
		return strings.EqualFold(t.val, "true") || strings.EqualFold(t.val, "false")
	}
	return false
}

func (p *parser) startsVerb() bool {
	t := p.cur()
	switch t.typ {
	case tokVar, tokIRIRef, tokPName:
		return true
	case tokName:
		return t.val == "a"
	case tokPunct:
		return t.val == "(" || t.val == "^" || t.val == "!"
	}
	return false
}

func (p *parser) parseTriplesSameSubject(triples *[]Triple) *ParseError {
	subject, fromNode, err := p.parseTermOrNode(triples)
	if err != nil {
		return err
	}
	if fromNode && !p.startsVerb() {
		// [ ... ] and ( ... ) may stand alone as a whole triple group
		return nil
	}
	return p.parsePropertyList(subject, triples)
}

func (p *parser) parsePropertyList(subject Term, triples *[]Triple) *ParseError {
	for {
		var pred Path
		t := p.cur()
		if t.typ == tokVar {
			pred = &VarPred{Name: t.val}
			p.pos++
		} else {
			var err *ParseError
			pred, err = p.parsePath()
			if err != nil {
				return err
			}
		}
		for {
			obj, _, err := p.parseTermOrNode(triples)
			if err != nil {
				return err
			}
			*triples = append(*triples, Triple{Subject: subject, Predicate: pred, Object: obj})
			if !p.acceptPunct(",") {
				break
			}
		}
		if p.acceptPunct(";") {
			for p.acceptPunct(";") {
			}
			if p.startsVerb() {
				continue
			}
		}
		return nil
	}
}

// parseTermOrNode parses one term. Bracketed blank nodes and collections
// synthesize fresh blank node terms and append their inner triples.
// fromNode reports whether the term was a triples node ([ ] or ( )).
func (p *parser) parseTermOrNode(triples *[]Triple) (Term, bool, *ParseError) {
	t := p.cur()
	switch t.typ {
	case tokVar:
		p.pos++
		return Var(t.val), false, nil
	case tokIRIRef:
		p.pos++
		return IRI(p.resolveIRI(t.val)), false, nil
	case tokPName:
		p.pos++
		return IRI(p.resolvePName(t.val)), false, nil
	case tokBlank:
		p.pos++
		return Term{Kind: TermBlank, Value: t.val}, false, nil
	case tokString:
		p.pos++
		lit := Term{Kind: TermLiteral, Value: t.val}
		if p.cur().typ == tokLang {
			lit.Lang = p.advance().val
		} else if p.acceptPunct("^^") {
			dt := p.advance()
			switch dt.typ {
			case tokIRIRef:
				lit.Datatype = p.resolveIRI(dt.val)
			case tokPName:
				lit.Datatype = p.resolvePName(dt.val)
			default:
				return Term{}, false, p.errf("expected datatype IRI after ^^, got %q", dt.text)
			}
		}
		return lit, false, nil
	case tokNumber:
		p.pos++
		return Literal(t.val), false, nil
	case tokName:
		if strings.EqualFold(t.val, "true") || strings.EqualFold(t.val, "false") {
			p.pos++
			return Literal(strings.ToLower(t.val)), false, nil
		}
	case tokPunct:
		if t.val == "[" {
			p.pos++
			blank := p.freshBlank()
			if p.acceptPunct("]") {
				return blank, true, nil
			}
			if err := p.parsePropertyList(blank, triples); err != nil {
				return Term{}, false, err
			}
			if err := p.expectPunct("]"); err != nil {
				return Term{}, false, err
			}
			return blank, true, nil
		}
		if t.val == "(" {
			return p.parseCollection(triples)
		}
	}
	return Term{}, false, p.errf("expected term, got %q", t.text)
}

// parseCollection expands an RDF collection ( e1 e2 ... ) into
// rdf:first/rdf:rest triples on fresh blank nodes.
func (p *parser) parseCollection(triples *[]Triple) (Term, bool, *ParseError) {
	p.pos++ // (
	if p.acceptPunct(")") {
		return IRI(RDFNil), true, nil
	}
	head := p.freshBlank()
	cur := head
	first := true
	for {
		if !first {
			next := p.freshBlank()
			*triples = append(*triples, Triple{Subject: cur, Predicate: &Link{IRI: RDFRest}, Object: next})
			cur = next
		}
		first = false
		elem, _, err := p.parseTermOrNode(triples)
		if err != nil {
			return Term{}, false, err
		}
		*triples = append(*triples, Triple{Subject: cur, Predicate: &Link{IRI: RDFFirst}, Object: elem})
		if p.acceptPunct(")") {
			*triples = append(*triples, Triple{Subject: cur, Predicate: &Link{IRI: RDFRest}, Object: IRI(RDFNil)})
			return head, true, nil
		}
	}
}

// parsePath parses a property path with | < / < ^ < modifier precedence.
func (p *parser) parsePath() (Path, *ParseError) {
	first, err := p.parsePathSequence()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("|") {
		return first, nil
	}
	parts := []Path{first}
	for p.acceptPunct("|") {
		next, err := p.parsePathSequence()
		if err != nil {
			return nil, err
		}
		parts = append(parts, next)
	}
	return &Alt{Parts: parts}, nil
}

func (p *parser) parsePathSequence() (Path, *ParseError) {
	first, err := p.parsePathEltOrInverse()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("/") {
		return first, nil
	}
	parts := []Path{first}
	for p.acceptPunct("/") {
		next, err := p.parsePathEltOrInverse()
		if err != nil {
			return nil, err
		}
		parts = append(parts, next)
	}
	return &Seq{Parts: parts}, nil
}

func (p *parser) parsePathEltOrInverse() (Path, *ParseError) {
	if p.acceptPunct("^") {
		inner, err := p.parsePathElt()
		if err != nil {
			return nil, err
		}
		return &Inverse{Path: inner}, nil
	}
	return p.parsePathElt()
}

func (p *parser) parsePathElt() (Path, *ParseError) {
	primary, err := p.parsePathPrimary()
	if err != nil {
		return nil, err
	}
	switch {
	case p.acceptPunct("*"):
		return &ZeroOrMore{Path: primary}, nil
	case p.acceptPunct("+"):
		return &OneOrMore{Path: primary}, nil
	case p.acceptPunct("?"):
		return &ZeroOrOne{Path: primary}, nil
	}
	return primary, nil
}

func (p *parser) parsePathPrimary() (Path, *ParseError) {
	t := p.cur()
	switch {
	case t.typ == tokName && t.val == "a":
		p.pos++
		return &Link{IRI: RDFType}, nil
	case t.typ == tokIRIRef:
		p.pos++
		return &Link{IRI: p.resolveIRI(t.val)}, nil
	case t.typ == tokPName:
		p.pos++
		return &Link{IRI: p.resolvePName(t.val)}, nil
	case t.typ == tokPunct && t.val == "(":
		p.pos++
		inner, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return inner, nil
	case t.typ == tokPunct && t.val == "!":
		p.pos++
		inner, err := p.parsePathPrimaryOrInverseSet()
		if err != nil {
			return nil, err
		}
		return &Negated{Path: inner}, nil
	}
	return nil, p.errf("expected property path, got %q", t.text)
}

// parsePathPrimaryOrInverseSet parses the operand of a negated property
// set: a single (possibly inverse) predicate or a parenthesized alternative
// of them.
func (p *parser) parsePathPrimaryOrInverseSet() (Path, *ParseError) {
	if p.acceptPunct("(") {
		var parts []Path
		for {
			elt, err := p.parseNegatedElt()
			if err != nil {
				return nil, err
			}
			parts = append(parts, elt)
			if p.acceptPunct("|") {
				continue
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			if len(parts) == 1 {
				return parts[0], nil
			}
			return &Alt{Parts: parts}, nil
		}
	}
	return p.parseNegatedElt()
}

func (p *parser) parseNegatedElt() (Path, *ParseError) {
	if p.acceptPunct("^") {
		inner, err := p.parseNegatedElt()
		if err != nil {
			return nil, err
		}
		return &Inverse{Path: inner}, nil
	}
	t := p.cur()
	switch {
	case t.typ == tokName && t.val == "a":
		p.pos++
		return &Link{IRI: RDFType}, nil
	case t.typ == tokIRIRef:
		p.pos++
		return &Link{IRI: p.resolveIRI(t.val)}, nil
	case t.typ == tokPName:
		p.pos++
		return &Link{IRI: p.resolvePName(t.val)}, nil
	}
	return nil, p.errf("expected predicate in negated property set, got %q", t.text)
}
