package sparql

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIRIRef
	tokPName
	tokVar
	tokBlank
	tokString
	tokLang
	tokNumber
	tokName
	tokPunct
)

type token struct {
	typ  tokenType
	val  string // semantic value (IRI body, var name, literal value, ...)
	text string // raw text as written, used to reconstruct expressions
	line int
}

type lexer struct {
	input string
	pos   int
	line  int
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1}
}

// tokenize scans the whole input. Lexical errors are reported as a
// ParseError; the lexer never panics on malformed input.
func (l *lexer) tokenize() ([]token, *ParseError) {
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.typ == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) errf(format string, args ...any) *ParseError {
	return &ParseError{Kind: ErrSyntax, Line: l.line, Message: fmt.Sprintf(format, args...)}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.input) {
		return 0
	}
	return l.input[l.pos+off]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, *ParseError) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return token{typ: tokEOF, line: l.line}, nil
	}
	start := l.pos
	line := l.line
	c := l.input[l.pos]

	switch {
	case c == '<':
		if iri, ok := l.scanIRIRef(); ok {
			return token{typ: tokIRIRef, val: iri, text: l.input[start:l.pos], line: line}, nil
		}
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{typ: tokPunct, val: "<=", text: "<=", line: line}, nil
		}
		return token{typ: tokPunct, val: "<", text: "<", line: line}, nil

	case c == '?' || c == '$':
		if isVarChar(l.peekAt(1)) {
			l.pos++
			name := l.scanWhile(isVarChar)
			return token{typ: tokVar, val: name, text: l.input[start:l.pos], line: line}, nil
		}
		l.pos++
		return token{typ: tokPunct, val: "?", text: "?", line: line}, nil

	case c == '"' || c == '\'':
		val, err := l.scanString(c)
		if err != nil {
			return token{}, err
		}
		return token{typ: tokString, val: val, text: l.input[start:l.pos], line: line}, nil

	case c == '@':
		l.pos++
		tag := l.scanWhile(func(b byte) bool { return isLetter(b) || b == '-' })
		if tag == "" {
			return token{}, l.errf("empty language tag")
		}
		return token{typ: tokLang, val: tag, text: l.input[start:l.pos], line: line}, nil

	case c == '^':
		if l.peekAt(1) == '^' {
			l.pos += 2
			return token{typ: tokPunct, val: "^^", text: "^^", line: line}, nil
		}
		l.pos++
		return token{typ: tokPunct, val: "^", text: "^", line: line}, nil

	case c == '|':
		if l.peekAt(1) == '|' {
			l.pos += 2
			return token{typ: tokPunct, val: "||", text: "||", line: line}, nil
		}
		l.pos++
		return token{typ: tokPunct, val: "|", text: "|", line: line}, nil

	case c == '&' && l.peekAt(1) == '&':
		l.pos += 2
		return token{typ: tokPunct, val: "&&", text: "&&", line: line}, nil

	case c == '!':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{typ: tokPunct, val: "!=", text: "!=", line: line}, nil
		}
		l.pos++
		return token{typ: tokPunct, val: "!", text: "!", line: line}, nil

	case c == '>':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{typ: tokPunct, val: ">=", text: ">=", line: line}, nil
		}
		l.pos++
		return token{typ: tokPunct, val: ">", text: ">", line: line}, nil

	case isDigit(c), (c == '+' || c == '-') && (isDigit(l.peekAt(1)) || l.peekAt(1) == '.' && isDigit(l.peekAt(2))),
		c == '.' && isDigit(l.peekAt(1)):
		num := l.scanNumber()
		return token{typ: tokNumber, val: num, text: num, line: line}, nil

	case c == '_' && l.peekAt(1) == ':':
		l.pos += 2
		name := l.scanWhile(isVarChar)
		if name == "" {
			return token{}, l.errf("empty blank node label")
		}
		return token{typ: tokBlank, val: name, text: l.input[start:l.pos], line: line}, nil

	case c == ':' || isNameStart(c):
		return l.scanNameOrPName(line)

	case strings.IndexByte("{}()[].,;/*+=-", c) >= 0:
		l.pos++
		s := string(c)
		return token{typ: tokPunct, val: s, text: s, line: line}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	if unicode.IsLetter(r) {
		return l.scanNameOrPName(line)
	}
	return token{}, l.errf("unexpected character %q", string(c))
}

// scanIRIRef attempts to scan <iri>. Returns false without consuming input
// when the bracket does not close on the same token (so '<' can be an
// operator in expressions).
func (l *lexer) scanIRIRef() (string, bool) {
	i := l.pos + 1
	for i < len(l.input) {
		c := l.input[i]
		if c == '>' {
			iri := l.input[l.pos+1 : i]
			l.pos = i + 1
			return iri, true
		}
		if strings.IndexByte(" \t\r\n<\"{}|^`\\", c) >= 0 {
			return "", false
		}
		i++
	}
	return "", false
}

func (l *lexer) scanString(quote byte) (string, *ParseError) {
	long := false
	if l.peekAt(1) == quote && l.peekAt(2) == quote {
		long = true
		l.pos += 3
	} else {
		l.pos++
	}
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\\' {
			if l.pos+1 >= len(l.input) {
				return "", l.errf("unterminated string escape")
			}
			e := l.input[l.pos+1]
			switch e {
			case 't':
				sb.WriteByte('\t')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 'b', 'f':
				sb.WriteByte(e)
			case '"', '\'', '\\':
				sb.WriteByte(e)
			default:
				sb.WriteByte('\\')
				sb.WriteByte(e)
			}
			l.pos += 2
			continue
		}
		if c == quote {
			if long {
				if l.peekAt(1) == quote && l.peekAt(2) == quote {
					l.pos += 3
					return sb.String(), nil
				}
				sb.WriteByte(c)
				l.pos++
				continue
			}
			l.pos++
			return sb.String(), nil
		}
		if c == '\n' {
			if !long {
				return "", l.errf("newline in string literal")
			}
			l.line++
		}
		sb.WriteByte(c)
		l.pos++
	}
	return "", l.errf("unterminated string literal")
}

func (l *lexer) scanNumber() string {
	start := l.pos
	if c := l.peek(); c == '+' || c == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		if isDigit(l.peekAt(1)) || ((l.peekAt(1) == '+' || l.peekAt(1) == '-') && isDigit(l.peekAt(2))) {
			l.pos++
			if c := l.peek(); c == '+' || c == '-' {
				l.pos++
			}
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		}
	}
	return l.input[start:l.pos]
}

// scanNameOrPName scans a bare name (keyword) or a prefixed name pfx:local.
// PN local parts may contain dots, but a trailing dot belongs to the triple
// terminator and is pushed back.
func (l *lexer) scanNameOrPName(line int) (token, *ParseError) {
	start := l.pos
	prefix := l.scanPNPart(false)
	if l.peek() != ':' {
		return token{typ: tokName, val: prefix, text: l.input[start:l.pos], line: line}, nil
	}
	l.pos++ // consume ':'
	local := l.scanPNPart(true)
	return token{typ: tokPName, val: prefix + ":" + local, text: l.input[start:l.pos], line: line}, nil
}

// scanPNPart scans prefix or local-part characters. Local parts additionally
// allow '%' escapes and embedded colons are not consumed (they separate
// prefix from local part only once).
func (l *lexer) scanPNPart(local bool) string {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if isVarChar(c) || c == '-' || c == '.' || (local && c == '%') {
			l.pos++
			continue
		}
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r != utf8.RuneError && unicode.IsLetter(r) {
			l.pos += size
			continue
		}
		break
	}
	// push back trailing dots: they terminate triples, not names
	for l.pos > start && l.input[l.pos-1] == '.' {
		l.pos--
	}
	return l.input[start:l.pos]
}

func (l *lexer) scanWhile(pred func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.input) && pred(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isVarChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c >= 0x80
}
func isNameStart(c byte) bool {
	return isLetter(c) || c == '_' || c >= 0x80
}
