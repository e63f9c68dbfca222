package sparql

import (
	"fmt"
	"strings"
)

// ParseErrorKind classifies parse failures. Only unknown-prefix failures are
// auto-recoverable by prefix repair; everything else surfaces verbatim.
type ParseErrorKind int

const (
	// ErrSyntax is a syntactically invalid query.
	ErrSyntax ParseErrorKind = iota
	// ErrUnknownPrefix is a query referencing prefixes it never declares.
	ErrUnknownPrefix
)

// ParseError describes a failed parse. When Kind is ErrUnknownPrefix,
// Prefixes lists every undeclared prefix label the query references.
type ParseError struct {
	Kind     ParseErrorKind
	Line     int
	Message  string
	Prefixes []string
}

func (e *ParseError) Error() string {
	if e.Kind == ErrUnknownPrefix {
		return fmt.Sprintf("unknown prefix(es): %s", strings.Join(e.Prefixes, ", "))
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// IsUnknownPrefix reports whether err is a ParseError caused solely by
// undeclared prefixes.
func IsUnknownPrefix(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.Kind == ErrUnknownPrefix
}
