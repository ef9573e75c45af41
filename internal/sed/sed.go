// Package sed parses sed-style substitution expressions so change scripts
// written against sed muscle memory can drive the modify operation.
//
// Supports the familiar s/old/new/ syntax with alternate delimiters
// (s|old|new|) and escaped delimiters inside parts. Only substitution
// commands are accepted. Both sides are treated as literal text, not
// patterns - the match-cardinality gate in modify needs literal semantics
// to stay predictable. The 'g' flag is accepted and ignored: replacement
// on the single matching line is already global.
package sed

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidExpr is returned when a sed expression is malformed.
	ErrInvalidExpr = errors.New("invalid sed expression")
	// ErrUnsupportedCommand is returned for non-substitution commands.
	ErrUnsupportedCommand = errors.New("only substitution (s) commands are supported")
)

// Expr represents a parsed substitution expression.
type Expr struct {
	Old string
	New string
}

// ParseExpr parses a substitution expression like s/old/new/ or s|old|new|g.
func ParseExpr(expr string) (Expr, error) {
	if len(expr) < 4 {
		return Expr{}, ErrInvalidExpr
	}

	if expr[0] != 's' {
		return Expr{}, ErrUnsupportedCommand
	}

	delim := expr[1]
	parts := splitByDelim(expr[2:], delim)
	if len(parts) < 2 {
		return Expr{}, fmt.Errorf("%w: expected s%cold%cnew%c", ErrInvalidExpr, delim, delim, delim)
	}
	if parts[0] == "" {
		return Expr{}, fmt.Errorf("%w: empty search text", ErrInvalidExpr)
	}

	// A third part holds flags; 'g' is tolerated, anything else rejected.
	if len(parts) >= 3 {
		if flags := strings.ReplaceAll(parts[2], "g", ""); flags != "" {
			return Expr{}, fmt.Errorf("%w: unsupported flags %q", ErrInvalidExpr, flags)
		}
	}

	return Expr{Old: parts[0], New: parts[1]}, nil
}

// splitByDelim splits a string by delimiter, respecting escaped delimiters.
func splitByDelim(s string, delim byte) []string {
	var parts []string
	var current strings.Builder
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			current.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == delim {
			parts = append(parts, current.String())
			current.Reset()
			continue
		}
		current.WriteByte(c)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
