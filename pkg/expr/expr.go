// Package expr parses field extractor expressions into a closed set of
// alternatives that are evaluated in order.
//
// An expression is a "||"-delimited list. Each alternative is either a key
// path into the post ("post.meta.author") or a call to a registered
// extractor function ("extractHashtags(post.body)").
package expr

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	separator  = "||"
	postPrefix = "post."
)

// ErrInvalidExpression is matched by every *SyntaxError.
var ErrInvalidExpression = errors.New("invalid extractor expression")

// SyntaxError describes an alternative that could not be parsed.
type SyntaxError struct {
	Expression  string
	Alternative string
	Reason      string
}

func (e *SyntaxError) Error() string {
	if e.Alternative == "" {
		return fmt.Sprintf("invalid extractor expression %q: %s", e.Expression, e.Reason)
	}
	return fmt.Sprintf("invalid extractor expression %q: alternative %q: %s", e.Expression, e.Alternative, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidExpression) match.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrInvalidExpression
}

// Alternative is one parsed option of a fallback chain: a PathRef or a Call.
type Alternative interface {
	fmt.Stringer
	alternative()
}

// PathRef reads a dotted key path from the post.
type PathRef struct {
	Path string
}

func (PathRef) alternative() {}

func (p PathRef) String() string { return postPrefix + p.Path }

// Call invokes a registered extractor function. Args are kept verbatim;
// the function receives the whole post.
type Call struct {
	Name string
	Args string
}

func (Call) alternative() {}

func (c Call) String() string { return c.Name + "(" + c.Args + ")" }

// Parse splits an expression on "||" and parses each trimmed alternative.
func Parse(expression string) ([]Alternative, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, &SyntaxError{Expression: expression, Reason: "expression is empty"}
	}

	parts := strings.Split(expression, separator)
	alts := make([]Alternative, 0, len(parts))
	for _, part := range parts {
		alt, err := parseAlternative(strings.TrimSpace(part))
		if err != nil {
			err.Expression = expression
			return nil, err
		}
		alts = append(alts, alt)
	}
	return alts, nil
}

// MustParse is like Parse but panics on error.
func MustParse(expression string) []Alternative {
	alts, err := Parse(expression)
	if err != nil {
		panic(err)
	}
	return alts
}

func parseAlternative(s string) (Alternative, *SyntaxError) {
	switch {
	case s == "":
		return nil, &SyntaxError{Reason: "empty alternative"}
	case strings.HasPrefix(s, postPrefix):
		path := strings.TrimPrefix(s, postPrefix)
		for _, segment := range strings.Split(path, ".") {
			if segment == "" {
				return nil, &SyntaxError{Alternative: s, Reason: "key path has an empty segment"}
			}
		}
		return PathRef{Path: path}, nil
	case strings.HasSuffix(s, ")"):
		open := strings.IndexByte(s, '(')
		if open < 0 {
			return nil, &SyntaxError{Alternative: s, Reason: "unbalanced parentheses"}
		}
		name := s[:open]
		if !IsIdentifier(name) {
			return nil, &SyntaxError{Alternative: s, Reason: fmt.Sprintf("%q is not a valid function name", name)}
		}
		return Call{Name: name, Args: strings.TrimSpace(s[open+1 : len(s)-1])}, nil
	default:
		return nil, &SyntaxError{Alternative: s, Reason: `expected "post.<path>" or "<function>(...)"`}
	}
}

// IsIdentifier reports whether s is usable as an extractor function name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
