package scan

import (
	"slices"
	"strings"

	"github.com/ardnew/envsolve/syntax"
)

// Scanner returns the variable names referenced by text in order of
// occurrence, duplicates included.
type Scanner interface {
	Scan(text string) []string
}

// Func adapts an ordinary function to the [Scanner] interface.
type Func func(text string) []string

// Scan calls f(text).
func (f Func) Scan(text string) []string { return f(text) }

// Token scans for one literal read token in its bracket and dot forms.
type Token struct {
	token     string
	boundary  string
	accessors []string
}

// Option configures a [Token].
type Option func(Token) Token

// WithBoundary sets the characters that end a dot-form name.
// An empty boundary selects [syntax.DefaultBoundary].
func WithBoundary(boundary string) Option {
	return func(t Token) Token {
		if boundary == "" {
			boundary = syntax.DefaultBoundary
		}

		t.boundary = boundary

		return t
	}
}

// WithAccessors adds method names read as TOKEN.method("NAME").
func WithAccessors(methods ...string) Option {
	return func(t Token) Token {
		t.accessors = append(slices.Clone(t.accessors), methods...)

		return t
	}
}

// NewToken returns a scanner for the given read token.
func NewToken(token string, opts ...Option) Token {
	t := Token{token: token, boundary: syntax.DefaultBoundary}

	for _, opt := range opts {
		t = opt(t)
	}

	return t
}

// ForSyntax returns a scanner configured from a syntax row.
func ForSyntax(s syntax.Syntax) Token {
	return NewToken(s.Token, WithBoundary(s.Boundary), WithAccessors(s.Accessors...))
}

// Scan implements [Scanner].
func (t Token) Scan(text string) []string {
	var names []string

	if t.token == "" {
		return names
	}

	for pos := 0; pos < len(text); {
		k := strings.Index(text[pos:], t.token)
		if k < 0 {
			break
		}

		pos += k + len(t.token)
		if pos >= len(text) {
			break
		}

		var (
			name string
			next int
		)

		switch text[pos] {
		case '[':
			name, next = t.bracket(text, pos)
		case '.':
			name, next = t.dot(text, pos)
		default:
			continue
		}

		if name != "" {
			names = append(names, name)
		}

		pos = next
	}

	return names
}

// bracket reads TOKEN["NAME"] with open at the '['. The key must be a
// quoted literal.
func (t Token) bracket(text string, open int) (string, int) {
	end := strings.IndexByte(text[open+1:], ']')
	if end < 0 {
		return "", open + 1
	}

	closing := open + 1 + end
	name, _ := unquote(strings.TrimSpace(text[open+1 : closing]))

	return name, closing + 1
}

// dot reads TOKEN.NAME or TOKEN.accessor("NAME") with dot at the '.'.
func (t Token) dot(text string, dot int) (string, int) {
	start := dot + 1

	for _, method := range t.accessors {
		rest, ok := strings.CutPrefix(text[start:], method+"(")
		if !ok {
			continue
		}

		arg := start + len(method) + 1
		if name, n, ok := quotedPrefix(rest); ok {
			return name, arg + n
		}
	}

	end := strings.IndexAny(text[start:], t.boundary)
	if end < 0 {
		return text[start:], len(text)
	}

	return text[start : start+end], start + end
}

func isQuote(c byte) bool { return c == '"' || c == '\'' || c == '`' }

// unquote returns the content of s when s is a single quoted literal.
func unquote(s string) (string, bool) {
	if len(s) < 2 || !isQuote(s[0]) || s[len(s)-1] != s[0] {
		return "", false
	}

	inner := s[1 : len(s)-1]
	if strings.IndexByte(inner, s[0]) >= 0 {
		return "", false
	}

	return inner, true
}

// quotedPrefix reads a quoted literal at the start of s, after optional
// whitespace, returning its content and the offset just past the closing
// quote.
func quotedPrefix(s string) (string, int, bool) {
	lead := len(s) - len(strings.TrimLeft(s, " \t\r\n"))
	if lead >= len(s) || !isQuote(s[lead]) {
		return "", 0, false
	}

	q := s[lead]

	end := strings.IndexByte(s[lead+1:], q)
	if end < 0 {
		return "", 0, false
	}

	return s[lead+1 : lead+1+end], lead + 1 + end + 1, true
}
