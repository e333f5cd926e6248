// Package keyspace maps logical keys into a namespace's storage keys.
package keyspace

import (
	"regexp"
	"strings"
)

// DefaultPattern matches characters that are replaced in logical keys.
var DefaultPattern = regexp.MustCompile(`[/@:]`)

// DefaultReplacement is substituted for every DefaultPattern match.
const DefaultReplacement = "_"

// Space is one namespace: a fixed prefix plus a sanitizing substitution.
// The zero Pattern means DefaultPattern.
type Space struct {
	Prefix  string
	Pattern *regexp.Regexp
	With    string
}

// New returns a Space using the default sanitizer.
func New(prefix string) Space {
	return Space{Prefix: prefix, Pattern: DefaultPattern, With: DefaultReplacement}
}

// Key returns prefix + sanitize(key). It is total and deterministic.
func (s Space) Key(key string) string {
	p := s.Pattern
	if p == nil {
		p = DefaultPattern
	}
	return s.Prefix + p.ReplaceAllLiteralString(key, s.With)
}

// Match returns the glob pattern matching every key in the namespace.
// It is built from the raw prefix, not a sanitized key.
func (s Space) Match() string {
	return Escape(s.Prefix) + "*"
}

// Escape backslash-escapes glob metacharacters so s matches literally.
func Escape(s string) string {
	if !strings.ContainsAny(s, `*?[]\{}`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\', '{', '}':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
