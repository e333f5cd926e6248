package keyspace

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyDefaultSanitizer(t *testing.T) {
	s := New("P:")
	cases := map[string]string{
		"hello/world":           "P:hello_world",
		"hello//@world":         "P:hello___world",
		"http://www.google.com": "P:http___www.google.com",
		"plain":                 "P:plain",
		"":                      "P:",
	}
	for in, want := range cases {
		assert.Equal(t, want, s.Key(in), "key %q", in)
	}
}

func TestKeyCustomSanitizer(t *testing.T) {
	s := Space{Prefix: "u.", Pattern: regexp.MustCompile(`\s+`), With: "-"}
	assert.Equal(t, "u.a-b-c", s.Key("a b \t c"))

	// zero Pattern falls back to the default, With is used as given
	z := Space{Prefix: "z:"}
	assert.Equal(t, "z:ab", z.Key("a/b"))
}

func TestMatchEscapesPrefix(t *testing.T) {
	assert.Equal(t, "Roles:*", New("Roles:").Match())
	assert.Equal(t, `a\*b\?\[x\]*`, New("a*b?[x]").Match())
	assert.Equal(t, `\{t\}\\*`, New(`{t}\`).Match())
}
