package mpdproto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// unquote is the test-only mirror of the server's counterpart to
// QuoteAndEscape: strip the surrounding quotes and collapse any
// backslash-escaped character back to itself.
func unquote(t *testing.T, s string) string {
	t.Helper()
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		t.Fatalf("not a quoted string: %q", s)
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	escaped := false
	for _, c := range inner {
		if escaped {
			b.WriteRune(c)
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func TestQuoteAndEscapeRoundTrip(t *testing.T) {
	cases := []string{
		"plain",
		`has "quotes"`,
		`has\backslash`,
		`mixed "q" and \ slash`,
		"",
		"with spaces and (parens)",
	}
	for _, s := range cases {
		quoted := QuoteAndEscape(s)
		assert.True(t, strings.HasPrefix(quoted, `"`))
		assert.True(t, strings.HasSuffix(quoted, `"`))
		assert.Equal(t, s, unquote(t, quoted))
	}
}

func TestEscapeFilterContainsNoLiteralParensOrQuotes(t *testing.T) {
	cases := []string{
		"plain artist name",
		"Artist (Remix)",
		`He said "hi"`,
		"O'Brien",
		`back\slash`,
	}
	for _, s := range cases {
		escaped := EscapeFilter(s)
		// Parentheses may only appear in their backslash-escaped form.
		assert.NotContains(t, strings.ReplaceAll(escaped, `\(`, ""), "(")
		assert.NotContains(t, strings.ReplaceAll(escaped, `\)`, ""), ")")

		// No bare, unescaped quote survives: every quote character
		// present is immediately preceded by a backslash.
		for i, c := range escaped {
			if c == '\'' || c == '"' {
				assert.Greater(t, i, 0, "quote at start of %q is unescaped", escaped)
				assert.Equal(t, byte('\\'), escaped[i-1], "unescaped quote in %q", escaped)
			}
		}
	}
}
