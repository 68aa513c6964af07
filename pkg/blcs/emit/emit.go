// Package emit reconstructs source text from a processed token stream,
// restoring line gaps and leading whitespace.
package emit

import (
	"strings"

	"github.com/blcs-lang/blcspp/pkg/blcs/lexer"
)

// Tokens renders tokens back to text. Line gaps are reconstructed as
// runs of "\n"; within a line, whitespace_before precedes each value.
func Tokens(tokens []lexer.Token) string {
	var b strings.Builder
	line := 1
	for _, t := range tokens {
		if gap := t.Line - line; gap > 0 {
			b.WriteString(strings.Repeat("\n", gap))
		}
		b.WriteString(t.WhitespaceBefore)
		b.WriteString(t.Value)
		line = t.Line
	}
	return b.String()
}
