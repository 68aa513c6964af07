package emit

import (
	"testing"

	"github.com/blcs-lang/blcspp/pkg/blcs/lexer"
)

func TestTokensReconstructsLineGapsAndWhitespace(t *testing.T) {
	toks := []lexer.Token{
		{Type: lexer.Identifier, Value: "return", Line: 1},
		{Type: lexer.Number, Value: "9", Line: 1, WhitespaceBefore: " "},
		{Type: lexer.Punctuation, Value: ";", Line: 1},
		{Type: lexer.Identifier, Value: "next", Line: 3},
	}
	got := Tokens(toks)
	want := "return 9;\n\nnext"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTokensRoundTripsWhenNoDirectives(t *testing.T) {
	src := "function foo(%a) {\n  return %a + 1;\n}"
	toks, err := lexer.New(src).AllTokens()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	got := Tokens(toks)
	if got != src {
		t.Errorf("got %q, want %q", got, src)
	}
}
