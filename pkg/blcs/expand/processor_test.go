package expand

import (
	"testing"

	"github.com/blcs-lang/blcspp/pkg/blcs/directive"
	"github.com/blcs-lang/blcspp/pkg/blcs/lexer"
)

func tokenValues(toks []lexer.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Value
	}
	return out
}

func processSource(t *testing.T, src string) []lexer.Token {
	t.Helper()
	toks, err := lexer.New(src).AllTokens()
	if err != nil {
		t.Fatalf("lexing: %v", err)
	}
	data, err := directive.Parse(toks)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	proc, err := New(data.Macros)
	if err != nil {
		t.Fatalf("validating: %v", err)
	}
	out, err := proc.Process(toks)
	if err != nil {
		t.Fatalf("processing: %v", err)
	}
	return out
}

func equalValues(t *testing.T, got []lexer.Token, want []string) {
	t.Helper()
	gotValues := tokenValues(got)
	if len(gotValues) != len(want) {
		t.Fatalf("got %v, want %v", gotValues, want)
	}
	for i := range want {
		if gotValues[i] != want[i] {
			t.Fatalf("got %v, want %v", gotValues, want)
		}
	}
}

func TestSimpleExpansion(t *testing.T) {
	out := processSource(t, "##blcs\n##define MAX 9\nreturn #MAX;")
	equalValues(t, out, []string{"return", "9", ";"})
	for _, tok := range out {
		if tok.Line != 3 {
			t.Errorf("token %q on line %d, want 3", tok.Value, tok.Line)
		}
	}
}

func TestParameterizedExpansion(t *testing.T) {
	out := processSource(t, "##blcs\n##define add(a, b) #%a + #%b\nreturn #add(1, 2);")
	equalValues(t, out, []string{"return", "1", "+", "2", ";"})
}

func TestVariadicWithPrepend(t *testing.T) {
	src := "##blcs\n##define err(code, ...)\n#{\n$LastError = #%code;\nerror(\"e\" #!vargsp);\n#}\n#err(1, \"a\", \"b\");"
	out := processSource(t, src)
	equalValues(t, out, []string{
		"$LastError", "=", "1", ";",
		"error", "(", "\"e\"", ",", "\"a\"", ",", "\"b\"", ")", ";",
	})
}

func TestStringConcat(t *testing.T) {
	src := "##blcs\n##define cat(x,y) #%x #@ #%y\necho(#cat(\"hi \", \"there\"));"
	out := processSource(t, src)
	equalValues(t, out, []string{"echo", "(", "\"hi there\"", ")", ";"})
}

func TestMixedQuoteConcatDoesNotMerge(t *testing.T) {
	src := "##blcs\n##define cat(x,y) #%x #@ #%y\necho(#cat(\"hi\", 'there'));"
	out := processSource(t, src)
	equalValues(t, out, []string{"echo", "(", "\"hi\"", "'there'", ")", ";"})
	for i, tok := range out {
		if tok.Value == "'there'" && tok.WhitespaceBefore != "" {
			t.Errorf("token %d whitespace_before = %q, want empty after cleared concat", i, tok.WhitespaceBefore)
		}
	}
}

func TestDirectCycleIsRejected(t *testing.T) {
	toks, err := lexer.New("##blcs\n##define A #B\n##define B #A\n#A").AllTokens()
	if err != nil {
		t.Fatalf("lexing: %v", err)
	}
	data, err := directive.Parse(toks)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	_, err = New(data.Macros)
	if err == nil {
		t.Fatal("expected an InfiniteMacroRecursion error, got nil")
	}
}

func TestUndefinedMacroInvocationErrors(t *testing.T) {
	toks, err := lexer.New("##blcs\n#nope;").AllTokens()
	if err != nil {
		t.Fatalf("lexing: %v", err)
	}
	data, err := directive.Parse(toks)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	proc, err := New(data.Macros)
	if err != nil {
		t.Fatalf("validating: %v", err)
	}
	if _, err := proc.Process(toks); err == nil {
		t.Fatal("expected an UndefinedMacro error, got nil")
	}
}

func TestNestedParenArgumentsStayBalanced(t *testing.T) {
	src := "##blcs\n##define f(a, b, c) #%a #%b #%c\n#f(a, g(b, c), d);"
	out := processSource(t, src)
	equalValues(t, out, []string{"a", "g", "(", "b", ",", "c", ")", "d", ";"})
}

func TestVargcFormula(t *testing.T) {
	src := "##blcs\n##define f(a, ...) #!vargc\n#f(1, 2, 3);"
	out := processSource(t, src)
	equalValues(t, out, []string{"-2", ";"})
}

func TestLineKeyword(t *testing.T) {
	out := processSource(t, "##blcs\n##define here #!line\nreturn #here;")
	equalValues(t, out, []string{"return", "3", ";"})
}
