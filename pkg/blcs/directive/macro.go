package directive

import "github.com/blcs-lang/blcspp/pkg/blcs/lexer"

// Macro is a single "##define" as parsed from one file. It is read-only
// once inserted into a Data.Macros table.
type Macro struct {
	Name      string
	Line      int
	Arguments []string // raw lexemes; the trailing sentinel "..." denotes variadic
	Body      []lexer.Token
	Macros    map[string]struct{} // names referenced by Body, for cycle detection
	IsVariadic bool
}

// FixedArgumentCount is len(Arguments) minus the variadic sentinel, if any.
func (m *Macro) FixedArgumentCount() int {
	if m.IsVariadic {
		return len(m.Arguments) - 1
	}
	return len(m.Arguments)
}

func (m *Macro) hasArgument(name string) bool {
	for _, a := range m.Arguments {
		if a == name {
			return true
		}
	}
	return false
}

// Data is the per-file output of the directive parser.
type Data struct {
	Macros map[string]*Macro
	Files  []string // "##use"-referenced paths, quotes stripped
}
