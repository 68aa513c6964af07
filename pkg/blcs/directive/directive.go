// Package directive reads a BLCS token stream and collects macro
// definitions and file imports, rejecting anything that violates the
// directive grammar before the processor ever sees it.
package directive

import (
	"github.com/blcs-lang/blcspp/pkg/blcs/blcserr"
	"github.com/blcs-lang/blcspp/pkg/blcs/lexer"
)

// Parser walks a token slice with a single cursor and one token of
// lookahead, never backtracking.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse runs the directive parser over tokens and returns the
// collected macros and file imports.
func Parse(tokens []lexer.Token) (*Data, error) {
	p := &Parser{tokens: tokens}
	return p.parse()
}

func (p *Parser) peek() (lexer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) parse() (*Data, error) {
	data := &Data{Macros: map[string]*Macro{}}
	directiveSeen := false

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		if tok.Type == lexer.Directive {
			if err := p.dispatchDirective(tok, data, &directiveSeen); err != nil {
				return nil, err
			}
			continue
		}

		if tok.Type.IsPreprocessor() && tok.Type != lexer.Macro {
			return nil, &blcserr.UnexpectedToken{
				Line: tok.Line,
				Msg:  "'" + tok.Value + "' can only be used in a macro definition",
			}
		}
		p.pos++
	}

	if !directiveSeen {
		return nil, &blcserr.Syntax{Line: 1, Msg: "missing '##blcs' directive"}
	}
	return data, nil
}

func (p *Parser) dispatchDirective(d lexer.Token, data *Data, directiveSeen *bool) error {
	switch d.Value {
	case "##blcs":
		if *directiveSeen {
			return &blcserr.Syntax{Line: d.Line, Msg: "'##blcs' must be the first directive and appear exactly once"}
		}
		p.pos++
		if next, ok := p.peek(); ok && next.Line == d.Line {
			return &blcserr.Syntax{Line: d.Line, Msg: "'##blcs' must be alone on its line"}
		}
		*directiveSeen = true
		return nil

	case "##define":
		if !*directiveSeen {
			return &blcserr.Syntax{Line: d.Line, Msg: "'##blcs' must be the first directive and appear exactly once"}
		}
		return p.parseDefine(d, data)

	case "##use":
		if !*directiveSeen {
			return &blcserr.Syntax{Line: d.Line, Msg: "'##blcs' must be the first directive and appear exactly once"}
		}
		return p.parseUse(d, data)

	default:
		return &blcserr.Syntax{Line: d.Line, Msg: "unknown directive '" + d.Value + "'"}
	}
}

func (p *Parser) parseUse(d lexer.Token, data *Data) error {
	p.pos++ // consume "##use"
	pathTok, ok := p.peek()
	if !ok || pathTok.Type != lexer.String || pathTok.Line != d.Line {
		return &blcserr.UnexpectedEndOfLine{Line: d.Line, Msg: "'##use' requires a string path on the same line"}
	}
	p.pos++
	if next, ok := p.peek(); ok && next.Line == d.Line {
		return &blcserr.Syntax{Line: d.Line, Msg: "unexpected token after '##use' path"}
	}
	data.Files = append(data.Files, unquote(pathTok.Value))
	return nil
}

// parseDefine handles "##define name …", dispatching to parseDefineArgs
// and parseDefineBody for the optional parameter list and the body.
func (p *Parser) parseDefine(d lexer.Token, data *Data) error {
	p.pos++ // consume "##define"
	nameTok, ok := p.peek()
	if !ok || nameTok.Type != lexer.Identifier || nameTok.Line != d.Line {
		return &blcserr.UnexpectedEndOfLine{Line: d.Line, Msg: "'##define' requires a macro name on the same line"}
	}
	if _, exists := data.Macros[nameTok.Value]; exists {
		return &blcserr.MultipleDefinitions{Line: d.Line, Name: nameTok.Value}
	}
	p.pos++

	m := &Macro{Name: nameTok.Value, Line: d.Line, Macros: map[string]struct{}{}}

	if next, ok := p.peek(); ok && next.Type == lexer.ParenLeft && next.Line == d.Line {
		if err := p.parseDefineArgs(d, m); err != nil {
			return err
		}
	}

	brackets := false
	if next, ok := p.peek(); ok && next.Type == lexer.DirectiveCurlyLeft {
		if next.Line != d.Line && next.Line != d.Line+1 {
			return &blcserr.Syntax{Line: d.Line, Msg: "'#{' too far from macro declaration"}
		}
		brackets = true
	}

	if err := p.parseDefineBody(d, m, brackets); err != nil {
		return err
	}

	data.Macros[m.Name] = m
	return nil
}

// parseDefineArgs consumes "(p1, p2, ...)" after a macro name.
func (p *Parser) parseDefineArgs(d lexer.Token, m *Macro) error {
	p.pos++ // consume '('
	line := d.Line

	for {
		nameTok, ok := p.peek()
		if !ok {
			return &blcserr.UnexpectedEndOfCode{Line: d.Line, Msg: "unterminated macro argument list"}
		}
		if nameTok.Type != lexer.Identifier && nameTok.Type != lexer.MacroVarArgs {
			return &blcserr.UnexpectedToken{Line: nameTok.Line, Msg: "expected a parameter name"}
		}
		if nameTok.Line != line {
			return &blcserr.UnexpectedEndOfLine{Line: line, Msg: "macro argument list must stay on one line"}
		}
		m.Arguments = append(m.Arguments, nameTok.Value)
		p.pos++

		sep, ok := p.peek()
		if !ok {
			return &blcserr.UnexpectedEndOfCode{Line: d.Line, Msg: "unterminated macro argument list"}
		}
		if sep.Type != lexer.Comma && sep.Type != lexer.ParenRight {
			return &blcserr.UnexpectedToken{Line: sep.Line, Msg: "expected ',' or ')'"}
		}
		if sep.Line != line {
			return &blcserr.UnexpectedEndOfLine{Line: line, Msg: "macro argument list must stay on one line"}
		}
		p.pos++
		if sep.Type == lexer.ParenRight {
			break
		}
	}

	for i, arg := range m.Arguments {
		if arg == "..." && i != len(m.Arguments)-1 {
			return &blcserr.Syntax{Line: d.Line, Msg: "variadic parameters must be last"}
		}
	}
	if len(m.Arguments) > 0 && m.Arguments[len(m.Arguments)-1] == "..." {
		m.IsVariadic = true
	}
	return nil
}

// parseDefineBody consumes the macro body, either a single bracketed
// "#{ … #}" block or the remainder of the declaration line.
func (p *Parser) parseDefineBody(d lexer.Token, m *Macro, brackets bool) error {
	if brackets {
		p.pos++ // consume '#{'
	}
	start := p.pos

	for {
		tok, ok := p.peek()
		if !ok {
			if brackets {
				return &blcserr.UnexpectedEndOfCode{Line: d.Line, Msg: "missing '#}' to close macro body"}
			}
			break
		}
		if brackets {
			if tok.Type == lexer.DirectiveCurlyRight {
				break
			}
		} else if tok.Line != d.Line {
			break
		}
		if err := p.validateBodyToken(tok, m); err != nil {
			return err
		}
		p.pos++
	}

	body := append([]lexer.Token(nil), p.tokens[start:p.pos]...)
	if brackets {
		p.pos++ // consume '#}'
	}

	if !brackets && len(body) == 0 {
		return &blcserr.UnexpectedEndOfLine{Line: d.Line, Msg: "macro body must be non-empty"}
	}
	if len(body) > 0 {
		if body[0].Type == lexer.MacroConcat || body[len(body)-1].Type == lexer.MacroConcat {
			return &blcserr.Syntax{Line: d.Line, Msg: "macro body cannot begin or end with '#@'"}
		}
		body[0].WhitespaceBefore = ""
	}
	m.Body = body
	return nil
}

func (p *Parser) validateBodyToken(tok lexer.Token, m *Macro) error {
	switch tok.Type {
	case lexer.Macro:
		name := lexer.MacroName(tok)
		if name == m.Name {
			return &blcserr.Syntax{Line: tok.Line, Msg: "macro '" + m.Name + "' cannot reference itself"}
		}
		m.Macros[name] = struct{}{}
	case lexer.MacroParameter:
		name := lexer.ParameterName(tok)
		if !m.hasArgument(name) {
			return &blcserr.UndefinedMacroParameter{Line: tok.Line, Name: name}
		}
	case lexer.MacroKeyword:
		name := tok.Value[2:]
		switch name {
		case "line":
		case "vargc", "vargs", "vargsp":
			if !m.IsVariadic {
				return &blcserr.Syntax{Line: tok.Line, Msg: "'#!" + name + "' requires a variadic macro"}
			}
		default:
			return &blcserr.Syntax{Line: tok.Line, Msg: "unknown macro keyword '#!" + name + "'"}
		}
	case lexer.Directive, lexer.DirectiveCurlyLeft, lexer.DirectiveCurlyRight, lexer.MacroVarArgs:
		return &blcserr.UnexpectedToken{Line: tok.Line, Msg: "'" + tok.Value + "' is not valid inside a macro body"}
	}
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
