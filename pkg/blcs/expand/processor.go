// Package expand implements the three-pass directive processor: macro
// validation and cycle detection, expand-and-strip over a mutable
// token stream, and left-to-right "#@" concatenation.
package expand

import (
	"strconv"

	"github.com/blcs-lang/blcspp/pkg/blcs/blcserr"
	"github.com/blcs-lang/blcspp/pkg/blcs/directive"
	"github.com/blcs-lang/blcspp/pkg/blcs/lexer"
)

// Processor expands macro invocations and strips directives against one
// job-wide, already-validated macro table.
type Processor struct {
	macros map[string]*directive.Macro
}

// New validates macros (Pass 1) once for the whole job and returns a
// Processor ready to run Pass 2 and Pass 3 against each file's tokens.
func New(macros map[string]*directive.Macro) (*Processor, error) {
	if err := validateMacros(macros); err != nil {
		return nil, err
	}
	return &Processor{macros: macros}, nil
}

// Process runs Pass 2 (expand and strip) followed by Pass 3
// (concatenation) over one file's token stream.
func (p *Processor) Process(tokens []lexer.Token) ([]lexer.Token, error) {
	stream := NewStream(tokens)
	if err := p.expandAndStrip(stream); err != nil {
		return nil, err
	}
	p.concatenate(stream)
	return stream.Tokens(), nil
}

// Pass 2: expand and strip.
func (p *Processor) expandAndStrip(stream *Stream) error {
	for {
		tok, ok := stream.Read()
		if !ok {
			return nil
		}
		switch tok.Type {
		case lexer.Macro:
			if err := p.expandMacro(stream, tok); err != nil {
				return err
			}
		case lexer.Directive:
			if err := p.stripDirective(stream, tok); err != nil {
				return err
			}
		}
	}
}

func (p *Processor) expandMacro(stream *Stream, macroTok lexer.Token) error {
	start := stream.index - 1
	line := macroTok.Line
	name := lexer.MacroName(macroTok)

	macro, ok := p.macros[name]
	if !ok {
		return &blcserr.UndefinedMacro{Line: line, Name: name}
	}

	args, err := p.collectArguments(stream, macro, line)
	if err != nil {
		return err
	}
	body, err := p.materializeBody(macro, args, line)
	if err != nil {
		return err
	}

	stream.Remove(start, stream.index-start)
	stream.Insert(start, body)
	stream.Seek(start)
	return nil
}

// collectArguments gathers the parenthesized, comma-separated argument
// lists of a macro call. Commas nested inside a deeper paren depth do
// not separate arguments.
func (p *Processor) collectArguments(stream *Stream, macro *directive.Macro, line int) ([][]lexer.Token, error) {
	if len(macro.Arguments) == 0 {
		return nil, nil
	}

	next, ok := stream.Peek(0)
	if !ok || next.Type != lexer.ParenLeft {
		if macro.FixedArgumentCount() > 0 {
			return nil, &blcserr.Syntax{Line: line, Msg: "macro '" + macro.Name + "' requires arguments"}
		}
		return nil, nil
	}
	stream.Read() // consume '('

	depth := 1
	argIndex := 0
	var args [][]lexer.Token

	for depth > 0 {
		tok, ok := stream.Peek(0)
		if !ok {
			return nil, &blcserr.UnexpectedEndOfCode{Line: line, Msg: "unterminated macro argument list"}
		}
		switch tok.Type {
		case lexer.ParenLeft:
			depth++
		case lexer.ParenRight:
			depth--
		}
		if depth > 0 {
			stream.Read()
			if depth == 1 && tok.Type == lexer.Comma {
				argIndex++
				continue
			}
			for len(args) <= argIndex {
				args = append(args, []lexer.Token{})
			}
			args[argIndex] = append(args[argIndex], tok.Clone(line))
		}
	}
	stream.Read() // consume ')'

	if len(args) < macro.FixedArgumentCount() {
		return nil, &blcserr.Syntax{Line: line, Msg: "not enough arguments to macro '" + macro.Name + "'"}
	}
	if len(args) > macro.FixedArgumentCount() && !macro.IsVariadic {
		return nil, &blcserr.Syntax{Line: line, Msg: "too many arguments to macro '" + macro.Name + "'"}
	}
	return args, nil
}

func (p *Processor) materializeBody(macro *directive.Macro, args [][]lexer.Token, line int) ([]lexer.Token, error) {
	var out []lexer.Token
	for _, t := range macro.Body {
		switch t.Type {
		case lexer.MacroParameter:
			idx := indexOfString(macro.Arguments, lexer.ParameterName(t))
			if idx >= 0 && idx < len(args) {
				for _, at := range args[idx] {
					out = append(out, at.Clone(line))
				}
			}
		case lexer.MacroKeyword:
			toks, err := p.materializeKeyword(t, macro, args, line)
			if err != nil {
				return nil, err
			}
			out = append(out, toks...)
		default:
			out = append(out, t.Clone(line))
		}
	}
	return out, nil
}

func (p *Processor) materializeKeyword(t lexer.Token, macro *directive.Macro, args [][]lexer.Token, line int) ([]lexer.Token, error) {
	name := t.Value[2:] // strip "#!"
	switch name {
	case "line":
		return []lexer.Token{numberToken(strconv.Itoa(line), line, t.WhitespaceBefore)}, nil
	case "vargc":
		// Sign convention matches the original implementation literally:
		// this is fixed_argument_count - len(args), not the other way
		// round, and yields non-positive values when extra arguments exist.
		n := macro.FixedArgumentCount() - len(args)
		return []lexer.Token{numberToken(strconv.Itoa(n), line, t.WhitespaceBefore)}, nil
	case "vargs", "vargsp":
		return p.materializeVarArgs(t, macro, args, line, name == "vargsp")
	default:
		return nil, &blcserr.Syntax{Line: line, Msg: "unknown macro keyword '#!" + name + "'"}
	}
}

func (p *Processor) materializeVarArgs(t lexer.Token, macro *directive.Macro, args [][]lexer.Token, line int, prepend bool) ([]lexer.Token, error) {
	fixed := macro.FixedArgumentCount()
	if len(args) <= fixed {
		return nil, nil
	}

	var out []lexer.Token
	if prepend {
		out = append(out, lexer.Token{Type: lexer.Comma, Value: ",", Line: line, WhitespaceBefore: t.WhitespaceBefore})
	}

	for i := fixed; i < len(args); i++ {
		group := append([]lexer.Token(nil), args[i]...)
		if i == fixed && len(group) > 0 {
			ws := t.WhitespaceBefore
			if prepend {
				ws = " "
			}
			group[0].WhitespaceBefore = ws
		}
		if i > fixed {
			out = append(out, lexer.Token{Type: lexer.Comma, Value: ",", Line: line})
		}
		for _, at := range group {
			out = append(out, at.Clone(line))
		}
	}
	return out, nil
}

func numberToken(value string, line int, ws string) lexer.Token {
	return lexer.Token{Type: lexer.Number, Value: value, Line: line, WhitespaceBefore: ws}
}

// stripDirective removes a directive line (or block) entirely, having
// already consumed the Directive token itself.
func (p *Processor) stripDirective(stream *Stream, d lexer.Token) error {
	start := stream.index - 1

	switch d.Value {
	case "##use":
		if _, ok := stream.Read(); !ok {
			return &blcserr.UnexpectedEndOfCode{Line: d.Line, Msg: "truncated '##use'"}
		}

	case "##define":
		nameTok, ok := stream.Read()
		if !ok {
			return &blcserr.UnexpectedEndOfCode{Line: d.Line, Msg: "truncated '##define'"}
		}
		macro, ok := p.macros[nameTok.Value]
		if !ok {
			return &blcserr.UndefinedMacro{Line: d.Line, Name: nameTok.Value}
		}
		if len(macro.Arguments) > 0 {
			for {
				tok, ok := stream.Read()
				if !ok {
					return &blcserr.UnexpectedEndOfCode{Line: d.Line, Msg: "truncated '##define' argument list"}
				}
				if tok.Type == lexer.ParenRight {
					break
				}
			}
		}
		if next, ok := stream.Peek(0); ok && next.Type == lexer.DirectiveCurlyLeft {
			stream.Read()
			for {
				tok, ok := stream.Read()
				if !ok {
					return &blcserr.UnexpectedEndOfCode{Line: d.Line, Msg: "truncated macro body"}
				}
				if tok.Type == lexer.DirectiveCurlyRight {
					break
				}
			}
		} else {
			for {
				next, ok := stream.Peek(0)
				if !ok || next.Line != d.Line {
					break
				}
				stream.Read()
			}
		}

	case "##blcs":
		// nothing to skip

	default:
		return &blcserr.Syntax{Line: d.Line, Msg: "unknown directive '" + d.Value + "'"}
	}

	stream.Remove(start, stream.index-start)
	stream.Seek(start)
	return nil
}

// Pass 3: concatenation.
func (p *Processor) concatenate(stream *Stream) {
	stream.Seek(0)
	for {
		tok, ok := stream.Read()
		if !ok {
			return
		}
		if tok.Type != lexer.MacroConcat {
			continue
		}

		afterRead := stream.index
		leftIdx := afterRead - 2
		rightIdx := afterRead
		if leftIdx < 0 || rightIdx >= len(stream.tokens) {
			continue
		}

		left := stream.tokens[leftIdx]
		right := stream.tokens[rightIdx]

		if left.Type == lexer.String && right.Type == lexer.String &&
			len(left.Value) > 0 && len(right.Value) > 0 && left.Value[0] == right.Value[0] {
			quote := left.Value[0]
			merged := string(quote) + unquoteBody(left.Value) + unquoteBody(right.Value) + string(quote)
			stream.tokens[leftIdx].Value = merged
			stream.Remove(afterRead-1, 2)
		} else {
			stream.tokens[rightIdx].WhitespaceBefore = ""
			stream.Remove(afterRead-1, 1)
		}
		stream.Seek(afterRead - 1)
	}
}

func unquoteBody(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
