package lexer

import (
	"strings"

	"github.com/blcs-lang/blcspp/pkg/blcs/blcserr"
)

// Lexer scans BLCS source text into a Token stream one character at a
// time, accumulating whitespace runs and line position as it goes.
type Lexer struct {
	input  string
	pos    int
	line   int
	ws     strings.Builder // whitespace accumulated since the last emitted token
	commentDepth int
}

// New creates a Lexer over input. Line numbers are 1-based.
func New(input string) *Lexer {
	return &Lexer{input: input, pos: 0, line: 1}
}

// AllTokens scans the entire input and returns the full token slice. A
// lexical error aborts the scan and is returned alongside whatever
// tokens were produced so far.
func (l *Lexer) AllTokens() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return toks, err
		}
		if tok == nil {
			return toks, nil
		}
		toks = append(toks, *tok)
	}
}

// Next returns the next token, or (nil, nil) at end of input.
func (l *Lexer) Next() (*Token, error) {
	for {
		if l.pos >= len(l.input) {
			return nil, nil
		}
		c := l.input[l.pos]

		switch {
		case c == '\r':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '\n' {
				l.pos++
			}
			l.line++
			l.ws.Reset()
			continue
		case c == '\n':
			l.pos++
			l.line++
			l.ws.Reset()
			continue
		case c == ' ' || c == '\t':
			l.ws.WriteByte(c)
			l.pos++
			continue
		case c == '/' && l.peekAt(1) == '/':
			l.skipLineComment()
			continue
		case c == '/' && l.peekAt(1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	startLine := l.line
	ws := l.ws.String()
	l.ws.Reset()
	c := l.input[l.pos]

	switch {
	case c == '#':
		return l.scanHashFamily(startLine, ws)
	case c == '(':
		l.pos++
		return &Token{Type: ParenLeft, Value: "(", Line: startLine, WhitespaceBefore: ws}, nil
	case c == ')':
		l.pos++
		return &Token{Type: ParenRight, Value: ")", Line: startLine, WhitespaceBefore: ws}, nil
	case c == ',':
		l.pos++
		return &Token{Type: Comma, Value: ",", Line: startLine, WhitespaceBefore: ws}, nil
	case c == '\'' || c == '"':
		return l.scanString(startLine, ws, c)
	case c == '.':
		return l.scanDot(startLine, ws)
	case isDigit(c):
		return l.scanNumber(startLine, ws)
	case isIdentStart(c):
		return l.scanIdentifier(startLine, ws)
	case isOperatorChar(c):
		l.pos++
		return &Token{Type: Punctuation, Value: string(c), Line: startLine, WhitespaceBefore: ws}, nil
	default:
		return nil, &blcserr.UnexpectedToken{Line: startLine, Msg: string(c)}
	}
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) skipLineComment() {
	l.pos += 2
	for l.pos < len(l.input) && l.input[l.pos] != '\n' && l.input[l.pos] != '\r' {
		l.pos++
	}
}

// skipBlockComment discards a /* ... */ comment. BLCS extends the
// TorqueScript grammar to allow nested block comments, so "/* /* */ */"
// is one comment, tracked with a depth counter.
func (l *Lexer) skipBlockComment() error {
	startLine := l.line
	l.commentDepth = 0
	l.pos += 2
	l.commentDepth++
	for l.commentDepth > 0 {
		if l.pos >= len(l.input) {
			return &blcserr.UnterminatedComment{Line: startLine}
		}
		if l.input[l.pos] == '/' && l.peekAt(1) == '*' {
			l.commentDepth++
			l.pos += 2
			continue
		}
		if l.input[l.pos] == '*' && l.peekAt(1) == '/' {
			l.commentDepth--
			l.pos += 2
			continue
		}
		if l.input[l.pos] == '\n' {
			l.line++
			l.pos++
			continue
		}
		if l.input[l.pos] == '\r' {
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '\n' {
				l.pos++
			}
			l.line++
			continue
		}
		l.pos++
	}
	return nil
}

// scanHashFamily scans any of the six "#"-prefixed directive families
// sharing the sigil "#", plus bare "#name" macro invocations.
func (l *Lexer) scanHashFamily(startLine int, ws string) (*Token, error) {
	start := l.pos
	l.pos++ // consume '#'

	if l.pos >= len(l.input) {
		return nil, &blcserr.UnexpectedToken{Line: startLine, Msg: "'#' at end of input"}
	}
	second := l.input[l.pos]

	switch second {
	case '#', '%', '!':
		l.pos++
		if l.pos >= len(l.input) || !isIdentStart(l.input[l.pos]) {
			return nil, &blcserr.UnexpectedToken{Line: startLine, Msg: "expected identifier after '#" + string(second) + "'"}
		}
		for l.pos < len(l.input) && isIdentContinue(l.input[l.pos]) {
			l.pos++
		}
		value := l.input[start:l.pos]
		var typ TokenType
		switch second {
		case '#':
			typ = Directive
		case '%':
			typ = MacroParameter
		case '!':
			typ = MacroKeyword
		}
		return &Token{Type: typ, Value: value, Line: startLine, WhitespaceBefore: ws}, nil

	case '{':
		l.pos++
		return &Token{Type: DirectiveCurlyLeft, Value: "#{", Line: startLine, WhitespaceBefore: ws}, nil
	case '}':
		l.pos++
		return &Token{Type: DirectiveCurlyRight, Value: "#}", Line: startLine, WhitespaceBefore: ws}, nil
	case '@':
		l.pos++
		return &Token{Type: MacroConcat, Value: "#@", Line: startLine, WhitespaceBefore: ws}, nil

	default:
		if !isIdentStart(second) {
			return nil, &blcserr.UnexpectedToken{Line: startLine, Msg: "expected identifier after '#'"}
		}
		for l.pos < len(l.input) && isIdentContinue(l.input[l.pos]) {
			l.pos++
		}
		value := l.input[start:l.pos]
		return &Token{Type: Macro, Value: value, Line: startLine, WhitespaceBefore: ws}, nil
	}
}

func (l *Lexer) scanString(startLine int, ws string, quote byte) (*Token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	escapes := 0
	for {
		if l.pos >= len(l.input) {
			return nil, &blcserr.UnterminatedString{Line: startLine}
		}
		c := l.input[l.pos]
		if c == '\n' || c == '\r' {
			return nil, &blcserr.UnexpectedEndOfLine{Line: startLine, Msg: "unterminated string literal"}
		}
		if c == '\\' {
			escapes++
			l.pos++
			continue
		}
		if c == quote && escapes%2 == 0 {
			l.pos++
			break
		}
		escapes = 0
		l.pos++
	}
	return &Token{Type: String, Value: l.input[start:l.pos], Line: startLine, WhitespaceBefore: ws}, nil
}

func (l *Lexer) scanDot(startLine int, ws string) (*Token, error) {
	if l.peekAt(1) == '.' && l.peekAt(2) == '.' {
		l.pos += 3
		return &Token{Type: MacroVarArgs, Value: "...", Line: startLine, WhitespaceBefore: ws}, nil
	}
	l.pos++
	return &Token{Type: Punctuation, Value: ".", Line: startLine, WhitespaceBefore: ws}, nil
}

func (l *Lexer) scanNumber(startLine int, ws string) (*Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	return &Token{Type: Number, Value: l.input[start:l.pos], Line: startLine, WhitespaceBefore: ws}, nil
}

// scanIdentifier reads an identifier run, folding "::" namespace
// continuations into the same token (a BLCS extension over plain
// TorqueScript identifiers: "Namespace::Method" lexes as one token).
func (l *Lexer) scanIdentifier(startLine int, ws string) (*Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isIdentContinue(l.input[l.pos]) {
		l.pos++
	}
	for l.peekAt(0) == ':' && l.peekAt(1) == ':' && isIdentStart(l.peekAt(2)) {
		l.pos += 2
		for l.pos < len(l.input) && isIdentContinue(l.input[l.pos]) {
			l.pos++
		}
	}
	return &Token{Type: Identifier, Value: l.input[start:l.pos], Line: startLine, WhitespaceBefore: ws}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// isOperatorChar reports whether c is one of the single-character
// delimiter/operator lexemes emitted as Punctuation.
func isOperatorChar(c byte) bool {
	switch c {
	case '{', '}', '[', ']', '?', ':', ';', '+', '-', '*', '/',
		'<', '>', '=', '|', '&', '^', '@', '~', '!', '$', '%':
		return true
	default:
		return false
	}
}
