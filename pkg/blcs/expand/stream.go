package expand

import "github.com/blcs-lang/blcspp/pkg/blcs/lexer"

// Stream is the mutable token stream the processor rewrites as it
// iterates: an owned growable vector with an explicit integer cursor,
// not an invalidatable iterator.
type Stream struct {
	tokens []lexer.Token
	index  int
}

// NewStream copies tokens into an owned stream positioned at index 0.
func NewStream(tokens []lexer.Token) *Stream {
	return &Stream{tokens: append([]lexer.Token(nil), tokens...)}
}

// Peek returns the token at index+offset without advancing.
func (s *Stream) Peek(offset int) (lexer.Token, bool) {
	i := s.index + offset
	if i < 0 || i >= len(s.tokens) {
		return lexer.Token{}, false
	}
	return s.tokens[i], true
}

// Read returns the token at the cursor and advances past it.
func (s *Stream) Read() (lexer.Token, bool) {
	tok, ok := s.Peek(0)
	if ok {
		s.index++
	}
	return tok, ok
}

// Remove deletes count tokens starting at start. It does not move the cursor.
func (s *Stream) Remove(start, count int) {
	s.tokens = append(s.tokens[:start], s.tokens[start+count:]...)
}

// Insert splices toks into the stream at start. It does not move the cursor.
func (s *Stream) Insert(start int, toks []lexer.Token) {
	merged := make([]lexer.Token, 0, len(s.tokens)+len(toks))
	merged = append(merged, s.tokens[:start]...)
	merged = append(merged, toks...)
	merged = append(merged, s.tokens[start:]...)
	s.tokens = merged
}

// Seek moves the cursor to index i.
func (s *Stream) Seek(i int) {
	s.index = i
}

// Tokens returns the current token slice.
func (s *Stream) Tokens() []lexer.Token {
	return s.tokens
}
