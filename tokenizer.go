package coc

import (
	"strings"

	"github.com/cznic/mathutil"
)

// TokenizeError is the structured failure of the tokenizer phase (§7).
type TokenizeError struct {
	Kind TokenizeErrorKind
	Char rune
	Pos  Pos
}

type TokenizeErrorKind int

const (
	UnexpectedChar TokenizeErrorKind = iota
	UnclosedComment
)

func (e *TokenizeError) Error() string {
	switch e.Kind {
	case UnexpectedChar:
		return "unexpected character '" + string(e.Char) + "' at " + e.Pos.String()
	case UnclosedComment:
		return "unclosed comment starting at " + e.Pos.String()
	}
	panic("unreachable")
}

// Tokenize runs the tokenizer to completion, returning every token up to
// and including the terminal EOF, or the first error encountered.
func Tokenize(source string) ([]Token, error) {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	tz := NewTokenizer(source)
	tokens := []Token{}
	for {
		tok, err := tz.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return tokens, nil
}

// Tokenizer produces one Token per call to Next. It operates over a UTF-8
// source with line endings already normalized to '\n'.
type Tokenizer struct {
	source []rune
	pos    int
	line   int
	col    int
}

func NewTokenizer(source string) *Tokenizer {
	return &Tokenizer{
		source: []rune(source),
		pos:    0,
		line:   1,
		col:    1,
	}
}

func (t *Tokenizer) Next() (Token, error) {
	for {
		if err := t.skipWhitespaceAndComments(); err != nil {
			return Token{}, err
		}
		start := t.here()
		c, ok := t.peek()
		if !ok {
			return t.tok(EOF, "", start), nil
		}
		if kind, content, ok := t.scanPunct(); ok {
			return t.tok(kind, content, start), nil
		}
		if isIdentStart(c) {
			return t.scanIdent(start), nil
		}
		t.advance()
		return Token{}, &TokenizeError{Kind: UnexpectedChar, Char: c, Pos: start}
	}
}

func (t *Tokenizer) skipWhitespaceAndComments() error {
	for {
		c, ok := t.peek()
		if !ok {
			return nil
		}
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			t.advance()
		case t.hasPrefix("--"):
			for {
				c, ok := t.peek()
				if !ok || c == '\n' {
					break
				}
				t.advance()
			}
		case t.hasPrefix("{-"):
			if err := t.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (t *Tokenizer) skipBlockComment() error {
	start := t.here()
	depth := 0
	for {
		if t.hasPrefix("{-") {
			t.advance()
			t.advance()
			depth++
			continue
		}
		if t.hasPrefix("-}") {
			t.advance()
			t.advance()
			depth--
			if depth == 0 {
				return nil
			}
			continue
		}
		if _, ok := t.peek(); !ok {
			return &TokenizeError{Kind: UnclosedComment, Pos: start}
		}
		t.advance()
	}
}

// longest-match punctuation, tried in the order the spec fixes (§4.A.5).
var punctuation = []struct {
	text string
	kind TokenKind
}{
	{"=>", FatArrow},
	{"->", Arrow},
	{":=", ColonEq},
	{".1", Dot1},
	{".2", Dot2},
	{"(", LParen},
	{")", RParen},
	{":", Colon},
	{",", Comma},
	{"<", Langle},
	{">", Rangle},
	{"&", Amp},
	{";", Semi},
}

func (t *Tokenizer) scanPunct() (TokenKind, string, bool) {
	for _, p := range punctuation {
		if t.hasPrefix(p.text) {
			for range p.text {
				t.advance()
			}
			return p.kind, p.text, true
		}
	}
	return 0, "", false
}

func isIdentStart(c rune) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9') || c == '\''
}

func (t *Tokenizer) scanIdent(start Pos) Token {
	var b strings.Builder
	for {
		c, ok := t.peek()
		if !ok || !isIdentPart(c) {
			break
		}
		b.WriteRune(c)
		t.advance()
	}
	content := b.String()
	if kind, ok := keywords[content]; ok {
		return t.tok(kind, content, start)
	}
	return t.tok(IDENT, content, start)
}

func (t *Tokenizer) hasPrefix(s string) bool {
	rs := []rune(s)
	if t.pos+len(rs) > len(t.source) {
		return false
	}
	for i, r := range rs {
		if t.source[t.pos+i] != r {
			return false
		}
	}
	return true
}

func (t *Tokenizer) peek() (rune, bool) {
	if t.pos >= len(t.source) {
		return 0, false
	}
	return t.source[t.pos], true
}

func (t *Tokenizer) advance() {
	c, ok := t.peek()
	if !ok {
		return
	}
	t.pos = mathutil.Clamp(t.pos+1, 0, len(t.source))
	if c == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
}

func (t *Tokenizer) here() Pos {
	return Pos{Line: t.line, Col: t.col}
}

func (t *Tokenizer) tok(kind TokenKind, content string, start Pos) Token {
	return Token{
		Kind:    kind,
		Content: content,
		Range:   Range{Start: start, End: t.here()},
	}
}
