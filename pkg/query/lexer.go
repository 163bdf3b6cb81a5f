package query

import (
	"strings"
	"unicode"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/gn"
)

// TokenKind tags a lexical token (§4.4 "Lexical rules").
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokString
	TokInt
	TokFloat
	TokDate
	TokKeyword
	TokOp
	TokLBracket
	TokRBracket
	TokLParen
	TokRParen
	TokComma
	TokDot
	TokStar
)

// Token is one lexed unit, with its original text preserved in Text for
// error messages and for literal parsing.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// keywords are case-insensitive per §4.4.
var keywords = map[string]bool{
	"where": true, "and": true, "or": true, "not": true, "like": true,
	"contains": true, "in": true, "between": true, "is": true,
	"null": true, "none": true, "empty": true, "distinct": true,
	"correlate": true, "true": true, "false": true,
}

// multiCharOps are matched longest-first.
var multiCharOps = []string{
	"!=", "==", ">=", "<=", "&&", "||",
}

// Lexer tokenizes a mapper-query string (§4.4).
type Lexer struct {
	src []rune
	pos int
}

// NewLexer returns a Lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src)}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) rune {
	i := l.pos + off
	if i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

// Next returns the next token, or a TokEOF token at the end of input.
func (l *Lexer) Next() (Token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: TokEOF, Pos: start}, nil
	}

	c := l.peek()

	switch {
	case c == '\'' || c == '"':
		return l.lexQuotedString(c)
	case c == '[':
		l.pos++
		return Token{Kind: TokLBracket, Text: "[", Pos: start}, nil
	case c == ']':
		l.pos++
		return Token{Kind: TokRBracket, Text: "]", Pos: start}, nil
	case c == '(':
		l.pos++
		return Token{Kind: TokLParen, Text: "(", Pos: start}, nil
	case c == ')':
		l.pos++
		return Token{Kind: TokRParen, Text: ")", Pos: start}, nil
	case c == ',':
		l.pos++
		return Token{Kind: TokComma, Text: ",", Pos: start}, nil
	case c == '.':
		// A dot followed by a digit is part of a float literal like ".5";
		// otherwise it is a path separator.
		if !unicode.IsDigit(l.peekAt(1)) {
			l.pos++
			return Token{Kind: TokDot, Text: ".", Pos: start}, nil
		}
	case c == '*':
		l.pos++
		return Token{Kind: TokStar, Text: "*", Pos: start}, nil
	}

	for _, op := range multiCharOps {
		if l.matchLiteral(op) {
			l.pos += len([]rune(op))
			return Token{Kind: TokOp, Text: op, Pos: start}, nil
		}
	}
	switch c {
	case '=', '>', '<', '!':
		l.pos++
		return Token{Kind: TokOp, Text: string(c), Pos: start}, nil
	}

	if tok, ok := l.lexDate(start); ok {
		return tok, nil
	}

	if unicode.IsDigit(c) || (c == '-' && unicode.IsDigit(l.peekAt(1))) {
		return l.lexNumber(), nil
	}

	if isBareChar(c) {
		return l.lexBareWord(start), nil
	}

	return Token{}, &gn.Error{
		Code: errcode.ParseLexError,
		Msg:  "unexpected character in query: " + string(c),
	}
}

func (l *Lexer) matchLiteral(s string) bool {
	rs := []rune(s)
	for i, r := range rs {
		if l.peekAt(i) != r {
			return false
		}
	}
	return true
}

func isBareChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) ||
		c == '_' || c == '-' || c == '×' || c == '+' || c == '\'' || c == '/'
}

func (l *Lexer) lexQuotedString(quote rune) (Token, error) {
	start := l.pos
	l.pos++ // skip opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, &gn.Error{
				Code: errcode.ParseLexError,
				Msg:  "unterminated quoted string",
			}
		}
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			b.WriteRune(l.src[l.pos+1])
			l.pos += 2
			continue
		}
		if c == quote {
			l.pos++
			break
		}
		b.WriteRune(c)
		l.pos++
	}
	return Token{Kind: TokString, Text: b.String(), Pos: start}, nil
}

// lexDate recognizes ISO (yyyy-mm-dd) and common dd/mm/yyyy or d-m-yyyy
// date literals (§4.5 item 6) as a single token, so C5 can parse them as
// whole dates rather than as separate arithmetic operands. It only
// commits to a date when the run of digit/separator runes has at least
// two separators, distinguishing "2024-01-15" from a plain integer
// followed by unary-minus arithmetic like "id - 1".
func (l *Lexer) lexDate(start int) (Token, bool) {
	if !unicode.IsDigit(l.peek()) {
		return Token{}, false
	}
	i := l.pos
	seps := 0
	for i < len(l.src) && (unicode.IsDigit(l.src[i]) || l.src[i] == '-' || l.src[i] == '/') {
		if l.src[i] == '-' || l.src[i] == '/' {
			seps++
		}
		i++
	}
	if seps < 2 {
		return Token{}, false
	}
	text := string(l.src[l.pos:i])
	l.pos = i
	return Token{Kind: TokDate, Text: text, Pos: start}, true
}

func (l *Lexer) lexNumber() Token {
	start := l.pos
	if l.peek() == '-' {
		l.pos++
	}
	isFloat := false
	for l.pos < len(l.src) && (unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		if l.src[l.pos] == '.' {
			isFloat = true
		}
		l.pos++
	}
	text := string(l.src[start:l.pos])
	kind := TokInt
	if isFloat {
		kind = TokFloat
	}
	return Token{Kind: kind, Text: text, Pos: start}
}

func (l *Lexer) lexBareWord(start int) Token {
	for l.pos < len(l.src) && isBareChar(l.src[l.pos]) {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	if keywords[strings.ToLower(text)] {
		return Token{Kind: TokKeyword, Text: strings.ToLower(text), Pos: start}
	}
	return Token{Kind: TokIdent, Text: text, Pos: start}
}

// Tokenize lexes the whole of src, returning every token up to and
// including the terminal TokEOF.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks, nil
		}
	}
}
