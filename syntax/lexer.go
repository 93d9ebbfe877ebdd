package syntax

import (
	"strings"
	"unicode"

	"skeinc/report"
)

// Lexer is responsible for tokenizing a source unit.  The lexer operates over
// in-memory source text and never fails hard: malformed input raises a
// positioned compile error which Tokenize converts into a diagnostic before
// resynchronizing at the next recognizable boundary.
type Lexer struct {
	src     []rune
	ndx     int
	tokBuff *strings.Builder

	line, col           int
	startLine, startCol int
}

// NewLexer creates a new lexer for the given source text.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:     []rune(src),
		tokBuff: &strings.Builder{},
	}
}

// Tokenize lexes an entire source unit into a token stream, recording lexical
// errors on the reporter.  The returned stream always ends with an EOF token.
// A single pass surfaces as many lexical errors as it can: after each error
// the lexer skips one rune and resumes.
func Tokenize(src string, rep *report.Reporter) []*Token {
	l := NewLexer(src)

	var toks []*Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			rep.Error(report.StageLex, err.Span, "%s", err.Message)

			// Resynchronize: drop the offending rune and the partial token.
			l.skip()
			l.tokBuff.Reset()
			continue
		}

		toks = append(toks, tok)
		if tok.Kind == TOK_EOF {
			return toks
		}
	}
}

// NextToken retrieves the next token from the source.  If the source has
// ended, this will be an EOF token.
func (l *Lexer) NextToken() (*Token, *report.CompileError) {
	for {
		c := l.peek()
		if c == -1 {
			break
		}

		switch c {
		case '\n', '\t', ' ', '\r', '\v', '\f':
			l.skip()
		case '-':
			if tok, err := l.lexDashed(); tok != nil || err != nil {
				return tok, err
			}
		default:
			if isDecimalDigit(c) {
				return l.lexNumericLit()
			} else if isFirstIdentChar(c) {
				return l.lexIdentOrKeyword()
			} else {
				return l.lexPunctOrOper()
			}
		}
	}

	l.mark()
	return &Token{Kind: TOK_EOF, Span: l.getSpan()}, nil
}

// -----------------------------------------------------------------------------

// incompleteOper marks an operator prefix which is not itself a valid token.
const incompleteOper = -1

// symbolPatterns maps symbol strings (patterns) to their punctuation/operator
// token kind.  Dashed symbols are handled by the comment logic.
var symbolPatterns = map[string]int{
	"/":  incompleteOper,
	"/\\": TOK_CONJ,
	"\\":  incompleteOper,
	"\\/": TOK_DISJ,

	"=": TOK_ASSIGN,
	"+": TOK_PLUS,
	":": TOK_COLON,
	".": TOK_DOT,
	",": TOK_COMMA,
	"@": TOK_ATSIGN,

	"(": TOK_LPAREN,
	")": TOK_RPAREN,
	"{": TOK_LBRACE,
	"}": TOK_RBRACE,
}

// lexPunctOrOper lexes a punctuation or operator symbol.
func (l *Lexer) lexPunctOrOper() (*Token, *report.CompileError) {
	l.mark()
	l.eat()

	kind, ok := symbolPatterns[l.tokBuff.String()]
	if !ok {
		return nil, report.Raise(l.getSpan(), "unknown rune `%s`", l.tokBuff.String())
	}

	for {
		c := l.peek()
		if c == -1 {
			break
		}

		if _kind, ok := symbolPatterns[l.tokBuff.String()+string(c)]; ok {
			l.eat()
			kind = _kind
		} else {
			break
		}
	}

	if kind == incompleteOper {
		return nil, report.Raise(l.getSpan(), "unknown operator `%s`", l.tokBuff.String())
	}

	return l.makeToken(kind), nil
}

// -----------------------------------------------------------------------------

// keywordPatterns maps keyword strings (patterns) to their keyword token kind.
var keywordPatterns = map[string]int{
	"lambda": TOK_LAMBDA,
	"Lambda": TOK_TLAMBDA,
	"node":   TOK_NODE,
}

// lexIdentOrKeyword lexes an identifier or a keyword.
func (l *Lexer) lexIdentOrKeyword() (*Token, *report.CompileError) {
	l.mark()
	l.eat()

	for {
		c := l.peek()
		if !isFirstIdentChar(c) && !isDecimalDigit(c) {
			break
		}

		l.eat()
	}

	kind := TOK_IDENT
	if _kind, ok := keywordPatterns[l.tokBuff.String()]; ok {
		kind = _kind
	}

	return l.makeToken(kind), nil
}

// -----------------------------------------------------------------------------

// lexNumericLit lexes a decimal or hexadecimal integer literal.  The leading
// minus sign of a negative literal has already been consumed by lexDashed.
func (l *Lexer) lexNumericLit() (*Token, *report.CompileError) {
	if l.tokBuff.Len() == 0 {
		l.mark()
	}

	c := l.eat()

	// Determine the base of the literal.
	base := 10
	mustHaveDigit := false
	if c == '0' && l.peek() == 'x' {
		base = 16
		l.eat()
		mustHaveDigit = true
	}

	for {
		c = l.peek()

		if base == 16 && isHexDigit(c) || base == 10 && isDecimalDigit(c) {
			l.eat()
			mustHaveDigit = false
		} else {
			break
		}
	}

	// Ensure that the literal is not malformed: `0x` with no digits.
	if mustHaveDigit {
		return nil, report.Raise(l.getSpan(), "incomplete numeric literal")
	}

	return l.makeToken(TOK_INTLIT), nil
}

// -----------------------------------------------------------------------------

// lexDashed lexes a construct introduced by `-`: a line comment `--`, the
// arrow `->`, or a negative integer literal.  A bare dash is a lexical error.
func (l *Lexer) lexDashed() (*Token, *report.CompileError) {
	l.mark()
	l.eat()

	c := l.peek()
	switch {
	case c == '>':
		l.eat()
		return l.makeToken(TOK_ARROW), nil
	case c == '-':
		// Line comment: skip to end of line.
		for c != '\n' && c != -1 {
			c = l.skip()
		}

		l.tokBuff.Reset()
		return nil, nil
	case isDecimalDigit(c):
		return l.lexNumericLit()
	default:
		return nil, report.Raise(l.getSpan(), "unknown operator `-`")
	}
}

// -----------------------------------------------------------------------------

// mark sets the lexer's stored start line and column to its current position.
func (l *Lexer) mark() {
	l.startLine = l.line
	l.startCol = l.col
}

// makeToken produces a new token of the given kind from the lexer's state and
// resets the lexer to begin building the next token.
func (l *Lexer) makeToken(kind int) *Token {
	value := l.tokBuff.String()
	l.tokBuff.Reset()

	return &Token{
		Kind:  kind,
		Value: value,
		Span:  l.getSpan(),
	}
}

// getSpan calculates a text span based on the lexer's current state.
func (l *Lexer) getSpan() *report.TextSpan {
	return &report.TextSpan{
		StartLine: l.startLine,
		StartCol:  l.startCol,
		EndLine:   l.line,
		EndCol:    l.col,
	}
}

// -----------------------------------------------------------------------------

// eat moves the lexer forward one rune and writes the rune to the token
// buffer.  At the end of the source, -1 is returned as the rune value.
func (l *Lexer) eat() rune {
	if l.ndx >= len(l.src) {
		return -1
	}

	c := l.src[l.ndx]
	l.ndx++
	l.updatePos(c)
	l.tokBuff.WriteRune(c)

	return c
}

// skip moves the lexer forward one rune but does not write the rune to the
// token buffer.  At the end of the source, -1 is returned as the rune value.
func (l *Lexer) skip() rune {
	if l.ndx >= len(l.src) {
		return -1
	}

	c := l.src[l.ndx]
	l.ndx++
	l.updatePos(c)

	return c
}

// peek returns the next rune without moving the lexer forward.  At the end of
// the source, -1 is returned as the rune value.
func (l *Lexer) peek() rune {
	if l.ndx >= len(l.src) {
		return -1
	}

	return l.src[l.ndx]
}

// updatePos updates the lexer's position based on the input character.
func (l *Lexer) updatePos(c rune) {
	switch c {
	case '\n':
		l.line++
		l.col = 0
	case '\t':
		l.col += 4
	default:
		l.col++
	}
}

// -----------------------------------------------------------------------------

// isDecimalDigit returns whether c is a decimal digit.
func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// isHexDigit returns whether c is a hexadecimal digit.
func isHexDigit(c rune) bool {
	return isDecimalDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// isFirstIdentChar returns whether c could be the first rune of an identifier.
// A `~` introduces a scratch name, which receives no storage.
func isFirstIdentChar(c rune) bool {
	return c > 0 && (unicode.IsLetter(c) || c == '_' || c == '~')
}
