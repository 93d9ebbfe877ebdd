package syntax

import "skeinc/report"

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.
	Value string

	// The text span over which the token exists.
	Span *report.TextSpan
}

// Enumeration of token kinds.
const (
	TOK_LAMBDA  = iota // `lambda`
	TOK_TLAMBDA        // `Lambda`
	TOK_NODE           // `node`

	TOK_CONJ // `/\`
	TOK_DISJ // `\/`

	TOK_ASSIGN // `=`
	TOK_PLUS   // `+`
	TOK_ARROW  // `->`
	TOK_COLON
	TOK_DOT
	TOK_COMMA
	TOK_ATSIGN

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE

	TOK_IDENT
	TOK_INTLIT

	TOK_EOF
)

// tokenKindRepr maps token kinds to the strings used for them in error
// messages.
var tokenKindRepr = map[int]string{
	TOK_LAMBDA:  "`lambda`",
	TOK_TLAMBDA: "`Lambda`",
	TOK_NODE:    "`node`",
	TOK_CONJ:    "`/\\`",
	TOK_DISJ:    "`\\/`",
	TOK_ASSIGN:  "`=`",
	TOK_PLUS:    "`+`",
	TOK_ARROW:   "`->`",
	TOK_COLON:   "`:`",
	TOK_DOT:     "`.`",
	TOK_COMMA:   "`,`",
	TOK_ATSIGN:  "`@`",
	TOK_LPAREN:  "`(`",
	TOK_RPAREN:  "`)`",
	TOK_LBRACE:  "`{`",
	TOK_RBRACE:  "`}`",
	TOK_IDENT:   "identifier",
	TOK_INTLIT:  "integer literal",
	TOK_EOF:     "end of file",
}
