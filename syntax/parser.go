package syntax

import (
	"strconv"

	"skeinc/ast"
	"skeinc/report"
)

// Parser is a recursive descent parser over a lexed token stream.  All parsing
// functions assume that they begin with the parser centered on the first token
// of their production and consume every token of their production, leaving the
// parser on the next token.  Structural errors raise positioned compile errors
// which the top-level item loop converts into diagnostics before
// resynchronizing at the next top-level conjunction separator, so one pass
// surfaces as many syntax errors as it can.  A best-effort AST is always
// returned; it is only valid if the reporter recorded no errors.
type Parser struct {
	toks []*Token
	pos  int
	rep  *report.Reporter
}

// Parse parses a token stream into a program AST, recording syntax errors on
// the reporter.
func Parse(toks []*Token, rep *report.Reporter) *ast.Program {
	p := &Parser{toks: toks, rep: rep}
	return p.parseProgram()
}

// -----------------------------------------------------------------------------

// parseProgram parses the top-level conjunction of a source unit.
func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}

	for !p.got(TOK_EOF) {
		if item := p.tryParseItem(); item != nil {
			prog.Items = append(prog.Items, item)
		}

		if p.got(TOK_CONJ) {
			p.advance()
		} else if !p.got(TOK_EOF) {
			p.rep.Error(report.StageParse, p.tok().Span,
				"expected `/\\` between top-level items, found %s", reprOf(p.tok()))
			p.resync()

			if p.got(TOK_CONJ) {
				p.advance()
			}
		}
	}

	return prog
}

// tryParseItem parses one conjunction item, converting any raised compile
// error into a diagnostic and resynchronizing at the next top-level `/\`.
func (p *Parser) tryParseItem() (item ast.Item) {
	defer func() {
		if x := recover(); x != nil {
			cerr, ok := x.(*report.CompileError)
			if !ok {
				panic(x)
			}

			p.rep.Error(report.StageParse, cerr.Span, "%s", cerr.Message)
			p.resync()
			item = nil
		}
	}()

	return p.parseItem()
}

// resync skips tokens until the next conjunction separator at nesting depth
// zero, leaving the parser on the separator (or EOF).
func (p *Parser) resync() {
	depth := 0

	for !p.got(TOK_EOF) {
		switch p.tok().Kind {
		case TOK_LPAREN, TOK_LBRACE:
			depth++
		case TOK_RPAREN, TOK_RBRACE:
			if depth > 0 {
				depth--
			}
		case TOK_CONJ:
			if depth == 0 {
				return
			}
		}

		p.advance()
	}
}

// -----------------------------------------------------------------------------

// parseItem parses one conjunction item:
//
//	item := node-directive | pred-def | type-def | unification | application
//	      | '(' conjunction ')'
func (p *Parser) parseItem() ast.Item {
	switch p.tok().Kind {
	case TOK_NODE:
		return p.parseNodeDirective()
	case TOK_LPAREN:
		return p.parseGroup()
	case TOK_IDENT:
		if p.peek(1) == TOK_ASSIGN {
			switch p.peek(2) {
			case TOK_LAMBDA:
				return p.parsePredicateDef()
			case TOK_TLAMBDA:
				return p.parseTypeDef()
			default:
				return p.parseUnification()
			}
		}

		return p.parseApplication()
	default:
		panic(report.Raise(p.tok().Span, "unexpected token: %s", reprOf(p.tok())))
	}
}

// parseNodeDirective parses `node <coord>`.
func (p *Parser) parseNodeDirective() ast.Item {
	start := p.expect(TOK_NODE)
	coordTok := p.expect(TOK_INTLIT)

	return &ast.NodeDirective{
		ASTBase: ast.NewASTBaseOver(start.Span, coordTok.Span),
		Coord:   int(p.intValue(coordTok)),
	}
}

// parseGroup parses a parenthesized sub-conjunction.
func (p *Parser) parseGroup() *ast.Conjunction {
	start := p.expect(TOK_LPAREN)

	conj := p.parseConjunction()

	end := p.expect(TOK_RPAREN)
	return &ast.Conjunction{
		ASTBase: ast.NewASTBaseOver(start.Span, end.Span),
		Goals:   conj.Goals,
	}
}

// parseConjunction parses `item ('/\' item)*`.
func (p *Parser) parseConjunction() *ast.Conjunction {
	first := p.parseItem()
	goals := []ast.Item{first}

	for p.got(TOK_CONJ) {
		p.advance()
		goals = append(goals, p.parseItem())
	}

	return &ast.Conjunction{
		ASTBase: ast.NewASTBaseOver(first.Span(), goals[len(goals)-1].Span()),
		Goals:   goals,
	}
}

// -----------------------------------------------------------------------------

// parsePredicateDef parses `name = lambda{params}. body` where body is one
// clause or a `\/`-separated disjunction of clauses.  An unparenthesized
// clause is a single goal; a multi-goal clause must be parenthesized.
func (p *Parser) parsePredicateDef() ast.Item {
	nameTok := p.expect(TOK_IDENT)
	p.expect(TOK_ASSIGN)
	p.expect(TOK_LAMBDA)

	p.expect(TOK_LBRACE)
	var params []*ast.Param
	for !p.got(TOK_RBRACE) {
		if len(params) > 0 {
			p.expect(TOK_COMMA)
		}

		pNameTok := p.expect(TOK_IDENT)
		param := &ast.Param{Name: pNameTok.Value, NameSpan: pNameTok.Span}

		if p.got(TOK_COLON) {
			p.advance()
			param.TypeAnnot = p.parseTypeExpr()
		}

		params = append(params, param)
	}
	p.expect(TOK_RBRACE)
	p.expect(TOK_DOT)

	clauses := []*ast.Conjunction{p.parseClause()}
	for p.got(TOK_DISJ) {
		p.advance()
		clauses = append(clauses, p.parseClause())
	}

	return &ast.PredicateDef{
		ASTBase:  ast.NewASTBaseOver(nameTok.Span, clauses[len(clauses)-1].Span()),
		Name:     nameTok.Value,
		NameSpan: nameTok.Span,
		Params:   params,
		Clauses:  clauses,
	}
}

// parseClause parses one disjunct of a predicate body.
func (p *Parser) parseClause() *ast.Conjunction {
	if p.got(TOK_LPAREN) {
		return p.parseGroup()
	}

	goal := p.parseItem()
	if conj, ok := goal.(*ast.Conjunction); ok {
		return conj
	}

	return &ast.Conjunction{
		ASTBase: ast.NewASTBaseOver(goal.Span(), goal.Span()),
		Goals:   []ast.Item{goal},
	}
}

// -----------------------------------------------------------------------------

// parseTypeDef parses `Name = Lambda{params}. v1{fields} + v2{fields} + ...`.
func (p *Parser) parseTypeDef() ast.Item {
	nameTok := p.expect(TOK_IDENT)
	p.expect(TOK_ASSIGN)
	p.expect(TOK_TLAMBDA)

	p.expect(TOK_LBRACE)
	var typeParams []string
	for !p.got(TOK_RBRACE) {
		if len(typeParams) > 0 {
			p.expect(TOK_COMMA)
		}

		typeParams = append(typeParams, p.expect(TOK_IDENT).Value)
	}
	p.expect(TOK_RBRACE)
	p.expect(TOK_DOT)

	variants := []*ast.Variant{p.parseVariant()}
	for p.got(TOK_PLUS) {
		p.advance()
		variants = append(variants, p.parseVariant())
	}

	last := variants[len(variants)-1]
	return &ast.TypeDef{
		ASTBase:  ast.NewASTBaseOver(nameTok.Span, last.NameSpan),
		Name:     nameTok.Value,
		NameSpan: nameTok.Span,
		Params:   typeParams,
		Variants: variants,
	}
}

// parseVariant parses one constructor of a type definition: a name with an
// optional brace-enclosed field list.
func (p *Parser) parseVariant() *ast.Variant {
	nameTok := p.expect(TOK_IDENT)
	variant := &ast.Variant{Name: nameTok.Value, NameSpan: nameTok.Span}

	if p.got(TOK_LBRACE) {
		p.advance()

		for !p.got(TOK_RBRACE) {
			if len(variant.Fields) > 0 {
				p.expect(TOK_COMMA)
			}

			fNameTok := p.expect(TOK_IDENT)
			p.expect(TOK_COLON)
			variant.Fields = append(variant.Fields, &ast.Field{
				Name:     fNameTok.Value,
				NameSpan: fNameTok.Span,
				Type:     p.parseTypeExpr(),
			})
		}

		p.expect(TOK_RBRACE)
	}

	return variant
}

// -----------------------------------------------------------------------------

// parseUnification parses `variable = term`.
func (p *Parser) parseUnification() ast.Item {
	lhsTok := p.expect(TOK_IDENT)
	p.expect(TOK_ASSIGN)
	rhs := p.parseTerm()

	return &ast.Unification{
		ASTBase: ast.NewASTBaseOver(lhsTok.Span, rhs.Span()),
		Lhs:     lhsTok.Value,
		LhsSpan: lhsTok.Span,
		Rhs:     rhs,
	}
}

// parseApplication parses `functor{arg=term, ...}` where the functor may be a
// dotted name.
func (p *Parser) parseApplication() *ast.Application {
	nameTok := p.expect(TOK_IDENT)
	name := nameTok.Value
	nameSpan := nameTok.Span

	for p.got(TOK_DOT) {
		p.advance()
		partTok := p.expect(TOK_IDENT)
		name += "." + partTok.Value
		nameSpan = report.NewSpanOver(nameSpan, partTok.Span)
	}

	p.expect(TOK_LBRACE)

	var args []*ast.Arg
	for !p.got(TOK_RBRACE) {
		if len(args) > 0 {
			p.expect(TOK_COMMA)
		}

		argNameTok := p.expect(TOK_IDENT)
		p.expect(TOK_ASSIGN)
		args = append(args, &ast.Arg{
			Name:     argNameTok.Value,
			NameSpan: argNameTok.Span,
			Value:    p.parseTerm(),
		})
	}

	end := p.expect(TOK_RBRACE)
	return &ast.Application{
		ASTBase:       ast.NewASTBaseOver(nameTok.Span, end.Span),
		Func:          name,
		FuncSpan:      nameSpan,
		Args:          args,
		ModeIndex:     -1,
		IndirectParam: -1,
	}
}

// parseTerm parses a term: an integer literal, a rename, a variable
// reference, or a nested inline application.
func (p *Parser) parseTerm() ast.Term {
	switch p.tok().Kind {
	case TOK_INTLIT:
		tok := p.tok()
		p.advance()
		return &ast.LitTerm{
			ASTBase: ast.NewASTBaseOn(tok.Span),
			Value:   int(p.intValue(tok)),
		}
	case TOK_ATSIGN:
		start := p.tok()
		p.advance()
		nameTok := p.expect(TOK_IDENT)
		return &ast.RenameTerm{
			ASTBase: ast.NewASTBaseOver(start.Span, nameTok.Span),
			Name:    nameTok.Value,
		}
	case TOK_IDENT:
		if p.peek(1) == TOK_LBRACE || p.peek(1) == TOK_DOT {
			app := p.parseApplication()
			return &ast.AppTerm{ASTBase: ast.NewASTBaseOn(app.Span()), App: app}
		}

		tok := p.tok()
		p.advance()
		return &ast.VarTerm{ASTBase: ast.NewASTBaseOn(tok.Span), Name: tok.Value}
	default:
		panic(report.Raise(p.tok().Span, "expected a term, found %s", reprOf(p.tok())))
	}
}

// parseTypeExpr parses a type expression: a named type with optional
// positional arguments, or a predicate type `{name:Type, ...} -> Type`.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	switch p.tok().Kind {
	case TOK_IDENT:
		nameTok := p.tok()
		p.advance()

		nte := &ast.NamedTypeExpr{
			ASTBase: ast.NewASTBaseOn(nameTok.Span),
			Name:    nameTok.Value,
		}

		if p.got(TOK_LBRACE) {
			p.advance()

			for !p.got(TOK_RBRACE) {
				if len(nte.Args) > 0 {
					p.expect(TOK_COMMA)
				}

				nte.Args = append(nte.Args, p.parseTypeExpr())
			}

			end := p.expect(TOK_RBRACE)
			nte.ASTBase = ast.NewASTBaseOver(nameTok.Span, end.Span)
		}

		return nte
	case TOK_LBRACE:
		start := p.tok()
		p.advance()

		pte := &ast.PredTypeExpr{}
		for !p.got(TOK_RBRACE) {
			if len(pte.Params) > 0 {
				p.expect(TOK_COMMA)
			}

			fNameTok := p.expect(TOK_IDENT)
			p.expect(TOK_COLON)
			pte.Params = append(pte.Params, &ast.Field{
				Name:     fNameTok.Value,
				NameSpan: fNameTok.Span,
				Type:     p.parseTypeExpr(),
			})
		}

		end := p.expect(TOK_RBRACE)
		endSpan := end.Span

		if p.got(TOK_ARROW) {
			p.advance()
			pte.Result = p.parseTypeExpr()
			endSpan = pte.Result.Span()
		}

		pte.ASTBase = ast.NewASTBaseOver(start.Span, endSpan)
		return pte
	default:
		panic(report.Raise(p.tok().Span, "expected a type, found %s", reprOf(p.tok())))
	}
}

// -----------------------------------------------------------------------------

// tok returns the current token.
func (p *Parser) tok() *Token {
	return p.toks[p.pos]
}

// peek returns the kind of the token n positions ahead of the current one, or
// EOF if the stream ends first.
func (p *Parser) peek(n int) int {
	if p.pos+n >= len(p.toks) {
		return TOK_EOF
	}

	return p.toks[p.pos+n].Kind
}

// advance moves the parser forward one token.  The parser never moves past the
// trailing EOF token.
func (p *Parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

// got returns whether the parser is on a token of the given kind.
func (p *Parser) got(kind int) bool {
	return p.tok().Kind == kind
}

// expect asserts that the parser is on a token of the given kind, returns it,
// and moves the parser forward.  A mismatch raises a compile error.
func (p *Parser) expect(kind int) *Token {
	if !p.got(kind) {
		panic(report.Raise(p.tok().Span,
			"unexpected token: %s (expected %s)", reprOf(p.tok()), tokenKindRepr[kind]))
	}

	tok := p.tok()
	p.advance()
	return tok
}

// intValue parses the integer value of a literal token.  Decimal, negative,
// and `0x` hexadecimal forms are accepted.
func (p *Parser) intValue(tok *Token) int64 {
	v, err := strconv.ParseInt(tok.Value, 0, 64)
	if err != nil {
		panic(report.Raise(tok.Span, "invalid integer literal `%s`", tok.Value))
	}

	return v
}

// reprOf returns the error-message representation of a token.
func reprOf(tok *Token) string {
	switch tok.Kind {
	case TOK_EOF:
		return "end of file"
	case TOK_IDENT, TOK_INTLIT:
		return "`" + tok.Value + "`"
	default:
		return tokenKindRepr[tok.Kind]
	}
}
