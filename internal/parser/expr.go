package parser

import (
	"strconv"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/token"
)

// parseExpr implements precedence-climbing: ternary < logical-or <
// logical-and < equality < relational < additive < multiplicative < unary <
// primary, matching spec.md §4.B exactly.
func (p *Parser) parseExpr(min ast.Precedence) *ast.Expr {
	left := p.parseUnary()
	for {
		op, prec, ok := p.peekBinaryOp()
		if !ok || prec < min {
			break
		}
		opTok := p.advance()
		// left-associative: parse the right side at one precedence level
		// higher than the current operator.
		right := p.parseExprAtLeast(prec + 1)
		left = &ast.Expr{Kind: ast.ExprBinary, BinOp: op, Left: left, Right: right, Location: opTok.Location}
	}
	if min <= ast.PrecTernary {
		if _, ok := p.match(token.QUESTION); ok {
			then := p.parseExpr(ast.PrecTernary)
			p.expect(token.COLON, "in ternary expression")
			els := p.parseExpr(ast.PrecTernary)
			left = &ast.Expr{Kind: ast.ExprTernary, Cond: left, Then: then, Else: els, Location: left.Location}
		}
	}
	return left
}

// parseExprAtLeast is parseExpr without re-checking for a trailing ternary,
// used for the right operand of a binary expression so `a ? b : c` isn't
// mis-swallowed as the RHS of `+`.
func (p *Parser) parseExprAtLeast(min ast.Precedence) *ast.Expr {
	left := p.parseUnary()
	for {
		op, prec, ok := p.peekBinaryOp()
		if !ok || prec < min {
			break
		}
		opTok := p.advance()
		right := p.parseExprAtLeast(prec + 1)
		left = &ast.Expr{Kind: ast.ExprBinary, BinOp: op, Left: left, Right: right, Location: opTok.Location}
	}
	return left
}

func (p *Parser) peekBinaryOp() (ast.BinaryOp, ast.Precedence, bool) {
	var op ast.BinaryOp
	switch p.peekKind() {
	case token.PLUS:
		op = ast.OpAdd
	case token.MINUS:
		op = ast.OpSub
	case token.STAR:
		op = ast.OpMul
	case token.SLASH:
		op = ast.OpDiv
	case token.PERCENT:
		op = ast.OpMod
	case token.EQ_EQ:
		op = ast.OpEq
	case token.BANG_EQ:
		op = ast.OpNeq
	case token.LT:
		op = ast.OpLt
	case token.GT:
		op = ast.OpGt
	case token.LT_EQ:
		op = ast.OpLe
	case token.GT_EQ:
		op = ast.OpGe
	case token.AND_AND:
		op = ast.OpAnd
	case token.OR_OR:
		op = ast.OpOr
	default:
		return 0, 0, false
	}
	return op, op.Precedence(), true
}

func (p *Parser) parseUnary() *ast.Expr {
	switch p.peekKind() {
	case token.MINUS:
		t := p.advance()
		operand := p.parseUnary()
		return &ast.Expr{Kind: ast.ExprUnary, UnOp: ast.OpNeg, Operand: operand, Location: t.Location}
	case token.BANG:
		t := p.advance()
		operand := p.parseUnary()
		return &ast.Expr{Kind: ast.ExprUnary, UnOp: ast.OpNot, Operand: operand, Location: t.Location}
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() *ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.LEFT_PAREN:
		p.advance()
		e := p.parseExpr(ast.PrecTernary)
		p.expect(token.RIGHT_PAREN, "to close parenthesized expression")
		return e
	case token.LEFT_BRACKET:
		return p.parseArrayExpr()
	case token.INTEGER, token.FLOAT:
		p.advance()
		n, _ := strconv.ParseFloat(t.Text, 64)
		return ast.NewNumber(n, t.Location)
	case token.STRING:
		p.advance()
		return ast.NewString(t.Text, t.Location)
	case token.TRUE:
		p.advance()
		return ast.NewBool(true, t.Location)
	case token.FALSE:
		p.advance()
		return ast.NewBool(false, t.Location)
	case token.NULL:
		p.advance()
		return &ast.Expr{Kind: ast.ExprValue, Value: ast.Value{Kind: ast.ValNull}, Location: t.Location}
	case token.VARIABLE:
		p.advance()
		name := t.Text
		for {
			if _, ok := p.match(token.DOT); ok {
				field := p.advance()
				name += "." + field.Text
				continue
			}
			break
		}
		return ast.NewVarRef(name, t.Location)
	case token.IDENTIFIER:
		// a bare identifier in expression context is treated as a variable
		// reference by name (e.g. loop-iteration field access sugar).
		p.advance()
		return ast.NewVarRef(t.Text, t.Location)
	default:
		p.errf("expected expression, found %s", t.Kind)
		p.advance()
		return &ast.Expr{Kind: ast.ExprValue, Value: ast.Value{Kind: ast.ValNull}, Location: t.Location}
	}
}

// parseArrayExpr parses a bracketed expression list used as an iteration
// source (`@for item in [1, 2, 3] { ... }`) — distinct from parsePropValue's
// parseArrayValue, which builds a PropValue for a property's right-hand
// side. Kept separate rather than unified since only this one feeds
// internal/expand's literal-array constant folding.
func (p *Parser) parseArrayExpr() *ast.Expr {
	loc := p.advance().Location // '['
	arr := &ast.Expr{Kind: ast.ExprArray, Location: loc}
	for !p.check(token.RIGHT_BRACKET) && !p.atEnd() {
		arr.Elements = append(arr.Elements, p.parseExpr(ast.PrecTernary))
		if _, ok := p.match(token.COMMA); !ok {
			break
		}
	}
	p.expect(token.RIGHT_BRACKET, "to close array")
	return arr
}
