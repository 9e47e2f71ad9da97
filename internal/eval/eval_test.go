package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/eval"
	"github.com/kryonlabs/kryon/internal/srcloc"
)

func num(n float64) *ast.Expr    { return ast.NewNumber(n, srcloc.Location{}) }
func str(s string) *ast.Expr     { return ast.NewString(s, srcloc.Location{}) }
func bl(b bool) *ast.Expr        { return ast.NewBool(b, srcloc.Location{}) }
func ref(name string) *ast.Expr  { return ast.NewVarRef(name, srcloc.Location{}) }

func bin(op ast.BinaryOp, l, r *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprBinary, BinOp: op, Left: l, Right: r}
}

func TestEvalArithmeticCoercion(t *testing.T) {
	e := bin(ast.OpAdd, num(1), num(2))
	assert.Equal(t, 3.0, eval.Eval(e, eval.MapScope{}, nil))
}

func TestEvalStringConcatCoercesNumber(t *testing.T) {
	e := bin(ast.OpAdd, str("count: "), num(5))
	assert.Equal(t, "count: 5", eval.Eval(e, eval.MapScope{}, nil))
}

func TestEvalShortCircuitAnd(t *testing.T) {
	bag := &diag.Bag{}
	scope := eval.MapScope{"flag": false}
	e := bin(ast.OpAnd, ref("flag"), ref("nonexistent"))
	result := eval.Eval(e, scope, bag)
	assert.Equal(t, false, result)
	assert.Equal(t, 0, bag.Len(), "evaluating the unresolved right operand would record a warning")
}

func TestEvalShortCircuitOr(t *testing.T) {
	bag := &diag.Bag{}
	scope := eval.MapScope{"flag": true}
	e := bin(ast.OpOr, ref("flag"), ref("nonexistent"))
	assert.Equal(t, true, eval.Eval(e, scope, bag))
	assert.Equal(t, 0, bag.Len(), "evaluating the unresolved right operand would record a warning")
}

func TestEvalTernary(t *testing.T) {
	e := &ast.Expr{Kind: ast.ExprTernary, Cond: bl(true), Then: num(1), Else: num(2)}
	assert.Equal(t, 1.0, eval.Eval(e, eval.MapScope{}, nil))
}

func TestEvalUnresolvedVarRefWarnsAndReturnsNil(t *testing.T) {
	bag := &diag.Bag{}
	v := eval.Eval(ref("missing"), eval.MapScope{}, bag)
	assert.Nil(t, v)
	assert.True(t, bag.Len() > 0)
	assert.False(t, bag.HasErrors())
}

func TestChainScopeFirstMatchWins(t *testing.T) {
	loop := eval.MapScope{"item": "a"}
	global := eval.MapScope{"item": "fallback", "theme": "dark"}
	chain := eval.ChainScope{loop, global}
	assert.Equal(t, "a", eval.Eval(ref("item"), chain, nil))
	assert.Equal(t, "dark", eval.Eval(ref("theme"), chain, nil))
}
