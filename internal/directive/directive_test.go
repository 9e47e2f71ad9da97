package directive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/directive"
	"github.com/kryonlabs/kryon/internal/eval"
	"github.com/kryonlabs/kryon/internal/srcloc"
)

func textTemplate(loopVar string) []*ast.Element {
	return []*ast.Element{
		{
			TypeName: "Text",
			Properties: []*ast.Property{
				{Name: "text", Value: &ast.PropValue{
					Kind: ast.PVExpression,
					Expr: ast.NewVarRef(loopVar, srcloc.Location{}),
				}},
			},
		},
	}
}

func forDirective(loopVar, stateVar string) *ast.ControlDirective {
	return &ast.ControlDirective{
		Kind:     ast.ControlFor,
		LoopVar:  loopVar,
		IterExpr: ast.NewVarRef(stateVar, srcloc.Location{}),
		Body:     textTemplate(loopVar),
	}
}

func TestBuildStampsOneItemPerArrayEntry(t *testing.T) {
	ctrl := forDirective("item", "items")
	scope := eval.MapScope{"items": []any{"a", "b"}}
	bag := &diag.Bag{}

	res := directive.Build(ctrl, scope, bag)
	require.False(t, bag.HasErrors())
	require.Len(t, res.Items, 2)
	assert.Equal(t, "a", res.Items[0].Value)
	assert.Equal(t, "b", res.Items[1].Value)
	assert.Len(t, res.Flatten(), 2)
}

func TestReconcileGrowsAndPreservesExistingItems(t *testing.T) {
	ctrl := forDirective("item", "items")
	bag := &diag.Bag{}

	scope1 := eval.MapScope{"items": []any{"a", "b"}}
	first := directive.Build(ctrl, scope1, bag)
	require.Len(t, first.Items, 2)
	firstElems := first.Items[0].Elements

	scope2 := eval.MapScope{"items": []any{"a", "b", "c"}}
	second := directive.Reconcile(first, ctrl, scope2, bag)
	require.False(t, bag.HasErrors())
	require.Len(t, second.Items, 3)

	assert.Same(t, firstElems[0], second.Items[0].Elements[0], "surviving index keeps its stamped elements")
	assert.Equal(t, "c", second.Items[2].Value)

	var texts []string
	for _, it := range second.Items {
		texts = append(texts, it.Value.(string))
	}
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestReconcileShrinksDropsTrailingItems(t *testing.T) {
	ctrl := forDirective("item", "items")
	bag := &diag.Bag{}

	first := directive.Build(ctrl, eval.MapScope{"items": []any{"a", "b", "c"}}, bag)
	second := directive.Reconcile(first, ctrl, eval.MapScope{"items": []any{"a"}}, bag)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "a", second.Items[0].Value)
}

func TestItemScopeResolvesLoopVarBeforeOuter(t *testing.T) {
	ctrl := forDirective("item", "items")
	bag := &diag.Bag{}
	outer := eval.MapScope{"item": "outer-shadowed"}
	res := directive.Build(ctrl, eval.ChainScope{eval.MapScope{"items": []any{"a"}}, outer}, bag)
	require.Len(t, res.Items, 1)

	itemScope := res.Items[0].Scope("item", outer)
	v := eval.Eval(ast.NewVarRef("item", srcloc.Location{}), itemScope, bag)
	assert.Equal(t, "a", v)
}

func TestEvalIfSwitchesBranchOnConditionChange(t *testing.T) {
	ctrl := &ast.ControlDirective{
		Kind:     ast.ControlIf,
		Cond:     ast.NewVarRef("show", srcloc.Location{}),
		Body:     []*ast.Element{{TypeName: "Text"}},
		ElseBody: []*ast.Element{{TypeName: "Image"}},
	}
	bag := &diag.Bag{}

	r1 := directive.EvalIf(nil, ctrl, eval.MapScope{"show": true}, bag)
	assert.True(t, r1.Active)
	assert.True(t, r1.Changed)
	assert.Equal(t, "Text", r1.Elements[0].TypeName)

	r2 := directive.EvalIf(r1, ctrl, eval.MapScope{"show": true}, bag)
	assert.False(t, r2.Changed)
	assert.Same(t, r1.Elements[0], r2.Elements[0])

	r3 := directive.EvalIf(r2, ctrl, eval.MapScope{"show": false}, bag)
	assert.True(t, r3.Changed)
	assert.Equal(t, "Image", r3.Elements[0].TypeName)
}
