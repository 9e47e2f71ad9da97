package expand_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/expand"
	"github.com/kryonlabs/kryon/internal/srcloc"
)

func TestExpandResolvesStyleInheritanceOrder(t *testing.T) {
	in := &ast.File{
		Styles: []*ast.StyleDef{
			{Name: "base", Properties: []*ast.Property{
				{Name: "color", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: "red"}}},
			}},
			{Name: "child", Extends: []string{"base"}, Properties: []*ast.Property{
				{Name: "color", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: "blue"}}},
			}},
		},
	}
	out, bag := expand.Expand(in, expand.DefaultConfig(), nil, nil)
	require.False(t, bag.HasErrors())
	var child *ast.StyleDef
	for _, s := range out.Styles {
		if s.Name == "child" {
			child = s
		}
	}
	require.NotNil(t, child)
	assert.Equal(t, "blue", child.Properties[0].Value.Lit.Str, "child override must win over base")
}

func TestExpandDetectsStyleCycle(t *testing.T) {
	in := &ast.File{
		Styles: []*ast.StyleDef{
			{Name: "a", Extends: []string{"b"}},
			{Name: "b", Extends: []string{"a"}},
		},
	}
	_, bag := expand.Expand(in, expand.DefaultConfig(), nil, nil)
	require.True(t, bag.HasErrors())
}

func TestExpandInlinesInclude(t *testing.T) {
	in := &ast.File{
		Elements: []*ast.Element{
			{TypeName: expand.IncludeMarker, ID: "shared.kry"},
		},
	}
	load := func(path string) ([]byte, error) {
		if path == "shared.kry" {
			return []byte("Container {}"), nil
		}
		return nil, fmt.Errorf("not found: %s", path)
	}
	parse := func(src []byte, file string) (*ast.File, *diag.Bag) {
		return &ast.File{Elements: []*ast.Element{{TypeName: "Container"}}}, &diag.Bag{}
	}
	out, bag := expand.Expand(in, expand.DefaultConfig(), load, parse)
	require.False(t, bag.HasErrors())
	require.Len(t, out.Elements, 1)
	assert.Equal(t, "Container", out.Elements[0].TypeName)
}

func TestExpandInstantiatesComponentWithParamSubstitution(t *testing.T) {
	in := &ast.File{
		Components: []*ast.ComponentDef{
			{
				Name: "Greeting",
				Params: []ast.ComponentParam{{Name: "name"}},
				Template: &ast.Element{
					TypeName: "Text",
					Properties: []*ast.Property{
						{Name: "text", Value: &ast.PropValue{Kind: ast.PVExpression, Expr: ast.NewVarRef("name", srcloc.Location{})}},
					},
				},
			},
		},
		Elements: []*ast.Element{
			{
				TypeName: "Greeting",
				Properties: []*ast.Property{
					{Name: "name", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: "World"}}},
				},
			},
		},
	}
	out, bag := expand.Expand(in, expand.DefaultConfig(), nil, nil)
	require.False(t, bag.HasErrors())
	require.Len(t, out.Elements, 1)
	root := out.Elements[0]
	assert.Equal(t, "Text", root.TypeName)
	assert.Equal(t, ast.ValString, root.Properties[0].Value.Expr.Value.Kind)
	assert.Equal(t, "World", root.Properties[0].Value.Expr.Value.Str)
}

func TestNeedsExpansionFalseAfterExpand(t *testing.T) {
	in := &ast.File{Elements: []*ast.Element{{TypeName: "Container"}}}
	out, _ := expand.Expand(in, expand.DefaultConfig(), nil, nil)
	assert.False(t, expand.NeedsExpansion(out, map[string]*ast.ComponentDef{}))
}
