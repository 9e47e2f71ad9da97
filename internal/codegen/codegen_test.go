package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/codegen"
	"github.com/kryonlabs/kryon/internal/krbformat"
)

func TestGenerateEmptyFileHasValidHeader(t *testing.T) {
	out, stats, bag := codegen.Generate(&ast.File{}, codegen.Config{})
	require.False(t, bag.HasErrors())
	assert.Equal(t, 0, stats.ElementCount)
	assert.Equal(t, string(krbformat.Magic), string(out[0:4]))
}

func TestGenerateAppTitleProducesStringTableEntry(t *testing.T) {
	f := &ast.File{
		Elements: []*ast.Element{
			{
				TypeName: "App",
				Properties: []*ast.Property{
					{Name: "title", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: "X"}}},
				},
			},
		},
	}
	out, stats, bag := codegen.Generate(f, codegen.Config{})
	require.False(t, bag.HasErrors())
	assert.Equal(t, 1, stats.ElementCount)
	assert.Equal(t, 2, stats.StringCount, "the element's empty id and \"X\"")
	assert.Greater(t, stats.TotalBytes, 0)
}

func TestGenerateIsDeterministic(t *testing.T) {
	f := &ast.File{
		Elements: []*ast.Element{
			{TypeName: "Column", Children: []*ast.Element{
				{TypeName: "Button", Properties: []*ast.Property{{Name: "text", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: "A"}}}}},
				{TypeName: "Button", Properties: []*ast.Property{{Name: "text", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: "B"}}}}},
			}},
		},
	}
	out1, _, _ := codegen.Generate(f, codegen.Config{})
	out2, _, _ := codegen.Generate(f, codegen.Config{})
	assert.Equal(t, out1, out2, "identical input must yield byte-identical output")
}

func TestGenerateRejectsUnknownElementType(t *testing.T) {
	f := &ast.File{Elements: []*ast.Element{{TypeName: "FrobnicatorWidget"}}}
	_, _, bag := codegen.Generate(f, codegen.Config{})
	assert.True(t, bag.HasErrors())
}
