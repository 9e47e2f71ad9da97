package kir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/kir"
	"github.com/kryonlabs/kryon/internal/srcloc"
)

func sampleFile() *ast.File {
	return &ast.File{
		Elements: []*ast.Element{
			{
				TypeName: "Button",
				ID:       "submit",
				Classes:  []string{"primary", "large"},
				Properties: []*ast.Property{
					{Name: "text", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: "Hi"}}},
					{Name: "width", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValNumber, Number: 12}, LitUnit: ast.UnitPx}},
					{Name: "label", Value: &ast.PropValue{Kind: ast.PVTemplate, Template: &ast.Template{
						Segments: []ast.TemplateSegment{
							{Kind: ast.SegLiteral, Text: "hello "},
							{Kind: ast.SegExpr, Expr: ast.NewVarRef("name", srcloc.Location{})},
						},
					}}},
				},
				Children: []*ast.Element{
					{TypeName: "Text", Properties: []*ast.Property{
						{Name: "visible", Value: &ast.PropValue{Kind: ast.PVExpression, Expr: &ast.Expr{
							Kind: ast.ExprBinary, BinOp: ast.OpAnd,
							Left:  ast.NewBool(true, srcloc.Location{}),
							Right: ast.NewBool(false, srcloc.Location{}),
						}}},
					}},
				},
			},
		},
		Styles: []*ast.StyleDef{
			{Name: "base", Extends: []string{"root"}, Properties: []*ast.Property{
				{Name: "color", Value: &ast.PropValue{Kind: ast.PVReference, RefName: "$accent"}},
			}},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, style := range []kir.Style{kir.StyleCompact, kir.StyleReadable, kir.StyleVerbose} {
		f := sampleFile()
		data, err := kir.Write(f, kir.Options{Style: style})
		require.NoError(t, err)

		got, err := kir.Read(data)
		require.NoError(t, err)

		if diff := cmp.Diff(f, got); diff != "" {
			t.Fatalf("round-trip mismatch for style %v (-want +got):\n%s", style, diff)
		}
	}
}

func TestReadRejectsWrongMajorVersion(t *testing.T) {
	f := sampleFile()
	data, err := kir.Write(f, kir.Options{Style: kir.StyleCompact})
	require.NoError(t, err)

	tampered := []byte(`{"kir_version":"2.0.0","format":"kir-json","root":{"kind":"file"}}`)
	_ = data
	_, err = kir.Read(tampered)
	require.Error(t, err)
}
