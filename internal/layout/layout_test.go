package layout_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/codegen"
	"github.com/kryonlabs/kryon/internal/layout"
	"github.com/kryonlabs/kryon/internal/runtime"
)

func numProp(name string, n float64) *ast.Property {
	return &ast.Property{Name: name, Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValNumber, Number: n}}}
}

func strProp(name, s string) *ast.Property {
	return &ast.Property{Name: name, Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: s}}}
}

func buildTree(t *testing.T, f *ast.File) (*runtime.Element, []string) {
	t.Helper()
	bin, _, bag := codegen.Generate(f, codegen.Config{})
	require.False(t, bag.HasErrors())
	doc, dbag := runtime.Decode(bin)
	require.False(t, dbag.HasErrors())
	roots, mbag := runtime.Materialize(doc)
	require.False(t, mbag.HasErrors())
	require.Len(t, roots, 1)
	return roots[0], doc.Strings
}

func TestComputeRowDistributesChildrenAlongMainAxis(t *testing.T) {
	f := &ast.File{Elements: []*ast.Element{
		{
			TypeName:   "Row",
			Properties: []*ast.Property{numProp("width", 200), numProp("height", 100)},
			Children: []*ast.Element{
				{TypeName: "Button", Properties: []*ast.Property{numProp("width", 50), numProp("height", 20)}},
				{TypeName: "Button", Properties: []*ast.Property{numProp("width", 50), numProp("height", 20)}},
			},
		},
	}}
	root, strs := buildTree(t, f)
	layout.Compute(root, strs, 0, 0, 200, 100)

	assert.Equal(t, 200.0, root.Geometry.Width)
	assert.Equal(t, 0.0, root.Children[0].Geometry.X)
	assert.Equal(t, 50.0, root.Children[1].Geometry.X)
}

func TestComputeAutoSizeFillsContainerWhenUnset(t *testing.T) {
	f := &ast.File{Elements: []*ast.Element{
		{TypeName: "Container", Children: []*ast.Element{{TypeName: "Button"}}},
	}}
	root, strs := buildTree(t, f)
	layout.Compute(root, strs, 0, 0, 300, 150)
	assert.Equal(t, 300.0, root.Geometry.Width)
	assert.Equal(t, 150.0, root.Geometry.Height)
	assert.Equal(t, 300.0, root.Children[0].Geometry.Width)
}

func TestComputeStackOverlaysChildrenAtSameOrigin(t *testing.T) {
	f := &ast.File{Elements: []*ast.Element{
		{
			TypeName:   "Container",
			Properties: []*ast.Property{strProp("layout", "stack"), numProp("width", 100), numProp("height", 100)},
			Children: []*ast.Element{
				{TypeName: "Image", Properties: []*ast.Property{numProp("width", 50), numProp("height", 50)}},
				{TypeName: "Image", Properties: []*ast.Property{numProp("width", 60), numProp("height", 60)}},
			},
		},
	}}
	root, strs := buildTree(t, f)
	layout.Compute(root, strs, 10, 10, 100, 100)
	assert.Equal(t, root.Children[0].Geometry.X, root.Children[1].Geometry.X)
	assert.Equal(t, root.Children[0].Geometry.Y, root.Children[1].Geometry.Y)
}

func TestHitTestPicksTopmostAndFiresHoverThenClick(t *testing.T) {
	f := &ast.File{Elements: []*ast.Element{
		{
			TypeName:   "Row",
			Properties: []*ast.Property{numProp("width", 200), numProp("height", 50)},
			Children: []*ast.Element{
				{TypeName: "Button", ID: "left", Properties: []*ast.Property{numProp("width", 100), numProp("height", 50)}},
				{TypeName: "Button", ID: "right", Properties: []*ast.Property{numProp("width", 100), numProp("height", 50)}},
			},
		},
	}}
	root, strs := buildTree(t, f)
	layout.Compute(root, strs, 0, 0, 200, 50)

	tester := &layout.Tester{}
	now := time.Unix(1000, 0)

	events := tester.HitTest([]*runtime.Element{root}, nil, 150, 25, true, now)
	var sawClick, sawHover, sawFocus bool
	for _, ev := range events {
		switch ev.Kind {
		case layout.Clicked:
			sawClick = true
			assert.Equal(t, "right", ev.Element.ID)
		case layout.Hovered:
			sawHover = true
		case layout.Focused:
			sawFocus = true
		}
	}
	assert.True(t, sawClick)
	assert.True(t, sawHover)
	assert.True(t, sawFocus)

	second := tester.HitTest([]*runtime.Element{root}, nil, 150, 25, true, now.Add(50*time.Millisecond))
	var sawDouble bool
	for _, ev := range second {
		if ev.Kind == layout.DoubleClicked {
			sawDouble = true
		}
	}
	assert.True(t, sawDouble)
}
