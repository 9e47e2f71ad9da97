package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/codegen"
	"github.com/kryonlabs/kryon/internal/expand"
	"github.com/kryonlabs/kryon/internal/krbformat"
	"github.com/kryonlabs/kryon/internal/parser"
	"github.com/kryonlabs/kryon/internal/runtime"
	"github.com/kryonlabs/kryon/internal/state"
)

func TestDecodeRoundTripsCodegenOutput(t *testing.T) {
	f := &ast.File{
		Metadata: map[string]string{"author": "me"},
		Elements: []*ast.Element{
			{
				TypeName: "App",
				ID:       "root",
				Properties: []*ast.Property{
					{Name: "title", Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: "X"}}},
				},
				Children: []*ast.Element{
					{TypeName: "Button", ID: "ok"},
				},
			},
		},
	}
	bin, stats, bag := codegen.Generate(f, codegen.Config{})
	require.False(t, bag.HasErrors())

	doc, dbag := runtime.Decode(bin)
	require.False(t, dbag.HasErrors())
	require.Len(t, doc.Elements, 1)
	assert.Equal(t, "me", doc.Metadata["author"])
	assert.Len(t, doc.Elements[0].Children, 1)
	assert.Equal(t, stats.ElementCount, 2)
}

func TestMaterializeAssignsParentAndRootInvariant(t *testing.T) {
	f := &ast.File{
		Elements: []*ast.Element{
			{TypeName: "Column", Children: []*ast.Element{
				{TypeName: "Button"},
				{TypeName: "Button"},
			}},
		},
	}
	bin, _, _ := codegen.Generate(f, codegen.Config{})
	doc, _ := runtime.Decode(bin)
	roots, bag := runtime.Materialize(doc)
	require.False(t, bag.HasErrors())
	require.Len(t, roots, 1)

	root := roots[0]
	assert.True(t, root.IsRoot())
	for _, c := range root.Children {
		assert.False(t, c.IsRoot())
		assert.Same(t, root, c.Parent)
	}
}

func TestMountTransitionsLifecycle(t *testing.T) {
	root := &runtime.Element{Children: []*runtime.Element{{}}}
	runtime.Mount(root)
	assert.Equal(t, runtime.Mounted, root.Phase)
	assert.Equal(t, runtime.Mounted, root.Children[0].Phase)
}

func TestUpdateReconcilesForDirectiveAgainstLiveState(t *testing.T) {
	src := `
		Column {
			@for item in $items {
				Text { text: $item; }
			}
		}
	`
	f, bag := parser.Parse([]byte(src), "t.kry")
	require.False(t, bag.HasErrors())

	expanded, expBag := expand.Expand(f, expand.DefaultConfig(), nil, nil)
	require.False(t, expBag.HasErrors())

	bin, _, genBag := codegen.Generate(expanded, codegen.Config{})
	require.False(t, genBag.HasErrors())

	doc, dbag := runtime.Decode(bin)
	require.False(t, dbag.HasErrors())

	roots, matBag := runtime.Materialize(doc)
	require.False(t, matBag.HasErrors())
	root := roots[0]
	require.Len(t, root.Children, 1)
	forEl := root.Children[0]
	require.NotNil(t, forEl.Control)

	store := state.NewFromMap(map[string]state.Value{"items": []any{"a", "b"}})

	updBag := runtime.Update(root, store)
	require.False(t, updBag.HasErrors())
	require.Len(t, forEl.Children, 2)
	text0, ok := forEl.Children[0].String(krbformat.PropText, doc.Strings)
	require.True(t, ok)
	assert.Equal(t, "a", text0)

	store.Set("items", []any{"a", "b", "c"})
	updBag2 := runtime.Update(root, store)
	require.False(t, updBag2.HasErrors())
	require.Len(t, forEl.Children, 3)
	text2, ok := forEl.Children[2].String(krbformat.PropText, doc.Strings)
	require.True(t, ok)
	assert.Equal(t, "c", text2)
}

func TestEventQueueDropsOnOverflow(t *testing.T) {
	q := runtime.NewEventQueue()
	for i := 0; i < runtime.EventQueueCapacity; i++ {
		require.True(t, q.Push(runtime.InputEvent{Type: runtime.EventClick}))
	}
	assert.False(t, q.Push(runtime.InputEvent{Type: runtime.EventClick}))
	assert.True(t, q.Overflow)
	assert.Len(t, q.Drain(), runtime.EventQueueCapacity)
	assert.False(t, q.Overflow)
}
