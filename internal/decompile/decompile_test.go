package decompile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/codegen"
	"github.com/kryonlabs/kryon/internal/decompile"
	"github.com/kryonlabs/kryon/internal/parser"
)

func TestDecompileRecoversElementTypeAndStringProperty(t *testing.T) {
	f, bag := parser.Parse([]byte(`App { title: "X"; }`), "t.kry")
	require.False(t, bag.HasErrors())

	buf, _, genBag := codegen.Generate(f, codegen.Config{})
	require.False(t, genBag.HasErrors())

	out, err := decompile.Decompile(buf)
	require.NoError(t, err)
	require.Len(t, out.Elements, 1)

	root := out.Elements[0]
	assert.Equal(t, "App", root.TypeName)
	require.Len(t, root.Properties, 1)
	assert.Equal(t, "title", root.Properties[0].Name)
	assert.Equal(t, "X", root.Properties[0].Value.Lit.Str)
}

func TestDecompileRecoversNestedChildren(t *testing.T) {
	f, bag := parser.Parse([]byte(`Column { Button { text: "A"; } Button { text: "B"; } }`), "t.kry")
	require.False(t, bag.HasErrors())

	buf, _, genBag := codegen.Generate(f, codegen.Config{})
	require.False(t, genBag.HasErrors())

	out, err := decompile.Decompile(buf)
	require.NoError(t, err)
	require.Len(t, out.Elements, 1)

	root := out.Elements[0]
	assert.Equal(t, "Column", root.TypeName)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "A", root.Children[0].Properties[0].Value.Lit.Str)
	assert.Equal(t, "B", root.Children[1].Properties[0].Value.Lit.Str)
}
