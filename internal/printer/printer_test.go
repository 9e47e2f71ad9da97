package printer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/parser"
	"github.com/kryonlabs/kryon/internal/printer"
)

func TestPrintThenParseRecoversElementShape(t *testing.T) {
	f, bag := parser.Parse([]byte(`Column { Button { text: "A"; } Button { text: "B"; } }`), "t.kry")
	require.False(t, bag.HasErrors())

	src := printer.Print(f)

	got, bag2 := parser.Parse([]byte(src), "t2.kry")
	require.False(t, bag2.HasErrors())

	require.Len(t, got.Elements, 1)
	assert.Equal(t, "Column", got.Elements[0].TypeName)
	require.Len(t, got.Elements[0].Children, 2)
	assert.Equal(t, "A", got.Elements[0].Children[0].Properties[0].Value.Lit.Str)
	assert.Equal(t, "B", got.Elements[0].Children[1].Properties[0].Value.Lit.Str)
}
