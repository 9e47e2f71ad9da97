package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/codegen"
	"github.com/kryonlabs/kryon/internal/layout"
	"github.com/kryonlabs/kryon/internal/render"
	"github.com/kryonlabs/kryon/internal/runtime"
)

func strProp(name, s string) *ast.Property {
	return &ast.Property{Name: name, Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: s}}}
}

func TestEmitProducesDrawTextForTextElement(t *testing.T) {
	f := &ast.File{Elements: []*ast.Element{
		{TypeName: "Text", Properties: []*ast.Property{strProp("text", "hello")}},
	}}
	bin, _, bag := codegen.Generate(f, codegen.Config{})
	require.False(t, bag.HasErrors())
	doc, dbag := runtime.Decode(bin)
	require.False(t, dbag.HasErrors())
	roots, mbag := runtime.Materialize(doc)
	require.False(t, mbag.HasErrors())
	layout.Compute(roots[0], doc.Strings, 0, 0, 100, 100)

	em := render.NewEmitter(doc.Strings)
	cmds := em.Emit(roots[0])
	require.Len(t, cmds, 1)
	assert.Equal(t, render.DrawText, cmds[0].Kind)
	assert.Equal(t, "hello", cmds[0].Text)
}

type recordingRenderer struct {
	began, ended bool
	draws        []render.Command
}

func (r *recordingRenderer) BeginFrame()            { r.began = true }
func (r *recordingRenderer) Draw(c render.Command)  { r.draws = append(r.draws, c) }
func (r *recordingRenderer) EndFrame()              { r.ended = true }

func TestDriveBracketsDrawsWithFrameLifecycle(t *testing.T) {
	rr := &recordingRenderer{}
	cmds := []render.Command{{Kind: render.DrawRect}, {Kind: render.DrawRect}}
	render.Drive(rr, cmds)
	assert.True(t, rr.began)
	assert.True(t, rr.ended)
	assert.Len(t, rr.draws, 2)
}

func TestEmitSkipsInvisibleElements(t *testing.T) {
	f := &ast.File{Elements: []*ast.Element{
		{TypeName: "Text", Properties: []*ast.Property{strProp("text", "hidden")}},
	}}
	bin, _, bag := codegen.Generate(f, codegen.Config{})
	require.False(t, bag.HasErrors())
	doc, _ := runtime.Decode(bin)
	roots, _ := runtime.Materialize(doc)
	roots[0].Visible = false
	layout.Compute(roots[0], doc.Strings, 0, 0, 100, 100)

	em := render.NewEmitter(doc.Strings)
	cmds := em.Emit(roots[0])
	assert.Len(t, cmds, 0)
}
