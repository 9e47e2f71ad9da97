package runtime

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/directive"
	"github.com/kryonlabs/kryon/internal/eval"
	"github.com/kryonlabs/kryon/internal/krbformat"
	"github.com/kryonlabs/kryon/internal/state"
)

// Update drives one frame's worth of directive reconciliation over root's
// subtree: every @for/@const_for/@if marker re-evaluates its iteration
// source or condition against store, and its Children are rebuilt from the
// result — this is the H -> {state, directive, eval} loop SPEC_FULL.md's
// pipeline calls for, the live counterpart to the one-shot Materialize/
// Mount a caller runs once at load time. A caller should follow Update with
// layout.Compute over any element whose LayoutDirty Update set.
func Update(root *Element, store *state.Store) *diag.Bag {
	bag := &diag.Bag{}
	updateElement(root, store, bag)
	return bag
}

func updateElement(el *Element, scope eval.Scope, bag *diag.Bag) {
	if el.Control != nil {
		updateControl(el, scope, bag)
		return
	}
	for _, c := range el.Children {
		updateElement(c, scope, bag)
	}
}

func updateControl(el *Element, scope eval.Scope, bag *diag.Bag) {
	ctrl := el.Control.Directive
	if ctrl.Kind == ast.ControlIf {
		res := directive.EvalIf(el.Control.IfState, ctrl, scope, bag)
		el.Control.IfState = res
		if res.Changed {
			el.Children = materializeTemplates(res.Elements, scope, el, bag)
			el.LayoutDirty = true
		}
		for _, c := range el.Children {
			updateElement(c, scope, bag)
		}
		return
	}

	res := directive.Reconcile(el.Control.ForState, ctrl, scope, bag)
	el.Control.ForState = res
	if el.Control.itemElems == nil {
		el.Control.itemElems = map[*directive.Item][]*Element{}
	}
	live := make(map[*directive.Item][]*Element, len(res.Items))
	var children []*Element
	for _, it := range res.Items {
		elems, ok := el.Control.itemElems[it]
		if !ok {
			itemScope := it.Scope(ctrl.LoopVar, scope)
			elems = materializeTemplates(it.Elements, itemScope, el, bag)
		}
		live[it] = elems
		children = append(children, elems...)
	}
	el.Control.itemElems = live
	el.Children = children
	el.LayoutDirty = true

	for _, c := range el.Children {
		updateElement(c, scope, bag)
	}
}

// materializeTemplates converts a stamped @for item's (or @if branch's)
// *ast.Element list into live *Element nodes, evaluating every property
// value against scope — the same scope internal/directive bound the loop
// variable into. Nested Control markers (a directive inside a directive's
// body) are preserved so a later Update reconciles them independently.
func materializeTemplates(elems []*ast.Element, scope eval.Scope, parent *Element, bag *diag.Bag) []*Element {
	out := make([]*Element, 0, len(elems))
	for _, e := range elems {
		out = append(out, materializeASTElement(e, scope, parent, bag))
	}
	return out
}

func materializeASTElement(e *ast.Element, scope eval.Scope, parent *Element, bag *diag.Bag) *Element {
	el := &Element{
		InstanceID:  uuid.NewString(),
		ID:          e.ID,
		Parent:      parent,
		Phase:       Mounted,
		LayoutDirty: true,
		Visible:     true,
	}
	if e.Control != nil {
		el.Control = &ControlMeta{Directive: e.Control}
		return el
	}
	if t, ok := krbformat.LookupElementType(e.TypeName); ok {
		el.Type = t
	}
	for _, p := range e.Properties {
		el.Properties = append(el.Properties, propValueToRaw(p, scope, bag))
	}
	for _, c := range e.Children {
		el.Children = append(el.Children, materializeASTElement(c, scope, el, bag))
	}
	return el
}

// propValueToRaw evaluates p's value against scope and encodes the result
// the way internal/codegen would, reusing the same {code, value_type, raw}
// RawProperty shape a decoded KRB property has — so layout/render, which
// only ever read Element.Properties in that shape, don't need to know
// whether a property came off disk or out of a directive reconcile.
func propValueToRaw(p *ast.Property, scope eval.Scope, bag *diag.Bag) RawProperty {
	code, ok := krbformat.LookupPropertyCode(p.Name)
	if !ok {
		return RawProperty{ValueType: krbformat.ValNone}
	}
	if p.Value == nil {
		return RawProperty{Code: code, ValueType: krbformat.ValNone}
	}

	switch p.Value.Kind {
	case ast.PVLiteral:
		return literalToRaw(code, p.Value)
	case ast.PVTemplate:
		return scalarToRaw(code, renderTemplate(p.Value.Template, scope, bag))
	case ast.PVExpression:
		return scalarToRaw(code, eval.Eval(p.Value.Expr, scope, bag))
	default:
		return RawProperty{Code: code, ValueType: krbformat.ValNone}
	}
}

func literalToRaw(code krbformat.PropertyCode, v *ast.PropValue) RawProperty {
	switch v.Lit.Kind {
	case ast.ValString:
		return RawProperty{Code: code, ValueType: krbformat.ValString, Raw: u32le(uint32(internLiteral(v.Lit.Str)))}
	case ast.ValNumber:
		if v.LitUnit != ast.UnitNone {
			return RawProperty{Code: code, ValueType: krbformat.ValPercentage, Raw: u16le(uint16(int16(v.Lit.Number * 256)))}
		}
		return RawProperty{Code: code, ValueType: krbformat.ValShort, Raw: u16le(uint16(int16(v.Lit.Number)))}
	case ast.ValBool:
		b := byte(0)
		if v.Lit.Bool {
			b = 1
		}
		return RawProperty{Code: code, ValueType: krbformat.ValBool, Raw: []byte{b}}
	default:
		return RawProperty{Code: code, ValueType: krbformat.ValNone}
	}
}

func scalarToRaw(code krbformat.PropertyCode, v any) RawProperty {
	switch val := v.(type) {
	case string:
		return RawProperty{Code: code, ValueType: krbformat.ValString, Raw: u32le(internLiteral(val))}
	case float64:
		return RawProperty{Code: code, ValueType: krbformat.ValShort, Raw: u16le(uint16(int16(val)))}
	case bool:
		b := byte(0)
		if val {
			b = 1
		}
		return RawProperty{Code: code, ValueType: krbformat.ValBool, Raw: []byte{b}}
	default:
		return RawProperty{Code: code, ValueType: krbformat.ValNone}
	}
}

func renderTemplate(tpl *ast.Template, scope eval.Scope, bag *diag.Bag) string {
	if tpl == nil {
		return ""
	}
	var out string
	for _, seg := range tpl.Segments {
		if seg.Kind == ast.SegLiteral {
			out += seg.Text
			continue
		}
		out += stringifyValue(eval.Eval(seg.Expr, scope, bag))
	}
	return out
}

func stringifyValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%g", s), ".0")
	default:
		return ""
	}
}

func u32le(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func u16le(v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return b[:]
}

// internLiteral assigns a stamped string an index above any decoded
// string-table index, in a process-local table distinct from a Document's
// own Strings slice — directive-stamped content (loop-bound text, computed
// labels) has no place in a read-only decoded document, and allocating it a
// separate table sidesteps ever mutating one out from under a concurrent
// reader of the original Document.
var stampedStrings = newStampTable()

type stampTable struct {
	index map[string]uint32
	order []string
}

func newStampTable() *stampTable { return &stampTable{index: map[string]uint32{}} }

func internLiteral(s string) uint32 {
	if idx, ok := stampedStrings.index[s]; ok {
		return idx
	}
	idx := uint32(len(stampedStrings.order)) | stampedStringFlag
	stampedStrings.index[s] = idx
	stampedStrings.order = append(stampedStrings.order, s)
	return idx
}

// StampedString resolves an index produced by internLiteral back to its
// string, for a caller (e.g. a Renderer backend or test) that reads a
// directive-stamped property's raw index directly rather than through
// Element.String.
func StampedString(idx uint32) (string, bool) {
	if idx&stampedStringFlag == 0 {
		return "", false
	}
	i := int(idx &^ stampedStringFlag)
	if i < 0 || i >= len(stampedStrings.order) {
		return "", false
	}
	return stampedStrings.order[i], true
}

// stampedStringFlag is set on every index internLiteral hands out, so it
// never collides with a decoded Document's own 0-based string-table
// indices, and String/StampedString can tell the two apart.
const stampedStringFlag uint32 = 1 << 31
