// Package directive implements the runtime side of @for/@const_for/@if —
// the directives internal/expand leaves behind when they depend on
// non-constant state (spec.md §4.H). The teacher has no runtime concept at
// all (it is a static KRB compiler), so this package's positional-diff and
// template-stamping design is grounded on spec.md §8 scenario 6's concrete
// before/after element counts rather than on any teacher file directly.
package directive

import (
	"fmt"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/eval"
)

// Item is one stamped copy of a @for body, bound to a single iterated value.
type Item struct {
	Index    int
	Value    any
	Elements []*ast.Element
}

// Scope returns an eval.Scope that resolves the loop variable (and
// "<var>_index") in front of outer, the way a @for body's expressions
// resolve $item against the current iteration before falling through to
// instance/global state.
func (it *Item) Scope(loopVar string, outer eval.Scope) eval.Scope {
	local := eval.MapScope{
		loopVar:            it.Value,
		loopVar + "_index": float64(it.Index),
	}
	if outer == nil {
		return local
	}
	return eval.ChainScope{local, outer}
}

// ForResult is the live state of one @for directive instance across update
// cycles: one Item per currently-iterated value, in order.
type ForResult struct {
	Items []*Item
}

// Build stamps a ForResult from scratch — spec.md §8 scenario 6's "after
// loading, two Text children" case.
func Build(ctrl *ast.ControlDirective, outer eval.Scope, bag *diag.Bag) *ForResult {
	return Reconcile(nil, ctrl, outer, bag)
}

// Reconcile re-evaluates ctrl.IterExpr against outer and updates prev
// in place by index: an index that existed before keeps its stamped
// Elements (so interior element identity — focus, scroll position, a
// mounted subtree — survives a value-only change), an index beyond the old
// length gets a freshly cloned template, and indices beyond the new length
// are dropped. This is the "positional diff" spec.md §8 scenario 6 exercises
// going from ["a","b"] to ["a","b","c"]: two old Items are kept, one Item is
// appended, none are re-cloned.
func Reconcile(prev *ForResult, ctrl *ast.ControlDirective, outer eval.Scope, bag *diag.Bag) *ForResult {
	if ctrl == nil {
		return &ForResult{}
	}
	if ctrl.Kind == ast.ControlIf {
		bag.Addf(diag.PhaseRuntime, ctrl.Location, "directive.Reconcile called on a non-@for ControlDirective")
		return &ForResult{}
	}

	arr := iterValues(ctrl, outer, bag)

	var prevItems []*Item
	if prev != nil {
		prevItems = prev.Items
	}

	out := &ForResult{Items: make([]*Item, 0, len(arr))}
	for i, v := range arr {
		if i < len(prevItems) {
			item := prevItems[i]
			item.Value = v
			out.Items = append(out.Items, item)
			continue
		}
		out.Items = append(out.Items, &Item{
			Index:    i,
			Value:    v,
			Elements: stampBody(ctrl.Body, i),
		})
	}
	return out
}

// iterValues resolves the @for/@const_for iteration source to a concrete
// slice. A variable reference to an array-valued state path is the dynamic
// case this package exists for. An array-literal iteration source normally
// never reaches here — internal/expand folds it at compile time when
// FoldConstantFor is set, or @const_for folds it unconditionally — but when
// it does (FoldConstantFor off and a @for, or an expression mixing literals
// with variable refs), it's evaluated directly rather than rejected.
func iterValues(ctrl *ast.ControlDirective, outer eval.Scope, bag *diag.Bag) []any {
	if ctrl.IterExpr == nil {
		return nil
	}
	if ctrl.IterExpr.Kind == ast.ExprArray {
		out := make([]any, len(ctrl.IterExpr.Elements))
		for i, el := range ctrl.IterExpr.Elements {
			out[i] = eval.Eval(el, outer, bag)
		}
		return out
	}
	if ctrl.IterExpr.Kind != ast.ExprValue || ctrl.IterExpr.Value.Kind != ast.ValVariableRef {
		bag.Warnf(diag.PhaseRuntime, ctrl.Location, "@for iteration source must be a state variable reference or array literal at runtime, got a computed expression")
		return nil
	}
	name := ctrl.IterExpr.Value.VarName
	raw, ok := outer.Get(name)
	if !ok {
		bag.Warnf(diag.PhaseRuntime, ctrl.Location, "unresolved state path %q", name)
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		bag.Warnf(diag.PhaseRuntime, ctrl.Location, "state path %q is not an array, @for produced no items", name)
		return nil
	}
	return arr
}

// stampBody deep-clones a @for template body for iteration index i,
// suffixing any declared id with "#i" so each iteration's elements keep a
// distinct, stable identity across reconciles (needed for hit testing and
// focus tracking in internal/layout).
func stampBody(body []*ast.Element, i int) []*ast.Element {
	out := make([]*ast.Element, len(body))
	for j, e := range body {
		clone := ast.CloneElement(e)
		if clone.ID != "" {
			clone.ID = fmt.Sprintf("%s#%d", clone.ID, i)
		}
		out[j] = clone
	}
	return out
}

// Flatten concatenates every Item's stamped elements in index order — the
// slice a parent's Children should be spliced with in place of the Control
// marker element.
func (r *ForResult) Flatten() []*ast.Element {
	if r == nil {
		return nil
	}
	var out []*ast.Element
	for _, it := range r.Items {
		out = append(out, it.Elements...)
	}
	return out
}

// IfResult is the live state of one @if directive instance: which branch is
// currently active, and whether this reconcile flipped it (the runtime's
// Mount/Destroy sequencing in internal/runtime only needs to run when
// Changed is true).
type IfResult struct {
	Active   bool
	Changed  bool
	Elements []*ast.Element
}

// EvalIf evaluates ctrl.Cond and selects Body or ElseBody, cloning the
// chosen branch once per activation so its elements get the same stable
// per-mount identity a @for item gets.
func EvalIf(prev *IfResult, ctrl *ast.ControlDirective, outer eval.Scope, bag *diag.Bag) *IfResult {
	if ctrl == nil {
		return &IfResult{}
	}
	if ctrl.Kind != ast.ControlIf {
		bag.Addf(diag.PhaseRuntime, ctrl.Location, "directive.EvalIf called on a non-@if ControlDirective")
		return &IfResult{}
	}
	active := truthy(eval.Eval(ctrl.Cond, outer, bag))

	if prev != nil && prev.Active == active {
		return &IfResult{Active: active, Changed: false, Elements: prev.Elements}
	}

	branch := ctrl.ElseBody
	if active {
		branch = ctrl.Body
	}
	elems := make([]*ast.Element, len(branch))
	for i, e := range branch {
		elems[i] = ast.CloneElement(e)
	}
	return &IfResult{Active: active, Changed: true, Elements: elems}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case nil:
		return false
	default:
		return true
	}
}
