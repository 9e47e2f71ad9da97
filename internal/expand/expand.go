// Package expand implements the expansion pass: it takes a parsed,
// immutable *ast.File and returns a new *ast.File with @include directives
// inlined, component instances replaced by their templates, and style/
// component inheritance resolved — the "needs_expansion(out) = false"
// checkpoint before the KIR codec. Grounded on the teacher's
// readAndProcessIncludes (now AST-level instead of textual) and
// resolveStyleInheritance/resolveComponentsAndProperties (the
// IsResolving/IsResolved cycle-detection discipline, now also applied to
// component inheritance).
package expand

import (
	"path/filepath"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/srcloc"
)

// IncludeMarker is the synthetic element type name the parser uses to
// represent an `@include "path"` directive (see internal/parser.IncludeMarker).
const IncludeMarker = "@include"

// MaxIncludeDepth matches spec.md §4.C's recursion cap.
const MaxIncludeDepth = 32

// MaxComponentDepth caps recursive component instantiation (a component
// instantiating itself, directly or via a chain) independent of include
// depth.
const MaxComponentDepth = 32

// Loader resolves an `@include` path to file content. internal/expand
// never touches the filesystem directly so it can be exercised with an
// in-memory fixture map in tests.
type Loader func(path string) ([]byte, error)

// ParseFunc parses loaded include content into a *ast.File. This is a function
// value (rather than an import of internal/parser) to avoid a dependency
// cycle, since internal/parser has no reason to know about expansion.
type ParseFunc func(src []byte, file string) (*ast.File, *diag.Bag)

// Config mirrors spec.md §4.C's configurable-flags list.
type Config struct {
	ExpandComponents    bool
	ExpandIncludes      bool
	ResolveInheritance  bool
	PreserveDefinitions bool
	AddExpansionMetadata bool
	ValidateBefore      bool
	ValidateAfter       bool
	MaxDepth            int

	// FoldConstantFor is the opt-in decision for spec.md §9's open question:
	// when true, `@for` over an array literal is unrolled into plain
	// repeated elements during expansion instead of being left for
	// internal/directive to expand at runtime. `@const_for` always folds,
	// regardless of this flag — that is its entire purpose.
	FoldConstantFor bool
}

// DefaultConfig returns the flags this implementation uses unless the
// caller overrides them: every resolution pass enabled, metadata annotation
// on, constant-for folding opt-in off.
func DefaultConfig() Config {
	return Config{
		ExpandComponents:    true,
		ExpandIncludes:      true,
		ResolveInheritance:  true,
		PreserveDefinitions: false,
		AddExpansionMetadata: true,
		MaxDepth:            MaxComponentDepth,
		FoldConstantFor:     false,
	}
}

// expander holds the mutable bookkeeping for a single Expand call.
type expander struct {
	cfg     Config
	load    Loader
	parse   ParseFunc
	bag     *diag.Bag
	styles  map[string]*ast.StyleDef
	comps   map[string]*ast.ComponentDef
	resolvingStyles map[string]bool
	resolvedStyles  map[string]bool
	resolvingComps  map[string]bool
	resolvedComps   map[string]bool
}

// Expand runs the full pass and returns the new File plus accumulated
// diagnostics. The input File is never mutated: elements and styles are
// deep-cloned via internal/ast's Clone helpers before any rewrite, while
// consts, variables and functions are carried over by reference.
func Expand(in *ast.File, cfg Config, load Loader, parse ParseFunc) (*ast.File, *diag.Bag) {
	ex := &expander{
		cfg:   cfg,
		load:  load,
		parse: parse,
		bag:   &diag.Bag{},
		styles: map[string]*ast.StyleDef{},
		comps:  map[string]*ast.ComponentDef{},
		resolvingStyles: map[string]bool{},
		resolvedStyles:  map[string]bool{},
		resolvingComps:  map[string]bool{},
		resolvedComps:   map[string]bool{},
	}

	out := &ast.File{
		Path:     in.Path,
		Metadata: cloneMeta(in.Metadata),
		Location: in.Location,
	}

	// 1. Resolve @include directives first, since an included file may
	// itself declare styles/components/elements this pass needs to see.
	elements := in.Elements
	if cfg.ExpandIncludes {
		elements = ex.expandIncludes(elements, in.Path, 0, map[string]bool{})
	}

	for _, s := range in.Styles {
		clone := ast.CloneStyleDef(s)
		out.Styles = append(out.Styles, clone)
		ex.styles[s.Name] = clone
	}
	for _, c := range in.Components {
		ex.comps[c.Name] = c
	}
	out.Consts = in.Consts
	out.Variables = in.Variables
	out.Functions = in.Functions

	if cfg.ResolveInheritance {
		for name := range ex.styles {
			ex.resolveStyleChain(name, srcloc.Location{})
		}
	}

	if cfg.PreserveDefinitions {
		for _, c := range in.Components {
			out.Components = append(out.Components, ast.CloneComponentDef(c))
		}
	}

	out.Elements = ex.expandElements(elements, 0)

	if cfg.AddExpansionMetadata {
		if out.Metadata == nil {
			out.Metadata = map[string]string{}
		}
		out.Metadata["expanded"] = "true"
	}

	return out, ex.bag
}

func cloneMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// expandIncludes walks the element list looking for IncludeMarker elements
// (produced by the parser for `@include "path"`) and splices in the parsed
// elements of the referenced file in their place. Cycle detection is by
// absolute path in `seen`; depth is capped at MaxIncludeDepth.
func (ex *expander) expandIncludes(elems []*ast.Element, currentFile string, depth int, seen map[string]bool) []*ast.Element {
	if depth > MaxIncludeDepth {
		ex.bag.Addf(diag.PhaseExpand, srcloc.Location{File: currentFile}, "include depth exceeded (max %d)", MaxIncludeDepth)
		return elems
	}
	var out []*ast.Element
	for _, e := range elems {
		if e.TypeName != IncludeMarker {
			clone := ast.CloneElement(e)
			clone.Children = ex.expandIncludes(e.Children, currentFile, depth, seen)
			out = append(out, clone)
			continue
		}
		path := e.ID
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if seen[key] {
			ex.bag.Addf(diag.PhaseExpand, e.Location, "include cycle detected at %q", path)
			continue
		}
		if ex.load == nil || ex.parse == nil {
			ex.bag.Addf(diag.PhaseExpand, e.Location, "cannot resolve include %q: no loader configured", path)
			continue
		}
		data, err := ex.load(path)
		if err != nil {
			ex.bag.Addf(diag.PhaseExpand, e.Location, "cannot load include %q: %v", path, err)
			continue
		}
		included, subBag := ex.parse(data, path)
		ex.bag.Extend(subBag)
		if included == nil {
			continue
		}
		seen[key] = true
		nested := ex.expandIncludes(included.Elements, path, depth+1, seen)
		delete(seen, key)
		for _, s := range included.Styles {
			ex.styles[s.Name] = s
		}
		for _, c := range included.Components {
			ex.comps[c.Name] = c
		}
		out = append(out, nested...)
	}
	return out
}

// expandElements expands each element of elems in order, concatenating the
// results — a single input element can expand into zero, one, or many
// output elements when it's a folded @const_for/@for (see expandControl).
func (ex *expander) expandElements(elems []*ast.Element, depth int) []*ast.Element {
	var out []*ast.Element
	for _, e := range elems {
		out = append(out, ex.expandElement(e, depth)...)
	}
	return out
}

// expandElement replaces a component-instance element with its template
// (parameter-substituted, inheritance-resolved), or recurses into an
// ordinary element's children. depth guards against runaway self-reference.
// The return is a slice, not a single element, since a literal-folded
// @const_for/@for expands into N sibling elements in place of the one
// directive element.
func (ex *expander) expandElement(e *ast.Element, depth int) []*ast.Element {
	if depth > MaxComponentDepth {
		ex.bag.Addf(diag.PhaseExpand, e.Location, "component expansion depth exceeded (max %d) at %q", MaxComponentDepth, e.TypeName)
		return []*ast.Element{ast.CloneElement(e)}
	}

	if e.Control != nil {
		return ex.expandControl(e, depth)
	}

	if ex.cfg.ExpandComponents {
		if def, ok := ex.comps[e.TypeName]; ok {
			return []*ast.Element{ex.instantiateComponent(def, e, depth)}
		}
	}

	clone := ast.CloneElement(e)
	clone.Properties = e.Properties
	clone.Children = ex.expandElements(e.Children, depth)
	return []*ast.Element{clone}
}

// expandControl expands the templated body of a @for/@const_for/@if
// directive element. @const_for folds at expansion time whenever its
// iteration source is a literal array — that is the one thing distinguishing
// it from @for, per spec.md §4.B. @for only folds when Config.FoldConstantFor
// is set and the iteration expression is a literal array; otherwise the
// directive element survives, opaque, for internal/directive to expand at
// runtime. @if's branches are recursively expanded but the directive itself
// is left for the runtime, since its condition generally depends on
// reactive state.
func (ex *expander) expandControl(e *ast.Element, depth int) []*ast.Element {
	ctrl := e.Control
	switch ctrl.Kind {
	case ast.ControlConstFor:
		return ex.unrollFor(e, depth)
	case ast.ControlFor:
		if ex.cfg.FoldConstantFor && isLiteralArrayExpr(ctrl.IterExpr) {
			return ex.unrollFor(e, depth)
		}
		clone := ast.CloneElement(e)
		clone.Control = &ast.ControlDirective{
			Kind: ctrl.Kind, LoopVar: ctrl.LoopVar, IterExpr: ctrl.IterExpr, Location: ctrl.Location,
		}
		clone.Control.Body = ex.expandElements(ctrl.Body, depth)
		return []*ast.Element{clone}
	case ast.ControlIf:
		clone := ast.CloneElement(e)
		clone.Control = &ast.ControlDirective{Kind: ast.ControlIf, Cond: ctrl.Cond, Location: ctrl.Location}
		clone.Control.Body = ex.expandElements(ctrl.Body, depth)
		clone.Control.ElseBody = ex.expandElements(ctrl.ElseBody, depth)
		return []*ast.Element{clone}
	default:
		return []*ast.Element{ast.CloneElement(e)}
	}
}

// isLiteralArrayExpr reports whether e is a bracketed expression list
// (ast.ExprArray) all of whose elements are themselves literal values —
// never a variable reference, since those aren't known until runtime.
func isLiteralArrayExpr(e *ast.Expr) bool {
	if e == nil || e.Kind != ast.ExprArray {
		return false
	}
	for _, el := range e.Elements {
		if el == nil || el.Kind != ast.ExprValue || el.Value.Kind == ast.ValVariableRef {
			return false
		}
	}
	return true
}

// unrollFor produces one cloned, loop-variable-substituted copy of the
// directive's template body per literal array element, replacing the single
// directive element with N sibling elements. @const_for's iteration source
// is not always resolvable to a literal array at expansion time (it may
// reference a runtime-only value, e.g. `@const_for x in $items`) — expansion
// has no access to state, so that case degrades to a warning and a
// pass-through as a runtime @for, rather than folding nothing and silently
// behaving like plain @for, matching spec.md §7's "errors above warning
// block compilation; warnings do not" rule.
func (ex *expander) unrollFor(e *ast.Element, depth int) []*ast.Element {
	ctrl := e.Control
	if isLiteralArrayExpr(ctrl.IterExpr) {
		var out []*ast.Element
		for i, elemExpr := range ctrl.IterExpr.Elements {
			args := map[string]*ast.PropValue{
				ctrl.LoopVar:            exprValueToPropValue(elemExpr),
				ctrl.LoopVar + "_index": {Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValNumber, Number: float64(i)}, Location: elemExpr.Location},
			}
			for _, b := range ctrl.Body {
				clone := ast.CloneElement(b)
				substituteParams(clone, args)
				out = append(out, ex.expandElement(clone, depth)...)
			}
		}
		return out
	}

	ex.bag.Warnf(diag.PhaseExpand, e.Location, "const-for %q could not be resolved to a literal array at expansion time; left for runtime directive engine", ctrl.LoopVar)
	clone := ast.CloneElement(e)
	clone.Control = &ast.ControlDirective{
		Kind: ast.ControlFor, LoopVar: ctrl.LoopVar, IterExpr: ctrl.IterExpr, Location: ctrl.Location,
	}
	clone.Control.Body = ex.expandElements(ctrl.Body, depth)
	return []*ast.Element{clone}
}

// exprValueToPropValue lifts a literal ExprValue into the PropValue shape
// substituteParams/substituteValue expect for an argument binding.
func exprValueToPropValue(e *ast.Expr) *ast.PropValue {
	return &ast.PropValue{Kind: ast.PVLiteral, Lit: e.Value, Location: e.Location}
}

// instantiateComponent clones def's template, substitutes the instance's
// property values in place of the component's declared parameters, and
// applies inheritance (parent properties first, child overrides by name)
// when def.Extends names a parent component.
func (ex *expander) instantiateComponent(def *ast.ComponentDef, instance *ast.Element, depth int) *ast.Element {
	resolved := ex.resolveComponentChain(def, instance.Location)
	if resolved == nil || resolved.Template == nil {
		ex.bag.Addf(diag.PhaseExpand, instance.Location, "component %q has no ui_template", def.Name)
		return ast.CloneElement(instance)
	}

	args := map[string]*ast.PropValue{}
	for _, p := range instance.Properties {
		args[p.Name] = p.Value
	}
	for _, param := range resolved.Params {
		if _, ok := args[param.Name]; !ok && param.Default != nil {
			args[param.Name] = param.Default
		}
	}

	root := ast.CloneElement(resolved.Template)
	substituteParams(root, args)
	if instance.ID != "" {
		root.ID = instance.ID
	}
	root.Classes = append(root.Classes, instance.Classes...)
	root.Lifecycle = append(root.Lifecycle, instance.Lifecycle...)

	expandedRoot := root
	if roots := ex.expandElement(root, depth+1); len(roots) > 0 {
		expandedRoot = roots[0]
	}
	expandedRoot.Children = append(expandedRoot.Children, ex.expandElements(instance.Children, depth+1)...)
	return expandedRoot
}

// resolveComponentChain merges def with its Extends ancestry, parent
// properties first and child overrides by name, detecting inheritance
// cycles with the IsResolving/IsResolved discipline the teacher's style
// resolver uses.
func (ex *expander) resolveComponentChain(def *ast.ComponentDef, loc srcloc.Location) *ast.ComponentDef {
	if ex.resolvedComps[def.Name] {
		return ex.comps[def.Name]
	}
	if ex.resolvingComps[def.Name] {
		ex.bag.Addf(diag.PhaseExpand, loc, "inheritance cycle detected involving component %q", def.Name)
		return def
	}
	if def.Extends == "" {
		ex.resolvedComps[def.Name] = true
		return def
	}
	ex.resolvingComps[def.Name] = true
	defer delete(ex.resolvingComps, def.Name)

	parent, ok := ex.comps[def.Extends]
	if !ok {
		ex.bag.Addf(diag.PhaseExpand, loc, "component %q extends unknown component %q", def.Name, def.Extends)
		ex.resolvedComps[def.Name] = true
		return def
	}
	resolvedParent := ex.resolveComponentChain(parent, loc)

	merged := &ast.ComponentDef{Name: def.Name, Location: def.Location}
	merged.Params = mergeParams(resolvedParent.Params, def.Params)
	merged.State = mergeState(resolvedParent.State, def.State)
	merged.Functions = append(append([]*ast.FunctionDecl{}, resolvedParent.Functions...), def.Functions...)
	if def.Template != nil {
		merged.Template = def.Template
	} else {
		merged.Template = resolvedParent.Template
	}
	ex.comps[def.Name] = merged
	ex.resolvedComps[def.Name] = true
	return merged
}

func mergeParams(parent, child []ast.ComponentParam) []ast.ComponentParam {
	out := append([]ast.ComponentParam{}, parent...)
	for _, cp := range child {
		replaced := false
		for i, pp := range out {
			if pp.Name == cp.Name {
				out[i] = cp
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, cp)
		}
	}
	return out
}

func mergeState(parent, child []ast.StateVar) []ast.StateVar {
	out := append([]ast.StateVar{}, parent...)
	for _, cs := range child {
		replaced := false
		for i, ps := range out {
			if ps.Name == cs.Name {
				out[i] = cs
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, cs)
		}
	}
	return out
}

// resolveStyleChain resolves a style's `extends` list, merging parent
// properties first with child properties overriding by name, detecting
// cycles exactly like the teacher's resolveSingleStyle
// (IsResolving/IsResolved flags, "cyclic style inheritance detected" error).
func (ex *expander) resolveStyleChain(name string, loc srcloc.Location) []*ast.Property {
	if ex.resolvedStyles[name] {
		return ex.styles[name].Properties
	}
	style, ok := ex.styles[name]
	if !ok {
		ex.bag.Addf(diag.PhaseExpand, loc, "unknown style %q", name)
		return nil
	}
	if ex.resolvingStyles[name] {
		ex.bag.Addf(diag.PhaseExpand, style.Location, "cyclic style inheritance detected involving style %q", name)
		return style.Properties
	}
	ex.resolvingStyles[name] = true
	defer delete(ex.resolvingStyles, name)

	merged := map[string]*ast.Property{}
	var order []string
	for _, base := range style.Extends {
		for _, p := range ex.resolveStyleChain(base, style.Location) {
			if _, exists := merged[p.Name]; !exists {
				order = append(order, p.Name)
			}
			merged[p.Name] = p
		}
	}
	for _, p := range style.Properties {
		if _, exists := merged[p.Name]; !exists {
			order = append(order, p.Name)
		}
		merged[p.Name] = p
	}
	final := make([]*ast.Property, 0, len(order))
	for _, name := range order {
		final = append(final, merged[name])
	}
	style.Properties = final
	ex.resolvedStyles[name] = true
	return final
}

// substituteParams rewrites every PVReference PropValue in the subtree that
// names a component parameter (by its bare name) with the instance's
// supplied argument, and rewrites every template segment/expression
// variable reference the same way. Mutates root in place — root is always a
// fresh clone by the time this is called.
func substituteParams(root *ast.Element, args map[string]*ast.PropValue) {
	for _, p := range root.Properties {
		p.Value = substituteValue(p.Value, args)
	}
	for _, c := range root.Children {
		substituteParams(c, args)
	}
	if root.Control != nil {
		if root.Control.IterExpr != nil {
			root.Control.IterExpr = substituteExpr(root.Control.IterExpr, args)
		}
		if root.Control.Cond != nil {
			root.Control.Cond = substituteExpr(root.Control.Cond, args)
		}
		for _, b := range root.Control.Body {
			substituteParams(b, args)
		}
		for _, b := range root.Control.ElseBody {
			substituteParams(b, args)
		}
	}
}

func substituteValue(v *ast.PropValue, args map[string]*ast.PropValue) *ast.PropValue {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ast.PVReference:
		if arg, ok := args[v.RefName]; ok {
			return arg
		}
		return v
	case ast.PVExpression:
		return &ast.PropValue{Kind: ast.PVExpression, Expr: substituteExpr(v.Expr, args), Location: v.Location}
	case ast.PVTemplate:
		segs := make([]ast.TemplateSegment, len(v.Template.Segments))
		for i, seg := range v.Template.Segments {
			if seg.Kind == ast.SegExpr {
				segs[i] = ast.TemplateSegment{Kind: ast.SegExpr, Expr: substituteExpr(seg.Expr, args)}
			} else {
				segs[i] = seg
			}
		}
		return &ast.PropValue{Kind: ast.PVTemplate, Template: &ast.Template{Segments: segs, Location: v.Template.Location}, Location: v.Location}
	case ast.PVArray:
		arr := make([]*ast.PropValue, len(v.Array))
		for i, elem := range v.Array {
			arr[i] = substituteValue(elem, args)
		}
		return &ast.PropValue{Kind: ast.PVArray, Array: arr, Location: v.Location}
	default:
		return v
	}
}

func substituteExpr(e *ast.Expr, args map[string]*ast.PropValue) *ast.Expr {
	if e == nil {
		return nil
	}
	if e.Kind == ast.ExprValue && e.Value.Kind == ast.ValVariableRef {
		if arg, ok := args[e.Value.VarName]; ok && arg.Kind == ast.PVLiteral {
			return literalToExpr(arg)
		}
		return e
	}
	clone := *e
	clone.Left = substituteExpr(e.Left, args)
	clone.Right = substituteExpr(e.Right, args)
	clone.Operand = substituteExpr(e.Operand, args)
	clone.Cond = substituteExpr(e.Cond, args)
	clone.Then = substituteExpr(e.Then, args)
	clone.Else = substituteExpr(e.Else, args)
	return &clone
}

func literalToExpr(v *ast.PropValue) *ast.Expr {
	switch v.Lit.Kind {
	case ast.ValNumber:
		return ast.NewNumber(v.Lit.Number, v.Location)
	case ast.ValString:
		return ast.NewString(v.Lit.Str, v.Location)
	case ast.ValBool:
		return ast.NewBool(v.Lit.Bool, v.Location)
	default:
		return &ast.Expr{Kind: ast.ExprValue, Value: ast.Value{Kind: ast.ValNull}, Location: v.Location}
	}
}

// NeedsExpansion reports whether f still contains anything a fully expanded
// File must not: an @include marker, a component-instance element whose
// type matches a known definition, or an un-inlined @const_for. It backs
// the output invariant spec.md §4.C requires (`needs_expansion(out) =
// false`) so callers — and tests — can assert it directly.
func NeedsExpansion(f *ast.File, comps map[string]*ast.ComponentDef) bool {
	for _, e := range f.Elements {
		if needsExpansionElement(e, comps) {
			return true
		}
	}
	return false
}

func needsExpansionElement(e *ast.Element, comps map[string]*ast.ComponentDef) bool {
	if e.TypeName == IncludeMarker {
		return true
	}
	if _, ok := comps[e.TypeName]; ok {
		return true
	}
	if e.Control != nil && e.Control.Kind == ast.ControlConstFor {
		return true
	}
	for _, c := range e.Children {
		if needsExpansionElement(c, comps) {
			return true
		}
	}
	return false
}
