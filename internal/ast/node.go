// Package ast defines the Kryon abstract syntax tree: a small, closed set of
// node types joined by the Node interface, matching the sum-type design
// called for in SPEC_FULL.md (one discriminant per node family, no
// inheritance hierarchy). internal/parser produces a File; internal/expand
// consumes and rewrites it; internal/kir serializes it losslessly.
package ast

import "github.com/kryonlabs/kryon/internal/srcloc"

// Node is implemented by every AST node. It exists to let tooling (the
// decompiler, diagnostics) walk a tree without knowing every concrete type.
type Node interface {
	Loc() srcloc.Location
}

// File is the root of a parsed/expanded source file.
type File struct {
	Path       string
	Elements   []*Element // top-level element instances (usually exactly one root)
	Styles     []*StyleDef
	Components []*ComponentDef
	Consts     []*ConstDecl
	Variables  []*VariableBlock
	Functions  []*FunctionDecl
	Metadata   map[string]string
	Imports    []*ImportDecl
	Location   srcloc.Location
}

func (f *File) Loc() srcloc.Location { return f.Location }

// Element is a declared UI node: `Type { props; children }`.
type Element struct {
	TypeName   string
	ID         string // value of the `id` property, if any, cached for quick lookup
	Properties []*Property
	Children   []*Element
	Classes    []string // resolved `class` property, split on whitespace

	// Control, when non-nil, marks this Element as the templated body of a
	// @for/@const_for/@if directive rather than a directly materialized
	// element. internal/expand either folds it away (@const_for, or @for
	// when constant-folding is enabled) or leaves it for internal/directive
	// to process at runtime.
	Control *ControlDirective

	// Lifecycle hooks declared directly under this element (@onmount,
	// @onunmount, @onload).
	Lifecycle []*LifecycleHook

	Location srcloc.Location
}

func (e *Element) Loc() srcloc.Location { return e.Location }

// ControlKind distinguishes @for/@const_for/@if.
type ControlKind int

const (
	ControlFor ControlKind = iota
	ControlConstFor
	ControlIf
)

// ControlDirective captures a `@for v in expr { ... }`, `@const_for v in expr
// { ... }`, or `@if cond { ... } @else { ... }` block. Body is the template
// captured as ordinary Element nodes (re-parented under the synthesized
// Element when materialized).
type ControlDirective struct {
	Kind     ControlKind
	LoopVar  string // @for / @const_for
	IterExpr *Expr  // @for / @const_for
	Cond     *Expr  // @if
	Body     []*Element
	ElseBody []*Element // @if only
	Location srcloc.Location
}

// Property is a single `name: value` assignment inside an element or style
// body.
type Property struct {
	Name     string
	Value    *PropValue
	Location srcloc.Location
}

func (p *Property) Loc() srcloc.Location { return p.Location }

// PropValueKind tags the variant of a property/style value.
type PropValueKind int

const (
	PVLiteral PropValueKind = iota
	PVExpression
	PVTemplate
	PVArray
	PVReference
	PVUnit
)

// Unit enumerates the recognized CSS-like unit suffixes.
type Unit int

const (
	UnitNone Unit = iota
	UnitPx
	UnitPercent
	UnitEm
	UnitRem
	UnitVw
	UnitVh
	UnitPt
)

// PropValue is the tagged union of everything a property or array element
// may hold: a bare literal, an expression tree, a template (interpolated
// string), an array of further PropValues, or a named reference
// (`@component-name` / `$binding.path`, resolved at a later pass).
type PropValue struct {
	Kind PropValueKind

	// PVLiteral
	Lit Value
	// a literal number may additionally carry a unit suffix, e.g. `12px`.
	LitUnit Unit

	// PVExpression
	Expr *Expr

	// PVTemplate
	Template *Template

	// PVArray
	Array []*PropValue

	// PVReference
	RefName string

	Location srcloc.Location
}

func (v *PropValue) Loc() srcloc.Location { return v.Location }

// TemplateSegmentKind tags a piece of an interpolated string.
type TemplateSegmentKind int

const (
	SegLiteral TemplateSegmentKind = iota
	SegExpr
)

// TemplateSegment is one literal-or-expression piece of a Template.
type TemplateSegment struct {
	Kind TemplateSegmentKind
	Text string // SegLiteral
	Expr *Expr  // SegExpr
}

// Template is a string built from literal text interleaved with `${expr}`
// interpolations.
type Template struct {
	Segments []TemplateSegment
	Location srcloc.Location
}

func (t *Template) Loc() srcloc.Location { return t.Location }

// StyleDef is a `@style name extends base... { props }` block.
type StyleDef struct {
	Name       string
	Extends    []string
	Properties []*Property
	Location   srcloc.Location
}

func (s *StyleDef) Loc() srcloc.Location { return s.Location }

// ComponentParam is one declared parameter of a @component.
type ComponentParam struct {
	Name     string
	Default  *PropValue // nil if required
	Location srcloc.Location
}

// StateVar is one `@state name: value` entry declared inside a @component.
type StateVar struct {
	Name     string
	Init     *PropValue
	Location srcloc.Location
}

// FunctionDecl is an `@function name(params) { ...script... }` declaration.
// Body is the raw SCRIPT_CONTENT text; this module does not parse or
// execute it — scripting VM integration is an external collaborator.
type FunctionDecl struct {
	Name     string
	Params   []string
	Language string // e.g. "lua"; empty if unspecified
	Body     string
	Location srcloc.Location
}

// LifecycleHook is an @onmount/@onunmount/@onload block; like FunctionDecl
// its Body is opaque script text.
type LifecycleHook struct {
	Kind     string // "onmount" | "onunmount" | "onload"
	Body     string
	Location srcloc.Location
}

// ComponentDef is a `@component Name(params) { state; functions; ui }`
// definition.
type ComponentDef struct {
	Name      string
	Extends   string // parent component name for inheritance, empty if none
	Params    []ComponentParam
	State     []StateVar
	Functions []*FunctionDecl
	Template  *Element // the ui_template root
	Location  srcloc.Location

	// PendingHooks holds lifecycle hooks parsed before Template was known
	// (e.g. an @onmount block declared above the ui template); the parser
	// flushes these onto Template.Lifecycle once the template is parsed.
	PendingHooks []*LifecycleHook
}

func (c *ComponentDef) Loc() srcloc.Location { return c.Location }

// ConstDecl is a top-level `@const name: value`.
type ConstDecl struct {
	Name     string
	Value    *PropValue
	Location srcloc.Location
}

func (c *ConstDecl) Loc() srcloc.Location { return c.Location }

// VariableBlock is an `@variables { name: value; ... }` block, resolved and
// textually substituted before tokenization (see SPEC_FULL.md §8). It is
// retained in the AST only for KIR fidelity/debugging; expansion does not
// need to re-process it since substitution already happened pre-lex.
type VariableBlock struct {
	Entries  map[string]string
	Location srcloc.Location
}

func (v *VariableBlock) Loc() srcloc.Location { return v.Location }

// ImportDecl is an `@import "path" [as alias]` declaration.
type ImportDecl struct {
	Path     string
	Alias    string
	Location srcloc.Location
}

func (i *ImportDecl) Loc() srcloc.Location { return i.Location }

// IncludeDecl is an `@include "path"` declaration node. The parser does not
// build it: it carries an `@include` as an Element whose TypeName is
// "@include" (see internal/parser.IncludeMarker), and that element is what
// internal/expand replaces with the referenced file's content.
type IncludeDecl struct {
	Path     string
	Location srcloc.Location
}

func (i *IncludeDecl) Loc() srcloc.Location { return i.Location }
