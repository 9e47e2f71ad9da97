// Package kir implements the Kryon Intermediate Representation: the JSON
// serialization of the post-expansion AST that sits between the expansion
// pass and the code generator. Every compilation goes through this step —
// it is the one mandatory checkpoint a tool can inspect or hand-edit between
// source and binary.
package kir

import (
	"encoding/json"
	"fmt"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/srcloc"
)

// Version is the KIR format version this writer emits and the reader's
// acceptance ceiling: a document is accepted if its major component matches
// exactly; minor/patch differences must still round-trip (forward- and
// backward-compatible within a major), per spec.md §4.D.
const Version = "1.0.0"

// Format is the fixed "format" discriminant field of every KIR document.
const Format = "kir-json"

// Style selects how Write renders the JSON document.
type Style int

const (
	StyleCompact Style = iota
	StyleReadable
	StyleVerbose
)

// Document is the top-level KIR envelope.
type Document struct {
	KIRVersion string          `json:"kir_version"`
	Format     string          `json:"format"`
	SourceFile string          `json:"source_file,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
	Compiler   string          `json:"compiler,omitempty"`
	Root       json.RawMessage `json:"root"`
}

// Node mirrors one ast.Node as a flat, kind-tagged JSON object. Using a
// single struct with omitempty fields (rather than one Go type per AST node)
// keeps the writer/reader symmetric without reflection — every field the
// union might need is declared once.
type Node struct {
	Kind     string         `json:"kind"`
	ID       string         `json:"id,omitempty"`
	Location *locationJSON  `json:"location,omitempty"`
	Comment  string         `json:"_comment,omitempty"` // StyleVerbose only

	// file
	Elements   []*Node           `json:"elements,omitempty"`
	Styles     []*Node           `json:"styles,omitempty"`
	Components []*Node           `json:"components,omitempty"`
	Consts     []*Node           `json:"consts,omitempty"`
	Variables  []*Node           `json:"variables,omitempty"`
	Functions  []*Node           `json:"functions,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`

	// element
	TypeName string   `json:"type_name,omitempty"`
	Classes  []string `json:"classes,omitempty"`
	Children []*Node  `json:"children,omitempty"`
	Control  *Node    `json:"control,omitempty"`
	Lifecycle []*Node `json:"lifecycle,omitempty"`

	// control directive
	ControlKind string  `json:"control_kind,omitempty"` // "for"|"const_for"|"if"
	LoopVar     string  `json:"loop_var,omitempty"`
	IterExpr    *Node   `json:"iter_expr,omitempty"`
	Cond        *Node   `json:"cond,omitempty"`
	Body        []*Node `json:"body,omitempty"`
	ElseBody    []*Node `json:"else_body,omitempty"`

	// property
	Name  string `json:"name,omitempty"`
	Value *Node  `json:"value,omitempty"`

	// prop value
	PropKind string   `json:"prop_kind,omitempty"` // "literal"|"expression"|"template"|"array"|"reference"
	LitKind  string   `json:"lit_kind,omitempty"`  // "number"|"string"|"bool"|"var_ref"|"null"
	Number   float64  `json:"number,omitempty"`
	Str      string   `json:"str,omitempty"`
	Bool     bool     `json:"bool,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Array    []*Node  `json:"array,omitempty"`
	RefName  string   `json:"ref_name,omitempty"`
	Segments []*Node  `json:"segments,omitempty"` // template

	// template segment
	SegKind string `json:"seg_kind,omitempty"` // "literal"|"expr"
	Text    string `json:"text,omitempty"`
	Expr    *Node  `json:"expr,omitempty"`

	// expr
	ExprKind string `json:"expr_kind,omitempty"` // "value"|"binary"|"unary"|"ternary"
	BinOp    string `json:"bin_op,omitempty"`
	UnOp     string `json:"un_op,omitempty"`
	Left     *Node  `json:"left,omitempty"`
	Right    *Node  `json:"right,omitempty"`
	Operand  *Node  `json:"operand,omitempty"`
	Then     *Node  `json:"then,omitempty"`
	Else     *Node  `json:"else,omitempty"`

	// style
	Extends    []string `json:"extends,omitempty"`
	Properties []*Node  `json:"properties,omitempty"`

	// component
	Params []*Node `json:"params,omitempty"`
	State  []*Node `json:"state,omitempty"`
	Template *Node `json:"template,omitempty"`

	// component param / state var
	Default *Node `json:"default,omitempty"`
	Init    *Node `json:"init,omitempty"`

	// function / lifecycle
	ParamNames []string `json:"param_names,omitempty"`
	Language   string   `json:"language,omitempty"`

	// variable block
	VarEntries map[string]string `json:"var_entries,omitempty"`

	// import
	Path  string `json:"path,omitempty"`
	Alias string `json:"alias,omitempty"`
}

type locationJSON struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Length int    `json:"length,omitempty"`
}

func locToJSON(l srcloc.Location) *locationJSON {
	if l == (srcloc.Location{}) {
		return nil
	}
	return &locationJSON{File: l.File, Line: l.Line, Column: l.Column, Offset: l.Offset, Length: l.Length}
}

func jsonToLoc(l *locationJSON) srcloc.Location {
	if l == nil {
		return srcloc.Location{}
	}
	return srcloc.Location{File: l.File, Line: l.Line, Column: l.Column, Offset: l.Offset, Length: l.Length}
}

// Unsupported node kind / malformed document errors.
var (
	errUnsupportedMajor = fmt.Errorf("kir: unsupported major version")
)

func versionMajor(v string) string {
	for i, c := range v {
		if c == '.' {
			return v[:i]
		}
	}
	return v
}

// CheckVersion reports whether a document's version is acceptable: its
// major component must exactly match Version's.
func CheckVersion(docVersion string) error {
	if versionMajor(docVersion) != versionMajor(Version) {
		return fmt.Errorf("%w: document is %q, reader is %q", errUnsupportedMajor, docVersion, Version)
	}
	return nil
}
