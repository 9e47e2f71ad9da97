package kir

import (
	"encoding/json"

	"github.com/tidwall/pretty"

	"github.com/kryonlabs/kryon/internal/ast"
)

// ExprToJSON serializes a single expression tree to compact JSON, reusing
// the same Node shape Write uses for a property's expression value. Lets
// internal/codegen carry a @for/@if directive's non-foldable iteration/
// condition expression through the KRB binary as an opaque string-table
// blob, and internal/decompile reconstruct it from the same bytes.
func ExprToJSON(e *ast.Expr) ([]byte, error) {
	return json.Marshal(nodeFromExpr(e))
}

// Options configures Write.
type Options struct {
	Style      Style
	SourceFile string
	Timestamp  string
	Compiler   string
}

// Write serializes a post-expansion *ast.File into a KIR JSON document.
func Write(f *ast.File, opts Options) ([]byte, error) {
	root := nodeFromFile(f, opts.Style)
	rootJSON, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	doc := Document{
		KIRVersion: Version,
		Format:     Format,
		SourceFile: opts.SourceFile,
		Timestamp:  opts.Timestamp,
		Compiler:   opts.Compiler,
		Root:       rootJSON,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	switch opts.Style {
	case StyleCompact:
		return pretty.Ugly(raw), nil
	default:
		return pretty.PrettyOptions(raw, &pretty.Options{Indent: "  ", SortKeys: false}), nil
	}
}

func nodeFromFile(f *ast.File, style Style) *Node {
	n := &Node{Kind: "file", Location: locToJSON(f.Location), Metadata: f.Metadata}
	if style == StyleVerbose {
		n.Comment = "post-expansion root"
	}
	for _, e := range f.Elements {
		n.Elements = append(n.Elements, nodeFromElement(e, style))
	}
	for _, s := range f.Styles {
		n.Styles = append(n.Styles, nodeFromStyle(s, style))
	}
	for _, c := range f.Components {
		n.Components = append(n.Components, nodeFromComponent(c, style))
	}
	for _, c := range f.Consts {
		n.Consts = append(n.Consts, &Node{Kind: "const", Name: c.Name, Value: nodeFromPropValue(c.Value, style), Location: locToJSON(c.Location)})
	}
	for _, v := range f.Variables {
		n.Variables = append(n.Variables, &Node{Kind: "variable_block", VarEntries: v.Entries, Location: locToJSON(v.Location)})
	}
	for _, fn := range f.Functions {
		n.Functions = append(n.Functions, nodeFromFunction(fn, style))
	}
	return n
}

func nodeFromElement(e *ast.Element, style Style) *Node {
	n := &Node{
		Kind:     "element",
		TypeName: e.TypeName,
		ID:       e.ID,
		Classes:  e.Classes,
		Location: locToJSON(e.Location),
	}
	for _, p := range e.Properties {
		n.Properties = append(n.Properties, &Node{Kind: "property", Name: p.Name, Value: nodeFromPropValue(p.Value, style), Location: locToJSON(p.Location)})
	}
	for _, c := range e.Children {
		n.Children = append(n.Children, nodeFromElement(c, style))
	}
	for _, h := range e.Lifecycle {
		n.Lifecycle = append(n.Lifecycle, &Node{Kind: "lifecycle_hook", Name: h.Kind, Text: h.Body, Location: locToJSON(h.Location)})
	}
	if e.Control != nil {
		n.Control = nodeFromControl(e.Control, style)
	}
	return n
}

func nodeFromControl(c *ast.ControlDirective, style Style) *Node {
	n := &Node{Kind: "control", Location: locToJSON(c.Location)}
	switch c.Kind {
	case ast.ControlFor:
		n.ControlKind = "for"
	case ast.ControlConstFor:
		n.ControlKind = "const_for"
	case ast.ControlIf:
		n.ControlKind = "if"
	}
	n.LoopVar = c.LoopVar
	if c.IterExpr != nil {
		n.IterExpr = nodeFromExpr(c.IterExpr)
	}
	if c.Cond != nil {
		n.Cond = nodeFromExpr(c.Cond)
	}
	for _, b := range c.Body {
		n.Body = append(n.Body, nodeFromElement(b, style))
	}
	for _, b := range c.ElseBody {
		n.ElseBody = append(n.ElseBody, nodeFromElement(b, style))
	}
	return n
}

func nodeFromPropValue(v *ast.PropValue, style Style) *Node {
	if v == nil {
		return nil
	}
	n := &Node{Kind: "prop_value", Location: locToJSON(v.Location)}
	switch v.Kind {
	case ast.PVLiteral:
		n.PropKind = "literal"
		n.Unit = unitName(v.LitUnit)
		fillLitValue(n, v.Lit)
	case ast.PVExpression:
		n.PropKind = "expression"
		n.Expr = nodeFromExpr(v.Expr)
	case ast.PVTemplate:
		n.PropKind = "template"
		for _, seg := range v.Template.Segments {
			n.Segments = append(n.Segments, nodeFromSegment(seg))
		}
	case ast.PVArray:
		n.PropKind = "array"
		for _, elem := range v.Array {
			n.Array = append(n.Array, nodeFromPropValue(elem, style))
		}
	case ast.PVReference:
		n.PropKind = "reference"
		n.RefName = v.RefName
	}
	return n
}

func fillLitValue(n *Node, v ast.Value) {
	switch v.Kind {
	case ast.ValNumber:
		n.LitKind = "number"
		n.Number = v.Number
	case ast.ValString:
		n.LitKind = "string"
		n.Str = v.Str
	case ast.ValBool:
		n.LitKind = "bool"
		n.Bool = v.Bool
	case ast.ValVariableRef:
		n.LitKind = "var_ref"
		n.RefName = v.VarName
	case ast.ValNull:
		n.LitKind = "null"
	}
}

func nodeFromSegment(seg ast.TemplateSegment) *Node {
	n := &Node{Kind: "template_segment"}
	if seg.Kind == ast.SegLiteral {
		n.SegKind = "literal"
		n.Text = seg.Text
	} else {
		n.SegKind = "expr"
		n.Expr = nodeFromExpr(seg.Expr)
	}
	return n
}

func nodeFromExpr(e *ast.Expr) *Node {
	if e == nil {
		return nil
	}
	n := &Node{Kind: "expr", Location: locToJSON(e.Location)}
	switch e.Kind {
	case ast.ExprValue:
		n.ExprKind = "value"
		fillLitValue(n, e.Value)
	case ast.ExprBinary:
		n.ExprKind = "binary"
		n.BinOp = binOpName(e.BinOp)
		n.Left = nodeFromExpr(e.Left)
		n.Right = nodeFromExpr(e.Right)
	case ast.ExprUnary:
		n.ExprKind = "unary"
		n.UnOp = unOpName(e.UnOp)
		n.Operand = nodeFromExpr(e.Operand)
	case ast.ExprTernary:
		n.ExprKind = "ternary"
		n.Cond = nodeFromExpr(e.Cond)
		n.Then = nodeFromExpr(e.Then)
		n.Else = nodeFromExpr(e.Else)
	case ast.ExprArray:
		n.ExprKind = "array"
		for _, el := range e.Elements {
			n.Array = append(n.Array, nodeFromExpr(el))
		}
	}
	return n
}

func nodeFromStyle(s *ast.StyleDef, style Style) *Node {
	n := &Node{Kind: "style", Name: s.Name, Extends: s.Extends, Location: locToJSON(s.Location)}
	for _, p := range s.Properties {
		n.Properties = append(n.Properties, &Node{Kind: "property", Name: p.Name, Value: nodeFromPropValue(p.Value, style), Location: locToJSON(p.Location)})
	}
	return n
}

func nodeFromComponent(c *ast.ComponentDef, style Style) *Node {
	n := &Node{Kind: "component", Name: c.Name, Extends: c.Extends, Location: locToJSON(c.Location)}
	for _, p := range c.Params {
		pn := &Node{Kind: "param", Name: p.Name, Location: locToJSON(p.Location)}
		if p.Default != nil {
			pn.Default = nodeFromPropValue(p.Default, style)
		}
		n.Params = append(n.Params, pn)
	}
	for _, sv := range c.State {
		svn := &Node{Kind: "state_var", Name: sv.Name, Location: locToJSON(sv.Location)}
		if sv.Init != nil {
			svn.Init = nodeFromPropValue(sv.Init, style)
		}
		n.State = append(n.State, svn)
	}
	for _, fn := range c.Functions {
		n.Functions = append(n.Functions, nodeFromFunction(fn, style))
	}
	if c.Template != nil {
		n.Template = nodeFromElement(c.Template, style)
	}
	return n
}

func nodeFromFunction(fn *ast.FunctionDecl, style Style) *Node {
	return &Node{Kind: "function", Name: fn.Name, ParamNames: fn.Params, Language: fn.Language, Text: fn.Body, Location: locToJSON(fn.Location)}
}

func unitName(u ast.Unit) string {
	switch u {
	case ast.UnitPx:
		return "px"
	case ast.UnitPercent:
		return "%"
	case ast.UnitEm:
		return "em"
	case ast.UnitRem:
		return "rem"
	case ast.UnitVw:
		return "vw"
	case ast.UnitVh:
		return "vh"
	case ast.UnitPt:
		return "pt"
	default:
		return ""
	}
}

func binOpName(op ast.BinaryOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpEq:
		return "=="
	case ast.OpNeq:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpGt:
		return ">"
	case ast.OpLe:
		return "<="
	case ast.OpGe:
		return ">="
	case ast.OpAnd:
		return "&&"
	case ast.OpOr:
		return "||"
	default:
		return "?"
	}
}

func unOpName(op ast.UnaryOp) string {
	switch op {
	case ast.OpNeg:
		return "-"
	case ast.OpNot:
		return "!"
	default:
		return "?"
	}
}
