package kir

import (
	"encoding/json"
	"fmt"

	"github.com/kryonlabs/kryon/internal/ast"
)

// ExprFromJSON is the inverse of ExprToJSON.
func ExprFromJSON(data []byte) (*ast.Expr, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("kir: invalid expr node: %w", err)
	}
	return exprFromNode(&n), nil
}

// Read parses a KIR JSON document, validates its version, and reconstructs
// the post-expansion AST with full fidelity (locations, ids, expression
// trees, template segments), per spec.md §4.D's round-trip law.
func Read(data []byte) (*ast.File, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("kir: invalid document: %w", err)
	}
	if doc.Format != Format {
		return nil, fmt.Errorf("kir: unexpected format %q, want %q", doc.Format, Format)
	}
	if err := CheckVersion(doc.KIRVersion); err != nil {
		return nil, err
	}
	var root Node
	if err := json.Unmarshal(doc.Root, &root); err != nil {
		return nil, fmt.Errorf("kir: invalid root node: %w", err)
	}
	if root.Kind != "file" {
		return nil, fmt.Errorf("kir: root node kind %q, want \"file\"", root.Kind)
	}
	return fileFromNode(&root)
}

func fileFromNode(n *Node) (*ast.File, error) {
	f := &ast.File{Location: jsonToLoc(n.Location), Metadata: n.Metadata}
	for _, e := range n.Elements {
		el, err := elementFromNode(e)
		if err != nil {
			return nil, err
		}
		f.Elements = append(f.Elements, el)
	}
	for _, s := range n.Styles {
		f.Styles = append(f.Styles, styleFromNode(s))
	}
	for _, c := range n.Components {
		comp, err := componentFromNode(c)
		if err != nil {
			return nil, err
		}
		f.Components = append(f.Components, comp)
	}
	for _, c := range n.Consts {
		f.Consts = append(f.Consts, &ast.ConstDecl{Name: c.Name, Value: propValueFromNode(c.Value), Location: jsonToLoc(c.Location)})
	}
	for _, v := range n.Variables {
		f.Variables = append(f.Variables, &ast.VariableBlock{Entries: v.VarEntries, Location: jsonToLoc(v.Location)})
	}
	for _, fn := range n.Functions {
		f.Functions = append(f.Functions, functionFromNode(fn))
	}
	return f, nil
}

func elementFromNode(n *Node) (*ast.Element, error) {
	if n.Kind != "element" {
		return nil, fmt.Errorf("kir: expected element node, got %q", n.Kind)
	}
	e := &ast.Element{
		TypeName: n.TypeName,
		ID:       n.ID,
		Classes:  n.Classes,
		Location: jsonToLoc(n.Location),
	}
	for _, p := range n.Properties {
		e.Properties = append(e.Properties, &ast.Property{Name: p.Name, Value: propValueFromNode(p.Value), Location: jsonToLoc(p.Location)})
	}
	for _, c := range n.Children {
		child, err := elementFromNode(c)
		if err != nil {
			return nil, err
		}
		e.Children = append(e.Children, child)
	}
	for _, h := range n.Lifecycle {
		e.Lifecycle = append(e.Lifecycle, &ast.LifecycleHook{Kind: h.Name, Body: h.Text, Location: jsonToLoc(h.Location)})
	}
	if n.Control != nil {
		ctrl, err := controlFromNode(n.Control)
		if err != nil {
			return nil, err
		}
		e.Control = ctrl
	}
	return e, nil
}

func controlFromNode(n *Node) (*ast.ControlDirective, error) {
	c := &ast.ControlDirective{LoopVar: n.LoopVar, Location: jsonToLoc(n.Location)}
	switch n.ControlKind {
	case "for":
		c.Kind = ast.ControlFor
	case "const_for":
		c.Kind = ast.ControlConstFor
	case "if":
		c.Kind = ast.ControlIf
	default:
		return nil, fmt.Errorf("kir: unknown control_kind %q", n.ControlKind)
	}
	c.IterExpr = exprFromNode(n.IterExpr)
	c.Cond = exprFromNode(n.Cond)
	for _, b := range n.Body {
		el, err := elementFromNode(b)
		if err != nil {
			return nil, err
		}
		c.Body = append(c.Body, el)
	}
	for _, b := range n.ElseBody {
		el, err := elementFromNode(b)
		if err != nil {
			return nil, err
		}
		c.ElseBody = append(c.ElseBody, el)
	}
	return c, nil
}

func propValueFromNode(n *Node) *ast.PropValue {
	if n == nil {
		return nil
	}
	v := &ast.PropValue{Location: jsonToLoc(n.Location)}
	switch n.PropKind {
	case "literal":
		v.Kind = ast.PVLiteral
		v.Lit = litValueFromNode(n)
		v.LitUnit = unitFromName(n.Unit)
	case "expression":
		v.Kind = ast.PVExpression
		v.Expr = exprFromNode(n.Expr)
	case "template":
		v.Kind = ast.PVTemplate
		tpl := &ast.Template{Location: jsonToLoc(n.Location)}
		for _, seg := range n.Segments {
			tpl.Segments = append(tpl.Segments, segmentFromNode(seg))
		}
		v.Template = tpl
	case "array":
		v.Kind = ast.PVArray
		for _, elem := range n.Array {
			v.Array = append(v.Array, propValueFromNode(elem))
		}
	case "reference":
		v.Kind = ast.PVReference
		v.RefName = n.RefName
	}
	return v
}

func litValueFromNode(n *Node) ast.Value {
	switch n.LitKind {
	case "number":
		return ast.Value{Kind: ast.ValNumber, Number: n.Number}
	case "string":
		return ast.Value{Kind: ast.ValString, Str: n.Str}
	case "bool":
		return ast.Value{Kind: ast.ValBool, Bool: n.Bool}
	case "var_ref":
		return ast.Value{Kind: ast.ValVariableRef, VarName: n.RefName}
	default:
		return ast.Value{Kind: ast.ValNull}
	}
}

func segmentFromNode(n *Node) ast.TemplateSegment {
	if n.SegKind == "literal" {
		return ast.TemplateSegment{Kind: ast.SegLiteral, Text: n.Text}
	}
	return ast.TemplateSegment{Kind: ast.SegExpr, Expr: exprFromNode(n.Expr)}
}

func exprFromNode(n *Node) *ast.Expr {
	if n == nil {
		return nil
	}
	e := &ast.Expr{Location: jsonToLoc(n.Location)}
	switch n.ExprKind {
	case "value":
		e.Kind = ast.ExprValue
		e.Value = litValueFromNode(n)
	case "binary":
		e.Kind = ast.ExprBinary
		e.BinOp = binOpFromName(n.BinOp)
		e.Left = exprFromNode(n.Left)
		e.Right = exprFromNode(n.Right)
	case "unary":
		e.Kind = ast.ExprUnary
		e.UnOp = unOpFromName(n.UnOp)
		e.Operand = exprFromNode(n.Operand)
	case "ternary":
		e.Kind = ast.ExprTernary
		e.Cond = exprFromNode(n.Cond)
		e.Then = exprFromNode(n.Then)
		e.Else = exprFromNode(n.Else)
	case "array":
		e.Kind = ast.ExprArray
		for _, el := range n.Array {
			e.Elements = append(e.Elements, exprFromNode(el))
		}
	}
	return e
}

func styleFromNode(n *Node) *ast.StyleDef {
	s := &ast.StyleDef{Name: n.Name, Extends: n.Extends, Location: jsonToLoc(n.Location)}
	for _, p := range n.Properties {
		s.Properties = append(s.Properties, &ast.Property{Name: p.Name, Value: propValueFromNode(p.Value), Location: jsonToLoc(p.Location)})
	}
	return s
}

func componentFromNode(n *Node) (*ast.ComponentDef, error) {
	c := &ast.ComponentDef{Name: n.Name, Extends: n.Extends, Location: jsonToLoc(n.Location)}
	for _, p := range n.Params {
		param := ast.ComponentParam{Name: p.Name, Location: jsonToLoc(p.Location)}
		if p.Default != nil {
			param.Default = propValueFromNode(p.Default)
		}
		c.Params = append(c.Params, param)
	}
	for _, sv := range n.State {
		s := ast.StateVar{Name: sv.Name, Location: jsonToLoc(sv.Location)}
		if sv.Init != nil {
			s.Init = propValueFromNode(sv.Init)
		}
		c.State = append(c.State, s)
	}
	for _, fn := range n.Functions {
		c.Functions = append(c.Functions, functionFromNode(fn))
	}
	if n.Template != nil {
		tpl, err := elementFromNode(n.Template)
		if err != nil {
			return nil, err
		}
		c.Template = tpl
	}
	return c, nil
}

func functionFromNode(n *Node) *ast.FunctionDecl {
	return &ast.FunctionDecl{Name: n.Name, Params: n.ParamNames, Language: n.Language, Body: n.Text, Location: jsonToLoc(n.Location)}
}

func unitFromName(s string) ast.Unit {
	switch s {
	case "px":
		return ast.UnitPx
	case "%":
		return ast.UnitPercent
	case "em":
		return ast.UnitEm
	case "rem":
		return ast.UnitRem
	case "vw":
		return ast.UnitVw
	case "vh":
		return ast.UnitVh
	case "pt":
		return ast.UnitPt
	default:
		return ast.UnitNone
	}
}

func binOpFromName(s string) ast.BinaryOp {
	switch s {
	case "+":
		return ast.OpAdd
	case "-":
		return ast.OpSub
	case "*":
		return ast.OpMul
	case "/":
		return ast.OpDiv
	case "%":
		return ast.OpMod
	case "==":
		return ast.OpEq
	case "!=":
		return ast.OpNeq
	case "<":
		return ast.OpLt
	case ">":
		return ast.OpGt
	case "<=":
		return ast.OpLe
	case ">=":
		return ast.OpGe
	case "&&":
		return ast.OpAnd
	case "||":
		return ast.OpOr
	default:
		return ast.OpAdd
	}
}

func unOpFromName(s string) ast.UnaryOp {
	if s == "!" {
		return ast.OpNot
	}
	return ast.OpNeg
}
