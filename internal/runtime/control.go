package runtime

import (
	"encoding/binary"
	"strconv"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/directive"
	"github.com/kryonlabs/kryon/internal/kir"
	"github.com/kryonlabs/kryon/internal/krbformat"
	"github.com/kryonlabs/kryon/internal/srcloc"
)

// ControlMeta is the live decode-and-reconcile state of one @for/@const_for/
// @if marker internal/codegen encoded instead of folding away. Directive is
// reconstructed once at Materialize time from the element's synthesized
// loopVar/iterExpr/cond/elseCount properties (see encodeControlElement);
// ForState/IfState/itemElems carry the previous Update's result forward so
// the next Update's positional diff has a "prev" to reconcile against.
type ControlMeta struct {
	Directive *ast.ControlDirective
	ForState  *directive.ForResult
	IfState   *directive.IfResult
	itemElems map[*directive.Item][]*Element
}

// isControlType reports whether t is one of the directive marker element
// types encodeControlElement writes.
func isControlType(t krbformat.ElementType) bool {
	return t == krbformat.ElemForDirective || t == krbformat.ElemIfDirective
}

// buildControlMeta reconstructs re's ast.ControlDirective from its
// synthesized properties and splits its Children back into Body/ElseBody
// using the elseCount property (present only for an @if with an @else
// branch). The split template elements are converted to *ast.Element so
// internal/directive's Reconcile/EvalIf — which operate on the AST, not the
// decoded binary shape — can stamp and evaluate them unmodified.
func buildControlMeta(re *RawElement, strs []string, bag *diag.Bag) *ControlMeta {
	ctrl := &ast.ControlDirective{}
	if re.Type == krbformat.ElemForDirective {
		ctrl.Kind = ast.ControlFor
	} else {
		ctrl.Kind = ast.ControlIf
	}

	elseCount := 0
	for _, p := range re.Properties {
		switch p.Code {
		case krbformat.PropLoopVar:
			ctrl.LoopVar = rawString(p, strs)
		case krbformat.PropIterExpr:
			expr, err := kir.ExprFromJSON([]byte(rawString(p, strs)))
			if err != nil {
				bag.Addf(diag.PhaseLoad, srcloc.Location{}, "decoding @for iteration expression: %v", err)
			} else {
				ctrl.IterExpr = expr
			}
		case krbformat.PropCond:
			expr, err := kir.ExprFromJSON([]byte(rawString(p, strs)))
			if err != nil {
				bag.Addf(diag.PhaseLoad, srcloc.Location{}, "decoding @if condition: %v", err)
			} else {
				ctrl.Cond = expr
			}
		case krbformat.PropElseCount:
			if n, err := strconv.Atoi(rawString(p, strs)); err == nil {
				elseCount = n
			}
		}
	}

	n := len(re.Children)
	bodyCount := n - elseCount
	if bodyCount < 0 {
		bodyCount = n
		elseCount = 0
	}
	for _, c := range re.Children[:bodyCount] {
		ctrl.Body = append(ctrl.Body, rawElementToTemplate(c, strs, bag))
	}
	for _, c := range re.Children[bodyCount:] {
		ctrl.ElseBody = append(ctrl.ElseBody, rawElementToTemplate(c, strs, bag))
	}

	return &ControlMeta{Directive: ctrl}
}

func rawString(p RawProperty, strs []string) string {
	if p.ValueType != krbformat.ValString || len(p.Raw) < 4 {
		return ""
	}
	idx := binary.LittleEndian.Uint32(p.Raw)
	return stringAt(strs, idx)
}

func rawCustomString(p RawProperty, strs []string) string {
	if p.ValueType != krbformat.ValCustom || len(p.Raw) < 4 {
		return ""
	}
	idx := binary.LittleEndian.Uint32(p.Raw)
	return stringAt(strs, idx)
}

// rawElementToTemplate rebuilds the *ast.Element form of a decoded directive
// body element — the mirror image of internal/codegen's encoding, scoped to
// just the shape internal/directive needs to stamp/clone a template
// (TypeName, id, properties, children, and any nested Control marker).
func rawElementToTemplate(re *RawElement, strs []string, bag *diag.Bag) *ast.Element {
	if isControlType(re.Type) {
		meta := buildControlMeta(re, strs, bag)
		return &ast.Element{Control: meta.Directive}
	}
	typeName, _ := krbformat.ElementTypeName(re.Type)
	e := &ast.Element{TypeName: typeName, ID: stringAt(strs, re.IDIndex)}
	for _, p := range re.Properties {
		e.Properties = append(e.Properties, rawPropertyToAST(p, strs))
	}
	for _, c := range re.Children {
		e.Children = append(e.Children, rawElementToTemplate(c, strs, bag))
	}
	return e
}

func rawPropertyToAST(rp RawProperty, strs []string) *ast.Property {
	name, _ := krbformat.PropertyName(rp.Code)
	if rp.ValueType == krbformat.ValCustom {
		// codegen's encodeProperty only ever writes ValCustom for a
		// KIR-serialized *ast.Expr (see its PVExpression branch) — recover
		// the live expression instead of flattening it to a literal.
		if expr, err := kir.ExprFromJSON([]byte(rawCustomString(rp, strs))); err == nil {
			return &ast.Property{Name: name, Value: &ast.PropValue{Kind: ast.PVExpression, Expr: expr}}
		}
		return &ast.Property{Name: name, Value: &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValNull}}}
	}

	v := &ast.PropValue{Kind: ast.PVLiteral}
	switch rp.ValueType {
	case krbformat.ValString:
		v.Lit = ast.Value{Kind: ast.ValString, Str: rawString(rp, strs)}
	case krbformat.ValShort:
		if len(rp.Raw) >= 2 {
			v.Lit = ast.Value{Kind: ast.ValNumber, Number: float64(int16(binary.LittleEndian.Uint16(rp.Raw)))}
		}
	case krbformat.ValPercentage:
		if len(rp.Raw) >= 2 {
			v.Lit = ast.Value{Kind: ast.ValNumber, Number: float64(int16(binary.LittleEndian.Uint16(rp.Raw))) / 256.0}
			v.LitUnit = ast.UnitPercent
		}
	case krbformat.ValBool:
		if len(rp.Raw) >= 1 {
			v.Lit = ast.Value{Kind: ast.ValBool, Bool: rp.Raw[0] != 0}
		}
	default:
		v.Lit = ast.Value{Kind: ast.ValNull}
	}
	return &ast.Property{Name: name, Value: v}
}
