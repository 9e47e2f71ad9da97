// Package eval evaluates an *ast.Expr against a scope chain, implementing
// spec.md §4.G's coercion rules, short-circuit booleans, and
// warn-on-unresolved behavior.
package eval

import (
	"fmt"
	"strings"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/srcloc"
	"github.com/kryonlabs/kryon/internal/state"
)

// Scope resolves a dotted variable path to a value. state.Scope and a plain
// map both satisfy this by way of the adapters below, so the evaluator
// doesn't depend on internal/state's concrete type.
type Scope interface {
	Get(path string) (any, bool)
}

// MapScope adapts a flat map (e.g. a @for loop variable binding) to Scope.
type MapScope map[string]any

func (m MapScope) Get(path string) (any, bool) {
	v, ok := m[path]
	return v, ok
}

// ChainScope tries each Scope in order, first match wins — used to layer a
// @for loop variable in front of the instance/global state.Scope.
type ChainScope []Scope

func (c ChainScope) Get(path string) (any, bool) {
	for _, s := range c {
		if v, ok := s.Get(path); ok {
			return v, true
		}
	}
	return nil, false
}

var _ Scope = state.Scope{}

// Eval evaluates e against scope, recording a warning (not an error) on any
// unresolved variable reference per spec.md §7's "unresolved state path
// (warning)" taxonomy entry — evaluation continues, substituting nil.
func Eval(e *ast.Expr, scope Scope, bag *diag.Bag) any {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ast.ExprValue:
		return evalValue(e.Value, scope, bag, e.Location)
	case ast.ExprUnary:
		v := Eval(e.Operand, scope, bag)
		switch e.UnOp {
		case ast.OpNeg:
			return -toNumber(v)
		case ast.OpNot:
			return !toBool(v)
		}
	case ast.ExprBinary:
		return evalBinary(e, scope, bag)
	case ast.ExprTernary:
		if toBool(Eval(e.Cond, scope, bag)) {
			return Eval(e.Then, scope, bag)
		}
		return Eval(e.Else, scope, bag)
	case ast.ExprArray:
		out := make([]any, len(e.Elements))
		for i, el := range e.Elements {
			out[i] = Eval(el, scope, bag)
		}
		return out
	}
	return nil
}

func evalValue(v ast.Value, scope Scope, bag *diag.Bag, loc srcloc.Location) any {
	switch v.Kind {
	case ast.ValNumber:
		return v.Number
	case ast.ValString:
		return v.Str
	case ast.ValBool:
		return v.Bool
	case ast.ValNull:
		return nil
	case ast.ValVariableRef:
		if val, ok := scope.Get(v.VarName); ok {
			return val
		}
		if bag != nil {
			bag.Warnf(diag.PhaseRuntime, loc, "unresolved state path %q", v.VarName)
		}
		return nil
	}
	return nil
}

// evalBinary short-circuits && and || before evaluating the right operand,
// and applies spec.md §4.G's numeric/string coercion for arithmetic and
// comparison operators.
func evalBinary(e *ast.Expr, scope Scope, bag *diag.Bag) any {
	if e.BinOp == ast.OpAnd {
		l := Eval(e.Left, scope, bag)
		if !toBool(l) {
			return false
		}
		return toBool(Eval(e.Right, scope, bag))
	}
	if e.BinOp == ast.OpOr {
		l := Eval(e.Left, scope, bag)
		if toBool(l) {
			return true
		}
		return toBool(Eval(e.Right, scope, bag))
	}

	l := Eval(e.Left, scope, bag)
	r := Eval(e.Right, scope, bag)

	switch e.BinOp {
	case ast.OpAdd:
		if ls, ok := l.(string); ok {
			return ls + toString(r)
		}
		if rs, ok := r.(string); ok {
			return toString(l) + rs
		}
		return toNumber(l) + toNumber(r)
	case ast.OpSub:
		return toNumber(l) - toNumber(r)
	case ast.OpMul:
		return toNumber(l) * toNumber(r)
	case ast.OpDiv:
		rv := toNumber(r)
		if rv == 0 {
			return 0.0
		}
		return toNumber(l) / rv
	case ast.OpMod:
		rv := int64(toNumber(r))
		if rv == 0 {
			return 0.0
		}
		return float64(int64(toNumber(l)) % rv)
	case ast.OpEq:
		return looseEqual(l, r)
	case ast.OpNeq:
		return !looseEqual(l, r)
	case ast.OpLt:
		return toNumber(l) < toNumber(r)
	case ast.OpGt:
		return toNumber(l) > toNumber(r)
	case ast.OpLe:
		return toNumber(l) <= toNumber(r)
	case ast.OpGe:
		return toNumber(l) >= toNumber(r)
	}
	return nil
}

func looseEqual(l, r any) bool {
	if l == nil || r == nil {
		return l == r
	}
	if ln, lok := asNumber(l); lok {
		if rn, rok := asNumber(r); rok {
			return ln == rn
		}
	}
	return toString(l) == toString(r)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// toNumber coerces a dynamic value to float64; an unparsable string or nil
// coerces to 0. No warning is recorded for the coercion, here or by any
// caller.
func toNumber(v any) float64 {
	if n, ok := asNumber(v); ok {
		return n
	}
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	if s, ok := v.(string); ok {
		var f float64
		if _, err := fmt.Sscanf(s, "%g", &f); err == nil {
			return f
		}
	}
	return 0
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	case nil:
		return false
	default:
		return true
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return trimFloat(s)
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return strings.TrimSuffix(s, ".0")
}
