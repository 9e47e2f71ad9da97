package ast

import "github.com/kryonlabs/kryon/internal/srcloc"

// ExprKind tags the variant of an Expr node.
type ExprKind int

const (
	ExprValue ExprKind = iota
	ExprBinary
	ExprUnary
	ExprTernary
	ExprArray
)

// BinaryOp enumerates the binary operators recognized by the expression
// grammar. The declaration order carries no meaning; binding power comes
// from Precedence below.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
)

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota // -x
	OpNot                // !x
)

// Expr is an expression-tree node: a literal/variable value, a binary op, a
// unary op, a ternary, or an array. It is a closed sum type — Kind
// discriminates which of the Value/Binary/Unary/Cond-Then-Else/Elements
// fields is populated.
type Expr struct {
	Kind     ExprKind
	Location srcloc.Location

	// ExprValue
	Value Value

	// ExprBinary
	BinOp BinaryOp
	Left  *Expr
	Right *Expr

	// ExprUnary
	UnOp    UnaryOp
	Operand *Expr

	// ExprTernary
	Cond *Expr
	Then *Expr
	Else *Expr

	// ExprArray: a bracketed expression list, `[1, 2, $x]`. Foldable at
	// compile time only when every element is itself a literal ExprValue
	// (see internal/expand.isLiteralArrayExpr).
	Elements []*Expr
}

// ValueKind tags the variant of a literal/reference Value.
type ValueKind int

const (
	ValNumber ValueKind = iota
	ValString
	ValBool
	ValVariableRef
	ValNull
)

// Value is a literal or a named-variable reference appearing inside an
// expression tree.
type Value struct {
	Kind     ValueKind
	Number   float64
	Str      string
	Bool     bool
	VarName  string // set when Kind == ValVariableRef
}

// NewNumber builds a literal number Value-wrapped Expr.
func NewNumber(n float64, loc srcloc.Location) *Expr {
	return &Expr{Kind: ExprValue, Location: loc, Value: Value{Kind: ValNumber, Number: n}}
}

// NewString builds a literal string Value-wrapped Expr.
func NewString(s string, loc srcloc.Location) *Expr {
	return &Expr{Kind: ExprValue, Location: loc, Value: Value{Kind: ValString, Str: s}}
}

// NewBool builds a literal bool Value-wrapped Expr.
func NewBool(b bool, loc srcloc.Location) *Expr {
	return &Expr{Kind: ExprValue, Location: loc, Value: Value{Kind: ValBool, Bool: b}}
}

// NewVarRef builds a variable-reference Value-wrapped Expr.
func NewVarRef(name string, loc srcloc.Location) *Expr {
	return &Expr{Kind: ExprValue, Location: loc, Value: Value{Kind: ValVariableRef, VarName: name}}
}

// Binary precedence, lowest to highest, matching internal/parser's
// recursive-descent ladder: ternary < logical-or < logical-and < equality
// < relational < additive < multiplicative < unary < primary.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecTernary
	PrecOr
	PrecAnd
	PrecEquality
	PrecRelational
	PrecAdditive
	PrecMultiplicative
	PrecUnary
	PrecPrimary
)

var binOpPrecedence = map[BinaryOp]Precedence{
	OpOr:  PrecOr,
	OpAnd: PrecAnd,
	OpEq:  PrecEquality, OpNeq: PrecEquality,
	OpLt: PrecRelational, OpGt: PrecRelational, OpLe: PrecRelational, OpGe: PrecRelational,
	OpAdd: PrecAdditive, OpSub: PrecAdditive,
	OpMul: PrecMultiplicative, OpDiv: PrecMultiplicative, OpMod: PrecMultiplicative,
}

// Precedence reports the binding power of op, used by the parser's
// precedence-climbing loop.
func (op BinaryOp) Precedence() Precedence { return binOpPrecedence[op] }
