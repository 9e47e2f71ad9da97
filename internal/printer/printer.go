// Package printer prints an *ast.File back to Kryon source text, the
// inverse of internal/parser. The teacher has no such pass at all (kryc
// only ever compiles forward, toward a KRB binary), so this package exists
// purely to let spec.md §8 scenario 5's decompile-then-print round trip be
// checked; its token choices (braces, colons, trailing semicolons) mirror
// internal/lexer's own grammar rather than any teacher style.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kryonlabs/kryon/internal/ast"
)

// Print renders f as Kryon source. Element and property order follows the
// AST's own order; spec.md §8's round-trip law only requires structural
// equality "up to element/property ordering," not that Print reproduce a
// specific original layout.
func Print(f *ast.File) string {
	var b strings.Builder
	for _, e := range f.Elements {
		printElement(&b, e, 0)
	}
	return b.String()
}

func printElement(b *strings.Builder, e *ast.Element, indent int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%s%s {\n", pad, e.TypeName)
	for _, p := range e.Properties {
		fmt.Fprintf(b, "%s  %s: %s;\n", pad, p.Name, printValue(p.Value))
	}
	for _, c := range e.Children {
		printElement(b, c, indent+1)
	}
	fmt.Fprintf(b, "%s}\n", pad)
}

func printValue(v *ast.PropValue) string {
	if v == nil {
		return "null"
	}
	switch v.Kind {
	case ast.PVLiteral:
		return printLit(v.Lit, v.LitUnit)
	case ast.PVReference:
		return v.RefName
	default:
		return `""`
	}
}

func printLit(v ast.Value, unit ast.Unit) string {
	switch v.Kind {
	case ast.ValString:
		return strconv.Quote(v.Str)
	case ast.ValNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64) + unitSuffix(unit)
	case ast.ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ast.ValVariableRef:
		return "$" + v.VarName
	default:
		return "null"
	}
}

func unitSuffix(u ast.Unit) string {
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
