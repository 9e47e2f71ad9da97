// Package decompile reconstructs an *ast.File from a decoded KRB Document,
// the mirror image of internal/codegen's encoding and the other half of
// spec.md §8's round-trip law `codegen(decompile(B)) ≡ B`. It is grounded on
// internal/runtime/decode.go's RawElement/RawProperty shapes (the byte-level
// reader already built for runtime materialization) rather than re-parsing
// the buffer itself.
package decompile

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/krbformat"
	"github.com/kryonlabs/kryon/internal/runtime"
	"github.com/kryonlabs/kryon/internal/srcloc"
)

// FromDocument rebuilds an *ast.File from an already-decoded Document.
// Elements, their properties, and top-level metadata round-trip; styles
// round-trip as StyleDef nodes. A property codegen wrote as a non-literal
// string-table placeholder (template, array, reference) decompiles back as a
// string literal holding that placeholder text, since the binary carries no
// tag distinguishing "this used to be an expression" from "this was always a
// string" — see codegen.describeNonLiteral. A ValCustom property (a
// directive body's live expression, see codegen's PVExpression branch) has
// no source-level literal to fall back to, so it decompiles as null; only
// internal/runtime reconstructs it as a real expression.
func FromDocument(doc *runtime.Document) *ast.File {
	f := &ast.File{
		Metadata: doc.Metadata,
	}
	for _, e := range doc.Elements {
		f.Elements = append(f.Elements, elementFromRaw(e, doc.Strings))
	}
	for _, s := range doc.Styles {
		f.Styles = append(f.Styles, styleFromRaw(s, doc.Strings))
	}
	return f
}

// Decompile decodes a KRB buffer and rebuilds its *ast.File in one step.
func Decompile(buf []byte) (*ast.File, error) {
	doc, bag := runtime.Decode(buf)
	if bag.HasErrors() {
		return nil, errors.New(bag.Format())
	}
	return FromDocument(doc), nil
}

func elementFromRaw(re *runtime.RawElement, strs []string) *ast.Element {
	typeName, ok := krbformat.ElementTypeName(re.Type)
	if !ok {
		typeName = "Unknown"
	}
	e := &ast.Element{TypeName: typeName}
	for _, rp := range re.Properties {
		e.Properties = append(e.Properties, propertyFromRaw(rp, strs))
	}
	for _, rc := range re.Children {
		e.Children = append(e.Children, elementFromRaw(rc, strs))
	}
	if id, ok := idFromProperties(e.Properties); ok {
		e.ID = id
	}
	return e
}

func idFromProperties(props []*ast.Property) (string, bool) {
	for _, p := range props {
		if p.Name == "id" && p.Value != nil && p.Value.Kind == ast.PVLiteral && p.Value.Lit.Kind == ast.ValString {
			return p.Value.Lit.Str, true
		}
	}
	return "", false
}

func propertyFromRaw(rp runtime.RawProperty, strs []string) *ast.Property {
	name, ok := krbformat.PropertyName(rp.Code)
	if !ok {
		name = "unknown"
	}
	var loc srcloc.Location
	return &ast.Property{
		Name:  name,
		Value: propValueFromRaw(rp, strs, loc),
	}
}

func propValueFromRaw(rp runtime.RawProperty, strs []string, loc srcloc.Location) *ast.PropValue {
	switch rp.ValueType {
	case krbformat.ValString:
		idx := binary.LittleEndian.Uint32(rp.Raw)
		s := ""
		if int(idx) < len(strs) {
			s = strs[idx]
		}
		return &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValString, Str: s}, Location: loc}
	case krbformat.ValShort:
		n := int16(binary.LittleEndian.Uint16(rp.Raw))
		return &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValNumber, Number: float64(n)}, Location: loc}
	case krbformat.ValPercentage:
		fixed := binary.LittleEndian.Uint16(rp.Raw)
		return &ast.PropValue{
			Kind:    ast.PVLiteral,
			Lit:     ast.Value{Kind: ast.ValNumber, Number: math.Round(float64(fixed)/256.0*1000) / 1000},
			LitUnit: ast.UnitPercent,
			Location: loc,
		}
	case krbformat.ValBool:
		return &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValBool, Bool: rp.Raw[0] != 0}, Location: loc}
	case krbformat.ValColor:
		rgba := krbformat.UnpackRGBA(rp.Raw)
		return &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValNumber, Number: float64(uint32(rgba.R)<<24 | uint32(rgba.G)<<16 | uint32(rgba.B)<<8 | uint32(rgba.A))}, Location: loc}
	default:
		return &ast.PropValue{Kind: ast.PVLiteral, Lit: ast.Value{Kind: ast.ValNull}, Location: loc}
	}
}

func styleFromRaw(rs runtime.RawStyle, strs []string) *ast.StyleDef {
	s := &ast.StyleDef{Name: rs.Name}
	for _, rp := range rs.Properties {
		s.Properties = append(s.Properties, propertyFromRaw(rp, strs))
	}
	return s
}
