// Package codegen compiles a post-expansion *ast.File into the KRB binary
// format defined by internal/krbformat. Grounded on the teacher's writer.go,
// adapted from its byte-oriented v0.4 layout to spec.md §6's hex-coded,
// section-tagged format. Each section is encoded into its own buffer first;
// section offsets are then fixed up once the header size is known.
package codegen

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/kryonlabs/kryon/internal/ast"
	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/kir"
	"github.com/kryonlabs/kryon/internal/krbformat"
)

// Config mirrors the header's target_version/flags inputs.
type Config struct {
	Compressed bool
	DebugInfo  bool
}

// Stats reports summary counts a caller (e.g. cmd/kryonc) can print after a
// build, the teacher's writer.go logs an equivalent summary on every pass.
type Stats struct {
	ElementCount int
	StyleCount   int
	StringCount  int
	TotalBytes   int
}

// strtab is an insertion-ordered, deduplicating string table: "after
// codegen, no two string-table entries compare equal" (spec.md §8).
type strtab struct {
	index map[string]uint32
	order []string
}

func newStrtab() *strtab { return &strtab{index: map[string]uint32{}} }

func (t *strtab) intern(s string) uint32 {
	if idx, ok := t.index[s]; ok {
		return idx
	}
	idx := uint32(len(t.order))
	t.index[s] = idx
	t.order = append(t.order, s)
	return idx
}

// Generate compiles f into a KRB byte buffer. It is a pure function of
// (f, cfg): identical inputs always yield a byte-identical buffer, since
// string interning is insertion-ordered and element encoding walks the
// AST's existing child order without any map iteration in the hot path.
func Generate(f *ast.File, cfg Config) ([]byte, Stats, *diag.Bag) {
	bag := &diag.Bag{}
	st := newStrtab()

	metaBuf := encodeMetadata(f.Metadata, st)
	varBuf := encodeVariables(f.Variables, st)
	fnBuf := encodeFunctions(f.Functions, st, bag)
	styleBuf, styleIDs := encodeStyles(f.Styles, st, bag)
	elemBuf, elemCount := encodeElements(f.Elements, st, styleIDs, bag)
	strBuf := encodeStrings(st)

	sections := []krbformat.SectionEntry{}
	var body []byte
	appendSection := func(tag krbformat.SectionTag, data []byte) {
		if len(data) == 0 {
			return
		}
		sections = append(sections, krbformat.SectionEntry{Tag: tag, Offset: uint32(len(body)), Length: uint32(len(data))})
		body = append(body, data...)
	}

	// Section order mirrors spec.md §4.E's numbered list.
	appendSection(krbformat.SectionMetadata, metaBuf)
	appendSection(krbformat.SectionStrings, strBuf)
	appendSection(krbformat.SectionVariables, varBuf)
	appendSection(krbformat.SectionFunctions, fnBuf)
	appendSection(krbformat.SectionStyles, styleBuf)
	appendSection(krbformat.SectionElements, elemBuf)

	headerLen := krbformat.HeaderSize + len(sections)*krbformat.SectionTableEntrySize
	for i := range sections {
		sections[i].Offset += uint32(headerLen)
	}

	var flags uint32
	if cfg.Compressed {
		flags |= krbformat.FlagCompressed
	}
	if cfg.DebugInfo {
		flags |= krbformat.FlagDebugInfo
	}
	header := krbformat.EncodeHeader(krbformat.Header{
		FormatVersion: krbformat.FormatVersion,
		Flags:         flags,
		Sections:      sections,
	})

	out := append(header, body...)
	stats := Stats{
		ElementCount: elemCount,
		StyleCount:   len(f.Styles),
		StringCount:  len(st.order),
		TotalBytes:   len(out),
	}
	return out, stats, bag
}

func encodeMetadata(meta map[string]string, st *strtab) []byte {
	if len(meta) == 0 {
		return nil
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic regardless of map iteration order
	var buf []byte
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(keys)))
	buf = append(buf, countBuf[:]...)
	for _, k := range keys {
		kIdx, vIdx := st.intern(k), st.intern(meta[k])
		buf = append(buf, u32(kIdx)...)
		buf = append(buf, u32(vIdx)...)
	}
	return buf
}

func encodeVariables(vars []*ast.VariableBlock, st *strtab) []byte {
	if len(vars) == 0 {
		return nil
	}
	var entries []struct{ k, v string }
	for _, vb := range vars {
		keys := make([]string, 0, len(vb.Entries))
		for k := range vb.Entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entries = append(entries, struct{ k, v string }{k, vb.Entries[k]})
		}
	}
	var buf []byte
	buf = append(buf, u32(uint32(len(entries)))...)
	for _, e := range entries {
		buf = append(buf, u32(st.intern(e.k))...)
		buf = append(buf, u32(st.intern(e.v))...)
	}
	return buf
}

func encodeFunctions(fns []*ast.FunctionDecl, st *strtab, bag *diag.Bag) []byte {
	if len(fns) == 0 {
		return nil
	}
	var buf []byte
	buf = append(buf, u32(uint32(len(fns)))...)
	for _, fn := range fns {
		buf = append(buf, u32(st.intern(fn.Name))...)
		buf = append(buf, u32(st.intern(fn.Language))...)
		buf = append(buf, u32(uint32(len(fn.Params)))...)
		for _, p := range fn.Params {
			buf = append(buf, u32(st.intern(p))...)
		}
		buf = append(buf, u32(st.intern(fn.Body))...)
	}
	return buf
}

// encodeStyles writes the STYLES section and returns each style's 1-based
// id, assigned in declaration order.
func encodeStyles(styles []*ast.StyleDef, st *strtab, bag *diag.Bag) ([]byte, map[string]uint8) {
	if len(styles) == 0 {
		return nil, nil
	}
	ids := make(map[string]uint8, len(styles))
	for i, s := range styles {
		ids[s.Name] = uint8(i + 1)
	}
	var buf []byte
	buf = append(buf, u32(uint32(len(styles)))...)
	for _, s := range styles {
		buf = append(buf, ids[s.Name])
		buf = append(buf, u32(st.intern(s.Name))...)
		var extendsIdx uint8
		if len(s.Extends) > 0 {
			if parentID, ok := ids[s.Extends[0]]; ok {
				extendsIdx = parentID
			}
		}
		buf = append(buf, extendsIdx)
		buf = append(buf, uint8(len(s.Properties)))
		for _, p := range s.Properties {
			enc, err := encodeProperty(p.Name, p.Value, st)
			if err != nil {
				bag.Addf(diag.PhaseCodegen, p.Location, "style %q: %v", s.Name, err)
				continue
			}
			buf = append(buf, enc...)
		}
	}
	return buf, ids
}

func encodeElements(elems []*ast.Element, st *strtab, styleIDs map[string]uint8, bag *diag.Bag) ([]byte, int) {
	var buf []byte
	count := 0
	for _, e := range elems {
		enc, n := encodeElement(e, st, styleIDs, bag)
		buf = append(buf, enc...)
		count += n
	}
	return buf, count
}

// encodeElement writes one element block: type code (u16), flags (u8), style
// id (u8), id string index (u32), property count (u16), properties, child
// count (u16), then recursively
// each child block (children are identified by tree position, not a
// separate offset table, since this format walks the ELEMENTS section
// depth-first rather than indexing by absolute offset).
func encodeElement(e *ast.Element, st *strtab, styleIDs map[string]uint8, bag *diag.Bag) ([]byte, int) {
	if e.Control != nil {
		return encodeControlElement(e, st, styleIDs, bag)
	}

	var buf []byte
	typeCode, ok := krbformat.LookupElementType(e.TypeName)
	if !ok {
		bag.Addf(diag.PhaseCodegen, e.Location, "unknown element type %q", e.TypeName)
		typeCode = 0
	}
	buf = append(buf, u16(uint16(typeCode))...)

	var flags uint8
	var styleID uint8
	for _, cls := range e.Classes {
		if id, ok := styleIDs[cls]; ok {
			flags |= 0x01
			styleID = id
			break
		}
	}
	buf = append(buf, flags)
	buf = append(buf, styleID)

	idIdx := st.intern(e.ID)
	buf = append(buf, u32(idIdx)...)

	var propBuf []byte
	var propCount int
	for _, p := range e.Properties {
		enc, err := encodeProperty(p.Name, p.Value, st)
		if err != nil {
			bag.Addf(diag.PhaseCodegen, p.Location, "element %q: %v", e.TypeName, err)
			continue
		}
		propBuf = append(propBuf, enc...)
		propCount++
	}
	buf = append(buf, u16(uint16(propCount))...)
	buf = append(buf, propBuf...)

	buf = append(buf, u16(uint16(len(e.Children)))...)
	count := 1
	for _, c := range e.Children {
		enc, n := encodeElement(c, st, styleIDs, bag)
		buf = append(buf, enc...)
		count += n
	}
	return buf, count
}

// encodeControlElement encodes a @for/@const_for/@if element that
// internal/expand left unfolded (a non-literal iteration source, or a
// condition that depends on reactive state). Its loop-var/iter-expr/cond
// are synthesized as ordinary properties, reusing the same property codec
// the rest of an element's properties go through; Body and ElseBody are
// appended as ordinary children, with an elseCount property recording
// where Body ends and ElseBody begins so internal/runtime can split them
// back apart on decode.
func encodeControlElement(e *ast.Element, st *strtab, styleIDs map[string]uint8, bag *diag.Bag) ([]byte, int) {
	ctrl := e.Control
	var buf []byte

	typeCode := krbformat.ElemIfDirective
	if ctrl.Kind == ast.ControlFor || ctrl.Kind == ast.ControlConstFor {
		typeCode = krbformat.ElemForDirective
	}
	buf = append(buf, u16(uint16(typeCode))...)

	var flags uint8
	var styleID uint8
	for _, cls := range e.Classes {
		if id, ok := styleIDs[cls]; ok {
			flags |= 0x01
			styleID = id
			break
		}
	}
	buf = append(buf, flags)
	buf = append(buf, styleID)

	idIdx := st.intern(e.ID)
	buf = append(buf, u32(idIdx)...)

	var propBuf []byte
	var propCount int
	addStringProp := func(code krbformat.PropertyCode, s string) {
		propBuf = append(propBuf, u16(uint16(code))...)
		propBuf = append(propBuf, byte(krbformat.ValString))
		propBuf = append(propBuf, u32(st.intern(s))...)
		propCount++
	}

	if ctrl.LoopVar != "" {
		addStringProp(krbformat.PropLoopVar, ctrl.LoopVar)
	}
	if ctrl.IterExpr != nil {
		data, err := kir.ExprToJSON(ctrl.IterExpr)
		if err != nil {
			bag.Addf(diag.PhaseCodegen, e.Location, "directive %q: encoding iteration expression: %v", e.TypeName, err)
		} else {
			addStringProp(krbformat.PropIterExpr, string(data))
		}
	}
	if ctrl.Cond != nil {
		data, err := kir.ExprToJSON(ctrl.Cond)
		if err != nil {
			bag.Addf(diag.PhaseCodegen, e.Location, "directive %q: encoding condition expression: %v", e.TypeName, err)
		} else {
			addStringProp(krbformat.PropCond, string(data))
		}
	}
	if len(ctrl.ElseBody) > 0 {
		addStringProp(krbformat.PropElseCount, fmt.Sprintf("%d", len(ctrl.ElseBody)))
	}

	for _, p := range e.Properties {
		enc, err := encodeProperty(p.Name, p.Value, st)
		if err != nil {
			bag.Addf(diag.PhaseCodegen, p.Location, "element %q: %v", e.TypeName, err)
			continue
		}
		propBuf = append(propBuf, enc...)
		propCount++
	}

	buf = append(buf, u16(uint16(propCount))...)
	buf = append(buf, propBuf...)

	children := make([]*ast.Element, 0, len(ctrl.Body)+len(ctrl.ElseBody))
	children = append(children, ctrl.Body...)
	children = append(children, ctrl.ElseBody...)
	buf = append(buf, u16(uint16(len(children)))...)
	count := 1
	for _, c := range children {
		enc, n := encodeElement(c, st, styleIDs, bag)
		buf = append(buf, enc...)
		count += n
	}
	return buf, count
}

// encodeProperty writes one {code u16, value_type u8, data...} triple.
func encodeProperty(name string, v *ast.PropValue, st *strtab) ([]byte, error) {
	code, ok := krbformat.LookupPropertyCode(name)
	if !ok {
		return nil, fmt.Errorf("unknown property %q", name)
	}
	var buf []byte
	buf = append(buf, u16(uint16(code))...)

	if v != nil && v.Kind == ast.PVExpression {
		// A directive body (e.g. @for's `text: $item;`) carries a live
		// expression whose value only exists at reconcile time.
		// internal/runtime needs the actual expression tree back, not a
		// description of it, so this is the one non-literal kind codegen
		// round-trips faithfully: ValCustom here always means "string-table
		// index of a KIR-serialized *ast.Expr", never a real string value.
		if data, err := kir.ExprToJSON(v.Expr); err == nil {
			buf = append(buf, byte(krbformat.ValCustom))
			buf = append(buf, u32(st.intern(string(data)))...)
			return buf, nil
		}
	}

	if v == nil || v.Kind != ast.PVLiteral {
		// Non-literal (template/array/reference, or an expression that
		// failed to serialize) values are codegen'd as a string-table
		// reference to their description; the runtime has no path to
		// recover these today. Scenario 4 of spec.md §8 only pins down the
		// literal-string case byte-for-byte; this branch exists so codegen
		// never drops a property rather than to match a specific wire
		// shape.
		buf = append(buf, byte(krbformat.ValString))
		buf = append(buf, u32(st.intern(describeNonLiteral(v)))...)
		return buf, nil
	}

	switch v.Lit.Kind {
	case ast.ValString:
		buf = append(buf, byte(krbformat.ValString))
		buf = append(buf, u32(st.intern(v.Lit.Str))...)
	case ast.ValNumber:
		if v.LitUnit != ast.UnitNone {
			buf = append(buf, byte(krbformat.ValPercentage))
			buf = append(buf, u16(floatToFixed(v.Lit.Number))...)
		} else {
			buf = append(buf, byte(krbformat.ValShort))
			buf = append(buf, u16(uint16(int16(v.Lit.Number)))...)
		}
	case ast.ValBool:
		buf = append(buf, byte(krbformat.ValBool))
		b := byte(0)
		if v.Lit.Bool {
			b = 1
		}
		buf = append(buf, b)
	default:
		buf = append(buf, byte(krbformat.ValNone))
	}
	return buf, nil
}

func describeNonLiteral(v *ast.PropValue) string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case ast.PVReference:
		return v.RefName
	default:
		return "<expr>"
	}
}

func encodeStrings(st *strtab) []byte {
	if len(st.order) == 0 {
		return nil
	}
	var buf []byte
	buf = append(buf, u32(uint32(len(st.order)))...)
	for _, s := range st.order {
		buf = krbformat.PutString(buf, s)
	}
	return buf
}

func floatToFixed(f float64) uint16 {
	return uint16(int32(f * 256))
}

func u16(v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return b[:]
}

func u32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}
