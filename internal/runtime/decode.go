// Package runtime reads a KRB binary into a live element tree and drives its
// lifecycle. Decoding is the mirror image of internal/codegen's encoding;
// materialization follows the teacher's render.RenderElement shape (parent
// pointer, children slice, resolved visual fields) minus anything tied to a
// concrete rendering backend, per spec.md's exclusion of rasterization from
// scope.
package runtime

import (
	"encoding/binary"
	"fmt"

	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/krbformat"
)

// RawElement is the decoded, pre-materialization form of one ELEMENTS
// section entry.
type RawElement struct {
	Type       krbformat.ElementType
	Flags      uint8
	StyleID    uint8
	IDIndex    uint32
	Properties []RawProperty
	Children   []*RawElement
}

// RawProperty is a decoded {code, value_type, value} triple.
type RawProperty struct {
	Code      krbformat.PropertyCode
	ValueType krbformat.ValueType
	Raw       []byte // for ValString: a u32 string-table index encoded LE
}

// Document is the fully decoded form of a KRB file: header, string table,
// metadata, variables, styles, elements. The FUNCTIONS section codegen
// writes is not decoded.
type Document struct {
	Header    krbformat.Header
	Strings   []string
	Metadata  map[string]string
	Variables map[string]string
	Elements  []*RawElement
	Styles    []RawStyle
}

// RawStyle is a decoded STYLES section entry.
type RawStyle struct {
	ID         uint8
	Name       string
	ExtendsID  uint8
	Properties []RawProperty
}

// Decode parses a KRB byte buffer into a Document. sectionCount must match
// what the writer produced; since internal/codegen always emits the
// section table before its first section's data, the count equals however
// many of METADATA/STRINGS/VARIABLES/FUNCTIONS/STYLES/ELEMENTS were
// non-empty, which Decode recovers by scanning forward from the header
// until it would read past a first-discovered section offset.
func Decode(buf []byte) (*Document, *diag.Bag) {
	bag := &diag.Bag{}
	sectionCount := countSections(buf)
	header, err := krbformat.DecodeHeader(buf, sectionCount)
	if err != nil {
		bag.Add(diag.Diagnostic{Severity: diag.Fatal, Phase: diag.PhaseLoad, Message: err.Error()})
		return nil, bag
	}

	doc := &Document{Header: header, Metadata: map[string]string{}, Variables: map[string]string{}}

	// Section offsets are absolute file offsets (codegen adds the header and
	// section-table size to each one before writing).
	if s, ok := header.Section(krbformat.SectionStrings); ok {
		doc.Strings = decodeStrings(buf, int(s.Offset), bag)
	}
	if s, ok := header.Section(krbformat.SectionMetadata); ok {
		doc.Metadata = decodeMetadata(buf, int(s.Offset), doc.Strings, bag)
	}
	if s, ok := header.Section(krbformat.SectionVariables); ok {
		doc.Variables = decodeVariables(buf, int(s.Offset), doc.Strings, bag)
	}
	if s, ok := header.Section(krbformat.SectionStyles); ok {
		doc.Styles = decodeStyles(buf, int(s.Offset), doc.Strings, bag)
	}
	if s, ok := header.Section(krbformat.SectionElements); ok {
		end := int(s.Offset) + int(s.Length)
		off := int(s.Offset)
		for off < end {
			el, next, err := decodeElement(buf, off, bag)
			if err != nil {
				bag.Add(diag.Diagnostic{Severity: diag.Error, Phase: diag.PhaseLoad, Message: err.Error()})
				break
			}
			doc.Elements = append(doc.Elements, el)
			off = next
		}
	}
	return doc, bag
}

// countSections is a best-effort scan used only because this format's
// header doesn't itself carry an explicit section count field (spec.md §6
// leaves the count implicit in "section_table[N]"); internal/codegen's
// writer and this reader agree out-of-band on N via the shared Header type,
// so any real deployment would pass N alongside the buffer (e.g. a sibling
// field in a container format). For a standalone .krb file, N is
// recovered by reading entries at SectionTableEntrySize strides until the
// next entry would reach the smallest section offset read so far (where
// section data begins), a tag of 0 or the trailer tag is read, or the
// buffer is exhausted, capped at the number of known section tags.
func countSections(buf []byte) int {
	maxSections := 8 // METADATA,STRINGS,VARIABLES,FUNCTIONS,STYLES,ELEMENTS,THEMES,RESOURCES
	off := krbformat.HeaderSize
	n := 0
	dataStart := len(buf)
	for n < maxSections && off+krbformat.SectionTableEntrySize <= dataStart {
		tag := krbformat.SectionTag(binary.LittleEndian.Uint16(buf[off : off+2]))
		if tag == 0 {
			break
		}
		if o := int(binary.LittleEndian.Uint32(buf[off+2 : off+6])); o < dataStart {
			dataStart = o
		}
		n++
		off += krbformat.SectionTableEntrySize
		if tag == krbformat.SectionTrailer {
			break
		}
	}
	return n
}

func decodeStrings(buf []byte, off int, bag *diag.Bag) []string {
	if off+4 > len(buf) {
		return nil
	}
	count := int(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, next, err := krbformat.ReadString(buf, off)
		if err != nil {
			bag.Add(diag.Diagnostic{Severity: diag.Error, Phase: diag.PhaseLoad, Message: err.Error()})
			break
		}
		out = append(out, s)
		off = next
	}
	return out
}

func stringAt(strs []string, idx uint32) string {
	if int(idx) < len(strs) {
		return strs[idx]
	}
	return ""
}

func decodeMetadata(buf []byte, off int, strs []string, bag *diag.Bag) map[string]string {
	m := map[string]string{}
	if off+4 > len(buf) {
		return m
	}
	count := int(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4
	for i := 0; i < count; i++ {
		if off+8 > len(buf) {
			bag.Add(diag.Diagnostic{Severity: diag.Error, Phase: diag.PhaseLoad, Message: "truncated metadata section"})
			break
		}
		kIdx := binary.LittleEndian.Uint32(buf[off : off+4])
		vIdx := binary.LittleEndian.Uint32(buf[off+4 : off+8])
		off += 8
		m[stringAt(strs, kIdx)] = stringAt(strs, vIdx)
	}
	return m
}

func decodeVariables(buf []byte, off int, strs []string, bag *diag.Bag) map[string]string {
	return decodeMetadata(buf, off, strs, bag) // identical {k,v} u32-index layout
}

func decodeStyles(buf []byte, off int, strs []string, bag *diag.Bag) []RawStyle {
	if off+4 > len(buf) {
		return nil
	}
	count := int(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4
	out := make([]RawStyle, 0, count)
	for i := 0; i < count; i++ {
		if off+7 > len(buf) {
			bag.Add(diag.Diagnostic{Severity: diag.Error, Phase: diag.PhaseLoad, Message: "truncated style entry"})
			break
		}
		id := buf[off]
		nameIdx := binary.LittleEndian.Uint32(buf[off+1 : off+5])
		extendsID := buf[off+5]
		propCount := int(buf[off+6])
		off += 7
		style := RawStyle{ID: id, Name: stringAt(strs, nameIdx), ExtendsID: extendsID}
		for j := 0; j < propCount; j++ {
			prop, next, err := decodeProperty(buf, off, bag)
			if err != nil {
				bag.Add(diag.Diagnostic{Severity: diag.Error, Phase: diag.PhaseLoad, Message: err.Error()})
				break
			}
			style.Properties = append(style.Properties, prop)
			off = next
		}
		out = append(out, style)
	}
	return out
}

func decodeElement(buf []byte, off int, bag *diag.Bag) (*RawElement, int, error) {
	if off+2+1+1+4+2 > len(buf) {
		return nil, off, fmt.Errorf("truncated element header at offset %d", off)
	}
	typeCode := krbformat.ElementType(binary.LittleEndian.Uint16(buf[off : off+2]))
	off += 2
	flags := buf[off]
	off++
	styleID := buf[off]
	off++
	idIdx := binary.LittleEndian.Uint32(buf[off : off+4])
	off += 4
	propCount := int(binary.LittleEndian.Uint16(buf[off : off+2]))
	off += 2

	el := &RawElement{Type: typeCode, Flags: flags, StyleID: styleID, IDIndex: idIdx}
	for i := 0; i < propCount; i++ {
		prop, next, err := decodeProperty(buf, off, bag)
		if err != nil {
			return nil, off, err
		}
		el.Properties = append(el.Properties, prop)
		off = next
	}

	if off+2 > len(buf) {
		return nil, off, fmt.Errorf("truncated child count at offset %d", off)
	}
	childCount := int(binary.LittleEndian.Uint16(buf[off : off+2]))
	off += 2
	for i := 0; i < childCount; i++ {
		child, next, err := decodeElement(buf, off, bag)
		if err != nil {
			return nil, off, err
		}
		el.Children = append(el.Children, child)
		off = next
	}
	return el, off, nil
}

func decodeProperty(buf []byte, off int, bag *diag.Bag) (RawProperty, int, error) {
	if off+2+1 > len(buf) {
		return RawProperty{}, off, fmt.Errorf("truncated property header at offset %d", off)
	}
	code := krbformat.PropertyCode(binary.LittleEndian.Uint16(buf[off : off+2]))
	off += 2
	valType := krbformat.ValueType(buf[off])
	off++
	var size int
	switch valType {
	case krbformat.ValString, krbformat.ValResource:
		size = 4
	case krbformat.ValShort, krbformat.ValPercentage:
		size = 2
	case krbformat.ValByte, krbformat.ValBool, krbformat.ValEnum:
		size = 1
	case krbformat.ValColor:
		size = 4
	case krbformat.ValNone:
		size = 0
	default:
		size = 4
	}
	if off+size > len(buf) {
		return RawProperty{}, off, fmt.Errorf("truncated property value at offset %d", off)
	}
	raw := append([]byte(nil), buf[off:off+size]...)
	return RawProperty{Code: code, ValueType: valType, Raw: raw}, off + size, nil
}
