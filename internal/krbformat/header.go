package krbformat

import (
	"encoding/binary"
	"fmt"
)

// FormatVersion is the format_version this module writes and the only one
// DecodeHeader accepts. A major-version bump that isn't bit-compatible belongs in
// a new constant here, mirroring the KIR reader's major-version gate.
const FormatVersion uint32 = 1

// SectionEntry is one row of the section table following the fixed header.
type SectionEntry struct {
	Tag    SectionTag
	Offset uint32
	Length uint32
}

// Header is the decoded form of a KRB file's fixed header and section table.
type Header struct {
	FormatVersion uint32
	Flags         uint32
	Sections      []SectionEntry
}

// Section looks up a section's entry by tag, ok=false if absent (a writer
// may omit an empty optional section entirely rather than write a
// zero-length entry).
func (h *Header) Section(tag SectionTag) (SectionEntry, bool) {
	for _, s := range h.Sections {
		if s.Tag == tag {
			return s, true
		}
	}
	return SectionEntry{}, false
}

// EncodeHeader writes the fixed header plus section table, matching
// spec.md §6's bit-exact layout: magic, format_version u32 LE, flags u32 LE,
// then section_table[N] of {tag u16, offset u32, length u32}.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize+len(h.Sections)*SectionTableEntrySize)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.FormatVersion)
	binary.LittleEndian.PutUint32(buf[8:12], h.Flags)
	off := HeaderSize
	for _, s := range h.Sections {
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(s.Tag))
		binary.LittleEndian.PutUint32(buf[off+2:off+6], s.Offset)
		binary.LittleEndian.PutUint32(buf[off+6:off+10], s.Length)
		off += SectionTableEntrySize
	}
	return buf
}

// DecodeHeader reads the fixed header plus section table from the start of
// a KRB byte buffer. sectionCount must be known by the caller (it is itself
// derived from the first section's offset minus HeaderSize, or passed
// explicitly by a caller that tracked it while writing).
func DecodeHeader(buf []byte, sectionCount int) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("krbformat: truncated header, need %d bytes, got %d", HeaderSize, len(buf))
	}
	if string(buf[0:4]) != Magic {
		return Header{}, fmt.Errorf("krbformat: bad magic %q", buf[0:4])
	}
	h := Header{
		FormatVersion: binary.LittleEndian.Uint32(buf[4:8]),
		Flags:         binary.LittleEndian.Uint32(buf[8:12]),
	}
	if h.FormatVersion != FormatVersion {
		return Header{}, fmt.Errorf("krbformat: unsupported format_version %d, want %d", h.FormatVersion, FormatVersion)
	}
	need := HeaderSize + sectionCount*SectionTableEntrySize
	if len(buf) < need {
		return Header{}, fmt.Errorf("krbformat: truncated section table, need %d bytes, got %d", need, len(buf))
	}
	off := HeaderSize
	for i := 0; i < sectionCount; i++ {
		h.Sections = append(h.Sections, SectionEntry{
			Tag:    SectionTag(binary.LittleEndian.Uint16(buf[off : off+2])),
			Offset: binary.LittleEndian.Uint32(buf[off+2 : off+6]),
			Length: binary.LittleEndian.Uint32(buf[off+6 : off+10]),
		})
		off += SectionTableEntrySize
	}
	return h, nil
}

// PutString appends a length-prefixed (u32 LE) UTF-8 string with no
// terminator, per spec.md §6.
func PutString(buf []byte, s string) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

// ReadString reads a length-prefixed UTF-8 string starting at off, returning
// the string and the offset immediately following it.
func ReadString(buf []byte, off int) (string, int, error) {
	if off+4 > len(buf) {
		return "", off, fmt.Errorf("krbformat: truncated string length at offset %d", off)
	}
	n := int(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4
	if off+n > len(buf) {
		return "", off, fmt.Errorf("krbformat: truncated string data at offset %d (want %d bytes)", off, n)
	}
	return string(buf[off : off+n]), off + n, nil
}

// RGBA is an RGBA8888 color with R in the high byte of the packed u32, per
// spec.md §6.
type RGBA struct {
	R, G, B, A uint8
}

// Pack encodes the color as a big-endian-ordered u32 (R high byte, A low
// byte) written as 4 consecutive bytes R,G,B,A.
func (c RGBA) Pack() [4]byte { return [4]byte{c.R, c.G, c.B, c.A} }

// UnpackRGBA reads a 4-byte R,G,B,A color.
func UnpackRGBA(b []byte) RGBA { return RGBA{R: b[0], G: b[1], B: b[2], A: b[3]} }
