package runtime

import (
	"encoding/binary"

	"github.com/kryonlabs/kryon/internal/krbformat"
)

// Number reads a ValShort/ValPercentage-encoded property as a float64 — an
// unadorned integer for ValShort, or a unit-suffixed number (8.8 fixed
// point, the layout internal/codegen's floatToFixed packs) for
// ValPercentage. Scans in reverse so a later re-declaration of the same
// property wins, matching source order.
func (e *Element) Number(code krbformat.PropertyCode) (float64, bool) {
	for i := len(e.Properties) - 1; i >= 0; i-- {
		p := e.Properties[i]
		if p.Code != code {
			continue
		}
		switch p.ValueType {
		case krbformat.ValShort:
			if len(p.Raw) < 2 {
				return 0, false
			}
			return float64(int16(binary.LittleEndian.Uint16(p.Raw))), true
		case krbformat.ValPercentage:
			if len(p.Raw) < 2 {
				return 0, false
			}
			fixed := int16(binary.LittleEndian.Uint16(p.Raw))
			return float64(fixed) / 256.0, true
		}
		return 0, false
	}
	return 0, false
}

// String reads a ValString-encoded property, resolving its string-table
// index against strs (the owning Document's Strings slice). An index
// Update stamped in (see internLiteral) carries its own out-of-band table
// instead of strs, since directive-reconciled content has no place in a
// read-only decoded Document.
func (e *Element) String(code krbformat.PropertyCode, strs []string) (string, bool) {
	for i := len(e.Properties) - 1; i >= 0; i-- {
		p := e.Properties[i]
		if p.Code != code {
			continue
		}
		if p.ValueType != krbformat.ValString || len(p.Raw) < 4 {
			return "", false
		}
		idx := binary.LittleEndian.Uint32(p.Raw)
		if s, ok := StampedString(idx); ok {
			return s, true
		}
		if int(idx) >= len(strs) {
			return "", false
		}
		return strs[idx], true
	}
	return "", false
}

// Bool reads a ValBool-encoded property.
func (e *Element) Bool(code krbformat.PropertyCode) (bool, bool) {
	for i := len(e.Properties) - 1; i >= 0; i-- {
		p := e.Properties[i]
		if p.Code != code {
			continue
		}
		if p.ValueType != krbformat.ValBool || len(p.Raw) < 1 {
			return false, false
		}
		return p.Raw[0] != 0, true
	}
	return false, false
}
