// Package layout computes element geometry and performs hit testing over a
// materialized runtime tree, per spec.md §4.I. The teacher has no layout
// concept (it only emits a static binary), so the single-pass top-down
// algorithm here is grounded directly in spec.md §4.I's prose rather than
// any teacher file: traverse top-down, derive each element's (x, y, w, h)
// from its layout properties, container rect, padding, gap, and alignment,
// with auto-size for a negative/absent width or height.
package layout

import (
	"strings"

	"github.com/kryonlabs/kryon/internal/krbformat"
	"github.com/kryonlabs/kryon/internal/runtime"
)

// Direction is the main axis a container lays its children out along.
type Direction int

const (
	DirColumn Direction = iota
	DirRow
	DirStack
	DirAbsolute
)

func directionOf(e *runtime.Element, strs []string) Direction {
	if s, ok := e.String(krbformat.PropLayout, strs); ok {
		switch strings.ToLower(s) {
		case "row":
			return DirRow
		case "stack":
			return DirStack
		case "absolute":
			return DirAbsolute
		case "grid":
			// A grid is treated as a single row (no wrapping): spec.md §4.I
			// names grid among the supported layout kinds but doesn't
			// specify a column count or track-sizing algorithm, so this
			// implementation folds it onto the row algorithm rather than
			// inventing one.
			return DirRow
		case "column":
			return DirColumn
		}
	}
	switch e.Type {
	case krbformat.ElemRow:
		return DirRow
	case krbformat.ElemColumn:
		return DirColumn
	default:
		return DirColumn
	}
}

// Align is the cross-axis alignment of children within their container.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

func alignOf(e *runtime.Element, strs []string) Align {
	s, ok := e.String(krbformat.PropAlign, strs)
	if !ok {
		return AlignStart
	}
	switch strings.ToLower(s) {
	case "center":
		return AlignCenter
	case "end":
		return AlignEnd
	case "stretch":
		return AlignStretch
	default:
		return AlignStart
	}
}

// Justify is the main-axis distribution of children within their container.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
)

func justifyOf(e *runtime.Element, strs []string) Justify {
	s, ok := e.String(krbformat.PropJustify, strs)
	if !ok {
		return JustifyStart
	}
	switch strings.ToLower(s) {
	case "center":
		return JustifyCenter
	case "end":
		return JustifyEnd
	case "spacebetween", "space-between":
		return JustifySpaceBetween
	default:
		return JustifyStart
	}
}

// Compute lays out root and its entire subtree within the given container
// rectangle, writing into each Element's Geometry field and clearing
// LayoutDirty. strs is the owning Document's string table, needed to
// resolve string-valued layout properties.
func Compute(root *runtime.Element, strs []string, x, y, width, height float64) {
	layoutOne(root, strs, x, y, width, height)
}

func layoutOne(e *runtime.Element, strs []string, x, y, containerW, containerH float64) {
	pad := paddingOf(e, strs)
	margin := marginOf(e, strs)

	w := sizeOf(e, strs, krbformat.PropWidth, containerW)
	h := sizeOf(e, strs, krbformat.PropHeight, containerH)

	e.Geometry = runtime.Geometry{X: x + margin[3], Y: y + margin[0], Width: w, Height: h, Padding: pad, Margin: margin}
	e.LayoutDirty = false

	if len(e.Children) == 0 {
		return
	}

	contentX := e.Geometry.X + pad[3]
	contentY := e.Geometry.Y + pad[0]
	contentW := w - pad[1] - pad[3]
	contentH := h - pad[0] - pad[2]

	dir := directionOf(e, strs)
	if dir == DirAbsolute {
		for _, c := range e.Children {
			cx := contentX + offsetOf(c, strs, krbformat.PropLeft)
			cy := contentY + offsetOf(c, strs, krbformat.PropTop)
			layoutOne(c, strs, cx, cy, contentW, contentH)
		}
		return
	}
	if dir == DirStack {
		for _, c := range e.Children {
			layoutOne(c, strs, contentX, contentY, contentW, contentH)
		}
		return
	}

	gap := gapOf(e, strs)
	align := alignOf(e, strs)
	justify := justifyOf(e, strs)
	layoutFlex(e.Children, strs, dir, align, justify, contentX, contentY, contentW, contentH, gap)
}

// layoutFlex distributes children along the main axis (row=x, column=y) and
// aligns them on the cross axis, following "standard flex-style rules"
// (spec.md §4.I).
func layoutFlex(children []*runtime.Element, strs []string, dir Direction, align Align, justify Justify, x, y, w, h, gap float64) {
	n := len(children)
	if n == 0 {
		return
	}
	mainSizes := make([]float64, n)
	mainTotal := 0.0
	for i, c := range children {
		if dir == DirRow {
			mainSizes[i] = sizeOf(c, strs, krbformat.PropWidth, w)
		} else {
			mainSizes[i] = sizeOf(c, strs, krbformat.PropHeight, h)
		}
		mainTotal += mainSizes[i]
	}
	mainTotal += gap * float64(n-1)

	mainAxisLen := w
	if dir == DirColumn {
		mainAxisLen = h
	}
	extra := mainAxisLen - mainTotal

	cursor := 0.0
	spacing := gap
	switch justify {
	case JustifyCenter:
		cursor = extra / 2
	case JustifyEnd:
		cursor = extra
	case JustifySpaceBetween:
		if n > 1 && extra > 0 {
			spacing = gap + extra/float64(n-1)
		}
	}

	crossLen := h
	if dir == DirColumn {
		crossLen = w
	}
	for i, c := range children {
		crossSize := crossSizeOf(c, strs, dir, crossLen, align)
		crossPos := crossPositionOf(align, crossLen, crossSize)

		var cx, cy, cw, ch float64
		if dir == DirRow {
			cx, cy = x+cursor, y+crossPos
			cw, ch = mainSizes[i], crossSize
		} else {
			cx, cy = x+crossPos, y+cursor
			cw, ch = crossSize, mainSizes[i]
		}
		layoutOne(c, strs, cx, cy, cw, ch)
		cursor += mainSizes[i] + spacing
	}
}

func crossSizeOf(c *runtime.Element, strs []string, dir Direction, crossContainer float64, align Align) float64 {
	code := krbformat.PropHeight
	if dir == DirColumn {
		code = krbformat.PropWidth
	}
	if align == AlignStretch {
		if _, ok := c.Number(code); !ok {
			return crossContainer
		}
	}
	return sizeOf(c, strs, code, crossContainer)
}

func crossPositionOf(align Align, containerLen, itemLen float64) float64 {
	switch align {
	case AlignCenter:
		return (containerLen - itemLen) / 2
	case AlignEnd:
		return containerLen - itemLen
	default:
		return 0
	}
}

// sizeOf resolves a width/height property: a non-negative value is used
// as-is, a negative or absent value auto-sizes to fill the container
// (spec.md §4.I: "auto-size where width/height < 0").
func sizeOf(e *runtime.Element, strs []string, code krbformat.PropertyCode, container float64) float64 {
	v, ok := e.Number(code)
	if !ok || v < 0 {
		return container
	}
	return v
}

func offsetOf(e *runtime.Element, strs []string, code krbformat.PropertyCode) float64 {
	v, ok := e.Number(code)
	if !ok {
		return 0
	}
	return v
}

func gapOf(e *runtime.Element, strs []string) float64 {
	v, _ := e.Number(krbformat.PropGap)
	return v
}

// paddingOf/marginOf read the single PropPadding/PropMargin numeric
// property and broadcast it to all four box-model sides; spec.md §3's
// geometry shape carries a four-sided inset but §6's property table has
// only one padding/margin code, so per-side values aren't independently
// addressable in this implementation.
func paddingOf(e *runtime.Element, strs []string) [4]float64 {
	v, _ := e.Number(krbformat.PropPadding)
	return [4]float64{v, v, v, v}
}

func marginOf(e *runtime.Element, strs []string) [4]float64 {
	v, _ := e.Number(krbformat.PropMargin)
	return [4]float64{v, v, v, v}
}
