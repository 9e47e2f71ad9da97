package layout

import (
	"time"

	"github.com/kryonlabs/kryon/internal/runtime"
)

// EventKind enumerates the hit-testing layer's event types (spec.md §4.I).
type EventKind int

const (
	Clicked EventKind = iota
	DoubleClicked
	Hovered
	Unhovered
	Focused
	Unfocused
	MouseMoved
)

// FiredEvent is one event hit testing produced for this input sample.
type FiredEvent struct {
	Kind    EventKind
	Element *runtime.Element
}

// DoubleClickWindow and DoubleClickDistance bound how close in time and
// space two clicks must land to count as a double click (spec.md §4.I:
// "if within double-click time and distance of last click").
const (
	DoubleClickWindow   = 400 * time.Millisecond
	DoubleClickDistance = 6.0 // pixels
)

// Tester tracks the hover/focus/last-click state a single pointer needs
// across input samples — the runtime's update loop owns one Tester per
// pointer device.
type Tester struct {
	Hovered    *runtime.Element
	Focused    *runtime.Element
	lastClickX float64
	lastClickY float64
	lastClick  time.Time
	hasClicked bool
}

// HitTest finds the topmost element under (x, y) among roots — popups
// first, then the ordinary tree walked in reverse z-order (later siblings
// drawn on top, so they're tested first) — and returns the events that
// sampling this point/click produces: hover/unhover transitions always,
// click/double-click only when click is true.
func (t *Tester) HitTest(roots []*runtime.Element, popups []*runtime.Element, x, y float64, click bool, now time.Time) []FiredEvent {
	var hit *runtime.Element
	if h := pickTopmost(popups, x, y); h != nil {
		hit = h
	} else {
		hit = pickTopmost(roots, x, y)
	}

	var events []FiredEvent
	if hit != t.Hovered {
		if t.Hovered != nil {
			t.Hovered.Hovered = false
			events = append(events, FiredEvent{Kind: Unhovered, Element: t.Hovered})
		}
		if hit != nil {
			hit.Hovered = true
			events = append(events, FiredEvent{Kind: Hovered, Element: hit})
		}
		t.Hovered = hit
	}
	events = append(events, FiredEvent{Kind: MouseMoved, Element: hit})

	if !click {
		return events
	}

	if hit != t.Focused {
		if t.Focused != nil {
			t.Focused.Focused = false
			events = append(events, FiredEvent{Kind: Unfocused, Element: t.Focused})
		}
		if hit != nil {
			hit.Focused = true
			events = append(events, FiredEvent{Kind: Focused, Element: hit})
		}
		t.Focused = hit
	}

	if hit == nil {
		return events
	}

	isDouble := t.hasClicked &&
		now.Sub(t.lastClick) <= DoubleClickWindow &&
		dist(x, y, t.lastClickX, t.lastClickY) <= DoubleClickDistance
	t.lastClickX, t.lastClickY, t.lastClick, t.hasClicked = x, y, now, true

	if isDouble {
		events = append(events, FiredEvent{Kind: DoubleClicked, Element: hit})
	} else {
		events = append(events, FiredEvent{Kind: Clicked, Element: hit})
	}
	return events
}

// pickTopmost walks roots in reverse z-order (later entries drawn on top),
// and within each root depth-first, preferring the deepest/last matching
// descendant so an inner element wins over its ancestor container.
func pickTopmost(roots []*runtime.Element, x, y float64) *runtime.Element {
	for i := len(roots) - 1; i >= 0; i-- {
		if hit := pickWithin(roots[i], x, y); hit != nil {
			return hit
		}
	}
	return nil
}

func pickWithin(e *runtime.Element, x, y float64) *runtime.Element {
	if e == nil || !e.Visible || !contains(e, x, y) {
		return nil
	}
	for i := len(e.Children) - 1; i >= 0; i-- {
		if hit := pickWithin(e.Children[i], x, y); hit != nil {
			return hit
		}
	}
	return e
}

func contains(e *runtime.Element, x, y float64) bool {
	g := e.Geometry
	return x >= g.X && x < g.X+g.Width && y >= g.Y && y < g.Y+g.Height
}

func dist(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
