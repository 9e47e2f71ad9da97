// Package render walks a laid-out runtime element tree in pre-order/z-order
// and emits the abstract render-command stream of spec.md §6. It never
// draws anything itself — Renderer is the seam a concrete backend (not part
// of this module, per spec.md §1) would implement, shaped after the
// teacher's render.Renderer frame-lifecycle split
// (BeginFrame/.../EndFrame) but stripped of every raylib-specific type.
package render

import (
	"github.com/kryonlabs/kryon/internal/krbformat"
	"github.com/kryonlabs/kryon/internal/runtime"
)

// RGBA is spec.md §6's fixed RGBA8888 color encoding: R in the high byte.
type RGBA = krbformat.RGBA

// CommandKind tags one entry in the render-command stream (spec.md §6's
// tagged union: `{DrawRect, DrawText, DrawLine, DrawCircle, DrawArc,
// DrawImage, SetClip, PushClip, PopClip, SetTransform, PushTransform,
// PopTransform}`).
type CommandKind int

const (
	DrawRect CommandKind = iota
	DrawText
	DrawLine
	DrawCircle
	DrawArc
	DrawImage
	SetClip
	PushClip
	PopClip
	SetTransform
	PushTransform
	PopTransform
)

var commandKindNames = map[CommandKind]string{
	DrawRect:     "DrawRect",
	DrawText:     "DrawText",
	DrawLine:     "DrawLine",
	DrawCircle:   "DrawCircle",
	DrawArc:      "DrawArc",
	DrawImage:    "DrawImage",
	SetClip:      "SetClip",
	PushClip:     "PushClip",
	PopClip:      "PopClip",
	SetTransform: "SetTransform",
	PushTransform: "PushTransform",
	PopTransform: "PopTransform",
}

func (k CommandKind) String() string {
	if name, ok := commandKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Command is one emitted render instruction. Only the fields relevant to
// Kind are populated; final pixel coordinates are already post-layout.
type Command struct {
	Kind CommandKind

	X, Y, Width, Height float64
	X2, Y2              float64 // DrawLine endpoint
	Radius              float64 // DrawCircle
	StartAngle, EndAngle float64 // DrawArc, degrees

	Color RGBA

	Text     string
	FontID   uint32
	FontSize float64

	ImageResource string

	// SetTransform: a 2D affine matrix, row-major [a b c d tx ty].
	Transform [6]float64

	Source *runtime.Element // element this command was emitted for, for backend-side event correlation
}

// Emitter walks a tree and appends commands to an internal buffer —
// "the runtime never calls into a renderer; it only fills a command
// buffer" (spec.md §4.J).
type Emitter struct {
	commands []Command
	strs     []string
}

// NewEmitter returns an Emitter bound to strs, the owning Document's string
// table (needed to resolve text/image-source properties).
func NewEmitter(strs []string) *Emitter {
	return &Emitter{strs: strs}
}

// Emit appends the command stream for root and its subtree, in pre-order
// (paint order: a later command draws over an earlier one at the same
// pixel), and returns the accumulated buffer so far.
func (em *Emitter) Emit(root *runtime.Element) []Command {
	em.emitOne(root)
	return em.commands
}

// Commands returns everything emitted so far without triggering a new walk.
func (em *Emitter) Commands() []Command { return em.commands }

// Reset clears the buffer, e.g. at the start of a new frame.
func (em *Emitter) Reset() { em.commands = em.commands[:0] }

func (em *Emitter) emitOne(e *runtime.Element) {
	if e == nil || !e.Visible {
		return
	}
	g := e.Geometry

	if bg, ok := colorProp(e, krbformat.PropBackgroundColor); ok {
		em.commands = append(em.commands, Command{Kind: DrawRect, X: g.X, Y: g.Y, Width: g.Width, Height: g.Height, Color: bg, Source: e})
	}

	switch e.Type {
	case krbformat.ElemText, krbformat.ElemButton:
		if text, ok := e.String(krbformat.PropText, em.strs); ok {
			fg, _ := colorProp(e, krbformat.PropColor)
			size, _ := e.Number(krbformat.PropFontSize)
			if size == 0 {
				size = 16
			}
			em.commands = append(em.commands, Command{Kind: DrawText, X: g.X + g.Padding[3], Y: g.Y + g.Padding[0], Text: text, FontSize: size, Color: fg, Source: e})
		}
	case krbformat.ElemImage:
		if src, ok := e.String(krbformat.PropImageSource, em.strs); ok {
			em.commands = append(em.commands, Command{Kind: DrawImage, X: g.X, Y: g.Y, Width: g.Width, Height: g.Height, ImageResource: src, Source: e})
		}
	}

	clips := false
	if ov, ok := e.String(krbformat.PropOverflow, em.strs); ok && ov == "hidden" {
		em.commands = append(em.commands, Command{Kind: PushClip, X: g.X, Y: g.Y, Width: g.Width, Height: g.Height, Source: e})
		clips = true
	}

	for _, c := range e.Children {
		em.emitOne(c)
	}

	if clips {
		em.commands = append(em.commands, Command{Kind: PopClip, Source: e})
	}
}

func colorProp(e *runtime.Element, code krbformat.PropertyCode) (RGBA, bool) {
	for i := len(e.Properties) - 1; i >= 0; i-- {
		p := e.Properties[i]
		if p.Code != code {
			continue
		}
		if p.ValueType != krbformat.ValColor || len(p.Raw) < 4 {
			return RGBA{}, false
		}
		return krbformat.UnpackRGBA(p.Raw), true
	}
	return RGBA{}, false
}

// Renderer is the consumer interface a concrete backend implements to turn
// a Command stream into pixels. This module provides no implementation of
// it (spec.md §1 excludes concrete rendering backends from scope) — it
// exists purely as the seam, grounded on the teacher's BeginFrame/
// DrawFrame/EndFrame frame-lifecycle split but over Command values instead
// of raylib calls.
type Renderer interface {
	BeginFrame()
	Draw(cmd Command)
	EndFrame()
}

// Drive feeds cmds to r in order, bracketed by BeginFrame/EndFrame — the
// one piece of orchestration this module owns over the Renderer seam.
func Drive(r Renderer, cmds []Command) {
	r.BeginFrame()
	for _, c := range cmds {
		r.Draw(c)
	}
	r.EndFrame()
}
