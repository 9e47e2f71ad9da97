package runtime

import (
	"github.com/google/uuid"

	"github.com/kryonlabs/kryon/internal/diag"
	"github.com/kryonlabs/kryon/internal/krbformat"
	"github.com/kryonlabs/kryon/internal/srcloc"
)

// Phase is an element's lifecycle stage (spec.md §3): `CREATED → MOUNTING →
// MOUNTED → (UPDATING)* → UNMOUNTING → UNMOUNTED → DESTROYED`.
type Phase int

const (
	Created Phase = iota
	Mounting
	Mounted
	Updating
	Unmounting
	Unmounted
	Destroyed
)

func (p Phase) String() string {
	switch p {
	case Created:
		return "created"
	case Mounting:
		return "mounting"
	case Mounted:
		return "mounted"
	case Updating:
		return "updating"
	case Unmounting:
		return "unmounting"
	case Unmounted:
		return "unmounted"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Geometry is an element's post-layout box: position and size in pixels,
// plus the resolved box-model insets internal/layout consumes (spec.md §3's
// "geometry {x,y,w,h, padding[4], margin[4]}").
type Geometry struct {
	X, Y, Width, Height float64
	Padding             [4]float64 // top, right, bottom, left
	Margin              [4]float64
}

// Element is a materialized, live runtime UI node. Parent is a weak
// observer pointer (an index-free back-reference that never owns its
// target), per spec.md §9's "back-references without cycles in ownership"
// note — Destroy walks down through Children, never up through Parent.
type Element struct {
	InstanceID string // stable uuid, distinguishes component instances sharing a template
	Type       krbformat.ElementType
	ID         string
	StyleID    uint8
	Properties []RawProperty
	Parent     *Element
	Children   []*Element
	Phase      Phase

	// Control is non-nil when this node is a @for/@const_for/@if marker
	// that internal/expand left for the runtime to evaluate (spec.md §4.H).
	// Its Children are reconciled template output, not direct KRB content,
	// and are rebuilt by Update rather than by Materialize.
	Control *ControlMeta

	Geometry     Geometry
	LayoutDirty  bool
	RenderDirty  bool
	Visible      bool
	Hovered      bool
	Focused      bool
	ZIndex       int
}

// Materialize walks a decoded Document's element forest and builds the live
// Element tree, assigning each node a fresh instance id and starting it in
// the Created phase. It does not mount — that is a separate, explicit step
// (Mount) so a caller can attach state/observers first.
func Materialize(doc *Document) ([]*Element, *diag.Bag) {
	bag := &diag.Bag{}
	var roots []*Element
	for _, re := range doc.Elements {
		roots = append(roots, materializeOne(re, nil, doc, bag))
	}
	return roots, bag
}

func materializeOne(re *RawElement, parent *Element, doc *Document, bag *diag.Bag) *Element {
	if _, ok := krbformat.ElementTypeName(re.Type); !ok {
		bag.Addf(diag.PhaseLoad, srcloc.Location{}, "unknown element type code 0x%04X", uint16(re.Type))
	}
	el := &Element{
		InstanceID:  uuid.NewString(),
		Type:        re.Type,
		ID:          stringAt(doc.Strings, re.IDIndex),
		StyleID:     re.StyleID,
		Properties:  re.Properties,
		Parent:      parent,
		Phase:       Created,
		LayoutDirty: true, // "after materialization, a layout-dirty flag is set on every element" (spec.md §4.F)
		Visible:     true,
	}
	if isControlType(re.Type) {
		// Children are the directive's template body/else-body, not live
		// content — Update populates el.Children from a reconcile pass
		// instead of from the decoded tree directly.
		el.Control = buildControlMeta(re, doc.Strings, bag)
		return el
	}
	for _, child := range re.Children {
		el.Children = append(el.Children, materializeOne(child, el, doc, bag))
	}
	return el
}

// Mount transitions el and its subtree CREATED/UNMOUNTED → MOUNTING →
// MOUNTED, depth-first (children mount before their parent finishes, so a
// parent's onmount can observe fully-mounted children).
func Mount(el *Element) {
	el.Phase = Mounting
	for _, c := range el.Children {
		Mount(c)
	}
	el.Phase = Mounted
}

// Destroy transitions el and its subtree MOUNTED/UNMOUNTED → UNMOUNTING →
// UNMOUNTED → DESTROYED, children first, then the node itself, never
// touching Parent (Parent is a weak reference the owner's slice discards).
func Destroy(el *Element) {
	for _, c := range el.Children {
		Destroy(c)
	}
	el.Phase = Unmounting
	el.Phase = Unmounted
	el.Phase = Destroyed
}

// IsRoot reports spec.md §8's invariant surface directly:
// `element.parent == null ⟺ element is root`.
func (e *Element) IsRoot() bool { return e.Parent == nil }
