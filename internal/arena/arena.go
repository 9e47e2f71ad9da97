// Package arena models the phase-scoped allocation contexts described in
// SPEC_FULL.md's concurrency/resource-model section: plain Go slices/maps
// held behind a struct that is dropped wholesale when its phase ends. Go's
// GC does the actual reclaiming; the type here exists to make the phase
// boundary explicit in code and let tests assert that nothing allocated in
// phase N is still reachable once phase N+1 begins.
//
// The teacher has no such concept (it runs its passes as a flat sequence of
// functions sharing one long-lived slice of elements), so this package is
// grounded directly on SPEC_FULL.md's prose rather than on any teacher file.
package arena

// Arena is a bump-style bag of same-phase allocations. It is not safe for
// concurrent use — a phase runs single-threaded per SPEC_FULL.md §5.
type Arena struct {
	phase string
	vals  []any
	freed bool
}

// New opens an arena for the named phase (e.g. "lex", "parse", "expand",
// "codegen").
func New(phase string) *Arena {
	return &Arena{phase: phase}
}

// Phase reports the name this arena was opened for.
func (a *Arena) Phase() string {
	return a.phase
}

// Put retains v for the lifetime of the arena and returns it unchanged, so
// call sites can wrap an allocation inline: x := arena.Put(a, &Foo{}).
func Put[T any](a *Arena, v T) T {
	if a.freed {
		panic("arena: Put after Free on phase " + a.phase)
	}
	a.vals = append(a.vals, v)
	return v
}

// Len reports how many values have been retained so far.
func (a *Arena) Len() int {
	return len(a.vals)
}

// Free drops the arena's retained slice, making every value it held
// collectible once no other reference to them remains. A freed arena panics
// on further Put calls — a phase must not keep allocating into an arena
// whose phase has ended.
func (a *Arena) Free() {
	a.vals = nil
	a.freed = true
}

// Freed reports whether Free has been called.
func (a *Arena) Freed() bool {
	return a.freed
}
