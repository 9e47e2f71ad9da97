// Package srcloc defines the source-position type shared by the lexer,
// parser, AST, and diagnostics.
package srcloc

import "fmt"

// Location pins a span of source text. It is immutable once created and is
// attached to every token, AST node, and diagnostic produced by the compiler.
type Location struct {
	File   string
	Line   int // 1-based
	Column int // 1-based, resets after a newline
	Offset int // 0-based byte offset into the source buffer
	Length int // span length in bytes
}

// String renders "file:line:col", matching the format diagnostics print.
func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// Zero reports whether l is the unset Location.
func (l Location) Zero() bool {
	return l == Location{}
}

// End returns the location immediately after the span, useful for
// zero-width diagnostics anchored just past a token.
func (l Location) End() Location {
	e := l
	e.Column += l.Length
	e.Offset += l.Length
	e.Length = 0
	return e
}
