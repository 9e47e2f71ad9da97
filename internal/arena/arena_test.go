package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kryonlabs/kryon/internal/arena"
)

func TestPutRetainsValueAndReturnsItUnchanged(t *testing.T) {
	a := arena.New("parse")
	type node struct{ name string }

	got := arena.Put(a, &node{name: "root"})
	assert.Equal(t, "root", got.name)
	assert.Equal(t, 1, a.Len())
}

func TestFreeClearsRetainedValuesAndMarksFreed(t *testing.T) {
	a := arena.New("codegen")
	arena.Put(a, 1)
	arena.Put(a, 2)
	assert.Equal(t, 2, a.Len())

	a.Free()
	assert.True(t, a.Freed())
	assert.Equal(t, 0, a.Len(), "nothing from a freed phase stays reachable through the arena")
}

func TestPutAfterFreePanics(t *testing.T) {
	a := arena.New("expand")
	a.Free()
	assert.Panics(t, func() {
		arena.Put(a, "too late")
	})
}

func TestPhaseReportsOpenedName(t *testing.T) {
	a := arena.New("lex")
	assert.Equal(t, "lex", a.Phase())
}
