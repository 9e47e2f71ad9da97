package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/state"
)

func TestSetAndGetDottedPath(t *testing.T) {
	s := state.New()
	s.Set("user.name", "Ada")
	v, ok := s.Get("user.name")
	require.True(t, ok)
	assert.Equal(t, "Ada", v)
}

func TestObserversFireInRegistrationOrderExactlyOnce(t *testing.T) {
	s := state.New()
	var order []int
	s.Observe("count", func(old, new any) { order = append(order, 1) })
	s.Observe("count", func(old, new any) { order = append(order, 2) })
	s.Set("count", 1)
	assert.Equal(t, []int{1, 2}, order)
}

func TestReentrantSetIsQueuedNotRecursed(t *testing.T) {
	s := state.New()
	var seen []any
	s.Observe("b", func(old, new any) { seen = append(seen, new) })
	s.Observe("a", func(old, new any) {
		s.Set("b", "triggered")
	})
	s.Set("a", 1)
	assert.Equal(t, []any{"triggered"}, seen)
}

func TestScopeFallsBackToGlobal(t *testing.T) {
	inst := state.New()
	global := state.New()
	global.Set("theme", "dark")
	sc := state.Scope{Instance: inst, Global: global}
	v, ok := sc.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	inst.Set("theme", "light")
	v, ok = sc.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "light", v, "instance scope shadows global")
}
