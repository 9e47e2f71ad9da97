package varsubst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/varsubst"
)

func TestSubstituteReplacesReferenceAndStripsBlock(t *testing.T) {
	src := "@variables {\n  accent: \"#FF0000\";\n}\nButton { color: $accent; }\n"
	out, warnings, err := varsubst.Substitute(src)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotContains(t, out, "@variables")
	assert.Contains(t, out, `color: "#FF0000";`)
}

func TestSubstituteResolvesTransitiveReference(t *testing.T) {
	src := "@variables {\n  base: \"1px\";\n  border: \"solid $base\";\n}\nText { border: $border; }\n"
	out, _, err := varsubst.Substitute(src)
	require.NoError(t, err)
	assert.Contains(t, out, `border: "solid 1px";`)
}

func TestSubstituteDetectsCycle(t *testing.T) {
	src := "@variables {\n  a: \"$b\";\n  b: \"$a\";\n}\nText { x: $a; }\n"
	_, _, err := varsubst.Substitute(src)
	assert.Error(t, err)
}

func TestSubstituteReportsUndefinedVariable(t *testing.T) {
	src := "Text { x: $missing; }\n"
	_, _, err := varsubst.Substitute(src)
	assert.Error(t, err)
}

func TestSubstituteWarnsOnRedefinition(t *testing.T) {
	src := "@variables {\n  a: \"1\";\n  a: \"2\";\n}\nText { x: $a; }\n"
	out, warnings, err := varsubst.Substitute(src)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
	assert.Contains(t, out, `x: "2";`)
}
