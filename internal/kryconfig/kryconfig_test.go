package kryconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/kryconfig"
)

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	cfg, err := kryconfig.Load("")
	require.NoError(t, err)
	assert.Equal(t, kryconfig.Default(), cfg)
}

func TestLoadOverlaysYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kryon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compressed: true\nkir_style: readable\n"), 0o644))

	cfg, err := kryconfig.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Compressed)
	assert.Equal(t, "readable", cfg.KIRStyle)
	assert.Equal(t, uint32(1), cfg.KRBVersion, "unset fields keep their default")
}

func TestLoadRejectsInvalidKIRStyle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kryon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kir_style: nonsense\n"), 0o644))

	_, err := kryconfig.Load(path)
	assert.Error(t, err)
}

func TestLoadOverridesAppliesExplicitFlagValues(t *testing.T) {
	cfg, err := kryconfig.Load("")
	require.NoError(t, err)
	out, err := kryconfig.LoadOverrides(cfg, map[string]any{"debug_info": true})
	require.NoError(t, err)
	assert.True(t, out.DebugInfo)
}
