package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(envDataRoot, "")
	t.Setenv(envExportRoot, "")
	t.Setenv(envProfile, "")
	t.Setenv(envLogFile, "")
	return home
}

func TestLoadDefaultsDataRootUnderHomeDir(t *testing.T) {
	home := isolateHome(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".shirokuma"), cfg.DataRoot)
	assert.Equal(t, "default", cfg.Profile)
}

func TestLoadHonorsDataRootEnvVar(t *testing.T) {
	isolateHome(t)
	override := t.TempDir()
	t.Setenv(envDataRoot, override)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, override, cfg.DataRoot)
	assert.Equal(t, filepath.Join(override, ".system", "index.db"), cfg.DatabasePath)
}

func TestLoadHonorsProfileEnvVar(t *testing.T) {
	isolateHome(t)
	t.Setenv(envProfile, "staging")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Profile)
}

func TestSetThenGetRoundTrips(t *testing.T) {
	isolateHome(t)
	_, err := Load()
	require.NoError(t, err)

	require.NoError(t, Set("profile", "nightly"))
	assert.Equal(t, "nightly", Get("profile"))
}

func TestAllReturnsResolvedSettings(t *testing.T) {
	isolateHome(t)
	_, err := Load()
	require.NoError(t, err)

	all := All()
	assert.Contains(t, all, "data_root")
	assert.Contains(t, all, "profile")
}
