package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ProfilePack/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profilepack.yaml")

	cfg := model.DefaultAppConfig()
	cfg.Container.MaxLength = 3000
	cfg.Pallet.MaxHeight = 1800
	cfg.Search.Policy = model.SearchGlobalBest
	cfg.Search.SearchTimeout = 750 * time.Millisecond
	cfg.Search.Consolidate = true
	cfg.Search.FamilyStrategy = model.FamilyFrequency
	cfg.RunsDir = "/tmp/runs"

	require.NoError(t, SaveAppConfig(path, cfg))

	loaded, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profilepack.yaml")
	data := []byte("container:\n  max_weight_kg: 500\nsearch:\n  aspect_mode: hard\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500.0, cfg.Container.MaxWeight)
	assert.Equal(t, 1200.0, cfg.Container.MaxWidth)
	assert.Equal(t, model.AspectHard, cfg.Search.AspectMode)
	assert.Equal(t, model.SearchFirstFeasible, cfg.Search.Policy)
	assert.Equal(t, 5*time.Second, cfg.Search.SearchTimeout)
	assert.Equal(t, model.DefaultPalletLimits(), cfg.Pallet)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profilepack.yaml")
	require.NoError(t, SaveAppConfig(path, model.DefaultAppConfig()))
	t.Setenv("PROFILEPACK_CONTAINER_MAX_LENGTH_MM", "2600")
	t.Setenv("PROFILEPACK_SEARCH_MAX_FAMILIES", "4")

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2600.0, cfg.Container.MaxLength)
	assert.Equal(t, 4, cfg.Search.MaxFamilies)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profilepack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pallet:\n  width_mm: -1\n"), 0644))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidLimits)
	assert.Contains(t, err.Error(), "pallet")
}

func TestDefaultPaths(t *testing.T) {
	assert.Equal(t, ".profilepack", filepath.Base(DefaultConfigDir()))
	assert.Equal(t, "profilepack.yaml", filepath.Base(DefaultConfigPath()))
	assert.Equal(t, filepath.Join(DefaultConfigDir(), "runs"), DefaultRunsDir())
}
