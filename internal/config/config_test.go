package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oscar-corpus/corpusbuild/internal/config"
)

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	src := t.TempDir()
	dest := t.TempDir()
	model := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(model, []byte("x"), 0o644))
	return &config.Config{SourceDir: src, DestDir: dest, ModelPath: model}
}

func TestValidate_Success(t *testing.T) {
	require.NoError(t, validConfig(t).Validate())
}

func TestValidate_MissingSourceDir(t *testing.T) {
	c := validConfig(t)
	c.SourceDir = ""
	require.Error(t, c.Validate())
}

func TestValidate_SourceDirNotFound(t *testing.T) {
	c := validConfig(t)
	c.SourceDir = filepath.Join(t.TempDir(), "nope")
	require.Error(t, c.Validate())
}

func TestValidate_DestDirNotFound(t *testing.T) {
	c := validConfig(t)
	c.DestDir = filepath.Join(t.TempDir(), "nope")
	require.Error(t, c.Validate())
}

func TestValidate_MissingModel(t *testing.T) {
	c := validConfig(t)
	c.ModelPath = filepath.Join(t.TempDir(), "missing.bin")
	require.Error(t, c.Validate())
}

func TestValidate_NegativePartSize(t *testing.T) {
	c := validConfig(t)
	c.PartSizeBytes = -1
	require.Error(t, c.Validate())
}

func TestValidate_InvalidBlocklistDir(t *testing.T) {
	c := validConfig(t)
	c.BlocklistDir = filepath.Join(t.TempDir(), "nope")
	require.Error(t, c.Validate())
}

func TestValidate_DestNotWritable(t *testing.T) {
	c := validConfig(t)
	require.NoError(t, os.Chmod(c.DestDir, 0o500))
	defer os.Chmod(c.DestDir, 0o700)
	if os.Getuid() == 0 {
		t.Skip("root ignores directory write permissions")
	}
	require.Error(t, c.Validate())
}
