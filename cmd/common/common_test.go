package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SIGNAL_BOT_TEST_KEY=from-file\nSIGNAL_BOT_TEST_SET=file\n"), 0644))

	t.Setenv("SIGNAL_BOT_TEST_SET", "env")
	t.Setenv("SIGNAL_BOT_TEST_KEY", "")
	os.Unsetenv("SIGNAL_BOT_TEST_KEY")

	loaded, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "from-file", os.Getenv("SIGNAL_BOT_TEST_KEY"))
	assert.Equal(t, "env", os.Getenv("SIGNAL_BOT_TEST_SET"), "existing variables win")

	loaded, err = LoadEnvFile(filepath.Join(dir, "absent.env"))
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, ProjectVersion, info.Version)
	assert.Contains(t, GetFullVersion(), ProjectVersion)
	assert.NotEmpty(t, info.GoVersion)
}
