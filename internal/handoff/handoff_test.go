package handoff

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

func TestPathUsesStateDir(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "AISHELL_STATE_DIR" {
			return "/tmp/state", true
		}
		return "", false
	}
	p, err := Path(lookup)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/state", "last_command"), p)
}

func TestWriteRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "last_command")

	require.NoError(t, Write(path, "ls -la"))
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, Write(path, "git status"))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "git status", string(got), "a second write replaces the first")

	require.NoError(t, Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, Remove(path), "removing a missing file is fine")
}

func TestWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := Write(filepath.Join(blocker, "last_command"), "ls")
	assert.True(t, aerrors.HasCode(err, aerrors.ErrHandoffWrite))
}
