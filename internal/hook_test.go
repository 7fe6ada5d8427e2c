package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookMarker(t *testing.T) {
	script := HookScript()
	assert.Contains(t, script, "#!/bin/sh")
	assert.Contains(t, script, HookMarker)
	assert.Contains(t, script, "medrag hook run post-commit")
}

func TestIsManagedHook(t *testing.T) {
	assert.True(t, IsManagedHook(HookScript()))
	assert.False(t, IsManagedHook("#!/bin/sh\necho hello"))
	assert.False(t, IsManagedHook(""))
}

func TestFindGitDir(t *testing.T) {
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))

	nested := filepath.Join(dir, "data", "pdfs")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindGitDir(nested)
	assert.NoError(t, err)
	assert.Equal(t, gitDir, found)

	_, err = FindGitDir(t.TempDir())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInstallHook(t *testing.T) {
	gitDir := filepath.Join(t.TempDir(), ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))

	path, err := InstallHook(gitDir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(gitDir, "hooks", "post-commit"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, IsManagedHook(string(content)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100, "hook must be executable")

	// reinstalling over a managed hook is fine
	_, err = InstallHook(gitDir, false)
	assert.NoError(t, err)
}

func TestInstallHookForeignHook(t *testing.T) {
	gitDir := filepath.Join(t.TempDir(), ".git")
	hooksDir := filepath.Join(gitDir, "hooks")
	require.NoError(t, os.MkdirAll(hooksDir, 0755))

	original := "#!/bin/sh\necho custom\n"
	hookPath := filepath.Join(hooksDir, "post-commit")
	require.NoError(t, os.WriteFile(hookPath, []byte(original), 0755))

	_, err := InstallHook(gitDir, false)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = InstallHook(gitDir, true)
	require.NoError(t, err)

	backup, err := os.ReadFile(hookPath + ".medrag.bak")
	require.NoError(t, err)
	assert.Equal(t, original, string(backup))

	require.NoError(t, UninstallHook(gitDir))

	restored, err := os.ReadFile(hookPath)
	require.NoError(t, err)
	assert.Equal(t, original, string(restored))
	assert.NoFileExists(t, hookPath+".medrag.bak")
}

func TestUninstallHook(t *testing.T) {
	gitDir := filepath.Join(t.TempDir(), ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))

	err := UninstallHook(gitDir)
	assert.True(t, errors.Is(err, ErrNotFound))

	path, err := InstallHook(gitDir, false)
	require.NoError(t, err)
	require.NoError(t, UninstallHook(gitDir))
	assert.NoFileExists(t, path)
}

func TestUninstallHookForeignHook(t *testing.T) {
	gitDir := filepath.Join(t.TempDir(), ".git")
	hooksDir := filepath.Join(gitDir, "hooks")
	require.NoError(t, os.MkdirAll(hooksDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(hooksDir, "post-commit"), []byte("#!/bin/sh\n"), 0755))

	err := UninstallHook(gitDir)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
