package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	HookMarker    = "# medrag: managed post-commit hook"
	hookName      = "post-commit"
	hookBackupExt = ".medrag.bak"
)

// HookScript returns the post-commit shim that rebuilds the index.
func HookScript() string {
	return fmt.Sprintf("#!/bin/sh\n%s\nexec medrag hook run %s \"$@\"\n", HookMarker, hookName)
}

// IsManagedHook checks if the given script content was written by medrag.
func IsManagedHook(content string) bool {
	return strings.Contains(content, HookMarker)
}

// FindGitDir walks up from dir looking for a .git directory.
func FindGitDir(dir string) (string, error) {
	for {
		gitDir := filepath.Join(dir, ".git")
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			return gitDir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: not a git repository (no .git found)", ErrNotFound)
		}
		dir = parent
	}
}

// InstallHook writes the managed post-commit hook into gitDir. A foreign
// hook is only replaced with force, and is then kept as a backup that
// UninstallHook restores.
func InstallHook(gitDir string, force bool) (string, error) {
	hooksDir := filepath.Join(gitDir, "hooks")
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return "", fmt.Errorf("create hooks dir: %w", err)
	}

	path := filepath.Join(hooksDir, hookName)
	existing, err := os.ReadFile(path)
	switch {
	case err == nil && !IsManagedHook(string(existing)):
		if !force {
			return "", invalidInput("%s already exists and is not managed by medrag, use --force", path)
		}
		if err := os.Rename(path, path+hookBackupExt); err != nil {
			return "", fmt.Errorf("back up hook: %w", err)
		}
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read hook: %w", err)
	}

	if err := os.WriteFile(path, []byte(HookScript()), 0755); err != nil {
		return "", fmt.Errorf("write hook: %w", err)
	}
	return path, nil
}

// UninstallHook removes the managed hook and restores any backup.
func UninstallHook(gitDir string) error {
	path := filepath.Join(gitDir, "hooks", hookName)
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: no post-commit hook in %s", ErrNotFound, gitDir)
	}
	if err != nil {
		return fmt.Errorf("read hook: %w", err)
	}
	if !IsManagedHook(string(content)) {
		return invalidInput("%s is not managed by medrag", path)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove hook: %w", err)
	}

	backup := path + hookBackupExt
	if _, err := os.Stat(backup); err == nil {
		if err := os.Rename(backup, path); err != nil {
			return fmt.Errorf("restore hook: %w", err)
		}
	}
	return nil
}
