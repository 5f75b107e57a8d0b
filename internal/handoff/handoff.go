// Package handoff passes the accepted command from aishell to the calling
// shell function through a single transient file.
package handoff

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/TonnyWong1052/aishell/internal/config"
	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// Path returns the handoff file location for the given environment
func Path(lookup config.LookupFunc) (string, error) {
	dir, err := config.StateDir(lookup)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.HandoffFileName), nil
}

// Write replaces the handoff file with command. The file is private to the user.
func Write(path, command string) error {
	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return aerrors.ErrHandoffFailed(path, err)
	}
	if err := os.WriteFile(path, []byte(command), config.PrivateFilePermissions); err != nil {
		return aerrors.ErrHandoffFailed(path, err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, config.PrivateFilePermissions); err != nil {
		return aerrors.ErrHandoffFailed(path, err)
	}
	return nil
}

// Remove deletes the handoff file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
