//go:build !windows

package index

import (
	"errors"
	"os"
)

// cleanupBackup removes the previous index directory if possible.
func cleanupBackup(backupPath string) error {
	if backupPath == "" {
		return nil
	}
	err := os.RemoveAll(backupPath)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
