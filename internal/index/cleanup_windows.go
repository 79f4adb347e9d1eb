//go:build windows

package index

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/windows"
)

// cleanupBackup removes the previous index directory if possible.
//
// On Windows, antivirus/indexers can temporarily hold a handle to the old
// artifacts after the swap; we retry for a short period and fall back to
// scheduling deletion of each file at next reboot.
func cleanupBackup(backupPath string) error {
	if backupPath == "" {
		return nil
	}

	tryRemove := func() error {
		err := os.RemoveAll(backupPath)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var lastErr error
	for i := 0; i < 15; i++ {
		if err := tryRemove(); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(200 * time.Millisecond)
	}

	entries, err := os.ReadDir(backupPath)
	if err != nil {
		return lastErr
	}
	paths := []string{}
	for _, e := range entries {
		paths = append(paths, filepath.Join(backupPath, e.Name()))
	}
	paths = append(paths, backupPath)
	for _, p := range paths {
		ptr, err := windows.UTF16PtrFromString(p)
		if err != nil {
			return lastErr
		}
		if err := windows.MoveFileEx(ptr, nil, windows.MOVEFILE_DELAY_UNTIL_REBOOT); err != nil {
			return lastErr
		}
	}
	return nil
}
