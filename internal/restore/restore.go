// Package restore copies a chosen backup back over the live file.
//
// Restore is a full overwrite, not a merge: the live file becomes
// byte-identical to the backup. With no explicit backup the most recently
// created one is used. An explicit backup path is validated for
// relatedness first, so a script cannot accidentally restore one file's
// backup over another file.
package restore

import (
	"fmt"
	"io"
	"os"

	"github.com/jpl-au/safechange/internal/backup"
	"github.com/jpl-au/safechange/internal/change"
)

// Result contains the outcome of a restore operation.
type Result struct {
	Path   string `json:"path"`
	Backup string `json:"backup"`
}

// Run restores path from backupPath, or from the latest backup when
// backupPath is empty, and writes a summary to w.
func Run(w io.Writer, st *backup.Store, path, backupPath string) (Result, error) {
	result := Result{Path: path}

	var h backup.Handle
	var err error
	if backupPath == "" {
		h, err = st.Latest(path)
	} else {
		h, err = st.Resolve(path, backupPath)
	}
	if err != nil {
		return result, err
	}
	result.Backup = h.Path

	data, err := os.ReadFile(h.Path)
	if err != nil {
		return result, fmt.Errorf("%w: read backup %s: %v", change.ErrIO, h.Path, err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return result, fmt.Errorf("%w: write %s: %v", change.ErrIO, path, err)
	}

	fmt.Fprintf(w, "Restored %s from %s\n", path, h.Path)
	return result, nil
}
