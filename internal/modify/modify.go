// Package modify implements exactly-one-match text substitution.
//
// The operation walks a fixed sequence: identity and permission checks,
// unconditional backup, match counting, the cardinality gate, on-line
// substitution, and a changed-content check. Zero matching lines is a
// benign no-op, not an error - "nothing to change" must not fail a change
// script. More than one matching line aborts with the full match list: the
// tool refuses to guess which line the operator meant.
//
// The only automatic compensation is restore-from-backup when the write
// itself fails; every other failure leaves the file untouched.
package modify

import (
	"fmt"
	"io"
	"os"

	"github.com/jpl-au/safechange/internal/backup"
	"github.com/jpl-au/safechange/internal/change"
	"github.com/jpl-au/safechange/internal/diff"
	"github.com/jpl-au/safechange/internal/identity"
)

// Options configures a modify operation.
type Options struct {
	Search  string // literal text to find (substring, single line required)
	Replace string // literal replacement

	Identity identity.Identity // declared operating identity
	Invoker  identity.Identity // identity actually running the process

	// BackupAlways takes the backup before searching, so even a no-match
	// attempt leaves an audit pointer. When false the backup is deferred
	// until a single match is confirmed.
	BackupAlways bool

	Colour bool // colourise the diff summary
}

// Result contains the outcome of a modify operation.
type Result struct {
	Path    string         `json:"path"`
	Backup  string         `json:"backup,omitempty"`
	Matches []change.Match `json:"matches,omitempty"`
	Changed bool           `json:"changed"`
	Warning string         `json:"warning,omitempty"`
	Diff    string         `json:"diff,omitempty"`
}

// Run executes a modify operation on path and writes a human-readable
// summary to w.
func Run(w io.Writer, st *backup.Store, path string, opts Options) (Result, error) {
	result := Result{Path: path}

	if opts.Search == "" {
		return result, fmt.Errorf("%w: search text is required", change.ErrValidation)
	}
	if err := change.CheckIdentity(opts.Invoker, opts.Identity); err != nil {
		return result, err
	}
	if err := change.CheckTarget(path); err != nil {
		return result, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return result, fmt.Errorf("%w: stat %s: %v", change.ErrIO, path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("%w: read %s: %v", change.ErrIO, path, err)
	}
	content := string(data)

	var bak backup.Handle
	backed := false
	if opts.BackupAlways {
		if bak, err = st.Create(path); err != nil {
			return result, err
		}
		result.Backup = bak.Path
		backed = true
	}

	matches := change.Containing(content, opts.Search)
	result.Matches = matches

	switch len(matches) {
	case 0:
		result.Warning = fmt.Sprintf("no lines match %q; file unchanged", opts.Search)
		fmt.Fprintf(w, "Warning: %s\n", result.Warning)
		return result, nil
	case 1:
		// proceed
	default:
		return result, &change.AmbiguityError{Search: opts.Search, Matches: matches}
	}

	if !backed {
		if bak, err = st.Create(path); err != nil {
			return result, err
		}
		result.Backup = bak.Path
	}

	updated := change.ReplaceOnLines(content, opts.Search, opts.Replace)
	if updated == content {
		result.Warning = "file unchanged (replacement text equals existing text)"
		fmt.Fprintf(w, "Warning: %s\n", result.Warning)
		return result, nil
	}

	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		restoreErr := rollback(path, bak, info.Mode().Perm())
		if restoreErr != nil {
			return result, fmt.Errorf("%w: write %s: %v (rollback also failed: %v)", change.ErrApply, path, err, restoreErr)
		}
		return result, fmt.Errorf("%w: write %s: %v (restored from %s)", change.ErrApply, path, err, bak.Path)
	}

	d := diff.Compute(content, updated, bak.Path, path)
	result.Changed = true
	result.Diff = d.Diff
	fmt.Fprintf(w, "Modified %s (backup %s)\n", path, bak.Path)
	fmt.Fprint(w, d.Format(opts.Colour))
	return result, nil
}

// rollback copies the just-taken backup over the target after a failed
// apply.
func rollback(path string, bak backup.Handle, mode os.FileMode) error {
	data, err := os.ReadFile(bak.Path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, mode)
}
