// Package insert implements append and anchored-insert operations.
//
// New content goes either at end-of-file or immediately after a uniquely
// matching anchor line. Anchors are prefix-matched (unlike modify's
// substring rule): an anchor names a line, and prefix matching keeps
// "listen" from colliding with "# listen" in a comment.
//
// The anchor is resolved before the backup is taken - a missing or
// ambiguous anchor is a refused operation, and refusals should not litter
// the backup store.
package insert

import (
	"fmt"
	"io"
	"os"

	"github.com/jpl-au/safechange/internal/backup"
	"github.com/jpl-au/safechange/internal/change"
	"github.com/jpl-au/safechange/internal/identity"
)

// Options configures an insert operation.
type Options struct {
	Content string // new content; may be multi-line, inserted as one block
	Anchor  string // optional: insert after the unique line with this prefix

	Identity identity.Identity // declared operating identity
	Invoker  identity.Identity // identity actually running the process
}

// Result contains the outcome of an insert operation.
type Result struct {
	Path   string `json:"path"`
	Backup string `json:"backup,omitempty"`
	After  int    `json:"after,omitempty"` // line number inserted after; 0 = end of file
}

// Run executes an insert operation on path and writes a summary to w.
func Run(w io.Writer, st *backup.Store, path string, opts Options) (Result, error) {
	result := Result{Path: path}

	if opts.Content == "" {
		return result, fmt.Errorf("%w: content is required", change.ErrValidation)
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

	// Resolve the anchor before backing up.
	anchorLine := 0
	if opts.Anchor != "" {
		matches := change.PrefixedWith(content, opts.Anchor)
		switch len(matches) {
		case 0:
			return result, fmt.Errorf("%w: no line starts with anchor %q", change.ErrNotFound, opts.Anchor)
		case 1:
			anchorLine = matches[0].Line
		default:
			return result, &change.AmbiguityError{Search: opts.Anchor, Matches: matches}
		}
	}

	bak, err := st.Create(path)
	if err != nil {
		return result, err
	}
	result.Backup = bak.Path

	var updated string
	if anchorLine > 0 {
		updated = change.InsertAfter(content, anchorLine, opts.Content)
		result.After = anchorLine
	} else {
		updated = change.AppendBlock(content, opts.Content)
	}

	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		if data, readErr := os.ReadFile(bak.Path); readErr == nil {
			_ = os.WriteFile(path, data, info.Mode().Perm())
		}
		return result, fmt.Errorf("%w: write %s: %v (restored from %s)", change.ErrApply, path, err, bak.Path)
	}

	if anchorLine > 0 {
		fmt.Fprintf(w, "Added to %s after line %d (backup %s)\n", path, anchorLine, bak.Path)
	} else {
		fmt.Fprintf(w, "Added to %s at end of file (backup %s)\n", path, bak.Path)
	}
	return result, nil
}
