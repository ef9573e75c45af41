// errors.go defines the sentinel errors shared by all edit operations.
//
// Separated to centralise the failure taxonomy. Each sentinel represents a
// distinct category that the CLI maps to a human-readable message and a
// structured audit entry. Use errors.Is() for type-safe checks.
//
// Design: Sentinel errors (not error types) because most failures carry no
// context beyond the category - detail comes from fmt.Errorf wrapping at the
// call site. The one exception is AmbiguityError, which must carry the full
// match list so operators can see exactly which lines collided.

package change

import (
	"errors"
	"fmt"
)

var (
	// ErrPermission is returned when the invoking identity does not match
	// the declared one, or the target file is not writable.
	ErrPermission = errors.New("permission denied")
	// ErrNotFound is returned for a missing target file, missing backup,
	// or missing anchor line.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when a search matches more than one line.
	ErrAmbiguous = errors.New("ambiguous match")
	// ErrValidation is returned for missing parameters or a backup file
	// unrelated to the target.
	ErrValidation = errors.New("invalid argument")
	// ErrApply is returned when the substitution or insertion mechanism
	// failed after backup; the target has been restored from that backup.
	ErrApply = errors.New("apply failed")
	// ErrIO is returned when a backup copy, restore copy, or file read
	// fails before any mutation.
	ErrIO = errors.New("i/o error")
)

// AmbiguityError reports a search that matched more than one line. It wraps
// ErrAmbiguous and carries the colliding lines so callers can print them.
type AmbiguityError struct {
	Search  string
	Matches []Match
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%v: %q matches %d lines", ErrAmbiguous, e.Search, len(e.Matches))
}

// Unwrap lets errors.Is(err, ErrAmbiguous) work on the carried taxonomy.
func (e *AmbiguityError) Unwrap() error { return ErrAmbiguous }
