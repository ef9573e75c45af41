// target.go implements the pre-flight checks every mutating operation runs
// before touching a file: declared identity, file existence, writability.
// All checks happen before any backup or mutation, so a refused operation
// leaves no trace beyond its audit entry.

package change

import (
	"fmt"
	"os"

	"github.com/jpl-au/safechange/internal/identity"
)

// CheckIdentity verifies that the invoking identity matches the declared
// operating identity.
func CheckIdentity(invoker, declared identity.Identity) error {
	if declared == "" {
		return fmt.Errorf("%w: operating identity is required", ErrValidation)
	}
	if !identity.Matches(invoker, declared) {
		return fmt.Errorf("%w: running as %q, change declared for %q", ErrPermission, invoker, declared)
	}
	return nil
}

// CheckTarget verifies that the target file exists and is writable by the
// invoking process. The file must pre-exist: this tool edits files, it does
// not create them.
func CheckTarget(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("%w: stat %s: %v", ErrIO, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrValidation, path)
	}

	// Probe for write access rather than decoding mode bits - the probe is
	// what the OS will actually enforce (ACLs, read-only mounts).
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: %s is not writable", ErrPermission, path)
	}
	return f.Close()
}
