// version.go implements sequential version allocation.
//
// The next version for a (file, tag) pair is not persisted anywhere - it is
// recomputed on every allocation by scanning existing backup names and
// taking max+1. Derived state cannot drift from the directory contents, at
// the cost of being racy across concurrent invocations (documented on the
// package).

package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/jpl-au/safechange/internal/change"
)

// NextVersion returns the next backup version for path under the store's
// tag: one more than the highest existing version, or 1 when none exist.
// Names whose numeric suffix does not parse are ignored, not errors - a
// stray hand-made file in the backup dir must not block a change window.
func (s *Store) NextVersion(path string) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("%w: read backup dir %s: %v", change.ErrIO, s.Dir, err)
	}

	re := regexp.MustCompile(`^` + regexp.QuoteMeta(filepath.Base(path)+"."+s.Tag+"_") + `(\d+)\.bak$`)

	max := 0
	for _, e := range entries {
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil || v <= max {
			continue
		}
		max = v
	}
	return max + 1, nil
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
