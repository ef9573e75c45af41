// Package backup manages the versioned backup store every mutating
// operation copies a file into before touching it.
//
// Backups live in a single flat directory and are named after the target
// file's basename plus either a sequential version scoped to a change tag
// (app.conf.CHG-1042_3.bak) or a creation timestamp
// (app.conf.bak.20260824-101500). A backup is immutable once written;
// retention and cleanup belong to external tooling.
//
// The directory is shared mutable state with no locking: two concurrent
// invocations can allocate the same version number or interleave writes.
// Each invocation is expected to run alone within a change window - see the
// package doc on internal/audit for the same caveat on the activity log.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jpl-au/safechange/internal/change"
)

// Scheme selects how backup files are named.
type Scheme string

const (
	// SchemeSequential names backups <base>.<tag>_<n>.bak with n allocated
	// per (file, tag) starting at 1.
	SchemeSequential Scheme = "sequential"
	// SchemeTimestamp names backups <base>.bak.<timestamp>.
	SchemeTimestamp Scheme = "timestamp"
)

// timeLayout is the timestamp used in backup names. Second resolution;
// Create retries with a counter suffix on collision.
const timeLayout = "20060102-150405"

// ParseScheme validates a scheme name from config or flags.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeSequential, SchemeTimestamp:
		return Scheme(s), nil
	}
	return "", fmt.Errorf("%w: unknown backup scheme %q (valid: sequential, timestamp)", change.ErrValidation, s)
}

// Handle identifies one backup on disk.
type Handle struct {
	Path    string    `json:"path"`
	Version int       `json:"version,omitempty"` // 0 for timestamped backups
	Created time.Time `json:"created"`
	Size    int64     `json:"size"`
}

// Store is a backup directory plus the naming strategy for new backups.
type Store struct {
	Dir    string
	Tag    string
	Scheme Scheme

	// Now is the clock for timestamped names. Tests override it.
	Now func() time.Time
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create copies path byte-for-byte into the store under the next versioned
// or timestamped name and returns its handle. The store directory is created
// on first use, world-writable: backups taken by a privileged identity must
// stay readable and restorable by unprivileged ones. That is a deliberate
// trade against permission hygiene, inherent to a shared backup directory.
func (s *Store) Create(path string) (Handle, error) {
	if err := os.MkdirAll(s.Dir, 0o777); err != nil {
		return Handle{}, fmt.Errorf("%w: create backup dir %s: %v", change.ErrIO, s.Dir, err)
	}
	// MkdirAll is subject to umask; force the mode on the leaf.
	_ = os.Chmod(s.Dir, 0o777)

	data, err := os.ReadFile(path)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: read %s: %v", change.ErrIO, path, err)
	}

	h, err := s.nextName(path)
	if err != nil {
		return Handle{}, err
	}
	if err := os.WriteFile(h.Path, data, 0o644); err != nil {
		return Handle{}, fmt.Errorf("%w: write backup %s: %v", change.ErrIO, h.Path, err)
	}
	h.Created = s.now()
	h.Size = int64(len(data))
	return h, nil
}

// nextName picks the destination path for a new backup of path.
func (s *Store) nextName(path string) (Handle, error) {
	base := filepath.Base(path)
	switch s.Scheme {
	case SchemeTimestamp:
		ts := s.now().Format(timeLayout)
		name := fmt.Sprintf("%s.bak.%s", base, ts)
		dest := filepath.Join(s.Dir, name)
		for n := 2; exists(dest); n++ {
			dest = filepath.Join(s.Dir, fmt.Sprintf("%s.bak.%s-%d", base, ts, n))
		}
		return Handle{Path: dest}, nil
	default:
		v, err := s.NextVersion(path)
		if err != nil {
			return Handle{}, err
		}
		name := fmt.Sprintf("%s.%s_%d.bak", base, s.Tag, v)
		return Handle{Path: filepath.Join(s.Dir, name), Version: v}, nil
	}
}

// List returns all backups of path in the store, oldest first. Both naming
// conventions are recognised regardless of the store's configured scheme, so
// a store switched from timestamped to sequential still finds old backups.
func (s *Store) List(path string) ([]Handle, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read backup dir %s: %v", change.ErrIO, s.Dir, err)
	}

	base := filepath.Base(path)
	seq := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `\..+_(\d+)\.bak$`)
	stamped := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `\.bak\..+$`)

	var out []Handle
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		var version int
		if m := seq.FindStringSubmatch(name); m != nil {
			version = atoiOrZero(m[1])
		} else if !stamped.MatchString(name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Handle{
			Path:    filepath.Join(s.Dir, name),
			Version: version,
			Created: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		if out[i].Version != out[j].Version {
			return out[i].Version < out[j].Version
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// Latest returns the most recently created backup of path.
func (s *Store) Latest(path string) (Handle, error) {
	backups, err := s.List(path)
	if err != nil {
		return Handle{}, err
	}
	if len(backups) == 0 {
		return Handle{}, fmt.Errorf("%w: no backups for %s", change.ErrNotFound, path)
	}
	return backups[len(backups)-1], nil
}

// Resolve validates an explicitly supplied backup path against the target
// file. The backup's name must contain the target's basename - a cheap
// relatedness check that catches restoring sshd_config over resolv.conf.
func (s *Store) Resolve(path, backupPath string) (Handle, error) {
	if !strings.Contains(filepath.Base(backupPath), filepath.Base(path)) {
		return Handle{}, fmt.Errorf("%w: backup %s is unrelated to %s", change.ErrValidation, backupPath, path)
	}
	info, err := os.Stat(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Handle{}, fmt.Errorf("%w: backup %s", change.ErrNotFound, backupPath)
		}
		return Handle{}, fmt.Errorf("%w: stat %s: %v", change.ErrIO, backupPath, err)
	}
	return Handle{Path: backupPath, Created: info.ModTime(), Size: info.Size()}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
