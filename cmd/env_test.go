// Testing Strategy Design Decision:
//
// The cmd/ package contains CLI integration tests that exercise the full
// stack: command parsing -> operation packages -> backup store -> audit log.
//
// The operation packages (modify, insert, restore, backup, ...) carry their
// own unit tests; the tests here cover the command wiring on top of them:
// flag resolution, identity declaration, exit codes, JSON output, and the
// activity log entries each command leaves behind.

package cmd

import (
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the safechange binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "safechange-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "safechange"
		if os.PathSeparator == '\\' {
			binaryName = "safechange.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Find project root (parent of cmd/)
		wd := mustGetwd()
		projectRoot := filepath.Dir(wd)

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// currentUser returns the invoking OS username, which is what the -u flag
// must declare for an operation to be permitted.
func currentUser(t *testing.T) string {
	t.Helper()
	u, err := user.Current()
	if err != nil {
		t.Fatalf("cannot determine current user: %v", err)
	}
	return u.Username
}

// testEnv holds test environment state: a work directory for target files
// and local config, and a separate state directory for backups and logs.
type testEnv struct {
	t      *testing.T
	work   string
	state  string
	home   string
	binary string
	user   string
}

// newTestEnv creates a temporary work directory and a throwaway state
// directory. Every invocation passes --dir and a fake HOME so no test
// touches /var/lib/safechange or the real user config.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	return &testEnv{
		t:      t,
		work:   t.TempDir(),
		state:  t.TempDir(),
		home:   t.TempDir(),
		binary: buildBinary(t),
		user:   currentUser(t),
	}
}

// write creates a target file in the work directory and returns its path.
func (e *testEnv) write(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.work, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// read returns the content of a file.
func (e *testEnv) read(path string) string {
	e.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		e.t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// activityLog returns the text activity log content, or "" if no entry has
// been written yet.
func (e *testEnv) activityLog() string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.state, "activity.log"))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		e.t.Fatalf("read activity log: %v", err)
	}
	return string(data)
}

// run executes safechange with the given args and returns combined output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("safechange %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes safechange and returns combined output and any error.
// The state directory is always passed via --dir.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()

	cmd := exec.Command(e.binary, append([]string{"--dir", e.state}, args...)...)
	cmd.Dir = e.work
	cmd.Env = append(os.Environ(), "HOME="+e.home)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// runStdin executes safechange with stdin input.
func (e *testEnv) runStdin(input string, args ...string) string {
	e.t.Helper()

	cmd := exec.Command(e.binary, append([]string{"--dir", e.state}, args...)...)
	cmd.Dir = e.work
	cmd.Env = append(os.Environ(), "HOME="+e.home)
	cmd.Stdin = strings.NewReader(input)
	out, err := cmd.CombinedOutput()
	if err != nil {
		e.t.Fatalf("safechange %v failed: %v\noutput: %s", args, err, out)
	}
	return string(out)
}

// asUser returns the identity flags declaring the invoking user and a
// change tag, the common preamble of most operations.
func (e *testEnv) asUser(tag string) []string {
	return []string{"-u", e.user, "-t", tag}
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// equals checks if output equals expected string (trimmed).
func (e *testEnv) equals(output, expected string) {
	e.t.Helper()
	assert.Equal(e.t, strings.TrimSpace(expected), strings.TrimSpace(output))
}
