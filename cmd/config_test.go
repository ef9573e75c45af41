package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ListShowsDefaults(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("config")
	env.contains(out, "backup.scheme: sequential")
	env.contains(out, "backup.tag: change")
	env.contains(out, "backup.always: true")
}

func TestConfig_SetAndGet(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("config", "--local", "backup.tag", "CHG-7")
	env.contains(out, "backup.tag = CHG-7 (local)")

	// The local file now exists and wins over global.
	_, err := os.Stat(filepath.Join(env.work, ".safechange", "config.yaml"))
	require.NoError(t, err)

	out = env.run("config", "backup.tag")
	env.equals(out, "CHG-7")
}

func TestConfig_UnknownKey(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.runErr("config", "backup.bogus")
	require.Error(t, err)
	env.contains(out, "unknown config key")
}

func TestConfig_InvalidScheme(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.runErr("config", "--local", "backup.scheme", "rolling")
	require.Error(t, err)
	env.contains(out, "sequential or timestamp")
}

func TestConfig_TimestampSchemeChangesBackupNaming(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\n")

	env.run("config", "--local", "backup.scheme", "timestamp")
	env.run(append(env.asUser("CHG-1042"), "modify", path, "a=1", "a=9")...)

	matches, err := filepath.Glob(filepath.Join(env.state, "backups", "app.conf.bak.*"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	env.equals(env.read(matches[0]), "a=1")

	// And rollback still finds it.
	env.run("rollback", path)
	env.equals(env.read(path), "a=1")
}

func TestConfig_TagFromConfigUsedWhenFlagAbsent(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\n")

	env.run("config", "--local", "backup.tag", "CHG-7")
	env.run("-u", env.user, "modify", path, "a=1", "a=9")

	bak := filepath.Join(env.state, "backups", "app.conf.CHG-7_1.bak")
	env.equals(env.read(bak), "a=1")
}

func TestConfig_BackupAlwaysOffSkipsNoMatchBackup(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\n")

	env.run("config", "--local", "backup.always", "false")
	out := env.run(append(env.asUser("CHG-1042"), "modify", path, "missing", "x")...)
	env.contains(out, "no lines match")

	matches, err := filepath.Glob(filepath.Join(env.state, "backups", "*.bak"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
