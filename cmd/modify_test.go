package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModify_SingleMatch(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\nb=2\n")

	out := env.run(append(env.asUser("CHG-1042"), "modify", path, "a=1", "a=9")...)

	env.contains(out, "Modified")
	env.contains(out, "- a=1")
	env.contains(out, "+ a=9")
	env.equals(env.read(path), "a=9\nb=2")

	// The backup holds the pre-edit content under the change tag.
	bak := filepath.Join(env.state, "backups", "app.conf.CHG-1042_1.bak")
	env.equals(env.read(bak), "a=1\nb=2")

	// One activity log record for the edit.
	log := env.activityLog()
	env.contains(log, "op=modify")
	env.contains(log, "actor="+env.user)
	env.contains(log, "target: "+path)
	env.contains(log, "result: ok")
}

func TestModify_AmbiguousRefused(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "x\nx\n")

	out, err := env.runErr(append(env.asUser("CHG-1042"), "modify", path, "x", "y")...)
	require.Error(t, err)

	// The collision list names both lines.
	env.contains(out, "line 1: x")
	env.contains(out, "line 2: x")

	// File untouched; the backup was still taken before matching.
	env.equals(env.read(path), "x\nx")
	bak := filepath.Join(env.state, "backups", "app.conf.CHG-1042_1.bak")
	env.equals(env.read(bak), "x\nx")

	env.contains(env.activityLog(), "result: FAILED")
}

func TestModify_NoMatchIsBenign(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\n")

	out := env.run(append(env.asUser("CHG-1042"), "modify", path, "missing", "x")...)

	env.contains(out, "no lines match")
	env.equals(env.read(path), "a=1")
	env.contains(env.activityLog(), "result: ok")
}

func TestModify_ReplaceWithSelf(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\n")

	out := env.run(append(env.asUser("CHG-1042"), "modify", path, "a=1", "a=1")...)
	env.contains(out, "unchanged")
	env.equals(env.read(path), "a=1")
}

func TestModify_IdentityMismatch(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\n")

	out, err := env.runErr("-u", "not-"+env.user, "-t", "CHG-1042", "modify", path, "a=1", "a=9")
	require.Error(t, err)
	env.contains(out, "change declared for")
	env.equals(env.read(path), "a=1")
}

func TestModify_MissingIdentity(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\n")

	_, err := env.runErr("-t", "CHG-1042", "modify", path, "a=1", "a=9")
	require.Error(t, err)
	env.equals(env.read(path), "a=1")
}

func TestModify_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runErr(append(env.asUser("CHG-1042"), "modify", filepath.Join(env.work, "missing.conf"), "a", "b")...)
	require.Error(t, err)
}

func TestModify_RepeatedEditsIncrementVersion(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\n")

	env.run(append(env.asUser("CHG-1042"), "modify", path, "a=1", "a=2")...)
	env.run(append(env.asUser("CHG-1042"), "modify", path, "a=2", "a=3")...)

	env.equals(env.read(filepath.Join(env.state, "backups", "app.conf.CHG-1042_1.bak")), "a=1")
	env.equals(env.read(filepath.Join(env.state, "backups", "app.conf.CHG-1042_2.bak")), "a=2")
	env.equals(env.read(path), "a=3")
}

func TestModify_JSONOutput(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "a=1\n")

	out := env.run(append(env.asUser("CHG-1042"), "-o", "json", "modify", path, "a=1", "a=9")...)

	var result struct {
		Path    string `json:"path"`
		Backup  string `json:"backup"`
		Changed bool   `json:"changed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, path, result.Path)
	assert.True(t, result.Changed)
	assert.Contains(t, result.Backup, "app.conf.CHG-1042_1.bak")
}

func TestModify_JSONError(t *testing.T) {
	env := newTestEnv(t)
	path := env.write("app.conf", "x\nx\n")

	out, err := env.runErr(append(env.asUser("CHG-1042"), "-o", "json", "modify", path, "x", "y")...)
	require.Error(t, err)

	var result struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Contains(t, result.Error, "matches")
}
