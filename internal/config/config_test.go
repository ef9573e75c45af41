package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points both config scopes at throwaway directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestDefaults(t *testing.T) {
	var cfg Config

	assert.Equal(t, filepath.Join("/var/lib/safechange", "backups"), cfg.BackupDir(DefaultStateDir))
	assert.Equal(t, filepath.Join("/var/lib/safechange", "activity.log"), cfg.LogFile(DefaultStateDir))
	assert.Equal(t, filepath.Join("/var/lib/safechange", "audit.db"), cfg.LogDB(DefaultStateDir))
	assert.Equal(t, DefaultTag, cfg.Tag())
	assert.Equal(t, DefaultScheme, cfg.Scheme())
	assert.True(t, cfg.BackupAlways())
}

func TestAccessors_Configured(t *testing.T) {
	cfg := Config{
		Backup: Backup{
			Dir:    strPtr("/srv/backups"),
			Tag:    strPtr("CHG-1042"),
			Scheme: strPtr("timestamp"),
			Always: boolPtr(false),
		},
		Log: Log{File: strPtr("/var/log/changes.log")},
	}

	assert.Equal(t, "/srv/backups", cfg.BackupDir("/ignored"))
	assert.Equal(t, "/var/log/changes.log", cfg.LogFile("/ignored"))
	assert.Equal(t, "CHG-1042", cfg.Tag())
	assert.Equal(t, "timestamp", cfg.Scheme())
	assert.False(t, cfg.BackupAlways())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "empty", cfg: Config{}, ok: true},
		{name: "sequential scheme", cfg: Config{Backup: Backup{Scheme: strPtr("sequential")}}, ok: true},
		{name: "timestamp scheme", cfg: Config{Backup: Backup{Scheme: strPtr("timestamp")}}, ok: true},
		{name: "unknown scheme", cfg: Config{Backup: Backup{Scheme: strPtr("rolling")}}, ok: false},
		{name: "tag with slash", cfg: Config{Backup: Backup{Tag: strPtr("a/b")}}, ok: false},
		{name: "tag with space", cfg: Config{Backup: Backup{Tag: strPtr("a b")}}, ok: false},
		{name: "empty tag", cfg: Config{Backup: Backup{Tag: strPtr("")}}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidValue)
			}
		})
	}
}

func TestLoad_MissingFilesGiveDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, cfg.Scope())
	assert.Equal(t, DefaultTag, cfg.Tag())
}

func TestLoad_LocalWinsOverGlobal(t *testing.T) {
	isolate(t)

	global, err := LoadScope(ScopeGlobal)
	require.NoError(t, err)
	global.Backup.Tag = strPtr("global-tag")
	require.NoError(t, global.Save())

	local, err := LoadScope(ScopeLocal)
	require.NoError(t, err)
	local.Backup.Tag = strPtr("local-tag")
	require.NoError(t, local.Save())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ScopeLocal, cfg.Scope())
	assert.Equal(t, "local-tag", cfg.Tag())
}

func TestSaveAndReload(t *testing.T) {
	isolate(t)

	cfg, err := LoadScope(ScopeLocal)
	require.NoError(t, err)
	cfg.Backup.Scheme = strPtr("timestamp")
	cfg.Backup.Always = boolPtr(false)
	require.NoError(t, cfg.Save())

	got, err := LoadScope(ScopeLocal)
	require.NoError(t, err)
	assert.Equal(t, "timestamp", got.Scheme())
	assert.False(t, got.BackupAlways())
}

func TestLoad_InvalidValueRejected(t *testing.T) {
	isolate(t)

	require.NoError(t, os.MkdirAll(".safechange", 0o755))
	require.NoError(t, os.WriteFile(LocalPath(), []byte("backup:\n  scheme: rolling\n"), 0o644))

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestGetSet(t *testing.T) {
	isolate(t)

	cfg, err := LoadScope(ScopeLocal)
	require.NoError(t, err)

	require.NoError(t, cfg.Set("backup.tag", "CHG-7"))
	require.NoError(t, cfg.Set("backup.always", "false"))

	v, err := cfg.Get("backup.tag")
	require.NoError(t, err)
	assert.Equal(t, "CHG-7", v)

	assert.False(t, cfg.BackupAlways())

	_, err = cfg.Get("backup.bogus")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.ErrorIs(t, cfg.Set("backup.bogus", "x"), ErrUnknownKey)
}
