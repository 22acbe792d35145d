package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.Projects)
	assert.NotNil(t, cfg.Projects)
	assert.Equal(t, 1000, cfg.ScrollbackLines)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval())
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := loadConfigFrom(filepath.Join(dir, ConfigFileName))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveThenLoadRoundTripsProjects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Shell = "/bin/zsh"
	cfg.Projects = append(cfg.Projects, Project{
		Name: "api",
		Path: "/src/api",
		Worktrees: []Worktree{
			{Name: "feature-x", Path: "/src/api/.workman/feature-x"},
		},
	})
	require.NoError(t, saveConfigTo(cfg, path))

	loaded := loadConfigFrom(path)
	require.Len(t, loaded.Projects, 1)
	assert.Equal(t, "api", loaded.Projects[0].Name)
	assert.Equal(t, "/src/api/.workman/feature-x", loaded.Projects[0].Worktrees[0].Path)
	assert.Equal(t, "/bin/zsh", loaded.Shell)

	_, err := os.Stat(filepath.Join(dir, "nested", lockFileName))
	assert.NoError(t, err, "lock file should sit next to the config")
}

func TestLoadConfigFillsZeroValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"projects":[{"name":"a","path":"/a"}],"scrollback_lines":0}`), 0644))

	cfg := loadConfigFrom(path)
	require.Len(t, cfg.Projects, 1)
	assert.NotNil(t, cfg.Projects[0].Worktrees)
	assert.Equal(t, 1000, cfg.ScrollbackLines)
	assert.Equal(t, 50, cfg.PollIntervalMs)
}

func TestLoadConfigBacksUpCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cfg := loadConfigFrom(path)
	assert.Equal(t, DefaultConfig(), cfg)

	matches, err := filepath.Glob(path + ".corrupt.*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFileLockExclusiveThenShared(t *testing.T) {
	dir := t.TempDir()
	lock := NewFileLock(filepath.Join(dir, ConfigFileName))

	require.NoError(t, lock.Lock())
	assert.Error(t, lock.Lock(), "relocking the same handle should fail")
	require.NoError(t, lock.Unlock())

	require.NoError(t, lock.RLock())
	require.NoError(t, lock.Unlock())
	assert.NoError(t, lock.Unlock(), "unlocking twice is a no-op")
}

func TestFileLockCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not", "yet")

	lock := NewFileLock(filepath.Join(dir, ConfigFileName))
	require.NoError(t, lock.RLock())
	assert.FileExists(t, filepath.Join(dir, lockFileName))
	require.NoError(t, lock.Unlock())

	require.NoError(t, lock.Lock())
	assert.Error(t, lock.RLock(), "a held lock cannot be taken again")
	require.NoError(t, lock.Unlock())
}
