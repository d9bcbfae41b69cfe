package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rewrites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, 0, cfg.MaxFailures)
	assert.Empty(t, cfg.KindsDir)
	assert.Empty(t, cfg.File)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
database: /var/lib/rewrites/catalog.db
kinds_dir: ./kinds
workers: 8
max_failures: 25
log_file: /var/log/rewrites.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/rewrites/catalog.db", cfg.Database)
	assert.Equal(t, "./kinds", cfg.KindsDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 25, cfg.MaxFailures)
	assert.Equal(t, "/var/log/rewrites.log", cfg.LogFile)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_SearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rewrites.yaml"), []byte("workers: 2\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.NotEmpty(t, cfg.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "workers: 8\ndatabase: file.db\n")
	t.Setenv("REWRITES_WORKERS", "3")
	t.Setenv("REWRITES_DATABASE", "env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "env.db", cfg.Database)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"zero workers", "workers: 0\n", "workers must be at least 1"},
		{"negative budget", "max_failures: -1\n", "max_failures must be non-negative"},
		{"malformed yaml", "workers: [\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
