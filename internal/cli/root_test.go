package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amenk/import-product/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "rewrites", cmd.Use)
	assert.Contains(t, cmd.Long, "permanent redirects")
}

func TestRootCommandVersion(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), ir.EngineVersion)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"seed", "plan", "reconcile", "list", "resolve", "journal", "prune", "validate", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "db", "log-file"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "flag --%s", name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestReconcileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	reconcileCmd, _, err := cmd.Find([]string{"reconcile"})
	require.NoError(t, err)

	assert.Equal(t, "false", reconcileCmd.Flags().Lookup("dry-run").DefValue)
	assert.Equal(t, "0", reconcileCmd.Flags().Lookup("workers").DefValue)
	assert.Equal(t, "-1", reconcileCmd.Flags().Lookup("max-failures").DefValue)
	require.NotNil(t, reconcileCmd.Flags().Lookup("kinds"))
}

func TestPlanCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	planCmd, _, err := cmd.Find([]string{"plan"})
	require.NoError(t, err)

	assert.Equal(t, "product", planCmd.Flags().Lookup("type").DefValue)
	assert.Equal(t, "1", planCmd.Flags().Lookup("store").DefValue)
	require.NotNil(t, planCmd.Flags().Lookup("entity"))
	require.NotNil(t, planCmd.Flags().Lookup("url-key"))
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "validate", "."})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSettings_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rewrites.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: from-config.db\nworkers: 6\nkinds_dir: kinds\n"), 0o644))

	opts := &RootOptions{ConfigFile: cfgPath, Database: filepath.Join(dir, "flag.db")}
	cfg, err := opts.Settings()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flag.db"), cfg.Database)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "kinds", cfg.KindsDir)

	again, err := opts.Settings()
	require.NoError(t, err)
	assert.Same(t, cfg, again)
}

func TestSettings_BadConfig(t *testing.T) {
	opts := &RootOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := opts.Settings()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLogger_LogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rewrites.log")
	opts := &RootOptions{LogFile: logPath}

	stderr := &bytes.Buffer{}
	logger := opts.Logger(stderr)
	logger.Info("batch starting", "rows", 3)
	require.NoError(t, opts.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "batch starting")
	assert.Contains(t, string(data), "rows=3")
	assert.Empty(t, stderr.String())
}

func TestLogger_Verbose(t *testing.T) {
	buf := &bytes.Buffer{}
	opts := &RootOptions{Verbose: true}
	opts.Logger(buf).Debug("opening database", "path", "x.db")
	assert.Contains(t, buf.String(), "level=DEBUG")

	quiet := &bytes.Buffer{}
	(&RootOptions{}).Logger(quiet).Debug("opening database")
	assert.Empty(t, quiet.String())
}
