package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flakelab/internal/lab"
	"flakelab/internal/testutil"
)

// execute runs the root command in an isolated home with file logging off
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := testutil.NewTestHelper(t).IsolatedHome()
	t.Setenv("FLAKELAB_CONFIG", filepath.Join(home, ".flakelab", "config.yaml"))

	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs(append([]string{"--log-file", "", "--quiet"}, args...))
	err := rootCmd.Execute()
	return b.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	output, err := execute(t, "--help")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rootCmd.Flags().Set("help", "false") })

	assert.Contains(t, output, "flakelab")
	assert.Contains(t, output, "Available Commands:")
	for _, name := range []string{"deploy", "validate", "cleanup", "lab", "export", "connections", "credentials", "settings", "serve", "history", "version"} {
		assert.Contains(t, output, name)
	}
}

func TestInvalidCommand(t *testing.T) {
	_, err := execute(t, "invalid-command")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "flakelab version dev")
}

func TestEnumFlagsRejectBadValues(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"lab", "--mode", "bogus"}, "must be one of full|quick|cleanup|validate"},
		{[]string{"deploy", "--variant", "bogus"}, "must be one of markets|dual-tool"},
		{[]string{"export", "--variant", "bogus"}, "must be one of markets|dual-tool|retail"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCleanupRejectsUnknownLevel(t *testing.T) {
	_, err := execute(t, "cleanup", "everything", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "everything")
}

// resetConnectionFlag undoes --connection from earlier Execute calls
func resetConnectionFlag(t *testing.T) {
	t.Helper()
	reset := func() {
		f := rootCmd.PersistentFlags().Lookup("connection")
		_ = f.Value.Set("default")
		f.Changed = false
	}
	reset()
	t.Cleanup(reset)
}

func TestLabConnectionDefault(t *testing.T) {
	resetConnectionFlag(t)

	_, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "default", appConfig.DefaultConnection)
	assert.Equal(t, lab.DefaultConnection, connectionOr(lab.DefaultConnection))

	t.Run("environment", func(t *testing.T) {
		t.Setenv("FLAKELAB_DEFAULT_CONNECTION", "from_env")
		_, err := execute(t, "version")
		require.NoError(t, err)
		assert.Equal(t, "from_env", connectionOr(lab.DefaultConnection))
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flakelab.yaml")
		require.NoError(t, os.WriteFile(path, []byte("default_connection: team\n"), 0o600))
		t.Cleanup(func() { cfgFile = "" })

		_, err := execute(t, "--config", path, "version")
		require.NoError(t, err)
		assert.Equal(t, "team", connectionOr(lab.DefaultConnection))
	})

	t.Run("flag", func(t *testing.T) {
		_, err := execute(t, "--connection", "mine", "version")
		require.NoError(t, err)
		assert.Equal(t, "mine", connectionOr(lab.DefaultConnection))
	})
}

func TestExportRecordsHistory(t *testing.T) {
	resetConnectionFlag(t)
	out := filepath.Join(t.TempDir(), "fixtures")

	output, err := execute(t, "--connection_name", "demo", "export", "--variant", "dual-tool", "--out", out, "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, "demo", appConfig.DefaultConnection)
	assert.Contains(t, output, "earnings_call_transcripts")

	for _, table := range []string{"companies", "earnings_data", "research_reports", "earnings_call_transcripts"} {
		_, err := os.Stat(filepath.Join(out, table+".parquet"))
		assert.NoError(t, err, table)
	}

	// Same HOME so the ledger is shared
	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetArgs([]string{"history"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, b.String(), "export")
	assert.Contains(t, b.String(), "dual-tool")
	assert.Contains(t, b.String(), "succeeded")
}

func TestHistoryEmpty(t *testing.T) {
	output, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, output, "No runs recorded yet")
}

func TestResolvePrecedence(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("connection", "default", "")
	v := viper.New()

	assert.Equal(t, "from_config", resolve(v, flags, "default_connection", "connection", "from_config"))

	t.Setenv("FLAKELAB_DEFAULT_CONNECTION", "from_env")
	v.SetEnvPrefix("FLAKELAB")
	v.AutomaticEnv()
	assert.Equal(t, "from_env", resolve(v, flags, "default_connection", "connection", "from_config"))

	require.NoError(t, flags.Set("connection", "from_flag"))
	assert.Equal(t, "from_flag", resolve(v, flags, "default_connection", "connection", "from_config"))
}

func TestNormalizeConnectionAlias(t *testing.T) {
	assert.Equal(t, pflag.NormalizedName("connection"), normalizeFlag(nil, "connection_name"))
	assert.Equal(t, pflag.NormalizedName("log-level"), normalizeFlag(nil, "log-level"))
}
