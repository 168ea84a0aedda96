package connections

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flakelab/pkg/errors"
)

const sampleFile = `
default_connection_name = "demo_connection"

[default]
account = "xy12345.us-east-1"
user = "DEMO_USER"
password = "secret"
warehouse = "COMPUTE_WH"
role = ""

[demo_connection]
account = "xy12345.us-east-1"
user = "ENGINEER"
private_key_file = "/keys/rsa_key.p8"
private_key_file_pwd = "hunter2"
database = "DATA_ENG_DEMO"

[sso]
account = "xy12345"
user = "someone@example.com"
authenticator = "externalbrowser"
`

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), sampleFile)

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo_connection", f.DefaultConnectionName)
	assert.Equal(t, []string{"default", "demo_connection", "sso"}, f.Names())

	def, err := f.Get("default")
	require.NoError(t, err)
	assert.Equal(t, "default", def.Name)
	assert.Equal(t, "DEMO_USER", def.User)
	assert.Equal(t, "COMPUTE_WH", def.Warehouse)
	assert.Empty(t, def.Role)

	demo, err := f.Get("")
	require.NoError(t, err)
	assert.Equal(t, "ENGINEER", demo.User)
	assert.Equal(t, "/keys/rsa_key.p8", demo.PrivateKeyPath)
	assert.Equal(t, "hunter2", demo.PrivateKeyPassphrase)
}

func TestGetUnknownConnection(t *testing.T) {
	f, err := Load(writeFile(t, t.TempDir(), sampleFile))
	require.NoError(t, err)

	_, err = f.Get("prod")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigNotFound, errors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "connection not found")
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "[default\naccount = ")
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetErrorCode(err))
}

func TestLocate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	t.Run("nothing found lists search paths", func(t *testing.T) {
		t.Setenv("SNOWFLAKE_HOME", "")
		wd, _ := os.Getwd()
		require.NoError(t, os.Chdir(t.TempDir()))
		defer func() { _ = os.Chdir(wd) }()

		_, err := Locate()
		require.Error(t, err)

		var appErr *errors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, errors.ErrCodeConfigNotFound, appErr.Code)
		assert.Len(t, appErr.Context["searched"], 4)
	})

	t.Run("snowflake home wins", func(t *testing.T) {
		sfHome := t.TempDir()
		t.Setenv("SNOWFLAKE_HOME", sfHome)
		want := writeFile(t, sfHome, sampleFile)

		cfgDir := filepath.Join(home, ".config", "snowflake")
		require.NoError(t, os.MkdirAll(cfgDir, 0700))
		writeFile(t, cfgDir, sampleFile)

		got, err := Locate()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("home config dir", func(t *testing.T) {
		t.Setenv("SNOWFLAKE_HOME", "")
		got, err := Locate()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "snowflake", FileName), got)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		conn    Connection
		wantErr bool
	}{
		{"password", Connection{Account: "a", User: "u", Password: "p"}, false},
		{"private key", Connection{Account: "a", User: "u", PrivateKeyPath: "/k.p8"}, false},
		{"browser", Connection{Account: "a", User: "u", Authenticator: "EXTERNALBROWSER"}, false},
		{"no secret", Connection{Account: "a", User: "u"}, true},
		{"no account", Connection{User: "u", Password: "p"}, true},
		{"no user", Connection{Account: "a", Password: "p"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
