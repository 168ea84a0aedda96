package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"flakelab/internal/connections"
	"flakelab/pkg/errors"
)

func TestFileCredentialManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "credentials")

	t.Run("Create credential manager", func(t *testing.T) {
		cm, err := NewFileCredentialManager(dir)
		require.NoError(t, err)
		assert.False(t, cm.useKeyring)
		assert.Len(t, cm.masterKey, keySize)
		assert.Equal(t, "encrypted file", cm.Backend())
	})

	t.Run("Store and retrieve password", func(t *testing.T) {
		cm, err := NewFileCredentialManager(dir)
		require.NoError(t, err)

		require.NoError(t, cm.SetPassword("demo_connection", "secret123"))

		password, err := cm.Password("demo_connection")
		require.NoError(t, err)
		assert.Equal(t, "secret123", password)

		// Value on disk is not the plaintext
		data, err := os.ReadFile(cm.getCredentialPath("demo_connection"))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "secret123")
	})

	t.Run("List passwords", func(t *testing.T) {
		cm, err := NewFileCredentialManager(dir)
		require.NoError(t, err)
		require.NoError(t, cm.SetPassword("b_conn", "x"))
		require.NoError(t, cm.SetPassword("a_conn", "y"))

		names, err := cm.ListPasswords()
		require.NoError(t, err)
		assert.Contains(t, names, "a_conn")
		assert.Contains(t, names, "b_conn")
		assert.True(t, len(names) >= 2)
	})

	t.Run("Delete password", func(t *testing.T) {
		cm, err := NewFileCredentialManager(dir)
		require.NoError(t, err)

		require.NoError(t, cm.SetPassword("temp", "temp123"))
		require.NoError(t, cm.DeletePassword("temp"))

		_, err = cm.Password("temp")
		assert.Equal(t, errors.ErrCodeNotFound, errors.GetErrorCode(err))
		assert.Equal(t, errors.ErrCodeNotFound, errors.GetErrorCode(cm.DeletePassword("temp")))
	})

	t.Run("Empty values rejected", func(t *testing.T) {
		cm, err := NewFileCredentialManager(dir)
		require.NoError(t, err)
		assert.Error(t, cm.SetPassword("", "x"))
		assert.Error(t, cm.SetPassword("conn", ""))
	})

	t.Run("Encryption and decryption", func(t *testing.T) {
		cm, err := NewFileCredentialManager(dir)
		require.NoError(t, err)

		encrypted, err := cm.encrypt("sensitive data")
		require.NoError(t, err)
		assert.NotEqual(t, "sensitive data", encrypted)

		decrypted, err := cm.decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, "sensitive data", decrypted)
	})
}

func TestCredentialManagerSecurity(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "credentials")

	t.Run("Master key is reused", func(t *testing.T) {
		cm1, err := NewFileCredentialManager(dir)
		require.NoError(t, err)
		cm2, err := NewFileCredentialManager(dir)
		require.NoError(t, err)

		assert.Equal(t, cm1.masterKey, cm2.masterKey)
	})

	t.Run("File permissions", func(t *testing.T) {
		cm, err := NewFileCredentialManager(dir)
		require.NoError(t, err)
		require.NoError(t, cm.SetPassword("perm-test", "secret"))

		info, err := os.Stat(cm.getCredentialPath("perm-test"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("Tampering is detected", func(t *testing.T) {
		cm, err := NewFileCredentialManager(dir)
		require.NoError(t, err)
		require.NoError(t, cm.SetPassword("tamper-test", "secret"))

		cred, err := cm.loadCredentialFile("tamper-test")
		require.NoError(t, err)
		first := "A"
		if cred.Value[0] == 'A' {
			first = "B"
		}
		cred.Value = first + cred.Value[1:]
		require.NoError(t, cm.saveCredentialFile(cred))

		_, err = cm.Password("tamper-test")
		assert.Error(t, err)
	})
}

func TestKeyringCredentialManager(t *testing.T) {
	keyring.MockInit()
	cm := &CredentialManager{useKeyring: true}

	require.NoError(t, cm.SetPassword("default", "from-keyring"))
	password, err := cm.Password("default")
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", password)
	assert.Equal(t, "keyring", cm.Backend())

	require.NoError(t, cm.DeletePassword("default"))
	_, err = cm.Password("default")
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetErrorCode(err))
}

func TestResolvePassword(t *testing.T) {
	cm, err := NewFileCredentialManager(filepath.Join(t.TempDir(), "credentials"))
	require.NoError(t, err)
	require.NoError(t, cm.SetPassword("default", "stored"))

	tests := []struct {
		name string
		conn connections.Connection
		want string
	}{
		{"fills missing password", connections.Connection{Name: "default"}, "stored"},
		{"keeps explicit password", connections.Connection{Name: "default", Password: "inline"}, "inline"},
		{"key pair untouched", connections.Connection{Name: "default", PrivateKeyPath: "/k.p8"}, ""},
		{"browser untouched", connections.Connection{Name: "default", Authenticator: "externalbrowser"}, ""},
		{"nothing stored", connections.Connection{Name: "other"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cm.ResolvePassword(tt.conn).Password)
		})
	}
}
