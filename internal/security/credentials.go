// Package security stores connection passwords outside connections.toml.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"

	"flakelab/internal/common"
	"flakelab/internal/connections"
	"flakelab/pkg/errors"
)

const (
	// Keyring service name
	keyringService = "flakelab"
	// Salt for key derivation
	saltSize = 32
	// Number of iterations for PBKDF2
	pbkdf2Iterations = 100000
	// Key size for AES-256
	keySize = 32

	credentialType = "password"
)

// CredentialManager handles secure storage and retrieval of connection passwords
type CredentialManager struct {
	useKeyring bool
	dir        string
	masterKey  []byte
}

// Credential represents a stored credential
type Credential struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Encrypted bool   `json:"encrypted"`
}

// NewCredentialManager uses the OS keyring when one is available and the
// encrypted store under ~/.flakelab/credentials otherwise
func NewCredentialManager() (*CredentialManager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigPermission, "cannot resolve home directory")
	}
	dir := filepath.Join(home, ".flakelab", "credentials")
	if isKeyringAvailable() {
		return &CredentialManager{useKeyring: true, dir: dir}, nil
	}
	return NewFileCredentialManager(dir)
}

// NewFileCredentialManager always uses the encrypted file store in dir
func NewFileCredentialManager(dir string) (*CredentialManager, error) {
	cm := &CredentialManager{dir: dir}
	key, err := cm.getMasterKey()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEncryptionFailed, "failed to initialize master key").
			WithContext("dir", dir)
	}
	cm.masterKey = key
	return cm, nil
}

// Backend names the storage in use
func (cm *CredentialManager) Backend() string {
	if cm.useKeyring {
		return "keyring"
	}
	return "encrypted file"
}

// SetPassword stores the password for a connection profile
func (cm *CredentialManager) SetPassword(connection, password string) error {
	if connection == "" || password == "" {
		return errors.New(errors.ErrCodeInvalidInput, "connection name and password are required")
	}
	cred := Credential{Name: connection, Type: credentialType, Value: password}
	if cm.useKeyring {
		return cm.storeInKeyring(cred)
	}
	return cm.storeEncrypted(cred)
}

// Password returns the stored password for a connection profile
func (cm *CredentialManager) Password(connection string) (string, error) {
	var (
		cred *Credential
		err  error
	)
	if cm.useKeyring {
		cred, err = cm.getFromKeyring(connection)
	} else {
		cred, err = cm.getEncrypted(connection)
	}
	if err != nil {
		return "", err
	}
	return cred.Value, nil
}

// DeletePassword removes the stored password
func (cm *CredentialManager) DeletePassword(connection string) error {
	if cm.useKeyring {
		if err := keyring.Delete(keyringService, connection); err != nil {
			if err == keyring.ErrNotFound {
				return errors.NotFound("credential", connection)
			}
			return errors.Wrap(err, errors.ErrCodeSecurityViolation, "failed to delete from keyring")
		}
		return nil
	}
	if err := os.Remove(cm.getCredentialPath(connection)); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("credential", connection)
		}
		return errors.Wrap(err, errors.ErrCodeFileOperation, "failed to delete credential file")
	}
	return nil
}

// ListPasswords returns the connections with a stored password. The keyring
// cannot be enumerated, so only the file store is listed.
func (cm *CredentialManager) ListPasswords() ([]string, error) {
	if cm.useKeyring {
		return nil, nil
	}
	entries, err := os.ReadDir(cm.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".cred") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".cred"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ResolvePassword fills in a missing password from the store. Profiles that
// authenticate with a key or the browser are returned unchanged, as are
// profiles with nothing stored.
func (cm *CredentialManager) ResolvePassword(c connections.Connection) connections.Connection {
	if c.Password != "" || c.PrivateKeyPath != "" || c.UsesBrowser() {
		return c
	}
	if password, err := cm.Password(c.Name); err == nil {
		c.Password = password
	}
	return c
}

// Keyring storage methods

func (cm *CredentialManager) storeInKeyring(cred Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if err := keyring.Set(keyringService, cred.Name, string(data)); err != nil {
		return errors.Wrap(err, errors.ErrCodeSecurityViolation, "failed to store in keyring").
			WithSuggestions("Set FLAKELAB_USE_KEYRING=false to use the encrypted file store")
	}
	return nil
}

func (cm *CredentialManager) getFromKeyring(name string) (*Credential, error) {
	data, err := keyring.Get(keyringService, name)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, errors.NotFound("credential", name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeSecurityViolation, "failed to read from keyring")
	}

	var cred Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	return &cred, nil
}

// Encrypted file storage methods

func (cm *CredentialManager) storeEncrypted(cred Credential) error {
	encrypted, err := cm.encrypt(cred.Value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeEncryptionFailed, "failed to encrypt credential")
	}
	cred.Value = encrypted
	cred.Encrypted = true
	return cm.saveCredentialFile(&cred)
}

func (cm *CredentialManager) getEncrypted(name string) (*Credential, error) {
	cred, err := cm.loadCredentialFile(name)
	if err != nil {
		return nil, err
	}

	if cred.Encrypted {
		decrypted, err := cm.decrypt(cred.Value)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeEncryptionFailed, "failed to decrypt credential").
				WithContext("connection", name)
		}
		cred.Value = decrypted
		cred.Encrypted = false
	}
	return cred, nil
}

// Encryption methods

func (cm *CredentialManager) encrypt(plaintext string) (string, error) {
	gcm, err := newGCM(cm.masterKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (cm *CredentialManager) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(cm.masterKey)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, encryptedData := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, encryptedData, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Helper methods

func (cm *CredentialManager) getMasterKey() ([]byte, error) {
	keyPath, err := common.ValidatePath(filepath.Join(cm.dir, ".master"), cm.dir)
	if err != nil {
		return nil, fmt.Errorf("invalid master key path: %w", err)
	}

	data, err := os.ReadFile(keyPath) // #nosec G304 - path is validated
	if err == nil {
		// Extract the key part (skip the salt)
		if len(data) != saltSize+keySize {
			return nil, fmt.Errorf("invalid master key file size")
		}
		return data[saltSize:], nil
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	// Derive key from machine-specific data
	key := pbkdf2.Key([]byte(getMachineID()), salt, pbkdf2Iterations, keySize, sha256.New)

	if err := os.MkdirAll(cm.dir, common.DirPermissionSecure); err != nil {
		return nil, err
	}
	keyData := append(salt, key...)
	if err := os.WriteFile(keyPath, keyData, common.FilePermissionSecure); err != nil {
		return nil, err
	}
	return key, nil
}

func (cm *CredentialManager) getCredentialPath(name string) string {
	return filepath.Join(cm.dir, name+".cred")
}

func (cm *CredentialManager) saveCredentialFile(cred *Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cm.dir, common.DirPermissionSecure); err != nil {
		return err
	}

	path, err := common.ValidatePath(cm.getCredentialPath(cred.Name), cm.dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSecurityViolation, "invalid credential file path")
	}
	return os.WriteFile(path, data, common.FilePermissionSecure) // #nosec G304
}

func (cm *CredentialManager) loadCredentialFile(name string) (*Credential, error) {
	path, err := common.ValidatePath(cm.getCredentialPath(name), cm.dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSecurityViolation, "invalid credential file path")
	}
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("credential", name)
		}
		return nil, err
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

// Platform-specific helpers

func isKeyringAvailable() bool {
	// Check if keyring usage is explicitly disabled
	if os.Getenv("FLAKELAB_USE_KEYRING") == "false" {
		return false
	}

	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	case "linux":
		// Check if a supported keyring backend is available
		if os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != "" {
			return true
		}
	}
	return false
}

func getMachineID() string {
	hostname, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}

	data := fmt.Sprintf("%s-%s-%s-%s", hostname, user, runtime.GOOS, runtime.GOARCH)
	hash := sha256.Sum256([]byte(data))
	return base64.StdEncoding.EncodeToString(hash[:])
}
