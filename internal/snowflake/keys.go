package snowflake

import (
	"crypto/rsa"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"

	"flakelab/pkg/errors"
)

// LoadPrivateKey reads a PEM encoded RSA key for key-pair authentication.
// Encrypted keys need a passphrase.
func LoadPrivateKey(path, passphrase string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path) // #nosec G304 - key path comes from the connection profile
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileNotFound, "Failed to read private key").
			WithContext("path", path)
	}
	return ParsePrivateKey(data, passphrase)
}

// ParsePrivateKey decodes PEM data into an RSA key
func ParsePrivateKey(data []byte, passphrase string) (*rsa.PrivateKey, error) {
	var (
		raw interface{}
		err error
	)
	if passphrase != "" {
		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(data, []byte(passphrase))
	} else {
		raw, err = ssh.ParseRawPrivateKey(data)
	}
	if err != nil {
		if _, ok := err.(*ssh.PassphraseMissingError); ok {
			return nil, errors.New(errors.ErrCodeCredentialMissing, "Private key is encrypted").
				WithSuggestions("Set private_key_passphrase in the connection profile")
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Failed to parse private key")
	}

	key, ok := raw.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "Private key must be RSA").
			WithContext("type", fmt.Sprintf("%T", raw))
	}
	return key, nil
}
