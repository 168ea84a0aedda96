// Package connections reads named Snowflake connection profiles from
// connections.toml, the file shared with the Snowflake CLI.
package connections

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"flakelab/pkg/errors"
)

// FileName is the profile file looked up in each search directory
const FileName = "connections.toml"

// Connection is one named profile. Empty keys are left empty so callers can
// apply their own defaults.
type Connection struct {
	Name                 string
	Account              string
	User                 string
	Password             string
	Warehouse            string
	Database             string
	Schema               string
	Role                 string
	Authenticator        string
	PrivateKeyPath       string
	PrivateKeyPassphrase string
}

// File is a parsed connections.toml
type File struct {
	Path                  string
	DefaultConnectionName string
	connections           map[string]Connection
}

// SearchPaths lists candidate locations in lookup order
func SearchPaths() []string {
	var paths []string
	if home := os.Getenv("SNOWFLAKE_HOME"); home != "" {
		paths = append(paths, filepath.Join(home, FileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "snowflake", FileName),
			filepath.Join(home, "Library", "Application Support", "snowflake", FileName),
			filepath.Join(home, "AppData", "Local", "snowflake", FileName),
		)
	}
	return append(paths, FileName)
}

// Locate returns the first connections.toml that exists
func Locate() (string, error) {
	paths := SearchPaths()
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", errors.ConfigNotFound("connections.toml not found", paths...)
}

// Load parses the profiles at path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from Locate or the user
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound("connections.toml not found", path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigPermission, "failed to read connections file").
			WithContext("path", path)
	}

	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid connections file").
			WithContext("path", path).
			WithSuggestions("Check the TOML syntax of the file")
	}

	f := &File{Path: path, connections: make(map[string]Connection)}
	for name, value := range raw {
		switch v := value.(type) {
		case string:
			if name == "default_connection_name" {
				f.DefaultConnectionName = v
			}
		case map[string]interface{}:
			f.connections[name] = fromTable(name, v)
		}
	}
	return f, nil
}

// LoadDefault locates and parses connections.toml
func LoadDefault() (*File, error) {
	path, err := Locate()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Get returns the named profile. An empty name falls back to
// default_connection_name.
func (f *File) Get(name string) (Connection, error) {
	if name == "" {
		name = f.DefaultConnectionName
	}
	c, ok := f.connections[name]
	if !ok {
		return Connection{}, errors.New(errors.ErrCodeConfigNotFound, "connection not found").
			WithContext("connection", name).
			WithContext("path", f.Path).
			WithSuggestions(
				"Run 'flakelab connections list' to see available connections",
				"Add a ["+name+"] section to "+f.Path,
			)
	}
	return c, nil
}

// Names returns the profile names, sorted
func (f *File) Names() []string {
	names := make([]string, 0, len(f.connections))
	for name := range f.connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the profile can authenticate
func (c Connection) Validate() error {
	var missing []string
	if c.Account == "" {
		missing = append(missing, "account")
	}
	if c.User == "" {
		missing = append(missing, "user")
	}
	if c.Password == "" && c.PrivateKeyPath == "" && !c.UsesBrowser() {
		missing = append(missing, "password or private_key_path")
	}
	if len(missing) > 0 {
		return errors.ValidationError("connection", c.Name, "missing "+strings.Join(missing, ", "))
	}
	return nil
}

// UsesBrowser reports whether the profile authenticates through SSO
func (c Connection) UsesBrowser() bool {
	return strings.EqualFold(c.Authenticator, "externalbrowser")
}

func fromTable(name string, t map[string]interface{}) Connection {
	get := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := t[k]; ok && v != nil {
				if s, ok := v.(string); ok && s != "" {
					return s
				}
			}
		}
		return ""
	}
	return Connection{
		Name:                 name,
		Account:              get("account"),
		User:                 get("user", "username"),
		Password:             get("password"),
		Warehouse:            get("warehouse"),
		Database:             get("database"),
		Schema:               get("schema"),
		Role:                 get("role"),
		Authenticator:        get("authenticator"),
		PrivateKeyPath:       get("private_key_path", "private_key_file"),
		PrivateKeyPassphrase: get("private_key_passphrase", "private_key_file_pwd"),
	}
}
