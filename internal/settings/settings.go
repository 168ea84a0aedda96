// Package settings reads the environment-driven settings shared by the
// status server and the settings check command.
package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"flakelab/internal/connections"
	"flakelab/pkg/errors"
)

// Settings mirrors the variables of a .env file
type Settings struct {
	Account              string
	User                 string
	Password             string
	Role                 string
	Warehouse            string
	Database             string
	Schema               string
	PrivateKeyPath       string
	PrivateKeyPassphrase string
	Authenticator        string

	ServerPort    int
	ServerAddress string

	AppName               string
	AppVersion            string
	LogLevel              string
	DebugMode             bool
	SessionTimeoutMinutes int
	MaxConcurrentUsers    int
	QueryTimeoutSeconds   int
	MaxResultsPerPage     int
	CacheExpiryMinutes    int

	EmbeddingModel string
	SearchLimit    int
	ChunkSize      int
	ChunkOverlap   int

	AlphaVantageAPIKey string
	FinnhubAPIKey      string
}

var defaults = map[string]interface{}{
	"snowflake_role":          "CORTEX_USER_ROLE",
	"snowflake_warehouse":     "COMPUTE_WH",
	"snowflake_database":      "JPMC_MARKETS",
	"snowflake_schema":        "MARKET_INTELLIGENCE",
	"snowflake_authenticator": "snowflake",
	"server_port":             8501,
	"server_address":          "localhost",
	"app_name":                "JPMC Markets Intelligence",
	"app_version":             "1.0.0",
	"log_level":               "INFO",
	"debug_mode":              false,
	"session_timeout_minutes": 60,
	"max_concurrent_users":    100,
	"query_timeout_seconds":   300,
	"max_results_per_page":    1000,
	"cache_expiry_minutes":    15,
	"cortex_embedding_model":  "snowflake-arctic-embed-m",
	"cortex_search_limit":     50,
	"cortex_chunk_size":       1000,
	"cortex_chunk_overlap":    200,
}

// secretKeys are bound without defaults so AutomaticEnv still sees them
var secretKeys = []string{
	"snowflake_account",
	"snowflake_user",
	"snowflake_password",
	"snowflake_private_key_path",
	"snowflake_private_key_passphrase",
	"alpha_vantage_api_key",
	"finnhub_api_key",
}

// Load reads envFile when it exists, without overriding variables already
// set, then resolves every setting from the environment. An empty envFile
// means ".env".
func Load(envFile string) (*Settings, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read env file").
			WithContext("path", envFile)
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to bind "+key)
		}
	}

	return &Settings{
		Account:              v.GetString("snowflake_account"),
		User:                 v.GetString("snowflake_user"),
		Password:             v.GetString("snowflake_password"),
		Role:                 v.GetString("snowflake_role"),
		Warehouse:            v.GetString("snowflake_warehouse"),
		Database:             v.GetString("snowflake_database"),
		Schema:               v.GetString("snowflake_schema"),
		PrivateKeyPath:       v.GetString("snowflake_private_key_path"),
		PrivateKeyPassphrase: v.GetString("snowflake_private_key_passphrase"),
		Authenticator:        v.GetString("snowflake_authenticator"),

		ServerPort:    v.GetInt("server_port"),
		ServerAddress: v.GetString("server_address"),

		AppName:               v.GetString("app_name"),
		AppVersion:            v.GetString("app_version"),
		LogLevel:              strings.ToUpper(v.GetString("log_level")),
		DebugMode:             v.GetBool("debug_mode"),
		SessionTimeoutMinutes: v.GetInt("session_timeout_minutes"),
		MaxConcurrentUsers:    v.GetInt("max_concurrent_users"),
		QueryTimeoutSeconds:   v.GetInt("query_timeout_seconds"),
		MaxResultsPerPage:     v.GetInt("max_results_per_page"),
		CacheExpiryMinutes:    v.GetInt("cache_expiry_minutes"),

		EmbeddingModel: v.GetString("cortex_embedding_model"),
		SearchLimit:    v.GetInt("cortex_search_limit"),
		ChunkSize:      v.GetInt("cortex_chunk_size"),
		ChunkOverlap:   v.GetInt("cortex_chunk_overlap"),

		AlphaVantageAPIKey: v.GetString("alpha_vantage_api_key"),
		FinnhubAPIKey:      v.GetString("finnhub_api_key"),
	}, nil
}

// Validate reports every missing required setting at once
func (s *Settings) Validate() error {
	var missing []string
	if s.Account == "" {
		missing = append(missing, "SNOWFLAKE_ACCOUNT")
	}
	if s.User == "" {
		missing = append(missing, "SNOWFLAKE_USER")
	}
	if s.Password == "" && s.PrivateKeyPath == "" {
		missing = append(missing, "SNOWFLAKE_PASSWORD or SNOWFLAKE_PRIVATE_KEY_PATH")
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.ValidationError("settings", strings.Join(missing, ", "), "missing required settings").
		WithSuggestions("Set the variables in the environment or in .env")
}

// SessionParameters are applied to every session the server opens
func (s *Settings) SessionParameters() map[string]string {
	return map[string]string{
		"USE_CACHED_RESULT": "TRUE",
		"QUERY_TIMEOUT":     fmt.Sprintf("%d", s.QueryTimeoutSeconds),
		"TIMEZONE":          "UTC",
	}
}

// Connection converts the settings into a connection profile
func (s *Settings) Connection() connections.Connection {
	return connections.Connection{
		Name:                 "env",
		Account:              s.Account,
		User:                 s.User,
		Password:             s.Password,
		Warehouse:            s.Warehouse,
		Database:             s.Database,
		Schema:               s.Schema,
		Role:                 s.Role,
		Authenticator:        s.Authenticator,
		PrivateKeyPath:       s.PrivateKeyPath,
		PrivateKeyPassphrase: s.PrivateKeyPassphrase,
	}
}

// Addr is the listen address of the status server
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.ServerAddress, s.ServerPort)
}

// Public returns the settings that are safe to show
func (s *Settings) Public() map[string]interface{} {
	return map[string]interface{}{
		"app_name":                s.AppName,
		"app_version":             s.AppVersion,
		"account":                 s.Account,
		"user":                    s.User,
		"role":                    s.Role,
		"warehouse":               s.Warehouse,
		"database":                s.Database,
		"schema":                  s.Schema,
		"log_level":               s.LogLevel,
		"debug_mode":              s.DebugMode,
		"query_timeout_seconds":   s.QueryTimeoutSeconds,
		"max_results_per_page":    s.MaxResultsPerPage,
		"session_timeout_minutes": s.SessionTimeoutMinutes,
		"embedding_model":         s.EmbeddingModel,
		"search_limit":            s.SearchLimit,
		"market_data_enabled":     s.AlphaVantageAPIKey != "",
	}
}
