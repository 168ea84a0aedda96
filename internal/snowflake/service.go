package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"flakelab/internal/connections"
	"flakelab/internal/observability"
	"flakelab/internal/sqlgen"
	"flakelab/pkg/errors"
)

// Executor runs SQL one statement at a time on a single session. The
// deployers depend on this rather than on *Service.
type Executor interface {
	Exec(ctx context.Context, stmt, description string) error
	ExecBestEffort(ctx context.Context, stmt, description string) bool
	ExecScript(ctx context.Context, script, description string) error
	QueryInt(ctx context.Context, query string) (int64, error)
	QueryCount(ctx context.Context, query string) (int, error)
	QueryColumn(ctx context.Context, query, column string) ([]string, error)
	QuerySum(ctx context.Context, query, column string) (int64, error)
	UseContext(ctx context.Context, c Context) error
	SetQueryTag(ctx context.Context, tag string) error
	CurrentVersion(ctx context.Context) (string, error)
	Close() error
}

// Context is the session target for UseContext. Empty fields are skipped.
type Context struct {
	Database  string
	Schema    string
	Warehouse string
}

// Service provides Snowflake database operations
type Service struct {
	db             *sql.DB
	config         Config
	connected      bool
	log            *zap.Logger
	metrics        *observability.Metrics
	circuitBreaker *errors.CircuitBreaker
}

// Config holds Snowflake connection configuration. Timeout bounds each
// statement; zero leaves statements to the caller's context.
type Config struct {
	Account              string
	Username             string
	Password             string
	Database             string
	Schema               string
	Warehouse            string
	Role                 string
	Authenticator        string
	PrivateKeyPath       string
	PrivateKeyPassphrase string
	SessionParams        map[string]string
	QueryTag             string
	Application          string
	Timeout              time.Duration
}

// connectTimeout bounds the login ping when no Timeout is configured
const connectTimeout = 30 * time.Second

// ConfigFromConnection maps a connections.toml profile onto a Config
func ConfigFromConnection(c connections.Connection) Config {
	return Config{
		Account:              c.Account,
		Username:             c.User,
		Password:             c.Password,
		Database:             c.Database,
		Schema:               c.Schema,
		Warehouse:            c.Warehouse,
		Role:                 c.Role,
		Authenticator:        c.Authenticator,
		PrivateKeyPath:       c.PrivateKeyPath,
		PrivateKeyPassphrase: c.PrivateKeyPassphrase,
	}
}

// NewService creates a new Snowflake service
func NewService(config Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		config:         config,
		log:            log,
		metrics:        observability.NewMetrics(),
		circuitBreaker: errors.NewCircuitBreaker("snowflake", 5, 30*time.Second),
	}
}

// NewServiceWithDB wraps an already open handle
func NewServiceWithDB(db *sql.DB, config Config, log *zap.Logger) *Service {
	s := NewService(config, log)
	s.db = db
	s.connected = true
	return s
}

// Metrics returns the statement counters of this session
func (s *Service) Metrics() *observability.Metrics {
	return s.metrics
}

// Connect establishes a connection to Snowflake
func (s *Service) Connect(ctx context.Context) error {
	if s.connected {
		return nil
	}

	dsn, err := s.dsn()
	if err != nil {
		return err
	}

	retry := errors.DefaultRetryConfig()
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		s.log.Warn("connection attempt failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
	}

	// Use circuit breaker for connection attempts
	return s.circuitBreaker.Execute(ctx, func() error {
		return errors.Retry(ctx, retry, func(ctx context.Context) error {
			db, err := sql.Open("snowflake", dsn)
			if err != nil {
				return errors.ConnectionError("Failed to open Snowflake connection", err).
					WithContext("account", s.config.Account).
					WithContext("warehouse", s.config.Warehouse)
			}

			// USE and ALTER SESSION state must stay on one session
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)

			connCtx, cancel := s.connectContext(ctx)
			defer cancel()

			if err := db.PingContext(connCtx); err != nil {
				_ = db.Close()

				if strings.Contains(strings.ToLower(err.Error()), "authentication") ||
					strings.Contains(strings.ToLower(err.Error()), "incorrect username or password") {
					return errors.New(errors.ErrCodeAuthenticationFailed, "Authentication failed").
						WithContext("user", s.config.Username).
						WithSuggestions(
							"Verify your username and password",
							"Check if your account is locked",
							"Ensure MFA is properly configured if required",
						)
				}

				return errors.ConnectionError("Failed to connect to Snowflake", err).
					WithContext("account", s.config.Account).
					AsRecoverable()
			}

			s.db = db
			s.connected = true
			s.log.Info("connected to Snowflake",
				zap.String("account", s.config.Account),
				zap.String("user", s.config.Username))
			return nil
		})
	})
}

// dsn renders the driver DSN from the config
func (s *Service) dsn() (string, error) {
	cfg := &gosnowflake.Config{
		Account:     s.config.Account,
		User:        s.config.Username,
		Password:    s.config.Password,
		Database:    s.config.Database,
		Schema:      s.config.Schema,
		Warehouse:   s.config.Warehouse,
		Role:        s.config.Role,
		Application: s.config.Application,
		Params:      make(map[string]*string),
	}

	for k, v := range s.config.SessionParams {
		v := v
		cfg.Params[k] = &v
	}
	if s.config.QueryTag != "" {
		tag := s.config.QueryTag
		cfg.Params["query_tag"] = &tag
	}

	switch {
	case s.config.PrivateKeyPath != "":
		key, err := LoadPrivateKey(s.config.PrivateKeyPath, s.config.PrivateKeyPassphrase)
		if err != nil {
			return "", err
		}
		cfg.Authenticator = gosnowflake.AuthTypeJwt
		cfg.PrivateKey = key
		cfg.Password = ""
	case strings.EqualFold(s.config.Authenticator, "externalbrowser"):
		cfg.Authenticator = gosnowflake.AuthTypeExternalBrowser
	}

	dsn, err := gosnowflake.DSN(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeConfigInvalid, "Failed to build connection string").
			WithContext("account", s.config.Account)
	}
	return dsn, nil
}

// Close closes the database connection
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	s.connected = false
	return nil
}

// Exec runs one statement and fails on error
func (s *Service) Exec(ctx context.Context, stmt, description string) error {
	if err := s.ensureConnected(); err != nil {
		return err
	}

	if description != "" {
		s.log.Info("executing", zap.String("step", description))
	}
	s.log.Debug("sql", zap.String("statement", stmt))

	execCtx, cancel := s.getContext(ctx)
	defer cancel()

	start := time.Now()
	if _, err := s.db.ExecContext(execCtx, stmt); err != nil {
		s.metrics.Counter("statements_failed").Inc()
		s.log.Error("statement failed",
			zap.String("step", description),
			zap.Error(err),
			zap.String("statement", stmt))
		msg := "Failed to execute statement"
		if description != "" {
			msg = "Failed: " + description
		}
		return errors.SQLError(msg, stmt, err)
	}

	s.metrics.Counter("statements_executed").Inc()
	s.metrics.Counter("statement_seconds").Add(time.Since(start).Seconds())
	if description != "" {
		s.log.Info("succeeded", zap.String("step", description))
	}
	return nil
}

// ExecBestEffort runs one statement and only warns on error
func (s *Service) ExecBestEffort(ctx context.Context, stmt, description string) bool {
	if err := s.Exec(ctx, stmt, description); err != nil {
		s.metrics.Counter("statements_skipped").Inc()
		s.log.Warn("continuing after failure", zap.String("step", description), zap.Error(err))
		return false
	}
	return true
}

// ExecScript splits a script on semicolons and runs each statement
func (s *Service) ExecScript(ctx context.Context, script, description string) error {
	statements := SplitStatements(script)
	for i, stmt := range statements {
		label := description
		if label != "" && len(statements) > 1 {
			label = fmt.Sprintf("%s (%d/%d)", description, i+1, len(statements))
		}
		if err := s.Exec(ctx, stmt, label); err != nil {
			var appErr *errors.AppError
			if errors.As(err, &appErr) {
				appErr.WithContext("statement_index", i+1).
					WithContext("total_statements", len(statements))
			}
			return err
		}
	}
	return nil
}

// QueryInt returns the first column of the first row, e.g. SELECT COUNT(*)
func (s *Service) QueryInt(ctx context.Context, query string) (int64, error) {
	if err := s.ensureConnected(); err != nil {
		return 0, err
	}

	queryCtx, cancel := s.getContext(ctx)
	defer cancel()

	var n sql.NullInt64
	if err := s.db.QueryRowContext(queryCtx, query).Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, errors.New(errors.ErrCodeNoResults, "Query returned no rows").
				WithContext("query", query)
		}
		return 0, errors.SQLError("Query failed", query, err)
	}
	return n.Int64, nil
}

// QueryCount returns the number of rows a statement yields, for SHOW commands
func (s *Service) QueryCount(ctx context.Context, query string) (int, error) {
	count := 0
	err := s.eachRow(ctx, query, func(cols []string, values []interface{}) error {
		count++
		return nil
	})
	return count, err
}

// QueryColumn returns the named column of every row as text
func (s *Service) QueryColumn(ctx context.Context, query, column string) ([]string, error) {
	var out []string
	err := s.eachRow(ctx, query, func(cols []string, values []interface{}) error {
		idx := columnIndex(cols, column)
		if idx < 0 {
			return errors.New(errors.ErrCodeResultParsing, fmt.Sprintf("column %s not in result", column)).
				WithContext("columns", cols)
		}
		out = append(out, asString(values[idx]))
		return nil
	})
	return out, err
}

// QuerySum adds up a numeric column, e.g. rows_loaded from COPY INTO
func (s *Service) QuerySum(ctx context.Context, query, column string) (int64, error) {
	var total int64
	err := s.eachRow(ctx, query, func(cols []string, values []interface{}) error {
		idx := columnIndex(cols, column)
		if idx < 0 {
			return nil
		}
		n, err := asInt(values[idx])
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeResultParsing, "non-numeric value in "+column)
		}
		total += n
		return nil
	})
	return total, err
}

// UseContext switches database, schema and warehouse as given
func (s *Service) UseContext(ctx context.Context, c Context) error {
	targets := []struct{ kind, name string }{
		{"warehouse", c.Warehouse},
		{"database", c.Database},
		{"schema", c.Schema},
	}
	for _, t := range targets {
		if t.name == "" {
			continue
		}
		id, err := sqlgen.Ident(t.name)
		if err != nil {
			return errors.InvalidInput(t.kind, t.name)
		}
		if err := s.Exec(ctx, sqlgen.Use(t.kind, id), ""); err != nil {
			return err
		}
	}
	return nil
}

// SetQueryTag tags every following statement of the session
func (s *Service) SetQueryTag(ctx context.Context, tag string) error {
	return s.Exec(ctx, sqlgen.SetQueryTag(tag), "")
}

// CurrentVersion returns the server version
func (s *Service) CurrentVersion(ctx context.Context) (string, error) {
	if err := s.ensureConnected(); err != nil {
		return "", err
	}

	queryCtx, cancel := s.getContext(ctx)
	defer cancel()

	var version string
	if err := s.db.QueryRowContext(queryCtx, "SELECT CURRENT_VERSION()").Scan(&version); err != nil {
		return "", errors.SQLError("Failed to read server version", "SELECT CURRENT_VERSION()", err)
	}
	return version, nil
}

// Helper methods

func (s *Service) ensureConnected() error {
	if !s.connected {
		return errors.New(errors.ErrCodeNotConnected, "Not connected to database").
			WithSuggestions("Call Connect() before executing SQL")
	}
	return nil
}

func (s *Service) getContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.config.Timeout)
}

func (s *Service) connectContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout > 0 {
		return context.WithTimeout(parent, s.config.Timeout)
	}
	return context.WithTimeout(parent, connectTimeout)
}

func (s *Service) eachRow(ctx context.Context, query string, fn func(cols []string, values []interface{}) error) error {
	if err := s.ensureConnected(); err != nil {
		return err
	}

	queryCtx, cancel := s.getContext(ctx)
	defer cancel()

	s.log.Debug("sql", zap.String("statement", query))
	rows, err := s.db.QueryContext(queryCtx, query)
	if err != nil {
		return errors.SQLError("Query failed", query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return errors.SQLError("Failed to read result columns", query, err)
	}

	for rows.Next() {
		values := make([]interface{}, len(cols))
		valuePtrs := make([]interface{}, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return errors.SQLError("Failed to scan row", query, err)
		}
		if err := fn(cols, values); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return errors.SQLError("Query failed", query, err)
	}
	return nil
}

// ValidateConfig validates the Snowflake configuration
func ValidateConfig(config Config) error {
	if config.Account == "" {
		return fmt.Errorf("account is required")
	}
	if config.Username == "" {
		return fmt.Errorf("username is required")
	}
	if config.Password == "" && config.PrivateKeyPath == "" &&
		!strings.EqualFold(config.Authenticator, "externalbrowser") {
		return fmt.Errorf("password or private key is required")
	}
	return nil
}
