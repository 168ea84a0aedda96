package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flakelab/internal/config"
	"flakelab/internal/connections"
	"flakelab/internal/history"
	"flakelab/internal/security"
	"flakelab/internal/snowflake"
	"flakelab/internal/ui"
)

const application = "flakelab"

// commandContext is cancelled on Ctrl-C
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// loadConnection reads the named profile and fills a missing password from
// the credential store. "default" falls back to default_connection_name.
func loadConnection(name string) (connections.Connection, error) {
	file, err := connections.LoadDefault()
	if err != nil {
		return connections.Connection{}, err
	}
	conn, err := file.Get(name)
	if err != nil && name == "default" {
		conn, err = file.Get("")
	}
	if err != nil {
		return connections.Connection{}, err
	}

	if cm, err := security.NewCredentialManager(); err == nil {
		conn = cm.ResolvePassword(conn)
	} else {
		logger.Debug("credential store unavailable", zap.Error(err))
	}
	if err := conn.Validate(); err != nil {
		return connections.Connection{}, err
	}
	return conn, nil
}

// connect opens one session on the configured connection
func connect(ctx context.Context, name string) (*snowflake.Service, error) {
	conn, err := loadConnection(name)
	if err != nil {
		return nil, err
	}

	cfg := snowflake.ConfigFromConnection(conn)
	cfg.Application = application
	svc := snowflake.NewService(cfg, logger)

	spinner := ui.NewSpinner("Connecting to Snowflake...")
	spinner.Start()
	if err := svc.Connect(ctx); err != nil {
		spinner.Stop(false, "Connection failed")
		return nil, err
	}
	spinner.Stop(true, "Connected to "+conn.Account)
	return svc, nil
}

// tracked runs fn and records it in the history ledger. A ledger that cannot
// be opened only costs a warning.
func tracked(ctx context.Context, command, target string, fn func() (string, error)) error {
	var store *history.Store
	if s, err := history.Open(config.HistoryFile(appConfig)); err != nil {
		logger.Warn("History is disabled for this run", zap.Error(err))
	} else {
		store = s
		defer store.Close()
	}

	rec := history.NewRecorder(store, logger)
	id := rec.Start(ctx, command, target, appConfig.DefaultConnection)
	detail, err := fn()
	rec.Finish(context.Background(), id, err, detail)
	return err
}
