package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flakelab/internal/server"
	"flakelab/internal/settings"
	"flakelab/internal/snowflake"
	"flakelab/internal/ui"
)

var envFile string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Work with the environment-driven service settings",
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load .env and validate the settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load(envFile)
		if err != nil {
			return err
		}

		public := s.Public()
		keys := make([]string, 0, len(public))
		for k := range public {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, fmt.Sprint(public[k])})
		}
		ui.RenderTable(cmd.OutOrStdout(), []string{"Setting", "Value"}, rows)

		if err := s.Validate(); err != nil {
			return err
		}
		ui.ShowSuccess("Settings are valid")
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the status server",
	Long: `Serve /, /health and /settings on SERVER_ADDRESS:SERVER_PORT. The settings
come from the environment and .env; /health probes Snowflake with
SELECT CURRENT_VERSION().`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		s, err := settings.Load(envFile)
		if err != nil {
			return err
		}

		var checker server.VersionChecker
		if err := s.Validate(); err != nil {
			ui.ShowWarning("Serving without a Snowflake connection: settings are incomplete")
		} else {
			cfg := snowflake.ConfigFromConnection(s.Connection())
			cfg.SessionParams = s.SessionParameters()
			cfg.Timeout = time.Duration(s.QueryTimeoutSeconds) * time.Second
			cfg.Application = application
			svc := snowflake.NewService(cfg, logger)
			if err := svc.Connect(ctx); err != nil {
				logger.Warn("Snowflake is unreachable, /health will report errors", zap.Error(err))
			} else {
				defer svc.Close()
				checker = svc
			}
		}

		ui.ShowInfo(fmt.Sprintf("%s %s on http://%s", s.AppName, s.AppVersion, s.Addr()))
		return server.New(s, checker, logger).Run(ctx)
	},
}

func init() {
	settingsCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	settingsCmd.AddCommand(settingsCheckCmd)
	addCommand(settingsCmd, serveCmd)
}
