package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"flakelab/internal/config"
	"flakelab/internal/observability"
	"flakelab/internal/ui"
	"flakelab/pkg/errors"
	"flakelab/pkg/models"
)

var (
	cfgFile        string
	connectionName string
	logLevel       string
	logFile        string
	verbose        bool
	quiet          bool

	// connectionChosen is set when a flag, FLAKELAB_DEFAULT_CONNECTION or
	// the config file names the connection
	connectionChosen bool

	appConfig *models.Config
	logger    *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "flakelab",
		Short: "Deploy, validate and tear down Snowflake demo environments",
		Long: `flakelab builds the markets AI demo database and the data-engineering lab
on a Snowflake account, validates what it created and cleans it up again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
)

// Execute runs the root command and exits 1 on error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.flakelab/config.yaml)")
	flags.StringVarP(&connectionName, "connection", "c", "default", "connection name from connections.toml")
	flags.StringVar(&logLevel, "log-level", "INFO", "log level: DEBUG, INFO, WARNING or ERROR")
	flags.StringVar(&logFile, "log-file", "flakelab.log", "log file, empty disables file logging")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log at DEBUG level")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors to the console")
	rootCmd.SetGlobalNormalizationFunc(normalizeFlag)
}

// addCommand registers subcommands so they accept the flag aliases too
func addCommand(subs ...*cobra.Command) {
	for _, sub := range subs {
		rootCmd.AddCommand(sub)
		sub.SetGlobalNormalizationFunc(normalizeFlag)
	}
}

// normalizeFlag accepts connection_name for --connection
func normalizeFlag(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "connection_name", "connection-name":
		name = "connection"
	}
	return pflag.NormalizedName(name)
}

// initConfig layers flags over FLAKELAB_* env vars over the config file
func initConfig(cmd *cobra.Command) error {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if _, ok := os.LookupEnv(config.EnvConfigFile); ok {
		v.SetConfigFile(config.GetConfigFile())
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.GetConfigPath())
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("FLAKELAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return errors.Wrap(err, errors.ErrCodeConfigNotFound, "failed to read config file").
				WithContext("path", cfgFile)
		}
	}

	path := v.ConfigFileUsed()
	if path == "" {
		path = config.GetConfigFile()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	connectionChosen = flags.Changed("connection") || v.IsSet("default_connection")
	cfg.DefaultConnection = resolve(v, flags, "default_connection", "connection", cfg.DefaultConnection)
	cfg.Logging.Level = resolve(v, flags, "logging.level", "log-level", cfg.Logging.Level)
	cfg.Logging.File = resolve(v, flags, "logging.file", "log-file", cfg.Logging.File)
	if verbose {
		cfg.Logging.Level = "DEBUG"
	}

	log, err := observability.NewLogger(observability.LoggerConfig{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
		Quiet: quiet,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to set up logging").
			WithSuggestions("Use --log-level DEBUG, INFO, WARNING or ERROR")
	}

	appConfig = cfg
	logger = log
	logger.Debug("configuration loaded",
		zap.String("config", path),
		zap.String("connection", cfg.DefaultConnection))
	return nil
}

// resolve prefers a changed flag, then the environment and config file. An
// untouched flag default never overrides the config file.
func resolve(v *viper.Viper, flags *pflag.FlagSet, key, flag, current string) string {
	if f := flags.Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	if _, ok := os.LookupEnv("FLAKELAB_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); ok {
		return v.GetString(key)
	}
	if current != "" {
		return current
	}
	return v.GetString(key)
}

// connectionOr returns the resolved connection, or fallback when nothing
// chose one explicitly
func connectionOr(fallback string) string {
	if connectionChosen {
		return appConfig.DefaultConnection
	}
	return fallback
}

// printf writes to the command's output so tests can capture it
func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
