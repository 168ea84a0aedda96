package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flakelab/internal/connections"
	"flakelab/internal/security"
	"flakelab/internal/ui"
	"flakelab/pkg/errors"
)

var connectionsCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conn"},
	Short:   "Inspect the profiles in connections.toml",
}

var connectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the connection profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := connections.LoadDefault()
		if err != nil {
			return err
		}

		printf(cmd, "Profiles from %s\n", file.Path)
		rows := [][]string{}
		for _, name := range file.Names() {
			c, err := file.Get(name)
			if err != nil {
				return err
			}
			def := ""
			if name == file.DefaultConnectionName {
				def = "*"
			}
			rows = append(rows, []string{def, name, c.Account, c.User, authMethod(c)})
		}
		ui.RenderTable(cmd.OutOrStdout(), []string{"", "Name", "Account", "User", "Auth"}, rows)
		return nil
	},
}

var connectionsTestCmd = &cobra.Command{
	Use:   "test [name]",
	Short: "Connect and print the Snowflake version",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		name := appConfig.DefaultConnection
		if len(args) == 1 {
			name = args[0]
		}

		svc, err := connect(ctx, name)
		if err != nil {
			return err
		}
		defer svc.Close()

		version, err := svc.CurrentVersion(ctx)
		if err != nil {
			return err
		}
		ui.ShowSuccess("Snowflake version " + version)
		return nil
	},
}

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Store connection passwords outside connections.toml",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <connection>",
	Short: "Store a password for a connection profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := security.NewCredentialManager()
		if err != nil {
			return err
		}
		password, err := ui.Password("Password for "+args[0]+":", "Stored in the "+cm.Backend())
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeUserInput, "password prompt failed")
		}
		if err := cm.SetPassword(args[0], password); err != nil {
			return err
		}
		logger.Debug("credential stored", zap.String("connection", args[0]), zap.String("backend", cm.Backend()))
		ui.ShowSuccess("Password stored in the " + cm.Backend())
		return nil
	},
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the connections with a stored password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := security.NewCredentialManager()
		if err != nil {
			return err
		}
		names, err := cm.ListPasswords()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			printf(cmd, "No stored passwords in the %s\n", cm.Backend())
			return nil
		}
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			rows = append(rows, []string{name, cm.Backend()})
		}
		ui.RenderTable(cmd.OutOrStdout(), []string{"Connection", "Backend"}, rows)
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <connection>",
	Short: "Remove a stored password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := security.NewCredentialManager()
		if err != nil {
			return err
		}
		if err := cm.DeletePassword(args[0]); err != nil {
			return err
		}
		ui.ShowSuccess("Password removed for " + args[0])
		return nil
	},
}

func init() {
	connectionsCmd.AddCommand(connectionsListCmd, connectionsTestCmd)
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsListCmd, credentialsDeleteCmd)
	addCommand(connectionsCmd, credentialsCmd)
}

func authMethod(c connections.Connection) string {
	switch {
	case c.PrivateKeyPath != "":
		return "key pair"
	case c.UsesBrowser():
		return "browser"
	case c.Password != "":
		return "password"
	default:
		return "stored"
	}
}
