package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flakelab/internal/cleanup"
	"flakelab/internal/markets"
	"flakelab/internal/ui"
	"flakelab/pkg/errors"
)

var cleanupYes bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [complete|partial|data_only]",
	Short: "Remove the markets AI demo",
	Long: `Remove what deploy created.

  complete   drop the search services, views, tables, schemas and database
  partial    drop the search services, views and tables, keep the schemas
  data_only  truncate every table

Every statement is best effort; failures are reported at the end.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"complete", "partial", "data_only"},
	RunE:      runCleanup,
}

func init() {
	addCommand(cleanupCmd)
	cleanupCmd.Flags().BoolVarP(&cleanupYes, "yes", "y", false, "skip the confirmation prompt")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	}
	level, err := cleanup.ParseLevel(raw)
	if err != nil {
		return err
	}

	ui.ShowHeader("flakelab cleanup - " + string(level))
	ui.ShowWarning(fmt.Sprintf("This will %s in %s", strings.ToLower(describeImpact(level)), markets.Database))
	if !cleanupYes {
		ok, err := ui.ConfirmTyped("Are you sure?", "yes")
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeUserInput, "confirmation prompt failed").
				WithSuggestions("Pass --yes to run without a prompt")
		}
		if !ok {
			ui.ShowInfo("Cleanup cancelled")
			return nil
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, err := connect(ctx, appConfig.DefaultConnection)
	if err != nil {
		return err
	}
	defer svc.Close()

	return tracked(ctx, "cleanup", string(level), func() (string, error) {
		result, err := cleanup.NewCleaner(svc, logger).Run(ctx, level)
		if err != nil {
			return "", err
		}
		printf(cmd, "Statements executed: %d\n", len(result.Executed))
		if !result.OK() {
			ui.ShowWarning(fmt.Sprintf("%d statements failed:", len(result.Failed)))
			for _, f := range result.Failed {
				printf(cmd, "  - %s\n", f)
			}
		} else {
			ui.ShowSuccess(level.Describe())
		}
		return fmt.Sprintf("%d executed, %d failed", len(result.Executed), len(result.Failed)), nil
	})
}

func describeImpact(level cleanup.Level) string {
	switch level {
	case cleanup.LevelPartial:
		return "Drop the search services, views and tables"
	case cleanup.LevelDataOnly:
		return "Truncate every demo table"
	default:
		return "Drop every demo object and the database"
	}
}
