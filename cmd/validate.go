package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flakelab/internal/datagen"
	"flakelab/internal/markets"
	"flakelab/internal/ui"
)

var validateVariant markets.Variant

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the row counts of a deployed demo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		variant := chosenVariant(cmd, validateVariant)
		ui.ShowHeader(fmt.Sprintf("flakelab validate - %s", variant))

		svc, err := connect(ctx, appConfig.DefaultConnection)
		if err != nil {
			return err
		}
		defer svc.Close()

		d := markets.NewDeployer(svc, variant, datagen.New(1, time.Now().UTC()), logger)
		report := d.Validate(ctx)
		printReport(cmd, report)
		if !report.Passed() {
			return validationFailed(report)
		}
		ui.ShowSuccess("All validation checks passed")
		return nil
	},
}

func init() {
	addCommand(validateCmd)
	validateCmd.Flags().Var(&validateVariant, "variant", "demo variant: markets or dual-tool")
}
