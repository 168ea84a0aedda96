package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flakelab/internal/datagen"
	"flakelab/internal/marketdata"
	"flakelab/internal/markets"
	"flakelab/internal/settings"
	"flakelab/internal/ui"
	"flakelab/pkg/errors"
	"flakelab/pkg/models"
)

var (
	deployVariant      markets.Variant
	deploySeed         int64
	deployAgentsDir    string
	deployWarehouse    string
	deploySkipValidate bool
	deployRealPrices   bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the markets AI demo",
	Long: `Create MARKETS_AI_DEMO with its schemas, tables and synthetic data, then the
semantic views, Cortex Search services and agent configuration files.

The markets variant loads ten companies with prices, earnings, events and
research reports. The dual-tool variant loads seven companies with earnings
call transcripts for the two-tool agent.`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	addCommand(deployCmd)

	deployCmd.Flags().Var(&deployVariant, "variant", "demo variant: markets or dual-tool")
	deployCmd.Flags().Int64Var(&deploySeed, "seed", 0, "random seed for the synthetic data (0 uses the clock)")
	deployCmd.Flags().StringVar(&deployAgentsDir, "agents-dir", "", "directory for the agent configuration files")
	deployCmd.Flags().StringVar(&deployWarehouse, "warehouse", "", "warehouse for the Cortex Search services")
	deployCmd.Flags().BoolVar(&deploySkipValidate, "skip-validate", false, "skip the post-deployment validation")
	deployCmd.Flags().BoolVar(&deployRealPrices, "real-prices", false, "load daily prices from Alpha Vantage instead of generating them")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	variant := chosenVariant(cmd, deployVariant)
	ui.ShowHeader(fmt.Sprintf("flakelab deploy - %s", variant))

	svc, err := connect(ctx, appConfig.DefaultConnection)
	if err != nil {
		return err
	}
	defer svc.Close()

	seed := deploySeed
	if !cmd.Flags().Changed("seed") {
		seed = appConfig.Deployment.Seed
	}
	gen := datagen.New(seed, time.Now().UTC())

	d := markets.NewDeployer(svc, variant, gen, logger)
	d.AgentsDir = firstNonEmpty(deployAgentsDir, appConfig.AgentsDir)
	d.Warehouse = firstNonEmpty(deployWarehouse, appConfig.Deployment.Warehouse)
	d.SkipValidate = deploySkipValidate || appConfig.Deployment.SkipValidate
	if deployRealPrices && variant == markets.VariantMarkets {
		d.Prices = fetchRealPrices(ctx, gen.Now())
	}

	return tracked(ctx, "deploy", string(variant), func() (string, error) {
		report, err := d.Deploy(ctx)
		if err != nil {
			return "", err
		}
		if report == nil {
			ui.ShowSuccess("Deployment completed (validation skipped)")
			return "validation skipped", nil
		}
		printReport(cmd, report)
		if !report.Passed() {
			return "", validationFailed(report)
		}
		ui.ShowSuccess("Deployment completed and validated")
		return fmt.Sprintf("%d checks passed", len(report.Checks)), nil
	})
}

// chosenVariant falls back to the configured variant when the flag is unset
func chosenVariant(cmd *cobra.Command, flagValue markets.Variant) markets.Variant {
	if cmd.Flags().Changed("variant") {
		return flagValue
	}
	var v markets.Variant
	if err := v.Set(appConfig.Deployment.Variant); err != nil {
		logger.Warn("Ignoring invalid deployment.variant in config", zap.String("variant", appConfig.Deployment.Variant))
		return markets.VariantMarkets
	}
	return v
}

// fetchRealPrices returns nil, and so keeps the generated prices, when the
// feed is unavailable
func fetchRealPrices(ctx context.Context, now time.Time) []models.StockPrice {
	s, err := settings.Load("")
	if err != nil {
		logger.Warn("Could not load settings for market data", zap.Error(err))
		return nil
	}
	client := marketdata.NewClient(s.AlphaVantageAPIKey, logger)

	start, end := datagen.DateRange(datagen.HistoricalQuarters(now, 8))
	prices, err := client.DailyRange(ctx, datagen.Tickers(datagen.Companies()), start, end)
	if err != nil {
		ui.ShowWarning("Real prices unavailable, using generated prices: " + err.Error())
		return nil
	}
	logger.Info("📈 Loaded real daily prices", zap.Int("rows", len(prices)))
	return prices
}

func printReport(cmd *cobra.Command, report *markets.Report) {
	rows := make([][]string, 0, len(report.Checks))
	for _, c := range report.Checks {
		count := fmt.Sprintf("%d", c.Count)
		if c.Err != nil {
			count = "error"
		}
		rows = append(rows, []string{c.Name, count, fmt.Sprintf("%d", c.Min), ui.StatusCell(c.Passed())})
	}
	ui.RenderTable(cmd.OutOrStdout(), []string{"Check", "Rows", "Minimum", "Status"}, rows)
	if report.SearchServices >= 0 {
		printf(cmd, "Cortex Search services: %d\n", report.SearchServices)
	}
}

func validationFailed(report *markets.Report) error {
	err := errors.New(errors.ErrCodeValidationFailed,
		fmt.Sprintf("%d of %d validation checks failed", len(report.Failed()), len(report.Checks)))
	for _, c := range report.Failed() {
		err.WithContext(c.Name, c.Count)
	}
	return err.WithSuggestions("Re-run 'flakelab deploy' or inspect the log file")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
