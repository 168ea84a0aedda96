package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flakelab/internal/lab"
	"flakelab/internal/ui"
	"flakelab/pkg/errors"
)

var (
	labMode      lab.Mode
	labInfraOnly bool
	labDataDir   string
	labYes       bool
)

var labCmd = &cobra.Command{
	Use:   "lab",
	Short: "Set up the data-engineering lab",
	Long: `Build DATA_ENG_DEMO: schemas, warehouses, stages and file formats, synthetic
retail data bulk loaded through Parquet files, Snowpipes, curated tables,
dynamic tables, data quality checks and a secure data share.

Modes:
  full      the complete lab
  quick     the complete lab with smaller volumes
  cleanup   drop the database, warehouses and share
  validate  report which lab objects exist`,
	Args: cobra.NoArgs,
	RunE: runLab,
}

func init() {
	addCommand(labCmd)
	labCmd.Flags().Var(&labMode, "mode", "full, quick, cleanup or validate")
	labCmd.Flags().BoolVar(&labInfraOnly, "infra-only", false, "stop after the pipeline infrastructure")
	labCmd.Flags().StringVar(&labDataDir, "data-dir", "", "keep the generated Parquet files in this directory")
	labCmd.Flags().BoolVarP(&labYes, "yes", "y", false, "skip the confirmation for cleanup mode")
}

func runLab(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	mode := lab.Mode(labMode.String())
	ui.ShowHeader("flakelab lab - " + string(mode))

	if mode == lab.ModeCleanup && !labYes {
		ok, err := ui.Confirm("Drop DATA_ENG_DEMO, the lab warehouses and the share?", false)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeUserInput, "confirmation prompt failed")
		}
		if !ok {
			ui.ShowInfo("Cleanup cancelled")
			return nil
		}
	}

	// the lab has its own default profile; history records the one used
	appConfig.DefaultConnection = connectionOr(lab.DefaultConnection)
	svc, err := connect(ctx, appConfig.DefaultConnection)
	if err != nil {
		return err
	}
	defer svc.Close()

	cfg := lab.DefaultConfig().WithVolumes(appConfig.Lab)
	cfg.DataDir = labDataDir
	l := lab.New(svc, cfg, logger)
	l.InfraOnly = labInfraOnly

	return tracked(ctx, "lab", string(mode), func() (string, error) {
		result, err := l.Run(ctx, mode)
		if err != nil {
			return "", err
		}
		printLabResult(cmd, result, cfg.QualityThreshold)
		return labSummary(result), nil
	})
}

func printLabResult(cmd *cobra.Command, r *lab.Result, threshold float64) {
	if len(r.Loads) > 0 {
		rows := make([][]string, 0, len(r.Loads))
		for _, load := range r.Loads {
			rows = append(rows, []string{load.Table, fmt.Sprintf("%d", load.FilesStaged),
				fmt.Sprintf("%d", load.RowsLoaded), load.Duration.Round(time.Millisecond).String()})
		}
		ui.RenderTable(cmd.OutOrStdout(), []string{"Table", "Files", "Rows", "Duration"}, rows)
	}

	if len(r.Quality) > 0 {
		rows := make([][]string, 0, len(r.Quality))
		for _, q := range r.Quality {
			rows = append(rows, []string{q.Table, fmt.Sprintf("%d", q.TotalRows),
				fmt.Sprintf("%.1f%%", q.Score), ui.StatusCell(q.Passes(threshold))})
		}
		ui.RenderTable(cmd.OutOrStdout(), []string{"Table", "Rows", "Quality", "Status"}, rows)
	}

	if r.Usage != nil {
		printf(cmd, "Share %s: %d objects, %d accounts\n", r.Usage.Share, r.Usage.ObjectsShared, r.Usage.AccountsWithAccess)
	}

	if v := r.Validation; v != nil {
		ui.RenderTable(cmd.OutOrStdout(), []string{"Object", "Found"}, [][]string{
			{"Database", ui.StatusCell(v.DatabaseExists)},
			{"Schemas", fmt.Sprintf("%d", v.Schemas)},
			{"Tables", fmt.Sprintf("%d", v.Tables)},
			{"Warehouses", fmt.Sprintf("%d/%d", v.Warehouses, len(lab.Warehouses()))},
			{"Share", ui.StatusCell(v.ShareExists)},
		})
		if v.Ready() {
			ui.ShowSuccess("Lab environment is ready")
		} else {
			ui.ShowWarning("Lab environment is incomplete")
		}
	}
}

func labSummary(r *lab.Result) string {
	var rows int64
	for _, load := range r.Loads {
		rows += load.RowsLoaded
	}
	switch {
	case len(r.Loads) > 0:
		return fmt.Sprintf("%d tables, %d rows loaded", len(r.Loads), rows)
	case r.Validation != nil:
		return fmt.Sprintf("ready=%t", r.Validation.Ready())
	}
	return ""
}
