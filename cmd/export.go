package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flakelab/internal/datagen"
	"flakelab/internal/export"
	"flakelab/internal/lab"
	"flakelab/internal/ui"
)

// fixtureSet names what export writes
type fixtureSet string

var fixtureSets = []string{"markets", "dual-tool", "retail"}

func (f *fixtureSet) String() string {
	if *f == "" {
		return "markets"
	}
	return string(*f)
}

func (f *fixtureSet) Set(s string) error {
	for _, known := range fixtureSets {
		if strings.EqualFold(s, known) {
			*f = fixtureSet(known)
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(fixtureSets, "|"))
}

func (f *fixtureSet) Type() string {
	return "variant"
}

var (
	exportSet  fixtureSet
	exportOut  string
	exportSeed int64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the synthetic fixtures to Parquet files",
	Long: `Generate the fixtures a deployment would load and write one Parquet file per
table, without connecting to Snowflake.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	addCommand(exportCmd)
	exportCmd.Flags().Var(&exportSet, "variant", "fixtures to write: markets, dual-tool or retail")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output directory (default export_dir from the config)")
	exportCmd.Flags().Int64Var(&exportSeed, "seed", 0, "random seed (0 uses the clock)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	set := exportSet.String()
	dir := firstNonEmpty(exportOut, appConfig.ExportDir)
	gen := datagen.New(exportSeed, time.Now().UTC())

	return tracked(ctx, "export", set, func() (string, error) {
		var (
			files []export.File
			err   error
		)
		switch set {
		case "dual-tool":
			files, err = export.WriteMarkets(dir, gen.DualTool())
		case "retail":
			files, err = export.WriteRetail(dir, gen.Retail(lab.DefaultConfig().WithVolumes(appConfig.Lab).Volumes()))
		default:
			files, err = export.WriteMarkets(dir, gen.Markets())
		}
		if err != nil {
			return "", err
		}

		rows := make([][]string, 0, len(files))
		for _, f := range files {
			rows = append(rows, []string{f.Table, fmt.Sprintf("%d", f.Rows), f.Path})
		}
		ui.RenderTable(cmd.OutOrStdout(), []string{"Table", "Rows", "File"}, rows)
		return fmt.Sprintf("%d files in %s", len(files), dir), nil
	})
}
