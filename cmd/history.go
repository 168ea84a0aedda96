package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"flakelab/internal/config"
	"flakelab/internal/history"
	"flakelab/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past deploy, cleanup, lab and export runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(config.HistoryFile(appConfig))
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			printf(cmd, "No runs recorded yet\n")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			duration := "-"
			if d := r.Duration(); d > 0 {
				duration = d.Round(time.Millisecond).String()
			}
			rows = append(rows, []string{
				r.ID[:8],
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Command,
				r.Target,
				r.Connection,
				ui.RunStatusCell(string(r.Status)),
				duration,
				r.Detail,
			})
		}
		ui.RenderTable(cmd.OutOrStdout(),
			[]string{"ID", "Started", "Command", "Target", "Connection", "Status", "Duration", "Detail"}, rows)
		return nil
	},
}

func init() {
	addCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show, 0 for all")
}
