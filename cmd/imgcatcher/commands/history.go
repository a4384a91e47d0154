package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/cwygoda/imgcatcher/internal/adapter/sqlite"
)

var (
	historyDB  string
	historyRun int64
)

var historyCmd = &cobra.Command{
	Use:   "history --history <path> [--run N]",
	Short: "List recorded runs, or the outcomes of one run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyDB == "" {
			return fmt.Errorf("--history is required")
		}
		store, err := sqlite.New(historyDB)
		if err != nil {
			return fmt.Errorf("open history db: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)

		if historyRun > 0 {
			downloads, err := store.Downloads(ctx, historyRun)
			if err != nil {
				return err
			}
			t.AppendHeader(table.Row{"#", "URL", "File", "Status", "Reason"})
			for _, d := range downloads {
				t.AppendRow(table.Row{d.Ordinal, d.URL, d.Filename, d.Status, d.Reason})
			}
		} else {
			runs, err := store.Runs(ctx)
			if err != nil {
				return err
			}
			t.AppendHeader(table.Row{"Run", "Page URL", "Started"})
			for _, r := range runs {
				t.AppendRow(table.Row{r.ID, r.PageURL, r.StartedAt.Format("2006-01-02 15:04:05")})
			}
		}

		t.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyDB, "history", "", "history database path")
	historyCmd.Flags().Int64Var(&historyRun, "run", 0, "show task outcomes for one run")
	rootCmd.AddCommand(historyCmd)
}
