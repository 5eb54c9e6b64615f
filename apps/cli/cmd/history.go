package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uispec/uispec/packages/history"
)

var (
	historyLimit int
	historyDB    string
	historyRunID string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: `Show runs recorded with --history-db, newest first.

Examples:
  uispec history --history-db runs.db
  uispec history --history-db runs.db --limit 5
  uispec history --history-db runs.db --run <id>`,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDB, "history-db", getEnvString("UISPEC_HISTORY_DB", ""), "SQLite database with run history (env: UISPEC_HISTORY_DB)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", getEnvInt("UISPEC_HISTORY_LIMIT", 10), "Number of runs to show (env: UISPEC_HISTORY_LIMIT)")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "Show scenario outcomes of one run")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	if historyDB == "" {
		return fmt.Errorf("--history-db is required")
	}

	store, err := history.Open(cmd.Context(), historyDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if historyRunID != "" {
		scenarios, err := store.Scenarios(cmd.Context(), historyRunID)
		if err != nil {
			return err
		}
		if len(scenarios) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No scenarios recorded for run %s\n", historyRunID)
			return nil
		}
		for _, sc := range scenarios {
			status := "pass"
			switch {
			case sc.Skipped:
				status = "skip"
			case !sc.Passed:
				status = "FAIL"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-4s %-40s %s (%dms)\n", status, sc.Name, sc.File, sc.Duration.Milliseconds())
			if sc.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "     %s\n", sc.Error)
			}
		}
		return nil
	}

	runs, err := store.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No runs recorded yet\n")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  env=%s browser=%s  %d passed, %d failed, %d skipped  (%dms)\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.ID,
			run.Environment, run.Browser,
			run.Passed, run.Failed, run.Skipped,
			run.Duration.Milliseconds())
	}
	return nil
}
