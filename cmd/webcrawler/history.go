package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/BijayaThebe/webcrawler/internal/config"
	"github.com/BijayaThebe/webcrawler/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past crawl runs",
		Long: `History lists past crawl runs recorded in the local database,
newest first. Each crawl run is saved automatically.

Examples:
  # Show the last 20 runs
  webcrawler history

  # Show the last 5 runs
  webcrawler history -n 5`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	dbDir := config.XDGDataDir()
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl history yet. Run 'webcrawler crawl' first.")
		return nil
	}

	db, err := database.Open(dbDir, database.Options{
		CreateIfNotExists: false,
		EnableWAL:         false,
	})
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "No crawl history yet. Run 'webcrawler crawl' first.")
			return nil
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl history yet. Run 'webcrawler crawl' first.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tSEEDS\tCRAWLED\tFAILED\tBLOCKED\tVISITED")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(10*time.Millisecond),
			run.Seeds,
			run.Counters.Succeeded,
			run.Counters.Failed,
			run.Counters.Blocked,
			run.Visited,
		)
	}
	return w.Flush()
}
