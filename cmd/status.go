package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sanctions-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync history and list statistics",
	Long:  "Displays the sync log and the size and publication date of the stored list.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(ctx, "sync")
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "status: stats")
		}
		fmt.Printf("Entries: %d  Names: %d", stats.Entries, stats.Names)
		if stats.PublicationDate != "" {
			fmt.Printf("  Publication date: %s", stats.PublicationDate)
		}
		fmt.Println()
		fmt.Println()

		entries, err := st.ListSyncs(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "status: list syncs")
		}
		if len(entries) == 0 {
			zap.L().Info("no sync entries found, run 'sync' to load the list")
			return nil
		}

		formatSyncEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("limit", 20, "maximum sync log entries to show")
	rootCmd.AddCommand(statusCmd)
}

// formatSyncEntries writes a tabular representation of sync entries to w.
func formatSyncEntries(out io.Writer, entries []store.SyncEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tSTATUS\tSTARTED\tDURATION\tROWS\tERROR")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t-------\t--------\t----\t-----")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			d := e.CompletedAt.Sub(e.StartedAt).Round(time.Second)
			dur = d.String()
		}

		errMsg := ""
		if e.Error != "" {
			errMsg = truncate(e.Error, 60)
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ID,
			e.Source,
			e.Status,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
			e.RowsSynced,
			errMsg,
		)
	}
	_ = w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
