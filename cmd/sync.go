package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sanctions-cli/internal/fetcher"
	"github.com/sells-group/sanctions-cli/internal/ingest"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download and load the sanctions list",
	Long: `Download the SDN Advanced list, flatten it, and replace the stored copy.

By default, syncs every source whose schedule says it is due (the SDN
Advanced list is published weekly). Use --sources for specific sources,
or --force to ignore the schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "sync"))

		st, err := openStore(ctx, "sync")
		if err != nil {
			return err
		}
		defer st.Close()

		// Ensure migrations are current.
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "sync: migrate")
		}

		opts := parseSyncOpts(cmd)

		tempDir := cfg.Sync.TempDir
		if err := os.MkdirAll(tempDir, 0o755); err != nil {
			return eris.Wrapf(err, "sync: create temp dir %s", tempDir)
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:    cfg.Sync.UserAgent,
			Timeout:      time.Duration(cfg.Sync.TimeoutSecs) * time.Second,
			MaxRetries:   3,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})

		engine := ingest.NewEngine(st, f, ingest.NewRegistry(cfg), tempDir)

		log.Info("starting sync",
			zap.Strings("sources", opts.Sources),
			zap.Bool("force", opts.Force),
		)

		if err := engine.Run(ctx, opts); err != nil {
			return eris.Wrap(err, "sync")
		}

		fmt.Println("Sync complete")
		return nil
	},
}

func init() {
	syncCmd.Flags().String("sources", "", "comma-separated source names (default: every due source)")
	syncCmd.Flags().Bool("force", false, "ignore source schedules")
	rootCmd.AddCommand(syncCmd)
}

// parseSyncOpts extracts ingest.RunOpts from the cobra command flags.
func parseSyncOpts(cmd *cobra.Command) ingest.RunOpts {
	sourcesStr, _ := cmd.Flags().GetString("sources")
	force, _ := cmd.Flags().GetBool("force")

	opts := ingest.RunOpts{Force: force}
	if sourcesStr != "" {
		opts.Sources = strings.Split(sourcesStr, ",")
		for i := range opts.Sources {
			opts.Sources[i] = strings.TrimSpace(opts.Sources[i])
		}
	}
	return opts
}
