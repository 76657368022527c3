package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sanctions-cli/internal/screen"
)

var screenCmd = &cobra.Command{
	Use:   "screen [name]",
	Short: "Screen a name against the sanctions list",
	Long: `Screen one name against the loaded list and print the hits.

Threshold is the maximum edit distance that still counts as a match
(0-10); limit caps the number of hits returned (1-100). Both default
to the values in the screening config section.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "screen")
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := screen.NewService(ctx, st, nil)
		if err != nil {
			return eris.Wrap(err, "screen: index list")
		}

		threshold, limit := screenParams(cmd)
		resp, err := svc.ScreenName(ctx, args[0], threshold, limit)
		if err != nil {
			return eris.Wrap(err, "screen")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return eris.Wrap(err, "screen: encode response")
			}
			fmt.Println(string(out))
			return nil
		}

		formatScreenResponse(os.Stdout, resp)
		return nil
	},
}

func init() {
	screenCmd.Flags().Int("threshold", screen.DefaultThreshold, "maximum edit distance counted as a match (0-10)")
	screenCmd.Flags().Int("limit", screen.DefaultLimit, "maximum hits returned (1-100)")
	screenCmd.Flags().Bool("json", false, "print the raw JSON response")
	rootCmd.AddCommand(screenCmd)
}

// screenParams resolves threshold and limit: explicit flags win, otherwise
// the configured defaults apply. Changed() keeps an explicit 0 distinct
// from an omitted flag.
func screenParams(cmd *cobra.Command) (threshold, limit int) {
	threshold = cfg.Screening.DefaultThreshold
	if cmd.Flags().Changed("threshold") {
		threshold, _ = cmd.Flags().GetInt("threshold")
	}
	limit = cfg.Screening.DefaultLimit
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}
	return threshold, limit
}

// formatScreenResponse writes a tabular representation of the hits to w.
func formatScreenResponse(out io.Writer, resp *screen.Response) {
	fmt.Fprintf(out, "Query: %s  Threshold: %d  Hits: %d\n", resp.Query, resp.Threshold, resp.TotalHits)
	if resp.TotalHits == 0 {
		fmt.Fprintln(out, "No matches.")
		return
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCORE\tDIST\tENTRY\tTYPE\tMATCHED NAME\tPRIMARY NAME\tPROGRAMS")
	for _, h := range resp.Results {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
			h.Score,
			h.Distance,
			h.EntryID,
			h.SDNType,
			h.MatchedName,
			h.PrimaryName,
			strings.Join(h.Programs, "; "),
		)
	}
	_ = w.Flush()
}
