package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sanctions-cli/internal/screen"
)

var screenBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Screen a spreadsheet of names and write a report",
	Long: `Read a column of names from a .csv or .xlsx file, screen each one,
and write an .xlsx report with a summary sheet and a hits sheet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		input, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("out")
		column, _ := cmd.Flags().GetInt("column")
		hasHeader, _ := cmd.Flags().GetBool("has-header")
		sheet, _ := cmd.Flags().GetString("sheet")

		if out == "" {
			out = defaultReportPath(input)
		}

		st, err := openStore(ctx, "screen")
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := screen.NewService(ctx, st, nil)
		if err != nil {
			return eris.Wrap(err, "screen batch: index list")
		}

		threshold, limit := screenParams(cmd)
		report, err := svc.ScreenBatch(ctx, input, screen.BatchOptions{
			Threshold: threshold,
			Limit:     limit,
			Column:    column,
			HasHeader: hasHeader,
			SheetName: sheet,
		})
		if err != nil {
			return eris.Wrap(err, "screen batch")
		}

		if err := report.WriteXLSX(out); err != nil {
			return eris.Wrap(err, "screen batch")
		}

		fmt.Printf("Report %s\n", report.ReportID)
		fmt.Printf("Screened %d names, %d with hits\n", len(report.Rows), report.Matches())
		fmt.Printf("Written to %s\n", out)
		return nil
	},
}

func init() {
	screenBatchCmd.Flags().String("input", "", "input file (.csv or .xlsx)")
	screenBatchCmd.Flags().String("out", "", "report path (default: <input>_screening.xlsx)")
	screenBatchCmd.Flags().Int("column", 0, "0-based column holding the names")
	screenBatchCmd.Flags().Bool("has-header", true, "skip the first row of the input")
	screenBatchCmd.Flags().String("sheet", "", "sheet name (.xlsx input only; default: first sheet)")
	screenBatchCmd.Flags().Int("threshold", screen.DefaultThreshold, "maximum edit distance counted as a match (0-10)")
	screenBatchCmd.Flags().Int("limit", screen.DefaultLimit, "maximum hits kept per name (1-100)")
	_ = screenBatchCmd.MarkFlagRequired("input")
	screenCmd.AddCommand(screenBatchCmd)
}

// defaultReportPath derives the report path from the input file name:
// clients.csv becomes clients_screening.xlsx, alongside the input.
func defaultReportPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_screening.xlsx"
}
