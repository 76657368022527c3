package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sanctions-cli/internal/sdn"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored list to a spreadsheet",
	Long:  "Writes the flattened list to a .xlsx or .csv file (chosen by extension) for offline review.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out, _ := cmd.Flags().GetString("out")

		st, err := openStore(ctx, "screen")
		if err != nil {
			return err
		}
		defer st.Close()

		parties, err := st.ListParties(ctx)
		if err != nil {
			return eris.Wrap(err, "export: load list")
		}
		if len(parties) == 0 {
			return eris.New("export: store is empty, run 'sync' first")
		}

		if err := exportParties(parties, out); err != nil {
			return err
		}

		fmt.Printf("Exported %d entries to %s\n", len(parties), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "sdn_entries.xlsx", "output file (.xlsx or .csv)")
	rootCmd.AddCommand(exportCmd)
}

var exportHeader = []string{
	"SDN Entry ID", "SDN Type", "Primary Name", "Aliases",
	"Programs", "Dates of Birth", "Nationalities", "Publication Date",
}

func exportRow(p *sdn.Party) []string {
	primary := ""
	if p.PrimaryName != nil {
		primary = p.PrimaryName.FullName
	}
	aliases := make([]string, 0, len(p.Aliases))
	for _, a := range p.Aliases {
		if a.FullName != "" {
			aliases = append(aliases, a.FullName)
		}
	}
	return []string{
		strconv.Itoa(p.SDNEntryID),
		p.SDNType,
		primary,
		strings.Join(aliases, "; "),
		strings.Join(p.Programs, "; "),
		strings.Join(p.DatesOfBirth, "; "),
		strings.Join(p.Nationalities, "; "),
		p.PublicationDate,
	}
}

// exportParties writes the list to path, with the format chosen by the
// file extension (.xlsx or .csv).
func exportParties(parties []sdn.Party, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return exportXLSX(parties, path)
	case ".csv":
		return exportCSV(parties, path)
	default:
		return eris.Errorf("export: unsupported output format %q (want .xlsx or .csv)", filepath.Ext(path))
	}
}

func exportXLSX(parties []sdn.Party, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Entries")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}
	for i := range parties {
		row := sheet.AddRow()
		for _, val := range exportRow(&parties[i]) {
			row.AddCell().SetString(val)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}

func exportCSV(parties []sdn.Party, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for i := range parties {
		if err := w.Write(exportRow(&parties[i])); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}
