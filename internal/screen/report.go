package screen

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteXLSX writes the report as a workbook with a Summary sheet (run
// metadata plus one row per input name) and a Hits sheet (one row per hit).
func (r *BatchReport) WriteXLSX(path string) error {
	f := xlsx.NewFile()

	if err := r.writeSummarySheet(f); err != nil {
		return err
	}
	if err := r.writeHitsSheet(f); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "screen: save report")
	}
	return nil
}

func (r *BatchReport) writeSummarySheet(f *xlsx.File) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "screen: add summary sheet")
	}

	addPair(sheet, "Report ID", r.ReportID)
	addPair(sheet, "Generated (UTC)", r.GeneratedAt.Format(time.RFC3339))
	addPair(sheet, "Input", r.Input)
	addPair(sheet, "Threshold", r.Threshold)
	addPair(sheet, "Limit per name", r.Limit)
	addPair(sheet, "Names screened", len(r.Rows))
	addPair(sheet, "Names with hits", r.Matches())
	sheet.AddRow()

	header := sheet.AddRow()
	for _, h := range []string{"Position", "Name", "Match", "Hits"} {
		header.AddCell().SetString(h)
	}

	for _, row := range r.Rows {
		out := sheet.AddRow()
		out.AddCell().SetInt(row.Position)
		out.AddCell().SetString(row.Name)
		out.AddCell().SetString(yesNo(row.IsMatch))
		out.AddCell().SetInt(len(row.Hits))
	}
	return nil
}

func (r *BatchReport) writeHitsSheet(f *xlsx.File) error {
	sheet, err := f.AddSheet("Hits")
	if err != nil {
		return eris.Wrap(err, "screen: add hits sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Input Name", "SDN Entry ID", "SDN Type", "Primary Name",
		"Matched Name", "Match Score", "Edit Distance", "Programs",
	} {
		header.AddCell().SetString(h)
	}

	for _, row := range r.Rows {
		for _, hit := range row.Hits {
			out := sheet.AddRow()
			out.AddCell().SetString(row.Name)
			out.AddCell().SetInt(hit.EntryID)
			out.AddCell().SetString(hit.SDNType)
			out.AddCell().SetString(hit.PrimaryName)
			out.AddCell().SetString(hit.MatchedName)
			out.AddCell().SetInt(hit.Score)
			out.AddCell().SetInt(hit.Distance)
			out.AddCell().SetString(strings.Join(hit.Programs, "; "))
		}
	}
	return nil
}

func addPair(sheet *xlsx.Sheet, label string, value any) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	switch v := value.(type) {
	case int:
		row.AddCell().SetInt(v)
	case string:
		row.AddCell().SetString(v)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
