package screen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sanctions-cli/internal/fetcher"
	"github.com/sells-group/sanctions-cli/internal/match"
)

// BatchOptions configures a batch screening run.
type BatchOptions struct {
	Threshold int
	Limit     int    // hits kept per input name
	Column    int    // 0-based column holding the names
	HasHeader bool   // skip the first row
	SheetName string // xlsx only; empty means the first sheet
}

// BatchRow is one screened input name.
type BatchRow struct {
	Position int         `json:"position"` // 1-based input order
	Name     string      `json:"name"`
	IsMatch  bool        `json:"is_match"`
	Hits     []match.Hit `json:"hits"`
}

// BatchReport summarizes a batch screening run.
type BatchReport struct {
	ReportID    string     `json:"report_id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Input       string     `json:"input"`
	Threshold   int        `json:"threshold"`
	Limit       int        `json:"limit"`
	Rows        []BatchRow `json:"rows"`
}

// Matches counts input names with at least one hit.
func (r *BatchReport) Matches() int {
	n := 0
	for _, row := range r.Rows {
		if row.IsMatch {
			n++
		}
	}
	return n
}

// ScreenBatch reads a column of names from path (.csv or .xlsx, by
// extension) and screens each one. Blank cells are skipped; positions count
// the names actually screened.
func (s *Service) ScreenBatch(ctx context.Context, path string, opts BatchOptions) (*BatchReport, error) {
	log := zap.L().With(zap.String("component", "screen.batch"))

	names, err := readNames(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, eris.Errorf("screen: no names found in %s", path)
	}

	threshold := ClampThreshold(opts.Threshold)
	limit := ClampLimit(opts.Limit)
	m := s.snapshot()

	log.Info("screening batch",
		zap.String("input", path),
		zap.Int("names", len(names)),
		zap.Int("threshold", threshold),
	)

	report := &BatchReport{
		ReportID:    uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Input:       filepath.Base(path),
		Threshold:   threshold,
		Limit:       limit,
	}

	for i, name := range names {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		hits := normalizeHits(m.Screen(name, threshold, limit))
		report.Rows = append(report.Rows, BatchRow{
			Position: i + 1,
			Name:     name,
			IsMatch:  len(hits) > 0,
			Hits:     hits,
		})
	}

	log.Info("batch screened",
		zap.String("report_id", report.ReportID),
		zap.Int("names", len(report.Rows)),
		zap.Int("matches", report.Matches()),
	)
	return report, nil
}

// readNames dispatches on the input file extension.
func readNames(ctx context.Context, path string, opts BatchOptions) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVNames(ctx, path, opts)
	case ".xlsx":
		return readXLSXNames(path, opts)
	default:
		return nil, eris.Errorf("screen: unsupported input format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

func readCSVNames(ctx context.Context, path string, opts BatchOptions) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "screen: open batch input")
	}
	defer f.Close()

	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		HasHeader: opts.HasHeader,
		TrimSpace: true,
	})

	var names []string
	for row := range rowCh {
		names = appendName(names, row, opts.Column)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "screen: read batch CSV")
	}
	return names, nil
}

func readXLSXNames(path string, opts BatchOptions) ([]string, error) {
	skip := 0
	if opts.HasHeader {
		skip = 1
	}
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{
		SheetName: opts.SheetName,
		SkipRows:  skip,
	})
	if err != nil {
		return nil, eris.Wrap(err, "screen: read batch XLSX")
	}

	var names []string
	for _, row := range rows {
		names = appendName(names, row, opts.Column)
	}
	return names, nil
}

func appendName(names []string, row []string, col int) []string {
	if col >= len(row) {
		return names
	}
	name := strings.TrimSpace(row[col])
	if name == "" {
		return names
	}
	return append(names, name)
}
