package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// ReplaceSet describes the full contents of one table for ReplaceAll.
type ReplaceSet struct {
	Table   string   // target table (e.g., "sanctions.sdn_entries")
	Columns []string // all columns being loaded
	Rows    [][]any
}

// ReplaceAll atomically replaces the full contents of one or more tables.
// Each table is truncated and re-loaded via the COPY protocol inside a
// single transaction, so readers never observe a partially refreshed
// list. Returns the total number of rows copied.
func ReplaceAll(ctx context.Context, pool Pool, sets []ReplaceSet) (int64, error) {
	if len(sets) == 0 {
		return 0, nil
	}
	for _, set := range sets {
		if set.Table == "" {
			return 0, eris.New("db: replace: no table specified")
		}
		if len(set.Columns) == 0 {
			return 0, eris.Errorf("db: replace: no columns specified for %s", set.Table)
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var total int64
	for _, set := range sets {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+sanitizeTable(set.Table)); err != nil {
			return 0, eris.Wrapf(err, "db: replace: TRUNCATE %s", set.Table)
		}

		if len(set.Rows) == 0 {
			continue
		}

		n, err := tx.CopyFrom(ctx, tableIdentifier(set.Table), set.Columns, pgx.CopyFromRows(set.Rows))
		if err != nil {
			return 0, eris.Wrapf(err, "db: replace: COPY INTO %s", set.Table)
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit tx")
	}

	return total, nil
}

// tableIdentifier splits a possibly schema-qualified table name into a pgx.Identifier.
func tableIdentifier(table string) pgx.Identifier {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}
	}
	return pgx.Identifier{table}
}

// sanitizeTable quotes a possibly schema-qualified table name.
func sanitizeTable(table string) string {
	return tableIdentifier(table).Sanitize()
}
