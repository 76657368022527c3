// Package store persists the flattened sanctions list and the sync log.
// Two drivers are provided: Postgres for shared deployments and SQLite
// for laptops and CI.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sells-group/sanctions-cli/internal/sdn"
)

// NameRow is one screenable name with its provenance. The primary name and
// every alias of an entry each contribute one row.
type NameRow struct {
	EntryID   int    `json:"sdn_entry_id"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"is_primary"`
	Quality   string `json:"quality,omitempty"`
}

// Stats summarizes the currently loaded list.
type Stats struct {
	Entries         int64  `json:"entries"`
	Names           int64  `json:"names"`
	PublicationDate string `json:"publication_date,omitempty"`
}

// SyncEntry is one row of the sync log.
type SyncEntry struct {
	ID          int64          `json:"id"`
	Source      string         `json:"source"`
	Status      string         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	RowsSynced  int64          `json:"rows_synced"`
	Error       string         `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SyncResult holds the outcome of a source sync, passed to CompleteSync.
type SyncResult struct {
	RowsSynced int64          `json:"rows_synced"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Store is the persistence interface shared by the sync engine, the
// screening service, and the CLI commands.
type Store interface {
	// ReplaceParties atomically swaps the loaded list for the given
	// parties and returns the number of entries loaded.
	ReplaceParties(ctx context.Context, parties []sdn.Party) (int64, error)
	// GetParty returns one entry by its sdn_entry_id, or nil if absent.
	GetParty(ctx context.Context, entryID int) (*sdn.Party, error)
	// ListParties returns the full list ordered by sdn_entry_id. The
	// screening matcher indexes the result in memory.
	ListParties(ctx context.Context) ([]sdn.Party, error)
	// ListNames returns the flattened name corpus.
	ListNames(ctx context.Context) ([]NameRow, error)
	// Stats reports row counts and the latest publication date.
	Stats(ctx context.Context) (*Stats, error)

	// StartSync records the beginning of a sync run and returns its ID.
	StartSync(ctx context.Context, source string) (int64, error)
	// CompleteSync marks a sync run as successfully completed.
	CompleteSync(ctx context.Context, syncID int64, result *SyncResult) error
	// FailSync marks a sync run as failed with an error message.
	FailSync(ctx context.Context, syncID int64, errMsg string) error
	// LastSyncSuccess returns the most recent completed sync for a
	// source, or nil if the source has never synced successfully.
	LastSyncSuccess(ctx context.Context, source string) (*SyncEntry, error)
	// ListSyncs returns recent sync log entries, newest first.
	ListSyncs(ctx context.Context, limit int) ([]SyncEntry, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// scannable covers pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// partyNames flattens a party's primary name and aliases into name rows.
// Names without a full rendering (alias stubs carrying only script
// variants) are skipped. The primary name always counts as strong.
func partyNames(p *sdn.Party) []NameRow {
	var names []NameRow
	if p.PrimaryName != nil && p.PrimaryName.FullName != "" {
		names = append(names, NameRow{
			EntryID:   p.SDNEntryID,
			Name:      p.PrimaryName.FullName,
			IsPrimary: true,
			Quality:   "strong",
		})
	}
	for _, a := range p.Aliases {
		if a.FullName == "" {
			continue
		}
		names = append(names, NameRow{
			EntryID: p.SDNEntryID,
			Name:    a.FullName,
			Quality: a.AliasQuality,
		})
	}
	return names
}

// colEncoder marshals nested records to JSON column values. Absent records
// become nil so they land as SQL NULL. The first marshal error sticks and
// is checked once after the row is built.
type colEncoder struct {
	err error
}

func (e *colEncoder) record(v any, present bool) []byte {
	if e.err != nil || !present {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		e.err = err
		return nil
	}
	return b
}
