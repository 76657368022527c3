package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sanctions-cli/internal/sdn"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_ReplaceParties(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE TABLE "sanctions"."sdn_entries"`).
		WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"sanctions", "sdn_entries"}, sdnEntryColumns).
		WillReturnResult(2)
	mock.ExpectExec(`TRUNCATE TABLE "sanctions"."sdn_names"`).
		WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"sanctions", "sdn_names"}, sdnNameColumns).
		WillReturnResult(3)
	mock.ExpectCommit()

	n, err := s.ReplaceParties(context.Background(), testParties())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceParties_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// Both tables are still truncated so the list is cleared atomically.
	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE TABLE "sanctions"."sdn_entries"`).
		WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectExec(`TRUNCATE TABLE "sanctions"."sdn_names"`).
		WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCommit()

	n, err := s.ReplaceParties(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// entryMockRow builds the 21-column sdn_entries row the scanner expects.
func entryMockRow() *pgxmock.Rows {
	return pgxmock.NewRows(sdnEntryColumns).AddRow(
		int64(36), "Individual", []string{"SDGT"}, []string{"Executive Order 13224"},
		[]byte(`{"full_name":"BIN LADIN USAMA"}`), []byte(nil), []byte(nil), []byte(nil),
		[]string{"1957-07-30"}, []string{"Riyadh, Saudi Arabia"}, []string{"Saudi Arabia"}, []string(nil),
		"", "Male", "status unknown",
		[]byte(nil), []byte(nil), "",
		"2025-08-15", "2025-08-18T06:00:00.000000Z", sdn.SourceURL,
	)
}

func TestPostgresStore_GetParty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM sanctions.sdn_entries WHERE sdn_entry_id = \$1`).
		WithArgs(int64(36)).
		WillReturnRows(entryMockRow())

	p, err := s.GetParty(context.Background(), 36)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 36, p.SDNEntryID)
	assert.Equal(t, "Individual", p.SDNType)
	require.NotNil(t, p.PrimaryName)
	assert.Equal(t, "BIN LADIN USAMA", p.PrimaryName.FullName)
	assert.Equal(t, []string{"SDGT"}, p.Programs)
	assert.Nil(t, p.VesselInfo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetParty_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM sanctions.sdn_entries WHERE sdn_entry_id = \$1`).
		WithArgs(int64(99999)).
		WillReturnError(pgx.ErrNoRows)

	p, err := s.GetParty(context.Background(), 99999)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListParties(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM sanctions.sdn_entries ORDER BY sdn_entry_id`).
		WillReturnRows(entryMockRow())

	parties, err := s.ListParties(context.Background())
	require.NoError(t, err)
	require.Len(t, parties, 1)
	assert.Equal(t, 36, parties[0].SDNEntryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListNames(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"sdn_entry_id", "name", "is_primary", "quality"}).
		AddRow(int64(36), "BIN LADIN USAMA", true, "strong").
		AddRow(int64(36), "THE DIRECTOR", false, "weak")
	mock.ExpectQuery(`FROM sanctions.sdn_names`).WillReturnRows(rows)

	names, err := s.ListNames(context.Background())
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, NameRow{EntryID: 36, Name: "BIN LADIN USAMA", IsPrimary: true, Quality: "strong"}, names[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Stats(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"entries", "names", "publication_date"}).
		AddRow(int64(17426), int64(29311), "2025-08-15")
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17426), stats.Entries)
	assert.Equal(t, int64(29311), stats.Names)
	assert.Equal(t, "2025-08-15", stats.PublicationDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_StartSync(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO sanctions.sync_log`).
		WithArgs("sdn_advanced").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := s.StartSync(context.Background(), "sdn_advanced")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteSync(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE sanctions.sync_log`).
		WithArgs(int64(17426), pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteSync(context.Background(), 7, &SyncResult{
		RowsSynced: 17426,
		Metadata:   map[string]any{"publication_date": "2025-08-15"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteSync_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE sanctions.sync_log`).
		WithArgs(int64(0), pgxmock.AnyArg(), int64(424242)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteSync(context.Background(), 424242, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailSync(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE sanctions.sync_log`).
		WithArgs("download timeout", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.FailSync(context.Background(), 7, "download timeout")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LastSyncSuccess_Never(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM sanctions.sync_log`).
		WithArgs("sdn_advanced").
		WillReturnError(pgx.ErrNoRows)

	e, err := s.LastSyncSuccess(context.Background(), "sdn_advanced")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LastSyncSuccess(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	started := time.Date(2025, 8, 18, 6, 0, 0, 0, time.UTC)
	completed := started.Add(3 * time.Minute)
	rows := pgxmock.NewRows([]string{"id", "source", "status", "started_at", "completed_at", "rows_synced", "error", "metadata"}).
		AddRow(int64(7), "sdn_advanced", "complete", started, &completed, int64(17426), (*string)(nil), []byte(`{"publication_date":"2025-08-15"}`))
	mock.ExpectQuery(`FROM sanctions.sync_log`).
		WithArgs("sdn_advanced").
		WillReturnRows(rows)

	e, err := s.LastSyncSuccess(context.Background(), "sdn_advanced")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, int64(7), e.ID)
	assert.Equal(t, "complete", e.Status)
	assert.Equal(t, int64(17426), e.RowsSynced)
	require.NotNil(t, e.CompletedAt)
	assert.Equal(t, completed, *e.CompletedAt)
	assert.Equal(t, "2025-08-15", e.Metadata["publication_date"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSyncs(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	started := time.Date(2025, 8, 18, 6, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "source", "status", "started_at", "completed_at", "rows_synced", "error", "metadata"}).
		AddRow(int64(8), "sdn_advanced", "running", started, (*time.Time)(nil), int64(0), (*string)(nil), []byte(nil))
	mock.ExpectQuery(`FROM sanctions.sync_log`).
		WithArgs(25).
		WillReturnRows(rows)

	entries, err := s.ListSyncs(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "running", entries[0].Status)
	assert.Nil(t, entries[0].CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ping(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`SELECT 1`).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
