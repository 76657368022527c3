package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/sanctions-cli/internal/sdn"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the
// zero-setup option for laptops and CI.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sdn_entries (
	sdn_entry_id              INTEGER PRIMARY KEY,
	sdn_type                  TEXT NOT NULL DEFAULT '',
	programs                  TEXT,
	legal_authorities         TEXT,
	primary_name              TEXT,
	aliases                   TEXT,
	addresses                 TEXT,
	id_documents              TEXT,
	dates_of_birth            TEXT,
	places_of_birth           TEXT,
	nationalities             TEXT,
	citizenships              TEXT,
	title                     TEXT NOT NULL DEFAULT '',
	gender                    TEXT NOT NULL DEFAULT '',
	remarks                   TEXT NOT NULL DEFAULT '',
	vessel_info               TEXT,
	aircraft_info             TEXT,
	additional_sanctions_info TEXT NOT NULL DEFAULT '',
	publication_date          TEXT NOT NULL DEFAULT '',
	ingestion_timestamp       TEXT NOT NULL DEFAULT '',
	source_url                TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sdn_names (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	sdn_entry_id INTEGER NOT NULL,
	name         TEXT NOT NULL,
	is_primary   INTEGER NOT NULL DEFAULT 0,
	quality      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sync_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	rows_synced  INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	metadata     TEXT
);

CREATE INDEX IF NOT EXISTS idx_sdn_names_entry ON sdn_names(sdn_entry_id);
CREATE INDEX IF NOT EXISTS idx_sdn_names_name ON sdn_names(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_sync_log_source ON sync_log(source, started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database file is reachable and writable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

const sqliteInsertEntry = `INSERT INTO sdn_entries (
	sdn_entry_id, sdn_type, programs, legal_authorities,
	primary_name, aliases, addresses, id_documents,
	dates_of_birth, places_of_birth, nationalities, citizenships,
	title, gender, remarks,
	vessel_info, aircraft_info, additional_sanctions_info,
	publication_date, ingestion_timestamp, source_url
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ReplaceParties swaps the loaded list inside one transaction. An empty
// slice clears the list.
func (s *SQLiteStore) ReplaceParties(ctx context.Context, parties []sdn.Party) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin replace")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM sdn_entries"); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear sdn_entries")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sdn_names"); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear sdn_names")
	}

	insertEntry, err := tx.PrepareContext(ctx, sqliteInsertEntry)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare entry insert")
	}
	defer insertEntry.Close() //nolint:errcheck

	insertName, err := tx.PrepareContext(ctx,
		`INSERT INTO sdn_names (sdn_entry_id, name, is_primary, quality) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare name insert")
	}
	defer insertName.Close() //nolint:errcheck

	for i := range parties {
		p := &parties[i]
		args, err := sqliteEntryArgs(p)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: encode entry %d", p.SDNEntryID)
		}
		if _, err := insertEntry.ExecContext(ctx, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert entry %d", p.SDNEntryID)
		}
		for _, n := range partyNames(p) {
			if _, err := insertName.ExecContext(ctx, n.EntryID, n.Name, n.IsPrimary, n.Quality); err != nil {
				return 0, eris.Wrapf(err, "sqlite: insert name for entry %d", n.EntryID)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit replace")
	}
	return int64(len(parties)), nil
}

// sqliteEntryArgs flattens one party into sqliteInsertEntry placeholder
// order. Nested records and repeated strings become JSON text columns.
func sqliteEntryArgs(p *sdn.Party) ([]any, error) {
	var enc colEncoder
	args := []any{
		p.SDNEntryID,
		p.SDNType,
		textArg(enc.record(p.Programs, len(p.Programs) > 0)),
		textArg(enc.record(p.LegalAuthorities, len(p.LegalAuthorities) > 0)),
		textArg(enc.record(p.PrimaryName, p.PrimaryName != nil)),
		textArg(enc.record(p.Aliases, len(p.Aliases) > 0)),
		textArg(enc.record(p.Addresses, len(p.Addresses) > 0)),
		textArg(enc.record(p.IDDocuments, len(p.IDDocuments) > 0)),
		textArg(enc.record(p.DatesOfBirth, len(p.DatesOfBirth) > 0)),
		textArg(enc.record(p.PlacesOfBirth, len(p.PlacesOfBirth) > 0)),
		textArg(enc.record(p.Nationalities, len(p.Nationalities) > 0)),
		textArg(enc.record(p.Citizenships, len(p.Citizenships) > 0)),
		p.Title,
		p.Gender,
		p.Remarks,
		textArg(enc.record(p.VesselInfo, p.VesselInfo != nil)),
		textArg(enc.record(p.AircraftInfo, p.AircraftInfo != nil)),
		p.AdditionalSanctionsInfo,
		p.PublicationDate,
		p.IngestionTimestamp,
		p.SourceURL,
	}
	if enc.err != nil {
		return nil, enc.err
	}
	return args, nil
}

// textArg converts an encoded JSON column value to a TEXT binding,
// preserving NULL.
func textArg(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

const sqliteEntrySelect = `SELECT sdn_entry_id, sdn_type, programs, legal_authorities,
	primary_name, aliases, addresses, id_documents,
	dates_of_birth, places_of_birth, nationalities, citizenships,
	title, gender, remarks,
	vessel_info, aircraft_info, additional_sanctions_info,
	publication_date, ingestion_timestamp, source_url
	FROM sdn_entries`

// GetParty returns one entry by sdn_entry_id, or nil if absent.
func (s *SQLiteStore) GetParty(ctx context.Context, entryID int) (*sdn.Party, error) {
	row := s.db.QueryRowContext(ctx, sqliteEntrySelect+" WHERE sdn_entry_id = ?", entryID)
	p, err := scanSQLiteParty(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get party %d", entryID)
	}
	return p, nil
}

// ListParties returns every loaded entry ordered by sdn_entry_id.
func (s *SQLiteStore) ListParties(ctx context.Context) ([]sdn.Party, error) {
	rows, err := s.db.QueryContext(ctx, sqliteEntrySelect+" ORDER BY sdn_entry_id")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list parties")
	}
	defer rows.Close() //nolint:errcheck

	var parties []sdn.Party
	for rows.Next() {
		p, err := scanSQLiteParty(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan party")
		}
		parties = append(parties, *p)
	}
	return parties, rows.Err()
}

func scanSQLiteParty(row scannable) (*sdn.Party, error) {
	var (
		p                                             sdn.Party
		programs, legal, primary, aliases             sql.NullString
		addresses, idDocs, dob, pob                   sql.NullString
		nationalities, citizenships, vessel, aircraft sql.NullString
	)
	err := row.Scan(
		&p.SDNEntryID, &p.SDNType, &programs, &legal,
		&primary, &aliases, &addresses, &idDocs,
		&dob, &pob, &nationalities, &citizenships,
		&p.Title, &p.Gender, &p.Remarks,
		&vessel, &aircraft, &p.AdditionalSanctionsInfo,
		&p.PublicationDate, &p.IngestionTimestamp, &p.SourceURL,
	)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		src sql.NullString
		dst any
	}{
		{programs, &p.Programs},
		{legal, &p.LegalAuthorities},
		{primary, &p.PrimaryName},
		{aliases, &p.Aliases},
		{addresses, &p.Addresses},
		{idDocs, &p.IDDocuments},
		{dob, &p.DatesOfBirth},
		{pob, &p.PlacesOfBirth},
		{nationalities, &p.Nationalities},
		{citizenships, &p.Citizenships},
		{vessel, &p.VesselInfo},
		{aircraft, &p.AircraftInfo},
	} {
		if !col.src.Valid || col.src.String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(col.src.String), col.dst); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// ListNames returns the flattened name corpus, primary names first within
// each entry.
func (s *SQLiteStore) ListNames(ctx context.Context) ([]NameRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sdn_entry_id, name, is_primary, quality FROM sdn_names
		 ORDER BY sdn_entry_id, is_primary DESC, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list names")
	}
	defer rows.Close() //nolint:errcheck

	var names []NameRow
	for rows.Next() {
		var n NameRow
		if err := rows.Scan(&n.EntryID, &n.Name, &n.IsPrimary, &n.Quality); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan name")
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Stats reports row counts and the latest publication date.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM sdn_entries),
			(SELECT count(*) FROM sdn_names),
			(SELECT coalesce(max(publication_date), '') FROM sdn_entries)
	`).Scan(&st.Entries, &st.Names, &st.PublicationDate)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}
	return &st, nil
}

// StartSync records the beginning of a sync run and returns its ID.
func (s *SQLiteStore) StartSync(ctx context.Context, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_log (source, status, started_at) VALUES (?, 'running', ?)`,
		source, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: start sync for %s", source)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: sync insert id")
	}
	return id, nil
}

// CompleteSync marks a sync run as successfully completed.
func (s *SQLiteStore) CompleteSync(ctx context.Context, syncID int64, result *SyncResult) error {
	var metaJSON any
	if result != nil && result.Metadata != nil {
		b, err := json.Marshal(result.Metadata)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal sync metadata")
		}
		metaJSON = string(b)
	}

	rowsSynced := int64(0)
	if result != nil {
		rowsSynced = result.RowsSynced
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sync_log
		 SET status = 'complete', completed_at = ?, rows_synced = ?, metadata = ?
		 WHERE id = ?`,
		time.Now().UTC(), rowsSynced, metaJSON, syncID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete sync %d", syncID)
	}
	return checkRowsAffected(res, "sync", syncID)
}

// FailSync marks a sync run as failed with an error message.
func (s *SQLiteStore) FailSync(ctx context.Context, syncID int64, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sync_log
		 SET status = 'failed', completed_at = ?, error = ?
		 WHERE id = ?`,
		time.Now().UTC(), errMsg, syncID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail sync %d", syncID)
	}
	return checkRowsAffected(res, "sync", syncID)
}

// LastSyncSuccess returns the most recent completed sync for a source, or
// nil if the source has never synced successfully.
func (s *SQLiteStore) LastSyncSuccess(ctx context.Context, source string) (*SyncEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, status, started_at, completed_at, rows_synced, error, metadata
		 FROM sync_log
		 WHERE source = ? AND status = 'complete'
		 ORDER BY started_at DESC LIMIT 1`,
		source,
	)
	e, err := scanSQLiteSyncEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: last sync for %s", source)
	}
	return e, nil
}

// ListSyncs returns recent sync log entries, newest first.
func (s *SQLiteStore) ListSyncs(ctx context.Context, limit int) ([]SyncEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, status, started_at, completed_at, rows_synced, error, metadata
		 FROM sync_log ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list syncs")
	}
	defer rows.Close() //nolint:errcheck

	var entries []SyncEntry
	for rows.Next() {
		e, err := scanSQLiteSyncEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sync entry")
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanSQLiteSyncEntry(row scannable) (*SyncEntry, error) {
	var (
		e           SyncEntry
		completedAt sql.NullTime
		errStr      sql.NullString
		metaJSON    sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Source, &e.Status, &e.StartedAt, &completedAt, &e.RowsSynced, &errStr, &metaJSON); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		e.CompletedAt = &t
	}
	if errStr.Valid {
		e.Error = errStr.String
	}
	if metaJSON.Valid && metaJSON.String != "" {
		_ = json.Unmarshal([]byte(metaJSON.String), &e.Metadata)
	}
	return &e, nil
}

// checkRowsAffected returns an error when an UPDATE matched no rows.
func checkRowsAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %d", entity, id)
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %d not found", entity, id)
	}
	return nil
}
