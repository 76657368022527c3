package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sanctions-cli/internal/db"
	"github.com/sells-group/sanctions-cli/internal/sdn"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

var _ Store = (*PostgresStore)(nil)

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// sdnEntryColumns lists sanctions.sdn_entries columns in load and scan
// order. entryRow and scanParty must stay aligned with it.
var sdnEntryColumns = []string{
	"sdn_entry_id", "sdn_type", "programs", "legal_authorities",
	"primary_name", "aliases", "addresses", "id_documents",
	"dates_of_birth", "places_of_birth", "nationalities", "citizenships",
	"title", "gender", "remarks",
	"vessel_info", "aircraft_info", "additional_sanctions_info",
	"publication_date", "ingestion_timestamp", "source_url",
}

var sdnNameColumns = []string{"sdn_entry_id", "name", "is_primary", "quality"}

var sdnEntrySelect = "SELECT " + strings.Join(sdnEntryColumns, ", ") + " FROM sanctions.sdn_entries"

const syncEntrySelect = `SELECT id, source, status, started_at, completed_at, rows_synced, error, metadata
	 FROM sanctions.sync_log`

// ReplaceParties atomically replaces sanctions.sdn_entries and
// sanctions.sdn_names with rows flattened from the given parties. An empty
// slice clears the list.
func (s *PostgresStore) ReplaceParties(ctx context.Context, parties []sdn.Party) (int64, error) {
	entryRows := make([][]any, 0, len(parties))
	nameRows := make([][]any, 0, len(parties)*2)

	for i := range parties {
		p := &parties[i]
		row, err := entryRow(p)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: encode entry %d", p.SDNEntryID)
		}
		entryRows = append(entryRows, row)
		for _, n := range partyNames(p) {
			nameRows = append(nameRows, []any{int64(n.EntryID), n.Name, n.IsPrimary, n.Quality})
		}
	}

	_, err := db.ReplaceAll(ctx, s.pool, []db.ReplaceSet{
		{Table: "sanctions.sdn_entries", Columns: sdnEntryColumns, Rows: entryRows},
		{Table: "sanctions.sdn_names", Columns: sdnNameColumns, Rows: nameRows},
	})
	if err != nil {
		return 0, eris.Wrap(err, "postgres: replace parties")
	}
	return int64(len(entryRows)), nil
}

// entryRow flattens one party into sdnEntryColumns order. Nested records
// go to JSONB columns, repeated strings to text[].
func entryRow(p *sdn.Party) ([]any, error) {
	var enc colEncoder
	row := []any{
		int64(p.SDNEntryID),
		p.SDNType,
		p.Programs,
		p.LegalAuthorities,
		enc.record(p.PrimaryName, p.PrimaryName != nil),
		enc.record(p.Aliases, len(p.Aliases) > 0),
		enc.record(p.Addresses, len(p.Addresses) > 0),
		enc.record(p.IDDocuments, len(p.IDDocuments) > 0),
		p.DatesOfBirth,
		p.PlacesOfBirth,
		p.Nationalities,
		p.Citizenships,
		p.Title,
		p.Gender,
		p.Remarks,
		enc.record(p.VesselInfo, p.VesselInfo != nil),
		enc.record(p.AircraftInfo, p.AircraftInfo != nil),
		p.AdditionalSanctionsInfo,
		p.PublicationDate,
		p.IngestionTimestamp,
		p.SourceURL,
	}
	if enc.err != nil {
		return nil, enc.err
	}
	return row, nil
}

// GetParty returns one entry by sdn_entry_id, or nil if absent.
func (s *PostgresStore) GetParty(ctx context.Context, entryID int) (*sdn.Party, error) {
	row := s.pool.QueryRow(ctx, sdnEntrySelect+" WHERE sdn_entry_id = $1", int64(entryID))
	p, err := scanParty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get party %d", entryID)
	}
	return p, nil
}

// ListParties returns every loaded entry ordered by sdn_entry_id.
func (s *PostgresStore) ListParties(ctx context.Context) ([]sdn.Party, error) {
	rows, err := s.pool.Query(ctx, sdnEntrySelect+" ORDER BY sdn_entry_id")
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list parties")
	}
	defer rows.Close()

	var parties []sdn.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan party")
		}
		parties = append(parties, *p)
	}
	return parties, rows.Err()
}

// scanParty reads one sdn_entries row back into a Party.
func scanParty(row scannable) (*sdn.Party, error) {
	var (
		p                                                     sdn.Party
		entryID                                               int64
		primary, aliases, addresses, idDocs, vessel, aircraft []byte
	)
	err := row.Scan(
		&entryID, &p.SDNType, &p.Programs, &p.LegalAuthorities,
		&primary, &aliases, &addresses, &idDocs,
		&p.DatesOfBirth, &p.PlacesOfBirth, &p.Nationalities, &p.Citizenships,
		&p.Title, &p.Gender, &p.Remarks,
		&vessel, &aircraft, &p.AdditionalSanctionsInfo,
		&p.PublicationDate, &p.IngestionTimestamp, &p.SourceURL,
	)
	if err != nil {
		return nil, err
	}
	p.SDNEntryID = int(entryID)

	for _, col := range []struct {
		data []byte
		dst  any
	}{
		{primary, &p.PrimaryName},
		{aliases, &p.Aliases},
		{addresses, &p.Addresses},
		{idDocs, &p.IDDocuments},
		{vessel, &p.VesselInfo},
		{aircraft, &p.AircraftInfo},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// ListNames returns the flattened name corpus, primary names first within
// each entry.
func (s *PostgresStore) ListNames(ctx context.Context) ([]NameRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sdn_entry_id, name, is_primary, quality FROM sanctions.sdn_names
		 ORDER BY sdn_entry_id, is_primary DESC, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list names")
	}
	defer rows.Close()

	var names []NameRow
	for rows.Next() {
		var (
			n       NameRow
			entryID int64
		)
		if err := rows.Scan(&entryID, &n.Name, &n.IsPrimary, &n.Quality); err != nil {
			return nil, eris.Wrap(err, "postgres: scan name")
		}
		n.EntryID = int(entryID)
		names = append(names, n)
	}
	return names, rows.Err()
}

// Stats reports row counts and the latest publication date.
func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM sanctions.sdn_entries),
			(SELECT count(*) FROM sanctions.sdn_names),
			(SELECT coalesce(max(publication_date), '') FROM sanctions.sdn_entries)
	`).Scan(&st.Entries, &st.Names, &st.PublicationDate)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats")
	}
	return &st, nil
}

// StartSync records the beginning of a sync run and returns its ID.
func (s *PostgresStore) StartSync(ctx context.Context, source string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sanctions.sync_log (source, status, started_at)
		 VALUES ($1, 'running', now()) RETURNING id`,
		source,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: start sync for %s", source)
	}
	return id, nil
}

// CompleteSync marks a sync run as successfully completed.
func (s *PostgresStore) CompleteSync(ctx context.Context, syncID int64, result *SyncResult) error {
	var metaJSON []byte
	if result != nil && result.Metadata != nil {
		var err error
		metaJSON, err = json.Marshal(result.Metadata)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal sync metadata")
		}
	}

	rowsSynced := int64(0)
	if result != nil {
		rowsSynced = result.RowsSynced
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE sanctions.sync_log
		 SET status = 'complete', completed_at = now(), rows_synced = $1, metadata = $2
		 WHERE id = $3`,
		rowsSynced, metaJSON, syncID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete sync %d", syncID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: sync %d not found", syncID)
	}
	return nil
}

// FailSync marks a sync run as failed with an error message.
func (s *PostgresStore) FailSync(ctx context.Context, syncID int64, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sanctions.sync_log
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE id = $2`,
		errMsg, syncID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail sync %d", syncID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: sync %d not found", syncID)
	}
	return nil
}

// LastSyncSuccess returns the most recent completed sync for a source, or
// nil if the source has never synced successfully.
func (s *PostgresStore) LastSyncSuccess(ctx context.Context, source string) (*SyncEntry, error) {
	row := s.pool.QueryRow(ctx,
		syncEntrySelect+`
		 WHERE source = $1 AND status = 'complete'
		 ORDER BY started_at DESC LIMIT 1`,
		source,
	)
	e, err := scanSyncEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: last sync for %s", source)
	}
	return e, nil
}

// ListSyncs returns recent sync log entries, newest first.
func (s *PostgresStore) ListSyncs(ctx context.Context, limit int) ([]SyncEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, syncEntrySelect+" ORDER BY started_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list syncs")
	}
	defer rows.Close()

	var entries []SyncEntry
	for rows.Next() {
		e, err := scanSyncEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan sync entry")
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanSyncEntry(row scannable) (*SyncEntry, error) {
	var (
		e        SyncEntry
		errStr   *string
		metaJSON []byte
	)
	if err := row.Scan(&e.ID, &e.Source, &e.Status, &e.StartedAt, &e.CompletedAt, &e.RowsSynced, &errStr, &metaJSON); err != nil {
		return nil, err
	}
	if errStr != nil {
		e.Error = *errStr
	}
	if metaJSON != nil {
		_ = json.Unmarshal(metaJSON, &e.Metadata)
	}
	return &e, nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "SELECT 1"); err != nil {
		return eris.Wrap(err, "postgres: ping")
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
