package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sanctions-cli/internal/fetcher"
	"github.com/sells-group/sanctions-cli/internal/sdn"
	"github.com/sells-group/sanctions-cli/internal/store"
)

// SDNAdvanced implements the OFAC SDN Advanced list source. OFAC publishes
// the full list on every update, so each sync downloads the complete XML
// and replaces the store contents.
type SDNAdvanced struct {
	url string
}

// NewSDNAdvanced creates the source. url overrides the default OFAC
// download location when non-empty.
func NewSDNAdvanced(url string) *SDNAdvanced {
	if url == "" {
		url = sdn.SourceURL
	}
	return &SDNAdvanced{url: url}
}

func (s *SDNAdvanced) Name() string     { return "sdn_advanced" }
func (s *SDNAdvanced) Table() string    { return "sanctions.sdn_entries" }
func (s *SDNAdvanced) Cadence() Cadence { return Weekly }

func (s *SDNAdvanced) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return WeeklySchedule(now, lastSync)
}

func (s *SDNAdvanced) Sync(ctx context.Context, st store.Store, f fetcher.Fetcher, tempDir string) (*store.SyncResult, error) {
	log := zap.L().With(zap.String("source", "sdn_advanced"))

	stamp := time.Now().UTC().Format("20060102")
	xmlPath := filepath.Join(tempDir, fmt.Sprintf("SDN_ADVANCED_%s.XML", stamp))

	log.Info("downloading SDN Advanced XML", zap.String("url", s.url))
	bytes, err := f.DownloadToFile(ctx, s.url, xmlPath)
	if err != nil {
		return nil, eris.Wrap(err, "sdn_advanced: download XML")
	}
	defer os.Remove(xmlPath)
	log.Info("download complete", zap.Int64("bytes", bytes))

	data, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, eris.Wrap(err, "sdn_advanced: read XML")
	}

	list, err := sdn.New().Parse(ctx, data)
	if err != nil {
		return nil, eris.Wrap(err, "sdn_advanced: parse XML")
	}

	loaded, err := st.ReplaceParties(ctx, list.Parties)
	if err != nil {
		return nil, eris.Wrap(err, "sdn_advanced: load store")
	}

	log.Info("sdn_advanced sync complete",
		zap.Int64("rows", loaded),
		zap.String("publication_date", list.PublicationDate),
	)

	return &store.SyncResult{
		RowsSynced: loaded,
		Metadata: map[string]any{
			"publication_date": list.PublicationDate,
			"source_url":       s.url,
			"bytes_downloaded": bytes,
		},
	}, nil
}
