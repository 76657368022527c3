package ingest

import (
	"context"
	"time"

	"github.com/sells-group/sanctions-cli/internal/fetcher"
	"github.com/sells-group/sanctions-cli/internal/store"
)

// Cadence describes how often a source publishes updates.
type Cadence string

const (
	Daily  Cadence = "daily"
	Weekly Cadence = "weekly"
)

// Source defines the interface each sanctions list source must implement.
type Source interface {
	// Name returns the unique identifier for this source (e.g., "sdn_advanced").
	Name() string

	// Table returns the primary target table (e.g., "sanctions.sdn_entries").
	Table() string

	// Cadence returns how often this source is updated upstream.
	Cadence() Cadence

	// ShouldRun decides if this source needs syncing given the current time
	// and the time of the last successful sync (nil if never synced).
	ShouldRun(now time.Time, lastSync *time.Time) bool

	// Sync performs the actual download, parse, and load into the store.
	// tempDir is a working directory for temporary files.
	Sync(ctx context.Context, st store.Store, f fetcher.Fetcher, tempDir string) (*store.SyncResult, error)
}

// WeeklySchedule returns true if a sync is needed for a weekly source.
func WeeklySchedule(now time.Time, lastSync *time.Time) bool {
	if lastSync == nil {
		return true
	}
	// Find the start of the current ISO week (Monday).
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := time.Date(now.Year(), now.Month(), now.Day()-(weekday-1), 0, 0, 0, 0, time.UTC)
	return lastSync.Before(weekStart)
}

// DailySchedule returns true if a sync is needed for a daily source.
func DailySchedule(now time.Time, lastSync *time.Time) bool {
	if lastSync == nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return lastSync.Before(today)
}
