//go:build !integration

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sanctions-cli/internal/config"
	"github.com/sells-group/sanctions-cli/internal/store"
)

func TestFormatSyncEntries_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatSyncEntries(&buf, nil)

	output := buf.String()
	// Header prints even with no entries.
	assert.Contains(t, output, "SOURCE")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "STARTED")
}

func TestFormatSyncEntries_SingleEntry(t *testing.T) {
	started := time.Date(2025, 8, 11, 6, 0, 0, 0, time.UTC)
	completed := started.Add(4 * time.Minute)

	entries := []store.SyncEntry{
		{
			ID:          1,
			Source:      "sdn_advanced",
			Status:      "complete",
			StartedAt:   started,
			CompletedAt: &completed,
			RowsSynced:  17426,
		},
	}

	var buf bytes.Buffer
	formatSyncEntries(&buf, entries)

	output := buf.String()
	assert.Contains(t, output, "sdn_advanced")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "2025-08-11 06:00")
	assert.Contains(t, output, "4m0s")
	assert.Contains(t, output, "17426")
}

func TestFormatSyncEntries_Running(t *testing.T) {
	entries := []store.SyncEntry{
		{
			ID:        2,
			Source:    "sdn_advanced",
			Status:    "running",
			StartedAt: time.Date(2025, 8, 18, 6, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatSyncEntries(&buf, entries)

	output := buf.String()
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "-") // no duration yet
}

func TestFormatSyncEntries_TruncatesLongError(t *testing.T) {
	longErr := "download failed after three retries: the sanctions list service returned 503 Service Unavailable for every attempt"

	entries := []store.SyncEntry{
		{
			ID:        3,
			Source:    "sdn_advanced",
			Status:    "failed",
			StartedAt: time.Date(2025, 8, 18, 6, 0, 0, 0, time.UTC),
			Error:     longErr,
		},
	}

	var buf bytes.Buffer
	formatSyncEntries(&buf, entries)

	output := buf.String()
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "...")
	assert.NotContains(t, output, longErr)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "toolon...", truncate("toolongbyfar", 9))
}

func TestStatusCmd_RunE_MissingDatabaseURL(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "postgres"},
		Sync:  config.SyncConfig{TempDir: t.TempDir()},
	}

	statusCmd.SetContext(context.Background())
	defer statusCmd.SetContext(nil)

	err := statusCmd.RunE(statusCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")
}

func TestMigrateCmd_RunE_MissingDatabaseURL(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "postgres"},
		Sync:  config.SyncConfig{TempDir: t.TempDir()},
	}

	migrateCmd.SetContext(context.Background())
	defer migrateCmd.SetContext(nil)

	err := migrateCmd.RunE(migrateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")
}
