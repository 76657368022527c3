//go:build !integration

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sanctions-cli/internal/config"
	"github.com/sells-group/sanctions-cli/internal/match"
	"github.com/sells-group/sanctions-cli/internal/screen"
)

func TestScreenCmd_Metadata(t *testing.T) {
	assert.Equal(t, "screen [name]", screenCmd.Use)
	assert.NotEmpty(t, screenCmd.Short)

	thresholdFlag := screenCmd.Flags().Lookup("threshold")
	require.NotNil(t, thresholdFlag)
	assert.Equal(t, "4", thresholdFlag.DefValue)

	limitFlag := screenCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)
}

// scratchScreenFlags mirrors the screen command's parameter flags so
// screenParams can be exercised without mutating the real command.
func scratchScreenFlags() *cobra.Command {
	c := &cobra.Command{Use: "scratch"}
	c.Flags().Int("threshold", screen.DefaultThreshold, "")
	c.Flags().Int("limit", screen.DefaultLimit, "")
	return c
}

func TestScreenParams_ConfigDefaults(t *testing.T) {
	cfg = &config.Config{
		Screening: config.ScreeningConfig{DefaultThreshold: 7, DefaultLimit: 30},
	}

	threshold, limit := screenParams(scratchScreenFlags())
	assert.Equal(t, 7, threshold)
	assert.Equal(t, 30, limit)
}

func TestScreenParams_ExplicitZeroThreshold(t *testing.T) {
	cfg = &config.Config{
		Screening: config.ScreeningConfig{DefaultThreshold: 7, DefaultLimit: 30},
	}

	c := scratchScreenFlags()
	require.NoError(t, c.Flags().Set("threshold", "0"))

	threshold, limit := screenParams(c)
	assert.Equal(t, 0, threshold, "an explicit 0 must not fall back to the config default")
	assert.Equal(t, 30, limit)
}

func TestFormatScreenResponse_Hits(t *testing.T) {
	resp := &screen.Response{
		Query:     "bin ladin usama",
		Threshold: 4,
		TotalHits: 1,
		Results: []match.Hit{{
			EntryID:     7771,
			SDNType:     "Individual",
			PrimaryName: "BIN LADIN USAMA",
			MatchedName: "BIN LADIN USAMA",
			Score:       1,
			Distance:    0,
			Programs:    []string{"SDGT"},
		}},
	}

	var buf bytes.Buffer
	formatScreenResponse(&buf, resp)

	output := buf.String()
	assert.Contains(t, output, "Query: bin ladin usama")
	assert.Contains(t, output, "Threshold: 4")
	assert.Contains(t, output, "7771")
	assert.Contains(t, output, "Individual")
	assert.Contains(t, output, "BIN LADIN USAMA")
	assert.Contains(t, output, "SDGT")
}

func TestFormatScreenResponse_NoHits(t *testing.T) {
	resp := &screen.Response{Query: "nobody", Threshold: 4, Results: []match.Hit{}}

	var buf bytes.Buffer
	formatScreenResponse(&buf, resp)

	assert.Contains(t, buf.String(), "No matches.")
}

func TestScreenCmd_RunE_MissingDatabaseURL(t *testing.T) {
	cfg = &config.Config{
		Store:     config.StoreConfig{Driver: "postgres"},
		Screening: config.ScreeningConfig{DefaultThreshold: 4, DefaultLimit: 20},
	}

	screenCmd.SetContext(context.Background())
	defer screenCmd.SetContext(nil)

	err := screenCmd.RunE(screenCmd, []string{"anyone"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")
}

// TestScreenCmd_SQLiteRoundTrip drives migrate and screen against a real
// SQLite file: an empty, migrated store screens cleanly with no matches.
func TestScreenCmd_SQLiteRoundTrip(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "screen_test.db"),
		},
		Sync:      config.SyncConfig{TempDir: t.TempDir()},
		Screening: config.ScreeningConfig{DefaultThreshold: 4, DefaultLimit: 20},
	}

	migrateCmd.SetContext(context.Background())
	defer migrateCmd.SetContext(nil)
	require.NoError(t, migrateCmd.RunE(migrateCmd, nil))

	screenCmd.SetContext(context.Background())
	defer screenCmd.SetContext(nil)
	require.NoError(t, screenCmd.RunE(screenCmd, []string{"anyone"}))
}
