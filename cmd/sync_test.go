//go:build !integration

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sanctions-cli/internal/config"
)

func TestSyncCmd_Metadata(t *testing.T) {
	assert.Equal(t, "sync", syncCmd.Use)
	assert.NotEmpty(t, syncCmd.Short)

	forceFlag := syncCmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
	assert.Equal(t, "false", forceFlag.DefValue)

	sourcesFlag := syncCmd.Flags().Lookup("sources")
	require.NotNil(t, sourcesFlag)
	assert.Equal(t, "", sourcesFlag.DefValue)
}

func TestParseSyncOpts(t *testing.T) {
	require.NoError(t, syncCmd.Flags().Set("sources", " sdn_advanced , other "))
	require.NoError(t, syncCmd.Flags().Set("force", "true"))
	t.Cleanup(func() {
		_ = syncCmd.Flags().Set("sources", "")
		_ = syncCmd.Flags().Set("force", "false")
	})

	opts := parseSyncOpts(syncCmd)
	assert.True(t, opts.Force)
	assert.Equal(t, []string{"sdn_advanced", "other"}, opts.Sources)
}

func TestParseSyncOpts_Defaults(t *testing.T) {
	c := syncCmd
	_ = c.Flags().Set("sources", "")
	_ = c.Flags().Set("force", "false")

	opts := parseSyncOpts(c)
	assert.False(t, opts.Force)
	assert.Nil(t, opts.Sources)
}

func TestSyncCmd_RunE_MissingDatabaseURL(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "postgres"},
		Sync:  config.SyncConfig{TempDir: t.TempDir()},
	}

	syncCmd.SetContext(context.Background())
	defer syncCmd.SetContext(nil)

	err := syncCmd.RunE(syncCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")
}
