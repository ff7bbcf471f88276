package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/enrich-cli/internal/config"
	"github.com/tablescout/enrich-cli/internal/linkcache"
	"github.com/tablescout/enrich-cli/internal/status"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"reconcile", "serve", "status"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "enrich-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestReconcileCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"batch-size", "once", "force-refresh", "delay", "status-options"} {
		flag := reconcileCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "reconcile should have --%s flag", flagName)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestNewStore_RequiresCredentials(t *testing.T) {
	cfg = &config.Config{}
	_, err := newStore()
	require.Error(t, err)
}

func TestNewResolver_OverrideWins(t *testing.T) {
	cfg = &config.Config{}
	cfg.Airtable.StatusOptions = "pending,enriched"

	r := newResolver([]string{"Pendiente", "Hecho"})
	assert.Equal(t, []string{"Pendiente", "Hecho"}, r.Options())

	r = newResolver(nil)
	assert.Equal(t, []string{"pending", "enriched"}, r.Options())
}

func TestNewResolver_EmptyConfigFallsBack(t *testing.T) {
	cfg = &config.Config{}
	r := newResolver(nil)
	assert.Equal(t, status.DefaultOptions, r.Options())
}

func TestNewLinkCache_DefaultsToMemory(t *testing.T) {
	cfg = &config.Config{}
	c := newLinkCache()
	defer c.Close()
	_, ok := c.(*linkcache.Memory)
	assert.True(t, ok, "empty cache path should use memory cache")
}
