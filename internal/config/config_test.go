package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	require.NoError(t, err)
	require.Equal(t, DefaultFeedURL, cfg.FeedURL)
	require.Equal(t, DefaultSheetName, cfg.SheetName)
	require.Equal(t, DefaultScrapeDelay, cfg.ScrapeDelay)
	require.Equal(t, "INFO", cfg.LogLevel)
	require.False(t, cfg.HasOutput())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COMICS_OUTPUT", "/tmp/comics.xlsx")
	t.Setenv("COMICS_SUMMARY", "true")
	t.Setenv("COMICS_SCRAPE_DELAY", "250ms")
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	require.Equal(t, "/tmp/comics.xlsx", cfg.Output)
	require.True(t, cfg.Summary)
	require.Equal(t, 250*time.Millisecond, cfg.ScrapeDelay)
	require.Equal(t, "neo4j://graph:7687", cfg.Neo4jURI)
	require.Equal(t, "secret", cfg.Neo4jPassword)
	require.True(t, cfg.HasOutput())
}

func TestPrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://legacy:7687")
	t.Setenv("COMICS_NEO4J_URI", "neo4j://prefixed:7687")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	require.Equal(t, "neo4j://prefixed:7687", cfg.Neo4jURI)
}

func TestLoadValidation(t *testing.T) {
	v := NewViper()
	v.Set(KeySummary, true)
	v.Set(KeySummarySheet, DefaultSheetName)
	v.Set(KeyHistory, true)
	v.Set(KeyHTTPTimeout, "0s")

	_, err := Load(v)
	require.Error(t, err)
	require.ErrorContains(t, err, "summary_sheet must differ")
	require.ErrorContains(t, err, "history requires database_dsn")
	require.ErrorContains(t, err, "http_timeout must be positive")
}
