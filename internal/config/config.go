package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultEnvFile = ".env"
	EnvPrefix      = "COMICS"

	DefaultFeedURL          = "https://raw.githubusercontent.com/life423/comic-book-data/main/spiderman_comics_updated.json"
	DefaultPriceChartingURL = "https://www.pricecharting.com"
	DefaultSheetName        = "Comics"
	DefaultSummarySheet     = "Summary"
	DefaultScrapeDelay      = 1500 * time.Millisecond
	DefaultHTTPTimeout      = 30 * time.Second
)

// Keys understood by viper. Env names are COMICS_<KEY> unless listed in legacyEnv.
const (
	KeyFeedURL           = "feed_url"
	KeyOutput            = "output"
	KeySheetName         = "sheet_name"
	KeySummary           = "summary"
	KeySummarySheet      = "summary_sheet"
	KeySpreadsheetID     = "spreadsheet_id"
	KeyGoogleCredentials = "google_credentials"
	KeyGraph             = "graph"
	KeyNeo4jURI          = "neo4j_uri"
	KeyNeo4jUser         = "neo4j_user"
	KeyNeo4jPassword     = "neo4j_password"
	KeyHistory           = "history"
	KeyDatabaseDSN       = "database_dsn"
	KeyPriceChartingURL  = "pricecharting_url"
	KeyScrapeDelay       = "scrape_delay"
	KeyHTTPTimeout       = "http_timeout"
	KeyLogLevel          = "log_level"
	KeyLogFile           = "log_file"
)

var legacyEnv = map[string]string{
	KeyNeo4jURI:          "NEO4J_URI",
	KeyNeo4jUser:         "NEO4J_USER",
	KeyNeo4jPassword:     "NEO4J_PASSWORD",
	KeyGoogleCredentials: "GOOGLE_APPLICATION_CREDENTIALS",
	KeyDatabaseDSN:       "DATABASE_URL",
}

type Config struct {
	FeedURL           string
	Output            string
	SheetName         string
	Summary           bool
	SummarySheet      string
	SpreadsheetID     string
	GoogleCredentials string

	Graph         bool
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	History     bool
	DatabaseDSN string

	PriceChartingURL string
	ScrapeDelay      time.Duration
	HTTPTimeout      time.Duration

	LogLevel string
	LogFile  string
}

// NewViper returns a viper instance with defaults and env bindings.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyFeedURL, DefaultFeedURL)
	v.SetDefault(KeySheetName, DefaultSheetName)
	v.SetDefault(KeySummarySheet, DefaultSummarySheet)
	v.SetDefault(KeyPriceChartingURL, DefaultPriceChartingURL)
	v.SetDefault(KeyScrapeDelay, DefaultScrapeDelay)
	v.SetDefault(KeyHTTPTimeout, DefaultHTTPTimeout)
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyNeo4jURI, "neo4j://localhost:7687")
	v.SetDefault(KeyNeo4jUser, "neo4j")

	for key, env := range legacyEnv {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), env)
	}
	return v
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		FeedURL:           v.GetString(KeyFeedURL),
		Output:            v.GetString(KeyOutput),
		SheetName:         v.GetString(KeySheetName),
		Summary:           v.GetBool(KeySummary),
		SummarySheet:      v.GetString(KeySummarySheet),
		SpreadsheetID:     v.GetString(KeySpreadsheetID),
		GoogleCredentials: v.GetString(KeyGoogleCredentials),
		Graph:             v.GetBool(KeyGraph),
		Neo4jURI:          v.GetString(KeyNeo4jURI),
		Neo4jUser:         v.GetString(KeyNeo4jUser),
		Neo4jPassword:     v.GetString(KeyNeo4jPassword),
		History:           v.GetBool(KeyHistory),
		DatabaseDSN:       v.GetString(KeyDatabaseDSN),
		PriceChartingURL:  v.GetString(KeyPriceChartingURL),
		ScrapeDelay:       v.GetDuration(KeyScrapeDelay),
		HTTPTimeout:       v.GetDuration(KeyHTTPTimeout),
		LogLevel:          v.GetString(KeyLogLevel),
		LogFile:           v.GetString(KeyLogFile),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.SheetName == "" {
		errs = append(errs, errors.New("sheet_name is empty"))
	}
	if c.Summary && c.SummarySheet == c.SheetName {
		errs = append(errs, fmt.Errorf("summary_sheet must differ from sheet_name %q", c.SheetName))
	}
	if c.ScrapeDelay < 0 {
		errs = append(errs, fmt.Errorf("scrape_delay is negative: %s", c.ScrapeDelay))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http_timeout must be positive: %s", c.HTTPTimeout))
	}
	if c.History && c.DatabaseDSN == "" {
		errs = append(errs, errors.New("history requires database_dsn"))
	}
	return errors.Join(errs...)
}

// HasOutput reports whether import has somewhere to write.
func (c *Config) HasOutput() bool {
	return c.Output != "" || c.SpreadsheetID != ""
}
