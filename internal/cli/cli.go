package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ZetoOfficial/comic-prices/internal/app"
	"github.com/ZetoOfficial/comic-prices/internal/config"
	"github.com/ZetoOfficial/comic-prices/internal/logger"
	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/ZetoOfficial/comic-prices/internal/sheets"
	"github.com/ZetoOfficial/comic-prices/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Factory builds the application for the loaded config. The returned func releases its resources.
type Factory func(ctx context.Context, cfg *config.Config) (*app.App, func(), error)

func NewRootCommand(factory Factory) *cobra.Command {
	v := config.NewViper()
	var (
		cfg       *config.Config
		logCloser io.Closer
	)

	root := &cobra.Command{
		Use:   "comics",
		Short: "Import comic collection data into spreadsheets",
		Long: `Fetches a JSON list of comics, derives series, issue, year, value and grade range,
and writes formatted rows into an .xlsx workbook or a Google Sheet.

Settings come from flags, then COMICS_* environment variables (a .env file is loaded first).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(v)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logCloser, err = logger.Setup(cfg.LogLevel, cfg.LogFile)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser == nil {
				return
			}
			if err := logCloser.Close(); err != nil {
				logrus.Warnf("close log file: %v", err)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String(config.KeyLogLevel, "INFO", "Set the logging level (DEBUG, INFO, WARNING, ERROR).")
	flags.String(config.KeyLogFile, "", "Set the log file path. If not set, logs will be printed to console.")
	flags.Duration(config.KeyHTTPTimeout, config.DefaultHTTPTimeout, "Timeout of a single HTTP request.")
	flags.String(config.KeyDatabaseDSN, "", "Postgres DSN for the price history.")
	bind(v, flags, config.KeyLogLevel, config.KeyLogFile, config.KeyHTTPTimeout, config.KeyDatabaseDSN)

	run := func(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
		a, cleanup, err := factory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(cmd.Context(), a)
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch the comics feed and write it into a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.HasOutput() {
				return fmt.Errorf("no output configured: set --%s or --%s", config.KeyOutput, config.KeySpreadsheetID)
			}
			return run(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.Import(ctx, app.ImportOptions{
					SheetName:    cfg.SheetName,
					Summary:      cfg.Summary,
					SummarySheet: cfg.SummarySheet,
					Graph:        cfg.Graph,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d comics with updated price data.\n", n)
				return nil
			})
		},
	}
	f := importCmd.Flags()
	f.String(config.KeyFeedURL, config.DefaultFeedURL, "URL of the comics JSON feed.")
	f.String(config.KeyOutput, "", "Path of the .xlsx workbook to write.")
	f.String(config.KeySheetName, config.DefaultSheetName, "Name of the comics sheet.")
	f.Bool(config.KeySummary, false, "Also write a summary statistics sheet.")
	f.String(config.KeySummarySheet, config.DefaultSummarySheet, "Name of the summary sheet.")
	f.String(config.KeySpreadsheetID, "", "Google spreadsheet ID to write into.")
	f.String(config.KeyGoogleCredentials, "", "Service account JSON for Google Sheets.")
	f.Bool(config.KeyGraph, false, "Export the comics into Neo4j.")
	bind(v, f, config.KeyFeedURL, config.KeyOutput, config.KeySheetName, config.KeySummary,
		config.KeySummarySheet, config.KeySpreadsheetID, config.KeyGoogleCredentials, config.KeyGraph)

	updateCmd := &cobra.Command{
		Use:   "update-prices <json-file>",
		Short: "Scrape PriceCharting and add prices to a comics JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.UpdatePrices(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %d comics, %d with prices.\n", report.Total, report.Statuses[models.StatusFound])
				return nil
			})
		},
	}
	f = updateCmd.Flags()
	f.String(config.KeyPriceChartingURL, config.DefaultPriceChartingURL, "PriceCharting base URL.")
	f.Duration(config.KeyScrapeDelay, config.DefaultScrapeDelay, "Minimum delay between PriceCharting requests.")
	f.Bool(config.KeyHistory, false, "Record found prices into Postgres.")
	bind(v, f, config.KeyPriceChartingURL, config.KeyScrapeDelay, config.KeyHistory)

	queryCmd := &cobra.Command{
		Use:       "query <name>",
		Short:     "Run a predefined Neo4j query",
		Long:      "Available queries: " + strings.Join(storage.QueryNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: storage.QueryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !storage.HasQuery(args[0]) {
				return fmt.Errorf("query %s not found, available: %s", args[0], strings.Join(storage.QueryNames(), ", "))
			}
			cfg.Graph = true
			return run(cmd, func(ctx context.Context, a *app.App) error {
				return a.Query(ctx, args[0])
			})
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history <title>",
		Short: "Show recorded PriceCharting prices of a comic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DatabaseDSN == "" {
				return fmt.Errorf("history requires --%s", config.KeyDatabaseDSN)
			}
			cfg.History = true
			return run(cmd, func(ctx context.Context, a *app.App) error {
				snapshots, err := a.History(ctx, args[0])
				if err != nil {
					return err
				}
				printHistory(cmd.OutOrStdout(), args[0], snapshots)
				return nil
			})
		},
	}

	root.AddCommand(importCmd, updateCmd, queryCmd, historyCmd)
	return root
}

// Execute runs the command line and returns the exit code. A failure is printed once to stderr.
func Execute(ctx context.Context, factory Factory, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(factory)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func printHistory(w io.Writer, title string, snapshots []storage.PriceSnapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintf(w, "No price history for %q.\n", title)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Captured\tUngraded\t6.0\t8.0\tStatus")
	for _, s := range snapshots {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.CapturedAt.Format(time.DateOnly), money(s.Ungraded), money(s.Grade60), money(s.Grade80), s.Status)
	}
	_ = tw.Flush()
}

func money(v *float64) string {
	if v == nil {
		return sheets.NotAvailable
	}
	return fmt.Sprintf("$%.2f", *v)
}

func bind(v *viper.Viper, flags *pflag.FlagSet, keys ...string) {
	for _, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			logrus.Panicf("bind flag %s: %v", key, err)
		}
	}
}
