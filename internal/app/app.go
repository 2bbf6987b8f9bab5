package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/ZetoOfficial/comic-prices/internal/sheets"
	"github.com/ZetoOfficial/comic-prices/internal/storage"
	"github.com/ZetoOfficial/comic-prices/internal/updater"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoGraph   = errors.New("graph storage is not configured")
	ErrNoHistory = errors.New("price history is not configured")
)

type Storage interface {
	SaveComics(ctx context.Context, records []models.Record) error
	RunQuery(ctx context.Context, queryName string) ([]map[string]interface{}, error)
}

type ComicsAPI interface {
	FetchComics(ctx context.Context) ([]models.Comic, error)
}

type PriceUpdater interface {
	UpdateFile(ctx context.Context, path string) (*updater.Report, error)
}

type PriceHistory interface {
	History(ctx context.Context, title string) ([]storage.PriceSnapshot, error)
}

type ImportOptions struct {
	SheetName    string
	Summary      bool
	SummarySheet string
	Graph        bool
}

type App struct {
	client  ComicsAPI
	updater PriceUpdater
	storage Storage
	history PriceHistory
	writers []sheets.Writer
}

// NewApp собирает приложение. updater, graph и history могут быть nil, если команда их не использует.
func NewApp(api ComicsAPI, updater PriceUpdater, graph Storage, history PriceHistory, writers ...sheets.Writer) *App {
	return &App{client: api, updater: updater, storage: graph, history: history, writers: writers}
}

// Import fetches the feed and renders it into every writer. It returns the number of comics imported.
func (a *App) Import(ctx context.Context, opts ImportOptions) (int, error) {
	if len(a.writers) == 0 {
		return 0, errors.New("no spreadsheet writer configured")
	}
	if opts.Graph && a.storage == nil {
		return 0, ErrNoGraph
	}

	logrus.Info("Starting fetch comics")
	comics, err := a.client.FetchComics(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch comics: %w", err)
	}

	records := sheets.Records(comics)
	table := sheets.BuildTable(records)

	var summary sheets.Summary
	if opts.Summary {
		summary = sheets.Summarize(records)
		logrus.Infof("Average Prices - Ungraded: $%.2f, 6.0: $%.2f, 8.0: $%.2f",
			summary.AvgUngraded, summary.AvgGrade60, summary.AvgGrade80)
	}

	for _, w := range a.writers {
		if err := w.WriteTable(ctx, opts.SheetName, table); err != nil {
			return 0, fmt.Errorf("write sheet: %w", err)
		}
		if opts.Summary {
			if err := w.WriteTable(ctx, opts.SummarySheet, summary.Table()); err != nil {
				return 0, fmt.Errorf("write summary: %w", err)
			}
		}
	}

	if opts.Graph {
		logrus.Info("Save comics to graph storage")
		if err := a.storage.SaveComics(ctx, records); err != nil {
			return 0, fmt.Errorf("save comics: %w", err)
		}
	}

	return len(comics), nil
}

func (a *App) UpdatePrices(ctx context.Context, path string) (*updater.Report, error) {
	if a.updater == nil {
		return nil, errors.New("price updater is not configured")
	}
	logrus.Infof("Update prices in %s", path)
	report, err := a.updater.UpdateFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("update prices: %w", err)
	}
	for status, n := range report.Statuses {
		logrus.WithField("status", status).Infof("%d comics", n)
	}
	return report, nil
}

func (a *App) Query(ctx context.Context, query string) error {
	if a.storage == nil {
		return ErrNoGraph
	}
	logrus.Infof("Run query: %s", query)
	results, err := a.storage.RunQuery(ctx, query)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	for _, result := range results {
		logrus.Info(result)
	}
	return nil
}

// History returns the recorded price snapshots of a comic, oldest first.
func (a *App) History(ctx context.Context, title string) ([]storage.PriceSnapshot, error) {
	if a.history == nil {
		return nil, ErrNoHistory
	}
	logrus.WithField("title", title).Info("Load price history")
	snapshots, err := a.history.History(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return snapshots, nil
}
