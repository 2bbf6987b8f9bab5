package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZetoOfficial/comic-prices/internal/app"
	"github.com/ZetoOfficial/comic-prices/internal/cli"
	"github.com/ZetoOfficial/comic-prices/internal/clients"
	"github.com/ZetoOfficial/comic-prices/internal/config"
	"github.com/ZetoOfficial/comic-prices/internal/sheets"
	"github.com/ZetoOfficial/comic-prices/internal/storage"
	"github.com/ZetoOfficial/comic-prices/internal/updater"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

func main() {
	if err := godotenv.Load(config.DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Fatalf("load env: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	code := cli.Execute(ctx, build, os.Args[1:], os.Stdout, os.Stderr)
	if ctx.Err() != nil {
		logrus.Info("Получен сигнал. Завершение работы...")
	}
	cancel()
	os.Exit(code)
}

// build собирает зависимости для конфигурации. Хранилища открываются только когда они включены.
func build(ctx context.Context, cfg *config.Config) (*app.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*app.App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	var writers []sheets.Writer
	if cfg.Output != "" {
		writers = append(writers, sheets.NewXLSXWriter(cfg.Output))
	}
	if cfg.SpreadsheetID != "" {
		var opts []option.ClientOption
		if cfg.GoogleCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentials))
		}
		w, err := sheets.NewGoogleWriter(ctx, cfg.SpreadsheetID, opts...)
		if err != nil {
			return fail(err)
		}
		writers = append(writers, w)
	}

	var graph app.Storage
	if cfg.Graph {
		neo4jStorage, err := storage.NewNeo4jStorage(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() {
			if err := neo4jStorage.Close(context.Background()); err != nil {
				logrus.Warningf("close neo4j storage: %v", err)
			}
		})
		if err := neo4jStorage.Ping(ctx); err != nil {
			return fail(fmt.Errorf("не удалось подключиться к Neo4j: %w", err))
		}
		logrus.Info("Подключение к Neo4j успешно установлено")
		graph = neo4jStorage
	}

	var (
		recorder updater.HistoryRecorder
		history  app.PriceHistory
	)
	if cfg.History {
		store, err := storage.NewHistoryStore(cfg.DatabaseDSN)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				logrus.Warningf("close history store: %v", err)
			}
		})
		if err := store.Migrate(ctx); err != nil {
			return fail(err)
		}
		recorder, history = store, store
	}

	priceCharting := clients.NewPriceChartingClient(cfg.PriceChartingURL, cfg.ScrapeDelay, cfg.HTTPTimeout)
	myApp := app.NewApp(
		clients.NewComicsClient(cfg.FeedURL, cfg.HTTPTimeout),
		updater.New(priceCharting, recorder),
		graph,
		history,
		writers...,
	)
	return myApp, cleanup, nil
}
