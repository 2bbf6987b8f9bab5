package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/sirupsen/logrus"
)

type ComicsClient struct {
	FeedURL string
	fetcher
}

func NewComicsClient(feedURL string, timeout time.Duration) *ComicsClient {
	return &ComicsClient{
		FeedURL: feedURL,
		fetcher: newFetcher(timeout, map[string]string{"Accept": "application/json"}),
	}
}

// FetchComics загружает JSON со списком комиксов.
func (c *ComicsClient) FetchComics(ctx context.Context) ([]models.Comic, error) {
	logrus.Infof("Загрузка комиксов: %s", c.FeedURL)

	body, err := c.get(ctx, c.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	// пустое тело считается пустым списком
	if len(bytes.TrimSpace(body)) == 0 {
		logrus.WithField("url", c.FeedURL).Warn("Пустой ответ, комиксов нет")
		return []models.Comic{}, nil
	}

	var comics []models.Comic
	if err := json.Unmarshal(body, &comics); err != nil {
		logrus.WithFields(logrus.Fields{
			"url":   c.FeedURL,
			"error": err,
		}).Error("Ошибка декодирования JSON")
		return nil, fmt.Errorf("json decode: %w", err)
	}

	logrus.Infof("Получено комиксов: %d", len(comics))
	return comics, nil
}
