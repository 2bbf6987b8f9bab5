// Package updater enriches a comics JSON file with PriceCharting prices.
package updater

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/ZetoOfficial/comic-prices/internal/titles"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	SourceName   = "PriceCharting.com"
	gradeDefault = "Ungraded"
	scrapeSeries = "Amazing Spider-Man"
)

type PriceSource interface {
	ListIssues(ctx context.Context) ([]models.Issue, error)
	IssuePrices(ctx context.Context, number int) (models.Prices, error)
}

type HistoryRecorder interface {
	RecordSnapshot(ctx context.Context, runID string, capturedAt time.Time, comic models.Comic) error
}

// Report summarizes one update run.
type Report struct {
	RunID    string
	Total    int
	Statuses map[models.PriceStatus]int
}

type Updater struct {
	source  PriceSource
	history HistoryRecorder
	now     func() time.Time
}

// New creates an updater. history may be nil.
func New(source PriceSource, history HistoryRecorder) *Updater {
	return &Updater{source: source, history: history, now: time.Now}
}

// UpdateFile читает JSON, добавляет цены и записывает файл обратно.
func (u *Updater) UpdateFile(ctx context.Context, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var comics []models.Comic
	if err := json.Unmarshal(data, &comics); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	logrus.Infof("Найдено комиксов для обработки: %d", len(comics))

	report, err := u.Update(ctx, comics)
	if err != nil {
		return nil, err
	}

	out, err := encode(comics)
	if err != nil {
		return nil, fmt.Errorf("encode comics: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	logrus.Infof("Данные сохранены: %s", path)
	return report, nil
}

// Update sets PriceData on every comic in place.
func (u *Updater) Update(ctx context.Context, comics []models.Comic) (*Report, error) {
	report := &Report{
		RunID:    uuid.NewString(),
		Total:    len(comics),
		Statuses: make(map[models.PriceStatus]int),
	}

	available := make(map[int]bool)
	issues, err := u.source.ListIssues(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logrus.Errorf("Ошибка получения списка выпусков: %v", err)
	}
	for _, issue := range issues {
		available[issue.Number] = true
	}

	now := u.now()
	for i := range comics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := &comics[i]
		log := logrus.WithField("title", c.Title)
		log.Infof("Обработка %d/%d", i+1, len(comics))

		issue, hasIssue := titles.IssueNumber(c.Title)
		series := titles.Series(c.Title)

		c.Grade = gradeDefault
		c.PriceData = &models.PriceData{
			Source:  SourceName,
			Updated: now.Format(time.DateOnly),
			Status:  models.StatusPending,
		}

		switch {
		case series == scrapeSeries && hasIssue && available[issue]:
			prices, err := u.source.IssuePrices(ctx, issue)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Errorf("Ошибка получения цен выпуска #%d: %v", issue, err)
			}
			c.PriceData.Ungraded = prices.Ungraded
			c.PriceData.Grade60 = prices.Grade60
			c.PriceData.Grade80 = prices.Grade80
			c.PriceData.Status = models.StatusNoPrices
			if prices.Ungraded != nil {
				c.PriceData.Status = models.StatusFound
				c.EstValue = fmt.Sprintf("$%.2f", *prices.Ungraded)
				log.Infof("EstValue обновлен: %s", c.EstValue)
			}
		case series == scrapeSeries && hasIssue:
			log.Warnf("%s #%d не найден на PriceCharting", series, issue)
			c.PriceData.Status = models.StatusNotFound
		case strings.HasPrefix(series, "Peter Parker"):
			log.Infof("Пропуск %s: другая серия", series)
			c.PriceData.Status = models.StatusDifferentSeries
		default:
			log.Info("Пропуск: не удалось определить серию или выпуск")
			c.PriceData.Status = models.StatusUnableToParse
		}

		report.Statuses[c.PriceData.Status]++

		if u.history != nil && c.PriceData.Status == models.StatusFound {
			if err := u.history.RecordSnapshot(ctx, report.RunID, now, *c); err != nil {
				return nil, fmt.Errorf("record snapshot %q: %w", c.Title, err)
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"run_id":   report.RunID,
		"total":    report.Total,
		"statuses": report.Statuses,
	}).Info("Обновление цен завершено")
	return report, nil
}

// encode пишет JSON с отступом в 4 пробела без экранирования HTML.
func encode(comics []models.Comic) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(comics); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
