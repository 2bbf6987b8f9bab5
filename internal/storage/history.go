package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/ZetoOfficial/comic-prices/internal/titles"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PriceSnapshot is one scraped price observation.
type PriceSnapshot struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"type:uuid;index"`
	Title      string `gorm:"index"`
	Series     string
	Issue      *int
	Ungraded   *float64
	Grade60    *float64
	Grade80    *float64
	Source     string
	Status     string
	CapturedAt time.Time `gorm:"index"`
}

// HistoryStore хранит историю цен в Postgres.
type HistoryStore struct {
	DB *gorm.DB
}

func NewHistoryStore(dsn string) (*HistoryStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &HistoryStore{DB: db}, nil
}

func (h *HistoryStore) Migrate(ctx context.Context) error {
	if err := h.DB.WithContext(ctx).AutoMigrate(&PriceSnapshot{}); err != nil {
		return fmt.Errorf("migrate price snapshots: %w", err)
	}
	return nil
}

func (h *HistoryStore) RecordSnapshot(ctx context.Context, runID string, capturedAt time.Time, comic models.Comic) error {
	snapshot := newSnapshot(runID, capturedAt, comic)
	if err := h.DB.WithContext(ctx).Create(&snapshot).Error; err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"run_id": runID,
		"title":  comic.Title,
	}).Debug("Снимок цены сохранен")
	return nil
}

// History возвращает снимки цен комикса в хронологическом порядке.
func (h *HistoryStore) History(ctx context.Context, title string) ([]PriceSnapshot, error) {
	var snapshots []PriceSnapshot
	if err := historyQuery(h.DB.WithContext(ctx), title).Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("select history %q: %w", title, err)
	}
	return snapshots, nil
}

func historyQuery(tx *gorm.DB, title string) *gorm.DB {
	return tx.Where("title = ?", title).Order("captured_at, id")
}

func (h *HistoryStore) Close() error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newSnapshot(runID string, capturedAt time.Time, comic models.Comic) PriceSnapshot {
	s := PriceSnapshot{
		RunID:      runID,
		Title:      comic.Title,
		Series:     titles.Series(comic.Title),
		CapturedAt: capturedAt.UTC(),
	}
	if n, ok := titles.IssueNumber(comic.Title); ok {
		s.Issue = &n
	}
	if pd := comic.PriceData; pd != nil {
		s.Ungraded = pd.Ungraded
		s.Grade60 = pd.Grade60
		s.Grade80 = pd.Grade80
		s.Source = pd.Source
		s.Status = string(pd.Status)
	}
	return s
}
