package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/ZetoOfficial/comic-prices/internal/titles"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	issueListPath = "/console/comic-books-amazing-spider-man"
	fallbackLinks = 50
)

var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Upgrade-Insecure-Requests": "1",
}

// PriceChartingClient собирает цены выпусков Amazing Spider-Man.
// Не предназначен для конкурентного использования.
type PriceChartingClient struct {
	BaseURL string
	Limiter *rate.Limiter
	fetcher

	issueURLs map[int]string
}

// NewPriceChartingClient создает клиент, делающий не больше одного запроса за delay.
func NewPriceChartingClient(baseURL string, delay, timeout time.Duration) *PriceChartingClient {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &PriceChartingClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Limiter:   rate.NewLimiter(limit, 1),
		fetcher:   newFetcher(timeout, browserHeaders),
		issueURLs: make(map[int]string),
	}
}

func (pc *PriceChartingClient) page(ctx context.Context, url string) (*html.Node, error) {
	if err := pc.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	body, err := pc.get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ListIssues возвращает все выпуски, перечисленные на странице серии.
func (pc *PriceChartingClient) ListIssues(ctx context.Context) ([]models.Issue, error) {
	listURL := pc.BaseURL + issueListPath
	logrus.Infof("Загрузка списка выпусков: %s", listURL)

	doc, err := pc.page(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("fetch issue list: %w", err)
	}

	var issues []models.Issue
	add := func(number int, title, href string) {
		url := href
		if strings.HasPrefix(href, "/") {
			url = pc.BaseURL + href
		}
		issues = append(issues, models.Issue{Number: number, Title: title, URL: url})
		pc.issueURLs[number] = url
	}

	if table := gamesTable(doc); table != nil {
		for i, row := range findAll(table, tag("tr")) {
			if i == 0 || findFirst(row, tag("th")) != nil {
				continue
			}
			cell := findFirst(row, tagWithClass("td", "title"))
			if cell == nil {
				continue
			}
			link := findFirst(cell, tag("a"))
			if link == nil {
				continue
			}
			title := text(link)
			if n, ok := titles.IssueNumber(title); ok {
				add(n, title, attr(link, "href"))
			}
		}
	}

	if len(issues) == 0 {
		logrus.Debug("Таблица выпусков не найдена, поиск по ссылкам")
		links := findAll(doc, func(n *html.Node) bool {
			return n.Data == "a" && strings.Contains(attr(n, "href"), "spider-man-")
		})
		if len(links) > fallbackLinks {
			links = links[:fallbackLinks]
		}
		for _, link := range links {
			title := text(link)
			if title == "" || !strings.Contains(title, "#") {
				continue
			}
			n, ok := titles.IssueNumber(title)
			if !ok {
				continue
			}
			if _, seen := pc.issueURLs[n]; seen {
				continue
			}
			add(n, title, attr(link, "href"))
		}
	}

	logrus.Infof("Найдено выпусков на PriceCharting: %d", len(issues))
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		sample := append([]models.Issue(nil), issues...)
		sort.Slice(sample, func(i, j int) bool { return sample[i].Number < sample[j].Number })
		for i := 0; i < len(sample) && i < 5; i++ {
			logrus.Debugf("  #%d: %s", sample[i].Number, sample[i].Title)
		}
	}
	return issues, nil
}

func gamesTable(doc *html.Node) *html.Node {
	if t := findFirst(doc, func(n *html.Node) bool { return n.Data == "table" && attr(n, "id") == "games_table" }); t != nil {
		return t
	}
	if t := findFirst(doc, tagWithClass("table", "js-addable")); t != nil {
		return t
	}
	return findFirst(doc, tagWithClass("table", "hoverable-rows"))
}

// IssuePrices возвращает цены выпуска. Выпуск должен быть найден ListIssues.
func (pc *PriceChartingClient) IssuePrices(ctx context.Context, number int) (models.Prices, error) {
	log := logrus.WithField("issue", number)

	url, ok := pc.issueURLs[number]
	if !ok {
		log.Warn("URL выпуска неизвестен")
		return models.Prices{}, nil
	}

	doc, err := pc.page(ctx, url)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			log.Warn("Страница выпуска не найдена")
			return models.Prices{}, nil
		}
		return models.Prices{}, fmt.Errorf("fetch issue %d: %w", number, err)
	}

	prices := tablePrices(doc)
	if !prices.Any() {
		if span := findFirst(doc, tagWithClass("span", "price")); span != nil {
			if v, ok := titles.ExtractPrice(text(span)); ok {
				prices.Ungraded = &v
			}
		}
	}
	return prices, nil
}

// tablePrices ищет первую таблицу с колонками ungraded/6.0/8.0, в которой есть цена.
func tablePrices(doc *html.Node) models.Prices {
	for _, table := range findAll(doc, tag("table")) {
		rows := findAll(table, tag("tr"))

		var header *html.Node
		for _, row := range rows {
			if findFirst(row, tag("th")) != nil {
				header = row
				break
			}
		}
		if header == nil {
			continue
		}

		ungraded, grade60, grade80 := -1, -1, -1
		for i, th := range findAll(header, tag("th")) {
			h := strings.ToLower(text(th))
			switch {
			case strings.Contains(h, "ungraded"):
				ungraded = i
			case strings.Contains(h, "6.0"):
				grade60 = i
			case strings.Contains(h, "8.0"):
				grade80 = i
			}
		}
		maxCol := max(ungraded, grade60, grade80)
		if maxCol < 0 {
			continue
		}

		for _, row := range rows[1:] {
			cells := findAll(row, tag("td", "th"))
			if len(cells) <= maxCol {
				continue
			}
			prices := models.Prices{
				Ungraded: cellPrice(cells, ungraded),
				Grade60:  cellPrice(cells, grade60),
				Grade80:  cellPrice(cells, grade80),
			}
			if prices.Any() {
				return prices
			}
		}
	}
	return models.Prices{}
}

func cellPrice(cells []*html.Node, col int) *float64 {
	if col < 0 {
		return nil
	}
	v, ok := titles.ExtractPrice(text(cells[col]))
	if !ok {
		return nil
	}
	return &v
}
