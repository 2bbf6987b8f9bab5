package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

const (
	defaultMaxRetries = 3
	maxBodyLog        = 512
)

// StatusError is returned for non-200 responses. Body is truncated.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d", ErrUnexpectedStatus, e.StatusCode)
	}
	return fmt.Sprintf("%s: %d: %s", ErrUnexpectedStatus, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// fetcher выполняет GET-запросы с повторами.
type fetcher struct {
	Client     *http.Client
	Headers    map[string]string
	MaxRetries uint64
	NewBackOff func() backoff.BackOff
}

func newFetcher(timeout time.Duration, headers map[string]string) fetcher {
	return fetcher{
		Client:     &http.Client{Timeout: timeout},
		Headers:    headers,
		MaxRetries: defaultMaxRetries,
		NewBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// get возвращает тело ответа. Ошибки 4xx не повторяются.
func (f fetcher) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		for k, v := range f.Headers {
			req.Header.Set(k, v)
		}

		resp, err := f.Client.Do(req)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"url":   url,
				"error": err,
			}).Warn("Ошибка выполнения HTTP-запроса")
			return fmt.Errorf("http get: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logrus.WithFields(logrus.Fields{
					"url":   url,
					"error": err,
				}).Warning("Не удалось закрыть тело ответа")
			}
		}()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), maxBodyLog)}
			logrus.WithFields(logrus.Fields{
				"url":         url,
				"status_code": resp.StatusCode,
				"body":        statusErr.Body,
			}).Error("Неправильный статус код")
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		body = data
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(f.NewBackOff(), f.MaxRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
