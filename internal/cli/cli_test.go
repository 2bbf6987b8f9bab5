package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ZetoOfficial/comic-prices/internal/app"
	"github.com/ZetoOfficial/comic-prices/internal/config"
	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/ZetoOfficial/comic-prices/internal/sheets"
	"github.com/ZetoOfficial/comic-prices/internal/storage"
	"github.com/stretchr/testify/require"
)

type stubAPI struct{ comics []models.Comic }

func (s stubAPI) FetchComics(context.Context) ([]models.Comic, error) { return s.comics, nil }

type stubWriter struct{ sheets []string }

func (s *stubWriter) WriteTable(_ context.Context, sheet string, _ sheets.Table) error {
	s.sheets = append(s.sheets, sheet)
	return nil
}

type stubHistory struct{ snapshots []storage.PriceSnapshot }

func (s stubHistory) History(context.Context, string) ([]storage.PriceSnapshot, error) {
	return s.snapshots, nil
}

func execute(t *testing.T, factory Factory, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(context.Background(), factory, args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestImportCommand(t *testing.T) {
	w := &stubWriter{}
	var got *config.Config
	factory := func(_ context.Context, cfg *config.Config) (*app.App, func(), error) {
		got = cfg
		api := stubAPI{comics: []models.Comic{{Title: "Amazing Spider-Man #1"}}}
		return app.NewApp(api, nil, nil, nil, w), func() {}, nil
	}

	out, errOut, code := execute(t, factory, "import", "--output", "comics.xlsx", "--summary", "--sheet_name", "Collection")
	require.Zero(t, code)
	require.Equal(t, "Imported 1 comics with updated price data.\n", out)
	require.Empty(t, errOut)
	require.Equal(t, "comics.xlsx", got.Output)
	require.Equal(t, []string{"Collection", config.DefaultSummarySheet}, w.sheets)
}

func TestImportRequiresOutput(t *testing.T) {
	called := false
	factory := func(context.Context, *config.Config) (*app.App, func(), error) {
		called = true
		return nil, nil, nil
	}

	out, errOut, code := execute(t, factory, "import")
	require.Equal(t, 1, code)
	require.Empty(t, out)
	require.Equal(t, 1, strings.Count(errOut, "no output configured"))
	require.Equal(t, 1, strings.Count(errOut, "Error:"))
	require.False(t, called)
}

func TestQueryCommandValidatesName(t *testing.T) {
	factory := func(context.Context, *config.Config) (*app.App, func(), error) {
		t.Fatal("factory must not be called")
		return nil, nil, nil
	}

	_, errOut, code := execute(t, factory, "query", "nope")
	require.Equal(t, 1, code)
	require.Equal(t, 1, strings.Count(errOut, "query nope not found"))
	require.Contains(t, errOut, "total_comics")
}

func TestUpdatePricesNeedsFile(t *testing.T) {
	_, errOut, code := execute(t, nil, "update-prices")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "accepts 1 arg(s)")
}

func TestHistoryCommand(t *testing.T) {
	v := 410.5
	var got *config.Config
	factory := func(_ context.Context, cfg *config.Config) (*app.App, func(), error) {
		got = cfg
		h := stubHistory{snapshots: []storage.PriceSnapshot{{
			Title:      "Amazing Spider-Man #300",
			Ungraded:   &v,
			Status:     "found",
			CapturedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		}}}
		return app.NewApp(nil, nil, nil, h), func() {}, nil
	}

	out, errOut, code := execute(t, factory, "history", "Amazing Spider-Man #300", "--database_dsn", "postgres://localhost/comics")
	require.Zero(t, code, errOut)
	require.True(t, got.History)
	require.Contains(t, out, "Captured")
	require.Contains(t, out, "2024-05-01")
	require.Contains(t, out, "$410.50")
	require.Contains(t, out, "N/A")
	require.Contains(t, out, "found")
}

func TestHistoryCommandNeedsDSN(t *testing.T) {
	_, errOut, code := execute(t, nil, "history", "Amazing Spider-Man #300")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "history requires --database_dsn")
}
