package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestHexColor(t *testing.T) {
	c := hexColor(HeaderBackground)
	require.InDelta(t, 0x1f/255.0, c.Red, 1e-9)
	require.InDelta(t, 0x4e/255.0, c.Green, 1e-9)
	require.InDelta(t, 0x79/255.0, c.Blue, 1e-9)

	white := hexColor("#ffffff")
	require.Equal(t, 1.0, white.Red)

	bad := hexColor("blue")
	require.Zero(t, bad.Red)
}

func TestFormatRequests(t *testing.T) {
	table := BuildTable(Records(testComics()))
	requests := formatRequests(42, table)

	// clear + freeze + header + prices + 4 stripes + autoresize
	require.Len(t, requests, 9)
	require.Equal(t, "userEnteredFormat", requests[0].RepeatCell.Fields)
	require.EqualValues(t, 1, requests[1].UpdateSheetProperties.Properties.GridProperties.FrozenRowCount)

	header := requests[2].RepeatCell
	require.EqualValues(t, 42, header.Range.SheetId)
	require.EqualValues(t, 0, header.Range.StartRowIndex)
	require.EqualValues(t, 1, header.Range.EndRowIndex)
	require.EqualValues(t, 16, header.Range.EndColumnIndex)
	require.True(t, header.Cell.UserEnteredFormat.TextFormat.Bold)
	require.Equal(t, "CENTER", header.Cell.UserEnteredFormat.HorizontalAlignment)
	require.Equal(t, "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment,borders)", header.Fields)

	prices := requests[3].RepeatCell
	require.EqualValues(t, 6, prices.Range.StartColumnIndex)
	require.EqualValues(t, 9, prices.Range.EndColumnIndex)
	require.EqualValues(t, 1, prices.Range.StartRowIndex)
	require.EqualValues(t, 5, prices.Range.EndRowIndex)
	require.Equal(t, CurrencyFormat, prices.Cell.UserEnteredFormat.NumberFormat.Pattern)

	resize := requests[8].AutoResizeDimensions
	require.Equal(t, "COLUMNS", resize.Dimensions.Dimension)
	require.EqualValues(t, 16, resize.Dimensions.EndIndex)
}

func TestFormatRequestsEmpty(t *testing.T) {
	requests := formatRequests(0, BuildTable(nil))
	require.Len(t, requests, 3)
	require.EqualValues(t, 0, requests[1].UpdateSheetProperties.Properties.GridProperties.FrozenRowCount)
}

func TestGoogleWriter(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
		body  = map[string]string{}
	)
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		mu.Lock()
		key := req.Method + " " + req.URL.Path
		calls = append(calls, key)
		body[key] = string(data)
		mu.Unlock()

		rw.Header().Set("Content-Type", "application/json")
		switch {
		case req.Method == http.MethodGet:
			_ = json.NewEncoder(rw).Encode(map[string]any{
				"sheets": []any{map[string]any{"properties": map[string]any{"sheetId": 7, "title": "Comics"}}},
			})
		default:
			_, _ = rw.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	w, err := NewGoogleWriter(context.Background(), "sheet-id",
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	require.NoError(t, w.WriteTable(context.Background(), "Comics", BuildTable(Records(testComics()))))

	require.Len(t, calls, 4)
	require.True(t, strings.HasPrefix(calls[0], "GET "))
	require.True(t, strings.HasSuffix(calls[1], ":clear"))
	require.True(t, strings.HasPrefix(calls[2], "PUT "))
	require.Contains(t, body[calls[2]], "Amazing Spider-Man #129")
	require.True(t, strings.HasSuffix(calls[3], ":batchUpdate"))
	require.Contains(t, body[calls[3]], `"sheetId":7`)
}
