package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// GoogleWriter пишет таблицы в Google Sheets.
type GoogleWriter struct {
	Service       *gsheets.Service
	SpreadsheetID string
}

// NewGoogleWriter создает клиент Sheets API по файлу сервисного аккаунта.
func NewGoogleWriter(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleWriter, error) {
	opts = append([]option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}, opts...)
	srv, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleWriter{Service: srv, SpreadsheetID: spreadsheetID}, nil
}

func (w *GoogleWriter) WriteTable(ctx context.Context, sheet string, table Table) error {
	sheetID, err := w.ensureSheet(ctx, sheet)
	if err != nil {
		return err
	}

	quoted := quoteSheet(sheet)
	if _, err := w.Service.Spreadsheets.Values.Clear(w.SpreadsheetID, quoted, &gsheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	values := make([][]interface{}, 0, len(table.Rows)+1)
	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	values = append(values, header)
	for _, row := range table.Rows {
		values = append(values, row)
	}
	if _, err := w.Service.Spreadsheets.Values.Update(w.SpreadsheetID, quoted+"!A1", &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update values %s: %w", sheet, err)
	}

	if _, err := w.Service.Spreadsheets.BatchUpdate(w.SpreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: formatRequests(sheetID, table),
	}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("format sheet %s: %w", sheet, err)
	}

	logrus.WithFields(logrus.Fields{
		"spreadsheet": w.SpreadsheetID,
		"sheet":       sheet,
		"rows":        len(table.Rows),
	}).Info("Лист Google Sheets записан")
	return nil
}

// ensureSheet возвращает id листа, создавая его при необходимости.
func (w *GoogleWriter) ensureSheet(ctx context.Context, sheet string) (int64, error) {
	ss, err := w.Service.Spreadsheets.Get(w.SpreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet %s: %w", w.SpreadsheetID, err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := w.Service.Spreadsheets.BatchUpdate(w.SpreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{Properties: &gsheets.SheetProperties{Title: sheet}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("add sheet %s: %w", sheet, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add sheet %s: empty reply", sheet)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// formatRequests clears old formatting, then applies the layout, the frozen header and column sizing.
func formatRequests(sheetID int64, table Table) []*gsheets.Request {
	frozen := int64(0)
	if len(table.Rows) > 0 {
		frozen = 1
	}
	requests := []*gsheets.Request{
		{
			RepeatCell: &gsheets.RepeatCellRequest{
				Range:  &gsheets.GridRange{SheetId: sheetID},
				Cell:   &gsheets.CellData{},
				Fields: "userEnteredFormat",
			},
		},
		{
			UpdateSheetProperties: &gsheets.UpdateSheetPropertiesRequest{
				Properties: &gsheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &gsheets.GridProperties{
						FrozenRowCount:  frozen,
						ForceSendFields: []string{"FrozenRowCount"},
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	for _, region := range Layout(table) {
		format, fields := cellFormat(region.Style)
		requests = append(requests, &gsheets.Request{
			RepeatCell: &gsheets.RepeatCellRequest{
				Range: &gsheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(region.Row - 1),
					EndRowIndex:      int64(region.Row - 1 + region.Rows),
					StartColumnIndex: int64(region.Col - 1),
					EndColumnIndex:   int64(region.Col - 1 + region.Cols),
				},
				Cell:   &gsheets.CellData{UserEnteredFormat: format},
				Fields: "userEnteredFormat(" + strings.Join(fields, ",") + ")",
			},
		})
	}

	requests = append(requests, &gsheets.Request{
		AutoResizeDimensions: &gsheets.AutoResizeDimensionsRequest{
			Dimensions: &gsheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "COLUMNS",
				StartIndex: 0,
				EndIndex:   int64(len(table.Headers)),
			},
		},
	})
	return requests
}

func cellFormat(s Style) (*gsheets.CellFormat, []string) {
	format := &gsheets.CellFormat{}
	var fields []string
	if s.Background != "" {
		format.BackgroundColor = hexColor(s.Background)
		fields = append(fields, "backgroundColor")
	}
	if s.Bold || s.FontColor != "" {
		format.TextFormat = &gsheets.TextFormat{Bold: s.Bold}
		if s.FontColor != "" {
			format.TextFormat.ForegroundColor = hexColor(s.FontColor)
		}
		fields = append(fields, "textFormat")
	}
	if s.Align != "" {
		format.HorizontalAlignment = strings.ToUpper(s.Align)
		fields = append(fields, "horizontalAlignment")
	}
	if s.NumberFormat != "" {
		format.NumberFormat = &gsheets.NumberFormat{Type: "CURRENCY", Pattern: s.NumberFormat}
		fields = append(fields, "numberFormat")
	}
	if s.Border {
		solid := &gsheets.Border{Style: "SOLID"}
		format.Borders = &gsheets.Borders{Top: solid, Bottom: solid, Left: solid, Right: solid}
		fields = append(fields, "borders")
	}
	return format, fields
}

// hexColor converts "#rrggbb" to a Sheets color; malformed input yields black.
func hexColor(hex string) *gsheets.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return &gsheets.Color{}
	}
	channel := func(s string) float64 {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0
		}
		return float64(v) / 255
	}
	return &gsheets.Color{
		Red:   channel(hex[0:2]),
		Green: channel(hex[2:4]),
		Blue:  channel(hex[4:6]),
	}
}
