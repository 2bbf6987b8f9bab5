package sheets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet = "Sheet1"
	scratchSheet = "~replace"
)

// XLSXWriter пишет таблицы в локальный файл .xlsx.
type XLSXWriter struct {
	Path string
}

func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{Path: path}
}

func (w *XLSXWriter) WriteTable(ctx context.Context, sheet string, table Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, fresh, err := w.open()
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Warnf("close workbook: %v", err)
		}
	}()

	index, err := resetSheet(f, sheet)
	if err != nil {
		return fmt.Errorf("reset sheet %s: %w", sheet, err)
	}
	if fresh && sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("delete default sheet: %w", err)
		}
		if index, err = f.GetSheetIndex(sheet); err != nil {
			return fmt.Errorf("sheet index: %w", err)
		}
	}
	f.SetActiveSheet(index)

	if err := writeRows(f, sheet, table); err != nil {
		return err
	}
	if err := applyLayout(f, sheet, table); err != nil {
		return err
	}

	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.Path, err)
	}
	logrus.WithFields(logrus.Fields{
		"path":  w.Path,
		"sheet": sheet,
		"rows":  len(table.Rows),
	}).Info("Лист записан")
	return nil
}

func (w *XLSXWriter) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(w.Path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	if _, statErr := os.Stat(w.Path); errors.Is(statErr, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("open workbook %s: %w", w.Path, err)
}

// resetSheet replaces the sheet with an empty one so no values or styles survive.
func resetSheet(f *excelize.File, sheet string) (int, error) {
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return 0, err
	}
	if index == -1 {
		return f.NewSheet(sheet)
	}
	if _, err := f.NewSheet(scratchSheet); err != nil {
		return 0, err
	}
	if err := f.DeleteSheet(sheet); err != nil {
		return 0, err
	}
	if err := f.SetSheetName(scratchSheet, sheet); err != nil {
		return 0, err
	}
	return f.GetSheetIndex(sheet)
}

func writeRows(f *excelize.File, sheet string, table Table) error {
	header := make([]any, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range table.Rows {
		row := row
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

func applyLayout(f *excelize.File, sheet string, table Table) error {
	styles := make(map[Style]int)
	for _, region := range Layout(table) {
		id, ok := styles[region.Style]
		if !ok {
			var err error
			id, err = f.NewStyle(xlsxStyle(region.Style))
			if err != nil {
				return fmt.Errorf("new style: %w", err)
			}
			styles[region.Style] = id
		}
		from, err := excelize.CoordinatesToCellName(region.Col, region.Row)
		if err != nil {
			return err
		}
		to, err := excelize.CoordinatesToCellName(region.Col+region.Cols-1, region.Row+region.Rows-1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, from, to, id); err != nil {
			return fmt.Errorf("set style %s:%s: %w", from, to, err)
		}
	}

	if len(table.Rows) > 0 {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
	}

	for i, width := range ColumnWidths(table) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set width %s: %w", col, err)
		}
	}
	return nil
}

func xlsxStyle(s Style) *excelize.Style {
	style := &excelize.Style{}
	if s.Bold || s.FontColor != "" {
		style.Font = &excelize.Font{Bold: s.Bold, Color: s.FontColor}
	}
	if s.Background != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.Background}}
	}
	if s.Align != "" {
		style.Alignment = &excelize.Alignment{Horizontal: s.Align}
	}
	if s.Border {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			style.Border = append(style.Border, excelize.Border{Type: side, Color: "#000000", Style: 1})
		}
	}
	if s.NumberFormat != "" {
		format := s.NumberFormat
		style.CustomNumFmt = &format
	}
	return style
}
