package sheets

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

const (
	HeaderBackground = "#1f4e79"
	HeaderFont       = "#ffffff"
	PriceBackground  = "#d9ead3"
	StripeBackground = "#f2f2f2"
	CurrencyFormat   = "$#,##0.00"

	minColumnWidth = 8
	maxColumnWidth = 60
)

type Style struct {
	Bold         bool
	Background   string
	FontColor    string
	Align        string // "center" or "right"
	Border       bool
	NumberFormat string
}

// Region is a styled block of cells. Row and Col are 1-based.
type Region struct {
	Row, Col   int
	Rows, Cols int
	Style      Style
}

// Layout describes every style applied to a table.
// A table without rows gets no styles at all.
func Layout(t Table) []Region {
	if len(t.Rows) == 0 {
		return nil
	}
	cols := len(t.Headers)
	regions := []Region{{
		Row: 1, Col: 1, Rows: 1, Cols: cols,
		Style: Style{Bold: true, Background: HeaderBackground, FontColor: HeaderFont, Align: "center", Border: true},
	}}

	for _, run := range runs(t.PriceColumns, cols, true) {
		regions = append(regions, Region{
			Row: 2, Col: run[0], Rows: len(t.Rows), Cols: run[1],
			Style: Style{Background: PriceBackground, Align: "right", NumberFormat: CurrencyFormat},
		})
	}

	plain := runs(t.PriceColumns, cols, false)
	for r := 2; r <= len(t.Rows)+1; r += 2 {
		for _, run := range plain {
			regions = append(regions, Region{
				Row: r, Col: run[0], Rows: 1, Cols: run[1],
				Style: Style{Background: StripeBackground},
			})
		}
	}
	return regions
}

// runs returns [start, length] spans of contiguous columns that are (or are not) price columns.
func runs(priceCols []int, cols int, price bool) [][2]int {
	isPrice := make(map[int]bool, len(priceCols))
	for _, c := range priceCols {
		isPrice[c] = true
	}
	var out [][2]int
	for c := 1; c <= cols; c++ {
		if isPrice[c] != price {
			continue
		}
		if n := len(out); n > 0 && out[n-1][0]+out[n-1][1] == c {
			out[n-1][1]++
			continue
		}
		out = append(out, [2]int{c, 1})
	}
	return out
}

// ColumnWidths approximates auto-resize: the widest rendered cell per column.
func ColumnWidths(t Table) []float64 {
	widths := make([]float64, len(t.Headers))
	measure := func(col int, s string) {
		w := float64(utf8.RuneCountInString(s) + 2)
		if w > widths[col] {
			widths[col] = w
		}
	}
	for i, h := range t.Headers {
		measure(i, h)
	}
	currency := make(map[int]bool, len(t.PriceColumns))
	for _, c := range t.PriceColumns {
		currency[c-1] = true
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			measure(i, display(cell, currency[i]))
		}
	}
	for i, w := range widths {
		widths[i] = min(max(w, minColumnWidth), maxColumnWidth)
	}
	return widths
}

func display(cell any, currency bool) string {
	switch v := cell.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		if currency {
			return "$" + groupThousands(fmt.Sprintf("%.2f", v))
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func groupThousands(s string) string {
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i:]
			break
		}
	}
	var out []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	return string(out) + frac
}
