package sheets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	table := BuildTable(Records(testComics()))
	regions := Layout(table)

	header := regions[0]
	require.Equal(t, Region{Row: 1, Col: 1, Rows: 1, Cols: 16, Style: Style{
		Bold: true, Background: HeaderBackground, FontColor: HeaderFont, Align: "center", Border: true,
	}}, header)

	prices := regions[1]
	require.Equal(t, 2, prices.Row)
	require.Equal(t, 7, prices.Col)
	require.Equal(t, 4, prices.Rows)
	require.Equal(t, 3, prices.Cols)
	require.Equal(t, CurrencyFormat, prices.Style.NumberFormat)
	require.Equal(t, "right", prices.Style.Align)

	// rows 2 and 4 are striped, each in two spans around the price columns
	stripes := regions[2:]
	require.Len(t, stripes, 4)
	require.Equal(t, Region{Row: 2, Col: 1, Rows: 1, Cols: 6, Style: Style{Background: StripeBackground}}, stripes[0])
	require.Equal(t, Region{Row: 2, Col: 10, Rows: 1, Cols: 7, Style: Style{Background: StripeBackground}}, stripes[1])
	require.Equal(t, 4, stripes[2].Row)
	require.Equal(t, 4, stripes[3].Row)
}

func TestRuns(t *testing.T) {
	require.Equal(t, [][2]int{{7, 3}}, runs([]int{7, 8, 9}, 16, true))
	require.Equal(t, [][2]int{{1, 6}, {10, 7}}, runs([]int{7, 8, 9}, 16, false))
	require.Equal(t, [][2]int{{1, 2}}, runs(nil, 2, false))
	require.Nil(t, runs(nil, 2, true))
}

func TestColumnWidths(t *testing.T) {
	table := Table{
		Headers:      []string{"A", "Price"},
		Rows:         [][]any{{"a rather long title", 1234.5}, {"x", "N/A"}},
		PriceColumns: []int{2},
	}
	widths := ColumnWidths(table)
	require.Equal(t, []float64{21, 11}, widths)
	require.Equal(t, "$1,234.50", display(1234.5, true))
	require.Equal(t, "$999.00", display(999.0, true))
	require.Equal(t, "$1,000,000.00", display(1000000.0, true))
}
