package sheets

import (
	"testing"

	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func testComics() []models.Comic {
	return []models.Comic{
		{Title: "Spectacular Spider-Man #2", Grade: "FN 6.0", EstValue: "$30"},
		{Title: "Amazing Spider-Man #300", Grade: "VF 8.0 - NM 9.4", EstValue: "$350", Event: "First Venom", Creator: "McFarlane",
			PriceData: &models.PriceData{Ungraded: ptr(410.5), Grade80: ptr(900), Source: "PriceCharting.com", Updated: "2024-05-01", Status: models.StatusFound}},
		{Title: "Amazing Spider-Man Annual", Grade: "Ungraded", EstValue: "unknown"},
		{Title: "Amazing Spider-Man #129", Grade: "Ungraded", EstValue: "$1,000-$1,200", KeyNotes: "First Punisher"},
	}
}

func TestRecordsSorted(t *testing.T) {
	records := Records(testComics())
	var order []string
	for _, r := range records {
		order = append(order, r.Comic.Title)
	}
	require.Equal(t, []string{
		"Amazing Spider-Man #129",
		"Amazing Spider-Man #300",
		"Amazing Spider-Man Annual",
		"Spectacular Spider-Man #2",
	}, order)
}

func TestBuildTable(t *testing.T) {
	table := BuildTable(Records(testComics()))
	require.Len(t, table.Headers, 16)
	require.Len(t, table.Rows, 4)
	require.Equal(t, []int{7, 8, 9}, table.PriceColumns)

	asm129 := table.Rows[0]
	require.Equal(t, []any{
		"Amazing Spider-Man #129", "Amazing Spider-Man", 129, "Est. 1973", "Ungraded", "$1,000-$1,200",
		NotAvailable, NotAvailable, NotAvailable, NotAvailable, NotAvailable,
		"First Punisher", NotAvailable, NotAvailable,
		1100.0, NotAvailable,
	}, asm129)

	asm300 := table.Rows[1]
	require.Equal(t, 410.5, asm300[6])
	require.Equal(t, NotAvailable, asm300[7])
	require.Equal(t, 900.0, asm300[8])
	require.Equal(t, "PriceCharting.com", asm300[9])
	require.Equal(t, "2024-05-01", asm300[10])
	require.Equal(t, "8.0-9.4", asm300[15])

	annual := table.Rows[2]
	require.Equal(t, "", annual[2])
	require.Equal(t, "Est. 1963", annual[3])
	require.Equal(t, NotAvailable, annual[14])
}

func TestBuildTableEmpty(t *testing.T) {
	table := BuildTable(Records(nil))
	require.Empty(t, table.Rows)
	require.Equal(t, Headers, table.Headers)
	require.Nil(t, Layout(table))
}

func TestRecordsTiesKeepInputOrder(t *testing.T) {
	titlesOf := func(records []models.Record) []string {
		var out []string
		for _, r := range records {
			out = append(out, r.Comic.Title)
		}
		return out
	}

	comics := []models.Comic{
		{Title: "Amazing Spider-Man #300 (Newsstand)"},
		{Title: "Amazing Spider-Man Annual"},
		{Title: "Amazing Spider-Man #300"},
		{Title: "Amazing Spider-Man King-Size"},
	}
	require.Equal(t, []string{
		"Amazing Spider-Man #300 (Newsstand)",
		"Amazing Spider-Man #300",
		"Amazing Spider-Man Annual",
		"Amazing Spider-Man King-Size",
	}, titlesOf(Records(comics)))

	reversed := []models.Comic{comics[3], comics[2], comics[1], comics[0]}
	require.Equal(t, []string{
		"Amazing Spider-Man #300",
		"Amazing Spider-Man #300 (Newsstand)",
		"Amazing Spider-Man King-Size",
		"Amazing Spider-Man Annual",
	}, titlesOf(Records(reversed)))
}
