// Package sheets turns comic records into formatted spreadsheet tables
// and writes them to local workbooks or Google Sheets.
package sheets

import (
	"context"
	"sort"

	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/ZetoOfficial/comic-prices/internal/titles"
)

const NotAvailable = "N/A"

// Headers of the comics sheet. Columns 7-9 hold prices.
var Headers = []string{
	"Title",
	"Series",
	"Issue #",
	"Year",
	"Original Grade",
	"Original Est. Value",
	"Ungraded Price",
	"6.0 Grade Price",
	"8.0 Grade Price",
	"Price Source",
	"Price Updated",
	"Key Notes",
	"Event",
	"Creator(s)",
	"Value",
	"Grade Range",
}

var priceColumns = []int{7, 8, 9}

// Table is a header row plus data rows. Cells are string, int or float64.
type Table struct {
	Headers []string
	Rows    [][]any
	// PriceColumns are 1-based column numbers rendered as currency.
	PriceColumns []int
}

// Writer renders a table into the named sheet, replacing what was there.
type Writer interface {
	WriteTable(ctx context.Context, sheet string, table Table) error
}

// Records derives display records and sorts them by series, then issue.
// Records without an issue number go last in their series.
func Records(comics []models.Comic) []models.Record {
	records := make([]models.Record, len(comics))
	for i, c := range comics {
		records[i] = titles.Derive(c)
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Series != b.Series {
			return a.Series < b.Series
		}
		switch {
		case a.Issue == nil:
			return false
		case b.Issue == nil:
			return true
		}
		return *a.Issue < *b.Issue
	})
	return records
}

func BuildTable(records []models.Record) Table {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, row(r))
	}
	return Table{
		Headers:      Headers,
		Rows:         rows,
		PriceColumns: priceColumns,
	}
}

func row(r models.Record) []any {
	c := r.Comic
	pd := c.PriceData
	if pd == nil {
		pd = &models.PriceData{}
	}

	var issue any = ""
	if r.Issue != nil {
		issue = *r.Issue
	}
	var value any = NotAvailable
	if r.Value != nil {
		value = *r.Value
	}
	grade := NotAvailable
	if r.Grade != nil {
		grade = r.Grade.String()
	}

	return []any{
		c.Title,
		r.Series,
		issue,
		r.Year,
		c.Grade,
		c.EstValue,
		price(pd.Ungraded),
		price(pd.Grade60),
		price(pd.Grade80),
		orNA(pd.Source),
		orNA(pd.Updated),
		orNA(c.KeyNotes),
		orNA(c.Event),
		orNA(c.Creator),
		value,
		grade,
	}
}

func price(v *float64) any {
	if v == nil || *v == 0 {
		return NotAvailable
	}
	return *v
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
