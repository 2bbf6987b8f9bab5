package sheets

import (
	"math"
	"sort"

	"github.com/ZetoOfficial/comic-prices/internal/models"
)

const noStatus = "none"

// Summary holds collection statistics for the summary sheet.
type Summary struct {
	Total         int
	WithPriceData int
	AvgUngraded   float64
	AvgGrade60    float64
	AvgGrade80    float64
	TotalValue    float64
	MaxValue      float64
	BySeries      map[string]int
	ByStatus      map[string]int
}

// Summarize averages only the prices that are present and non-zero.
func Summarize(records []models.Record) Summary {
	s := Summary{
		Total:    len(records),
		BySeries: make(map[string]int),
		ByStatus: make(map[string]int),
	}
	var ungraded, grade60, grade80 []float64
	for _, r := range records {
		s.BySeries[r.Series]++
		if r.Value != nil {
			s.TotalValue += *r.Value
			s.MaxValue = math.Max(s.MaxValue, *r.Value)
		}

		pd := r.Comic.PriceData
		if pd == nil {
			s.ByStatus[noStatus]++
			continue
		}
		s.WithPriceData++
		status := string(pd.Status)
		if status == "" {
			status = noStatus
		}
		s.ByStatus[status]++
		ungraded = appendPresent(ungraded, pd.Ungraded)
		grade60 = appendPresent(grade60, pd.Grade60)
		grade80 = appendPresent(grade80, pd.Grade80)
	}
	s.AvgUngraded = average(ungraded)
	s.AvgGrade60 = average(grade60)
	s.AvgGrade80 = average(grade80)
	s.TotalValue = round2(s.TotalValue)
	return s
}

func (s Summary) Table() Table {
	rows := [][]any{
		{"Total Comics", s.Total},
		{"Comics With Price Data", s.WithPriceData},
		{"Average Ungraded Price", s.AvgUngraded},
		{"Average 6.0 Grade Price", s.AvgGrade60},
		{"Average 8.0 Grade Price", s.AvgGrade80},
		{"Total Est. Value", s.TotalValue},
		{"Max Est. Value", s.MaxValue},
	}
	for _, name := range sortedKeys(s.BySeries) {
		rows = append(rows, []any{"Series: " + name, s.BySeries[name]})
	}
	for _, status := range sortedKeys(s.ByStatus) {
		rows = append(rows, []any{"Status: " + status, s.ByStatus[status]})
	}
	return Table{Headers: []string{"Metric", "Value"}, Rows: rows}
}

func appendPresent(dst []float64, v *float64) []float64 {
	if v == nil || *v == 0 {
		return dst
	}
	return append(dst, *v)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return round2(sum / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
