// Package titles derives display fields from free-form comic titles, values and grades.
package titles

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZetoOfficial/comic-prices/internal/models"
)

const (
	UnknownSeries = "Unknown Series"

	firstIssueYear = 1963
	issuesPerYear  = 12

	minPrice = 0.01
	maxPrice = 100000
)

// knownSeries is checked in order, the longer names first.
var knownSeries = []string{
	"Peter Parker, The Spectacular Spider-Man",
	"Amazing Spider-Man",
	"Spectacular Spider-Man",
	"Spider-Man",
}

var (
	issueRe  = regexp.MustCompile(`#(\d+)`)
	prefixRe = regexp.MustCompile(`^([^#]+)`)
	numberRe = regexp.MustCompile(`\d+\.?\d*`)
	rangeRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-|–|to)\s*(\d+(?:\.\d+)?)`)
)

// Series returns the series name of a title like "Amazing Spider-Man #315".
func Series(title string) string {
	for _, name := range knownSeries {
		if strings.Contains(title, name) {
			return name
		}
	}
	if m := prefixRe.FindStringSubmatch(title); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			return s
		}
	}
	return UnknownSeries
}

// IssueNumber returns the first "#N" in the title.
func IssueNumber(title string) (int, bool) {
	m := issueRe.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Year estimates the publication year assuming a monthly run since 1963.
// Titles without an issue number are estimated as issue 0.
func Year(title string) string {
	n, _ := IssueNumber(title)
	return "Est. " + strconv.Itoa(firstIssueYear+n/issuesPerYear)
}

// ExtractPrice returns the first plausible price in text such as "$1,045.00".
func ExtractPrice(text string) (float64, bool) {
	cleaned := cleanMoney(text)
	m := numberRe.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	return plausible(m)
}

// ParseValue is ExtractPrice that also understands ranges: "$20-$30" is 25.
func ParseValue(text string) (float64, bool) {
	cleaned := cleanMoney(text)
	if m := rangeRe.FindStringSubmatch(cleaned); m != nil {
		low, okLow := plausible(m[1])
		high, okHigh := plausible(m[2])
		switch {
		case okLow && okHigh:
			return math.Round((low+high)/2*100) / 100, true
		case okLow:
			return low, true
		case okHigh:
			return high, true
		}
		return 0, false
	}
	return ExtractPrice(text)
}

// ParseGrade returns the range of decimal grades mentioned in text.
// Condition words such as "NM" are not grades; "Ungraded" has no range.
func ParseGrade(text string) (models.GradeRange, bool) {
	var grades []float64
	for _, m := range numberRe.FindAllString(text, -1) {
		g, err := strconv.ParseFloat(m, 64)
		if err != nil || g < 0.5 || g > 10 {
			continue
		}
		grades = append(grades, g)
	}
	if len(grades) == 0 {
		return models.GradeRange{}, false
	}

	r := models.GradeRange{Low: grades[0], High: grades[0]}
	for _, g := range grades[1:] {
		r.Low = math.Min(r.Low, g)
		r.High = math.Max(r.High, g)
	}
	return r, true
}

// Derive builds the display record of a comic.
func Derive(c models.Comic) models.Record {
	r := models.Record{
		Comic:  c,
		Series: Series(c.Title),
		Year:   Year(c.Title),
	}
	if n, ok := IssueNumber(c.Title); ok {
		r.Issue = &n
	}
	if v, ok := ParseValue(c.EstValue); ok {
		r.Value = &v
	}
	if g, ok := ParseGrade(c.Grade); ok {
		r.Grade = &g
	}
	return r
}

func cleanMoney(text string) string {
	return strings.NewReplacer(",", "", "$", "").Replace(text)
}

func plausible(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil || v < minPrice || v > maxPrice {
		return 0, false
	}
	return v, true
}
