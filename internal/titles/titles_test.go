package titles

import (
	"testing"

	"github.com/ZetoOfficial/comic-prices/internal/models"
	"github.com/stretchr/testify/require"
)

func TestSeries(t *testing.T) {
	cases := map[string]string{
		"Amazing Spider-Man #300":                         "Amazing Spider-Man",
		"The Amazing Spider-Man #129 (1974)":              "Amazing Spider-Man",
		"Peter Parker, The Spectacular Spider-Man #64":    "Peter Parker, The Spectacular Spider-Man",
		"Spectacular Spider-Man #1":                       "Spectacular Spider-Man",
		"Web of Spider-Man #1":                            "Spider-Man",
		"Venom: Lethal Protector #1":                      "Venom: Lethal Protector",
		"#12":                                             UnknownSeries,
		"":                                                UnknownSeries,
	}
	for title, want := range cases {
		require.Equal(t, want, Series(title), title)
	}
}

func TestIssueNumberAndYear(t *testing.T) {
	n, ok := IssueNumber("Amazing Spider-Man #315 (1989)")
	require.True(t, ok)
	require.Equal(t, 315, n)
	require.Equal(t, "Est. 1989", Year("Amazing Spider-Man #315"))
	require.Equal(t, "Est. 1963", Year("Amazing Spider-Man #11"))
	require.Equal(t, "Est. 1964", Year("Amazing Spider-Man #12"))

	_, ok = IssueNumber("Amazing Spider-Man Annual")
	require.False(t, ok)
	require.Equal(t, "Est. 1963", Year("Amazing Spider-Man Annual"))
}

func TestExtractPrice(t *testing.T) {
	v, ok := ExtractPrice("$1,045.50")
	require.True(t, ok)
	require.Equal(t, 1045.5, v)

	v, ok = ExtractPrice("  45 ")
	require.True(t, ok)
	require.Equal(t, 45.0, v)

	_, ok = ExtractPrice("-")
	require.False(t, ok)
	_, ok = ExtractPrice("$0.00")
	require.False(t, ok)
	_, ok = ExtractPrice("$250,000")
	require.False(t, ok)
}

func TestParseValue(t *testing.T) {
	v, ok := ParseValue("$20-$30")
	require.True(t, ok)
	require.Equal(t, 25.0, v)

	v, ok = ParseValue("$15 to $20")
	require.True(t, ok)
	require.Equal(t, 17.5, v)

	v, ok = ParseValue("$1,200.00")
	require.True(t, ok)
	require.Equal(t, 1200.0, v)

	_, ok = ParseValue("N/A")
	require.False(t, ok)
}

func TestParseGrade(t *testing.T) {
	g, ok := ParseGrade("FN 6.0 - VF 8.0")
	require.True(t, ok)
	require.Equal(t, models.GradeRange{Low: 6, High: 8}, g)
	require.Equal(t, "6.0-8.0", g.String())

	g, ok = ParseGrade("CGC 9.8")
	require.True(t, ok)
	require.Equal(t, "9.8", g.String())

	_, ok = ParseGrade("NM")
	require.False(t, ok)
	_, ok = ParseGrade("VF/NM")
	require.False(t, ok)

	_, ok = ParseGrade("Ungraded")
	require.False(t, ok)
	_, ok = ParseGrade("")
	require.False(t, ok)
}

func TestDerive(t *testing.T) {
	r := Derive(models.Comic{
		Title:    "Amazing Spider-Man #121",
		Grade:    "VF 8.0",
		EstValue: "$300-$400",
	})
	require.Equal(t, "Amazing Spider-Man", r.Series)
	require.NotNil(t, r.Issue)
	require.Equal(t, 121, *r.Issue)
	require.Equal(t, "Est. 1973", r.Year)
	require.NotNil(t, r.Value)
	require.Equal(t, 350.0, *r.Value)
	require.NotNil(t, r.Grade)
	require.Equal(t, 8.0, r.Grade.Low)

	r = Derive(models.Comic{Title: "Unknown thing", EstValue: "priceless"})
	require.Nil(t, r.Issue)
	require.Nil(t, r.Value)
	require.Nil(t, r.Grade)
}
