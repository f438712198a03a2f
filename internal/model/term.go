package model

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Season is one academic scheduling period within a year.
type Season string

// Recognized seasons, in the order they occur within a cycle.
const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// Seasons is the fixed term cycle. The cycle wraps from winter to the
// following year's spring.
var Seasons = []Season{Spring, Summer, Fall, Winter}

// seasonCodes maps each season to the two-digit suffix used in term codes.
var seasonCodes = map[Season]string{
	Spring: "02",
	Summer: "05",
	Fall:   "08",
	Winter: "12",
}

// titleCaser renders season names for display ("fall" -> "Fall").
var titleCaser = cases.Title(language.English)

// Valid reports whether s is one of the four recognized seasons.
func (s Season) Valid() bool {
	_, ok := seasonCodes[s]
	return ok
}

// Term identifies one academic term.
//
// Year is kept as a string because it is concatenated directly into term
// codes and file names. For winter, Year is the later of the two calendar
// years the term spans.
type Term struct {
	Year   string `json:"year" yaml:"year"`
	Season Season `json:"term" yaml:"term"`
}

// NewTerm builds a Term from an integer year.
func NewTerm(year int, season Season) Term {
	return Term{Year: strconv.Itoa(year), Season: season}
}

// String renders the term in the "year/season" form accepted by ParseTerm.
func (t Term) String() string {
	return t.Year + "/" + string(t.Season)
}

// Code returns the term code for t. See TermCode.
func (t Term) Code() (string, error) {
	return TermCode(t.Year, t.Season)
}

// Name returns the display name for t. See TermName.
func (t Term) Name() (string, error) {
	return TermName(t.Year, t.Season)
}

// TermCode concatenates year with the season's two-digit code,
// e.g. ("2025", fall) -> "202508".
func TermCode(year string, season Season) (string, error) {
	code, ok := seasonCodes[season]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTerm, season)
	}
	return year + code, nil
}

// TermName returns a human readable term name. Winter spans two calendar
// years and renders as "Winter 2025-2026" for year "2026"; every other
// season renders as "Fall 2025".
func TermName(year string, season Season) (string, error) {
	if !season.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTerm, season)
	}
	if season == Winter {
		y, err := strconv.Atoi(year)
		if err != nil {
			return "", fmt.Errorf("%w: winter year %q is not numeric", ErrInvalidTerm, year)
		}
		return fmt.Sprintf("Winter %d-%d", y-1, y), nil
	}
	return titleCaser.String(string(season)) + " " + year, nil
}

// ParseTerm parses "2025/fall". Surrounding whitespace is ignored and the
// season is case-insensitive.
func ParseTerm(s string) (Term, error) {
	year, season, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Term{}, fmt.Errorf("%w: %q is not in year/term form", ErrInvalidTerm, s)
	}
	year = strings.TrimSpace(year)
	if _, err := strconv.Atoi(year); err != nil {
		return Term{}, fmt.Errorf("%w: year %q is not numeric", ErrInvalidTerm, year)
	}
	t := Term{
		Year:   year,
		Season: Season(strings.ToLower(strings.TrimSpace(season))),
	}
	if !t.Season.Valid() {
		return Term{}, fmt.Errorf("%w: %q", ErrInvalidTerm, season)
	}
	return t, nil
}

// ParseTerms parses a comma-separated list of "year/term" pairs.
// Empty elements are ignored, so "2025/fall," parses to one term.
func ParseTerms(s string) ([]Term, error) {
	var terms []Term
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseTerm(part)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}
