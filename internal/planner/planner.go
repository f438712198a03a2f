package planner

import (
	"fmt"
	"strconv"
	"time"

	"github.com/catalogscan/catalogscan/internal/model"
)

// CurrentSeason maps a calendar month to the season in progress.
// January is winter, February through May spring, June through August
// summer, and September through December fall.
func CurrentSeason(month time.Month) model.Season {
	switch {
	case month == time.January:
		return model.Winter
	case month <= time.May:
		return model.Spring
	case month <= time.August:
		return model.Summer
	default:
		return model.Fall
	}
}

// Current returns the term in progress at now. The year is the calendar
// year of now for every season.
func Current(now time.Time) model.Term {
	return model.NewTerm(now.Year(), CurrentSeason(now.Month()))
}

// Plan returns the terms to process, most recent first.
//
// A non-nil explicit list is returned as is. Otherwise Plan starts at the
// term in progress at now and walks backwards through the season cycle
// count times.
func Plan(explicit []model.Term, count int, now time.Time) []model.Term {
	if explicit != nil {
		return explicit
	}
	if count <= 0 {
		return []model.Term{}
	}

	year := now.Year()
	idx := seasonIndex(CurrentSeason(now.Month()))

	terms := make([]model.Term, 0, count)
	for range count {
		terms = append(terms, model.NewTerm(year, model.Seasons[idx]))
		year, idx = stepBack(year, idx)
	}
	return terms
}

// Previous returns the term one step before t in the cycle.
func Previous(t model.Term) (model.Term, error) {
	if !t.Season.Valid() {
		return model.Term{}, fmt.Errorf("%w: %q", model.ErrInvalidTerm, t.Season)
	}
	year, err := strconv.Atoi(t.Year)
	if err != nil {
		return model.Term{}, fmt.Errorf("%w: year %q is not numeric", model.ErrInvalidTerm, t.Year)
	}
	year, idx := stepBack(year, seasonIndex(t.Season))
	return model.NewTerm(year, model.Seasons[idx]), nil
}

// stepBack moves one position back in the cycle. Stepping back from spring
// wraps to the end of the list and lands on the previous year's winter,
// which is the only point where the year changes.
func stepBack(year, idx int) (int, int) {
	idx--
	if idx < 0 {
		return year - 1, len(model.Seasons) - 1
	}
	return year, idx
}

func seasonIndex(s model.Season) int {
	for i, season := range model.Seasons {
		if season == s {
			return i
		}
	}
	return 0
}
