// Package offtime counts non-working days per calendar year.
package offtime

import (
	"time"

	"billing/pkg/models"
)

// planned classifies each offtime category. Vacation and public holidays are
// known in advance; sickness and incidents are not.
var planned = map[models.OfftimeCategory]bool{
	models.OfftimeVacation: true,
	models.OfftimeHoliday:  true,
	models.OfftimeSick:     false,
	models.OfftimeIncident: false,
}

// IsPlanned reports whether a category counts as planned offtime.
func IsPlanned(c models.OfftimeCategory) (bool, error) {
	p, ok := planned[c]
	if !ok {
		return false, models.NewValidationError("category", string(c), models.ErrUnknownCategory,
			"offtime category has no classification")
	}
	return p, nil
}

// Summary holds the day counts of one year.
//
// Planned and Unplanned are raw per-day tallies: a day covered by two records,
// or a record day on a weekend, is counted again. Total counts each distinct
// day covered by a weekend or any record once, so
// Total <= Weekends + Planned + Unplanned.
type Summary struct {
	Year      int `json:"year"`
	Weekends  int `json:"weekends"`
	Planned   int `json:"planned"`
	Unplanned int `json:"unplanned"`
	Total     int `json:"total"`
}

type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day{y, m, d}
}

// Count computes the day-off summary of year from the given records. Records
// outside the year are ignored, including their category.
func Count(year int, records []models.Offtime) (Summary, error) {
	sum := Summary{Year: year}
	covered := make(map[day]struct{})

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			sum.Weekends++
			covered[dayOf(d)] = struct{}{}
		}
	}

	for _, r := range records {
		days := Days(r, year)
		if len(days) == 0 {
			continue
		}
		isPlanned, err := IsPlanned(r.Category)
		if err != nil {
			return Summary{}, err
		}
		for _, d := range days {
			if isPlanned {
				sum.Planned++
			} else {
				sum.Unplanned++
			}
			covered[dayOf(d)] = struct{}{}
		}
	}

	sum.Total = len(covered)
	return sum, nil
}

// Days returns the calendar days of a record that fall into year. A record
// without an end covers its start day only; an end before the start covers
// nothing.
func Days(r models.Offtime, year int) []time.Time {
	start := midnight(r.Start)
	end := start
	if r.End != nil {
		end = midnight(*r.End)
	}

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if start.Before(yearStart) {
		start = yearStart
	}
	if end.After(yearEnd) {
		end = yearEnd
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// midnight drops the clock and location, keeping the wall-clock date.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
