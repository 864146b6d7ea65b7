// Package period buckets timestamped records into consecutive calendar
// windows and sums derived values per window.
//
// All arithmetic is wall-clock arithmetic: a timestamp is read as the date and
// clock it shows and reinterpreted in the aggregator's location, so records
// stored without zone information land in the same bucket on every machine.
package period

import (
	"fmt"
	"strings"
	"time"

	"billing/pkg/models"
)

// Granularity is the width of a reporting period.
type Granularity string

const (
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// Granularities lists the supported granularities from finest to coarsest.
var Granularities = []Granularity{Week, Month, Quarter, Year}

// ParseGranularity accepts a granularity name in any case.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case Week, Month, Quarter, Year:
		return g, nil
	}
	return "", models.NewValidationError("granularity", s, models.ErrUnknownCategory,
		"expected week, month, quarter or year")
}

// Start returns the start of the period containing t, in t's location.
// Weeks start on Monday.
func (g Granularity) Start(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case Week:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case Quarter:
		first := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, first, 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	}
}

// Next returns the start of the period following the one starting at start.
func (g Granularity) Next(start time.Time) time.Time {
	switch g {
	case Week:
		return start.AddDate(0, 0, 7)
	case Quarter:
		return start.AddDate(0, 3, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// Period is a half-open window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Label names the period for tables and exports.
func (p Period) Label(g Granularity) string {
	switch g {
	case Week:
		y, w := p.Start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case Quarter:
		return fmt.Sprintf("%d-Q%d", p.Start.Year(), (int(p.Start.Month())-1)/3+1)
	case Year:
		return fmt.Sprintf("%d", p.Start.Year())
	default:
		return p.Start.Format("2006-01")
	}
}

// Boundaries generates consecutive periods from the period containing from up
// to and including the period containing to.
func Boundaries(g Granularity, from, to time.Time) []Period {
	start := g.Start(from)
	end := g.Next(g.Start(to))
	var periods []Period
	for s := start; s.Before(end); {
		next := g.Next(s)
		periods = append(periods, Period{Start: s, End: next})
		s = next
	}
	return periods
}

// Wall reinterprets the wall clock of t in loc.
func Wall(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, m, d, h, mi, s, t.Nanosecond(), loc)
}
