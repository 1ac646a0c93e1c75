// Package timewindow derives the deterministic identifiers for the
// recurring scheduling periods: the hourly draw window and the daily
// competition season. All identifiers are computed on UTC boundaries so
// they are stable across process restarts and immune to DST shifts.
package timewindow

import (
	"fmt"
	"time"
)

const (
	hourlyLayout = "2006-01-02-15"
	dailyLayout  = "2006-01-02"
)

// HourlyID returns the draw window id (YYYY-MM-DD-HH) for the given
// instant. Any two instants within the same UTC hour map to the same id.
func HourlyID(t time.Time) string {
	return t.UTC().Format(hourlyLayout)
}

// DailyID returns the season id (YYYY-MM-DD) for the given instant. A
// season is the 24-hour period starting at 00:00 UTC.
func DailyID(t time.Time) string {
	return t.UTC().Format(dailyLayout)
}

// SeasonStart returns the 00:00 UTC start of the season identified by id.
func SeasonStart(id string) (time.Time, error) {
	t, err := time.ParseInLocation(dailyLayout, id, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid season id %q: %w", id, err)
	}
	return t, nil
}

// SeasonEnd returns the exclusive end of the season identified by id,
// i.e. 00:00 UTC of the following day.
func SeasonEnd(id string) (time.Time, error) {
	start, err := SeasonStart(id)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, 1), nil
}

// InSeason reports whether the instant falls within the season.
func InSeason(t time.Time, id string) bool {
	return DailyID(t) == id
}
