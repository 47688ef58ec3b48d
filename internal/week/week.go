// Package week computes canonical ISO-8601 week labels (YYYY-Www) and their
// UTC boundaries. Week labels are the one bit-exact contract shared with the
// rest of the fleet platform, so formatting is centralized here.
package week

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var labelPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

type FormatError struct {
	Label string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed week label %q", e.Label)
}

// CurrentLabel returns the ISO week-numbering year and week for the given
// instant, e.g. "2025-W03". The ISO year can differ from the calendar year
// around January 1st.
func CurrentLabel(now time.Time) string {
	year, wk := now.UTC().ISOWeek()
	return Format(year, wk)
}

func Format(year, wk int) string {
	return fmt.Sprintf("%04d-W%02d", year, wk)
}

// Parse validates a label and returns its ISO year and week number.
func Parse(label string) (int, int, error) {
	m := labelPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, 0, &FormatError{Label: label}
	}
	year, _ := strconv.Atoi(m[1])
	wk, _ := strconv.Atoi(m[2])
	if wk < 1 || wk > weeksInYear(year) {
		return 0, 0, &FormatError{Label: label}
	}
	return year, wk, nil
}

// PreviousLabel returns the label of the ISO week immediately before the
// given one. Week 1 rolls back into the last week of the prior ISO year,
// which is 52 or 53 depending on the year.
func PreviousLabel(label string) (string, error) {
	year, wk, err := Parse(label)
	if err != nil {
		return "", err
	}
	prev := mondayOf(year, wk).AddDate(0, 0, -7)
	py, pw := prev.ISOWeek()
	return Format(py, pw), nil
}

// Bounds returns the UTC window of a week: Monday 00:00:00.000 through
// Sunday 23:59:59.999.
func Bounds(label string) (time.Time, time.Time, error) {
	year, wk, err := Parse(label)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := mondayOf(year, wk)
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end, nil
}

// mondayOf returns the Monday starting ISO week wk of the given ISO year.
// January 4th always falls in week 1.
func mondayOf(year, wk int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-wd)
	return week1Monday.AddDate(0, 0, (wk-1)*7)
}

// weeksInYear returns 52 or 53. December 28th is always in the last ISO week
// of its year.
func weeksInYear(year int) int {
	_, wk := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return wk
}
