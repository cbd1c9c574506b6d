package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the accepted input format, AAAA-MM-DD to the operator
const Layout = "2006-01-02"

var (
	// ErrInvalidFormat is returned when a date string does not match Layout
	ErrInvalidFormat = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrInvalidOrder is returned when the start date is not before the end date
	ErrInvalidOrder = errors.New("start date must be before end date")
)

// DateRange is a validated pair of calendar dates at midnight UTC.
// Start is always strictly before End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// New validates start and end and returns them as a range.
// Both instants are truncated to their UTC calendar date.
func New(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: midnightUTC(start), End: midnightUTC(end)}
	if !r.Start.Before(r.End) {
		return DateRange{}, fmt.Errorf("%w: %s >= %s", ErrInvalidOrder, r.Start.Format(Layout), r.End.Format(Layout))
	}
	return r, nil
}

// Parse parses two YYYY-MM-DD strings into a range
func Parse(start, end string) (DateRange, error) {
	s, err := parseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := parseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return New(s, e)
}

// Relative builds a range of daysToQuery days ending endDateOffset days
// before the UTC calendar date of now.
func Relative(now time.Time, daysToQuery, endDateOffset int) (DateRange, error) {
	if daysToQuery < 1 {
		return DateRange{}, fmt.Errorf("days to query must be at least 1, got %d", daysToQuery)
	}
	if endDateOffset < 0 {
		return DateRange{}, fmt.Errorf("end date offset cannot be negative, got %d", endDateOffset)
	}

	end := midnightUTC(now).AddDate(0, 0, -endDateOffset)
	start := end.AddDate(0, 0, -daysToQuery)
	return New(start, end)
}

// Days returns the number of calendar days covered by the range
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// String renders the range as "YYYY-MM-DD..YYYY-MM-DD"
func (r DateRange) String() string {
	return r.Start.Format(Layout) + ".." + r.End.Format(Layout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return t, nil
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
