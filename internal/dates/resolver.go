// Package dates normalizes and validates the export date range and derives
// the per-day sequence and range bounds the Basis API endpoints need.
package dates

import (
	"fmt"
	"regexp"
	"time"

	"github.com/DukeMobileTech/basis-data-export/internal/common"
)

// DateFormat is the wire format for calendar dates (YYYY-MM-DD).
const DateFormat = "2006-01-02"

var (
	dateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	unsafe    = regexp.MustCompile(`[^-a-zA-Z0-9_]`)
)

// Resolver resolves user-supplied date strings against a clock and a fixed
// time zone. All calendar math happens in that zone.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver returns a Resolver pinned to loc, using the system clock.
func NewResolver(loc *time.Location) *Resolver {
	return &Resolver{loc: loc, now: time.Now}
}

// NewResolverWithClock is NewResolver with an injectable clock for tests.
func NewResolverWithClock(loc *time.Location, now func() time.Time) *Resolver {
	return &Resolver{loc: loc, now: now}
}

// ResolveStart returns the export start date: yesterday when input is empty,
// otherwise the input with every character outside [-A-Za-z0-9_] stripped.
// Sanitization is defensive, not parsing; IsValid does the real check.
func (r *Resolver) ResolveStart(input string) string {
	if input == "" {
		return r.now().In(r.loc).AddDate(0, 0, -1).Format(DateFormat)
	}
	return unsafe.ReplaceAllString(input, "")
}

// ResolveEnd returns the export end date: today when input is empty,
// otherwise the sanitized input.
func (r *Resolver) ResolveEnd(input string) string {
	if input == "" {
		return r.now().In(r.loc).Format(DateFormat)
	}
	return unsafe.ReplaceAllString(input, "")
}

// IsValid reports whether date is a YYYY-MM-DD string naming a real
// calendar date.
func (r *Resolver) IsValid(date string) bool {
	if !dateShape.MatchString(date) {
		return false
	}
	_, err := time.ParseInLocation(DateFormat, date, r.loc)
	return err == nil
}

// StartOfDay returns midnight of date in the resolver's zone.
func (r *Resolver) StartOfDay(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, date, r.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", common.ErrorInvalidDate, date)
	}
	return t, nil
}

// EndOfDayBound returns the day-granular upper bound for range queries:
// "now" when end is today, otherwise one second before the start of the
// following day, i.e. 23:59:59 of end.
func (r *Resolver) EndOfDayBound(end string) (time.Time, error) {
	now := r.now().In(r.loc)
	if end == now.Format(DateFormat) {
		return now, nil
	}
	t, err := time.ParseInLocation(DateFormat, end, r.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", common.ErrorInvalidDate, end)
	}
	return t.AddDate(0, 0, 1).Add(-time.Second), nil
}

// DaysInRange returns every calendar day from start up to but not including
// end, with end appended once more, so both endpoints are always present and
// DaysInRange(d, d) == [d].
func (r *Resolver) DaysInRange(start, end string) ([]string, error) {
	startT, err := time.ParseInLocation(DateFormat, start, r.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorInvalidDate, start)
	}
	endT, err := time.ParseInLocation(DateFormat, end, r.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorInvalidDate, end)
	}

	days := []string{}
	for d := startT; d.Before(endT); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateFormat))
	}
	days = append(days, endT.Format(DateFormat))
	return days, nil
}
