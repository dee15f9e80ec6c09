// Package calendar converts calendar dates between the ISO wire form, the
// DD/MM/YYYY display form and in-memory values.
//
// Every conversion goes through explicit year/month/day components. Nothing here
// parses a bare date through time.Parse into a local zone, so a date can never
// drift by a day because of the runtime's time zone.
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day with no time-of-day and no zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

var (
	// ErrInvalid is returned when a string does not name a real calendar day.
	ErrInvalid = errors.New("invalid date")
)

// New builds a Date from components, rejecting days that do not exist.
func New(year int, month time.Month, day int) (Date, error) {
	if year < 1 || year > 9999 {
		return Date{}, ErrInvalid
	}
	if month < time.January || month > time.December {
		return Date{}, ErrInvalid
	}
	if day < 1 || day > DaysIn(year, month) {
		return Date{}, ErrInvalid
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// MustNew is New for literals in tests and defaults.
func MustNew(year int, month time.Month, day int) Date {
	d, err := New(year, month, day)
	if err != nil {
		panic(fmt.Sprintf("calendar: %04d-%02d-%02d: %v", year, int(month), day, err))
	}
	return d
}

// DaysIn reports the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one. UTC has no DST gaps.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FromTime takes the calendar fields of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today is the current local calendar day.
func Today() Date {
	return FromTime(time.Now())
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays moves d by n days.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time(time.UTC).AddDate(0, 0, n))
}

// ISO renders the wire form YYYY-MM-DD.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Display renders the locale form DD/MM/YYYY.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

func (d Date) String() string { return d.ISO() }

// ParseISO parses YYYY-MM-DD.
func ParseISO(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return Date{}, ErrInvalid
	}
	return fromParts(parts[0], parts[1], parts[2])
}

// ParseDisplay parses DD/MM/YYYY. Any missing or non-numeric component yields
// ErrInvalid; callers treat that as "field not ready" until a submit is attempted.
func ParseDisplay(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return Date{}, ErrInvalid
	}
	return fromParts(parts[2], parts[1], parts[0])
}

func fromParts(year, month, day string) (Date, error) {
	y, err := atoi(year)
	if err != nil {
		return Date{}, err
	}
	m, err := atoi(month)
	if err != nil {
		return Date{}, err
	}
	dd, err := atoi(day)
	if err != nil {
		return Date{}, err
	}
	return New(y, time.Month(m), dd)
}

func atoi(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalid
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalid
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalid
	}
	return n, nil
}

// ParseWire accepts the forms a server may send for a date column: YYYY-MM-DD,
// RFC 3339, and the HTTP date the reference backend emits for SQL DATE values
// ("Fri, 01 Mar 2024 00:00:00 GMT"). Components are read in the value's own zone.
func ParseWire(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if d, err := ParseISO(s); err == nil {
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(t), nil
	}
	if t, err := http.ParseTime(s); err == nil {
		return FromTime(t), nil
	}
	return Date{}, ErrInvalid
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.ISO())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseWire(s)
	if err != nil {
		return fmt.Errorf("calendar: %q: %w", s, err)
	}
	*d = parsed
	return nil
}
