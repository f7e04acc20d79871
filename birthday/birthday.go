// Package birthday implements the birthday value type and the occurrence
// scheduling queries built on top of it.
package birthday

import (
	"strings"
	"time"
)

// Layouts understood by the parser and used for display.
const (
	displayLayout       = "02 January 2006 -07:00"
	humanDateLayout     = "2 January 2006"
	humanFullLayout     = "2 January 2006 -07:00"
	clockLayout         = "15:04:05"
	shortClockLayout    = "15:04"
	offsetLayout        = "-07:00"
	rfc3339ShortLayout  = "2006-01-02T15:04Z07:00"
	rfc3339NoZoneLayout = "2006-01-02T15:04:05"
	rfc3339MinuteLayout = "2006-01-02T15:04"
	rfc3339DateLayout   = "2006-01-02"
)

// maxOffsetMinutes is the widest fixed UTC offset accepted (±24:00).
const maxOffsetMinutes = 24 * 60

// Birthday is an immutable birth date and time in a fixed UTC offset.
type Birthday struct {
	t time.Time
}

// New builds a Birthday from its parts, validating that they form a real
// Gregorian date and time and a sane fixed offset.
func New(
	year int,
	month time.Month,
	day int,
	hour int,
	min int,
	sec int,
	offsetMinutes int,
) (Birthday, error) {
	if month < time.January || month > time.December {
		return Birthday{}, &InvalidDateError{Field: "month", Value: int(month)}
	}
	if day < 1 || day > daysIn(year, month) {
		return Birthday{}, &InvalidDateError{Field: "day", Value: day}
	}
	if hour < 0 || hour > 23 {
		return Birthday{}, &InvalidDateError{Field: "hour", Value: hour}
	}
	if min < 0 || min > 59 {
		return Birthday{}, &InvalidDateError{Field: "minute", Value: min}
	}
	if sec < 0 || sec > 59 {
		return Birthday{}, &InvalidDateError{Field: "second", Value: sec}
	}
	if offsetMinutes < -maxOffsetMinutes || offsetMinutes > maxOffsetMinutes {
		return Birthday{}, &InvalidDateError{Field: "offset", Value: offsetMinutes}
	}

	loc := time.FixedZone("", offsetMinutes*60)
	return Birthday{
		t: time.Date(year, month, day, hour, min, sec, 0, loc),
	}, nil
}

// Parse reads a birthday from free-form text. The "human" day-month-year
// grammar is tried first, then the RFC 3339 style grammar:
//
//	1 November 2007
//	19 July 2002, 01:13
//	23 June 1996, 14:35, +09:00
//	2007-11-01
//	2002-07-19T01:13
//	1996-06-23T14:35+09:00
//
// Missing time defaults to midnight and a missing offset to UTC.
func Parse(s string) (Birthday, error) {
	if strings.TrimSpace(s) == "" {
		return Birthday{}, ErrEmpty
	}

	b, humanErr := parseHuman(s)
	if humanErr == nil {
		return b, nil
	}

	b, rfcErr := parseRFC3339(s)
	if rfcErr == nil {
		return b, nil
	}

	return Birthday{}, &ParseError{Human: humanErr, RFC3339: rfcErr}
}

func parseHuman(s string) (Birthday, error) {
	parts := strings.SplitN(s, ",", 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	// The canonical display form appends the offset to the date without
	// a comma; accept it so formatted birthdays parse back.
	if len(parts) == 1 {
		if t, err := time.Parse(humanFullLayout, parts[0]); err == nil {
			return fromTime(t)
		}
	}

	date, err := time.Parse(humanDateLayout, parts[0])
	if err != nil {
		return Birthday{}, err
	}

	var hour, min, sec int
	if len(parts) > 1 {
		clock, err := time.Parse(clockLayout, parts[1])
		if err != nil {
			clock, err = time.Parse(shortClockLayout, parts[1])
		}
		if err != nil {
			return Birthday{}, err
		}
		hour, min, sec = clock.Clock()
	}

	var offsetMinutes int
	if len(parts) > 2 {
		zone, err := time.Parse(offsetLayout, parts[2])
		if err != nil {
			return Birthday{}, err
		}
		_, offsetSeconds := zone.Zone()
		offsetMinutes = offsetSeconds / 60
	}

	return New(date.Year(), date.Month(), date.Day(), hour, min, sec, offsetMinutes)
}

func parseRFC3339(s string) (Birthday, error) {
	s = strings.TrimSpace(s)

	layouts := []string{
		time.RFC3339,
		rfc3339ShortLayout,
		rfc3339NoZoneLayout,
		rfc3339MinuteLayout,
		rfc3339DateLayout,
	}

	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return fromTime(t)
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return Birthday{}, firstErr
}

func fromTime(t time.Time) (Birthday, error) {
	_, offsetSeconds := t.Zone()
	return New(
		t.Year(),
		t.Month(),
		t.Day(),
		t.Hour(),
		t.Minute(),
		t.Second(),
		offsetSeconds/60,
	)
}

// String renders the canonical display form, e.g. "01 November 2007 +00:00".
func (b Birthday) String() string {
	return b.t.Format(displayLayout)
}

// Time returns the birth instant with its fixed offset attached.
func (b Birthday) Time() time.Time {
	return b.t
}

// OffsetMinutes returns the fixed UTC offset in minutes.
func (b Birthday) OffsetMinutes() int {
	_, offsetSeconds := b.t.Zone()
	return offsetSeconds / 60
}

// Occurrence projects the birthday onto the given year, keeping the time
// of day and offset. A 29 February birthday lands on 28 February in
// non-leap years.
func (b Birthday) Occurrence(year int) time.Time {
	day := b.t.Day()
	if last := daysIn(year, b.t.Month()); day > last {
		day = last
	}
	return time.Date(
		year,
		b.t.Month(),
		day,
		b.t.Hour(),
		b.t.Minute(),
		b.t.Second(),
		0,
		b.t.Location(),
	)
}

// Age returns the whole years elapsed between the birth instant and the
// given reference instant. Negative if the birth instant is in the future;
// callers reject future birthdays before storing them.
func (b Birthday) Age(at time.Time) int {
	local := at.In(b.t.Location())
	years := local.Year() - b.t.Year()
	if b.Occurrence(local.Year()).After(at) {
		years--
	}
	return years
}

// OccursOn reports whether the birthday's calendar day is under way at the
// given instant, judged in the birthday's own offset.
func (b Birthday) OccursOn(now time.Time) bool {
	local := now.In(b.t.Location())
	occ := b.Occurrence(local.Year())
	return occ.Month() == local.Month() && occ.Day() == local.Day()
}

func daysIn(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
