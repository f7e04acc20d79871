package birthday

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Birthday {
	t.Helper()
	b, err := Parse(s)
	require.NoError(t, err)
	return b
}

func TestParseHumanDate(t *testing.T) {
	req := require.New(t)

	b := mustParse(t, "1 November 2007")
	req.Equal(time.Date(2007, time.November, 1, 0, 0, 0, 0, time.FixedZone("", 0)).Unix(), b.Time().Unix())
	req.Equal(0, b.OffsetMinutes())

	b = mustParse(t, "19 July 2002, 01:13")
	req.Equal(2002, b.Time().Year())
	req.Equal(1, b.Time().Hour())
	req.Equal(13, b.Time().Minute())
	req.Equal(0, b.Time().Second())

	b = mustParse(t, "23 June 1996, 14:35, +09:00")
	req.Equal(14, b.Time().Hour())
	req.Equal(35, b.Time().Minute())
	req.Equal(9*60, b.OffsetMinutes())

	b = mustParse(t, "23 June 1996, 14:35:59, -05:30")
	req.Equal(59, b.Time().Second())
	req.Equal(-5*60-30, b.OffsetMinutes())
}

func TestParseRFC3339Date(t *testing.T) {
	req := require.New(t)

	b := mustParse(t, "2007-11-01")
	req.Equal(time.November, b.Time().Month())
	req.Equal(0, b.Time().Hour())
	req.Equal(0, b.OffsetMinutes())

	b = mustParse(t, "2002-07-19T01:13")
	req.Equal(1, b.Time().Hour())
	req.Equal(13, b.Time().Minute())

	b = mustParse(t, "1996-06-23T14:35+09:00")
	req.Equal(9*60, b.OffsetMinutes())

	b = mustParse(t, "2017-10-27T00:56Z")
	req.Equal(56, b.Time().Minute())
	req.Equal(0, b.OffsetMinutes())

	b = mustParse(t, "1996-06-23T14:35:07+09:00")
	req.Equal(7, b.Time().Second())
}

func TestParseGrammarFallback(t *testing.T) {
	req := require.New(t)

	// Valid RFC 3339, invalid human.
	_, err := Parse("2007-11-01")
	req.NoError(err)

	// Valid human, invalid RFC 3339.
	_, err = Parse("1 November 2007")
	req.NoError(err)

	// Invalid under both: both diagnostics are kept.
	_, err = Parse("the third of never")
	var parseErr *ParseError
	req.ErrorAs(err, &parseErr)
	req.Error(parseErr.Human)
	req.Error(parseErr.RFC3339)

	// Legal-looking but impossible dates fail both grammars.
	_, err = Parse("2024-02-30")
	req.ErrorAs(err, &parseErr)
	_, err = Parse("30 February 2024")
	req.ErrorAs(err, &parseErr)
}

func TestParseEmpty(t *testing.T) {
	req := require.New(t)

	_, err := Parse("")
	req.ErrorIs(err, ErrEmpty)

	_, err = Parse("   \t ")
	req.ErrorIs(err, ErrEmpty)
}

func TestStringCanonicalForm(t *testing.T) {
	req := require.New(t)

	b, err := New(2007, time.November, 1, 0, 0, 0, 0)
	req.NoError(err)
	req.Equal("01 November 2007 +00:00", b.String())

	b, err = New(1996, time.June, 23, 14, 35, 0, 5*60+30)
	req.NoError(err)
	req.Equal("23 June 1996 +05:30", b.String())
}

func TestRoundTrip(t *testing.T) {
	req := require.New(t)

	canonical := []string{
		"01 November 2007 +00:00",
		"23 June 1996 +09:00",
		"29 February 2000 -05:00",
		"31 December 1999 +13:45",
	}

	for _, s := range canonical {
		b, err := Parse(s)
		req.NoError(err, s)
		req.Equal(s, b.String())
	}
}

func TestNewValidation(t *testing.T) {
	req := require.New(t)

	var invalid *InvalidDateError

	_, err := New(2023, time.February, 29, 0, 0, 0, 0)
	req.ErrorAs(err, &invalid)
	req.Equal("day", invalid.Field)

	_, err = New(2000, time.February, 29, 0, 0, 0, 0)
	req.NoError(err)

	_, err = New(1900, time.February, 29, 0, 0, 0, 0)
	req.ErrorAs(err, &invalid)

	_, err = New(2023, time.Month(13), 1, 0, 0, 0, 0)
	req.ErrorAs(err, &invalid)
	req.Equal("month", invalid.Field)

	_, err = New(2023, time.April, 31, 0, 0, 0, 0)
	req.ErrorAs(err, &invalid)

	_, err = New(2023, time.April, 1, 24, 0, 0, 0)
	req.ErrorAs(err, &invalid)
	req.Equal("hour", invalid.Field)

	_, err = New(2023, time.April, 1, 0, 60, 0, 0)
	req.ErrorAs(err, &invalid)

	_, err = New(2023, time.April, 1, 0, 0, 60, 0)
	req.ErrorAs(err, &invalid)

	_, err = New(2023, time.April, 1, 0, 0, 0, 25*60)
	req.ErrorAs(err, &invalid)
	req.Equal("offset", invalid.Field)

	_, err = New(2023, time.April, 1, 0, 0, 0, -25*60)
	req.ErrorAs(err, &invalid)

	// Plain errors.As sanity check on the error chain.
	_, err = New(2023, time.February, 30, 0, 0, 0, 0)
	req.True(errors.As(err, &invalid))
}

func TestOccurrenceLeapDayFallback(t *testing.T) {
	req := require.New(t)

	b, err := New(2000, time.February, 29, 6, 30, 0, 0)
	req.NoError(err)

	// Non-leap years fall back to 28 February, every call.
	for i := 0; i < 3; i++ {
		occ := b.Occurrence(2023)
		req.Equal(time.February, occ.Month())
		req.Equal(28, occ.Day())
		req.Equal(6, occ.Hour())
		req.Equal(30, occ.Minute())
	}

	// Leap years keep the real day.
	occ := b.Occurrence(2024)
	req.Equal(29, occ.Day())
}

func TestOccurrenceKeepsOffset(t *testing.T) {
	req := require.New(t)

	b, err := New(1990, time.June, 15, 6, 0, 0, 9*60)
	req.NoError(err)

	occ := b.Occurrence(2024)
	_, offsetSeconds := occ.Zone()
	req.Equal(9*60*60, offsetSeconds)
	req.Equal(6, occ.Hour())
}

func TestAge(t *testing.T) {
	req := require.New(t)

	b, err := New(1990, time.June, 15, 0, 0, 0, 0)
	req.NoError(err)

	// Day before the birthday vs the birthday itself.
	req.Equal(33, b.Age(time.Date(2024, time.June, 14, 23, 0, 0, 0, time.UTC)))
	req.Equal(34, b.Age(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)))
	req.Equal(34, b.Age(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestAgeLeapDay(t *testing.T) {
	req := require.New(t)

	b, err := New(2000, time.February, 29, 0, 0, 0, 0)
	req.NoError(err)

	// In non-leap years the birthday is counted from 28 February.
	req.Equal(22, b.Age(time.Date(2023, time.February, 27, 0, 0, 0, 0, time.UTC)))
	req.Equal(23, b.Age(time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC)))
	req.Equal(23, b.Age(time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)))

	// Crossing an actual leap day never double counts.
	req.Equal(23, b.Age(time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)))
	req.Equal(24, b.Age(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)))
}

func TestAgeMonotonic(t *testing.T) {
	req := require.New(t)

	b, err := New(1996, time.June, 23, 14, 35, 0, 9*60)
	req.NoError(err)

	previous := b.Age(b.Time())
	at := b.Time()
	for i := 0; i < 400; i++ {
		at = at.Add(37 * 24 * time.Hour)
		age := b.Age(at)
		req.GreaterOrEqual(age, previous)
		previous = age
	}
}

func TestOccursOn(t *testing.T) {
	req := require.New(t)

	// Born at +09:00; their day starts while it is still the previous
	// day in UTC.
	b, err := New(1990, time.June, 15, 0, 0, 0, 9*60)
	req.NoError(err)

	req.True(b.OccursOn(time.Date(2024, time.June, 14, 16, 0, 0, 0, time.UTC)))
	req.False(b.OccursOn(time.Date(2024, time.June, 14, 14, 0, 0, 0, time.UTC)))
	req.False(b.OccursOn(time.Date(2024, time.June, 15, 16, 0, 0, 0, time.UTC)))
}
