package birthday

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned by Parse when the input has no usable content.
var ErrEmpty = errors.New("no birthday given")

// ParseError is returned by Parse when the input matched neither grammar.
// It keeps both underlying diagnostics for display.
type ParseError struct {
	Human   error
	RFC3339 error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"invalid birthday format (%v; %v). "+
			"Valid formats are day-month-year, such as `1 November 2007` or "+
			"`23 June 1996, 14:35, +09:00`, and RFC 3339, such as "+
			"`2007-11-01` or `1996-06-23T14:35+09:00`",
		e.Human,
		e.RFC3339,
	)
}

// InvalidDateError reports a component that does not form a valid calendar
// date, time of day, or fixed UTC offset.
type InvalidDateError struct {
	Field string
	Value int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid birthday: %v %v is out of range", e.Field, e.Value)
}
