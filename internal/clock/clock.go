// Package clock centralizes timestamp handling for the notice domain. The
// source site states dates in its own local time with no offset, and the
// process may run under any host timezone, so both zones are constructed
// explicitly here and passed through every operation; nothing in this package
// consults the ambient OS locale.
package clock

import (
	"fmt"
	"time"
)

// Layout is the fixed textual format understood by Parse and Format.
const Layout = "2006-01-02 15:04:05"

// boardDateLayout matches the two-digit-year dates printed on detail pages.
const boardDateLayout = "06.01.02"

const regionalOffsetSeconds = 9 * 60 * 60

// Regional is the fixed zone for all notice-domain timestamps, UTC+09:00.
var Regional = time.FixedZone("KST", regionalOffsetSeconds)

// FormatError reports a date string that does not match the expected pattern.
type FormatError struct {
	Text   string
	Layout string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("time %q does not match %q: %v", e.Text, e.Layout, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Now returns the current instant anchored to UTC or the regional zone.
func Now(utc bool) time.Time {
	if utc {
		return time.Now().UTC()
	}
	return time.Now().In(Regional)
}

// Parse reads Layout-formatted text and attaches the requested zone.
func Parse(text string, utc bool) (time.Time, error) {
	loc := Regional
	if utc {
		loc = time.UTC
	}
	ts, err := time.ParseInLocation(Layout, text, loc)
	if err != nil {
		return time.Time{}, &FormatError{Text: text, Layout: Layout, Err: err}
	}
	return ts, nil
}

// Format is the inverse of Parse: converts to the requested zone and renders
// the fixed layout.
func Format(ts time.Time, utc bool) string {
	if utc {
		return ts.UTC().Format(Layout)
	}
	return ts.In(Regional).Format(Layout)
}

// ParseBoardDate reads a detail-page date (YY.MM.DD) as midnight regional.
func ParseBoardDate(text string) (time.Time, error) {
	ts, err := time.ParseInLocation(boardDateLayout, text, Regional)
	if err != nil {
		return time.Time{}, &FormatError{Text: text, Layout: boardDateLayout, Err: err}
	}
	return ts, nil
}

// ToRegional re-anchors an already-zone-aware instant to the regional zone.
func ToRegional(ts time.Time) time.Time {
	return ts.In(Regional)
}

// ToUTC re-anchors an already-zone-aware instant to UTC.
func ToUTC(ts time.Time) time.Time {
	return ts.UTC()
}
