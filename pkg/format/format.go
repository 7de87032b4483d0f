// Package format renders amounts and dates the way the ftracker backend and
// its users expect them.
package format

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// ServerTimeLayout is the timestamp format of createdAt/updatedAt.
	ServerTimeLayout = "2006-01-02T15:04:05.000Z"
	// ServerDateLayout is the date format sent when creating transactions.
	ServerDateLayout = "2006-01-02"
	// InputDateLayout is the dd/mm/yyyy form typed by users.
	InputDateLayout = "02/01/2006"

	dayLayout = "Monday, 02 January 2006"
)

// Currency formats an amount in rupiah without decimals, e.g. Rp1.500.000.
func Currency(amount int64) string {
	p := message.NewPrinter(language.Indonesian)
	if amount < 0 {
		return "-Rp" + p.Sprintf("%d", -amount)
	}
	return "Rp" + p.Sprintf("%d", amount)
}

// ParseServerTime parses a backend timestamp such as 2025-11-21T08:30:00.000Z.
func ParseServerTime(s string) (time.Time, error) {
	t, err := time.Parse(ServerTimeLayout, s)
	if err != nil {
		// Some records carry RFC 3339 timestamps without milliseconds.
		if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, fmt.Errorf("invalid server time %q: %w", s, err)
	}
	return t, nil
}

// Day renders a date as "Friday, 21 November 2025".
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

// ServerDay renders a backend timestamp with Day in loc. It returns an empty
// string when s cannot be parsed.
func ServerDay(s string, loc *time.Location) string {
	t, err := ParseServerTime(s)
	if err != nil {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return Day(t)
}

// ServerDate converts a dd/mm/yyyy date into the yyyy-mm-dd form the backend
// accepts.
func ServerDate(input string) (string, error) {
	t, err := ParseInputDate(input)
	if err != nil {
		return "", err
	}
	return t.Format(ServerDateLayout), nil
}

// ParseInputDate parses a dd/mm/yyyy date in the local time zone.
func ParseInputDate(input string) (time.Time, error) {
	t, err := time.ParseInLocation(InputDateLayout, input, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected dd/mm/yyyy", input)
	}
	return t, nil
}
