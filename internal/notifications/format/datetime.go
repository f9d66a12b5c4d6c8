package format

import "time"

// DefaultDatetimeLayout renders day/month/year hour:minute.
const DefaultDatetimeLayout = "02/01/2006 15:04"

// unknownDate is returned for an empty timestamp.
const unknownDate = "Unknown date"

// isoLayouts are the ISO-8601 shapes accepted by Datetime, tried in order.
// Fractional seconds of any precision are accepted after the seconds field
// (slskd emits .NET's seven-digit ticks).
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	time.DateOnly,
}

// Datetime parses an ISO-8601 timestamp and renders it with layout (a Go
// reference layout; DefaultDatetimeLayout when empty). The time is rendered
// in the offset it was written with, not converted.
//
// An empty input renders "Unknown date"; an unparseable one is returned
// unchanged.
func Datetime(s, layout string) string {
	if s == "" {
		return unknownDate
	}
	if layout == "" {
		layout = DefaultDatetimeLayout
	}

	for _, l := range isoLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format(layout)
		}
	}
	return s
}
