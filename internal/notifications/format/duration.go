package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// unknownDuration is both the sentinel slskd-side defaulting produces and
// the rendering for an empty elapsed time.
const unknownDuration = "Unknown"

// Duration renders an "HOURS:MINUTES:SECONDS[.fraction]" elapsed time as a
// compact token list such as "1h 2m 3s". Zero hours and minutes are omitted,
// as are seconds of one or less; when nothing remains the result is "< 1s".
//
// "" and "Unknown" render as "Unknown". Anything that does not parse as three
// numeric segments is returned unchanged.
func Duration(s string) string {
	if s == "" || s == unknownDuration {
		return unknownDuration
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return s
	}

	hours, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return s
	}
	minutes, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return s
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return s
	}

	var tokens []string
	if hours != 0 {
		tokens = append(tokens, fmt.Sprintf("%dh", hours))
	}
	if minutes != 0 {
		tokens = append(tokens, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 1 {
		tokens = append(tokens, fmt.Sprintf("%ds", int64(seconds)))
	}

	if len(tokens) == 0 {
		return "< 1s"
	}
	return strings.Join(tokens, " ")
}
