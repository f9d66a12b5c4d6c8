// Package format holds the pure, fail-soft helpers that turn raw slskd
// transfer fields into human-readable strings for notification bodies.
// Nothing in this package returns an error: malformed input degrades to a
// default or is passed through unchanged.
package format

import (
	"fmt"
	"strings"
)

const (
	kib = 1024
	mib = kib * 1024
	gib = mib * 1024
)

// Bytes renders a byte count using binary thresholds with one decimal place
// above the byte tier, e.g. 1023 -> "1023 B", 1536 -> "1.5 KB".
// Negative counts are outside the contract and render in the byte tier.
func Bytes(n int64) string {
	switch {
	case n < kib:
		return fmt.Sprintf("%d B", n)
	case n < mib:
		return fmt.Sprintf("%.1f KB", float64(n)/kib)
	case n < gib:
		return fmt.Sprintf("%.1f MB", float64(n)/mib)
	default:
		return fmt.Sprintf("%.1f GB", float64(n)/gib)
	}
}

// Speed renders a bytes-per-second rate. The byte tier has no decimals.
func Speed(bps float64) string {
	switch {
	case bps < kib:
		return fmt.Sprintf("%.0f B/s", bps)
	case bps < mib:
		return fmt.Sprintf("%.1f KB/s", bps/kib)
	case bps < gib:
		return fmt.Sprintf("%.1f MB/s", bps/mib)
	default:
		return fmt.Sprintf("%.1f GB/s", bps/gib)
	}
}

// BaseName returns the last segment of a local path. slskd reports paths in
// the host's native form, so both '/' and '\' separate segments.
func BaseName(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" {
		return path
	}
	if i := strings.LastIndexAny(trimmed, `/\`); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// DirName returns everything before the last segment of a local path, without
// the trailing separator. A bare filename has no directory and yields "".
func DirName(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	i := strings.LastIndexAny(trimmed, `/\`)
	switch {
	case i < 0:
		return ""
	case i == 0:
		return trimmed[:1] // root
	default:
		return trimmed[:i]
	}
}
