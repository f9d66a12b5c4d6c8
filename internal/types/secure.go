package types

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// redactedPlaceholder replaces secret values in logs and serialization.
const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(strconv.Quote(redactedPlaceholder))

// SecretString holds a value that must never reach logs or JSON output. The
// Discord webhook URL embeds the webhook token, so it is held as a
// SecretString from config load until the outbound request is built.
//
// Every formatting path (fmt verbs including %#v, slog attributes and JSON)
// yields the placeholder. Unmask returns the raw value.
type SecretString string

func (s SecretString) String() string {
	return redactedPlaceholder
}

// GoString keeps %#v from printing the underlying string.
func (s SecretString) GoString() string {
	return strconv.Quote(redactedPlaceholder)
}

// LogValue implements slog.LogValuer.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redactedPlaceholder)
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value.
func (s SecretString) Unmask() string {
	return string(s)
}

// IsZero reports whether the secret is empty.
func (s SecretString) IsZero() bool {
	return s == ""
}

// Hint identifies a secret URL without exposing it: scheme, host and every
// path segment except the last, which is where Discord puts the webhook
// token. Query, fragment and userinfo are dropped. Values that do not parse
// as an absolute URL yield the bare placeholder.
func (s SecretString) Hint() string {
	u, err := url.Parse(string(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return redactedPlaceholder
	}

	prefix := "/"
	if i := strings.LastIndex(u.Path, "/"); i >= 0 {
		prefix = u.Path[:i+1]
	}
	return u.Scheme + "://" + u.Host + prefix + redactedPlaceholder
}
