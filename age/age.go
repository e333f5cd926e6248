// Package age resolves max-age / grace-time settings into milliseconds and
// classifies records as fresh or stale.
//
// A Value is either absent (the zero Value), a millisecond count, or a human
// duration string such as "1d", "2m" or "1h30m". Never (-1) disables expiry.
package age

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// NeverMs is the sentinel max-age meaning "never expires".
const NeverMs int64 = -1

// ErrInvalid is returned when a Value cannot be turned into milliseconds.
var ErrInvalid = errors.New("age: invalid duration")

type kind uint8

const (
	kindUnset kind = iota
	kindMillis
	kindString
)

// Value is a not-yet-resolved duration setting. The zero Value is absent.
type Value struct {
	kind kind
	ms   int64
	raw  string
}

// Never disables expiry when used as a max-age.
var Never = Millis(NeverMs)

// Millis returns a Value holding ms milliseconds.
func Millis(ms int64) Value { return Value{kind: kindMillis, ms: ms} }

// Duration returns a Value holding d truncated to whole milliseconds.
func Duration(d time.Duration) Value { return Millis(d.Milliseconds()) }

// String returns a Value parsed lazily from a human duration string.
func String(s string) Value { return Value{kind: kindString, raw: s} }

// IsSet reports whether v carries any input.
func (v Value) IsSet() bool { return v.kind != kindUnset }

func (v Value) String() string {
	switch v.kind {
	case kindMillis:
		return strconv.FormatInt(v.ms, 10) + "ms"
	case kindString:
		return v.raw
	default:
		return "<unset>"
	}
}

// UnmarshalText lets a Value be read from text-based config formats.
// An empty text leaves the Value absent.
func (v *Value) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*v = Value{}
		return nil
	}
	*v = String(s)
	return nil
}

// Resolve turns v into milliseconds, falling back to def when v is absent.
//
// Integers must be >= 0 or exactly NeverMs. Strings that are plain integers
// follow the same rule; anything else must parse to a positive whole number
// of milliseconds.
func Resolve(def int64, v Value) (int64, error) {
	switch v.kind {
	case kindUnset:
		return def, nil
	case kindMillis:
		return checkMillis(v.ms)
	case kindString:
		return parse(v.raw)
	}
	return 0, fmt.Errorf("%w: unknown value kind %d", ErrInvalid, v.kind)
}

func checkMillis(ms int64) (int64, error) {
	if ms < 0 && ms != NeverMs {
		return 0, fmt.Errorf("%w: negative milliseconds %d", ErrInvalid, ms)
	}
	return ms, nil
}

func parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalid)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return checkMillis(n)
	}
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}
	if d <= 0 || d%time.Millisecond != 0 {
		return 0, fmt.Errorf("%w: %q is not a positive whole number of milliseconds", ErrInvalid, s)
	}
	return d.Milliseconds(), nil
}

// IsStale reports whether a record written at updatedAtMs is older than
// maxAgeMs at now. A record exactly maxAgeMs old is still fresh.
func IsStale(updatedAtMs, maxAgeMs int64, now time.Time) bool {
	if maxAgeMs == NeverMs {
		return false
	}
	return now.UnixMilli()-updatedAtMs > maxAgeMs
}
