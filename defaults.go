package dscache

import (
	"time"

	"github.com/unkn0wn-root/dscache/age"
)

const (
	defaultMaxAgeMs    int64 = 24 * 60 * 60 * 1000
	defaultGraceTimeMs int64 = 150
	defaultMaxTries          = 3
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func ms(n int64) time.Duration { return time.Duration(n) * time.Millisecond }

// resolveAges turns the configured MaxAge and GraceTime into milliseconds.
func resolveAges(maxAge, grace age.Value) (maxAgeMs, graceMs int64, err error) {
	maxAgeMs, err = age.Resolve(defaultMaxAgeMs, maxAge)
	if err != nil {
		return 0, 0, &ConfigError{Field: "MaxAge", Err: err}
	}
	graceMs, err = age.Resolve(defaultGraceTimeMs, grace)
	if err != nil {
		return 0, 0, &ConfigError{Field: "GraceTime", Err: err}
	}
	if graceMs == age.NeverMs {
		return 0, 0, &ConfigError{Field: "GraceTime", Err: age.ErrInvalid}
	}
	return maxAgeMs, graceMs, nil
}
