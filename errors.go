package dscache

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrConfig            = errors.New("dscache: invalid configuration")
	ErrPopulationTimeout = errors.New("dscache: cache population timed out")
	ErrClosed            = errors.New("dscache: cache closed")
)

// ConfigError is returned by New. Nothing is created when it is returned.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dscache: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error        { return e.Err }
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// PopulationTimeoutError means no record appeared after every population
// attempt, and neither a default nor DeleteOnExpire applied.
type PopulationTimeoutError struct {
	Key       string
	GraceTime time.Duration
	Attempts  int
}

func (e *PopulationTimeoutError) Error() string {
	return fmt.Sprintf("dscache: no cache object found for %q, cache not generated within %d attempts of the %s grace time",
		e.Key, e.Attempts, e.GraceTime)
}

func (e *PopulationTimeoutError) Is(target error) bool { return target == ErrPopulationTimeout }

// ClearError lists the keys Clear failed to delete. Every other key was
// still attempted.
type ClearError struct {
	Failed []string
	Errs   []error
}

func (e *ClearError) Error() string {
	if len(e.Failed) == 1 {
		return fmt.Sprintf("dscache: clear: delete %q failed: %v", e.Failed[0], e.Errs[0])
	}
	return fmt.Sprintf("dscache: clear: %d deletes failed (%s ...): %v",
		len(e.Failed), strings.Join(e.Failed[:min(3, len(e.Failed))], ", "), e.Errs[0])
}

func (e *ClearError) Unwrap() []error { return e.Errs }
