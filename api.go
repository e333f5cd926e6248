package dscache

import (
	"context"
	"regexp"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/unkn0wn-root/dscache/age"
	c "github.com/unkn0wn-root/dscache/codec"
	pr "github.com/unkn0wn-root/dscache/provider"
)

// Populator (re)builds the record for a logical key, usually by calling
// Cache.Set. It runs detached from the reader: Get only waits GraceTime and
// looks again, it never waits for the populator to return.
type Populator func(ctx context.Context, key string) error

// Record is a cached value plus the time it was written.
// UpdatedAt is zero for a configured default value.
type Record[V any] struct {
	Value     V
	UpdatedAt time.Time
}

// Framing selects how records are laid out in the store.
type Framing uint8

const (
	// FramingJSON stores the codec output, which must be a JSON object, with
	// an "updatedAt" member merged in.
	FramingJSON Framing = iota
	// FramingBinary prefixes the codec output with a small binary header.
	FramingBinary
)

// Cache is a cache-aside namespace over a Provider.
type Cache[V any] interface {
	// Get serves the record for key, populating it on a miss and revalidating
	// it in the background when stale. ok=false only when DeleteOnExpire is
	// set and population is exhausted without a default.
	Get(ctx context.Context, key string) (rec Record[V], ok bool, err error)
	// Peek reads the stored record without population or staleness checks.
	Peek(ctx context.Context, key string) (rec Record[V], ok bool, err error)
	// Set writes value through the filter, stamped with the current time.
	Set(ctx context.Context, key string, value V) error
	// Delete removes one record and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Keys lists every storage key under the namespace prefix.
	Keys(ctx context.Context) ([]string, error)
	// Clear deletes every key returned by Keys, continuing past failures.
	Clear(ctx context.Context) error

	// StorageKey maps a logical key to its storage key.
	StorageKey(key string) string
	Prefix() string

	// Close waits for background work (bounded by ctx) and closes the provider.
	Close(ctx context.Context) error
}

// Options configure one namespace. Only Prefix and Provider are required;
// everything else has a default.
type Options[V any] struct {
	// Required
	Prefix   string // namespace prefix for all storage keys, e.g. "RolesPermissionsCache:"
	Provider pr.Provider

	Codec   c.Codec[V] // nil => codec.JSON[V]
	Framing Framing    // default FramingJSON

	MaxAge    age.Value // zero => 1 day; age.Never disables expiry
	GraceTime age.Value // zero => 150ms; wait between population attempts
	MaxTries  int       // 0 => 3; negative is an error

	Populator      Populator // nil => no-op
	DeleteOnExpire bool      // expired/missing records are deleted, never repopulated
	Default        *V        // served when population is exhausted; each read gets its own copy
	Filter         func(V) V // applied to every value before it is written

	KeyPattern     *regexp.Regexp // nil => `[/@:]`
	KeyReplacement *string        // nil => "_"

	Verbose bool   // log every state transition at debug level
	Logger  Logger // nil => NopLogger
	Hooks   Hooks  // nil => NopHooks

	Clock           clock.Clock   // nil => wall clock
	RecordTTL       time.Duration // store-level expiry; 0 => records never expire in the store
	PopulateTimeout time.Duration // bound on each populator run; 0 => none
	Coalesce        bool          // dedupe concurrent in-process population per key
}

func New[V any](opts Options[V]) (Cache[V], error) {
	ch, err := newCache[V](opts)
	if err != nil {
		return nil, err
	}
	return ch, nil
}
