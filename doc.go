// Package dscache is a cache-aside layer in front of a shared key-value store.
//
// Readers ask for a logical key. On a miss the cache triggers a caller-supplied
// Populator, waits a fixed grace time and looks again, up to MaxTries rounds.
// On a hit the record is served even when stale; a stale hit starts a background
// revalidation (delete, then populate) whose errors only reach Hooks and the
// Logger.
//
// Components:
//   - Provider: byte store with key enumeration (Redis, bigcache, ristretto, memory).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - age: resolves max-age / grace-time settings and classifies staleness.
//
// Keys:
//
//	<prefix><sanitized key>   - sanitizing replaces `[/@:]` with "_" by default
//
// Records carry an updatedAt timestamp (ms since epoch). With the default JSON
// framing a stored record is the value's JSON object plus that member, so
// records written by other JSON producers are readable as long as they carry it.
//
// Usage:
//
//	roles, _ := dscache.New[Role](dscache.Options[Role]{
//	    Prefix:   "RolesPermissionsCache:",
//	    Provider: redisProvider,
//	    MaxAge:   age.String("1d"),
//	    Populator: func(ctx context.Context, id string) error {
//	        r, err := loadRole(ctx, id)
//	        if err != nil {
//	            return err
//	        }
//	        return roles.Set(ctx, id, r)
//	    },
//	})
//	rec, _, err := roles.Get(ctx, "admin")
//
// No cross-process coordination is attempted: two processes (or two readers,
// unless Coalesce is set) may populate the same key at once. Populators should
// be idempotent.
package dscache
