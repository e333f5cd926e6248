package dscache

// Exhausted outcomes.
const (
	OutcomeDefault = "default"
	OutcomeAbsent  = "absent"
	OutcomeTimeout = "timeout"
)

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
//
// PopulateError, RevalidateError and ClearError are also the error sink for
// work whose caller has already returned.
type Hooks interface {
	// Fresh record served.
	Hit(storageKey string)
	// Stale record served; background revalidation started.
	StaleHit(storageKey string)
	// No record found. attempt counts prior population rounds for this read.
	Miss(storageKey string, attempt int)
	// Population gave up. outcome ∈ {"default", "absent", "timeout"}
	Exhausted(storageKey string, outcome string)

	// A stored value had no readable timestamp and was read as absent.
	CorruptRecord(storageKey string, err error)

	// A populator run launched by a miss failed or panicked.
	PopulateError(storageKey string, err error)
	// A stale-hit revalidation (delete + populate) failed or panicked.
	RevalidateError(storageKey string, err error)
	// Clear could not delete one key.
	ClearError(storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                    {}
func (NopHooks) StaleHit(string)               {}
func (NopHooks) Miss(string, int)              {}
func (NopHooks) Exhausted(string, string)      {}
func (NopHooks) CorruptRecord(string, error)   {}
func (NopHooks) PopulateError(string, error)   {}
func (NopHooks) RevalidateError(string, error) {}
func (NopHooks) ClearError(string, error)      {}
