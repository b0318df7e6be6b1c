package dashboard

import (
	"sync/atomic"

	"github.com/nexus-weaver/weaver-go/pkg/pipeline"
)

// Mutation is one state-changing action plus the cache scope it dirties on
// success.
type Mutation struct {
	// Action performs the call and returns whatever the server responded
	// with; for create that carries the newly assigned id.
	Action func() (interface{}, error)

	// Keys and prefixes invalidated after a successful action.
	InvalidateKeys     []string
	InvalidatePrefixes []string

	SuccessMessage string
	FailureMessage string
}

// Coordinator drives one mutation end to end: pending flag up, action,
// invalidate-on-success, cache untouched on failure, one user-facing outcome
// either way. Pending is a convention for the view layer to disable duplicate
// submission, not a lock; independent coordinators never serialize against
// each other.
type Coordinator struct {
	cache    *SnapshotCache
	notifier pipeline.Notifier
	pending  int32
}

func NewCoordinator(cache *SnapshotCache, notifier pipeline.Notifier) *Coordinator {
	if notifier == nil {
		notifier = pipeline.NopNotifier{}
	}

	return &Coordinator{
		cache:    cache,
		notifier: notifier,
	}
}

func (c *Coordinator) Pending() bool {
	return atomic.LoadInt32(&c.pending) == 1
}

// Run executes the mutation. On failure the cache is byte-for-byte what it
// was before the call; on success the affected snapshots are invalidated so
// the next read is a forced fetch.
func (c *Coordinator) Run(mutation Mutation) (interface{}, error) {
	atomic.StoreInt32(&c.pending, 1)
	defer atomic.StoreInt32(&c.pending, 0)

	result, err := mutation.Action()
	if err != nil {
		if mutation.FailureMessage != "" {
			c.notifier.Error(mutation.FailureMessage)
		}

		return nil, err
	}

	for _, key := range mutation.InvalidateKeys {
		c.cache.Invalidate(key)
	}

	for _, prefix := range mutation.InvalidatePrefixes {
		c.cache.InvalidatePrefix(prefix)
	}

	if mutation.SuccessMessage != "" {
		c.notifier.Success(mutation.SuccessMessage)
	}

	return result, nil
}
