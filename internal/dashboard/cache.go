package dashboard

import (
	"strings"
	"sync"

	"github.com/nexus-weaver/weaver-go/pkg/controlplane"
)

// FetchFunc produces a fresh payload for one cache key.
type FetchFunc func() (interface{}, error)

type snapshotEntry struct {
	payload interface{}
	// floor is the dispatch sequence number of the last applied response,
	// advanced to "now" on invalidation. Responses at or below the floor are
	// stale and never applied.
	floor uint64
	valid bool
}

// SnapshotCache holds the last-applied server view per entity or list key.
// Every read dispatched against the cache takes a sequence number from
// NextSeq at issue time; Apply refuses any response whose number is not
// beyond the key's floor, so a slow early request can never overwrite a
// faster later one.
type SnapshotCache struct {
	lock    sync.Mutex
	nextSeq uint64
	entries map[string]*snapshotEntry
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		entries: map[string]*snapshotEntry{},
	}
}

// NextSeq tags a dispatch. Strictly increasing across the whole cache.
func (c *SnapshotCache) NextSeq() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.nextSeq++

	return c.nextSeq
}

// Apply commits a resolved response. Returns false when the response lost
// the race and was discarded.
func (c *SnapshotCache) Apply(key string, seq uint64, payload interface{}) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		entry = &snapshotEntry{}
		c.entries[key] = entry
	}

	if seq <= entry.floor {
		return false
	}

	entry.payload = payload
	entry.floor = seq
	entry.valid = true

	return true
}

// Get returns the cached snapshot, missing when the key was never applied or
// has been invalidated.
func (c *SnapshotCache) Get(key string) (interface{}, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	entry, ok := c.entries[key]
	if !ok || !entry.valid {
		return nil, false
	}

	return entry.payload, true
}

// Invalidate marks the key stale and moves its floor to the current sequence
// counter, so any response dispatched before the invalidation is discarded
// even if it resolves afterwards.
func (c *SnapshotCache) Invalidate(key string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.invalidateLocked(key)
}

// InvalidatePrefix invalidates every key under prefix. Used to sweep all
// cached list views that may include a mutated entity.
func (c *SnapshotCache) InvalidatePrefix(prefix string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.invalidateLocked(key)
		}
	}
}

func (c *SnapshotCache) invalidateLocked(key string) {
	entry, ok := c.entries[key]
	if !ok {
		entry = &snapshotEntry{}
		c.entries[key] = entry
	}

	entry.payload = nil
	entry.valid = false
	entry.floor = c.nextSeq
}

// ReadThrough serves the cached snapshot when it is valid, otherwise
// dispatches fetch and applies its result under the ordering guard. After an
// invalidation the next ReadThrough is always a forced fetch.
func (c *SnapshotCache) ReadThrough(key string, fetch FetchFunc) (interface{}, error) {
	if payload, ok := c.Get(key); ok {
		return payload, nil
	}

	seq := c.NextSeq()

	payload, err := fetch()
	if err != nil {
		return nil, err
	}

	c.Apply(key, seq, payload)

	return payload, nil
}

// Cache keys. Entity keys nest under their list prefix so one prefix sweep
// hits the entity and every filtered list view.
const (
	deploymentsKeyPrefix  = "deployments"
	applicationsKeyPrefix = "applications"
)

func DeploymentKey(deploymentId string) string {
	return deploymentsKeyPrefix + "/" + deploymentId
}

func DeploymentListKey(filters *controlplane.DeploymentFilters) string {
	key := deploymentsKeyPrefix + "?"

	if filters != nil {
		if filters.ApplicationId != "" {
			key += "applicationId=" + filters.ApplicationId + "&"
		}

		if filters.Status != "" {
			key += "status=" + string(filters.Status)
		}
	}

	return key
}

func ApplicationKey(applicationId string) string {
	return applicationsKeyPrefix + "/" + applicationId
}

func ApplicationListKey() string {
	return applicationsKeyPrefix + "?"
}

// DeploymentKeysFor returns the keys a deployment mutation must sweep: the
// entity itself plus every deployment list view.
func DeploymentKeysFor(deploymentId string) (key, listPrefix string) {
	return DeploymentKey(deploymentId), deploymentsKeyPrefix
}
