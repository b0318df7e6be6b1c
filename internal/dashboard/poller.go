package dashboard

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval = 5 * time.Second
)

// Poller attaches a fixed-interval refresh loop to one live cache key. It
// issues an immediate read and then one per interval until detached. In
// flight reads are never aborted; their results are simply discarded once a
// later response has been applied or the poller is detached.
type Poller struct {
	cache    *SnapshotCache
	key      string
	fetch    FetchFunc
	interval time.Duration

	// onUpdate fires after a response is applied to the cache, never for a
	// discarded one.
	onUpdate func(payload interface{})

	lock     sync.Mutex
	detached bool
	stop     chan struct{}
}

func NewPoller(cache *SnapshotCache, key string, fetch FetchFunc, onUpdate func(payload interface{})) *Poller {
	return &Poller{
		cache:    cache,
		key:      key,
		fetch:    fetch,
		interval: DefaultPollInterval,
		onUpdate: onUpdate,
		stop:     make(chan struct{}),
	}
}

func (p *Poller) SetInterval(interval time.Duration) {
	p.interval = interval
}

// Attach starts the refresh loop. Call Detach exactly once when the view
// goes away.
func (p *Poller) Attach() {
	go p.loop()
}

// Detach stops future interval firings immediately. Requests already in
// flight resolve but are never applied; detachment acts as an infinite
// future sequence boundary for this subscription.
func (p *Poller) Detach() {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.detached {
		return
	}

	p.detached = true
	close(p.stop)
}

func (p *Poller) loop() {
	p.dispatch()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.dispatch()
		}
	}
}

// dispatch tags the read at issue time and resolves it on its own goroutine.
// Overlapping reads are tolerated; the cache's ordering guard picks the
// winner.
func (p *Poller) dispatch() {
	seq := p.cache.NextSeq()

	go func() {
		payload, err := p.fetch()
		if err != nil {
			// The pipeline already surfaced the failure once.
			log.Debugf("poll of %s failed: %s", p.key, err)

			return
		}

		// The detach check and the apply share one critical section: once
		// Detach has returned, no result can reach the cache.
		p.lock.Lock()
		applied := !p.detached && p.cache.Apply(p.key, seq, payload)
		p.lock.Unlock()

		if applied && p.onUpdate != nil {
			p.onUpdate(payload)
		}
	}()
}
