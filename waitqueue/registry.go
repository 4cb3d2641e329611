// Package waitqueue implements the priority-ordered, per-domain waiter
// protocol with a single-small-waiter optimization: sessions block in
// Register until a target GTID's seq is reached in its domain, and the
// apply path (via OnApply) wakes exactly the waiters it satisfies without
// doing O(n) work per applied transaction.
package waitqueue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/repl"
	"github.com/gtidcore/gtidcore/telemetry"
	"github.com/rs/zerolog/log"
)

// recentCacheSize bounds the registry's memory for recently-resolved
// waiter generations; it exists only to answer a cancel that races a
// concurrent OnApply resolution without rescanning the (already emptied)
// queue slot.
const recentCacheSize = 4096

// Registry coordinates sessions blocked on "wait until GTID >= X in domain
// D".
type Registry struct {
	mu      sync.Mutex
	domains map[uint32]*domainState
	recent  *lru.Cache[uint64, Status]

	// pollInterval arms a coarse periodic wakeup of each blocked Register
	// call that checks its session's kill flag; it does not re-check the
	// waiter's target. Zero disables it, so the kill flag is then never
	// polled.
	pollInterval time.Duration
}

// NewRegistry creates an empty WaitRegistry. pollInterval of zero disables
// the safety-net poll.
func NewRegistry(pollInterval time.Duration) *Registry {
	cache, err := lru.New[uint64, Status](recentCacheSize)
	if err != nil {
		// Only fails for a non-positive size, which recentCacheSize never is.
		panic(err)
	}
	return &Registry{
		domains:      make(map[uint32]*domainState),
		recent:       cache,
		pollInterval: pollInterval,
	}
}

func recentKey(domain uint32, generation uint64) uint64 {
	return uint64(domain)<<32 | generation
}

func (r *Registry) domainLocked(domain uint32) *domainState {
	ds, ok := r.domains[domain]
	if !ok {
		ds = newDomainState()
		r.domains[domain] = ds
	}
	return ds
}

// Register blocks the caller until target's seq is reached in its domain,
// the context is cancelled, or session is killed. It never enqueues when
// the domain has already reached target.Seq.
func (r *Registry) Register(ctx context.Context, session repl.Session, target gtid.ID) (Status, error) {
	r.mu.Lock()
	ds := r.domainLocked(target.Domain)

	if ds.highestSeqNo >= target.Seq {
		r.mu.Unlock()
		return Reached, nil
	}

	entry := &waiterEntry{
		sessionID:  session.ID(),
		waitSeq:    target.Seq,
		generation: ds.generation(),
		resultCh:   make(chan Status, 1),
	}
	ds.insert(entry)
	telemetry.WaitQueueDepth.With(domainLabel(target.Domain)).Set(float64(len(ds.waiters)))
	r.mu.Unlock()

	return r.block(ctx, session, target.Domain, entry)
}

// block suspends the caller on entry's result channel, the context, and
// (if configured) a coarse safety-net poll of the session's kill flag.
func (r *Registry) block(ctx context.Context, session repl.Session, domain uint32, entry *waiterEntry) (Status, error) {
	var ticker *time.Ticker
	var tickCh <-chan time.Time
	if r.pollInterval > 0 {
		ticker = time.NewTicker(r.pollInterval)
		defer ticker.Stop()
		tickCh = ticker.C
	}

	for {
		select {
		case status := <-entry.resultCh:
			return status, nil
		case <-ctx.Done():
			return r.resolveCancelled(domain, entry, ctx.Err())
		case <-tickCh:
			if session.Killed() {
				return r.resolveCancelled(domain, entry, nil)
			}
		}
	}
}

// resolveCancelled removes entry from its queue unless a concurrent
// OnApply already resolved it, in which case the already-decided status
// (recorded in the recent cache) wins over Cancelled.
func (r *Registry) resolveCancelled(domain uint32, entry *waiterEntry, ctxErr error) (Status, error) {
	r.mu.Lock()
	if entry.done {
		r.mu.Unlock()
		if status, ok := r.recent.Get(recentKey(domain, entry.generation)); ok {
			return status, nil
		}
		// Resolved but evicted from the cache: the buffered channel still
		// holds the value.
		select {
		case status := <-entry.resultCh:
			return status, nil
		default:
			return Reached, nil
		}
	}

	ds := r.domainLocked(domain)
	_, promoted := ds.removeWaiter(entry)
	telemetry.WaitQueueDepth.With(domainLabel(domain)).Set(float64(len(ds.waiters)))
	r.mu.Unlock()

	if promoted {
		telemetry.SmallWaiterPromotionsTotal.With(domainLabel(domain)).Inc()
	}

	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return Timeout, ctxErr
	}
	return Cancelled, ctxErr
}

// OnApply is called from SlaveState.Record, after it has released the
// SlaveState lock, whenever a transaction is recorded as applied. It wakes every waiter in
// domain whose target seq is now reached; this is the core of the
// small-waiter optimization: O(log n + k) instead of O(n) per event.
func (r *Registry) OnApply(domain uint32, seq uint64) {
	r.mu.Lock()
	ds := r.domainLocked(domain)
	satisfied, promoted := ds.satisfyUpTo(seq)
	depth := len(ds.waiters)
	r.mu.Unlock()

	if len(satisfied) == 0 {
		return
	}

	telemetry.WaitQueueDepth.With(domainLabel(domain)).Set(float64(depth))
	telemetry.WaitSatisfiedTotal.With(domainLabel(domain)).Add(float64(len(satisfied)))
	if promoted {
		telemetry.SmallWaiterPromotionsTotal.With(domainLabel(domain)).Inc()
	}

	r.mu.Lock()
	for _, w := range satisfied {
		r.recent.Add(recentKey(domain, w.generation), Reached)
	}
	r.mu.Unlock()

	for _, w := range satisfied {
		w.resultCh <- Reached
	}

	log.Debug().Uint32("domain", domain).Uint64("seq", seq).Int("woken", len(satisfied)).Msg("waiters satisfied")
}

func domainLabel(domain uint32) string {
	return strconv.FormatUint(uint64(domain), 10)
}
