// Package slavestate implements the per-replica applied-position ledger.
// It tracks, per domain, the highest applied seq and a pending-delete
// backlog, arbitrates which of several concurrent appliers owns a domain
// under ignore_duplicates mode, and multiplexes writes across however many
// position tables the host server has configured, one per storage engine.
package slavestate

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/repl"
	"github.com/gtidcore/gtidcore/telemetry"
	"github.com/rs/zerolog/log"
)

// ApplyNotifier is the narrow interface SlaveState.Record uses to wake
// blocked waiters after a position advances. waitqueue.Registry satisfies
// it structurally; SlaveState never imports that package directly.
type ApplyNotifier interface {
	OnApply(domain uint32, seq uint64)
}

// State is the per-replica applied-position ledger.
type State struct {
	mu      sync.Mutex
	domains map[uint32]*domainLedger
	subID   atomic.Uint64
	tables  positionTableRegistry

	notifier     ApplyNotifier
	pollInterval time.Duration
	stopPoll     chan struct{}
}

// NewState creates an empty SlaveState. notifier is told about every
// Record via OnApply; it may be nil in tests that don't exercise waiting.
// pollInterval, if positive, arms a safety-net broadcast of every domain's
// ownership condition so a killed session blocked in CheckDuplicate is
// never stuck past that interval even if it missed a real wakeup.
func NewState(notifier ApplyNotifier, pollInterval time.Duration) *State {
	s := &State{
		domains:      make(map[uint32]*domainLedger),
		notifier:     notifier,
		pollInterval: pollInterval,
		stopPoll:     make(chan struct{}),
	}
	if pollInterval > 0 {
		go s.pollLoop()
	}
	return s
}

// Close stops the safety-net poll goroutine. Safe to call even if
// pollInterval was zero.
func (s *State) Close() {
	select {
	case <-s.stopPoll:
	default:
		close(s.stopPoll)
	}
}

func (s *State) pollLoop() {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for _, ld := range s.domains {
				ld.cond.Broadcast()
			}
			s.mu.Unlock()
		case <-s.stopPoll:
			return
		}
	}
}

// domainLocked returns the domain's ledger, creating it if absent. Callers
// must already hold s.mu.
func (s *State) domainLocked(domain uint32) *domainLedger {
	ld, ok := s.domains[domain]
	if !ok {
		ld = newDomainLedger(&s.mu)
		s.domains[domain] = ld
	}
	return ld
}

// NextSubID returns a globally monotonic id used to serialize conflicting
// writes across domains to the persistence tables.
func (s *State) NextSubID() uint64 {
	return s.subID.Add(1)
}

// Record appends (subID, g, engine) onto g.Domain's applied_list, advances
// highest_seq_no, broadcasts the domain's ownership condition, and — once
// released outside the lock — tells the notifier so any small-waiter
// protocol can wake sessions blocked on this position. The notifier is
// invoked without holding s.mu, since OnApply takes the wait registry's own
// lock and running it under two locks at once risks a deadlock ordering.
func (s *State) Record(g gtid.ID, subID uint64, engine repl.Engine) error {
	s.mu.Lock()
	ld := s.domainLocked(g.Domain)
	ld.recordLocked(AppliedEntry{SubID: subID, Gtid: g, Engine: engine})
	ld.cond.Broadcast()
	highest := ld.highestSeq
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.OnApply(g.Domain, highest)
	}

	log.Debug().Uint32("domain", g.Domain).Uint32("server", g.Server).Uint64("seq", g.Seq).
		Uint64("sub_id", subID).Msg("applied position recorded")
	return nil
}

// ApplyAndPersist selects the position table for engine, writes the row
// through its backend, and then records the position in the ledger. This
// is the usual entry point for an applier thread; Record/NextSubID remain
// exposed separately for callers (or tests) that want to drive the ledger
// without a real backend.
func (s *State) ApplyAndPersist(g gtid.ID, engine repl.Engine) error {
	node, err := s.tables.selectTable(engine)
	if err != nil {
		return err
	}

	subID := s.NextSubID()
	start := time.Now()
	if err := node.backend.WriteRow(node.tableName, g.Domain, subID, g.Server, g.Seq); err != nil {
		return err
	}
	telemetry.PositionTableWriteSeconds.Observe(time.Since(start).Seconds())

	return s.Record(g, subID, engine)
}

// CheckDuplicate arbitrates which applier is allowed to apply g's domain
// under ignore_duplicates mode. session is polled for its kill flag
// whenever the blocking loop wakes; a killed session returns a
// CancelledError rather than a Decision.
func (s *State) CheckDuplicate(g gtid.ID, applier repl.Applier, session repl.Session) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ld := s.domainLocked(g.Domain)
	for {
		if session != nil && session.Killed() {
			return Skip, &CancelledError{Domain: g.Domain}
		}
		if !ld.hasOwner {
			ld.owner = applier
			ld.hasOwner = true
			ld.ownerCount = 1
			return Apply, nil
		}
		if ld.owner == applier {
			ld.ownerCount++
			return Apply, nil
		}
		if g.Seq <= ld.highestSeq {
			return Skip, nil
		}
		ld.cond.Wait()
	}
}

// ReleaseDomainOwner decrements applier's hold on domain and, at zero,
// clears ownership and wakes every session blocked in CheckDuplicate for
// that domain.
func (s *State) ReleaseDomainOwner(domain uint32, applier repl.Applier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ld := s.domainLocked(domain)
	if !ld.hasOwner || ld.owner != applier {
		return &NotOwnerError{Domain: domain, Applier: applier, Owner: ld.owner}
	}

	ld.ownerCount--
	if ld.ownerCount <= 0 {
		ld.hasOwner = false
		ld.ownerCount = 0
		ld.cond.Broadcast()
	}
	return nil
}

// GrabPendingDeleteList atomically detaches every domain's applied_list
// into one flat slice for background deletion, leaving each domain with a
// fresh, empty list for subsequent Record calls.
func (s *State) GrabPendingDeleteList() []AppliedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, ld := range s.domains {
		total += len(ld.applied)
	}
	out := make([]AppliedEntry, 0, total)
	for _, ld := range s.domains {
		out = append(out, ld.applied...)
		ld.applied = nil
	}

	telemetry.PendingDeleteListSize.Set(float64(len(out)))
	return out
}

// RegisterPositionTable adds a new engine-backed position table to the
// registry in state AutoCreate. Callers must advance it to Available (via
// MarkTableState) once the backing table actually exists.
func (s *State) RegisterPositionTable(engine repl.Engine, backend PositionTableEngine, tableName string, makeDefault bool) *tableNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables.register(engine, backend, tableName, makeDefault)
}

// MarkTableState transitions node's lifecycle stage under the slave-state
// lock: destructive or state-changing mutation of the registry requires it
// even though reads are lock-free.
func (s *State) MarkTableState(node *tableNode, state TableState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables.setState(node, state)
}

// DropPositionTable unlinks node from the registry. Callers are
// responsible for ensuring the apply path is quiescent for node's engine
// first.
func (s *State) DropPositionTable(node *tableNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables.drop(node)
}

// SelectPositionTable picks the table a new row for engine should be
// written to: the first Available node matching engine, else the default,
// else NoPositionTableError. It never takes the slave-state lock.
func (s *State) SelectPositionTable(engine repl.Engine) (*tableNode, error) {
	return s.tables.selectTable(engine)
}
