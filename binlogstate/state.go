// Package binlogstate tracks, per domain, the most recent GTID written by
// each server on the primary side of replication: the per-domain sequence
// allocator, strict-mode gap detection, and the serialized snapshot
// embedded at the start of each binary log file.
package binlogstate

import (
	"sync"

	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/telemetry"
	"github.com/rs/zerolog/log"
)

// element holds, for one domain, a mapping from server to its most recent
// GTID, a pointer to the last inserted one, and the per-domain sequence
// counter used to allocate the next seq.
type element struct {
	mu           sync.Mutex
	servers      map[uint32]gtid.ID
	lastInserted gtid.ID
	seqCounter   uint64
}

func newElement() *element {
	return &element{servers: make(map[uint32]gtid.ID)}
}

func (e *element) maxSeqLocked() uint64 {
	return e.seqCounter
}

// State is the primary-side per-(domain,server) GTID tracker.
type State struct {
	mu      sync.RWMutex
	domains map[uint32]*element
	strict  bool
}

// NewState creates an empty BinlogState. strict enables the ordering checks
// in Update; CheckStrictSequence checks regardless of strict.
func NewState(strict bool) *State {
	return &State{
		domains: make(map[uint32]*element),
		strict:  strict,
	}
}

func (s *State) domainLocked(domain uint32, create bool) *element {
	s.mu.RLock()
	e, ok := s.domains[domain]
	s.mu.RUnlock()
	if ok || !create {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.domains[domain]; ok {
		return e
	}
	e = newElement()
	s.domains[domain] = e
	return e
}

// Update records g as the most recent GTID for its (domain, server). In
// strict mode it rejects a g whose seq does not extend the domain's
// counter by exactly one, or that is not greater than a prior entry's seq
// in the same domain. Both checks apply once the domain has a recorded
// GTID; the first GTID recorded in a domain is accepted at any seq.
func (s *State) Update(g gtid.ID) error {
	e := s.domainLocked(g.Domain, true)

	e.mu.Lock()
	defer e.mu.Unlock()

	if s.strict && len(e.servers) > 0 {
		if e.seqCounter >= g.Seq {
			telemetry.StrictRejectionsTotal.With("out_of_order_seq").Inc()
			return &OutOfOrderSeqError{Domain: g.Domain, Server: g.Server, Seq: g.Seq, PriorMax: e.seqCounter}
		}
		if g.Seq != e.seqCounter+1 {
			telemetry.StrictRejectionsTotal.With("non_monotonic_seq").Inc()
			return &NonMonotonicSeqError{Domain: g.Domain, Server: g.Server, Seq: g.Seq, Expected: e.seqCounter + 1}
		}
	}

	e.servers[g.Server] = g
	e.lastInserted = g
	if g.Seq > e.seqCounter {
		e.seqCounter = g.Seq
	}

	log.Debug().Uint32("domain", g.Domain).Uint32("server", g.Server).Uint64("seq", g.Seq).Msg("binlog gtid recorded")
	return nil
}

// NextSeqFor returns seqCounter(domain)+1 without committing the advance; a
// subsequent Update for that domain commits it.
func (s *State) NextSeqFor(domain uint32) uint64 {
	e := s.domainLocked(domain, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seqCounter + 1
}

// CheckStrictSequence rejects seq if any prior seq recorded in domain is
// already >= seq, without mutating state. Used to validate an incoming
// declared GTID before writing it.
func (s *State) CheckStrictSequence(domain, server uint32, seq uint64) error {
	e := s.domainLocked(domain, false)
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seqCounter >= seq {
		telemetry.StrictRejectionsTotal.With("out_of_order_seq").Inc()
		return &OutOfOrderSeqError{Domain: domain, Server: server, Seq: seq, PriorMax: e.seqCounter}
	}
	return nil
}

// Snapshot produces a stable, (domain, server)-sorted sequence of every
// tracked GTID, consumed by the file-rotation writer to embed the
// start-of-file GTID list record.
func (s *State) Snapshot() gtid.List {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(gtid.List, 0)
	for _, e := range s.domains {
		e.mu.Lock()
		for _, g := range e.servers {
			out = append(out, g)
		}
		e.mu.Unlock()
	}
	out.Sort()
	return out
}

// DropDomain removes the listed domain ids. It refuses and reports the
// first offending domain if any listed domain still has a seq in
// clusterSnapshot greater than what this node has applied, preventing data
// loss on domain retirement.
func (s *State) DropDomain(ids []uint32, clusterSnapshot *gtid.Set) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, domain := range ids {
		localMax := uint64(0)
		if e, ok := s.domains[domain]; ok {
			e.mu.Lock()
			localMax = e.seqCounter
			e.mu.Unlock()
		}

		if clusterSnapshot != nil {
			if clusterSeen, ok := clusterSnapshot.MaxSeq(domain); ok && clusterSeen > localMax {
				return &DomainStillActiveError{Domain: domain, LocalMax: localMax, ClusterSeen: clusterSeen}
			}
		}
	}

	for _, domain := range ids {
		delete(s.domains, domain)
	}

	log.Info().Uints32("domains", ids).Msg("binlog domains dropped")
	return nil
}
