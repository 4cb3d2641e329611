package slavestate

import (
	"sync"

	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/repl"
)

// AppliedEntry is one row recorded onto a domain's applied_list, pending
// its eventual deletion from the position table once the caller's
// background reclaimer catches up.
type AppliedEntry struct {
	SubID  uint64
	Gtid   gtid.ID
	Engine repl.Engine
}

// domainLedger holds one domain's applied position list and ownership
// state, guarded by State.mu.
type domainLedger struct {
	applied      []AppliedEntry
	highestSeq   uint64
	bestByServer map[uint32]uint64

	owner      repl.Applier
	hasOwner   bool
	ownerCount int
	cond       *sync.Cond
}

func newDomainLedger(mu *sync.Mutex) *domainLedger {
	return &domainLedger{
		bestByServer: make(map[uint32]uint64),
		cond:         sync.NewCond(mu),
	}
}

func (ld *domainLedger) recordLocked(entry AppliedEntry) {
	ld.applied = append(ld.applied, entry)
	if entry.Gtid.Seq > ld.highestSeq {
		ld.highestSeq = entry.Gtid.Seq
	}
	if entry.Gtid.Seq > ld.bestByServer[entry.Gtid.Server] {
		ld.bestByServer[entry.Gtid.Server] = entry.Gtid.Seq
	}
}
