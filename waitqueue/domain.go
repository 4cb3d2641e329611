package waitqueue

import (
	"math"
	"sort"
)

// domainState is the per-domain slice of DomainState relevant to waiting:
// a sorted-by-waitSeq list of waiters, the highest seq observed so far for
// the domain, the smallest seq any active waiter wants, and the single
// waiter promoted to "small".
//
// Sorted-slice + binary search is the same shape as a priority queue keyed
// by waitSeq but avoids a heap's bookkeeping; insertion finds its slot in
// O(log n) and then shifts the tail (O(n)), and the apply-path cutoff is
// O(log n).
type domainState struct {
	waiters      []*waiterEntry // sorted ascending by waitSeq
	highestSeqNo uint64
	small        *waiterEntry
	nextGen      uint64
}

func newDomainState() *domainState {
	return &domainState{}
}

func (ds *domainState) minWaitSeqNo() uint64 {
	if len(ds.waiters) == 0 {
		return math.MaxUint64
	}
	return ds.waiters[0].waitSeq
}

// insert adds entry to the sorted waiter list, preserving the invariant
// that the head of a non-empty queue is always the small waiter: if no
// waiter currently holds that role, entry takes it; if entry lands at
// index 0 ahead of the current small waiter, the role transfers to entry.
// Caller holds the registry lock.
func (ds *domainState) insert(entry *waiterEntry) {
	i := sort.Search(len(ds.waiters), func(i int) bool {
		return ds.waiters[i].waitSeq >= entry.waitSeq
	})
	ds.waiters = append(ds.waiters, nil)
	copy(ds.waiters[i+1:], ds.waiters[i:])
	ds.waiters[i] = entry

	switch {
	case ds.small == nil:
		entry.small = true
		ds.small = entry
	case i == 0:
		ds.small.small = false
		entry.small = true
		ds.small = entry
	}
}

// promoteSmall picks the current head as the new small waiter. Caller
// holds the registry lock and has already removed the previous small
// waiter from ds.waiters. Returns true if a new small waiter was actually
// promoted (false if the queue emptied and the slot was merely cleared).
func (ds *domainState) promoteSmall() bool {
	ds.small = nil
	if len(ds.waiters) > 0 {
		ds.waiters[0].small = true
		ds.small = ds.waiters[0]
		return true
	}
	return false
}

// satisfyUpTo marks done and returns every waiter whose waitSeq is now
// <= ds.highestSeqNo, removing them from the queue and re-establishing the
// small-waiter invariant if the small waiter itself was among them.
func (ds *domainState) satisfyUpTo(seq uint64) ([]*waiterEntry, bool) {
	if seq > ds.highestSeqNo {
		ds.highestSeqNo = seq
	}
	if len(ds.waiters) == 0 || ds.waiters[0].waitSeq > ds.highestSeqNo {
		return nil, false
	}

	i := sort.Search(len(ds.waiters), func(i int) bool {
		return ds.waiters[i].waitSeq > ds.highestSeqNo
	})

	satisfied := ds.waiters[:i]
	ds.waiters = ds.waiters[i:]

	smallSatisfied := false
	for _, w := range satisfied {
		w.done = true
		if w.small {
			smallSatisfied = true
		}
	}

	promoted := false
	if smallSatisfied {
		promoted = ds.promoteSmall()
	}

	return satisfied, promoted
}

// removeWaiter drops entry from the queue (timeout/cancel path). Returns
// true if entry was still enqueued (and thus genuinely removed).
func (ds *domainState) removeWaiter(entry *waiterEntry) (removed bool, promoted bool) {
	for i, w := range ds.waiters {
		if w == entry {
			ds.waiters = append(ds.waiters[:i], ds.waiters[i+1:]...)
			if entry.small {
				promoted = ds.promoteSmall()
			}
			return true, promoted
		}
	}
	return false, false
}

func (ds *domainState) generation() uint64 {
	ds.nextGen++
	return ds.nextGen
}
