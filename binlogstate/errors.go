package binlogstate

import "fmt"

// OutOfOrderSeqError is returned by Update in strict mode when the domain
// already has an entry whose seq is >= the incoming one.
type OutOfOrderSeqError struct {
	Domain   uint32
	Server   uint32
	Seq      uint64
	PriorMax uint64
}

func (e *OutOfOrderSeqError) Error() string {
	return fmt.Sprintf("out of order seq: domain %d server %d seq %d not greater than prior max %d",
		e.Domain, e.Server, e.Seq, e.PriorMax)
}

// NonMonotonicSeqError is returned by Update in strict mode when the
// incoming seq is not exactly one past the domain's current counter.
type NonMonotonicSeqError struct {
	Domain   uint32
	Server   uint32
	Seq      uint64
	Expected uint64
}

func (e *NonMonotonicSeqError) Error() string {
	return fmt.Sprintf("non monotonic seq: domain %d server %d seq %d, expected %d",
		e.Domain, e.Server, e.Seq, e.Expected)
}

// DomainStillActiveError is returned by DropDomain when a listed domain
// still has a seq in the cluster-wide snapshot greater than what this node
// has applied, refusing the drop to prevent data loss.
type DomainStillActiveError struct {
	Domain      uint32
	LocalMax    uint64
	ClusterSeen uint64
}

func (e *DomainStillActiveError) Error() string {
	return fmt.Sprintf("domain %d still active: cluster snapshot has seq %d, local max is %d",
		e.Domain, e.ClusterSeen, e.LocalMax)
}
