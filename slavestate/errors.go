package slavestate

import "fmt"

// NoPositionTableError is returned by SelectPositionTable when no
// engine-specific table is Available and no default is either; the caller
// halts replication at the offending transaction.
type NoPositionTableError struct {
	Engine any
}

func (e *NoPositionTableError) Error() string {
	return fmt.Sprintf("no available position table for engine %v and no default configured", e.Engine)
}

// NotOwnerError is returned by ReleaseDomainOwner when the caller does not
// currently hold ownership of the domain it is trying to release.
type NotOwnerError struct {
	Domain  uint32
	Applier any
	Owner   any
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("applier %v is not the owner of domain %d (owner: %v)", e.Applier, e.Domain, e.Owner)
}

// CancelledError is returned by CheckDuplicate when the blocked session's
// kill flag is observed set.
type CancelledError struct {
	Domain uint32
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("check_duplicate cancelled by session kill for domain %d", e.Domain)
}

// InconsistentStateError marks a violated invariant. It is fatal by
// policy: the caller should abort the process rather than continue
// replicating against corrupted bookkeeping.
type InconsistentStateError struct {
	Detail string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("inconsistent slave state: %s", e.Detail)
}
