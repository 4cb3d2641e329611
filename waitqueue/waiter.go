package waitqueue

// waiterEntry is a single blocked session's registration, owned by the
// registry while enqueued. The blocked Register call keeps a pointer to its
// entry; generation, unique within the domain, keys the registry's recent
// cache of resolved statuses.
type waiterEntry struct {
	sessionID  uint64
	waitSeq    uint64
	small      bool
	done       bool
	generation uint64
	resultCh   chan Status
}
