// Package repl names the interfaces this module consumes from its host
// server rather than reimplementing: the session a blocked waiter belongs
// to, and the storage engine a position-table row is written through.
// Nothing in this package is specified in detail by the core's spec; it
// exists to give the rest of the module concrete, narrow types to depend
// on instead of interface{}.
package repl

import "sync"

// Session is the subset of the server's session object this module
// consumes: a mutex the session already holds for other purposes, a kill
// flag observable while blocked, an auto-increment configuration pair, and
// an opaque identifier used to compare "is this the same session".
type Session interface {
	Mutex() *sync.Mutex
	Killed() bool
	ID() uint64
	AutoIncrementOffset() (offset, increment uint64)
}

// Applier identifies the source connection (write-set applier thread, or
// receiver thread) permitted to apply a domain under ignore_duplicates
// mode. It is compared by equality only.
type Applier uint64
