// Package filter implements a composable GTID stream filter: accept-all,
// reject-all, sliding windows keyed by a single identifier, domain/server
// delegation, and intersection. Every node is stateful and owns its
// children.
package filter

import "github.com/gtidcore/gtidcore/gtid"

// Node is the tagged-variant interface every filter implements. exclude
// decides inclusion for one event; has_finished reports whether no future
// event can ever be included, letting readers stop early.
type Node interface {
	Exclude(g gtid.ID) bool
	HasFinished() bool
	WriteWarnings(sink WarningSink)
}

// acceptAllNode never excludes and never finishes.
type acceptAllNode struct{}

// AcceptAll returns a filter node that includes every event.
func AcceptAll() Node { return acceptAllNode{} }

func (acceptAllNode) Exclude(gtid.ID) bool       { return false }
func (acceptAllNode) HasFinished() bool          { return false }
func (acceptAllNode) WriteWarnings(WarningSink)  {}

// rejectAllNode always excludes and never finishes: a RejectAll stream
// could theoretically still include nothing forever, so it is never
// "finished" either. DelegatingNode.HasFinished relies on this.
type rejectAllNode struct{}

// RejectAll returns a filter node that excludes every event.
func RejectAll() Node { return rejectAllNode{} }

func (rejectAllNode) Exclude(gtid.ID) bool      { return true }
func (rejectAllNode) HasFinished() bool         { return false }
func (rejectAllNode) WriteWarnings(WarningSink) {}

func isRejectAll(n Node) bool {
	_, ok := n.(rejectAllNode)
	return ok
}
