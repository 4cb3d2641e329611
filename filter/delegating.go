package filter

import (
	"github.com/cespare/xxhash/v2"
	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/telemetry"
)

// Mode names which side of a delegating node's lookup supplies the default.
type Mode int

const (
	// Whitelist defaults unlisted keys to RejectAll.
	Whitelist Mode = iota
	// Blacklist defaults unlisted keys to AcceptAll.
	Blacklist
)

const childShardCount = 16

// childShard is one bucket of the delegating node's id->Node table. Keying
// lookups through xxhash and spreading entries across a fixed number of
// shards keeps a large whitelist/blacklist off a single contended map.
type childShard struct {
	entries map[uint32]Node
}

func newChildShard() *childShard {
	return &childShard{entries: make(map[uint32]Node)}
}

func shardFor(key uint32) int {
	var buf [4]byte
	buf[0] = byte(key)
	buf[1] = byte(key >> 8)
	buf[2] = byte(key >> 16)
	buf[3] = byte(key >> 24)
	return int(xxhash.Sum64(buf[:]) % uint64(childShardCount))
}

// DelegatingNode routes Exclude to a per-key child, selected by a caller
// supplied key function, falling back to a default node. DelegatingByDomain
// and DelegatingByServer share this structure and differ only in keyFunc.
type DelegatingNode struct {
	mode    Mode
	keyFunc func(gtid.ID) uint32
	shards  [childShardCount]*childShard
	def     Node
}

func newDelegatingNode(mode Mode, keyFunc func(gtid.ID) uint32, def Node) *DelegatingNode {
	d := &DelegatingNode{mode: mode, keyFunc: keyFunc, def: def}
	for i := range d.shards {
		d.shards[i] = newChildShard()
	}
	return d
}

// DelegatingByDomain routes on the event's domain id.
func DelegatingByDomain(mode Mode, def Node) *DelegatingNode {
	return newDelegatingNode(mode, func(g gtid.ID) uint32 { return g.Domain }, def)
}

// DelegatingByServer routes on the event's server id.
func DelegatingByServer(mode Mode, def Node) *DelegatingNode {
	return newDelegatingNode(mode, func(g gtid.ID) uint32 { return g.Server }, def)
}

// AddChild installs an explicit child for key, overriding the default for
// every event that routes to it.
func (d *DelegatingNode) AddChild(key uint32, child Node) {
	shard := d.shards[shardFor(key)]
	shard.entries[key] = child
}

func (d *DelegatingNode) childFor(key uint32) (Node, bool) {
	shard := d.shards[shardFor(key)]
	child, ok := shard.entries[key]
	return child, ok
}

func (d *DelegatingNode) Exclude(g gtid.ID) bool {
	key := d.keyFunc(g)
	var excluded bool
	if child, ok := d.childFor(key); ok {
		excluded = child.Exclude(g)
	} else {
		excluded = d.def.Exclude(g)
	}
	telemetry.FilterDecisionsTotal.With("delegating", decisionLabel(excluded)).Inc()
	return excluded
}

// HasFinished reports true once every explicit child has finished and the
// default node is RejectAll — no key, listed or not, can still admit an
// event. A Blacklist node's default is AcceptAll so it never finishes.
func (d *DelegatingNode) HasFinished() bool {
	if !isRejectAll(d.def) {
		return false
	}
	for _, shard := range d.shards {
		for _, child := range shard.entries {
			if !child.HasFinished() {
				return false
			}
		}
	}
	return true
}

func (d *DelegatingNode) WriteWarnings(sink WarningSink) {
	for _, shard := range d.shards {
		for _, child := range shard.entries {
			child.WriteWarnings(sink)
		}
	}
	d.def.WriteWarnings(sink)
}
