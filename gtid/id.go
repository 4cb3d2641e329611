// Package gtid implements the GTID triple (domain, server, seq) and its
// textual and binary codecs.
package gtid

import (
	"sort"
	"strconv"
	"strings"
)

// ID is a single global transaction identifier: the triple
// (domain, server, seq). The pair (Domain, Seq) uniquely identifies a
// committed transaction inside a domain; Server records its origin.
type ID struct {
	Domain uint32
	Server uint32
	Seq    uint64
}

// Equal reports whether two IDs are triple-equal.
func (g ID) Equal(o ID) bool {
	return g.Domain == o.Domain && g.Server == o.Server && g.Seq == o.Seq
}

// String renders the textual form D-S-Q with minimum decimal digits.
func (g ID) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(g.Domain), 10))
	b.WriteByte('-')
	b.WriteString(strconv.FormatUint(uint64(g.Server), 10))
	b.WriteByte('-')
	b.WriteString(strconv.FormatUint(g.Seq, 10))
	return b.String()
}

// SameOrigin reports whether g and o share the same (domain, server).
func (g ID) SameOrigin(o ID) bool {
	return g.Domain == o.Domain && g.Server == o.Server
}

// List is an ordered collection of IDs as produced by the parser and
// consumed by the binary codec.
type List []ID

// Sort orders the list by (domain, server), matching the determinism
// requirement on BinlogState.Snapshot and SlaveState.Snapshot/String.
func (l List) Sort() {
	sort.Slice(l, func(i, j int) bool {
		if l[i].Domain != l[j].Domain {
			return l[i].Domain < l[j].Domain
		}
		return l[i].Server < l[j].Server
	})
}

// String renders the list as a comma-separated textual GTID list.
func (l List) String() string {
	parts := make([]string, len(l))
	for i, g := range l {
		parts[i] = g.String()
	}
	return strings.Join(parts, ",")
}

// HasDuplicateDomain reports whether two entries in the list share a domain.
func (l List) HasDuplicateDomain() (uint32, bool) {
	seen := make(map[uint32]struct{}, len(l))
	for _, g := range l {
		if _, ok := seen[g.Domain]; ok {
			return g.Domain, true
		}
		seen[g.Domain] = struct{}{}
	}
	return 0, false
}
