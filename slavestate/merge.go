package slavestate

import "github.com/gtidcore/gtidcore/gtid"

// Snapshot merges this ledger's best-known (domain, server) -> seq pairs
// with a caller-provided extra_gtids list, preferring the higher seq on a
// (domain, server) collision. sort requests a stable (domain, server)
// ordering of the result.
func (s *State) Snapshot(extra gtid.List, sort bool) gtid.List {
	best := make(map[gtid.ID]uint64)

	s.mu.Lock()
	for domain, ld := range s.domains {
		for server, seq := range ld.bestByServer {
			best[gtid.ID{Domain: domain, Server: server}] = seq
		}
	}
	s.mu.Unlock()

	for _, g := range extra {
		key := gtid.ID{Domain: g.Domain, Server: g.Server}
		if existing, ok := best[key]; !ok || g.Seq > existing {
			best[key] = g.Seq
		}
	}

	out := make(gtid.List, 0, len(best))
	for key, seq := range best {
		out = append(out, gtid.ID{Domain: key.Domain, Server: key.Server, Seq: seq})
	}
	if sort {
		out.Sort()
	}
	return out
}

// String renders Snapshot's merge as the textual GTID list form.
func (s *State) String(extra gtid.List, sort bool) string {
	return s.Snapshot(extra, sort).String()
}
