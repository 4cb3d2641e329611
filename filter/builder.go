package filter

import "github.com/gtidcore/gtidcore/gtid"

// Builder assembles a DelegatingNode incrementally: blacklist/whitelist
// pick the mode and listed ids; add_start_gtid/add_stop_gtid attach
// Window bounds to whichever listed id the event belongs to.
type Builder struct {
	mode     Mode
	byServer bool
	strict   bool
	ids      map[uint32]bool
	bounds   map[uint32]*windowBounds
}

type windowBounds struct {
	start *gtid.ID
	stop  *gtid.ID
}

// NewWhitelistBuilder seeds a builder whose unlisted ids reject and whose
// listed ids accept everything until narrowed by AddStartGtid/AddStopGtid.
func NewWhitelistBuilder(ids []uint32) *Builder {
	return newBuilder(Whitelist, ids)
}

// NewBlacklistBuilder seeds a builder whose unlisted ids accept and whose
// listed ids reject everything. AddStartGtid/AddStopGtid do not narrow a
// blacklisted id: it stays fully rejected.
func NewBlacklistBuilder(ids []uint32) *Builder {
	return newBuilder(Blacklist, ids)
}

func newBuilder(mode Mode, ids []uint32) *Builder {
	b := &Builder{
		mode:   mode,
		ids:    make(map[uint32]bool, len(ids)),
		bounds: make(map[uint32]*windowBounds),
	}
	for _, id := range ids {
		b.ids[id] = true
	}
	return b
}

// ByServer routes on server_id instead of the default domain id.
func (b *Builder) ByServer() *Builder {
	b.byServer = true
	return b
}

// Strict enables stop-overshoot closing on every Window this builder
// produces: the window finishes (with a warning) the first time a seq
// strictly exceeds its stop bound, instead of only on an exact match.
func (b *Builder) Strict() *Builder {
	b.strict = true
	return b
}

func (b *Builder) keyOf(g gtid.ID) uint32 {
	if b.byServer {
		return g.Server
	}
	return g.Domain
}

// AddStartGtid attaches g as the start bound of the window for the id g
// belongs to (its domain or server id, per ByServer). The id need not have
// been passed to the constructor; doing so implicitly lists it.
func (b *Builder) AddStartGtid(g gtid.ID) *Builder {
	key := b.keyOf(g)
	b.ids[key] = true
	bounds := b.boundsFor(key)
	bounds.start = &g
	return b
}

// AddStopGtid attaches g as the stop bound, symmetric to AddStartGtid.
func (b *Builder) AddStopGtid(g gtid.ID) *Builder {
	key := b.keyOf(g)
	b.ids[key] = true
	bounds := b.boundsFor(key)
	bounds.stop = &g
	return b
}

func (b *Builder) boundsFor(key uint32) *windowBounds {
	bounds, ok := b.bounds[key]
	if !ok {
		bounds = &windowBounds{}
		b.bounds[key] = bounds
	}
	return bounds
}

// Build materializes the accumulated configuration into a DelegatingNode.
func (b *Builder) Build() Node {
	var def Node
	if b.mode == Whitelist {
		def = RejectAll()
	} else {
		def = AcceptAll()
	}

	var node *DelegatingNode
	if b.byServer {
		node = DelegatingByServer(b.mode, def)
	} else {
		node = DelegatingByDomain(b.mode, def)
	}

	for id := range b.ids {
		node.AddChild(id, b.childFor(id))
	}
	return node
}

func (b *Builder) childFor(id uint32) Node {
	bounds, hasBounds := b.bounds[id]
	switch b.mode {
	case Whitelist:
		if !hasBounds {
			return AcceptAll()
		}
		return NewWindow(bounds.start, bounds.stop, b.strict)
	default: // Blacklist
		if !hasBounds {
			return RejectAll()
		}
		// A bounded id inside a blacklist would need a Window with inverted
		// active/finished polarity (reject while active rather than admit);
		// rather than guess at that, reject the whole id.
		return RejectAll()
	}
}
