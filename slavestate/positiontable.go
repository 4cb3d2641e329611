package slavestate

import (
	"sync/atomic"

	"github.com/gtidcore/gtidcore/repl"
)

// TableState is a position table's lifecycle stage.
type TableState int32

const (
	AutoCreate TableState = iota
	CreateRequested
	CreateInProgress
	Available
)

func (s TableState) String() string {
	switch s {
	case AutoCreate:
		return "auto_create"
	case CreateRequested:
		return "create_requested"
	case CreateInProgress:
		return "create_in_progress"
	case Available:
		return "available"
	default:
		return "unknown"
	}
}

// PositionTableEngine writes and reads the logical (domain_id, sub_id,
// server_id, seq_no) row schema against a concrete backing store. Engines
// never see anything beyond this row shape.
type PositionTableEngine interface {
	// WriteRow persists one applied-position row, keyed by its sub_id.
	WriteRow(tableName string, domain uint32, subID uint64, server uint32, seq uint64) error
	// Name identifies the engine for logging and metrics.
	Name() string
}

// tableNode is one entry in the gtid_pos_tables registry: an immutable
// (engine, table name) pair plus a mutable lifecycle state. Nodes are
// linked into a singly linked list that grows at its head (and loses nodes
// only through drop) so readers can walk the
// list under an acquire-load of the head without any lock: the fast path
// must pick an engine for a row without taking the slave-state lock.
type tableNode struct {
	engine    repl.Engine
	backend   PositionTableEngine
	tableName string
	state     atomic.Int32
	next      atomic.Pointer[tableNode]
}

func (n *tableNode) loadState() TableState {
	return TableState(n.state.Load())
}

// positionTableRegistry owns the head and default pointers of the
// position-table list. Head/default updates use release-store (Go's
// atomic.Pointer already provides that ordering); destructive mutation is
// gated by the caller holding the slave-state lock.
type positionTableRegistry struct {
	head atomic.Pointer[tableNode]
	def  atomic.Pointer[tableNode]
}

// register links a new node at the head of the list. Callers must hold the
// slave-state lock: list mutation is destructive with respect to
// concurrent walks that started before this call and is serialized by
// convention, even though the store itself is a single atomic write.
func (r *positionTableRegistry) register(engine repl.Engine, backend PositionTableEngine, tableName string, makeDefault bool) *tableNode {
	node := &tableNode{engine: engine, backend: backend, tableName: tableName}
	node.next.Store(r.head.Load())
	node.state.Store(int32(AutoCreate))
	r.head.Store(node)
	if makeDefault {
		r.def.Store(node)
	}
	return node
}

// setState transitions node's lifecycle stage. Callers must hold the
// slave-state lock, the same rule applied uniformly to every registry
// write, not only list-shape changes.
func (r *positionTableRegistry) setState(node *tableNode, state TableState) {
	node.state.Store(int32(state))
}

// drop unlinks node from the list. Callers must hold the slave-state lock.
func (r *positionTableRegistry) drop(node *tableNode) {
	var prev *tableNode
	cur := r.head.Load()
	for cur != nil {
		if cur == node {
			if prev == nil {
				r.head.Store(cur.next.Load())
			} else {
				prev.next.Store(cur.next.Load())
			}
			break
		}
		prev = cur
		cur = cur.next.Load()
	}
	if r.def.Load() == node {
		r.def.Store(nil)
	}
}

// selectTable walks the list (lock-free, acquire-load of the head) for the
// first node matching engine in state Available; falling back to the
// default node if no engine-specific table qualifies.
func (r *positionTableRegistry) selectTable(engine repl.Engine) (*tableNode, error) {
	for node := r.head.Load(); node != nil; node = node.next.Load() {
		if repl.SameEngine(node.engine, engine) && node.loadState() == Available {
			return node, nil
		}
	}

	def := r.def.Load()
	if def != nil && def.loadState() == Available {
		return def, nil
	}
	return nil, &NoPositionTableError{Engine: engine}
}
