package graft

import (
	"maps"
	"slices"

	"github.com/aretw0/graft/pkg/fn"
)

// StateKey is the distinguished field holding a node's opaque payload.
// A node must carry this field before the commit capability can be attached.
const StateKey = "state"

// Updater transforms a node's opaque state into its successor. It must treat
// the state it receives as immutable and return a fresh value.
type Updater func(state any) any

// CommitBehavior is the private commit slot. It receives the node the public
// Commit wrapper was invoked on and the updater, and returns the committed
// value: the updated node, or, once the node is tracked, the updated parent.
type CommitBehavior func(recv *Node, up Updater) any

// PropagateBehavior is the private propagate slot. It forwards a committed
// result; the default installed by AttachPropagation is the identity.
type PropagateBehavior func(result any) any

// capabilities is the strategy struct holding a node's replaceable private
// behaviors. It is copied whole on every clone and override, so installed
// behaviors are never shared mutably between snapshots.
type capabilities struct {
	commit    CommitBehavior
	propagate PropagateBehavior
}

// LedgerEntry records one tracked child wiring on a parent.
type LedgerEntry struct {
	// Key is the parent field the child lives under.
	Key string

	// Handle uniquely names this wiring, for diagnostics and introspection.
	Handle string

	// child is the instance captured at tracking time, before its propagate
	// behavior was overridden. The live value under Key diverges from it as
	// commits flow through.
	child *Node
}

// Child returns the child instance captured when tracking was wired.
func (e LedgerEntry) Child() *Node {
	return e.child
}

// Node is an immutable record of named fields. The zero of usefulness is a
// plain record; capabilities are grafted on through a Grafter, and every
// capability operation and every commit returns a new Node, leaving the
// receiver untouched. Unchanged fields are shared by reference between
// snapshots and must be treated as read-only.
type Node struct {
	fields map[string]any
	caps   capabilities
	ledger []LedgerEntry
}

// NewNode builds a node from the given fields. The map is copied; its values
// are shared by reference.
func NewNode(fields map[string]any) *Node {
	return &Node{fields: maps.Clone(fields)}
}

// Get returns the value stored under key.
func (n *Node) Get(key string) (any, bool) {
	if n == nil {
		return nil, false
	}
	v, ok := n.fields[key]
	return v, ok
}

// State returns the node's opaque payload, or nil when absent.
func (n *Node) State() any {
	if n == nil {
		return nil
	}
	return n.fields[StateKey]
}

// HasState reports whether the node carries the state field.
func (n *Node) HasState() bool {
	return n != nil && fn.HasKey[any](StateKey)(n.fields)
}

// Keys returns the node's field names in sorted order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(n.fields))
}

// Len returns the number of fields.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.fields)
}

// CanCommit reports whether the commit capability is attached.
func (n *Node) CanCommit() bool {
	return n != nil && n.caps.commit != nil
}

// CanPropagate reports whether the propagation capability is attached.
func (n *Node) CanPropagate() bool {
	return n != nil && n.caps.propagate != nil
}

// Slots lists the installed private behavior slots, in a fixed order.
func (n *Node) Slots() []string {
	var slots []string
	if n.CanCommit() {
		slots = append(slots, "commit")
	}
	if n.CanPropagate() {
		slots = append(slots, "propagate")
	}
	return slots
}

// Ledger returns the tracking ledger in the order keys were tracked. The
// returned slice is a copy; mutating it does not affect the node.
func (n *Node) Ledger() []LedgerEntry {
	if n == nil {
		return nil
	}
	return slices.Clone(n.ledger)
}

// Tracked reports whether key already has a ledger entry on this node.
func (n *Node) Tracked(key string) bool {
	if n == nil {
		return false
	}
	return slices.ContainsFunc(n.ledger, func(e LedgerEntry) bool {
		return e.Key == key
	})
}

// Commit applies the updater through the node's private commit behavior and
// returns the committed value. This wrapper is fixed: replacing the private
// behavior (directly or through tracking) changes what Commit does without
// changing what callers invoke.
//
// Before tracking, the returned value is the updated node. Once the node is
// tracked by a parent, the returned value is the updated parent.
func (n *Node) Commit(up Updater) (any, Report) {
	if !n.CanCommit() {
		return n, reportNoOp(OpCommit, ReasonCommitNotAttached)
	}
	return n.caps.commit(n, up), reportOK(OpCommit)
}

// clone produces a shallow copy: fields map copied, values shared, capability
// struct and ledger carried over.
func (n *Node) clone() *Node {
	return &Node{
		fields: maps.Clone(n.fields),
		caps:   n.caps,
		ledger: slices.Clone(n.ledger),
	}
}

// withField returns a copy of the node with exactly one field replaced.
func (n *Node) withField(key string, v any) *Node {
	return &Node{
		fields: fn.SetKey(key, v)(n.fields),
		caps:   n.caps,
		ledger: slices.Clone(n.ledger),
	}
}
