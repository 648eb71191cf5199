package graft

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/graft/pkg/fn"
)

// Version is the library version reported by the CLI.
const Version = "0.1.0"

// Policy decides how an operation treats a slot that is already wired.
type Policy int

const (
	// PolicyReject skips the operation with a diagnostic (the guarded
	// variant). This is the default.
	PolicyReject Policy = iota

	// PolicyAllow performs the operation again, replacing the existing
	// wiring (the unguarded variant).
	PolicyAllow
)

// Transform rewrites a node into a new node, reporting what happened. All
// transforms in this package are soft: on a failed precondition they return
// the input unchanged with a diagnostic Report.
type Transform func(*Node) (*Node, Report)

// Grafter attaches capabilities to nodes and wires propagation between them.
// It carries the diagnostics logger and the re-attachment policies; the
// zero-config New() is all most callers need.
type Grafter struct {
	logger   *slog.Logger
	reattach Policy
	retrack  Policy
}

// Option configures a Grafter.
type Option func(*Grafter)

// WithLogger sets the structured logger used for precondition diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Grafter) {
		g.logger = logger
	}
}

// WithReattachPolicy controls what happens when a capability is attached to a
// node that already has it.
func WithReattachPolicy(p Policy) Option {
	return func(g *Grafter) {
		g.reattach = p
	}
}

// WithRetrackPolicy controls what happens when Track sees a key that already
// has a ledger entry.
func WithRetrackPolicy(p Policy) Option {
	return func(g *Grafter) {
		g.retrack = p
	}
}

// New builds a Grafter. Diagnostics are discarded unless WithLogger is given.
func New(opts ...Option) *Grafter {
	g := &Grafter{
		reattach: PolicyReject,
		retrack:  PolicyReject,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return g
}

func (g *Grafter) warn(op string, reason Reason, args ...any) {
	all := append([]any{"op", op, "reason", string(reason)}, args...)
	g.logger.Warn("precondition violated, operation skipped", all...)
}

// NewLeaf builds a node holding only the given state and attaches the commit
// and propagation capabilities. Construction on a fresh node cannot violate a
// precondition, so no Report is returned.
func (g *Grafter) NewLeaf(state any) *Node {
	n, _ := Chain(g.AttachCommit, g.AttachPropagation)(NewNode(map[string]any{StateKey: state}))
	return n
}

// AttachCommit grafts the commit capability onto the node: Commit(up) will
// produce a new node whose state is up(oldState), sharing every other field.
//
// Preconditions: the node must carry a state field, and (under PolicyReject)
// must not already have the capability. Violations return the node unchanged.
func (g *Grafter) AttachCommit(n *Node) (*Node, Report) {
	const op = OpAttachCommit
	if n == nil {
		g.warn(op, ReasonNilNode)
		return n, reportNoOp(op, ReasonNilNode)
	}
	if !n.HasState() {
		g.warn(op, ReasonMissingState)
		return n, reportNoOp(op, ReasonMissingState)
	}
	if n.CanCommit() && g.reattach == PolicyReject {
		g.warn(op, ReasonAlreadyAttached)
		return n, reportNoOp(op, ReasonAlreadyAttached)
	}
	next := n.clone()
	next.caps.commit = baseCommit
	// Re-attachment under PolicyAllow rebuilds the slot stack from scratch;
	// propagation must be attached again afterwards.
	next.caps.propagate = nil
	return next, reportOK(op)
}

// baseCommit is the behavior installed by AttachCommit: copy the receiver,
// replace its state, share everything else.
func baseCommit(recv *Node, up Updater) any {
	next := recv.clone()
	next.fields[StateKey] = up(recv.fields[StateKey])
	return next
}

// AttachPropagation grafts the propagation capability: an identity propagate
// behavior, plus a commit behavior that runs the previous commit and passes
// its result through the receiver's propagate slot.
//
// The propagate slot is read from the receiver at call time, not captured
// here. Tracking installs the real behavior after this capability is
// attached, and committed copies must keep routing through whatever behavior
// they carry.
//
// Precondition: the commit capability must already be attached.
func (g *Grafter) AttachPropagation(n *Node) (*Node, Report) {
	const op = OpAttachPropagation
	if n == nil {
		g.warn(op, ReasonNilNode)
		return n, reportNoOp(op, ReasonNilNode)
	}
	if !n.CanCommit() {
		g.warn(op, ReasonCommitNotAttached)
		return n, reportNoOp(op, ReasonCommitNotAttached)
	}
	if n.CanPropagate() && g.reattach == PolicyReject {
		g.warn(op, ReasonAlreadyAttached)
		return n, reportNoOp(op, ReasonAlreadyAttached)
	}
	next := n.clone()
	prev := next.caps.commit
	next.caps.propagate = identityPropagate
	next.caps.commit = func(recv *Node, up Updater) any {
		out := prev(recv, up)
		if p := recv.caps.propagate; p != nil {
			return p(out)
		}
		return out
	}
	return next, reportOK(op)
}

func identityPropagate(result any) any {
	return result
}

// parentCell holds the current parent snapshot for one Track call. Every
// override wired by that call routes commits through the cell, so a commit on
// one tracked child lands in the parent produced by the previous commit on
// any sibling. This is the explicit back-reference the propagate overrides
// close over; without it, sibling commits would each fork the original parent
// and lose each other's updates.
type parentCell struct {
	current *Node
}

func (c *parentCell) swap(key string, result any) *Node {
	next := c.current.withField(key, result)
	c.current = next
	return next
}

// Track returns a transform that wires propagation from the children under
// the given keys back into the parent. After tracking, committing a child
// returns a new parent with only that child's slot replaced; the original
// parent and child values are untouched. Each wiring is recorded in the
// parent's ledger, in declaration order.
//
// Keys that are absent, hold values that are not nodes, hold children without
// the propagation capability, or (under PolicyReject) are already tracked are
// skipped with a diagnostic and listed in Report.Skipped.
func (g *Grafter) Track(keys ...string) Transform {
	return func(parent *Node) (*Node, Report) {
		const op = OpTrack
		if parent == nil {
			g.warn(op, ReasonNilNode)
			return parent, reportNoOp(op, ReasonNilNode)
		}
		next := parent.clone()
		cell := &parentCell{}
		var skipped []string
		var firstReason Reason
		skip := func(key string, reason Reason) {
			g.warn(op, reason, "key", key)
			skipped = fn.Append(skipped, key)
			if firstReason == ReasonNone {
				firstReason = reason
			}
		}
		for _, key := range keys {
			if !fn.HasKey[any](key)(next.fields) {
				skip(key, ReasonMissingKey)
				continue
			}
			child, isNode := next.fields[key].(*Node)
			if !isNode {
				skip(key, ReasonNotANode)
				continue
			}
			if !child.CanPropagate() {
				skip(key, ReasonPropagationNotAttached)
				continue
			}
			if next.Tracked(key) && g.retrack == PolicyReject {
				skip(key, ReasonAlreadyTracked)
				continue
			}
			wired, rep := g.OverridePropagate(func(result any) any {
				return cell.swap(key, result)
			})(child)
			if !rep.Ok {
				skip(key, rep.Reason)
				continue
			}
			next.fields[key] = wired
			next.ledger = fn.Append(next.ledger, LedgerEntry{
				Key:    key,
				Handle: uuid.NewString(),
				child:  child,
			})
		}
		cell.current = next

		rep := reportOK(op)
		rep.Skipped = skipped
		if len(keys) > 0 && len(skipped) == len(keys) {
			rep.Ok = false
			rep.Reason = firstReason
		}
		return next, rep
	}
}

// Chain composes transforms left to right. A failing transform leaves the
// node unchanged (soft no-op) and the chain keeps going; the combined Report
// carries the first failure reason.
func Chain(ts ...Transform) Transform {
	type acc struct {
		node   *Node
		ok     bool
		reason Reason
	}
	return func(n *Node) (*Node, Report) {
		out := fn.Fold(ts, acc{node: n, ok: true}, func(a acc, t Transform) acc {
			next, rep := t(a.node)
			a.node = next
			if !rep.Ok {
				a.ok = false
				if a.reason == ReasonNone {
					a.reason = rep.Reason
				}
			}
			return a
		})
		return out.node, Report{Op: OpChain, Ok: out.ok, Reason: out.reason}
	}
}
