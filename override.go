package graft

// The override mechanism replaces a node's private behavior while the public
// wrapper stays identical. Each override builds a new capability struct on a
// new node; nothing is swapped in place, so snapshots taken before the
// override keep the behavior they were built with.
//
// Propagation tracking is wired through OverridePropagate, and tests use both
// overrides to inject observable side effects into commit and propagate.

// OverrideCommit returns a transform that replaces the private commit
// behavior. The public Commit wrapper is untouched and keeps delegating.
//
// Precondition: the commit slot must already be installed by AttachCommit;
// otherwise the node is returned unchanged with a diagnostic.
func (g *Grafter) OverrideCommit(b CommitBehavior) Transform {
	return func(n *Node) (*Node, Report) {
		const op = OpOverrideCommit
		if n == nil {
			g.warn(op, ReasonNilNode)
			return n, reportNoOp(op, ReasonNilNode)
		}
		if b == nil {
			g.warn(op, ReasonNilBehavior)
			return n, reportNoOp(op, ReasonNilBehavior)
		}
		if !n.CanCommit() {
			g.warn(op, ReasonSlotNotInstalled, "slot", "commit")
			return n, reportNoOp(op, ReasonSlotNotInstalled)
		}
		next := n.clone()
		next.caps.commit = b
		return next, reportOK(op)
	}
}

// OverridePropagate returns a transform that replaces the private propagate
// behavior. The commit wrapper installed by AttachPropagation re-reads the
// slot on every call, so the replacement takes effect for all later commits
// on the returned node and its committed copies.
//
// Precondition: the propagate slot must already be installed by
// AttachPropagation; otherwise the node is returned unchanged with a
// diagnostic.
func (g *Grafter) OverridePropagate(b PropagateBehavior) Transform {
	return func(n *Node) (*Node, Report) {
		const op = OpOverridePropagate
		if n == nil {
			g.warn(op, ReasonNilNode)
			return n, reportNoOp(op, ReasonNilNode)
		}
		if b == nil {
			g.warn(op, ReasonNilBehavior)
			return n, reportNoOp(op, ReasonNilBehavior)
		}
		if !n.CanPropagate() {
			g.warn(op, ReasonSlotNotInstalled, "slot", "propagate")
			return n, reportNoOp(op, ReasonSlotNotInstalled)
		}
		next := n.clone()
		next.caps.propagate = b
		return next, reportOK(op)
	}
}
