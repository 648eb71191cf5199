/*
Package graft provides immutable-state composition for nested object trees:
update a leaf without mutation and have the update propagate upward, so an
ancestor's copy reflects the new descendant while every other branch is
shared untouched.

Three capabilities compose to make that work, plus one override mechanism:

  - Commit: apply an updater to a node's state, producing a new node.
  - Propagation: a replaceable forwarding step run after every commit
    (identity until wired).
  - Tracking: wire a parent's child slots so a child's commit yields a new
    parent with only that slot replaced, recorded in an inspectable ledger.
  - Override: swap a node's private commit or propagate behavior while the
    public wrapper stays identical.

# Usage

	g := graft.New()

	leaf := g.NewLeaf(map[string]any{"color": "green"})
	parent := graft.NewNode(map[string]any{"height": 100, "leaf": leaf})

	parent, _ = g.Track("leaf")(parent)

	// Committing the tracked child returns a NEW PARENT, not the child.
	tracked, _ := parent.Get("leaf")
	out, _ := tracked.(*graft.Node).Commit(turnColor)
	next := out.(*graft.Node) // height still 100, leaf now brown

The return-type shift on Commit is the essential design surprise: once a node
is tracked, its commits route through propagation into its parent.

# Soft failures

Every precondition violation (missing state field, propagation before commit,
tracking an absent key, overriding an uninstalled slot) is a soft no-op: the
operation returns its input unchanged together with a Report naming the
violated precondition, and logs a warning through the Grafter's slog logger.
Callers that depend on an operation having taken effect must check the Report
or the node's CanCommit/CanPropagate accessors.

# Immutability

Nodes are never mutated after construction. Attachment, override, tracking and
commit all return new nodes; unchanged fields are shared by reference between
snapshots and must be treated as read-only. The package is synchronous and
single-threaded by design; it does no scheduling and holds no global state.
*/
package graft
