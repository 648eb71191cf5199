package graft

// Operation names carried by Reports and diagnostics.
const (
	OpAttachCommit      = "attach_commit"
	OpAttachPropagation = "attach_propagation"
	OpTrack             = "track"
	OpOverrideCommit    = "override_commit"
	OpOverridePropagate = "override_propagate"
	OpCommit            = "commit"
	OpChain             = "chain"
)

// Reason classifies why an operation degraded to a no-op.
type Reason string

const (
	// ReasonNone means the operation succeeded.
	ReasonNone Reason = ""

	// Precondition violations: a required field or capability is missing.
	ReasonNilNode                Reason = "nil node"
	ReasonMissingState           Reason = "missing state field"
	ReasonAlreadyAttached        Reason = "capability already attached"
	ReasonCommitNotAttached      Reason = "commit capability not attached"
	ReasonPropagationNotAttached Reason = "propagation capability not attached"
	ReasonMissingKey             Reason = "key not present on parent"
	ReasonNotANode               Reason = "value at key is not a node"
	ReasonAlreadyTracked         Reason = "key already tracked"

	// Configuration no-ops: an override was requested on a slot that was
	// never installed, or with no replacement behavior.
	ReasonSlotNotInstalled Reason = "behavior slot not installed"
	ReasonNilBehavior      Reason = "nil replacement behavior"
)

// Report describes the outcome of a capability operation. Failed
// preconditions are soft: the operation returns its input unchanged together
// with a Report callers can inspect, and a warning is logged. Nothing in this
// package panics or returns an error for a precondition violation.
type Report struct {
	// Op names the operation that produced the report.
	Op string

	// Ok is true when the operation took effect.
	Ok bool

	// Reason explains the no-op when Ok is false. For Track it explains the
	// first skipped key when the whole call degraded.
	Reason Reason

	// Skipped lists keys Track could not wire, in declaration order.
	Skipped []string
}

func reportOK(op string) Report {
	return Report{Op: op, Ok: true}
}

func reportNoOp(op string, reason Reason) Report {
	return Report{Op: op, Reason: reason}
}
