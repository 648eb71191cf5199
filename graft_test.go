package graft_test

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/aretw0/graft"
)

// turnColor flips a leaf state between green and brown.
func turnColor(state any) any {
	m := state.(map[string]any)
	next := map[string]any{}
	for k, v := range m {
		next[k] = v
	}
	if m["color"] == "green" {
		next["color"] = "brown"
	} else {
		next["color"] = "green"
	}
	return next
}

func leafColor(t *testing.T, n *graft.Node, key string) string {
	t.Helper()
	raw, ok := n.Get(key)
	if !ok {
		t.Fatalf("parent has no key %q", key)
	}
	child, ok := raw.(*graft.Node)
	if !ok {
		t.Fatalf("value at %q is not a node: %T", key, raw)
	}
	return child.State().(map[string]any)["color"].(string)
}

func TestCommit_IdentityUpdater(t *testing.T) {
	g := graft.New()

	n := graft.NewNode(map[string]any{
		graft.StateKey: map[string]any{"color": "green"},
		"size":         1,
	})
	capable, rep := g.AttachCommit(n)
	if !rep.Ok {
		t.Fatalf("AttachCommit failed: %+v", rep)
	}

	out, rep := capable.Commit(func(s any) any { return s })
	if !rep.Ok {
		t.Fatalf("Commit failed: %+v", rep)
	}
	got, ok := out.(*graft.Node)
	if !ok {
		t.Fatalf("expected *graft.Node, got %T", out)
	}
	if got == capable {
		t.Error("commit must produce a distinct node value")
	}
	if !reflect.DeepEqual(got.State(), capable.State()) {
		t.Errorf("identity commit changed state: %v != %v", got.State(), capable.State())
	}
	if v, _ := got.Get("size"); v != 1 {
		t.Errorf("unrelated field changed: %v", v)
	}
}

func TestAttachCommit_MissingState(t *testing.T) {
	g := graft.New()

	n := graft.NewNode(map[string]any{"height": 100})
	out, rep := g.AttachCommit(n)

	if rep.Ok {
		t.Fatal("expected precondition failure")
	}
	if rep.Reason != graft.ReasonMissingState {
		t.Errorf("reason = %q, want %q", rep.Reason, graft.ReasonMissingState)
	}
	if out != n {
		t.Error("node must be returned unchanged")
	}
	if out.CanCommit() {
		t.Error("commit capability must not be attached")
	}
	if _, crep := out.Commit(func(s any) any { return s }); crep.Ok {
		t.Error("commit on an incapable node must be a no-op")
	}
}

func TestAttachCommit_ReattachPolicy(t *testing.T) {
	n := graft.NewNode(map[string]any{graft.StateKey: "x"})

	reject := graft.New()
	capable, _ := reject.AttachCommit(n)
	again, rep := reject.AttachCommit(capable)
	if rep.Ok || rep.Reason != graft.ReasonAlreadyAttached {
		t.Errorf("PolicyReject: expected already-attached no-op, got %+v", rep)
	}
	if again != capable {
		t.Error("PolicyReject: node must be returned unchanged")
	}

	allow := graft.New(graft.WithReattachPolicy(graft.PolicyAllow))
	capable, _ = allow.AttachCommit(n)
	again, rep = allow.AttachCommit(capable)
	if !rep.Ok {
		t.Errorf("PolicyAllow: expected re-attachment, got %+v", rep)
	}
	if !again.CanCommit() {
		t.Error("PolicyAllow: capability must survive re-attachment")
	}
}

func TestAttachPropagation_RequiresCommit(t *testing.T) {
	g := graft.New()

	n := graft.NewNode(map[string]any{graft.StateKey: "x"})
	out, rep := g.AttachPropagation(n)

	if rep.Ok || rep.Reason != graft.ReasonCommitNotAttached {
		t.Errorf("expected commit-not-attached no-op, got %+v", rep)
	}
	if out != n || out.CanPropagate() {
		t.Error("node must be returned unchanged, without the capability")
	}
}

func TestAttachPropagation_IdentityUntilTracked(t *testing.T) {
	g := graft.New()

	leaf := g.NewLeaf(map[string]any{"color": "green"})
	out, rep := leaf.Commit(turnColor)
	if !rep.Ok {
		t.Fatalf("Commit failed: %+v", rep)
	}

	// Untracked: propagate is identity, so commit behaves exactly like the
	// commit-only capability and returns the updated leaf itself.
	next, ok := out.(*graft.Node)
	if !ok {
		t.Fatalf("expected *graft.Node, got %T", out)
	}
	if got := next.State().(map[string]any)["color"]; got != "brown" {
		t.Errorf("committed color = %v, want brown", got)
	}
	if got := leaf.State().(map[string]any)["color"]; got != "green" {
		t.Errorf("original leaf mutated: color = %v", got)
	}
}

func TestTrack_LeafEndToEnd(t *testing.T) {
	g := graft.New()

	leaf := g.NewLeaf(map[string]any{"color": "green"})
	parent := graft.NewNode(map[string]any{"height": 100, "leaf": leaf})

	parent, rep := g.Track("leaf")(parent)
	if !rep.Ok || len(rep.Skipped) != 0 {
		t.Fatalf("Track failed: %+v", rep)
	}

	raw, _ := parent.Get("leaf")
	out, rep := raw.(*graft.Node).Commit(turnColor)
	if !rep.Ok {
		t.Fatalf("Commit failed: %+v", rep)
	}

	// A tracked child's commit returns the updated PARENT.
	p1, ok := out.(*graft.Node)
	if !ok {
		t.Fatalf("expected parent *graft.Node, got %T", out)
	}
	if h, _ := p1.Get("height"); h != 100 {
		t.Errorf("height = %v, want 100", h)
	}
	if c := leafColor(t, p1, "leaf"); c != "brown" {
		t.Errorf("leaf color = %q, want brown", c)
	}

	// Originals untouched.
	if c := leafColor(t, parent, "leaf"); c != "green" {
		t.Errorf("original parent's leaf mutated: %q", c)
	}

	// Committing again through the new lineage flips back to green.
	raw, _ = p1.Get("leaf")
	out, _ = raw.(*graft.Node).Commit(turnColor)
	p2 := out.(*graft.Node)
	if c := leafColor(t, p2, "leaf"); c != "green" {
		t.Errorf("leaf color after double flip = %q, want green", c)
	}
	if h, _ := p2.Get("height"); h != 100 {
		t.Errorf("height = %v, want 100", h)
	}
}

func TestTrack_TwoLeaves_NoCrossTalk(t *testing.T) {
	g := graft.New()

	parent := graft.NewNode(map[string]any{
		"height": 100,
		"a":      g.NewLeaf(map[string]any{"color": "green"}),
		"b":      g.NewLeaf(map[string]any{"color": "green"}),
	})
	parent, rep := g.Track("a", "b")(parent)
	if !rep.Ok {
		t.Fatalf("Track failed: %+v", rep)
	}

	rawA, _ := parent.Get("a")
	out, _ := rawA.(*graft.Node).Commit(turnColor)
	p1 := out.(*graft.Node)

	if c := leafColor(t, p1, "a"); c != "brown" {
		t.Errorf("a = %q, want brown", c)
	}
	if c := leafColor(t, p1, "b"); c != "green" {
		t.Errorf("committing a must not alter b: b = %q", c)
	}

	// Commit b through the ORIGINAL parent's handle: the wiring routes into
	// the latest snapshot, so a's flip is preserved.
	rawB, _ := parent.Get("b")
	out, _ = rawB.(*graft.Node).Commit(turnColor)
	p2 := out.(*graft.Node)

	if c := leafColor(t, p2, "a"); c != "brown" {
		t.Errorf("b's commit lost a's update: a = %q", c)
	}
	if c := leafColor(t, p2, "b"); c != "brown" {
		t.Errorf("b = %q, want brown", c)
	}
}

func TestTrack_LedgerOrder(t *testing.T) {
	g := graft.New()

	parent := graft.NewNode(map[string]any{
		"b": g.NewLeaf("vb"),
		"a": g.NewLeaf("va"),
	})
	parent, _ = g.Track("b", "a")(parent)

	entries := parent.Ledger()
	if len(entries) != 2 {
		t.Fatalf("ledger size = %d, want 2", len(entries))
	}
	if entries[0].Key != "b" || entries[1].Key != "a" {
		t.Errorf("ledger order = [%s %s], want declaration order [b a]", entries[0].Key, entries[1].Key)
	}
	if entries[0].Handle == "" || entries[0].Handle == entries[1].Handle {
		t.Error("ledger handles must be unique and non-empty")
	}
	// The back-reference recovers the pre-override child instance.
	if got := entries[1].Child().State(); got != "va" {
		t.Errorf("back-reference state = %v, want va", got)
	}
}

func TestTrack_SkipsUnusableKeys(t *testing.T) {
	var buf bytes.Buffer
	g := graft.New(graft.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	parent := graft.NewNode(map[string]any{
		"plain": 42,
		"leaf":  g.NewLeaf("x"),
	})
	parent, rep := g.Track("missing", "plain", "leaf")(parent)

	if !rep.Ok {
		t.Fatalf("Track with one usable key must succeed: %+v", rep)
	}
	if want := []string{"missing", "plain"}; !reflect.DeepEqual(rep.Skipped, want) {
		t.Errorf("Skipped = %v, want %v", rep.Skipped, want)
	}
	if len(parent.Ledger()) != 1 {
		t.Errorf("ledger size = %d, want 1", len(parent.Ledger()))
	}
	if !strings.Contains(buf.String(), string(graft.ReasonMissingKey)) {
		t.Errorf("expected missing-key diagnostic in log, got:\n%s", buf.String())
	}
}

func TestOverridePropagate_SideEffectEndToEnd(t *testing.T) {
	g := graft.New()

	leaf := g.NewLeaf(map[string]any{"color": "green"})
	observed, rep := g.OverridePropagate(func(result any) any {
		return []any{"observed", result}
	})(leaf)
	if !rep.Ok {
		t.Fatalf("OverridePropagate failed: %+v", rep)
	}

	out, rep := observed.Commit(turnColor)
	if !rep.Ok {
		t.Fatalf("Commit failed: %+v", rep)
	}
	composite, ok := out.([]any)
	if !ok {
		t.Fatalf("expected composite return from overridden propagate, got %T", out)
	}
	if composite[0] != "observed" {
		t.Errorf("side effect value = %v, want observed", composite[0])
	}
	next := composite[1].(*graft.Node)
	if c := next.State().(map[string]any)["color"]; c != "brown" {
		t.Errorf("committed state color = %v, want brown", c)
	}

	// The original leaf keeps its identity propagate.
	out, _ = leaf.Commit(turnColor)
	if _, isNode := out.(*graft.Node); !isNode {
		t.Errorf("override leaked into the original node: got %T", out)
	}
}

func TestChain_SoftFailure(t *testing.T) {
	g := graft.New()

	n := graft.NewNode(map[string]any{"height": 1})
	out, rep := graft.Chain(g.AttachCommit, g.AttachPropagation)(n)

	if rep.Ok {
		t.Fatal("chain over a stateless node must report failure")
	}
	if rep.Reason != graft.ReasonMissingState {
		t.Errorf("reason = %q, want first failure %q", rep.Reason, graft.ReasonMissingState)
	}
	if out != n {
		t.Error("soft-failing chain must return the input unchanged")
	}
}
