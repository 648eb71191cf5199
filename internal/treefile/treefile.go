// Package treefile loads declarative YAML tree descriptions used by the CLI
// and the examples. A tree file names the root's fields, the keys to track,
// and an ordered commit script to replay through the tracked children.
package treefile

import (
	"fmt"
	"maps"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/graft"
)

// Document is a parsed tree file.
//
//	tree:
//	  height: 100
//	  leaf:
//	    state: {color: green}
//	track: [leaf]
//	commits:
//	  - key: leaf
//	    set: {color: brown}
type Document struct {
	// Tree holds the root node's fields. Any mapping that carries a "state"
	// key (at any depth) becomes a commit+propagation capable node.
	Tree map[string]any `mapstructure:"tree"`

	// Track lists the root keys to wire for propagation, in order.
	Track []string `mapstructure:"track"`

	// Commits is the script applied by Run, in order.
	Commits []CommitStep `mapstructure:"commits"`
}

// CommitStep commits one change through the child at Key. Exactly one of Set
// (replace the state payload) or Merge (overlay onto the state payload) must
// be present.
type CommitStep struct {
	Key   string         `mapstructure:"key"`
	Set   map[string]any `mapstructure:"set"`
	Merge map[string]any `mapstructure:"merge"`
}

// Load reads and parses a tree file from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a tree document from YAML.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	var doc Document
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid tree document: %w", err)
	}
	if doc.Tree == nil {
		return nil, fmt.Errorf("tree document has no 'tree' mapping")
	}
	for i, step := range doc.Commits {
		if step.Key == "" {
			return nil, fmt.Errorf("commit step %d: missing 'key'", i)
		}
		if step.Set == nil && step.Merge == nil {
			return nil, fmt.Errorf("commit step %d: needs 'set' or 'merge'", i)
		}
		if step.Set != nil && step.Merge != nil {
			return nil, fmt.Errorf("commit step %d: 'set' and 'merge' are exclusive", i)
		}
	}
	return &doc, nil
}

// Build converts the document into a node tree and wires tracking. Mappings
// carrying a state key become capable nodes, bottom-up, so nested subtrees
// are full nodes before their parents wrap them.
func (d *Document) Build(gr *graft.Grafter) (*graft.Node, error) {
	fields := make(map[string]any, len(d.Tree))
	for k, v := range d.Tree {
		fields[k] = buildValue(gr, v)
	}
	root := graft.NewNode(fields)

	if len(d.Track) == 0 {
		return root, nil
	}
	root, rep := gr.Track(d.Track...)(root)
	if !rep.Ok {
		return nil, fmt.Errorf("tracking failed: %s (skipped keys: %v)", rep.Reason, rep.Skipped)
	}
	return root, nil
}

func buildValue(gr *graft.Grafter, v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	fields := make(map[string]any, len(m))
	for k, child := range m {
		fields[k] = buildValue(gr, child)
	}
	if _, hasState := fields[graft.StateKey]; !hasState {
		return fields
	}
	node, _ := graft.Chain(gr.AttachCommit, gr.AttachPropagation)(graft.NewNode(fields))
	return node
}

// Run builds the tree and replays the commit script. Commits on tracked keys
// follow the propagated parent forward; commits on untracked children are
// applied but, by design, do not surface in the root snapshot.
func (d *Document) Run(gr *graft.Grafter) (*graft.Node, error) {
	root, err := d.Build(gr)
	if err != nil {
		return nil, err
	}
	for i, step := range d.Commits {
		raw, ok := root.Get(step.Key)
		if !ok {
			return nil, fmt.Errorf("commit step %d: no key %q on root", i, step.Key)
		}
		child, ok := raw.(*graft.Node)
		if !ok {
			return nil, fmt.Errorf("commit step %d: value at %q is not a node", i, step.Key)
		}
		out, rep := child.Commit(step.updater())
		if !rep.Ok {
			return nil, fmt.Errorf("commit step %d: %s", i, rep.Reason)
		}
		if root.Tracked(step.Key) {
			root = out.(*graft.Node)
		}
	}
	return root, nil
}

func (s CommitStep) updater() graft.Updater {
	return func(state any) any {
		if s.Set != nil {
			return maps.Clone(s.Set)
		}
		next := make(map[string]any)
		if m, ok := state.(map[string]any); ok {
			next = maps.Clone(m)
		}
		for k, v := range s.Merge {
			next[k] = v
		}
		return next
	}
}
