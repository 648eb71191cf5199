// Package render produces deterministic text views of node trees and their
// tracking ledgers for the CLI. Keys are emitted in sorted order so output is
// stable across runs and suitable for golden comparison.
package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/graft"
)

// Tree renders a node's fields recursively. Child nodes are annotated with
// their installed behavior slots.
func Tree(n *graft.Node) string {
	var sb strings.Builder
	writeNode(&sb, n, 0)
	return sb.String()
}

// Ledger renders the tracking ledger in wiring order. Handles are omitted:
// they are unique per run and belong in diagnostics, not stable output.
func Ledger(n *graft.Node) string {
	entries := n.Ledger()
	if len(entries) == 0 {
		return "ledger: empty\n"
	}
	var sb strings.Builder
	sb.WriteString("ledger:\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e.Key)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n *graft.Node, depth int) {
	for _, key := range n.Keys() {
		v, _ := n.Get(key)
		writeValue(sb, key, v, depth)
	}
}

func writeValue(sb *strings.Builder, key string, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch val := v.(type) {
	case *graft.Node:
		fmt.Fprintf(sb, "%s%s: node(%s)\n", indent, key, strings.Join(val.Slots(), ", "))
		writeNode(sb, val, depth+1)
	case map[string]any:
		fmt.Fprintf(sb, "%s%s:\n", indent, key)
		for _, k := range slices.Sorted(maps.Keys(val)) {
			writeValue(sb, k, val[k], depth+1)
		}
	default:
		fmt.Fprintf(sb, "%s%s: %v\n", indent, key, v)
	}
}
