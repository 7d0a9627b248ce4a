// Package wtdot is the debug dump of spec.md §6: it renders a wavelet trie
// as a Graphviz DOT graph, one vertex per node labeled with node id, α
// length, α sparseness, β length, and β sparseness, with parent→child
// edges. It walks the trie the same breadth-first way rstrie.Contents()
// walks a radix trie.
package wtdot

import (
	"fmt"
	"io"

	"github.com/wavetrie/wavetrie/pkg/wavelettrie"
)

// Dump writes a DOT graph describing root to w.
func Dump(w io.Writer, root *wavelettrie.Node) error {
	if _, err := fmt.Fprintln(w, "digraph wavelettrie {"); err != nil {
		return err
	}

	type queued struct {
		id     int
		parent int
		edge   string
		node   *wavelettrie.Node
	}

	queue := []queued{{id: 0, parent: -1, node: root}}
	nextID := 1

	for len(queue) > 0 {
		step := queue[0]
		queue = queue[1:]

		n := step.node
		if _, err := fmt.Fprintf(
			w,
			"  n%d [label=\"id=%d\\nalen=%d asparse=%.3f\\nblen=%d bsparse=%.3f\"];\n",
			step.id, step.id,
			n.Prefix().Len(), n.Prefix().Sparseness(),
			n.Positions().Len(), n.Positions().Sparseness(),
		); err != nil {
			return err
		}
		if step.parent >= 0 {
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=\"%s\"];\n", step.parent, step.id, step.edge); err != nil {
				return err
			}
		}

		if !n.IsLeaf() {
			queue = append(queue,
				queued{id: nextID, parent: step.id, edge: "L", node: n.Left()},
				queued{id: nextID + 1, parent: step.id, edge: "R", node: n.Right()},
			)
			nextID += 2
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}
