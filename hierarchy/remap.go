package hierarchy

import (
	"github.com/FrenchMajesty/hierarchical-ensemble/utils/disjoint_set"
)

// RemapTable maps an old class label to its new class label.
type RemapTable map[int]int

// NewRemapTable numbers the leaves of n by their position in n.Flatten().
func NewRemapTable(n *Node) RemapTable {
	leaves := n.Flatten()
	table := make(RemapTable, len(leaves))
	for newLabel, oldLabel := range leaves {
		table[oldLabel] = newLabel
	}
	return table
}

// Apply returns a rewritten copy of labels. Labels must be filtered to the
// table's key set first.
func (t RemapTable) Apply(labels []int) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		nl, ok := t[l]
		if !ok {
			return nil, &UnknownLabelError{Label: l, Position: i}
		}
		out[i] = nl
	}
	return out, nil
}

// Classes returns the number of distinct new labels.
func (t RemapTable) Classes() int {
	seen := make(map[int]struct{}, len(t))
	for _, v := range t {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// CoarseTable maps every leaf below n to the index of the direct child of n
// that contains it. A leaf that is a direct child forms its own group.
func CoarseTable(n *Node) RemapTable {
	d := disjoint_set.NewDSU()
	firstLeaf := make([]int, len(n.children))
	empty := make([]bool, len(n.children))

	for g, child := range n.children {
		leaves := child.Flatten()
		if len(leaves) == 0 {
			empty[g] = true
			continue
		}
		firstLeaf[g] = leaves[0]
		head := d.FindOrCreate(leaves[0])
		for _, l := range leaves[1:] {
			d.Union(head, d.FindOrCreate(l))
		}
	}

	rootToGroup := make(map[int]int, len(n.children))
	for g, l := range firstLeaf {
		if empty[g] {
			continue
		}
		rootToGroup[d.Find(l)] = g
	}

	table := make(RemapTable, d.Size())
	for _, l := range n.Flatten() {
		table[l] = rootToGroup[d.Find(l)]
	}
	return table
}
