// Package hierarchy models a label taxonomy as a tree of integer leaves and
// provides the flattening and re-indexing used to train on a part of it.
package hierarchy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Node is either a leaf holding a class label or a group of ordered children.
type Node struct {
	label    int
	leaf     bool
	children []*Node
}

// NewLeaf returns a leaf node for label.
func NewLeaf(label int) *Node {
	return &Node{label: label, leaf: true}
}

// NewGroup returns a group node with the given children.
func NewGroup(children ...*Node) *Node {
	return &Node{children: children}
}

// FromLabels returns a single group holding one leaf per label.
func FromLabels(labels []int) *Node {
	children := make([]*Node, len(labels))
	for i, l := range labels {
		children[i] = NewLeaf(l)
	}
	return NewGroup(children...)
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool { return n.leaf }

// Label returns the leaf label. It is zero for groups.
func (n *Node) Label() int { return n.label }

// Children returns the direct children of a group.
func (n *Node) Children() []*Node { return n.children }

// Len returns the number of direct children, or 0 for a leaf.
func (n *Node) Len() int { return len(n.children) }

// Flatten returns every leaf label below n in depth-first, left-to-right order.
func (n *Node) Flatten() []int {
	var (
		flat  []int
		stack = []*Node{n}
	)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.leaf {
			flat = append(flat, top.label)
			continue
		}
		for i := len(top.children) - 1; i >= 0; i-- {
			stack = append(stack, top.children[i])
		}
	}
	return flat
}

// Level descends from n along path, one child index per step.
func (n *Node) Level(path []int) (*Node, error) {
	cur := n
	for depth, i := range path {
		if cur.leaf {
			return nil, &IndexError{Path: path, Depth: depth, Index: i, Len: 0}
		}
		if i < 0 || i >= len(cur.children) {
			return nil, &IndexError{Path: path, Depth: depth, Index: i, Len: len(cur.children)}
		}
		cur = cur.children[i]
	}
	return cur, nil
}

// MarshalJSON encodes n as a nested integer array.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.leaf {
		return json.Marshal(n.label)
	}
	if n.children == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(n.children)
}

// UnmarshalJSON decodes a nested integer array. Leaves must be integers.
func (n *Node) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("hierarchy: null is not a valid leaf")
	}
	if len(data) > 0 && data[0] == '[' {
		var children []*Node
		if err := json.Unmarshal(data, &children); err != nil {
			return err
		}
		for _, c := range children {
			if c == nil {
				return fmt.Errorf("hierarchy: null is not a valid leaf")
			}
		}
		*n = Node{children: children}
		return nil
	}

	var label int
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("hierarchy: leaf %s is not an integer", data)
	}
	*n = Node{label: label, leaf: true}
	return nil
}

// Parse decodes a JSON hierarchy and checks that every leaf label is unique.
func Parse(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "failed to decode hierarchy")
	}

	seen := make(map[int]bool)
	for _, l := range root.Flatten() {
		if seen[l] {
			return nil, &DuplicateLabelError{Label: l}
		}
		seen[l] = true
	}
	return &root, nil
}

// Load reads and parses the hierarchy file at path.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read hierarchy file %s", path)
	}

	root, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hierarchy file %s", path)
	}
	return root, nil
}
