package hierarchy

import "fmt"

// IndexError reports a subset path step that does not exist in the hierarchy.
type IndexError struct {
	Path  []int
	Depth int
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("hierarchy: path %v descends into a leaf at depth %d", e.Path, e.Depth)
	}
	return fmt.Sprintf("hierarchy: index %d out of range [0, %d) at depth %d of path %v", e.Index, e.Len, e.Depth, e.Path)
}

// UnknownLabelError reports a label that has no entry in a RemapTable.
type UnknownLabelError struct {
	Label    int
	Position int
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("hierarchy: label %d at position %d is not in the remap table", e.Label, e.Position)
}

// DuplicateLabelError reports a leaf label that appears more than once.
type DuplicateLabelError struct {
	Label int
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("hierarchy: leaf label %d appears more than once", e.Label)
}
