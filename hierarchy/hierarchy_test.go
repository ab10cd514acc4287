package hierarchy

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleHierarchy = `[[0,1],[2,[3,4,5,[6,7,[8,9]]]]]`

func mustParse(t *testing.T, s string) *Node {
	t.Helper()
	n, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", s, err)
	}
	return n
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{"already flat", `[3,1,2]`, []int{3, 1, 2}},
		{"nested", sampleHierarchy, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"single leaf", `7`, []int{7}},
		{"empty groups", `[[],[1,[]],2]`, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.input).Flatten()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFlatten_Idempotent(t *testing.T) {
	for _, input := range []string{sampleHierarchy, `[[5],[4,[3]],[[[2]]],1]`, `[]`} {
		once := mustParse(t, input).Flatten()
		twice := FromLabels(once).Flatten()
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("flatten(flatten(%s)) = %v, want %v", input, twice, once)
		}
	}
}

func TestFlatten_DeepNesting(t *testing.T) {
	depth := 100000

	// Built directly: encoding/json caps nesting depth well below this.
	n := NewLeaf(42)
	for i := 0; i < depth; i++ {
		n = NewGroup(n)
	}
	if got := n.Flatten(); !reflect.DeepEqual(got, []int{42}) {
		t.Errorf("Expected [42], got %v", got)
	}
}

func TestParse_RejectsNonIntegerLeaves(t *testing.T) {
	for _, input := range []string{`[1,"two"]`, `[1,2.5]`, `[1,{"a":1}]`, `[1,null]`, `[true]`} {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("Expected error for %s, got nil", input)
		}
	}
}

func TestParse_RejectsDuplicateLeaves(t *testing.T) {
	_, err := Parse([]byte(`[[0,1],[2,1]]`))

	var dup *DuplicateLabelError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateLabelError, got: %v", err)
	}
	if dup.Label != 1 {
		t.Errorf("Expected duplicate label 1, got %d", dup.Label)
	}
}

func TestLevel(t *testing.T) {
	root := mustParse(t, sampleHierarchy)

	tests := []struct {
		path     []int
		expected []int
	}{
		{nil, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{[]int{0}, []int{0, 1}},
		{[]int{1}, []int{2, 3, 4, 5, 6, 7, 8, 9}},
		{[]int{1, 1, 3}, []int{6, 7, 8, 9}},
		{[]int{1, 1, 3, 2}, []int{8, 9}},
	}

	for _, tt := range tests {
		sub, err := root.Level(tt.path)
		if err != nil {
			t.Fatalf("Level(%v) failed: %v", tt.path, err)
		}
		if got := sub.Flatten(); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Level(%v) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func TestLevel_OutOfRange(t *testing.T) {
	root := mustParse(t, sampleHierarchy)

	for _, path := range [][]int{{2}, {-1}, {1, 5}, {0, 0, 0}} {
		_, err := root.Level(path)
		var idxErr *IndexError
		if !errors.As(err, &idxErr) {
			t.Errorf("Level(%v): expected IndexError, got %v", path, err)
		}
	}
}

func TestMarshalJSON_RoundTrip(t *testing.T) {
	root := mustParse(t, sampleHierarchy)
	data, err := root.MarshalJSON()
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != sampleHierarchy {
		t.Errorf("Expected %s, got %s", sampleHierarchy, data)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hierarchy.json")
	if err := os.WriteFile(path, []byte(sampleHierarchy), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	root, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load hierarchy: %v", err)
	}
	if root.Len() != 2 {
		t.Errorf("Expected 2 top-level groups, got %d", root.Len())
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
