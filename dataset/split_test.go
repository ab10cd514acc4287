package dataset

import (
	"reflect"
	"sort"
	"testing"

	"github.com/FrenchMajesty/hierarchical-ensemble/hierarchy"
)

func features(n int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return out
}

func TestFilterByClass(t *testing.T) {
	x := features(6)
	y := []int{3, 8, 1, 9, 8, 4}

	outX, outY, err := FilterByClass(x, y, []int{8, 9})
	if err != nil {
		t.Fatalf("FilterByClass failed: %v", err)
	}

	if !reflect.DeepEqual(outY, []int{8, 9, 8}) {
		t.Errorf("Expected labels [8 9 8], got %v", outY)
	}
	// output[i] corresponds to the i-th matching original sample
	wantX := [][]float32{{1}, {3}, {4}}
	if !reflect.DeepEqual(outX, wantX) {
		t.Errorf("Expected features %v, got %v", wantX, outX)
	}
	if !reflect.DeepEqual(y, []int{3, 8, 1, 9, 8, 4}) {
		t.Error("FilterByClass must not mutate its input")
	}
}

func TestFilterByClass_NeverGrows(t *testing.T) {
	y := []int{0, 1, 2, 3, 4, 5, 6, 7}
	for _, retained := range [][]int{nil, {0}, {1, 3, 5}, y, {42}} {
		_, outY, err := FilterByClass(features(len(y)), y, retained)
		if err != nil {
			t.Fatalf("retained %v: %v", retained, err)
		}
		if len(outY) > len(y) {
			t.Errorf("retained %v: output grew to %d", retained, len(outY))
		}
	}
}

func TestFilterByClass_LengthMismatch(t *testing.T) {
	_, _, err := FilterByClass(features(2), []int{0, 1, 2}, []int{2})
	if err == nil {
		t.Error("Expected an error for fewer feature rows than labels")
	}
}

func TestSplit_WithoutIndex(t *testing.T) {
	s := Split{Features: features(6), Labels: []int{3, 8, 1, 9, 8, 4}}

	if err := s.Validate(); err != nil {
		t.Fatalf("Expected a split without Index to be valid, got: %v", err)
	}

	filtered := s.FilterByClass([]int{8, 9})
	if !reflect.DeepEqual(filtered.Index, []int{1, 3, 4}) {
		t.Errorf("Expected index [1 3 4], got %v", filtered.Index)
	}

	train, val, err := s.TrainValSplit(0.5, 1)
	if err != nil {
		t.Fatalf("TrainValSplit failed: %v", err)
	}
	for _, part := range []Split{train, val} {
		for i, idx := range part.Index {
			if s.Labels[idx] != part.Labels[i] {
				t.Errorf("Sample %d has label %d, source %d has %d", i, part.Labels[i], idx, s.Labels[idx])
			}
		}
	}
}

func TestSplit_Validate(t *testing.T) {
	tests := []struct {
		name  string
		split Split
	}{
		{"short features", Split{Features: features(1), Labels: []int{0, 1}}},
		{"short index", Split{Labels: []int{0, 1}, Index: []int{0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.split.Validate(); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestSplit_FilterAndRelabel(t *testing.T) {
	s := NewSplit(features(5), []int{9, 2, 8, 8, 5})

	filtered := s.FilterByClass([]int{8, 9})
	if !reflect.DeepEqual(filtered.Index, []int{0, 2, 3}) {
		t.Errorf("Expected index [0 2 3], got %v", filtered.Index)
	}

	relabelled, err := filtered.Relabel(hierarchy.RemapTable{8: 0, 9: 1})
	if err != nil {
		t.Fatalf("Relabel failed: %v", err)
	}
	if !reflect.DeepEqual(relabelled.Labels, []int{1, 0, 0}) {
		t.Errorf("Expected labels [1 0 0], got %v", relabelled.Labels)
	}
	if !reflect.DeepEqual(filtered.Labels, []int{9, 8, 8}) {
		t.Error("Relabel must not mutate the source split")
	}

	if _, err := s.Relabel(hierarchy.RemapTable{8: 0, 9: 1}); err == nil {
		t.Error("Expected error relabelling an unfiltered split")
	}
}

func TestSplit_TrainValSplit(t *testing.T) {
	n := 50
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i % 5
	}
	s := NewSplit(features(n), labels)

	train, val, err := s.TrainValSplit(0.1, 42)
	if err != nil {
		t.Fatalf("TrainValSplit failed: %v", err)
	}
	if val.Len() != 5 || train.Len() != 45 {
		t.Fatalf("Expected 45/5 split, got %d/%d", train.Len(), val.Len())
	}

	all := append(append([]int{}, train.Index...), val.Index...)
	sort.Ints(all)
	for i, idx := range all {
		if idx != i {
			t.Fatalf("Split lost or duplicated sample %d", i)
		}
	}
	for i, idx := range val.Index {
		if val.Labels[i] != labels[idx] || val.Features[i][0] != float32(idx) {
			t.Errorf("Sample %d no longer matches its origin", idx)
		}
	}

	again, _, _ := s.TrainValSplit(0.1, 42)
	if !reflect.DeepEqual(train.Index, again.Index) {
		t.Error("Expected the same seed to give the same split")
	}
}

func TestSplit_TrainValSplitInvalid(t *testing.T) {
	s := NewSplit(features(3), []int{0, 1, 2})

	for _, f := range []float64{0, 1, -0.5, 0.99} {
		if _, _, err := s.TrainValSplit(f, 1); err == nil {
			t.Errorf("Expected error for fraction %v", f)
		}
	}
}
