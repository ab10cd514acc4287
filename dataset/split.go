// Package dataset holds labelled samples and the class-subset operations
// applied to them before evaluation.
package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/FrenchMajesty/hierarchical-ensemble/hierarchy"
)

// Split is an ordered set of samples. Index holds each sample's position in
// the split it was originally loaded as, so it survives filtering. A nil Index
// means the samples are in their original positions.
type Split struct {
	Features [][]float32
	Labels   []int
	Index    []int
}

// NewSplit builds a split whose Index is 0..len(labels)-1.
func NewSplit(features [][]float32, labels []int) Split {
	index := make([]int, len(labels))
	for i := range index {
		index[i] = i
	}
	return Split{Features: features, Labels: labels, Index: index}
}

// Len returns the number of samples.
func (s Split) Len() int { return len(s.Labels) }

// SourceIndex returns the original position of sample i.
func (s Split) SourceIndex(i int) int {
	if s.Index == nil {
		return i
	}
	return s.Index[i]
}

// Validate checks that Features and Index, when set, have one entry per label.
func (s Split) Validate() error {
	if s.Features != nil && len(s.Features) != len(s.Labels) {
		return fmt.Errorf("split has %d feature rows for %d labels", len(s.Features), len(s.Labels))
	}
	if s.Index != nil && len(s.Index) != len(s.Labels) {
		return fmt.Errorf("split has %d index entries for %d labels", len(s.Index), len(s.Labels))
	}
	return nil
}

// FilterByClass keeps the (feature, label) pairs whose label is in retained,
// in their original order. The inputs are not modified. features may be nil.
func FilterByClass(features [][]float32, labels []int, retained []int) ([][]float32, []int, error) {
	if features != nil && len(features) != len(labels) {
		return nil, nil, fmt.Errorf("%d feature rows for %d labels", len(features), len(labels))
	}
	keep := toSet(retained)

	var (
		outX [][]float32
		outY []int
	)
	for i, l := range labels {
		if _, ok := keep[l]; !ok {
			continue
		}
		if features != nil {
			outX = append(outX, features[i])
		}
		outY = append(outY, l)
	}
	return outX, outY, nil
}

// FilterByClass returns the samples of s whose label is in retained. s must
// pass Validate.
func (s Split) FilterByClass(retained []int) Split {
	keep := toSet(retained)

	var out Split
	for i, l := range s.Labels {
		if _, ok := keep[l]; !ok {
			continue
		}
		if s.Features != nil {
			out.Features = append(out.Features, s.Features[i])
		}
		out.Labels = append(out.Labels, l)
		out.Index = append(out.Index, s.SourceIndex(i))
	}
	return out
}

// Relabel returns a copy of s with its labels rewritten through table.
func (s Split) Relabel(table hierarchy.RemapTable) (Split, error) {
	labels, err := table.Apply(s.Labels)
	if err != nil {
		return Split{}, err
	}
	return Split{Features: s.Features, Labels: labels, Index: s.Index}, nil
}

// TrainValSplit shuffles s with a fixed seed and holds out the given fraction
// of samples (rounded up) as a validation split.
func (s Split) TrainValSplit(fraction float64, seed uint64) (train, val Split, err error) {
	if fraction <= 0 || fraction >= 1 {
		return Split{}, Split{}, fmt.Errorf("validation fraction %v must be in (0, 1)", fraction)
	}

	n := s.Len()
	nVal := int(math.Ceil(float64(n) * fraction))
	if nVal >= n {
		return Split{}, Split{}, fmt.Errorf("cannot hold out %d of %d samples", nVal, n)
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return s.take(perm[nVal:]), s.take(perm[:nVal]), nil
}

func (s Split) take(idx []int) Split {
	out := Split{
		Labels: make([]int, len(idx)),
		Index:  make([]int, len(idx)),
	}
	if s.Features != nil {
		out.Features = make([][]float32, len(idx))
	}
	for i, j := range idx {
		if s.Features != nil {
			out.Features[i] = s.Features[j]
		}
		out.Labels[i] = s.Labels[j]
		out.Index[i] = s.SourceIndex(j)
	}
	return out
}

func toSet(labels []int) map[int]struct{} {
	set := make(map[int]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}
