// Package vote searches every non-empty subset of a small set of models for
// the averaged prediction with the highest top-1 accuracy.
//
// The search is exhaustive: it evaluates 2^N-1 subsets, each costing
// O(samples * classes * N). N is therefore capped at MaxModels.
package vote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/FrenchMajesty/hierarchical-ensemble/evaluate"
	"gonum.org/v1/gonum/mat"
)

// MaxModels bounds the number of models Search accepts.
const MaxModels = 16

var (
	// ErrNoModels is returned when Search is given no predictions.
	ErrNoModels = errors.New("vote: no model predictions")

	// ErrTooManyModels is returned when exhaustive search would exceed MaxModels.
	ErrTooManyModels = fmt.Errorf("vote: more than %d models", MaxModels)
)

// Prediction is one model's samples x classes probability matrix.
type Prediction struct {
	Name   string
	Matrix *mat.Dense
}

// Subset is a set of model indices out of N models. Model i corresponds to
// character i of String(), the zero-padded binary form of the mask.
type Subset struct {
	mask uint32
	n    int
}

// NewSubset returns the subset containing the given model indices.
func NewSubset(n int, members ...int) Subset {
	s := Subset{n: n}
	for _, i := range members {
		s.mask |= 1 << uint(n-1-i)
	}
	return s
}

// Contains reports whether model i is in the subset.
func (s Subset) Contains(i int) bool {
	return s.mask&(1<<uint(s.n-1-i)) != 0
}

// Members returns the included model indices in ascending order.
func (s Subset) Members() []int {
	var members []int
	for i := 0; i < s.n; i++ {
		if s.Contains(i) {
			members = append(members, i)
		}
	}
	return members
}

// Size returns the number of included models.
func (s Subset) Size() int {
	return len(s.Members())
}

// String renders the subset as a bitstring of length N, '1' meaning included.
func (s Subset) String() string {
	var b strings.Builder
	for i := 0; i < s.n; i++ {
		if s.Contains(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Step records one subset that improved on every subset searched before it.
type Step struct {
	Subset   Subset
	Accuracy float64
}

// Result is the outcome of Search. Accuracies are fractions in [0, 1].
type Result struct {
	// Singles holds each model's own accuracy, in input order
	Singles []float64

	// Best is the first subset found with the highest accuracy
	Best         Subset
	BestAccuracy float64

	// BestMatrix is the averaged prediction of Best
	BestMatrix *mat.Dense

	// CompleteAccuracy is the accuracy of averaging all models
	CompleteAccuracy float64

	// Trace lists every improvement in the order it was found
	Trace []Step
}

// Search evaluates every non-empty subset of preds against labels and keeps
// the first subset reaching the maximum accuracy.
func Search(preds []Prediction, labels []int, classes int) (*Result, error) {
	n := len(preds)
	if n == 0 {
		return nil, ErrNoModels
	}
	if n > MaxModels {
		return nil, ErrTooManyModels
	}

	for _, p := range preds {
		if p.Matrix == nil {
			return nil, fmt.Errorf("vote: model %q has no prediction matrix", p.Name)
		}
		r, c := p.Matrix.Dims()
		if r != len(labels) || c != classes {
			return nil, fmt.Errorf("vote: model %q predicted %dx%d, expected %dx%d", p.Name, r, c, len(labels), classes)
		}
	}

	result := &Result{
		Singles:      make([]float64, n),
		BestAccuracy: -1,
	}

	for i, p := range preds {
		_, acc, err := evaluate.Evaluate(labels, p.Matrix, classes)
		if err != nil {
			return nil, fmt.Errorf("vote: model %q: %w", p.Name, err)
		}
		result.Singles[i] = acc
	}

	complete := uint32(1)<<uint(n) - 1
	for x := uint32(1); x <= complete; x++ {
		subset := Subset{mask: x, n: n}
		avg := Average(preds, subset)

		_, acc, err := evaluate.Evaluate(labels, avg, classes)
		if err != nil {
			return nil, fmt.Errorf("vote: subset %s: %w", subset, err)
		}

		if acc > result.BestAccuracy {
			result.Best = subset
			result.BestAccuracy = acc
			result.BestMatrix = avg
			result.Trace = append(result.Trace, Step{Subset: subset, Accuracy: acc})
		}
		if x == complete {
			result.CompleteAccuracy = acc
		}
	}

	return result, nil
}

// Average returns the element-wise mean of the predictions in subset.
func Average(preds []Prediction, subset Subset) *mat.Dense {
	var sum mat.Dense
	members := subset.Members()
	for _, i := range members {
		if sum.IsEmpty() {
			sum.CloneFrom(preds[i].Matrix)
			continue
		}
		sum.Add(&sum, preds[i].Matrix)
	}
	sum.Scale(1/float64(len(members)), &sum)
	return &sum
}
