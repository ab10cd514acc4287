// Package evaluate scores class-probability predictions against true labels.
package evaluate

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ConfusionMatrix counts samples by true label (row) and predicted label (column).
type ConfusionMatrix struct {
	classes int
	cells   []int
}

// NewConfusionMatrix returns an empty classes x classes matrix.
func NewConfusionMatrix(classes int) *ConfusionMatrix {
	return &ConfusionMatrix{
		classes: classes,
		cells:   make([]int, classes*classes),
	}
}

// Classes returns the matrix dimension.
func (c *ConfusionMatrix) Classes() int { return c.classes }

// At returns the number of samples with true label i predicted as j.
func (c *ConfusionMatrix) At(i, j int) int {
	return c.cells[i*c.classes+j]
}

// Add records one sample.
func (c *ConfusionMatrix) Add(truth, predicted int) {
	c.cells[truth*c.classes+predicted]++
}

// Trace returns the number of correctly predicted samples.
func (c *ConfusionMatrix) Trace() int {
	sum := 0
	for i := 0; i < c.classes; i++ {
		sum += c.At(i, i)
	}
	return sum
}

// Total returns the number of recorded samples.
func (c *ConfusionMatrix) Total() int {
	sum := 0
	for _, v := range c.cells {
		sum += v
	}
	return sum
}

// Accuracy returns Trace()/Total(), or 0 for an empty matrix.
func (c *ConfusionMatrix) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c.Trace()) / float64(total)
}

// Evaluate builds the confusion matrix of the argmax of each prediction row
// against labels and returns it with the top-1 accuracy.
func Evaluate(labels []int, pred mat.Matrix, classes int) (*ConfusionMatrix, float64, error) {
	rows, cols := pred.Dims()
	if rows != len(labels) {
		return nil, 0, fmt.Errorf("prediction has %d rows for %d labels", rows, len(labels))
	}
	if cols != classes {
		return nil, 0, fmt.Errorf("prediction has %d columns, expected %d classes", cols, classes)
	}

	cm := NewConfusionMatrix(classes)
	row := make([]float64, cols)
	for i, truth := range labels {
		if truth < 0 || truth >= classes {
			return nil, 0, fmt.Errorf("label %d at sample %d is outside [0, %d)", truth, i, classes)
		}
		cm.Add(truth, floats.MaxIdx(mat.Row(row, i, pred)))
	}
	return cm, cm.Accuracy(), nil
}

// OneHot returns a len(labels) x classes matrix with a single 1 per row.
func OneHot(labels []int, classes int) (*mat.Dense, error) {
	m := mat.NewDense(len(labels), classes, nil)
	for i, l := range labels {
		if l < 0 || l >= classes {
			return nil, fmt.Errorf("label %d at sample %d is outside [0, %d)", l, i, classes)
		}
		m.Set(i, l, 1)
	}
	return m, nil
}
