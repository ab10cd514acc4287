package ensemble

import (
	"context"

	"github.com/FrenchMajesty/hierarchical-ensemble/dataset"
	"gonum.org/v1/gonum/mat"
)

// PredictionSource produces a model's class probabilities for every sample of
// split, as a split.Len() x classes matrix
type PredictionSource interface {
	Predict(ctx context.Context, model string, split dataset.Split, classes int) (*mat.Dense, error)
}
