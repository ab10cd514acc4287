package adapters

import (
	"context"
	"fmt"
	"os"

	"github.com/FrenchMajesty/hierarchical-ensemble/dataset"
	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// NpyPredictionSource reads one model's predictions from a .npy file whose
// path is the model name.
//
// The file holds either one row per evaluated sample, or one row per sample
// of the unfiltered split, in which case rows are picked through Split.Index.
type NpyPredictionSource struct{}

// NewNpyPredictionSource returns a file-backed prediction source
func NewNpyPredictionSource() *NpyPredictionSource {
	return &NpyPredictionSource{}
}

// Predict loads the prediction matrix stored at path model
func (s *NpyPredictionSource) Predict(ctx context.Context, model string, split dataset.Split, classes int) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := ReadMatrix(model)
	if err != nil {
		return nil, err
	}
	return selectRows(m, split, classes)
}

// ReadMatrix decodes a 2-D .npy array
func ReadMatrix(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open predictions %s", path)
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode predictions %s", path)
	}
	return &m, nil
}

func selectRows(m *mat.Dense, split dataset.Split, classes int) (*mat.Dense, error) {
	if split.Len() == 0 {
		return nil, fmt.Errorf("no samples to select predictions for")
	}
	rows, cols := m.Dims()
	if cols != classes {
		return nil, fmt.Errorf("predictions have %d columns, expected %d classes", cols, classes)
	}
	if rows == split.Len() {
		return m, nil
	}
	if split.Index == nil {
		return nil, fmt.Errorf("predictions have %d rows for %d samples", rows, split.Len())
	}

	out := mat.NewDense(split.Len(), cols, nil)
	for i := 0; i < split.Len(); i++ {
		idx := split.SourceIndex(i)
		if idx < 0 || idx >= rows {
			return nil, fmt.Errorf("predictions have %d rows, sample %d has source index %d", rows, i, idx)
		}
		out.SetRow(i, m.RawRowView(idx))
	}
	return out, nil
}
