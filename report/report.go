// Package report writes the artifacts of an ensemble evaluation.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/FrenchMajesty/hierarchical-ensemble/evaluate"
	"github.com/FrenchMajesty/hierarchical-ensemble/vote"
	"github.com/google/uuid"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SingleStats summarizes the accuracies of the individual models.
type SingleStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// EnsembleStats describes the best and the complete ensemble.
type EnsembleStats struct {
	BestEnsemble        string  `json:"best_ensemble"`
	BestEnsembleAcc     float64 `json:"best_ensemble_acc"`
	CompleteEnsembleAcc float64 `json:"complete_ensemble_acc"`
}

// Artifacts is the report of one evaluation run. Accuracies are percentages.
type Artifacts struct {
	RunID            string             `json:"run_id"`
	Config           any                `json:"config"`
	Models           []string           `json:"models"`
	SingleAccuracies map[string]float64 `json:"single_accuracies"`
	SingleAcc        SingleStats        `json:"single_acc"`
	Ensemble         EnsembleStats      `json:"ensemble"`
}

// NewArtifacts builds the report for a finished search over models.
func NewArtifacts(config any, models []string, res *vote.Result) *Artifacts {
	singles := make([]float64, len(res.Singles))
	byIndex := make(map[string]float64, len(res.Singles))
	for i, acc := range res.Singles {
		singles[i] = acc * 100
		byIndex[strconv.Itoa(i)] = acc * 100
	}
	mean, std := stat.PopMeanStdDev(singles, nil)

	return &Artifacts{
		RunID:            uuid.New().String(),
		Config:           config,
		Models:           models,
		SingleAccuracies: byIndex,
		SingleAcc:        SingleStats{Mean: mean, Std: std},
		Ensemble: EnsembleStats{
			BestEnsemble:        res.Best.String(),
			BestEnsembleAcc:     res.BestAccuracy * 100,
			CompleteEnsembleAcc: res.CompleteAccuracy * 100,
		},
	}
}

// Marshal encodes a with every object's keys sorted and a 4-space indent.
func Marshal(a *Artifacts) ([]byte, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	// Decoding into maps makes encoding/json emit every level in key order.
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to normalize report: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write stores the report at path.
func Write(path string, a *Artifacts) error {
	data, err := Marshal(a)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// SmoothedLabels averages a prediction with the one-hot encoding of labels.
func SmoothedLabels(pred *mat.Dense, labels []int, classes int) (*mat.Dense, error) {
	onehot, err := evaluate.OneHot(labels, classes)
	if err != nil {
		return nil, err
	}
	r, c := pred.Dims()
	if r != len(labels) || c != classes {
		return nil, fmt.Errorf("prediction is %dx%d, expected %dx%d", r, c, len(labels), classes)
	}

	var out mat.Dense
	out.Add(pred, onehot)
	out.Scale(0.5, &out)
	return &out, nil
}

// WriteMatrix stores m at path in NumPy .npy format.
func WriteMatrix(path string, m *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := npyio.Write(f, m); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// NonexistentPath returns path if nothing exists there, otherwise the first
// of "name-1.ext", "name-2.ext", ... that does not exist.
func NonexistentPath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
