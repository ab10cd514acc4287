package ensemble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/FrenchMajesty/hierarchical-ensemble/dataset"
	"github.com/FrenchMajesty/hierarchical-ensemble/report"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultValidationSplit is the fraction of training samples held out for validation
	DefaultValidationSplit = 0.10

	// DefaultSeed seeds the train/validation shuffle
	DefaultSeed = 42

	// DefaultReportPath is used when the config was not loaded from a file
	DefaultReportPath = "./ensemble.json"

	// DefaultSmoothedLabelsName is the file name of the smoothed-labels artifact
	DefaultSmoothedLabelsName = "smoothed_labels.npy"

	// SourceNpy reads predictions from one .npy file per model
	SourceNpy = "npy"

	// SourcePinecone reads predictions from a Pinecone namespace
	SourcePinecone = "pinecone"
)

// DatasetConfig describes where samples come from and which classes are kept
type DatasetConfig struct {
	Path          string `yaml:"path" json:"path"`
	LabelMode     string `yaml:"label_mode" json:"label_mode"`
	SubtractMean  bool   `yaml:"subtract_mean" json:"subtract_mean"`
	MeanPath      string `yaml:"mean_path,omitempty" json:"mean_path,omitempty"`
	HierarchyPath string `yaml:"hierarchy_path,omitempty" json:"hierarchy_path,omitempty"`

	// Subset is a path of child indices into the hierarchy. Nil keeps every class.
	Subset []int `yaml:"subset,omitempty" json:"subset,omitempty"`

	// Coarse maps every leaf to its top-level group instead of numbering leaves
	Coarse bool `yaml:"coarse" json:"coarse"`

	// ValidationSplit must lie in (0, 1); zero selects DefaultValidationSplit
	ValidationSplit float64 `yaml:"validation_split" json:"validation_split"`

	// Seed is nil when unset, so an explicit seed of 0 is kept
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// PredictionsConfig selects the model store
type PredictionsConfig struct {
	Source    string `yaml:"source" json:"source"`
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
}

// OutputConfig holds the artifact locations
type OutputConfig struct {
	ReportPath         string `yaml:"report_path" json:"report_path"`
	SmoothedLabelsPath string `yaml:"smoothed_labels_path" json:"smoothed_labels_path"`
}

// Config holds configuration for the Evaluator
type Config struct {
	Dataset     DatasetConfig     `yaml:"dataset" json:"dataset"`
	Models      []string          `yaml:"models" json:"models"`
	Predictions PredictionsConfig `yaml:"predictions" json:"predictions"`
	Output      OutputConfig      `yaml:"output" json:"output"`

	// EvaluateTrainingData scores the ensemble on the training split instead of the test split
	EvaluateTrainingData bool `yaml:"evaluate_training_data" json:"evaluate_training_data"`

	// Provider loads the dataset. If nil, uses CIFAR-100 from Dataset.Path.
	Provider dataset.Provider `yaml:"-" json:"-"`

	// Source produces model predictions. If nil, chosen from Predictions.Source.
	Source PredictionSource `yaml:"-" json:"-"`
}

// LoadConfig reads a YAML config. Relative paths are resolved against the
// directory of the config file. Default artifact paths never point at an
// existing file, so reruns keep earlier results.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	if cfg.Output.ReportPath == "" {
		cfg.Output.ReportPath = report.NonexistentPath(strings.TrimSuffix(abs, filepath.Ext(abs)) + ".json")
	}
	if cfg.Output.SmoothedLabelsPath == "" {
		cfg.Output.SmoothedLabelsPath = report.NonexistentPath(filepath.Join(dir, DefaultSmoothedLabelsName))
	}
	cfg.resolvePaths(dir)
	cfg.applyDefaults()

	return &cfg, nil
}

// resolvePaths makes every relative path absolute with respect to dir
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{
		&c.Dataset.Path,
		&c.Dataset.MeanPath,
		&c.Dataset.HierarchyPath,
		&c.Output.ReportPath,
		&c.Output.SmoothedLabelsPath,
	} {
		*p = absolute(dir, *p)
	}

	if c.Predictions.Source == "" || c.Predictions.Source == SourceNpy {
		for i := range c.Models {
			c.Models[i] = absolute(dir, c.Models[i])
		}
	}
}

func absolute(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(dir, p))
}

// applyDefaults fills in default values for unset config fields
func (c *Config) applyDefaults() {
	if c.Dataset.LabelMode == "" {
		c.Dataset.LabelMode = string(dataset.LabelFine)
	}
	if c.Dataset.ValidationSplit == 0 {
		c.Dataset.ValidationSplit = DefaultValidationSplit
	}
	if c.Dataset.Seed == nil {
		seed := uint64(DefaultSeed)
		c.Dataset.Seed = &seed
	}
	if c.Predictions.Source == "" {
		c.Predictions.Source = SourceNpy
	}
	if c.Output.ReportPath == "" {
		c.Output.ReportPath = DefaultReportPath
	}
	if c.Output.SmoothedLabelsPath == "" {
		c.Output.SmoothedLabelsPath = DefaultSmoothedLabelsName
	}
}
