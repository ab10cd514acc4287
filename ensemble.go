// Package ensemble evaluates averaged ensembles of image classifiers, with
// optional restriction of the label space to part of a class hierarchy.
package ensemble

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/FrenchMajesty/hierarchical-ensemble/adapters"
	"github.com/FrenchMajesty/hierarchical-ensemble/dataset"
	"github.com/FrenchMajesty/hierarchical-ensemble/hierarchy"
	"github.com/FrenchMajesty/hierarchical-ensemble/report"
	"github.com/FrenchMajesty/hierarchical-ensemble/vote"
	"github.com/facette/natsort"
)

// Evaluator scores every subset of a set of models on one dataset split
type Evaluator struct {
	cfg      Config
	provider dataset.Provider
	source   PredictionSource
}

// NewEvaluator creates a new Evaluator with the given configuration
func NewEvaluator(cfg Config) (*Evaluator, error) {
	cfg.applyDefaults()

	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("no models configured")
	}
	if len(cfg.Models) > vote.MaxModels {
		return nil, fmt.Errorf("%d models configured: %w", len(cfg.Models), vote.ErrTooManyModels)
	}

	var provider dataset.Provider
	if cfg.Provider != nil {
		provider = cfg.Provider
	} else {
		if cfg.Dataset.Path == "" {
			return nil, fmt.Errorf("dataset path is not set")
		}
		provider = &dataset.CIFAR100{
			Dir:          cfg.Dataset.Path,
			Mode:         dataset.LabelMode(cfg.Dataset.LabelMode),
			SubtractMean: cfg.Dataset.SubtractMean,
			MeanPath:     cfg.Dataset.MeanPath,
		}
	}

	var source PredictionSource
	if cfg.Source != nil {
		source = cfg.Source
	} else {
		switch cfg.Predictions.Source {
		case SourceNpy:
			source = adapters.NewNpyPredictionSource()
		case SourcePinecone:
			client, err := adapters.NewPineconePredictionSource(nil, nil, cfg.Predictions.Namespace)
			if err != nil {
				return nil, fmt.Errorf("failed to create default prediction source: %w", err)
			}
			source = client
		default:
			return nil, fmt.Errorf("unknown prediction source %q", cfg.Predictions.Source)
		}
	}

	return &Evaluator{
		cfg:      cfg,
		provider: provider,
		source:   source,
	}, nil
}

// Run loads the data, scores every model subset and writes the report and the
// smoothed labels
func (e *Evaluator) Run(ctx context.Context) (*Result, error) {
	data, err := e.provider.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	if err := data.Train.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training data: %w", err)
	}
	if err := data.Test.Validate(); err != nil {
		return nil, fmt.Errorf("invalid test data: %w", err)
	}

	if data.Train.Features, err = e.provider.Preprocess(data.Train.Features); err != nil {
		return nil, fmt.Errorf("failed to preprocess training data: %w", err)
	}
	if data.Test.Features, err = e.provider.Preprocess(data.Test.Features); err != nil {
		return nil, fmt.Errorf("failed to preprocess test data: %w", err)
	}

	train, test, classes, err := e.applyHierarchy(data)
	if err != nil {
		return nil, err
	}
	log.Printf("n_classes=%d", classes)

	train, val, err := train.TrainValSplit(e.cfg.Dataset.ValidationSplit, *e.cfg.Dataset.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split training data: %w", err)
	}
	log.Printf("train=%d validation=%d test=%d samples", train.Len(), val.Len(), test.Len())

	eval := test
	if e.cfg.EvaluateTrainingData {
		eval = train
	}
	if eval.Len() == 0 {
		return nil, fmt.Errorf("no samples left to evaluate with %d classes", classes)
	}

	models := append([]string(nil), e.cfg.Models...)
	natsort.Sort(models)
	log.Printf("Ensemble of %d models (%v)", len(models), models)

	preds := make([]vote.Prediction, len(models))
	for i, model := range models {
		log.Printf("Evaluate model %s...", model)
		m, err := e.source.Predict(ctx, model, eval, classes)
		if err != nil {
			return nil, fmt.Errorf("failed to get predictions of %s: %w", model, err)
		}
		preds[i] = vote.Prediction{Name: model, Matrix: m}
	}

	res, err := vote.Search(preds, eval.Labels, classes)
	if err != nil {
		return nil, fmt.Errorf("ensemble search failed: %w", err)
	}

	for i, acc := range res.Singles {
		log.Printf("Cl #%2d (%s): accuracy: %0.2f%%", i+1, models[i], acc*100)
	}
	for _, step := range res.Trace {
		log.Printf("Ensemble Accuracy: %0.2f%% (%s)", step.Accuracy*100, step.Subset)
	}

	artifacts := report.NewArtifacts(e.cfg, models, res)
	log.Printf("Mean single acc=%0.2f%% (std=%0.2f)", artifacts.SingleAcc.Mean, artifacts.SingleAcc.Std)
	log.Printf("Complete ensemble accuracy: %0.2f%%", artifacts.Ensemble.CompleteEnsembleAcc)

	smoothed, err := report.SmoothedLabels(res.BestMatrix, eval.Labels, classes)
	if err != nil {
		return nil, fmt.Errorf("failed to compute smoothed labels: %w", err)
	}
	if err := report.WriteMatrix(e.cfg.Output.SmoothedLabelsPath, smoothed); err != nil {
		return nil, err
	}
	if err := report.Write(e.cfg.Output.ReportPath, artifacts); err != nil {
		return nil, err
	}

	return &Result{
		Classes:            classes,
		Models:             models,
		Samples:            eval.Len(),
		Search:             res,
		Artifacts:          artifacts,
		ReportPath:         e.cfg.Output.ReportPath,
		SmoothedLabelsPath: e.cfg.Output.SmoothedLabelsPath,
	}, nil
}

// Close releases the prediction source if it holds a connection
func (e *Evaluator) Close() error {
	if c, ok := e.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// applyHierarchy restricts both splits to the configured part of the class
// hierarchy and renumbers their labels. Filtering always precedes relabelling.
func (e *Evaluator) applyHierarchy(data *dataset.Data) (train, test dataset.Split, classes int, err error) {
	ds := e.cfg.Dataset
	if ds.HierarchyPath == "" {
		return data.Train, data.Test, data.Classes, nil
	}

	root, err := hierarchy.Load(ds.HierarchyPath)
	if err != nil {
		return train, test, 0, err
	}
	if ds.Subset == nil && !ds.Coarse {
		return data.Train, data.Test, data.Classes, nil
	}

	node, err := root.Level(ds.Subset)
	if err != nil {
		return train, test, 0, fmt.Errorf("invalid hierarchy subset: %w", err)
	}
	remaining := node.Flatten()
	log.Printf("Remaining classes: %v", remaining)

	table := hierarchy.NewRemapTable(node)
	classes = len(remaining)
	if ds.Coarse {
		if node.IsLeaf() {
			return train, test, 0, fmt.Errorf("coarse labels need a group, subset %v selects a leaf", ds.Subset)
		}
		table = hierarchy.CoarseTable(node)
		classes = node.Len()
	}

	train, err = data.Train.FilterByClass(remaining).Relabel(table)
	if err != nil {
		return train, test, 0, fmt.Errorf("failed to relabel training data: %w", err)
	}
	test, err = data.Test.FilterByClass(remaining).Relabel(table)
	if err != nil {
		return train, test, 0, fmt.Errorf("failed to relabel test data: %w", err)
	}
	return train, test, classes, nil
}
