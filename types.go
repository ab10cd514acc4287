package ensemble

import (
	"github.com/FrenchMajesty/hierarchical-ensemble/report"
	"github.com/FrenchMajesty/hierarchical-ensemble/vote"
)

// Result represents the outcome of one evaluation run
type Result struct {
	// Classes is the number of classes after hierarchy handling
	Classes int

	// Models are the evaluated model names, in search order
	Models []string

	// Samples is the number of evaluated samples
	Samples int

	// Search holds the per-model and per-subset accuracies
	Search *vote.Result

	// Artifacts is the report that was written to ReportPath
	Artifacts *report.Artifacts

	ReportPath         string
	SmoothedLabelsPath string
}
