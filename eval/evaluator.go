// Package eval contains the scoring criteria used to measure the predictions made on a fold.
package eval

import (
	"sort"
)

// Evaluator is an interface for scoring the predictions made on one fold against the true labels.
type Evaluator interface {
	Score(predicted, actual []float64) float64
	Name() string
}

// Outcome is what was predicted on one fold, and the score it received.
type Outcome struct {
	Fold      int
	Predicted []float64
	Actual    []float64
	Score     float64
}

// FoldMerger is implemented by evaluators that cannot be averaged across folds. Rather
// than merging fold scores, they accumulate statistics over every outcome of a run and
// compute the measure once.
type FoldMerger interface {
	MergeFolds(outcomes []Outcome) float64
}

// Evaluate scores predictions using supplied evaluation measurements.
func Evaluate(evaluators []Evaluator, predicted, actual []float64) map[string]float64 {
	scores := make(map[string]float64, len(evaluators))
	for _, evaluator := range evaluators {
		scores[evaluator.Name()] = evaluator.Score(predicted, actual)
	}
	return scores
}

// Evaluators is every measure that can be looked up by name.
var Evaluators = []Evaluator{
	Accuracy,
	ErrorRate,
	Precision,
	Recall,
	F1Measure,
	F05Measure,
	F3Measure,
	AUC,
	MeanSquaredError,
}

// Lookup finds an evaluator by its name.
func Lookup(name string) (Evaluator, bool) {
	for _, e := range Evaluators {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

// Names lists the names of the evaluators that can be looked up.
func Names() []string {
	names := make([]string, len(Evaluators))
	for i, e := range Evaluators {
		names[i] = e.Name()
	}
	sort.Strings(names)
	return names
}

func positive(label float64) bool {
	return label > 0
}
