package eval

import (
	"fmt"
)

// ThresholdEvaluator evaluates using an evaluator in the same manner, however
// it first turns real valued predictions into binary labels: 1 above the threshold, 0 otherwise.
type ThresholdEvaluator struct {
	Evaluator
	Threshold float64
}

func (t ThresholdEvaluator) binarise(predicted []float64) []float64 {
	b := make([]float64, len(predicted))
	for i, p := range predicted {
		if p > t.Threshold {
			b[i] = 1
		}
	}
	return b
}

func (t ThresholdEvaluator) Name() string {
	return fmt.Sprintf("%s@%v", t.Evaluator.Name(), t.Threshold)
}

func (t ThresholdEvaluator) Score(predicted, actual []float64) float64 {
	return t.Evaluator.Score(t.binarise(predicted), actual)
}

type thresholdMerger struct {
	ThresholdEvaluator
	merger FoldMerger
}

// MergeFolds binarises every outcome before handing them to the wrapped evaluator.
func (t thresholdMerger) MergeFolds(outcomes []Outcome) float64 {
	binary := make([]Outcome, len(outcomes))
	for i, o := range outcomes {
		o.Predicted = t.binarise(o.Predicted)
		binary[i] = o
	}
	return t.merger.MergeFolds(binary)
}

// NewThresholdEvaluator creates a new evaluator which wraps an existing evaluator.
// The result merges folds itself exactly when the wrapped evaluator does.
func NewThresholdEvaluator(evaluator Evaluator, threshold float64) Evaluator {
	t := ThresholdEvaluator{
		Evaluator: evaluator,
		Threshold: threshold,
	}
	if m, ok := evaluator.(FoldMerger); ok {
		return thresholdMerger{ThresholdEvaluator: t, merger: m}
	}
	return t
}
