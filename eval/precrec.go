package eval

import (
	"fmt"
	"math"
)

type accuracyEvaluator struct{}
type errorRateEvaluator struct{}
type recallEvaluator struct{}
type precisionEvaluator struct{}

// FMeasure computes f-measure, with the beta parameter controlling the precision and recall trade-off.
//
// F-measure is not linear in its inputs, so averaging it per fold is biased when folds
// differ in class balance. Across folds it is computed once from the pooled confusion
// matrix (Forman & Scholz, 2010).
type FMeasure struct {
	beta float64
}

var (
	// Accuracy is the fraction of correct predictions.
	Accuracy = accuracyEvaluator{}
	// ErrorRate is the fraction of incorrect predictions.
	ErrorRate = errorRateEvaluator{}
	// Recall calculates recall.
	Recall = recallEvaluator{}
	// Precision calculates precision.
	Precision = precisionEvaluator{}

	// F1Measure is f-measure with beta=1.
	F1Measure = FMeasure{beta: 1}
	// F05Measure is f-measure with beta=0.5.
	F05Measure = FMeasure{beta: 0.5}
	// F3Measure is f-measure with beta=3.
	F3Measure = FMeasure{beta: 3}
)

// NewFMeasure creates an f-measure with an arbitrary beta.
func NewFMeasure(beta float64) FMeasure {
	return FMeasure{beta: beta}
}

func (accuracyEvaluator) Name() string {
	return "Accuracy"
}

func (accuracyEvaluator) Score(predicted, actual []float64) float64 {
	return NewConfusionMatrix(predicted, actual).Accuracy()
}

func (errorRateEvaluator) Name() string {
	return "ErrorRate"
}

func (errorRateEvaluator) Score(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	return 1 - NewConfusionMatrix(predicted, actual).Accuracy()
}

func (recallEvaluator) Name() string {
	return "Recall"
}

func (recallEvaluator) Score(predicted, actual []float64) float64 {
	return NewConfusionMatrix(predicted, actual).Recall()
}

// MergeFolds computes recall over the pooled predictions of every fold.
func (recallEvaluator) MergeFolds(outcomes []Outcome) float64 {
	return pooled(outcomes).Recall()
}

func (precisionEvaluator) Name() string {
	return "Precision"
}

func (precisionEvaluator) Score(predicted, actual []float64) float64 {
	return NewConfusionMatrix(predicted, actual).Precision()
}

// MergeFolds computes precision over the pooled predictions of every fold.
func (precisionEvaluator) MergeFolds(outcomes []Outcome) float64 {
	return pooled(outcomes).Precision()
}

func (f FMeasure) compute(m ConfusionMatrix) float64 {
	precision := m.Precision()
	recall := m.Recall()
	if precision == 0 || recall == 0 {
		return 0
	}
	betaSquared := math.Pow(f.beta, 2)
	return ((1 + betaSquared) * (precision * recall)) / ((betaSquared * precision) + recall)
}

// Score uses the beta parameter to compute f-measure.
func (f FMeasure) Score(predicted, actual []float64) float64 {
	return f.compute(NewConfusionMatrix(predicted, actual))
}

// MergeFolds computes f-measure once, from the confusion matrix pooled over every fold.
func (f FMeasure) MergeFolds(outcomes []Outcome) float64 {
	return f.compute(pooled(outcomes))
}

// Name calculates the name of the f-measure with beta parameter.
func (f FMeasure) Name() string {
	return fmt.Sprintf("F%vMeasure", f.beta)
}
