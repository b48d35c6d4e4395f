// Package stats merges fold scores into run scores, and run scores into a summary.
package stats

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoScores is returned when there is nothing to merge.
var ErrNoScores = errors.New("no scores to merge")

// Aggregator merges the scores of the folds of a run, and the scores of the runs of an evaluation.
type Aggregator interface {
	MergeFolds(scores []float64) (float64, error)
	MergeRuns(scores []float64) (mean, stdDev float64, err error)
}

// Arithmetic merges folds by their mean, and runs by their mean and sample
// standard deviation. It is only appropriate for measures that are linear across folds.
var Arithmetic = arithmetic{}

type arithmetic struct{}

func (arithmetic) MergeFolds(scores []float64) (float64, error) {
	if len(scores) == 0 {
		return 0, errors.Wrap(ErrNoScores, "merging folds")
	}
	return Mean(scores), nil
}

// MergeRuns has a standard deviation of zero for a single run.
func (arithmetic) MergeRuns(scores []float64) (float64, float64, error) {
	switch len(scores) {
	case 0:
		return 0, 0, errors.Wrap(ErrNoScores, "merging runs")
	case 1:
		return scores[0], 0, nil
	}
	mean, std := stat.MeanStdDev(scores, nil)
	return clamp(mean, scores), std, nil
}

// Mean is the arithmetic mean of scores, kept within their range.
func Mean(scores []float64) float64 {
	return clamp(stat.Mean(scores, nil), scores)
}

// clamp keeps rounding error from pushing a mean outside the scores it summarises.
func clamp(mean float64, scores []float64) float64 {
	if min := floats.Min(scores); mean < min {
		return min
	}
	if max := floats.Max(scores); mean > max {
		return max
	}
	return mean
}
