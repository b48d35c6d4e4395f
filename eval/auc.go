package eval

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"sort"
)

type aucEvaluator struct{}
type mseEvaluator struct{}

var (
	// AUC is the area under the ROC curve of real valued predictions, computed as the
	// probability that a random positive is ranked above a random negative (ties count half).
	// A fold without both classes has no ROC curve and scores 0.5.
	AUC = aucEvaluator{}
	// MeanSquaredError is the mean of the squared differences between predictions and labels.
	MeanSquaredError = mseEvaluator{}
)

func (aucEvaluator) Name() string {
	return "AUC"
}

func (aucEvaluator) Score(predicted, actual []float64) float64 {
	n := len(actual)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return predicted[order[i]] < predicted[order[j]]
	})

	// Average ranks over runs of tied predictions.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && predicted[order[j+1]] == predicted[order[i]] {
			j++
		}
		r := float64(i+j)/2 + 1
		for x := i; x <= j; x++ {
			ranks[order[x]] = r
		}
		i = j + 1
	}

	var pos, neg, sum float64
	for i, a := range actual {
		if positive(a) {
			pos++
			sum += ranks[i]
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}
	return (sum - pos*(pos+1)/2) / (pos * neg)
}

func (mseEvaluator) Name() string {
	return "MSE"
}

func (mseEvaluator) Score(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	diff := make([]float64, len(actual))
	floats.SubTo(diff, predicted, actual)
	floats.Mul(diff, diff)
	return stat.Mean(diff, nil)
}
