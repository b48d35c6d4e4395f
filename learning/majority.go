package learning

import (
	"github.com/hscells/crossval/dataset"
	"github.com/pkg/errors"
)

// MajorityClass predicts the most frequent label of its training set for every example.
// Ties are broken towards the smallest label.
type MajorityClass struct{}

func (MajorityClass) Name() string {
	return "majority"
}

func (MajorityClass) Train(data dataset.Provider, indices []int) (State, error) {
	if len(indices) == 0 {
		return nil, errors.Wrap(ErrDegenerateTrainingSet, "no training examples")
	}
	counts := make(map[float64]int)
	for _, idx := range indices {
		counts[data.Label(idx)]++
	}
	var (
		best  float64
		count int
	)
	for _, c := range dataset.Classes(data, indices) {
		if counts[c] > count {
			best, count = c, counts[c]
		}
	}
	return best, nil
}

func (MajorityClass) Predict(state State, data dataset.Provider, indices []int) ([]float64, error) {
	label, ok := state.(float64)
	if !ok {
		return nil, errors.Errorf("majority: unexpected state %T", state)
	}
	p := make([]float64, len(indices))
	for i := range p {
		p[i] = label
	}
	return p, nil
}

func (m MajorityClass) Clone() Model {
	return m
}
