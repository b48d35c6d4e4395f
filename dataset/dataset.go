// Package dataset contains the examples a model is cross-validated against, and ways of loading them.
package dataset

import (
	"github.com/pkg/errors"
	"github.com/xtgo/set"
	"sort"
)

// Provider gives indexed access to an ordered collection of labelled examples.
// A provider must not change while it is being evaluated.
type Provider interface {
	Len() int
	Features(i int) []float64
	Label(i int) float64
}

// ErrMismatch is returned when features and labels cannot be paired up.
var ErrMismatch = errors.New("features and labels do not match")

// Dataset is an in-memory Provider of dense feature vectors.
type Dataset struct {
	features [][]float64
	labels   []float64
	dim      int
}

// New creates a dataset out of parallel slices of feature vectors and labels.
// Every feature vector must have the same dimension.
func New(features [][]float64, labels []float64) (*Dataset, error) {
	if len(features) != len(labels) {
		return nil, errors.Wrapf(ErrMismatch, "%d feature vectors, %d labels", len(features), len(labels))
	}
	d := &Dataset{
		features: make([][]float64, len(features)),
		labels:   make([]float64, len(labels)),
	}
	for i, f := range features {
		if i == 0 {
			d.dim = len(f)
		} else if len(f) != d.dim {
			return nil, errors.Wrapf(ErrMismatch, "example %d has dimension %d, expected %d", i, len(f), d.dim)
		}
		d.features[i] = append([]float64(nil), f...)
	}
	copy(d.labels, labels)
	return d, nil
}

// Len is the number of examples.
func (d *Dataset) Len() int { return len(d.labels) }

// Features is the feature vector of example i.
func (d *Dataset) Features(i int) []float64 { return d.features[i] }

// Label is the label of example i.
func (d *Dataset) Label(i int) float64 { return d.labels[i] }

// Dim is the dimension of the feature vectors.
func (d *Dataset) Dim() int { return d.dim }

// Labels gets every label of a provider in example order.
func Labels(p Provider) []float64 {
	l := make([]float64, p.Len())
	for i := range l {
		l[i] = p.Label(i)
	}
	return l
}

// Classes is the sorted set of distinct labels among the examples at indices.
// A nil indices means every example.
func Classes(p Provider, indices []int) []float64 {
	var c sort.Float64Slice
	if indices == nil {
		c = Labels(p)
	} else {
		c = make(sort.Float64Slice, len(indices))
		for i, idx := range indices {
			c[i] = p.Label(idx)
		}
	}
	sort.Sort(c)
	n := set.Uniq(c)
	return c[:n]
}
