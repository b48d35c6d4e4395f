// Package split partitions example indices into the folds of a cross-validation run.
package split

import (
	"fmt"
	"github.com/pkg/errors"
	"github.com/xtgo/set"
	"math/rand"
	"sort"
)

// ErrSplitting matches every error produced while building a split.
var ErrSplitting = errors.New("splitting error")

// Error describes why a strategy could not partition a dataset.
type Error struct {
	Strategy string
	N, K     int
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: cannot split %d examples into %d folds: %s", e.Strategy, e.N, e.K, e.Reason)
}

// Is reports whether target is ErrSplitting.
func (e *Error) Is(target error) bool {
	return target == ErrSplitting
}

// Fold is one train/test partition. Both index sets are sorted ascending.
type Fold struct {
	Train []int
	Test  []int
}

// Split is the ordered sequence of folds produced by one call to Build.
type Split []Fold

// Strategy partitions n examples into k folds. A non-nil seed must produce
// the same split for the same n and k; a nil seed draws from the global source.
type Strategy interface {
	Build(n, k int, seed *int64) (Split, error)
	Name() string
}

// Seed is a convenience for taking the address of a seed value.
func Seed(s int64) *int64 {
	return &s
}

func validate(name string, n, k int) error {
	if k < 2 {
		return &Error{Strategy: name, N: n, K: k, Reason: "at least two folds are required"}
	}
	if k > n {
		return &Error{Strategy: name, N: n, K: k, Reason: "more folds than examples"}
	}
	return nil
}

func source(seed *int64) *rand.Rand {
	if seed == nil {
		return nil
	}
	return rand.New(rand.NewSource(*seed))
}

func permutation(r *rand.Rand, n int) []int {
	if r == nil {
		return rand.Perm(n)
	}
	return r.Perm(n)
}

// complement is every index in [0, n) that is not in the sorted slice test.
func complement(n int, test []int) []int {
	data := make(sort.IntSlice, n, n+len(test))
	for i := range data {
		data[i] = i
	}
	data = append(data, test...)
	size := set.Diff(data, n)
	return append([]int(nil), data[:size]...)
}

// fromTests builds a split out of k test sets.
func fromTests(n int, tests [][]int) Split {
	s := make(Split, len(tests))
	for i, test := range tests {
		sort.Ints(test)
		s[i] = Fold{
			Train: complement(n, test),
			Test:  test,
		}
	}
	return s
}

// Check verifies that a split partitions [0, n): test sets are pairwise disjoint,
// together cover every index, and each fold trains on exactly the complement of its test set.
func Check(s Split, n int) error {
	seen := make(sort.IntSlice, 0, n)
	for i, f := range s {
		if !sort.IntsAreSorted(f.Test) || !sort.IntsAreSorted(f.Train) {
			return errors.Errorf("fold %d is not sorted", i)
		}
		for _, idx := range f.Test {
			if idx < 0 || idx >= n {
				return errors.Errorf("fold %d: test index %d out of range", i, idx)
			}
		}

		data := append(append(sort.IntSlice{}, seen...), f.Test...)
		if set.IsInter(data, len(seen)) {
			return errors.Errorf("fold %d: test set overlaps an earlier fold", i)
		}
		size := set.Union(data, len(seen))
		seen = append(sort.IntSlice(nil), data[:size]...)

		data = append(append(sort.IntSlice{}, f.Train...), f.Test...)
		if set.IsInter(data, len(f.Train)) {
			return errors.Errorf("fold %d: train and test sets overlap", i)
		}
		if len(f.Train)+len(f.Test) != n {
			return errors.Errorf("fold %d: train and test sets cover %d of %d examples", i, len(f.Train)+len(f.Test), n)
		}
	}
	if len(seen) != n {
		return errors.Errorf("test sets cover %d of %d examples", len(seen), n)
	}
	return nil
}

// Copy is a deep copy of a split.
func (s Split) Copy() Split {
	c := make(Split, len(s))
	for i, f := range s {
		c[i] = Fold{
			Train: append([]int(nil), f.Train...),
			Test:  append([]int(nil), f.Test...),
		}
	}
	return c
}
