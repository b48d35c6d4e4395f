package split

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
)

// Stratified preserves class proportions: the number of examples of any class
// in any two test sets differs by at most one.
type Stratified struct {
	labels []float64
	hash   uint64
}

// NewStratified creates a stratified strategy over the labels of the dataset being split.
func NewStratified(labels []float64) Stratified {
	h := fnv.New64a()
	b := make([]byte, 8)
	for _, l := range labels {
		binary.LittleEndian.PutUint64(b, math.Float64bits(l))
		h.Write(b)
	}
	return Stratified{
		labels: append([]float64(nil), labels...),
		hash:   h.Sum64(),
	}
}

// Name includes a hash of the labels, so caches never confuse two label sets.
func (s Stratified) Name() string {
	return fmt.Sprintf("stratified-%x", s.hash)
}

// Build deals each class round-robin, continuing from where the previous class
// stopped so fold sizes also stay within one of each other. Splitting fails when
// the labels do not describe n examples, when a label is NaN, or when no class has
// at least k members.
func (s Stratified) Build(n, k int, seed *int64) (Split, error) {
	if err := validate(s.Name(), n, k); err != nil {
		return nil, err
	}
	if len(s.labels) != n {
		return nil, &Error{Strategy: s.Name(), N: n, K: k, Reason: fmt.Sprintf("have labels for %d examples", len(s.labels))}
	}

	members := make(map[float64][]int)
	for i, l := range s.labels {
		// NaN never equals itself, so it cannot name a class.
		if math.IsNaN(l) {
			return nil, &Error{Strategy: s.Name(), N: n, K: k, Reason: fmt.Sprintf("label of example %d is NaN", i)}
		}
		members[l] = append(members[l], i)
	}
	classes := make([]float64, 0, len(members))
	feasible := false
	for c, m := range members {
		classes = append(classes, c)
		if len(m) >= k {
			feasible = true
		}
	}
	if !feasible {
		return nil, &Error{Strategy: s.Name(), N: n, K: k, Reason: "every class has fewer members than folds"}
	}
	sort.Float64s(classes)

	r := source(seed)
	tests := make([][]int, k)
	offset := 0
	for _, c := range classes {
		m := members[c]
		for _, j := range permutation(r, len(m)) {
			f := offset % k
			tests[f] = append(tests[f], m[j])
			offset++
		}
	}
	return fromTests(n, tests), nil
}
