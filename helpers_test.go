package crossval_test

import (
	"github.com/hscells/crossval/dataset"
	"github.com/hscells/crossval/eval"
	"github.com/hscells/crossval/learning"
	"github.com/hscells/crossval/split"
	"github.com/pkg/errors"
	"io"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var quiet = log.New(io.Discard, "", 0)

func newDataset(t *testing.T, features [][]float64, labels []float64) *dataset.Dataset {
	t.Helper()
	d, err := dataset.New(features, labels)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// tenExamples has six negatives and four positives.
func tenExamples(t *testing.T) *dataset.Dataset {
	labels := []float64{0, 1, 0, 0, 1, 0, 1, 0, 0, 1}
	features := make([][]float64, len(labels))
	for i := range features {
		features[i] = []float64{float64(i)}
	}
	return newDataset(t, features, labels)
}

// blobs are two noisy, overlapping clusters.
func blobs(t *testing.T, n int, seed int64) *dataset.Dataset {
	r := rand.New(rand.NewSource(seed))
	features := make([][]float64, n)
	labels := make([]float64, n)
	for i := range features {
		c := float64(i % 2)
		features[i] = []float64{c*1.5 + r.NormFloat64(), c*1.5 + r.NormFloat64()}
		labels[i] = c
	}
	return newDataset(t, features, labels)
}

// countingModel counts how often it is locked and unlocked.
type countingModel struct {
	learning.KernelNearestCentroid
	locks, unlocks int32
}

func newCountingModel() *countingModel {
	return &countingModel{KernelNearestCentroid: learning.NewKernelNearestCentroid(learning.Gaussian{Width: 1})}
}

func (m *countingModel) Lock(data dataset.Provider) (learning.Locked, error) {
	atomic.AddInt32(&m.locks, 1)
	return m.KernelNearestCentroid.Lock(data)
}

func (m *countingModel) Unlock(l learning.Locked) error {
	atomic.AddInt32(&m.unlocks, 1)
	return m.KernelNearestCentroid.Unlock(l)
}

func (m *countingModel) balanced(t *testing.T, locks int32) {
	t.Helper()
	if l, u := atomic.LoadInt32(&m.locks), atomic.LoadInt32(&m.unlocks); l != locks || u != locks {
		t.Fatalf("expected %d locks and unlocks, got %d locks and %d unlocks", locks, l, u)
	}
}

var errBroken = errors.New("broken model")

// failingModel never trains.
type failingModel struct{}

func (failingModel) Name() string { return "failing" }

func (failingModel) Train(dataset.Provider, []int) (learning.State, error) {
	return nil, errBroken
}

func (failingModel) Predict(learning.State, dataset.Provider, []int) ([]float64, error) {
	return nil, errBroken
}

// panicModel panics while training.
type panicModel struct{ failingModel }

func (panicModel) Train(dataset.Provider, []int) (learning.State, error) {
	panic("boom")
}

// echoModel predicts the first feature of each example.
type echoModel struct{}

func (echoModel) Name() string { return "echo" }

func (echoModel) Train(dataset.Provider, []int) (learning.State, error) {
	return nil, nil
}

func (echoModel) Predict(_ learning.State, data dataset.Provider, indices []int) ([]float64, error) {
	p := make([]float64, len(indices))
	for i, idx := range indices {
		p[i] = data.Features(idx)[0]
	}
	return p, nil
}

func (m echoModel) Clone() learning.Model { return m }

// slowModel takes a while to train.
type slowModel struct {
	learning.MajorityClass
	d time.Duration
}

func (m slowModel) Train(data dataset.Provider, indices []int) (learning.State, error) {
	time.Sleep(m.d)
	return m.MajorityClass.Train(data, indices)
}

func (m slowModel) Clone() learning.Model { return m }

// blockingModel trains once it is released.
type blockingModel struct {
	learning.MajorityClass
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (m *blockingModel) Train(data dataset.Provider, indices []int) (learning.State, error) {
	m.once.Do(func() { close(m.started) })
	<-m.release
	return m.MajorityClass.Train(data, indices)
}

func (m *blockingModel) Clone() learning.Model { return m }

// exclusiveModel cannot be cloned, and records whether it was ever trained concurrently.
type exclusiveModel struct {
	base       learning.MajorityClass
	active     int32
	concurrent int32
}

func (m *exclusiveModel) Name() string { return "exclusive" }

func (m *exclusiveModel) Predict(state learning.State, data dataset.Provider, indices []int) ([]float64, error) {
	return m.base.Predict(state, data, indices)
}

func (m *exclusiveModel) Train(data dataset.Provider, indices []int) (learning.State, error) {
	if atomic.AddInt32(&m.active, 1) > 1 {
		atomic.StoreInt32(&m.concurrent, 1)
	}
	defer atomic.AddInt32(&m.active, -1)
	time.Sleep(time.Millisecond)
	return m.base.Train(data, indices)
}

// fixedStrategy always builds the same split.
type fixedStrategy struct {
	tests [][]int
}

func (fixedStrategy) Name() string { return "fixed" }

func (s fixedStrategy) Build(n, k int, _ *int64) (split.Split, error) {
	sp := make(split.Split, len(s.tests))
	for i, test := range s.tests {
		var train []int
		for j := 0; j < n; j++ {
			in := false
			for _, x := range test {
				if x == j {
					in = true
				}
			}
			if !in {
				train = append(train, j)
			}
		}
		sp[i] = split.Fold{Train: train, Test: append([]int(nil), test...)}
	}
	return sp, nil
}

// naive hides the fold merging of an evaluator, so its fold scores are averaged.
type naive struct {
	eval.Evaluator
}

// countingStrategy counts how many splits it builds.
type countingStrategy struct {
	split.Strategy
	builds int32
}

func (s *countingStrategy) Build(n, k int, seed *int64) (split.Split, error) {
	atomic.AddInt32(&s.builds, 1)
	return s.Strategy.Build(n, k, seed)
}

// panicStrategy panics instead of splitting.
type panicStrategy struct{}

func (panicStrategy) Name() string { return "panic" }

func (panicStrategy) Build(int, int, *int64) (split.Split, error) {
	panic("no split")
}
