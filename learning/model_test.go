package learning_test

import (
	"github.com/hscells/crossval/dataset"
	"github.com/hscells/crossval/learning"
	"github.com/pkg/errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func blobs(t *testing.T, n int, seed int64) *dataset.Dataset {
	r := rand.New(rand.NewSource(seed))
	features := make([][]float64, n)
	labels := make([]float64, n)
	for i := range features {
		c := float64(i % 2)
		features[i] = []float64{c*4 + r.NormFloat64(), c*4 + r.NormFloat64()}
		labels[i] = c
	}
	d, err := dataset.New(features, labels)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func indices(from, to int) []int {
	idx := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		idx = append(idx, i)
	}
	return idx
}

func TestMajorityClass(t *testing.T) {
	d, err := dataset.New([][]float64{{0}, {0}, {0}, {0}, {0}}, []float64{1, 0, 1, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	m := learning.MajorityClass{}
	st, err := m.Train(d, []int{0, 1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	p, err := m.Predict(st, d, []int{1, 3})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p, []float64{1, 1}) {
		t.Fatalf("got %v", p)
	}

	// Ties go to the smaller label.
	st, err = m.Train(d, []int{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if p, _ := m.Predict(st, d, []int{0}); p[0] != 0 {
		t.Fatalf("got %v", p)
	}

	if _, err := m.Train(d, nil); !errors.Is(err, learning.ErrDegenerateTrainingSet) {
		t.Fatalf("expected degenerate training set, got %v", err)
	}
	if _, ok := learning.IsLockable(m); ok {
		t.Fatal("majority class is not lockable")
	}
}

func TestKernelNearestCentroid(t *testing.T) {
	d := blobs(t, 60, 1)
	m := learning.NewKernelNearestCentroid(learning.Gaussian{Width: 2})
	st, err := m.Train(d, indices(0, 40))
	if err != nil {
		t.Fatal(err)
	}
	p, err := m.Predict(st, d, indices(40, 60))
	if err != nil {
		t.Fatal(err)
	}
	correct := 0
	for i, idx := range indices(40, 60) {
		if p[i] == d.Label(idx) {
			correct++
		}
	}
	if correct < 18 {
		t.Fatalf("only %d of 20 correct", correct)
	}
}

func TestKernelNearestCentroidSingleClass(t *testing.T) {
	d := blobs(t, 10, 2)
	m := learning.NewKernelNearestCentroid(learning.Linear)
	_, err := m.Train(d, []int{0, 2, 4, 6})
	if !errors.Is(err, learning.ErrDegenerateTrainingSet) {
		t.Fatalf("expected degenerate training set, got %v", err)
	}
	l, err := m.Lock(d)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Unlock(l)
	if _, err := m.TrainLocked(l, []int{1, 3}); !errors.Is(err, learning.ErrDegenerateTrainingSet) {
		t.Fatalf("expected degenerate training set, got %v", err)
	}
}

func TestLockedEquivalence(t *testing.T) {
	d := blobs(t, 50, 3)
	for _, k := range []learning.Kernel{learning.Linear, learning.Gaussian{Width: 0.5}, learning.Polynomial{Degree: 2, Offset: 1}} {
		for _, margin := range []bool{false, true} {
			m := learning.KernelNearestCentroid{Kernel: k, Margin: margin}
			train, test := indices(10, 50), indices(0, 10)

			st, err := m.Train(d, train)
			if err != nil {
				t.Fatal(err)
			}
			want, err := m.Predict(st, d, test)
			if err != nil {
				t.Fatal(err)
			}

			l, err := m.Lock(d)
			if err != nil {
				t.Fatal(err)
			}
			lst, err := m.TrainLocked(l, train)
			if err != nil {
				t.Fatal(err)
			}
			got, err := m.PredictLocked(l, lst, test)
			if err != nil {
				t.Fatal(err)
			}
			if err := m.Unlock(l); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(want, got) {
				t.Fatalf("%s margin=%v: unlocked %v, locked %v", k.Name(), margin, want, got)
			}
		}
	}
}

func TestUnlock(t *testing.T) {
	d := blobs(t, 4, 4)
	m := learning.NewKernelNearestCentroid(learning.Linear)
	if _, ok := learning.IsLockable(m); !ok {
		t.Fatal("centroid model should be lockable")
	}
	l, err := m.Lock(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Unlock(l); err != nil {
		t.Fatal(err)
	}
	if err := m.Unlock(l); !errors.Is(err, learning.ErrNotLocked) {
		t.Fatalf("expected double unlock to fail, got %v", err)
	}
	if _, err := m.TrainLocked(l, []int{0, 1}); !errors.Is(err, learning.ErrNotLocked) {
		t.Fatalf("expected released handle to fail, got %v", err)
	}
	if err := m.Unlock("nope"); !errors.Is(err, learning.ErrNotLocked) {
		t.Fatalf("expected foreign handle to fail, got %v", err)
	}
}

func TestKernels(t *testing.T) {
	a, b := []float64{1, 2, 3}, []float64{-1, 0.5, 2}
	for _, name := range []string{"linear", "gaussian", "polynomial"} {
		k, err := learning.NewKernel(name, 2)
		if err != nil {
			t.Fatal(err)
		}
		if k.Eval(a, b) != k.Eval(b, a) {
			t.Fatalf("%s is not symmetric", k.Name())
		}
	}
	if v := learning.Linear.Eval(a, b); v != 6 {
		t.Fatalf("linear %v", v)
	}
	if v := (learning.Gaussian{Width: 1}).Eval(a, a); v != 1 {
		t.Fatalf("gaussian %v", v)
	}
	if v := (learning.Polynomial{Degree: 2, Offset: 1}).Eval(a, b); math.Abs(v-49) > 1e-12 {
		t.Fatalf("polynomial %v", v)
	}
	for _, c := range []struct {
		name  string
		param float64
	}{{"gaussian", 0}, {"polynomial", 0.5}, {"sigmoid", 1}} {
		if _, err := learning.NewKernel(c.name, c.param); err == nil {
			t.Fatalf("expected error for %s(%v)", c.name, c.param)
		}
	}
}
