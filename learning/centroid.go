package learning

import (
	"fmt"
	"github.com/hscells/crossval/dataset"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"sync"
)

// KernelNearestCentroid assigns each example the class whose centroid in kernel
// space is closest. Training needs at least two classes.
//
// Locking precomputes the gram matrix of the whole dataset, which is otherwise
// recomputed for the examples of every fold. Both paths evaluate the kernel on the
// same pairs in the same order, so they predict identically.
type KernelNearestCentroid struct {
	Kernel Kernel
	// Margin makes a two class model predict d(x, first class) - d(x, second class)
	// instead of a label, so that larger values favour the larger label.
	Margin bool
}

// NewKernelNearestCentroid creates a nearest centroid model over the given kernel.
func NewKernelNearestCentroid(kernel Kernel) KernelNearestCentroid {
	return KernelNearestCentroid{Kernel: kernel}
}

type centroids struct {
	classes []float64
	members [][]int
	// self is the mean kernel value between the members of each class.
	self []float64
}

type gram func(i, j int) float64

type gramLock struct {
	sync.RWMutex
	m        *mat.SymDense
	data     dataset.Provider
	released bool
}

func (k KernelNearestCentroid) Name() string {
	if k.Kernel == nil {
		return "centroid"
	}
	return fmt.Sprintf("centroid(%s)", k.Kernel.Name())
}

func (k KernelNearestCentroid) evaluator(data dataset.Provider) gram {
	return func(i, j int) float64 {
		if j < i {
			i, j = j, i
		}
		return k.Kernel.Eval(data.Features(i), data.Features(j))
	}
}

func (k KernelNearestCentroid) train(g gram, data dataset.Provider, indices []int) (State, error) {
	if len(indices) == 0 {
		return nil, errors.Wrap(ErrDegenerateTrainingSet, "no training examples")
	}
	classes := dataset.Classes(data, indices)
	if len(classes) < 2 {
		return nil, errors.Wrapf(ErrDegenerateTrainingSet, "%s needs at least two classes, got %d", k.Name(), len(classes))
	}

	pos := make(map[float64]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	st := centroids{
		classes: classes,
		members: make([][]int, len(classes)),
		self:    make([]float64, len(classes)),
	}
	for _, idx := range indices {
		c := pos[data.Label(idx)]
		st.members[c] = append(st.members[c], idx)
	}
	for c, m := range st.members {
		var sum float64
		for _, i := range m {
			for _, j := range m {
				sum += g(i, j)
			}
		}
		n := float64(len(m))
		st.self[c] = sum / (n * n)
	}
	return st, nil
}

func (k KernelNearestCentroid) predict(g gram, state State, indices []int) ([]float64, error) {
	st, ok := state.(centroids)
	if !ok {
		return nil, errors.Errorf("%s: unexpected state %T", k.Name(), state)
	}
	p := make([]float64, len(indices))
	d := make([]float64, len(st.classes))
	for x, idx := range indices {
		xx := g(idx, idx)
		for c, m := range st.members {
			var sum float64
			for _, i := range m {
				sum += g(idx, i)
			}
			d[c] = xx - 2*sum/float64(len(m)) + st.self[c]
		}

		if k.Margin && len(d) == 2 {
			p[x] = d[0] - d[1]
			continue
		}
		best := 0
		for c := range d {
			if d[c] < d[best] {
				best = c
			}
		}
		p[x] = st.classes[best]
	}
	return p, nil
}

func (k KernelNearestCentroid) Train(data dataset.Provider, indices []int) (State, error) {
	return k.train(k.evaluator(data), data, indices)
}

func (k KernelNearestCentroid) Predict(state State, data dataset.Provider, indices []int) ([]float64, error) {
	return k.predict(k.evaluator(data), state, indices)
}

// IsLockable is always true: the locked gram matrix is only ever read.
func (k KernelNearestCentroid) IsLockable() bool {
	return true
}

// Lock computes the gram matrix of every pair of examples.
func (k KernelNearestCentroid) Lock(data dataset.Provider) (Locked, error) {
	n := data.Len()
	if n == 0 {
		return nil, errors.Wrap(ErrDegenerateTrainingSet, "no examples to lock")
	}
	g := k.evaluator(data)
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, g(i, j))
		}
	}
	return &gramLock{m: m, data: data}, nil
}

func (k KernelNearestCentroid) locked(l Locked) (*gramLock, gram, error) {
	gl, ok := l.(*gramLock)
	if !ok {
		return nil, nil, errors.Wrapf(ErrNotLocked, "%T", l)
	}
	gl.RLock()
	defer gl.RUnlock()
	if gl.released {
		return nil, nil, errors.Wrap(ErrNotLocked, "already released")
	}
	return gl, gl.m.At, nil
}

func (k KernelNearestCentroid) TrainLocked(l Locked, indices []int) (State, error) {
	gl, g, err := k.locked(l)
	if err != nil {
		return nil, err
	}
	return k.train(g, gl.data, indices)
}

func (k KernelNearestCentroid) PredictLocked(l Locked, state State, indices []int) ([]float64, error) {
	_, g, err := k.locked(l)
	if err != nil {
		return nil, err
	}
	return k.predict(g, state, indices)
}

// Unlock releases the gram matrix. A handle can only be released once.
func (k KernelNearestCentroid) Unlock(l Locked) error {
	gl, ok := l.(*gramLock)
	if !ok {
		return errors.Wrapf(ErrNotLocked, "%T", l)
	}
	gl.Lock()
	defer gl.Unlock()
	if gl.released {
		return errors.Wrap(ErrNotLocked, "already released")
	}
	gl.released = true
	gl.m = nil
	return nil
}

func (k KernelNearestCentroid) Clone() Model {
	return k
}
