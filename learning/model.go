// Package learning contains the capabilities a model exposes to cross-validation, and some models.
package learning

import (
	"github.com/hscells/crossval/dataset"
	"github.com/pkg/errors"
)

var (
	// ErrDegenerateTrainingSet is returned by models that cannot learn from the examples
	// they were given, e.g. an empty training set, or one containing a single class.
	ErrDegenerateTrainingSet = errors.New("degenerate training set")
	// ErrNotLocked is returned when a locked handle was not produced by the model, or was already released.
	ErrNotLocked = errors.New("model state is not locked")
)

// State is whatever a model learns from training.
type State interface{}

// Locked is precomputed state a lockable model holds over a whole dataset.
type Locked interface{}

// Model is an abstract representation of a machine learning model that can be trained
// on a subset of a dataset and then make predictions for another subset.
type Model interface {
	// Train must train a model on the examples at indices.
	Train(data dataset.Provider, indices []int) (State, error)
	// Predict must produce one prediction for each example at indices.
	Predict(state State, data dataset.Provider, indices []int) ([]float64, error)
	Name() string
}

// Lockable models can precompute state over an entire dataset once, so that training
// and predicting on a fold only recomputes what depends on the fold. Locked state is
// shared between concurrently evaluated folds, so a model must only report itself
// lockable when TrainLocked and PredictLocked never modify it. Results must not depend
// on whether a model was locked.
type Lockable interface {
	Model
	IsLockable() bool
	Lock(data dataset.Provider) (Locked, error)
	Unlock(l Locked) error
	TrainLocked(l Locked, indices []int) (State, error)
	PredictLocked(l Locked, state State, indices []int) ([]float64, error)
}

// Cloner models produce independent copies of themselves, so that unlocked folds
// can be trained in parallel without sharing model internals.
type Cloner interface {
	Clone() Model
}

// IsLockable reports whether a model can be locked.
func IsLockable(m Model) (Lockable, bool) {
	l, ok := m.(Lockable)
	if !ok || !l.IsLockable() {
		return nil, false
	}
	return l, true
}
